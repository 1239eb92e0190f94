package game

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Standard notation: columns are letters ('a' = 0), rows are numbered
// bottom-up starting at 1 while internal rows are top-down starting at 0,
// so every transform needs the board's row count as context. Walls carry
// a leading '>' (vertical) or '^' (horizontal); pawn actions a leading
// 'C' or 'M'. Actions of a move are dot-joined; the literal "---" is the
// sentinel for an empty pass move; the moves of a turn are space-joined.
const (
	PassNotation = "---"

	verticalWallSymbol   = '>'
	horizontalWallSymbol = '^'
	catSymbol            = 'C'
	mouseSymbol          = 'M'
)

var ErrBadNotation = errors.New("malformed notation")

// CellToNotation renders a cell, e.g. {Row:3, Col:0} on 4 rows -> "a1".
func CellToNotation(cell Cell, rows int) string {
	return fmt.Sprintf("%c%d", 'a'+rune(cell.Col), rows-cell.Row)
}

// CellFromNotation parses a cell rendered by CellToNotation.
func CellFromNotation(notation string, rows int) (Cell, error) {
	if len(notation) < 2 {
		return Cell{}, fmt.Errorf("%w: cell %q", ErrBadNotation, notation)
	}

	col := int(notation[0] - 'a')
	if col < 0 || col >= MaxBoardSize {
		return Cell{}, fmt.Errorf("%w: column in %q", ErrBadNotation, notation)
	}

	num, err := strconv.Atoi(notation[1:])
	if err != nil || num < 1 || num > rows {
		return Cell{}, fmt.Errorf("%w: row in %q", ErrBadNotation, notation)
	}

	return Cell{Row: rows - num, Col: col}, nil
}

// WallToNotation renders a wall with its orientation symbol.
func WallToNotation(wall WallPosition, rows int) string {
	symbol := verticalWallSymbol
	if wall.Orientation == Horizontal {
		symbol = horizontalWallSymbol
	}
	return string(symbol) + CellToNotation(wall.Cell, rows)
}

// WallFromNotation parses a wall rendered by WallToNotation. The owner is
// not part of the notation and is left zero.
func WallFromNotation(notation string, rows int) (WallPosition, error) {
	if len(notation) < 3 {
		return WallPosition{}, fmt.Errorf("%w: wall %q", ErrBadNotation, notation)
	}

	var orientation Orientation
	switch notation[0] {
	case byte(verticalWallSymbol):
		orientation = Vertical
	case byte(horizontalWallSymbol):
		orientation = Horizontal
	default:
		return WallPosition{}, fmt.Errorf("%w: wall symbol in %q", ErrBadNotation, notation)
	}

	cell, err := CellFromNotation(notation[1:], rows)
	if err != nil {
		return WallPosition{}, err
	}

	return WallPosition{Cell: cell, Orientation: orientation}, nil
}

// ActionToNotation renders one action with its type tag.
func ActionToNotation(action Action, rows int) string {
	switch action.Type {
	case ActionCat:
		return string(catSymbol) + CellToNotation(action.Target, rows)
	case ActionMouse:
		return string(mouseSymbol) + CellToNotation(action.Target, rows)
	default:
		return WallToNotation(WallPosition{Cell: action.Target, Orientation: action.WallOrientation}, rows)
	}
}

// ActionFromNotation parses one action rendered by ActionToNotation.
func ActionFromNotation(notation string, rows int) (Action, error) {
	if len(notation) < 2 {
		return Action{}, fmt.Errorf("%w: action %q", ErrBadNotation, notation)
	}

	switch notation[0] {
	case byte(catSymbol), byte(mouseSymbol):
		cell, err := CellFromNotation(notation[1:], rows)
		if err != nil {
			return Action{}, err
		}
		actionType := ActionCat
		if notation[0] == byte(mouseSymbol) {
			actionType = ActionMouse
		}
		return Action{Type: actionType, Target: cell}, nil

	case byte(verticalWallSymbol), byte(horizontalWallSymbol):
		wall, err := WallFromNotation(notation, rows)
		if err != nil {
			return Action{}, err
		}
		return Action{Type: ActionWall, Target: wall.Cell, WallOrientation: wall.Orientation}, nil

	default:
		return Action{}, fmt.Errorf("%w: action tag in %q", ErrBadNotation, notation)
	}
}

// MoveToNotation renders a move. The actions are first sorted into
// canonical order (cat, then mouse, then walls ordered by orientation,
// column, row) so that semantically equal action sets always serialize
// identically; deterministic replay and history hashing depend on it.
func MoveToNotation(move Move, rows int) string {
	if len(move.Actions) == 0 {
		return PassNotation
	}

	actions := canonicalActions(move.Actions)
	parts := make([]string, len(actions))
	for i, action := range actions {
		parts[i] = ActionToNotation(action, rows)
	}

	return strings.Join(parts, ".")
}

// MoveFromNotation parses a move rendered by MoveToNotation.
func MoveFromNotation(notation string, rows int) (Move, error) {
	if notation == PassNotation {
		return Move{}, nil
	}

	parts := strings.Split(notation, ".")
	actions := make([]Action, 0, len(parts))
	for _, part := range parts {
		action, err := ActionFromNotation(part, rows)
		if err != nil {
			return Move{}, fmt.Errorf("failed to parse move %q: %w", notation, err)
		}
		actions = append(actions, action)
	}

	return Move{Actions: actions}, nil
}

// TurnToNotation space-joins one or two moves. The canonical engine plays
// one move per turn, but legacy notation packs two sub-moves per turn and
// the codec stays compatible with it.
func TurnToNotation(moves []Move, rows int) string {
	parts := make([]string, len(moves))
	for i, move := range moves {
		parts[i] = MoveToNotation(move, rows)
	}
	return strings.Join(parts, " ")
}

// TurnFromNotation parses a turn rendered by TurnToNotation.
func TurnFromNotation(notation string, rows int) ([]Move, error) {
	parts := strings.Fields(notation)
	moves := make([]Move, 0, len(parts))
	for _, part := range parts {
		move, err := MoveFromNotation(part, rows)
		if err != nil {
			return nil, err
		}
		moves = append(moves, move)
	}
	return moves, nil
}

func canonicalActions(actions []Action) []Action {
	sorted := append([]Action(nil), actions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if rankA, rankB := actionRank(a), actionRank(b); rankA != rankB {
			return rankA < rankB
		}
		if a.Type != ActionWall {
			return false
		}
		if a.WallOrientation != b.WallOrientation {
			return a.WallOrientation == Vertical
		}
		if a.Target.Col != b.Target.Col {
			return a.Target.Col < b.Target.Col
		}
		return a.Target.Row < b.Target.Row
	})
	return sorted
}

func actionRank(action Action) int {
	switch action.Type {
	case ActionCat:
		return 0
	case ActionMouse:
		return 1
	default:
		return 2
	}
}
