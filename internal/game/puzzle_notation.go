package game

import (
	"fmt"
	"strconv"
)

// Puzzle notation is the older dialect hand-authored puzzle data is
// committed against. It differs from the standard dialect in two ways and
// must be preserved exactly:
//
//   - wall markers are suffixes, not prefixes: "c3>" is the wall to the
//     right of c3 (a vertical wall anchored there) and "c3v" the wall
//     below it;
//   - "below" does not match the internal horizontal-wall anchor (which
//     sits under the gap it blocks), so decoding a 'v' wall shifts the
//     row index down by one.
//
// Rows are still 1-based from the bottom, so the board's row count is
// required as context here too.

// PuzzleCellToNotation renders a cell in the puzzle dialect.
func PuzzleCellToNotation(cell Cell, rows int) string {
	return fmt.Sprintf("%c%d", 'a'+rune(cell.Col), rows-cell.Row)
}

// PuzzleCellFromNotation parses a puzzle-dialect cell.
func PuzzleCellFromNotation(notation string, rows int) (Cell, error) {
	if len(notation) < 2 {
		return Cell{}, fmt.Errorf("%w: puzzle cell %q", ErrBadNotation, notation)
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

// PuzzleWallToNotation renders a wall in the puzzle dialect.
func PuzzleWallToNotation(wall WallPosition, rows int) string {
	if wall.Orientation == Vertical {
		return PuzzleCellToNotation(wall.Cell, rows) + ">"
	}
	// Internal horizontal anchor is the cell below the blocked gap, so
	// the "wall below X" cell is one row above the anchor.
	above := Cell{Row: wall.Cell.Row - 1, Col: wall.Cell.Col}
	return PuzzleCellToNotation(above, rows) + "v"
}

// PuzzleWallFromNotation parses a puzzle-dialect wall.
func PuzzleWallFromNotation(notation string, rows int) (WallPosition, error) {
	if len(notation) < 3 {
		return WallPosition{}, fmt.Errorf("%w: puzzle wall %q", ErrBadNotation, notation)
	}

	suffix := notation[len(notation)-1]
	cell, err := PuzzleCellFromNotation(notation[:len(notation)-1], rows)
	if err != nil {
		return WallPosition{}, err
	}

	switch suffix {
	case '>':
		return WallPosition{Cell: cell, Orientation: Vertical}, nil
	case 'v', 'V':
		return WallPosition{Cell: Cell{Row: cell.Row + 1, Col: cell.Col}, Orientation: Horizontal}, nil
	default:
		return WallPosition{}, fmt.Errorf("%w: puzzle wall suffix in %q", ErrBadNotation, notation)
	}
}

// PuzzleActionFromNotation parses one puzzle-dialect action: "Cc3"/"Mc3"
// pawn steps, or suffix-marked walls.
func PuzzleActionFromNotation(notation string, rows int) (Action, error) {
	if len(notation) < 2 {
		return Action{}, fmt.Errorf("%w: puzzle action %q", ErrBadNotation, notation)
	}

	switch notation[0] {
	case byte(catSymbol), byte(mouseSymbol):
		cell, err := PuzzleCellFromNotation(notation[1:], rows)
		if err != nil {
			return Action{}, err
		}
		actionType := ActionCat
		if notation[0] == byte(mouseSymbol) {
			actionType = ActionMouse
		}
		return Action{Type: actionType, Target: cell}, nil
	}

	wall, err := PuzzleWallFromNotation(notation, rows)
	if err != nil {
		return Action{}, err
	}
	return Action{Type: ActionWall, Target: wall.Cell, WallOrientation: wall.Orientation}, nil
}
