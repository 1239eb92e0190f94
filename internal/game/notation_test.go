package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellNotation(t *testing.T) {
	t.Run("render", func(t *testing.T) {
		assert.Equal(t, "a4", CellToNotation(Cell{0, 0}, 4))
		assert.Equal(t, "a1", CellToNotation(Cell{3, 0}, 4))
		assert.Equal(t, "c2", CellToNotation(Cell{2, 2}, 4))
		assert.Equal(t, "j10", CellToNotation(Cell{0, 9}, 10))
	})

	t.Run("parse", func(t *testing.T) {
		cell, err := CellFromNotation("a4", 4)
		require.NoError(t, err)
		assert.Equal(t, Cell{0, 0}, cell)

		cell, err = CellFromNotation("j10", 10)
		require.NoError(t, err)
		assert.Equal(t, Cell{0, 9}, cell)
	})

	t.Run("round trip over the board", func(t *testing.T) {
		const rows, cols = 7, 5
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				want := Cell{Row: row, Col: col}

				got, err := CellFromNotation(CellToNotation(want, rows), rows)

				require.NoError(t, err)
				require.Equal(t, want, got)
			}
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, notation := range []string{"", "a", "a0", "a9", "Z3", "aa", "4a"} {
			_, err := CellFromNotation(notation, 4)
			assert.ErrorIs(t, err, ErrBadNotation, "notation %q", notation)
		}
	})
}

func TestWallNotation(t *testing.T) {
	t.Run("render", func(t *testing.T) {
		assert.Equal(t, ">b2", WallToNotation(WallPosition{Cell: Cell{2, 1}, Orientation: Vertical}, 4))
		assert.Equal(t, "^b2", WallToNotation(WallPosition{Cell: Cell{2, 1}, Orientation: Horizontal}, 4))
	})

	t.Run("parse drops the owner", func(t *testing.T) {
		wall, err := WallFromNotation(">b2", 4)

		require.NoError(t, err)
		assert.Equal(t, WallPosition{Cell: Cell{2, 1}, Orientation: Vertical}, wall)
		assert.Zero(t, wall.Player)
	})

	t.Run("round trip", func(t *testing.T) {
		for _, want := range []WallPosition{
			{Cell: Cell{1, 0}, Orientation: Vertical},
			{Cell: Cell{3, 2}, Orientation: Horizontal},
		} {
			got, err := WallFromNotation(WallToNotation(want, 5), 5)

			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, notation := range []string{"", ">", ">b", "b2", "!b2"} {
			_, err := WallFromNotation(notation, 4)
			assert.ErrorIs(t, err, ErrBadNotation, "notation %q", notation)
		}
	})
}

func TestActionNotation(t *testing.T) {
	cases := []struct {
		notation string
		action   Action
	}{
		{"Ca4", Action{Type: ActionCat, Target: Cell{0, 0}}},
		{"Mb1", Action{Type: ActionMouse, Target: Cell{3, 1}}},
		{">c2", Action{Type: ActionWall, Target: Cell{2, 2}, WallOrientation: Vertical}},
		{"^c2", Action{Type: ActionWall, Target: Cell{2, 2}, WallOrientation: Horizontal}},
	}

	for _, tc := range cases {
		t.Run(tc.notation, func(t *testing.T) {
			assert.Equal(t, tc.notation, ActionToNotation(tc.action, 4))

			parsed, err := ActionFromNotation(tc.notation, 4)

			require.NoError(t, err)
			assert.Equal(t, tc.action, parsed)
		})
	}

	t.Run("malformed", func(t *testing.T) {
		for _, notation := range []string{"", "C", "Xa1", "C0"} {
			_, err := ActionFromNotation(notation, 4)
			assert.ErrorIs(t, err, ErrBadNotation, "notation %q", notation)
		}
	})
}

func TestMoveNotation(t *testing.T) {
	t.Run("pass sentinel", func(t *testing.T) {
		assert.Equal(t, PassNotation, MoveToNotation(Move{}, 4))

		move, err := MoveFromNotation(PassNotation, 4)

		require.NoError(t, err)
		assert.Empty(t, move.Actions)
	})

	t.Run("canonical ordering", func(t *testing.T) {
		// Given: a wall listed before the pawn step
		move := Move{Actions: []Action{
			{Type: ActionWall, Target: Cell{2, 2}, WallOrientation: Horizontal},
			{Type: ActionCat, Target: Cell{0, 1}},
		}}

		// Then: the cat step always serializes first
		assert.Equal(t, "Cb4.^c2", MoveToNotation(move, 4))
	})

	t.Run("walls sort by orientation then column then row", func(t *testing.T) {
		move := Move{Actions: []Action{
			{Type: ActionWall, Target: Cell{1, 3}, WallOrientation: Horizontal},
			{Type: ActionWall, Target: Cell{3, 0}, WallOrientation: Vertical},
		}}

		assert.Equal(t, ">a1.^d3", MoveToNotation(move, 4))
	})

	t.Run("round trip", func(t *testing.T) {
		move := Move{Actions: []Action{
			{Type: ActionCat, Target: Cell{1, 2}},
			{Type: ActionWall, Target: Cell{3, 1}, WallOrientation: Vertical},
		}}

		parsed, err := MoveFromNotation(MoveToNotation(move, 5), 5)

		require.NoError(t, err)
		assert.Equal(t, move, parsed)
	})

	t.Run("malformed part fails the whole move", func(t *testing.T) {
		_, err := MoveFromNotation("Cb4.bogus", 4)

		require.ErrorIs(t, err, ErrBadNotation)
	})
}

func TestTurnNotation(t *testing.T) {
	t.Run("round trip including a pass", func(t *testing.T) {
		moves := []Move{
			{Actions: []Action{{Type: ActionCat, Target: Cell{0, 1}}}},
			{},
		}

		notation := TurnToNotation(moves, 4)
		require.Equal(t, "Cb4 ---", notation)

		parsed, err := TurnFromNotation(notation, 4)

		require.NoError(t, err)
		assert.Equal(t, moves, parsed)
	})

	t.Run("extra whitespace is tolerated", func(t *testing.T) {
		parsed, err := TurnFromNotation("  Cb4   --- ", 4)

		require.NoError(t, err)
		require.Len(t, parsed, 2)
	})
}

func TestPuzzleNotation(t *testing.T) {
	t.Run("vertical wall suffix", func(t *testing.T) {
		wall, err := PuzzleWallFromNotation("c3>", 5)

		require.NoError(t, err)
		assert.Equal(t, WallPosition{Cell: Cell{2, 2}, Orientation: Vertical}, wall)
	})

	t.Run("below wall shifts to the internal anchor", func(t *testing.T) {
		wall, err := PuzzleWallFromNotation("c3v", 5)

		require.NoError(t, err)
		assert.Equal(t, WallPosition{Cell: Cell{3, 2}, Orientation: Horizontal}, wall)
	})

	t.Run("wall round trip", func(t *testing.T) {
		for _, want := range []WallPosition{
			{Cell: Cell{2, 2}, Orientation: Vertical},
			{Cell: Cell{3, 2}, Orientation: Horizontal},
			{Cell: Cell{4, 0}, Orientation: Horizontal},
		} {
			got, err := PuzzleWallFromNotation(PuzzleWallToNotation(want, 5), 5)

			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	})

	t.Run("pawn actions", func(t *testing.T) {
		action, err := PuzzleActionFromNotation("Mc3", 5)

		require.NoError(t, err)
		assert.Equal(t, Action{Type: ActionMouse, Target: Cell{2, 2}}, action)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, notation := range []string{"", "c3", "c3x", "C"} {
			_, err := PuzzleActionFromNotation(notation, 5)
			assert.ErrorIs(t, err, ErrBadNotation, "notation %q", notation)
		}
	})
}
