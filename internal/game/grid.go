package game

// Each cell packs its wall state into a uint32: the low byte holds the
// owner of a vertical wall anchored at the cell, the next byte the owner
// of a horizontal wall. A zero owner byte means no wall.
const (
	verticalOwnerMask   uint32 = 0x000000ff
	horizontalOwnerMask uint32 = 0x0000ff00
	horizontalShift            = 8
)

// Grid owns wall placement state for a rectangular board and answers
// legality and reachability queries over the wall-filtered grid graph.
type Grid struct {
	width  int
	height int
	cells  []uint32 // row-major, height*width entries
}

// ReachPair is one (start, target) reachability requirement checked by
// CanBuildWall. Generalizing over pairs keeps the check variant-agnostic:
// standard games pair each cat with the opponent's mouse, classic games
// pair each cat with its own home.
type ReachPair struct {
	From Cell
	To   Cell
}

func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]uint32, width*height),
	}
}

func (that *Grid) Width() int  { return that.width }
func (that *Grid) Height() int { return that.height }

// InBounds reports whether the cell lies on the board.
func (that *Grid) InBounds(cell Cell) bool {
	return cell.Row >= 0 && cell.Row < that.height && cell.Col >= 0 && cell.Col < that.width
}

func (that *Grid) index(cell Cell) int {
	return cell.Row*that.width + cell.Col
}

func (that *Grid) wallOwner(cell Cell, orientation Orientation) PlayerID {
	encoded := that.cells[that.index(cell)]
	if orientation == Vertical {
		return PlayerID(encoded & verticalOwnerMask)
	}
	return PlayerID((encoded & horizontalOwnerMask) >> horizontalShift)
}

func (that *Grid) setWallOwner(cell Cell, orientation Orientation, owner PlayerID) {
	i := that.index(cell)
	if orientation == Vertical {
		that.cells[i] = (that.cells[i] &^ verticalOwnerMask) | uint32(owner)
	} else {
		that.cells[i] = (that.cells[i] &^ horizontalOwnerMask) | uint32(owner)<<horizontalShift
	}
}

// HasWall reports whether a wall of the given orientation is anchored at
// the given cell.
func (that *Grid) HasWall(wall WallPosition) bool {
	if !that.InBounds(wall.Cell) {
		return false
	}
	return that.wallOwner(wall.Cell, wall.Orientation) != 0
}

// AddWall unconditionally writes the wall's owner into the target cell.
// It performs no legality checks; callers must have validated the
// placement with CanBuildWall first. An unowned wall defaults to Player1.
func (that *Grid) AddWall(wall WallPosition) {
	owner := wall.Player
	if owner == 0 {
		owner = Player1
	}
	that.setWallOwner(wall.Cell, wall.Orientation, owner)
}

// CanBuildWall reports whether the candidate wall may legally be placed:
// the anchor must be in bounds and valid for the orientation, the slot
// must be empty, and with the wall hypothetically present every supplied
// reachability pair must still be connected. The receiver is left
// untouched regardless of outcome.
func (that *Grid) CanBuildWall(pairs []ReachPair, candidate WallPosition) bool {
	if !that.InBounds(candidate.Cell) {
		return false
	}
	// A vertical wall separates the anchor from the cell to its right, a
	// horizontal wall from the cell above; both must exist.
	if candidate.Orientation == Vertical && candidate.Cell.Col >= that.width-1 {
		return false
	}
	if candidate.Orientation == Horizontal && candidate.Cell.Row == 0 {
		return false
	}
	if that.HasWall(candidate) {
		return false
	}

	that.AddWall(candidate)
	ok := true
	for _, pair := range pairs {
		if that.Distance(pair.From, pair.To) == -1 {
			ok = false
			break
		}
	}
	that.setWallOwner(candidate.Cell, candidate.Orientation, 0)

	return ok
}

// blockedBetween reports whether a wall separates two orthogonally
// adjacent cells.
func (that *Grid) blockedBetween(a, b Cell) bool {
	switch {
	case a.Row == b.Row && b.Col == a.Col+1:
		return that.wallOwner(a, Vertical) != 0
	case a.Row == b.Row && b.Col == a.Col-1:
		return that.wallOwner(b, Vertical) != 0
	case a.Col == b.Col && b.Row == a.Row+1:
		return that.wallOwner(b, Horizontal) != 0
	case a.Col == b.Col && b.Row == a.Row-1:
		return that.wallOwner(a, Horizontal) != 0
	default:
		return true
	}
}

// AccessibleNeighbors returns the up-to-4 orthogonal neighbors of the
// cell that are in bounds and not separated from it by a wall.
func (that *Grid) AccessibleNeighbors(cell Cell) []Cell {
	candidates := [4]Cell{
		{Row: cell.Row - 1, Col: cell.Col},
		{Row: cell.Row + 1, Col: cell.Col},
		{Row: cell.Row, Col: cell.Col - 1},
		{Row: cell.Row, Col: cell.Col + 1},
	}

	neighbors := make([]Cell, 0, 4)
	for _, neighbor := range candidates {
		if that.InBounds(neighbor) && !that.blockedBetween(cell, neighbor) {
			neighbors = append(neighbors, neighbor)
		}
	}

	return neighbors
}

// Distance returns the number of hops on the shortest unblocked path from
// start to target, 0 if they are equal, or -1 if target is unreachable.
// Boards are capped at 20x20, so a plain BFS is always fast enough.
func (that *Grid) Distance(start, target Cell) int {
	if !that.InBounds(start) || !that.InBounds(target) {
		return -1
	}
	if start == target {
		return 0
	}

	visited := make([]bool, len(that.cells))
	visited[that.index(start)] = true

	type node struct {
		cell Cell
		dist int
	}
	queue := []node{{cell: start}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range that.AccessibleNeighbors(current.cell) {
			if neighbor == target {
				return current.dist + 1
			}
			if i := that.index(neighbor); !visited[i] {
				visited[i] = true
				queue = append(queue, node{cell: neighbor, dist: current.dist + 1})
			}
		}
	}

	return -1
}

// Walls enumerates all placed walls with their owners.
func (that *Grid) Walls() []WallPosition {
	var walls []WallPosition
	for row := 0; row < that.height; row++ {
		for col := 0; col < that.width; col++ {
			cell := Cell{Row: row, Col: col}
			if owner := that.wallOwner(cell, Vertical); owner != 0 {
				walls = append(walls, WallPosition{Cell: cell, Orientation: Vertical, Player: owner})
			}
			if owner := that.wallOwner(cell, Horizontal); owner != 0 {
				walls = append(walls, WallPosition{Cell: cell, Orientation: Horizontal, Player: owner})
			}
		}
	}
	return walls
}

// Clone returns a deep copy of the grid.
func (that *Grid) Clone() *Grid {
	cells := make([]uint32, len(that.cells))
	copy(cells, that.cells)

	return &Grid{
		width:  that.width,
		height: that.height,
		cells:  cells,
	}
}
