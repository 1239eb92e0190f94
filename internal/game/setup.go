package game

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	MinBoardSize = 3
	MaxBoardSize = 20

	freestyleMinWalls        = 4
	freestyleMaxWalls        = 10
	freestyleAttemptsPerWall = 500
)

// Config describes a game before it starts. Immutable once a GameState
// has been constructed from it.
type Config struct {
	BoardWidth    int            `json:"boardWidth"`
	BoardHeight   int            `json:"boardHeight"`
	Variant       Variant        `json:"variant"`
	TimeControl   TimeControl    `json:"timeControl"`
	Rated         bool           `json:"rated"`
	VariantConfig *VariantConfig `json:"variantConfig,omitempty"`
}

// VariantConfig is the variant-specific initial-state payload, one branch
// per variant keyed by Config.Variant. The classic variant needs no
// payload: its geometry is fixed.
type VariantConfig struct {
	Standard  *StandardSetup  `json:"standard,omitempty"`
	Survival  *SurvivalSetup  `json:"survival,omitempty"`
	Freestyle *FreestyleSetup `json:"freestyle,omitempty"`
	Seed      int64           `json:"seed,omitempty"`
}

// StandardSetup optionally overrides the default starting position.
type StandardSetup struct {
	Pawns map[PlayerID]Pawns `json:"pawns"`
	Walls []WallPosition     `json:"walls,omitempty"`
}

// SurvivalSetup configures a survival game: the attacker (player 1) must
// catch the defender's mouse within TurnsToSurvive of their own moves.
type SurvivalSetup struct {
	TurnsToSurvive int                `json:"turnsToSurvive"`
	Pawns          map[PlayerID]Pawns `json:"pawns,omitempty"`
	Walls          []WallPosition     `json:"walls,omitempty"`
}

// FreestyleSetup is a generated (or previously generated and persisted)
// freestyle starting position.
type FreestyleSetup struct {
	Pawns map[PlayerID]Pawns `json:"pawns"`
	Walls []WallPosition     `json:"walls"`
}

// InitialState is what a variant builder produces: a valid starting
// position honoring the variant's constraints.
type InitialState struct {
	Pawns          map[PlayerID]Pawns
	Walls          []WallPosition
	TurnsToSurvive int
}

// validateFor rejects payload branches that do not belong to the
// configured variant, so a mismatched config fails at construction
// instead of being silently ignored.
func (that *VariantConfig) validateFor(variant Variant) error {
	if that == nil {
		return nil
	}

	allowed := func(ok bool, branch string) error {
		if !ok {
			return fmt.Errorf("%w: %s payload for variant %q", ErrVariantConfigMismatch, branch, variant)
		}
		return nil
	}

	if that.Standard != nil {
		if err := allowed(variant == VariantStandard || variant == "", "standard"); err != nil {
			return err
		}
	}
	if that.Survival != nil {
		if err := allowed(variant == VariantSurvival, "survival"); err != nil {
			return err
		}
	}
	if that.Freestyle != nil {
		if err := allowed(variant == VariantFreestyle, "freestyle"); err != nil {
			return err
		}
	}
	if that.Seed != 0 {
		if err := allowed(variant == VariantFreestyle, "seed"); err != nil {
			return err
		}
	}

	return nil
}

// buildInitialState dispatches to the variant builder. For freestyle
// configurations without a pre-generated setup the generated position is
// written back into the config so serialization reproduces it.
func buildInitialState(config *Config) (*InitialState, error) {
	if err := config.VariantConfig.validateFor(config.Variant); err != nil {
		return nil, err
	}

	switch config.Variant {
	case VariantClassic:
		return BuildClassicInitialState(config.BoardWidth, config.BoardHeight), nil

	case VariantSurvival:
		var setup SurvivalSetup
		if config.VariantConfig != nil && config.VariantConfig.Survival != nil {
			setup = *config.VariantConfig.Survival
		}
		return BuildSurvivalInitialState(setup, config.BoardWidth, config.BoardHeight)

	case VariantFreestyle:
		if config.VariantConfig != nil && config.VariantConfig.Freestyle != nil {
			setup := config.VariantConfig.Freestyle
			return &InitialState{Pawns: clonePawns(setup.Pawns), Walls: setup.Walls}, nil
		}
		var rng *rand.Rand
		if config.VariantConfig != nil && config.VariantConfig.Seed != 0 {
			rng = rand.New(rand.NewSource(config.VariantConfig.Seed))
		}
		initial, err := BuildFreestyleInitialState(config.BoardWidth, config.BoardHeight, rng)
		if err != nil {
			return nil, err
		}
		generated := &FreestyleSetup{Pawns: clonePawns(initial.Pawns), Walls: initial.Walls}
		if config.VariantConfig == nil {
			config.VariantConfig = &VariantConfig{}
		}
		config.VariantConfig.Freestyle = generated
		return initial, nil

	case VariantStandard, "":
		var setup StandardSetup
		if config.VariantConfig != nil && config.VariantConfig.Standard != nil {
			setup = *config.VariantConfig.Standard
		}
		return buildStandardInitialState(setup, config.BoardWidth, config.BoardHeight), nil

	default:
		return nil, fmt.Errorf("unknown variant %q", config.Variant)
	}
}

func defaultPawns(width, height int) map[PlayerID]Pawns {
	return map[PlayerID]Pawns{
		Player1: {Cat: Cell{Row: 0, Col: 0}, Mouse: Cell{Row: height - 1, Col: 0}},
		Player2: {Cat: Cell{Row: 0, Col: width - 1}, Mouse: Cell{Row: height - 1, Col: width - 1}},
	}
}

func buildStandardInitialState(setup StandardSetup, width, height int) *InitialState {
	pawns := setup.Pawns
	if pawns == nil {
		pawns = defaultPawns(width, height)
	}
	return &InitialState{Pawns: clonePawns(pawns), Walls: setup.Walls}
}

// BuildClassicInitialState places the cats at the top corners and each
// player's home at the diagonally opposite bottom corner. The fixed
// geometry is inherently valid; there are no initial walls.
func BuildClassicInitialState(width, height int) *InitialState {
	return &InitialState{
		Pawns: map[PlayerID]Pawns{
			Player1: {Cat: Cell{Row: 0, Col: 0}, Mouse: Cell{Row: height - 1, Col: width - 1}},
			Player2: {Cat: Cell{Row: 0, Col: width - 1}, Mouse: Cell{Row: height - 1, Col: 0}},
		},
	}
}

// BuildSurvivalInitialState validates a caller-supplied (or default)
// survival position. The wall layout must keep the attacker's cat able to
// reach the defender's mouse.
func BuildSurvivalInitialState(setup SurvivalSetup, width, height int) (*InitialState, error) {
	if setup.TurnsToSurvive <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSurvivalTurn, setup.TurnsToSurvive)
	}

	pawns := setup.Pawns
	if pawns == nil {
		pawns = defaultPawns(width, height)
	}

	grid := NewGrid(width, height)
	pairs := []ReachPair{{From: pawns[Player1].Cat, To: pawns[Player2].Mouse}}
	for _, wall := range setup.Walls {
		if !grid.CanBuildWall(pairs, wall) {
			return nil, fmt.Errorf("%w: %s wall at (%d,%d)", ErrInvalidWallLayout, wall.Orientation, wall.Cell.Row, wall.Cell.Col)
		}
		grid.AddWall(wall)
	}

	return &InitialState{
		Pawns:          clonePawns(pawns),
		Walls:          setup.Walls,
		TurnsToSurvive: setup.TurnsToSurvive,
	}, nil
}

// BuildFreestyleInitialState generates a random symmetric starting
// position: player 1's pawns land in a left-side column band and are
// mirrored horizontally for player 2, then randomly attempted walls are
// kept only when both the candidate and its mirror image are legal. A nil
// rng falls back to a time-seeded source; supplying one makes generation
// deterministic for tests.
func BuildFreestyleInitialState(width, height int, rng *rand.Rand) (*InitialState, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	band := width / 3
	if band < 1 {
		band = 1
	}

	catCell := Cell{Row: rng.Intn(height), Col: rng.Intn(band)}
	mouseCell := Cell{Row: rng.Intn(height), Col: rng.Intn(band)}
	for mouseCell == catCell {
		mouseCell = Cell{Row: rng.Intn(height), Col: rng.Intn(band)}
	}

	pawns := map[PlayerID]Pawns{
		Player1: {Cat: catCell, Mouse: mouseCell},
		Player2: {Cat: mirrorCell(catCell, width), Mouse: mirrorCell(mouseCell, width)},
	}

	grid := NewGrid(width, height)
	pairs := []ReachPair{
		{From: pawns[Player1].Cat, To: pawns[Player2].Mouse},
		{From: pawns[Player2].Cat, To: pawns[Player1].Mouse},
	}

	target := freestyleMinWalls + rng.Intn(freestyleMaxWalls-freestyleMinWalls+1)
	maxAttempts := target * freestyleAttemptsPerWall

	placed := 0
	for attempt := 0; attempt < maxAttempts && placed < target; attempt++ {
		orientation := Vertical
		if rng.Intn(2) == 1 {
			orientation = Horizontal
		}
		candidate := WallPosition{
			Cell:        Cell{Row: rng.Intn(height), Col: rng.Intn((width + 1) / 2)},
			Orientation: orientation,
			Player:      Player1,
		}

		if !grid.CanBuildWall(pairs, candidate) {
			continue
		}

		mirror := mirrorWall(candidate, width)
		mirror.Player = Player2
		if mirror.Cell == candidate.Cell && mirror.Orientation == candidate.Orientation {
			if placed+1 > target {
				continue
			}
			grid.AddWall(candidate)
			placed++
			continue
		}

		if placed+2 > target {
			continue
		}
		grid.AddWall(candidate)
		if !grid.CanBuildWall(pairs, mirror) {
			grid.setWallOwner(candidate.Cell, candidate.Orientation, 0)
			continue
		}
		grid.AddWall(mirror)
		placed += 2
	}

	if placed < target {
		return nil, fmt.Errorf("%w: placed %d of %d walls", ErrWallGeneration, placed, target)
	}

	return &InitialState{Pawns: pawns, Walls: grid.Walls()}, nil
}

func mirrorCell(cell Cell, width int) Cell {
	return Cell{Row: cell.Row, Col: width - 1 - cell.Col}
}

// mirrorWall reflects a wall across the board's vertical center line. A
// vertical wall between columns c and c+1 maps to the wall between the
// mirrored columns, which anchors at width-2-c; a horizontal wall keeps
// its gap and anchors at the mirrored column.
func mirrorWall(wall WallPosition, width int) WallPosition {
	mirrored := wall
	if wall.Orientation == Vertical {
		mirrored.Cell.Col = width - 2 - wall.Cell.Col
	} else {
		mirrored.Cell.Col = width - 1 - wall.Cell.Col
	}
	return mirrored
}
