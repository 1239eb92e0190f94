package game

import "errors"

var (
	ErrGameNotPlaying      = errors.New("game is not playing")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrInvalidMoveDistance = errors.New("invalid move distance")
	ErrMoveBlocked         = errors.New("move blocked by wall")
	ErrInvalidDoubleMove   = errors.New("invalid double move: blocked or no path")
	ErrIllegalWall         = errors.New("invalid wall placement: blocks path or overlaps")
	ErrTooManyActions      = errors.New("a move may contain at most two actions")
	ErrMouseImmovable      = errors.New("mouse cannot move in this variant")
	ErrTargetOutOfBounds   = errors.New("move target is out of bounds")
	ErrNothingToTakeback   = errors.New("no moves to take back")
	ErrUnknownActionKind   = errors.New("unknown game action kind")

	ErrInvalidBoardSize      = errors.New("board dimensions must be between 3 and 20")
	ErrInvalidSurvivalTurn   = errors.New("turns to survive must be positive")
	ErrInvalidWallLayout     = errors.New("wall layout blocks a required path")
	ErrWallGeneration        = errors.New("could not generate a valid wall layout")
	ErrVariantConfigMismatch = errors.New("variant config does not match the variant")
)
