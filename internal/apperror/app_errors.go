package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrGameFull          = errors.New("game already has two players")
	ErrNotSeated         = errors.New("player is not seated in this game")
	ErrNoActiveGames     = errors.New("no active games")
	ErrGameAlreadyExists = errors.New("game already exists")
)
