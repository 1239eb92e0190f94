package service

import (
	"errors"
	"math/rand"

	"github.com/wallchase/wallchase-backend/internal/game"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// fleeDistance is how close the opponent's cat may come to the bot's
// mouse before the bot switches from chasing to running.
const fleeDistance = 2

type BotService interface {
	ChooseAction(state *game.GameState, bot game.PlayerID, timestamp int64) (game.GameAction, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// ChooseAction picks the bot's move: normally the cat step that shortens
// the path to its goal the most; when the opponent's cat is about to
// catch the bot's mouse, the mouse step that stretches that path instead.
func (that *botService) ChooseAction(state *game.GameState, bot game.PlayerID, timestamp int64) (game.GameAction, error) {
	pawns := state.Pawns(bot)
	opponent := bot.Opponent()

	var action *game.Action

	threat := state.Distance(state.Pawns(opponent).Cat, pawns.Mouse)
	if state.Config().Variant != game.VariantClassic && threat != -1 && threat <= fleeDistance {
		action = fleeStep(state, pawns.Mouse, state.Pawns(opponent).Cat)
	}

	if action == nil {
		action = chaseStep(state, pawns.Cat, state.CatGoal(bot))
	}

	if action == nil {
		return game.GameAction{}, ErrNoAvailableMoves
	}

	return game.GameAction{
		Kind:      game.KindMove,
		Move:      &game.Move{Actions: []game.Action{*action}},
		Player:    bot,
		Timestamp: timestamp,
	}, nil
}

// chaseStep returns the cat step minimizing the remaining path to the
// goal, preferring double steps since they cover more ground.
func chaseStep(state *game.GameState, cat, goal game.Cell) *game.Action {
	best := state.Distance(cat, goal)
	if best == -1 {
		return nil
	}

	var candidates []game.Cell
	for _, target := range stepTargets(state, cat) {
		d := state.Distance(target, goal)
		if d == -1 || d > best {
			continue
		}
		if d < best {
			best = d
			candidates = candidates[:0]
		}
		candidates = append(candidates, target)
	}

	if len(candidates) == 0 {
		return nil
	}

	target := candidates[rand.Intn(len(candidates))] //nolint: gosec // it's ok
	return &game.Action{Type: game.ActionCat, Target: target}
}

// fleeStep returns the mouse step maximizing the distance from the
// hunting cat, or nil when no step improves it.
func fleeStep(state *game.GameState, mouse, hunter game.Cell) *game.Action {
	best := state.Distance(hunter, mouse)

	var candidates []game.Cell
	for _, target := range stepTargets(state, mouse) {
		d := state.Distance(hunter, target)
		if d == -1 || d < best {
			continue
		}
		if d > best {
			best = d
			candidates = candidates[:0]
		}
		candidates = append(candidates, target)
	}

	if len(candidates) == 0 {
		return nil
	}

	target := candidates[rand.Intn(len(candidates))] //nolint: gosec // it's ok
	return &game.Action{Type: game.ActionMouse, Target: target}
}

// stepTargets enumerates the cells a pawn can legally step to: direct
// neighbors plus two-hop targets through an open intermediate cell.
func stepTargets(state *game.GameState, from game.Cell) []game.Cell {
	seen := map[game.Cell]bool{from: true}
	var targets []game.Cell

	for _, mid := range state.AccessibleNeighbors(from) {
		if !seen[mid] {
			seen[mid] = true
			targets = append(targets, mid)
		}
		for _, hop := range state.AccessibleNeighbors(mid) {
			if seen[hop] {
				continue
			}
			seen[hop] = true
			targets = append(targets, hop)
		}
	}

	return targets
}
