package abilities

import "github.com/lox/racesim/internal/engine"

// leaptoadJump is a DestinationCalculator: it walks the move tile by
// tile, skipping any tile occupied by another active racer without
// spending a step on it, so the owner never lands on (or pays distance
// for) an occupied space. Grounded on the Python reference's
// LeaptoadJumpModifier.
type leaptoadJump struct {
	ownerIdx int
}

func (m leaptoadJump) Name() string  { return "leaptoad_jump" }
func (m leaptoadJump) OwnerIdx() int { return m.ownerIdx }
func (m leaptoadJump) Priority() int { return 10 }

func (m leaptoadJump) CalcDestination(start, distance int, mover *engine.Racer, eng *engine.Engine) (int, []*engine.AbilityTriggeredEvent) {
	direction := 1
	if distance < 0 {
		direction = -1
	}
	remaining := distance * direction

	var triggers []*engine.AbilityTriggeredEvent
	current := start
	for remaining > 0 {
		current += direction
		for {
			occupant := occupantAt(eng, current, mover.Idx)
			if occupant == nil {
				break
			}
			current += direction
			triggers = append(triggers, &engine.AbilityTriggeredEvent{
				AbilityName:    "leaptoad_jump",
				OwnerIdx:       m.ownerIdx,
				ResponsibleIdx: m.ownerIdx,
				Source:         "leaptoad_jump",
				Payload:        occupant.Idx,
			})
		}
		remaining--
	}
	return current, triggers
}

// occupantAt returns the first active racer other than exceptIdx standing
// on tile, or nil.
func occupantAt(eng *engine.Engine, tile, exceptIdx int) *engine.Racer {
	for _, r := range eng.Racers {
		if r.Idx == exceptIdx || !r.Active() {
			continue
		}
		if r.Position == tile {
			return r
		}
	}
	return nil
}

// leaptoad installs/removes its jump modifier alongside the ability
// itself, so the jump behavior always tracks ownership exactly.
type leaptoad struct{}

func (leaptoad) Name() string                     { return "leaptoad" }
func (leaptoad) Subscriptions() []engine.EventType { return nil }
func (leaptoad) Execute(engine.Event, *engine.Racer, *engine.Engine, engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	return engine.SkipTrigger, false
}
func (leaptoad) OnGain(owner *engine.Racer, eng *engine.Engine) {
	eng.AddRacerModifier(owner.Idx, leaptoadJump{ownerIdx: owner.Idx})
}
func (leaptoad) OnLoss(owner *engine.Racer, eng *engine.Engine) {
	eng.RemoveRacerModifier(owner.Idx, "leaptoad_jump", owner.Idx)
}
