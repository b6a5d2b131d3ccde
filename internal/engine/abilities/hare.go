package abilities

import "github.com/lox/racesim/internal/engine"

// hareSpeed is a RollModifier: it adds a flat +2 to its owner's own roll,
// leaving every other racer's roll untouched. Grounded on the Python
// reference's HareSpeed RacerModifier.
type hareSpeed struct {
	ownerIdx int
}

func (m hareSpeed) Name() string  { return "hare_speed" }
func (m hareSpeed) OwnerIdx() int { return m.ownerIdx }
func (m hareSpeed) Priority() int { return 10 }

func (m hareSpeed) ModifyRoll(q *engine.MoveDistanceQuery, owner *engine.Racer, eng *engine.Engine, rolling *engine.Racer) []*engine.AbilityTriggeredEvent {
	if rolling.Idx != m.ownerIdx {
		return nil
	}
	q.AddDelta("hare_speed", 2)
	return []*engine.AbilityTriggeredEvent{{
		AbilityName:    "hare_speed",
		OwnerIdx:       m.ownerIdx,
		ResponsibleIdx: m.ownerIdx,
		Source:         "hare_speed",
	}}
}

// hare grants itself a +2 roll bonus for as long as it's installed; the
// bonus is withdrawn the moment the ability is lost (finish, elimination,
// or copycat-style replacement).
type hare struct{}

func (hare) Name() string                     { return "hare" }
func (hare) Subscriptions() []engine.EventType { return nil }
func (hare) Execute(engine.Event, *engine.Racer, *engine.Engine, engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	return engine.SkipTrigger, false
}
func (hare) OnGain(owner *engine.Racer, eng *engine.Engine) {
	eng.AddRacerModifier(owner.Idx, hareSpeed{ownerIdx: owner.Idx})
}
func (hare) OnLoss(owner *engine.Racer, eng *engine.Engine) {
	eng.RemoveRacerModifier(owner.Idx, "hare_speed", owner.Idx)
}
