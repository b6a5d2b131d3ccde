package abilities

import "github.com/lox/racesim/internal/engine"

// babaYagaTrap is the board-side Lander: anyone but its owner who lands
// on the tile gets tripped. Grounded on the "someone else moved onto my
// tile" half of the Python reference's BabaYagaTrip.
type babaYagaTrap struct {
	ownerIdx int
}

func (m babaYagaTrap) Name() string  { return "baba_yaga_trap" }
func (m babaYagaTrap) OwnerIdx() int { return m.ownerIdx }
func (m babaYagaTrap) Priority() int { return 10 }

func (m babaYagaTrap) OnLand(tile int, racer *engine.Racer, eng *engine.Engine) []*engine.AbilityTriggeredEvent {
	if racer.Idx == m.ownerIdx {
		return nil
	}
	eng.PushTripCmd(engine.TripCmd{
		TargetIdx:      racer.Idx,
		Source:         "baba_yaga",
		Phase:          engine.PhaseReaction,
		Emit:           engine.EmitAfterResolution,
		ResponsibleIdx: m.ownerIdx,
	})
	return nil
}

// babaYaga is the other half: when she herself lands somewhere (by move
// or warp), everyone else already standing there gets tripped too, and
// her trap relocates to the new tile.
type babaYaga struct{}

func (babaYaga) Name() string { return "baba_yaga" }
func (babaYaga) Subscriptions() []engine.EventType {
	return []engine.EventType{engine.EventPostMove, engine.EventPostWarp}
}

func (babaYaga) Execute(ev engine.Event, owner *engine.Racer, eng *engine.Engine, agent engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	var racerIdx, start, end int
	switch e := ev.(type) {
	case engine.PostMoveEvent:
		racerIdx, start, end = e.RacerIdx, e.Start, e.End
	case engine.PostWarpEvent:
		racerIdx, start, end = e.RacerIdx, e.Start, e.End
	default:
		return engine.SkipTrigger, false
	}
	if racerIdx != owner.Idx {
		return engine.SkipTrigger, false
	}

	eng.Board.RemoveDynamicModifier(start, "baba_yaga_trap", owner.Idx)
	if end > 0 {
		eng.Board.AddDynamicModifier(end, babaYagaTrap{ownerIdx: owner.Idx})
	}

	for _, other := range eng.Racers {
		if other.Idx == owner.Idx || !other.Active() || other.Position != end {
			continue
		}
		eng.PushTripCmd(engine.TripCmd{
			TargetIdx:      other.Idx,
			Source:         "baba_yaga",
			Phase:          engine.PhaseReaction,
			Emit:           engine.EmitAfterResolution,
			ResponsibleIdx: owner.Idx,
		})
	}

	return engine.SkipTrigger, false
}

func (babaYaga) OnGain(owner *engine.Racer, eng *engine.Engine) {
	if owner.Position > 0 {
		eng.Board.AddDynamicModifier(owner.Position, babaYagaTrap{ownerIdx: owner.Idx})
	}
}

// OnLoss scans every tile rather than trusting owner.Position, mirroring
// hugeBaby's rationale.
func (babaYaga) OnLoss(owner *engine.Racer, eng *engine.Engine) {
	for tile := 0; tile <= eng.Board.Length; tile++ {
		eng.Board.RemoveDynamicModifier(tile, "baba_yaga_trap", owner.Idx)
	}
}
