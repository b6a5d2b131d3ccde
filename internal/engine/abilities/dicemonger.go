package abilities

import "github.com/lox/racesim/internal/engine"

// dicemonger grants every racer, itself included, a reroll they can invoke
// once per turn, profiting the Dicemonger with +1 move whenever someone
// else uses it. Grounded on the Python reference's DicemongerRerollManager
// /DicemongerRerollAction pair; here the grant-time source attribution
// that the Python dataclass carries as a field lives in the engine's
// ancillary table instead, since a registry-constructed Ability can't be
// parameterized at installation time.
type dicemonger struct{}

func (dicemonger) Name() string                     { return "dicemonger" }
func (dicemonger) Subscriptions() []engine.EventType { return nil }
func (dicemonger) Execute(engine.Event, *engine.Racer, *engine.Engine, engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	return engine.SkipTrigger, false
}

func (dicemonger) OnGain(owner *engine.Racer, eng *engine.Engine) {
	for _, r := range eng.Racers {
		if err := eng.GrantAbility(r.Idx, "dicemonger_deal", owner.Idx); err != nil {
			continue
		}
		eng.AncillarySet("dicemonger_deal", r.Idx, owner.Idx)
	}
}

func (dicemonger) OnLoss(owner *engine.Racer, eng *engine.Engine) {
	for _, r := range eng.Racers {
		eng.RevokeAbility(r.Idx, "dicemonger_deal", owner.Idx)
	}
}

// dicemongerDeal is the granted reroll action itself: usable once per
// turn, it forces a fresh roll for its holder and pays the granting
// Dicemonger +1 move whenever the holder isn't the Dicemonger itself.
type dicemongerDeal struct {
	usedThisTurn bool
}

func (a *dicemongerDeal) Name() string { return "dicemonger_deal" }
func (a *dicemongerDeal) Subscriptions() []engine.EventType {
	return []engine.EventType{engine.EventTurnStart, engine.EventRollModificationWindow}
}

func (a *dicemongerDeal) Execute(ev engine.Event, owner *engine.Racer, eng *engine.Engine, agent engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	switch e := ev.(type) {
	case engine.TurnStartEvent:
		if e.RacerIdx == owner.Idx {
			a.usedThisTurn = false
		}
		return engine.SkipTrigger, false

	case engine.RollModificationWindowEvent:
		if e.RacerIdx != owner.Idx || a.usedThisTurn {
			return engine.SkipTrigger, false
		}
		shouldReroll := agent.MakeBooleanDecision(eng, engine.DecisionContext{
			Ability:        "dicemonger_deal",
			SourceRacerIdx: owner.Idx,
		})
		if !shouldReroll {
			return engine.SkipTrigger, false
		}
		a.usedThisTurn = true
		eng.TriggerReroll(owner.Idx)

		if src, ok := eng.AncillaryGet("dicemonger_deal", owner.Idx); ok {
			if sourceIdx, ok := src.(int); ok && sourceIdx != owner.Idx {
				eng.PushMoveCmd(engine.MoveCmd{
					TargetIdx:      sourceIdx,
					Distance:       1,
					Source:         "dicemonger_deal",
					Phase:          engine.PhaseReaction,
					Emit:           engine.EmitNever,
					ResponsibleIdx: sourceIdx,
				})
			}
		}

		return &engine.AbilityTriggeredEvent{
			AbilityName:    "dicemonger_deal",
			OwnerIdx:       owner.Idx,
			ResponsibleIdx: owner.Idx,
			Source:         "dicemonger_deal",
		}, true

	default:
		return engine.SkipTrigger, false
	}
}
