package abilities

import "github.com/lox/racesim/internal/engine"

// mastermind predicts a winner on its first turn, then reacts once that
// prediction is confirmed: if the house rule HRMastermindSteal1st is on
// it bumps the correctly-predicted winner to 2nd and takes 1st itself via
// MarkFinishedAt's explicit-rank path; otherwise it simply claims 2nd the
// moment its prediction lands. Grounded on the Python reference's
// AbilityMastermindPredict.
type mastermind struct {
	predicted    bool
	predictedIdx int
}

func (m *mastermind) Name() string { return "mastermind" }
func (m *mastermind) Subscriptions() []engine.EventType {
	return []engine.EventType{engine.EventTurnStart, engine.EventRacerFinished}
}

func (m *mastermind) Execute(ev engine.Event, owner *engine.Racer, eng *engine.Engine, agent engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	switch e := ev.(type) {
	case engine.TurnStartEvent:
		if e.RacerIdx != owner.Idx || m.predicted {
			return engine.SkipTrigger, false
		}
		var options []any
		for _, r := range eng.Racers {
			if r.Idx != owner.Idx && r.Active() {
				options = append(options, r.Idx)
			}
		}
		if len(options) == 0 {
			return engine.SkipTrigger, false
		}
		choice := agent.MakeSelectionDecision(eng, engine.DecisionContext{
			Ability:        "mastermind",
			SourceRacerIdx: owner.Idx,
			Options:        options,
		})
		idx, ok := choice.(int)
		if !ok {
			return engine.SkipTrigger, false
		}
		m.predicted = true
		m.predictedIdx = idx
		return &engine.AbilityTriggeredEvent{
			AbilityName:    "mastermind",
			OwnerIdx:       owner.Idx,
			ResponsibleIdx: owner.Idx,
			Source:         "mastermind",
			Payload:        idx,
		}, true

	case engine.RacerFinishedEvent:
		if e.Rank != 1 || !m.predicted || e.RacerIdx != m.predictedIdx {
			return engine.SkipTrigger, false
		}
		if eng.Rules.HRMastermindSteal1st {
			if winner := racerByIdx(eng, e.RacerIdx); winner != nil {
				eng.MarkFinishedAt(winner, 2)
			}
			eng.MarkFinishedAt(owner, 1)
		} else {
			eng.MarkFinishedAt(owner, 2)
		}
		return &engine.AbilityTriggeredEvent{
			AbilityName:    "mastermind",
			OwnerIdx:       owner.Idx,
			ResponsibleIdx: owner.Idx,
			Source:         "mastermind",
		}, true

	default:
		return engine.SkipTrigger, false
	}
}

func racerByIdx(eng *engine.Engine, idx int) *engine.Racer {
	for _, r := range eng.Racers {
		if r.Idx == idx {
			return r
		}
	}
	return nil
}
