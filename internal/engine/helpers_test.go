package engine_test

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/racesim/internal/engine"
	"github.com/lox/racesim/internal/engine/rng"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func findRacer(eng *engine.Engine, idx int) *engine.Racer {
	for _, r := range eng.Racers {
		if r.Idx == idx {
			return r
		}
	}
	return nil
}

func mustEngine(t *testing.T, roster []engine.RosterEntry, board *engine.Board, rules engine.Rules, dice engine.DiceSource, registry *engine.AbilityRegistry) *engine.Engine {
	t.Helper()
	if registry == nil {
		registry = engine.NewAbilityRegistry()
	}
	eng, err := engine.NewEngine(roster, board, rules, dice, nil, agentStub{}, registry, testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

// agentStub is the deterministic default agent used by every test scenario;
// no test here exercises an interactive decision.
type agentStub struct{}

func (agentStub) MakeBooleanDecision(eng *engine.Engine, ctx engine.DecisionContext) bool { return true }
func (agentStub) MakeSelectionDecision(eng *engine.Engine, ctx engine.DecisionContext) any {
	if len(ctx.Options) == 0 {
		return nil
	}
	return ctx.Options[0]
}

// --- test abilities -------------------------------------------------------

// turnStartAction fires fn exactly once, the first time its owner's turn
// starts, then does nothing further. It is the generic driver used to
// exercise movement/warp/trip commands outside of the normal roll
// pipeline, the way a real ability would push them in reaction to
// TurnStartEvent.
type turnStartAction struct {
	name  string
	fired bool
	fn    func(eng *engine.Engine, owner *engine.Racer)
}

func (a *turnStartAction) Name() string                        { return a.name }
func (a *turnStartAction) Subscriptions() []engine.EventType    { return []engine.EventType{engine.EventTurnStart} }
func (a *turnStartAction) Execute(ev engine.Event, owner *engine.Racer, eng *engine.Engine, agent engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	ts, ok := ev.(engine.TurnStartEvent)
	if !ok || ts.RacerIdx != owner.Idx || a.fired {
		return engine.SkipTrigger, false
	}
	a.fired = true
	a.fn(eng, owner)
	return engine.SkipTrigger, false
}

func registerTurnStartAction(reg *engine.AbilityRegistry, name string, fn func(eng *engine.Engine, owner *engine.Racer)) {
	reg.Register(name, func() engine.Ability {
		return &turnStartAction{name: name, fn: fn}
	})
}

// rerollBelowAbility rerolls once if the locked-in roll is <= threshold,
// reacting to the roll-modification window.
type rerollBelowAbility struct {
	threshold int
	used      bool
}

func (a *rerollBelowAbility) Name() string { return "reroll_low" }
func (a *rerollBelowAbility) Subscriptions() []engine.EventType {
	return []engine.EventType{engine.EventRollModificationWindow}
}
func (a *rerollBelowAbility) Execute(ev engine.Event, owner *engine.Racer, eng *engine.Engine, agent engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	w, ok := ev.(engine.RollModificationWindowEvent)
	if !ok || w.RacerIdx != owner.Idx || a.used {
		return engine.SkipTrigger, false
	}
	if w.FinalValue <= a.threshold {
		a.used = true
		eng.TriggerReroll(owner.Idx)
	}
	return engine.SkipTrigger, false
}

// selfTrapAbility places a Lander "tile trap" at the owner's position at
// install time; the trap only fires while the owner is still actually
// standing there, checked live off engine state rather than baked in at
// registration — the mechanism the plan-then-commit atomicity test
// exercises.
type selfTrapAbility struct{}

func (selfTrapAbility) Name() string                     { return "self_trap" }
func (selfTrapAbility) Subscriptions() []engine.EventType { return nil }
func (selfTrapAbility) Execute(engine.Event, *engine.Racer, *engine.Engine, engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	return engine.SkipTrigger, false
}
func (selfTrapAbility) OnGain(owner *engine.Racer, eng *engine.Engine) {
	eng.Board.AddDynamicModifier(owner.Position, tileTrap{ownerIdx: owner.Idx})
}

// tileTrap trips any racer other than its owner landing on its tile,
// provided the owner is still actually standing there by the time the
// landing hook runs.
type tileTrap struct{ ownerIdx int }

func (t tileTrap) Name() string     { return "tile_trap" }
func (t tileTrap) OwnerIdx() int    { return t.ownerIdx }
func (t tileTrap) Priority() int    { return 0 }
func (t tileTrap) OnLand(tile int, racer *engine.Racer, eng *engine.Engine) []*engine.AbilityTriggeredEvent {
	if racer.Idx == t.ownerIdx {
		return nil
	}
	owner := findRacer(eng, t.ownerIdx)
	if owner == nil || owner.Position != tile {
		return nil
	}
	eng.PushTripCmd(engine.TripCmd{
		TargetIdx:      racer.Idx,
		Source:         "tile_trap",
		Phase:          engine.PhaseReaction,
		Emit:           engine.EmitNever,
		ResponsibleIdx: t.ownerIdx,
	})
	return nil
}

// unconditionalTrap trips anyone landing on its tile, no owner exception.
type unconditionalTrap struct{}

func (unconditionalTrap) Name() string  { return "trap" }
func (unconditionalTrap) OwnerIdx() int { return -1 }
func (unconditionalTrap) Priority() int { return 0 }
func (unconditionalTrap) OnLand(tile int, racer *engine.Racer, eng *engine.Engine) []*engine.AbilityTriggeredEvent {
	eng.PushTripCmd(engine.TripCmd{
		TargetIdx:      racer.Idx,
		Source:         "trap",
		Phase:          engine.PhaseReaction,
		Emit:           engine.EmitNever,
		ResponsibleIdx: -1,
	})
	return nil
}

// ownerImmuneBlocker redirects any non-owner approaching its tile to
// redirectTo; the owner passes through untouched.
type ownerImmuneBlocker struct {
	ownerIdx   int
	redirectTo int
}

func (b ownerImmuneBlocker) Name() string  { return "blocker" }
func (b ownerImmuneBlocker) OwnerIdx() int { return b.ownerIdx }
func (b ownerImmuneBlocker) Priority() int { return 0 }
func (b ownerImmuneBlocker) OnApproach(tile int, mover *engine.Racer, eng *engine.Engine) (int, []*engine.AbilityTriggeredEvent) {
	if mover.Idx == b.ownerIdx {
		return tile, nil
	}
	return b.redirectTo, nil
}

// pushBackOnPassing reacts to PassingEvent by pushing the victim back two
// tiles, clamped at 0.
type pushBackOnPassing struct{}

func (pushBackOnPassing) Name() string { return "push_back" }
func (pushBackOnPassing) Subscriptions() []engine.EventType {
	return []engine.EventType{engine.EventPassing}
}
func (pushBackOnPassing) Execute(ev engine.Event, owner *engine.Racer, eng *engine.Engine, agent engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	p, ok := ev.(engine.PassingEvent)
	if !ok || p.MoverIdx != owner.Idx {
		return engine.SkipTrigger, false
	}
	eng.PushMoveCmd(engine.MoveCmd{
		TargetIdx:      p.VictimIdx,
		Distance:       -2,
		Source:         "push_back",
		Phase:          engine.PhaseReaction,
		Emit:           engine.EmitNever,
		ResponsibleIdx: owner.Idx,
	})
	return engine.SkipTrigger, false
}

// echoAbility reacts to any AbilityTriggeredEvent not sourced by itself by
// emitting its own trigger right back — a minimal, deliberately
// state-free mutual-trigger pair used to exercise cycle detection.
// Because it mutates no racer/board state, the engine's per-turn state
// hash recurs on the very next dispatch, which is the faithful (if fast)
// consequence of a hash that covers state only, never the event queue.
type echoAbility struct{ name string }

func (a echoAbility) Name() string                     { return a.name }
func (a echoAbility) Subscriptions() []engine.EventType { return []engine.EventType{engine.EventAbilityTriggered} }
func (a echoAbility) Execute(ev engine.Event, owner *engine.Racer, eng *engine.Engine, agent engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	at, ok := ev.(engine.AbilityTriggeredEvent)
	if !ok || at.AbilityName == a.name {
		return engine.SkipTrigger, false
	}
	return &engine.AbilityTriggeredEvent{
		AbilityName:    a.name,
		OwnerIdx:       owner.Idx,
		ResponsibleIdx: owner.Idx,
		Source:         a.name,
	}, true
}

// noisyAbility kicks off a reaction chain on every one of its owner's turn
// starts.
type noisyAbility struct{}

func (noisyAbility) Name() string                     { return "noisy" }
func (noisyAbility) Subscriptions() []engine.EventType { return []engine.EventType{engine.EventTurnStart} }
func (noisyAbility) Execute(ev engine.Event, owner *engine.Racer, eng *engine.Engine, agent engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	ts, ok := ev.(engine.TurnStartEvent)
	if !ok || ts.RacerIdx != owner.Idx {
		return engine.SkipTrigger, false
	}
	return &engine.AbilityTriggeredEvent{
		AbilityName:    "noisy",
		OwnerIdx:       owner.Idx,
		ResponsibleIdx: owner.Idx,
		Source:         "noisy",
	}, true
}

var _ engine.DiceSource = (*rng.Scripted)(nil)
