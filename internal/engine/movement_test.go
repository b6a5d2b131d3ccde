package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/racesim/internal/engine"
	"github.com/lox/racesim/internal/engine/rng"
)

// probeApproacher records whether it was ever consulted, used to prove a
// zero-distance move never enters the movement pipeline at all.
type probeApproacher struct{ called *bool }

func (probeApproacher) Name() string     { return "probe" }
func (probeApproacher) OwnerIdx() int     { return -1 }
func (probeApproacher) Priority() int     { return 0 }
func (p probeApproacher) OnApproach(tile int, mover *engine.Racer, eng *engine.Engine) (int, []*engine.AbilityTriggeredEvent) {
	*p.called = true
	return tile, nil
}

func TestMovement_ZeroDistanceIsTrueNoOp(t *testing.T) {
	registry := engine.NewAbilityRegistry()
	called := false
	registerTurnStartAction(registry, "noop_move", func(eng *engine.Engine, owner *engine.Racer) {
		eng.PushMoveCmd(engine.MoveCmd{
			TargetIdx:      owner.Idx,
			Distance:       0,
			Source:         "noop_move",
			Phase:          engine.PhaseReaction,
			Emit:           engine.EmitAfterResolution,
			ResponsibleIdx: owner.Idx,
		})
	})

	board := engine.NewBoard(30, map[int][]engine.Modifier{
		0: {probeApproacher{called: &called}},
	})
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "A", Start: 0, Abilities: []string{"noop_move"}},
	}
	dice := rng.NewScripted([]int{1})
	eng := mustEngine(t, roster, board, engine.DefaultRules(), dice, registry)

	eng.Run(1)

	require.False(t, eng.Aborted())
	require.False(t, called, "zero-distance move must never enter the resolution pipeline")
	a := findRacer(eng, 0)
	require.Equal(t, 1, a.Position, "the turn's own roll-driven move should still happen")
}

func TestMovement_NegativeDistanceClampsAtZero(t *testing.T) {
	registry := engine.NewAbilityRegistry()
	registerTurnStartAction(registry, "push_far_back", func(eng *engine.Engine, owner *engine.Racer) {
		owner.MainMoveConsumed = true
		eng.PushMoveCmd(engine.MoveCmd{
			TargetIdx:      owner.Idx,
			Distance:       -5,
			Source:         "push_far_back",
			Phase:          engine.PhaseReaction,
			Emit:           engine.EmitNever,
			ResponsibleIdx: owner.Idx,
		})
	})

	roster := []engine.RosterEntry{
		{Idx: 0, Name: "A", Start: 2, Abilities: []string{"push_far_back"}},
	}
	board := engine.NewBoard(30, nil)
	dice := rng.NewScripted([]int{})
	eng := mustEngine(t, roster, board, engine.DefaultRules(), dice, registry)

	eng.Run(1)

	require.False(t, eng.Aborted())
	a := findRacer(eng, 0)
	require.Equal(t, 0, a.Position)
}

func TestMovement_RollSerialMonotonicAcrossTurns(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "A", Start: 0},
		{Idx: 1, Name: "B", Start: 0},
		{Idx: 2, Name: "C", Start: 0},
	}
	board := engine.NewBoard(200, nil)
	dice := rng.NewScripted([]int{2, 3, 1, 4, 2, 5})
	eng := mustEngine(t, roster, board, engine.DefaultRules(), dice, nil)

	var lastSerial int64
	for i := 0; i < 6; i++ {
		eng.Run(1)
		require.False(t, eng.Aborted())
		require.Greater(t, eng.Roll.SerialID, lastSerial)
		lastSerial = eng.Roll.SerialID
	}
	require.Equal(t, int64(6), lastSerial)
}

func TestMovement_DeterministicAcrossIdenticalEngines(t *testing.T) {
	build := func() *engine.Engine {
		roster := []engine.RosterEntry{
			{Idx: 0, Name: "A", Start: 0},
			{Idx: 1, Name: "B", Start: 0},
			{Idx: 2, Name: "C", Start: 0},
		}
		board := engine.NewBoard(25, map[int][]engine.Modifier{
			5: {unconditionalTrap{}},
		})
		dice := rng.NewScripted([]int{4, 6, 3, 5, 2, 6, 4, 1, 6})
		return mustEngine(t, roster, board, engine.DefaultRules(), dice, nil)
	}

	e1 := build()
	e2 := build()
	e1.Run(9)
	e2.Run(9)

	for idx := 0; idx < 3; idx++ {
		r1 := findRacer(e1, idx)
		r2 := findRacer(e2, idx)
		require.Equal(t, r1.Position, r2.Position, "racer %d position diverged", idx)
		require.Equal(t, r1.Tripped, r2.Tripped, "racer %d tripped state diverged", idx)
		require.Equal(t, r1.Finished, r2.Finished, "racer %d finished state diverged", idx)
	}
	require.Equal(t, e1.Roll.SerialID, e2.Roll.SerialID)
	require.Equal(t, e1.RaceActive, e2.RaceActive)
}
