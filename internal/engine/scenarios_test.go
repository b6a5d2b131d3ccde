package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/racesim/internal/engine"
	"github.com/lox/racesim/internal/engine/rng"
)

// Scenario 1: a reroll ability forces a fresh roll when the locked-in
// value is too low; the stale first roll's downstream events are
// silently dropped and the roll serial only ever increases.
func TestScenario_RerollInvalidation(t *testing.T) {
	registry := engine.NewAbilityRegistry()
	registry.Register("reroll_low", func() engine.Ability { return &rerollBelowAbility{threshold: 3} })

	roster := []engine.RosterEntry{
		{Idx: 0, Name: "A", Start: 0, Abilities: []string{"reroll_low"}},
		{Idx: 1, Name: "B", Start: 0},
	}
	board := engine.NewBoard(30, nil)
	dice := rng.NewScripted([]int{1, 6})
	eng := mustEngine(t, roster, board, engine.DefaultRules(), dice, registry)

	eng.Run(1)

	require.False(t, eng.Aborted())
	a := findRacer(eng, 0)
	require.Equal(t, 6, a.Position)
	require.Equal(t, int64(2), eng.Roll.SerialID)
	require.Equal(t, 1, a.RerollCount)
}

// Scenario 2: a simultaneous warp swapping two racers commits both
// positions atomically before any landing hook runs, so a trap tied to
// one racer's current tile never fires against the other mid-swap.
func TestScenario_PlanThenCommitSwap(t *testing.T) {
	registry := engine.NewAbilityRegistry()
	registry.Register("self_trap", func() engine.Ability { return selfTrapAbility{} })
	registerTurnStartAction(registry, "swap_on_turnstart", func(eng *engine.Engine, owner *engine.Racer) {
		owner.MainMoveConsumed = true
		eng.PushSimultaneousWarpCmd(engine.SimultaneousWarpCmd{
			Warps: []engine.WarpSpec{
				{TargetIdx: 0, Destination: 10},
				{TargetIdx: 1, Destination: 0},
			},
			Source:         "swap",
			Phase:          engine.PhaseSystem,
			Emit:           engine.EmitNever,
			ResponsibleIdx: 0,
		})
	})

	roster := []engine.RosterEntry{
		{Idx: 0, Name: "A", Start: 0, Abilities: []string{"swap_on_turnstart"}},
		{Idx: 1, Name: "B", Start: 10, Abilities: []string{"self_trap"}},
	}
	board := engine.NewBoard(30, nil)
	dice := rng.NewScripted([]int{})
	eng := mustEngine(t, roster, board, engine.DefaultRules(), dice, registry)

	eng.Run(1)

	require.False(t, eng.Aborted())
	a := findRacer(eng, 0)
	b := findRacer(eng, 1)
	require.Equal(t, 10, a.Position)
	require.Equal(t, 0, b.Position)
	require.False(t, a.Tripped)
	require.False(t, b.Tripped)
}

// Scenario 3: an approach blocker redirects a non-owner into a trap
// tile, which then trips the redirected racer; the blocker's owner
// would have passed through untouched.
func TestScenario_BlockAndTrip(t *testing.T) {
	board := engine.NewBoard(30, map[int][]engine.Modifier{
		4: {unconditionalTrap{}},
		5: {ownerImmuneBlocker{ownerIdx: 1, redirectTo: 4}},
	})
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "X", Start: 0},
		{Idx: 1, Name: "Y", Start: 5},
	}
	dice := rng.NewScripted([]int{5})
	eng := mustEngine(t, roster, board, engine.DefaultRules(), dice, nil)

	eng.Run(1)

	require.False(t, eng.Aborted())
	x := findRacer(eng, 0)
	y := findRacer(eng, 1)
	require.Equal(t, 4, x.Position)
	require.True(t, x.Tripped)
	require.Equal(t, 5, y.Position)
	require.False(t, y.Tripped)
}

// Scenario 4: a passing ability pushes every racer it passes back two
// tiles (clamped at 0), while the mover's own position is unaffected by
// its own reaction.
func TestScenario_PassingPushback(t *testing.T) {
	registry := engine.NewAbilityRegistry()
	registry.Register("push_back", func() engine.Ability { return pushBackOnPassing{} })

	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Mover", Start: 0, Abilities: []string{"push_back"}},
		{Idx: 1, Name: "Victim1", Start: 2},
		{Idx: 2, Name: "Victim2", Start: 4},
	}
	board := engine.NewBoard(30, nil)
	dice := rng.NewScripted([]int{6})
	eng := mustEngine(t, roster, board, engine.DefaultRules(), dice, registry)

	eng.Run(1)

	require.False(t, eng.Aborted())
	mover := findRacer(eng, 0)
	v1 := findRacer(eng, 1)
	v2 := findRacer(eng, 2)
	require.Equal(t, 6, mover.Position)
	require.Equal(t, 0, v1.Position)
	require.Equal(t, 2, v2.Position)
}

// Scenario 5: two abilities that echo any trigger they didn't source
// would mutually re-fire forever; since neither reaction mutates
// racer/board state, the per-turn hash recurs and the engine aborts the
// turn cleanly instead of looping. A later turn still proceeds
// normally.
func TestScenario_CycleAbort(t *testing.T) {
	registry := engine.NewAbilityRegistry()
	registry.Register("noisy", func() engine.Ability { return noisyAbility{} })
	registry.Register("echo_1", func() engine.Ability { return echoAbility{name: "echo_1"} })
	registry.Register("echo_2", func() engine.Ability { return echoAbility{name: "echo_2"} })

	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Noisy", Start: 0, Abilities: []string{"noisy"}},
		{Idx: 1, Name: "Echo1", Start: 0, Abilities: []string{"echo_1"}},
		{Idx: 2, Name: "Echo2", Start: 0, Abilities: []string{"echo_2"}},
	}
	board := engine.NewBoard(30, nil)
	dice := rng.NewScripted([]int{3, 3, 3})
	eng := mustEngine(t, roster, board, engine.DefaultRules(), dice, registry)

	eng.Run(1)
	require.True(t, eng.Aborted())

	eng.Run(2)
	require.False(t, eng.Aborted())
}

// Scenario 6: once a racer is eliminated, a lone remaining non-finisher
// is auto-finished into the open rank the moment the race's active
// field drops to one.
func TestScenario_SoleSurvivor(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "M", Start: 3},
		{Idx: 1, Name: "N", Start: 3},
		{Idx: 2, Name: "O", Start: 1},
	}
	board := engine.NewBoard(5, nil)
	dice := rng.NewScripted([]int{5})
	eng := mustEngine(t, roster, board, engine.DefaultRules(), dice, nil)

	eng.EliminateRacer(findRacer(eng, 1))
	eng.Run(1)

	require.False(t, eng.RaceActive)
	standings := eng.Standings()
	require.Len(t, standings, 3)

	byIdx := map[int]engine.StandingEntry{}
	for _, s := range standings {
		byIdx[s.RacerIdx] = s
	}
	require.Equal(t, 1, byIdx[0].Rank)
	require.True(t, byIdx[1].Eliminated)
	require.Equal(t, 0, byIdx[1].Rank)
	require.Equal(t, 2, byIdx[2].Rank)
}
