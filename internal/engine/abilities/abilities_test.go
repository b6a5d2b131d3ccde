package abilities_test

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/racesim/internal/engine"
	"github.com/lox/racesim/internal/engine/abilities"
	"github.com/lox/racesim/internal/engine/rng"
)

// agreeableAgent always rerolls and always picks the first offered
// option, giving every ability under test a deterministic decision path.
type agreeableAgent struct{}

func (agreeableAgent) MakeBooleanDecision(eng *engine.Engine, ctx engine.DecisionContext) bool {
	return true
}
func (agreeableAgent) MakeSelectionDecision(eng *engine.Engine, ctx engine.DecisionContext) any {
	if len(ctx.Options) == 0 {
		return nil
	}
	return ctx.Options[0]
}

func testLogger() *log.Logger { return log.New(io.Discard) }

func findRacer(eng *engine.Engine, idx int) *engine.Racer {
	for _, r := range eng.Racers {
		if r.Idx == idx {
			return r
		}
	}
	return nil
}

func newTestEngine(t *testing.T, roster []engine.RosterEntry, board *engine.Board, rules engine.Rules, dice engine.DiceSource) *engine.Engine {
	t.Helper()
	registry := engine.NewAbilityRegistry()
	abilities.Register(registry)
	eng, err := engine.NewEngine(roster, board, rules, dice, nil, agreeableAgent{}, registry, testLogger())
	require.NoError(t, err)
	return eng
}

func TestHare_AddsPlusTwoToOwnRollOnly(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Hare", Start: 0, Abilities: []string{"hare"}},
		{Idx: 1, Name: "Tortoise", Start: 0},
	}
	board := engine.NewBoard(50, nil)
	dice := rng.NewScripted([]int{3, 3})
	eng := newTestEngine(t, roster, board, engine.DefaultRules(), dice)

	eng.Run(2)

	require.False(t, eng.Aborted())
	require.Equal(t, 5, findRacer(eng, 0).Position, "hare's own roll gets +2")
	require.Equal(t, 3, findRacer(eng, 1).Position, "tortoise's roll is untouched")
}

func TestLeaptoad_SkipsOccupiedTiles(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Leaptoad", Start: 0, Abilities: []string{"leaptoad"}},
		{Idx: 1, Name: "Blocker", Start: 2},
		{Idx: 2, Name: "Other", Start: 0},
	}
	board := engine.NewBoard(50, nil)
	dice := rng.NewScripted([]int{3})
	eng := newTestEngine(t, roster, board, engine.DefaultRules(), dice)

	eng.Run(1)

	require.False(t, eng.Aborted())
	// A 3-tile move from 0 normally lands on 3, but tile 2 is occupied so
	// the jump adds one extra free step, landing on 4.
	require.Equal(t, 4, findRacer(eng, 0).Position)
}

func TestHugeBaby_BlocksOthersButLetsOwnerThrough(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Baby", Start: 5, Abilities: []string{"huge_baby"}},
		{Idx: 1, Name: "Mover", Start: 2},
	}
	board := engine.NewBoard(50, nil)
	dice := rng.NewScripted([]int{0, 3})
	eng := newTestEngine(t, roster, board, engine.DefaultRules(), dice)

	eng.Run(2)

	require.False(t, eng.Aborted())
	require.Equal(t, 4, findRacer(eng, 1).Position, "blocked one short of the baby's tile")
}

func TestDicemonger_GrantsRerollAndProfits(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Dicemonger", Start: 0, Abilities: []string{"dicemonger"}},
		{Idx: 1, Name: "Other", Start: 0},
	}
	board := engine.NewBoard(50, nil)
	// Dicemonger is also granted its own deal (matching the Python
	// reference, which grants to everyone including the Dicemonger
	// itself) and the agreeableAgent always rerolls once per turn, so
	// every racer's turn burns two scripted rolls: the discarded original
	// and the kept reroll. Turn 1 (Dicemonger): base 1 (discarded),
	// reroll 3 (kept, no self-profit). Turn 2 (Other): base 1
	// (discarded), reroll 5 (kept); Dicemonger profits +1 since the
	// reroller wasn't the Dicemonger itself.
	dice := rng.NewScripted([]int{1, 3, 1, 5})
	eng := newTestEngine(t, roster, board, engine.DefaultRules(), dice)

	eng.Run(2)

	require.False(t, eng.Aborted())
	other := findRacer(eng, 1)
	dicemongerRacer := findRacer(eng, 0)
	require.Equal(t, 5, other.Position, "other's roll was rerolled to its second scripted value")
	require.Equal(t, 3+1, dicemongerRacer.Position, "dicemonger profits +1 whenever someone else uses the granted reroll")
}

func TestCopycat_AdoptsLeadersAbility(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Copy", Start: 0, Abilities: []string{"copycat"}},
		{Idx: 1, Name: "Leader", Start: 10, Abilities: []string{"hare"}},
	}
	board := engine.NewBoard(50, nil)
	dice := rng.NewScripted([]int{1, 1, 1})
	eng := newTestEngine(t, roster, board, engine.DefaultRules(), dice)

	eng.Run(1)

	require.False(t, eng.Aborted())
	copyRacer := findRacer(eng, 0)
	_, hasHare := copyRacer.Abilities["hare"]
	require.True(t, hasHare, "copycat should have adopted the leader's hare ability")
	_, stillHasCopycat := copyRacer.Abilities["copycat"]
	require.True(t, stillHasCopycat)
}

func TestMastermind_ClaimsSecondWhenPredictionCorrect(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Mastermind", Start: 0, Abilities: []string{"mastermind"}},
		{Idx: 1, Name: "Favorite", Start: 48},
	}
	board := engine.NewBoard(50, nil)
	dice := rng.NewScripted([]int{1, 5})
	eng := newTestEngine(t, roster, board, engine.DefaultRules(), dice)

	eng.Run(2)

	require.False(t, eng.Aborted())
	favorite := findRacer(eng, 1)
	mastermindRacer := findRacer(eng, 0)
	require.True(t, favorite.Finished)
	require.Equal(t, 1, favorite.FinishRank)
	require.True(t, mastermindRacer.Finished)
	require.Equal(t, 2, mastermindRacer.FinishRank)
}

func TestMastermind_StealsFirstUnderHouseRule(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Mastermind", Start: 0, Abilities: []string{"mastermind"}},
		{Idx: 1, Name: "Favorite", Start: 48},
	}
	board := engine.NewBoard(50, nil)
	rules := engine.DefaultRules()
	rules.HRMastermindSteal1st = true
	dice := rng.NewScripted([]int{1, 5})
	eng := newTestEngine(t, roster, board, rules, dice)

	eng.Run(2)

	require.False(t, eng.Aborted())
	favorite := findRacer(eng, 1)
	mastermindRacer := findRacer(eng, 0)
	require.Equal(t, 2, favorite.FinishRank, "predicted winner gets bumped to 2nd")
	require.Equal(t, 1, mastermindRacer.FinishRank, "mastermind steals 1st")
}

func TestBabaYaga_TripsWhoeverLandsOnHerTile(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Baba", Start: 5, Abilities: []string{"baba_yaga"}},
		{Idx: 1, Name: "Victim", Start: 2},
	}
	board := engine.NewBoard(50, nil)
	dice := rng.NewScripted([]int{0, 3})
	eng := newTestEngine(t, roster, board, engine.DefaultRules(), dice)

	eng.Run(2)

	require.False(t, eng.Aborted())
	require.True(t, findRacer(eng, 1).Tripped, "landing on Baba's tile should trip the victim")
}

func TestBabaYaga_TripsRacersAlreadyOnHerDestination(t *testing.T) {
	roster := []engine.RosterEntry{
		{Idx: 0, Name: "Baba", Start: 0, Abilities: []string{"baba_yaga"}},
		{Idx: 1, Name: "Sitting", Start: 3},
	}
	board := engine.NewBoard(50, nil)
	dice := rng.NewScripted([]int{3})
	eng := newTestEngine(t, roster, board, engine.DefaultRules(), dice)

	eng.Run(1)

	require.False(t, eng.Aborted())
	require.True(t, findRacer(eng, 1).Tripped, "Baba landing on an occupied tile trips whoever was already there")
}
