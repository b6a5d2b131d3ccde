package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/racesim/internal/engine"
)

func sampleRoster() []engine.RosterEntry {
	return []engine.RosterEntry{
		{Idx: 0, Name: "A", Start: 0, Abilities: []string{"reroll_low"}},
		{Idx: 1, Name: "B", Start: 3, Abilities: nil},
	}
}

func TestGameConfig_CanonicalJSONIsStable(t *testing.T) {
	rules := engine.DefaultRules()
	c1 := engine.NewGameConfig(sampleRoster(), "classic_loop", 42, rules)
	c2 := engine.NewGameConfig(sampleRoster(), "classic_loop", 42, rules)

	j1, err := c1.CanonicalJSON()
	require.NoError(t, err)
	j2, err := c2.CanonicalJSON()
	require.NoError(t, err)
	require.Equal(t, j1, j2)

	h1, err := c1.Hash()
	require.NoError(t, err)
	h2, err := c2.Hash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestGameConfig_ShareCodeRoundTrip(t *testing.T) {
	rules := engine.DefaultRules()
	rules.TimingMode = engine.DFS
	original := engine.NewGameConfig(sampleRoster(), "classic_loop", 1337, rules)

	code, err := original.ShareCode()
	require.NoError(t, err)

	decoded, err := engine.DecodeShareCode(code)
	require.NoError(t, err)

	wantJSON, err := original.CanonicalJSON()
	require.NoError(t, err)
	gotJSON, err := decoded.CanonicalJSON()
	require.NoError(t, err)
	require.Equal(t, wantJSON, gotJSON)

	require.Equal(t, sampleRoster(), decoded.Roster())
	require.Equal(t, engine.DFS, decoded.RulesValue().TimingMode)
}

func TestGameConfig_DecodeShareCodeRejectsGarbage(t *testing.T) {
	_, err := engine.DecodeShareCode("not-valid-base64!!")
	require.Error(t, err)
}

func TestGameConfig_RulesValueFallsBackOnUnknownTimingMode(t *testing.T) {
	rules := engine.DefaultRules()
	cfg := engine.NewGameConfig(sampleRoster(), "classic_loop", 1, rules)
	cfg.Rules.TimingMode = "not_a_real_mode"

	got := cfg.RulesValue()
	require.Equal(t, engine.DefaultRules().TimingMode, got.TimingMode)
}
