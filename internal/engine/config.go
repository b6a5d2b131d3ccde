package engine

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// racerConfig/rulesConfig/GameConfig's field declaration order IS the
// canonical key order: encoding/json always emits struct fields in
// declaration order with no extra whitespace, so a plain Marshal of
// these types already produces the fixed-key-order, "," / ":" separated
// encoding the hash and share code are built from.
type racerConfig struct {
	Idx       int      `json:"idx"`
	Name      string   `json:"name"`
	Start     int      `json:"start"`
	Abilities []string `json:"abilities"`
}

// rulesConfig's field order is the canonical key order: the "rules"
// object's keys must come out sorted, so declaration order here is
// alphabetical by JSON tag (unlike racerConfig/GameConfig, whose natural
// field order already matches the intended literal key order).
type rulesConfig struct {
	Count0MovesForAbilityTriggered bool   `json:"count_0_moves_for_ability_triggered"`
	HRMastermindSteal1st           bool   `json:"hr_mastermind_steal_1st"`
	TimingMode                     string `json:"timing_mode"`
	WinnerVP                       []int  `json:"winner_vp"`
}

// GameConfig is the serializable description of a scenario: roster,
// board name, seed, and rules.
type GameConfig struct {
	Racers []racerConfig `json:"racers"`
	Board  string        `json:"board"`
	Seed   int64         `json:"seed"`
	Rules  rulesConfig   `json:"rules"`
}

// NewGameConfig builds a GameConfig from engine-native roster/rules
// values.
func NewGameConfig(roster []RosterEntry, boardName string, seed int64, rules Rules) GameConfig {
	rc := make([]racerConfig, len(roster))
	for i, re := range roster {
		rc[i] = racerConfig{
			Idx:       re.Idx,
			Name:      re.Name,
			Start:     re.Start,
			Abilities: append([]string(nil), re.Abilities...),
		}
	}
	return GameConfig{
		Racers: rc,
		Board:  boardName,
		Seed:   seed,
		Rules: rulesConfig{
			Count0MovesForAbilityTriggered: rules.Count0MovesForAbilityTriggered,
			HRMastermindSteal1st:           rules.HRMastermindSteal1st,
			TimingMode:                     rules.TimingMode.String(),
			WinnerVP:                       []int{rules.WinnerVP[0], rules.WinnerVP[1]},
		},
	}
}

// CanonicalJSON returns the fixed-key-order, compact-separator encoding
// used for hashing and sharing.
func (c GameConfig) CanonicalJSON() ([]byte, error) {
	return json.Marshal(c)
}

// Hash returns the SHA-256 digest of the canonical JSON encoding.
func (c GameConfig) Hash() ([32]byte, error) {
	b, err := c.CanonicalJSON()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(b), nil
}

// ShareCode returns a URL-safe base64 encoding of the canonical JSON, for
// embedding a scenario in a shareable link. Decoding it with
// DecodeShareCode round-trips to a byte-for-byte identical
// CanonicalJSON.
func (c GameConfig) ShareCode() (string, error) {
	b, err := c.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// DecodeShareCode reverses ShareCode.
func DecodeShareCode(code string) (GameConfig, error) {
	b, err := base64.URLEncoding.DecodeString(code)
	if err != nil {
		return GameConfig{}, fmt.Errorf("racesim: invalid share code: %w", err)
	}
	var c GameConfig
	if err := json.Unmarshal(b, &c); err != nil {
		return GameConfig{}, fmt.Errorf("racesim: malformed share code payload: %w", err)
	}
	return c, nil
}

// Roster converts the config back into the RosterEntry slice NewEngine
// expects.
func (c GameConfig) Roster() []RosterEntry {
	out := make([]RosterEntry, len(c.Racers))
	for i, rc := range c.Racers {
		out[i] = RosterEntry{
			Idx:       rc.Idx,
			Name:      rc.Name,
			Start:     rc.Start,
			Abilities: append([]string(nil), rc.Abilities...),
		}
	}
	return out
}

// RulesValue converts the config's rules back into engine.Rules. An
// unrecognized TimingMode string falls back to DefaultRules' mode rather
// than failing the whole decode.
func (c GameConfig) RulesValue() Rules {
	mode, ok := ParseTimingMode(c.Rules.TimingMode)
	if !ok {
		mode = DefaultRules().TimingMode
	}
	var vp [2]int
	if len(c.Rules.WinnerVP) >= 2 {
		vp[0], vp[1] = c.Rules.WinnerVP[0], c.Rules.WinnerVP[1]
	}
	return Rules{
		WinnerVP:                       vp,
		TimingMode:                     mode,
		Count0MovesForAbilityTriggered: c.Rules.Count0MovesForAbilityTriggered,
		HRMastermindSteal1st:           c.Rules.HRMastermindSteal1st,
	}
}
