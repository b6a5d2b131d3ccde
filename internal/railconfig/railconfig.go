// Package railconfig loads a race scenario's rules, board layout, and
// roster from HCL files.
package railconfig

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/racesim/internal/engine"
)

// RaceConfig is the HCL document a scenario is authored in: rules,
// board tiles, and racer roster.
type RaceConfig struct {
	Rules  RulesBlock   `hcl:"rules,block"`
	Board  BoardBlock   `hcl:"board,block"`
	Racers []RacerBlock `hcl:"racer,block"`
}

// RulesBlock mirrors engine.Rules.
type RulesBlock struct {
	WinnerVPFirst  int    `hcl:"winner_vp_first,optional"`
	WinnerVPSecond int    `hcl:"winner_vp_second,optional"`
	TimingMode     string `hcl:"timing_mode,optional"`
	Count0Moves    bool   `hcl:"count_0_moves_for_ability_triggered,optional"`
	HRMastermind   bool   `hcl:"hr_mastermind_steal_1st,optional"`
}

// BoardBlock carries only the track length; HCL describes no tile
// modifiers, and the board is built from the length alone.
type BoardBlock struct {
	Length int `hcl:"length"`
}

// RacerBlock is one line of the roster.
type RacerBlock struct {
	Name      string   `hcl:"name,label"`
	Start     int      `hcl:"start,optional"`
	Abilities []string `hcl:"abilities,optional"`
}

// DefaultRaceConfig returns a minimal two-racer scenario, used when no
// file is present.
func DefaultRaceConfig() *RaceConfig {
	return &RaceConfig{
		Rules: RulesBlock{
			WinnerVPFirst:  3,
			WinnerVPSecond: 1,
			TimingMode:     "bfs",
		},
		Board: BoardBlock{Length: 30},
		Racers: []RacerBlock{
			{Name: "racer-1", Abilities: []string{"hare"}},
			{Name: "racer-2", Abilities: []string{"leaptoad"}},
		},
	}
}

// Load reads and decodes an HCL race config file, falling back to
// DefaultRaceConfig if the file does not exist.
func Load(filename string) (*RaceConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultRaceConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("railconfig: failed to parse %s: %s", filename, diags.Error())
	}

	var cfg RaceConfig
	if diags = gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("railconfig: failed to decode %s: %s", filename, diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *RaceConfig) applyDefaults() {
	if c.Rules.TimingMode == "" {
		c.Rules.TimingMode = "bfs"
	}
	if c.Rules.WinnerVPFirst == 0 && c.Rules.WinnerVPSecond == 0 {
		c.Rules.WinnerVPFirst, c.Rules.WinnerVPSecond = 3, 1
	}
	if c.Board.Length == 0 {
		c.Board.Length = 30
	}
}

// Validate checks the decoded config for the invariants engine.NewEngine
// itself doesn't check at construction time (a non-positive board, a
// roster too small to race).
func (c *RaceConfig) Validate() error {
	if c.Board.Length <= 0 {
		return fmt.Errorf("railconfig: board length must be positive, got %d", c.Board.Length)
	}
	if len(c.Racers) < 2 {
		return fmt.Errorf("railconfig: at least two racers are required, got %d", len(c.Racers))
	}
	if _, ok := engine.ParseTimingMode(c.Rules.TimingMode); !ok {
		return fmt.Errorf("railconfig: unrecognized timing_mode %q", c.Rules.TimingMode)
	}
	return nil
}

// EngineRules converts the decoded HCL block into engine.Rules.
func (c *RaceConfig) EngineRules() engine.Rules {
	mode, ok := engine.ParseTimingMode(c.Rules.TimingMode)
	if !ok {
		mode = engine.DefaultRules().TimingMode
	}
	return engine.Rules{
		WinnerVP:                       [2]int{c.Rules.WinnerVPFirst, c.Rules.WinnerVPSecond},
		TimingMode:                     mode,
		Count0MovesForAbilityTriggered: c.Rules.Count0Moves,
		HRMastermindSteal1st:           c.Rules.HRMastermind,
	}
}

// Roster converts the decoded HCL racer blocks into engine.RosterEntry,
// assigning dense indices in declaration order.
func (c *RaceConfig) Roster() []engine.RosterEntry {
	out := make([]engine.RosterEntry, len(c.Racers))
	for i, rb := range c.Racers {
		out[i] = engine.RosterEntry{
			Idx:       i,
			Name:      rb.Name,
			Start:     rb.Start,
			Abilities: append([]string(nil), rb.Abilities...),
		}
	}
	return out
}
