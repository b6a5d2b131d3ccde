package abilities

import "github.com/lox/racesim/internal/engine"

// Register installs every ability this package implements into reg, so a
// roster can reference them by name.
func Register(reg *engine.AbilityRegistry) {
	reg.Register("hare", func() engine.Ability { return &hare{} })
	reg.Register("leaptoad", func() engine.Ability { return &leaptoad{} })
	reg.Register("huge_baby", func() engine.Ability { return &hugeBaby{} })
	reg.Register("dicemonger", func() engine.Ability { return &dicemonger{} })
	reg.Register("dicemonger_deal", func() engine.Ability { return &dicemongerDeal{} })
	reg.Register("copycat", func() engine.Ability { return &copycat{} })
	reg.Register("mastermind", func() engine.Ability { return &mastermind{} })
	reg.Register("baba_yaga", func() engine.Ability { return &babaYaga{} })
}

// Names lists every roster-selectable ability this package registers,
// sorted for deterministic display (e.g. a CLI --list-abilities flag).
// dicemonger_deal, which dicemonger grants at runtime, is registered but
// not listed.
func Names() []string {
	return []string{
		"baba_yaga",
		"copycat",
		"dicemonger",
		"hare",
		"huge_baby",
		"leaptoad",
		"mastermind",
	}
}
