// Package agent provides the engine's default, always-available
// decision-makers: Baseline (a fixed deterministic choice, used when no
// human or scripted strategy is wired in) and Random (a seeded-RNG
// strategy that picks uniformly among the offered options).
package agent

import (
	"math/rand/v2"

	"github.com/lox/racesim/internal/engine"
)

// Baseline always answers decisions the same deterministic way: false for
// boolean decisions, the first option for selections. It exists so a
// scenario never has to special-case "no agent configured".
type Baseline struct{}

func (Baseline) MakeBooleanDecision(eng *engine.Engine, ctx engine.DecisionContext) bool {
	return false
}

func (Baseline) MakeSelectionDecision(eng *engine.Engine, ctx engine.DecisionContext) any {
	if len(ctx.Options) == 0 {
		return nil
	}
	return ctx.Options[0]
}

// Random picks uniformly among available options from a seeded PRNG.
type Random struct {
	r *rand.Rand
}

// NewRandom returns a Random agent seeded deterministically.
func NewRandom(seed int64) *Random {
	u := uint64(seed)
	return &Random{r: rand.New(rand.NewPCG(u, u^0x9e3779b97f4a7c15))}
}

func (a *Random) MakeBooleanDecision(eng *engine.Engine, ctx engine.DecisionContext) bool {
	return a.r.IntN(2) == 0
}

func (a *Random) MakeSelectionDecision(eng *engine.Engine, ctx engine.DecisionContext) any {
	if len(ctx.Options) == 0 {
		return nil
	}
	return ctx.Options[a.r.IntN(len(ctx.Options))]
}
