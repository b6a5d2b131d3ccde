package engine

// DecisionContext carries everything an Agent needs to make a pure,
// deterministic decision: which ability is asking, on whose behalf, and
// — for selection decisions — the typed options to choose among.
type DecisionContext struct {
	Ability        string
	SourceRacerIdx int
	Options        []any
}

// Agent exposes the two decision methods an ability may need. Decisions
// must be synchronous, pure-over-state reads, and deterministic given the
// same (engine state, context); agents must never mutate state.
type Agent interface {
	MakeBooleanDecision(eng *Engine, ctx DecisionContext) bool
	MakeSelectionDecision(eng *Engine, ctx DecisionContext) any
}
