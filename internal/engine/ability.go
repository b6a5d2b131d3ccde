package engine

// RollDelta attributes a signed contribution to a roll to a named source
// (an ability name, "dice", or "override").
type RollDelta struct {
	Source string
	Amount int
}

// MoveDistanceQuery is built from the base roll value and mutated by each
// attached RollModifier in attachment order.
type MoveDistanceQuery struct {
	Racer  *Racer
	Base   int
	Deltas []RollDelta
}

// Total sums the base value and every recorded delta.
func (q *MoveDistanceQuery) Total() int {
	total := q.Base
	for _, d := range q.Deltas {
		total += d.Amount
	}
	return total
}

// AddDelta records a modifier's contribution to the roll.
func (q *MoveDistanceQuery) AddDelta(source string, amount int) {
	q.Deltas = append(q.Deltas, RollDelta{Source: source, Amount: amount})
}

// Ability is a per-racer reactive or active behavior attached to a set of
// event types. Abilities never store a reference to the engine; all
// engine access is parameter-passed into Execute/OnGain/OnLoss, so an
// Ability is itself small, plain data with no cyclic references.
type Ability interface {
	// Name is unique within a single racer's installed ability set.
	Name() string
	// Subscriptions lists the event types this ability wants to observe.
	Subscriptions() []EventType
	// Execute reacts to one subscribed event. Returning (nil, false) is
	// the SkipTrigger sentinel: the ability chose not to act. Returning
	// (ev, true) schedules ev as the ability's triggered event.
	Execute(ev Event, owner *Racer, eng *Engine, agent Agent) (*AbilityTriggeredEvent, bool)
}

// SkipTrigger is the canonical "no effect" return from Ability.Execute,
// spelled out for readability at call sites that don't want to construct
// a bare (nil, false).
var SkipTrigger *AbilityTriggeredEvent

// GainHook is implemented by abilities that need to react when installed
// onto a racer (e.g. placing a board-side blocker).
type GainHook interface {
	Ability
	OnGain(owner *Racer, eng *Engine)
}

// LossHook is implemented by abilities that need to clean up when
// removed from a racer.
type LossHook interface {
	Ability
	OnLoss(owner *Racer, eng *Engine)
}

// SetupHook is implemented by abilities that need a one-time hook at
// scenario setup, before any turn runs.
type SetupHook interface {
	Ability
	OnSetup(owner *Racer, eng *Engine)
}

// abilityIdentity is the installed-instance identity key: (name, owner).
// When the instance was granted by another racer, GrantorIdx also
// participates, so multiple grants of the same ability name from
// different sources coexist on one racer.
type abilityIdentity struct {
	Name       string
	OwnerIdx   int
	External   bool
	GrantorIdx int
}

type abilityInstance struct {
	id     abilityIdentity
	ability Ability
}

// AbilityConstructor builds a fresh Ability instance by name. The
// registry never hands out a shared reference — every installation gets
// its own instance, so "copy"-style abilities never alias state.
type AbilityConstructor func() Ability

// AbilityRegistry maps an ability name to its constructor. The concrete
// ~30-strong library of flavor abilities is out of scope for this engine;
// the registry only drives name -> instance installation.
type AbilityRegistry struct {
	constructors map[string]AbilityConstructor
}

// NewAbilityRegistry creates an empty registry.
func NewAbilityRegistry() *AbilityRegistry {
	return &AbilityRegistry{constructors: make(map[string]AbilityConstructor)}
}

// Register adds (or overwrites) the constructor for an ability name.
func (r *AbilityRegistry) Register(name string, ctor AbilityConstructor) {
	r.constructors[name] = ctor
}

// Construct builds a new instance of the named ability. ok is false if
// the name is unknown — the caller should treat that as a DeveloperError.
func (r *AbilityRegistry) Construct(name string) (Ability, bool) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, false
	}
	return ctor(), true
}
