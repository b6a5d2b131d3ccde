package engine

// Modifier is the common identity contract shared by racer modifiers
// (roll-shaping) and board tile modifiers (approach/landing). Identity is
// (Name, OwnerIdx) only — equality never considers internal state, so a
// modifier can be looked up, compared, and removed purely by who granted
// it and what it's called.
type Modifier interface {
	Name() string
	OwnerIdx() int
	Priority() int
}

// modifierKey is the canonical ownership key used for board cleanup when
// an ability is revoked.
type modifierKey struct {
	Name     string
	OwnerIdx int
}

func keyOf(m Modifier) modifierKey {
	return modifierKey{Name: m.Name(), OwnerIdx: m.OwnerIdx()}
}

// RollModifier attaches a racer modifier to the roll pipeline.
type RollModifier interface {
	Modifier
	ModifyRoll(q *MoveDistanceQuery, owner *Racer, eng *Engine, rolling *Racer) []*AbilityTriggeredEvent
}

// DestinationCalculator computes the physical end tile of a move,
// stepping tile-by-tile so it can skip occupied tiles ("jump" style
// modifiers) and emit per-jump triggers.
type DestinationCalculator interface {
	Modifier
	CalcDestination(start, distance int, mover *Racer, eng *Engine) (int, []*AbilityTriggeredEvent)
}

// MovementValidator can veto a move outright; a veto
// collapses the destination back to start and fires exactly one trigger.
type MovementValidator interface {
	Modifier
	Validate(start, end int, mover *Racer, eng *Engine) (bool, *AbilityTriggeredEvent)
}

// Approacher is a board-tile hook invoked while a racer is arriving at a
// tile; it may redirect the candidate to a different tile.
type Approacher interface {
	Modifier
	OnApproach(tile int, mover *Racer, eng *Engine) (int, []*AbilityTriggeredEvent)
}

// Lander is a board-tile hook invoked once a racer has settled on a tile.
type Lander interface {
	Modifier
	OnLand(tile int, racer *Racer, eng *Engine) []*AbilityTriggeredEvent
}

// LifecycleHook declares attach/detach notification hooks for a modifier.
// Nothing in the engine calls them: neither AddRacerModifier and
// RemoveRacerModifier nor the board's dynamic-modifier methods invoke
// OnAttach or OnDetach.
type LifecycleHook interface {
	Modifier
	OnAttach(eng *Engine)
	OnDetach(eng *Engine)
}

// AddRacerModifier attaches a racer-scoped modifier (RollModifier,
// DestinationCalculator, MovementValidator) to racerIdx. A racer never
// holds two modifiers with the same (name, owner) identity at once;
// attaching a duplicate replaces the existing one in place, mirroring
// Board.AddDynamicModifier's tile-side dedup rule.
func (eng *Engine) AddRacerModifier(racerIdx int, m Modifier) {
	racer := eng.racer(racerIdx)
	if racer == nil {
		return
	}
	key := keyOf(m)
	for i, existing := range racer.Modifiers {
		if keyOf(existing) == key {
			racer.Modifiers[i] = m
			return
		}
	}
	racer.Modifiers = append(racer.Modifiers, m)
}

// RemoveRacerModifier detaches a racer-scoped modifier by (name, owner)
// identity. It is a no-op if no such modifier is attached.
func (eng *Engine) RemoveRacerModifier(racerIdx int, name string, ownerIdx int) {
	racer := eng.racer(racerIdx)
	if racer == nil {
		return
	}
	for i, m := range racer.Modifiers {
		if m.Name() == name && m.OwnerIdx() == ownerIdx {
			racer.Modifiers = append(racer.Modifiers[:i], racer.Modifiers[i+1:]...)
			return
		}
	}
}

// sortByPriority sorts a modifier slice ascending by Priority, stable so
// equal-priority modifiers keep their insertion order (ties broken by
// attachment order).
func sortByPriority(mods []Modifier) {
	// insertion sort: modifier counts per racer/tile are small (single
	// digits), and stability matters more than asymptotic cost here.
	for i := 1; i < len(mods); i++ {
		j := i
		for j > 0 && mods[j-1].Priority() > mods[j].Priority() {
			mods[j-1], mods[j] = mods[j], mods[j-1]
			j--
		}
	}
}
