package engine

// Board owns the track length and the static/dynamic tile modifiers.
// Static modifiers are fixed at construction; dynamic modifiers are
// installed/removed over the course of the race (trap placement,
// blockers, etc).
type Board struct {
	Length  int
	static  map[int][]Modifier
	dynamic map[int][]Modifier
}

// NewBoard creates a board of the given finish length with the provided
// static tile modifiers.
func NewBoard(length int, static map[int][]Modifier) *Board {
	b := &Board{
		Length:  length,
		static:  make(map[int][]Modifier),
		dynamic: make(map[int][]Modifier),
	}
	for tile, mods := range static {
		cp := append([]Modifier(nil), mods...)
		sortByPriority(cp)
		b.static[tile] = cp
	}
	return b
}

// ModifiersAt returns the static and dynamic modifiers at tile, sorted by
// priority (lower first).
func (b *Board) ModifiersAt(tile int) []Modifier {
	all := make([]Modifier, 0, len(b.static[tile])+len(b.dynamic[tile]))
	all = append(all, b.static[tile]...)
	all = append(all, b.dynamic[tile]...)
	sortByPriority(all)
	return all
}

// AddDynamicModifier installs a dynamic modifier on a tile. A tile never
// holds two modifiers with the same (name, owner) identity at once;
// installing a duplicate replaces the existing one rather than creating
// a second copy.
func (b *Board) AddDynamicModifier(tile int, m Modifier) {
	key := keyOf(m)
	existing := b.dynamic[tile]
	for i, e := range existing {
		if keyOf(e) == key {
			existing[i] = m
			return
		}
	}
	b.dynamic[tile] = append(existing, m)
}

// RemoveDynamicModifier removes a dynamic modifier from a tile by
// identity. It is a no-op if the modifier isn't present.
func (b *Board) RemoveDynamicModifier(tile int, name string, ownerIdx int) {
	existing := b.dynamic[tile]
	for i, e := range existing {
		if e.Name() == name && e.OwnerIdx() == ownerIdx {
			b.dynamic[tile] = append(existing[:i], existing[i+1:]...)
			return
		}
	}
}

// RemoveModifiersOwnedBy removes every dynamic modifier across the whole
// board owned by ownerIdx — the ownership-based cleanup used when a
// lifecycle-managed ability is revoked.
func (b *Board) RemoveModifiersOwnedBy(ownerIdx int) {
	for tile, mods := range b.dynamic {
		kept := mods[:0:0]
		for _, m := range mods {
			if m.OwnerIdx() != ownerIdx {
				kept = append(kept, m)
			}
		}
		b.dynamic[tile] = kept
	}
}

// dynamicModifierNames returns the set of dynamic modifier names on a
// tile, used by the cycle-detection state hash.
func (b *Board) dynamicModifierNames(tile int) []string {
	mods := b.dynamic[tile]
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name()
	}
	return names
}

// resolvePosition iteratively applies approach hooks at the candidate
// tile until none redirect it. A visited set prevents infinite
// redirection loops; if a loop is detected, the engine settles on the
// tile where the loop was first observed.
func (b *Board) resolvePosition(candidate int, mover *Racer, eng *Engine) (int, []*AbilityTriggeredEvent) {
	var triggers []*AbilityTriggeredEvent
	visited := map[int]struct{}{}

	for {
		if _, seen := visited[candidate]; seen {
			return candidate, triggers
		}
		visited[candidate] = struct{}{}

		redirected := false
		for _, m := range b.ModifiersAt(candidate) {
			ap, ok := m.(Approacher)
			if !ok {
				continue
			}
			next, evs := ap.OnApproach(candidate, mover, eng)
			triggers = append(triggers, evs...)
			if next != candidate {
				candidate = next
				redirected = true
				break
			}
		}
		if !redirected {
			return candidate, triggers
		}
	}
}

// triggerOnLand walks landing-hook modifiers at tile in priority order,
// re-checking before each call that the racer is still there (a previous
// hook may have moved them off).
func (b *Board) triggerOnLand(tile int, racer *Racer, eng *Engine) []*AbilityTriggeredEvent {
	var triggers []*AbilityTriggeredEvent
	for _, m := range b.ModifiersAt(tile) {
		if racer.Position != tile || !racer.Active() {
			break
		}
		land, ok := m.(Lander)
		if !ok {
			continue
		}
		triggers = append(triggers, land.OnLand(tile, racer, eng)...)
	}
	return triggers
}
