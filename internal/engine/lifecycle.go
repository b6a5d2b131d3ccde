package engine

import "strconv"

// slotKey is the map key an installed instance occupies in
// Racer.Abilities. Self-owned abilities key purely on name; abilities
// granted by another racer key on name+grantor, so two different racers
// can each grant a racer the same-named ability without colliding.
func (id abilityIdentity) slotKey() string {
	if !id.External {
		return id.Name
	}
	return id.Name + "@" + strconv.Itoa(id.GrantorIdx)
}

// installAbilityInstance constructs, subscribes, and attaches a single
// ability instance to racer. It is a DeveloperError for name to be
// missing from the registry.
func (eng *Engine) installAbilityInstance(racer *Racer, name string, external bool, grantorIdx int) error {
	ability, ok := eng.Registry.Construct(name)
	if !ok {
		return newDeveloperError("unknown ability %q in registry", name)
	}
	id := abilityIdentity{Name: name, OwnerIdx: racer.Idx, External: external, GrantorIdx: grantorIdx}
	inst := &abilityInstance{id: id, ability: ability}
	racer.Abilities[id.slotKey()] = inst
	eng.subscribe(racer.Idx, inst)
	if gh, ok := ability.(GainHook); ok {
		gh.OnGain(racer, eng)
	}
	return nil
}

// removeAbilityInstance detaches and unsubscribes one installed instance.
func (eng *Engine) removeAbilityInstance(racer *Racer, inst *abilityInstance) {
	eng.unsubscribe(inst)
	if lh, ok := inst.ability.(LossHook); ok {
		lh.OnLoss(racer, eng)
	}
	delete(racer.Abilities, inst.id.slotKey())
}

// updateRacerAbilities installs a racer's starting (self-owned, non
// externally-granted) ability set at construction time.
func (eng *Engine) updateRacerAbilities(racer *Racer, names []string) error {
	for _, name := range names {
		if err := eng.installAbilityInstance(racer, name, false, racer.Idx); err != nil {
			return err
		}
	}
	return nil
}

// GrantAbility installs an ability onto targetIdx attributed to
// grantorIdx, coexisting with any other instance of the same name
// already on that racer.
func (eng *Engine) GrantAbility(targetIdx int, name string, grantorIdx int) error {
	racer := eng.racer(targetIdx)
	if racer == nil {
		return newDeveloperError("GrantAbility: unknown racer index %d", targetIdx)
	}
	return eng.installAbilityInstance(racer, name, true, grantorIdx)
}

// RevokeAbility removes the externally-granted instance of name that
// grantorIdx installed on targetIdx, and cleans up any board modifiers
// it owns there. It is a no-op if no such instance exists.
func (eng *Engine) RevokeAbility(targetIdx int, name string, grantorIdx int) {
	racer := eng.racer(targetIdx)
	if racer == nil {
		return
	}
	key := (abilityIdentity{Name: name, OwnerIdx: targetIdx, External: true, GrantorIdx: grantorIdx}).slotKey()
	inst, ok := racer.Abilities[key]
	if !ok {
		return
	}
	eng.removeAbilityInstance(racer, inst)
	eng.Board.RemoveModifiersOwnedBy(targetIdx)
}

// stripAbilities removes every installed ability instance from a racer,
// used when a racer finishes or is eliminated.
func (eng *Engine) stripAbilities(racer *Racer) {
	insts := make([]*abilityInstance, 0, len(racer.Abilities))
	for _, inst := range racer.Abilities {
		insts = append(insts, inst)
	}
	for _, inst := range insts {
		eng.removeAbilityInstance(racer, inst)
	}
	eng.Board.RemoveModifiersOwnedBy(racer.Idx)
}

// ReplaceCoreAbilities implements the "Copycat"-style dynamic ability swap
// (spec §9): it diff-updates racer's self-owned (non-externally-granted)
// ability set to newNames, removing instances that fell out, leaving
// untouched instances that are still present, and constructing fresh
// instances — never shared references — for newly added names.
// Externally-granted instances (installed via GrantAbility) are left alone;
// this only replaces the racer's own core set.
func (eng *Engine) ReplaceCoreAbilities(racerIdx int, newNames []string) error {
	racer := eng.racer(racerIdx)
	if racer == nil {
		return newDeveloperError("ReplaceCoreAbilities: unknown racer index %d", racerIdx)
	}

	want := make(map[string]bool, len(newNames))
	for _, n := range newNames {
		want[n] = true
	}

	var toRemove []*abilityInstance
	for _, inst := range racer.Abilities {
		if inst.id.External || want[inst.id.Name] {
			continue
		}
		toRemove = append(toRemove, inst)
	}
	for _, inst := range toRemove {
		eng.removeAbilityInstance(racer, inst)
	}

	have := make(map[string]bool)
	for _, inst := range racer.Abilities {
		if !inst.id.External {
			have[inst.id.Name] = true
		}
	}

	for _, name := range newNames {
		if have[name] {
			continue
		}
		if err := eng.installAbilityInstance(racer, name, false, racer.Idx); err != nil {
			return err
		}
	}
	return nil
}

// nextFreeRank returns the next open finish rank, or 0 if both rank 1
// and rank 2 are already taken.
func (eng *Engine) nextFreeRank() int {
	taken := map[int]bool{}
	for _, r := range eng.Racers {
		if r.Finished && r.FinishRank > 0 {
			taken[r.FinishRank] = true
		}
	}
	for rank := 1; rank <= 2; rank++ {
		if !taken[rank] {
			return rank
		}
	}
	return 0
}

// markFinished assigns racer the next free finish rank. See MarkFinishedAt
// for the explicit-rank variant used by rank-stealing house rules.
func (eng *Engine) markFinished(racer *Racer) {
	eng.MarkFinishedAt(racer, eng.nextFreeRank())
}

// MarkFinishedAt assigns racer the given finish rank (0 means "no rank
// available"), awards the corresponding victory points, strips its
// abilities, publishes RacerFinishedEvent, and checks whether the race
// has ended. If racer already holds a different rank, its previously
// awarded rank VP is subtracted first — this is the hook a "steal first
// place" house rule (Rules.HRMastermindSteal1st) drives: the caller is
// responsible for resolving any collision with whichever racer already
// holds that rank before calling in with the stolen rank.
func (eng *Engine) MarkFinishedAt(racer *Racer, rank int) {
	if racer.Finished && racer.FinishRank == rank {
		return
	}
	if racer.Finished && racer.FinishRank >= 1 && racer.FinishRank <= len(eng.Rules.WinnerVP) {
		racer.VictoryPoints -= eng.Rules.WinnerVP[racer.FinishRank-1]
	}
	racer.Finished = true
	racer.FinishRank = rank
	if rank >= 1 && rank <= len(eng.Rules.WinnerVP) {
		racer.VictoryPoints += eng.Rules.WinnerVP[rank-1]
	}
	eng.stripAbilities(racer)
	eng.publish(RacerFinishedEvent{RacerIdx: racer.Idx, Rank: rank}, nil)
	eng.checkRaceOverCondition()
}

// EliminateRacer removes a racer from contention without assigning it a
// finish rank.
func (eng *Engine) EliminateRacer(racer *Racer) {
	if racer.Eliminated || racer.Finished {
		return
	}
	racer.Eliminated = true
	eng.stripAbilities(racer)
	eng.checkRaceOverCondition()
}

// activeRacers returns every racer still running the race.
func (eng *Engine) activeRacers() []*Racer {
	var active []*Racer
	for _, r := range eng.Racers {
		if r.Active() {
			active = append(active, r)
		}
	}
	return active
}

// checkRaceOverCondition implements the sole-survivor rule: both finish
// ranks filled, or zero active racers, ends the race outright. A lone
// survivor is only auto-finished into whichever rank remains open once at
// least one racer has already finished — with nobody finished yet, a
// single active racer still has a finish line to cross, not a rank to be
// handed.
func (eng *Engine) checkRaceOverCondition() {
	if !eng.RaceActive {
		return
	}

	if eng.nextFreeRank() == 0 {
		eng.endRace()
		return
	}

	active := eng.activeRacers()
	if len(active) == 0 {
		eng.endRace()
		return
	}

	if len(active) == 1 && eng.finishedCount() >= 1 {
		// Auto-finish the sole survivor; markFinished recurses back into
		// checkRaceOverCondition, which will now end the race.
		eng.markFinished(active[0])
	}
}

// finishedCount returns how many racers have already been assigned a
// finish rank.
func (eng *Engine) finishedCount() int {
	n := 0
	for _, r := range eng.Racers {
		if r.Finished {
			n++
		}
	}
	return n
}

// endRace finalizes standings and stops further turns from running.
func (eng *Engine) endRace() {
	if !eng.RaceActive {
		return
	}
	eng.RaceActive = false

	standings := make([]StandingEntry, 0, len(eng.Racers))
	for _, r := range eng.Racers {
		standings = append(standings, StandingEntry{
			RacerIdx:   r.Idx,
			Name:       r.Name,
			Rank:       r.FinishRank,
			Eliminated: r.Eliminated,
		})
	}
	eng.standings = standings
}
