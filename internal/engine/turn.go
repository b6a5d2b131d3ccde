package engine

// startTurn clears the per-turn cycle-detection history and pushes the
// turn's opening events: a tripped racer recovers instead of rolling,
// everyone else proceeds straight to the main roll.
func (eng *Engine) startTurn(racerIdx int) {
	eng.history = make(map[uint64]struct{})

	racer := eng.racer(racerIdx)
	if racer == nil {
		return
	}
	racer.RerollCount = 0
	racer.MainMoveConsumed = false

	if racer.Tripped {
		racer.Tripped = false
		eng.scheduleRacerEvent(PhaseSystem, TripRecoveryEvent{RacerIdx: racerIdx}, racerIdx)
		eng.scheduleRacerEvent(PhaseSystem, TurnStartEvent{RacerIdx: racerIdx, Round: eng.Round}, racerIdx)
		return
	}

	eng.scheduleRacerEvent(PhaseSystem, TurnStartEvent{RacerIdx: racerIdx, Round: eng.Round}, racerIdx)
	eng.scheduleRacerEvent(PhasePreMain, PerformMainRollEvent{RacerIdx: racerIdx}, racerIdx)
}

// drain pops and dispatches events until the queue empties, the race
// ends mid-turn, or the same state hash recurs across two reaction
// points within this turn — the cycle-safety guarantee against
// mutual-trigger loops. The hash is only taken around AbilityTriggeredEvent
// dispatches, since that event is the sole vehicle for ability
// reactions (ability.go) and is therefore where a mutual-trigger cascade
// actually loops; ordinary turn bookkeeping routinely dispatches several
// events in a row without touching any hashed field (a roll's result,
// modification window, and resolve all observe the same locked-in roll),
// and hashing at every dispatch would flag that as a false cycle. A
// detected cycle aborts only the current turn; the next racer's turn
// proceeds normally.
func (eng *Engine) drain() {
	for eng.RaceActive && eng.scheduler.Len() > 0 {
		se := eng.scheduler.Pop()

		if _, ok := se.Event.(AbilityTriggeredEvent); ok {
			h := eng.hashState()
			if _, seen := eng.history[h]; seen {
				eng.Logger.Warn("cycle detected, aborting turn", "racer", eng.CurrentRacerIdx, "round", eng.Round)
				eng.aborted = true
				eng.scheduler.Clear()
				return
			}
			eng.history[h] = struct{}{}
		}

		eng.dispatch(se)
	}
}

// advanceTurn moves CurrentRacerIdx to the next active racer clockwise,
// honoring a pending NextTurnOverride (an ability that grants an extra
// or redirected turn) ahead of the default clockwise step. Round
// increments exactly once per lap back to index 0. If no racer is still
// active, the race ends.
func (eng *Engine) advanceTurn() {
	if eng.NextTurnOverride != nil {
		next := *eng.NextTurnOverride
		eng.NextTurnOverride = nil
		eng.CurrentRacerIdx = next
		return
	}

	n := eng.racerCount()
	next := eng.CurrentRacerIdx
	for i := 0; i < n; i++ {
		next = mod(next+1, n)
		if next == 0 {
			eng.Round++
		}
		if r := eng.racer(next); r != nil && r.Active() {
			eng.CurrentRacerIdx = next
			return
		}
	}
	eng.endRace()
}

// Run drives turns until the race ends or maxTurns is reached.
// maxTurns <= 0 means unbounded. Exceeding maxTurns is an external
// runner concern — Run simply stops early and leaves RaceActive true so the
// caller can decide what "stopped without a winner" means for it.
func (eng *Engine) Run(maxTurns int) {
	turns := 0
	for eng.RaceActive {
		if maxTurns > 0 && turns >= maxTurns {
			eng.Logger.Warn("max turns exceeded, stopping", "turns", turns)
			return
		}
		eng.aborted = false
		eng.startTurn(eng.CurrentRacerIdx)
		eng.drain()
		turns++
		if !eng.RaceActive {
			return
		}
		eng.advanceTurn()
	}
}

// Aborted reports whether the most recently drained turn was cut short
// by cycle detection or a developer error.
func (eng *Engine) Aborted() bool {
	return eng.aborted
}
