package engine

// racerRollModifiers returns racer's RollModifier modifiers in attachment
// order.
func racerRollModifiers(racer *Racer) []RollModifier {
	var out []RollModifier
	for _, m := range racer.Modifiers {
		if rm, ok := m.(RollModifier); ok {
			out = append(out, rm)
		}
	}
	return out
}

// rollAndResolve determines the base value (override or dice) for racer,
// runs it through every attached RollModifier, bumps the roll serial, and
// schedules the roll-window and resolve events. Used both for the initial
// main roll and for a mid-window reroll.
func (eng *Engine) rollAndResolve(racer *Racer) {
	eng.Roll.SerialID++
	serial := eng.Roll.SerialID

	var base int
	if racer.RollOverride != nil {
		base = *racer.RollOverride
	} else {
		base = eng.RNG.Roll()
	}
	eng.Roll.DiceValue = &base
	eng.Roll.BaseValue = base

	q := &MoveDistanceQuery{Racer: racer, Base: base}
	var collected []*AbilityTriggeredEvent
	for _, rm := range racerRollModifiers(racer) {
		collected = append(collected, rm.ModifyRoll(q, racer, eng, racer)...)
	}

	final := q.Total()
	if final < 0 {
		final = 0
	}
	eng.Roll.FinalValue = final

	eng.scheduleTriggers(collected)

	eng.scheduleSystem(PhaseRollWindow, RollResultEvent{
		RacerIdx: racer.Idx,
		Base:     base,
		Final:    final,
		Serial:   serial,
	})
	eng.scheduleSystem(PhaseRollWindow, RollModificationWindowEvent{
		RacerIdx:   racer.Idx,
		FinalValue: final,
		Serial:     serial,
	})
	eng.scheduleRacerEvent(PhaseMainAct, ResolveMainMoveEvent{
		RacerIdx:          racer.Idx,
		Serial:            serial,
		TriggeredByRoll:   collected,
		ModifierBreakdown: q.Deltas,
	}, racer.Idx)
}

// handlePerformMainRoll is the roll pipeline's entry point: a racer
// may only perform its main roll once per turn. MainMoveConsumed is set
// here, up front, rather than re-checked down in handleExecuteMainMove —
// which means an ability that wants to veto the main move must set
// MainMoveConsumed before this event is dispatched (e.g. on TurnStart).
// The roll-modification window is scheduled after this point, and setting
// the flag there has no effect; once a roll has started the main move is
// committed to happening.
func (eng *Engine) handlePerformMainRoll(ev PerformMainRollEvent) {
	racer := eng.racer(ev.RacerIdx)
	if racer == nil || !racer.Active() || racer.MainMoveConsumed {
		return
	}
	racer.MainMoveConsumed = true
	eng.rollAndResolve(racer)
}

// TriggerReroll lets a roll-modification-window ability force a fresh
// roll. Bumping the serial here silently invalidates whatever
// ResolveMainMoveEvent/ExecuteMainMoveEvent the prior roll already
// scheduled.
func (eng *Engine) TriggerReroll(racerIdx int) {
	racer := eng.racer(racerIdx)
	if racer == nil || !racer.Active() {
		return
	}
	racer.RerollCount++
	eng.rollAndResolve(racer)
}

// handleResolveMainMove implements the stale-roll safety check: a
// ResolveMainMoveEvent whose serial no longer matches the current roll
// state is silently dropped (it was superseded by a reroll).
func (eng *Engine) handleResolveMainMove(ev ResolveMainMoveEvent) {
	if ev.Serial != eng.Roll.SerialID {
		return
	}
	eng.scheduleRacerEvent(PhaseMoveExec, ExecuteMainMoveEvent{
		RacerIdx: ev.RacerIdx,
		Serial:   ev.Serial,
	}, ev.RacerIdx)
}

// handleExecuteMainMove pushes the racer's main MoveCmd, re-checking the
// serial once more since a reroll can still land between resolve and
// execute.
func (eng *Engine) handleExecuteMainMove(ev ExecuteMainMoveEvent) {
	if ev.Serial != eng.Roll.SerialID {
		return
	}
	racer := eng.racer(ev.RacerIdx)
	if racer == nil || !racer.Active() {
		return
	}
	eng.PushMoveCmd(MoveCmd{
		TargetIdx:      racer.Idx,
		Distance:       eng.Roll.FinalValue,
		Source:         "main_move",
		Phase:          PhaseMoveExec,
		Emit:           EmitNever,
		ResponsibleIdx: racer.Idx,
		IsMain:         true,
	})
}
