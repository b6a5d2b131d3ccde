package engine

import "sort"

// scheduleEvent computes depth/priority and pushes ev onto
// the scheduler. isSystem selects priority 0 (system/board events);
// otherwise priority is the clockwise turn-order offset from
// responsibleIdx. System-priority events pushed while processing another
// event keep the current depth (a chronological continuation); all others
// increment depth by one.
func (eng *Engine) scheduleEvent(phase Phase, ev Event, responsibleIdx int, isSystem bool, locked map[string]struct{}) ScheduledEvent {
	depth := 0
	if eng.dispatching {
		if isSystem {
			depth = eng.dispatchDepth
		} else {
			depth = eng.dispatchDepth + 1
		}
	}

	priority := 0
	if !isSystem {
		priority = eng.turnOrderPriority(responsibleIdx)
	}

	return eng.scheduler.Push(ScheduledEvent{
		Phase:           phase,
		Depth:           depth,
		Priority:        priority,
		Event:           ev,
		LockedAbilities: locked,
	})
}

// scheduleSystem is a convenience for pushing a priority-0 event.
func (eng *Engine) scheduleSystem(phase Phase, ev Event) ScheduledEvent {
	return eng.scheduleEvent(phase, ev, 0, true, nil)
}

// scheduleRacerEvent is a convenience for pushing a clockwise-ordered
// event attributed to responsibleIdx.
func (eng *Engine) scheduleRacerEvent(phase Phase, ev Event, responsibleIdx int) ScheduledEvent {
	return eng.scheduleEvent(phase, ev, responsibleIdx, false, nil)
}

// subscribe registers an ability instance's declared event types for
// racerIdx.
func (eng *Engine) subscribe(racerIdx int, inst *abilityInstance) {
	for _, et := range inst.ability.Subscriptions() {
		eng.subs[et] = append(eng.subs[et], subscriberEntry{racerIdx: racerIdx, instance: inst})
	}
}

// unsubscribe removes every subscription entry bound to this exact
// instance (by pointer identity), leaving subscriptions from other
// instances of the same ability name on the same racer untouched.
func (eng *Engine) unsubscribe(inst *abilityInstance) {
	for et, entries := range eng.subs {
		kept := entries[:0:0]
		for _, e := range entries {
			if e.instance != inst {
				kept = append(kept, e)
			}
		}
		eng.subs[et] = kept
	}
}

// subscribersInClockwiseOrder returns the subscribers for et, sorted by
// (owner_idx - current) mod N.
func (eng *Engine) subscribersInClockwiseOrder(et EventType) []subscriberEntry {
	entries := append([]subscriberEntry(nil), eng.subs[et]...)
	n := eng.racerCount()
	sort.SliceStable(entries, func(i, j int) bool {
		return mod(entries[i].racerIdx-eng.CurrentRacerIdx, n) < mod(entries[j].racerIdx-eng.CurrentRacerIdx, n)
	})
	return entries
}

// publish invokes every subscriber for ev synchronously (not through the
// queue) — used for PreMoveEvent/PreWarpEvent and for "publish only"
// system events.
func (eng *Engine) publish(ev Event, locked map[string]struct{}) {
	for _, entry := range eng.subscribersInClockwiseOrder(ev.Type()) {
		if locked != nil {
			if _, skip := locked[entry.instance.id.Name]; skip {
				continue
			}
		}
		eng.invokeWrapped(entry, ev)
	}
}

// invokeWrapped applies the wrapped-handler policy common to every
// ability subscription:
//  1. if the owning racer is not active, do nothing;
//  2. otherwise call Execute; SkipTrigger does nothing further;
//  3. an AbilityTriggeredEvent result is scheduled.
func (eng *Engine) invokeWrapped(entry subscriberEntry, ev Event) {
	racer := eng.racer(entry.racerIdx)
	if racer == nil || !racer.Active() {
		return
	}
	agent := eng.agentFor(entry.racerIdx)
	trig, ok := entry.instance.ability.Execute(ev, racer, eng, agent)
	if !ok || trig == nil {
		return
	}
	if trig.ResponsibleIdx < 0 || trig.Source == "" {
		eng.fail(newDeveloperError("ability %q produced an AbilityTriggeredEvent with no responsible racer or source", entry.instance.id.Name))
		return
	}
	eng.scheduleRacerEvent(PhaseReaction, *trig, trig.ResponsibleIdx)
}

func (eng *Engine) agentFor(racerIdx int) Agent {
	if a, ok := eng.Agents[racerIdx]; ok && a != nil {
		return a
	}
	return eng.DefaultAgent
}

// fail records a DeveloperError and aborts the current turn, per
// "programming bugs... surface immediately and halt the
// turn; never recovered."
func (eng *Engine) fail(err *DeveloperError) {
	eng.Logger.Error("developer error, aborting turn", "error", err)
	eng.aborted = true
	eng.scheduler.Clear()
}

// dispatch pops one event and routes it to its built-in handler or to
// subscribers.
func (eng *Engine) dispatch(se ScheduledEvent) {
	prevDispatching, prevDepth := eng.dispatching, eng.dispatchDepth
	eng.dispatching = true
	eng.dispatchDepth = se.Depth
	defer func() {
		eng.dispatching = prevDispatching
		eng.dispatchDepth = prevDepth
	}()

	switch ev := se.Event.(type) {
	case MoveCmd:
		eng.handleMoveCmd(ev)
	case SimultaneousMoveCmd:
		eng.handleSimultaneousMoveCmd(ev)
	case WarpCmd:
		eng.handleWarpCmd(ev)
	case SimultaneousWarpCmd:
		eng.handleSimultaneousWarpCmd(ev)
	case TripCmd:
		eng.handleTripCmd(ev)
	case PerformMainRollEvent:
		eng.handlePerformMainRoll(ev)
	case ResolveMainMoveEvent:
		eng.publish(ev, se.LockedAbilities)
		eng.handleResolveMainMove(ev)
	case ExecuteMainMoveEvent:
		eng.handleExecuteMainMove(ev)
	case TurnStartEvent, PassingEvent, AbilityTriggeredEvent,
		RollModificationWindowEvent, RacerFinishedEvent, RollResultEvent,
		PostMoveEvent, PostWarpEvent, PostTripEvent, TripRecoveryEvent:
		eng.publish(ev, se.LockedAbilities)
	default:
		eng.fail(newDeveloperError("unrecognized event type %T reached the dispatcher", ev))
	}

	if eng.OnEventProcessed != nil {
		eng.OnEventProcessed(eng, se)
	}
}
