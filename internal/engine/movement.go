package engine

// commandTrigger builds the AbilityTriggeredEvent a command emits for
// itself, attributed to its issuing source/racer.
func (eng *Engine) commandTrigger(source string, responsibleIdx int) *AbilityTriggeredEvent {
	return &AbilityTriggeredEvent{
		AbilityName:    source,
		OwnerIdx:       responsibleIdx,
		ResponsibleIdx: responsibleIdx,
		Source:         source,
	}
}

// scheduleTriggers schedules each collected ability-triggered event as a
// REACTION-phase event attributed to its own responsible racer.
func (eng *Engine) scheduleTriggers(triggers []*AbilityTriggeredEvent) {
	for _, t := range triggers {
		if t == nil {
			continue
		}
		if t.ResponsibleIdx < 0 || t.Source == "" {
			eng.fail(newDeveloperError("ability %q produced a trigger with no responsible racer or source", t.AbilityName))
			return
		}
		eng.scheduleRacerEvent(PhaseReaction, *t, t.ResponsibleIdx)
	}
}

// PushMoveCmd schedules a MoveCmd. If cmd.Emit is EmitImmediately, the
// command's own ability-triggered event is emitted right away, before the
// command itself resolves.
func (eng *Engine) PushMoveCmd(cmd MoveCmd) {
	if cmd.Emit == EmitImmediately {
		eng.scheduleTriggers([]*AbilityTriggeredEvent{eng.commandTrigger(cmd.Source, cmd.ResponsibleIdx)})
	}
	eng.scheduleRacerEvent(cmd.Phase, cmd, cmd.ResponsibleIdx)
}

// PushSimultaneousMoveCmd is the simultaneous-move analogue of PushMoveCmd.
func (eng *Engine) PushSimultaneousMoveCmd(cmd SimultaneousMoveCmd) {
	if cmd.Emit == EmitImmediately {
		eng.scheduleTriggers([]*AbilityTriggeredEvent{eng.commandTrigger(cmd.Source, cmd.ResponsibleIdx)})
	}
	eng.scheduleRacerEvent(cmd.Phase, cmd, cmd.ResponsibleIdx)
}

// PushWarpCmd is the warp analogue of PushMoveCmd.
func (eng *Engine) PushWarpCmd(cmd WarpCmd) {
	if cmd.Emit == EmitImmediately {
		eng.scheduleTriggers([]*AbilityTriggeredEvent{eng.commandTrigger(cmd.Source, cmd.ResponsibleIdx)})
	}
	eng.scheduleRacerEvent(cmd.Phase, cmd, cmd.ResponsibleIdx)
}

// PushSimultaneousWarpCmd is the simultaneous-warp analogue.
func (eng *Engine) PushSimultaneousWarpCmd(cmd SimultaneousWarpCmd) {
	if cmd.Emit == EmitImmediately {
		eng.scheduleTriggers([]*AbilityTriggeredEvent{eng.commandTrigger(cmd.Source, cmd.ResponsibleIdx)})
	}
	eng.scheduleRacerEvent(cmd.Phase, cmd, cmd.ResponsibleIdx)
}

// PushTripCmd schedules a TripCmd.
func (eng *Engine) PushTripCmd(cmd TripCmd) {
	if cmd.Emit == EmitImmediately {
		eng.scheduleTriggers([]*AbilityTriggeredEvent{eng.commandTrigger(cmd.Source, cmd.ResponsibleIdx)})
	}
	eng.scheduleRacerEvent(cmd.Phase, cmd, cmd.ResponsibleIdx)
}

// racerDestinationCalculator returns the first modifier on racer
// implementing DestinationCalculator, in priority order, or nil.
func racerDestinationCalculator(racer *Racer) DestinationCalculator {
	sorted := append([]Modifier(nil), racer.Modifiers...)
	sortByPriority(sorted)
	for _, m := range sorted {
		if dc, ok := m.(DestinationCalculator); ok {
			return dc
		}
	}
	return nil
}

// racerValidators returns racer's MovementValidator modifiers in
// priority order.
func racerValidators(racer *Racer) []MovementValidator {
	sorted := append([]Modifier(nil), racer.Modifiers...)
	sortByPriority(sorted)
	var out []MovementValidator
	for _, m := range sorted {
		if mv, ok := m.(MovementValidator); ok {
			out = append(out, mv)
		}
	}
	return out
}

// planMove runs pre-move through board-redirection for one mover,
// without committing any position change.
func (eng *Engine) planMove(racer *Racer, distance int, source string, phase Phase) (end int, collected []*AbilityTriggeredEvent) {
	start := racer.Position
	eng.publish(PreMoveEvent{RacerIdx: racer.Idx, Start: start, Distance: distance, Source: source, Phase: phase}, nil)

	physEnd := start + distance
	if dc := racerDestinationCalculator(racer); dc != nil {
		var triggers []*AbilityTriggeredEvent
		physEnd, triggers = dc.CalcDestination(start, distance, racer, eng)
		collected = append(collected, triggers...)
	}

	vetoed := false
	for _, mv := range racerValidators(racer) {
		ok, trig := mv.Validate(start, physEnd, racer, eng)
		if !ok {
			vetoed = true
			if trig != nil {
				collected = append(collected, trig)
			}
			break
		}
	}

	if vetoed {
		return start, collected
	}

	var redirTriggers []*AbilityTriggeredEvent
	end, redirTriggers = eng.Board.resolvePosition(physEnd, racer, eng)
	collected = append(collected, redirTriggers...)
	if end < 0 {
		end = 0
	}
	return end, collected
}

// planWarp is planMove's warp analogue: candidate is the explicit
// destination, and there is no DestinationCalculator step.
func (eng *Engine) planWarp(racer *Racer, destination int, source string, phase Phase) (end int, collected []*AbilityTriggeredEvent) {
	start := racer.Position
	eng.publish(PreWarpEvent{RacerIdx: racer.Idx, Start: start, Destination: destination, Source: source, Phase: phase}, nil)

	vetoed := false
	for _, mv := range racerValidators(racer) {
		ok, trig := mv.Validate(start, destination, racer, eng)
		if !ok {
			vetoed = true
			if trig != nil {
				collected = append(collected, trig)
			}
			break
		}
	}

	if vetoed {
		return start, collected
	}

	var redirTriggers []*AbilityTriggeredEvent
	end, redirTriggers = eng.Board.resolvePosition(destination, racer, eng)
	collected = append(collected, redirTriggers...)
	if end < 0 {
		end = 0
	}
	return end, collected
}

func suppressIfZeroMove(eng *Engine, start, end int, collected []*AbilityTriggeredEvent) []*AbilityTriggeredEvent {
	if end == start && !eng.Rules.Count0MovesForAbilityTriggered {
		return nil
	}
	return collected
}

// passingTiles returns the tiles strictly between start and end,
// travelling in the direction of movement, clamped to the track
// [0, length).
func passingTiles(start, end, length int) []int {
	if end == start {
		return nil
	}
	dir := 1
	if end < start {
		dir = -1
	}
	var tiles []int
	for t := start + dir; t != end; t += dir {
		if t >= 0 && t < length {
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// runPassing schedules a PassingEvent for every other active racer
// standing on a tile the mover's path crosses.
func (eng *Engine) runPassing(mover *Racer, start, end int) {
	for _, tile := range passingTiles(start, end, eng.Board.Length) {
		for _, other := range eng.Racers {
			if other.Idx == mover.Idx || !other.Active() || other.Position != tile {
				continue
			}
			eng.scheduleRacerEvent(PhaseReaction, PassingEvent{MoverIdx: mover.Idx, VictimIdx: other.Idx, Tile: tile}, mover.Idx)
		}
	}
}

// landAndPostMove runs landing hooks and the post-move publish for a
// racer that just committed to `end`. Returns early (no landing hooks)
// if the racer finished on arrival.
func (eng *Engine) landAndPostMove(racer *Racer, start, end int) {
	if end >= eng.Board.Length {
		eng.markFinished(racer)
		return
	}
	eng.scheduleTriggers(eng.Board.triggerOnLand(end, racer, eng))
	eng.publish(PostMoveEvent{RacerIdx: racer.Idx, Start: start, End: end}, nil)
}

func (eng *Engine) landAndPostWarp(racer *Racer, start, end int) {
	if end >= eng.Board.Length {
		eng.markFinished(racer)
		return
	}
	eng.scheduleTriggers(eng.Board.triggerOnLand(end, racer, eng))
	eng.publish(PostWarpEvent{RacerIdx: racer.Idx, Start: start, End: end}, nil)
}

// handleMoveCmd implements the full single-mover movement pipeline:
// pre-move, destination calculation, validation, board redirection,
// commit, passing detection, finish check, and landing hooks.
func (eng *Engine) handleMoveCmd(cmd MoveCmd) {
	racer := eng.racer(cmd.TargetIdx)
	if racer == nil || !racer.Active() || cmd.Distance == 0 {
		return
	}

	start := racer.Position
	end, collected := eng.planMove(racer, cmd.Distance, cmd.Source, cmd.Phase)
	collected = suppressIfZeroMove(eng, start, end, collected)

	racer.Position = end
	eng.scheduleTriggers(collected)

	if cmd.Emit == EmitAfterResolution && (end != start || eng.Rules.Count0MovesForAbilityTriggered) {
		eng.scheduleTriggers([]*AbilityTriggeredEvent{eng.commandTrigger(cmd.Source, cmd.ResponsibleIdx)})
	}

	if end == start {
		return
	}

	eng.runPassing(racer, start, end)
	eng.landAndPostMove(racer, start, end)
}

// handleWarpCmd implements warp variant: no passing step,
// Pre/PostWarp events instead of Pre/PostMove.
func (eng *Engine) handleWarpCmd(cmd WarpCmd) {
	racer := eng.racer(cmd.TargetIdx)
	if racer == nil || !racer.Active() {
		return
	}

	start := racer.Position
	end, collected := eng.planWarp(racer, cmd.Destination, cmd.Source, cmd.Phase)
	collected = suppressIfZeroMove(eng, start, end, collected)

	racer.Position = end
	eng.scheduleTriggers(collected)

	if cmd.Emit == EmitAfterResolution && (end != start || eng.Rules.Count0MovesForAbilityTriggered) {
		eng.scheduleTriggers([]*AbilityTriggeredEvent{eng.commandTrigger(cmd.Source, cmd.ResponsibleIdx)})
	}

	if end == start {
		return
	}

	eng.landAndPostWarp(racer, start, end)
}

type movePlan struct {
	racer *Racer
	start int
	end   int
}

// handleSimultaneousMoveCmd implements the plan-then-commit protocol:
// every sub-move is planned against the pre-commit board before any
// position is mutated, so a simultaneous swap never causes either mover
// to transiently occupy the other's tile.
func (eng *Engine) handleSimultaneousMoveCmd(cmd SimultaneousMoveCmd) {
	var plans []movePlan
	var collected []*AbilityTriggeredEvent

	for _, spec := range cmd.Moves {
		racer := eng.racer(spec.TargetIdx)
		if racer == nil || !racer.Active() || spec.Distance == 0 {
			continue
		}
		start := racer.Position
		end, evs := eng.planMove(racer, spec.Distance, cmd.Source, cmd.Phase)
		collected = append(collected, evs...)
		plans = append(plans, movePlan{racer: racer, start: start, end: end})
	}

	eng.scheduleTriggers(collected)

	effective := plans[:0:0]
	for _, p := range plans {
		if p.end != p.start {
			effective = append(effective, p)
		}
	}

	if cmd.Emit == EmitAfterResolution && (len(effective) > 0 || eng.Rules.Count0MovesForAbilityTriggered) {
		eng.scheduleTriggers([]*AbilityTriggeredEvent{eng.commandTrigger(cmd.Source, cmd.ResponsibleIdx)})
	}

	for _, p := range effective {
		eng.runPassing(p.racer, p.start, p.end)
	}

	for _, p := range effective {
		p.racer.Position = p.end
	}

	for _, p := range effective {
		eng.landAndPostMove(p.racer, p.start, p.end)
	}
}

// handleSimultaneousWarpCmd mirrors handleSimultaneousMoveCmd without the
// passing step, using Pre/PostWarp events.
func (eng *Engine) handleSimultaneousWarpCmd(cmd SimultaneousWarpCmd) {
	var plans []movePlan
	var collected []*AbilityTriggeredEvent

	for _, spec := range cmd.Warps {
		racer := eng.racer(spec.TargetIdx)
		if racer == nil || !racer.Active() {
			continue
		}
		start := racer.Position
		end, evs := eng.planWarp(racer, spec.Destination, cmd.Source, cmd.Phase)
		collected = append(collected, evs...)
		plans = append(plans, movePlan{racer: racer, start: start, end: end})
	}

	eng.scheduleTriggers(collected)

	effective := plans[:0:0]
	for _, p := range plans {
		if p.end != p.start {
			effective = append(effective, p)
		}
	}

	if cmd.Emit == EmitAfterResolution && (len(effective) > 0 || eng.Rules.Count0MovesForAbilityTriggered) {
		eng.scheduleTriggers([]*AbilityTriggeredEvent{eng.commandTrigger(cmd.Source, cmd.ResponsibleIdx)})
	}

	for _, p := range effective {
		p.racer.Position = p.end
	}

	for _, p := range effective {
		eng.landAndPostWarp(p.racer, p.start, p.end)
	}
}

// handleTripCmd implements the trip handler. TrippingRacers accumulates
// attribution on every active-target trip command, even a repeat one,
// while Tripped itself only transitions false->true once (see
// DESIGN.md for this Open Question's resolution).
func (eng *Engine) handleTripCmd(cmd TripCmd) {
	racer := eng.racer(cmd.TargetIdx)
	if racer == nil || !racer.Active() {
		return
	}

	racer.Tripped = true
	racer.TrippingRacers = append(racer.TrippingRacers, cmd.ResponsibleIdx)

	if cmd.Emit == EmitAfterResolution {
		eng.scheduleTriggers([]*AbilityTriggeredEvent{eng.commandTrigger(cmd.Source, cmd.ResponsibleIdx)})
	}

	eng.publish(PostTripEvent{RacerIdx: racer.Idx, ResponsibleIdx: cmd.ResponsibleIdx}, nil)
}
