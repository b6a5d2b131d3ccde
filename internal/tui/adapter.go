// Package tui renders a live spectator view of a race, subscribed to the
// engine's Observer hook and driven entirely by events, since the engine
// has no interactive decision surface to render.
package tui

import (
	"fmt"

	"github.com/lox/racesim/internal/engine"
)

// RacerSnapshot is one racer's displayable state at the moment a Frame
// was captured.
type RacerSnapshot struct {
	Idx        int
	Name       string
	Position   int
	VP         int
	Tripped    bool
	Finished   bool
	Eliminated bool
	Rank       int
}

// Frame is one line of race history plus a full standings snapshot,
// pushed to the TUI each time the engine's Observer hook fires.
type Frame struct {
	Line     string
	BoardLen int
	Racers   []RacerSnapshot
}

// Feed adapts an *engine.Engine's OnEventProcessed hook into a channel of
// Frames a bubbletea program can read. Attach installs the hook;
// Attach must be called before eng.Run.
type Feed struct {
	ch chan Frame
}

// NewFeed creates a Feed with the given buffer size.
func NewFeed(buffer int) *Feed {
	return &Feed{ch: make(chan Frame, buffer)}
}

// Chan returns the channel frames arrive on.
func (f *Feed) Chan() <-chan Frame {
	return f.ch
}

// Attach installs the feed as eng's Observer hook. It never mutates
// engine state — it only reads
// eng.Racers and se.Event to build a Frame.
func (f *Feed) Attach(eng *engine.Engine) {
	eng.OnEventProcessed = func(eng *engine.Engine, se engine.ScheduledEvent) {
		line := describeEvent(se)
		if line == "" {
			return
		}
		frame := Frame{
			Line:     line,
			BoardLen: eng.Board.Length,
			Racers:   snapshot(eng),
		}
		select {
		case f.ch <- frame:
		default:
			// Drop the frame rather than block the turn loop; the TUI is an
			// observer, never allowed to slow the engine down.
		}
	}
}

// Close signals no more frames will arrive.
func (f *Feed) Close() {
	close(f.ch)
}

func snapshot(eng *engine.Engine) []RacerSnapshot {
	out := make([]RacerSnapshot, len(eng.Racers))
	for i, r := range eng.Racers {
		out[i] = RacerSnapshot{
			Idx:        r.Idx,
			Name:       r.Name,
			Position:   r.Position,
			VP:         r.VictoryPoints,
			Tripped:    r.Tripped,
			Finished:   r.Finished,
			Eliminated: r.Eliminated,
			Rank:       r.FinishRank,
		}
	}
	return out
}

// describeEvent renders a one-line human summary of the dispatched event
// for the log pane; events without a case below (commands, roll-pipeline
// bookkeeping such as the modification window and resolve/execute steps)
// render as "" to keep the log readable.
func describeEvent(se engine.ScheduledEvent) string {
	switch ev := se.Event.(type) {
	case engine.TurnStartEvent:
		return fmt.Sprintf("round %d: racer %d's turn", ev.Round, ev.RacerIdx)
	case engine.RollResultEvent:
		return fmt.Sprintf("racer %d rolls %d (base %d)", ev.RacerIdx, ev.Final, ev.Base)
	case engine.PostMoveEvent:
		return fmt.Sprintf("racer %d moves %d -> %d", ev.RacerIdx, ev.Start, ev.End)
	case engine.PostWarpEvent:
		return fmt.Sprintf("racer %d warps %d -> %d", ev.RacerIdx, ev.Start, ev.End)
	case engine.PassingEvent:
		return fmt.Sprintf("racer %d passes racer %d on tile %d", ev.MoverIdx, ev.VictimIdx, ev.Tile)
	case engine.PostTripEvent:
		return fmt.Sprintf("racer %d tripped by racer %d", ev.RacerIdx, ev.ResponsibleIdx)
	case engine.AbilityTriggeredEvent:
		return fmt.Sprintf("%s triggers (racer %d)", ev.AbilityName, ev.ResponsibleIdx)
	case engine.RacerFinishedEvent:
		return fmt.Sprintf("racer %d finishes rank %d", ev.RacerIdx, ev.Rank)
	default:
		return ""
	}
}
