package engine

// EventType identifies the closed set of event shapes the dispatcher
// understands. It participates in exhaustive switches at the dispatcher
// and is therefore kept as a small closed enumeration rather than an
// open string.
type EventType string

const (
	EventTurnStart              EventType = "turn_start"
	EventTripRecovery           EventType = "trip_recovery"
	EventPerformMainRoll        EventType = "perform_main_roll"
	EventRollModificationWindow EventType = "roll_modification_window"
	EventResolveMainMove        EventType = "resolve_main_move"
	EventExecuteMainMove        EventType = "execute_main_move"
	EventRollResult             EventType = "roll_result"
	EventMoveCmd                EventType = "move_cmd"
	EventSimultaneousMoveCmd    EventType = "simultaneous_move_cmd"
	EventWarpCmd                EventType = "warp_cmd"
	EventSimultaneousWarpCmd    EventType = "simultaneous_warp_cmd"
	EventTripCmd                EventType = "trip_cmd"
	EventPreMove                EventType = "pre_move"
	EventPostMove               EventType = "post_move"
	EventPreWarp                EventType = "pre_warp"
	EventPostWarp               EventType = "post_warp"
	EventPostTrip               EventType = "post_trip"
	EventPassing                EventType = "passing"
	EventAbilityTriggered       EventType = "ability_triggered"
	EventRacerFinished          EventType = "racer_finished"
)

// Event is any message the scheduler can carry. Event types are a closed
// sum; the dispatcher type-switches on the concrete event type and treats
// any type without a case as a DeveloperError.
type Event interface {
	Type() EventType
}

// MoveSpec is one leg of a simultaneous move/warp command.
type MoveSpec struct {
	TargetIdx int
	Distance  int
}

type WarpSpec struct {
	TargetIdx   int
	Destination int
}

// TurnStartEvent marks the beginning of a racer's turn.
type TurnStartEvent struct {
	RacerIdx int
	Round    int
}

func (TurnStartEvent) Type() EventType { return EventTurnStart }

// TripRecoveryEvent marks a tripped racer recovering instead of acting.
type TripRecoveryEvent struct {
	RacerIdx int
}

func (TripRecoveryEvent) Type() EventType { return EventTripRecovery }

// PerformMainRollEvent requests the main-roll pipeline run for a racer.
type PerformMainRollEvent struct {
	RacerIdx int
}

func (PerformMainRollEvent) Type() EventType { return EventPerformMainRoll }

// RollModificationWindowEvent publishes the locked-in final roll value so
// reroll-capable abilities may react before move execution.
type RollModificationWindowEvent struct {
	RacerIdx   int
	FinalValue int
	Serial     int64
}

func (RollModificationWindowEvent) Type() EventType { return EventRollModificationWindow }

// ResolveMainMoveEvent carries a roll serial; it is discarded if the
// serial no longer matches the current roll state (stale-roll safety).
type ResolveMainMoveEvent struct {
	RacerIdx          int
	Serial            int64
	TriggeredByRoll   []*AbilityTriggeredEvent
	ModifierBreakdown []RollDelta
}

func (ResolveMainMoveEvent) Type() EventType { return EventResolveMainMove }

// ExecuteMainMoveEvent pushes the actual MoveCmd for a resolved main roll.
type ExecuteMainMoveEvent struct {
	RacerIdx int
	Serial   int64
}

func (ExecuteMainMoveEvent) Type() EventType { return EventExecuteMainMove }

// RollResultEvent is published once a roll is locked in, for abilities and
// observers that merely watch the result.
type RollResultEvent struct {
	RacerIdx int
	Base     int
	Final    int
	Serial   int64
}

func (RollResultEvent) Type() EventType { return EventRollResult }

// MoveCmd requests that a racer move a signed distance.
type MoveCmd struct {
	TargetIdx      int
	Distance       int
	Source         string
	Phase          Phase
	Emit           EmitMode
	ResponsibleIdx int
	IsMain         bool
}

func (MoveCmd) Type() EventType { return EventMoveCmd }

// SimultaneousMoveCmd requests an atomic plan-then-commit batch of moves.
type SimultaneousMoveCmd struct {
	Moves          []MoveSpec
	Source         string
	Phase          Phase
	Emit           EmitMode
	ResponsibleIdx int
}

func (SimultaneousMoveCmd) Type() EventType { return EventSimultaneousMoveCmd }

// WarpCmd requests a racer be placed directly at a destination tile.
type WarpCmd struct {
	TargetIdx      int
	Destination    int
	Source         string
	Phase          Phase
	Emit           EmitMode
	ResponsibleIdx int
}

func (WarpCmd) Type() EventType { return EventWarpCmd }

// SimultaneousWarpCmd requests an atomic plan-then-commit batch of warps.
type SimultaneousWarpCmd struct {
	Warps          []WarpSpec
	Source         string
	Phase          Phase
	Emit           EmitMode
	ResponsibleIdx int
}

func (SimultaneousWarpCmd) Type() EventType { return EventSimultaneousWarpCmd }

// TripCmd requests that a racer be tripped by a responsible racer.
type TripCmd struct {
	TargetIdx      int
	Source         string
	Phase          Phase
	Emit           EmitMode
	ResponsibleIdx int
}

func (TripCmd) Type() EventType { return EventTripCmd }

// PreMoveEvent is published synchronously (not via the queue) before
// destination calculation begins.
type PreMoveEvent struct {
	RacerIdx int
	Start    int
	Distance int
	Source   string
	Phase    Phase
}

func (PreMoveEvent) Type() EventType { return EventPreMove }

// PostMoveEvent is published after a move (or simultaneous move) commits.
type PostMoveEvent struct {
	RacerIdx int
	Start    int
	End      int
}

func (PostMoveEvent) Type() EventType { return EventPostMove }

type PreWarpEvent struct {
	RacerIdx    int
	Start       int
	Destination int
	Source      string
	Phase       Phase
}

func (PreWarpEvent) Type() EventType { return EventPreWarp }

type PostWarpEvent struct {
	RacerIdx int
	Start    int
	End      int
}

func (PostWarpEvent) Type() EventType { return EventPostWarp }

// PostTripEvent is published after a trip is applied.
type PostTripEvent struct {
	RacerIdx       int
	ResponsibleIdx int
}

func (PostTripEvent) Type() EventType { return EventPostTrip }

// PassingEvent is scheduled once per (mover, victim) pair when the mover's
// path crosses an occupied tile strictly between start and end.
type PassingEvent struct {
	MoverIdx  int
	VictimIdx int
	Tile      int
}

func (PassingEvent) Type() EventType { return EventPassing }

// AbilityTriggeredEvent is the sole vehicle by which abilities observe
// that something fired. Every instance must carry a non-null
// ResponsibleIdx and a non-system Source (enforced centrally).
type AbilityTriggeredEvent struct {
	AbilityName    string
	OwnerIdx       int
	ResponsibleIdx int
	Source         string
	Payload        any
}

func (AbilityTriggeredEvent) Type() EventType { return EventAbilityTriggered }

// RacerFinishedEvent is published when a racer is assigned a finish rank.
type RacerFinishedEvent struct {
	RacerIdx int
	Rank     int
}

func (RacerFinishedEvent) Type() EventType { return EventRacerFinished }
