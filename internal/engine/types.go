package engine

// Phase is a coarse, ordered scheduling band. Lower phases always drain
// completely before a higher phase is considered.
type Phase int

const (
	PhaseSystem     Phase = 0
	PhasePreMain    Phase = 10
	PhaseRollDice   Phase = 15
	PhaseRollWindow Phase = 18
	PhaseMainAct    Phase = 20
	PhaseMoveExec   Phase = 21
	PhaseReaction   Phase = 25
)

// String renders the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseSystem:
		return "system"
	case PhasePreMain:
		return "pre_main"
	case PhaseRollDice:
		return "roll_dice"
	case PhaseRollWindow:
		return "roll_window"
	case PhaseMainAct:
		return "main_act"
	case PhaseMoveExec:
		return "move_exec"
	case PhaseReaction:
		return "reaction"
	default:
		return "unknown_phase"
	}
}

// TimingMode selects how the scheduler orders events within a phase.
type TimingMode int

const (
	// Flat ignores nesting depth entirely; only priority and serial order
	// events within a phase.
	Flat TimingMode = iota
	// BFS drains shallower (earlier-pushed) reactions before deeper ones —
	// a ripple, level by level.
	BFS
	// DFS drains deeper (nested) reactions before their parents' siblings.
	DFS
)

// String renders the timing mode name, used in Rules HCL and logging.
func (m TimingMode) String() string {
	switch m {
	case Flat:
		return "flat"
	case BFS:
		return "bfs"
	case DFS:
		return "dfs"
	default:
		return "unknown_mode"
	}
}

// ParseTimingMode parses a rules-file string into a TimingMode.
func ParseTimingMode(s string) (TimingMode, bool) {
	switch s {
	case "flat", "FLAT":
		return Flat, true
	case "bfs", "BFS":
		return BFS, true
	case "dfs", "DFS":
		return DFS, true
	default:
		return Flat, false
	}
}

// EmitMode controls whether a command event automatically emits an
// AbilityTriggeredEvent for itself.
type EmitMode int

const (
	EmitNever EmitMode = iota
	EmitImmediately
	EmitAfterResolution
)

// Rules bundles the rules options a scenario is constructed with.
type Rules struct {
	WinnerVP                       [2]int
	TimingMode                     TimingMode
	Count0MovesForAbilityTriggered bool
	HRMastermindSteal1st           bool
}

// DefaultRules returns a sensible rules default: WinnerVP {3, 1}, BFS
// timing, and both optional rule flags off. Callers pass it to NewEngine
// explicitly; NewEngine does not substitute it for a zero Rules value.
func DefaultRules() Rules {
	return Rules{
		WinnerVP:   [2]int{3, 1},
		TimingMode: BFS,
	}
}

// Racer is the authoritative record of one racer. It is owned exclusively
// by GameState; nothing outside the engine mutates it directly.
type Racer struct {
	Idx  int
	Name string

	Position   int
	Eliminated bool
	Finished   bool
	FinishRank int // 0 = unranked

	VictoryPoints int
	Tripped       bool
	// TrippingRacers accumulates every racer responsible for tripping this
	// racer, even after the first trip — attribution is cumulative by
	// design.
	TrippingRacers []int

	Modifiers []Modifier
	Abilities map[string]*abilityInstance

	MainMoveConsumed bool
	RerollCount      int
	RollOverride     *int
}

// Active reports whether the racer is still running the race.
func (r *Racer) Active() bool {
	return !r.Finished && !r.Eliminated
}

func newRacer(idx int, name string, start int) *Racer {
	return &Racer{
		Idx:       idx,
		Name:      name,
		Position:  start,
		Abilities: make(map[string]*abilityInstance),
	}
}
