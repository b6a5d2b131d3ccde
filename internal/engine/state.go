package engine

import (
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"
)

// RollState tracks the monotonically increasing roll serial and the
// dice/base/final values of the current main roll.
type RollState struct {
	SerialID   int64
	DiceValue  *int
	BaseValue  int
	FinalValue int
}

// RosterEntry describes one racer at scenario construction.
type RosterEntry struct {
	Idx       int
	Name      string
	Start     int
	Abilities []string
}

// subscriberEntry binds an installed ability instance to the racer that
// owns it, for clockwise-from-current-racer subscriber ordering.
type subscriberEntry struct {
	racerIdx int
	instance *abilityInstance
}

// Engine is GameState: the sole owner of every racer record, the board,
// the roll state, the scheduler queue, the history set, and the rules.
// Nothing outside the engine mutates this state.
type Engine struct {
	Racers []*Racer
	Board  *Board
	Roll   RollState
	Rules  Rules

	scheduler *Scheduler
	RNG       DiceSource

	Agents       map[int]Agent
	DefaultAgent Agent
	Registry     *AbilityRegistry

	Logger           *log.Logger
	OnEventProcessed func(eng *Engine, se ScheduledEvent)

	CurrentRacerIdx  int
	Round            int
	RaceActive       bool
	NextTurnOverride *int

	history map[uint64]struct{}
	subs    map[EventType][]subscriberEntry

	dispatching   bool
	dispatchDepth int

	// ancillary is engine-owned scratch storage indexed by ability name
	// then racer index, used by abilities that need cross-turn memory
	// (e.g. a "heckler"-style ability tracking every racer's turn-start
	// position) without resorting to package-level mutable state.
	ancillary map[string]map[int]any

	standings []StandingEntry
	aborted   bool
}

// StandingEntry is one line of the final standings.
type StandingEntry struct {
	RacerIdx   int
	Name       string
	Rank       int // 0 = eliminated/unranked
	Eliminated bool
}

// NewEngine constructs a scenario: roster, board, rules, dice source, and
// per-racer agents. Starting abilities are installed and
// OnGain/OnSetup hooks fire before the first turn runs.
func NewEngine(roster []RosterEntry, board *Board, rules Rules, rng DiceSource, agents map[int]Agent, defaultAgent Agent, registry *AbilityRegistry, logger *log.Logger) (*Engine, error) {
	if len(roster) == 0 {
		return nil, newDeveloperError("roster must not be empty")
	}
	if logger == nil {
		logger = log.Default()
	}
	if registry == nil {
		registry = NewAbilityRegistry()
	}
	if agents == nil {
		agents = make(map[int]Agent)
	}

	eng := &Engine{
		Rules:        rules,
		scheduler:    NewScheduler(rules.TimingMode),
		RNG:          rng,
		Agents:       agents,
		DefaultAgent: defaultAgent,
		Registry:     registry,
		Logger:       logger,
		RaceActive:   true,
		history:      make(map[uint64]struct{}),
		subs:         make(map[EventType][]subscriberEntry),
		ancillary:    make(map[string]map[int]any),
	}

	sorted := append([]RosterEntry(nil), roster...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Idx < sorted[j].Idx })

	for _, re := range sorted {
		racer := newRacer(re.Idx, re.Name, re.Start)
		eng.Racers = append(eng.Racers, racer)
	}
	eng.Board = board

	for _, re := range sorted {
		racer := eng.racer(re.Idx)
		if err := eng.updateRacerAbilities(racer, re.Abilities); err != nil {
			return nil, err
		}
		for _, name := range re.Abilities {
			inst := racer.Abilities[name]
			if inst == nil {
				continue
			}
			if setup, ok := inst.ability.(SetupHook); ok {
				setup.OnSetup(racer, eng)
			}
		}
	}

	return eng, nil
}

// racer returns the racer with the given index, or nil. Engine always
// keeps racers indexed densely from 0, matching how turn order and
// priority offsets are computed.
func (eng *Engine) racer(idx int) *Racer {
	for _, r := range eng.Racers {
		if r.Idx == idx {
			return r
		}
	}
	return nil
}

func (eng *Engine) racerCount() int {
	return len(eng.Racers)
}

// mod is a correct (always non-negative) modulo for the clockwise
// turn-order arithmetic used to compute event priority.
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// turnOrderPriority computes the "1 + clockwise offset" priority used for
// every non-system event.
func (eng *Engine) turnOrderPriority(responsibleIdx int) int {
	n := eng.racerCount()
	return 1 + mod(responsibleIdx-eng.CurrentRacerIdx, n)
}

// hashState computes the per-turn cycle-detection hash over every racer's
// (position, tripped, finished, eliminated, vp, ability-name set,
// modifier-name set), every tile's dynamic-modifier-name set, and the
// current roll serial+base.
func (eng *Engine) hashState() uint64 {
	h := fnv.New64a()
	write := func(s string) { _, _ = h.Write([]byte(s)) }
	writeInt := func(n int) { write(strconv.Itoa(n)) }

	for _, r := range eng.Racers {
		writeInt(r.Idx)
		writeInt(r.Position)
		write(boolByte(r.Tripped))
		write(boolByte(r.Finished))
		write(boolByte(r.Eliminated))
		writeInt(r.VictoryPoints)

		names := make([]string, 0, len(r.Abilities))
		for n := range r.Abilities {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			write(n)
		}

		modNames := make([]string, 0, len(r.Modifiers))
		for _, m := range r.Modifiers {
			modNames = append(modNames, m.Name())
		}
		sort.Strings(modNames)
		for _, n := range modNames {
			write(n)
		}
		write("|")
	}

	for tile := 0; tile <= eng.Board.Length; tile++ {
		names := eng.Board.dynamicModifierNames(tile)
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		writeInt(tile)
		for _, n := range names {
			write(n)
		}
	}

	writeInt(int(eng.Roll.SerialID))
	writeInt(eng.Roll.BaseValue)

	return h.Sum64()
}

func boolByte(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ancillaryTable returns (creating if needed) the per-ability scratch
// table keyed by racer index.
func (eng *Engine) ancillaryTable(abilityName string) map[int]any {
	t, ok := eng.ancillary[abilityName]
	if !ok {
		t = make(map[int]any)
		eng.ancillary[abilityName] = t
	}
	return t
}

// AncillarySet stores engine-owned scratch state for an ability, indexed
// by racer, instead of a package-level variable.
func (eng *Engine) AncillarySet(abilityName string, racerIdx int, v any) {
	eng.ancillaryTable(abilityName)[racerIdx] = v
}

// AncillaryGet retrieves engine-owned scratch state for an ability.
func (eng *Engine) AncillaryGet(abilityName string, racerIdx int) (any, bool) {
	v, ok := eng.ancillaryTable(abilityName)[racerIdx]
	return v, ok
}

// Standings returns the final standings, valid once the race has ended.
func (eng *Engine) Standings() []StandingEntry {
	return eng.standings
}
