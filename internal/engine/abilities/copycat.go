package abilities

import (
	"sort"
	"strings"

	"github.com/lox/racesim/internal/engine"
)

// copycat keeps its own core ability set in lockstep with the current
// lead racer's: at the start of every one of its turns it looks at
// whoever is furthest ahead, picks one of their self-owned abilities
// (alphabetically, for determinism), and swaps to it via
// ReplaceCoreAbilities if it isn't already copying it. Grounded on the
// Python reference's CopyLead, simplified from "copy every lead ability"
// to "copy one" to keep the demonstration legible.
type copycat struct {
	copied string
}

func (c *copycat) Name() string                     { return "copycat" }
func (c *copycat) Subscriptions() []engine.EventType { return []engine.EventType{engine.EventTurnStart} }

func (c *copycat) Execute(ev engine.Event, owner *engine.Racer, eng *engine.Engine, agent engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	ts, ok := ev.(engine.TurnStartEvent)
	if !ok || ts.RacerIdx != owner.Idx {
		return engine.SkipTrigger, false
	}

	leader := leadRacer(eng, owner.Idx)
	target := ""
	if leader != nil {
		target = firstCoreAbilityName(leader)
	}
	if target == c.copied {
		return engine.SkipTrigger, false
	}

	names := []string{"copycat"}
	if target != "" {
		names = append(names, target)
	}
	if err := eng.ReplaceCoreAbilities(owner.Idx, names); err != nil {
		return engine.SkipTrigger, false
	}
	c.copied = target
	if target == "" {
		return engine.SkipTrigger, false
	}

	return &engine.AbilityTriggeredEvent{
		AbilityName:    "copycat",
		OwnerIdx:       owner.Idx,
		ResponsibleIdx: owner.Idx,
		Source:         "copycat",
		Payload:        target,
	}, true
}

// leadRacer returns the furthest-along active racer other than
// exceptIdx, ties broken by lowest index for determinism.
func leadRacer(eng *engine.Engine, exceptIdx int) *engine.Racer {
	var lead *engine.Racer
	for _, r := range eng.Racers {
		if r.Idx == exceptIdx || !r.Active() {
			continue
		}
		if lead == nil || r.Position > lead.Position || (r.Position == lead.Position && r.Idx < lead.Idx) {
			lead = r
		}
	}
	return lead
}

// firstCoreAbilityName returns the alphabetically first self-owned
// (non-externally-granted, non-copycat) ability name installed on r, or
// "" if it has none worth copying.
func firstCoreAbilityName(r *engine.Racer) string {
	var names []string
	for key := range r.Abilities {
		if key == "copycat" || strings.Contains(key, "@") {
			continue
		}
		names = append(names, key)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
