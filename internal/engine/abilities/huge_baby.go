package abilities

import "github.com/lox/racesim/internal/engine"

// hugeBabyBlocker is the board-side Approacher: every racer but its owner
// is redirected back one tile on approach, tile 0 is never blocked (the
// starting line stays open to everyone). Grounded on the Python
// reference's HugeBabyModifier.
type hugeBabyBlocker struct {
	ownerIdx int
}

func (m hugeBabyBlocker) Name() string  { return "huge_baby_blocker" }
func (m hugeBabyBlocker) OwnerIdx() int { return m.ownerIdx }
func (m hugeBabyBlocker) Priority() int { return 10 }

func (m hugeBabyBlocker) OnApproach(tile int, mover *engine.Racer, eng *engine.Engine) (int, []*engine.AbilityTriggeredEvent) {
	if mover.Idx == m.ownerIdx || tile == 0 {
		return tile, nil
	}
	redirected := tile - 1
	if redirected < 0 {
		redirected = 0
	}
	return redirected, []*engine.AbilityTriggeredEvent{{
		AbilityName:    "huge_baby_blocker",
		OwnerIdx:       m.ownerIdx,
		ResponsibleIdx: m.ownerIdx,
		Source:         "huge_baby_blocker",
		Payload:        mover.Idx,
	}}
}

// hugeBaby keeps its blocker parked on whichever tile it currently
// occupies: installed at gain time, relocated every time the owner
// itself moves or warps, removed at loss time.
type hugeBaby struct{}

func (hugeBaby) Name() string { return "huge_baby" }
func (hugeBaby) Subscriptions() []engine.EventType {
	return []engine.EventType{engine.EventPostMove, engine.EventPostWarp}
}

func (hugeBaby) Execute(ev engine.Event, owner *engine.Racer, eng *engine.Engine, agent engine.Agent) (*engine.AbilityTriggeredEvent, bool) {
	var racerIdx, start, end int
	switch e := ev.(type) {
	case engine.PostMoveEvent:
		racerIdx, start, end = e.RacerIdx, e.Start, e.End
	case engine.PostWarpEvent:
		racerIdx, start, end = e.RacerIdx, e.Start, e.End
	default:
		return engine.SkipTrigger, false
	}
	if racerIdx != owner.Idx {
		return engine.SkipTrigger, false
	}
	eng.Board.RemoveDynamicModifier(start, "huge_baby_blocker", owner.Idx)
	if end > 0 {
		eng.Board.AddDynamicModifier(end, hugeBabyBlocker{ownerIdx: owner.Idx})
	}
	return engine.SkipTrigger, false
}

func (hugeBaby) OnGain(owner *engine.Racer, eng *engine.Engine) {
	if owner.Position > 0 {
		eng.Board.AddDynamicModifier(owner.Position, hugeBabyBlocker{ownerIdx: owner.Idx})
	}
}

// OnLoss scans every tile rather than trusting owner.Position, since a
// racer can lose this ability in the same beat it finishes or is
// eliminated, after its position has already changed.
func (hugeBaby) OnLoss(owner *engine.Racer, eng *engine.Engine) {
	for tile := 0; tile <= eng.Board.Length; tile++ {
		eng.Board.RemoveDynamicModifier(tile, "huge_baby_blocker", owner.Idx)
	}
}
