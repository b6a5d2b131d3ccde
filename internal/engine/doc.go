// Package engine implements the deterministic, event-driven race rules
// engine: a priority-ordered scheduler that resolves cascading effects
// produced by pluggable abilities and modifiers attached to racers and
// board tiles.
//
// The engine owns all mutable game state (GameState) and is the only
// writer of it. External collaborators — CLI drivers, configuration
// loaders, telemetry, persistence — are never imported here; they consume
// the engine through the interfaces in agent.go, state.go and config.go
// (observer hook, Agent contract, GameConfig).
package engine
