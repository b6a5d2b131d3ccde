// Package abilities implements a representative slice of the original
// race's large flavor-ability library, grounded on the Python reference
// implementation's per-racer ability modules. Each ability here exercises
// a distinct capability mixin the engine package exposes — roll
// modification, destination calculation, approach blocking, dynamic
// ability replacement, rank stealing, and landing hooks — so the
// capability framework is driven by real, registered abilities rather
// than only by test doubles.
//
// The full ~30-racer flavor catalog is out of scope; Register installs
// only the abilities above. None of them implements MovementValidator or
// SetupHook.
package abilities
