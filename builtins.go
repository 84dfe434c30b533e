// builtins.go: the Core environment of builtin constants.
//
// These are the v0.6 language constants. They live in a frame below the
// global frame, and the global frame is sealed against writing through to
// them: `set PI = 3` is an error, not a silent shadow.
package valyxoscript

import "math"

// newCoreEnv builds the builtin constant frame.
func newCoreEnv() *Env {
	core := NewEnv(nil)
	core.Define("PI", Num(math.Pi))
	core.Define("E", Num(math.E))
	core.Define("TAU", Num(2*math.Pi))
	core.Define("INFINITY", Num(math.Inf(1)))
	core.Define("NAN", Num(math.NaN()))
	core.Define("TRUE", Bool(true))
	core.Define("FALSE", Bool(false))
	core.Define("NULL", None)
	return core
}
