// env.go: lexical environments for the ValyxoScript runtime.
//
// An Env is one scope frame with a parent link; lookups walk parent-ward.
// The runtime wires exactly three levels:
//
//	Core   - builtin constants (PI, E, ...), sealed against writes.
//	Global - user program state. Never popped.
//	call   - one frame per active function call, parent = Global.
//
// Parenting call frames on Global (not on the call site) is what enforces
// strict lexical scoping: a function body can see its own parameters and
// globals, never the caller's locals.
package valyxoscript

import "fmt"

// Env is a lexical environment frame with a parent link.
type Env struct {
	parent *Env
	table  map[string]Value
	sealed bool
}

// NewEnv creates a new frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: make(map[string]Value)}
}

// SealParentWrites marks this frame as a write barrier: Assign never
// climbs past it, so bindings in ancestor frames (the Core constants)
// cannot be overwritten from script code.
func (e *Env) SealParentWrites() { e.sealed = true }

// Define binds name in the current frame, shadowing any outer binding.
func (e *Env) Define(name string, v Value) {
	e.table[name] = v
}

// Assign implements `set` semantics: update the nearest existing binding,
// or create the name in the current frame if it is not bound anywhere
// visible. Writing a name that only exists behind the seal (a builtin
// constant) is an error rather than a silent shadow.
func (e *Env) Assign(name string, v Value) error {
	for f := e; f != nil; f = f.parent {
		if _, ok := f.table[name]; ok {
			f.table[name] = v
			return nil
		}
		if f.sealed {
			for p := f.parent; p != nil; p = p.parent {
				if _, ok := p.table[name]; ok {
					return fmt.Errorf("cannot assign to builtin: %s", name)
				}
			}
			break
		}
	}
	e.table[name] = v
	return nil
}

// Get retrieves the nearest visible binding for name.
// The boolean is false when the name is unbound in every reachable frame.
func (e *Env) Get(name string) (Value, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.table[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Names collects every identifier visible from this frame, innermost
// first. Used for "did you mean" suggestions.
func (e *Env) Names() []string {
	var out []string
	seen := map[string]bool{}
	for f := e; f != nil; f = f.parent {
		for k := range f.table {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// Snapshot copies the bindings of this single frame (not its ancestors).
// The runtime uses it to report the final variable state of a program.
func (e *Env) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.table))
	for k, v := range e.table {
		out[k] = v
	}
	return out
}
