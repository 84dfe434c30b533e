// registry.go: the user-defined function registry.
//
// One name maps to exactly one definition at a time; redefining a name
// overwrites the previous definition (last-write-wins). There is no
// overloading by arity. Definitions are owned by the registry and
// referenced by name at call sites, never duplicated.
package valyxoscript

// FuncDef is a named, user-defined procedure: parameter list plus body.
type FuncDef struct {
	Name   string
	Params []string
	Body   []Stmt
	Line   int // line of the `func` header, for diagnostics
}

// Registry stores function definitions by name.
type Registry struct {
	funcs map[string]*FuncDef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*FuncDef)}
}

// Define registers def under its name, replacing any previous definition.
func (r *Registry) Define(def *FuncDef) {
	r.funcs[def.Name] = def
}

// Lookup returns the definition for name, if present.
func (r *Registry) Lookup(name string) (*FuncDef, bool) {
	def, ok := r.funcs[name]
	return def, ok
}

// Names lists all registered function names (for suggestions).
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.funcs))
	for k := range r.funcs {
		out = append(out, k)
	}
	return out
}
