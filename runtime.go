// runtime.go: PUBLIC API SURFACE and statement dispatcher for the
// ValyxoScript runtime.
//
// OVERVIEW
// --------
// A Runtime is one script execution context: the environment chain, the
// function registry, the loop budget, and the output buffer. The host
// creates one Runtime per execution (or keeps one alive REPL-style), feeds
// it source, and reads back output plus a variable snapshot.
//
// Entry points:
//   - RunProgram(source): run a whole script; stops at the first fatal
//     error; returns accumulated output and the final global snapshot.
//   - RunLine(line): feed one line REPL-style. Lines that open blocks
//     ('{' headers) are buffered until the block closes, then the whole
//     block executes as one statement. Pending reports an open block.
//
// SCOPING
// -------
// Three environment levels: Core (builtin constants, sealed), Global
// (user state, never popped), and one frame per active function call, whose
// parent is Global. Function bodies therefore see their parameters and
// globals, never the caller's locals.
//
// ERRORS
// ------
// Both entry points return *ScriptError on failure. Errors abort the
// current execution; assignments made before the failing sub-expression
// stay (best-effort, not transactional). Frames are popped on every exit
// path, so a failed call never corrupts scoping of a reused Runtime.
//
// CONCURRENCY
// -----------
// A Runtime is single-threaded and does no internal locking; independent
// Runtimes share nothing and may run on separate goroutines. There is no
// wall-clock bound inside the interpreter, only the iteration and call
// depth budgets. Hosts that need deadlines enforce them outside.
package valyxoscript

import (
	"sort"
	"strconv"
	"strings"
)

// Version of the ValyxoScript language runtime.
const Version = "0.6.0"

// Default resource limits. Both are per-Runtime, never process-global, so
// concurrent executions have independent budgets.
const (
	DefaultMaxIterations = 10000
	DefaultMaxCallDepth  = 200
)

// Option configures a Runtime at construction time.
type Option func(*Runtime)

// WithMaxIterations caps the number of iterations any single loop
// execution may perform.
func WithMaxIterations(n int) Option {
	return func(r *Runtime) { r.maxIterations = n }
}

// WithMaxCallDepth caps the depth of nested function calls.
func WithMaxCallDepth(n int) Option {
	return func(r *Runtime) { r.maxCallDepth = n }
}

// ExecutionResult is what a completed RunProgram returns to the host.
type ExecutionResult struct {
	Output    string
	Variables map[string]Value
}

// Runtime is the mutable execution context for one script's lifetime.
type Runtime struct {
	core   *Env
	global *Env
	frames []*Env // active call frames, innermost last
	funcs  *Registry

	out           strings.Builder
	maxIterations int
	maxCallDepth  int

	curLine  int            // line of the statement being executed
	lineText map[int]string // line number → source text, for error context
	halted   bool           // set by `exit`; later input is ignored

	// REPL block accumulation.
	pending  []SourceLine
	depth    int // open brace depth
	feedLine int // physical line counter for RunLine diagnostics
}

// NewRuntime creates a ready-to-use runtime with builtin constants
// installed and an empty global frame.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		funcs:         NewRegistry(),
		maxIterations: DefaultMaxIterations,
		maxCallDepth:  DefaultMaxCallDepth,
		lineText:      make(map[int]string),
	}
	r.core = newCoreEnv()
	r.global = NewEnv(r.core)
	r.global.SealParentWrites()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// env returns the innermost active frame.
func (r *Runtime) env() *Env {
	if n := len(r.frames); n > 0 {
		return r.frames[n-1]
	}
	return r.global
}

// Output returns everything printed so far.
func (r *Runtime) Output() string { return r.out.String() }

// Variables returns a snapshot of the global frame.
func (r *Runtime) Variables() map[string]Value { return r.global.Snapshot() }

// Pending reports whether RunLine is buffering an unclosed block.
func (r *Runtime) Pending() bool { return r.depth > 0 }

// Halted reports whether an `exit` statement has stopped this runtime.
func (r *Runtime) Halted() bool { return r.halted }

// RunProgram executes a complete script. It stops at the first fatal
// error and returns it; otherwise it returns the output produced by this
// call and the final variable snapshot.
func (r *Runtime) RunProgram(source string) (*ExecutionResult, error) {
	r.pending, r.depth = nil, 0 // a whole program supersedes any open REPL block
	lines := SplitLines(source)
	for _, ln := range lines {
		r.lineText[ln.Num] = ln.Text
	}
	stmts, err := ParseProgram(lines)
	if err != nil {
		return nil, r.withContext(err)
	}
	outStart := r.out.Len()
	if err := r.runStmts(stmts); err != nil {
		return nil, err
	}
	return &ExecutionResult{
		Output:    r.out.String()[outStart:],
		Variables: r.global.Snapshot(),
	}, nil
}

// RunLine feeds one physical line, REPL-style. Block headers buffer input
// until the block closes; complete statements execute immediately. After
// `exit`, further lines are ignored.
func (r *Runtime) RunLine(line string) error {
	r.feedLine++
	if r.halted {
		return nil
	}
	split := SplitLines(line)
	if len(split) == 0 {
		return nil // blank or comment-only
	}
	src := SourceLine{Num: r.feedLine, Text: split[0].Text}
	r.lineText[src.Num] = src.Text

	delta, err := braceDelta(src)
	if err != nil {
		return r.withContext(err)
	}
	if r.depth == 0 && delta <= 0 {
		if delta < 0 {
			return &ScriptError{Kind: ErrSyntax, Line: src.Num, Context: src.Text,
				Msg:        "unexpected closing brace '}'",
				Suggestion: "check that all blocks are properly opened"}
		}
		return r.execLines([]SourceLine{src})
	}

	r.pending = append(r.pending, src)
	r.depth += delta
	if r.depth > 0 {
		return nil // still inside a block
	}
	block := r.pending
	r.pending, r.depth = nil, 0
	return r.execLines(block)
}

// execLines parses and runs already-split lines.
func (r *Runtime) execLines(lines []SourceLine) error {
	stmts, err := ParseProgram(lines)
	if err != nil {
		return r.withContext(err)
	}
	return r.runStmts(stmts)
}

// braceDelta computes how a line changes the open-block depth. The else
// separators (`else {` and `} else {`) are neutral: they continue the
// block they appear in.
func braceDelta(ln SourceLine) (int, error) {
	toks, err := NewLexer(ln.Text, ln.Num).Scan()
	if err != nil {
		return 0, err
	}
	if len(toks) == 3 && toks[0].Type == ELSE && toks[1].Type == LCURLY {
		return 0, nil
	}
	d := 0
	for _, t := range toks {
		switch t.Type {
		case LCURLY:
			d++
		case RCURLY:
			d--
		}
	}
	return d, nil
}

// withContext attaches the offending source text to a ScriptError when
// the parser did not already record it.
func (r *Runtime) withContext(err error) error {
	if e, ok := err.(*ScriptError); ok && e.Context == "" {
		e.Context = r.lineText[e.Line]
	}
	return err
}

////////////////////////////////////////////////////////////////////////////////
//                      STATEMENT DISPATCHER (PRIVATE)
////////////////////////////////////////////////////////////////////////////////

// exitSignal aborts execution cleanly on `exit`.
type exitSignal struct{}

// runStmts executes statements, converting internal faults into the
// public *ScriptError exactly once.
func (r *Runtime) runStmts(stmts []Stmt) (err error) {
	defer func() {
		switch p := recover().(type) {
		case nil:
		case scriptFault:
			err = &ScriptError{
				Kind:       p.kind,
				Line:       r.curLine,
				Context:    r.lineText[r.curLine],
				Msg:        p.msg,
				Suggestion: p.suggestion,
			}
		case exitSignal:
			r.halted = true
		default:
			panic(p)
		}
	}()
	for _, st := range stmts {
		r.exec(st)
	}
	return nil
}

// exec dispatches one statement. No fallthrough between statement kinds;
// every case is explicit.
func (r *Runtime) exec(st Stmt) {
	r.curLine = st.Line
	n := st.Node
	switch st.Tag() {
	case "set":
		name := n[1].(string)
		v := evalExpr(n[2].(S), r.env())
		if err := r.env().Assign(name, v); err != nil {
			failKind(ErrType, "%s", err.Error())
		}

	case "print":
		parts := make([]string, 0, len(n)-1)
		for _, e := range n[1:] {
			parts = append(parts, DisplayString(evalExpr(e.(S), r.env())))
		}
		r.out.WriteString(strings.Join(parts, " "))
		r.out.WriteByte('\n')

	case "ifline":
		cond := evalExpr(n[1].(S), r.env())
		if cond.Truthy() {
			r.exec(Stmt{Line: st.Line, Node: n[2].(S)})
		} else if len(n) > 3 {
			r.exec(Stmt{Line: st.Line, Node: n[3].(S)})
		}

	case "if":
		cond := evalExpr(n[1].(S), r.env())
		if cond.Truthy() {
			r.execBlock(n[2].([]Stmt))
		} else if len(n) > 3 {
			r.execBlock(n[3].([]Stmt))
		}

	case "for":
		r.execFor(st)

	case "while":
		r.execWhile(st)

	case "func":
		r.funcs.Define(&FuncDef{
			Name:   n[1].(string),
			Params: n[2].([]string),
			Body:   n[3].([]Stmt),
			Line:   st.Line,
		})

	case "call":
		r.execCall(st)

	case "exit":
		panic(exitSignal{})

	case "vars":
		r.printVars()

	default:
		failKind(ErrSyntax, "unknown statement kind: %s", st.Tag())
	}
}

func (r *Runtime) execBlock(body []Stmt) {
	for _, st := range body {
		r.exec(st)
	}
}

// loopBound evaluates a for-loop bound, which must be an integer.
func (r *Runtime) loopBound(e S, which string) int64 {
	v := evalExpr(e, r.env())
	if v.Tag != VTInt {
		failKind(ErrType, "loop %s bound must be an integer, got %s", which, v.KindName())
	}
	return v.Data.(int64)
}

func (r *Runtime) execFor(st Stmt) {
	n := st.Node
	name := n[1].(string)
	start := r.loopBound(n[2].(S), "start")
	end := r.loopBound(n[3].(S), "end")
	body := n[4].([]Stmt)

	if start > end {
		failSuggest(ErrType,
			"loop start cannot be greater than end",
			"invalid loop range: %d to %d", start, end)
	}

	// Each loop execution gets its own budget; nested loops and reused
	// runtimes never share one.
	iterations := 0
	headerLine := st.Line
	for i := start; i <= end; i++ {
		iterations++
		if iterations > r.maxIterations {
			r.curLine = headerLine
			failSuggest(ErrLoopLimit,
				"maximum iterations: "+strconv.Itoa(r.maxIterations),
				"loop iteration limit exceeded - possible infinite loop")
		}
		// The loop variable binds in the current frame, not a child.
		r.env().Define(name, Int(i))
		r.execBlock(body)
	}
}

func (r *Runtime) execWhile(st Stmt) {
	n := st.Node
	cond := n[1].(S)
	body := n[2].([]Stmt)

	iterations := 0
	headerLine := st.Line
	for {
		r.curLine = headerLine
		iterations++
		if iterations > r.maxIterations {
			failSuggest(ErrLoopLimit,
				"maximum iterations: "+strconv.Itoa(r.maxIterations),
				"loop iteration limit exceeded - possible infinite loop")
		}
		if !evalExpr(cond, r.env()).Truthy() {
			return
		}
		r.execBlock(body)
	}
}

func (r *Runtime) execCall(st Stmt) {
	n := st.Node
	name := n[1].(string)
	def, ok := r.funcs.Lookup(name)
	if !ok {
		hint := suggestName(name, r.funcs.Names())
		if hint == "" {
			hint = "define it first with: func " + name + "(params) { ... }"
		}
		failSuggest(ErrUndefinedFunction, hint, "unknown function: '%s'", name)
	}
	args := make([]Value, 0, len(n)-2)
	for _, e := range n[2:] {
		args = append(args, evalExpr(e.(S), r.env()))
	}
	if len(args) != len(def.Params) {
		failKind(ErrArityMismatch, "function '%s' expects %d argument(s), got %d",
			name, len(def.Params), len(args))
	}
	if len(r.frames) >= r.maxCallDepth {
		failSuggest(ErrCallDepth,
			"maximum call depth: "+strconv.Itoa(r.maxCallDepth),
			"call depth limit exceeded - possible infinite recursion")
	}

	frame := NewEnv(r.global)
	for i, p := range def.Params {
		frame.Define(p, args[i])
	}
	r.frames = append(r.frames, frame)
	// Pop on every exit path: a leaked frame after an error would corrupt
	// scoping for any reused runtime.
	defer func() { r.frames = r.frames[:len(r.frames)-1] }()
	r.execBlock(def.Body)
}

// printVars appends `name = value` lines for every global, sorted.
func (r *Runtime) printVars() {
	snap := r.global.Snapshot()
	names := make([]string, 0, len(snap))
	for k := range snap {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		r.out.WriteString(k)
		r.out.WriteString(" = ")
		r.out.WriteString(DisplayString(snap[k]))
		r.out.WriteByte('\n')
	}
}
