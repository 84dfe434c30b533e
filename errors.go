// errors.go: structured script errors and user-facing rendering.
//
// Every failure inside the runtime is surfaced as a *ScriptError carrying:
// the error kind, the 1-based line in the user's original source, the
// offending source text, a message, and an optional "did you mean" hint.
// Errors abort the current script execution; they never crash the host
// process, and they never include host internals (no Go stack traces, no
// file paths).
//
// WrapErrorWithSource augments a ScriptError with a numbered source
// snippet and a caret, in the style:
//
//	SCRIPT ERROR at line 3: unknown variable: 'scor'
//
//	   2 | set score = 85
//	   3 | print scor
//	     | ^
//	  Hint: did you mean 'score'?
package valyxoscript

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a script error. All kinds are fatal to the current
// execution, none to the host.
type ErrorKind int

const (
	ErrSyntax ErrorKind = iota
	ErrUndefinedVariable
	ErrUndefinedFunction
	ErrArityMismatch
	ErrType
	ErrDivisionByZero
	ErrLoopLimit
	ErrCallDepth
)

// String names the kind for logs and tests.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "SyntaxError"
	case ErrUndefinedVariable:
		return "UndefinedVariable"
	case ErrUndefinedFunction:
		return "UndefinedFunction"
	case ErrArityMismatch:
		return "ArityMismatch"
	case ErrType:
		return "TypeError"
	case ErrDivisionByZero:
		return "DivisionByZero"
	case ErrLoopLimit:
		return "LoopLimitExceeded"
	case ErrCallDepth:
		return "CallDepthExceeded"
	default:
		return "Unknown"
	}
}

// ScriptError is the structured error type returned by RunLine/RunProgram.
// Line is 1-based and refers to the user's original source numbering.
// Col is 1-based and only meaningful for syntax errors (0 = unknown).
type ScriptError struct {
	Kind       ErrorKind
	Line       int
	Col        int
	Context    string // offending source text, if known
	Msg        string
	Suggestion string
}

func (e *ScriptError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SCRIPT ERROR: %s", e.Msg)
	if e.Line > 0 {
		fmt.Fprintf(&b, " [line %d]", e.Line)
	}
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Context: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Hint: %s", e.Suggestion)
	}
	return b.String()
}

// WrapErrorWithSource returns an error whose message includes a numbered
// snippet of src around the failing line, with a caret under the failing
// column when known. Non-ScriptError values are returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	e, ok := err.(*ScriptError)
	if !ok || e.Line <= 0 {
		return err
	}
	lines := strings.Split(src, "\n")
	line := e.Line
	if line > len(lines) {
		line = len(lines)
	}
	if line < 1 {
		line = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SCRIPT ERROR at line %d: %s\n\n", e.Line, e.Msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	caret := e.Col - 1
	if caret < 0 {
		caret = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", caret))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  Hint: %s\n", e.Suggestion)
	}
	return fmt.Errorf("%s", b.String())
}

// ---------------------------------------------------------------------------
// "Did you mean" suggestions
// ---------------------------------------------------------------------------

// suggestName returns a hint naming the candidate closest to name, or ""
// when nothing is close enough (edit distance > 2 or > half the name).
func suggestName(name string, candidates []string) string {
	best := ""
	bestDist := len(name)/2 + 1
	if bestDist > 3 {
		bestDist = 3
	}
	for _, c := range candidates {
		if c == name {
			continue
		}
		if d := editDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("did you mean '%s'?", best)
}

// editDistance is plain Levenshtein over bytes; identifiers are ASCII.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// ---------------------------------------------------------------------------
// Internal raise/recover discipline
// ---------------------------------------------------------------------------
//
// Deep inside expression evaluation and statement dispatch, failures are
// raised as panics carrying a scriptFault and recovered exactly once at the
// runtime entry points, where the current line number is attached. This
// keeps every operator implementation a plain value-in/value-out function.

type scriptFault struct {
	kind       ErrorKind
	msg        string
	suggestion string
}

func failKind(kind ErrorKind, format string, args ...interface{}) {
	panic(scriptFault{kind: kind, msg: fmt.Sprintf(format, args...)})
}

func failSuggest(kind ErrorKind, suggestion, format string, args ...interface{}) {
	panic(scriptFault{kind: kind, msg: fmt.Sprintf(format, args...), suggestion: suggestion})
}
