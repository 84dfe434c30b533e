// parser.go: statement and expression parser for ValyxoScript.
//
// OVERVIEW
// --------
// ValyxoScript is line-oriented: the splitter yields statement lines, and
// this parser consumes them. Statements that open a block end in '{' and
// are closed by a line consisting of '}'. Expressions are parsed with a
// small Pratt loop over the tokens of a single line.
//
// The AST is a tree of S-expressions: []any whose first element is a string
// tag. Statement nodes are wrapped in Stmt, which carries the original
// 1-based source line for diagnostics.
//
// Statement nodes:
//
//	("set", name, expr)                  // set x = expr
//	("print", expr1, expr2, ...)         // print a, b
//	("ifline", cond, thenStmt, elseStmt?)// if [c] then [s] else [s]
//	("if", cond, thenBlock, elseBlock?)  // if [c] then { ... } else-block
//	("for", var, startExpr, endExpr, body)
//	("while", cond, body)
//	("func", name, params, body)         // params is []string
//	("call", name, arg1, arg2, ...)
//	("exit")
//	("vars")
//
// Block bodies are []Stmt values embedded in the node.
//
// Expression nodes:
//
//	("int", int64)  ("num", float64)  ("str", string)  ("bool", bool)
//	("none")        ("id", name)      ("list", e1, e2, ...)
//	("unop", op, rhs)                 // "-" or "not"
//	("binop", op, lhs, rhs)           // arithmetic, comparison, and/or
//
// The grammar is closed: there is no call syntax, no member access, and no
// way to reference anything but literals and bound names. The evaluator
// (eval.go) can therefore only ever walk nodes this parser constructs.
//
// Block `if` accepts both the legacy else form and the fused one:
//
//	if [c] then {        if [c] then {
//	    ...                  ...
//	else {               } else {
//	    ...                  ...
//	}                    }
package valyxoscript

import (
	"fmt"
)

// S is the S-expression node type: tag string first, children after.
type S = []any

// L builds an S-expression node.
func L(tag string, parts ...any) S { return append([]any{tag}, parts...) }

// Stmt is one parsed statement with its original source line.
type Stmt struct {
	Line int
	Node S
}

// Tag returns the statement's node tag.
func (s Stmt) Tag() string { return s.Node[0].(string) }

// ParseProgram parses split source lines into a statement list.
// It fails on the first syntax error.
func ParseProgram(lines []SourceLine) ([]Stmt, error) {
	p := &parser{lines: lines}
	var out []Stmt
	for !p.atEnd() {
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// ParseExpr parses text as a single expression (used by tests and the
// REPL's expression echo). The line number seeds diagnostics.
func ParseExpr(text string, line int) (S, error) {
	toks, err := NewLexer(text, line).Scan()
	if err != nil {
		return nil, err
	}
	tp := &tokParser{toks: toks, line: line, text: text}
	e, err := tp.expr(0)
	if err != nil {
		return nil, err
	}
	if err := tp.expectEnd(); err != nil {
		return nil, err
	}
	return e, nil
}

////////////////////////////////////////////////////////////////////////////////
//                          LINE-LEVEL STATEMENT PARSER
////////////////////////////////////////////////////////////////////////////////

type parser struct {
	lines []SourceLine
	i     int
}

func (p *parser) atEnd() bool { return p.i >= len(p.lines) }

func (p *parser) next() SourceLine {
	ln := p.lines[p.i]
	p.i++
	return ln
}

// parseStmt consumes one statement, which may span multiple lines when it
// opens a block.
func (p *parser) parseStmt() (Stmt, error) {
	ln := p.next()
	toks, err := NewLexer(ln.Text, ln.Num).Scan()
	if err != nil {
		return Stmt{}, err
	}
	tp := &tokParser{toks: toks, line: ln.Num, text: ln.Text}

	switch tp.peek().Type {
	case IF:
		return p.parseIf(tp)
	case FOR:
		return p.parseFor(tp)
	case WHILE:
		return p.parseWhile(tp)
	case FUNC:
		return p.parseFunc(tp)
	case RCURLY:
		return Stmt{}, tp.errSuggest("check that all blocks are properly opened",
			"unexpected closing brace '}'")
	default:
		node, err := parseSimple(tp)
		if err != nil {
			return Stmt{}, err
		}
		if err := tp.expectEnd(); err != nil {
			return Stmt{}, err
		}
		return Stmt{Line: ln.Num, Node: node}, nil
	}
}

// parseSimple parses a block-free statement from tokens: set, print, call,
// exit, vars. Shared by top-level lines and inline-if arms.
func parseSimple(tp *tokParser) (S, error) {
	switch tp.peek().Type {
	case SET:
		tp.advance()
		name, err := tp.need(ID, "invalid set syntax", "Use: set <variable> = <value>")
		if err != nil {
			return nil, err
		}
		if _, err := tp.need(ASSIGN, "invalid set syntax", "Use: set <variable> = <value>"); err != nil {
			return nil, err
		}
		e, err := tp.expr(0)
		if err != nil {
			return nil, err
		}
		return L("set", name.Lexeme, e), nil

	case PRINT:
		tp.advance()
		node := L("print")
		if tp.peek().Type == EOF || tp.peek().Type == RSQUARE {
			return node, nil // bare `print` emits an empty line
		}
		for {
			e, err := tp.expr(0)
			if err != nil {
				return nil, err
			}
			node = append(node, e)
			if !tp.match(COMMA) {
				return node, nil
			}
		}

	case EXIT:
		tp.advance()
		return L("exit"), nil

	case VARS:
		tp.advance()
		return L("vars"), nil

	case ID:
		// Only a call statement starts with a bare identifier.
		name := tp.advance()
		if _, err := tp.need(LROUND, "invalid statement",
			"Use: set, print, if, for, while, func, or a function call"); err != nil {
			return nil, err
		}
		node := L("call", name.Lexeme)
		if tp.match(RROUND) {
			return node, nil
		}
		for {
			e, err := tp.expr(0)
			if err != nil {
				return nil, err
			}
			node = append(node, e)
			if tp.match(RROUND) {
				return node, nil
			}
			if _, err := tp.need(COMMA, "invalid function call", "separate arguments with commas"); err != nil {
				return nil, err
			}
		}

	default:
		return nil, tp.errSuggest("Use: set, print, if, for, while, func, or a function call",
			"unknown statement: %q", tp.peek().Lexeme)
	}
}

// parseCond parses the bracketed condition form `[ expr ]`.
func (tp *tokParser) parseCond() (S, error) {
	if _, err := tp.need(LSQUARE, "invalid condition", "wrap the condition in brackets: [x > 1]"); err != nil {
		return nil, err
	}
	e, err := tp.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := tp.need(RSQUARE, "invalid condition", "wrap the condition in brackets: [x > 1]"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseIf(tp *tokParser) (Stmt, error) {
	start := tp.line
	tp.advance() // 'if'
	cond, err := tp.parseCond()
	if err != nil {
		return Stmt{}, err
	}
	if _, err := tp.need(THEN, "invalid if syntax",
		"Use: if [cond] then [cmd] or if [cond] then {"); err != nil {
		return Stmt{}, err
	}

	if tp.match(LCURLY) {
		// Block form.
		if err := tp.expectEnd(); err != nil {
			return Stmt{}, err
		}
		thenBlk, elseBlk, err := p.parseIfBody(start)
		if err != nil {
			return Stmt{}, err
		}
		if elseBlk != nil {
			return Stmt{Line: start, Node: L("if", cond, thenBlk, elseBlk)}, nil
		}
		return Stmt{Line: start, Node: L("if", cond, thenBlk)}, nil
	}

	// Inline form: then-arm and optional else-arm in brackets.
	thenStmt, err := tp.bracketedSimple()
	if err != nil {
		return Stmt{}, err
	}
	if tp.match(ELSE) {
		elseStmt, err := tp.bracketedSimple()
		if err != nil {
			return Stmt{}, err
		}
		if err := tp.expectEnd(); err != nil {
			return Stmt{}, err
		}
		return Stmt{Line: start, Node: L("ifline", cond, thenStmt, elseStmt)}, nil
	}
	if err := tp.expectEnd(); err != nil {
		return Stmt{}, err
	}
	return Stmt{Line: start, Node: L("ifline", cond, thenStmt)}, nil
}

// bracketedSimple parses `[ simple-statement ]` for inline-if arms.
func (tp *tokParser) bracketedSimple() (S, error) {
	if _, err := tp.need(LSQUARE, "invalid inline if",
		"Use: if [cond] then [cmd] else [cmd]"); err != nil {
		return nil, err
	}
	node, err := parseSimple(tp)
	if err != nil {
		return nil, err
	}
	if _, err := tp.need(RSQUARE, "invalid inline if",
		"Use: if [cond] then [cmd] else [cmd]"); err != nil {
		return nil, err
	}
	return node, nil
}

// parseIfBody collects the then-block and an optional else-block for a
// block `if`. Accepts `else {` and `} else {` as the branch separator.
func (p *parser) parseIfBody(headerLine int) ([]Stmt, []Stmt, error) {
	var thenBlk, elseBlk []Stmt
	inElse := false
	for {
		if p.atEnd() {
			return nil, nil, &ScriptError{Kind: ErrSyntax, Line: headerLine,
				Msg: "if block was not terminated", Suggestion: "close the block with '}'"}
		}
		kind, err := p.peekBlockDelimiter()
		if err != nil {
			return nil, nil, err
		}
		switch kind {
		case delimClose:
			p.next()
			if inElse {
				return thenBlk, elseBlk, nil
			}
			return thenBlk, nil, nil
		case delimElse:
			if inElse {
				return nil, nil, &ScriptError{Kind: ErrSyntax, Line: p.lines[p.i].Num,
					Msg: "duplicate else block"}
			}
			p.next()
			inElse = true
			elseBlk = []Stmt{}
		default:
			st, err := p.parseStmt()
			if err != nil {
				return nil, nil, err
			}
			if inElse {
				elseBlk = append(elseBlk, st)
			} else {
				thenBlk = append(thenBlk, st)
			}
		}
	}
}

// parseBody collects statements until the closing '}' of a loop or func.
func (p *parser) parseBody(headerLine int, what string) ([]Stmt, error) {
	body := []Stmt{}
	for {
		if p.atEnd() {
			return nil, &ScriptError{Kind: ErrSyntax, Line: headerLine,
				Msg: what + " block was not terminated", Suggestion: "close the block with '}'"}
		}
		kind, err := p.peekBlockDelimiter()
		if err != nil {
			return nil, err
		}
		if kind == delimClose {
			p.next()
			return body, nil
		}
		if kind == delimElse {
			return nil, &ScriptError{Kind: ErrSyntax, Line: p.lines[p.i].Num,
				Msg: "unexpected else outside an if block"}
		}
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, st)
	}
}

type blockDelim int

const (
	delimNone blockDelim = iota
	delimClose
	delimElse
)

// peekBlockDelimiter classifies the next line as '}', an else separator,
// or an ordinary statement, without consuming it.
func (p *parser) peekBlockDelimiter() (blockDelim, error) {
	ln := p.lines[p.i]
	toks, err := NewLexer(ln.Text, ln.Num).Scan()
	if err != nil {
		return delimNone, err
	}
	ts := make([]TokenType, 0, len(toks))
	for _, t := range toks {
		ts = append(ts, t.Type)
	}
	switch {
	case len(ts) == 2 && ts[0] == RCURLY:
		return delimClose, nil
	case len(ts) == 3 && ts[0] == ELSE && ts[1] == LCURLY:
		return delimElse, nil
	case len(ts) == 4 && ts[0] == RCURLY && ts[1] == ELSE && ts[2] == LCURLY:
		return delimElse, nil
	}
	return delimNone, nil
}

func (p *parser) parseFor(tp *tokParser) (Stmt, error) {
	start := tp.line
	tp.advance() // 'for'
	name, err := tp.need(ID, "invalid for syntax", "Use: for <var> in <start> to <end> {")
	if err != nil {
		return Stmt{}, err
	}
	if _, err := tp.need(IN, "invalid for syntax", "Use: for <var> in <start> to <end> {"); err != nil {
		return Stmt{}, err
	}
	startExpr, err := tp.expr(0)
	if err != nil {
		return Stmt{}, err
	}
	if _, err := tp.need(TO, "invalid for syntax", "Use: for <var> in <start> to <end> {"); err != nil {
		return Stmt{}, err
	}
	endExpr, err := tp.expr(0)
	if err != nil {
		return Stmt{}, err
	}
	if _, err := tp.need(LCURLY, "invalid for syntax", "open the loop body with '{'"); err != nil {
		return Stmt{}, err
	}
	if err := tp.expectEnd(); err != nil {
		return Stmt{}, err
	}
	body, err := p.parseBody(start, "for")
	if err != nil {
		return Stmt{}, err
	}
	return Stmt{Line: start, Node: L("for", name.Lexeme, startExpr, endExpr, body)}, nil
}

func (p *parser) parseWhile(tp *tokParser) (Stmt, error) {
	start := tp.line
	tp.advance() // 'while'
	cond, err := tp.parseCond()
	if err != nil {
		return Stmt{}, err
	}
	if _, err := tp.need(LCURLY, "invalid while syntax", "Use: while [cond] {"); err != nil {
		return Stmt{}, err
	}
	if err := tp.expectEnd(); err != nil {
		return Stmt{}, err
	}
	body, err := p.parseBody(start, "while")
	if err != nil {
		return Stmt{}, err
	}
	return Stmt{Line: start, Node: L("while", cond, body)}, nil
}

func (p *parser) parseFunc(tp *tokParser) (Stmt, error) {
	start := tp.line
	tp.advance() // 'func'
	name, err := tp.need(ID, "invalid func syntax", "Use: func name(params) {")
	if err != nil {
		return Stmt{}, err
	}
	if _, err := tp.need(LROUND, "invalid func syntax", "Use: func name(params) {"); err != nil {
		return Stmt{}, err
	}
	params := []string{}
	if !tp.match(RROUND) {
		for {
			pn, err := tp.need(ID, "invalid parameter list", "parameters must be identifiers")
			if err != nil {
				return Stmt{}, err
			}
			params = append(params, pn.Lexeme)
			if tp.match(RROUND) {
				break
			}
			if _, err := tp.need(COMMA, "invalid parameter list", "separate parameters with commas"); err != nil {
				return Stmt{}, err
			}
		}
	}
	if _, err := tp.need(LCURLY, "invalid func syntax", "open the function body with '{'"); err != nil {
		return Stmt{}, err
	}
	if err := tp.expectEnd(); err != nil {
		return Stmt{}, err
	}
	body, err := p.parseBody(start, "func")
	if err != nil {
		return Stmt{}, err
	}
	return Stmt{Line: start, Node: L("func", name.Lexeme, params, body)}, nil
}

////////////////////////////////////////////////////////////////////////////////
//                       TOKEN-LEVEL EXPRESSION PARSER (PRATT)
////////////////////////////////////////////////////////////////////////////////

type tokParser struct {
	toks []Token
	i    int
	line int
	text string
}

func (tp *tokParser) peek() Token {
	if tp.i >= len(tp.toks) {
		return tp.toks[len(tp.toks)-1] // EOF
	}
	return tp.toks[tp.i]
}

func (tp *tokParser) advance() Token {
	t := tp.peek()
	if t.Type != EOF {
		tp.i++
	}
	return t
}

func (tp *tokParser) match(tt TokenType) bool {
	if tp.peek().Type == tt {
		tp.i++
		return true
	}
	return false
}

func (tp *tokParser) need(tt TokenType, msg, hint string) (Token, error) {
	if tp.peek().Type == tt {
		return tp.advance(), nil
	}
	return Token{}, tp.errSuggest(hint, "%s", msg)
}

func (tp *tokParser) expectEnd() error {
	if tp.peek().Type != EOF {
		return tp.errSuggest("", "unexpected token %q", tp.peek().Lexeme)
	}
	return nil
}

func (tp *tokParser) errSuggest(hint, format string, args ...interface{}) error {
	return &ScriptError{
		Kind:       ErrSyntax,
		Line:       tp.line,
		Col:        tp.peek().Col + 1,
		Context:    tp.text,
		Msg:        fmt.Sprintf(format, args...),
		Suggestion: hint,
	}
}

// lbp gives the left binding power of an infix operator, lowest to highest:
// or < and < comparison < additive < multiplicative < power.
func lbp(t TokenType) (int, bool) {
	switch t {
	case OR:
		return 10, true
	case AND:
		return 20, true
	case EQ, NEQ, LESS, LESS_EQ, GREATER, GREATER_EQ:
		return 40, true
	case PLUS, MINUS:
		return 50, true
	case MULT, DIV, IDIV, MOD:
		return 60, true
	case POW:
		return 70, true
	}
	return 0, false
}

func isRightAssoc(tt TokenType) bool { return tt == POW }

// Prefix binding powers. `not` sits between `and` and the comparisons, so
// `not x == y` reads as `not (x == y)`. Unary minus binds tighter than
// `**`, so `-2 ** 2` is `(-2) ** 2`.
const (
	notBP    = 30
	negateBP = 80
)

func (tp *tokParser) expr(minBP int) (S, error) {
	left, err := tp.prefix()
	if err != nil {
		return nil, err
	}
	for {
		op := tp.peek()
		bp, ok := lbp(op.Type)
		if !ok || bp < minBP {
			return left, nil
		}
		tp.advance()
		nextMin := bp + 1
		if isRightAssoc(op.Type) {
			nextMin = bp
		}
		right, err := tp.expr(nextMin)
		if err != nil {
			return nil, err
		}
		left = L("binop", op.Lexeme, left, right)
	}
}

func (tp *tokParser) prefix() (S, error) {
	t := tp.peek()
	switch t.Type {
	case INTEGER:
		tp.advance()
		return L("int", t.Literal.(int64)), nil
	case NUMBER:
		tp.advance()
		return L("num", t.Literal.(float64)), nil
	case STRING:
		tp.advance()
		return L("str", t.Literal.(string)), nil
	case BOOLEAN:
		tp.advance()
		return L("bool", t.Literal.(bool)), nil
	case NONE:
		tp.advance()
		return L("none"), nil
	case ID:
		tp.advance()
		if tp.peek().Type == LROUND {
			return nil, tp.errSuggest("function calls are statements, not expressions",
				"function calls are not allowed in expressions")
		}
		return L("id", t.Lexeme), nil
	case MINUS:
		tp.advance()
		rhs, err := tp.expr(negateBP)
		if err != nil {
			return nil, err
		}
		return L("unop", "-", rhs), nil
	case NOT:
		tp.advance()
		rhs, err := tp.expr(notBP)
		if err != nil {
			return nil, err
		}
		return L("unop", "not", rhs), nil
	case LROUND:
		tp.advance()
		e, err := tp.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := tp.need(RROUND, "expected ')'", "check parentheses, brackets, and quotes"); err != nil {
			return nil, err
		}
		return e, nil
	case LSQUARE:
		tp.advance()
		node := L("list")
		if tp.match(RSQUARE) {
			return node, nil
		}
		for {
			e, err := tp.expr(0)
			if err != nil {
				return nil, err
			}
			node = append(node, e)
			if tp.match(RSQUARE) {
				return node, nil
			}
			if _, err := tp.need(COMMA, "invalid list literal", "separate list items with commas"); err != nil {
				return nil, err
			}
		}
	case EOF:
		return nil, tp.errSuggest("check parentheses, brackets, and quotes", "unexpected end of expression")
	default:
		return nil, tp.errSuggest("", "unexpected token %q in expression", t.Lexeme)
	}
}
