// lexer.go: byte scanner for ValyxoScript statement lines.
//
// The splitter (splitter.go) hands the parser one statement line at a time;
// this lexer turns such a line into tokens. It is deliberately restricted:
// the only constructs it can produce are the ones the statement and
// expression grammars accept. There is no attribute access, no call
// punctuation inside expressions, and no escape hatch into the host.
package valyxoscript

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LROUND  // "("
	RROUND  // ")"
	LSQUARE // "["
	RSQUARE // "]"
	LCURLY  // "{"
	RCURLY  // "}"
	COMMA   // ","

	// Operators
	PLUS
	MINUS
	MULT
	DIV        // "/"
	IDIV       // "//"
	MOD        // "%"
	POW        // "**"
	ASSIGN     // "="
	EQ         // "=="
	NEQ        // "!="
	LESS       // "<"
	LESS_EQ    // "<="
	GREATER    // ">"
	GREATER_EQ // ">="

	// Literals & identifiers
	ID
	STRING
	INTEGER
	NUMBER
	BOOLEAN
	NONE

	// Keywords
	AND
	OR
	NOT
	SET
	PRINT
	IF
	THEN
	ELSE
	FOR
	IN
	TO
	WHILE
	FUNC
	EXIT
	VARS
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for literals
	Line    int
	Col     int // 0-based column within the line
}

var keywords = map[string]TokenType{
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"set":   SET,
	"print": PRINT,
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"for":   FOR,
	"in":    IN,
	"to":    TO,
	"while": WHILE,
	"func":  FUNC,
	"exit":  EXIT,
	"vars":  VARS,
	"True":  BOOLEAN,
	"False": BOOLEAN,
	"None":  NONE,
}

// Lexer scans one statement line into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // original source line (constant for a statement line)
	tokens []Token
}

// NewLexer creates a lexer for text that originated at the given 1-based
// source line.
func NewLexer(text string, line int) *Lexer {
	return &Lexer{src: text, line: line}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	tok := Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.line,
		Col:     l.start,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\t':
			l.cur++
			l.start = l.cur
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (l *Lexer) err(msg string) error {
	return &ScriptError{Kind: ErrSyntax, Line: l.line, Col: l.cur, Context: l.src, Msg: msg}
}

// scanString parses a string literal (single or double quotes) with the
// usual backslash escapes.
func (l *Lexer) scanString(del byte) (string, error) {
	var out []byte
	for !l.isAtEnd() {
		ch, _ := l.advance()
		if ch == del {
			return string(out), nil
		}
		if ch == '\\' {
			esc, ok := l.advance()
			if !ok {
				return "", l.err("unfinished escape sequence")
			}
			switch esc {
			case '"', '\'', '\\':
				out = append(out, esc)
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			default:
				return "", l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
			}
			continue
		}
		out = append(out, ch)
	}
	return "", l.err("string was not terminated")
}

// scanIdentifier parses [A-Za-z_][A-Za-z0-9_]*
func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// scanNumber parses an integer or float; supports 1.5, .5, 1e-4.
func (l *Lexer) scanNumber() (TokenType, interface{}, error) {
	sawDigits := false
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
		sawDigits = true
	}

	sawDot := false
	if b, ok := l.peek(); ok && b == '.' {
		l.advance()
		sawDot = true
		for {
			b, ok := l.peek()
			if !ok || !isDigit(b) {
				break
			}
			l.advance()
			sawDigits = true
		}
	}

	sawExp := false
	if b, ok := l.peek(); ok && (b == 'e' || b == 'E') {
		save := l.cur
		l.advance()
		if b2, ok := l.peek(); ok && (b2 == '+' || b2 == '-') {
			l.advance()
		}
		if b3, ok := l.peek(); ok && isDigit(b3) {
			sawExp = true
			for {
				b4, ok := l.peek()
				if !ok || !isDigit(b4) {
					break
				}
				l.advance()
			}
		} else {
			l.cur = save
		}
	}

	if !sawDigits {
		return ILLEGAL, nil, l.err("malformed number")
	}

	lex := l.src[l.start:l.cur]
	if !sawDot && !sawExp {
		v, convErr := strconv.ParseInt(lex, 10, 64)
		if convErr != nil {
			return ILLEGAL, nil, l.err("integer literal out of range")
		}
		return INTEGER, v, nil
	}
	vf, convErr := strconv.ParseFloat(lex, 64)
	if convErr != nil {
		return ILLEGAL, nil, l.err("invalid float literal")
	}
	return NUMBER, vf, nil
}

func (l *Lexer) scanToken() (Token, error) {
	l.skipWhitespace()
	l.start = l.cur

	if l.isAtEnd() {
		return l.addToken(EOF, nil), nil
	}

	ch, _ := l.advance()

	switch ch {
	case '(':
		return l.addToken(LROUND, "("), nil
	case ')':
		return l.addToken(RROUND, ")"), nil
	case '[':
		return l.addToken(LSQUARE, "["), nil
	case ']':
		return l.addToken(RSQUARE, "]"), nil
	case '{':
		return l.addToken(LCURLY, "{"), nil
	case '}':
		return l.addToken(RCURLY, "}"), nil
	case ',':
		return l.addToken(COMMA, ","), nil
	case '+':
		return l.addToken(PLUS, "+"), nil
	case '-':
		return l.addToken(MINUS, "-"), nil
	case '%':
		return l.addToken(MOD, "%"), nil
	case '*':
		if b, ok := l.peek(); ok && b == '*' {
			l.advance()
			return l.addToken(POW, "**"), nil
		}
		return l.addToken(MULT, "*"), nil
	case '/':
		if b, ok := l.peek(); ok && b == '/' {
			l.advance()
			return l.addToken(IDIV, "//"), nil
		}
		return l.addToken(DIV, "/"), nil
	case '=':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(EQ, "=="), nil
		}
		return l.addToken(ASSIGN, "="), nil
	case '!':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(NEQ, "!="), nil
		}
		return Token{}, l.err("unexpected character: '!'")
	case '<':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(LESS_EQ, "<="), nil
		}
		return l.addToken(LESS, "<"), nil
	case '>':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(GREATER_EQ, ">="), nil
		}
		return l.addToken(GREATER, ">"), nil
	}

	if ch == '"' || ch == '\'' {
		text, err := l.scanString(ch)
		if err != nil {
			return Token{}, err
		}
		return l.addToken(STRING, text), nil
	}

	if isDigit(ch) || (ch == '.' && func() bool { b, ok := l.peek(); return ok && isDigit(b) }()) {
		l.cur = l.start
		tt, lit, err := l.scanNumber()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(tt, lit), nil
	}

	if isAlpha(ch) {
		lex := l.scanIdentifier()
		if tt, ok := keywords[lex]; ok {
			switch tt {
			case BOOLEAN:
				return l.addToken(BOOLEAN, lex == "True"), nil
			case NONE:
				return l.addToken(NONE, nil), nil
			default:
				return l.addToken(tt, lex), nil
			}
		}
		return l.addToken(ID, lex), nil
	}

	return Token{}, l.err(fmt.Sprintf("unexpected character: %q", ch))
}

// Scan tokenizes the whole line and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}
