// lexer_test.go
package valyxoscript

import (
	"testing"
)

func scanLine(t *testing.T, text string) []Token {
	t.Helper()
	toks, err := NewLexer(text, 1).Scan()
	if err != nil {
		t.Fatalf("scan error for %q: %v", text, err)
	}
	return toks
}

func scanErr(t *testing.T, text string) *ScriptError {
	t.Helper()
	_, err := NewLexer(text, 1).Scan()
	if err == nil {
		t.Fatalf("want scan error for %q", text)
	}
	return err.(*ScriptError)
}

func wantTypes(t *testing.T, toks []Token, want ...TokenType) {
	t.Helper()
	if len(toks) != len(want) {
		t.Fatalf("want %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d: want type %d, got %d (%q)", i, tt, toks[i].Type, toks[i].Lexeme)
		}
	}
}

func Test_Lexer_set_statement(t *testing.T) {
	toks := scanLine(t, "set x = 10")
	wantTypes(t, toks, SET, ID, ASSIGN, INTEGER, EOF)
	if toks[3].Literal.(int64) != 10 {
		t.Fatalf("literal: %v", toks[3].Literal)
	}
}

func Test_Lexer_two_char_operators(t *testing.T) {
	wantTypes(t, scanLine(t, "== != <= >= // **"),
		EQ, NEQ, LESS_EQ, GREATER_EQ, IDIV, POW, EOF)
}

func Test_Lexer_single_vs_double_star_slash(t *testing.T) {
	wantTypes(t, scanLine(t, "a * b / c"), ID, MULT, ID, DIV, ID, EOF)
	wantTypes(t, scanLine(t, "a ** b // c"), ID, POW, ID, IDIV, ID, EOF)
}

func Test_Lexer_keywords_vs_identifiers(t *testing.T) {
	toks := scanLine(t, "if then else for in to while func exit vars and or not settle")
	wantTypes(t, toks, IF, THEN, ELSE, FOR, IN, TO, WHILE, FUNC, EXIT, VARS, AND, OR, NOT, ID, EOF)
	if toks[13].Lexeme != "settle" {
		t.Fatalf("prefix of a keyword must stay an identifier, got %q", toks[13].Lexeme)
	}
}

func Test_Lexer_boolean_and_none_literals(t *testing.T) {
	toks := scanLine(t, "True False None")
	wantTypes(t, toks, BOOLEAN, BOOLEAN, NONE, EOF)
	if toks[0].Literal.(bool) != true || toks[1].Literal.(bool) != false {
		t.Fatal("boolean literal values")
	}
}

func Test_Lexer_case_sensitive_keywords(t *testing.T) {
	// Only capitalized True/False/None are literals; lowercase are plain
	// identifiers.
	wantTypes(t, scanLine(t, "true false none"), ID, ID, ID, EOF)
}

func Test_Lexer_number_forms(t *testing.T) {
	toks := scanLine(t, "1 2.5 .5 1e3 2E-2 7.")
	wantTypes(t, toks, INTEGER, NUMBER, NUMBER, NUMBER, NUMBER, NUMBER, EOF)
	if toks[1].Literal.(float64) != 2.5 {
		t.Fatal("2.5")
	}
	if toks[2].Literal.(float64) != 0.5 {
		t.Fatal(".5")
	}
	if toks[3].Literal.(float64) != 1000 {
		t.Fatal("1e3")
	}
	if toks[4].Literal.(float64) != 0.02 {
		t.Fatal("2E-2")
	}
	if toks[5].Literal.(float64) != 7 {
		t.Fatal("7.")
	}
}

func Test_Lexer_integer_overflow_is_error(t *testing.T) {
	err := scanErr(t, "99999999999999999999")
	if err.Kind != ErrSyntax {
		t.Fatalf("want syntax error, got %v", err.Kind)
	}
}

func Test_Lexer_string_quotes_and_escapes(t *testing.T) {
	toks := scanLine(t, `"a\"b" 'c\'d' "tab\there"`)
	wantTypes(t, toks, STRING, STRING, STRING, EOF)
	if toks[0].Literal.(string) != `a"b` {
		t.Fatalf("got %q", toks[0].Literal)
	}
	if toks[1].Literal.(string) != "c'd" {
		t.Fatalf("got %q", toks[1].Literal)
	}
	if toks[2].Literal.(string) != "tab\there" {
		t.Fatalf("got %q", toks[2].Literal)
	}
}

func Test_Lexer_string_newline_escape(t *testing.T) {
	toks := scanLine(t, `"a\nb"`)
	if toks[0].Literal.(string) != "a\nb" {
		t.Fatalf("got %q", toks[0].Literal)
	}
}

func Test_Lexer_unterminated_string(t *testing.T) {
	err := scanErr(t, `"abc`)
	if err.Kind != ErrSyntax {
		t.Fatalf("want syntax error, got %v", err.Kind)
	}
}

func Test_Lexer_invalid_escape(t *testing.T) {
	_ = scanErr(t, `"a\qb"`)
}

func Test_Lexer_bare_bang_is_error(t *testing.T) {
	_ = scanErr(t, "a ! b")
}

func Test_Lexer_unexpected_character(t *testing.T) {
	err := scanErr(t, "set x = 1 @ 2")
	if err.Line != 1 {
		t.Fatalf("line: %d", err.Line)
	}
}

func Test_Lexer_columns_track_positions(t *testing.T) {
	toks := scanLine(t, "set abc = 5")
	// set@0 abc@4 =@8 5@10
	wantCols := []int{0, 4, 8, 10}
	for i, c := range wantCols {
		if toks[i].Col != c {
			t.Fatalf("token %d (%q): want col %d, got %d", i, toks[i].Lexeme, c, toks[i].Col)
		}
	}
}

func Test_Lexer_line_number_preserved(t *testing.T) {
	toks, err := NewLexer("print 1", 17).Scan()
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range toks {
		if tok.Line != 17 {
			t.Fatalf("token %q: line %d", tok.Lexeme, tok.Line)
		}
	}
}
