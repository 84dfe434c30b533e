// splitter.go: splits script source into logical statement lines.
//
// Blank lines and `#` comment lines are discarded, but every retained line
// keeps its original 1-based line number so diagnostics point at the user's
// source, not the filtered index. Trailing `#` comments after code are also
// stripped (outside string literals). No side effects.
package valyxoscript

import "strings"

// SourceLine is one retained statement line with its original position.
type SourceLine struct {
	Num  int // 1-based line number in the original source
	Text string
}

// SplitLines splits source into trimmed, comment-free statement lines.
func SplitLines(source string) []SourceLine {
	raw := strings.Split(source, "\n")
	out := make([]SourceLine, 0, len(raw))
	for i, ln := range raw {
		txt := strings.TrimSpace(stripComment(ln))
		if txt == "" {
			continue
		}
		out = append(out, SourceLine{Num: i + 1, Text: txt})
	}
	return out
}

// stripComment removes a trailing `# ...` comment, ignoring '#' inside
// string literals (single or double quoted, with backslash escapes).
func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '#':
			return line[:i]
		}
	}
	return line
}
