// printer.go: display formatting for print, vars, and the REPL echo.
//
// Display rules: integers and floats print without trailing noise, strings
// print unquoted at the top level but quoted inside lists and dicts,
// booleans print as True/False, and None prints literally. Dict keys
// render in sorted order so output is deterministic.
package valyxoscript

import (
	"sort"
	"strconv"
	"strings"
)

// DisplayString renders v the way `print` shows it: strings bare.
func DisplayString(v Value) string {
	if v.Tag == VTStr {
		return v.Data.(string)
	}
	return FormatValue(v)
}

// FormatValue renders v as literal-ish text: strings quoted.
func FormatValue(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.Tag {
	case VTNone:
		b.WriteString("None")
	case VTBool:
		if v.Data.(bool) {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case VTInt:
		b.WriteString(strconv.FormatInt(v.Data.(int64), 10))
	case VTNum:
		b.WriteString(formatFloat(v.Data.(float64)))
	case VTStr:
		b.WriteString(strconv.Quote(v.Data.(string)))
	case VTList:
		b.WriteByte('[')
		for i, el := range v.Data.([]Value) {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, el)
		}
		b.WriteByte(']')
	case VTDict:
		m := v.Data.(map[string]Value)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			writeValue(b, m[k])
		}
		b.WriteByte('}')
	}
}

// formatFloat prints a float in the shortest form that round-trips,
// keeping a ".0" marker on whole numbers so floats stay visibly floats.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// ".eEan" also catches NaN and Inf, which need no ".0" marker.
	if !strings.ContainsAny(s, ".eEan") {
		s += ".0"
	}
	return s
}
