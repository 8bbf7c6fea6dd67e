package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatHeader returns a markdown heading of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown bullet "- **key:** value".
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}

// FormatCodeBlock fences code with an optional language tag.
func FormatCodeBlock(lang, code string) string {
	return "```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```"
}

// FormatCount renders n with thousands separators, e.g. 12,345.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatRows renders a row count, e.g. "(1 row)" or "(1,024 rows)".
func FormatRows(n int) string {
	if n == 1 {
		return "(1 row)"
	}
	return "(" + FormatCount(n) + " rows)"
}

// FormatValue renders a cell. NULL for nil.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
