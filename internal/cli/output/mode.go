// Package output renders command results to the terminal.
package output

import "strings"

// OutputMode selects how results are rendered.
type OutputMode string

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "table"
	ModeMarkdown OutputMode = "md"
	ModeJSON     OutputMode = "json"
	ModeCSV      OutputMode = "csv"
	ModeYAML     OutputMode = "yaml"
)

// Mode parses a format name. Unknown or empty names mean ModeAuto.
func Mode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "text":
		return ModeText
	case "md", "markdown":
		return ModeMarkdown
	case "json":
		return ModeJSON
	case "csv":
		return ModeCSV
	case "yaml", "yml":
		return ModeYAML
	default:
		return ModeAuto
	}
}

// Names lists the accepted format names, for flag completion.
func Names() []string {
	return []string{"auto", "table", "md", "json", "csv", "yaml"}
}
