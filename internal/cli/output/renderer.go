package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Renderer writes results and status lines in the configured mode.
// Results go to out; status lines go to errOut.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, IsTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: NewStyles(out, isTTY),
	}
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// EffectiveMode resolves ModeAuto: tables on a terminal, markdown otherwise.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto && r.mode != "" {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Styles returns the renderer's styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the result writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Println writes a line to the result writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the result writer.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Success writes a green status line.
func (r *Renderer) Success(msg string) {
	r.StatusLine(r.styles.Success.Render("✓"), msg)
}

// Warning writes a yellow status line.
func (r *Renderer) Warning(msg string) {
	r.StatusLine(r.styles.Warning.Render("!"), msg)
}

// Error writes a red status line.
func (r *Renderer) Error(msg string) {
	r.StatusLine(r.styles.Error.Render("✗"), msg)
}

// Muted writes a dim status line.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Muted.Render(msg))
}

// StatusLine writes "<marker> <msg>" to the status writer.
func (r *Renderer) StatusLine(marker, msg string) {
	_, _ = fmt.Fprintf(r.errOut, "%s %s\n", marker, msg)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Value writes a structured value. JSON and YAML modes encode it; other
// modes fall back to JSON.
func (r *Renderer) Value(v any) error {
	if r.EffectiveMode() == ModeYAML {
		return r.YAML(v)
	}
	return r.JSON(v)
}

// Table writes a result table in the effective mode.
func (r *Renderer) Table(rt core.ResultTable) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(rt)
	case ModeYAML:
		return r.YAML(yamlRows(rt))
	case ModeCSV:
		return r.CSV(rt)
	case ModeMarkdown:
		if rt.Len() == 0 {
			r.Println(FormatRows(0))
			return nil
		}
		r.Println(r.prettyTable(rt).RenderMarkdown())
		r.Println("")
		r.Println(FormatRows(rt.Len()))
		return nil
	default:
		if rt.Len() == 0 {
			r.Println(FormatRows(0))
			return nil
		}
		t := r.prettyTable(rt)
		t.SetStyle(table.StyleLight)
		r.Println(t.Render())
		r.Println(r.styles.Muted.Render(FormatRows(rt.Len())))
		return nil
	}
}

// CSV writes rt as RFC 4180 records: a header row, then one record per row
// with NULL for nil values.
func (r *Renderer) CSV(rt core.ResultTable) error {
	w := csv.NewWriter(r.out)
	if err := w.Write(rt.Columns); err != nil {
		return err
	}
	for _, rec := range rt.Records() {
		fields := make([]string, len(rec))
		for i, v := range rec {
			fields[i] = FormatValue(v)
		}
		if err := w.Write(fields); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (r *Renderer) prettyTable(rt core.ResultTable) table.Writer {
	t := table.NewWriter()
	header := make(table.Row, len(rt.Columns))
	for i, col := range rt.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, rec := range rt.Records() {
		row := make(table.Row, len(rec))
		for i, v := range rec {
			row[i] = FormatValue(v)
		}
		t.AppendRow(row)
	}
	return t
}

// yamlRows builds a sequence of mappings that keeps column order.
func yamlRows(rt core.ResultTable) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, rec := range rt.Records() {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, col := range rt.Columns {
			key := &yaml.Node{Kind: yaml.ScalarNode, Value: col}
			val := &yaml.Node{}
			if err := val.Encode(rec[i]); err != nil {
				val = &yaml.Node{Kind: yaml.ScalarNode, Value: FormatValue(rec[i])}
			}
			m.Content = append(m.Content, key, val)
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}
