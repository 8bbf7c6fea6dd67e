package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "cricdash> "
	replContinuing = "     ...> "
)

func runPlaygroundREPL(cmd *cobra.Command, cc *CommandContext) error {
	ctx := cmd.Context()

	st, err := cc.OpenStore(true)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	historyFile := filepath.Join(filepath.Dir(st.Path()), ".cricdash_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newTableCompleter(ctx, st),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cricdash SQL playground (%s)\n", st.Path())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(ctx, cc.Renderer, st, line); quit {
				break
			}
			continue
		}

		// statements run once they end with a semicolon
		buffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buffer.WriteString("\n")
			rl.SetPrompt(replContinuing)
			continue
		}
		rl.SetPrompt(replPrompt)

		query := strings.TrimSuffix(buffer.String(), ";")
		buffer.Reset()

		if err := executePlayground(ctx, cc.Renderer, st, query); err != nil {
			cc.Renderer.Error(err.Error())
		}
		cc.Renderer.Println("")
	}

	return nil
}

// handleDotCommand runs one REPL meta command and reports whether the
// REPL should exit.
func handleDotCommand(ctx context.Context, r *output.Renderer, st *store.Store, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.Writer())

	case ".tables":
		if err := listTables(ctx, r, st); err != nil {
			r.Error(err.Error())
		}

	case ".schema":
		if len(parts) < 2 {
			r.Warning("Usage: .schema <table>")
			return false
		}
		if err := showSchema(ctx, r, st, parts[1]); err != nil {
			r.Error(err.Error())
		}

	case ".suggest":
		r.Println(store.DefaultQuery(parts[1:]))

	case ".clear":
		r.Printf("\033[H\033[2J")

	default:
		r.Warning(fmt.Sprintf("Unknown command: %s (type .help for commands)", command))
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help              Show this help message
  .tables            List the analytics tables
  .schema <table>    Show the columns of a table
  .suggest [t1 t2]   Print a starter query for up to two tables
  .clear             Clear the screen
  .quit / .exit      Exit the REPL

Tips:
  - Statements must end with a semicolon (;)
  - Only SELECT, WITH and PRAGMA table_info are accepted
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for table names and
// dot commands.
func newTableCompleter(ctx context.Context, st *store.Store) *readline.PrefixCompleter {
	tables, _ := st.ListTables(ctx)

	items := make([]readline.PrefixCompleterInterface, 0, len(tables)+7)
	for _, name := range tables {
		items = append(items, readline.PcItem(name))
	}
	schemaItems := make([]readline.PrefixCompleterInterface, 0, len(tables))
	for _, name := range tables {
		schemaItems = append(schemaItems, readline.PcItem(name))
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema", schemaItems...),
		readline.PcItem(".suggest"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
