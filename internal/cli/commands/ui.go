package commands

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/leapstack-labs/cricdash/internal/cricbuzz"
	"github.com/leapstack-labs/cricdash/internal/ui"
	"github.com/spf13/cobra"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Host      string
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the cricket analytics dashboard",
		Long: `Start a local web server with the dashboard.

The dashboard provides:
- The analytics query catalog
- A read-only SQL playground over the analytics database
- CRUD operations against the configured MySQL or PostgreSQL target
- Live matches, scorecards and player stats from Cricbuzz

CRUD and live panels report when their target is not configured.`,
		Example: `  # Start UI on default port
  cricdash ui

  # Start on custom port
  cricdash ui --port 3000

  # Start without auto-opening browser
  cricdash ui --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			watchChanged := cmd.Flags().Changed("watch")
			return runUI(cmd.Context(), cc, opts, watchChanged)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "Interface to listen on (default: localhost)")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Push updates when the analytics database changes")

	return cmd
}

// serverConfig resolves the UI server configuration. CRUD and Cricbuzz
// failures leave their panels disabled rather than failing startup.
func serverConfig(cc *CommandContext, opts *UIOptions, watchChanged bool) (ui.Config, func(), error) {
	cfg := cc.Cfg
	uiCfg := cfg.UI

	serverCfg := ui.Config{
		Logger:          cc.Logger,
		QueryTimeout:    cfg.QueryTimeout,
		DefaultDatabase: cfg.CRUD.DefaultDatabase,
		DefaultLimit:    cfg.CRUD.DefaultLimit,
		Host:            uiCfg.Host,
		Port:            uiCfg.Port,
		Watch:           uiCfg.Watch,
		SessionSecret:   sessionSecret(uiCfg.SessionSecret),
	}

	// CLI flags override config file
	if opts.Host != "" {
		serverCfg.Host = opts.Host
	}
	if opts.Port != 0 {
		serverCfg.Port = opts.Port
	}
	if watchChanged {
		serverCfg.Watch = opts.Watch
	}

	st, err := cc.OpenStore(true)
	if err != nil {
		return ui.Config{}, nil, err
	}
	serverCfg.Store = st

	if svc, err := cc.CRUD(); err != nil {
		cc.Logger.Warn("CRUD panel disabled", slog.String("error", err.Error()))
	} else {
		serverCfg.CRUD = svc
	}

	if client, err := cc.Cricbuzz(); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, cricbuzz.ErrMissingAPIKey) {
			level = slog.LevelInfo
		}
		cc.Logger.Log(context.Background(), level, "live panel disabled", slog.String("error", err.Error()))
	} else {
		serverCfg.API = client
	}

	return serverCfg, func() { _ = st.Close() }, nil
}

func runUI(ctx context.Context, cc *CommandContext, opts *UIOptions, watchChanged bool) error {
	serverCfg, cleanup, err := serverConfig(cc, opts, watchChanged)
	if err != nil {
		return err
	}
	defer cleanup()

	server := ui.NewServer(serverCfg)

	autoOpen := cc.Cfg.UI.AutoOpen && !opts.NoBrowser
	if autoOpen {
		go openBrowser(server.URL())
	}

	r := cc.Renderer
	r.Printf("Starting UI server on %s\n", server.URL())
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret returns the configured secret, or a random one that lasts
// for this process. Sessions then end when the server restarts.
func sessionSecret(configured string) string {
	if s := strings.TrimSpace(configured); s != "" {
		return s
	}
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
