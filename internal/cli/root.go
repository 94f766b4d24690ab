// Package cli wires the ttydash commands: running the dashboard, writing a
// starter config, and printing version info.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pvemon/ttydash/internal/config"
	"github.com/pvemon/ttydash/internal/engine"
	"github.com/pvemon/ttydash/internal/errors"
	"github.com/pvemon/ttydash/internal/logger"
	"github.com/pvemon/ttydash/internal/prom"
	"github.com/pvemon/ttydash/internal/term"
)

var (
	configFlag string
	ttyFlag    string
)

// rootCmd runs the dashboard directly; subcommands handle everything else.
var rootCmd = &cobra.Command{
	Use:   "ttydash",
	Short: "Terminal metrics dashboard",
	Long: `ttydash renders a live-updating metrics dashboard on a terminal device.

It samples a Prometheus-compatible backend, derives values through
config-defined arithmetic expressions, and repaints a header line and
entity tables in place.

Examples:
  ttydash                          # render to stdout using ./ttydash.yaml
  ttydash --tty /dev/tty1          # take over a console
  ttydash --config /etc/ttydash.yaml --tty /dev/tty1`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(configFlag, ttyFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
	rootCmd.Flags().StringVar(&ttyFlag, "tty", "", "terminal device to render to (default stdout)")
}

// Execute runs the root command and maps errors to a non-zero exit.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runDashboard is the main entry: load config, open the display, run the
// engine until interrupted, and leave the terminal with a visible cursor no
// matter how we exit.
func runDashboard(configPath, tty string) error {
	path, err := config.Find(configPath)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'ttydash init' to create ttydash.yaml, or pass --config")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	var screen *term.Screen
	if tty != "" {
		screen, err = term.Open(tty)
		if err != nil {
			return err
		}
	} else {
		screen = term.NewScreen(os.Stdout)
	}
	defer screen.Close()
	defer screen.ShowCursor()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := prom.NewClient(cfg.Datasources.Prometheus.BaseURL,
		cfg.FetchTimeout(), logger.NewEnvLogger("[prom]"))
	eng := engine.New(cfg, client, screen, logger.NewEnvLogger("[engine]"))

	screen.Reset()
	return eng.Run(ctx)
}
