// Command tripctl is the command-line client for the trip-planning backend.
// It signs in (writing the credentials file tripsyncd watches), inspects and
// edits trips and their resources, and drives the same trip selection logic
// tripsyncd runs, against the same selection store.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tripwhizz/tripsync/internal/apiclient"
	"github.com/tripwhizz/tripsync/internal/auth"
	"github.com/tripwhizz/tripsync/internal/config"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	out     io.Writer
	errOut  io.Writer
	output  string
	apiURL  string
	timeout time.Duration
	verbose bool

	cfg    config.Config
	creds  *auth.FileStore
	client *apiclient.Client
	log    *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "tripctl",
		Short:         "Command-line client for TripWhizz trips",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.output, "output", "o", "yaml", "Output format: yaml or json")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Backend base URL (or set TRIPWHIZZ_API_URL)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "Per-command timeout")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.registerCmd(),
		a.resetPasswordCmd(),
		a.meCmd(),
		a.tripsCmd(),
		a.stateCmd(),
		a.prefsCmd(),
		a.expensesCmd(),
		a.packingCmd(),
		a.documentsCmd(),
		a.notificationsCmd(),
		a.friendsCmd(),
		a.itineraryCmd(),
		a.stagesCmd(),
	)

	return root
}

// setup loads configuration and builds the backend client.
func (a *app) setup() error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	if a.apiURL != "" {
		if err := os.Setenv("TRIPWHIZZ_API_URL", a.apiURL); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.creds, err = auth.NewFileStore(cfg.TokenFile)
	if err != nil {
		return err
	}
	var tokens apiclient.TokenProvider = a.creds
	if cfg.Token != "" {
		tokens = auth.Static(cfg.Token)
	}
	a.client, err = apiclient.New(cfg.APIURL, tokens)
	return err
}

// ctx bounds a command by the --timeout flag.
func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}
