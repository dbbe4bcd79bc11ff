package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/marcin-skalski/pomo/internal/api"
	"github.com/marcin-skalski/pomo/internal/auth"
	"github.com/marcin-skalski/pomo/internal/config"
	"github.com/marcin-skalski/pomo/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
	apiURL     string
)

var rootCmd = &cobra.Command{
	Use:   "pomo",
	Short: "Pomodoro timer that records finished work sessions",
	Long: `pomo runs a Pomodoro timer in the terminal. Finished work phases are
saved to the pomodoro API under the signed-in account.`,
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to the timer when no subcommand is provided
		return runTimer(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides api_url)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var errNotLoggedIn = errors.New("not logged in, run `pomo login` first")

// app holds the collaborators shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
	client *api.Client
	store  *auth.FileStore
	auth   *auth.Service
}

func newApp(console bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if apiURL != "" {
		if err := cfg.SetAPIURL(apiURL); err != nil {
			return nil, fmt.Errorf("--api-url: %w", err)
		}
	}

	logger, closer, err := logging.Setup(logging.Options{
		File:    cfg.LogFile,
		Level:   cfg.Log.Level,
		Console: console,
	})
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	client := api.NewClient(cfg.APIURL, cfg.RequestTimeout, logger)
	store := auth.NewFileStore(cfg.TokenFile)

	return &app{
		cfg:    cfg,
		logger: logger,
		closer: closer,
		client: client,
		store:  store,
		auth:   auth.NewService(client, store, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.closer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
	}
}

func (a *app) token() (string, error) {
	in, ok := a.auth.Restore().(auth.LoggedIn)
	if !ok {
		return "", errNotLoggedIn
	}
	return in.Session.Token, nil
}

// withToken runs fn with a loaded app, the stored token and a request
// timeout. Commands that call protected endpoints go through here.
func withToken(cmd *cobra.Command, fn func(ctx context.Context, a *app, token string) error) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	token, err := a.token()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout)
	defer cancel()
	return fn(ctx, a, token)
}

func parseID(kind, s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s id: %s", kind, s)
	}
	return uint(id), nil
}
