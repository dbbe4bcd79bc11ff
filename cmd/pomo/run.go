package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcin-skalski/pomo/internal/auth"
	"github.com/marcin-skalski/pomo/internal/config"
	"github.com/marcin-skalski/pomo/internal/controller"
	"github.com/marcin-skalski/pomo/internal/timer"
	"github.com/marcin-skalski/pomo/internal/tui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	noTUI      bool
	startPhase string
	runTask    uint
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the timer (default)",
	Long: `Run the timer. An interactive UI is shown when stdin and stdout are
terminals. Otherwise, or with --no-tui or POMO_TUI=0, the timer runs
headless: it needs a stored token, starts immediately, moves through the
phases on its own and logs every transition until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runTimer,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().BoolVar(&noTUI, "no-tui", false, "Run headless and log to stderr")
		c.Flags().StringVar(&startPhase, "phase", "", "Phase to start in (work, short, long)")
		c.Flags().UintVar(&runTask, "task", 0, "Record work sessions against this task ID")
	}
	rootCmd.AddCommand(runCmd)
}

func runTimer(cmd *cobra.Command, args []string) error {
	var phase timer.Phase
	if startPhase != "" {
		p, err := timer.ParsePhase(startPhase)
		if err != nil {
			return err
		}
		phase = p
	}

	enableTUI := !noTUI && os.Getenv("POMO_TUI") != "0" &&
		isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

	// The TUI owns the terminal, so it logs to the file only
	a, err := newApp(!enableTUI)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := controller.New(engineConfig(a.cfg, enableTUI), a.client, controller.Options{
		UploadTimeout: a.cfg.RequestTimeout,
	}, a.logger)
	defer ctrl.Close(a.cfg.RequestTimeout)

	if phase != "" {
		ctrl.SwitchPhase(phase)
	}
	if runTask != 0 {
		task := runTask
		ctrl.SetTask(&task)
	}

	if enableTUI {
		return runInteractive(a, ctrl)
	}
	return runHeadless(cmd.Context(), a, ctrl)
}

// engineConfig is the timer configuration for a run. Headless runs have
// nobody to press start, so phases always roll over on their own.
func engineConfig(cfg *config.Config, interactive bool) timer.Config {
	engine := cfg.Timer.Engine()
	if !interactive {
		engine.AutoStart = true
	}
	return engine
}

func runInteractive(a *app, ctrl *controller.Controller) error {
	a.logger.Info("pomo starting", "api", a.cfg.APIURL, "config", configPath)

	m := tui.NewModel(a.auth, ctrl, a.auth.Restore(), tui.Options{
		RefreshInterval: a.cfg.TUI.RefreshInterval,
		RequestTimeout:  a.cfg.RequestTimeout,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	a.logger.Info("pomo stopped")
	return nil
}

func runHeadless(ctx context.Context, a *app, ctrl *controller.Controller) error {
	token, err := a.token()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl.SetSession(auth.Session{Token: token})
	_ = ctrl.LoadHistory(ctx) // logged by the controller

	events := ctrl.Subscribe(64)
	ctrl.Start()

	st := ctrl.State()
	a.logger.Info("pomo starting (headless)",
		"api", a.cfg.APIURL,
		"phase", st.Phase,
		"remaining", tui.FormatClock(st.SecondsRemaining))

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("shutdown signal received, stopping timer")
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			logEvent(a.logger, ev)
		}
	}
}

// logEvent reports progress. Completions and uploads are already logged
// by the controller.
func logEvent(logger *slog.Logger, ev controller.Event) {
	switch ev.Type {
	case controller.EventTick:
		if ev.State.SecondsRemaining%60 == 0 {
			logger.Info("remaining",
				"phase", ev.State.Phase.Label(),
				"time", tui.FormatClock(ev.State.SecondsRemaining))
		} else {
			logger.Debug("tick", "remaining", ev.State.SecondsRemaining)
		}
	case controller.EventPhaseComplete:
		logger.Info("next phase",
			"phase", ev.State.Phase.Label(),
			"time", tui.FormatClock(ev.State.SecondsRemaining),
			"cycles", ev.State.CompletedWorkCycles)
	case controller.EventPhaseSwitched:
		logger.Info("phase switched", "phase", ev.State.Phase.Label())
	case controller.EventSessionFailed:
		logger.Debug("session event", "type", ev.Type, "err", ev.Err)
	case controller.EventSessionRecorded:
		logger.Debug("session event", "type", ev.Type, "start", ev.Record.StartTime)
	}
}
