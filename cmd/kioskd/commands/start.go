package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/kioskd/internal/logger"
	"github.com/marmos91/kioskd/pkg/api"
	"github.com/marmos91/kioskd/pkg/config"
	"github.com/marmos91/kioskd/pkg/metrics"
	kioskprom "github.com/marmos91/kioskd/pkg/metrics/prometheus"
	"github.com/marmos91/kioskd/pkg/session"
	"github.com/marmos91/kioskd/pkg/supervisor"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the kioskd control server",
	Long: `Start the kioskd HTTP control server in the foreground.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/kioskd/config.yaml. A missing config
file is fine: defaults apply, and every option can be overridden via
KIOSKD_* environment variables.

Examples:
  # Start with default config location
  kioskd start

  # Start with custom config
  kioskd start --config /etc/kioskd/config.yaml

  # Override single options via environment
  KIOSKD_LOGGING_LEVEL=DEBUG KIOSKD_SERVER_PORT=9100 kioskd start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("metrics enabled", "path", "/metrics")
	}
	sessionMetrics := kioskprom.NewSessionMetrics()

	registry := supervisor.NewRegistry(cfg.Supervisor.WMService, cfg.Supervisor.DesktopService)
	client := supervisor.NewClient(supervisor.Config{
		Command:        cfg.Supervisor.Command,
		StatusTimeout:  cfg.Supervisor.StatusTimeout,
		ControlTimeout: cfg.Supervisor.ControlTimeout,
	}, registry, nil)

	prober := session.NewProber(session.ProberConfig{
		StackWaitMax:        cfg.Readiness.StackWaitMax,
		DisplayWaitMax:      cfg.Readiness.DisplayWaitMax,
		PollInterval:        cfg.Readiness.PollInterval,
		ProbeTimeout:        cfg.Readiness.ProbeTimeout,
		DisplayReadyCommand: cfg.Readiness.DisplayReadyCommand,
	}, client, nil)

	applicator := session.NewScriptApplicator(cfg.Mode.Script, cfg.Mode.ApplyTimeout, nil)

	reconciler := session.NewReconciler(session.ReconcilerConfig{
		SettleDelay: cfg.Mode.SettleDelay,
	}, client, prober, applicator, sessionMetrics)

	logger.Info("session configured",
		"wm_service", registry.WMService(),
		"desktop_service", registry.CompanionService(),
		"kiosk_script", cfg.Mode.Script,
		"supervisorctl", cfg.Supervisor.Command)

	if cfg.Mode.WatchScript {
		go func() {
			if err := session.WatchScript(ctx, cfg.Mode.Script, reconciler); err != nil {
				logger.Warn("script watcher unavailable", "error", err)
			}
		}()
	}

	server := api.NewServer(*cfg, reconciler)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("kioskd running", "addr", server.Addr(), "version", Version)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", "error", err)
			return err
		}
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
	}
	return nil
}
