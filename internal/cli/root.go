// Package cli wires the hc-bulk command surface: flag parsing, preview
// rendering, and confirmation, on top of the bulk service.
package cli

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hctools/hc-bulk/internal/config"
	"github.com/hctools/hc-bulk/internal/executor"
	"github.com/hctools/hc-bulk/internal/metrics"
	"github.com/hctools/hc-bulk/internal/repo"
	"github.com/hctools/hc-bulk/internal/services"
	"github.com/hctools/hc-bulk/internal/utils"
)

// App carries the pieces shared by every subcommand. NewClient is a
// factory so tests can substitute a fake API client.
type App struct {
	Logger    *slog.Logger
	NewClient func(cfg *config.Config) services.CheckClient

	configPath string
	apiKey     string
	pingKey    string
	apiURL     string
	logLevel   string
}

// NewRootCommand builds the hc-bulk command tree.
func NewRootCommand() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:           "hc-bulk",
		Short:         "Bulk tools for Healthchecks-compatible services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "path to configuration file")
	flags.StringVar(&app.apiKey, "api-key", "", "full-access API key (env HC_API_KEY)")
	flags.StringVar(&app.pingKey, "ping-key", "", "project ping key, optional (env HC_PING_KEY)")
	flags.StringVar(&app.apiURL, "api-url", "", "management API base URL (env HC_API_URL)")
	flags.StringVar(&app.logLevel, "log-level", "", "log verbosity: debug, info, warn, error")

	root.AddCommand(newLsCommand(app))
	root.AddCommand(newBulkUpdateCommand(app))
	return root
}

// setup resolves configuration, validates it, and prepares the logger,
// metrics, and client factory. Called at the start of every subcommand.
func (a *App) setup() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.apiKey != "" {
		cfg.API.Key = a.apiKey
	}
	if a.pingKey != "" {
		cfg.API.PingKey = a.pingKey
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if a.Logger == nil {
		a.Logger = utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	}
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, err
	}
	if a.NewClient == nil {
		a.NewClient = func(cfg *config.Config) services.CheckClient {
			return repo.NewHealthchecksClient(cfg.API.BaseURL, cfg.API.Key, cfg.API.PingKey, cfg.API.Timeout)
		}
	}
	return cfg, nil
}

// service assembles the bulk service for one run.
func (a *App) service(cfg *config.Config) *services.BulkService {
	exec := executor.New(a.Logger, cfg.Retry.InitialDelay, cfg.Retry.MaxDelay)
	return services.NewBulkService(a.Logger, a.NewClient(cfg), exec)
}
