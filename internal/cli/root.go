package cli

import (
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/safeguardian/autopilot/internal/automation"
	"github.com/safeguardian/autopilot/internal/config"
	"github.com/safeguardian/autopilot/internal/knowledge"
	"github.com/safeguardian/autopilot/internal/metrics"
	"github.com/safeguardian/autopilot/internal/observability"
	"github.com/safeguardian/autopilot/pkg/base44"
	"github.com/safeguardian/autopilot/pkg/session"
)

// NewRootCmd creates the root autopilot command.
func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "autopilot",
		Short: "SafeGuardian support-reply automation engine",
		Long: `Autopilot automates first-line customer-support replies on top of the
Base44 conversation-management API.

Available subcommands:
  serve       Run the HTTP trigger surface
  sweep       Run one automation sweep and print the results
  login       Verify credentials against the remote API

Examples:
  autopilot serve
  autopilot sweep --agent support --email ops@example.com
  autopilot login --email ops@example.com`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file (default: environment only)")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newSweepCmd(&configPath))
	cmd.AddCommand(newLoginCmd(&configPath))

	return cmd
}

// app bundles the wired engine for one command invocation.
type app struct {
	cfg    *config.Config
	log    logr.Logger
	client *base44.SessionClient
	runner *automation.Runner
}

func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := observability.NewLogger(cfg.LogLevel)

	base, err := loadKnowledge(cfg)
	if err != nil {
		return nil, err
	}

	store := session.NewMemoryStore()
	client := base44.NewSessionClient(base44.NewClient(cfg.ServerURL, cfg.AppID), store, cfg.AccessTTL, cfg.RefreshTTL)
	client.OnRefresh(metrics.TokenRefreshes.Inc)

	return &app{
		cfg:    cfg,
		log:    log,
		client: client,
		runner: automation.NewRunner(client, automation.NewGenerator(base), log),
	}, nil
}

func loadKnowledge(cfg *config.Config) (*knowledge.Base, error) {
	if cfg.KnowledgePath != "" {
		return knowledge.Load(cfg.KnowledgePath)
	}
	return knowledge.Default()
}
