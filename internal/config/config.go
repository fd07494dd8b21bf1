package config

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	apperrors "github.com/safeguardian/autopilot/pkg/app/errors"
)

// Defaults for the hosted Base44 application.
const (
	DefaultServerURL  = "https://app.base44.com"
	DefaultAppID      = "690e7bf293df47111a4c12be"
	DefaultAgentSlug  = "support"
	DefaultListenAddr = ":8080"
)

// Config holds everything the engine needs to run.
type Config struct {
	// ServerURL is the remote API host; AppID selects the application under
	// it. Together they form the per-app API root.
	ServerURL string
	AppID     string

	// DefaultAgent is used when a trigger omits the agent id.
	DefaultAgent string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	ListenAddr string

	// KnowledgePath points at a playbook YAML file; empty means the embedded
	// default playbook.
	KnowledgePath string

	LogLevel string
}

// Load reads configuration from an optional YAML file and AUTOPILOT_*
// environment variables, then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("server_url", DefaultServerURL)
	v.SetDefault("app_id", DefaultAppID)
	v.SetDefault("default_agent", DefaultAgentSlug)
	v.SetDefault("access_ttl", time.Hour)
	v.SetDefault("refresh_ttl", 14*24*time.Hour)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("knowledge_path", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("AUTOPILOT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.New(apperrors.ErrCodeConfigInvalid, http.StatusInternalServerError,
				fmt.Sprintf("failed to read config file %s", path), err)
		}
	}

	cfg := &Config{
		ServerURL:     v.GetString("server_url"),
		AppID:         v.GetString("app_id"),
		DefaultAgent:  v.GetString("default_agent"),
		AccessTTL:     v.GetDuration("access_ttl"),
		RefreshTTL:    v.GetDuration("refresh_ttl"),
		ListenAddr:    v.GetString("listen_addr"),
		KnowledgePath: v.GetString("knowledge_path"),
		LogLevel:      v.GetString("log_level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.ServerURL == "" {
		result = multierror.Append(result, fmt.Errorf("server_url is required"))
	} else if _, err := url.ParseRequestURI(c.ServerURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("server_url is not a valid URL: %w", err))
	}
	if c.AppID == "" {
		result = multierror.Append(result, fmt.Errorf("app_id is required"))
	}
	if c.DefaultAgent == "" {
		result = multierror.Append(result, fmt.Errorf("default_agent is required"))
	}
	if c.AccessTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("access_ttl must be positive"))
	}
	if c.RefreshTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("refresh_ttl must be positive"))
	}
	if c.ListenAddr == "" {
		result = multierror.Append(result, fmt.Errorf("listen_addr is required"))
	}

	if err := result.ErrorOrNil(); err != nil {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, http.StatusInternalServerError,
			"invalid configuration", err)
	}
	return nil
}
