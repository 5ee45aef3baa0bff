package config

import (
	"os"
	"time"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML files. Unset keys keep the base value.
type fileConfig struct {
	Port         string `yaml:"port"`
	PollInterval string `yaml:"poll_interval"`
	Provider     string `yaml:"provider"`
	AdminToken   string `yaml:"admin_token"`
	Deployment   struct {
		URL          string `yaml:"url"`
		SessionToken string `yaml:"session_token"`
		Timeout      string `yaml:"timeout"`
	} `yaml:"deployment"`
	Metrics struct {
		Enabled      *bool  `yaml:"enabled"`
		Port         string `yaml:"port"`
		OtlpEndpoint string `yaml:"otlp_endpoint"`
		ServiceName  string `yaml:"service_name"`
		OtlpInsecure *bool  `yaml:"otlp_insecure"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// LoadFile overlays the YAML file at path onto base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, xerrors.Errorf("read config file %q: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, xerrors.Errorf("parse config file %q: %w", path, err)
	}

	cfg := base
	cfg.Port = stringOr(fc.Port, cfg.Port)
	cfg.Provider = stringOr(fc.Provider, cfg.Provider)
	cfg.AdminToken = stringOr(fc.AdminToken, cfg.AdminToken)
	if cfg.PollInterval, err = durationOr(fc.PollInterval, cfg.PollInterval); err != nil {
		return Config{}, xerrors.Errorf("poll_interval: %w", err)
	}

	cfg.Deployment.URL = stringOr(fc.Deployment.URL, cfg.Deployment.URL)
	cfg.Deployment.SessionToken = stringOr(fc.Deployment.SessionToken, cfg.Deployment.SessionToken)
	if cfg.Deployment.Timeout, err = durationOr(fc.Deployment.Timeout, cfg.Deployment.Timeout); err != nil {
		return Config{}, xerrors.Errorf("deployment.timeout: %w", err)
	}

	if fc.Metrics.Enabled != nil {
		cfg.Metrics.Enabled = *fc.Metrics.Enabled
	}
	if fc.Metrics.OtlpInsecure != nil {
		cfg.Metrics.OtlpInsecure = *fc.Metrics.OtlpInsecure
	}
	cfg.Metrics.Port = stringOr(fc.Metrics.Port, cfg.Metrics.Port)
	cfg.Metrics.OtlpEndpoint = stringOr(fc.Metrics.OtlpEndpoint, cfg.Metrics.OtlpEndpoint)
	cfg.Metrics.ServiceName = stringOr(fc.Metrics.ServiceName, cfg.Metrics.ServiceName)

	cfg.Log.Level = stringOr(fc.Log.Level, cfg.Log.Level)
	cfg.Log.Format = stringOr(fc.Log.Format, cfg.Log.Format)
	return cfg, nil
}

func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func durationOr(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, xerrors.Errorf("must be positive, got %s", raw)
	}
	return d, nil
}
