package config

// Config holds runtime configuration for the server.
type Config struct {
	Port         string
	PollInterval Duration
	Provider     string
	AdminToken   string
	Deployment   DeploymentConfig
	Metrics      MetricsConfig
	Log          LogConfig
}

// DeploymentConfig controls how we talk to the deployment management API.
type DeploymentConfig struct {
	URL          string
	SessionToken string
	Timeout      Duration
}

// LogConfig selects logger level and format.
type LogConfig struct {
	Level  string
	Format string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:         defaultPort,
		PollInterval: defaultPollInterval,
		Provider:     defaultProvider,
		Deployment: DeploymentConfig{
			URL:     defaultDeploymentURL,
			Timeout: defaultDeploymentTimeout,
		},
		Metrics: MetricsConfig{
			Enabled:      true,
			Port:         defaultMetricsPort,
			ServiceName:  defaultServiceName,
			OtlpInsecure: true,
		},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// Load reads configuration from an optional YAML file (REPLICAWATCH_CONFIG)
// and then environment variables, which take precedence.
func Load() (Config, error) {
	base := Defaults()
	if path := envOrDefault(envConfigFile, ""); path != "" {
		fromFile, err := LoadFile(path, base)
		if err != nil {
			return Config{}, err
		}
		base = fromFile
	}
	return applyEnv(base), nil
}

func applyEnv(base Config) Config {
	return Config{
		Port:         envOrDefault(envPort, base.Port),
		PollInterval: durationEnvOrDefault(envPollInterval, base.PollInterval),
		Provider:     envOrDefault(envProvider, base.Provider),
		AdminToken:   envOrDefault(envAdminToken, base.AdminToken),
		Deployment:   loadDeployment(base.Deployment),
		Metrics:      loadMetrics(base.Metrics),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, base.Log.Level),
			Format: envOrDefault(envLogFormat, base.Log.Format),
		},
	}
}

func loadDeployment(base DeploymentConfig) DeploymentConfig {
	return DeploymentConfig{
		URL:          envOrDefault(envDeploymentURL, base.URL),
		SessionToken: envOrDefault(envDeploymentToken, base.SessionToken),
		Timeout:      durationEnvOrDefault(envDeploymentTimeout, base.Timeout),
	}
}
