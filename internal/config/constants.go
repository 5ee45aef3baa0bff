package config

import "time"

const (
	envConfigFile        = "REPLICAWATCH_CONFIG"
	envPort              = "PORT"
	envPollInterval      = "POLL_INTERVAL"
	envProvider          = "PROVIDER"
	envDeploymentURL     = "DEPLOYMENT_URL"
	envDeploymentToken   = "DEPLOYMENT_SESSION_TOKEN"
	envDeploymentTimeout = "DEPLOYMENT_TIMEOUT"
	envAdminToken        = "ADMIN_TOKEN"
	envMetricsPort       = "METRICS_PORT"
	envMetricsOn         = "METRICS_ENABLED"
	envOtelEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService       = "OTEL_SERVICE_NAME"
	envOtelInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"
	envLogLevel          = "LOG_LEVEL"
	envLogFormat         = "LOG_FORMAT"

	defaultPort = "4000"
	// Matches the dashboard's replica refresh cadence.
	defaultPollInterval      = 5 * Duration(time.Second)
	defaultProvider          = "fixture"
	defaultDeploymentURL     = "http://localhost:3000"
	defaultDeploymentTimeout = 10 * Duration(time.Second)
	defaultMetricsPort       = "9090"
	defaultServiceName       = "replicawatch"
	defaultLogLevel          = "info"
	defaultLogFormat         = "text"
)
