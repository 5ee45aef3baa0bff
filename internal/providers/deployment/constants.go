package deployment

import "time"

const (
	providerName       = "deployment"
	replicasPath       = "/api/v2/replicas"
	sessionTokenHeader = "Coder-Session-Token"
	defaultBaseURL     = "http://localhost:3000"
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBodyBytes  = 4096
)
