package deployment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/xerrors"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
	"github.com/preston-bernstein/replicawatch/internal/providers"
)

// Config controls how the client reaches the deployment API.
type Config struct {
	BaseURL      string
	SessionToken string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Client lists the replicas of a deployment.
type Client struct {
	baseURL      string
	sessionToken string
	httpClient   httpDoer
	now          func() time.Time
}

// NewClient constructs a deployment client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:      normalizeBaseURL(cfg.BaseURL),
		sessionToken: cfg.SessionToken,
		httpClient:   resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		now:          time.Now,
	}
}

// BaseURL returns the normalized API base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchReplicas performs a single GET of the replica list.
func (c *Client) FetchReplicas(ctx context.Context) ([]domainreplicas.Replica, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+replicasPath, nil)
	if err != nil {
		return nil, xerrors.Errorf("build replicas request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.sessionToken != "" {
		req.Header.Set(sessionTokenHeader, c.sessionToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("get replicas: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.readBodyAsError(resp)
	}

	var payload []replicaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, xerrors.Errorf("decode replicas: %w", err)
	}
	return mapReplicas(payload), nil
}

func (c *Client) readBodyAsError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	if resp.StatusCode == http.StatusTooManyRequests {
		return &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
			Message:    strings.TrimSpace(string(body)),
		}
	}

	upstream := &providers.UpstreamError{
		Provider:   providerName,
		StatusCode: resp.StatusCode,
	}
	var apiErr errorResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		upstream.Message = apiErr.Message
		upstream.Detail = apiErr.Detail
		return upstream
	}
	upstream.Message = strings.TrimSpace(string(body))
	if upstream.Message == "" {
		upstream.Message = http.StatusText(resp.StatusCode)
	}
	return upstream
}
