// Package opendota fetches professional player and team data from the OpenDota API.
package opendota

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/okian/proteams/internal/domain/model"
	"github.com/okian/proteams/pkg/logger"
	"github.com/okian/proteams/pkg/metrics"
)

const (
	// DefaultBaseURL is the public OpenDota API root.
	DefaultBaseURL = "https://api.opendota.com/api"

	defaultTimeout  = 20 * time.Second
	maxBodyBytes    = 16 << 20
	maxErrorBodyLen = 240

	endpointProPlayers = "proPlayers"
	endpointTeams      = "teams"
)

// ClientConfig configures a Client. Zero values fall back to defaults.
type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Logger     logger.Logger
	Metrics    *metrics.Manager
}

// Client is a thin OpenDota HTTP client. It does not retry or cache.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     logger.Logger
	metrics    *metrics.Manager
}

// NewClient builds a Client from cfg.
func NewClient(cfg ClientConfig) *Client {
	log := cfg.Logger
	if log == nil {
		log = logger.Named("opendota")
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.Default()
	}

	var httpClient *http.Client
	if cfg.HTTPClient != nil {
		// The caller's client is never modified.
		copied := *cfg.HTTPClient
		httpClient = &copied
	} else {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = cfg.Timeout
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logger:     log,
		metrics:    m,
	}
}

// FetchProPlayers returns every professional player record.
func (c *Client) FetchProPlayers(ctx context.Context) ([]model.PlayerRecord, error) {
	raw, _, err := c.get(ctx, endpointProPlayers, "/proPlayers")
	if err != nil {
		return nil, err
	}

	var records []json.RawMessage
	if err := sonic.Unmarshal(raw, &records); err != nil {
		return nil, crerr.Wrapf(ErrDecode, "proPlayers: %v", err)
	}

	// One undecodable record is a data-quality problem, not a failed fetch.
	players := make([]model.PlayerRecord, 0, len(records))
	for i, rec := range records {
		var p model.PlayerRecord
		if err := sonic.Unmarshal(rec, &p); err != nil {
			c.metrics.RecordDataQualityWarning()
			c.logger.Warn(ctx, "dropping undecodable player record",
				logger.Int("index", i),
				logger.String("record", abbreviateBody(rec)),
				logger.Error(err))
			continue
		}
		players = append(players, p)
	}
	c.logger.Debug(ctx, "fetched pro players",
		logger.Int("count", len(players)),
		logger.Int("dropped", len(records)-len(players)))
	return players, nil
}

// FetchTeam returns metadata for one team. Unknown teams yield ErrTeamNotFound.
func (c *Client) FetchTeam(ctx context.Context, teamID int64) (model.TeamMetadata, error) {
	if teamID <= 0 {
		return model.TeamMetadata{}, crerr.Wrapf(ErrTeamNotFound, "team id %d", teamID)
	}

	raw, status, err := c.get(ctx, endpointTeams, "/teams/"+strconv.FormatInt(teamID, 10))
	if status == http.StatusNotFound {
		return model.TeamMetadata{}, crerr.Wrapf(ErrTeamNotFound, "team %d", teamID)
	}
	if err != nil {
		return model.TeamMetadata{}, err
	}

	if isEmptyPayload(raw) {
		return model.TeamMetadata{}, crerr.Wrapf(ErrTeamNotFound, "team %d: empty payload", teamID)
	}

	var team model.TeamMetadata
	if err := sonic.Unmarshal(raw, &team); err != nil {
		return model.TeamMetadata{}, crerr.Wrapf(ErrDecode, "team %d: %v", teamID, err)
	}
	if team.TeamID == 0 {
		return model.TeamMetadata{}, crerr.Wrapf(ErrTeamNotFound, "team %d: payload has no team_id", teamID)
	}
	if team.TeamID != teamID {
		return model.TeamMetadata{}, crerr.Wrapf(ErrDecode, "team %d: payload is for team %d", teamID, team.TeamID)
	}
	return team, nil
}

// get performs one GET and returns the body of a 2xx response. The HTTP
// status is returned whenever a response arrived.
func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, int, error) {
	fullURL := c.baseURL + path
	if c.apiKey != "" {
		fullURL += "?" + url.Values{"api_key": {c.apiKey}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, crerr.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsedMs := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		c.metrics.RecordAPIRequest(endpoint, 0, elapsedMs)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, crerr.Wrapf(ctxErr, "%s request", endpoint)
		}
		return nil, 0, crerr.Wrapf(ErrRequest, "send request: %s", c.redact(err.Error()))
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.RecordAPIRequest(endpoint, resp.StatusCode, elapsedMs)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, crerr.Wrapf(ErrRequest, "read response body: %v", err)
	}

	c.logger.Debug(ctx, "opendota response",
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Float64("latency_ms", elapsedMs))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, crerr.Wrapf(ErrRequest, "%s status=%d body=%s", path, resp.StatusCode, abbreviateBody(raw))
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) redact(value string) string {
	if c.apiKey == "" {
		return value
	}
	value = strings.ReplaceAll(value, c.apiKey, "REDACTED")
	return strings.ReplaceAll(value, url.QueryEscape(c.apiKey), "REDACTED")
}

func isEmptyPayload(raw []byte) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "{}", "[]":
		return true
	}
	return false
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= maxErrorBodyLen {
		return text
	}
	return text[:maxErrorBodyLen] + "..."
}
