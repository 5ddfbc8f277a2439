// Package recsapi is the dashboard's client for the scoring API.
package recsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sodam/backend/internal/domain"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Endpoint paths on the scoring API
const (
	ScorePath  = "/api/recs/score"
	SamplePath = "/api/recs/sample"
)

const defaultRatePerSecond = 5.0

var log = logrus.WithField("prefix", "recsapi")

// Client sends JSON requests to the scoring API. Responses are returned
// whatever their status code; only transport failures and bodies that are
// not JSON are errors. There is no retry.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient:  &http.Client{},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(defaultRatePerSecond), int(defaultRatePerSecond)),
	}
}

// SetRateLimit paces outgoing requests; zero or less removes the limit
func (c *Client) SetRateLimit(perSecond float64) {
	if perSecond <= 0 {
		c.rateLimiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// SetTimeout bounds each request; zero means no timeout
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// SetDebug enables logging of request and response bodies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON sends payload as a JSON POST and returns the parsed response body
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body)
}

// GetJSON sends a GET and returns the parsed response body
func (c *Client) GetJSON(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (json.RawMessage, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sodam-dashboard/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.debug {
		log.Debugf("%s %s %s", method, req.URL, payload)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRecsAPIFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrRecsAPIFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(logrus.Fields{"method": method, "path": path, "status": resp.StatusCode}).
			Warn("scoring API answered with a non-success status")
	}
	if c.debug {
		log.Debugf("%s %s -> %d %s", method, req.URL, resp.StatusCode, data)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s %s returned status %d with a non-JSON body", domain.ErrMalformedResponse, method, path, resp.StatusCode)
	}
	return json.RawMessage(data), nil
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

type scorePayload struct {
	Features domain.FeatureRecord `json:"features"`
}

// Score submits a feature record and decodes the score breakdown
func (c *Client) Score(ctx context.Context, features domain.FeatureRecord) (*domain.ScoreResponse, error) {
	raw, err := c.PostJSON(ctx, ScorePath, scorePayload{Features: features})
	if err != nil {
		return nil, err
	}

	if err := requireKeys(raw, "score", "breakdown"); err != nil {
		return nil, err
	}

	var resp domain.ScoreResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return &resp, nil
}

// Sample fetches the sample list of scored areas
func (c *Client) Sample(ctx context.Context) (*domain.SampleResponse, error) {
	raw, err := c.GetJSON(ctx, SamplePath)
	if err != nil {
		return nil, err
	}

	if err := requireKeys(raw, "items"); err != nil {
		return nil, err
	}
	if !gjson.GetBytes(raw, "items").IsArray() {
		return nil, fmt.Errorf("%w: items is not an array", domain.ErrMalformedResponse)
	}

	var resp domain.SampleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return &resp, nil
}

// requireKeys checks that raw is an object carrying every key
func requireKeys(raw json.RawMessage, keys ...string) error {
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return fmt.Errorf("%w: expected a JSON object", domain.ErrMalformedResponse)
	}
	for _, key := range keys {
		if !root.Get(key).Exists() {
			return fmt.Errorf("%w: missing %q", domain.ErrMalformedResponse, key)
		}
	}
	return nil
}
