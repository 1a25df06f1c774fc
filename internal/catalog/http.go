package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-skychart/internal/logging"
)

const (
	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 20 * time.Second

	userAgent = "ls-skychart/1.0 (sky chart viewer)"
)

// HTTPClient talks to a catalog backend over JSON and GeoJSON.
//
//	GET {base}/scene?ra=&dec=&fov=&mag=&w=&h=&t=&opt=&req=
//	GET {base}/tiles?catalog=&mag=&zones=L:Z,L:Z
//	GET {base}/datasets/milkyway/{id}
//	GET {base}/datasets/constellations/{id}
type HTTPClient struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	log     *logging.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *logging.Logger) HTTPOption {
	return func(c *HTTPClient) {
		c.log = log
	}
}

// NewHTTPClient creates a client for the backend at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the configured backend URL.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Scene implements Provider.
func (c *HTTPClient) Scene(ctx context.Context, req SceneRequest) (*Scene, error) {
	q := url.Values{}
	q.Set("ra", ftoa(req.Center.RA))
	q.Set("dec", ftoa(req.Center.Dec))
	q.Set("fov", ftoa(req.FovDeg))
	if req.MagLimit != 0 {
		q.Set("mag", ftoa(req.MagLimit))
	}
	q.Set("w", strconv.Itoa(req.Width))
	q.Set("h", strconv.Itoa(req.Height))
	if !req.Time.IsZero() {
		q.Set("t", req.Time.UTC().Format(time.RFC3339))
	}
	if req.Optimized {
		q.Set("opt", "1")
	}
	q.Set("req", strconv.FormatUint(req.RequestID, 10))

	body, err := c.get(ctx, "/scene", q)
	if err != nil {
		return nil, fmt.Errorf("fetch scene: %w", err)
	}

	var scene Scene
	if err := json.Unmarshal(body, &scene); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	scene.RequestID = req.RequestID
	return &scene, nil
}

// Tiles implements Provider.
func (c *HTTPClient) Tiles(ctx context.Context, catalogID string, mag float64, refs []ZoneRef) ([]Tile, error) {
	zones := make([]string, len(refs))
	for i, r := range refs {
		zones[i] = fmt.Sprintf("%d:%d", r.Level, r.Zone)
	}
	q := url.Values{}
	q.Set("catalog", catalogID)
	q.Set("mag", ftoa(mag))
	q.Set("zones", strings.Join(zones, ","))

	body, err := c.get(ctx, "/tiles", q)
	if err != nil {
		return nil, fmt.Errorf("fetch tiles: %w", err)
	}

	var resp struct {
		Zones []Tile `json:"zones"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse tiles: %w", err)
	}
	return resp.Zones, nil
}

// MilkyWay implements Provider.
func (c *HTTPClient) MilkyWay(ctx context.Context, datasetID string) (*MilkyWay, error) {
	body, err := c.get(ctx, "/datasets/milkyway/"+url.PathEscape(datasetID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch milky way %s: %w", datasetID, err)
	}
	return DecodeMilkyWay(datasetID, body)
}

// Constellations implements Provider.
func (c *HTTPClient) Constellations(ctx context.Context, datasetID string) (*Constellations, error) {
	body, err := c.get(ctx, "/datasets/constellations/"+url.PathEscape(datasetID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch constellations %s: %w", datasetID, err)
	}
	return DecodeConstellations(datasetID, body)
}

func (c *HTTPClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, application/geo+json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.log.Debug("GET %s -> %d in %v (request %s)", path, resp.StatusCode, time.Since(start), reqID)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
