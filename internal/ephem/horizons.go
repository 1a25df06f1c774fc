package ephem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/logging"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// PathCacheTTL is how long a fetched path is reused.
	PathCacheTTL = 5 * time.Minute

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 30 * time.Second
)

// HorizonsClient queries JPL Horizons for apparent RA/Dec paths.
type HorizonsClient struct {
	client  *http.Client
	baseURL string
	ttl     time.Duration
	log     *logging.Logger

	mu        sync.RWMutex
	pathCache map[string]*cachedPath
}

type cachedPath struct {
	path      Path
	observer  *astro.Observer
	step      time.Duration
	fetchedAt time.Time
}

// HorizonsOption configures a HorizonsClient.
type HorizonsOption func(*HorizonsClient)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) HorizonsOption {
	return func(c *HorizonsClient) { c.baseURL = u }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) HorizonsOption {
	return func(c *HorizonsClient) { c.client = hc }
}

// WithCacheTTL sets how long fetched paths are reused.
func WithCacheTTL(d time.Duration) HorizonsOption {
	return func(c *HorizonsClient) { c.ttl = d }
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) HorizonsOption {
	return func(c *HorizonsClient) { c.log = log }
}

// NewHorizonsClient creates a new Horizons API client.
func NewHorizonsClient(opts ...HorizonsOption) *HorizonsClient {
	c := &HorizonsClient{
		client:    &http.Client{Timeout: RequestTimeout},
		baseURL:   HorizonsAPIURL,
		ttl:       PathCacheTTL,
		pathCache: make(map[string]*cachedPath),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Source.
func (c *HorizonsClient) Name() string {
	return "Horizons"
}

// Path implements Source. A cached path is returned while it is fresh, was
// fetched for the same observer and step, and covers the window.
func (c *HorizonsClient) Path(ctx context.Context, target Target, start, end time.Time, step time.Duration, obs *astro.Observer) (Path, error) {
	c.mu.RLock()
	cached, ok := c.pathCache[target.Command]
	c.mu.RUnlock()

	if ok && time.Since(cached.fetchedAt) < c.ttl && cached.step == step &&
		observerMatch(cached.observer, obs) &&
		!cached.path.Start.After(start.Add(step)) && !cached.path.End.Before(end.Add(-step)) {
		return cached.path, nil
	}

	path, err := c.query(ctx, target, start, end, step, obs)
	if err != nil {
		return Path{}, err
	}
	if len(path.Points) == 0 {
		return Path{}, fmt.Errorf("%s: %w", target.Name, ErrNoData)
	}

	c.mu.Lock()
	c.pathCache[target.Command] = &cachedPath{path: path, observer: obs, step: step, fetchedAt: time.Now()}
	c.mu.Unlock()

	return path, nil
}

// InvalidateCache drops the cached path for a target.
func (c *HorizonsClient) InvalidateCache(target Target) {
	c.mu.Lock()
	delete(c.pathCache, target.Command)
	c.mu.Unlock()
}

func (c *HorizonsClient) query(ctx context.Context, target Target, start, end time.Time, step time.Duration, obs *astro.Observer) (Path, error) {
	// Values must be quoted with single quotes.
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%s'", target.Command))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "OBSERVER")
	if obs != nil {
		params.Set("CENTER", "'coord@399'")
		params.Set("COORD_TYPE", "GEODETIC")
		params.Set("SITE_COORD", fmt.Sprintf("'%.4f,%.4f,0.1'", obs.LonDeg, obs.LatDeg))
	} else {
		params.Set("CENTER", "'500@399'")
	}
	params.Set("START_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(start)))
	params.Set("STOP_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(end)))
	params.Set("STEP_SIZE", fmt.Sprintf("'%s'", formatStepSize(step)))
	params.Set("QUANTITIES", "'2'") // apparent RA/Dec
	params.Set("ANG_FORMAT", "DEG")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Path{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ls-skychart/1.0 (sky chart viewer)")

	c.log.Debug("horizons query %s %s..%s step %s", target.Key, formatHorizonsTime(start), formatHorizonsTime(end), formatStepSize(step))
	resp, err := c.client.Do(req)
	if err != nil {
		return Path{}, fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Path{}, fmt.Errorf("horizons returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Path{}, fmt.Errorf("failed to read response: %w", err)
	}

	return parseHorizonsResponse(target, body)
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

func parseHorizonsResponse(target Target, body []byte) (Path, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Path{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return Path{}, fmt.Errorf("horizons: %s", strings.TrimSpace(resp.Error))
	}

	// The ephemeris itself is a text blob inside result.
	points, err := parseEphemerisTable(resp.Result)
	if err != nil {
		return Path{}, fmt.Errorf("%s: %w", target.Name, err)
	}

	path := Path{Target: target, Points: points}
	if len(points) > 0 {
		path.Start = points[0].Time
		path.End = points[len(points)-1].Time
	}
	return path, nil
}

// parseEphemerisTable extracts points between the $$SOE and $$EOE markers.
func parseEphemerisTable(result string) ([]Point, error) {
	soeIdx := strings.Index(result, "$$SOE")
	eoeIdx := strings.Index(result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return nil, fmt.Errorf("could not find ephemeris data markers: %w", ErrNoData)
	}

	var points []Point
	for _, line := range strings.Split(result[soeIdx+5:eoeIdx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		point, err := parseEphemerisLine(line)
		if err != nil {
			continue
		}
		points = append(points, point)
	}
	return points, nil
}

// parseEphemerisLine parses one line of a QUANTITIES='2', ANG_FORMAT=DEG
// table:
//
//	2025-Dec-05 00:00 *m  245.123456 -20.654321
//
// Fields: date, time, optional solar/lunar presence flags, RA, Dec.
func parseEphemerisLine(line string) (Point, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Point{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	t, err := parseHorizonsDateTime(fields[0] + " " + fields[1])
	if err != nil {
		return Point{}, err
	}

	var vals []float64
	for _, f := range fields[2:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue // flag column
		}
		vals = append(vals, v)
		if len(vals) == 2 {
			break
		}
	}
	if len(vals) < 2 {
		return Point{}, fmt.Errorf("could not find RA/Dec values")
	}
	if vals[1] < -90 || vals[1] > 90 {
		return Point{}, fmt.Errorf("declination out of range: %v", vals[1])
	}

	ra := math.Mod(vals[0], 360)
	if ra < 0 {
		ra += 360
	}
	return Point{Time: t, RA: ra, Dec: vals[1], Valid: true}, nil
}

// parseHorizonsDateTime parses Horizons dates like "2025-Dec-05 00:00".
func parseHorizonsDateTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-Jan-02 15:04", "2006-Jan-02 15:04:05", "2006-Jan-02 15:04:05.000"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

func formatHorizonsTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

// formatStepSize formats a duration as a Horizons step size.
func formatStepSize(d time.Duration) string {
	minutes := int(d.Minutes())
	switch {
	case minutes >= 24*60 && minutes%(24*60) == 0:
		return fmt.Sprintf("%d d", minutes/(24*60))
	case minutes >= 60 && minutes%60 == 0:
		return fmt.Sprintf("%d h", minutes/60)
	case minutes < 1:
		return "1 m"
	}
	return fmt.Sprintf("%d m", minutes)
}

// observerMatch checks if two observers are close enough to share cache.
func observerMatch(a, b *astro.Observer) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	const tolerance = 0.1 // degrees
	return math.Abs(a.LatDeg-b.LatDeg) <= tolerance && math.Abs(a.LonDeg-b.LonDeg) <= tolerance
}
