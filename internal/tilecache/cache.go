// Package tilecache caches zone tiles of the star catalog. Missing tiles are
// coalesced through an in-flight set, fetched in batches on background
// goroutines and stored in insertion order. Results issued under an older
// epoch are dropped on arrival; a key requested again under a newer epoch
// while its old fetch is pending gets a fresh fetch.
package tilecache

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/logging"
)

// Fetcher loads tiles. catalog.Provider satisfies it.
type Fetcher interface {
	Tiles(ctx context.Context, catalogID string, mag float64, refs []catalog.ZoneRef) ([]catalog.Tile, error)
}

// Config holds the cache tunables.
type Config struct {
	BatchSize   int `yaml:"batch_size" env:"BATCH_SIZE"`
	MaxEntries  int `yaml:"max_entries" env:"MAX_ENTRIES"`
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`
}

// DefaultConfig returns the default cache settings.
func DefaultConfig() Config {
	return Config{BatchSize: 32, MaxEntries: 240, Concurrency: 4}
}

// Key identifies a cached tile.
type Key struct {
	CatalogID string
	MagBucket float64
	Level     int
	Zone      int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%.1f/%d:%d", k.CatalogID, k.MagBucket, k.Level, k.Zone)
}

// LoadResult is what Load can serve right now.
type LoadResult struct {
	Stars   []catalog.Star
	Hits    int
	Pending int
}

// MagBucket rounds a limiting magnitude to the nearest 0.5 so nearby limits
// share tiles.
func MagBucket(mag float64) float64 {
	return math.Round(mag*2) / 2
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithOnUpdate registers a callback invoked after fetched tiles are stored.
// It runs on the fetch goroutine without the cache lock held.
func WithOnUpdate(fn func()) Option {
	return func(c *Cache) { c.onUpdate = fn }
}

// Cache is safe for concurrent use.
type Cache struct {
	cfg      Config
	fetch    Fetcher
	log      *logging.Logger
	metrics  *Metrics
	onUpdate func()

	mu       sync.Mutex
	entries  map[Key][]catalog.Star
	order    []Key
	inflight map[Key]uint64 // epoch of the fetch that owns the key
	epoch    uint64

	wg sync.WaitGroup
}

// New creates a cache backed by fetch.
func New(fetch Fetcher, cfg Config, opts ...Option) *Cache {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	c := &Cache{
		cfg:      cfg,
		fetch:    fetch,
		entries:  make(map[Key][]catalog.Star),
		inflight: make(map[Key]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	return c
}

// Load returns the cached stars for refs and starts fetching the tiles that
// are neither cached nor in flight under the current epoch. It never blocks
// on the network.
func (c *Cache) Load(ctx context.Context, catalogID string, mag float64, refs []catalog.ZoneRef) LoadResult {
	bucket := MagBucket(mag)

	var res LoadResult
	var missing []catalog.ZoneRef

	c.mu.Lock()
	epoch := c.epoch
	for _, ref := range refs {
		key := Key{CatalogID: catalogID, MagBucket: bucket, Level: ref.Level, Zone: ref.Zone}
		if stars, ok := c.entries[key]; ok {
			res.Stars = append(res.Stars, stars...)
			res.Hits++
			continue
		}
		res.Pending++
		if owner, ok := c.inflight[key]; ok && owner == epoch {
			continue
		}
		// A fetch owned by an older epoch will be dropped, so fetch again.
		c.inflight[key] = epoch
		missing = append(missing, ref)
	}
	c.mu.Unlock()

	c.metrics.Hits.Add(float64(res.Hits))
	c.metrics.Misses.Add(float64(res.Pending))

	if len(missing) > 0 {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := c.fetchAll(ctx, epoch, catalogID, bucket, missing); err != nil {
				c.log.Warn("tile load for %s incomplete: %v", catalogID, err)
			}
		}()
	}
	return res
}

// fetchAll splits refs into batches and fetches them with bounded
// concurrency. Batch failures are independent of each other.
func (c *Cache) fetchAll(ctx context.Context, epoch uint64, catalogID string, bucket float64, refs []catalog.ZoneRef) error {
	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)

	for start := 0; start < len(refs); start += c.cfg.BatchSize {
		batch := refs[start:min(start+c.cfg.BatchSize, len(refs))]
		g.Go(func() error {
			c.metrics.Fetches.Inc()
			tiles, err := c.fetch.Tiles(ctx, catalogID, bucket, batch)
			return c.complete(epoch, catalogID, bucket, batch, tiles, err)
		})
	}
	return g.Wait()
}

// complete applies one batch result: the batch releases the in-flight
// markers it still owns, and data is stored only when the epoch still
// matches.
func (c *Cache) complete(epoch uint64, catalogID string, bucket float64, batch []catalog.ZoneRef, tiles []catalog.Tile, err error) error {
	keyOf := func(level, zone int) Key {
		return Key{CatalogID: catalogID, MagBucket: bucket, Level: level, Zone: zone}
	}

	c.mu.Lock()
	for _, ref := range batch {
		key := keyOf(ref.Level, ref.Zone)
		if owner, ok := c.inflight[key]; ok && owner == epoch {
			delete(c.inflight, key)
		}
	}

	if err != nil {
		c.mu.Unlock()
		c.metrics.FetchErrors.Inc()
		return fmt.Errorf("fetch %d tiles: %w", len(batch), err)
	}
	if epoch != c.epoch {
		current := c.epoch
		c.mu.Unlock()
		c.metrics.StaleDrops.Inc()
		c.log.Debug("dropping %d tiles from epoch %d (now %d)", len(batch), epoch, current)
		return nil
	}

	got := make(map[Key][]catalog.Star, len(tiles))
	for _, t := range tiles {
		got[keyOf(t.Level, t.Zone)] = t.Stars
	}
	// Requested zones the backend left out are empty, not missing.
	for _, ref := range batch {
		key := keyOf(ref.Level, ref.Zone)
		c.store(key, got[key])
	}
	evicted := c.evict()
	size := len(c.entries)
	c.mu.Unlock()

	c.metrics.Evictions.Add(float64(evicted))
	c.metrics.Entries.Set(float64(size))
	if c.onUpdate != nil {
		c.onUpdate()
	}
	return nil
}

// store must be called with mu held.
func (c *Cache) store(key Key, stars []catalog.Star) {
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	if stars == nil {
		stars = []catalog.Star{}
	}
	c.entries[key] = stars
}

// evict drops the oldest entries past MaxEntries. Must be called with mu held.
func (c *Cache) evict() int {
	n := len(c.order) - c.cfg.MaxEntries
	if n <= 0 {
		return 0
	}
	for _, key := range c.order[:n] {
		delete(c.entries, key)
	}
	c.order = append(c.order[:0:0], c.order[n:]...)
	return n
}

// BumpEpoch invalidates every fetch issued so far and returns the new epoch.
// The session calls it on each full scene reload.
func (c *Cache) BumpEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	return c.epoch
}

// Epoch returns the current epoch.
func (c *Cache) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Get returns a cached tile.
func (c *Cache) Get(key Key) ([]catalog.Star, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stars, ok := c.entries[key]
	return stars, ok
}

// Len returns the number of cached tiles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// InFlight returns the number of tiles currently being fetched.
func (c *Cache) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

// Clear drops every cached tile. In-flight fetches still complete.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key][]catalog.Star)
	c.order = nil
	c.mu.Unlock()
	c.metrics.Entries.Set(0)
}

// Wait blocks until every fetch started so far has completed.
func (c *Cache) Wait() {
	c.wg.Wait()
}
