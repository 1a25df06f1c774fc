package tilecache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/logging"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls [][]catalog.ZoneRef
	gate  chan struct{}
	err   error
}

func (f *fakeFetcher) Tiles(ctx context.Context, catalogID string, mag float64, refs []catalog.ZoneRef) ([]catalog.Tile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]catalog.ZoneRef(nil), refs...))
	gate, err := f.gate, f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	tiles := make([]catalog.Tile, len(refs))
	for i, r := range refs {
		tiles[i] = catalog.Tile{Level: r.Level, Zone: r.Zone, Stars: []catalog.Star{
			{ID: "s", RA: float64(r.Zone), Dec: 0, Mag: mag},
		}}
	}
	return tiles, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func refs(level int, zones ...int) []catalog.ZoneRef {
	out := make([]catalog.ZoneRef, len(zones))
	for i, z := range zones {
		out[i] = catalog.ZoneRef{Level: level, Zone: z}
	}
	return out
}

func TestMagBucket(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{6.0, 6.0},
		{6.2, 6.0},
		{6.3, 6.5},
		{6.75, 7.0},
		{-1.26, -1.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MagBucket(tt.in), "MagBucket(%v)", tt.in)
	}
}

func TestLoadMissThenHit(t *testing.T) {
	f := &fakeFetcher{}
	m := NewMetrics(prometheus.NewRegistry())
	updates := 0
	c := New(f, DefaultConfig(), WithMetrics(m), WithOnUpdate(func() { updates++ }))
	ctx := context.Background()

	res := c.Load(ctx, "bsc", 6.2, refs(1, 10, 11))
	assert.Equal(t, 2, res.Pending)
	assert.Equal(t, 0, res.Hits)
	assert.Empty(t, res.Stars)

	c.Wait()
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 0, c.InFlight())
	assert.Equal(t, 1, updates)

	res = c.Load(ctx, "bsc", 5.9, refs(1, 10, 11))
	assert.Equal(t, 2, res.Hits)
	assert.Equal(t, 0, res.Pending)
	require.Len(t, res.Stars, 2)
	assert.Equal(t, 6.0, res.Stars[0].Mag, "fetch uses the bucketed magnitude")

	stars, ok := c.Get(Key{CatalogID: "bsc", MagBucket: 6, Level: 1, Zone: 11})
	require.True(t, ok)
	assert.Equal(t, 11.0, stars[0].RA)

	assert.Equal(t, 1, f.callCount())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Hits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Entries))
}

func TestDifferentBucketsAreDifferentKeys(t *testing.T) {
	f := &fakeFetcher{}
	c := New(f, DefaultConfig())
	c.Load(context.Background(), "bsc", 6, refs(0, 1))
	c.Wait()
	res := c.Load(context.Background(), "bsc", 8, refs(0, 1))
	assert.Equal(t, 1, res.Pending)
	c.Wait()
	assert.Equal(t, 2, c.Len())
}

func TestConcurrentLoadsCoalesce(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{})}
	c := New(f, DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := c.Load(context.Background(), "bsc", 6, refs(2, 42))
			assert.Equal(t, 1, res.Pending)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.InFlight())
	close(f.gate)
	c.Wait()

	assert.Equal(t, 1, f.callCount())
	assert.Equal(t, 0, c.InFlight())
	assert.Equal(t, 1, c.Len())
}

func TestLoadBatches(t *testing.T) {
	f := &fakeFetcher{}
	c := New(f, Config{BatchSize: 32, MaxEntries: 1000, Concurrency: 2})

	zones := make([]int, 70)
	for i := range zones {
		zones[i] = i
	}
	c.Load(context.Background(), "bsc", 6, refs(3, zones...))
	c.Wait()

	var sizes []int
	for _, call := range f.calls {
		sizes = append(sizes, len(call))
	}
	sort.Ints(sizes)
	assert.Equal(t, []int{6, 32, 32}, sizes)
	assert.Equal(t, 70, c.Len())
}

func TestEvictionByInsertionOrder(t *testing.T) {
	f := &fakeFetcher{}
	m := NewMetrics(nil)
	c := New(f, Config{BatchSize: 32, MaxEntries: 5}, WithMetrics(m))
	ctx := context.Background()

	for z := 0; z < 8; z++ {
		c.Load(ctx, "bsc", 6, refs(1, z))
		c.Wait()
		assert.LessOrEqual(t, c.Len(), 5)
	}

	assert.Equal(t, 5, c.Len())
	for z := 0; z < 3; z++ {
		_, ok := c.Get(Key{CatalogID: "bsc", MagBucket: 6, Level: 1, Zone: z})
		assert.False(t, ok, "zone %d should be evicted", z)
	}
	for z := 3; z < 8; z++ {
		_, ok := c.Get(Key{CatalogID: "bsc", MagBucket: 6, Level: 1, Zone: z})
		assert.True(t, ok, "zone %d should be cached", z)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Evictions))
}

func TestEvictionWithinOneBatch(t *testing.T) {
	c := New(&fakeFetcher{}, Config{BatchSize: 32, MaxEntries: 4})
	c.Load(context.Background(), "bsc", 6, refs(1, 0, 1, 2, 3, 4, 5, 6))
	c.Wait()
	assert.Equal(t, 4, c.Len())
	_, ok := c.Get(Key{CatalogID: "bsc", MagBucket: 6, Level: 1, Zone: 6})
	assert.True(t, ok)
}

func TestStaleResultsDropped(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{})}
	m := NewMetrics(nil)
	c := New(f, DefaultConfig(), WithMetrics(m))
	ctx := context.Background()

	c.Load(ctx, "bsc", 6, refs(1, 7))
	assert.Equal(t, uint64(1), c.BumpEpoch())

	close(f.gate)
	c.Wait()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.InFlight())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleDrops))

	// The next load under the new epoch fetches again and sticks.
	res := c.Load(ctx, "bsc", 6, refs(1, 7))
	assert.Equal(t, 1, res.Pending)
	c.Wait()
	assert.Equal(t, 2, f.callCount())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, uint64(1), c.Epoch())
}

func TestReloadRefetchesKeyInFlightFromOldEpoch(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{})}
	m := NewMetrics(nil)
	updates := 0
	var mu sync.Mutex
	c := New(f, DefaultConfig(), WithMetrics(m), WithOnUpdate(func() {
		mu.Lock()
		updates++
		mu.Unlock()
	}))
	ctx := context.Background()

	c.Load(ctx, "bsc", 6, refs(1, 5))
	c.BumpEpoch()

	res := c.Load(ctx, "bsc", 6, refs(1, 5))
	assert.Equal(t, 1, res.Pending)
	assert.Equal(t, 1, c.InFlight(), "both fetches share one key")

	// A third load under the same epoch coalesces with the second.
	c.Load(ctx, "bsc", 6, refs(1, 5))

	close(f.gate)
	c.Wait()

	_, ok := c.Get(Key{CatalogID: "bsc", MagBucket: 6, Level: 1, Zone: 5})
	assert.True(t, ok, "the zone requested under the new epoch is cached")
	assert.Equal(t, 0, c.InFlight())
	assert.Equal(t, 2, f.callCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleDrops))
	mu.Lock()
	assert.Equal(t, 1, updates)
	mu.Unlock()
}

func TestFetchErrorClearsInFlight(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fakeFetcher{err: errors.New("backend down")}
	m := NewMetrics(nil)
	c := New(f, DefaultConfig(), WithMetrics(m), WithLogger(logging.FromZap(zap.New(core))))

	c.Load(context.Background(), "bsc", 6, refs(1, 1, 2))
	c.Wait()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.InFlight())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors))

	warns := logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet("backend down")
	assert.Equal(t, 1, warns.Len())

	// A retry goes back to the network.
	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
	c.Load(context.Background(), "bsc", 6, refs(1, 1, 2))
	c.Wait()
	assert.Equal(t, 2, c.Len())
}

func TestMissingZonesStoredEmpty(t *testing.T) {
	c := New(fetcherFunc(func(refs []catalog.ZoneRef) []catalog.Tile {
		return []catalog.Tile{{Level: refs[0].Level, Zone: refs[0].Zone}}
	}), DefaultConfig())

	c.Load(context.Background(), "bsc", 6, refs(0, 1, 2))
	c.Wait()

	res := c.Load(context.Background(), "bsc", 6, refs(0, 1, 2))
	assert.Equal(t, 2, res.Hits)
	assert.Empty(t, res.Stars)
}

func TestClear(t *testing.T) {
	c := New(&fakeFetcher{}, DefaultConfig())
	c.Load(context.Background(), "bsc", 6, refs(0, 1))
	c.Wait()
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

type fetcherFunc func(refs []catalog.ZoneRef) []catalog.Tile

func (fn fetcherFunc) Tiles(ctx context.Context, catalogID string, mag float64, refs []catalog.ZoneRef) ([]catalog.Tile, error) {
	return fn(refs), nil
}
