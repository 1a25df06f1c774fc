package catalog

import (
	"context"
	"time"
)

// SceneRequest describes the view a scene is requested for.
type SceneRequest struct {
	RequestID uint64
	Center    Coord
	FovDeg    float64
	MagLimit  float64
	Width     int
	Height    int
	Time      time.Time
	// Optimized asks for a cheap selection while an animation is running.
	Optimized bool
}

// Provider supplies chart data. Implementations must be safe for concurrent
// use; the session calls them from fetch goroutines.
type Provider interface {
	Scene(ctx context.Context, req SceneRequest) (*Scene, error)
	Tiles(ctx context.Context, catalogID string, mag float64, refs []ZoneRef) ([]Tile, error)
	MilkyWay(ctx context.Context, datasetID string) (*MilkyWay, error)
	Constellations(ctx context.Context, datasetID string) (*Constellations, error)
}

// MagLimitForFov returns the default limiting magnitude for a field of view:
// fainter stars as the view narrows.
func MagLimitForFov(fovDeg float64) float64 {
	switch {
	case fovDeg >= 120:
		return 4.5
	case fovDeg >= 60:
		return 5.5
	case fovDeg >= 20:
		return 7
	case fovDeg >= 5:
		return 9
	default:
		return 11
	}
}
