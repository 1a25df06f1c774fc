package ephem

import (
	"context"
	"fmt"
	"time"

	"github.com/litescript/ls-skychart/internal/astro"
)

// Solar computes the Sun's path offline from the Meeus solar theory. It has
// nothing for other targets. Geocentric only; parallax is below the
// chart's resolution.
type Solar struct{}

// Name implements Source.
func (Solar) Name() string { return "Solar" }

// Path implements Source.
func (Solar) Path(ctx context.Context, target Target, start, end time.Time, step time.Duration, _ *astro.Observer) (Path, error) {
	if target.Key != "sun" {
		return Path{}, fmt.Errorf("%s: %w", target.Name, ErrNoData)
	}
	if step <= 0 || end.Before(start) {
		return Path{}, fmt.Errorf("invalid window %s..%s step %s: %w", start, end, step, ErrNoData)
	}
	path := Path{Target: target, Start: start, End: end}
	for t := start; !t.After(end); t = t.Add(step) {
		if err := ctx.Err(); err != nil {
			return Path{}, err
		}
		ra, dec := astro.SunPosition(t)
		path.Points = append(path.Points, Point{Time: t, RA: ra, Dec: dec, Valid: true})
	}
	return path, nil
}
