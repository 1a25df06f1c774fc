package ephem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/logging"
)

// TrajectoryConfig selects the followed bodies and the path window.
type TrajectoryConfig struct {
	Targets    []string      `yaml:"targets" env:"TARGETS" envSeparator:","`
	Span       time.Duration `yaml:"span" env:"SPAN"`
	Step       time.Duration `yaml:"step" env:"STEP"`
	LabelEvery int           `yaml:"label_every" env:"LABEL_EVERY"`
	Mode       string        `yaml:"mode" env:"MODE"`
	// Concurrency caps simultaneous source queries.
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`
}

// DefaultTrajectoryConfig follows the Sun over thirty days.
func DefaultTrajectoryConfig() TrajectoryConfig {
	return TrajectoryConfig{
		Targets:     []string{"sun"},
		Span:        30 * 24 * time.Hour,
		Step:        24 * time.Hour,
		LabelEvery:  5,
		Mode:        "auto",
		Concurrency: 3,
	}
}

// Planner turns configured targets into catalog trajectories.
type Planner struct {
	src     Source
	cfg     TrajectoryConfig
	targets []Target
	log     *logging.Logger
}

// NewPlanner resolves the configured target names. Unknown names are
// logged and skipped.
func NewPlanner(src Source, cfg TrajectoryConfig, log *logging.Logger) *Planner {
	p := &Planner{src: src, cfg: cfg, log: log}
	for _, name := range cfg.Targets {
		t, ok := Lookup(name)
		if !ok {
			log.Warn("unknown trajectory target %q", name)
			continue
		}
		p.targets = append(p.targets, t)
	}
	return p
}

// Targets returns the resolved targets.
func (p *Planner) Targets() []Target { return p.targets }

// Trajectories fetches a path per target centered on now. Targets that
// fail are logged and left out; the error is returned only when every
// target failed.
func (p *Planner) Trajectories(ctx context.Context, now time.Time, obs *astro.Observer) ([]catalog.Trajectory, error) {
	if len(p.targets) == 0 {
		return nil, nil
	}
	start := now.Add(-p.cfg.Span / 2).Truncate(time.Minute)
	end := now.Add(p.cfg.Span / 2).Truncate(time.Minute)
	step := p.cfg.Step
	if step <= 0 {
		step = time.Hour
	}

	results := make([]*catalog.Trajectory, len(p.targets))
	errs := make([]error, len(p.targets))

	g, gctx := errgroup.WithContext(ctx)
	if p.cfg.Concurrency > 0 {
		g.SetLimit(p.cfg.Concurrency)
	}
	for i, target := range p.targets {
		i, target := i, target
		g.Go(func() error {
			path, err := p.src.Path(gctx, target, start, end, step, obs)
			if err != nil {
				errs[i] = fmt.Errorf("%s path: %w", target.Key, err)
				return nil
			}
			tr := p.toTrajectory(path)
			results[i] = &tr
			return nil
		})
	}
	_ = g.Wait()

	var out []catalog.Trajectory
	for i, r := range results {
		if r != nil {
			out = append(out, *r)
			continue
		}
		p.log.Warn("trajectory for %s unavailable: %v", p.targets[i].Name, errs[i])
	}
	if len(out) == 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (p *Planner) toTrajectory(path Path) catalog.Trajectory {
	tr := catalog.Trajectory{ID: "traj-" + path.Target.Key, Label: path.Target.Name}
	n := 0
	for _, pt := range path.Points {
		if !pt.Valid {
			continue
		}
		tp := catalog.TrajectoryPoint{RA: pt.RA, Dec: pt.Dec, Time: pt.Time}
		if p.cfg.LabelEvery > 0 && n%p.cfg.LabelEvery == 0 {
			tp.Label = pt.Time.UTC().Format("Jan 02")
		}
		tr.Points = append(tr.Points, tp)
		n++
	}
	return tr
}
