// Command ls-skychart is a terminal sky chart: an interactive star map with
// headless snapshot and summary modes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-skychart/internal/config"
	"github.com/litescript/ls-skychart/internal/logging"
	"github.com/litescript/ls-skychart/internal/render"
	"github.com/litescript/ls-skychart/internal/session"
	"github.com/litescript/ls-skychart/internal/ui"
	"github.com/litescript/ls-skychart/internal/version"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	watchInterval time.Duration
	snapshotPath  string
	miniSkyMode   bool
	eventsMode    bool
	showVersion   bool
)

const (
	animInterval = 30 * time.Millisecond
	miniSkyCols  = 80
	miniSkyRows  = 24
)

func main() {
	fs := flag.CommandLine
	flags := config.RegisterFlags(fs)
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat headless output at interval (e.g., 30s)")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export the drawn frame as JSON to file (use - for stdout)")
	flag.BoolVar(&miniSkyMode, "mini-sky", false, "Print one chart frame as text")
	flag.BoolVar(&eventsMode, "events", false, "Show event log")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("ls-skychart", version.Version)
		return
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	flags.Apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	headless := summaryMode || snapshotPath != "" || miniSkyMode || eventsMode

	// The TUI owns the terminal, so logs only go to the file when set.
	logger := cfg.NewLogger(headless)
	defer logger.Sync()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	opts, err := cfg.SessionOptions(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	provider := cfg.NewProvider(logger)

	if headless {
		sess := session.New(provider, cfg.Session, opts...)
		defer sess.Close()
		runHeadless(ctx, sess, cfg, logger)
		return
	}

	var p *tea.Program
	opts = append(opts, session.WithRedraw(func() { p.Send(ui.RedrawMsg{}) }))
	sess := session.New(provider, cfg.Session, opts...)
	defer sess.Close()

	// Create TUI model
	model := ui.New(sess, cfg.RenderOptions(), animInterval, logger)

	// Create Bubble Tea program
	p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	logger.Info("ls-skychart %s starting, provider %s", version.Version, cfg.Provider.Kind)
	sess.Start()

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, sess *session.Session, cfg *config.Config, logger *logging.Logger) {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	pipeline := render.DefaultPipeline(logger.Named("render"))
	sess.SetSize(cfg.View.Width, cfg.View.Height)

	first := true
	outputOnce := func() error {
		if first {
			sess.Start()
			first = false
		} else {
			sess.ForceReload()
		}
		sess.Wait()
		snap := sess.Snapshot()
		if !snap.HasScene && snap.LastError != nil {
			return snap.LastError
		}
		data := sess.Data()

		rec := render.NewRecorder(float64(cfg.View.Width), float64(cfg.View.Height))
		rctx := render.NewContext(sess.State(), rec, rec, data, nil, cfg.RenderOptions())
		stats := pipeline.Render(rctx)

		// Export JSON if requested
		if snapshotPath != "" {
			export := rec.Export(rctx, stats)
			if snapshotPath == "-" {
				if err := export.WriteJSON(os.Stdout); err != nil {
					return fmt.Errorf("write JSON to stdout: %w", err)
				}
			} else {
				f, err := os.Create(snapshotPath)
				if err != nil {
					return fmt.Errorf("create snapshot file: %w", err)
				}
				defer f.Close()
				if err := export.WriteJSON(f); err != nil {
					return fmt.Errorf("write JSON to file: %w", err)
				}
			}
		}

		// Print summary table if requested
		if summaryMode {
			session.WriteSummary(os.Stdout, snap, data, stats)
		}

		// Mini sky view
		if miniSkyMode {
			fmt.Println()
			writeMiniSky(sess, cfg, pipeline, isTTY)
		}

		// Events log
		if eventsMode {
			fmt.Println()
			session.WriteEvents(os.Stdout, sess.RecentEvents(10), 10)
		}
		return nil
	}

	// Single run
	if watchInterval == 0 {
		if err := outputOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Watch mode: repeat at interval
	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Println()
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

// writeMiniSky draws one frame into a terminal canvas sized to the terminal
// (or 80x24 when stdout is not one) and prints it, styled on a TTY.
func writeMiniSky(sess *session.Session, cfg *config.Config, pipeline *render.Pipeline, isTTY bool) {
	cols, rows := miniSkyCols, miniSkyRows
	if isTTY {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 2 {
			cols, rows = w, h-2
		}
	}
	canvas := ui.NewTermCanvas(cols, rows)
	w, h := canvas.Size()

	// The chart is drawn for the canvas, then the headless size is restored
	// for the next watch round.
	sess.SetSize(int(w), int(h))
	defer sess.SetSize(cfg.View.Width, cfg.View.Height)

	opts := cfg.RenderOptions()
	opts.Optimized = cols < 40
	rctx := render.NewContext(sess.State(), canvas, canvas, sess.Data(), nil, opts)
	pipeline.Render(rctx)

	if isTTY {
		fmt.Println(canvas.String())
		return
	}
	for _, line := range canvas.Lines() {
		fmt.Println(line)
	}
}
