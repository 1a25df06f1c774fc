// Command ls-skychart-window shows the sky chart in a desktop window.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/litescript/ls-skychart/internal/config"
	"github.com/litescript/ls-skychart/internal/session"
	"github.com/litescript/ls-skychart/internal/version"
	"github.com/litescript/ls-skychart/internal/window"
)

func main() {
	fs := flag.CommandLine
	flags := config.RegisterFlags(fs)
	fontSize := flag.Float64("font-size", 13, "Label font size, points")
	tps := flag.Int("tps", 60, "Ticks per second (input and animation updates)")
	flag.Parse()

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

	logger := cfg.NewLogger(true)
	defer logger.Sync()

	opts, err := cfg.SessionOptions(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Loads only start with sess.Start, after game is set.
	var game *window.Game
	opts = append(opts, session.WithRedraw(func() { game.Redraw() }))
	sess := session.New(cfg.NewProvider(logger), cfg.Session, opts...)
	defer sess.Close()

	game, err = window.NewGame(sess, cfg.RenderOptions(), *fontSize, logger.Named("window"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("ls-skychart %s starting, provider %s", version.Version, cfg.Provider.Kind)
	sess.Start()

	ebiten.SetTPS(*tps)
	ebiten.SetWindowSize(cfg.View.Width, cfg.View.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("ls-skychart")
	if err := ebiten.RunGame(game); err != nil {
		logger.Error("window: %v", err)
		os.Exit(1)
	}
}
