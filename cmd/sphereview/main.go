// Command sphereview walks the sphere world in a terminal. The map is an
// equirectangular projection of the world; the avatar is drawn as '@'.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
	"github.com/zeusync/orbwalk/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML world config; defaults are used when empty")
	logPath := flag.String("log", "", "write logs to this file; logging is off when empty")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var logger log.Log = log.NewNop()
	if *logPath != "" {
		l, err := log.New(log.Options{
			Level:    log.ParseLevel(cfg.Log.Level),
			Encoding: cfg.Log.Encoding,
			Output:   []string{*logPath},
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = l.Sync() }()
		logger = l
	}

	w, cleanup, err := injector.InitializeWorld(context.Background(), cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build world: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err = screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	newViewer(screen, w).run()
}
