package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
	"github.com/zeusync/orbwalk/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML world config; defaults are used when empty")
	listen := flag.String("listen", "", "override server.listen_addr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Server.ListenAddr = *listen
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, cleanup, err := injector.InitializeApp(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building world:", err)
		os.Exit(1)
	}
	defer cleanup()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)

	if err = app.Server.Start(ctx); err != nil {
		app.Logger.Error("Error starting server", log.Error(err))
		return
	}

	sig := <-stopCh
	app.Logger.Info("Shutting down", log.String("signal", sig.String()))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err = app.Server.Stop(stopCtx); err != nil {
		app.Logger.Error("Error stopping server", log.Error(err))
	}
}
