// runmed-server exposes the running-median engine over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/runningmedian/internal/log"
	"github.com/chrissnell/runningmedian/internal/restserver"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML configuration file (optional)")
		listenAddr = flag.String("listen", "", "Listen address, overrides config")
		httpPort   = flag.Int("port", 0, "HTTP port, overrides config")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := restserver.Config{}
	if *configPath != "" {
		loaded, err := restserver.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}
		cfg = *loaded
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *httpPort != 0 {
		cfg.HTTPPort = *httpPort
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	ctrl, err := restserver.NewController(ctx, &wg, cfg, log.GetSugaredLogger())
	if err != nil {
		log.Fatalf("Error creating REST server: %v", err)
	}

	if err := ctrl.StartController(); err != nil {
		log.Fatalf("Error starting REST server: %v", err)
	}
	log.Infof("Listening on %s", ctrl.Server.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("Shutdown signal received")
	cancel()
	wg.Wait()
}
