// depth-estimator periodically recomputes estimated snow depth for a
// station from raw snow-gauge distance readings.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrissnell/runningmedian/internal/depth"
	"github.com/chrissnell/runningmedian/internal/log"
)

func main() {
	var (
		driver       = flag.String("driver", "postgres", "Database driver: postgres or sqlite")
		dsn          = flag.String("dsn", "", "Database connection string")
		station      = flag.String("station", "snow", "Snow gauge station name")
		baseDistance = flag.Float64("base-distance", 1798.0, "Baseline snow distance in mm (no snow)")
		window       = flag.Int("window", 0, "Median window in samples (0 for default)")
		interval     = flag.Duration("interval", 5*time.Minute, "Recompute interval; 0 runs once and exits")
		debug        = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *dsn == "" {
		log.Fatalf("-dsn is required")
	}

	db, err := depth.Open(*driver, *dsn)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	params := depth.DefaultParams()
	if *window > 0 {
		params.WindowSamples = *window
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("Shutdown signal received")
		cancel()
	}()

	logger := log.GetSugaredLogger()
	run := func() {
		if err := depth.UpdateEstimates(ctx, db, logger, *station, *baseDistance, params); err != nil {
			log.Errorf("Error updating depth estimates: %v", err)
		}
	}

	run()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
