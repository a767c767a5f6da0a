// Package depth estimates snow depth from raw snow-gauge distance readings
// by median-smoothing the depth series and rate-limiting its slope.
package depth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chrissnell/runningmedian/pkg/medfilt"
	"go.uber.org/zap"
)

// Params defines parameters for the median smoothing + rate limiting algorithm
type Params struct {
	// WindowSamples is the running-median window length in samples. With
	// 5-minute buckets, 13 samples covers about an hour.
	WindowSamples int

	// MaxUpRateInPerHour is the maximum allowed snow accumulation rate in inches/hour
	MaxUpRateInPerHour float64

	// MaxDownRateInPerHour is the maximum allowed snow settling/melt rate in inches/hour
	MaxDownRateInPerHour float64
}

// DefaultParams returns conservative default parameters
func DefaultParams() Params {
	return Params{
		WindowSamples:        13,  // ~1 hour of 5-minute buckets
		MaxUpRateInPerHour:   4.0, // Max 4 inches/hour accumulation
		MaxDownRateInPerHour: 1.5, // Max 1.5 inches/hour settling
	}
}

// Sample represents a single time/depth measurement in inches
type Sample struct {
	Time    time.Time
	DepthIn float64
}

// MedianSmooth runs a causal (beginning-only tapered) running median over
// the depth series, producing one smoothed value per sample. Sensor dropouts
// recorded as NaN are ignored inside the window rather than poisoning it.
func MedianSmooth(samples []Sample, params Params) ([]float64, error) {
	if len(samples) == 0 {
		return []float64{}, nil
	}
	if params.WindowSamples < 1 {
		return nil, fmt.Errorf("window must be at least 1 sample, got %d", params.WindowSamples)
	}

	depths := make([]float64, len(samples))
	for i, s := range samples {
		depths[i] = s.DepthIn
	}
	return medfilt.RunningMedian(depths, params.WindowSamples, medfilt.TaperBeginningOnly, medfilt.NaNIgnore)
}

// ApplyRateLimiting caps depth changes at physically plausible
// accumulation/settling rates, continuing from prevEstimate when one exists
func ApplyRateLimiting(samples []Sample, smoothed []float64, params Params, prevEstimate *Sample) []float64 {
	n := len(samples)
	if n == 0 {
		return []float64{}
	}

	limited := make([]float64, n)

	var prevDepth float64
	var prevTime time.Time
	startIdx := 0
	if prevEstimate != nil {
		prevDepth = prevEstimate.DepthIn
		prevTime = prevEstimate.Time
	} else {
		limited[0] = smoothed[0]
		prevDepth = smoothed[0]
		prevTime = samples[0].Time
		startIdx = 1
	}

	for i := startIdx; i < n; i++ {
		dtHours := samples[i].Time.Sub(prevTime).Hours()
		if dtHours <= 0 {
			// Time didn't advance, keep previous depth
			limited[i] = prevDepth
			continue
		}

		rate := (smoothed[i] - prevDepth) / dtHours
		if rate > params.MaxUpRateInPerHour {
			rate = params.MaxUpRateInPerHour
		} else if rate < -params.MaxDownRateInPerHour {
			rate = -params.MaxDownRateInPerHour
		}

		limited[i] = prevDepth + rate*dtHours
		prevDepth = limited[i]
		prevTime = samples[i].Time
	}

	return limited
}

// UpdateEstimates computes and stores estimated snow depth for a station:
// fetch raw snowdistance readings from weather_5m, convert to depth in
// inches, median-smooth, rate-limit, and store into snow_depth_est_5m.
func UpdateEstimates(
	ctx context.Context,
	db *sql.DB,
	logger *zap.SugaredLogger,
	station string,
	baseDistanceMM float64,
	params Params,
) error {
	var lastEstTime sql.NullTime
	err := db.QueryRowContext(ctx,
		`SELECT MAX(time) FROM snow_depth_est_5m WHERE stationname = $1`,
		station,
	).Scan(&lastEstTime)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to get last estimate time: %w", err)
	}

	var startTime time.Time
	var prevEstimate *Sample

	if !lastEstTime.Valid {
		// Initial backfill: start from season start
		startTime = seasonStart(time.Now())
		logger.Infof("Initial backfill for %s starting from season start: %s", station, startTime.Format("2006-01-02"))
	} else {
		// Incremental update: overlap by the window length so the smoother
		// sees the same leading context it had last run
		startTime = lastEstTime.Time.Add(-time.Duration(params.WindowSamples) * 5 * time.Minute)

		var prevDepth float64
		var prevTime time.Time
		err = db.QueryRowContext(ctx,
			`SELECT time, snow_depth_est_in FROM snow_depth_est_5m
			 WHERE stationname = $1 AND time < $2
			 ORDER BY time DESC
			 LIMIT 1`,
			station, startTime,
		).Scan(&prevTime, &prevDepth)
		if err == nil {
			prevEstimate = &Sample{Time: prevTime, DepthIn: prevDepth}
		}
	}

	samples, err := fetchDepthSamples(ctx, db, station, startTime, baseDistanceMM)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		logger.Debugf("No data to process for %s from %s", station, startTime.Format("2006-01-02 15:04"))
		return nil
	}

	logger.Debugf("Processing %d samples for %s from %s to %s",
		len(samples), station,
		samples[0].Time.Format("2006-01-02 15:04"),
		samples[len(samples)-1].Time.Format("2006-01-02 15:04"))

	smoothed, err := MedianSmooth(samples, params)
	if err != nil {
		return fmt.Errorf("failed to smooth depth series: %w", err)
	}
	limited := ApplyRateLimiting(samples, smoothed, params, prevEstimate)

	if err := storeEstimates(ctx, db, station, startTime, samples, limited); err != nil {
		return err
	}

	logger.Debugf("Inserted %d estimated depth values for %s", len(samples), station)
	return nil
}

func fetchDepthSamples(ctx context.Context, db *sql.DB, station string, startTime time.Time, baseDistanceMM float64) ([]Sample, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT bucket, snowdistance
		 FROM weather_5m
		 WHERE stationname = $1
		   AND bucket >= $2
		   AND snowdistance IS NOT NULL
		   AND snowdistance < $3 - 2
		 ORDER BY bucket`,
		station, startTime, baseDistanceMM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather data: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var t time.Time
		var snowdistance float64
		if err := rows.Scan(&t, &snowdistance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		depthMM := baseDistanceMM - snowdistance
		samples = append(samples, Sample{Time: t, DepthIn: depthMM / 25.4})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return samples, nil
}

// storeEstimates replaces the overlapping estimate rows in one transaction
func storeEstimates(ctx context.Context, db *sql.DB, station string, startTime time.Time, samples []Sample, depths []float64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM snow_depth_est_5m WHERE stationname = $1 AND time >= $2`,
		station, startTime,
	)
	if err != nil {
		return fmt.Errorf("failed to delete overlapping estimates: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snow_depth_est_5m (stationname, time, snow_depth_est_in)
		 VALUES ($1, $2, $3)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, sample := range samples {
		if _, err := stmt.ExecContext(ctx, station, sample.Time, depths[i]); err != nil {
			return fmt.Errorf("failed to insert estimate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// seasonStart returns the start of the current snow season (October 1)
func seasonStart(now time.Time) time.Time {
	year := now.Year()
	if now.Month() < time.October {
		year--
	}
	return time.Date(year, time.October, 1, 0, 0, 0, 0, now.Location())
}
