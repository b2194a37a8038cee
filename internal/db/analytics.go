package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// RangeSummary aggregates power statistics over a time range
type RangeSummary struct {
	Points        int      `json:"points"`
	AvgPowerW     *float64 `json:"avg_power_w"`
	MaxPowerW     *float64 `json:"max_power_w"`
	MinPowerW     *float64 `json:"min_power_w"`
	EnergyWhDelta *float64 `json:"energy_wh_delta"`
}

// TimeseriesPoint is one bucket of a bucketed aggregate series
type TimeseriesPoint struct {
	BucketStart time.Time `json:"bucket_start"`
	Points      int       `json:"points"`
	AvgPowerW   *float64  `json:"avg_power_w"`
	MaxPowerW   *float64  `json:"max_power_w"`
	MinPowerW   *float64  `json:"min_power_w"`
}

// PeakReading is the highest-power sample in a range
type PeakReading struct {
	TS     time.Time `json:"ts"`
	PowerW float64   `json:"power_w"`
}

// SummarizeRange computes avg/min/max power and the approximate energy
// delta (max - min energy_wh) for a device over a time range
func (d *DB) SummarizeRange(ctx context.Context, userID, deviceID string, start, end time.Time) (*RangeSummary, error) {
	var s RangeSummary
	err := d.pool.QueryRow(ctx, `
		SELECT
		  COUNT(*)::int,
		  AVG(power_w),
		  MAX(power_w),
		  MIN(power_w),
		  MAX(energy_wh) - MIN(energy_wh)
		FROM energy_readings
		WHERE user_id=$1 AND device_id=$2 AND ts >= $3 AND ts <= $4`,
		userID, deviceID, start, end,
	).Scan(&s.Points, &s.AvgPowerW, &s.MaxPowerW, &s.MinPowerW, &s.EnergyWhDelta)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// BucketedTimeseries aggregates readings into fixed-size buckets using
// date_bin, anchored at the range start
func (d *DB) BucketedTimeseries(ctx context.Context, userID, deviceID string, start, end time.Time, bucketSeconds int) ([]TimeseriesPoint, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT
		  date_bin(make_interval(secs => $1), ts, $2),
		  COUNT(*)::int,
		  AVG(power_w),
		  MAX(power_w),
		  MIN(power_w)
		FROM energy_readings
		WHERE user_id=$3 AND device_id=$4 AND ts >= $2 AND ts <= $5
		GROUP BY 1
		ORDER BY 1 ASC`,
		bucketSeconds, start, userID, deviceID, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := []TimeseriesPoint{}
	for rows.Next() {
		var p TimeseriesPoint
		if err := rows.Scan(&p.BucketStart, &p.Points, &p.AvgPowerW, &p.MaxPowerW, &p.MinPowerW); err != nil {
			return nil, err
		}
		series = append(series, p)
	}
	return series, rows.Err()
}

// PeakPower returns the highest-power reading in a range, or nil when the
// range holds no readings with a power value
func (d *DB) PeakPower(ctx context.Context, userID, deviceID string, start, end time.Time) (*PeakReading, error) {
	var p PeakReading
	err := d.pool.QueryRow(ctx, `
		SELECT ts, power_w
		FROM energy_readings
		WHERE user_id=$1 AND device_id=$2 AND ts >= $3 AND ts <= $4 AND power_w IS NOT NULL
		ORDER BY power_w DESC
		LIMIT 1`,
		userID, deviceID, start, end,
	).Scan(&p.TS, &p.PowerW)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
