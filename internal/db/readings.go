package db

import (
	"context"
	"errors"
	"time"

	"energymon/internal/models"

	"github.com/jackc/pgx/v5"
)

// UpsertReading inserts a reading, replacing the stored values when one
// already exists for the same (device, ts)
func (d *DB) UpsertReading(ctx context.Context, userID string, r *models.Reading) error {
	return d.pool.QueryRow(ctx, `
		INSERT INTO energy_readings (user_id, device_id, ts, power_w, voltage_v, current_a, energy_wh, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (device_id, ts)
		DO UPDATE SET
		  power_w = EXCLUDED.power_w,
		  voltage_v = EXCLUDED.voltage_v,
		  current_a = EXCLUDED.current_a,
		  energy_wh = EXCLUDED.energy_wh,
		  source = EXCLUDED.source
		RETURNING id, created_at`,
		userID, r.DeviceID, r.TS, r.PowerW, r.VoltageV, r.CurrentA, r.EnergyWh, r.Source,
	).Scan(&r.ID, &r.CreatedAt)
}

// LatestReading returns the newest reading for a device, or nil when the
// device has never reported
func (d *DB) LatestReading(ctx context.Context, userID, deviceID string) (*models.Reading, error) {
	var r models.Reading
	err := d.pool.QueryRow(ctx, `
		SELECT id, device_id, ts, power_w, voltage_v, current_a, energy_wh, source, created_at
		FROM energy_readings
		WHERE user_id=$1 AND device_id=$2
		ORDER BY ts DESC
		LIMIT 1`,
		userID, deviceID,
	).Scan(&r.ID, &r.DeviceID, &r.TS, &r.PowerW, &r.VoltageV, &r.CurrentA, &r.EnergyWh, &r.Source, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RangeReadings returns readings for a device between start and end
// inclusive, oldest first
func (d *DB) RangeReadings(ctx context.Context, userID, deviceID string, start, end time.Time, limit int) ([]models.Reading, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, device_id, ts, power_w, voltage_v, current_a, energy_wh, source, created_at
		FROM energy_readings
		WHERE user_id=$1 AND device_id=$2 AND ts >= $3 AND ts <= $4
		ORDER BY ts ASC
		LIMIT $5`,
		userID, deviceID, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := []models.Reading{}
	for rows.Next() {
		var r models.Reading
		if err := rows.Scan(&r.ID, &r.DeviceID, &r.TS, &r.PowerW, &r.VoltageV, &r.CurrentA,
			&r.EnergyWh, &r.Source, &r.CreatedAt); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}
