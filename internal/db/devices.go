package db

import (
	"context"
	"errors"
	"fmt"

	"energymon/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const deviceColumns = `id, user_id, name, location, model, manufacturer, serial_number,
       external_device_id, timezone, is_active, created_at, updated_at`

func scanDevice(row pgx.Row) (*models.Device, error) {
	var dev models.Device
	err := row.Scan(&dev.ID, &dev.UserID, &dev.Name, &dev.Location, &dev.Model, &dev.Manufacturer,
		&dev.SerialNumber, &dev.ExternalDeviceID, &dev.Timezone, &dev.IsActive,
		&dev.CreatedAt, &dev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &dev, nil
}

// ListDevices fetches all devices for a user, newest first
func (d *DB) ListDevices(ctx context.Context, userID string) ([]models.Device, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE user_id=$1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := []models.Device{}
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *dev)
	}
	return devices, rows.Err()
}

// ListActiveDevices fetches the user's active devices in creation order.
// Unscoped alert rules fan out over this list.
func (d *DB) ListActiveDevices(ctx context.Context, userID string) ([]models.Device, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE user_id=$1 AND is_active=true ORDER BY created_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := []models.Device{}
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *dev)
	}
	return devices, rows.Err()
}

// GetDevice fetches a device owned by the user
func (d *DB) GetDevice(ctx context.Context, userID, deviceID string) (*models.Device, error) {
	dev, err := scanDevice(d.pool.QueryRow(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE id=$1 AND user_id=$2", deviceID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return dev, err
}

// DeviceOwnedBy reports whether the device exists and belongs to the user
func (d *DB) DeviceOwnedBy(ctx context.Context, userID, deviceID string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM devices WHERE id=$1 AND user_id=$2)", deviceID, userID).Scan(&exists)
	return exists, err
}

// DeviceOwner resolves the owning user of a device, used by the MQTT
// ingest path where no bearer token identifies the tenant
func (d *DB) DeviceOwner(ctx context.Context, deviceID string) (string, error) {
	var userID string
	err := d.pool.QueryRow(ctx, "SELECT user_id FROM devices WHERE id=$1", deviceID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return userID, err
}

func (d *DB) deviceNameTaken(ctx context.Context, userID, name, excludeID string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM devices WHERE user_id=$1 AND name=$2 AND id<>$3)",
		userID, name, excludeID).Scan(&exists)
	return exists, err
}

// CreateDevice inserts a device, assigning its ID. The (user, name) pair
// must be free.
func (d *DB) CreateDevice(ctx context.Context, dev *models.Device) error {
	taken, err := d.deviceNameTaken(ctx, dev.UserID, dev.Name, uuid.Nil.String())
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	dev.ID = uuid.NewString()
	return d.pool.QueryRow(ctx, `
		INSERT INTO devices (id, user_id, name, location, model, manufacturer,
		                     serial_number, external_device_id, timezone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING is_active, created_at, updated_at`,
		dev.ID, dev.UserID, dev.Name, dev.Location, dev.Model, dev.Manufacturer,
		dev.SerialNumber, dev.ExternalDeviceID, dev.Timezone,
	).Scan(&dev.IsActive, &dev.CreatedAt, &dev.UpdatedAt)
}

// UpdateDevice applies a partial update and returns the updated device
func (d *DB) UpdateDevice(ctx context.Context, userID, deviceID string, upd *models.DeviceUpdate) (*models.Device, error) {
	if _, err := d.GetDevice(ctx, userID, deviceID); err != nil {
		return nil, err
	}
	if upd.Name != nil {
		taken, err := d.deviceNameTaken(ctx, userID, *upd.Name, deviceID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrNameTaken
		}
	}

	cols, vals := upd.Changes()
	if len(cols) == 0 {
		return d.GetDevice(ctx, userID, deviceID)
	}

	query := "UPDATE devices SET updated_at=now()"
	for i, col := range cols {
		query += fmt.Sprintf(", %s=$%d", col, i+1)
	}
	query += fmt.Sprintf(" WHERE id=$%d AND user_id=$%d RETURNING %s", len(cols)+1, len(cols)+2, deviceColumns)
	vals = append(vals, deviceID, userID)

	dev, err := scanDevice(d.pool.QueryRow(ctx, query, vals...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return dev, err
}

// DeleteDevice removes a device; readings and scoped alerts cascade
func (d *DB) DeleteDevice(ctx context.Context, userID, deviceID string) error {
	tag, err := d.pool.Exec(ctx, "DELETE FROM devices WHERE id=$1 AND user_id=$2", deviceID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
