package db

import (
	"context"
	"errors"
	"fmt"

	"energymon/internal/models"

	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, user_id, alert_id, device_id, ts, status, message, metric_value,
       acknowledged_at, resolved_at, created_at`

func scanEvent(row pgx.Row) (*models.AlertEvent, error) {
	var e models.AlertEvent
	err := row.Scan(&e.ID, &e.UserID, &e.AlertID, &e.DeviceID, &e.TS, &e.Status, &e.Message,
		&e.MetricValue, &e.AcknowledgedAt, &e.ResolvedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// MostRecentEvent returns the newest event for an exact (user, rule, device)
// triple restricted to the given statuses, or nil when none exists.
// The evaluation engine reads cooldown state from this row.
func (d *DB) MostRecentEvent(ctx context.Context, userID, alertID, deviceID string, statuses []models.EventStatus) (*models.AlertEvent, error) {
	states := make([]string, len(statuses))
	for i, s := range statuses {
		states[i] = string(s)
	}
	e, err := scanEvent(d.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM alert_events
		WHERE user_id=$1 AND alert_id=$2 AND device_id=$3 AND status = ANY($4)
		ORDER BY ts DESC
		LIMIT 1`,
		userID, alertID, deviceID, states))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// InsertTriggeredEvent appends a triggered event and fills in its
// database-assigned fields
func (d *DB) InsertTriggeredEvent(ctx context.Context, ev *models.AlertEvent) error {
	ev.Status = models.EventStatusTriggered
	return d.pool.QueryRow(ctx, `
		INSERT INTO alert_events (user_id, alert_id, device_id, status, message, metric_value)
		VALUES ($1,$2,$3,'triggered',$4,$5)
		RETURNING id, ts, created_at`,
		ev.UserID, ev.AlertID, ev.DeviceID, ev.Message, ev.MetricValue,
	).Scan(&ev.ID, &ev.TS, &ev.CreatedAt)
}

// AcknowledgeEvent marks an event as acknowledged. Rows that are already
// acknowledged do not match, so a second acknowledge reports false and the
// original acknowledged_at is kept.
func (d *DB) AcknowledgeEvent(ctx context.Context, userID string, eventID int64) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		UPDATE alert_events
		SET status='acknowledged', acknowledged_at=now()
		WHERE id=$1 AND user_id=$2 AND status <> 'acknowledged'`,
		eventID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListEvents returns recent events for a user, newest first, optionally
// filtered by device and rule
func (d *DB) ListEvents(ctx context.Context, userID string, deviceID, alertID *string, limit int) ([]models.AlertEvent, error) {
	query := "SELECT " + eventColumns + " FROM alert_events WHERE user_id=$1"
	args := []any{userID}
	if deviceID != nil {
		args = append(args, *deviceID)
		query += fmt.Sprintf(" AND device_id=$%d", len(args))
	}
	if alertID != nil {
		args = append(args, *alertID)
		query += fmt.Sprintf(" AND alert_id=$%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY ts DESC LIMIT $%d", len(args))

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.AlertEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
