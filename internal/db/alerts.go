package db

import (
	"context"
	"errors"
	"fmt"

	"energymon/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ruleColumns = `id, user_id, device_id, name, alert_type, metric, comparison, threshold,
       window_seconds, severity, is_enabled, cooldown_seconds, created_at, updated_at`

func scanRule(row pgx.Row) (*models.AlertRule, error) {
	var r models.AlertRule
	err := row.Scan(&r.ID, &r.UserID, &r.DeviceID, &r.Name, &r.Kind, &r.Metric, &r.Comparison,
		&r.Threshold, &r.WindowSeconds, &r.Severity, &r.IsEnabled, &r.CooldownSeconds,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRules fetches all rules for a user, newest first
func (d *DB) ListRules(ctx context.Context, userID string) ([]models.AlertRule, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT "+ruleColumns+" FROM alerts WHERE user_id=$1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []models.AlertRule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

// ListEnabledRules fetches the enabled rules for a user in creation order,
// which fixes the evaluation pass order
func (d *DB) ListEnabledRules(ctx context.Context, userID string) ([]models.AlertRule, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT "+ruleColumns+" FROM alerts WHERE user_id=$1 AND is_enabled=true ORDER BY created_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []models.AlertRule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

// GetRule fetches a rule owned by the user
func (d *DB) GetRule(ctx context.Context, userID, ruleID string) (*models.AlertRule, error) {
	r, err := scanRule(d.pool.QueryRow(ctx,
		"SELECT "+ruleColumns+" FROM alerts WHERE id=$1 AND user_id=$2", ruleID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (d *DB) ruleNameTaken(ctx context.Context, userID, name, excludeID string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM alerts WHERE user_id=$1 AND name=$2 AND id<>$3)",
		userID, name, excludeID).Scan(&exists)
	return exists, err
}

// CreateRule inserts a rule, assigning its ID. The (user, name) pair must
// be free and an explicit device scope must reference the user's own device.
func (d *DB) CreateRule(ctx context.Context, rule *models.AlertRule) error {
	taken, err := d.ruleNameTaken(ctx, rule.UserID, rule.Name, uuid.Nil.String())
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}
	if rule.DeviceID != nil {
		owned, err := d.DeviceOwnedBy(ctx, rule.UserID, *rule.DeviceID)
		if err != nil {
			return err
		}
		if !owned {
			return ErrNotFound
		}
	}

	rule.ID = uuid.NewString()
	return d.pool.QueryRow(ctx, `
		INSERT INTO alerts (id, user_id, device_id, name, alert_type, metric, comparison,
		                    threshold, window_seconds, severity, is_enabled, cooldown_seconds)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		rule.ID, rule.UserID, rule.DeviceID, rule.Name, rule.Kind, rule.Metric, rule.Comparison,
		rule.Threshold, rule.WindowSeconds, rule.Severity, rule.IsEnabled, rule.CooldownSeconds,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)
}

// UpdateRule applies a partial update and returns the updated rule.
// Only the columns named by upd.Changes are written; the name collision
// check runs only when the name changes, the ownership check only when
// the device scope changes.
func (d *DB) UpdateRule(ctx context.Context, userID, ruleID string, upd *models.AlertRuleUpdate) (*models.AlertRule, error) {
	if _, err := d.GetRule(ctx, userID, ruleID); err != nil {
		return nil, err
	}
	if upd.Name != nil {
		taken, err := d.ruleNameTaken(ctx, userID, *upd.Name, ruleID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrNameTaken
		}
	}
	if upd.DeviceID != nil {
		owned, err := d.DeviceOwnedBy(ctx, userID, *upd.DeviceID)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, ErrNotFound
		}
	}

	cols, vals := upd.Changes()
	if len(cols) == 0 {
		return d.GetRule(ctx, userID, ruleID)
	}

	query := "UPDATE alerts SET updated_at=now()"
	for i, col := range cols {
		query += fmt.Sprintf(", %s=$%d", col, i+1)
	}
	query += fmt.Sprintf(" WHERE id=$%d AND user_id=$%d RETURNING %s", len(cols)+1, len(cols)+2, ruleColumns)
	vals = append(vals, ruleID, userID)

	r, err := scanRule(d.pool.QueryRow(ctx, query, vals...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// DeleteRule removes a rule owned by the user
func (d *DB) DeleteRule(ctx context.Context, userID, ruleID string) error {
	tag, err := d.pool.Exec(ctx, "DELETE FROM alerts WHERE id=$1 AND user_id=$2", ruleID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAlertOwners returns the users that currently have enabled rules,
// used by the scheduler to enqueue evaluation passes
func (d *DB) ListAlertOwners(ctx context.Context) ([]string, error) {
	rows, err := d.pool.Query(ctx, "SELECT DISTINCT user_id FROM alerts WHERE is_enabled=true")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}
