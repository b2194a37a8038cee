package engine

import (
	"context"
	"fmt"
	"time"

	"energymon/internal/logger"
	"energymon/internal/metrics"
	"energymon/internal/models"

	"go.uber.org/zap"
)

// RuleStore supplies the enabled rules of an owner in pass order
type RuleStore interface {
	ListEnabledRules(ctx context.Context, ownerID string) ([]models.AlertRule, error)
}

// DeviceStore supplies the owner's active devices for unscoped rules
type DeviceStore interface {
	ListActiveDevices(ctx context.Context, ownerID string) ([]models.Device, error)
}

// ReadingStore supplies the latest telemetry sample per device
type ReadingStore interface {
	LatestReading(ctx context.Context, ownerID, deviceID string) (*models.Reading, error)
}

// EventStore reads cooldown state and appends triggered events
type EventStore interface {
	MostRecentEvent(ctx context.Context, ownerID, alertID, deviceID string, statuses []models.EventStatus) (*models.AlertEvent, error)
	InsertTriggeredEvent(ctx context.Context, ev *models.AlertEvent) error
}

// Store is the full data-access contract of the engine
type Store interface {
	RuleStore
	DeviceStore
	ReadingStore
	EventStore
}

// CooldownLocker serializes triggered-event insertion per (owner, rule,
// device) pair so concurrent passes cannot double-fire within one window
type CooldownLocker interface {
	Acquire(ctx context.Context, ownerID, ruleID, deviceID string, ttl time.Duration) (bool, error)
}

// Engine runs alert evaluation passes. It holds no state of its own; all
// state lives in the stores it reads and writes.
type Engine struct {
	store  Store
	locker CooldownLocker
	now    func() time.Time
}

// NewEngine creates an engine over the given store and cooldown locker
func NewEngine(store Store, locker CooldownLocker) *Engine {
	return &Engine{
		store:  store,
		locker: locker,
		now:    time.Now,
	}
}

// EvaluateAlerts runs one full evaluation pass for an owner and returns
// the number of events it inserted. Any store failure aborts the pass:
// a partial silent pass could mask missed alerts, and re-running is safe
// because cooldown state lives in the event log.
func (e *Engine) EvaluateAlerts(ctx context.Context, ownerID string) (int, error) {
	rules, err := e.store.ListEnabledRules(ctx, ownerID)
	if err != nil {
		metrics.EvaluationPasses.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("list enabled rules: %w", err)
	}

	triggered := 0
	now := e.now()

	for i := range rules {
		rule := &rules[i]

		deviceIDs, err := e.targetDevices(ctx, rule)
		if err != nil {
			metrics.EvaluationPasses.WithLabelValues("error").Inc()
			return 0, fmt.Errorf("resolve devices for rule %s: %w", rule.ID, err)
		}

		for _, deviceID := range deviceIDs {
			n, err := e.evaluatePair(ctx, rule, deviceID, now)
			if err != nil {
				metrics.EvaluationPasses.WithLabelValues("error").Inc()
				return 0, fmt.Errorf("evaluate rule %s device %s: %w", rule.ID, deviceID, err)
			}
			triggered += n
		}
	}

	metrics.EvaluationPasses.WithLabelValues("ok").Inc()
	logger.Info("evaluation pass complete",
		zap.String("owner_id", ownerID),
		zap.Int("rules", len(rules)),
		zap.Int("triggered", triggered))
	return triggered, nil
}

// targetDevices resolves the device set a rule applies to: its explicit
// scope, or every active device of the owner
func (e *Engine) targetDevices(ctx context.Context, rule *models.AlertRule) ([]string, error) {
	if rule.DeviceID != nil {
		return []string{*rule.DeviceID}, nil
	}
	devices, err := e.store.ListActiveDevices(ctx, rule.UserID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
	}
	return ids, nil
}

// evaluatePair evaluates one (rule, device) pair and returns the number
// of events inserted (0 or 1)
func (e *Engine) evaluatePair(ctx context.Context, rule *models.AlertRule, deviceID string, now time.Time) (int, error) {
	// Cooldown: the latest triggered/suppressed event for this exact
	// triple is the suppression state. Inside the window the pair is
	// skipped outright, not queued for a later re-check.
	recent, err := e.store.MostRecentEvent(ctx, rule.UserID, rule.ID, deviceID,
		[]models.EventStatus{models.EventStatusTriggered, models.EventStatusSuppressed})
	if err != nil {
		return 0, err
	}
	if recent != nil && now.Sub(recent.TS) < rule.Cooldown() {
		return 0, nil
	}

	latest, err := e.store.LatestReading(ctx, rule.UserID, deviceID)
	if err != nil {
		return 0, err
	}

	if rule.Kind == models.AlertKindOffline {
		window := rule.OfflineWindow()
		if latest == nil || now.Sub(latest.TS) > window {
			msg := fmt.Sprintf("Device offline (no reading within %ds)", int(window.Seconds()))
			return e.trigger(ctx, rule, deviceID, msg, nil)
		}
		return 0, nil
	}

	// threshold; anomaly deliberately shares this path until a distinct
	// detector exists
	if latest == nil || rule.Threshold == nil {
		return 0, nil
	}
	value := latest.MetricValue(rule.Metric)
	if value == nil {
		return 0, nil
	}
	if !compare(*value, rule.Comparison, *rule.Threshold) {
		return 0, nil
	}

	msg := fmt.Sprintf("%s %s %g", rule.Metric, rule.Comparison, *rule.Threshold)
	return e.trigger(ctx, rule, deviceID, msg, value)
}

// trigger appends a triggered event, taking the pair's cooldown lock
// first so a concurrent pass inside the same window backs off
func (e *Engine) trigger(ctx context.Context, rule *models.AlertRule, deviceID, message string, value *float64) (int, error) {
	if rule.CooldownSeconds > 0 {
		ok, err := e.locker.Acquire(ctx, rule.UserID, rule.ID, deviceID, rule.Cooldown())
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
	}

	ev := &models.AlertEvent{
		UserID:      rule.UserID,
		AlertID:     rule.ID,
		DeviceID:    deviceID,
		Message:     message,
		MetricValue: value,
	}
	if err := e.store.InsertTriggeredEvent(ctx, ev); err != nil {
		return 0, err
	}

	metrics.EventsTriggered.WithLabelValues(string(rule.Kind)).Inc()
	logger.Debug("alert triggered",
		zap.String("rule_id", rule.ID),
		zap.String("device_id", deviceID),
		zap.String("message", message))
	return 1, nil
}

// compare applies one of the six operators. eq and neq use exact float
// equality, matching the stored rule semantics.
func compare(value float64, op models.Comparison, threshold float64) bool {
	switch op {
	case models.ComparisonGT:
		return value > threshold
	case models.ComparisonGTE:
		return value >= threshold
	case models.ComparisonLT:
		return value < threshold
	case models.ComparisonLTE:
		return value <= threshold
	case models.ComparisonEQ:
		return value == threshold
	case models.ComparisonNEQ:
		return value != threshold
	}
	return false
}
