package models

import "time"

// AlertKind selects the evaluation strategy for a rule
type AlertKind string

const (
	AlertKindThreshold AlertKind = "threshold"
	AlertKindAnomaly   AlertKind = "anomaly"
	AlertKindOffline   AlertKind = "offline"
)

// Comparison is the operator applied between a metric value and a threshold
type Comparison string

const (
	ComparisonGT  Comparison = "gt"
	ComparisonGTE Comparison = "gte"
	ComparisonLT  Comparison = "lt"
	ComparisonLTE Comparison = "lte"
	ComparisonEQ  Comparison = "eq"
	ComparisonNEQ Comparison = "neq"
)

// Severity is informational only; it does not affect evaluation
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// EventStatus is the lifecycle state of an alert event
type EventStatus string

const (
	EventStatusTriggered    EventStatus = "triggered"
	EventStatusAcknowledged EventStatus = "acknowledged"
	EventStatusResolved     EventStatus = "resolved"
	EventStatusSuppressed   EventStatus = "suppressed"
)

// DefaultOfflineWindowSeconds applies when an offline rule has no window
const DefaultOfflineWindowSeconds = 900

// User represents an account row
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    *string    `json:"full_name"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// Device represents a metering device owned by a user
type Device struct {
	ID               string    `json:"id"`
	UserID           string    `json:"-"`
	Name             string    `json:"name"`
	Location         *string   `json:"location"`
	Model            *string   `json:"model"`
	Manufacturer     *string   `json:"manufacturer"`
	SerialNumber     *string   `json:"serial_number"`
	ExternalDeviceID *string   `json:"external_device_id"`
	Timezone         string    `json:"timezone"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Reading is a single timestamped telemetry sample for a device
type Reading struct {
	ID        int64     `json:"id"`
	DeviceID  string    `json:"device_id"`
	TS        time.Time `json:"ts"`
	PowerW    *float64  `json:"power_w"`
	VoltageV  *float64  `json:"voltage_v"`
	CurrentA  *float64  `json:"current_a"`
	EnergyWh  *float64  `json:"energy_wh"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// MetricValue resolves a metric name against the reading's fields.
// Unknown names and absent fields both return nil.
func (r *Reading) MetricValue(metric string) *float64 {
	switch metric {
	case "power_w":
		return r.PowerW
	case "voltage_v":
		return r.VoltageV
	case "current_a":
		return r.CurrentA
	case "energy_wh":
		return r.EnergyWh
	}
	return nil
}

// AlertRule is a stored alert definition evaluated against telemetry.
// DeviceID nil means the rule applies to every active device of the owner.
type AlertRule struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	DeviceID        *string    `json:"device_id"`
	Name            string     `json:"name"`
	Kind            AlertKind  `json:"alert_type"`
	Metric          string     `json:"metric"`
	Comparison      Comparison `json:"comparison"`
	Threshold       *float64   `json:"threshold"`
	WindowSeconds   *int       `json:"window_seconds"`
	Severity        Severity   `json:"severity"`
	IsEnabled       bool       `json:"is_enabled"`
	CooldownSeconds int        `json:"cooldown_seconds"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OfflineWindow returns the staleness window for an offline rule
func (r *AlertRule) OfflineWindow() time.Duration {
	secs := DefaultOfflineWindowSeconds
	if r.WindowSeconds != nil && *r.WindowSeconds > 0 {
		secs = *r.WindowSeconds
	}
	return time.Duration(secs) * time.Second
}

// Cooldown returns the suppression window between triggers for one rule+device pair
func (r *AlertRule) Cooldown() time.Duration {
	return time.Duration(r.CooldownSeconds) * time.Second
}

// AlertEvent is one append-only entry in the alert event log
type AlertEvent struct {
	ID             int64       `json:"id"`
	UserID         string      `json:"user_id"`
	AlertID        string      `json:"alert_id"`
	DeviceID       string      `json:"device_id"`
	TS             time.Time   `json:"ts"`
	Status         EventStatus `json:"status"`
	Message        string      `json:"message"`
	MetricValue    *float64    `json:"metric_value"`
	AcknowledgedAt *time.Time  `json:"acknowledged_at"`
	ResolvedAt     *time.Time  `json:"resolved_at"`
	CreatedAt      time.Time   `json:"created_at"`
}

// AlertRuleUpdate carries a partial rule update. Only non-nil fields are
// written; Changes lists them as column/value pairs in a fixed order so
// the repository can build the SET clause without reflection.
// ClearDevice widens the rule to all devices (device_id set to NULL).
type AlertRuleUpdate struct {
	Name            *string     `json:"name"`
	Kind            *AlertKind  `json:"alert_type"`
	DeviceID        *string     `json:"device_id"`
	ClearDevice     bool        `json:"clear_device"`
	Metric          *string     `json:"metric"`
	Comparison      *Comparison `json:"comparison"`
	Threshold       *float64    `json:"threshold"`
	WindowSeconds   *int        `json:"window_seconds"`
	Severity        *Severity   `json:"severity"`
	IsEnabled       *bool       `json:"is_enabled"`
	CooldownSeconds *int        `json:"cooldown_seconds"`
}

// Changes returns the changed columns and their values
func (u *AlertRuleUpdate) Changes() ([]string, []any) {
	var cols []string
	var vals []any
	if u.Name != nil {
		cols, vals = append(cols, "name"), append(vals, *u.Name)
	}
	if u.Kind != nil {
		cols, vals = append(cols, "alert_type"), append(vals, *u.Kind)
	}
	if u.DeviceID != nil {
		cols, vals = append(cols, "device_id"), append(vals, *u.DeviceID)
	} else if u.ClearDevice {
		cols, vals = append(cols, "device_id"), append(vals, nil)
	}
	if u.Metric != nil {
		cols, vals = append(cols, "metric"), append(vals, *u.Metric)
	}
	if u.Comparison != nil {
		cols, vals = append(cols, "comparison"), append(vals, *u.Comparison)
	}
	if u.Threshold != nil {
		cols, vals = append(cols, "threshold"), append(vals, *u.Threshold)
	}
	if u.WindowSeconds != nil {
		cols, vals = append(cols, "window_seconds"), append(vals, *u.WindowSeconds)
	}
	if u.Severity != nil {
		cols, vals = append(cols, "severity"), append(vals, *u.Severity)
	}
	if u.IsEnabled != nil {
		cols, vals = append(cols, "is_enabled"), append(vals, *u.IsEnabled)
	}
	if u.CooldownSeconds != nil {
		cols, vals = append(cols, "cooldown_seconds"), append(vals, *u.CooldownSeconds)
	}
	return cols, vals
}

// DeviceUpdate carries a partial device update, same contract as AlertRuleUpdate
type DeviceUpdate struct {
	Name             *string `json:"name"`
	Location         *string `json:"location"`
	Model            *string `json:"model"`
	Manufacturer     *string `json:"manufacturer"`
	SerialNumber     *string `json:"serial_number"`
	ExternalDeviceID *string `json:"external_device_id"`
	Timezone         *string `json:"timezone"`
	IsActive         *bool   `json:"is_active"`
}

// Changes returns the changed columns and their values
func (u *DeviceUpdate) Changes() ([]string, []any) {
	var cols []string
	var vals []any
	if u.Name != nil {
		cols, vals = append(cols, "name"), append(vals, *u.Name)
	}
	if u.Location != nil {
		cols, vals = append(cols, "location"), append(vals, *u.Location)
	}
	if u.Model != nil {
		cols, vals = append(cols, "model"), append(vals, *u.Model)
	}
	if u.Manufacturer != nil {
		cols, vals = append(cols, "manufacturer"), append(vals, *u.Manufacturer)
	}
	if u.SerialNumber != nil {
		cols, vals = append(cols, "serial_number"), append(vals, *u.SerialNumber)
	}
	if u.ExternalDeviceID != nil {
		cols, vals = append(cols, "external_device_id"), append(vals, *u.ExternalDeviceID)
	}
	if u.Timezone != nil {
		cols, vals = append(cols, "timezone"), append(vals, *u.Timezone)
	}
	if u.IsActive != nil {
		cols, vals = append(cols, "is_active"), append(vals, *u.IsActive)
	}
	return cols, vals
}

// ValidKind reports whether k is one of the supported alert kinds
func ValidKind(k AlertKind) bool {
	switch k {
	case AlertKindThreshold, AlertKindAnomaly, AlertKindOffline:
		return true
	}
	return false
}

// ValidComparison reports whether c is one of the six supported operators
func ValidComparison(c Comparison) bool {
	switch c {
	case ComparisonGT, ComparisonGTE, ComparisonLT, ComparisonLTE, ComparisonEQ, ComparisonNEQ:
		return true
	}
	return false
}

// ValidSeverity reports whether s is a known severity
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
