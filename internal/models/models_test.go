package models

import (
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func TestReadingMetricValue(t *testing.T) {
	r := Reading{
		PowerW:   fp(1500),
		VoltageV: fp(230),
		CurrentA: fp(6.5),
	}

	cases := []struct {
		metric string
		want   *float64
	}{
		{"power_w", r.PowerW},
		{"voltage_v", r.VoltageV},
		{"current_a", r.CurrentA},
		{"energy_wh", nil},
		{"frequency_hz", nil},
		{"", nil},
	}
	for _, tc := range cases {
		if got := r.MetricValue(tc.metric); got != tc.want {
			t.Errorf("MetricValue(%q) = %v, want %v", tc.metric, got, tc.want)
		}
	}
}

func TestOfflineWindowDefault(t *testing.T) {
	r := AlertRule{Kind: AlertKindOffline}
	if got := r.OfflineWindow(); got != 900*time.Second {
		t.Errorf("default window = %v, want 900s", got)
	}

	w := 60
	r.WindowSeconds = &w
	if got := r.OfflineWindow(); got != 60*time.Second {
		t.Errorf("custom window = %v, want 60s", got)
	}

	zero := 0
	r.WindowSeconds = &zero
	if got := r.OfflineWindow(); got != 900*time.Second {
		t.Errorf("zero window = %v, want default 900s", got)
	}
}

func TestAlertRuleUpdateChanges(t *testing.T) {
	name := "peak power"
	enabled := false
	upd := AlertRuleUpdate{Name: &name, IsEnabled: &enabled}

	cols, vals := upd.Changes()
	if len(cols) != 2 || len(vals) != 2 {
		t.Fatalf("changes = %v / %v, want exactly the two provided fields", cols, vals)
	}
	if cols[0] != "name" || vals[0] != "peak power" {
		t.Errorf("first change = %s=%v", cols[0], vals[0])
	}
	if cols[1] != "is_enabled" || vals[1] != false {
		t.Errorf("second change = %s=%v", cols[1], vals[1])
	}
}

func TestAlertRuleUpdateClearDevice(t *testing.T) {
	upd := AlertRuleUpdate{ClearDevice: true}
	cols, vals := upd.Changes()
	if len(cols) != 1 || cols[0] != "device_id" || vals[0] != nil {
		t.Fatalf("clear device changes = %v / %v, want device_id=nil", cols, vals)
	}

	// an explicit device wins over the clear flag
	dev := "dev-1"
	upd = AlertRuleUpdate{DeviceID: &dev, ClearDevice: true}
	cols, vals = upd.Changes()
	if len(cols) != 1 || vals[0] != "dev-1" {
		t.Fatalf("device + clear changes = %v / %v, want device_id=dev-1", cols, vals)
	}
}

func TestDeviceUpdateChanges(t *testing.T) {
	upd := DeviceUpdate{}
	if cols, _ := upd.Changes(); len(cols) != 0 {
		t.Fatalf("empty update produced columns %v", cols)
	}

	loc := "garage"
	active := true
	upd = DeviceUpdate{Location: &loc, IsActive: &active}
	cols, vals := upd.Changes()
	if len(cols) != 2 || cols[0] != "location" || cols[1] != "is_active" {
		t.Fatalf("changes = %v", cols)
	}
	if vals[0] != "garage" || vals[1] != true {
		t.Fatalf("values = %v", vals)
	}
}

func TestValidators(t *testing.T) {
	if !ValidKind(AlertKindOffline) || ValidKind("spike") {
		t.Error("kind validation mismatch")
	}
	if !ValidComparison(ComparisonNEQ) || ValidComparison("between") {
		t.Error("comparison validation mismatch")
	}
	if !ValidSeverity(SeverityCritical) || ValidSeverity("urgent") {
		t.Error("severity validation mismatch")
	}
}
