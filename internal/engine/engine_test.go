package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"energymon/internal/models"
)

type fakeStore struct {
	rules    map[string][]models.AlertRule
	devices  map[string][]models.Device
	readings map[string]*models.Reading
	events   []models.AlertEvent
	nextID   int64
	now      func() time.Time

	listDevicesErr error
	latestErr      error
	insertErr      error
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		rules:    map[string][]models.AlertRule{},
		devices:  map[string][]models.Device{},
		readings: map[string]*models.Reading{},
		now:      now,
	}
}

func (s *fakeStore) ListEnabledRules(_ context.Context, ownerID string) ([]models.AlertRule, error) {
	var out []models.AlertRule
	for _, r := range s.rules[ownerID] {
		if r.IsEnabled {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) ListActiveDevices(_ context.Context, ownerID string) ([]models.Device, error) {
	if s.listDevicesErr != nil {
		return nil, s.listDevicesErr
	}
	var out []models.Device
	for _, d := range s.devices[ownerID] {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeStore) LatestReading(_ context.Context, ownerID, deviceID string) (*models.Reading, error) {
	if s.latestErr != nil {
		return nil, s.latestErr
	}
	return s.readings[ownerID+"/"+deviceID], nil
}

func (s *fakeStore) MostRecentEvent(_ context.Context, ownerID, alertID, deviceID string, statuses []models.EventStatus) (*models.AlertEvent, error) {
	var latest *models.AlertEvent
	for i := range s.events {
		e := &s.events[i]
		if e.UserID != ownerID || e.AlertID != alertID || e.DeviceID != deviceID {
			continue
		}
		match := false
		for _, st := range statuses {
			if e.Status == st {
				match = true
			}
		}
		if !match {
			continue
		}
		if latest == nil || e.TS.After(latest.TS) {
			latest = e
		}
	}
	return latest, nil
}

func (s *fakeStore) InsertTriggeredEvent(_ context.Context, ev *models.AlertEvent) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.nextID++
	ev.ID = s.nextID
	ev.Status = models.EventStatusTriggered
	ev.TS = s.now()
	ev.CreatedAt = ev.TS
	s.events = append(s.events, *ev)
	return nil
}

type fakeLocker struct {
	allow bool
	calls int
}

func (l *fakeLocker) Acquire(_ context.Context, _, _, _ string, _ time.Duration) (bool, error) {
	l.calls++
	return l.allow, nil
}

type clock struct{ t time.Time }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *clock) now() time.Time          { return c.t }

func ptr[T any](v T) *T { return &v }

func newTestEngine(store *fakeStore, locker CooldownLocker, clk *clock) *Engine {
	e := NewEngine(store, locker)
	e.now = clk.now
	return e
}

func thresholdRule(owner, id string, deviceID *string, threshold float64, cooldown int) models.AlertRule {
	return models.AlertRule{
		ID:              id,
		UserID:          owner,
		DeviceID:        deviceID,
		Name:            "rule-" + id,
		Kind:            models.AlertKindThreshold,
		Metric:          "power_w",
		Comparison:      models.ComparisonGT,
		Threshold:       ptr(threshold),
		Severity:        models.SeverityMedium,
		IsEnabled:       true,
		CooldownSeconds: cooldown,
	}
}

func TestCompareOperators(t *testing.T) {
	cases := []struct {
		value     float64
		op        models.Comparison
		threshold float64
		want      bool
	}{
		{1500, models.ComparisonGT, 1000, true},
		{1000, models.ComparisonGT, 1000, false},
		{1000, models.ComparisonGTE, 1000, true},
		{999, models.ComparisonGTE, 1000, false},
		{5, models.ComparisonLT, 10, true},
		{10, models.ComparisonLT, 10, false},
		{10, models.ComparisonLTE, 10, true},
		{11, models.ComparisonLTE, 10, false},
		{10, models.ComparisonEQ, 10, true},
		{10.000001, models.ComparisonEQ, 10, false},
		{10.000001, models.ComparisonNEQ, 10, true},
		{10, models.ComparisonNEQ, 10, false},
		{10, models.Comparison("between"), 10, false},
	}
	for _, tc := range cases {
		got := compare(tc.value, tc.op, tc.threshold)
		if got != tc.want {
			t.Errorf("compare(%v, %s, %v) = %v, want %v", tc.value, tc.op, tc.threshold, got, tc.want)
		}
		// pure: a second call with the same inputs must agree
		if compare(tc.value, tc.op, tc.threshold) != got {
			t.Errorf("compare(%v, %s, %v) not deterministic", tc.value, tc.op, tc.threshold)
		}
	}
}

func TestThresholdTriggerAndCooldown(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	dev := "dev-1"
	store.rules["owner-a"] = []models.AlertRule{thresholdRule("owner-a", "rule-1", &dev, 1000, 300)}
	store.readings["owner-a/dev-1"] = &models.Reading{DeviceID: dev, TS: t0, PowerW: ptr(1500.0)}
	eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

	clk.advance(1 * time.Second)
	n, err := eng.EvaluateAlerts(context.Background(), "owner-a")
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if n != 1 {
		t.Fatalf("first pass triggered %d events, want 1", n)
	}
	ev := store.events[0]
	if ev.Message != "power_w gt 1000" {
		t.Errorf("message = %q, want %q", ev.Message, "power_w gt 1000")
	}
	if ev.MetricValue == nil || *ev.MetricValue != 1500 {
		t.Errorf("metric value = %v, want 1500", ev.MetricValue)
	}
	if ev.Status != models.EventStatusTriggered {
		t.Errorf("status = %s, want triggered", ev.Status)
	}

	// t0+100s: inside the 300s cooldown, hard suppression
	clk.advance(99 * time.Second)
	n, err = eng.EvaluateAlerts(context.Background(), "owner-a")
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if n != 0 {
		t.Fatalf("second pass triggered %d events, want 0", n)
	}

	// t0+400s: cooldown expired, fires again
	clk.advance(300 * time.Second)
	n, err = eng.EvaluateAlerts(context.Background(), "owner-a")
	if err != nil {
		t.Fatalf("third pass: %v", err)
	}
	if n != 1 {
		t.Fatalf("third pass triggered %d events, want 1", n)
	}
	if len(store.events) != 2 {
		t.Fatalf("event log holds %d events, want 2", len(store.events))
	}
}

func TestThresholdSkipsWithoutData(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dev := "dev-1"

	cases := []struct {
		name    string
		rule    func() models.AlertRule
		reading *models.Reading
	}{
		{
			name:    "no reading",
			rule:    func() models.AlertRule { return thresholdRule("o", "r", &dev, 100, 0) },
			reading: nil,
		},
		{
			name: "nil threshold",
			rule: func() models.AlertRule {
				r := thresholdRule("o", "r", &dev, 0, 0)
				r.Threshold = nil
				return r
			},
			reading: &models.Reading{DeviceID: dev, TS: t0, PowerW: ptr(500.0)},
		},
		{
			name:    "metric field absent",
			rule:    func() models.AlertRule { return thresholdRule("o", "r", &dev, 100, 0) },
			reading: &models.Reading{DeviceID: dev, TS: t0, VoltageV: ptr(230.0)},
		},
		{
			name: "unknown metric name",
			rule: func() models.AlertRule {
				r := thresholdRule("o", "r", &dev, 100, 0)
				r.Metric = "frequency_hz"
				return r
			},
			reading: &models.Reading{DeviceID: dev, TS: t0, PowerW: ptr(500.0)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clk := &clock{t: t0.Add(time.Second)}
			store := newFakeStore(clk.now)
			store.rules["o"] = []models.AlertRule{tc.rule()}
			if tc.reading != nil {
				store.readings["o/dev-1"] = tc.reading
			}
			eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

			n, err := eng.EvaluateAlerts(context.Background(), "o")
			if err != nil {
				t.Fatalf("pass returned error: %v", err)
			}
			if n != 0 || len(store.events) != 0 {
				t.Fatalf("triggered %d events (%d logged), want silent skip", n, len(store.events))
			}
		})
	}
}

func TestOfflineDetection(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dev := "dev-1"
	offlineRule := models.AlertRule{
		ID: "rule-off", UserID: "o", DeviceID: &dev, Name: "offline",
		Kind: models.AlertKindOffline, Metric: "power_w", Comparison: models.ComparisonGT,
		Severity: models.SeverityHigh, IsEnabled: true, CooldownSeconds: 0,
	}

	t.Run("no reading ever", func(t *testing.T) {
		clk := &clock{t: t0}
		store := newFakeStore(clk.now)
		store.rules["o"] = []models.AlertRule{offlineRule}
		eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

		n, err := eng.EvaluateAlerts(context.Background(), "o")
		if err != nil {
			t.Fatalf("pass: %v", err)
		}
		if n != 1 {
			t.Fatalf("triggered %d, want 1", n)
		}
		if store.events[0].Message != "Device offline (no reading within 900s)" {
			t.Errorf("message = %q", store.events[0].Message)
		}
		if store.events[0].MetricValue != nil {
			t.Errorf("offline event carries metric value %v, want none", *store.events[0].MetricValue)
		}
	})

	t.Run("stale reading past default window", func(t *testing.T) {
		clk := &clock{t: t0.Add(901 * time.Second)}
		store := newFakeStore(clk.now)
		store.rules["o"] = []models.AlertRule{offlineRule}
		store.readings["o/dev-1"] = &models.Reading{DeviceID: dev, TS: t0}
		eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

		n, err := eng.EvaluateAlerts(context.Background(), "o")
		if err != nil {
			t.Fatalf("pass: %v", err)
		}
		if n != 1 {
			t.Fatalf("triggered %d, want 1", n)
		}
	})

	t.Run("fresh reading inside window", func(t *testing.T) {
		clk := &clock{t: t0.Add(899 * time.Second)}
		store := newFakeStore(clk.now)
		store.rules["o"] = []models.AlertRule{offlineRule}
		store.readings["o/dev-1"] = &models.Reading{DeviceID: dev, TS: t0}
		eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

		n, err := eng.EvaluateAlerts(context.Background(), "o")
		if err != nil {
			t.Fatalf("pass: %v", err)
		}
		if n != 0 {
			t.Fatalf("triggered %d, want 0", n)
		}
	})

	t.Run("custom window", func(t *testing.T) {
		rule := offlineRule
		rule.WindowSeconds = ptr(60)
		clk := &clock{t: t0.Add(61 * time.Second)}
		store := newFakeStore(clk.now)
		store.rules["o"] = []models.AlertRule{rule}
		store.readings["o/dev-1"] = &models.Reading{DeviceID: dev, TS: t0}
		eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

		n, err := eng.EvaluateAlerts(context.Background(), "o")
		if err != nil {
			t.Fatalf("pass: %v", err)
		}
		if n != 1 {
			t.Fatalf("triggered %d, want 1", n)
		}
		if store.events[0].Message != "Device offline (no reading within 60s)" {
			t.Errorf("message = %q", store.events[0].Message)
		}
	})
}

func TestUnscopedRuleFansOutOverActiveDevices(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	store.rules["o"] = []models.AlertRule{thresholdRule("o", "rule-1", nil, 1000, 300)}
	store.devices["o"] = []models.Device{
		{ID: "dev-1", UserID: "o", IsActive: true},
		{ID: "dev-2", UserID: "o", IsActive: true},
		{ID: "dev-3", UserID: "o", IsActive: false},
	}
	store.readings["o/dev-1"] = &models.Reading{DeviceID: "dev-1", TS: t0, PowerW: ptr(1500.0)}
	store.readings["o/dev-2"] = &models.Reading{DeviceID: "dev-2", TS: t0, PowerW: ptr(2500.0)}
	store.readings["o/dev-3"] = &models.Reading{DeviceID: "dev-3", TS: t0, PowerW: ptr(9000.0)}
	eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

	n, err := eng.EvaluateAlerts(context.Background(), "o")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if n != 2 {
		t.Fatalf("triggered %d, want 2 (inactive device excluded)", n)
	}

	// each pair carries its own cooldown state: expire only dev-1's window
	store.events[1].TS = t0.Add(-400 * time.Second) // dev-2 stays recent
	clk.advance(350 * time.Second)
	n, err = eng.EvaluateAlerts(context.Background(), "o")
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if n != 2 {
		// both windows expired after 350s on the original timestamps;
		// the rewritten dev-2 timestamp stays outside the window too
		t.Fatalf("second pass triggered %d, want 2", n)
	}
}

func TestPerDeviceCooldownIndependence(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	store.rules["o"] = []models.AlertRule{thresholdRule("o", "rule-1", nil, 1000, 300)}
	store.devices["o"] = []models.Device{
		{ID: "dev-1", UserID: "o", IsActive: true},
		{ID: "dev-2", UserID: "o", IsActive: true},
	}
	store.readings["o/dev-1"] = &models.Reading{DeviceID: "dev-1", TS: t0, PowerW: ptr(1500.0)}
	store.readings["o/dev-2"] = &models.Reading{DeviceID: "dev-2", TS: t0, PowerW: ptr(2500.0)}
	// dev-1 fired 100s ago, dev-2 never fired
	store.events = append(store.events, models.AlertEvent{
		ID: 1, UserID: "o", AlertID: "rule-1", DeviceID: "dev-1",
		TS: t0.Add(-100 * time.Second), Status: models.EventStatusTriggered,
	})
	store.nextID = 1
	eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

	n, err := eng.EvaluateAlerts(context.Background(), "o")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if n != 1 {
		t.Fatalf("triggered %d, want 1 (dev-1 suppressed, dev-2 fires)", n)
	}
	last := store.events[len(store.events)-1]
	if last.DeviceID != "dev-2" {
		t.Fatalf("fired for %s, want dev-2", last.DeviceID)
	}
}

func TestAnomalyDelegatesToThreshold(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	dev := "dev-1"
	rule := thresholdRule("o", "rule-1", &dev, 1000, 0)
	rule.Kind = models.AlertKindAnomaly
	store.rules["o"] = []models.AlertRule{rule}
	store.readings["o/dev-1"] = &models.Reading{DeviceID: dev, TS: t0, PowerW: ptr(1500.0)}
	eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

	n, err := eng.EvaluateAlerts(context.Background(), "o")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if n != 1 {
		t.Fatalf("triggered %d, want 1", n)
	}
	if store.events[0].Message != "power_w gt 1000" {
		t.Errorf("message = %q", store.events[0].Message)
	}
}

func TestLockDenialSuppressesInsert(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	dev := "dev-1"
	store.rules["o"] = []models.AlertRule{thresholdRule("o", "rule-1", &dev, 1000, 300)}
	store.readings["o/dev-1"] = &models.Reading{DeviceID: dev, TS: t0, PowerW: ptr(1500.0)}
	locker := &fakeLocker{allow: false}
	eng := newTestEngine(store, locker, clk)

	n, err := eng.EvaluateAlerts(context.Background(), "o")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if n != 0 || len(store.events) != 0 {
		t.Fatalf("lock denial still inserted (%d counted, %d logged)", n, len(store.events))
	}
	if locker.calls != 1 {
		t.Fatalf("locker called %d times, want 1", locker.calls)
	}
}

func TestZeroCooldownSkipsLock(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	dev := "dev-1"
	store.rules["o"] = []models.AlertRule{thresholdRule("o", "rule-1", &dev, 1000, 0)}
	store.readings["o/dev-1"] = &models.Reading{DeviceID: dev, TS: t0, PowerW: ptr(1500.0)}
	locker := &fakeLocker{allow: false}
	eng := newTestEngine(store, locker, clk)

	n, err := eng.EvaluateAlerts(context.Background(), "o")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if n != 1 {
		t.Fatalf("triggered %d, want 1 (no suppression window exists)", n)
	}
	if locker.calls != 0 {
		t.Fatalf("locker called %d times, want 0", locker.calls)
	}
}

func TestFailFastOnStoreError(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("device list failure", func(t *testing.T) {
		clk := &clock{t: t0}
		store := newFakeStore(clk.now)
		store.rules["o"] = []models.AlertRule{thresholdRule("o", "rule-1", nil, 1000, 0)}
		store.listDevicesErr = errors.New("connection refused")
		eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

		n, err := eng.EvaluateAlerts(context.Background(), "o")
		if err == nil {
			t.Fatal("pass succeeded, want propagated store error")
		}
		if n != 0 {
			t.Fatalf("partial count %d reported alongside error", n)
		}
	})

	t.Run("reading lookup failure aborts whole pass", func(t *testing.T) {
		clk := &clock{t: t0}
		store := newFakeStore(clk.now)
		d1, d2 := "dev-1", "dev-2"
		store.rules["o"] = []models.AlertRule{
			thresholdRule("o", "rule-1", &d1, 1000, 0),
			thresholdRule("o", "rule-2", &d2, 1000, 0),
		}
		store.readings["o/dev-1"] = &models.Reading{DeviceID: d1, TS: t0, PowerW: ptr(1500.0)}
		store.latestErr = errors.New("timeout")
		eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

		n, err := eng.EvaluateAlerts(context.Background(), "o")
		if err == nil {
			t.Fatal("pass succeeded, want propagated store error")
		}
		if n != 0 {
			t.Fatalf("partial count %d reported alongside error", n)
		}
	})
}

func TestOwnerIsolation(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	// both owners use the same device identifier and rule names
	store.rules["owner-a"] = []models.AlertRule{thresholdRule("owner-a", "rule-a", nil, 1000, 0)}
	store.rules["owner-b"] = []models.AlertRule{thresholdRule("owner-b", "rule-b", nil, 1000, 0)}
	store.devices["owner-a"] = []models.Device{{ID: "dev-1", UserID: "owner-a", IsActive: true}}
	store.devices["owner-b"] = []models.Device{{ID: "dev-1", UserID: "owner-b", IsActive: true}}
	store.readings["owner-a/dev-1"] = &models.Reading{DeviceID: "dev-1", TS: t0, PowerW: ptr(1500.0)}
	store.readings["owner-b/dev-1"] = &models.Reading{DeviceID: "dev-1", TS: t0, PowerW: ptr(500.0)}
	eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

	n, err := eng.EvaluateAlerts(context.Background(), "owner-a")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if n != 1 {
		t.Fatalf("owner-a triggered %d, want 1", n)
	}
	for _, ev := range store.events {
		if ev.UserID != "owner-a" {
			t.Fatalf("event written for %s during owner-a pass", ev.UserID)
		}
	}

	// owner-b's reading is below threshold, nothing fires
	n, err = eng.EvaluateAlerts(context.Background(), "owner-b")
	if err != nil {
		t.Fatalf("owner-b pass: %v", err)
	}
	if n != 0 {
		t.Fatalf("owner-b triggered %d, want 0", n)
	}
}

func TestScopedRuleTargetsOnlyItsDevice(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	dev := "dev-1"
	store.rules["o"] = []models.AlertRule{thresholdRule("o", "rule-1", &dev, 1000, 0)}
	// a second active device that would also exceed the threshold
	store.devices["o"] = []models.Device{
		{ID: "dev-1", UserID: "o", IsActive: true},
		{ID: "dev-2", UserID: "o", IsActive: true},
	}
	store.readings["o/dev-1"] = &models.Reading{DeviceID: "dev-1", TS: t0, PowerW: ptr(1500.0)}
	store.readings["o/dev-2"] = &models.Reading{DeviceID: "dev-2", TS: t0, PowerW: ptr(1500.0)}
	eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

	n, err := eng.EvaluateAlerts(context.Background(), "o")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if n != 1 {
		t.Fatalf("triggered %d, want 1", n)
	}
	if store.events[0].DeviceID != "dev-1" {
		t.Fatalf("fired for %s, want dev-1", store.events[0].DeviceID)
	}
}

func TestDisabledRulesAreIgnored(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	dev := "dev-1"
	rule := thresholdRule("o", "rule-1", &dev, 1000, 0)
	rule.IsEnabled = false
	store.rules["o"] = []models.AlertRule{rule}
	store.readings["o/dev-1"] = &models.Reading{DeviceID: dev, TS: t0, PowerW: ptr(1500.0)}
	eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

	n, err := eng.EvaluateAlerts(context.Background(), "o")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if n != 0 {
		t.Fatalf("triggered %d from a disabled rule, want 0", n)
	}
}

func TestSuppressedEventExtendsCooldown(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	dev := "dev-1"
	store.rules["o"] = []models.AlertRule{thresholdRule("o", "rule-1", &dev, 1000, 300)}
	store.readings["o/dev-1"] = &models.Reading{DeviceID: dev, TS: t0, PowerW: ptr(1500.0)}
	// a suppressed event counts toward the cooldown window just like a
	// triggered one
	store.events = append(store.events, models.AlertEvent{
		ID: 1, UserID: "o", AlertID: "rule-1", DeviceID: dev,
		TS: t0.Add(-100 * time.Second), Status: models.EventStatusSuppressed,
	})
	store.nextID = 1
	eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

	n, err := eng.EvaluateAlerts(context.Background(), "o")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if n != 0 {
		t.Fatalf("triggered %d inside suppressed-event cooldown, want 0", n)
	}
}

func TestEvaluationMessageUsesRuleThresholdFormatting(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: t0}
	store := newFakeStore(clk.now)
	dev := "dev-1"
	rule := thresholdRule("o", "rule-1", &dev, 12.5, 0)
	rule.Metric = "voltage_v"
	rule.Comparison = models.ComparisonLT
	store.rules["o"] = []models.AlertRule{rule}
	store.readings["o/dev-1"] = &models.Reading{DeviceID: dev, TS: t0, VoltageV: ptr(11.0)}
	eng := newTestEngine(store, &fakeLocker{allow: true}, clk)

	n, err := eng.EvaluateAlerts(context.Background(), "o")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if n != 1 {
		t.Fatalf("triggered %d, want 1", n)
	}
	want := fmt.Sprintf("voltage_v lt %g", 12.5)
	if store.events[0].Message != want {
		t.Errorf("message = %q, want %q", store.events[0].Message, want)
	}
}
