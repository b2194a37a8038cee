package ingest

import "testing"

func TestParseDeviceID(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"devices/abc-123/readings", "abc-123"},
		{"devices//readings", ""},
		{"devices/abc-123/state", ""},
		{"sensors/abc-123/readings", ""},
		{"devices/abc-123/readings/extra", ""},
		{"devices/abc-123", ""},
	}
	for _, tc := range cases {
		if got := parseDeviceID(tc.topic); got != tc.want {
			t.Errorf("parseDeviceID(%q) = %q, want %q", tc.topic, got, tc.want)
		}
	}
}
