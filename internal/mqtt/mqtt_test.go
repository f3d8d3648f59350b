package mqtt

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/plant-station/internal/eventlog"
	"github.com/sweeney/plant-station/internal/sensor"
)

var testTime = time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"telemetry", TelemetryTopic("user_1"), "plant-station/user_1/telemetry"},
		{"events", EventsTopic("user_1"), "plant-station/user_1/events"},
		{"system", SystemTopic("user_1"), "plant-station/user_1/system"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestFormatTelemetryExactJSON(t *testing.T) {
	payload, err := FormatTelemetry(Telemetry{
		Timestamp: testTime,
		Snapshot:  sensor.Snapshot{Proximity: 42, AmbientLight: 100, WhiteLight: 10, Temperature: 23.5, Humidity: 45.2},
		FanOn:     true,
		Trigger:   eventlog.Shake,
		Status:    200,
		RequestID: "abc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"telemetry":{"timestamp":"2026-02-02T22:18:12Z","trigger":"shake","proximity":42,"ambient_light":100,"white_light":10,"temperature":23.5,"humidity":45.2,"fan":"ON","upload_status":200,"request_id":"abc"}}`
	if string(payload) != want {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", payload, want)
	}
}

func TestFormatTelemetryFailedUpload(t *testing.T) {
	payload, err := FormatTelemetry(Telemetry{Timestamp: testTime, Trigger: eventlog.Regular})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"telemetry":{"timestamp":"2026-02-02T22:18:12Z","trigger":"regular","proximity":0,"ambient_light":0,"white_light":0,"temperature":0,"humidity":0,"fan":"OFF","upload_status":0}}`
	if string(payload) != want {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", payload, want)
	}
}

func TestFormatTelemetryUnknownTrigger(t *testing.T) {
	if _, err := FormatTelemetry(Telemetry{Trigger: eventlog.EventType(99)}); err == nil {
		t.Error("expected error for unknown trigger")
	}
}

func TestFormatEventExactJSON(t *testing.T) {
	payload, err := FormatEvent(eventlog.Entry{Time: 1770070692, Type: eventlog.CloudStateChange})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"event":{"timestamp":"2026-02-02T22:18:12Z","type":"cloud_state_change"}}`
	if string(payload) != want {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", payload, want)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: testTime,
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != want {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", payload, want)
	}
}

func TestFormatSystemPayloadOmitsReason(t *testing.T) {
	payload, _ := FormatSystemPayload(SystemEvent{Timestamp: testTime, Event: "STARTUP"})
	want := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"STARTUP"}}`
	if string(payload) != want {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", payload, want)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	pub := NewFakePublisher()

	if err := pub.PublishTelemetry(Telemetry{Timestamp: testTime, Trigger: eventlog.Shake}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pub.PublishEvent(eventlog.Entry{Time: 1, Type: eventlog.Shake}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pub.PublishSystem(SystemEvent{Timestamp: testTime, Event: "STARTUP"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pub.Telemetry) != 1 || len(pub.Events) != 1 || len(pub.SystemEvents) != 1 {
		t.Errorf("unexpected counts: telemetry=%d events=%d system=%d",
			len(pub.Telemetry), len(pub.Events), len(pub.SystemEvents))
	}
	if len(pub.SystemPayloads) != 1 {
		t.Errorf("expected 1 system payload, got %d", len(pub.SystemPayloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishError = errors.New("broker down")

	if err := pub.PublishTelemetry(Telemetry{}); err == nil {
		t.Error("expected telemetry error")
	}
	if err := pub.PublishEvent(eventlog.Entry{}); err == nil {
		t.Error("expected event error")
	}
	if len(pub.Telemetry) != 0 || len(pub.Events) != 0 {
		t.Error("failed publishes must not be recorded")
	}
}

func TestFakePublisherClose(t *testing.T) {
	pub := NewFakePublisher()
	if err := pub.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pub.Closed {
		t.Error("expected Closed to be true")
	}
}
