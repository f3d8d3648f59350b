// Package mqtt mirrors station telemetry, event-log entries and lifecycle
// events to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/plant-station/internal/eventlog"
	"github.com/sweeney/plant-station/internal/sensor"
)

// TopicPrefix is the root of every topic published by the station.
const TopicPrefix = "plant-station"

// TelemetryTopic is where sensor snapshots are published, one per upload.
func TelemetryTopic(deviceID string) string {
	return TopicPrefix + "/" + deviceID + "/telemetry"
}

// EventsTopic is where event-log entries are published.
func EventsTopic(deviceID string) string {
	return TopicPrefix + "/" + deviceID + "/events"
}

// SystemTopic is where lifecycle events are published.
func SystemTopic(deviceID string) string {
	return TopicPrefix + "/" + deviceID + "/system"
}

// Publisher publishes station data to MQTT.
// Errors are reported to the caller and must not stop the station.
type Publisher interface {
	// PublishTelemetry sends the snapshot that accompanied an upload.
	PublishTelemetry(t Telemetry) error

	// PublishEvent sends an event-log entry.
	PublishEvent(e eventlog.Entry) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Telemetry is one upload's worth of data.
type Telemetry struct {
	Timestamp time.Time
	Snapshot  sensor.Snapshot
	FanOn     bool
	Trigger   eventlog.EventType
	// Status is the HTTP status of the upload, 0 if it never completed.
	Status    int
	RequestID string
}

// SystemEvent is a lifecycle event such as STARTUP or SHUTDOWN.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // "STARTUP", "SHUTDOWN", "OFFLINE"
	Reason     string // signal name, shutdown only
	RawPayload []byte // pre-formatted JSON; returned as is by FormatSystemPayload
	Retained   bool
}

type telemetryPayload struct {
	Telemetry telemetryInner `json:"telemetry"`
}

type telemetryInner struct {
	Timestamp    string  `json:"timestamp"`
	Trigger      string  `json:"trigger"`
	Proximity    uint16  `json:"proximity"`
	AmbientLight uint16  `json:"ambient_light"`
	WhiteLight   uint16  `json:"white_light"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	Fan          string  `json:"fan"`
	UploadStatus int     `json:"upload_status"`
	RequestID    string  `json:"request_id,omitempty"`
}

// FormatTelemetry creates the JSON payload for a telemetry message.
func FormatTelemetry(t Telemetry) ([]byte, error) {
	trigger, err := t.Trigger.MarshalText()
	if err != nil {
		return nil, err
	}
	fan := "OFF"
	if t.FanOn {
		fan = "ON"
	}
	s := t.Snapshot
	return json.Marshal(telemetryPayload{Telemetry: telemetryInner{
		Timestamp:    t.Timestamp.UTC().Format(time.RFC3339),
		Trigger:      string(trigger),
		Proximity:    s.Proximity,
		AmbientLight: s.AmbientLight,
		WhiteLight:   s.WhiteLight,
		Temperature:  s.Temperature,
		Humidity:     s.Humidity,
		Fan:          fan,
		UploadStatus: t.Status,
		RequestID:    t.RequestID,
	}})
}

type eventPayload struct {
	Event eventInner `json:"event"`
}

type eventInner struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// FormatEvent creates the JSON payload for an event-log entry.
func FormatEvent(e eventlog.Entry) ([]byte, error) {
	typ, err := e.Type.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventPayload{Event: eventInner{
		Timestamp: time.Unix(e.Time, 0).UTC().Format(time.RFC3339),
		Type:      string(typ),
	}})
}

type systemPayload struct {
	System systemInner `json:"system"`
}

type systemInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(systemPayload{System: systemInner{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     event.Event,
		Reason:    event.Reason,
	}})
}
