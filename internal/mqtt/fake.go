package mqtt

import (
	"github.com/sweeney/plant-station/internal/eventlog"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Telemetry contains all telemetry that was published.
	Telemetry []Telemetry

	// Events contains all event-log entries that were published.
	Events []eventlog.Entry

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishTelemetry and PublishEvent.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishTelemetry records the telemetry.
func (f *FakePublisher) PublishTelemetry(t Telemetry) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	if _, err := FormatTelemetry(t); err != nil {
		return err
	}
	f.Telemetry = append(f.Telemetry, t)
	return nil
}

// PublishEvent records the entry.
func (f *FakePublisher) PublishEvent(e eventlog.Entry) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	if _, err := FormatEvent(e); err != nil {
		return err
	}
	f.Events = append(f.Events, e)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}
