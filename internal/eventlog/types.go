package eventlog

import "fmt"

// EventType identifies why an upload happened.
type EventType int

const (
	Regular EventType = iota
	Shake
	CloudStateChange
)

var eventTypeNames = [...]string{
	Regular:          "regular",
	Shake:            "shake",
	CloudStateChange: "cloud_state_change",
}

// String returns the wire name of the event type.
func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return fmt.Sprintf("EventType(%d)", int(t))
	}
	return eventTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return nil, fmt.Errorf("eventlog: unknown event type %d", int(t))
	}
	return []byte(eventTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(b []byte) error {
	parsed, err := ParseEventType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseEventType maps a wire name back to its EventType.
func ParseEventType(s string) (EventType, error) {
	for i, name := range eventTypeNames {
		if name == s {
			return EventType(i), nil
		}
	}
	return 0, fmt.Errorf("eventlog: unknown event type %q", s)
}

// Entry is a single log record. Time is in epoch seconds.
type Entry struct {
	Time int64     `json:"time"`
	Type EventType `json:"type"`
}
