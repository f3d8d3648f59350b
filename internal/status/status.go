// Package status provides a thread-safe status tracker for the plant station.
// The scheduler writes it once per cycle; HTTP handlers and MQTT lifecycle
// events read it.
package status

import (
	"slices"
	"sync"
	"time"

	"github.com/sweeney/plant-station/internal/eventlog"
	"github.com/sweeney/plant-station/internal/sensor"
)

// NetworkInfo contains network state.
type NetworkInfo struct {
	Interface string
	IP        string
	Status    string
	Gateway   string
	SSID      string
}

// Config contains station configuration for display.
type Config struct {
	DeviceID         string
	UploadURL        string
	PollURL          string
	UploadIntervalMs int64
	PollIntervalMs   int64
	TickMs           int64
	DebounceMs       int64
	Broker           string
	HTTPAddr         string
}

// Counts tallies what the station has done since it started.
type Counts struct {
	Regular          int
	Shake            int
	CloudStateChange int
	UploadsOK        int
	UploadsFailed    int
	PollsOK          int
	PollsFailed      int
	FanToggles       int
}

// Record increments the tally for an event-log entry type.
func (c *Counts) Record(t eventlog.EventType) {
	switch t {
	case eventlog.Regular:
		c.Regular++
	case eventlog.Shake:
		c.Shake++
	case eventlog.CloudStateChange:
		c.CloudStateChange++
	}
}

// Upload describes the most recent upload attempt.
type Upload struct {
	Time      time.Time
	Trigger   eventlog.EventType
	Status    int
	RequestID string
	Err       string
}

// State is the part of the snapshot owned by the scheduler.
type State struct {
	Sensor    sensor.Snapshot
	FanOn     bool
	Baselined bool
	Remote    bool // last reconciled remote fan state
	Page      string
	Popup     string
	Entries   []eventlog.Entry // newest first
	Counts    Counts
	Upload    *Upload
}

// Snapshot is a point-in-time view of station state.
// It is a value type; safe to use after the lock is released.
type Snapshot struct {
	State
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the station started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable station state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update replaces the scheduler-owned state. Called once per cycle.
func (t *Tracker) Update(s State) {
	s.Entries = slices.Clone(s.Entries)
	if s.Upload != nil {
		u := *s.Upload
		s.Upload = &u
	}
	t.mu.Lock()
	t.snap.State = s
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the station state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
