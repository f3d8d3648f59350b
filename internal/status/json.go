package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	DeviceID      string       `json:"device_id"`
	Ready         bool         `json:"ready"`
	Fan           string       `json:"fan"`
	RemoteFan     string       `json:"remote_fan"`
	Page          string       `json:"page"`
	Popup         string       `json:"popup,omitempty"`
	Sensor        SensorJSON   `json:"sensor"`
	Events        []EntryJSON  `json:"events"`
	Counts        CountsJSON   `json:"event_counts"`
	LastUpload    *UploadJSON  `json:"last_upload,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        *ConfigJSON  `json:"config,omitempty"`
}

// SensorJSON is the JSON representation of the latest sensor snapshot.
type SensorJSON struct {
	Proximity    uint16  `json:"proximity"`
	AmbientLight uint16  `json:"ambient_light"`
	WhiteLight   uint16  `json:"white_light"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
}

// EntryJSON is one event-log entry.
type EntryJSON struct {
	Time string `json:"time"`
	Type string `json:"type"`
}

// CountsJSON is the JSON representation of the counters.
type CountsJSON struct {
	Regular          int `json:"regular"`
	Shake            int `json:"shake"`
	CloudStateChange int `json:"cloud_state_change"`
	UploadsOK        int `json:"uploads_ok"`
	UploadsFailed    int `json:"uploads_failed"`
	PollsOK          int `json:"polls_ok"`
	PollsFailed      int `json:"polls_failed"`
	FanToggles       int `json:"fan_toggles"`
}

// UploadJSON describes the last upload attempt.
type UploadJSON struct {
	Time      string `json:"time"`
	Trigger   string `json:"trigger"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id"`
	Error     string `json:"error,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Interface string `json:"interface"`
	IP        string `json:"ip"`
	Status    string `json:"status"`
	Gateway   string `json:"gateway"`
	SSID      string `json:"ssid"`
}

// ConfigJSON is the JSON representation of station config.
type ConfigJSON struct {
	UploadURL        string `json:"upload_url"`
	PollURL          string `json:"poll_url"`
	UploadIntervalMs int64  `json:"upload_interval_ms"`
	PollIntervalMs   int64  `json:"poll_interval_ms"`
	TickMs           int64  `json:"tick_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	s := snap.Sensor
	remote := "UNKNOWN"
	if snap.Baselined {
		remote = onOff(snap.Remote)
	}
	page := snap.Page
	if page == "" {
		page = "main"
	}

	inner := StatusInner{
		DeviceID:  snap.Config.DeviceID,
		Ready:     snap.Baselined,
		Fan:       onOff(snap.FanOn),
		RemoteFan: remote,
		Page:      page,
		Popup:     snap.Popup,
		Sensor: SensorJSON{
			Proximity:    s.Proximity,
			AmbientLight: s.AmbientLight,
			WhiteLight:   s.WhiteLight,
			Temperature:  s.Temperature,
			Humidity:     s.Humidity,
		},
		Events: make([]EntryJSON, 0, len(snap.Entries)),
		Counts: CountsJSON{
			Regular:          snap.Counts.Regular,
			Shake:            snap.Counts.Shake,
			CloudStateChange: snap.Counts.CloudStateChange,
			UploadsOK:        snap.Counts.UploadsOK,
			UploadsFailed:    snap.Counts.UploadsFailed,
			PollsOK:          snap.Counts.PollsOK,
			PollsFailed:      snap.Counts.PollsFailed,
			FanToggles:       snap.Counts.FanToggles,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
	}
	for _, e := range snap.Entries {
		inner.Events = append(inner.Events, EntryJSON{
			Time: time.Unix(e.Time, 0).UTC().Format(time.RFC3339),
			Type: e.Type.String(),
		})
	}
	if u := snap.Upload; u != nil {
		inner.LastUpload = &UploadJSON{
			Time:      u.Time.UTC().Format(time.RFC3339),
			Trigger:   u.Trigger.String(),
			Status:    u.Status,
			RequestID: u.RequestID,
			Error:     u.Err,
		}
	}
	if n := snap.Network; n != nil {
		inner.Network = &NetworkJSON{
			Interface: n.Interface,
			IP:        n.IP,
			Status:    n.Status,
			Gateway:   n.Gateway,
			SSID:      n.SSID,
		}
	}
	return inner
}

func buildConfig(snap Snapshot) *ConfigJSON {
	c := snap.Config
	return &ConfigJSON{
		UploadURL:        c.UploadURL,
		PollURL:          c.PollURL,
		UploadIntervalMs: c.UploadIntervalMs,
		PollIntervalMs:   c.PollIntervalMs,
		TickMs:           c.TickMs,
		DebounceMs:       c.DebounceMs,
		Broker:           c.Broker,
		HTTPAddr:         c.HTTPAddr,
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	inner.Config = buildConfig(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
// Config is only included on STARTUP.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	if event == "STARTUP" {
		inner.Config = buildConfig(snap)
	}

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
