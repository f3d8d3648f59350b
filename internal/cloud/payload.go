package cloud

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/plant-station/internal/eventlog"
	"github.com/sweeney/plant-station/internal/sensor"
)

// Details is the telemetry record carried in the upload header.
type Details struct {
	VCNL  VCNLDetails  `json:"vcnlDetails"`
	SHT   SHTDetails   `json:"shtDetails"`
	Other OtherDetails `json:"otherDetails"`
}

// VCNLDetails holds the proximity/light readings.
type VCNLDetails struct {
	Prox uint16 `json:"prox"`
	AL   uint16 `json:"al"`
	WL   uint16 `json:"wl"`
}

// SHTDetails holds the temperature/humidity readings.
type SHTDetails struct {
	Temp float64 `json:"temp"`
	RHum float64 `json:"rHum"`
}

// OtherDetails holds capture metadata.
type OtherDetails struct {
	TimeCaptured    int64  `json:"timeCaptured"`
	UserID          string `json:"userId"`
	CurrentFanState bool   `json:"currentFanState"`
	TriggerEvent    string `json:"triggerEvent,omitempty"`
}

// FormatDetails creates the JSON telemetry record. Routine uploads carry no
// trigger tag.
func FormatDetails(deviceID string, snap sensor.Snapshot, captured time.Time, trigger eventlog.EventType, fanOn bool) ([]byte, error) {
	d := Details{
		VCNL: VCNLDetails{
			Prox: snap.Proximity,
			AL:   snap.AmbientLight,
			WL:   snap.WhiteLight,
		},
		SHT: SHTDetails{
			Temp: snap.Temperature,
			RHum: snap.Humidity,
		},
		Other: OtherDetails{
			TimeCaptured:    captured.Unix(),
			UserID:          deviceID,
			CurrentFanState: fanOn,
		},
	}
	if trigger != eventlog.Regular {
		d.Other.TriggerEvent = trigger.String()
	}
	return json.Marshal(d)
}

// ParseDetails decodes a telemetry record. A missing trigger tag parses as
// eventlog.Regular.
func ParseDetails(data []byte) (Details, sensor.Snapshot, eventlog.EventType, error) {
	var d Details
	if err := json.Unmarshal(data, &d); err != nil {
		return Details{}, sensor.Snapshot{}, 0, fmt.Errorf("parse details: %w", err)
	}
	snap := sensor.Snapshot{
		Proximity:    d.VCNL.Prox,
		AmbientLight: d.VCNL.AL,
		WhiteLight:   d.VCNL.WL,
		Temperature:  d.SHT.Temp,
		Humidity:     d.SHT.RHum,
	}
	trigger := eventlog.Regular
	if d.Other.TriggerEvent != "" {
		t, err := eventlog.ParseEventType(d.Other.TriggerEvent)
		if err != nil {
			return Details{}, sensor.Snapshot{}, 0, fmt.Errorf("parse details: %w", err)
		}
		trigger = t
	}
	return d, snap, trigger, nil
}
