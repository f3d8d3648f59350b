// Package station runs the plant station's main cycle: touch handling, sensor
// and shake checks, display refresh, and the timer-gated upload and poll.
package station

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/plant-station/internal/clock"
	"github.com/sweeney/plant-station/internal/cloud"
	"github.com/sweeney/plant-station/internal/eventlog"
	"github.com/sweeney/plant-station/internal/haptic"
	"github.com/sweeney/plant-station/internal/logic"
	"github.com/sweeney/plant-station/internal/mqtt"
	"github.com/sweeney/plant-station/internal/sensor"
	"github.com/sweeney/plant-station/internal/status"
	"github.com/sweeney/plant-station/internal/touch"
	"github.com/sweeney/plant-station/internal/ui"
)

// ShakeMessage is shown in the popup when a shake fires.
const ShakeMessage = "Shake detected!"

// Default vibration pulses.
const (
	DefaultShakeVibration       = 200 * time.Millisecond
	DefaultStateChangeVibration = 500 * time.Millisecond
)

// Remote is the cloud endpoint pair. *cloud.Client satisfies it.
type Remote interface {
	Upload(ctx context.Context, snap sensor.Snapshot, trigger eventlog.EventType, fanOn bool) cloud.Result
	PollState(ctx context.Context) (bool, error)
}

// Config holds the scheduler timings and feedback settings.
type Config struct {
	UploadInterval       time.Duration
	PollInterval         time.Duration
	ShakeThreshold       float64
	ShakeCooldown        time.Duration
	ShakeVibration       time.Duration
	StateChangeVibration time.Duration
}

// Deps are the station's collaborators. Publisher and Tracker are optional.
type Deps struct {
	Sensors   sensor.Reader
	Motion    sensor.MotionReader
	Touch     touch.Reader
	UI        *ui.Controller
	Remote    Remote
	Events    *eventlog.Log
	Haptic    haptic.Vibrator
	Clock     clock.Clock
	DeviceID  string
	Publisher mqtt.Publisher
	Tracker   *status.Tracker
}

// Station owns all mutable application state. It is driven by a single
// goroutine calling Cycle.
type Station struct {
	cfg  Config
	deps Deps
	now  func() time.Time

	edges      touch.EdgeDetector
	reconciler *logic.Reconciler
	shake      *logic.ShakeDetector

	snap       sensor.Snapshot
	fanOn      bool
	lastUpload time.Time
	lastPoll   time.Time
	counts     status.Counts
	upload     *status.Upload
}

// New creates a Station. The upload and poll timers start now, so the
// first upload happens one interval after creation.
func New(cfg Config, deps Deps, now func() time.Time) *Station {
	if cfg.UploadInterval <= 0 {
		cfg.UploadInterval = 5 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.ShakeVibration <= 0 {
		cfg.ShakeVibration = DefaultShakeVibration
	}
	if cfg.StateChangeVibration <= 0 {
		cfg.StateChangeVibration = DefaultStateChangeVibration
	}
	start := now()
	return &Station{
		cfg:        cfg,
		deps:       deps,
		now:        now,
		reconciler: logic.NewReconciler(),
		shake:      logic.NewShakeDetector(cfg.ShakeThreshold, cfg.ShakeCooldown),
		lastUpload: start,
		lastPoll:   start,
	}
}

// Snapshot returns the most recent sensor snapshot.
func (s *Station) Snapshot() sensor.Snapshot {
	return s.snap
}

// FanOn returns the local fan flag.
func (s *Station) FanOn() bool {
	return s.fanOn
}

// Reconciler exposes the remote-state tracker.
func (s *Station) Reconciler() *logic.Reconciler {
	return s.reconciler
}

// Counts returns the running tallies.
func (s *Station) Counts() status.Counts {
	return s.counts
}

// ReadSensors takes an initial reading so the first frame has data.
func (s *Station) ReadSensors() error {
	snap, err := s.deps.Sensors.Read()
	if err != nil {
		return err
	}
	s.snap = snap
	return nil
}

// Cycle runs one pass of the scheduler. The order is fixed: touch, then
// (on the Main page only) sensor and shake checks, then display refresh,
// then the upload and poll when their intervals have elapsed. Runtime
// failures are logged and never stop the cycle.
func (s *Station) Cycle(ctx context.Context) {
	s.deps.UI.Expire(s.now())
	s.handleTouch()

	if s.deps.UI.Page() == ui.PageMain {
		s.readSensors()
		s.checkShake(ctx)
	}

	if err := s.deps.UI.Refresh(s.now(), s.view()); err != nil {
		log.Printf("station: display refresh failed: %v", err)
	}

	if s.now().Sub(s.lastUpload) >= s.cfg.UploadInterval {
		s.uploadNow(ctx, eventlog.Regular)
		s.lastUpload = s.now()
	}

	if s.now().Sub(s.lastPoll) >= s.cfg.PollInterval {
		s.poll(ctx)
		s.lastPoll = s.now()
	}

	s.publishStatus()
}

func (s *Station) handleTouch() {
	p, down, err := s.deps.Touch.Poll()
	if err != nil {
		log.Printf("station: touch read failed: %v", err)
		return
	}
	ev := s.edges.Update(p, down)

	switch action := s.deps.UI.HandleTouch(ev, s.now()); action {
	case ui.ActionToggleFan:
		s.fanOn = !s.fanOn
		s.counts.FanToggles++
		log.Printf("station: fan toggled %s", onOff(s.fanOn))
	case ui.ActionShowLog, ui.ActionShowMain:
		log.Printf("station: page %s", s.deps.UI.Page())
	}
}

func (s *Station) readSensors() {
	snap, err := s.deps.Sensors.Read()
	if err != nil {
		log.Printf("station: sensor read failed: %v", err)
		return
	}
	s.snap = snap
}

func (s *Station) checkShake(ctx context.Context) {
	a, err := s.deps.Motion.Acceleration()
	if err != nil {
		log.Printf("station: accelerometer read failed: %v", err)
		return
	}
	now := s.now()
	if !s.shake.Check(a, now, s.deps.UI.PopupActive()) {
		return
	}
	log.Printf("station: shake detected (%.2fg)", a.Magnitude())
	s.vibrate(s.cfg.ShakeVibration)
	s.deps.UI.ShowPopup(ShakeMessage, now)
	s.uploadNow(ctx, eventlog.Shake)
}

// poll reads the remote fan flag and fires the state-change side effects on
// a transition. A failed poll leaves the baseline untouched.
func (s *Station) poll(ctx context.Context) {
	v, err := s.deps.Remote.PollState(ctx)
	if err != nil {
		s.counts.PollsFailed++
		log.Printf("station: poll failed: %v", err)
		return
	}
	s.counts.PollsOK++

	first := !s.reconciler.IsBaselined()
	if !s.reconciler.Reconcile(v) {
		if first {
			log.Printf("station: remote fan baseline %s", onOff(v))
		}
		return
	}

	log.Printf("station: remote fan changed to %s", onOff(v))
	s.vibrate(s.cfg.StateChangeVibration)
	s.fanOn = v
	s.uploadNow(ctx, eventlog.CloudStateChange)
}

func (s *Station) uploadNow(ctx context.Context, trigger eventlog.EventType) {
	res := s.deps.Remote.Upload(ctx, s.snap, trigger, s.fanOn)

	s.counts.Record(trigger)
	if res.Err == nil && res.Status >= 200 && res.Status < 300 {
		s.counts.UploadsOK++
	} else {
		s.counts.UploadsFailed++
	}
	u := status.Upload{
		Time:      s.deps.Clock.Now(),
		Trigger:   trigger,
		Status:    res.Status,
		RequestID: res.RequestID,
	}
	if res.Err != nil {
		u.Err = res.Err.Error()
	}
	s.upload = &u

	s.mirror(res, trigger)
}

// mirror copies an upload to the MQTT broker, if one is configured.
func (s *Station) mirror(res cloud.Result, trigger eventlog.EventType) {
	pub := s.deps.Publisher
	if pub == nil {
		return
	}
	err := pub.PublishTelemetry(mqtt.Telemetry{
		Timestamp: time.Unix(res.Entry.Time, 0),
		Snapshot:  s.snap,
		FanOn:     s.fanOn,
		Trigger:   trigger,
		Status:    res.Status,
		RequestID: res.RequestID,
	})
	if err != nil {
		log.Printf("station: mqtt telemetry: %v", err)
	}
	if err := pub.PublishEvent(res.Entry); err != nil {
		log.Printf("station: mqtt event: %v", err)
	}
}

func (s *Station) vibrate(d time.Duration) {
	if s.deps.Haptic == nil {
		return
	}
	if err := s.deps.Haptic.Vibrate(d); err != nil {
		log.Printf("station: haptic: %v", err)
	}
}

func (s *Station) view() ui.View {
	clk := s.deps.Clock
	return ui.View{
		DeviceID: s.deps.DeviceID,
		Snapshot: s.snap,
		Clock:    clk.Format(clk.Now()),
		FanOn:    s.fanOn,
		Entries:  s.deps.Events.Recent(),
		FormatTime: func(epoch int64) string {
			return clk.Format(time.Unix(epoch, 0))
		},
	}
}

func (s *Station) publishStatus() {
	tr := s.deps.Tracker
	if tr == nil {
		return
	}
	tr.Update(status.State{
		Sensor:    s.snap,
		FanOn:     s.fanOn,
		Baselined: s.reconciler.IsBaselined(),
		Remote:    s.reconciler.Baseline(),
		Page:      s.deps.UI.Page().String(),
		Popup:     s.deps.UI.PopupMessage(),
		Entries:   s.deps.Events.Entries(),
		Counts:    s.counts,
		Upload:    s.upload,
	})
	if cs, ok := s.deps.Publisher.(mqtt.ConnectionStatus); ok {
		tr.SetMQTTConnected(cs.IsConnected())
	}
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
