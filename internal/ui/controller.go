// Package ui implements the two-page touch interface: the Main page with live
// sensor values and the Log page with recent upload events, plus a transient
// popup overlay.
package ui

import (
	"fmt"
	"image"
	"image/color"
	"iter"
	"time"

	"github.com/sweeney/plant-station/internal/display"
	"github.com/sweeney/plant-station/internal/eventlog"
	"github.com/sweeney/plant-station/internal/sensor"
	"github.com/sweeney/plant-station/internal/touch"
)

// Defaults.
const (
	DefaultDebounce      = 200 * time.Millisecond
	DefaultPopupDuration = 1500 * time.Millisecond
)

// Page is the screen currently shown.
type Page int

const (
	PageMain Page = iota
	PageLog
)

func (p Page) String() string {
	switch p {
	case PageMain:
		return "main"
	case PageLog:
		return "log"
	}
	return fmt.Sprintf("Page(%d)", int(p))
}

// Action is the result of an honored press.
type Action int

const (
	ActionNone Action = iota
	ActionShowLog
	ActionShowMain
	ActionToggleFan
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionShowLog:
		return "show_log"
	case ActionShowMain:
		return "show_main"
	case ActionToggleFan:
		return "toggle_fan"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// View is the dynamic data drawn on each refresh.
type View struct {
	DeviceID string
	Snapshot sensor.Snapshot
	Clock    string
	FanOn    bool
	Entries  iter.Seq[eventlog.Entry]
	// FormatTime renders an entry's epoch seconds.
	FormatTime func(epoch int64) string
}

// Config tunes the controller timings.
type Config struct {
	Debounce      time.Duration
	PopupDuration time.Duration
}

type popupState struct {
	active bool
	msg    string
	start  time.Time
}

// Controller owns the display surface and the page state machine.
// Not safe for concurrent use; the scheduler goroutine owns it.
type Controller struct {
	surface  display.Surface
	debounce time.Duration
	popupFor time.Duration

	page      Page
	lastPress time.Time
	pressed   bool
	popup     popupState

	needFull bool
	fanDrawn bool
	fanValid bool
}

// NewController creates a controller on the Main page. The first Refresh
// draws the full page.
func NewController(s display.Surface, cfg Config) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.PopupDuration <= 0 {
		cfg.PopupDuration = DefaultPopupDuration
	}
	return &Controller{
		surface:  s,
		debounce: cfg.Debounce,
		popupFor: cfg.PopupDuration,
		page:     PageMain,
		needFull: true,
	}
}

// Page returns the current page.
func (c *Controller) Page() Page {
	return c.page
}

// PopupActive reports whether the popup overlay is showing.
func (c *Controller) PopupActive() bool {
	return c.popup.active
}

// PopupMessage returns the message of the active popup, or "".
func (c *Controller) PopupMessage() string {
	if !c.popup.active {
		return ""
	}
	return c.popup.msg
}

// HandleTouch processes one touch sample. Only press-edges inside a target
// that is active on the current page, and outside the debounce interval of
// the previous honored press, are honored. The popup does not block
// navigation.
func (c *Controller) HandleTouch(ev touch.Event, now time.Time) Action {
	if !ev.Edge {
		return ActionNone
	}

	action := c.target(ev.Point)
	if action == ActionNone {
		return ActionNone
	}
	// Debounce is shared by all buttons
	if c.pressed && now.Sub(c.lastPress) < c.debounce {
		return ActionNone
	}
	c.pressed = true
	c.lastPress = now

	switch action {
	case ActionShowLog:
		c.enter(PageLog)
	case ActionShowMain:
		c.enter(PageMain)
	}
	return action
}

func (c *Controller) target(p image.Point) Action {
	switch c.page {
	case PageMain:
		if p.In(LogButton) {
			return ActionShowLog
		}
		if p.In(FanButton) {
			return ActionToggleFan
		}
	case PageLog:
		if p.In(BackButton) {
			return ActionShowMain
		}
	}
	return ActionNone
}

func (c *Controller) enter(p Page) {
	c.page = p
	c.needFull = true
}

// ShowPopup activates the popup overlay. It returns false, and does nothing,
// if a popup is already showing.
func (c *Controller) ShowPopup(msg string, now time.Time) bool {
	if c.popup.active {
		return false
	}
	c.popup = popupState{active: true, msg: msg, start: now}
	return true
}

// Expire clears the popup once its display time has elapsed and schedules
// a full redraw. It reports whether the popup was cleared.
func (c *Controller) Expire(now time.Time) bool {
	if !c.popup.active || now.Sub(c.popup.start) < c.popupFor {
		return false
	}
	c.popup = popupState{}
	c.needFull = true
	return true
}

// Refresh draws the current page. Entering a page, or dismissing the popup,
// redraws everything; otherwise only dynamic data is redrawn. An active popup
// is drawn on top.
func (c *Controller) Refresh(now time.Time, v View) error {
	c.Expire(now)

	if c.needFull {
		c.drawStatic(v)
		c.needFull = false
		c.fanValid = false
	}
	c.drawDynamic(v)

	if c.popup.active {
		c.drawPopup()
	}
	return c.surface.Flush()
}

// ShowMessage clears the screen and shows a single status line. The next
// Refresh redraws the page.
func (c *Controller) ShowMessage(msg string, col color.Color) error {
	c.surface.Clear(display.Black)
	c.surface.Text(image.Pt(10, 10), msg, col)
	c.needFull = true
	return c.surface.Flush()
}

func (c *Controller) drawStatic(v View) {
	s := c.surface
	s.Clear(display.Black)

	switch c.page {
	case PageMain:
		s.Text(image.Pt(10, headerY+5), v.DeviceID, display.White)
		s.StrokeRect(clockBox, display.White)
		y := dataAreaY
		for _, label := range sensorRows {
			s.Text(image.Pt(dataLabelX, y), label, display.White)
			y += dataRowH
		}
		c.drawButton(LogButton, "View Log", display.Blue)

	case PageLog:
		s.Text(image.Pt(10, logTitleY), "Event Log", display.White)
		c.drawButton(BackButton, "Back", display.Gray)
	}
}

func (c *Controller) drawDynamic(v View) {
	switch c.page {
	case PageMain:
		c.drawMainData(v)
	case PageLog:
		c.drawLogEntries(v)
	}
}

func (c *Controller) drawMainData(v View) {
	s := c.surface

	inner := clockBox.Inset(1)
	s.FillRect(inner, display.Black)
	s.Text(image.Pt(dataValueX+5, headerY+5), v.Clock, display.White)

	s.FillRect(valueArea, display.Black)
	snap := v.Snapshot
	values := [...]string{
		fmt.Sprintf("%d", snap.Proximity),
		fmt.Sprintf("%d lux", snap.AmbientLight),
		fmt.Sprintf("%d", snap.WhiteLight),
		fmt.Sprintf("%.1f", snap.Temperature),
		fmt.Sprintf("%.1f", snap.Humidity),
	}
	y := dataAreaY
	for _, val := range values {
		s.Text(image.Pt(dataValueX, y), val, display.White)
		y += dataRowH
	}

	if !c.fanValid || c.fanDrawn != v.FanOn {
		label, bg := "Fan: OFF", display.Red
		if v.FanOn {
			label, bg = "Fan: ON", display.Green
		}
		c.drawButton(FanButton, label, bg)
		c.fanDrawn = v.FanOn
		c.fanValid = true
	}
}

func (c *Controller) drawLogEntries(v View) {
	s := c.surface
	s.FillRect(logArea, display.Black)

	y := logAreaY
	n := 0
	if v.Entries != nil {
		for e := range v.Entries {
			ts := fmt.Sprintf("%d", e.Time)
			if v.FormatTime != nil {
				ts = v.FormatTime(e.Time)
			}
			s.Text(image.Pt(logTimeX, y), ts, display.White)
			s.Text(image.Pt(logTypeX, y), e.Type.String(), entryColor(e.Type))
			y += logRowH
			n++
		}
	}
	if n == 0 {
		s.Text(image.Pt(logTimeX, y), "No events yet", display.Gray)
	}
}

func (c *Controller) drawButton(r image.Rectangle, label string, bg color.Color) {
	s := c.surface
	s.FillRect(r, bg)
	s.StrokeRect(r, display.White)
	s.Text(centerText(r, s.TextSize(label)), label, display.White)
}

func (c *Controller) drawPopup() {
	s := c.surface
	s.FillRect(popupRect, display.Yellow)
	s.StrokeRect(popupRect, display.Black)
	s.Text(centerText(popupRect, s.TextSize(c.popup.msg)), c.popup.msg, display.Black)
}

func entryColor(t eventlog.EventType) color.Color {
	switch t {
	case eventlog.Shake:
		return display.Yellow
	case eventlog.CloudStateChange:
		return display.Green
	}
	return display.White
}
