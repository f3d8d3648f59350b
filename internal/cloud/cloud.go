// Package cloud uploads telemetry and polls the remote fan state.
package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/sweeney/plant-station/internal/clock"
	"github.com/sweeney/plant-station/internal/eventlog"
	"github.com/sweeney/plant-station/internal/sensor"
)

// DetailsHeader carries the telemetry record on upload requests.
const DetailsHeader = "M5-Details"

// RequestIDHeader carries a per-request id for correlating logs.
const RequestIDHeader = "X-Request-ID"

// maxBody bounds how much of a response body is read.
const maxBody = 4096

// Poll failure classes. Errors returned by PollState wrap one of these.
var (
	ErrNotConnected = errors.New("network not connected")
	ErrStatus       = errors.New("unexpected status")
	ErrMalformed    = errors.New("malformed response")
	ErrMissingField = errors.New("response missing fanState")
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the endpoints and device identity.
type Config struct {
	DeviceID  string
	UploadURL string
	PollURL   string
}

// Result describes one upload attempt.
type Result struct {
	RequestID string
	Status    int    // 0 if no response was received
	Err       error  // transport or connectivity failure
	Payload   []byte // the telemetry record that was sent
	Entry     eventlog.Entry
}

// Client talks to the remote endpoints. Every upload records exactly one
// entry in the event log, whatever the outcome.
type Client struct {
	cfg  Config
	doer Doer
	link Link
	clk  clock.Clock
	log  *eventlog.Log
}

// New creates a Client. A nil link is treated as always connected.
func New(cfg Config, doer Doer, link Link, clk clock.Clock, events *eventlog.Log) *Client {
	return &Client{cfg: cfg, doer: doer, link: link, clk: clk, log: events}
}

// Upload sends snap with the given trigger tag. It never retries; the
// outcome is logged and returned for diagnostics only.
func (c *Client) Upload(ctx context.Context, snap sensor.Snapshot, trigger eventlog.EventType, fanOn bool) (res Result) {
	res.RequestID = uuid.NewString()
	defer func() {
		res.Entry = c.log.Record(trigger)
	}()

	payload, err := FormatDetails(c.cfg.DeviceID, snap, c.clk.Now(), trigger, fanOn)
	if err != nil {
		res.Err = fmt.Errorf("format details: %w", err)
		log.Printf("cloud: upload %s: %v", res.RequestID, res.Err)
		return res
	}
	res.Payload = payload

	if !c.connected() {
		res.Err = ErrNotConnected
		log.Printf("cloud: network disconnected, cannot upload (%s)", trigger)
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UploadURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("build upload request: %w", err)
		log.Printf("cloud: upload %s: %v", res.RequestID, res.Err)
		return res
	}
	req.Header.Set(DetailsHeader, string(payload))
	req.Header.Set(RequestIDHeader, res.RequestID)

	resp, err := c.doer.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("upload: %w", err)
		log.Printf("cloud: upload %s failed: %v", res.RequestID, err)
		return res
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
	resp.Body.Close()

	res.Status = resp.StatusCode
	log.Printf("cloud: upload %s (%s) status=%d", res.RequestID, trigger, resp.StatusCode)
	return res
}

// pollResponse uses a pointer so a missing field can be told apart from false.
type pollResponse struct {
	FanState *bool `json:"fanState"`
}

// PollState reads the remote fan flag. It has no side effects; any failure
// means there is no update this cycle.
func (c *Client) PollState(ctx context.Context) (bool, error) {
	if !c.connected() {
		return false, ErrNotConnected
	}

	u, err := url.Parse(c.cfg.PollURL)
	if err != nil {
		return false, fmt.Errorf("parse poll url: %w", err)
	}
	q := u.Query()
	q.Set("userId", c.cfg.DeviceID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, fmt.Errorf("build poll request: %w", err)
	}
	resp, err := c.doer.Do(req)
	if err != nil {
		return false, fmt.Errorf("poll: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return false, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	var body pollResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if body.FanState == nil {
		return false, ErrMissingField
	}
	return *body.FanState, nil
}

func (c *Client) connected() bool {
	return c.link == nil || c.link.Connected()
}
