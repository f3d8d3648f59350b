// Package clock provides wall-clock time corrected against an NTP server.
package clock

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

// DisplayLayout is the layout used for the on-screen clock and log entries.
const DisplayLayout = "15:04:05"

// Clock supplies epoch time and the formatted local time.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time
	// Format renders t in the device's local zone.
	Format(t time.Time) string
}

// NTP is a Clock that applies the offset measured against an NTP server to
// the system clock.
type NTP struct {
	server   string
	zone     *time.Location
	interval time.Duration
	query    func(host string) (*ntp.Response, error)

	mu       sync.Mutex
	offset   time.Duration
	lastSync time.Time
}

// NewNTP creates a clock for server. zoneOffset is the fixed offset from UTC
// used for display; interval is the minimum time between resyncs in Update.
func NewNTP(server string, zoneOffset, interval time.Duration) *NTP {
	return &NTP{
		server:   server,
		zone:     time.FixedZone(zoneName(zoneOffset), int(zoneOffset.Seconds())),
		interval: interval,
		query:    ntp.Query,
	}
}

// Sync queries the server and stores the measured offset.
func (c *NTP) Sync() error {
	resp, err := c.query(c.server)
	if err != nil {
		return fmt.Errorf("ntp query %s: %w", c.server, err)
	}
	if err := resp.Validate(); err != nil {
		return fmt.Errorf("ntp response from %s: %w", c.server, err)
	}
	c.mu.Lock()
	c.offset = resp.ClockOffset
	c.lastSync = time.Now()
	c.mu.Unlock()
	return nil
}

// Update resyncs if the interval has elapsed since the last successful sync.
// Failures are logged and the previous offset is kept.
func (c *NTP) Update() {
	c.mu.Lock()
	due := c.lastSync.IsZero() || time.Since(c.lastSync) >= c.interval
	c.mu.Unlock()
	if !due {
		return
	}
	if err := c.Sync(); err != nil {
		log.Printf("clock: %v", err)
	}
}

// Now returns the corrected wall-clock time.
func (c *NTP) Now() time.Time {
	c.mu.Lock()
	off := c.offset
	c.mu.Unlock()
	return time.Now().Add(off)
}

// Offset returns the last measured offset.
func (c *NTP) Offset() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// Format renders t as HH:MM:SS in the configured zone.
func (c *NTP) Format(t time.Time) string {
	return t.In(c.zone).Format(DisplayLayout)
}

func zoneName(offset time.Duration) string {
	if offset == 0 {
		return "UTC"
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	h := int(offset.Hours())
	m := int(offset.Minutes()) % 60
	if m == 0 {
		return fmt.Sprintf("UTC%s%d", sign, h)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, h, m)
}
