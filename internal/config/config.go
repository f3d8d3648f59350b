// Package config loads the station configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level station configuration.
type Config struct {
	DeviceID   string          `yaml:"device_id"`
	WiFi       WiFiConfig      `yaml:"wifi"`
	UploadURL  string          `yaml:"upload_url"`
	PollURL    string          `yaml:"poll_url"`
	Intervals  IntervalConfig  `yaml:"intervals"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	NTP        NTPConfig       `yaml:"ntp"`
	I2C        I2CConfig       `yaml:"i2c"`
	Haptic     HapticConfig    `yaml:"haptic"`
	MQTT       MQTTConfig      `yaml:"mqtt"`
	HTTP       string          `yaml:"http"` // empty disables the status server
}

// WiFiConfig describes the network the station must join before starting.
// With an SSID set, the station asks NetworkManager to join it, then waits
// for Interface to come up.
type WiFiConfig struct {
	SSID      string        `yaml:"ssid"`
	Password  string        `yaml:"password"`
	Interface string        `yaml:"interface"`
	Attempts  int           `yaml:"attempts"`
	Delay     time.Duration `yaml:"delay"`
}

// IntervalConfig holds the scheduler timings.
type IntervalConfig struct {
	Upload    time.Duration `yaml:"upload"`
	Poll      time.Duration `yaml:"poll"`
	Tick      time.Duration `yaml:"tick"`
	Debounce  time.Duration `yaml:"debounce"`
	Popup     time.Duration `yaml:"popup"`
	NTPResync time.Duration `yaml:"ntp_resync"`
}

// ThresholdConfig tunes shake detection.
type ThresholdConfig struct {
	Shake         float64       `yaml:"shake"` // g
	ShakeCooldown time.Duration `yaml:"shake_cooldown"`
}

// NTPConfig selects the time source and display zone.
type NTPConfig struct {
	Server string `yaml:"server"`
	// ZoneOffset is nil when unset; "0s" is a valid zone.
	ZoneOffset *time.Duration `yaml:"zone_offset"`
}

// Zone returns the display zone offset.
func (n NTPConfig) Zone() time.Duration {
	if n.ZoneOffset == nil {
		return DefaultZoneOffset
	}
	return *n.ZoneOffset
}

// I2CConfig selects the sensor and touch bus.
type I2CConfig struct {
	Bus string `yaml:"bus"` // empty picks the first bus
}

// HapticConfig selects the vibration motor line and pulse lengths.
type HapticConfig struct {
	Chip        string        `yaml:"chip"`
	Line        int           `yaml:"line"`
	Shake       time.Duration `yaml:"shake"`
	StateChange time.Duration `yaml:"state_change"`
}

// MQTTConfig configures the optional broker mirror.
type MQTTConfig struct {
	Broker string `yaml:"broker"` // empty disables MQTT
}

// Defaults.
const (
	DefaultDeviceID         = "user_1"
	DefaultInterface        = "wlan0"
	DefaultJoinAttempts     = 20
	DefaultJoinDelay        = 500 * time.Millisecond
	DefaultUploadInterval   = 5 * time.Second
	DefaultPollInterval     = 3 * time.Second
	DefaultTick             = 50 * time.Millisecond
	DefaultDebounce         = 200 * time.Millisecond
	DefaultPopup            = 1500 * time.Millisecond
	DefaultNTPResync        = time.Hour
	DefaultShakeThreshold   = 2.5
	DefaultShakeCooldown    = 2 * time.Second
	DefaultNTPServer        = "pool.ntp.org"
	DefaultZoneOffset       = -7 * time.Hour
	DefaultHapticChip       = "gpiochip0"
	DefaultHapticLine       = 13
	DefaultShakePulse       = 200 * time.Millisecond
	DefaultStateChangePulse = 500 * time.Millisecond
)

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Validate reports configuration the station cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.UploadURL == "" {
		errs = append(errs, errors.New("upload_url is required"))
	} else if err := checkURL(c.UploadURL); err != nil {
		errs = append(errs, fmt.Errorf("upload_url: %w", err))
	}
	if c.PollURL == "" {
		errs = append(errs, errors.New("poll_url is required"))
	} else if err := checkURL(c.PollURL); err != nil {
		errs = append(errs, fmt.Errorf("poll_url: %w", err))
	}
	if c.Intervals.Tick > c.Intervals.Debounce {
		errs = append(errs, fmt.Errorf("intervals.tick (%v) must not exceed intervals.debounce (%v)", c.Intervals.Tick, c.Intervals.Debounce))
	}
	return errors.Join(errs...)
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DeviceID == "" {
		c.DeviceID = DefaultDeviceID
	}
	if c.WiFi.Interface == "" {
		c.WiFi.Interface = DefaultInterface
	}
	if c.WiFi.Attempts <= 0 {
		c.WiFi.Attempts = DefaultJoinAttempts
	}
	if c.WiFi.Delay <= 0 {
		c.WiFi.Delay = DefaultJoinDelay
	}
	if c.Intervals.Upload <= 0 {
		c.Intervals.Upload = DefaultUploadInterval
	}
	if c.Intervals.Poll <= 0 {
		c.Intervals.Poll = DefaultPollInterval
	}
	if c.Intervals.Tick <= 0 {
		c.Intervals.Tick = DefaultTick
	}
	if c.Intervals.Debounce <= 0 {
		c.Intervals.Debounce = DefaultDebounce
	}
	if c.Intervals.Popup <= 0 {
		c.Intervals.Popup = DefaultPopup
	}
	if c.Intervals.NTPResync <= 0 {
		c.Intervals.NTPResync = DefaultNTPResync
	}
	if c.Thresholds.Shake <= 0 {
		c.Thresholds.Shake = DefaultShakeThreshold
	}
	if c.Thresholds.ShakeCooldown <= 0 {
		c.Thresholds.ShakeCooldown = DefaultShakeCooldown
	}
	if c.NTP.Server == "" {
		c.NTP.Server = DefaultNTPServer
	}
	if c.NTP.ZoneOffset == nil {
		d := DefaultZoneOffset
		c.NTP.ZoneOffset = &d
	}
	if c.Haptic.Chip == "" {
		c.Haptic.Chip = DefaultHapticChip
	}
	if c.Haptic.Line <= 0 {
		c.Haptic.Line = DefaultHapticLine
	}
	if c.Haptic.Shake <= 0 {
		c.Haptic.Shake = DefaultShakePulse
	}
	if c.Haptic.StateChange <= 0 {
		c.Haptic.StateChange = DefaultStateChangePulse
	}
}
