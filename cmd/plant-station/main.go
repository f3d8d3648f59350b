// Command plant-station runs the handheld sensor station: it shows live
// readings on the panel, uploads them to the cloud, and follows the remote
// fan flag.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/videosink"
	"periph.io/x/host/v3"

	"github.com/sweeney/plant-station/internal/clock"
	"github.com/sweeney/plant-station/internal/cloud"
	"github.com/sweeney/plant-station/internal/config"
	"github.com/sweeney/plant-station/internal/display"
	"github.com/sweeney/plant-station/internal/eventlog"
	"github.com/sweeney/plant-station/internal/haptic"
	"github.com/sweeney/plant-station/internal/mqtt"
	"github.com/sweeney/plant-station/internal/sensor"
	"github.com/sweeney/plant-station/internal/station"
	"github.com/sweeney/plant-station/internal/status"
	"github.com/sweeney/plant-station/internal/touch"
	"github.com/sweeney/plant-station/internal/ui"
	"github.com/sweeney/plant-station/internal/web"
)

// overrides holds flag values that take precedence over the config file.
type overrides struct {
	deviceID  string
	uploadURL string
	pollURL   string
	broker    string
	httpAddr  string
	i2cBus    string
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults apply when empty)")
	var o overrides
	flag.StringVar(&o.deviceID, "device-id", "", "Device identifier sent as userId")
	flag.StringVar(&o.uploadURL, "upload-url", "", "Telemetry upload endpoint")
	flag.StringVar(&o.pollURL, "poll-url", "", "Remote fan state endpoint")
	flag.StringVar(&o.broker, "broker", "", `MQTT broker address ("off" disables)`)
	flag.StringVar(&o.httpAddr, "http", "", `HTTP status address ("off" disables)`)
	flag.StringVar(&o.i2cBus, "i2c", "", "I2C bus name")
	printState := flag.Bool("print-state", false, "Print current sensor readings and exit")

	flag.Parse()

	cfg, err := loadConfig(*configPath, o)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func loadConfig(path string, o overrides) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	applyOverrides(cfg, o)
	return cfg, nil
}

func applyOverrides(cfg *config.Config, o overrides) {
	if o.deviceID != "" {
		cfg.DeviceID = o.deviceID
	}
	if o.uploadURL != "" {
		cfg.UploadURL = o.uploadURL
	}
	if o.pollURL != "" {
		cfg.PollURL = o.pollURL
	}
	switch o.broker {
	case "":
	case "off":
		cfg.MQTT.Broker = ""
	default:
		cfg.MQTT.Broker = o.broker
	}
	switch o.httpAddr {
	case "":
	case "off":
		cfg.HTTP = ""
	default:
		cfg.HTTP = o.httpAddr
	}
	if o.i2cBus != "" {
		cfg.I2C.Bus = o.i2cBus
	}
}

func run(cfg *config.Config, printState bool) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init host: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2C.Bus)
	if err != nil {
		return fmt.Errorf("open i2c: %w", err)
	}
	defer bus.Close()

	// Print state mode
	if printState {
		board, err := sensor.OpenBoard(bus)
		if err != nil {
			return err
		}
		return printReadings(board)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	tracker := status.NewTracker(time.Now(), status.Config{
		DeviceID:         cfg.DeviceID,
		UploadURL:        cfg.UploadURL,
		PollURL:          cfg.PollURL,
		UploadIntervalMs: cfg.Intervals.Upload.Milliseconds(),
		PollIntervalMs:   cfg.Intervals.Poll.Milliseconds(),
		TickMs:           cfg.Intervals.Tick.Milliseconds(),
		DebounceMs:       cfg.Intervals.Debounce.Milliseconds(),
		Broker:           cfg.MQTT.Broker,
		HTTPAddr:         cfg.HTTP,
	})

	// The panel and its mirror come up first so startup failures stay visible.
	sink := videosink.New(&videosink.Options{
		Width:  display.Width,
		Height: display.Height,
		Format: videosink.PNG,
	})
	canvas, err := display.NewCanvas(sink, display.DefaultFontSize)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	screen := ui.NewController(canvas, ui.Config{
		Debounce:      cfg.Intervals.Debounce,
		PopupDuration: cfg.Intervals.Popup,
	})

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker, sink)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}
	// Ends open /screen streams so the server can shut down.
	defer sink.Halt()

	board, err := sensor.OpenBoard(bus)
	if err != nil {
		return halt(fatalScreen(screen, err), sigCh)
	}
	log.Printf("sensors ok")

	link := cloud.InterfaceLink{Name: cfg.WiFi.Interface}
	showMessage(screen, "Connecting WiFi...", display.White)
	if cfg.WiFi.SSID != "" {
		if err := cloud.JoinWiFi(cfg.WiFi.Interface, cfg.WiFi.SSID, cfg.WiFi.Password, nil); err != nil {
			log.Printf("wifi: %v", err)
		}
	}
	if err := cloud.WaitForLink(link, cfg.WiFi.Attempts, cfg.WiFi.Delay, time.Sleep); err != nil {
		showMessage(screen, "WiFi Connection Failed!", display.Red)
		return halt(fmt.Errorf("join network %s: %w", cfg.WiFi.Interface, err), sigCh)
	}
	netInfo := readNetworkInfo(cfg.WiFi.Interface, cfg.WiFi.SSID)
	if cfg.WiFi.SSID != "" && netInfo.SSID != cfg.WiFi.SSID {
		log.Printf("wifi: associated with %q, expected %q", netInfo.SSID, cfg.WiFi.SSID)
	}
	log.Printf("wifi: %s up, ip %s", cfg.WiFi.Interface, netInfo.IP)

	ntpClock := clock.NewNTP(cfg.NTP.Server, cfg.NTP.Zone(), cfg.Intervals.NTPResync)
	if err := ntpClock.Sync(); err != nil {
		log.Printf("clock: initial sync failed, using system time: %v", err)
	}

	var vibrator haptic.Vibrator
	if v, err := haptic.NewRealVibrator(cfg.Haptic.Chip, cfg.Haptic.Line); err != nil {
		log.Printf("haptic disabled: %v", err)
	} else {
		vibrator = v
		defer v.Close()
	}

	var publisher mqtt.Publisher
	if cfg.MQTT.Broker != "" {
		if p, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.DeviceID); err != nil {
			log.Printf("mqtt disabled: %v", err)
		} else {
			publisher = p
			defer p.Close()
		}
	}

	tracker.SetNetwork(netInfo)

	events := eventlog.New(eventlog.Capacity, ntpClock.Now)
	remote := cloud.New(cloud.Config{
		DeviceID:  cfg.DeviceID,
		UploadURL: cfg.UploadURL,
		PollURL:   cfg.PollURL,
	}, &http.Client{Timeout: 10 * time.Second}, link, ntpClock, events)

	st := station.New(station.Config{
		UploadInterval:       cfg.Intervals.Upload,
		PollInterval:         cfg.Intervals.Poll,
		ShakeThreshold:       cfg.Thresholds.Shake,
		ShakeCooldown:        cfg.Thresholds.ShakeCooldown,
		ShakeVibration:       cfg.Haptic.Shake,
		StateChangeVibration: cfg.Haptic.StateChange,
	}, station.Deps{
		Sensors:   board,
		Motion:    board,
		Touch:     touch.NewFT6336(bus),
		UI:        screen,
		Remote:    remote,
		Events:    events,
		Haptic:    vibrator,
		Clock:     ntpClock,
		DeviceID:  cfg.DeviceID,
		Publisher: publisher,
		Tracker:   tracker,
	}, time.Now)
	if err := st.ReadSensors(); err != nil {
		log.Printf("initial sensor read failed: %v", err)
	}

	if publisher != nil {
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	log.Printf("started: device=%s upload=%v poll=%v tick=%v broker=%q",
		cfg.DeviceID, cfg.Intervals.Upload, cfg.Intervals.Poll, cfg.Intervals.Tick, cfg.MQTT.Broker)

	ticker := time.NewTicker(cfg.Intervals.Tick)
	defer ticker.Stop()

	return runLoop(context.Background(), st, publisher, tracker, ntpClock.Update, time.Now, ticker.C, sigCh)
}

// cycler is one pass of the station scheduler.
type cycler interface {
	Cycle(ctx context.Context)
}

func runLoop(ctx context.Context, st cycler, publisher mqtt.Publisher, tracker *status.Tracker, resync func(), now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if publisher == nil {
				return nil
			}
			reason := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    reason,
				Retained:  true,
			}
			if tracker != nil {
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			if resync != nil {
				resync()
			}
			st.Cycle(ctx)
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// fatalScreen shows a sensor initialisation failure on the panel and returns
// the error that stops the station.
func fatalScreen(screen *ui.Controller, err error) error {
	msg := "Sensor Error!"
	var ie *sensor.InitError
	if errors.As(err, &ie) {
		msg = ie.Sensor + " Error!"
	}
	showMessage(screen, msg, display.Red)
	return fmt.Errorf("init sensors: %w", err)
}

func showMessage(screen *ui.Controller, msg string, col color.Color) {
	if err := screen.ShowMessage(msg, col); err != nil {
		log.Printf("display: %v", err)
	}
}

// halt leaves the error on the panel until a signal arrives, then returns
// err.
func halt(err error, sig <-chan os.Signal) error {
	log.Printf("startup failed: %v; holding error screen until signal", err)
	s := <-sig
	log.Printf("received %v, exiting", s)
	return err
}

type boardReader interface {
	sensor.Reader
	sensor.MotionReader
}

func printReadings(b boardReader) error {
	snap, err := b.Read()
	if err != nil {
		return fmt.Errorf("read sensors: %w", err)
	}
	a, err := b.Acceleration()
	if err != nil {
		return fmt.Errorf("read accelerometer: %w", err)
	}
	fmt.Printf("%s\naccel: x=%.2f y=%.2f z=%.2f |a|=%.2fg\n", snap, a.X, a.Y, a.Z, a.Magnitude())
	return nil
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkGateway  = "NETWORK_GATEWAY"
	envNetworkWifiSSID = "NETWORK_WIFI_SSID"
)

// readNetworkInfo describes iface. The SSID comes from pi-helper when it is
// running, otherwise the configured one is reported.
func readNetworkInfo(iface, ssid string) *status.NetworkInfo {
	info := &status.NetworkInfo{
		Interface: iface,
		Status:    "down",
		Gateway:   os.Getenv(envNetworkGateway),
		SSID:      ssid,
	}
	if s := os.Getenv(envNetworkWifiSSID); s != "" {
		info.SSID = s
	}

	ifc, err := net.InterfaceByName(iface)
	if err != nil {
		return info
	}
	if ifc.Flags&net.FlagUp != 0 {
		info.Status = "up"
	}
	addrs, err := ifc.Addrs()
	if err != nil {
		return info
	}
	for _, a := range addrs {
		if ipn, ok := a.(*net.IPNet); ok && ipn.IP.To4() != nil {
			info.IP = ipn.IP.String()
			info.Status = "connected"
			break
		}
	}
	return info
}
