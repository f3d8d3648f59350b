package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/plant-station/internal/eventlog"
	"github.com/sweeney/plant-station/internal/sensor"
	"github.com/sweeney/plant-station/internal/status"
)

func newTestServer(t *testing.T, screen http.Handler) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		DeviceID:         "user_1",
		UploadIntervalMs: 5000,
		PollIntervalMs:   3000,
		DebounceMs:       200,
		Broker:           "tcp://192.168.1.200:1883",
		HTTPAddr:         ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, screen)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(status.State{
		Sensor:    sensor.Snapshot{Proximity: 42, Temperature: 23.5},
		FanOn:     true,
		Baselined: true,
		Remote:    true,
		Counts:    status.Counts{Shake: 1, UploadsOK: 5},
	})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.DeviceID != "user_1" {
		t.Errorf("DeviceID: got %q", sj.Status.DeviceID)
	}
	if sj.Status.Fan != "ON" || sj.Status.RemoteFan != "ON" {
		t.Errorf("Fan: got %q/%q, want ON/ON", sj.Status.Fan, sj.Status.RemoteFan)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if sj.Status.Sensor.Proximity != 42 {
		t.Errorf("Sensor.Proximity: got %d, want 42", sj.Status.Sensor.Proximity)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.UploadsOK != 5 || sj.Status.Counts.Shake != 1 {
		t.Errorf("Counts: got %+v", sj.Status.Counts)
	}
	if sj.Status.Config == nil || sj.Status.Config.UploadIntervalMs != 5000 {
		t.Errorf("Config: got %+v", sj.Status.Config)
	}
}

func TestJSONUnknownRemoteBeforeBaseline(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.RemoteFan != "UNKNOWN" {
		t.Errorf("RemoteFan before baseline: got %q, want UNKNOWN", sj.Status.RemoteFan)
	}
	if sj.Status.Ready {
		t.Error("expected Ready=false initially")
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.SetNetwork(&status.NetworkInfo{
		Interface: "wlan0",
		IP:        "192.168.1.42",
		Status:    "connected",
		SSID:      "Greenhouse",
	})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(status.State{
		Sensor:  sensor.Snapshot{AmbientLight: 321, Humidity: 45.2},
		FanOn:   true,
		Entries: []eventlog.Entry{{Time: 1770070692, Type: eventlog.Shake}},
		Upload:  &status.Upload{Time: time.Unix(1770070692, 0), Trigger: eventlog.Shake, Status: 200, RequestID: "req-9"},
	})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	b, _ := io.ReadAll(resp.Body)
	body := string(b)
	for _, want := range []string{"Plant Station user_1", "321 lux", "45.2", "2026-02-02 22:18:12", "shake", "req-9", `src="/screen"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestHTMLEmptyLog(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	code, body := getBody(t, ts.URL+"/index.html")
	if code != 200 {
		t.Errorf("status: got %d, want 200", code)
	}
	if !strings.Contains(body, "No events yet") {
		t.Error("expected empty log placeholder")
	}
	if !strings.Contains(body, "waiting for first poll") {
		t.Error("expected baseline placeholder")
	}
}

func TestScreenEndpoint(t *testing.T) {
	screen := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png"))
	})
	ts, _ := newTestServer(t, screen)

	code, body := getBody(t, ts.URL+"/screen")
	if code != 200 || body != "png" {
		t.Errorf("got %d %q, want 200 png", code, body)
	}
}

func TestScreenEndpointDisabled(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	code, _ := getBody(t, ts.URL+"/screen")
	if code != 404 {
		t.Errorf("status: got %d, want 404", code)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	code, _ := getBody(t, ts.URL+"/nonexistent")
	if code != 404 {
		t.Errorf("status: got %d, want 404", code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/index.json", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST /index.json: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, nil)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.Fan != "OFF" {
		t.Errorf("expected fan OFF initially, got %q", sj1.Status.Fan)
	}

	tr.Update(status.State{FanOn: true, Page: "log", Popup: "Shake detected!"})
	tr.SetMQTTConnected(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if sj2.Status.Fan != "ON" {
		t.Errorf("Fan: got %q, want ON", sj2.Status.Fan)
	}
	if sj2.Status.Page != "log" || sj2.Status.Popup != "Shake detected!" {
		t.Errorf("Page/Popup: got %q/%q", sj2.Status.Page, sj2.Status.Popup)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
