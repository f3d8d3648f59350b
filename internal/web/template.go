package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/plant-station/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"epoch": func(sec int64) string {
		return time.Unix(sec, 0).UTC().Format("2006-01-02 15:04:05")
	},
	"onOff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Plant Station {{.Config.DeviceID}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.screen { width: 320px; height: 240px; border: 1px solid #444; }
</style>
</head>
<body>
<h1>Plant Station {{.Config.DeviceID}}</h1>

<img class="screen" src="/screen" alt="panel">

<h2>Sensors</h2>
<table>
<tr><th>Proximity</th><td>{{.Sensor.Proximity}}</td></tr>
<tr><th>Ambient light</th><td>{{.Sensor.AmbientLight}} lux</td></tr>
<tr><th>White light</th><td>{{.Sensor.WhiteLight}}</td></tr>
<tr><th>Temperature</th><td>{{printf "%.1f" .Sensor.Temperature}} &deg;C</td></tr>
<tr><th>Humidity</th><td>{{printf "%.1f" .Sensor.Humidity}} %</td></tr>
</table>

<h2>State</h2>
<table>
<tr><th>Fan</th><td class="{{if .FanOn}}on{{else}}off{{end}}">{{onOff .FanOn}}</td></tr>
<tr><th>Remote fan</th><td>{{if .Baselined}}{{onOff .Remote}}{{else}}waiting for first poll{{end}}</td></tr>
<tr><th>Page</th><td>{{if .Page}}{{.Page}}{{else}}main{{end}}</td></tr>
{{if .Popup}}<tr><th>Popup</th><td>{{.Popup}}</td></tr>{{end}}
</table>

<h2>Event Log</h2>
<table>
{{range .Entries}}<tr><th>{{epoch .Time}}</th><td>{{.Type}}</td></tr>
{{else}}<tr><td>No events yet</td></tr>
{{end}}</table>

<h2>Counts</h2>
<table>
<tr><th>Regular</th><td>{{.Counts.Regular}}</td></tr>
<tr><th>Shake</th><td>{{.Counts.Shake}}</td></tr>
<tr><th>Cloud state change</th><td>{{.Counts.CloudStateChange}}</td></tr>
<tr><th>Uploads</th><td>{{.Counts.UploadsOK}} ok, {{.Counts.UploadsFailed}} failed</td></tr>
<tr><th>Polls</th><td>{{.Counts.PollsOK}} ok, {{.Counts.PollsFailed}} failed</td></tr>
<tr><th>Fan toggles</th><td>{{.Counts.FanToggles}}</td></tr>
</table>

{{with .Upload}}<h2>Last Upload</h2>
<table>
<tr><th>Time</th><td>{{.Time.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Trigger</th><td>{{.Trigger}}</td></tr>
<tr><th>Status</th><td>{{if .Err}}{{.Err}}{{else}}{{.Status}}{{end}}</td></tr>
<tr><th>Request</th><td>{{.RequestID}}</td></tr>
</table>{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Interface}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Upload every</th><td>{{.Config.UploadIntervalMs}}ms</td></tr>
<tr><th>Poll every</th><td>{{.Config.PollIntervalMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
