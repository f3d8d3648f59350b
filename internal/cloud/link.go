package cloud

import (
	"fmt"
	"log"
	"net"
	"os/exec"
	"strings"
	"time"
)

// Link reports whether the network is usable.
type Link interface {
	Connected() bool
}

// InterfaceLink reports connected when a network interface is up and has a
// non-loopback address.
type InterfaceLink struct {
	// Name restricts the check to one interface (e.g. "wlan0"). Empty means any.
	Name string
}

// Connected implements Link.
func (l InterfaceLink) Connected() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if l.Name != "" && iface.Name != l.Name {
			continue
		}
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipn, ok := a.(*net.IPNet); ok && !ipn.IP.IsLoopback() {
				return true
			}
		}
	}
	return false
}

// StaticLink is a Link with a fixed answer.
type StaticLink bool

// Connected implements Link.
func (s StaticLink) Connected() bool {
	return bool(s)
}

// WaitForLink polls link up to attempts times, delay apart. It returns an
// error if the link never comes up.
func WaitForLink(link Link, attempts int, delay time.Duration, sleep func(time.Duration)) error {
	if sleep == nil {
		sleep = time.Sleep
	}
	for i := 0; i < attempts; i++ {
		if link.Connected() {
			return nil
		}
		sleep(delay)
	}
	log.Printf("cloud: network not up after %d attempts", attempts)
	return fmt.Errorf("network not connected after %d attempts", attempts)
}

// Runner executes a command and returns its combined output.
type Runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// JoinWiFi asks NetworkManager to associate iface with ssid. A nil run uses
// nmcli on the host. The password never appears in errors or logs.
func JoinWiFi(iface, ssid, password string, run Runner) error {
	if run == nil {
		run = execRunner
	}
	args := []string{"device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	if iface != "" {
		args = append(args, "ifname", iface)
	}
	out, err := run("nmcli", args...)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if password != "" {
			msg = strings.ReplaceAll(msg, password, "***")
		}
		return fmt.Errorf("join %q: %w: %s", ssid, err, msg)
	}
	log.Printf("cloud: joined %q on %s", ssid, iface)
	return nil
}
