package mount

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.sodimm.me/kons/lib/cvshort"
	"go.sodimm.me/kons/lib/fd"
)

// guiPath is one well-known host path GUI-enabled containers need bound
// through, in the order the original engine binds them.
type guiPath struct {
	label string
	host  string
}

func guiPaths() []guiPath {
	return []guiPath{
		{"x11", "/tmp/.X11-unix"},
		{"dbus", "/run/dbus"},
		{"udev-db", "/run/udev/data"},
		{"xauthority", os.Getenv("XAUTHORITY")},
		{"pulse-cookie", filepath.Join(os.Getenv("HOME"), ".config/pulse/cookie")},
		{"dbus-session", dbusSessionSocketPath()},
		{"pulse-run", pulseRunDir()},
		{"pipewire", filepath.Join(pulseRunDir(), "pipewire-0")},
		{"wayland", waylandSocketPath()},
	}
}

var displayRe = regexp.MustCompile(`^:([0-9]+)(\.[0-9]+)?$`)

// MountGUI binds the well-known GUI-support paths into newRoot. bindX11All
// disables the DISPLAY-based narrowing to a single X socket (the
// KONS_BIND_X11=all escape hatch).
func MountGUI(newRoot string, bindX11All bool) cvshort.Result {
	c := cvshort.Chain{}

	for _, p := range guiPaths() {
		p := p
		if p.host == "" {
			continue
		}
		if _, err := os.Stat(p.host); err != nil {
			continue
		}

		if p.label == "x11" && !bindX11All {
			c = c.ThenChain(func() cvshort.Result { return bindX11Narrow(newRoot) })
			continue
		}

		target := filepath.Join(newRoot, p.host)
		c = c.Then("gui-mkdir:"+p.label, func() error {
			return ensureTarget(p.host, target)
		}).Then("gui-bind:"+p.label, func() error {
			return Bind(p.host, target, 0)
		})
	}
	return c.Result()
}

func bindX11Narrow(newRoot string) cvshort.Result {
	host := "/tmp/.X11-unix"
	target := filepath.Join(newRoot, host)

	display := os.Getenv("DISPLAY")
	m := displayRe.FindStringSubmatch(display)
	if m == nil {
		// Not a purely-numeric local display; fall back to binding the
		// whole socket directory.
		fmt.Fprintf(os.Stderr, "kons: warning: DISPLAY %q is not of the form :N; binding all of %s\n", display, host)
		return cvshort.Chain{}.
			Then("gui-mkdir:x11-fallback", func() error { return ensureTarget(host, target) }).
			Then("gui-bind:x11-fallback", func() error { return Bind(host, target, 0) }).
			Result()
	}

	socket := "X" + m[1]
	return cvshort.Chain{}.
		Then("gui-mkdir:x11-dir", func() error { return os.MkdirAll(target, 01777) }).
		Then("gui-touch:x11-socket", func() error { return fd.Touch(filepath.Join(target, socket)) }).
		Then("gui-bind:x11-socket", func() error {
			return Bind(filepath.Join(host, socket), filepath.Join(target, socket), 0)
		}).
		Result()
}

func ensureTarget(host, target string) error {
	fi, err := os.Stat(host)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return fd.Touch(target)
}

func dbusSessionSocketPath() string {
	addr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")
	const prefix = "unix:path="
	for _, part := range splitComma(addr) {
		if len(part) > len(prefix) && part[:len(prefix)] == prefix {
			return part[len(prefix):]
		}
	}
	return ""
}

func pulseRunDir() string {
	uid := os.Getuid()
	return fmt.Sprintf("/run/user/%d/pulse", uid)
}

func waylandSocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	disp := os.Getenv("WAYLAND_DISPLAY")
	if dir == "" || disp == "" {
		return ""
	}
	return filepath.Join(dir, disp)
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i, c := range s {
		if c == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
