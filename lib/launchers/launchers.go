// Package launchers detects installed applications and installs the
// standard launcher shortcuts for them as custom keybindings.
package launchers

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/keyrig/keyrig/lib/log"
	"github.com/keyrig/keyrig/models"
	"github.com/keyrig/keyrig/worker/types"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const queryTimeout = 5 * time.Second

type Detector struct {
	// test hooks
	lookPath func(string) (string, error)
	queryOut func(args ...string) (string, error)
}

func NewDetector() *Detector {
	return &Detector{
		lookPath: lookExecutable,
		queryOut: queryOutput,
	}
}

// lookExecutable resolves a binary in PATH and double-checks the execute
// bit for the current user, which LookPath only approximates.
func lookExecutable(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", err
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return "", errors.Wrapf(err, "access %s", path)
	}
	return path, nil
}

func queryOutput(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (d *Detector) have(binary string) bool {
	_, err := d.lookPath(binary)
	return err == nil
}

func (d *Detector) firstInstalled(candidates [][2]string) string {
	for _, c := range candidates {
		if d.have(c[0]) {
			return c[1]
		}
	}
	return ""
}

// Terminal returns the launch command for the best installed terminal
// emulator, or "".
func (d *Detector) Terminal() string {
	cmd := d.firstInstalled([][2]string{
		{"ghostty", "ghostty"},
		{"kitty", "kitty"},
		{"alacritty", "alacritty"},
		{"wezterm", "wezterm start"},
		{"foot", "foot"},
		{"gnome-terminal", "gnome-terminal"},
		{"kgx", "kgx"},
		{"tilix", "tilix"},
		{"terminator", "terminator"},
		{"xfce4-terminal", "xfce4-terminal"},
		{"konsole", "konsole --new-tab"},
		{"xterm", "xterm"},
	})
	if cmd == "" && d.have("x-terminal-emulator") {
		cmd = "x-terminal-emulator"
	}
	return cmd
}

// FileManager returns the launch command for the default file manager,
// consulting the xdg-mime handler for directories first.
func (d *Detector) FileManager() string {
	if desktop, err := d.queryOut("xdg-mime", "query", "default", "inode/directory"); err == nil {
		for _, m := range [][2]string{
			{"nautilus", "nautilus --new-window"},
			{"thunar", "thunar"},
			{"dolphin", "dolphin --new-window"},
			{"nemo", "nemo --new-window"},
			{"pcmanfm", "pcmanfm --new-win"},
			{"caja", "caja --new-window"},
		} {
			if strings.Contains(desktop, m[0]) {
				return m[1]
			}
		}
	}
	return d.firstInstalled([][2]string{
		{"nautilus", "nautilus --new-window"},
		{"thunar", "thunar"},
		{"dolphin", "dolphin --new-window"},
		{"nemo", "nemo --new-window"},
		{"pcmanfm", "pcmanfm --new-win"},
		{"caja", "caja --new-window"},
	})
}

// Browser returns the launch command for the default web browser per
// xdg-settings, falling back to whatever is installed.
func (d *Detector) Browser() string {
	if desktop, err := d.queryOut("xdg-settings", "get", "default-web-browser"); err == nil {
		switch {
		case strings.Contains(desktop, "firefox"):
			return "firefox --new-window"
		case strings.Contains(desktop, "chrome"), strings.Contains(desktop, "chromium"):
			if d.have("google-chrome") {
				return "google-chrome --new-window"
			}
			return "chromium --new-window"
		case strings.Contains(desktop, "brave"):
			return "brave --new-window"
		case strings.Contains(desktop, "vivaldi"):
			return "vivaldi --new-window"
		case strings.Contains(desktop, "epiphany"), strings.Contains(desktop, "gnome-web"):
			return "epiphany --new-window"
		case strings.Contains(desktop, "zen"):
			return "zen-browser --new-window"
		}
	}
	return d.firstInstalled([][2]string{
		{"firefox", "firefox --new-window"},
		{"google-chrome", "google-chrome --new-window"},
		{"google-chrome-stable", "google-chrome-stable --new-window"},
		{"chromium", "chromium --new-window"},
		{"chromium-browser", "chromium-browser --new-window"},
		{"brave-browser", "brave-browser --new-window"},
		{"vivaldi", "vivaldi --new-window"},
		{"epiphany", "epiphany --new-window"},
		{"zen-browser", "zen-browser --new-window"},
	})
}

// MusicPlayer returns the launch command for an installed music player,
// preferring the Spotify flatpak.
func (d *Detector) MusicPlayer() string {
	if _, err := d.queryOut("flatpak", "info", "com.spotify.Client"); err == nil {
		return "flatpak run com.spotify.Client"
	}
	if d.have("spotify") {
		return "spotify"
	}
	if _, err := d.queryOut("flatpak", "info", "com.mastermindzh.tidal-hifi"); err == nil {
		return "flatpak run com.mastermindzh.tidal-hifi"
	}
	return d.firstInstalled([][2]string{
		{"rhythmbox", "rhythmbox"},
		{"gnome-music", "gnome-music"},
		{"lollypop", "lollypop"},
		{"elisa", "elisa"},
		{"audacious", "audacious"},
		{"clementine", "clementine"},
		{"strawberry", "strawberry"},
		{"amberol", "amberol"},
	})
}

// ValidateCommand checks that a launch command is shell-splittable and
// that its binary is installed. Used before accepting user-supplied
// custom binding commands.
func (d *Detector) ValidateCommand(command string) error {
	fields, err := shlex.Split(command)
	if err != nil {
		return errors.Wrap(err, "invalid command")
	}
	if len(fields) == 0 {
		return errors.New("empty command")
	}
	if fields[0] != "flatpak" && !d.have(fields[0]) {
		return errors.Errorf("%s: command not found", fields[0])
	}
	return nil
}

type launcher struct {
	kind    string
	name    string
	binding string
	detect  func(*Detector) string
}

var defaultLaunchers = []launcher{
	{"terminal", "Launch Terminal", "<Super>Return", (*Detector).Terminal},
	{"file_manager", "Launch Files", "<Super>e", (*Detector).FileManager},
	{"browser", "Launch Browser", "<Super>b", (*Detector).Browser},
	{"music", "Launch Music", "<Super>p", (*Detector).MusicPlayer},
}

// SetupDefaults installs the standard launcher shortcuts for every
// application the detector finds. Existing entries with the same name are
// updated in place instead of duplicated. Returns a result message per
// launcher kind.
func (d *Detector) SetupDefaults(backend types.Backend) map[string]string {
	existing := make(map[string]string)
	for _, cb := range backend.CustomBindings() {
		existing[cb.Name] = cb.Path
	}

	results := make(map[string]string, len(defaultLaunchers))
	for _, l := range defaultLaunchers {
		command := l.detect(d)
		if command == "" {
			results[l.kind] = "not found"
			continue
		}
		if path, ok := existing[l.name]; ok {
			binding := l.binding
			_, err := backend.UpdateCustomBinding(path, models.CustomPatch{
				Command: &command,
				Binding: &binding,
			})
			if err != nil {
				log.Errorf("update %s launcher: %v", l.kind, err)
				results[l.kind] = "failed: " + err.Error()
				continue
			}
			results[l.kind] = "updated: " + command
			continue
		}
		if _, err := backend.AddCustomBinding(l.name, command, l.binding); err != nil {
			log.Errorf("add %s launcher: %v", l.kind, err)
			results[l.kind] = "failed: " + err.Error()
			continue
		}
		results[l.kind] = "added: " + command
	}
	return results
}
