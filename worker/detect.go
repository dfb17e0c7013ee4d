package worker

import (
	"os"
	"strings"
)

// Desktop names used to select a backend. They double as the registry keys
// in worker/handlers.
const (
	DesktopGNOME = "gnome"
	DesktopKDE   = "kde"
)

// DetectDesktop inspects the session environment and returns the desktop
// name a backend is registered under. Unknown desktops map to GNOME by
// convention: most gsettings-based environments (Budgie, Cinnamon, ...)
// are close enough for the key-value adapter to work.
func DetectDesktop() string {
	// XDG_CURRENT_DESKTOP can hold several values, e.g. "ubuntu:GNOME"
	for _, part := range strings.Split(os.Getenv("XDG_CURRENT_DESKTOP"), ":") {
		switch strings.ToUpper(part) {
		case "GNOME", "UNITY", "UBUNTU", "BUDGIE", "CINNAMON":
			return DesktopGNOME
		case "KDE", "PLASMA":
			return DesktopKDE
		}
	}

	switch strings.ToUpper(os.Getenv("XDG_SESSION_DESKTOP")) {
	case "GNOME", "GNOME-XORG", "GNOME-WAYLAND", "UBUNTU":
		return DesktopGNOME
	case "KDE", "PLASMA", "PLASMAWAYLAND":
		return DesktopKDE
	}

	return DesktopGNOME
}
