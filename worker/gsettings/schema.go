package gsettings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/keyrig/keyrig/models"
)

// schemaInfo is one entry of the closed, curated list of schemas that are
// scanned for shortcuts. This is not open-ended discovery.
type schemaInfo struct {
	schema   string
	category string
}

var shortcutSchemas = []schemaInfo{
	{"org.gnome.desktop.wm.keybindings", "window-management"},
	{"org.gnome.shell.keybindings", "shell"},
	{"org.gnome.settings-daemon.plugins.media-keys", "media"},
	{"org.gnome.mutter.keybindings", "window-management"},
	{"org.gnome.mutter.wayland.keybindings", "window-management"},
	{"org.gnome.shell.extensions.tiling-assistant", "tiling"},
}

var categories = []models.ShortcutCategory{
	{ID: "tiling", Name: "Tiling", Icon: "view-grid-symbolic",
		Description: "Snap and tile windows"},
	{ID: "window-management", Name: "Window Management",
		Icon: "preferences-system-windows-symbolic",
		Description: "Move, resize, and manage windows"},
	{ID: "navigation", Name: "Navigation", Icon: "go-home-symbolic",
		Description: "Navigate between workspaces and windows"},
	{ID: "shell", Name: "Shell", Icon: "view-app-grid-symbolic",
		Description: "GNOME Shell functions"},
	{ID: "media", Name: "Media", Icon: "multimedia-player-symbolic",
		Description: "Media playback and volume controls"},
	{ID: "accessibility", Name: "Accessibility",
		Icon: "preferences-desktop-accessibility-symbolic",
		Description: "Accessibility features"},
	{ID: "system", Name: "System", Icon: "preferences-system-symbolic",
		Description: "System functions like lock screen and power"},
	{ID: "custom", Name: "Custom", Icon: "application-x-addon-symbolic",
		Description: "User-defined shortcuts"},
}

// keyCategories overrides the schema default category per key name. It
// takes priority over the prefix heuristics in keyCategory.
var keyCategories = map[string]string{
	// window management
	"close": "window-management", "minimize": "window-management",
	"maximize": "window-management", "maximize-horizontally": "window-management",
	"maximize-vertically": "window-management", "unmaximize": "window-management",
	"toggle-maximized": "window-management", "toggle-fullscreen": "window-management",
	"always-on-top": "window-management", "toggle-above": "window-management",
	"raise": "window-management", "lower": "window-management",
	"move-to-center": "window-management", "move-to-corner-nw": "window-management",
	"move-to-corner-ne": "window-management", "move-to-corner-sw": "window-management",
	"move-to-corner-se": "window-management", "move-to-side-n": "window-management",
	"move-to-side-s": "window-management", "move-to-side-e": "window-management",
	"move-to-side-w": "window-management", "begin-move": "window-management",
	"begin-resize": "window-management",
	// navigation
	"switch-windows": "navigation", "switch-windows-backward": "navigation",
	"switch-applications": "navigation", "switch-applications-backward": "navigation",
	"switch-group": "navigation", "switch-group-backward": "navigation",
	"cycle-windows": "navigation", "cycle-windows-backward": "navigation",
	"cycle-group": "navigation", "cycle-group-backward": "navigation",
	"switch-to-workspace-left": "navigation", "switch-to-workspace-right": "navigation",
	"switch-to-workspace-up": "navigation", "switch-to-workspace-down": "navigation",
	"switch-to-workspace-last": "navigation",
	"move-to-workspace-left": "navigation", "move-to-workspace-right": "navigation",
	"move-to-workspace-up": "navigation", "move-to-workspace-down": "navigation",
	"move-to-workspace-last": "navigation",
	"move-to-monitor-left": "navigation", "move-to-monitor-right": "navigation",
	"move-to-monitor-up": "navigation", "move-to-monitor-down": "navigation",
	// shell
	"toggle-overview": "shell", "toggle-application-view": "shell",
	"toggle-message-tray": "shell", "focus-active-notification": "shell",
	"show-screenshot-ui": "shell", "show-screen-recording-ui": "shell",
	"screenshot": "shell", "screenshot-window": "shell",
	"open-application-menu": "shell", "switch-input-source": "shell",
	"switch-input-source-backward": "shell",
	// system
	"screensaver": "system", "logout": "system", "power": "system",
	"suspend": "system", "hibernate": "system", "lock-screen": "system",
	// media
	"play": "media", "pause": "media", "stop": "media", "previous": "media",
	"next": "media", "volume-up": "media", "volume-down": "media",
	"volume-mute": "media", "mic-mute": "media", "eject": "media", "media": "media",
	// accessibility
	"increase-text-size": "accessibility", "decrease-text-size": "accessibility",
	"toggle-contrast": "accessibility", "magnifier": "accessibility",
	"magnifier-zoom-in": "accessibility", "magnifier-zoom-out": "accessibility",
	"screenreader": "accessibility", "on-screen-keyboard": "accessibility",
}

func init() {
	for i := 1; i <= 10; i++ {
		keyCategories[fmt.Sprintf("switch-to-workspace-%d", i)] = "navigation"
		keyCategories[fmt.Sprintf("move-to-workspace-%d", i)] = "navigation"
	}
}

// nonShortcutPatterns excludes keys that live in shortcut schemas but hold
// unrelated settings. The ordered rule list is deliberately approximate;
// its false-positive/negative behavior is load-bearing for existing
// presets, so do not strengthen it.
var nonShortcutPatterns = []string{
	"-ignore-ta",
	"-color",
	"-size",
	"-mode",
	"-behavior",
	"-rects",
	"enable-",
	"disable-",
	"default-",
	"debugging-",
	"dynamic-",
	"favorite-",
	"active-window-hint",
	"adapt-",
	"low-performance",
	"restore-window-size",
}

// isShortcutKey decides whether a key in a scanned schema is a shortcut
// binding: name-pattern exclusion first, then the value type must be a
// string or string array, then the default value must look like plausible
// accelerator syntax.
func isShortcutKey(key, typ string, defaults []string) bool {
	for _, p := range nonShortcutPatterns {
		if strings.Contains(key, p) {
			return false
		}
	}
	if typ != typeString && typ != typeStringArray {
		return false
	}
	if typ == typeStringArray && len(defaults) > 0 {
		plausible := false
		for _, v := range defaults {
			if strings.HasPrefix(v, "<") || // has modifiers
				strings.HasPrefix(v, "XF86") || // media/function keys
				v == "disabled" || v == "" ||
				len(v) <= 3 { // single key like "F1"
				plausible = true
				break
			}
		}
		if !plausible {
			return false
		}
	}
	return true
}

// keyCategory picks a category for a key: the static table first, then
// prefix heuristics, then the scanning schema's default.
func keyCategory(key, schemaDefault string) string {
	if cat, ok := keyCategories[key]; ok {
		return cat
	}
	for _, p := range []string{"switch-to-", "move-to-", "switch-"} {
		if strings.HasPrefix(key, p) {
			return "navigation"
		}
	}
	for _, p := range []string{"volume-", "mic-", "media-"} {
		if strings.HasPrefix(key, p) {
			return "media"
		}
	}
	for _, p := range []string{"toggle-", "show-"} {
		if strings.HasPrefix(key, p) {
			return "shell"
		}
	}
	for _, p := range []string{"begin-", "maximize", "minimize", "close", "raise", "lower"} {
		if strings.HasPrefix(key, p) {
			return "window-management"
		}
	}
	return schemaDefault
}

var mediaNames = map[string]string{
	"next":             "Next Track",
	"previous":         "Previous Track",
	"play":             "Play/Pause",
	"pause":            "Pause",
	"stop":             "Stop",
	"eject":            "Eject",
	"playback-forward": "Fast Forward",
	"playback-rewind":  "Rewind",
	"playback-random":  "Shuffle",
	"playback-repeat":  "Repeat",
}

var tilingNames = map[string]string{
	"left-half":             "Left Half",
	"right-half":            "Right Half",
	"top-half":              "Top Half",
	"bottom-half":           "Bottom Half",
	"topleft-quarter":       "Top Left",
	"topright-quarter":      "Top Right",
	"bottomleft-quarter":    "Bottom Left",
	"bottomright-quarter":   "Bottom Right",
	"maximize":              "Maximize",
	"maximize-horizontally": "Maximize Horizontal",
	"maximize-vertically":   "Maximize Vertical",
	"center-window":         "Center Window",
	"restore-window":        "Restore Window",
	"edit-mode":             "Edit Mode",
}

var namePrefixes = []string{
	"switch-to-workspace-",
	"move-to-workspace-",
	"switch-to-",
	"move-to-",
	"switch-",
	"toggle-tiled-",
	"toggle-",
	"begin-",
	"cycle-",
	"volume-",
	"show-",
	"tile-",
	"activate-",
}

// humanizeKeyName turns a settings key name into a display label. An empty
// result means the key should not be shown at all.
func humanizeKeyName(key string) string {
	name := strings.TrimSuffix(key, "-static")

	if friendly, ok := mediaNames[name]; ok {
		return friendly
	}

	for _, p := range namePrefixes {
		if strings.HasPrefix(name, p) {
			name = name[len(p):]
			break
		}
	}

	// internal tiling assistant keys
	if strings.HasSuffix(name, "-ignore-ta") {
		return ""
	}

	if friendly, ok := tilingNames[name]; ok {
		return friendly
	}

	if rest := strings.TrimPrefix(name, "layout"); rest != name {
		if n, err := strconv.Atoi(rest); err == nil {
			return fmt.Sprintf("Layout %d", n+1)
		}
	}

	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// shortcutGroup assigns the display group within a category. Ordered
// pattern rules with a catch-all; grouping never affects reconciliation.
func shortcutGroup(key string) string {
	if strings.HasSuffix(key, "-ignore-ta") {
		return "Internal"
	}

	for _, x := range []string{
		"left-half", "right-half", "top-half", "bottom-half",
		"toggle-tiled-left", "toggle-tiled-right",
	} {
		if strings.Contains(key, x) {
			return "Tile Halves"
		}
	}
	if strings.Contains(key, "quarter") || strings.Contains(key, "corner") {
		return "Tile Quarters"
	}
	if strings.HasPrefix(key, "activate-layout") {
		return "Layouts"
	}
	switch key {
	case "tile-maximize", "tile-maximize-horizontally",
		"tile-maximize-vertically", "center-window", "restore-window",
		"tile-edit-mode", "auto-tile":
		return "Tile Actions"
	}

	if strings.HasPrefix(key, "switch-to-workspace") {
		return "Switch Workspace"
	}
	if strings.HasPrefix(key, "move-to-workspace") {
		return "Move to Workspace"
	}
	if strings.HasPrefix(key, "move-to-monitor") {
		return "Move to Monitor"
	}
	if strings.Contains(key, "input-source") {
		return "Input"
	}
	if strings.HasPrefix(key, "switch-") || strings.HasPrefix(key, "cycle-") {
		return "Switch Windows"
	}
	if strings.HasPrefix(key, "move-to-side") {
		return "Tile Halves"
	}
	if strings.HasPrefix(key, "move-to-corner") || key == "move-to-center" {
		return "Tile Quarters"
	}

	switch key {
	case "maximize", "minimize", "unmaximize", "toggle-maximized",
		"maximize-horizontally", "maximize-vertically", "toggle-fullscreen":
		return "Window State"
	case "close", "always-on-top", "toggle-above", "raise", "lower",
		"begin-move", "begin-resize":
		return "Window Actions"
	}

	if strings.HasPrefix(key, "volume-") || key == "mic-mute" {
		return "Volume"
	}

	base := strings.TrimSuffix(key, "-static")
	switch base {
	case "play", "pause", "stop", "previous", "next", "media", "eject":
		return "Playback"
	}
	if strings.HasPrefix(base, "playback-") {
		return "Playback"
	}

	if strings.Contains(key, "screenshot") || strings.Contains(key, "screen-recording") {
		return "Screenshots"
	}
	for _, x := range []string{"magnifier", "screenreader", "text-size", "contrast", "keyboard"} {
		if strings.Contains(key, x) {
			return "Accessibility"
		}
	}
	if strings.HasPrefix(key, "toggle-") || strings.HasPrefix(key, "show-") {
		return "Shell Actions"
	}
	switch key {
	case "screensaver", "logout", "power", "suspend", "hibernate", "lock-screen":
		return "System"
	}
	return "Other"
}
