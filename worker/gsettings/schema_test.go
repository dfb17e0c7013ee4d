package gsettings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsShortcutKey(t *testing.T) {
	tests := []struct {
		key      string
		typ      string
		defaults []string
		want     bool
	}{
		{"close", typeStringArray, []string{"<Alt>F4"}, true},
		{"screensaver", typeStringArray, []string{"<Super>l"}, true},
		{"volume-up", typeString, []string{"XF86AudioRaiseVolume"}, true},
		{"maximize", typeStringArray, []string{}, true},
		{"help", typeStringArray, []string{""}, true},
		{"F1", typeStringArray, []string{"F1"}, true},

		// excluded by name pattern
		{"active-window-hint-color", typeStringArray, []string{"<Super>x"}, false},
		{"enable-tiling-system", typeStringArray, []string{"<Super>x"}, false},
		{"default-move-mode", typeString, []string{"edit"}, false},
		{"window-gap-size", typeString, []string{"8"}, false},
		{"dynamic-keybinding-behavior", typeString, nil, false},

		// excluded by type
		{"maximize", "b", []string{"true"}, false},
		{"workspaces", "i", []string{"4"}, false},

		// excluded because the default does not look like an accelerator
		{"last-version", typeStringArray, []string{"some long sentence value"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want,
			isShortcutKey(tt.key, tt.typ, tt.defaults), tt.key)
	}
}

func TestKeyCategory(t *testing.T) {
	assert.Equal(t, "window-management", keyCategory("close", "shell"))
	assert.Equal(t, "navigation", keyCategory("switch-to-workspace-7", "shell"))
	assert.Equal(t, "navigation", keyCategory("switch-panels", "shell"))
	assert.Equal(t, "media", keyCategory("volume-step", "shell"))
	assert.Equal(t, "system", keyCategory("screensaver", "media"))
	assert.Equal(t, "tiling", keyCategory("tile-left-half", "tiling"))
}

func TestHumanizeKeyName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"close", "Close"},
		{"switch-to-workspace-1", "1"},
		{"toggle-maximized", "Maximized"},
		{"next-static", "Next Track"},
		{"play", "Play/Pause"},
		{"activate-layout0", "Layout 1"},
		{"activate-layout3", "Layout 4"},
		{"tile-left-half", "Left Half"},
		{"tile-bottomright-quarter", "Bottom Right"},
		{"show-screenshot-ui", "Screenshot Ui"},
		{"restore-window-size-ignore-ta", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanizeKeyName(tt.key), tt.key)
	}
}

func TestShortcutGroup(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"tile-left-half", "Tile Halves"},
		{"tile-topleft-quarter", "Tile Quarters"},
		{"move-to-corner-ne", "Tile Quarters"},
		{"activate-layout2", "Layouts"},
		{"center-window", "Tile Actions"},
		{"switch-to-workspace-3", "Switch Workspace"},
		{"move-to-workspace-left", "Move to Workspace"},
		{"move-to-monitor-up", "Move to Monitor"},
		{"switch-applications", "Switch Windows"},
		{"cycle-group", "Switch Windows"},
		{"toggle-fullscreen", "Window State"},
		{"begin-resize", "Window Actions"},
		{"volume-up-static", "Volume"},
		{"play-static", "Playback"},
		{"playback-rewind", "Playback"},
		{"show-screenshot-ui", "Screenshots"},
		{"toggle-overview", "Shell Actions"},
		{"logout", "System"},
		{"magnifier-zoom-in", "Accessibility"},
		{"switch-input-source", "Input"},
		{"restore-window-size-ignore-ta", "Internal"},
		{"something-novel", "Other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shortcutGroup(tt.key), tt.key)
	}
}
