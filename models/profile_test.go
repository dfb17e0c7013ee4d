package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRoundTrip(t *testing.T) {
	p := NewProfile("tiling")
	p.Description = "Tiling focused layout"
	p.Author = "tester"
	p.SetShortcut("org.gnome.desktop.wm.keybindings", "close", []string{"<Super>q"})
	p.SetShortcut("org.gnome.shell.keybindings", "toggle-overview",
		[]string{"<Super>s", "<Super>F1"})
	p.SetShortcut("org.gnome.desktop.wm.keybindings", "minimize", []string{})
	p.XKB.CapsLock = "caps:escape"
	p.MacKeyboard = &MacKeyboardConfig{FnMode: FnFKeys, SwapOptCmd: true}
	p.Metadata["preset"] = "true"

	path := filepath.Join(t.TempDir(), "tiling.ini")
	require.NoError(t, p.Save(path))

	loaded, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "tiling", loaded.Name)
	assert.Equal(t, "Tiling focused layout", loaded.Description)
	assert.Equal(t, "tester", loaded.Author)
	assert.WithinDuration(t, p.Created, loaded.Created, time.Second)
	assert.True(t, loaded.IsPreset())

	accels, ok := loaded.GetShortcut("org.gnome.desktop.wm.keybindings", "close")
	require.True(t, ok)
	assert.Equal(t, []string{"<Super>q"}, accels)

	accels, ok = loaded.GetShortcut("org.gnome.shell.keybindings", "toggle-overview")
	require.True(t, ok)
	assert.Equal(t, []string{"<Super>s", "<Super>F1"}, accels)

	// an empty list means explicitly disabled, distinct from absent
	accels, ok = loaded.GetShortcut("org.gnome.desktop.wm.keybindings", "minimize")
	require.True(t, ok)
	assert.Empty(t, accels)
	_, ok = loaded.GetShortcut("org.gnome.desktop.wm.keybindings", "maximize")
	assert.False(t, ok)

	assert.Equal(t, "caps:escape", loaded.XKB.CapsLock)
	require.NotNil(t, loaded.MacKeyboard)
	assert.Equal(t, FnFKeys, loaded.MacKeyboard.FnMode)
	assert.True(t, loaded.MacKeyboard.SwapOptCmd)
	assert.False(t, loaded.MacKeyboard.ISOLayout)
}

func TestProfileWithoutOptionalSections(t *testing.T) {
	p := NewProfile("bare")
	path := filepath.Join(t.TempDir(), "bare.ini")
	require.NoError(t, p.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "[xkb]")
	assert.NotContains(t, string(data), "[mac_keyboard]")
	assert.NotContains(t, string(data), "[metadata]")

	loaded, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Nil(t, loaded.MacKeyboard)
	assert.Empty(t, loaded.XKB.Options())
	assert.False(t, loaded.IsPreset())
}

func TestLoadProfileMissing(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.ini"))
	assert.Error(t, err)
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "org.gnome.shell.keybindings.toggle-overview",
		StorageKey("org.gnome.shell.keybindings", "toggle-overview"))
}

func TestParseFnMode(t *testing.T) {
	assert.Equal(t, FnDisabled, ParseFnMode("disabled"))
	assert.Equal(t, FnFKeys, ParseFnMode("fkeys"))
	assert.Equal(t, FnMedia, ParseFnMode("media"))
	assert.Equal(t, FnMedia, ParseFnMode("anything"))

	for _, m := range []FnMode{FnDisabled, FnFKeys, FnMedia} {
		assert.Equal(t, m, ParseFnMode(m.String()))
	}
}

func TestModprobeOptions(t *testing.T) {
	cfg := &MacKeyboardConfig{FnMode: FnFKeys, SwapOptCmd: true}
	assert.Equal(t, map[string]int{
		"fnmode":           1,
		"swap_opt_cmd":     1,
		"swap_fn_leftctrl": 0,
		"iso_layout":       0,
	}, cfg.ModprobeOptions())
}

func TestXKBOptions(t *testing.T) {
	x := XKBOptions{CapsLock: "caps:escape", Compose: "compose:ralt"}
	assert.Equal(t, []string{"caps:escape", "compose:ralt"}, x.Options())
	assert.Empty(t, (&XKBOptions{}).Options())
}
