package accel

import (
	"testing"

	"github.com/keyrig/keyrig/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want models.KeyBinding
		ok   bool
	}{
		{"<Super>Return", models.KeyBinding{Key: "Return", Mods: models.ModSuper}, true},
		{"<Control><Shift>a", models.KeyBinding{
			Key: "a", Mods: models.ModCtrl | models.ModShift}, true},
		// alias spellings resolve to the same binding
		{"<Ctrl><Shift>A", models.KeyBinding{
			Key: "a", Mods: models.ModCtrl | models.ModShift}, true},
		{"<Primary>c", models.KeyBinding{Key: "c", Mods: models.ModCtrl}, true},
		{"<Win>e", models.KeyBinding{Key: "e", Mods: models.ModSuper}, true},
		{"<Alt>F4", models.KeyBinding{Key: "F4", Mods: models.ModAlt}, true},
		{"<Super>Page_Up", models.KeyBinding{Key: "Page_Up", Mods: models.ModSuper}, true},
		{"XF86AudioRaiseVolume", models.KeyBinding{Key: "XF86AudioRaiseVolume"}, true},
		// unknown XF86 tokens still parse
		{"XF86FutureKey", models.KeyBinding{Key: "XF86FutureKey"}, true},
		{"F35", models.KeyBinding{Key: "F35"}, true},
		{"", models.KeyBinding{}, false},
		{"disabled", models.KeyBinding{}, false},
		{"Disabled", models.KeyBinding{}, false},
		{"<Bogus>a", models.KeyBinding{}, false},
		{"<Super>NotAKey", models.KeyBinding{}, false},
		{"<Super", models.KeyBinding{}, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.text)
		require.Equal(t, tt.ok, ok, tt.text)
		if ok {
			assert.Equal(t, tt.want, got, tt.text)
		}
	}
}

func TestFormatIsCanonical(t *testing.T) {
	b := models.KeyBinding{
		Key:  "p",
		Mods: models.ModSuper | models.ModShift | models.ModCtrl,
	}
	// modifiers always print in the same order, whatever order they had
	assert.Equal(t, "<Shift><Control><Super>p", Format(b))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, text := range []string{
		"<Super>Return",
		"<Shift><Control>a",
		"<Alt>F4",
		"<Super>space",
		"XF86AudioMute",
		"<Shift><Control><Alt><Super>z",
	} {
		b, ok := Parse(text)
		require.True(t, ok, text)
		assert.Equal(t, text, Format(b), text)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "<Shift><Control>a", Normalize("<ctrl><shift>A"))
	assert.Equal(t, "<Super>Return", Normalize("<win>enter"))
	// unparsable text passes through
	assert.Equal(t, "garbage", Normalize("garbage"))
}

func TestSameSet(t *testing.T) {
	assert.True(t, SameSet(
		[]string{"<Control><Shift>p"},
		[]string{"<Shift><Ctrl>p"},
	))
	assert.True(t, SameSet(
		[]string{"<Super>1", "<Super>2"},
		[]string{"<Super>2", "<Super>1"},
	))
	assert.True(t, SameSet(nil, []string{}))
	assert.False(t, SameSet([]string{"<Super>1"}, []string{"<Super>2"}))
	assert.False(t, SameSet([]string{"<Super>1"}, nil))
	// unparsable entries are dropped before comparing
	assert.True(t, SameSet([]string{"disabled"}, nil))
}

func TestParseAllDropsInvalid(t *testing.T) {
	bindings := ParseAll([]string{"<Super>1", "disabled", "", "<Super>2"})
	require.Len(t, bindings, 2)
	assert.Equal(t, "1", bindings[0].Key)
	assert.Equal(t, "2", bindings[1].Key)
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		binding models.KeyBinding
		want    string
	}{
		{models.KeyBinding{Key: "a", Mods: models.ModCtrl | models.ModShift},
			"Ctrl+Shift+A"},
		{models.KeyBinding{Key: "Return", Mods: models.ModSuper}, "Super+Enter"},
		{models.KeyBinding{Key: "Up", Mods: models.ModSuper}, "Super+↑"},
		{models.KeyBinding{Key: "XF86AudioMute"}, "Mute"},
		{models.KeyBinding{Key: "XF86FutureKey"}, "FutureKey"},
		{models.KeyBinding{Key: "F5"}, "F5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Humanize(tt.binding))
	}
}

func TestLabel(t *testing.T) {
	s := &models.Shortcut{}
	assert.Equal(t, "Disabled", Label(s))

	s.Bindings = []models.KeyBinding{{Key: "q", Mods: models.ModSuper}}
	assert.Equal(t, "Super+Q", Label(s))
}

func TestPrimary(t *testing.T) {
	s := &models.Shortcut{}
	assert.Empty(t, Primary(s))

	s.Bindings = []models.KeyBinding{
		{Key: "q", Mods: models.ModSuper},
		{Key: "w", Mods: models.ModSuper},
	}
	assert.Equal(t, "<Super>q", Primary(s))
}
