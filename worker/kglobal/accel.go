package kglobal

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/keyrig/keyrig/lib/accel"
	"github.com/keyrig/keyrig/models"
)

// disabledValue is the sentinel kglobalshortcutsrc stores for unbound
// actions.
const disabledValue = "none"

var kdeModNames = map[string]models.Modifier{
	"meta":  models.ModSuper,
	"super": models.ModSuper,
	"ctrl":  models.ModCtrl,
	"control": models.ModCtrl,
	"shift": models.ModShift,
	"alt":   models.ModAlt,
}

// parseKDEAccel converts one KDE shortcut ("Meta+Return", "Ctrl+Shift+A")
// to a canonical binding. "none" and empty mean unbound. When a field
// holds alternates separated by tabs or commas, only the first counts.
func parseKDEAccel(text string) (models.KeyBinding, bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, disabledValue) {
		return models.KeyBinding{}, false
	}
	if i := strings.IndexByte(text, '\t'); i >= 0 {
		text = text[:i]
	}
	if i := strings.IndexByte(text, ','); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)

	parts := strings.Split(text, "+")
	key := parts[len(parts)-1]
	mods := parts[:len(parts)-1]
	// "Meta++" means the plus key itself
	if key == "" && len(mods) > 0 && mods[len(mods)-1] == "" {
		key = "plus"
		mods = mods[:len(mods)-1]
	}

	var sb strings.Builder
	for _, part := range mods {
		flag, ok := kdeModNames[strings.ToLower(part)]
		if !ok {
			return models.KeyBinding{}, false
		}
		// re-spell in canonical accelerator syntax and let the accel
		// package resolve the key token
		switch flag {
		case models.ModSuper:
			sb.WriteString("<Super>")
		case models.ModCtrl:
			sb.WriteString("<Control>")
		case models.ModShift:
			sb.WriteString("<Shift>")
		case models.ModAlt:
			sb.WriteString("<Alt>")
		}
	}
	sb.WriteString(key)
	return accel.Parse(sb.String())
}

// kdeModOrder is the order Plasma itself writes modifiers in.
var kdeModOrder = []struct {
	flag models.Modifier
	name string
}{
	{models.ModSuper, "Meta"},
	{models.ModCtrl, "Ctrl"},
	{models.ModAlt, "Alt"},
	{models.ModShift, "Shift"},
}

// kdeKeyNames maps canonical key names to the spellings Plasma itself
// writes, so saved entries look native. The plus key becomes a bare "+",
// which joins into the "Meta++" form.
var kdeKeyNames = map[string]string{
	"plus":      "+",
	"space":     "Space",
	"Page_Up":   "PgUp",
	"Page_Down": "PgDown",
	"Escape":    "Esc",
	"Delete":    "Del",
	"BackSpace": "Backspace",
}

// formatKDEAccel renders a binding in KDE shortcut syntax. Unrepresentable
// modifiers (Hyper, Meta) are dropped silently, matching what Plasma does
// when it cannot grab them.
func formatKDEAccel(b models.KeyBinding) string {
	var parts []string
	for _, m := range kdeModOrder {
		if b.Mods.Has(m.flag) {
			parts = append(parts, m.name)
		}
	}
	key := b.Key
	if native, ok := kdeKeyNames[key]; ok {
		key = native
	} else if utf8.RuneCountInString(key) == 1 {
		r, _ := utf8.DecodeRuneInString(key)
		key = string(unicode.ToUpper(r))
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}

// formatKDEBinding renders a shortcut's primary binding, or the disabled
// sentinel when it has none.
func formatKDEBinding(s *models.Shortcut) string {
	if len(s.Bindings) == 0 {
		return disabledValue
	}
	return formatKDEAccel(s.Bindings[0])
}
