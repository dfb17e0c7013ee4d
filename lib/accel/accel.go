// Package accel converts between canonical KeyBinding values and the
// textual accelerator syntax used for persistence and display, e.g.
// "<Control><Shift>a" or "<Super>Return".
package accel

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/keyrig/keyrig/models"
)

// DisabledValue is the sentinel stored in native locations whose shortcut
// has been explicitly turned off.
const DisabledValue = "disabled"

type modName struct {
	flag models.Modifier
	name string
}

// Canonical emission order. Format always prints modifiers in this order,
// whatever order they were parsed in.
var modOrder = []modName{
	{models.ModShift, "Shift"},
	{models.ModCtrl, "Control"},
	{models.ModAlt, "Alt"},
	{models.ModSuper, "Super"},
	{models.ModHyper, "Hyper"},
	{models.ModMeta, "Meta"},
}

var modTokens = map[string]models.Modifier{
	"shift":   models.ModShift,
	"control": models.ModCtrl,
	"ctrl":    models.ModCtrl,
	"ctl":     models.ModCtrl,
	"primary": models.ModCtrl,
	"alt":     models.ModAlt,
	"mod1":    models.ModAlt,
	"super":   models.ModSuper,
	"win":     models.ModSuper,
	"mod4":    models.ModSuper,
	"hyper":   models.ModHyper,
	"meta":    models.ModMeta,
}

// keyNames maps lowercase key tokens to their canonical spelling.
var keyNames map[string]string

func init() {
	keyNames = map[string]string{
		"return":      "Return",
		"enter":       "Return",
		"kp_enter":    "KP_Enter",
		"tab":         "Tab",
		"iso_left_tab": "ISO_Left_Tab",
		"space":       "space",
		"backspace":   "BackSpace",
		"delete":      "Delete",
		"del":         "Delete",
		"insert":      "Insert",
		"escape":      "Escape",
		"esc":         "Escape",
		"home":        "Home",
		"end":         "End",
		"page_up":     "Page_Up",
		"pageup":      "Page_Up",
		"pgup":        "Page_Up",
		"prior":       "Page_Up",
		"page_down":   "Page_Down",
		"pagedown":    "Page_Down",
		"pgdown":      "Page_Down",
		"next":        "Page_Down",
		"up":          "Up",
		"down":        "Down",
		"left":        "Left",
		"right":       "Right",
		"menu":        "Menu",
		"print":       "Print",
		"pause":       "Pause",
		"break":       "Pause",
		"caps_lock":   "Caps_Lock",
		"num_lock":    "Num_Lock",
		"scroll_lock": "Scroll_Lock",
		"comma":       "comma",
		"period":      "period",
		"slash":       "slash",
		"backslash":   "backslash",
		"semicolon":   "semicolon",
		"apostrophe":  "apostrophe",
		"grave":       "grave",
		"minus":       "minus",
		"equal":       "equal",
		"plus":        "plus",
		"asterisk":    "asterisk",
		"numbersign":  "numbersign",
		"question":    "question",
		"underscore":  "underscore",
		"bracketleft": "bracketleft",
		"bracketright": "bracketright",
	}
	for i := 1; i <= 35; i++ {
		name := fmt.Sprintf("F%d", i)
		keyNames[strings.ToLower(name)] = name
	}
	// Common XF86 media and function key tokens with canonical casing.
	for _, name := range []string{
		"XF86AudioPlay", "XF86AudioPause", "XF86AudioStop",
		"XF86AudioNext", "XF86AudioPrev", "XF86AudioForward",
		"XF86AudioRewind", "XF86AudioRandomPlay", "XF86AudioRepeat",
		"XF86AudioRaiseVolume", "XF86AudioLowerVolume", "XF86AudioMute",
		"XF86AudioMicMute", "XF86AudioMedia", "XF86Eject",
		"XF86MonBrightnessUp", "XF86MonBrightnessDown", "XF86Display",
		"XF86KbdBrightnessUp", "XF86KbdBrightnessDown",
		"XF86TouchpadToggle", "XF86TouchpadOn", "XF86TouchpadOff",
		"XF86RotateWindows", "XF86Search", "XF86Explorer", "XF86Mail",
		"XF86Calculator", "XF86HomePage", "XF86WWW", "XF86Tools",
		"XF86Favorites", "XF86PowerOff", "XF86Sleep", "XF86WakeUp",
		"XF86ScreenSaver", "XF86Bluetooth", "XF86WLAN", "XF86Battery",
		"XF86Keyboard", "XF86Documents",
	} {
		keyNames[strings.ToLower(name)] = name
	}
}

// canonicalKey resolves a key token to its canonical spelling. Single
// letters are lowercased, named keys go through the alias table, unknown
// XF86 tokens are accepted verbatim so that future media keys still parse.
func canonicalKey(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	if utf8.RuneCountInString(token) == 1 {
		r, _ := utf8.DecodeRuneInString(token)
		if unicode.IsSpace(r) || r == '<' || r == '>' {
			return "", false
		}
		return string(unicode.ToLower(r)), true
	}
	if name, ok := keyNames[strings.ToLower(token)]; ok {
		return name, true
	}
	if strings.HasPrefix(token, "XF86") && isWord(token) {
		return token, true
	}
	return "", false
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return s != ""
}

// Parse converts accelerator text to a KeyBinding. It reports false on
// empty input, the "disabled" sentinel, and any modifier or key token it
// cannot resolve. It never panics on malformed input.
func Parse(text string) (models.KeyBinding, bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, DisabledValue) {
		return models.KeyBinding{}, false
	}

	var mods models.Modifier
	for strings.HasPrefix(text, "<") {
		end := strings.IndexByte(text, '>')
		if end < 1 {
			return models.KeyBinding{}, false
		}
		flag, ok := modTokens[strings.ToLower(text[1:end])]
		if !ok {
			return models.KeyBinding{}, false
		}
		mods |= flag
		text = text[end+1:]
	}

	key, ok := canonicalKey(text)
	if !ok {
		return models.KeyBinding{}, false
	}
	return models.KeyBinding{Key: key, Mods: mods}, true
}

// Format renders a binding in canonical accelerator syntax. Formatting is
// deterministic: modifiers always appear in the same fixed order, so
// Parse(Format(b)) == b and equal bindings always print identically.
func Format(b models.KeyBinding) string {
	var sb strings.Builder
	for _, m := range modOrder {
		if b.Mods.Has(m.flag) {
			sb.WriteByte('<')
			sb.WriteString(m.name)
			sb.WriteByte('>')
		}
	}
	sb.WriteString(b.Key)
	return sb.String()
}

// Normalize re-prints accelerator text in canonical form. Unparsable text
// is returned unchanged.
func Normalize(text string) string {
	if b, ok := Parse(text); ok {
		return Format(b)
	}
	return text
}

// NormalizeSet parses a list of accelerators into a canonical set. Entries
// that do not parse are dropped.
func NormalizeSet(accels []string) map[string]bool {
	set := make(map[string]bool, len(accels))
	for _, a := range accels {
		if b, ok := Parse(a); ok {
			set[Format(b)] = true
		}
	}
	return set
}

// SameSet reports whether two accelerator lists denote the same set of
// bindings, ignoring order and modifier spelling.
func SameSet(a, b []string) bool {
	sa, sb := NormalizeSet(a), NormalizeSet(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if !sb[k] {
			return false
		}
	}
	return true
}

// ParseAll parses a list of accelerators, dropping entries that do not
// resolve.
func ParseAll(accels []string) []models.KeyBinding {
	bindings := make([]models.KeyBinding, 0, len(accels))
	for _, a := range accels {
		if b, ok := Parse(a); ok {
			bindings = append(bindings, b)
		}
	}
	return bindings
}

// FormatAll renders bindings to canonical accelerator text.
func FormatAll(bindings []models.KeyBinding) []string {
	accels := make([]string, 0, len(bindings))
	for _, b := range bindings {
		accels = append(accels, Format(b))
	}
	return accels
}

// Primary returns the canonical text of a shortcut's first binding, or ""
// when it has none.
func Primary(s *models.Shortcut) string {
	if len(s.Bindings) == 0 {
		return ""
	}
	return Format(s.Bindings[0])
}

var humanMods = []modName{
	{models.ModCtrl, "Ctrl"},
	{models.ModShift, "Shift"},
	{models.ModAlt, "Alt"},
	{models.ModSuper, "Super"},
	{models.ModHyper, "Hyper"},
	{models.ModMeta, "Meta"},
}

var humanKeys = map[string]string{
	"Return":    "Enter",
	"space":     "Space",
	"BackSpace": "Backspace",
	"Page_Up":   "Page Up",
	"Page_Down": "Page Down",
	"Up":        "↑",
	"Down":      "↓",
	"Left":      "←",
	"Right":     "→",
	"comma":     ",",
	"period":    ".",
	"slash":     "/",
	"backslash": "\\",
	"semicolon": ";",
	"apostrophe": "'",
	"grave":     "`",
	"minus":     "-",
	"equal":     "=",
	"plus":      "+",
	"asterisk":  "*",

	"XF86AudioPlay":        "Play",
	"XF86AudioPause":       "Pause",
	"XF86AudioStop":        "Stop",
	"XF86AudioNext":        "Next Track",
	"XF86AudioPrev":        "Previous Track",
	"XF86AudioRaiseVolume": "Volume Up",
	"XF86AudioLowerVolume": "Volume Down",
	"XF86AudioMute":        "Mute",
	"XF86AudioMicMute":     "Mic Mute",
	"XF86MonBrightnessUp":  "Brightness Up",
	"XF86MonBrightnessDown": "Brightness Down",
	"XF86Eject":            "Eject",
}

// Humanize renders a display label for a binding, e.g. "Ctrl+Shift+A".
// The result is lossy and must never be fed back into Parse.
func Humanize(b models.KeyBinding) string {
	var parts []string
	for _, m := range humanMods {
		if b.Mods.Has(m.flag) {
			parts = append(parts, m.name)
		}
	}
	key := b.Key
	if friendly, ok := humanKeys[key]; ok {
		key = friendly
	} else if utf8.RuneCountInString(key) == 1 {
		key = strings.ToUpper(key)
	} else if strings.HasPrefix(key, "XF86") {
		key = strings.TrimPrefix(key, "XF86")
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}

// Label renders the primary binding of a shortcut for display, or
// "Disabled" when it has none.
func Label(s *models.Shortcut) string {
	if len(s.Bindings) == 0 {
		return "Disabled"
	}
	return Humanize(s.Bindings[0])
}
