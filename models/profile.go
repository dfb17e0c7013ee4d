package models

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
)

// FnMode selects how the function row behaves on Apple keyboards.
type FnMode int

const (
	FnDisabled FnMode = 0 // Fn key disabled
	FnFKeys    FnMode = 1 // F1-F12 by default, media keys with Fn
	FnMedia    FnMode = 2 // media keys by default, F1-F12 with Fn
)

func ParseFnMode(value string) FnMode {
	switch strings.ToLower(value) {
	case "disabled":
		return FnDisabled
	case "fkeys":
		return FnFKeys
	default:
		return FnMedia
	}
}

func (m FnMode) String() string {
	switch m {
	case FnDisabled:
		return "disabled"
	case FnFKeys:
		return "fkeys"
	default:
		return "media"
	}
}

// MacKeyboardConfig maps onto the hid_apple kernel module parameters.
type MacKeyboardConfig struct {
	FnMode         FnMode
	SwapOptCmd     bool
	SwapFnLeftCtrl bool
	ISOLayout      bool
}

// ModprobeOptions returns the kernel module parameter values.
func (c *MacKeyboardConfig) ModprobeOptions() map[string]int {
	b2i := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	return map[string]int{
		"fnmode":           int(c.FnMode),
		"swap_opt_cmd":     b2i(c.SwapOptCmd),
		"swap_fn_leftctrl": b2i(c.SwapFnLeftCtrl),
		"iso_layout":       b2i(c.ISOLayout),
	}
}

// XKBOptions holds auxiliary key behavior options. Each value is an opaque
// XKB option token such as "caps:escape" or "altwin:swap_alt_win".
type XKBOptions struct {
	CapsLock string
	AltWin   string
	Compose  string
	Numpad   string
}

// Options returns the non-empty option tokens.
func (x *XKBOptions) Options() []string {
	var opts []string
	for _, o := range []string{x.CapsLock, x.AltWin, x.Compose, x.Numpad} {
		if o != "" {
			opts = append(opts, o)
		}
	}
	return opts
}

// Profile is a saved keyboard configuration: a named bag of storage-key to
// accelerator-list entries plus auxiliary keyboard options. The name doubles
// as the file name stem.
type Profile struct {
	Name        string
	Description string
	Author      string
	Version     string
	Created     time.Time
	Modified    time.Time

	// Shortcuts maps "<location>.<key>" storage keys to accelerator
	// lists. An empty list means explicitly disabled.
	Shortcuts map[string][]string

	XKB         XKBOptions
	MacKeyboard *MacKeyboardConfig

	// Metadata carries free-form flags: "preset" marks built-in
	// profiles, derived profiles record "base_preset" and "type".
	Metadata map[string]string
}

func NewProfile(name string) *Profile {
	now := time.Now()
	return &Profile{
		Name:      name,
		Version:   "1.0",
		Created:   now,
		Modified:  now,
		Shortcuts: make(map[string][]string),
		Metadata:  make(map[string]string),
	}
}

// StorageKey builds the profile-level identifier of a native location.
func StorageKey(location, key string) string {
	return location + "." + key
}

// SetShortcut records accelerators for a native location.
func (p *Profile) SetShortcut(location, key string, accels []string) {
	p.Shortcuts[StorageKey(location, key)] = accels
}

// GetShortcut returns the recorded accelerators, or nil and false when the
// profile does not mention the location.
func (p *Profile) GetShortcut(location, key string) ([]string, bool) {
	accels, ok := p.Shortcuts[StorageKey(location, key)]
	return accels, ok
}

// IsPreset reports whether the profile is flagged as a built-in preset.
func (p *Profile) IsPreset() bool {
	v, err := strconv.ParseBool(p.Metadata["preset"])
	return err == nil && v
}

// splitAccels splits a comma-joined accelerator list. Accelerator syntax
// never contains commas so the join is unambiguous.
func splitAccels(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	accels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			accels = append(accels, p)
		}
	}
	return accels
}

// LoadProfile reads a profile from the given file.
func LoadProfile(path string) (*Profile, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters: "=",
	}, path)
	if err != nil {
		return nil, errors.Wrap(err, "load profile")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p := NewProfile(name)

	meta := file.Section("profile")
	if v := meta.Key("name").String(); v != "" {
		p.Name = v
	}
	p.Description = meta.Key("description").String()
	p.Author = meta.Key("author").String()
	if v := meta.Key("version").String(); v != "" {
		p.Version = v
	}
	if t, err := time.Parse(time.RFC3339, meta.Key("created").String()); err == nil {
		p.Created = t
	}
	if t, err := time.Parse(time.RFC3339, meta.Key("modified").String()); err == nil {
		p.Modified = t
	}

	if sec, err := file.GetSection("shortcuts"); err == nil {
		for _, key := range sec.Keys() {
			p.Shortcuts[key.Name()] = splitAccels(key.String())
		}
	}

	if sec, err := file.GetSection("xkb"); err == nil {
		p.XKB.CapsLock = sec.Key("caps_lock").String()
		p.XKB.AltWin = sec.Key("alt_win").String()
		p.XKB.Compose = sec.Key("compose").String()
		p.XKB.Numpad = sec.Key("numpad").String()
	}

	if sec, err := file.GetSection("mac_keyboard"); err == nil {
		p.MacKeyboard = &MacKeyboardConfig{
			FnMode:         ParseFnMode(sec.Key("fn_mode").String()),
			SwapOptCmd:     sec.Key("swap_opt_cmd").MustBool(false),
			SwapFnLeftCtrl: sec.Key("swap_fn_leftctrl").MustBool(false),
			ISOLayout:      sec.Key("iso_layout").MustBool(false),
		}
	}

	if sec, err := file.GetSection("metadata"); err == nil {
		for _, key := range sec.Keys() {
			p.Metadata[key.Name()] = key.String()
		}
	}

	return p, nil
}

// Save writes the profile to the given file, updating the modification
// timestamp. This is a loud failure path: losing a save is not silently
// recoverable.
func (p *Profile) Save(path string) error {
	p.Modified = time.Now()

	file := ini.Empty()

	sec, _ := file.NewSection("profile")
	_, _ = sec.NewKey("name", p.Name)
	_, _ = sec.NewKey("description", p.Description)
	_, _ = sec.NewKey("author", p.Author)
	_, _ = sec.NewKey("version", p.Version)
	_, _ = sec.NewKey("created", p.Created.Format(time.RFC3339))
	_, _ = sec.NewKey("modified", p.Modified.Format(time.RFC3339))

	sec, _ = file.NewSection("shortcuts")
	for storageKey, accels := range p.Shortcuts {
		_, _ = sec.NewKey(storageKey, strings.Join(accels, ","))
	}

	if opts := p.XKB.Options(); len(opts) > 0 {
		sec, _ = file.NewSection("xkb")
		if p.XKB.CapsLock != "" {
			_, _ = sec.NewKey("caps_lock", p.XKB.CapsLock)
		}
		if p.XKB.AltWin != "" {
			_, _ = sec.NewKey("alt_win", p.XKB.AltWin)
		}
		if p.XKB.Compose != "" {
			_, _ = sec.NewKey("compose", p.XKB.Compose)
		}
		if p.XKB.Numpad != "" {
			_, _ = sec.NewKey("numpad", p.XKB.Numpad)
		}
	}

	if p.MacKeyboard != nil {
		sec, _ = file.NewSection("mac_keyboard")
		_, _ = sec.NewKey("fn_mode", p.MacKeyboard.FnMode.String())
		_, _ = sec.NewKey("swap_opt_cmd", strconv.FormatBool(p.MacKeyboard.SwapOptCmd))
		_, _ = sec.NewKey("swap_fn_leftctrl", strconv.FormatBool(p.MacKeyboard.SwapFnLeftCtrl))
		_, _ = sec.NewKey("iso_layout", strconv.FormatBool(p.MacKeyboard.ISOLayout))
	}

	if len(p.Metadata) > 0 {
		sec, _ = file.NewSection("metadata")
		for k, v := range p.Metadata {
			_, _ = sec.NewKey(k, v)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Wrap(err, "save profile")
	}
	defer f.Close()
	if _, err := file.WriteTo(f); err != nil {
		return errors.Wrap(err, "save profile")
	}
	return nil
}
