// Package kglobal reconciles shortcuts against KDE Plasma's global
// shortcut registry, an INI file at ~/.config/kglobalshortcutsrc. Every
// value is a "current,default,description" triple; writes rewrite the
// whole file and ask KWin over D-Bus to reload it.
package kglobal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-ini/ini"
	"github.com/keyrig/keyrig/lib/accel"
	"github.com/keyrig/keyrig/lib/log"
	"github.com/keyrig/keyrig/lib/watchers"
	"github.com/keyrig/keyrig/lib/xdg"
	"github.com/keyrig/keyrig/models"
	"github.com/keyrig/keyrig/worker/handlers"
	"github.com/keyrig/keyrig/worker/types"
	"github.com/pkg/errors"
)

func init() {
	handlers.RegisterBackendFactory("kde", func() (types.Backend, error) {
		return newBackend(
			xdg.ConfigPath("kglobalshortcutsrc"), notifyKWin), nil
	})
}

var categories = []models.ShortcutCategory{
	{ID: "window-management", Name: "Window Management",
		Icon:        "preferences-system-windows-symbolic",
		Description: "KWin window manager shortcuts"},
	{ID: "shell", Name: "Plasma", Icon: "view-app-grid-symbolic",
		Description: "Plasma desktop shortcuts"},
	{ID: "media", Name: "Media", Icon: "multimedia-player-symbolic",
		Description: "Media playback and volume controls"},
	{ID: "system", Name: "System", Icon: "preferences-system-symbolic",
		Description: "Session and power management"},
	{ID: "apps", Name: "Applications", Icon: "application-x-addon-symbolic",
		Description: "Application launchers"},
	{ID: "custom", Name: "Custom", Icon: "application-x-addon-symbolic",
		Description: "User-defined shortcuts"},
}

// component name fragments to categories; matching is case-insensitive
// substring with "apps" as the fallback for unknown components
var componentCategories = []struct {
	pattern  string
	category string
}{
	{"kwin", "window-management"},
	{"khotkeys", "custom"},
	{"kmix", "media"},
	{"mediacontrol", "media"},
	{"org_kde_powerdevil", "system"},
	{"ksmserver", "system"},
	{"plasmashell", "shell"},
	{"krunner", "shell"},
	{"spectacle", "shell"},
	{"kaccess", "shell"},
	{"kded", "shell"},
	{"kcm", "shell"},
}

func componentCategory(component string) string {
	lower := strings.ToLower(component)
	for _, m := range componentCategories {
		if strings.Contains(lower, m.pattern) {
			return m.category
		}
	}
	return "apps"
}

// customSection is where user-defined launcher shortcuts live. Plasma's
// hotkeys daemon reads the binding from here; the command itself lives in
// the daemon's own config, which this adapter does not manage.
const customSection = "khotkeys"

type kglobalBackend struct {
	path   string
	notify func()

	mu    sync.Mutex
	file  *ini.File
	stale bool
}

func newBackend(path string, notify func()) *kglobalBackend {
	b := &kglobalBackend{path: path, notify: notify, stale: true}
	b.watch()
	return b
}

// watch invalidates the parsed cache when something else edits the file,
// e.g. Plasma's own shortcut settings dialog.
func (b *kglobalBackend) watch() {
	w, err := watchers.NewWatcher()
	if err != nil {
		log.Warnf("cannot watch %s: %v", b.path, err)
		return
	}
	if err := w.Add(b.path); err != nil {
		log.Debugf("cannot watch %s: %v", b.path, err)
		return
	}
	go func() {
		defer log.PanicHandler()
		for ev := range w.Events() {
			if ev.Path != b.path {
				continue
			}
			b.mu.Lock()
			b.stale = true
			b.mu.Unlock()
		}
	}()
}

var loadOptions = ini.LoadOptions{
	IgnoreInlineComment: true,
	KeyValueDelimiters:  "=",
}

// load returns the parsed file, re-reading it from disk when stale. The
// caller must hold b.mu.
func (b *kglobalBackend) load() *ini.File {
	if b.file != nil && !b.stale {
		return b.file
	}
	file, err := ini.LoadSources(loadOptions, b.path)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			log.Errorf("cannot parse %s: %v", b.path, err)
		}
		file = ini.Empty(loadOptions)
	}
	b.file = file
	b.stale = false
	return file
}

func (b *kglobalBackend) save(file *ini.File) error {
	if err := file.SaveTo(b.path); err != nil {
		return errors.Wrapf(err, "write %s", b.path)
	}
	b.notify()
	return nil
}

// splitTriple parses a "current,default,description" value. Splitting on
// the first two commas only, so descriptions may contain commas.
func splitTriple(value string) (current, def, desc string) {
	parts := strings.SplitN(value, ",", 3)
	if len(parts) > 0 {
		current = parts[0]
	}
	if len(parts) > 1 {
		def = parts[1]
	}
	if len(parts) > 2 {
		desc = parts[2]
	}
	return current, def, desc
}

func joinTriple(current, def, desc string) string {
	return current + "," + def + "," + desc
}

func humanizeActionName(key string) string {
	name := strings.ReplaceAll(key, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (b *kglobalBackend) Categories() []models.ShortcutCategory {
	return categories
}

func (b *kglobalBackend) LoadShortcuts() map[string]*models.Shortcut {
	b.mu.Lock()
	defer b.mu.Unlock()
	file := b.load()

	shortcuts := make(map[string]*models.Shortcut)
	for _, section := range file.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			continue
		}
		category := componentCategory(name)

		for _, key := range section.Keys() {
			// keys like _k_friendly_name are component metadata
			if strings.HasPrefix(key.Name(), "_") {
				continue
			}
			current, def, desc := splitTriple(key.Value())

			var bindings, defaults []models.KeyBinding
			if kb, ok := parseKDEAccel(current); ok {
				bindings = append(bindings, kb)
			}
			if kb, ok := parseKDEAccel(def); ok {
				defaults = append(defaults, kb)
			}

			s := &models.Shortcut{
				ID:              models.StorageKey(name, key.Name()),
				Name:            humanizeActionName(key.Name()),
				Description:     desc,
				Category:        category,
				Group:           name,
				Schema:          name,
				Key:             key.Name(),
				Bindings:        bindings,
				DefaultBindings: defaults,
			}
			shortcuts[s.ID] = s
		}
	}
	return shortcuts
}

func (b *kglobalBackend) SaveShortcut(s *models.Shortcut) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	file := b.load()

	section, err := file.GetSection(s.Schema)
	if err != nil {
		log.Warnf("shortcut component %s no longer exists", s.Schema)
		return false, nil
	}
	key, err := section.GetKey(s.Key)
	if err != nil {
		log.Warnf("shortcut action %s.%s no longer exists", s.Schema, s.Key)
		return false, nil
	}

	// preserve the default and description fields
	_, def, desc := splitTriple(key.Value())
	key.SetValue(joinTriple(formatKDEBinding(s), def, desc))

	if err := b.save(file); err != nil {
		return false, errors.Wrapf(err, "save %s", s.ID)
	}
	return true, nil
}

func (b *kglobalBackend) ResetShortcut(s *models.Shortcut) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	file := b.load()

	section, err := file.GetSection(s.Schema)
	if err != nil {
		return false, nil
	}
	key, err := section.GetKey(s.Key)
	if err != nil {
		return false, nil
	}

	_, def, desc := splitTriple(key.Value())
	key.SetValue(joinTriple(def, def, desc))

	if err := b.save(file); err != nil {
		return false, errors.Wrapf(err, "reset %s", s.ID)
	}
	s.Reset()
	return true, nil
}

func (b *kglobalBackend) FindConflicts(
	binding models.KeyBinding, excludeID string,
) []*models.Shortcut {
	var conflicts []*models.Shortcut
	for _, s := range b.LoadShortcuts() {
		if s.ID == excludeID {
			continue
		}
		if s.HasBinding(binding) {
			conflicts = append(conflicts, s)
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].ID < conflicts[j].ID
	})
	return conflicts
}

func (b *kglobalBackend) CustomBindings() []models.CustomBinding {
	b.mu.Lock()
	defer b.mu.Unlock()
	file := b.load()

	section, err := file.GetSection(customSection)
	if err != nil {
		return nil
	}
	var bindings []models.CustomBinding
	for _, key := range section.Keys() {
		if strings.HasPrefix(key.Name(), "_") {
			continue
		}
		current, _, desc := splitTriple(key.Value())
		name := desc
		if name == "" {
			name = key.Name()
		}
		var bindingText string
		if kb, ok := parseKDEAccel(current); ok {
			bindingText = accel.Format(kb)
		}
		bindings = append(bindings, models.CustomBinding{
			Path:    customSection + "/" + key.Name(),
			Name:    name,
			Binding: bindingText,
		})
	}
	return bindings
}

func (b *kglobalBackend) AddCustomBinding(name, command, binding string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	file := b.load()

	section := file.Section(customSection)
	key := lowestUnusedKey(section)

	value := disabledValue
	if kb, ok := accel.Parse(binding); ok {
		value = formatKDEAccel(kb)
	}
	if _, err := section.NewKey(key, joinTriple(value, disabledValue, name)); err != nil {
		return "", errors.Wrap(err, "add custom keybinding")
	}
	if command != "" {
		log.Warnf("the hotkeys daemon owns launcher commands, not storing %q", command)
	}

	if err := b.save(file); err != nil {
		return "", err
	}
	return customSection + "/" + key, nil
}

// lowestUnusedKey reuses deleted customN slots before growing the
// sequence.
func lowestUnusedKey(section *ini.Section) string {
	for n := 0; ; n++ {
		key := fmt.Sprintf("custom%d", n)
		if !section.HasKey(key) {
			return key
		}
	}
}

func splitCustomPath(path string) (section, key string, ok bool) {
	i := strings.IndexByte(path, '/')
	if i <= 0 || i == len(path)-1 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}

func (b *kglobalBackend) UpdateCustomBinding(
	path string, patch models.CustomPatch,
) (bool, error) {
	sectionName, keyName, ok := splitCustomPath(path)
	if !ok {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	file := b.load()

	section, err := file.GetSection(sectionName)
	if err != nil {
		return false, nil
	}
	key, err := section.GetKey(keyName)
	if err != nil {
		return false, nil
	}

	current, def, desc := splitTriple(key.Value())
	if patch.Binding != nil {
		current = disabledValue
		if kb, ok := accel.Parse(*patch.Binding); ok {
			current = formatKDEAccel(kb)
		}
	}
	if patch.Name != nil {
		desc = *patch.Name
	}
	key.SetValue(joinTriple(current, def, desc))

	if err := b.save(file); err != nil {
		return false, err
	}
	return true, nil
}

func (b *kglobalBackend) DeleteCustomBinding(path string) (bool, error) {
	sectionName, keyName, ok := splitCustomPath(path)
	if !ok {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	file := b.load()

	section, err := file.GetSection(sectionName)
	if err != nil {
		return false, nil
	}
	if !section.HasKey(keyName) {
		return false, nil
	}
	section.DeleteKey(keyName)

	if err := b.save(file); err != nil {
		return false, err
	}
	return true, nil
}

// notifyKWin asks KWin to reload its shortcut configuration. Failure is
// not an error: the session may not be running, the file is still the
// source of truth at next login.
func notifyKWin() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, "qdbus", "org.kde.KWin", "/KWin", "reconfigure")
	if err := cmd.Run(); err != nil {
		log.Debugf("kwin reconfigure: %v", err)
	}
}
