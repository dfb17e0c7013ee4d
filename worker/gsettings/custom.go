package gsettings

import (
	"fmt"
	"sort"

	"github.com/keyrig/keyrig/lib/accel"
	"github.com/keyrig/keyrig/lib/log"
	"github.com/keyrig/keyrig/models"
	"github.com/keyrig/keyrig/worker/types"
	"github.com/pkg/errors"
)

// User-defined launcher shortcuts live under a relocatable schema: one
// dconf subtree per entry, plus a path list in the media-keys schema that
// tells the settings daemon which subtrees are live.
const (
	mediaKeysSchema = "org.gnome.settings-daemon.plugins.media-keys"
	customListKey   = "custom-keybindings"
	customSchema    = mediaKeysSchema + ".custom-keybinding"
	customPathBase  = "/org/gnome/settings-daemon/plugins/media-keys/custom-keybindings/"
)

func customShortcut(cb models.CustomBinding) *models.Shortcut {
	var bindings []models.KeyBinding
	if b, ok := accel.Parse(cb.Binding); ok {
		bindings = []models.KeyBinding{b}
	}
	return &models.Shortcut{
		ID:          types.CustomID(cb.Path),
		Name:        cb.Name,
		Description: cb.Command,
		Category:    types.CustomCategory,
		Group:       "Launchers",
		Schema:      types.CustomLocation,
		Key:         cb.Path,
		Bindings:    bindings,
	}
}

func (b *gsettingsBackend) customPaths() ([]string, error) {
	out, err := b.run(nil, "get", mediaKeysSchema, customListKey)
	if err != nil {
		return nil, err
	}
	typ, paths, ok := parseValue(out)
	if !ok || typ != typeStringArray {
		return nil, errors.Errorf("unexpected %s value: %s", customListKey, out)
	}
	sort.Strings(paths)
	return paths, nil
}

func (b *gsettingsBackend) setCustomPaths(paths []string) error {
	_, err := b.run(nil, "set", mediaKeysSchema, customListKey,
		formatValue(typeStringArray, paths))
	return errors.Wrap(err, "update custom keybinding list")
}

// customField reads one 's' key of a custom entry subtree.
func (b *gsettingsBackend) customField(path, key string) (string, error) {
	out, err := b.run(nil, "get", customSchema+":"+path, key)
	if err != nil {
		return "", err
	}
	typ, values, ok := parseValue(out)
	if !ok || typ != typeString || len(values) != 1 {
		return "", errors.Errorf("unexpected %s value at %s: %s", key, path, out)
	}
	return values[0], nil
}

func (b *gsettingsBackend) setCustomField(path, key, value string) error {
	_, err := b.run(nil, "set", customSchema+":"+path, key, quote(value))
	return errors.Wrapf(err, "set %s at %s", key, path)
}

func (b *gsettingsBackend) CustomBindings() []models.CustomBinding {
	paths, err := b.customPaths()
	if err != nil {
		log.Errorf("cannot list custom keybindings: %v", err)
		return nil
	}
	bindings := make([]models.CustomBinding, 0, len(paths))
	for _, path := range paths {
		cb := models.CustomBinding{Path: path}
		var err error
		if cb.Name, err = b.customField(path, "name"); err != nil {
			log.Warnf("skipping custom keybinding %s: %v", path, err)
			continue
		}
		if cb.Command, err = b.customField(path, "command"); err != nil {
			log.Warnf("skipping custom keybinding %s: %v", path, err)
			continue
		}
		if cb.Binding, err = b.customField(path, "binding"); err != nil {
			log.Warnf("skipping custom keybinding %s: %v", path, err)
			continue
		}
		bindings = append(bindings, cb)
	}
	return bindings
}

// nextCustomPath picks the lowest customN suffix not present in paths, so
// deleted slots get reused before the sequence grows.
func nextCustomPath(paths []string) string {
	used := make(map[string]bool, len(paths))
	for _, p := range paths {
		used[p] = true
	}
	for n := 0; ; n++ {
		path := fmt.Sprintf("%scustom%d/", customPathBase, n)
		if !used[path] {
			return path
		}
	}
}

func (b *gsettingsBackend) AddCustomBinding(name, command, binding string) (string, error) {
	paths, err := b.customPaths()
	if err != nil {
		return "", errors.Wrap(err, "add custom keybinding")
	}
	path := nextCustomPath(paths)

	if err := b.setCustomField(path, "name", name); err != nil {
		return "", err
	}
	if err := b.setCustomField(path, "command", command); err != nil {
		return "", err
	}
	if err := b.setCustomField(path, "binding", binding); err != nil {
		return "", err
	}
	if err := b.setCustomPaths(append(paths, path)); err != nil {
		return "", err
	}
	log.Infof("added custom keybinding %s (%s)", name, path)
	return path, nil
}

func (b *gsettingsBackend) UpdateCustomBinding(
	path string, patch models.CustomPatch,
) (bool, error) {
	paths, err := b.customPaths()
	if err != nil {
		return false, errors.Wrap(err, "update custom keybinding")
	}
	if !containsPath(paths, path) {
		return false, nil
	}

	if patch.Name != nil {
		if err := b.setCustomField(path, "name", *patch.Name); err != nil {
			return false, err
		}
	}
	if patch.Command != nil {
		if err := b.setCustomField(path, "command", *patch.Command); err != nil {
			return false, err
		}
	}
	if patch.Binding != nil {
		if err := b.setCustomField(path, "binding", *patch.Binding); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (b *gsettingsBackend) DeleteCustomBinding(path string) (bool, error) {
	paths, err := b.customPaths()
	if err != nil {
		return false, errors.Wrap(err, "delete custom keybinding")
	}
	if !containsPath(paths, path) {
		return false, nil
	}

	kept := make([]string, 0, len(paths)-1)
	for _, p := range paths {
		if p != path {
			kept = append(kept, p)
		}
	}
	if err := b.setCustomPaths(kept); err != nil {
		return false, err
	}
	// leave the orphaned subtree behind: dconf reclaims it and the
	// settings daemon only reads listed paths
	for _, key := range []string{"name", "command", "binding"} {
		if _, err := b.run(nil, "reset", customSchema+":"+path, key); err != nil {
			log.Debugf("reset %s at %s: %v", key, path, err)
		}
	}
	return true, nil
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}
