// Package gsettings reconciles shortcuts against the GNOME key-value
// store by driving the gsettings command line tool. Schema defaults are
// read through the in-memory GSettings backend, which carries no user
// overrides.
package gsettings

import (
	"sort"
	"strings"

	"github.com/keyrig/keyrig/lib/accel"
	"github.com/keyrig/keyrig/lib/log"
	"github.com/keyrig/keyrig/models"
	"github.com/keyrig/keyrig/worker/handlers"
	"github.com/keyrig/keyrig/worker/types"
	"github.com/pkg/errors"
)

func init() {
	handlers.RegisterBackendFactory("gnome", func() (types.Backend, error) {
		return newBackend(runGsettings), nil
	})
}

type gsettingsBackend struct {
	run runFunc

	// schema descriptions never change at runtime, cache them across
	// loads to bound the number of gsettings invocations
	descCache map[string]string
}

func newBackend(run runFunc) *gsettingsBackend {
	return &gsettingsBackend{
		run:       run,
		descCache: make(map[string]string),
	}
}

func (b *gsettingsBackend) Categories() []models.ShortcutCategory {
	return categories
}

type keyValue struct {
	typ    string
	values []string
}

// listSchema dumps every key of a schema in one gsettings invocation.
// Values the GVariant codec cannot decode are dropped.
func (b *gsettingsBackend) listSchema(schema string, env []string) (map[string]keyValue, error) {
	out, err := b.run(env, "list-recursively", schema)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]keyValue)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, " ", 3)
		if len(fields) != 3 {
			continue
		}
		typ, values, ok := parseValue(fields[2])
		if !ok {
			continue
		}
		keys[fields[1]] = keyValue{typ: typ, values: values}
	}
	return keys, nil
}

func (b *gsettingsBackend) describe(schema, key string) string {
	id := schema + "." + key
	if desc, ok := b.descCache[id]; ok {
		return desc
	}
	desc, err := b.run(nil, "describe", schema, key)
	if err != nil {
		desc = ""
	}
	desc = strings.TrimSpace(desc)
	b.descCache[id] = desc
	return desc
}

func (b *gsettingsBackend) LoadShortcuts() map[string]*models.Shortcut {
	shortcuts := make(map[string]*models.Shortcut)

	for _, info := range shortcutSchemas {
		current, err := b.listSchema(info.schema, nil)
		if err != nil {
			// schema not installed on this system, e.g. an absent
			// shell extension
			log.Debugf("skipping schema %s: %v", info.schema, err)
			continue
		}
		defaults, err := b.listSchema(info.schema, memoryEnv)
		if err != nil {
			log.Warnf("cannot read defaults of %s: %v", info.schema, err)
			defaults = current
		}

		for key, kv := range current {
			def, ok := defaults[key]
			if !ok {
				def = kv
			}
			if !isShortcutKey(key, kv.typ, def.values) {
				continue
			}
			name := humanizeKeyName(key)
			if name == "" {
				continue
			}
			group := shortcutGroup(key)
			if group == "Internal" {
				continue
			}
			s := &models.Shortcut{
				ID:              models.StorageKey(info.schema, key),
				Name:            name,
				Description:     b.describe(info.schema, key),
				Category:        keyCategory(key, info.category),
				Group:           group,
				Schema:          info.schema,
				Key:             key,
				Bindings:        accel.ParseAll(kv.values),
				DefaultBindings: accel.ParseAll(def.values),
				AllowMultiple:   kv.typ == typeStringArray,
			}
			shortcuts[s.ID] = s
		}
	}

	for _, cb := range b.CustomBindings() {
		s := customShortcut(cb)
		shortcuts[s.ID] = s
	}
	return shortcuts
}

// keyExists probes the native location. gsettings get fails on unknown
// schemas and keys, which is exactly the "location vanished" case.
func (b *gsettingsBackend) keyExists(schema, key string) (keyValue, bool) {
	out, err := b.run(nil, "get", schema, key)
	if err != nil {
		return keyValue{}, false
	}
	typ, values, ok := parseValue(out)
	if !ok {
		return keyValue{}, false
	}
	return keyValue{typ: typ, values: values}, true
}

func (b *gsettingsBackend) SaveShortcut(s *models.Shortcut) (bool, error) {
	if s.Schema == types.CustomLocation {
		return b.UpdateCustomBinding(s.Key, models.CustomPatch{
			Binding: stringPtr(accel.Primary(s)),
		})
	}

	kv, ok := b.keyExists(s.Schema, s.Key)
	if !ok {
		log.Warnf("shortcut location %s %s no longer exists", s.Schema, s.Key)
		return false, nil
	}

	// unbound shortcuts keep their location, with the explicit
	// disabled sentinel written in the value shape the key expects
	values := accel.FormatAll(s.Bindings)
	if len(values) == 0 {
		values = []string{accel.DisabledValue}
	}
	if kv.typ == typeString && len(values) > 1 {
		values = values[:1]
	}

	_, err := b.run(nil, "set", s.Schema, s.Key, formatValue(kv.typ, values))
	if err != nil {
		return false, errors.Wrapf(err, "save %s", s.ID)
	}
	return true, nil
}

func (b *gsettingsBackend) ResetShortcut(s *models.Shortcut) (bool, error) {
	if s.Schema == types.CustomLocation {
		return b.UpdateCustomBinding(s.Key, models.CustomPatch{
			Binding: stringPtr(""),
		})
	}

	if _, ok := b.keyExists(s.Schema, s.Key); !ok {
		return false, nil
	}
	_, err := b.run(nil, "reset", s.Schema, s.Key)
	if err != nil {
		return false, errors.Wrapf(err, "reset %s", s.ID)
	}
	s.Reset()
	return true, nil
}

func (b *gsettingsBackend) FindConflicts(
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

func stringPtr(s string) *string {
	return &s
}
