package gsettings

import (
	"strings"
	"testing"

	"github.com/keyrig/keyrig/lib/accel"
	"github.com/keyrig/keyrig/models"
	"github.com/keyrig/keyrig/worker/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore emulates the gsettings command line surface the backend
// drives: list-recursively, get, set, reset and describe, with a separate
// defaults view selected by GSETTINGS_BACKEND=memory.
type fakeStore struct {
	current  map[string]string // "schema key" -> GVariant text
	defaults map[string]string
	descs    map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		current:  make(map[string]string),
		defaults: make(map[string]string),
		descs:    make(map[string]string),
	}
}

func (f *fakeStore) seed(schema, key, current, def string) {
	f.current[schema+" "+key] = current
	f.defaults[schema+" "+key] = def
}

func (f *fakeStore) run(env []string, args ...string) (string, error) {
	store := f.current
	for _, e := range env {
		if e == "GSETTINGS_BACKEND=memory" {
			store = f.defaults
		}
	}
	switch args[0] {
	case "list-recursively":
		var lines []string
		for id, value := range store {
			if strings.HasPrefix(id, args[1]+" ") {
				lines = append(lines, args[1]+" "+
					strings.TrimPrefix(id, args[1]+" ")+" "+value)
			}
		}
		if len(lines) == 0 {
			return "", errors.New("No schemas installed")
		}
		return strings.Join(lines, "\n"), nil
	case "get":
		value, ok := store[args[1]+" "+args[2]]
		if !ok {
			return "", errors.New("No such key")
		}
		return value, nil
	case "set":
		if _, ok := f.current[args[1]+" "+args[2]]; !ok &&
			!strings.Contains(args[1], ":") {
			return "", errors.New("No such key")
		}
		f.current[args[1]+" "+args[2]] = args[3]
		return "", nil
	case "reset":
		id := args[1] + " " + args[2]
		if def, ok := f.defaults[id]; ok {
			f.current[id] = def
		} else {
			delete(f.current, id)
		}
		return "", nil
	case "describe":
		return f.descs[args[1]+" "+args[2]], nil
	}
	return "", errors.Errorf("unexpected command %v", args)
}

const (
	wmSchema    = "org.gnome.desktop.wm.keybindings"
	shellSchema = "org.gnome.shell.keybindings"
)

func seedTypical(f *fakeStore) {
	f.seed(wmSchema, "close", `['<Super>q']`, `['<Alt>F4']`)
	f.seed(wmSchema, "minimize", `['<Super>h']`, `['<Super>h']`)
	f.seed(wmSchema, "switch-to-workspace-1", `['<Super>1']`, `@as []`)
	// not shortcuts
	f.seed(wmSchema, "num-workspaces", `4`, `4`)
	f.seed(shellSchema, "toggle-overview", `@as []`, `['<Super>s']`)
	f.descs[wmSchema+" close"] = "Close window"
	f.current[mediaKeysSchema+" "+customListKey] = "@as []"
	f.defaults[mediaKeysSchema+" "+customListKey] = "@as []"
}

func TestLoadShortcuts(t *testing.T) {
	f := newFakeStore()
	seedTypical(f)
	b := newBackend(f.run)

	shortcuts := b.LoadShortcuts()

	closeWin := shortcuts[wmSchema+".close"]
	require.NotNil(t, closeWin)
	assert.Equal(t, "Close", closeWin.Name)
	assert.Equal(t, "Close window", closeWin.Description)
	assert.Equal(t, "window-management", closeWin.Category)
	assert.True(t, closeWin.AllowMultiple)
	assert.True(t, closeWin.IsModified())
	assert.Equal(t, []string{"<Super>q"}, accel.FormatAll(closeWin.Bindings))
	assert.Equal(t, []string{"<Alt>F4"}, accel.FormatAll(closeWin.DefaultBindings))

	minimize := shortcuts[wmSchema+".minimize"]
	require.NotNil(t, minimize)
	assert.False(t, minimize.IsModified())

	overview := shortcuts[shellSchema+".toggle-overview"]
	require.NotNil(t, overview)
	assert.Empty(t, overview.Bindings)
	assert.True(t, overview.IsModified())

	assert.NotContains(t, shortcuts, wmSchema+".num-workspaces")
}

func TestSaveShortcut(t *testing.T) {
	f := newFakeStore()
	seedTypical(f)
	b := newBackend(f.run)

	s := b.LoadShortcuts()[wmSchema+".close"]
	require.NotNil(t, s)

	s.SetBinding(&models.KeyBinding{Key: "w", Mods: models.ModSuper})
	saved, err := b.SaveShortcut(s)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, `['<Super>w']`, f.current[wmSchema+" close"])
}

func TestSaveShortcutDisabledSentinel(t *testing.T) {
	f := newFakeStore()
	seedTypical(f)
	b := newBackend(f.run)

	s := b.LoadShortcuts()[wmSchema+".close"]
	require.NotNil(t, s)

	s.SetBinding(nil)
	saved, err := b.SaveShortcut(s)
	require.NoError(t, err)
	assert.True(t, saved)
	// the location is kept with an explicit sentinel, never removed
	assert.Equal(t, `['disabled']`, f.current[wmSchema+" close"])
}

func TestSaveShortcutVanishedLocation(t *testing.T) {
	f := newFakeStore()
	seedTypical(f)
	b := newBackend(f.run)

	s := &models.Shortcut{
		ID:     wmSchema + ".gone",
		Schema: wmSchema,
		Key:    "gone",
	}
	saved, err := b.SaveShortcut(s)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestResetShortcut(t *testing.T) {
	f := newFakeStore()
	seedTypical(f)
	b := newBackend(f.run)

	s := b.LoadShortcuts()[wmSchema+".close"]
	require.NotNil(t, s)
	require.True(t, s.IsModified())

	reset, err := b.ResetShortcut(s)
	require.NoError(t, err)
	assert.True(t, reset)
	assert.False(t, s.IsModified())
	assert.Equal(t, `['<Alt>F4']`, f.current[wmSchema+" close"])
}

func TestFindConflicts(t *testing.T) {
	f := newFakeStore()
	seedTypical(f)
	f.seed(wmSchema, "maximize", `['<Super>q']`, `['<Super>Up']`)
	b := newBackend(f.run)

	conflicts := b.FindConflicts(
		models.KeyBinding{Key: "q", Mods: models.ModSuper},
		wmSchema+".close",
	)
	require.Len(t, conflicts, 1)
	assert.Equal(t, wmSchema+".maximize", conflicts[0].ID)
}

func TestCustomBindingLifecycle(t *testing.T) {
	f := newFakeStore()
	seedTypical(f)
	b := newBackend(f.run)

	path, err := b.AddCustomBinding("Terminal", "kitty", "<Super>Return")
	require.NoError(t, err)
	assert.Equal(t, customPathBase+"custom0/", path)

	path2, err := b.AddCustomBinding("Browser", "firefox", "<Super>b")
	require.NoError(t, err)
	assert.Equal(t, customPathBase+"custom1/", path2)

	bindings := b.CustomBindings()
	require.Len(t, bindings, 2)
	assert.Equal(t, "Terminal", bindings[0].Name)
	assert.Equal(t, "kitty", bindings[0].Command)
	assert.Equal(t, "<Super>Return", bindings[0].Binding)

	// custom entries surface as shortcuts in the custom category
	shortcuts := b.LoadShortcuts()
	s := shortcuts[types.CustomID(path)]
	require.NotNil(t, s)
	assert.Equal(t, types.CustomCategory, s.Category)
	assert.Equal(t, []string{"<Super>Return"}, accel.FormatAll(s.Bindings))

	newCmd := "alacritty"
	ok, err := b.UpdateCustomBinding(path, models.CustomPatch{Command: &newCmd})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `'alacritty'`, f.current[customSchema+":"+path+" command"])

	ok, err = b.DeleteCustomBinding(path)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, b.CustomBindings(), 1)

	// deleted slots are reused before the sequence grows
	path3, err := b.AddCustomBinding("Files", "nautilus", "<Super>e")
	require.NoError(t, err)
	assert.Equal(t, customPathBase+"custom0/", path3)
}

func TestUpdateCustomBindingMissing(t *testing.T) {
	f := newFakeStore()
	seedTypical(f)
	b := newBackend(f.run)

	name := "x"
	ok, err := b.UpdateCustomBinding(
		customPathBase+"custom9/", models.CustomPatch{Name: &name})
	require.NoError(t, err)
	assert.False(t, ok)
}
