package types

import (
	"github.com/keyrig/keyrig/models"
)

// Backend reads and writes shortcuts in one desktop environment's native
// store. Implementations exist for GNOME (gsettings/dconf) and KDE Plasma
// (kglobalshortcutsrc).
//
// Backends are not safe for concurrent use: callers must serialize calls
// against a single instance, one reconciliation operation at a time.
type Backend interface {
	// Categories returns the static category table. Side-effect free.
	Categories() []models.ShortcutCategory

	// LoadShortcuts scans the whole native store, including user-defined
	// launcher shortcuts under the custom category. It never mutates the
	// store; malformed values are logged and skipped.
	LoadShortcuts() map[string]*models.Shortcut

	// SaveShortcut writes the shortcut's current bindings to its native
	// location. Empty bindings write the explicit disabled sentinel, the
	// location is never deleted. Returns (false, nil) when the location
	// no longer exists and a non-nil error only on store write failure.
	SaveShortcut(s *models.Shortcut) (bool, error)

	// ResetShortcut restores the native default and updates s in place
	// to reflect the new bindings.
	ResetShortcut(s *models.Shortcut) (bool, error)

	// FindConflicts re-scans the store and returns every shortcut other
	// than excludeID whose current bindings contain b.
	FindConflicts(b models.KeyBinding, excludeID string) []*models.Shortcut

	// CustomBindings lists user-defined launcher shortcuts.
	CustomBindings() []models.CustomBinding

	// AddCustomBinding creates a launcher shortcut and returns its
	// backend-assigned path. Assigned paths are unique among live
	// entries (lowest unused numeric suffix).
	AddCustomBinding(name, command, binding string) (string, error)

	// UpdateCustomBinding applies a partial update. Returns (false, nil)
	// when no entry lives at path.
	UpdateCustomBinding(path string, patch models.CustomPatch) (bool, error)

	// DeleteCustomBinding removes the entry at path. Returns (false,
	// nil) when no entry lives at path.
	DeleteCustomBinding(path string) (bool, error)
}

// CustomCategory is the category ID every backend files launcher
// shortcuts under.
const CustomCategory = "custom"

// CustomLocation is the native-location value of launcher shortcuts. Their
// key is the backend-assigned path instead of a schema or section name.
const CustomLocation = "custom"

// CustomID builds the shortcut ID of a launcher entry.
func CustomID(path string) string {
	return "custom:" + path
}
