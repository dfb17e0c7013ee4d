package models

// Modifier is a bitset of keyboard modifiers. The zero value means no
// modifier. Composition with | is commutative and idempotent.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
	ModHyper
	ModMeta
)

func (m Modifier) Has(flag Modifier) bool {
	return m&flag != 0
}

// KeyBinding is a single key plus modifier combination. It is a value type:
// two bindings are the same accelerator iff key and modifier set are equal.
type KeyBinding struct {
	Key  string
	Mods Modifier
}

// ShortcutCategory groups shortcuts for display purposes. The set of
// categories is a process-wide constant table per backend.
type ShortcutCategory struct {
	ID          string
	Name        string
	Icon        string
	Description string
}

// Shortcut is a configurable keyboard shortcut, identified by a globally
// unique ID derived from its native location ("<location>.<key>").
type Shortcut struct {
	ID          string
	Name        string
	Description string
	Category    string

	// Group clusters shortcuts within a category for display only. It
	// carries no weight in reconciliation.
	Group string

	// Native location. Opaque outside the owning backend: a gsettings
	// schema/key pair on GNOME, a section/key pair on KDE.
	Schema string
	Key    string

	// Current bindings. Order is only significant for primary selection.
	Bindings []KeyBinding
	// Native defaults, for reset.
	DefaultBindings []KeyBinding

	// Whether the native location accepts more than one binding.
	AllowMultiple bool
	// Read-only system shortcut.
	System bool
}

// IsModified reports whether the current bindings differ from the native
// defaults. The comparison is set based: order does not matter.
func (s *Shortcut) IsModified() bool {
	return !sameBindingSet(s.Bindings, s.DefaultBindings)
}

// SetBinding replaces all bindings with a single one. A nil binding
// disables the shortcut.
func (s *Shortcut) SetBinding(b *KeyBinding) {
	if b == nil {
		s.Bindings = nil
		return
	}
	s.Bindings = []KeyBinding{*b}
}

// AddBinding appends an additional binding when the shortcut allows
// multiple bindings, otherwise it replaces the existing one.
func (s *Shortcut) AddBinding(b KeyBinding) {
	if !s.AllowMultiple {
		s.Bindings = []KeyBinding{b}
		return
	}
	for _, cur := range s.Bindings {
		if cur == b {
			return
		}
	}
	s.Bindings = append(s.Bindings, b)
}

// RemoveBinding removes a specific binding if present.
func (s *Shortcut) RemoveBinding(b KeyBinding) {
	for i, cur := range s.Bindings {
		if cur == b {
			s.Bindings = append(s.Bindings[:i], s.Bindings[i+1:]...)
			return
		}
	}
}

// Reset restores the native default bindings.
func (s *Shortcut) Reset() {
	s.Bindings = append([]KeyBinding(nil), s.DefaultBindings...)
}

// ConflictsWith reports whether two distinct shortcuts share a binding.
// A shortcut never conflicts with itself.
func (s *Shortcut) ConflictsWith(other *Shortcut) bool {
	if s.ID == other.ID {
		return false
	}
	for _, a := range s.Bindings {
		for _, b := range other.Bindings {
			if a == b {
				return true
			}
		}
	}
	return false
}

// HasBinding reports whether the shortcut is currently bound to b.
func (s *Shortcut) HasBinding(b KeyBinding) bool {
	for _, cur := range s.Bindings {
		if cur == b {
			return true
		}
	}
	return false
}

func sameBindingSet(a, b []KeyBinding) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CustomBinding is a user-defined launcher shortcut. Path is an opaque ID
// assigned by the owning backend at creation time.
type CustomBinding struct {
	Path    string
	Name    string
	Command string
	Binding string
}

// CustomPatch carries partial updates to a custom binding. Nil fields keep
// the existing value.
type CustomPatch struct {
	Name    *string
	Command *string
	Binding *string
}
