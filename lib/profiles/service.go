// Package profiles loads, saves and reconciles keyboard profiles against
// the desktop's native shortcut store.
package profiles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/keyrig/keyrig/lib/accel"
	"github.com/keyrig/keyrig/lib/log"
	"github.com/keyrig/keyrig/lib/xdg"
	"github.com/keyrig/keyrig/models"
	"github.com/keyrig/keyrig/worker/types"
	"github.com/pkg/errors"
)

const profileExt = ".ini"

// CleanSlate selects the first phase of Apply.
type CleanSlate int

const (
	// CleanSlateAuto clears first when the profile is a preset.
	CleanSlateAuto CleanSlate = iota
	CleanSlateOn
	CleanSlateOff
)

// Delta is one divergent shortcut in a comparison: what the store holds
// now against what the profile or default expects. Both sides are
// canonical accelerator lists.
type Delta struct {
	Current  []string
	Expected []string
}

type Service struct {
	backend     types.Backend
	profilesDir string
	presetsDir  string
	active      *models.Profile
}

func NewService(backend types.Backend) (*Service, error) {
	profilesDir := xdg.ConfigPath("keyrig", "profiles")
	if err := os.MkdirAll(profilesDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create profiles dir")
	}
	var presetsDir string
	for _, dir := range xdg.SystemDataPaths("keyrig", "presets") {
		if _, err := os.Stat(dir); err == nil {
			presetsDir = dir
			break
		}
	}
	return &Service{
		backend:     backend,
		profilesDir: profilesDir,
		presetsDir:  presetsDir,
	}, nil
}

// newServiceAt is the constructor tests use to point the service at
// throwaway directories.
func newServiceAt(backend types.Backend, profilesDir, presetsDir string) *Service {
	return &Service{
		backend:     backend,
		profilesDir: profilesDir,
		presetsDir:  presetsDir,
	}
}

func (s *Service) Active() *models.Profile {
	return s.active
}

func listDir(dir string) []*models.Profile {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+profileExt))
	if err != nil || len(paths) == 0 {
		return nil
	}
	sort.Strings(paths)
	var result []*models.Profile
	for _, path := range paths {
		p, err := models.LoadProfile(path)
		if err != nil {
			log.Warnf("skipping invalid profile %s: %v", path, err)
			continue
		}
		result = append(result, p)
	}
	return result
}

// ListProfiles returns user profiles then presets. A user profile shadows
// a preset of the same name.
func (s *Service) ListProfiles() []*models.Profile {
	result := listDir(s.profilesDir)
	seen := make(map[string]bool, len(result))
	for _, p := range result {
		seen[p.Name] = true
	}
	if s.presetsDir != "" {
		for _, p := range listDir(s.presetsDir) {
			if !seen[p.Name] {
				result = append(result, p)
			}
		}
	}
	return result
}

// ProfileNames returns the names of all available profiles, for
// suggestions on typos.
func (s *Service) ProfileNames() []string {
	all := s.ListProfiles()
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.Name)
	}
	return names
}

// GetProfile loads a profile by name, user profiles first.
func (s *Service) GetProfile(name string) (*models.Profile, error) {
	userPath := filepath.Join(s.profilesDir, name+profileExt)
	if _, err := os.Stat(userPath); err == nil {
		return models.LoadProfile(userPath)
	}
	if s.presetsDir != "" {
		presetPath := filepath.Join(s.presetsDir, name+profileExt)
		if _, err := os.Stat(presetPath); err == nil {
			return models.LoadProfile(presetPath)
		}
	}
	return nil, errors.Errorf("no profile named %q", name)
}

// SaveProfile writes a profile to the user profiles directory and returns
// its path.
func (s *Service) SaveProfile(p *models.Profile) (string, error) {
	path := filepath.Join(s.profilesDir, p.Name+profileExt)
	if err := p.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

// DeleteProfile removes a user profile. Presets cannot be deleted.
func (s *Service) DeleteProfile(name string) (bool, error) {
	path := filepath.Join(s.profilesDir, name+profileExt)
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "delete profile")
	}
	return true, nil
}

// Import copies an external profile file into the user profiles
// directory.
func (s *Service) Import(path string) (*models.Profile, error) {
	p, err := models.LoadProfile(path)
	if err != nil {
		return nil, err
	}
	if _, err := s.SaveProfile(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Export writes a profile to an arbitrary path.
func (s *Service) Export(p *models.Profile, path string) error {
	return p.Save(path)
}

// CreateFromCurrent snapshots every currently bound shortcut into a new
// profile. Unbound shortcuts are not recorded: a snapshot captures what
// is set, not what is absent.
func (s *Service) CreateFromCurrent(name, description string) *models.Profile {
	p := models.NewProfile(name)
	p.Description = description
	for _, shortcut := range s.backend.LoadShortcuts() {
		if len(shortcut.Bindings) > 0 {
			p.SetShortcut(shortcut.Schema, shortcut.Key,
				accel.FormatAll(shortcut.Bindings))
		}
	}
	return p
}

// splitStorageKey splits "<location>.<key>" on the last dot, since
// locations contain dots themselves.
func splitStorageKey(storageKey string) (location, key string, ok bool) {
	i := strings.LastIndexByte(storageKey, '.')
	if i <= 0 || i == len(storageKey)-1 {
		return "", "", false
	}
	return storageKey[:i], storageKey[i+1:], true
}

// Apply reconciles the native store with a profile and returns the
// shortcuts that were actually written. In clean-slate mode every bound
// shortcut the profile does not pin is disabled first, so the profile's
// silence means unbound instead of untouched. Custom launcher entries are
// never cleared: they are user data, not profile state.
func (s *Service) Apply(
	profile *models.Profile, cleanSlate CleanSlate,
) (map[string]*models.Shortcut, error) {
	clear := cleanSlate == CleanSlateOn ||
		(cleanSlate == CleanSlateAuto && profile.IsPreset())

	current := s.backend.LoadShortcuts()
	changed := make(map[string]*models.Shortcut)

	if clear {
		for id, shortcut := range current {
			if shortcut.Schema == types.CustomLocation ||
				shortcut.Category == types.CustomCategory {
				continue
			}
			// keys the profile pins belong to phase 2
			if _, ok := profile.Shortcuts[id]; ok {
				continue
			}
			if len(shortcut.Bindings) == 0 {
				continue
			}
			shortcut.Bindings = nil
			saved, err := s.backend.SaveShortcut(shortcut)
			if err != nil {
				return changed, err
			}
			if saved {
				changed[id] = shortcut
			}
		}
	}

	for storageKey, accels := range profile.Shortcuts {
		location, key, ok := splitStorageKey(storageKey)
		if !ok {
			log.Warnf("profile %s: malformed storage key %q",
				profile.Name, storageKey)
			continue
		}
		shortcut, ok := current[models.StorageKey(location, key)]
		if !ok {
			// native location not present on this system
			continue
		}

		if accel.SameSet(accel.FormatAll(shortcut.Bindings), accels) {
			continue
		}
		shortcut.Bindings = accel.ParseAll(accels)
		saved, err := s.backend.SaveShortcut(shortcut)
		if err != nil {
			return changed, err
		}
		if saved {
			changed[shortcut.ID] = shortcut
		}
	}

	s.active = profile
	return changed, nil
}

// sortedSet renders a normalized accelerator set as a deterministic list.
func sortedSet(set map[string]bool) []string {
	result := make([]string, 0, len(set))
	for a := range set {
		result = append(result, a)
	}
	sort.Strings(result)
	return result
}

// Diff compares a profile against the native store without writing
// anything. Only locations the profile mentions participate.
func (s *Service) Diff(profile *models.Profile) map[string]Delta {
	current := s.backend.LoadShortcuts()
	diff := make(map[string]Delta)

	for storageKey, accels := range profile.Shortcuts {
		location, key, ok := splitStorageKey(storageKey)
		if !ok {
			continue
		}
		shortcut, ok := current[models.StorageKey(location, key)]
		if !ok {
			continue
		}
		currentAccels := accel.FormatAll(shortcut.Bindings)
		if !accel.SameSet(currentAccels, accels) {
			diff[shortcut.ID] = Delta{
				Current:  currentAccels,
				Expected: sortedSet(accel.NormalizeSet(accels)),
			}
		}
	}
	return diff
}

// ResetOrphanedShortcuts restores the native default of every shortcut the
// old profile pinned but the new one no longer mentions. Returns how many
// shortcuts were reset.
func (s *Service) ResetOrphanedShortcuts(old, new *models.Profile) (int, error) {
	orphaned := make([]string, 0)
	for storageKey := range old.Shortcuts {
		if _, ok := new.Shortcuts[storageKey]; !ok {
			orphaned = append(orphaned, storageKey)
		}
	}
	if len(orphaned) == 0 {
		return 0, nil
	}

	current := s.backend.LoadShortcuts()
	count := 0
	for _, storageKey := range orphaned {
		shortcut, ok := current[storageKey]
		if !ok {
			continue
		}
		if !shortcut.IsModified() {
			continue
		}
		shortcut.Reset()
		saved, err := s.backend.SaveShortcut(shortcut)
		if err != nil {
			return count, err
		}
		if saved {
			count++
		}
	}
	return count, nil
}

// UserModifications compares the native store against a base preset and
// returns every deviation: shortcuts the preset pins that hold different
// bindings, plus shortcuts the preset is silent about that deviate from
// their native defaults.
func (s *Service) UserModifications(basePreset string) (map[string]Delta, error) {
	preset, err := s.GetProfile(basePreset)
	if err != nil {
		return nil, err
	}

	presetSets := make(map[string]map[string]bool, len(preset.Shortcuts))
	for storageKey, accels := range preset.Shortcuts {
		presetSets[storageKey] = accel.NormalizeSet(accels)
	}

	diff := make(map[string]Delta)
	for id, shortcut := range s.backend.LoadShortcuts() {
		currentAccels := accel.FormatAll(shortcut.Bindings)

		if expected, ok := presetSets[id]; ok {
			if !sameNormalized(currentAccels, expected) {
				diff[id] = Delta{
					Current:  currentAccels,
					Expected: sortedSet(expected),
				}
			}
		} else if shortcut.IsModified() {
			diff[id] = Delta{
				Current:  currentAccels,
				Expected: accel.FormatAll(shortcut.DefaultBindings),
			}
		}
	}
	return diff, nil
}

func sameNormalized(accels []string, expected map[string]bool) bool {
	set := accel.NormalizeSet(accels)
	if len(set) != len(expected) {
		return false
	}
	for a := range set {
		if !expected[a] {
			return false
		}
	}
	return true
}

// ExportAndClearModifications saves the current deviations from a base
// preset as a timestamped profile, then puts the system back into the
// preset's state. Returns the export path and the number of shortcuts
// exported, or ("", 0, nil) when the system already matches the preset.
func (s *Service) ExportAndClearModifications(basePreset string) (string, int, error) {
	mods, err := s.UserModifications(basePreset)
	if err != nil {
		return "", 0, err
	}
	if len(mods) == 0 {
		return "", 0, nil
	}

	stamp := time.Now().Format("20060102-150405")
	export := models.NewProfile(
		fmt.Sprintf("user-mods-%s-%s", basePreset, stamp))
	export.Description = fmt.Sprintf(
		"User modifications exported from %s preset", basePreset)
	export.Metadata["base_preset"] = basePreset
	export.Metadata["type"] = "user-modifications"

	for id, delta := range mods {
		location, key, ok := splitStorageKey(id)
		if !ok {
			continue
		}
		export.SetShortcut(location, key, delta.Current)
	}

	path, err := s.SaveProfile(export)
	if err != nil {
		return "", 0, err
	}

	preset, err := s.GetProfile(basePreset)
	if err != nil {
		return "", 0, err
	}

	// deviations the preset is silent about go back to native defaults
	current := s.backend.LoadShortcuts()
	for id := range mods {
		if _, ok := preset.Shortcuts[id]; ok {
			continue
		}
		shortcut, ok := current[id]
		if !ok {
			continue
		}
		shortcut.Reset()
		if _, err := s.backend.SaveShortcut(shortcut); err != nil {
			return path, len(export.Shortcuts), err
		}
	}

	// deviations the preset pins go back to the preset's bindings; the
	// reset loop above already handled everything the preset is silent
	// about, so no clean slate here
	if _, err := s.Apply(preset, CleanSlateOff); err != nil {
		return path, len(export.Shortcuts), err
	}
	return path, len(export.Shortcuts), nil
}
