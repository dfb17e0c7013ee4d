// Package hidapple configures the hid_apple kernel module, which controls
// the function row and modifier layout of Apple keyboards. Reads go
// through sysfs and modprobe.d; writes need root and are batched into a
// single pkexec invocation so the user is prompted once.
package hidapple

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/keyrig/keyrig/models"
	"github.com/pkg/errors"
)

const moduleName = "hid_apple"

type Service struct {
	paramsDir string
	confPath  string

	// runs a shell script as root, swapped out in tests
	runAsRoot func(script string) error
}

func NewService() *Service {
	return &Service{
		paramsDir: "/sys/module/hid_apple/parameters",
		confPath:  "/etc/modprobe.d/hid_apple.conf",
		runAsRoot: pkexecShell,
	}
}

func pkexecShell(script string) error {
	cmd := exec.Command("pkexec", "sh", "-c", script)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "pkexec: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

// ModuleLoaded reports whether hid_apple is currently loaded.
func (s *Service) ModuleLoaded() bool {
	_, err := os.Stat(s.paramsDir)
	return err == nil
}

// Available reports whether the module exists at all, loaded or not.
func (s *Service) Available() bool {
	if s.ModuleLoaded() {
		return true
	}
	return exec.Command("modinfo", moduleName).Run() == nil
}

func (s *Service) readParam(name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.paramsDir, name))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// CurrentConfig reads the live module parameters from sysfs. Returns nil
// when the module is not loaded.
func (s *Service) CurrentConfig() *models.MacKeyboardConfig {
	if !s.ModuleLoaded() {
		return nil
	}
	cfg := &models.MacKeyboardConfig{FnMode: models.FnMedia}
	if v, ok := s.readParam("fnmode"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 2 {
			cfg.FnMode = models.FnMode(n)
		}
	}
	// boolean module parameters read back as Y/N
	if v, ok := s.readParam("swap_opt_cmd"); ok {
		cfg.SwapOptCmd = v == "Y"
	}
	if v, ok := s.readParam("swap_fn_leftctrl"); ok {
		cfg.SwapFnLeftCtrl = v == "Y"
	}
	if v, ok := s.readParam("iso_layout"); ok {
		cfg.ISOLayout = v == "Y"
	}
	return cfg
}

// sortedParams renders the modprobe options deterministically.
func sortedParams(cfg *models.MacKeyboardConfig) []string {
	opts := cfg.ModprobeOptions()
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)
	params := make([]string, 0, len(names))
	for _, name := range names {
		params = append(params, fmt.Sprintf("%s=%d", name, opts[name]))
	}
	return params
}

// Apply writes the configuration to the live module parameters and, when
// persistent, to modprobe.d so it survives reboots. All writes happen in
// one root shell so pkexec prompts once.
func (s *Service) Apply(cfg *models.MacKeyboardConfig, persistent bool) error {
	if !s.ModuleLoaded() {
		return errors.Errorf("%s module is not loaded", moduleName)
	}

	lines := []string{"#!/bin/sh", "set -e"}
	for name, value := range cfg.ModprobeOptions() {
		path := filepath.Join(s.paramsDir, name)
		if _, err := os.Stat(path); err != nil {
			// older kernels lack some parameters
			continue
		}
		lines = append(lines, fmt.Sprintf("echo %d > %q", value, path))
	}
	if persistent {
		content := fmt.Sprintf("options %s %s",
			moduleName, strings.Join(sortedParams(cfg), " "))
		lines = append(lines, fmt.Sprintf("echo %q > %q", content, s.confPath))
	}

	if err := s.runAsRoot(strings.Join(lines, "\n")); err != nil {
		return errors.Wrap(err, "apply hid_apple config")
	}
	return nil
}

// PersistentConfig parses the modprobe.d options line. Returns nil when
// no persistent configuration exists.
func (s *Service) PersistentConfig() *models.MacKeyboardConfig {
	data, err := os.ReadFile(s.confPath)
	if err != nil {
		return nil
	}
	cfg := &models.MacKeyboardConfig{FnMode: models.FnMedia}
	prefix := "options " + moduleName
	found := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		found = true
		for _, opt := range strings.Fields(line)[2:] {
			name, value, ok := cutOption(opt)
			if !ok {
				continue
			}
			applyOption(cfg, name, value)
		}
	}
	if !found {
		return nil
	}
	return cfg
}

func cutOption(opt string) (name string, value int, ok bool) {
	i := strings.IndexByte(opt, '=')
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(opt[i+1:])
	if err != nil {
		return "", 0, false
	}
	return opt[:i], n, true
}

func applyOption(cfg *models.MacKeyboardConfig, name string, value int) {
	switch name {
	case "fnmode":
		if value >= 0 && value <= 2 {
			cfg.FnMode = models.FnMode(value)
		}
	case "swap_opt_cmd":
		cfg.SwapOptCmd = value == 1
	case "swap_fn_leftctrl":
		cfg.SwapFnLeftCtrl = value == 1
	case "iso_layout":
		cfg.ISOLayout = value == 1
	}
}

// ReloadModule unloads and reloads hid_apple. Connected Apple keyboards
// drop out for a moment.
func (s *Service) ReloadModule() error {
	script := fmt.Sprintf("modprobe -r %s && modprobe %s", moduleName, moduleName)
	return errors.Wrap(s.runAsRoot(script), "reload hid_apple")
}
