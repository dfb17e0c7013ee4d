package hidapple

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keyrig/keyrig/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T) (*Service, *[]string) {
	t.Helper()
	root := t.TempDir()
	scripts := &[]string{}
	s := &Service{
		paramsDir: filepath.Join(root, "parameters"),
		confPath:  filepath.Join(root, "hid_apple.conf"),
		runAsRoot: func(script string) error {
			*scripts = append(*scripts, script)
			return nil
		},
	}
	return s, scripts
}

func loadModule(t *testing.T, s *Service, params map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(s.paramsDir, 0o755))
	for name, value := range params {
		require.NoError(t, os.WriteFile(
			filepath.Join(s.paramsDir, name), []byte(value+"\n"), 0o644))
	}
}

func TestCurrentConfig(t *testing.T) {
	s, _ := testService(t)
	assert.False(t, s.ModuleLoaded())
	assert.Nil(t, s.CurrentConfig())

	loadModule(t, s, map[string]string{
		"fnmode":           "1",
		"swap_opt_cmd":     "Y",
		"swap_fn_leftctrl": "N",
		"iso_layout":       "N",
	})
	assert.True(t, s.ModuleLoaded())

	cfg := s.CurrentConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, models.FnFKeys, cfg.FnMode)
	assert.True(t, cfg.SwapOptCmd)
	assert.False(t, cfg.SwapFnLeftCtrl)
	assert.False(t, cfg.ISOLayout)
}

func TestApplyBatchesIntoOneScript(t *testing.T) {
	s, scripts := testService(t)
	loadModule(t, s, map[string]string{
		"fnmode":       "2",
		"swap_opt_cmd": "N",
	})

	cfg := &models.MacKeyboardConfig{FnMode: models.FnFKeys, SwapOptCmd: true}
	require.NoError(t, s.Apply(cfg, true))

	// one pkexec prompt, not one per parameter
	require.Len(t, *scripts, 1)
	script := (*scripts)[0]
	assert.Contains(t, script, "set -e")
	assert.Contains(t, script, "echo 1 > ")
	assert.Contains(t, script, "fnmode")
	// parameters missing from this kernel are skipped
	assert.NotContains(t, script, "iso_layout\"")
	assert.Contains(t, script,
		"options hid_apple fnmode=1 iso_layout=0 swap_fn_leftctrl=0 swap_opt_cmd=1")
	assert.Contains(t, script, s.confPath)
}

func TestApplyModuleNotLoaded(t *testing.T) {
	s, scripts := testService(t)
	err := s.Apply(&models.MacKeyboardConfig{}, true)
	assert.Error(t, err)
	assert.Empty(t, *scripts)
}

func TestApplyNonPersistent(t *testing.T) {
	s, scripts := testService(t)
	loadModule(t, s, map[string]string{"fnmode": "2"})

	require.NoError(t, s.Apply(&models.MacKeyboardConfig{FnMode: models.FnMedia}, false))
	require.Len(t, *scripts, 1)
	assert.NotContains(t, (*scripts)[0], s.confPath)
}

func TestPersistentConfig(t *testing.T) {
	s, _ := testService(t)
	assert.Nil(t, s.PersistentConfig())

	conf := strings.Join([]string{
		"# written by keyrig",
		"options hid_apple fnmode=1 swap_opt_cmd=1 iso_layout=0",
	}, "\n")
	require.NoError(t, os.WriteFile(s.confPath, []byte(conf), 0o644))

	cfg := s.PersistentConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, models.FnFKeys, cfg.FnMode)
	assert.True(t, cfg.SwapOptCmd)
	assert.False(t, cfg.ISOLayout)
	assert.False(t, cfg.SwapFnLeftCtrl)
}

func TestReloadModule(t *testing.T) {
	s, scripts := testService(t)
	require.NoError(t, s.ReloadModule())
	require.Len(t, *scripts, 1)
	assert.Equal(t, "modprobe -r hid_apple && modprobe hid_apple", (*scripts)[0])
}
