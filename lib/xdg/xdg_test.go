package xdg

import (
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigPath(t *testing.T) {
	currentUser = func() (*user.User, error) {
		return &user.User{HomeDir: "/home/user"}, nil
	}
	t.Setenv("HOME", "/home/user")
	t.Setenv("XDG_CONFIG_HOME", "")

	assert.Equal(t, "/home/user/.config/keyrig/profiles",
		ConfigPath("keyrig", "profiles"))
	assert.Equal(t, "/etc/keyrig", ConfigPath("/etc/keyrig"))

	t.Setenv("XDG_CONFIG_HOME", "/home/user/cfg")
	assert.Equal(t, "/home/user/cfg/keyrig", ConfigPath("keyrig"))
}

func TestDataPath(t *testing.T) {
	t.Setenv("HOME", "/home/user")
	t.Setenv("XDG_DATA_HOME", "")
	assert.Equal(t, "/home/user/.local/share/keyrig", DataPath("keyrig"))

	t.Setenv("XDG_DATA_HOME", "/home/user/data")
	assert.Equal(t, "/home/user/data/keyrig", DataPath("keyrig"))
}

func TestSystemDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_DIRS", "/usr/local/share:/usr/share")
	dirs := SystemDataPaths("keyrig", "presets")
	assert.Equal(t, []string{
		filepath.Join("/usr/local/share", "keyrig", "presets"),
		filepath.Join("/usr/share", "keyrig", "presets"),
	}, dirs)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/user")
	assert.Equal(t, "/home/user/.config", ExpandHome("~/.config"))
	assert.Equal(t, "relative/path", ExpandHome("relative/path"))
	assert.Equal(t, "/home/user", ExpandHome("~"))
}

func TestTildeHome(t *testing.T) {
	t.Setenv("HOME", "/home/user")
	assert.Equal(t, "~/.config", TildeHome("/home/user/.config"))
	assert.Equal(t, "/home/other/.config", TildeHome("/home/other/.config"))
}
