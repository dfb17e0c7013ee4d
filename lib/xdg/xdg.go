package xdg

import (
	"os"
	"path/filepath"
	"strings"
)

// Return a path relative to the user home cache dir
func CachePath(paths ...string) string {
	res := filepath.Join(paths...)
	if !filepath.IsAbs(res) {
		cache, err := os.UserCacheDir()
		if err != nil {
			cache = ExpandHome("~/.cache")
		}
		res = filepath.Join(cache, res)
	}
	return res
}

// Return a path relative to the user home config dir
func ConfigPath(paths ...string) string {
	res := filepath.Join(paths...)
	if !filepath.IsAbs(res) {
		config, err := os.UserConfigDir()
		if err != nil {
			config = ExpandHome("~/.config")
		}
		res = filepath.Join(config, res)
	}
	return res
}

// Return a path relative to the user data home dir
func DataPath(paths ...string) string {
	res := filepath.Join(paths...)
	if !filepath.IsAbs(res) {
		data := os.Getenv("XDG_DATA_HOME")
		if data == "" {
			data = ExpandHome("~/.local/share")
		}
		res = filepath.Join(data, res)
	}
	return res
}

// Return the list of system data dirs, each joined with the given fragments.
func SystemDataPaths(paths ...string) []string {
	dirs := os.Getenv("XDG_DATA_DIRS")
	if dirs == "" {
		dirs = "/usr/local/share:/usr/share"
	}
	frag := filepath.Join(paths...)
	var res []string
	for _, d := range strings.Split(dirs, ":") {
		if d == "" {
			continue
		}
		res = append(res, filepath.Join(d, frag))
	}
	return res
}
