// Package xdg provides helpers to resolve XDG Base Directory paths for askdb.
// Configuration lives under the config directory; the query history log lives
// under the state directory. Both are created private (0700) on first use.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "askdb"

// ConfigDir returns the XDG config directory for askdb.
// It falls back to ~/.config/askdb when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return ensure("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for askdb.
// It falls back to ~/.local/state/askdb when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return ensure("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func ensure(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
