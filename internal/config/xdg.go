package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the signcfg directories under the XDG base dirs
const AppName = "signcfg"

// ConfigDir returns the XDG-compliant config directory for signcfg
// Typically ~/.config/signcfg/ on Linux
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigPath returns the full path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json5")
}
