package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file, following
// the XDG Base Directory Specification:
// - Linux: ~/.config/hed/config.yml
// - macOS: ~/Library/Application Support/hed/config.yml
// - Windows: %APPDATA%\hed\config.yml
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "hed", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file,
// .hed.yml relative to the current directory.
func ProjectConfigPath() string {
	return ".hed.yml"
}

// LegacyUserConfigPath returns the path to the legacy user-level JSON config
// file, ~/.hed.json. It is only read when the XDG config is absent.
func LegacyUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hed.json"), nil
}

// LegacyProjectConfigPath returns the path to the legacy project-level JSON
// config file, .hed.json relative to the current directory.
func LegacyProjectConfigPath() string {
	return ".hed.json"
}
