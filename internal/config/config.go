// Package config provides hierarchical configuration management for hed using
// koanf. Configuration is loaded with priority: environment variables >
// project config (.hed.yml) > user config (~/.config/hed/config.yml) >
// defaults. Both YAML and JSON config files are supported; the file extension
// selects the parser. Legacy JSON files (~/.hed.json, .hed.json) are probed
// when the YAML config at the same level is absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration holds every setting that may come from a config file or the
// environment. Run-scoped values (the tag being released, an explicit
// previous tag) are flag-only and deliberately absent.
type Configuration struct {
	// Changelog is the path to the changelog file, or "-" for stdin.
	Changelog string `koanf:"changelog"`

	// CaptureStart is the regular expression opening the capture window.
	// The {tag} placeholder is replaced with the quoted release tag.
	CaptureStart string `koanf:"capture_start"`

	// CaptureEnd is the regular expression closing the capture window.
	// End-of-file is always a valid terminator as well.
	CaptureEnd string `koanf:"capture_end"`

	// Title optionally overrides the release's main heading.
	// Accepts the {tag} placeholder.
	Title string `koanf:"title"`

	// DiffURL is a compare-URL template with {prev} and {tag} placeholders.
	// When set, a "Full Changelog" link is appended to the output.
	DiffURL string `koanf:"diff_url"`

	// Softbreak keeps soft line breaks in the output. Disable for targets
	// like GitHub release notes that render them as real line breaks.
	Softbreak bool `koanf:"softbreak"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .hed.yml).
	ProjectConfigPath string
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	userPath, _ := UserConfigPath()
	legacyUserPath, _ := LegacyUserConfigPath()
	if err := loadLayer(k, userPath, legacyUserPath, "user"); err != nil {
		return nil, err
	}

	projectPath := opts.ProjectConfigPath
	legacyProjectPath := ""
	if projectPath == "" {
		projectPath = ProjectConfigPath()
		legacyProjectPath = LegacyProjectConfigPath()
	}
	if err := loadLayer(k, projectPath, legacyProjectPath, "project"); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("HED_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// loadDefaults applies default configuration values.
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadLayer loads one config layer. The primary path wins; the legacy JSON
// path is probed only when the primary file is absent.
func loadLayer(k *koanf.Koanf, primary, legacy, configType string) error {
	if primary != "" && fileExists(primary) {
		return loadFileConfig(k, primary, configType)
	}
	if legacy != "" && fileExists(legacy) {
		return loadFileConfig(k, legacy, configType)
	}
	return nil
}

// loadFileConfig loads a single config file if it exists. The extension
// selects the parser: .json uses the JSON parser, everything else YAML.
func loadFileConfig(k *koanf.Koanf, path, configType string) error {
	if !fileExists(path) {
		return nil
	}

	var parser koanf.Parser = yaml.Parser()
	if filepath.Ext(path) == ".json" {
		parser = json.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("loading %s config %s: %w", configType, path, err)
	}
	return nil
}

// envTransform maps HED_CAPTURE_START to capture_start and so on. A double
// underscore becomes a key separator, though no nested keys exist today.
func envTransform(s string) string {
	s = strings.TrimPrefix(s, "HED_")
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
