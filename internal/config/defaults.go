package config

// Default capture patterns. The start pattern matches both the bracketed
// ("## [1.2.3]") and bare ("## 1.2.3") heading styles used by Keep a
// Changelog and Common Changelog documents.
const (
	DefaultChangelog    = "CHANGELOG.md"
	DefaultCaptureStart = `^## (\[{tag}\]|{tag})`
	DefaultCaptureEnd   = `^## `
)

// GetDefaults returns the default configuration values keyed by config name.
func GetDefaults() map[string]any {
	return map[string]any{
		"changelog":     DefaultChangelog,
		"capture_start": DefaultCaptureStart,
		"capture_end":   DefaultCaptureEnd,
		"title":         "",
		"diff_url":      "",
		"softbreak":     true,
	}
}
