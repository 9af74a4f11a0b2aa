package markdown

import (
	"fmt"
	"strings"
)

// TemplateError is returned when a diff-url template cannot be resolved.
type TemplateError struct {
	Template    string
	Placeholder string
}

func (e *TemplateError) Error() string {
	if e.Placeholder != "" {
		return fmt.Sprintf("cannot format template %q: unknown placeholder %q", e.Template, e.Placeholder)
	}
	return fmt.Sprintf("cannot format template %q", e.Template)
}

// FormatDiffLine expands a compare-URL template and returns the trailing
// "Full Changelog" paragraph linking previous and tag.
//
// The template uses {prev} and {tag} placeholders; {{ and }} escape literal
// braces. Any other placeholder, or an unterminated one, is a *TemplateError.
func FormatDiffLine(template, tag, previous string) (string, error) {
	url, err := ExpandTemplate(template, map[string]string{
		"tag":  tag,
		"prev": previous,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("**Full Changelog:** [%s...%s](%s)", previous, tag, url), nil
}

// ExpandTemplate substitutes {name} placeholders in template with values.
// {{ and }} escape literal braces. A placeholder missing from values, a stray
// closing brace, or an unterminated placeholder yields a *TemplateError.
func ExpandTemplate(template string, values map[string]string) (string, error) {
	var b strings.Builder
	s := template

	for len(s) > 0 {
		switch {
		case strings.HasPrefix(s, "{{"):
			b.WriteByte('{')
			s = s[2:]
		case strings.HasPrefix(s, "}}"):
			b.WriteByte('}')
			s = s[2:]
		case s[0] == '{':
			end := strings.IndexByte(s, '}')
			if end < 0 {
				return "", &TemplateError{Template: template}
			}
			name := s[1:end]
			value, ok := values[name]
			if !ok {
				return "", &TemplateError{Template: template, Placeholder: name}
			}
			b.WriteString(value)
			s = s[end+1:]
		case s[0] == '}':
			return "", &TemplateError{Template: template}
		default:
			b.WriteByte(s[0])
			s = s[1:]
		}
	}

	return b.String(), nil
}
