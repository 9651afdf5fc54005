// Package tmpl provides text template rendering with helpers for markdown
// documents.
package tmpl

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// mdEscape escapes characters that would otherwise start markdown markup.
func mdEscape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"#", `\#`,
		"|", `\|`,
	)
	return r.Replace(s)
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDefault(def, s string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

var funcs = template.FuncMap{
	"md":      mdEscape,
	"join":    strings.Join,
	"upper":   strings.ToUpper,
	"lower":   strings.ToLower,
	"trim":    strings.TrimSpace,
	"keys":    sortedKeys,
	"default": orDefault,
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - md: Escape markdown control characters
//   - join: Join string slice with separator (e.g., join .Tags ", ")
//   - keys: Sorted keys of a map[string]string
//   - default: Fall back to a value when a string is blank (e.g., default "n/a" .City)
//   - upper, lower, trim: strings helpers
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
