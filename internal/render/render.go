// Package render is the template-substitution collaborator: a pure function
// replacing {field} placeholders with values from a data mapping.
package render

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_.-]+)\}`)

// Render substitutes every {field} in template with the matching value from
// data. It fails if any referenced field is absent; partial output is never
// returned.
func Render(template string, data map[string]any) (string, error) {
	var missing []string

	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		field := m[1 : len(m)-1]
		v, ok := data[field]
		if !ok {
			missing = append(missing, field)
			return m
		}
		return fmt.Sprint(v)
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
