package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Placeholder is a named insertion point in a template body.
type Placeholder struct {
	Name        string
	Description string
}

// Template is a named, reusable block body with {name} placeholder
// markers. Templates are immutable once loaded; a registry owns them.
type Template struct {
	Name         string
	Category     string
	Kind         Kind
	Body         string
	Placeholders []Placeholder
	Description  string
	Notes        string
}

// MissingPlaceholderError reports the placeholders a render call left
// unresolved. Names are sorted and deduplicated.
type MissingPlaceholderError struct {
	Template string
	Names    []string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("template %q: missing placeholder values: %s",
		e.Template, strings.Join(e.Names, ", "))
}

// ScanPlaceholders returns the distinct placeholder names appearing in
// body, in order of first appearance.
func ScanPlaceholders(body string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRegex.FindAllStringSubmatch(body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render substitutes every placeholder in the template body. It is
// total given a complete value map: if any marker in the body has no
// value, rendering fails with MissingPlaceholderError naming all of
// them, and nothing is substituted. Keys in values that the body does
// not reference are ignored.
func (t *Template) Render(values map[string]string) (string, error) {
	var missing []string
	for _, name := range ScanPlaceholders(t.Body) {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &MissingPlaceholderError{Template: t.Name, Names: missing}
	}

	return placeholderRegex.ReplaceAllStringFunc(t.Body, func(marker string) string {
		name := marker[1 : len(marker)-1]
		return values[name]
	}), nil
}

// Validate checks the structural requirements a registry enforces on
// registration and pack import.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template name is required")
	}
	if strings.TrimSpace(t.Category) == "" {
		return fmt.Errorf("template %q: category is required", t.Name)
	}
	if t.Body == "" {
		return fmt.Errorf("template %q: body is required", t.Name)
	}
	declared := make(map[string]bool, len(t.Placeholders))
	for _, p := range t.Placeholders {
		if p.Name == "" {
			return fmt.Errorf("template %q: placeholder with empty name", t.Name)
		}
		declared[p.Name] = true
	}
	for _, name := range ScanPlaceholders(t.Body) {
		if !declared[name] {
			return fmt.Errorf("template %q: body references undeclared placeholder {%s}", t.Name, name)
		}
	}
	return nil
}
