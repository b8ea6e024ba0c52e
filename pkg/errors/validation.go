package errors

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/matzehuels/erdlayout/pkg/diagram"
)

// Dialects accepted by the remote schema service.
var Dialects = []string{"postgresql", "mysql", "mssql", "sqlite"}

// NormalForms accepted by the remote normalization service.
var NormalForms = []string{"BCNF", "3NF"}

// ValidateDiagram checks a diagram for structural defects the layout engine
// would otherwise tolerate silently:
//   - Nodes with an empty id
//   - Two nodes sharing an id
//   - Edges whose source or target is not a node
//
// The first problem found is returned as an [ErrCodeInvalidDiagram] error.
// Unknown node roles are not an error.
func ValidateDiagram(d *diagram.Diagram) error {
	if d == nil {
		return New(ErrCodeInvalidDiagram, "diagram is empty")
	}

	ids := make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		if strings.TrimSpace(n.ID) == "" {
			return New(ErrCodeInvalidDiagram, "node %d has no id", i)
		}
		if prev, dup := ids[n.ID]; dup {
			return New(ErrCodeInvalidDiagram, "duplicate node id %q (nodes %d and %d)", n.ID, prev, i)
		}
		ids[n.ID] = i
	}

	for i, e := range d.Edges {
		for _, end := range []string{e.Source, e.Target} {
			if _, ok := ids[end]; !ok {
				return New(ErrCodeInvalidDiagram, "edge %s references unknown node %q", edgeName(e, i), end)
			}
		}
	}
	return nil
}

func edgeName(e diagram.Edge, i int) string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("#%d", i)
}

// ValidateDialect validates an SQL dialect name. Matching is
// case-insensitive; the canonical lowercase name is returned.
func ValidateDialect(dialect string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(dialect))
	if !slices.Contains(Dialects, d) {
		return "", New(ErrCodeInvalidDialect, "unsupported dialect %q (supported: %s)", dialect, strings.Join(Dialects, ", "))
	}
	return d, nil
}

// ValidateNormalForm validates a target normal form. Matching is
// case-insensitive; the canonical name is returned.
func ValidateNormalForm(form string) (string, error) {
	f := strings.ToUpper(strings.TrimSpace(form))
	if !slices.Contains(NormalForms, f) {
		return "", New(ErrCodeInvalidNormalForm, "unsupported normal form %q (supported: %s)", form, strings.Join(NormalForms, ", "))
	}
	return f, nil
}

// ValidateProjectID validates a project identifier before it is placed in a
// request path.
//
// Validation rules:
//   - Identifier cannot be empty
//   - Maximum length of 128 characters
//   - No control characters
//   - No path separators or traversal sequences
func ValidateProjectID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidProject, "project id cannot be empty")
	}

	const maxLength = 128
	if len(id) > maxLength {
		return New(ErrCodeInvalidProject, "project id too long (max %d characters)", maxLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidProject, "project id contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "?", "#"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidProject, "project id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
