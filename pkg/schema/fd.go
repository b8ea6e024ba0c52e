package schema

import (
	"slices"
	"strings"
	"unicode"

	"github.com/matzehuels/erdlayout/pkg/errors"
)

// Dependency is a functional dependency: the Determinant attributes fix the
// Dependent attributes.
type Dependency struct {
	Determinant []string `json:"determinant"`
	Dependent   []string `json:"dependent"`
}

// String renders the dependency as "A, B -> C" with both sides sorted.
func (d Dependency) String() string {
	return strings.Join(slices.Sorted(slices.Values(d.Determinant)), ", ") +
		" -> " +
		strings.Join(slices.Sorted(slices.Values(d.Dependent)), ", ")
}

// ParseDependencies reads functional dependencies separated by newlines or
// semicolons. Lines without exactly one "->" or with an empty side are
// skipped. Each side is split by commas if it has any, otherwise by
// whitespace. A single token made only of uppercase letters ("ABC") is read
// as one attribute per letter; any other token is one attribute.
func ParseDependencies(s string) []Dependency {
	var deps []Dependency
	for _, line := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\n' }) {
		line = strings.TrimSpace(line)
		parts := strings.Split(line, "->")
		if len(parts) != 2 {
			continue
		}
		lhs, rhs := parseAttributes(parts[0]), parseAttributes(parts[1])
		if len(lhs) == 0 || len(rhs) == 0 {
			continue
		}
		deps = append(deps, Dependency{Determinant: lhs, Dependent: rhs})
	}
	return deps
}

// ParseDependenciesStrict is [ParseDependencies] but fails when nothing
// could be read.
func ParseDependenciesStrict(s string) ([]Dependency, error) {
	deps := ParseDependencies(s)
	if len(deps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDependency, "no functional dependencies in %q", s)
	}
	return deps, nil
}

func parseAttributes(s string) []string {
	s = strings.TrimSpace(s)
	var raw []string
	switch {
	case s == "":
		return nil
	case strings.Contains(s, ","):
		raw = strings.Split(s, ",")
	case strings.ContainsFunc(s, unicode.IsSpace):
		raw = strings.Fields(s)
	case len(s) > 1 && isUpperRun(s):
		for _, r := range s {
			raw = append(raw, string(r))
		}
	default:
		raw = []string{s}
	}

	var attrs []string
	for _, a := range raw {
		if a = strings.TrimSpace(a); a != "" && !slices.Contains(attrs, a) {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

func isUpperRun(s string) bool {
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
