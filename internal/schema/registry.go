package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps property names to their declared types.
type Registry struct {
	types    map[string]PropertyType
	fallback PropertyType
}

// NewRegistry builds a registry from declared type names. Unknown type names are
// an error; undeclared properties get DefaultType.
func NewRegistry(declared map[string]string) (*Registry, error) {
	r := &Registry{types: make(map[string]PropertyType, len(declared)), fallback: DefaultType}
	for property, name := range declared {
		t, err := ParsePropertyType(name)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", property, err)
		}
		r.types[normalizeProperty(property)] = t
	}
	return r, nil
}

// TypeOf returns the type of property.
func (r *Registry) TypeOf(property string) PropertyType {
	if r == nil {
		return DefaultType
	}
	if t, ok := r.types[normalizeProperty(property)]; ok {
		return t
	}
	return r.fallback
}

// Declared lists the declared property names in sorted order.
func (r *Registry) Declared() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalizeProperty folds the spellings that name the same property: case, runs of
// whitespace and underscores.
func normalizeProperty(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
