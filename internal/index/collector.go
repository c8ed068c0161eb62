package index

import (
	"fmt"
	"strings"

	"github.com/semtext/semtext/internal/annotation"
	"github.com/semtext/semtext/internal/schema"
	"github.com/semtext/semtext/internal/slugs"
)

// Row is one stored (subject, property, value) triple.
type Row struct {
	Subject   string  `json:"subject"`
	FilePath  string  `json:"file_path,omitempty"`
	Property  string  `json:"property"`
	Value     string  `json:"value"`
	ValueType string  `json:"value_type"`
	Canonical string  `json:"canonical"`
	Caption   *string `json:"caption,omitempty"`
	Position  int     `json:"position"`
}

// Collector is an annotation.Sink that turns assertions into rows. A property
// assertion with an invalid value is kept out of the index; the extractor has
// already reported it.
type Collector struct {
	rows    []Row
	skipped int
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add implements annotation.Sink. Properties starting with "_" are reserved for
// the system; writing one from text is refused.
func (c *Collector) Add(a annotation.Assertion) error {
	for _, p := range a.Properties {
		if strings.HasPrefix(p, "_") && p != annotation.RedirectProperty {
			return fmt.Errorf("%w: property %q is reserved", annotation.ErrRejected, p)
		}
	}

	for i, p := range a.Properties {
		var h annotation.Hydrated
		if i < len(a.Values) {
			h = a.Values[i]
		} else {
			h = annotation.Hydrated{Property: p, Valid: true, Typed: a.Value}
		}
		if !h.Valid {
			c.skipped++
			continue
		}
		valueType, canonical := typedColumns(h.Typed, a.Value)
		c.rows = append(c.rows, Row{
			Subject:   a.Subject.String(),
			Property:  p,
			Value:     a.Value,
			ValueType: valueType,
			Canonical: canonical,
			Caption:   a.Caption,
			Position:  len(c.rows),
		})
	}
	return nil
}

// Rows returns the collected rows in document order.
func (c *Collector) Rows() []Row {
	return c.rows
}

// Skipped returns how many property values were left out as invalid.
func (c *Collector) Skipped() int {
	return c.skipped
}

func typedColumns(typed any, raw string) (valueType, canonical string) {
	switch v := typed.(type) {
	case schema.Value:
		if !v.IsNull() {
			return string(v.Type()), v.Canonical()
		}
	case string:
		return string(schema.TypeText), v
	}
	return string(schema.TypeText), raw
}

func propertySlug(property string) string {
	return slugs.PropertySlug(property)
}
