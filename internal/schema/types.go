// Package schema declares property types and interprets annotation values by type.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PropertyType is the declared type of a property.
type PropertyType string

const (
	TypePage     PropertyType = "page"
	TypeText     PropertyType = "text"
	TypeNumber   PropertyType = "number"
	TypeDate     PropertyType = "date"
	TypeDatetime PropertyType = "datetime"
	TypeBoolean  PropertyType = "boolean"
	TypeURL      PropertyType = "url"
)

// DefaultType is the type of a property nobody declared.
const DefaultType = TypePage

var typeAliases = map[string]PropertyType{
	"page":     TypePage,
	"ref":      TypePage,
	"text":     TypeText,
	"string":   TypeText,
	"number":   TypeNumber,
	"quantity": TypeNumber,
	"date":     TypeDate,
	"datetime": TypeDatetime,
	"boolean":  TypeBoolean,
	"bool":     TypeBoolean,
	"url":      TypeURL,
}

// ParsePropertyType resolves a declared type name, including common aliases.
func ParsePropertyType(name string) (PropertyType, error) {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown property type %q", name)
}

// Value is a typed annotation value.
type Value struct {
	kind  PropertyType
	value interface{}
}

// String creates a text value.
func String(s string) Value {
	return Value{kind: TypeText, value: s}
}

// Number creates a number value.
func Number(n float64) Value {
	return Value{kind: TypeNumber, value: n}
}

// Bool creates a boolean value.
func Bool(b bool) Value {
	return Value{kind: TypeBoolean, value: b}
}

// Date creates a date value from its canonical form.
func Date(s string) Value {
	return Value{kind: TypeDate, value: s}
}

// Datetime creates a datetime value from its canonical form.
func Datetime(s string) Value {
	return Value{kind: TypeDatetime, value: s}
}

// Page creates a reference to another page.
func Page(title string) Value {
	return Value{kind: TypePage, value: title}
}

// URL creates a URL value.
func URL(s string) Value {
	return Value{kind: TypeURL, value: s}
}

// Null creates an empty value.
func Null() Value {
	return Value{}
}

// IsNull returns true if the value is empty.
func (v Value) IsNull() bool {
	return v.value == nil
}

// Type returns the type the value was parsed as.
func (v Value) Type() PropertyType {
	return v.kind
}

// AsString returns the value as a string, if it is string-shaped.
func (v Value) AsString() (string, bool) {
	s, ok := v.value.(string)
	return s, ok
}

// AsNumber returns the value as a number, if possible.
func (v Value) AsNumber() (float64, bool) {
	n, ok := v.value.(float64)
	return n, ok
}

// AsBool returns the value as a boolean, if possible.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.value.(bool)
	return b, ok
}

// AsPage returns the referenced page title, if this is a page value.
func (v Value) AsPage() (string, bool) {
	if v.kind != TypePage {
		return "", false
	}
	return v.AsString()
}

// Raw returns the underlying raw value.
func (v Value) Raw() interface{} {
	return v.value
}

// Canonical renders the value for storage and comparison.
func (v Value) Canonical() string {
	switch x := v.value.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(x)
	}
	return fmt.Sprint(v.value)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.value)
}
