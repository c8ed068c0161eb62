package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/semtext/semtext/internal/annotation"
	"github.com/semtext/semtext/internal/dates"
	"github.com/semtext/semtext/internal/wikilink"
)

// Characters that can never appear in a page title.
const illegalTitleChars = "#<>[]{}|"

// Factory interprets annotation values according to a Registry.
type Factory struct {
	Registry *Registry
}

// NewFactory returns a factory over r. A nil registry types everything as page.
func NewFactory(r *Registry) *Factory {
	return &Factory{Registry: r}
}

// Hydrate implements annotation.ValueFactory.
func (f *Factory) Hydrate(subject annotation.Subject, property, value string, caption *string) annotation.Hydrated {
	h := annotation.PlainFactory{}.Hydrate(subject, property, value, caption)
	if !h.Valid {
		return h
	}

	t := f.Registry.TypeOf(property)
	typed, display, err := parseValue(t, value)
	if err != nil {
		h.Valid = false
		h.Message = fmt.Sprintf("%q is not a valid %s value for %s: %v", value, t, property, err)
		h.Typed = Null()
		return h
	}
	h.Typed = typed
	if caption == nil && display != "" {
		h.Display = display
	}
	return h
}

// parseValue returns the typed value and, when it differs from the raw text, the
// text to display.
func parseValue(t PropertyType, raw string) (Value, string, error) {
	raw = strings.TrimSpace(raw)
	switch t {
	case TypeText:
		return String(raw), "", nil

	case TypeNumber:
		n, err := parseNumber(raw)
		if err != nil {
			return Value{}, "", err
		}
		return Number(n), "", nil

	case TypeDate:
		v, err := dates.Parse(raw)
		if err != nil {
			return Value{}, "", err
		}
		return Date(v.Canonical()), "", nil

	case TypeDatetime:
		tm, err := dates.ParseDatetime(raw)
		if err != nil {
			return Value{}, "", err
		}
		return Datetime(tm.Format("2006-01-02T15:04:05Z07:00")), "", nil

	case TypeBoolean:
		b, err := parseBool(raw)
		if err != nil {
			return Value{}, "", err
		}
		return Bool(b), "", nil

	case TypeURL:
		u, label := splitExternalLink(raw)
		if err := validateURLString(u); err != nil {
			return Value{}, "", err
		}
		return URL(u), label, nil
	}

	// Page values may be written bare or as a link.
	title := raw
	if target, _, ok := wikilink.ParseExact(raw); ok {
		title, _ = wikilink.SplitFragment(target)
	}
	title = strings.TrimPrefix(title, ":")
	if title == "" {
		return Value{}, "", fmt.Errorf("empty page title")
	}
	if strings.ContainsAny(title, illegalTitleChars) {
		return Value{}, "", fmt.Errorf("page title contains an illegal character")
	}
	return Page(title), "", nil
}

func parseNumber(raw string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "_", "", " ", "", " ", "", " ", "").Replace(raw)
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("expected a number")
	}
	return n, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected true or false")
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
