package annotation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// plainLabel reports whether s can stand as a property label without being
// read as part of the annotation syntax.
func plainLabel(s string) bool {
	return utf8.ValidString(s) &&
		strings.TrimSpace(s) != "" &&
		strings.TrimSpace(s) != ControlProperty &&
		!strings.ContainsAny(s, ":|[]") &&
		!strings.Contains(s, "&#x")
}

// plainValue reports whether s can stand as a value the strict split must
// return unchanged. Values holding ":=" are excluded: the greedy property group
// claims everything up to the last separator, so "[[P::a:=b]]" comes back as
// P / "a::b". That case is pinned by TestStrictSplitValueWithColonEquals.
func plainValue(s string) bool {
	return utf8.ValidString(s) &&
		strings.TrimSpace(s) != "" &&
		!strings.ContainsAny(s, "|[]") &&
		!strings.Contains(s, ":=") &&
		!strings.Contains(s, "&#x")
}

// FuzzStrictSplit checks that strict mode splits "[[P::V]]" on the first
// separator, whatever colons V holds.
func FuzzStrictSplit(f *testing.F) {
	f.Add("Foo", "Bar")
	f.Add("Phone", ":0049 30 12345678")
	f.Add("Foo", "Bar::Baz")
	f.Add("Foo", "=Bar")
	f.Add("Has area", "891.8 km²")
	f.Add("Start", "12:30")

	patterns := NewPatternSet(true)
	splitter := NewSplitter(true)
	f.Fuzz(func(t *testing.T, property, value string) {
		if !plainLabel(property) || !plainValue(value) {
			return
		}
		in := "[[" + property + "::" + value + "]]"
		g, ok := patterns.MatchExact(in)
		if !ok {
			t.Fatalf("%q did not match the grammar", in)
		}
		got := splitter.Split(g)
		if got.Kind != SplitAnnotation {
			t.Fatalf("Split(%q) kind=%v, want annotation", in, got.Kind)
		}
		a := got.Annotation
		if len(a.Properties) != 1 || a.Properties[0] != strings.TrimSpace(property) {
			t.Fatalf("Split(%q) properties=%q", in, a.Properties)
		}
		if a.Value != strings.TrimSpace(value) {
			t.Fatalf("Split(%q) value=%q, want %q", in, a.Value, strings.TrimSpace(value))
		}
	})
}

// FuzzLooseSplit checks that loose mode gives every "::"-separated label the
// shared value.
func FuzzLooseSplit(f *testing.F) {
	f.Add("property1", "property2", "value")
	f.Add("Capital of", "Located in", "Germany")

	patterns := NewPatternSet(true)
	splitter := NewSplitter(false)
	f.Fuzz(func(t *testing.T, first, second, value string) {
		if !plainLabel(first) || !plainLabel(second) || !plainValue(value) || strings.Contains(value, ":") {
			return
		}
		in := "[[" + first + "::" + second + "::" + value + "]]"
		g, ok := patterns.MatchExact(in)
		if !ok {
			t.Fatalf("%q did not match the grammar", in)
		}
		got := splitter.Split(g)
		want := []string{strings.TrimSpace(first), strings.TrimSpace(second)}
		a := got.Annotation
		if got.Kind != SplitAnnotation || len(a.Properties) != 2 || a.Properties[0] != want[0] || a.Properties[1] != want[1] {
			t.Fatalf("Split(%q) = %+v, want properties %q", in, got, want)
		}
		if a.Value != strings.TrimSpace(value) {
			t.Fatalf("Split(%q) value=%q", in, a.Value)
		}
	})
}

func TestStrictSplitValueWithColonEquals(t *testing.T) {
	g, ok := NewPatternSet(true).MatchExact("[[Foo::a:=b]]")
	if !ok {
		t.Fatal("no match")
	}
	got := NewSplitter(true).Split(g)
	if got.Kind != SplitAnnotation || got.Annotation.Properties[0] != "Foo" || got.Annotation.Value != "a::b" {
		t.Fatalf("Split = %+v", got)
	}
}

// FuzzEncodeDecode checks the placeholder round trip and that resolving with an
// identity visit gives the input back when nothing is nested too deep.
func FuzzEncodeDecode(f *testing.F) {
	f.Add("[[Foo::[[Bar]]]]")
	f.Add("[[a]] ]] [[ [x|y]")
	f.Add("no brackets at all")
	f.Add("[[[[[[deep]]]]]]")

	r := NewResolver(0)
	f.Fuzz(func(t *testing.T, in string) {
		if strings.Contains(in, "&#x") {
			return
		}
		if got := Decode(r.Encode(in)); got != in {
			t.Fatalf("round trip of %q gave %q", in, got)
		}
		out, _, stats := r.Resolve(in, func(span string) (string, []Event) { return span, nil })
		if stats.TooDeep > 0 {
			return
		}
		if Decode(out) != in {
			t.Fatalf("identity visit of %q gave %q", in, Decode(out))
		}
	})
}
