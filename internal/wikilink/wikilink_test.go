package wikilink

import "testing"

func TestParseExact(t *testing.T) {
	tests := []struct {
		in          string
		wantTarget  string
		wantDisplay *string
		wantOK      bool
	}{
		{in: "[[Berlin]]", wantTarget: "Berlin", wantOK: true},
		{in: " [[Berlin]] ", wantTarget: "Berlin", wantOK: true},
		{
			in:         "[[Berlin|the capital]]",
			wantTarget: "Berlin",
			wantDisplay: func() *string {
				s := "the capital"
				return &s
			}(),
			wantOK: true,
		},
		{in: "[[]]", wantOK: false},
		{in: "Berlin", wantOK: false},
		{in: "[[a [[b]]]]", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			target, display, ok := ParseExact(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok=%v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if target != tt.wantTarget {
				t.Fatalf("target=%q, want %q", target, tt.wantTarget)
			}
			if (display == nil) != (tt.wantDisplay == nil) {
				t.Fatalf("display nil=%v, want %v", display == nil, tt.wantDisplay == nil)
			}
			if display != nil && *display != *tt.wantDisplay {
				t.Fatalf("display=%q, want %q", *display, *tt.wantDisplay)
			}
		})
	}
}

func TestFindAllSkipsAnnotations(t *testing.T) {
	text := "See [[Berlin]], [[Has capital::Berlin]], [[Paris#History|Paris]] and [[:Category:Cities]]"
	m := FindAll(text)
	if len(m) != 3 {
		t.Fatalf("expected 3 links, got %d: %#v", len(m), m)
	}
	if m[0].Target != "Berlin" {
		t.Errorf("first target=%q", m[0].Target)
	}
	if m[1].Target != "Paris" || m[1].Fragment != "History" || m[1].Text() != "Paris" {
		t.Errorf("second link=%#v", m[1])
	}
	if m[2].Target != "Category:Cities" {
		t.Errorf("third target=%q", m[2].Target)
	}
	if m[0].Literal != "[[Berlin]]" || text[m[0].Start:m[0].End] != m[0].Literal {
		t.Errorf("offsets do not match literal: %#v", m[0])
	}
}

func TestTargetsDeduplicates(t *testing.T) {
	got := Targets("[[A]] [[B|b]] [[A|again]] [[C::D]]")
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("Targets=%v", got)
	}
}

func TestIsAnnotationTarget(t *testing.T) {
	for in, want := range map[string]bool{
		"Foo::Bar": true,
		"Foo:=Bar": true,
		"Foo:Bar":  false,
		":Foo":     false,
	} {
		if got := IsAnnotationTarget(in); got != want {
			t.Errorf("IsAnnotationTarget(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format("Berlin", ""); got != "[[Berlin]]" {
		t.Errorf("Format=%q", got)
	}
	if got := Format("Berlin", "Berlin"); got != "[[Berlin]]" {
		t.Errorf("Format=%q", got)
	}
	if got := Format("Berlin", "capital"); got != "[[Berlin|capital]]" {
		t.Errorf("Format=%q", got)
	}
}
