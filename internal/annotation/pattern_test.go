package annotation

import "testing"

func TestPatternSetMatch(t *testing.T) {
	tests := []struct {
		name          string
		linksInValues bool
		in            string
		want          string
		wantOK        bool
	}{
		{name: "simple", in: "x [[Foo::Bar]] y", want: "[[Foo::Bar]]", wantOK: true},
		{name: "legacy", in: "[[Foo:=Bar]]", want: "[[Foo:=Bar]]", wantOK: true},
		{name: "plain link", in: "[[Foo]]", wantOK: false},
		{name: "unclosed", in: "[[Foo::Bar", wantOK: false},
		{name: "single closing bracket", in: "[[Foo::Bar]", wantOK: false},
		{name: "leading colon", in: "[[:Foo::Bar]]", wantOK: false},
		{name: "simple rejects nested", in: "[[Foo::[[Bar]]]]", wantOK: false},
		{name: "nested allows link", linksInValues: true, in: "[[Foo::[[Bar]]]]", want: "[[Foo::[[Bar]]]]", wantOK: true},
		{name: "nested allows external link", linksInValues: true, in: "[[Foo::[http://a.b c]]]", want: "[[Foo::[http://a.b c]]]", wantOK: true},
		{name: "nested caption", linksInValues: true, in: "[[Foo::Bar|Baz]] tail", want: "[[Foo::Bar|Baz]]", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPatternSet(tt.linksInValues)
			span, ok := p.Match(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok=%v, want %v (span %q)", ok, tt.wantOK, span.Text)
			}
			if !ok {
				return
			}
			if span.Text != tt.want {
				t.Fatalf("span=%q, want %q", span.Text, tt.want)
			}
			if tt.in[span.Start:span.End] != span.Text {
				t.Fatalf("offsets %d:%d do not select %q", span.Start, span.End, span.Text)
			}
		})
	}
}

func TestPatternSetMatchExactGroups(t *testing.T) {
	p := NewPatternSet(true)

	g, ok := p.MatchExact("[[Foo::Bar::Baz|Caption]]")
	if !ok {
		t.Fatal("expected match")
	}
	if g.Property != "Foo::Bar" || g.Value != "Baz" {
		t.Fatalf("property=%q value=%q", g.Property, g.Value)
	}
	if g.Caption == nil || *g.Caption != "Caption" {
		t.Fatalf("caption=%v", g.Caption)
	}

	if _, ok := p.MatchExact("[[Foo::Bar]] and more"); ok {
		t.Fatal("MatchExact must not accept a partial match")
	}
}

func TestPatternSetMatchAllAndReplaceAll(t *testing.T) {
	p := NewPatternSet(false)
	text := "[[A::1]] and [[B]] and [[C:=3]]"

	spans := p.MatchAll(text)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	got := p.ReplaceAll(text, func(g Groups) string { return "<" + g.Value + ">" })
	if got != "<1> and [[B]] and <3>" {
		t.Fatalf("ReplaceAll=%q", got)
	}

	if p.ReplaceAll("no links", nil) != "no links" {
		t.Fatal("ReplaceAll must not touch text without links")
	}
}
