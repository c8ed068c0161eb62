package annotation

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolverEncode(t *testing.T) {
	r := NewResolver(0)
	tests := []struct {
		in   string
		want string
	}{
		{in: "no brackets", want: "no brackets"},
		{in: "[[Foo]]", want: "[[Foo]]"},
		{in: "[x]", want: encodedOpen + "x" + encodedClose},
		{in: "[[Foo::[x y]]]", want: "[[Foo::" + encodedOpen + "x y" + encodedClose + "]]"},
		{in: "[[Foo", want: encodedOpen + encodedOpen + "Foo"},
		{in: "Foo]]", want: "Foo" + encodedClose + encodedClose},
		{in: "[[a [[b]] c", want: encodedOpen + encodedOpen + "a [[b]] c"},
		{in: "[[[x]]]", want: "[[" + encodedOpen + "x" + encodedClose + "]]"},
		{in: "[x|y]", want: encodedOpen + "x" + encodedPipe + "y" + encodedClose},
		{in: "[[Foo::a [x|y] b|Cap]]", want: "[[Foo::a " + encodedOpen + "x" + encodedPipe + "y" + encodedClose + " b|Cap]]"},
		{in: "[[a|b]] c|d", want: "[[a|b]] c|d"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := r.Encode(tt.in); got != tt.want {
				t.Fatalf("Encode(%q)=%q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	in := "a " + encodedOpen + "b" + encodedPipe + "c" + encodedClose
	once := Decode(in)
	if once != "a [b|c]" {
		t.Fatalf("Decode=%q", once)
	}
	if Decode(once) != once {
		t.Fatal("Decode of decoded text must be a no-op")
	}
	if Decode("plain [[text]]") != "plain [[text]]" {
		t.Fatal("Decode must not touch text without placeholders")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := NewResolver(0)
	rng := rand.New(rand.NewSource(7))
	const alphabet = "[[]]|:ab x="
	for i := 0; i < 2000; i++ {
		n := rng.Intn(40)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		in := b.String()
		if got := Decode(r.Encode(in)); got != in {
			t.Fatalf("round trip of %q gave %q", in, got)
		}
		out, _, stats := r.Resolve(in, func(span string) (string, []Event) { return span, nil })
		if stats.TooDeep == 0 && Decode(out) != in {
			t.Fatalf("identity visit of %q gave %q", in, Decode(out))
		}
	}
}

func TestResolverVisitsInDocumentOrder(t *testing.T) {
	r := NewResolver(0)
	var visited []string
	visit := func(span string) (string, []Event) {
		visited = append(visited, Decode(span))
		label := strings.TrimSuffix(strings.TrimPrefix(Decode(span), "[["), "]]")
		return "<" + label + ">", []Event{{Kind: EventToggle, On: true, Annotation: RawAnnotation{Value: label}}}
	}

	out, events, stats := r.Resolve("[[a]] x [[b [[c]] [[d]]]] y", visit)
	out = Decode(out)

	if out != "<a> x <b <c> <d>> y" {
		t.Fatalf("out=%q", out)
	}
	// Children are rewritten before the span that contains them.
	if diff := cmp.Diff([]string{"[[a]]", "[[c]]", "[[d]]", "[[b <c> <d>]]"}, visited); diff != "" {
		t.Fatalf("visit order (-want +got):\n%s", diff)
	}
	// Events come out in document order: enclosing span first.
	var order []string
	for _, ev := range events {
		order = append(order, ev.Annotation.Value)
	}
	if diff := cmp.Diff([]string{"a", "b <c> <d>", "c", "d"}, order); diff != "" {
		t.Fatalf("event order (-want +got):\n%s", diff)
	}
	if stats.Spans != 4 || stats.CompoundSpans != 1 || stats.DepthReached != 2 {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestResolverLeavesDeepNestingAsText(t *testing.T) {
	r := NewResolver(2)
	calls := 0
	visit := func(span string) (string, []Event) {
		calls++
		return span, nil
	}
	in := "[[a [[b [[c]]]]]]"
	out, _, stats := r.Resolve(in, visit)
	if Decode(out) != "[[a "+inert("[[b [[c]]]]")+"]]" {
		t.Fatalf("out=%q", Decode(out))
	}
	if stats.TooDeep != 1 {
		t.Fatalf("TooDeep=%d, want 1", stats.TooDeep)
	}
	if calls != 1 {
		t.Fatalf("visit called %d times, want 1", calls)
	}
}

func TestResolverPromotesSpansInsideUnclosedBrackets(t *testing.T) {
	r := NewResolver(0)
	var visited []string
	out, _, _ := r.Resolve("[[x [[Foo::Bar]] tail", func(span string) (string, []Event) {
		visited = append(visited, span)
		return "Bar", nil
	})
	if Decode(out) != "[[x Bar tail" {
		t.Fatalf("out=%q", Decode(out))
	}
	if len(visited) != 1 || visited[0] != "[[Foo::Bar]]" {
		t.Fatalf("visited=%q", visited)
	}
}

// inert mirrors what the resolver writes for spans nested too deep.
func inert(s string) string {
	return strings.NewReplacer("[", inertOpen, "]", inertClose).Replace(s)
}

func TestSplitCaption(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		value       string
		caption     string
		wantCaption bool
	}{
		{"encoded", EncodeAll("[[a|b]] text|shown"), "[[a|b]] text", "shown", true},
		{"encoded pipe inside link", EncodeAll("[[a|b]]"), "[[a|b]]", "", false},
		{"raw", "Germany|the country", "Germany", "the country", true},
		{"raw pipe inside link", "[[a|b]]", "[[a|b]]", "", false},
		{"raw pipe inside external link", "[x|y] b|Cap", "[x|y] b", "Cap", true},
		{"mixed", EncodeAll("[x|y]") + " b|Cap", "[x|y] b", "Cap", true},
		{"first pipe wins", "a|b|c", "a", "b|c", true},
		{"no pipe", "plain", "plain", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, caption, ok := splitCaption(tt.in)
			if ok != tt.wantCaption {
				t.Fatalf("splitCaption(%q) ok=%v", tt.in, ok)
			}
			if Decode(value) != tt.value || Decode(caption) != tt.caption {
				t.Fatalf("value=%q caption=%q", Decode(value), Decode(caption))
			}
		})
	}
}

func TestResolveIsLinearOnPathologicalInput(t *testing.T) {
	r := NewResolver(0)
	in := strings.Repeat("[[a::", 5000) + strings.Repeat("]]", 5000) + strings.Repeat("[", 10000)
	calls := 0
	out, _, stats := r.Resolve(in, func(span string) (string, []Event) {
		calls++
		return span, nil
	})
	nested, closing := strings.Repeat("[[a::", 4997), strings.Repeat("]]", 4997)
	want := strings.Repeat("[[a::", 3) + inert(nested+closing) + strings.Repeat("]]", 3) + strings.Repeat("[", 10000)
	if Decode(out) != want {
		t.Fatal("spans past the nesting limit must come back inert")
	}
	if stats.TooDeep != 1 {
		t.Fatalf("TooDeep=%d, want 1", stats.TooDeep)
	}
	if stats.DepthReached > DefaultMaxNesting {
		t.Fatalf("DepthReached=%d exceeds nesting limit", stats.DepthReached)
	}
	if calls > DefaultMaxNesting {
		t.Fatalf("visit called %d times", calls)
	}
}
