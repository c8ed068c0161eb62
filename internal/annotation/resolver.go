package annotation

import (
	"sort"
	"strings"
)

// Placeholder tokens for brackets and pipes hidden from the annotation grammar.
// They use hex numeric-entity spelling so they cannot be confused with the
// decimal entities (&#91; &#93; &#124;) a host sanitizer produces.
const (
	encodedOpen  = "&#x005B;"
	encodedClose = "&#x005D;"
	encodedPipe  = "&#x007C;"
)

// Spans nested deeper than MaxNesting are written with these entities. Decode
// leaves them alone, so the text they hide can never match the grammar again.
const (
	inertOpen  = "&#91;"
	inertClose = "&#93;"
)

// DefaultMaxNesting is the deepest level of [[...]] nesting that is resolved.
const DefaultMaxNesting = 4

var (
	fullEncoder  = strings.NewReplacer("[", encodedOpen, "]", encodedClose, "|", encodedPipe)
	decoder      = strings.NewReplacer(encodedOpen, "[", encodedClose, "]", encodedPipe, "|")
	inertEncoder = strings.NewReplacer("[", inertOpen, "]", inertClose, "|", encodedPipe)
)

// VisitFunc rewrites one bracket span and reports the events it produced.
type VisitFunc func(span string) (string, []Event)

// Resolver makes a single non-recursive grammar match sufficient for annotations
// whose value holds nested [[links]], [external links] or other annotations.
//
// Brackets that are not part of a balanced [[...]] pair are replaced by placeholder
// tokens. Balanced spans are found with one linear stack scan; a span that contains
// further balanced spans (a compound span) has its children rewritten first, its
// interior encoded, and is then visited as a flat span.
type Resolver struct {
	MaxNesting int
}

// NewResolver returns a Resolver that resolves up to maxNesting levels.
func NewResolver(maxNesting int) *Resolver {
	if maxNesting <= 0 {
		maxNesting = DefaultMaxNesting
	}
	return &Resolver{MaxNesting: maxNesting}
}

// Stats describes one Resolve call.
type Stats struct {
	Spans         int
	CompoundSpans int
	DepthReached  int
	TooDeep       int
}

// spanNode is a balanced [[...]] pair. end is exclusive.
type spanNode struct {
	start, end int
	children   []*spanNode
}

type frame struct {
	pos    int
	double bool
	node   *spanNode
	pipes  int // len(pipes) when the frame was opened
}

// scan finds balanced [[...]] spans and marks every bracket byte outside them,
// along with the pipes inside single [...] pairs so that an external link label
// is never read as a caption separator. Cost is linear in len(text).
func scan(text string) (loose []bool, roots []*spanNode) {
	loose = make([]bool, len(text))
	var (
		stack   []frame
		doubles []*spanNode // open [[ spans, innermost last
		pipes   []int       // pipes not yet claimed by a closed pair
	)

	for i := 0; i < len(text); {
		switch text[i] {
		case '|':
			pipes = append(pipes, i)
			i++
		case '[':
			if i+1 < len(text) && text[i+1] == '[' {
				node := &spanNode{start: i}
				stack = append(stack, frame{pos: i, double: true, node: node, pipes: len(pipes)})
				doubles = append(doubles, node)
				i += 2
				continue
			}
			stack = append(stack, frame{pos: i, pipes: len(pipes)})
			i++
		case ']':
			if n := len(stack); n > 0 {
				top := stack[n-1]
				if !top.double {
					stack = stack[:n-1]
					loose[top.pos] = true
					loose[i] = true
					for _, p := range pipes[top.pipes:] {
						loose[p] = true
					}
					pipes = pipes[:top.pipes]
					i++
					continue
				}
				if i+1 < len(text) && text[i+1] == ']' {
					stack = stack[:n-1]
					pipes = pipes[:top.pipes]
					doubles = doubles[:len(doubles)-1]
					top.node.end = i + 2
					if len(doubles) > 0 {
						parent := doubles[len(doubles)-1]
						parent.children = append(parent.children, top.node)
					} else {
						roots = append(roots, top.node)
					}
					i += 2
					continue
				}
			}
			loose[i] = true
			i++
		default:
			i++
		}
	}

	// Whatever is still open never closed. Spans that did close inside an
	// unclosed [[ have no closed ancestor left and become top-level.
	promoted := false
	for _, f := range stack {
		loose[f.pos] = true
		if f.double {
			loose[f.pos+1] = true
			if len(f.node.children) > 0 {
				roots = append(roots, f.node.children...)
				promoted = true
			}
		}
	}
	if promoted {
		sort.Slice(roots, func(a, b int) bool { return roots[a].start < roots[b].start })
	}
	return loose, roots
}

// Encode replaces every bracket that is not part of a balanced [[...]] pair with a
// placeholder token. Balanced pairs are kept literal so the grammar anchors still
// match.
func (r *Resolver) Encode(text string) string {
	if !strings.ContainsAny(text, "[]") {
		return text
	}
	loose, _ := scan(text)
	var b strings.Builder
	b.Grow(len(text))
	writeLoose(&b, text, loose, 0, len(text))
	return b.String()
}

// Decode restores every placeholder token. Text without placeholders is returned
// unchanged, so Decode is idempotent on decoded text.
func Decode(text string) string {
	if !strings.Contains(text, "&#x00") {
		return text
	}
	return decoder.Replace(text)
}

// EncodeAll hides every bracket and pipe in text.
func EncodeAll(text string) string {
	if !strings.ContainsAny(text, "[]|") {
		return text
	}
	return fullEncoder.Replace(text)
}

// Resolve encodes text and calls visit once for every balanced span in document
// order. The returned text still carries placeholders; callers Decode it once all
// rewriting is done. Events from an enclosing span precede those of the spans nested
// in it.
func (r *Resolver) Resolve(text string, visit VisitFunc) (string, []Event, Stats) {
	var stats Stats
	if !strings.ContainsAny(text, "[]") {
		return text, nil, stats
	}

	loose, roots := scan(text)
	var (
		b      strings.Builder
		events []Event
	)
	b.Grow(len(text))
	pos := 0
	for _, node := range roots {
		writeLoose(&b, text, loose, pos, node.start)
		out, ev := r.resolveSpan(text, loose, node, 1, visit, &stats)
		b.WriteString(out)
		events = append(events, ev...)
		pos = node.end
	}
	writeLoose(&b, text, loose, pos, len(text))
	return b.String(), events, stats
}

func (r *Resolver) resolveSpan(text string, loose []bool, node *spanNode, depth int, visit VisitFunc, stats *Stats) (string, []Event) {
	stats.Spans++
	if depth > stats.DepthReached {
		stats.DepthReached = depth
	}

	if len(node.children) == 0 {
		var b strings.Builder
		b.Grow(node.end - node.start)
		writeLoose(&b, text, loose, node.start, node.end)
		return visit(b.String())
	}

	stats.CompoundSpans++
	if depth >= r.MaxNesting {
		// Left as inert text: nothing visited.
		stats.TooDeep++
		return inertEncoder.Replace(text[node.start:node.end]), nil
	}

	var (
		interior strings.Builder
		inner    []Event
	)
	pos := node.start + 2
	for _, child := range node.children {
		writeLoose(&interior, text, loose, pos, child.start)
		out, ev := r.resolveSpan(text, loose, child, depth+1, visit, stats)
		interior.WriteString(out)
		inner = append(inner, ev...)
		pos = child.end
	}
	writeLoose(&interior, text, loose, pos, node.end-2)

	out, outer := visit("[[" + EncodeAll(interior.String()) + "]]")
	return out, append(outer, inner...)
}

// writeLoose copies text[from:to] into b, replacing loose brackets and pipes.
func writeLoose(b *strings.Builder, text string, loose []bool, from, to int) {
	last := from
	for i := from; i < to; i++ {
		if !loose[i] {
			continue
		}
		b.WriteString(text[last:i])
		switch text[i] {
		case '[':
			b.WriteString(encodedOpen)
		case ']':
			b.WriteString(encodedClose)
		default:
			b.WriteString(encodedPipe)
		}
		last = i + 1
	}
	b.WriteString(text[last:to])
}

// splitCaption splits value at the first pipe, literal or encoded, that is not
// inside a bracket pair.
func splitCaption(value string) (string, string, bool) {
	if !strings.Contains(value, "|") && !strings.Contains(value, encodedPipe) {
		return value, "", false
	}
	depth := 0
	for i := 0; i < len(value); {
		rest := value[i:]
		switch {
		case value[i] == '[':
			depth++
			i++
		case value[i] == ']':
			if depth > 0 {
				depth--
			}
			i++
		case value[i] == '|':
			if depth == 0 {
				return value[:i], value[i+1:], true
			}
			i++
		case strings.HasPrefix(rest, encodedOpen):
			depth++
			i += len(encodedOpen)
		case strings.HasPrefix(rest, encodedClose):
			if depth > 0 {
				depth--
			}
			i += len(encodedClose)
		case strings.HasPrefix(rest, encodedPipe):
			if depth == 0 {
				return value[:i], value[i+len(encodedPipe):], true
			}
			i += len(encodedPipe)
		default:
			i++
		}
	}
	return value, "", false
}
