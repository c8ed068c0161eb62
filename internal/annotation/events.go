package annotation

// EventKind identifies what a rewritten span asks the extractor to do.
type EventKind int

const (
	// EventAssertion carries one annotation for the sink.
	EventAssertion EventKind = iota
	// EventToggle switches annotation collection on or off.
	EventToggle
)

func (k EventKind) String() string {
	switch k {
	case EventAssertion:
		return "assertion"
	case EventToggle:
		return "toggle"
	}
	return "unknown"
}

// Event is a side effect produced while rewriting a span. Rewriting never mutates
// state directly; events are applied afterwards, in document order.
type Event struct {
	Kind       EventKind
	On         bool
	Annotation RawAnnotation
	Values     []Hydrated
}
