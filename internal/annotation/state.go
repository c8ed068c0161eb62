package annotation

// State is the per-parse annotation state. One State is created for each Parse call
// and shared by pointer through everything that call touches, including the spans
// rewritten inside compound annotations.
type State struct {
	Enabled       bool
	Strict        bool
	LinksInValues bool
}

func newState(opts Options, meta Metadata) *State {
	return &State{
		Enabled:       !meta.InitiallyDisabled,
		Strict:        opts.StrictMode,
		LinksInValues: opts.LinksInValues,
	}
}

// Apply updates the state for a toggle event and reports whether an assertion
// event should reach the sink.
func (s *State) Apply(ev Event) bool {
	switch ev.Kind {
	case EventToggle:
		s.Enabled = ev.On
		return false
	case EventAssertion:
		return s.Enabled
	}
	return false
}
