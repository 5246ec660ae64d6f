package target

// List is the complete forwarding configuration, most recently added rule first.
// All matching rules fire, so order only affects send sequence.
type List []Target

// ParseList validates every spec in order and returns them reversed. Any
// invalid spec aborts with a *ParseError naming it.
func ParseList(specs []string) (List, error) {
	if len(specs) == 0 {
		return nil, ErrNoTargets
	}
	out := make(List, len(specs))
	for i, spec := range specs {
		t, err := Parse(spec)
		if err != nil {
			return nil, &ParseError{Spec: spec, Err: err}
		}
		out[len(specs)-1-i] = t
	}
	return out, nil
}

// Destinations counts every (rule, port) pair a fully matching datagram fans out to.
func (l List) Destinations() int {
	n := 0
	for _, t := range l {
		n += t.PortCount()
	}
	return n
}

func (l List) Strings() []string {
	out := make([]string, 0, len(l))
	for _, t := range l {
		out = append(out, t.String())
	}
	return out
}
