package pack

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for packing failures. Wrapped errors carry detail and
// satisfy errors.Is against these.
var (
	// ErrStructuralCycle signals that the object graph contains a cycle
	// and no emission order exists.
	ErrStructuralCycle = errors.New("object graph contains a cycle")

	// ErrOverflowUnresolved signals that the iteration budget was exhausted
	// with offset overflows remaining.
	ErrOverflowUnresolved = errors.New("offset overflows could not be resolved")

	// ErrNoApplicableStrategy signals that overflows remain but no
	// resolution strategy applies to any of them, so further iterations
	// cannot make progress.
	ErrNoApplicableStrategy = fmt.Errorf("no applicable resolution strategy: %w", ErrOverflowUnresolved)
)

// PackingError is the error returned by Graph.Pack on failure. It wraps one
// of the sentinel errors above and retains diagnostic state: the offending
// overflows or cycle members, and the graph as it stood when packing gave
// up, for DOT rendering.
type PackingError struct {
	reason    error
	Overflows []Overflow // remaining overflows, if the reason is overflow related
	Cycle     []ObjectID // unplaceable objects, if the reason is a cycle
	graph     *Graph
}

func (e *PackingError) Error() string {
	var b strings.Builder
	b.WriteString(e.reason.Error())
	if len(e.Cycle) > 0 {
		fmt.Fprintf(&b, " (%d objects unplaceable)", len(e.Cycle))
	}
	if len(e.Overflows) > 0 {
		fmt.Fprintf(&b, " (%d overflows remain)", len(e.Overflows))
	}
	return b.String()
}

func (e *PackingError) Unwrap() error {
	return e.reason
}

// Graph returns the graph in the state packing left it, for diagnostics
// such as DumpDOT. May be nil.
func (e *PackingError) Graph() *Graph {
	return e.graph
}
