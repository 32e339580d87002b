package catalogue

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a stats query names an unknown stop or route.
var ErrNotFound = errors.New("not found")

// IntegrityError reports a broken load-phase precondition: a distance between
// unregistered stops, or a route whose consecutive stops have no recorded
// distance. It is never recoverable at query time.
type IntegrityError struct {
	Op     string
	From   string
	To     string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("catalogue integrity violation in %s (%q -> %q): %s", e.Op, e.From, e.To, e.Reason)
}
