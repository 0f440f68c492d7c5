package portfolio

import "fmt"

// ValidationError reports malformed lot data. It is fatal to the call that
// triggered it: the aggregation pipeline never processes a malformed lot
// silently, even though the store write path is expected to reject it first.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
