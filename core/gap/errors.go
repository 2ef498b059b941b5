package gap

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration reports a bad shared setting such as a
	// non-positive seating capacity.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidRecord reports a malformed route record.
	ErrInvalidRecord = errors.New("invalid record")
)

// RecordError describes why a single record was rejected.
type RecordError struct {
	Index    int
	Route    string
	Field    string
	Value    int
	// Overflow marks a value whose total capacity does not fit in an int.
	Overflow bool
}

func (e *RecordError) Error() string {
	if e.Field == "route_name" {
		return fmt.Sprintf("%s: record %d: route name is empty", ErrInvalidRecord, e.Index)
	}
	if e.Overflow {
		return fmt.Sprintf("%s: record %d (%s): %s %d overflows total capacity",
			ErrInvalidRecord, e.Index, e.Route, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: record %d (%s): %s must be non-negative, got %d",
		ErrInvalidRecord, e.Index, e.Route, e.Field, e.Value)
}

func (e *RecordError) Unwrap() error { return ErrInvalidRecord }

// Kind returns a stable name for the error category of err, or "" when err
// is not an analysis validation error.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, ErrInvalidRecord):
		return "invalid_record"
	default:
		return ""
	}
}
