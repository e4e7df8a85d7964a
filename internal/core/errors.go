package core

import "fmt"

// Field names reported by DataError.
const (
	FieldDate     = "date"
	FieldCategory = "category"
	FieldAmount   = "amount"
	FieldKind     = "kind"
)

// DataError reports a malformed transaction field. ID is set when the
// record came from a store.
type DataError struct {
	Field string
	Value string
	ID    int64
	Err   error
}

func (e *DataError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("transaction %d: %s %q: %v", e.ID, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}
