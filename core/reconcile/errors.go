package reconcile

import "fmt"

// SchemaError reports a grid without the structure the engine needs: no header
// row or no id column. It aborts the whole tick.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "grid schema error: " + e.Reason
}

// RecordError reports a failure confined to one row or queue entry.
type RecordError struct {
	ID  string
	Op  string
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// BootstrapError reports a startup failure that makes the process unusable.
type BootstrapError struct {
	Component string
	Err       error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap %s: %v", e.Component, e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}
