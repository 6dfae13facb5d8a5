package types

import "fmt"

// TransferError reports a failed download of one source. It never aborts
// the other transfers of the same sync. Status is zero when no response was
// received.
type TransferError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// DecodeError reports a buffer that could not be turned into index text.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "decode index: " + e.Reason
	}
	return fmt.Sprintf("decode index: %s: %v", e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RecordParseError describes a field of one record that was clamped or kept
// despite being malformed. The record itself is still emitted.
type RecordParseError struct {
	Line    int
	Package string
	Field   string
	Value   string
	Err     error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("line %d: package %q: field %s=%q: %v", e.Line, e.Package, e.Field, e.Value, e.Err)
}

func (e *RecordParseError) Unwrap() error {
	return e.Err
}
