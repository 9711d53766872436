package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// FieldRangeError reports a field value outside its declared domain. The
// caller must correct the value; nothing is encoded.
type FieldRangeError struct {
	MessageType MessageType
	Field       string
	Value       uint64
	Min         uint64
	Max         uint64
}

// Error implements the error interface.
func (e *FieldRangeError) Error() string {
	return fmt.Sprintf("%s: field %q value %d outside range %d-%d",
		e.MessageType, e.Field, e.Value, e.Min, e.Max)
}

// SchemaMismatchError reports field values that do not match a message
// type's declared schema. This indicates a programming error by the caller.
type SchemaMismatchError struct {
	MessageType MessageType
	Missing     []string
	Unexpected  []string
}

// Error implements the error interface.
func (e *SchemaMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	if len(parts) == 0 {
		parts = append(parts, "schema mismatch")
	}
	return fmt.Sprintf("%s: %s", e.MessageType, strings.Join(parts, "; "))
}

// IsFieldRangeError reports whether err is (or wraps) a FieldRangeError.
func IsFieldRangeError(err error) bool {
	var fre *FieldRangeError
	return errors.As(err, &fre)
}

// IsSchemaMismatchError reports whether err is (or wraps) a
// SchemaMismatchError.
func IsSchemaMismatchError(err error) bool {
	var sme *SchemaMismatchError
	return errors.As(err, &sme)
}
