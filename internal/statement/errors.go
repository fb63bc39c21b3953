package statement

import (
	"errors"
	"fmt"
)

// Kind classifies a structural validation failure.
type Kind int

const (
	KindColumnCount Kind = iota + 1
	KindColumnNames
	KindEmptyFile
	KindInvalidDate
	KindInvalidAmount
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindColumnCount:
		return "column_count"
	case KindColumnNames:
		return "column_names"
	case KindEmptyFile:
		return "empty_file"
	case KindInvalidDate:
		return "invalid_date"
	case KindInvalidAmount:
		return "invalid_amount"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ValidationError rejects a whole file. Message is safe to show to users.
type ValidationError struct {
	Kind    Kind
	Row     int // 1-based data row, 0 when not row specific
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalidData(kind Kind, row int, err error) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Row:     row,
		Message: fmt.Sprintf("Invalid data format: row %d: %v", row, err),
		Err:     err,
	}
}
