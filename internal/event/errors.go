package event

import (
	"errors"
	"fmt"
)

// Validation error codes (E200-E209).
const (
	ErrMalformedJSON = "E200" // input is not valid JSON
	ErrUnknownType   = "E201" // type discriminant matches no variant
	ErrSchema        = "E202" // event does not satisfy its variant schema
	ErrLogSchema     = "E203" // log does not satisfy the v3 log schema
)

// ValidationError reports why a candidate event or log was rejected at the
// trust boundary.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
