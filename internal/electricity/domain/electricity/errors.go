package electricity

import (
	"errors"
	"strings"
)

var (
	// ErrDayNotFound is returned when no readings exist for a requested day.
	ErrDayNotFound = errors.New("electricity: no readings for day")
	// ErrNilRepository is returned when a service is built without a repository.
	ErrNilRepository = errors.New("electricity: nil repository")
	// ErrInvalidDay is returned when a day string is not YYYY-MM-DD.
	ErrInvalidDay = errors.New("electricity: invalid day")
)

// Client-facing validation messages.
const (
	MsgInvalidNumber = "Invalid number format."
	MsgInvalidDate   = "Invalid date format. Use YYYY-MM-DD."
)

// ValidationError reports malformed request input. Message is safe to return
// to clients; Fields lists every offending parameter.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "electricity: validation: " + e.Message
	}
	return "electricity: validation: " + e.Message + " (" + strings.Join(e.Fields, ", ") + ")"
}

// DataAccessError wraps a storage failure with the operation that caused it.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return "electricity: " + e.Op + ": " + e.Err.Error()
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
