package ingest

import "errors"

// Import errors. All are user-correctable; callers match them with errors.Is.
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrMalformedSyntax   = errors.New("malformed syntax")
	ErrInvalidShape      = errors.New("invalid workout shape")
	ErrEmptyExerciseList = errors.New("workout has no exercises")
	ErrEmptyName         = errors.New("workout name is empty")
)

// UserMessage maps an import error to the short title and description shown
// in a dismissible notification.
func UserMessage(err error) (title, description string) {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "No JSON provided", "Please paste your workout JSON first."
	case errors.Is(err, ErrMalformedSyntax):
		return "Invalid JSON format", "Please check your JSON format and try again."
	case errors.Is(err, ErrInvalidShape):
		return "Invalid workout format", "Expected one workout name mapping exercise names to sets and reps."
	case errors.Is(err, ErrEmptyExerciseList):
		return "No exercises", "Keep at least one exercise before saving."
	case errors.Is(err, ErrEmptyName):
		return "Missing workout name", "Give the workout a name before saving."
	default:
		return "Import failed", err.Error()
	}
}

// IsImportError reports whether err is one of the import errors above.
func IsImportError(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrMalformedSyntax) ||
		errors.Is(err, ErrInvalidShape) ||
		errors.Is(err, ErrEmptyExerciseList) ||
		errors.Is(err, ErrEmptyName)
}
