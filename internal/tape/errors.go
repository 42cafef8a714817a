package tape

import "fmt"

// ValidationError reports a structural violation of the interaction
// model, detected at construction time. Constructions that fail
// validation never produce a value; the violation is not corrected
// silently.
type ValidationError struct {
	// Rule names the violated invariant.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Validation rule names.
const (
	RuleFingerprintFormat   = "fingerprint-format"
	RuleFingerprintMismatch = "fingerprint-mismatch"
	RuleChunksEmpty         = "chunks-empty"
	RuleChunksSequence      = "chunks-sequence"
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid interaction (%s): %s", e.Rule, e.Message)
}

func newValidationError(rule, format string, args ...any) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}
