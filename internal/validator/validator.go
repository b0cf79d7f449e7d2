package validator

// Validator is the service-facing name for the business validator.
type Validator = BusinessValidator

// New creates a validator with all business rules registered
func New() *Validator {
	return NewBusinessValidator()
}
