package validator

// Validator validates request and domain structs.
type Validator interface {
	// Validate checks data and returns a descriptive error on failure.
	Validate(data any) error
}
