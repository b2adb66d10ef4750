package validator

// Validator validates structs using `validate` field tags.
type Validator interface {
	// Validate checks the struct and returns nil when every rule passes.
	Validate(data any) error
}
