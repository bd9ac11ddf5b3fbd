// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Business code depends on the Validator interface; the go-playground
// validator v10 implementation lives in this package.
package validator

// Validator validates a struct and returns a field-keyed error on failure.
type Validator interface {
	Validate(data any) error
}
