// Package validator collects field-level validation errors.
package validator

import (
	"github.com/gabriel-vasile/mimetype"
)

// Validator holds a map of validation errors keyed by field name.
type Validator struct {
	Errors map[string]string
}

// New returns a Validator with an empty errors map.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the errors map doesn't contain any entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error message to the map, as long as no entry already exists for the key.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error message to the map only if a validation check is not 'ok'.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// PermittedValue returns true if a value is in a list of permitted values.
func PermittedValue[T comparable](value T, permittedValues ...T) bool {
	for i := range permittedValues {
		if value == permittedValues[i] {
			return true
		}
	}
	return false
}

// Mime returns true if the detected MIME type is one of the permitted types,
// including their aliases and parents.
func Mime(mtype *mimetype.MIME, permittedTypes ...string) bool {
	for m := mtype; m != nil; m = m.Parent() {
		for _, p := range permittedTypes {
			if m.Is(p) {
				return true
			}
		}
	}
	return false
}
