package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrFailedValidation = errors.New("failed validation")
	ErrRecordNotFound   = errors.New("record not found")
	ErrRemote           = errors.New("remote table service failed")
	ErrClosed           = errors.New("catalog closed")
)

// failedValidation folds a validation error map into one error wrapping
// ErrFailedValidation. Fields are listed in a stable order.
func (s *service) failedValidation(errorMap map[string]string) error {
	keys := make([]string, 0, len(errorMap))
	for k := range errorMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, errorMap[k]))
	}
	return fmt.Errorf("%w: %s", ErrFailedValidation, strings.Join(parts, "; "))
}
