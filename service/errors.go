package service

import (
	"fmt"
	"sort"
	"strings"

	"ad-aid-platform/models"
)

// ValidationError lists field-level problems with a request.
// errors.Is(err, models.ErrValidation) matches it.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+" "+msg)
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s: %s", models.ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return models.ErrValidation
}
