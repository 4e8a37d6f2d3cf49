package service

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Problems []string `json:"problems"`
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

type validator struct {
	prefix   string
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, v.prefix+fmt.Sprintf(format, args...))
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.addf("%s is required", field)
	}
}

func (v *validator) notEmpty(field string, values []string) {
	if len(values) == 0 {
		v.addf("at least one %s is required", field)
	}
}

func (v *validator) oneOf(field, value string, allowed []string) {
	if value == "" {
		v.addf("%s is required", field)
		return
	}
	if !slices.Contains(allowed, value) {
		v.addf("%s '%s' is not one of %s", field, value, strings.Join(allowed, ", "))
	}
}

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}
