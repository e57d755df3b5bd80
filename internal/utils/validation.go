package utils

import (
	"fmt"
	"go/token"
	"slices"
	"strings"
)

// ValidationError names the field that failed and why
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Validator checks one value
type Validator[T any] func(T) error

// ValidatorChain runs validators in order, stopping at the first failure
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, check := range vc.validators {
		if err := check(value); err != nil {
			return err
		}
	}
	return nil
}

// NotBlank rejects empty and whitespace-only strings
func NotBlank(field string) Validator[string] {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return ValidationError{Field: field, Value: value, Message: "cannot be empty"}
		}
		return nil
	}
}

// ExcludesAny rejects strings containing any of chars; description names
// them in the message, e.g. "a query or fragment"
func ExcludesAny(field, chars, description string) Validator[string] {
	return func(value string) error {
		if strings.ContainsAny(value, chars) {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("must not contain %s, got '%s'", description, value),
			}
		}
		return nil
	}
}

// IsValidGoIdentifier rejects keywords and anything token.IsIdentifier refuses
func IsValidGoIdentifier(field string) Validator[string] {
	return func(value string) error {
		if !token.IsIdentifier(value) {
			return ValidationError{Field: field, Value: value, Message: "must be a valid Go identifier"}
		}
		return nil
	}
}

// IsOneOf accepts only the listed values
func IsOneOf[T comparable](field string, allowed ...T) Validator[T] {
	return func(value T) error {
		if slices.Contains(allowed, value) {
			return nil
		}
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("must be one of: %v", allowed),
		}
	}
}
