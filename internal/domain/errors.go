// Package domain holds the license and organization records, the dispatch
// strategies used to enrich them, and the errors the rest of the mesh
// translates to and from HTTP.
package domain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. The typed errors below unwrap to them.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("unavailable")

	// ErrNoInstancesAvailable is an empty directory lookup. It is also an
	// ErrUnavailable.
	ErrNoInstancesAvailable = errors.New("no instances available")
)

// NotFoundError names the missing record.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError is a rejected input. Field may be empty when the failure
// is not tied to one field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UnavailableError means a downstream service could not answer.
type UnavailableError struct {
	Service string
	Reason  string
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("service %q unavailable", e.Service)
	}
	return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// NoInstancesError is returned when the directory lists nothing for Service.
type NoInstancesError struct {
	Service string
}

func NewNoInstancesError(service string) error {
	return &NoInstancesError{Service: service}
}

func (e *NoInstancesError) Error() string {
	return fmt.Sprintf("no instances available for service %q", e.Service)
}

func (e *NoInstancesError) Unwrap() []error {
	return []error{ErrNoInstancesAvailable, ErrUnavailable}
}

func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
func IsNoInstances(err error) bool { return errors.Is(err, ErrNoInstancesAvailable) }
