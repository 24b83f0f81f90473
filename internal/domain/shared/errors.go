package shared

import (
	"fmt"
	"strings"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Not-found error, distinct from transient store failures so callers can
// render semantic emptiness differently from outages

type NotFoundError struct {
	*DomainError
	Entity string
	Key    string
}

func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s %s not found", entity, key)},
		Entity:      entity,
		Key:         key,
	}
}

// Active-row protection errors

type ActiveDeleteError struct {
	*DomainError
	Entity string
	Key    string
}

func NewActiveDeleteError(entity, key string) *ActiveDeleteError {
	return &ActiveDeleteError{
		DomainError: &DomainError{Message: fmt.Sprintf("cannot delete active %s %s", entity, key)},
		Entity:      entity,
		Key:         key,
	}
}

// StaleGraphError signals that stops exist in the relational store but are
// missing from the active materialized graph, meaning a rebuild is required.

type StaleGraphError struct {
	*DomainError
	MissingNodes []string
}

func NewStaleGraphError(missingNodes []string) *StaleGraphError {
	return &StaleGraphError{
		DomainError: &DomainError{
			Message: fmt.Sprintf("graph out of sync, missing nodes: %s", strings.Join(missingNodes, ", ")),
		},
		MissingNodes: missingNodes,
	}
}

// InvariantViolationError aborts a graph build before activation

type InvariantViolationError struct {
	*DomainError
	Violations []string
}

func NewInvariantViolationError(stage string, violations []string) *InvariantViolationError {
	return &InvariantViolationError{
		DomainError: &DomainError{
			Message: fmt.Sprintf("%s validation failed: %s", stage, strings.Join(violations, "; ")),
		},
		Violations: violations,
	}
}
