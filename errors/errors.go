/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrIncomparable is returned when identity comparison is asked for a value that is not an entity
	ErrIncomparable = errors.New("incomparable type")

	// ErrPlanBuild is returned when a lookup plan could not be built
	ErrPlanBuild = errors.New("lookup plan build failed")

	// ErrInvalidModel is returned when a Go type cannot be mapped to a model
	ErrInvalidModel = errors.New("invalid model")

	// ErrNoPrimaryKey is returned when an operation needs a complete primary key and the entity has none
	ErrNoPrimaryKey = errors.New("primary key not present")

	// ErrNotPersisted is returned when an operation needs a persisted entity
	ErrNotPersisted = errors.New("entity not persisted")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IncomparableError reports an equality check between values that are not both entities.
type IncomparableError struct {
	Left  string
	Right string
}

func (e *IncomparableError) Error() string {
	return fmt.Sprintf("cannot compare %s with %s: not an entity", e.Left, e.Right)
}

func (e *IncomparableError) Is(target error) bool {
	return target == ErrIncomparable
}

// PlanError wraps the failure of a lookup plan builder
type PlanError struct {
	Key string
	Err error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("build plan %s: %v", e.Key, e.Err)
}

func (e *PlanError) Is(target error) bool {
	return target == ErrPlanBuild
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// ModelError represents a Go type that cannot be mapped
type ModelError struct {
	Type    string
	Message string
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %s", e.Type, e.Message)
}

func (e *ModelError) Is(target error) bool {
	return target == ErrInvalidModel
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewIncomparableError creates a new IncomparableError from the two operands
func NewIncomparableError(left, right any) error {
	return &IncomparableError{Left: fmt.Sprintf("%T", left), Right: fmt.Sprintf("%T", right)}
}

// NewPlanError creates a new PlanError
func NewPlanError(key string, err error) error {
	return &PlanError{Key: key, Err: err}
}

// NewModelError creates a new ModelError
func NewModelError(typeName, message string) error {
	return &ModelError{Type: typeName, Message: message}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsIncomparable checks if an error is an incomparable type error
func IsIncomparable(err error) bool {
	return errors.Is(err, ErrIncomparable)
}

// IsPlanBuild checks if an error came from a failed plan build
func IsPlanBuild(err error) bool {
	return errors.Is(err, ErrPlanBuild)
}

// IsInvalidModel checks if an error is a model mapping error
func IsInvalidModel(err error) bool {
	return errors.Is(err, ErrInvalidModel)
}
