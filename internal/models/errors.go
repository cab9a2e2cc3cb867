package models

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// NormalizationError reports a raw value that a normalizer could not map to a
// canonical enum. It identifies (source, field, raw_value) per spec so the
// orchestrator can classify and record it as a schema-kind skip.
type NormalizationError struct {
	Source   string
	Field    string
	RawValue string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize: source=%s field=%s raw_value=%q has no mapping", e.Source, e.Field, e.RawValue)
}

// NewNormalizationError builds a NormalizationError wrapped with a stack trace.
func NewNormalizationError(source, field, raw string) error {
	return errors.WithStack(&NormalizationError{Source: source, Field: field, RawValue: raw})
}

// IdentityConflictError reports two sources carrying incompatible external ids
// for what would otherwise be the same canonical row.
type IdentityConflictError struct {
	EntityType string
	Source     string
	ExistingID string
	IncomingID string
}

func (e *IdentityConflictError) Error() string {
	return fmt.Sprintf("identity conflict: entity=%s source=%s existing=%q incoming=%q",
		e.EntityType, e.Source, e.ExistingID, e.IncomingID)
}

func NewIdentityConflictError(entityType, source, existingID, incomingID string) error {
	return errors.WithStack(&IdentityConflictError{
		EntityType: entityType,
		Source:     source,
		ExistingID: existingID,
		IncomingID: incomingID,
	})
}

// NotFoundError reports a missing canonical entity.
type NotFoundError struct {
	EntityType string
	Key        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.EntityType, e.Key)
}

func NewNotFoundError(entityType, key string) error {
	return errors.WithStack(&NotFoundError{EntityType: entityType, Key: key})
}

// ConstraintError reports a storage-layer constraint violation (unique index,
// foreign key). The orchestrator treats it as a Storage-kind failure.
type ConstraintError struct {
	Constraint string
	Detail     string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violated: %s: %s", e.Constraint, e.Detail)
}

func NewConstraintError(constraint, detail string) error {
	return errors.WithStack(&ConstraintError{Constraint: constraint, Detail: detail})
}

// ValidationError reports a caller-supplied parameter that fails validation
// (unknown leaderboard category, malformed filter combination). Surfaces as
// 422 at the HTTP boundary.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Detail)
}

func NewValidationError(field, detail string) error {
	return errors.WithStack(&ValidationError{Field: field, Detail: detail})
}

// IsValidation reports whether err (or a wrapped cause) is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err (or a wrapped cause) is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsIdentityConflict reports whether err (or a wrapped cause) is an
// IdentityConflictError.
func IsIdentityConflict(err error) bool {
	var target *IdentityConflictError
	return errors.As(err, &target)
}

// IsNormalization reports whether err (or a wrapped cause) is a
// NormalizationError.
func IsNormalization(err error) bool {
	var target *NormalizationError
	return errors.As(err, &target)
}
