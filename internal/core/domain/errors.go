package domain

import (
	"errors"
	"fmt"
)

var (
	// Dataset cleaning and training failures, surfaced to the administrator.
	ErrBadFormat        = errors.New("bad dataset format")
	ErrInsufficientData = errors.New("insufficient training data")
	ErrTraining         = errors.New("training failed")

	// Selection and serving failures. "invalid model number" and "no model
	// selected yet" are distinct caller-visible outcomes and must never
	// collapse into a generic server error.
	ErrModelNotFound = errors.New("model not found")
	ErrNoActiveModel = errors.New("no model selected")
	ErrInvalidInput  = errors.New("invalid input")

	ErrDatasetNotFound = errors.New("dataset not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrRoleNotFound    = errors.New("role not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
