package model

import (
	"errors"
	"fmt"
	"time"
)

// Common errors used across the application
var (
	// Store errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidPlayerID = errors.New("player id is required")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidFloor    = errors.New("floor must not be negative")
	ErrInvalidAmount   = errors.New("amount must be positive")

	// Engine errors, matched by the typed errors below through errors.Is
	ErrInsufficientResource = errors.New("insufficient resource")
	ErrInvalidState         = errors.New("invalid state")
	ErrRateLimited          = errors.New("rate limited")
	ErrExternalApplyFailed  = errors.New("external marker application failed")
)

// InsufficientResourceError is a guard failure; no mutation occurred
type InsufficientResourceError struct {
	Field Field
}

func (e *InsufficientResourceError) Error() string {
	return fmt.Sprintf("insufficient resource: %s", e.Field)
}

func (e *InsufficientResourceError) Is(target error) bool {
	return target == ErrInsufficientResource
}

// InvalidStateError reports an action that is not allowed in the target's current state
type InvalidStateError struct {
	Reason string
}

// Reasons reported by the combat engine
const (
	ReasonNotIncapacitated     = "not incapacitated"
	ReasonAlreadyIncapacitated = "already incapacitated"
	ReasonProtected            = "protected"
)

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %s", e.Reason)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// RateLimitedError reports a denied rate limiter token
type RateLimitedError struct {
	Action     Action
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: %s, retry after %s", e.Action, e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// ExternalApplyFailedError reports that the caller could not apply or remove
// the platform marker after the engine had already charged resources
type ExternalApplyFailedError struct {
	Action   Action
	Refunded bool
	// NoCharge is set when the outcome had no outstanding charge: it was never
	// issued, was already reported, or its refund window closed
	NoCharge bool
	Cause    error
}

func (e *ExternalApplyFailedError) Error() string {
	msg := ErrExternalApplyFailed.Error()
	if e.Action != "" {
		msg += ": " + string(e.Action)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ExternalApplyFailedError) Is(target error) bool {
	return target == ErrExternalApplyFailed
}

func (e *ExternalApplyFailedError) Unwrap() error {
	return e.Cause
}
