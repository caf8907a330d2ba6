package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError is the InvalidInput kind: the request itself is malformed.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// StateError reports a record whose current status forbids the operation.
type StateError struct {
	Resource string
	Status   string
	Msg      string
}

func (e StateError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Resource != "" && e.Status != "":
		return fmt.Sprintf("%s is %s", e.Resource, e.Status)
	default:
		return "invalid state"
	}
}

type CapacityError struct {
	Requested int
	Available int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("not enough seats: requested %d, available %d", e.Requested, e.Available)
}

type FundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e FundsError) Error() string {
	return fmt.Sprintf("insufficient balance: required %s, available %s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

type AlreadyResolvedError struct {
	Resource string
	Status   string
}

func (e AlreadyResolvedError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("%s already reviewed", e.Resource)
	}
	return fmt.Sprintf("%s already reviewed (%s)", e.Resource, e.Status)
}

// IntegrityError means a record referenced by another one has vanished.
// It is fatal for the operation and never retried.
type IntegrityError struct {
	Msg string
	Err error
}

func (e IntegrityError) Error() string {
	if e.Msg != "" {
		return "integrity error: " + e.Msg
	}
	return "integrity error"
}

func (e IntegrityError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target StateError
	return errors.As(err, &target)
}

func IsInsufficientCapacity(err error) bool {
	var target CapacityError
	return errors.As(err, &target)
}

func IsInsufficientFunds(err error) bool {
	var target FundsError
	return errors.As(err, &target)
}

func IsAlreadyResolved(err error) bool {
	var target AlreadyResolvedError
	return errors.As(err, &target)
}

func IsIntegrity(err error) bool {
	var target IntegrityError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
