package domain

import (
	"errors"
	"fmt"
)

// UnauthenticatedError covers every reason a request could not be tied to a
// live principal: missing, invalid or expired token, deleted account, or a
// token issued before the last password change.
type UnauthenticatedError struct {
	Msg string
	Err error
}

func (e UnauthenticatedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthenticated"
}

func (e UnauthenticatedError) Unwrap() error { return e.Err }

type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "you do not have permission to perform this action"
}

// InvalidQueryError reports a malformed filter, sort, projection or paging
// parameter. Param names the offending query-string key when known.
type InvalidQueryError struct {
	Param string
	Msg   string
}

func (e InvalidQueryError) Error() string {
	if e.Param != "" && e.Msg != "" {
		return fmt.Sprintf("invalid query parameter %q: %s", e.Param, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	return "invalid query"
}

type InvalidPageError struct {
	Page  int
	Total int
}

func (e InvalidPageError) Error() string {
	return fmt.Sprintf("page %d does not exist (%d records available)", e.Page, e.Total)
}

// StoreUnavailableError wraps a failure of the backing store. It is never
// recovered locally.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e StoreUnavailableError) Error() string {
	if e.Op == "" {
		return "store unavailable"
	}
	return fmt.Sprintf("store unavailable: %s", e.Op)
}

func (e StoreUnavailableError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("no %s found with that id", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

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

func IsUnauthenticated(err error) bool {
	var target UnauthenticatedError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsInvalidQuery(err error) bool {
	var target InvalidQueryError
	return errors.As(err, &target)
}

func IsInvalidPage(err error) bool {
	var target InvalidPageError
	return errors.As(err, &target)
}

func IsStoreUnavailable(err error) bool {
	var target StoreUnavailableError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
