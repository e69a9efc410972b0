// Package apperr defines the errors guards and workflows return to callers.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Reason classifies an authorization rejection so callers and tests can
// branch on the condition instead of the message.
type Reason int

const (
	ReasonNoPermission Reason = iota
	ReasonSignInRequired
	ReasonNotOwner
	ReasonTimeLimit
	ReasonCategoryClosed
	ReasonPaperClosed
	ReasonProtected
	ReasonFirstPost
	ReasonEvent
	ReasonHidden
	ReasonLimitReached
	ReasonUserPreference
)

func (r Reason) String() string {
	switch r {
	case ReasonSignInRequired:
		return "sign_in_required"
	case ReasonNotOwner:
		return "not_owner"
	case ReasonTimeLimit:
		return "time_limit"
	case ReasonCategoryClosed:
		return "category_closed"
	case ReasonPaperClosed:
		return "paper_closed"
	case ReasonProtected:
		return "protected"
	case ReasonFirstPost:
		return "first_post"
	case ReasonEvent:
		return "event"
	case ReasonHidden:
		return "hidden"
	case ReasonLimitReached:
		return "limit_reached"
	case ReasonUserPreference:
		return "user_preference"
	default:
		return "no_permission"
	}
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

type AuthorizationError struct {
	Reason  Reason
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func Denied(reason Reason, format string, args ...any) error {
	return Deny(reason, fmt.Sprintf(format, args...))
}

// Deny is Denied for a ready message. Nothing in message is interpreted.
func Deny(reason Reason, message string) error {
	return &AuthorizationError{Reason: reason, Message: message}
}

func SignInRequired(message string) error {
	return &AuthorizationError{Reason: ReasonSignInRequired, Message: message}
}

// ValidationError carries messages per input field. Workflows that reject
// the whole request use the "detail" field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

func Detail(message string) *ValidationError {
	return Invalid("detail", message)
}

// Choice is one selectable resolution of a merge conflict.
type Choice struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

// ConflictUnresolvedError lists, per conflicting attribute, the choices the
// client has to pick from before the merge can proceed.
type ConflictUnresolvedError struct {
	Resolutions map[string][]Choice
}

func (e *ConflictUnresolvedError) Error() string {
	keys := make([]string, 0, len(e.Resolutions))
	for k := range e.Resolutions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "merge conflict needs resolution: " + strings.Join(keys, ", ")
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func AsAuthorization(err error) (*AuthorizationError, bool) {
	var target *AuthorizationError
	ok := errors.As(err, &target)
	return target, ok
}

func HasReason(err error, reason Reason) bool {
	authErr, ok := AsAuthorization(err)
	return ok && authErr.Reason == reason
}

func AsValidation(err error) (*ValidationError, bool) {
	var target *ValidationError
	ok := errors.As(err, &target)
	return target, ok
}

func AsConflict(err error) (*ConflictUnresolvedError, bool) {
	var target *ConflictUnresolvedError
	ok := errors.As(err, &target)
	return target, ok
}

// IsUserFacing reports whether err belongs to the taxonomy above, as
// opposed to a storage or programming failure.
func IsUserFacing(err error) bool {
	if IsNotFound(err) {
		return true
	}
	if _, ok := AsAuthorization(err); ok {
		return true
	}
	if _, ok := AsValidation(err); ok {
		return true
	}
	_, ok := AsConflict(err)
	return ok
}
