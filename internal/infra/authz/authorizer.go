package authz

import (
	"errors"
	"fmt"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

// Authorizer implements the role check against a fixed allow-list per
// operation. It is pure: the principal is an explicit argument, never
// ambient state.
type Authorizer struct{}

func New() *Authorizer {
	return &Authorizer{}
}

// AuthzError carries the denial detail so operations can surface the
// permitted role list in their result shapes.
type AuthzError struct {
	Message string
	Err     error
}

func (e *AuthzError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *AuthzError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (a *Authorizer) Require(principal petition.Principal, allowed ...petition.Role) error {
	if principal.Subject == "" || principal.Role == "" {
		return &AuthzError{Message: "not authenticated", Err: petition.ErrUnauthorized}
	}
	if !petition.ValidRole(principal.Role) {
		return &AuthzError{
			Message: fmt.Sprintf("unknown role %q", principal.Role),
			Err:     petition.ErrForbidden,
		}
	}
	for _, role := range allowed {
		if principal.Role == role {
			return nil
		}
	}
	return &AuthzError{Message: petition.AccessDeniedMessage(allowed), Err: petition.ErrForbidden}
}

func IsAuthzError(err error) (*AuthzError, bool) {
	var authz *AuthzError
	if errors.As(err, &authz) {
		return authz, true
	}
	return nil, false
}
