package session

import (
	"net/http"

	"github.com/Abraxas-365/resumelens/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("SESSION")

var (
	CodeNoSession        = ErrRegistry.Register("NO_SESSION", errx.TypeAuthentication, http.StatusUnauthorized, "Authentication required")
	CodeInvalidToken     = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthentication, http.StatusUnauthorized, "Invalid token")
	CodeTokenExpired     = ErrRegistry.Register("TOKEN_EXPIRED", errx.TypeAuthentication, http.StatusUnauthorized, "Token has expired")
	CodeTokenRevoked     = ErrRegistry.Register("TOKEN_REVOKED", errx.TypeAuthentication, http.StatusUnauthorized, "Session has been invalidated")
	CodeRoleNotPermitted = ErrRegistry.Register("ROLE_NOT_PERMITTED", errx.TypeAuthorization, http.StatusForbidden, "Role is not permitted to perform this action")
)

func ErrNoSession() *errx.Error {
	return ErrRegistry.New(CodeNoSession)
}

func ErrInvalidToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidToken)
}

func ErrTokenExpired() *errx.Error {
	return ErrRegistry.New(CodeTokenExpired)
}

func ErrTokenRevoked() *errx.Error {
	return ErrRegistry.New(CodeTokenRevoked)
}

func ErrRoleNotPermitted() *errx.Error {
	return ErrRegistry.New(CodeRoleNotPermitted)
}
