package session

import (
	"strings"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the backend access-token payload the client reads.
type Claims struct {
	jwt.RegisteredClaims
	UserID   kernel.FlexID `json:"user_id,omitempty"`
	Email    string        `json:"email,omitempty"`
	Username string        `json:"username,omitempty"`
	Role     string        `json:"role,omitempty"`
	UserType string        `json:"user_type,omitempty"`
}

// LooksLikeJWT reports whether token has the three dot separated segments of a JWS.
func LooksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

// ParseToken reads identity claims without verifying the signature. The
// client holds no signing key; the backend verifies every request.
func ParseToken(token string) (*Session, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrInvalidToken().WithCause(err)
	}

	role, ok := ParseRole(claims.Role)
	if !ok {
		role, ok = ParseRole(claims.UserType)
	}
	if !ok {
		return nil, ErrInvalidToken().WithDetail("reason", "missing or unknown role claim")
	}

	userID := claims.UserID.String()
	if userID == "" {
		userID = claims.Subject
	}

	s := &Session{
		Token: token,
		Identity: Identity{
			UserID:   kernel.NewUserID(userID),
			Email:    kernel.Email(claims.Email),
			Username: claims.Username,
			Role:     role,
		},
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
