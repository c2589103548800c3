// Package session holds the authenticated identity used to gate resume views
// and actions, together with the bearer credential sent to the backend.
package session

import (
	"strings"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
)

type Role string

const (
	RoleJobseeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleJobseeker:
		return RoleJobseeker, true
	case RoleEmployer:
		return RoleEmployer, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// CanManageResumes reports whether the role may upload, view and re-analyze resumes.
func (r Role) CanManageResumes() bool {
	return r == RoleJobseeker || r == RoleAdmin
}

type Identity struct {
	UserID   kernel.UserID `json:"user_id,omitempty"`
	Email    kernel.Email  `json:"email,omitempty"`
	Username string        `json:"username,omitempty"`
	Role     Role          `json:"role,omitempty"`
}

// Known is false for opaque tokens that carry no claims.
func (i Identity) Known() bool { return i.Role != "" }

type Session struct {
	Token     string    `json:"-"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Allows reports whether the session role is one of roles. Sessions with an
// unknown identity are allowed, the backend being the authority for them.
func (s *Session) Allows(roles ...Role) bool {
	if len(roles) == 0 || !s.Identity.Known() {
		return true
	}
	for _, r := range roles {
		if s.Identity.Role == r {
			return true
		}
	}
	return false
}
