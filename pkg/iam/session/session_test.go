package session

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/errx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestParseToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, jwt.MapClaims{
		"user_id":  17,
		"email":    "ana@example.com",
		"username": "ana",
		"role":     "jobseeker",
		"exp":      exp.Unix(),
	})

	s, err := ParseToken(token)
	require.NoError(t, err)

	assert.Equal(t, "17", s.Identity.UserID.String())
	assert.Equal(t, RoleJobseeker, s.Identity.Role)
	assert.Equal(t, "ana", s.Identity.Username)
	assert.True(t, s.ExpiresAt.Equal(exp))
}

func TestParseToken_FallbacksAndErrors(t *testing.T) {
	s, err := ParseToken(signToken(t, jwt.MapClaims{"sub": "u-1", "user_type": "Employer"}))
	require.NoError(t, err)
	assert.Equal(t, RoleEmployer, s.Identity.Role)
	assert.Equal(t, "u-1", s.Identity.UserID.String())

	_, err = ParseToken(signToken(t, jwt.MapClaims{"sub": "u-1"}))
	assert.True(t, errx.Is(err, CodeInvalidToken))

	_, err = ParseToken("not.a.jwt")
	assert.True(t, errx.Is(err, CodeInvalidToken))
}

func TestRole_CanManageResumes(t *testing.T) {
	assert.True(t, RoleJobseeker.CanManageResumes())
	assert.True(t, RoleAdmin.CanManageResumes())
	assert.False(t, RoleEmployer.CanManageResumes())
}

func TestManager_LoginAndRequire(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	_, err := m.Token()
	assert.True(t, errx.Is(err, CodeNoSession))

	_, err = m.Login(ctx, signToken(t, jwt.MapClaims{"sub": "1", "role": "employer"}))
	require.NoError(t, err)

	_, err = m.Require(RoleJobseeker, RoleAdmin)
	assert.True(t, errx.Is(err, CodeRoleNotPermitted))

	s, err := m.Require(RoleEmployer)
	require.NoError(t, err)
	assert.Equal(t, RoleEmployer, s.Identity.Role)
}

func TestManager_OpaqueToken(t *testing.T) {
	m := NewManager()
	s, err := m.Login(context.Background(), "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b")
	require.NoError(t, err)

	assert.False(t, s.Identity.Known())
	assert.True(t, s.Allows(RoleJobseeker))

	token, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b", token)
}

func TestManager_ExpiredToken(t *testing.T) {
	m := NewManager()
	_, err := m.Login(context.Background(), signToken(t, jwt.MapClaims{
		"sub": "1", "role": "admin", "exp": time.Now().Add(-time.Minute).Unix(),
	}))
	assert.True(t, errx.Is(err, CodeTokenExpired))
}

func TestManager_InvalidateRevokesAndNotifies(t *testing.T) {
	ctx := context.Background()
	revoker := NewMemoryRevoker()
	m := NewManager(WithRevoker(revoker))

	token := signToken(t, jwt.MapClaims{"sub": "1", "role": "jobseeker"})
	_, err := m.Login(ctx, token)
	require.NoError(t, err)

	var notified []Session
	m.OnInvalidate(func(s Session) { notified = append(notified, s) })

	require.NoError(t, m.Invalidate(ctx))
	require.Len(t, notified, 1)
	assert.Equal(t, token, notified[0].Token)

	_, ok := m.Current()
	assert.False(t, ok)

	revoked, err := revoker.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = NewManager(WithRevoker(revoker)).Login(ctx, token)
	assert.True(t, errx.Is(err, CodeTokenRevoked))

	require.NoError(t, m.Invalidate(ctx))
	assert.Len(t, notified, 1)
}

func TestMemoryRevoker_Expires(t *testing.T) {
	now := time.Now()
	r := NewMemoryRevoker()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(context.Background(), "t", now.Add(time.Minute)))
	revoked, _ := r.IsRevoked(context.Background(), "t")
	assert.True(t, revoked)

	r.now = func() time.Time { return now.Add(2 * time.Minute) }
	revoked, _ = r.IsRevoked(context.Background(), "t")
	assert.False(t, revoked)
}
