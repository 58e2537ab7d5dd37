package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

func testSessions() *SessionService {
	return NewSessionService(SessionConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "campus-virtual"})
}

func TestSessionServiceRoundTrip(t *testing.T) {
	svc := testSessions()
	user := &models.User{ID: teacherID, Email: "prof@campus.edu", Name: "Prof", Role: models.RoleTeacher}

	token, expiresAt, err := svc.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, teacherID, claims.User.ID)
	assert.Equal(t, models.RoleTeacher, claims.User.Role)
	assert.Equal(t, "prof@campus.edu", claims.User.Email)
}

func TestSessionServiceRejectsExpired(t *testing.T) {
	svc := testSessions()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Issue(&models.User{ID: studentID, Role: models.RoleStudent})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Parse(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	assert.Contains(t, err.Error(), "session expired")
}

func TestSessionServiceRejectsForeignTokens(t *testing.T) {
	svc := testSessions()
	user := &models.User{ID: studentID, Role: models.RoleStudent}

	other := NewSessionService(SessionConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "someone-else"})
	foreign, _, err := other.Issue(user)
	require.NoError(t, err)

	resigned := NewSessionService(SessionConfig{Secret: "other-secret", TTL: time.Hour, Issuer: "campus-virtual"})
	wrongKey, _, err := resigned.Issue(user)
	require.NoError(t, err)

	valid, _, err := svc.Issue(user)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for name, token := range map[string]string{
		"empty":        "",
		"wrong issuer": foreign,
		"wrong key":    wrongKey,
		"tampered":     tampered,
		"garbage":      "not-a-token",
	} {
		_, err := svc.Parse(token)
		assert.True(t, errors.Is(err, appErrors.ErrUnauthorized), name)
	}
}

func TestSessionServiceRejectsUnknownRole(t *testing.T) {
	svc := testSessions()
	token, _, err := svc.Issue(&models.User{ID: studentID, Role: models.UserRole("guest")})
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
