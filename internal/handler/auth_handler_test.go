package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type fakeAuthService struct {
	session    *service.Session
	loginErr   error
	lastLogin  models.LoginRequest
	loggedOut  []service.Actor
	passwordIn models.ChangePasswordRequest
}

func (f *fakeAuthService) Login(_ context.Context, req models.LoginRequest) (*service.Session, error) {
	f.lastLogin = req
	return f.session, f.loginErr
}

func (f *fakeAuthService) Logout(_ context.Context, actor service.Actor) {
	f.loggedOut = append(f.loggedOut, actor)
}

func (f *fakeAuthService) Me(_ context.Context, claims *models.SessionClaims) (*models.User, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return &models.User{ID: claims.User.ID, Email: claims.User.Email, Role: claims.User.Role}, nil
}

func (f *fakeAuthService) UpdateProfile(_ context.Context, claims *models.SessionClaims, req models.UpdateProfileRequest) (*models.User, error) {
	return &models.User{ID: claims.User.ID, Name: *req.Name}, nil
}

func (f *fakeAuthService) ChangePassword(_ context.Context, _ service.Actor, req models.ChangePasswordRequest) error {
	f.passwordIn = req
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour)
	svc := &fakeAuthService{session: &service.Session{
		Token:     "signed-token",
		ExpiresAt: expires,
		User:      models.SessionUser{ID: "u-1", Email: "ana@campus.edu", Role: models.RoleStudent},
	}}
	h := NewAuthHandler(svc, CookieConfig{SessionName: "session", Secure: true})

	c, rec := newContext(http.MethodPost, "/auth/login", map[string]string{"email": "ana@campus.edu", "password": "secret123"}, nil)
	c.Request.Header.Set("User-Agent", "test-agent")
	h.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := cookieNamed(rec, "session")
	require.NotNil(t, cookie)
	assert.Equal(t, "signed-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.InDelta(t, (24 * time.Hour).Seconds(), float64(cookie.MaxAge), 5)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "test-agent", svc.lastLogin.UserAgent)

	var body models.LoginResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	assert.Equal(t, "u-1", body.User.ID)
	assert.NotContains(t, rec.Body.String(), "signed-token")
}

func TestLoginFailureSetsNoCookie(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{loginErr: appErrors.ErrInvalidCredentials}, CookieConfig{})

	c, rec := newContext(http.MethodPost, "/auth/login", map[string]string{"email": "ana@campus.edu", "password": "nope"}, nil)
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, cookieNamed(rec, "session"))
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})

	c, rec := newContext(http.MethodPost, "/auth/login", "{not json", nil)
	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, rec).Error.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc, CookieConfig{SessionName: "session"})

	c, rec := newContext(http.MethodPost, "/auth/logout", nil, claimsFor("u-1", models.RoleTeacher))
	h.Logout(c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookie := cookieNamed(rec, "session")
	require.NotNil(t, cookie)
	assert.Equal(t, "", cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
	require.Len(t, svc.loggedOut, 1)
	assert.Equal(t, "u-1", svc.loggedOut[0].Claims.User.ID)
}

func TestMeWithoutSession(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})

	c, rec := newContext(http.MethodGet, "/auth/me", nil, nil)
	h.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No autorizado", decode(t, rec).Error.Message)
}

func TestUpdateProfileAndChangePassword(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc, CookieConfig{})
	claims := claimsFor("u-1", models.RoleStudent)

	c, rec := newContext(http.MethodPatch, "/me/profile", map[string]string{"name": "Ana María"}, claims)
	h.UpdateProfile(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), "Ana María")

	c, rec = newContext(http.MethodPost, "/auth/change-password", map[string]string{"old_password": "old-secret", "new_password": "new-secret"}, claims)
	h.ChangePassword(c)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "new-secret", svc.passwordIn.NewPassword)
}

func TestNavigationFollowsRole(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})

	cases := map[models.UserRole][]string{
		models.RoleAdmin:   {"dashboard", "users", "courses", "enrollments", "logs", "settings"},
		models.RoleTeacher: {"dashboard", "courses", "grading", "settings"},
		models.RoleStudent: {"dashboard", "courses", "grades", "settings"},
	}
	for role, want := range cases {
		t.Run(string(role), func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/me/navigation", nil, claimsFor("u-1", role))
			h.Navigation(c)
			require.Equal(t, http.StatusOK, rec.Code)

			var views []dto.View
			require.NoError(t, json.Unmarshal(decode(t, rec).Data, &views))
			keys := make([]string, 0, len(views))
			for _, v := range views {
				keys = append(keys, v.Key)
			}
			assert.Equal(t, want, keys)
		})
	}

	c, rec := newContext(http.MethodGet, "/me/navigation", nil, nil)
	h.Navigation(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
