package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

// fakeGoogle serves the token and userinfo endpoints of the provider.
func fakeGoogle(t *testing.T, profile models.GoogleProfile) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func googleConfig(base string) GoogleConfig {
	return GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
		Domain:       "Campus.edu",
		AuthURL:      base + "/auth",
		TokenURL:     base + "/token",
		UserInfoURL:  base + "/userinfo",
	}
}

func TestGoogleAuthServiceAuthenticate(t *testing.T) {
	server := fakeGoogle(t, models.GoogleProfile{Email: "Ana@campus.edu", EmailVerified: true, Name: "Ana"})
	users := newFakeUsers(&models.User{ID: studentID, Email: "ana@campus.edu", Role: models.RoleStudent})
	svc := NewGoogleAuthService(googleConfig(server.URL), users, nil)

	user, err := svc.Authenticate(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, studentID, user.ID)
}

func TestGoogleAuthServiceFailureCodes(t *testing.T) {
	cases := []struct {
		name    string
		profile models.GoogleProfile
		code    string
		users   *fakeUsers
		want    string
	}{
		{
			name:    "other domain",
			profile: models.GoogleProfile{Email: "ana@gmail.com", EmailVerified: true},
			code:    "good-code",
			users:   newFakeUsers(),
			want:    GoogleErrDomain,
		},
		{
			name:    "suffix lookalike",
			profile: models.GoogleProfile{Email: "ana@evilcampus.edu", EmailVerified: true},
			code:    "good-code",
			users:   newFakeUsers(),
			want:    GoogleErrDomain,
		},
		{
			name:    "unverified",
			profile: models.GoogleProfile{Email: "ana@campus.edu"},
			code:    "good-code",
			users:   newFakeUsers(),
			want:    GoogleErrDomain,
		},
		{
			name:    "not registered",
			profile: models.GoogleProfile{Email: "nuevo@campus.edu", EmailVerified: true},
			code:    "good-code",
			users:   newFakeUsers(),
			want:    GoogleErrNotRegistered,
		},
		{
			name:  "cancelled",
			users: newFakeUsers(),
			want:  GoogleErrCancelled,
		},
		{
			name:  "exchange rejected",
			code:  "bad-code",
			users: newFakeUsers(),
			want:  GoogleErrUnknown,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := fakeGoogle(t, tc.profile)
			svc := NewGoogleAuthService(googleConfig(server.URL), tc.users, nil)

			user, err := svc.Authenticate(context.Background(), tc.code)
			assert.Nil(t, user)
			assert.Equal(t, tc.want, GoogleErrorCode(err))
		})
	}
}

func TestGoogleAuthServiceRequiresConfig(t *testing.T) {
	cfg := googleConfig("http://127.0.0.1:1")
	cfg.ClientSecret = ""
	svc := NewGoogleAuthService(cfg, newFakeUsers(), nil)

	assert.False(t, svc.Configured())
	_, err := svc.Authenticate(context.Background(), "good-code")
	assert.Equal(t, GoogleErrConfig, GoogleErrorCode(err))
}

func TestGoogleAuthServiceAuthCodeURL(t *testing.T) {
	svc := NewGoogleAuthService(googleConfig("https://accounts.example"), newFakeUsers(), nil)

	raw := svc.AuthCodeURL("state-abc")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "state-abc", q.Get("state"))
	assert.Equal(t, "campus.edu", q.Get("hd"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Contains(t, q.Get("scope"), "email")
}

func TestGoogleErrorCodeDefaultsToUnknown(t *testing.T) {
	assert.Equal(t, GoogleErrUnknown, GoogleErrorCode(assert.AnError))
	assert.Equal(t, GoogleErrState, GoogleErrorCode(&GoogleAuthError{Code: GoogleErrState}))
}
