package handler

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
)

const (
	googleStateCookie    = "google_oauth_state"
	googleReturnToCookie = "google_oauth_return_to"
	googleStateTTL       = 10 * time.Minute
	defaultReturnTo      = "/dashboard"
)

type googleAuthenticator interface {
	Configured() bool
	AuthCodeURL(state string) string
	Authenticate(ctx context.Context, code string) (*models.User, error)
}

type sessionOpener interface {
	OpenSession(ctx context.Context, user *models.User, actor service.Actor, method string) (*service.Session, error)
}

// GoogleHandler runs the browser side of the Google sign-in flow.
type GoogleHandler struct {
	google   googleAuthenticator
	sessions sessionOpener
	cookies  CookieConfig
	logger   *zap.Logger
}

// NewGoogleHandler creates a new handler.
func NewGoogleHandler(google googleAuthenticator, sessions sessionOpener, cookies CookieConfig, logger *zap.Logger) *GoogleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleHandler{google: google, sessions: sessions, cookies: cookies, logger: logger}
}

// Start godoc
// @Summary Start Google sign-in
// @Description Redirects to the Google consent screen
// @Tags Authentication
// @Param returnTo query string false "Relative path to open after sign-in"
// @Success 302
// @Router /auth/google [get]
func (h *GoogleHandler) Start(c *gin.Context) {
	if !h.google.Configured() {
		h.fail(c, service.GoogleErrConfig)
		return
	}
	state, err := newOAuthState()
	if err != nil {
		h.logger.Error("generate oauth state", zap.Error(err))
		h.fail(c, service.GoogleErrUnknown)
		return
	}

	h.cookies.set(c, googleStateCookie, state, googleStateTTL)
	h.cookies.set(c, googleReturnToCookie, safeReturnTo(c.Query("returnTo")), googleStateTTL)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// Callback godoc
// @Summary Google sign-in callback
// @Description Validates state, resolves the local user and sets the session cookie
// @Tags Authentication
// @Param state query string true "OAuth state"
// @Param code query string false "Authorization code"
// @Success 302
// @Router /auth/google/callback [get]
func (h *GoogleHandler) Callback(c *gin.Context) {
	expected, _ := c.Cookie(googleStateCookie)
	returnTo, _ := c.Cookie(googleReturnToCookie)
	h.cookies.clear(c, googleStateCookie)
	h.cookies.clear(c, googleReturnToCookie)

	if !h.google.Configured() {
		h.fail(c, service.GoogleErrConfig)
		return
	}
	if c.Query("error") != "" {
		h.fail(c, service.GoogleErrCancelled)
		return
	}
	state := c.Query("state")
	if expected == "" || state == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		h.fail(c, service.GoogleErrState)
		return
	}

	user, err := h.google.Authenticate(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.fail(c, service.GoogleErrorCode(err))
		return
	}

	session, err := h.sessions.OpenSession(c.Request.Context(), user, actorFromContext(c), "google")
	if err != nil {
		h.logger.Error("open google session", zap.String("user_id", user.ID), zap.Error(err))
		h.fail(c, service.GoogleErrUnknown)
		return
	}

	h.cookies.setSession(c, session.Token, session.ExpiresAt)
	c.Redirect(http.StatusFound, safeReturnTo(returnTo))
}

func (h *GoogleHandler) fail(c *gin.Context, code string) {
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, "/?authError="+url.QueryEscape(code))
}

func newOAuthState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// safeReturnTo keeps only same-origin relative paths.
func safeReturnTo(raw string) string {
	if raw == "" || raw[0] != '/' || len(raw) > 1 && (raw[1] == '/' || raw[1] == '\\') {
		return defaultReturnTo
	}
	if strings.ContainsAny(raw, "\r\n\t") {
		return defaultReturnTo
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return defaultReturnTo
	}
	return raw
}
