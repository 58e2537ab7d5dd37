package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*service.Session, error)
	Logout(ctx context.Context, actor service.Actor)
	Me(ctx context.Context, claims *models.SessionClaims) (*models.User, error)
	UpdateProfile(ctx context.Context, claims *models.SessionClaims, req models.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, actor service.Actor, req models.ChangePasswordRequest) error
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookies CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate by email and password and set the session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.cookies.setSession(c, session.Token, session.ExpiresAt)
	response.OK(c, models.LoginResponse{User: session.User, ExpiresAt: session.ExpiresAt})
}

// Logout godoc
// @Summary Logout current session
// @Description Clear the session cookie
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.service.Logout(c.Request.Context(), actorFromContext(c))
	h.cookies.clearSession(c)
	response.NoContent(c)
}

// Me godoc
// @Summary Current user
// @Description Return the profile of the signed-in user
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.UpdateProfileRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /me/profile [patch]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid profile payload"))
		return
	}
	user, err := h.service.UpdateProfile(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// ChangePassword godoc
// @Summary Change password
// @Description Change password for current user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Change password"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid password payload"))
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), actorFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Navigation godoc
// @Summary Navigation menu
// @Description Ordered views the signed-in role may open
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/navigation [get]
func (h *AuthHandler) Navigation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.OK(c, service.ViewsForRole(claims.User.Role))
}
