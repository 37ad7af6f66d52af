package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/JoeSaf/Allika-sub000/internal/api/middleware"
	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/service"
	"github.com/JoeSaf/Allika-sub000/pkg/response"
)

// AuthHandler serves organizer accounts.
type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register creates an organizer account and logs it in.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}
	response.Created(c, "User registered successfully", result)
}

// Login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}
	response.OKWithMessage(c, "Login successful", result)
}

// Refresh rotates the token pair.
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleAuthError(c, err)
		return
	}
	response.OK(c, result)
}

// Logout revokes the bearer token and the refresh token in the body, if any.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.LogoutRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)

	access := service.AccessToken{
		JTI:       c.GetString(middleware.ContextTokenJTI),
		ExpiresAt: c.GetTime(middleware.ContextTokenExpiry),
	}
	if err := h.authSvc.Logout(c.Request.Context(), userID, access, req.RefreshToken); err != nil {
		handleAuthError(c, err)
		return
	}
	response.OKWithMessage(c, "Logged out successfully", nil)
}

// Me returns the caller's profile.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		handleAuthError(c, err)
		return
	}
	response.OK(c, result)
}

// ChangePassword
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		handleAuthError(c, err)
		return
	}
	response.OKWithMessage(c, "Password changed successfully", nil)
}

func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11002, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, 11003, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 11004, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11005, err.Error())
	default:
		response.InternalError(c, "")
	}
}
