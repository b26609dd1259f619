package handler

import (
	"errors"

	"ovo-video-backend/internal/repository"
	"ovo-video-backend/internal/service"
	"ovo-video-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
	captcha     service.CaptchaVerifier
}

func NewAuthHandler(authService *service.AuthService, captcha service.CaptchaVerifier) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		captcha:     captcha,
	}
}

type LoginRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Captcha   string `json:"captcha" binding:"required"`
	CaptchaID string `json:"captcha_id" binding:"required"`
	DeviceID  string `json:"device_id"`
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Captcha   string `json:"captcha" binding:"required"`
	CaptchaID string `json:"captcha_id" binding:"required"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Avatar    string `json:"avatar"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
	DeviceID     string `json:"device_id"`
}

// Login handles user authentication. The captcha gate runs first; the login
// flow itself never re-checks it.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body")
		return
	}

	if err := h.captcha.Verify(req.CaptchaID, req.Captcha); err != nil {
		utils.ErrorResponse(c, 400, "Captcha invalid or expired")
		return
	}

	response, err := h.authService.Login(req.Username, req.Password, req.DeviceID, c.ClientIP())
	if err != nil {
		respondAuthError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// Refresh exchanges a refresh token for a new bearer + refresh pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "refresh_token is required")
		return
	}

	response, err := h.authService.Refresh(req.RefreshToken, req.DeviceID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// Register handles user registration behind the captcha gate
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body")
		return
	}

	if err := h.captcha.Verify(req.CaptchaID, req.Captcha); err != nil {
		utils.ErrorResponse(c, 400, "Captcha invalid or expired")
		return
	}

	response, err := h.authService.Register(
		req.Username, req.Password, req.Nickname,
		req.Email, req.Phone, req.Avatar, c.ClientIP(),
	)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// Profile returns the merged account view for the authenticated caller
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		utils.ErrorResponse(c, 401, "Authentication required")
		return
	}

	response, err := h.authService.Profile(userID.(uint))
	if err != nil {
		respondAuthError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// respondAuthError maps domain errors onto envelope codes. Internal details
// never reach the client; they are already in the server log.
func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrRefreshTokenInvalid),
		errors.Is(err, service.ErrRefreshTokenExpired):
		utils.ErrorResponse(c, 401, err.Error())
	case errors.Is(err, service.ErrBadUsername),
		errors.Is(err, service.ErrBadPassword),
		errors.Is(err, service.ErrUsernameTaken):
		utils.ErrorResponse(c, 400, err.Error())
	case errors.Is(err, repository.ErrUserNotFound):
		utils.ErrorResponse(c, 404, "User not found")
	default:
		utils.ErrorResponse(c, 500, "Internal server error")
	}
}
