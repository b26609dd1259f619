package handler

import (
	"ovo-video-backend/internal/service"
	"ovo-video-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CaptchaHandler struct {
	captchaService *service.CaptchaService
}

func NewCaptchaHandler(captchaService *service.CaptchaService) *CaptchaHandler {
	return &CaptchaHandler{
		captchaService: captchaService,
	}
}

// Issue creates a new captcha challenge. The clients render the code locally;
// only the id and expiry-checked code round-trip through the backend.
func (h *CaptchaHandler) Issue(c *gin.Context) {
	captcha, code, err := h.captchaService.Issue()
	if err != nil {
		utils.ErrorResponse(c, 500, "Failed to create captcha")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"captcha_id":  captcha.CaptchaID,
		"code":        code,
		"expire_time": captcha.ExpireTime,
	})
}
