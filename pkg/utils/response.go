package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// The API contract: every response is HTTP 200 with a uniform envelope.
// Clients branch on the logical code field, never on transport status.
// code 0 is the sole success sentinel.

// SuccessResponse sends the standard success envelope
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":      0,
		"msg":       "success",
		"data":      data,
		"timestamp": time.Now().UnixMilli(),
	})
}

// ErrorResponse sends the standard error envelope with a non-zero code
func ErrorResponse(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, gin.H{
		"code":      code,
		"msg":       msg,
		"data":      nil,
		"timestamp": time.Now().UnixMilli(),
	})
}
