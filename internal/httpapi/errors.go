package httpapi

import (
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func writeError(c *gin.Context, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = c.GetString(requestIDKey)
	c.AbortWithStatusJSON(status, e)
}
