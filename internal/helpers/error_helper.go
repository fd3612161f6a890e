package helpers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Taxonomy codes carried in every error response.
const (
	CodeValidation = "validation_error"
	CodeAuth       = "auth_error"
	CodeForbidden  = "forbidden"
	CodeNotFound   = "not_found"
	CodeConflict   = "conflict"
	CodeState      = "state_error"
	CodeInternal   = "internal_error"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, code, customMessage string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   HTTPStatusText(statusCode),
		Code:    code,
		Message: customMessage,
	})
}
