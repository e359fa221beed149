package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the wire shape of every error response. The desktop exam
// client branches on Code, so it must stay machine-readable and stable.
type ErrorBody struct {
	Error   string  `json:"error"`
	Details string  `json:"details,omitempty"`
	Code    ErrCode `json:"code,omitempty"`
}

// OK sends a successful JSON response with the given status code and payload.
// Success payloads are operation-specific; there is no envelope.
func OK(c *gin.Context, statusCode int, payload interface{}) {
	c.JSON(statusCode, payload)
}

// Fail sends an error response for the given code.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, ErrorBody{Error: GetMessage(code), Code: code})
}

// FailWithDetails sends an error response with a caller-supplied detail
// string (e.g. the rejected client IP, or validation specifics).
func FailWithDetails(c *gin.Context, statusCode int, code ErrCode, details string) {
	c.JSON(statusCode, ErrorBody{Error: GetMessage(code), Details: details, Code: code})
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Error: GetMessage(code), Code: code})
}
