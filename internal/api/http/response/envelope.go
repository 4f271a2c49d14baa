// Package response holds the JSON envelope shared by every API endpoint.
package response

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the {success, data?, message?} body returned by the API.
// Error is only populated when detailed errors are enabled.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

const ctxDetailedErrors = "detailed_errors"

// DetailedErrors marks the request so Fail includes the underlying error
// text. It is installed only in development.
func DetailedErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxDetailedErrors, true)
		c.Next()
	}
}

// OK writes a success envelope.
func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

// Fail writes a failure envelope and aborts the handler chain.
func Fail(c *gin.Context, status int, message string, err error) {
	body := Envelope{Success: false, Message: message}
	if err != nil && c.GetBool(ctxDetailedErrors) {
		body.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
