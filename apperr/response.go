package apperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the failure envelope shared by every endpoint
type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// Write renders err as the failure envelope. Internal details are never
// echoed back to the client.
func Write(c *gin.Context, err error) {
	e, ok := As(err)
	if !ok {
		e = Internal("Internal Server Error", err)
	}
	msg := e.Message
	if e.Kind == KindInternal {
		msg = "Internal Server Error"
	}
	c.AbortWithStatusJSON(e.Status(), ErrorResponse{
		Success: false,
		Message: msg,
		Errors:  e.Errors,
	})
}

// OK writes {"success": true, ...payload} with status 200
func OK(c *gin.Context, payload gin.H) {
	Success(c, http.StatusOK, payload)
}

// Success writes {"success": true, ...payload} with the given status
func Success(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}
