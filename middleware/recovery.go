package middleware

import (
	"fmt"
	"runtime/debug"

	"food-ordering-api/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Recovery turns a panic into the standard 500 envelope
func Recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"request_id": RequestID(c),
					"panic":      r,
					"stack":      string(debug.Stack()),
				}).Error("panic recovered")
				apperr.Write(c, apperr.Internal("panic", fmt.Errorf("%v", r)))
			}
		}()
		c.Next()
	}
}
