package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"food-ordering-api/apperr"
	"food-ordering-api/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Handlers only record the error and return.
func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := Normalize(c.Errors.Last().Err)
		if e, _ := apperr.As(err); e == nil || e.Status() >= http.StatusInternalServerError {
			log.WithError(err).WithField("request_id", RequestID(c)).Error("request error")
		}
		apperr.Write(c, err)
	}
}

// Normalize maps framework and persistence errors onto the error kinds
func Normalize(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}

	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError
	switch {
	case errors.As(err, &verrs):
		return apperr.FromValidator("Validation failed", verrs)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("A record with this value already exists")
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.As(err, &numErr),
		errors.Is(err, io.ErrUnexpectedEOF):
		return apperr.Validation("Invalid request body")
	case errors.Is(err, io.EOF):
		return apperr.Validation("Request body is required")
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		return apperr.Validation("Invalid form data")
	}
	return err
}
