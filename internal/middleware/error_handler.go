package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
)

// ErrorHandler converts errors attached to the context into the uniform
// error envelope. Handlers report failures with c.Error(err) and abort; the
// mapping to an HTTP status happens in one place.
func ErrorHandler(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		statusCode := http.StatusInternalServerError
		message := "an unexpected error occurred"

		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			statusCode = appErr.StatusCode
			message = appErr.Message
		}

		entry := log.WithFields(logrus.Fields{
			"status":     statusCode,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString("request_id"),
		})
		if statusCode >= http.StatusInternalServerError {
			entry.WithError(err).Error("request failed")
		} else {
			entry.WithError(err).Warn("request rejected")
		}

		c.JSON(statusCode, models.ErrorBody{
			Message: message,
			Status:  statusCode,
		})
	}
}
