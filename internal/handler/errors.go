package handler

import (
	"net/http"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/log"

	"github.com/gin-gonic/gin"
)

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindMissingParameter, apperr.KindForbidden:
		return http.StatusBadRequest
	case apperr.KindUnsupported:
		return http.StatusUnprocessableEntity
	case apperr.KindDriver:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status of its kind.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.GetLogger().WithField("path", c.FullPath()).WithError(err).Error("Request failed")
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"kind":  apperr.KindOf(err),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
