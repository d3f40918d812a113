// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medical-back/internal/auth"
	"medical-back/internal/clinic"
	"medical-back/internal/identity"
	"medical-back/internal/notify"
	"medical-back/internal/storage"
	"medical-back/internal/validation"
	"medical-back/internal/verification"
)

// respondError translates a store error into its HTTP status and JSON body.
// Unknown errors become 500 without leaking details.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, msg := classify(err)
	c.JSON(status, gin.H{"error": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrInvalidInput),
		errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, identity.ErrDuplicateEmail),
		errors.Is(err, clinic.ErrInvalidInput),
		errors.Is(err, verification.ErrEmailMismatch),
		errors.Is(err, verification.ErrInvalidCode),
		errors.Is(err, verification.ErrNotVerified):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, clinic.ErrNotFound),
		errors.Is(err, identity.ErrAccountNotFound),
		errors.Is(err, identity.ErrNoDoctorProfile),
		errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, notify.ErrDeliveryFailed):
		return http.StatusInternalServerError, "Failed to send verification email."
	}
	return http.StatusInternalServerError, "internal server error"
}

// badRequest answers a request body that failed to bind.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": validation.Describe(err).Error()})
}

// idParam parses a numeric path parameter. Anything else cannot name a row,
// so it is answered like a missing one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}
