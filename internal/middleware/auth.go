// internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medical-back/internal/auth"
	"medical-back/internal/identity"
	"medical-back/internal/models"
)

const (
	AccountIDKey = "accountID"
	DoctorKey    = "doctor"
)

// AuthMiddleware requires a valid access token in the Authorization header.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be a Bearer token"})
			return
		}

		claims, err := tokens.Parse(tokenString, auth.TokenTypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Next()
	}
}

// DoctorResolver looks up the doctor profile of an account.
type DoctorResolver interface {
	DoctorForAccount(ctx context.Context, accountID uint) (*models.Doctor, error)
}

// RequireDoctor resolves the doctor profile of the authenticated account and
// stores it in the context. Accounts without a profile get 404 before any
// clinical data is touched.
func RequireDoctor(resolver DoctorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		doctor, err := resolver.DoctorForAccount(c.Request.Context(), c.GetUint(AccountIDKey))
		if err != nil {
			_ = c.Error(err)
			if errors.Is(err, identity.ErrNoDoctorProfile) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Doctor profile not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load doctor profile"})
			return
		}
		c.Set(DoctorKey, doctor)
		c.Next()
	}
}

// CurrentDoctor returns the doctor set by RequireDoctor.
func CurrentDoctor(c *gin.Context) *models.Doctor {
	doctor, _ := c.MustGet(DoctorKey).(*models.Doctor)
	return doctor
}
