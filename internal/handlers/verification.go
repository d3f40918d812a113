// internal/handlers/verification.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medical-back/internal/identity"
	"medical-back/internal/notify"
	"medical-back/internal/verification"
)

type VerificationRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type ChangePasswordRequest struct {
	Email           string `json:"email" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RequestVerification issues a code for the email and mails it. A code that
// could not be delivered is discarded; delivery is not retried.
func RequestVerification(challenges *verification.Store, mailer notify.Mailer, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerificationRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err)
			return
		}
		if req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required."})
			return
		}
		email, err := identity.NormalizeEmail(req.Email)
		if err != nil {
			respondError(c, err)
			return
		}

		ctx := c.Request.Context()
		code, err := challenges.Issue(ctx, email)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := mailer.SendVerificationCode(ctx, email, code); err != nil {
			if derr := challenges.Discard(ctx, email); derr != nil {
				log.Warn().Err(derr).Str("email", email).Msg("failed to discard undelivered verification code")
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Verification code sent."})
	}
}

func VerifyCode(challenges *verification.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		email, err := identity.NormalizeEmail(req.Email)
		if err != nil {
			respondError(c, verification.ErrEmailMismatch)
			return
		}
		if err := challenges.Verify(c.Request.Context(), email, req.Code); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Email verified."})
	}
}

// ChangePassword resets the password of the account with the given email.
// With requireVerified set, a verified challenge for that email is consumed
// first.
func ChangePassword(ids *identity.Store, challenges *verification.Store, requireVerified bool, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.NewPassword != req.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
			return
		}
		email, err := identity.NormalizeEmail(req.Email)
		if err != nil {
			respondError(c, err)
			return
		}

		ctx := c.Request.Context()
		if requireVerified {
			if err := challenges.ConsumeVerified(ctx, email); err != nil {
				respondError(c, err)
				return
			}
		}
		if err := ids.ResetPassword(ctx, email, req.NewPassword); err != nil {
			respondError(c, err)
			return
		}
		log.Info().Str("email", email).Msg("password changed")
		c.JSON(http.StatusOK, gin.H{"success": "Password changed successfully."})
	}
}
