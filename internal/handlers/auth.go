// internal/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medical-back/internal/auth"
	"medical-back/internal/identity"
	"medical-back/internal/middleware"
	"medical-back/internal/models"
)

type RegisterUser struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
}

type RegisterDoctor struct {
	BirthDate   *models.Date `json:"birth_date"`
	PhoneNumber string       `json:"phone_number" binding:"required,max=15"`
}

type RegisterRequest struct {
	User   *RegisterUser   `json:"user" binding:"required"`
	Doctor *RegisterDoctor `json:"doctor" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type userView struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type doctorView struct {
	BirthDate   *models.Date `json:"birth_date"`
	PhoneNumber string       `json:"phone_number"`
}

func Register(ids *identity.Store, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		doctor, err := ids.Register(c.Request.Context(), identity.RegisterInput{
			Email:       req.User.Email,
			Password:    req.User.Password,
			FirstName:   req.User.FirstName,
			LastName:    req.User.LastName,
			BirthDate:   req.Doctor.BirthDate,
			PhoneNumber: req.Doctor.PhoneNumber,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		log.Info().Uint("doctor_id", doctor.ID).Msg("doctor registered")

		c.JSON(http.StatusCreated, gin.H{
			"user": userView{
				Email:     doctor.Account.Email,
				FirstName: doctor.Account.FirstName,
				LastName:  doctor.Account.LastName,
			},
			"doctor": doctorView{BirthDate: doctor.BirthDate, PhoneNumber: doctor.PhoneNumber},
		})
	}
}

func Login(ids *identity.Store, tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		account, err := ids.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		pair, err := tokens.IssuePair(account.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pair)
	}
}

func RefreshToken(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		access, err := tokens.Refresh(req.Refresh)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"access": access})
	}
}

type ProfileUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
}

type ProfileRequest struct {
	User        *ProfileUserRequest `json:"user"`
	BirthDate   *models.Date        `json:"birth_date"`
	PhoneNumber *string             `json:"phone_number" binding:"omitempty,max=15"`
}

func GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.CurrentDoctor(c))
	}
}

// UpdateProfile serves both PUT and PATCH as a partial update.
func UpdateProfile(ids *identity.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		upd := identity.ProfileUpdate{BirthDate: req.BirthDate, PhoneNumber: req.PhoneNumber}
		if req.User != nil {
			upd.FirstName = req.User.FirstName
			upd.LastName = req.User.LastName
		}

		doctor, err := ids.UpdateProfile(c.Request.Context(), middleware.CurrentDoctor(c), upd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, doctor)
	}
}
