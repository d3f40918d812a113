// internal/handlers/router.go
package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"medical-back/internal/auth"
	"medical-back/internal/clinic"
	"medical-back/internal/identity"
	"medical-back/internal/middleware"
	"medical-back/internal/notify"
	"medical-back/internal/storage"
	"medical-back/internal/validation"
	"medical-back/internal/verification"
)

// Deps are the services the HTTP layer is built from.
type Deps struct {
	DB         *gorm.DB
	Identity   *identity.Store
	Clinic     *clinic.Store
	Challenges *verification.Store
	Mailer     notify.Mailer
	Images     storage.ImageStore
	Tokens     *auth.TokenManager
	Log        zerolog.Logger

	// Registry receives the HTTP metrics and is served on /metrics. Nil
	// disables both.
	Registry *prometheus.Registry

	CORSOrigins               []string
	MaxUploadBytes            int64
	ResetRequiresVerification bool
	// Now defaults to time.Now.
	Now func() time.Time
}

var bindingOnce sync.Once

// configureBinding makes gin's validator report json field names.
func configureBinding() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validation.Configure(v)
		}
	})
}

func NewRouter(d Deps) *gin.Engine {
	if d.Now == nil {
		d.Now = time.Now
	}
	configureBinding()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(d.Log), middleware.Recovery(d.Log))
	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Middleware())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(middleware.CORSMiddleware(d.CORSOrigins))
	}

	r.GET("/healthz", Health(d.DB))
	r.GET("/media/*key", ServeMedia(d.Images))

	// Public routes
	r.POST("/register/", Register(d.Identity, d.Log))
	r.POST("/login/", Login(d.Identity, d.Tokens))
	r.POST("/token/refresh/", RefreshToken(d.Tokens))
	r.POST("/request-verification/", RequestVerification(d.Challenges, d.Mailer, d.Log))
	r.POST("/verify-code/", VerifyCode(d.Challenges))
	r.POST("/change-password/", ChangePassword(d.Identity, d.Challenges, d.ResetRequiresVerification, d.Log))

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Tokens), middleware.RequireDoctor(d.Identity))
	{
		for _, path := range []string{"/profile/", "/edit-profile/"} {
			protected.GET(path, GetProfile())
			protected.PUT(path, UpdateProfile(d.Identity))
			protected.PATCH(path, UpdateProfile(d.Identity))
		}

		protected.GET("/patients/", ListPatients(d.Clinic))
		protected.POST("/patients/", CreatePatient(d.Clinic))
		protected.PATCH("/patients/:id/", UpdatePatient(d.Clinic))

		protected.GET("/medications/", ListMedications(d.Clinic))
		protected.POST("/medications/", CreateMedication(d.Clinic))
		protected.POST("/medications-create/", CreateMedication(d.Clinic))
		protected.GET("/medications/:id/", GetMedication(d.Clinic))
		protected.PUT("/medications/:id/", ReplaceMedication(d.Clinic))

		// On /procedures/:id/ the id names a patient; below it, a procedure.
		protected.GET("/procedures/", ListProcedures(d.Clinic, d.Images))
		protected.POST("/procedures/", CreateProcedure(d.Clinic))
		protected.GET("/procedures/:id/", ListPatientProcedures(d.Clinic, d.Images))
		protected.POST("/procedures/:id/", CreateProcedure(d.Clinic))
		protected.GET("/procedures_update/:id/", GetProcedure(d.Clinic, d.Images))
		protected.PUT("/procedures_update/:id/", UpdateProcedure(d.Clinic, d.Images, d.MaxUploadBytes, d.Log))
		protected.GET("/procedures/:id/images/", ListProcedureImages(d.Clinic, d.Images))
		protected.POST("/procedures/:id/upload-images/", UploadProcedureImages(d.Clinic, d.Images, d.MaxUploadBytes, d.Log))
		protected.DELETE("/procedures/:id/images/:image_id/delete/", DeleteProcedureImage(d.Clinic, d.Images))

		protected.GET("/appointments/", ListAppointments(d.Clinic, d.Now))
		protected.POST("/appointments/", CreateAppointment(d.Clinic))
		protected.GET("/appointments/:id/", GetAppointment(d.Clinic))
		protected.PUT("/appointments/:id/", ReplaceAppointment(d.Clinic))

		protected.GET("/anamesis/", ListAnamnesis(d.Clinic))
		protected.POST("/anamesis/", CreateAnamnesis(d.Clinic))
		protected.GET("/anamesis_get/:patient_id/", ListPatientAnamnesis(d.Clinic))
		protected.GET("/anamesis/:id/", GetAnamnesis(d.Clinic))
		protected.PUT("/anamesis/:id/", ReplaceAnamnesis(d.Clinic))
	}

	return r
}

// Health reports whether the database answers.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
