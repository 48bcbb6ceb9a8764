package routes

import (
	"net/http"
	"time"

	"clinicore/handlers"
	"clinicore/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterVerificationRoutes registers the phone-verification endpoints.
func RegisterVerificationRoutes(r *gin.Engine, vh *handlers.VerifyHandler) {
	api := r.Group("/api")
	{
		api.POST("/check-phone", vh.CheckPhoneHandler)
		api.POST("/verify-otp", vh.VerifyOTPHandler)
	}
}

// RegisterOnboardingRoutes registers the wizard endpoints.
func RegisterOnboardingRoutes(r *gin.Engine, oh *handlers.OnboardingHandler) {
	api := r.Group("/api/onboarding")
	{
		api.POST("/session", oh.CreateSessionHandler)
		api.GET("/:sessionID", oh.MountHandler)
		api.POST("/:sessionID/personal-info", oh.PersonalInfoHandler)
		api.POST("/:sessionID/clinic-info", oh.ClinicInfoHandler)
		api.POST("/:sessionID/documents", oh.DocumentsHandler)
		api.POST("/:sessionID/back", oh.BackHandler)
		api.POST("/:sessionID/submit", oh.SubmitHandler)
		api.DELETE("/:sessionID", oh.ResetHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, oh *handlers.OnboardingHandler, vh *handlers.VerifyHandler) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterVerificationRoutes(r, vh)
	RegisterOnboardingRoutes(r, oh)
	RegisterHealthRoute(r)
}
