package routes

import (
	authapi "livewright-backend/internal/api/auth"
	contractsapi "livewright-backend/internal/api/contracts"
	"livewright-backend/internal/api/payments"
	rosterapi "livewright-backend/internal/api/roster"
	scholarshipapi "livewright-backend/internal/api/scholarship"
	stripewebhooks "livewright-backend/internal/api/stripewebhook"
	"livewright-backend/internal/app/http/middleware"
	"livewright-backend/internal/infra/keap"
	"livewright-backend/internal/infra/stripegw"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries everything handlers need; nothing reaches for globals.
type Deps struct {
	DB            *gorm.DB
	Gateway       stripegw.Gateway
	Keap          keap.Client
	Log           *zap.Logger
	WebhookSecret string
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	paymentsHandler := payments.NewHandler(deps.DB, deps.Gateway, deps.Log)
	webhookHandler := stripewebhooks.NewHandler(deps.DB, deps.Log, deps.WebhookSecret)
	contractsHandler := contractsapi.NewHandler(deps.DB, deps.Log)
	scholarshipHandler := scholarshipapi.NewHandler(deps.DB, deps.Log)
	rosterHandler := rosterapi.NewHandler(deps.DB, deps.Keap, deps.Log)

	// Raw body must survive for signature verification, so the webhook stays
	// outside the sanitize group.
	r.POST("/webhook", webhookHandler.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/login", authapi.Login)

	public.GET("/contracts/:uid", contractsHandler.GetContract)
	public.POST("/payments/create-intent", paymentsHandler.CreatePaymentIntent)
	public.POST("/payments/confirm", paymentsHandler.ConfirmPayment)

	public.POST("/scholarship/apply", scholarshipHandler.Apply)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/contracts", contractsHandler.ListContracts)
	admin.POST("/contracts", contractsHandler.CreateContract)
	admin.DELETE("/contracts/:uid", contractsHandler.DeleteContract)

	admin.GET("/scholarship/applications", scholarshipHandler.ListApplications)
	admin.PATCH("/scholarship/applications/:id", scholarshipHandler.UpdateStatus)

	admin.GET("/roster", rosterHandler.ListAttendees)
	admin.POST("/roster/attendees", rosterHandler.CreateAttendee)
	admin.POST("/roster/attendees/:id/sync", rosterHandler.SyncAttendee)
	admin.POST("/roster/attendance", rosterHandler.MarkAttendance)
}
