package main

import (
	"log"
	"time"

	"livewright-backend/config"
	"livewright-backend/database"
	routes "livewright-backend/internal/app/http"
	"livewright-backend/internal/infra/keap"
	"livewright-backend/internal/infra/stripegw"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	db := database.InitDB(config.DB_URL)

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	defer logger.Sync()

	var keapClient keap.Client
	if config.KEAP_CLIENT_ID != "" && config.KEAP_REFRESH_TOKEN != "" {
		keapClient = keap.New(config.KEAP_CLIENT_ID, config.KEAP_CLIENT_SECRET, config.KEAP_REFRESH_TOKEN)
	} else {
		logger.Warn("Keap credentials not configured, roster CRM sync disabled")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		DB:            db,
		Gateway:       stripegw.New(config.STRIPE_SECRET_KEY, config.STRIPE_PRODUCT_ID),
		Keap:          keapClient,
		Log:           logger,
		WebhookSecret: config.STRIPE_WEBHOOK_SECRET,
	})

	r.Run(":" + config.PORT)
}
