package server

import (
	"strings"
	"time"

	"github.com/betonpro/tradelinkpro/internal/config"
	"github.com/betonpro/tradelinkpro/internal/handler"
	"github.com/betonpro/tradelinkpro/internal/middleware"
	"github.com/betonpro/tradelinkpro/internal/ocr"
	"github.com/betonpro/tradelinkpro/internal/repository"
	"github.com/betonpro/tradelinkpro/internal/service"
	"github.com/betonpro/tradelinkpro/pkg/qr"
	"github.com/betonpro/tradelinkpro/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine *gin.Engine
	db     *gorm.DB
}

func New(cfg *config.Config, db *gorm.DB, store storage.FileStorage, rdb *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)

	qrGen := qr.NewGenerator(store)
	ocrClient := ocr.NewClient(cfg.AzureEndpoint, cfg.AzureKey)

	authSvc := service.NewAuthService(userRepo, rdb, cfg.SessionSecret, cfg.SessionTTL)
	authHandler := handler.NewAuthHandler(authSvc)

	supplierSvc := service.NewSupplierService(supplierRepo, store, qrGen)
	supplierHandler := handler.NewSupplierHandler(supplierSvc, store)

	adminSvc := service.NewAdminService(userRepo)
	adminHandler := handler.NewAdminHandler(adminSvc)

	cardHandler := handler.NewCardHandler(ocrClient)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	setupCORS(router, cfg.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(cfg.SessionSecret, cfg.AdminEmail)

	// Public routes
	router.GET("/login", authHandler.LoginForm)
	router.POST("/login", authHandler.Login)
	router.GET("/uploads/:filename", supplierHandler.ServeUpload)

	// Registration is public for the bootstrap case; the gate itself
	// lives in the auth service.
	register := router.Group("/register")
	register.Use(authMiddleware.OptionalSession())
	{
		register.GET("", authHandler.RegisterForm)
		register.POST("", authHandler.Register)
	}

	// Protected routes
	protected := router.Group("")
	protected.Use(authMiddleware.RequireSession())
	{
		protected.GET("/", supplierHandler.Index)
		protected.GET("/logout", authHandler.Logout)
		protected.GET("/categories", supplierHandler.Categories)

		protected.GET("/add", supplierHandler.AddForm)
		protected.POST("/add", supplierHandler.Create)
		protected.GET("/supplier/:id", supplierHandler.Detail)
		protected.GET("/edit/:id", supplierHandler.EditForm)
		protected.POST("/edit/:id", supplierHandler.Update)
		protected.GET("/delete/:id", supplierHandler.Delete)

		protected.POST("/analyze_card", cardHandler.AnalyzeCard)

		admin := protected.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id/edit", adminHandler.EditUserForm)
			admin.POST("/users/:id/edit", adminHandler.ResetPassword)
		}
	}

	return &Server{
		engine: router,
		db:     db,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
