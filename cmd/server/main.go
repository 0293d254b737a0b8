package main

import (
	"log"

	"github.com/finnkap/org-management-api/internal/config"
	"github.com/finnkap/org-management-api/internal/constants"
	"github.com/finnkap/org-management-api/internal/database"
	"github.com/finnkap/org-management-api/internal/handlers"
	"github.com/finnkap/org-management-api/internal/middleware"
	"github.com/finnkap/org-management-api/internal/models"
	"github.com/finnkap/org-management-api/internal/repository"
	"github.com/finnkap/org-management-api/internal/services"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// The access gate runs before any handler: tenant resolution,
	// default-deny path classification, subdomain rewrites.
	r.Use(middleware.AccessGate(r, cfg.RootDomain))

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	inviteRepo := repository.NewInvitationRepository(db)

	notifier := services.NewResendNotifier(cfg.ResendAPIKey, cfg.ResendDomain)
	authService := services.NewAuthService(userRepo, orgRepo)
	orgService := services.NewOrganizationService(orgRepo)
	inviteService := services.NewInvitationService(inviteRepo, orgRepo, userRepo, notifier, cfg.AppBaseURL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService)
	inviteHandler := handlers.NewInvitationHandler(inviteService)
	profileHandler := handlers.NewProfileHandler(authService)
	pageHandler := handlers.NewPageHandler()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Organization Management API is running",
		})
	})

	// Page routes (gate-governed)
	r.GET("/", pageHandler.Page("home"))
	r.GET("/auth/signin", pageHandler.Page("signin"))
	r.GET("/auth/register", pageHandler.Page("register"))
	r.GET("/auth/join", pageHandler.Page("join"))
	r.GET("/dashboard", pageHandler.Page("dashboard"))
	r.GET("/onboarding", pageHandler.Page("onboarding"))
	r.GET("/profile", pageHandler.Page("profile"))
	r.GET("/org/:slug/*rest", pageHandler.OrgPage)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/join", inviteHandler.Join)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Invitation validation (public, token-bearing)
		api.GET("/invites/validate", inviteHandler.ValidateInvitation)

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.GET("/:id/members", middleware.RequireOrganizationAccess(), orgHandler.ListMembers)
			orgs.POST("/:id/invites", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationRole(models.RoleAdmin), inviteHandler.CreateInvitation)
			orgs.GET("/:id/invites", middleware.RequireOrganizationAccess(), inviteHandler.ListInvitations)
			orgs.DELETE("/:id/invites/:invite_id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationRole(models.RoleAdmin), inviteHandler.CancelInvitation)
		}

		// Profile routes (protected)
		user := api.Group("/user")
		user.Use(middleware.RequireAuth())
		{
			user.GET("/profile", profileHandler.GetProfile)
			user.PATCH("/profile", profileHandler.UpdateProfile)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
