package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/config"
	"github.com/teamflow/crm-api/internal/database"
	"github.com/teamflow/crm-api/internal/handlers"
	"github.com/teamflow/crm-api/internal/middleware"
	"github.com/teamflow/crm-api/internal/rbac"
	"github.com/teamflow/crm-api/internal/services"
	"github.com/teamflow/crm-api/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch cfg.App.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	err = utils.InitLogger(&utils.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting TeamFlow CRM API", utils.LogFields{
		"environment": cfg.App.Env,
		"port":        cfg.App.Port,
	})

	dbConn, err := database.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	db := dbConn.DB()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	logger.Info("Database migrations completed", nil)

	// Redis is a read-through session cache; the API stays up without it.
	var redisClient database.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = database.InitializeRedis(cfg.Redis)
		if err != nil {
			logger.Warn("Redis not available, continuing without session cache", utils.LogFields{
				"error": err.Error(),
			})
			redisClient = nil
		} else {
			logger.Info("Redis connected", utils.LogFields{"url": cfg.Redis.URL})
		}
	}

	svcs := initializeServices(dbConn, db, redisClient)
	hnds := initializeHandlers(cfg, db, redisClient, svcs)
	mws := initializeMiddleware(cfg, svcs)

	router := setupRouter(cfg, hnds, mws)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.App.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info("Server starting", utils.LogFields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", err)
	}

	logger.Info("Server stopped gracefully")
}

// ServiceContainer holds all initialized services
type ServiceContainer struct {
	SessionService    *services.SessionService
	AuthService       *services.AuthService
	WorkspaceService  *services.WorkspaceService
	InviteService     *services.InviteService
	AuditService      *services.AuditService
	AutomationService *services.AutomationService
	ClientService     *services.ClientService
	DealService       *services.DealService
	ChecklistService  *services.ChecklistService
	TaskService       *services.TaskService
}

// HandlerContainer holds all initialized handlers
type HandlerContainer struct {
	AuthHandler      *handlers.AuthHandler
	WorkspaceHandler *handlers.WorkspaceHandler
	ClientHandler    *handlers.ClientHandler
	DealHandler      *handlers.DealHandler
	TaskHandler      *handlers.TaskHandler
	TemplateHandler  *handlers.TemplateHandler
	AuditHandler     *handlers.AuditHandler
	PlatformHandler  *handlers.PlatformHandler
	HealthHandler    *handlers.HealthHandler
}

// MiddlewareContainer holds all initialized middleware
type MiddlewareContainer struct {
	Auth      *middleware.AuthMiddleware
	Workspace *middleware.WorkspaceMiddleware
}

func initializeServices(dbConn database.Database, db *gorm.DB, redisClient database.RedisClient) *ServiceContainer {
	auditService := services.NewAuditService(db)
	automationService := services.NewAutomationService(db, auditService)
	sessionService := services.NewSessionService(dbConn, redisClient)

	return &ServiceContainer{
		SessionService:    sessionService,
		AuthService:       services.NewAuthService(db, sessionService),
		WorkspaceService:  services.NewWorkspaceService(dbConn, automationService),
		InviteService:     services.NewInviteService(db),
		AuditService:      auditService,
		AutomationService: automationService,
		ClientService:     services.NewClientService(db, auditService),
		DealService:       services.NewDealService(db, automationService, auditService),
		ChecklistService:  services.NewChecklistService(db, auditService, nil),
		TaskService:       services.NewTaskService(db, auditService),
	}
}

func initializeHandlers(cfg *config.Config, db *gorm.DB, redisClient database.RedisClient, svcs *ServiceContainer) *HandlerContainer {
	return &HandlerContainer{
		AuthHandler:      handlers.NewAuthHandler(svcs.AuthService, cfg.Session),
		WorkspaceHandler: handlers.NewWorkspaceHandler(svcs.WorkspaceService, svcs.InviteService),
		ClientHandler:    handlers.NewClientHandler(svcs.ClientService),
		DealHandler:      handlers.NewDealHandler(svcs.DealService, svcs.ChecklistService),
		TaskHandler:      handlers.NewTaskHandler(svcs.TaskService),
		TemplateHandler:  handlers.NewTemplateHandler(svcs.AutomationService),
		AuditHandler:     handlers.NewAuditHandler(svcs.AuditService),
		PlatformHandler:  handlers.NewPlatformHandler(db),
		HealthHandler:    handlers.NewHealthHandler(db, redisClient),
	}
}

func initializeMiddleware(cfg *config.Config, svcs *ServiceContainer) *MiddlewareContainer {
	return &MiddlewareContainer{
		Auth:      middleware.NewAuthMiddleware(svcs.SessionService, cfg.Session),
		Workspace: middleware.NewWorkspaceMiddleware(svcs.WorkspaceService),
	}
}

func setupRouter(cfg *config.Config, hnds *HandlerContainer, mws *MiddlewareContainer) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(utils.LogrusLogger()))
	router.Use(middleware.SecurityLogger(utils.LogrusLogger()))

	router.Use(func(c *gin.Context) {
		utils.SetSecurityHeaders(c)
		c.Next()
	})

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposeHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(corsConfig.AllowHeaders) == 0 {
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Request-ID"}
	}
	router.Use(cors.New(corsConfig))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimitMiddleware(cfg))
	}

	router.GET("/health", hnds.HealthHandler.Health)
	router.GET("/ready", hnds.HealthHandler.Readiness)
	router.GET("/live", hnds.HealthHandler.Liveness)

	api := router.Group("/api")

	// Public authentication routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", hnds.AuthHandler.Register)
		auth.POST("/login", hnds.AuthHandler.Login)
	}

	// Session-protected routes
	protected := api.Group("/")
	protected.Use(mws.Auth.RequireSession())
	{
		protected.POST("/auth/logout", hnds.AuthHandler.Logout)
		protected.GET("/auth/me", hnds.AuthHandler.Me)

		protected.POST("/workspaces", hnds.WorkspaceHandler.Create)
		protected.GET("/workspaces", hnds.WorkspaceHandler.List)
		protected.POST("/invites/accept", hnds.WorkspaceHandler.AcceptInvite)

		// Workspace-scoped routes; membership resolved from the slug.
		ws := protected.Group("/workspaces/:slug")
		ws.Use(mws.Workspace.RequireMember())
		{
			ws.GET("", hnds.WorkspaceHandler.Get)
			ws.GET("/members", hnds.WorkspaceHandler.ListMembers)
			ws.GET("/audit", hnds.AuditHandler.List)

			// Membership management is OWNER/ADMIN only.
			adminOnly := mws.Workspace.RequireAnyRole(rbac.RoleOwner, rbac.RoleAdmin)
			ws.DELETE("/members/:member_id", adminOnly, hnds.WorkspaceHandler.RemoveMember)
			ws.PUT("/members/:member_id/role", adminOnly, hnds.WorkspaceHandler.UpdateMemberRole)
			ws.POST("/invites", adminOnly, hnds.WorkspaceHandler.CreateInvite)
			ws.GET("/invites", adminOnly, hnds.WorkspaceHandler.ListInvites)
			ws.DELETE("/invites/:invite_id", adminOnly, hnds.WorkspaceHandler.DeleteInvite)
			ws.POST("/templates", adminOnly, hnds.TemplateHandler.Create)
			ws.GET("/templates", adminOnly, hnds.TemplateHandler.List)

			// Writers pass the route gate here; field-level rules are
			// enforced inside the services.
			writers := mws.Workspace.RequireAnyRole(rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleManager, rbac.RoleAgent)

			clients := ws.Group("/clients")
			{
				clients.GET("", hnds.ClientHandler.List)
				clients.GET("/:client_id", hnds.ClientHandler.Get)
				clients.POST("", writers, hnds.ClientHandler.Create)
				clients.PUT("/:client_id", writers, hnds.ClientHandler.Update)
				clients.DELETE("/:client_id", writers, hnds.ClientHandler.Delete)
			}

			deals := ws.Group("/deals")
			{
				deals.GET("", hnds.DealHandler.List)
				deals.GET("/:deal_id", hnds.DealHandler.Get)
				deals.POST("", writers, hnds.DealHandler.Create)
				deals.PUT("/:deal_id", writers, hnds.DealHandler.Update)
				deals.DELETE("/:deal_id", writers, hnds.DealHandler.Delete)
				deals.GET("/:deal_id/checklist", hnds.DealHandler.GetChecklist)
				deals.POST("/:deal_id/checklist", writers, hnds.DealHandler.ToggleChecklistItem)
			}

			tasks := ws.Group("/tasks")
			{
				tasks.GET("", hnds.TaskHandler.List)
				tasks.GET("/:task_id", hnds.TaskHandler.Get)
				tasks.POST("", writers, hnds.TaskHandler.Create)
				tasks.PUT("/:task_id", writers, hnds.TaskHandler.Update)
				tasks.DELETE("/:task_id", writers, hnds.TaskHandler.Delete)
			}
		}

		// Cross-tenant platform admin surface.
		platform := protected.Group("/platform")
		platform.Use(mws.Auth.RequirePlatformAdmin())
		{
			platform.GET("/workspaces", hnds.PlatformHandler.ListWorkspaces)
			platform.GET("/users", hnds.PlatformHandler.ListUsers)
			platform.GET("/stats", hnds.PlatformHandler.Stats)
		}
	}

	return router
}
