package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/aman-churiwal/budget-buddy-backend/internal/ai"
	"github.com/aman-churiwal/budget-buddy-backend/internal/config"
	"github.com/aman-churiwal/budget-buddy-backend/internal/handler"
	"github.com/aman-churiwal/budget-buddy-backend/internal/middleware"
	"github.com/aman-churiwal/budget-buddy-backend/internal/ratelimit"
	"github.com/aman-churiwal/budget-buddy-backend/internal/repository"
	"github.com/aman-churiwal/budget-buddy-backend/internal/service"
	"github.com/aman-churiwal/budget-buddy-backend/internal/storage"
	"github.com/aman-churiwal/budget-buddy-backend/internal/tier"
	"github.com/aman-churiwal/budget-buddy-backend/internal/usage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Server struct {
	router          *gin.Engine
	config          *config.Config
	redis           *storage.RedisClient
	postgres        *storage.Postgres
	aiClient        *ai.Client
	authService     *service.AuthService
	securityService *service.SecurityService
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	advisorHandler  *handler.AdvisorHandler

	mu         sync.Mutex
	httpServer *http.Server
}

func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Repositories
	userRepo := repository.NewUserRepository(postgres)
	refreshTokenRepo := repository.NewRefreshTokenRepository(postgres)
	usageRepo := repository.NewUsageRepository(postgres)
	securityEventRepo := repository.NewSecurityEventRepository(postgres)

	// The tier catalog is built once from config and shared everywhere
	catalog := tier.NewCatalog(cfg.Tiers)

	aiClient := ai.New(ai.Config{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  os.Getenv("AI_API_KEY"),
		Model:   cfg.AI.Model,
		Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})

	// Services
	authService := service.NewAuthService(
		userRepo, refreshTokenRepo,
		os.Getenv("JWT_SECRET"),
		cfg.Auth.JWTExpiryMinutes, cfg.Auth.RefreshExpiryDays,
	)
	securityService := service.NewSecurityService(securityEventRepo, redis, cfg.Security.InjectionAlertThreshold)
	usagePolicy := usage.NewPolicy(catalog, usageRepo)
	advisorService := service.NewAdvisorService(catalog, usagePolicy, usageRepo, securityService, aiClient)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, catalog)
	userHandler := handler.NewUserHandler(userRepo, catalog)
	advisorHandler := handler.NewAdvisorHandler(advisorService)

	s := &Server{
		router:          router,
		config:          cfg,
		redis:           redis,
		postgres:        postgres,
		aiClient:        aiClient,
		authService:     authService,
		securityService: securityService,
		authHandler:     authHandler,
		userHandler:     userHandler,
		advisorHandler:  advisorHandler,
	}

	// Setup middleware
	s.setupMiddleware()

	// Setup routes
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	auth := s.router.Group("/auth")
	{
		requestsPerMinute := s.config.Security.LoginRequestsPerMinute
		if requestsPerMinute <= 0 {
			requestsPerMinute = 10
		}
		throttle := middleware.LoginRateLimit(ratelimit.NewFixedWindow(s.redis, requestsPerMinute, time.Minute))

		auth.POST("/register", throttle, s.authHandler.Register)
		auth.POST("/login", throttle, s.authHandler.Login)
		auth.POST("/refresh", s.authHandler.Refresh)
		auth.POST("/logout", middleware.RequireAuth(s.authService), s.authHandler.Logout)
		auth.GET("/me", middleware.RequireAuth(s.authService), s.authHandler.Me)
		auth.GET("/tier", middleware.RequireAuth(s.authService), s.authHandler.TierInfo)
	}

	user := s.router.Group("/user")
	user.Use(middleware.RequireAuth(s.authService))
	{
		user.GET("/profile", s.userHandler.Profile)
		user.PUT("/profile", s.userHandler.UpdateProfile)
		user.POST("/tier/update", s.userHandler.UpdateTier)
	}

	aiGroup := s.router.Group("/ai")
	aiGroup.Use(middleware.RequireAuth(s.authService))
	{
		aiGroup.POST("/chat", s.advisorHandler.Chat)
		aiGroup.POST("/insights", s.advisorHandler.Insights)
		aiGroup.POST("/recommendations", s.advisorHandler.Recommendations)
		aiGroup.GET("/usage", s.advisorHandler.Usage)
	}

	admin := s.router.Group("/admin")
	admin.Use(middleware.RequireAuth(s.authService))
	{
		admin.GET("/status", s.adminStatus)
		admin.GET("/security/:user_id", s.securityStatus)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	redisHealthy := true

	if err := s.redis.Ping(c.Request.Context()); err != nil {
		redisHealthy = false
		log.Printf("Redis health check failed: %v", err)
	}

	dbHealthy := true
	if err := s.postgres.Ping(c.Request.Context()); err != nil {
		dbHealthy = false
		log.Printf("Database health check failed: %v", err)
	}

	status := "healthy"
	statusCode := http.StatusOK

	if !redisHealthy || !dbHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "budget-buddy-backend",
		"version":   "1.0.0",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"redis":    redisHealthy,
			"database": dbHealthy,
		},
	})
}

func (s *Server) adminStatus(c *gin.Context) {
	breaker := s.aiClient.BreakerSnapshot()

	c.JSON(http.StatusOK, gin.H{
		"service":   "running",
		"uptime":    time.Since(startTime).Seconds(),
		"timestamp": time.Now().Unix(),
		"ai_breaker": gin.H{
			"state":             breaker.State.String(),
			"failure_count":     breaker.FailureCount,
			"success_count":     breaker.SuccessCount,
			"last_failure_time": breaker.LastFailureTime,
			"last_state_change": breaker.LastStateChange,
		},
	})
}

func (s *Server) securityStatus(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	status, err := s.securityService.UserStatus(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load security status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second, // AI calls can take the full 30s budget
		IdleTimeout:  15 * time.Second,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	log.Printf("Starting Budget Buddy backend on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		// Normal result of Shutdown, not a startup failure
		return nil
	}

	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
	}

	// In-flight requests are done, flush the security event queue
	s.securityService.Close()

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

var startTime = time.Now()
