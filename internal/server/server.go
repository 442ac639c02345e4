package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gymdesk/internal/attendance"
	"gymdesk/internal/audit"
	"gymdesk/internal/auth"
	"gymdesk/internal/config"
	"gymdesk/internal/entitlement"
	"gymdesk/internal/gateway"
	"gymdesk/internal/member"
	"gymdesk/internal/membership"
	"gymdesk/internal/notification"
	"gymdesk/internal/user"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, events *notification.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	// A GET against a POST-only route must answer 405, not 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	memberRepo := member.NewRepository(db)
	membershipRepo := membership.NewRepository(db)
	attendanceRepo := attendance.NewRepository(db)
	userRepo := user.NewRepository(db)
	auditor := audit.NewRecorder(db)

	resolver := entitlement.NewService(memberRepo, membershipRepo)
	attendanceService := attendance.NewService(attendanceRepo, resolver, events)
	membershipService := membership.NewService(membershipRepo, events)
	userService := user.NewService(userRepo, attendanceService, cfg.JWTSecret)

	userHandler := user.NewHandler(userService)
	membershipHandler := membership.NewHandler(membershipService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	gatewayHandler := gateway.NewHandler(resolver, attendanceService, memberRepo, auditor)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.POST("/auth/logout", userHandler.Logout)
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(authMiddleware, gateway.RequireProgrammaticCaller())
	{
		apiGroup.GET("/members/search", gatewayHandler.SearchMembers)
		apiGroup.POST("/members/validate", gatewayHandler.ValidateMembership)
	}

	staff := router.Group("/attendance")
	staff.Use(authMiddleware, auth.RequireStaff())
	{
		staff.POST("/:attendanceID/checkout", attendanceHandler.CheckOut)
		staff.GET("/open", attendanceHandler.ListOpen)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/memberships/:membershipID/renew", membershipHandler.Renew)
		admin.DELETE("/attendance/:attendanceID", attendanceHandler.Delete)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the engine for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
