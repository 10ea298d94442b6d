package api

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ksred/card-check/internal/config"
	"github.com/ksred/card-check/internal/database"
	"github.com/ksred/card-check/internal/mcp"
	"github.com/ksred/card-check/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	router     *gin.Engine
	config     *config.Config
	db         *database.Database
	verifier   *services.VerificationService
	mcp        *mcp.Server
	logger     zerolog.Logger
	httpServer *http.Server
}

func NewServer(cfg *config.Config, db *database.Database, verifier *services.VerificationService, logger zerolog.Logger) (*Server, error) {
	if verifier == nil {
		return nil, fmt.Errorf("verification service is required")
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware(logger))
	router.Use(LoggerMiddleware(logger))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	if len(cfg.HTTP.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.AllowOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Requested-With"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type", "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	mcpServer, err := mcp.NewServer(verifier, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		verifier: verifier,
		mcp:      mcpServer,
		logger:   logger,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	// Web form
	s.router.GET("/", s.formPageHandler)
	s.router.POST("/", s.formSubmitHandler)

	// Health check
	s.router.GET("/health", s.healthHandler)

	// Swagger documentation
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		verifications := v1.Group("/verifications")
		{
			verifications.POST("", s.verifyHandler)
			verifications.GET("", s.listVerificationsHandler)
		}

		// MCP protocol endpoint
		v1.POST("/mcp", s.HandleMCP)
	}
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	s.logger.Info().Str("address", addr).Msg("Starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler godoc
// @Summary Health check
// @Description Check that the record store is reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (s *Server) healthHandler(c *gin.Context) {
	ctx := c.Request.Context()

	dbHealthy := true
	var dbError string
	if s.db == nil {
		dbHealthy = false
		dbError = "database not configured"
	} else if err := s.db.Health(ctx); err != nil {
		dbHealthy = false
		dbError = err.Error()
	}

	status := "healthy"
	if !dbHealthy {
		status = "unhealthy"
	}

	dbInfo := gin.H{
		"healthy": dbHealthy,
		"error":   dbError,
	}
	if s.db != nil {
		dbInfo["driver"] = s.db.Driver()
	}

	response := gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"database":  dbInfo,
	}

	if !dbHealthy {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
