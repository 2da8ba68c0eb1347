package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OliwiaLewandowska/som-monitor/internal/logger"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage"
)

// APIResponse is the envelope for every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Server exposes read-only survey analytics over HTTP. It never triggers
// surveys; it only reads what the stores already hold.
type Server struct {
	engine  *gin.Engine
	results storage.ResultStore
	history storage.HistoryStore

	brands          []string
	confidenceLevel float64
	alpha           float64
}

// Config carries the analysis parameters the endpoints need.
type Config struct {
	Brands          []string
	ConfidenceLevel float64
	Alpha           float64
}

// NewServer creates the API server and registers routes.
func NewServer(results storage.ResultStore, history storage.HistoryStore, cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:          engine,
		results:         results,
		history:         history,
		brands:          cfg.Brands,
		confidenceLevel: cfg.ConfidenceLevel,
		alpha:           cfg.Alpha,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/api/v1")
	v1.GET("/health", s.healthCheck)
	v1.GET("/report", s.getReport)
	v1.GET("/compare", s.getComparison)
	v1.GET("/trend", s.getTrend)
}

// Start runs the HTTP server until it fails.
func (s *Server) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	logger.Info("API server listening on %s", addr)
	return s.engine.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   message,
	})
}
