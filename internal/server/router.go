package server

import (
  "strings"

  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

  "github.com/harborhq/harbor-backend/internal/handlers"
  "github.com/harborhq/harbor-backend/internal/middleware"
)

type RouterConfig struct {
  AuthMiddleware *middleware.AuthMiddleware
  StoreHandler   *handlers.StoreHandler
  ScanHandler    *handlers.ScanHandler
  SSEHandler     *handlers.SSEHandler
  ServiceName    string
  AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  serviceName := strings.TrimSpace(cfg.ServiceName)
  if serviceName == "" {
    serviceName = "harbor"
  }
  router.Use(otelgin.Middleware(serviceName))

  origins := cfg.AllowOrigins
  if len(origins) == 0 {
    origins = []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    }
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  // ===============
  // || Public    ||
  // ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  router.POST("/api/stores", cfg.StoreHandler.Register)

  // ===============
  // || Protected ||
  // ===============
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Store
  protected.GET("/api/store", cfg.StoreHandler.GetStore)
  protected.POST("/api/products", cfg.StoreHandler.IngestProducts)
  // Scans
  protected.POST("/api/scan", cfg.ScanHandler.Enqueue)
  protected.GET("/api/scan/status", cfg.ScanHandler.GetLatestStatus)
  protected.GET("/api/scan/status/:id", cfg.ScanHandler.GetStatusByRunID)
  protected.GET("/api/scans", cfg.StoreHandler.GetScans)
  protected.GET("/api/stores/:id/scans", cfg.StoreHandler.GetScansForStore)
  protected.GET("/api/scans/:id/visibility", cfg.StoreHandler.GetVisibility)
  // SSE
  protected.GET("/sse/stream", cfg.SSEHandler.SSEStream)

  return router
}
