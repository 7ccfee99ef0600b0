package main

import (
  "context"
  "fmt"
  "os"
  "time"

  "github.com/harborhq/harbor-backend/internal/clients/redis"
  "github.com/harborhq/harbor-backend/internal/db"
  "github.com/harborhq/harbor-backend/internal/handlers"
  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/middleware"
  "github.com/harborhq/harbor-backend/internal/observability"
  "github.com/harborhq/harbor-backend/internal/providers"
  "github.com/harborhq/harbor-backend/internal/repos"
  "github.com/harborhq/harbor-backend/internal/scheduler"
  "github.com/harborhq/harbor-backend/internal/server"
  "github.com/harborhq/harbor-backend/internal/services"
  "github.com/harborhq/harbor-backend/internal/sse"
  "github.com/harborhq/harbor-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 86400, log)
  scanMaxMinutes := utils.GetEnvAsInt("SCAN_MAX_MINUTES", 30, log)
  dispatchConcurrency := utils.GetEnvAsInt("DISPATCH_CONCURRENCY", 4, log)
  dispatchTimeout := utils.GetEnvAsInt("DISPATCH_TIMEOUT_SECONDS", 60, log)
  scanCron := utils.GetEnv("SCAN_CRON", "@every 1m", log)
  schedulerBatch := utils.GetEnvAsInt("SCHEDULER_BATCH_LIMIT", 50, log)

  // Tracing
  otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "harbor",
    Environment: utils.GetEnv("HARBOR_ENV", "development", log),
    Version:     utils.GetEnv("HARBOR_VERSION", "", log),
  })
  if otelShutdown != nil {
    defer func() {
      shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = otelShutdown(shutdownCtx)
    }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  storeRepo := repos.NewStoreRepo(thePG, log)
  productRepo := repos.NewProductRepo(thePG, log)
  scanRunRepo := repos.NewScanRunRepo(thePG, log)
  categoryScanRepo := repos.NewCategoryScanRepo(thePG, log)
  visibilityRepo := repos.NewProductVisibilityRepo(thePG, log)
  aiCallLogRepo := repos.NewAICallLogRepo(thePG, log)

  // SSE
  log.Info("Setting up SSE hub now...")
  sseHub := sse.NewSSEHub(log)
  var sseBus redis.SSEBus
  if bus, busErr := redis.NewSSEBus(log); busErr != nil {
    log.Warn("Redis SSE bus unavailable; running single-instance", "error", busErr)
  } else {
    sseBus = bus
    if fwErr := bus.StartForwarder(context.Background(), func(m sse.SSEMessage) {
      sseHub.Broadcast(m)
    }); fwErr != nil {
      log.Warn("Redis SSE forwarder failed to start", "error", fwErr)
    }
  }

  // Providers
  providerSet := providers.NewRegistry(log)
  if len(providerSet) == 0 {
    log.Warn("No model providers configured; scans will fail until keys are set")
  }

  // Services
  log.Info("Setting up Services from main...")
  authService := services.NewAuthService(thePG, log, storeRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
  storeService := services.NewStoreService(thePG, log, storeRepo, productRepo, categoryScanRepo, visibilityRepo)
  grouper := services.NewGrouper(log, storeRepo, productRepo)
  dispatcher := services.NewDispatcher(log, providerSet, aiCallLogRepo, dispatchConcurrency, time.Duration(dispatchTimeout)*time.Second)
  scanService := services.NewScanService(
    thePG,
    log,
    sseHub,
    sseBus,
    storeRepo,
    scanRunRepo,
    categoryScanRepo,
    visibilityRepo,
    grouper,
    dispatcher,
    time.Duration(scanMaxMinutes)*time.Minute,
  )
  scanService.StartWorker(context.Background())
  scanStatusService := services.NewScanStatusService(thePG, scanRunRepo)

  // Scheduler
  scanScheduler := scheduler.NewScheduler(log, storeRepo, scanService, schedulerBatch)
  if err := scanScheduler.Start(context.Background(), scanCron); err != nil {
    log.Warn("Scheduler failed to start", "error", err)
  }
  defer scanScheduler.Stop()

  // Handlers
  log.Info("Setting up handlers from main...")
  storeHandler := handlers.NewStoreHandler(storeService, authService)
  scanHandler := handlers.NewScanHandler(scanService, scanStatusService)
  sseHandler := handlers.NewSSEHandler(sseHub)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthMiddleware: authMiddleware,
    StoreHandler:   storeHandler,
    ScanHandler:    scanHandler,
    SSEHandler:     sseHandler,
    ServiceName:    "harbor",
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
