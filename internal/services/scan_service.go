package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/harborhq/harbor-backend/internal/db"
  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/repos"
  "github.com/harborhq/harbor-backend/internal/sse"
  "github.com/harborhq/harbor-backend/internal/types"
)

// ProgressPublisher fans scan events out beyond this process (redis pub/sub
// in production, nil in tests and single-instance deployments).
type ProgressPublisher interface {
  Publish(ctx context.Context, msg sse.SSEMessage) error
}

type ScanService interface {
  // EnqueueScan validates the store and inserts a queued run. Enqueue is
  // single-flight per store: a second request while a run is queued or
  // running is rejected.
  EnqueueScan(ctx context.Context, storeID uuid.UUID) (*types.ScanRun, error)
  StartWorker(ctx context.Context)
}

type scanService struct {
  db  *gorm.DB
  log *logger.Logger

  sseHub *sse.SSEHub
  bus    ProgressPublisher

  storeRepo  repos.StoreRepo
  runRepo    repos.ScanRunRepo
  scanRepo   repos.CategoryScanRepo
  visRepo    repos.ProductVisibilityRepo

  grouper    Grouper
  dispatcher Dispatcher

  maxScanDuration time.Duration
}

func NewScanService(
  db *gorm.DB,
  baseLog *logger.Logger,
  sseHub *sse.SSEHub,
  bus ProgressPublisher,
  storeRepo repos.StoreRepo,
  runRepo repos.ScanRunRepo,
  scanRepo repos.CategoryScanRepo,
  visRepo repos.ProductVisibilityRepo,
  grouper Grouper,
  dispatcher Dispatcher,
  maxScanDuration time.Duration,
) ScanService {
  if maxScanDuration <= 0 {
    maxScanDuration = 30 * time.Minute
  }
  return &scanService{
    db:              db,
    log:             baseLog.With("service", "ScanService"),
    sseHub:          sseHub,
    bus:             bus,
    storeRepo:       storeRepo,
    runRepo:         runRepo,
    scanRepo:        scanRepo,
    visRepo:         visRepo,
    grouper:         grouper,
    dispatcher:      dispatcher,
    maxScanDuration: maxScanDuration,
  }
}

func (s *scanService) EnqueueScan(ctx context.Context, storeID uuid.UUID) (*types.ScanRun, error) {
  if storeID == uuid.Nil {
    return nil, fmt.Errorf("missing store id")
  }

  var run *types.ScanRun

  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    stores, err := s.storeRepo.GetByIDs(ctx, tx, []uuid.UUID{storeID})
    if err != nil {
      return fmt.Errorf("load store: %w", err)
    }
    if len(stores) == 0 || stores[0] == nil {
      return fmt.Errorf("store not found")
    }

    active, err := s.runRepo.HasActiveForStore(ctx, tx, storeID)
    if err != nil {
      return fmt.Errorf("check active runs: %w", err)
    }
    if active {
      return fmt.Errorf("a scan is already queued or running for this store")
    }

    now := time.Now()
    run = &types.ScanRun{
      ID:        uuid.New(),
      StoreID:   storeID,
      Status:    "queued",
      Stage:     "group",
      Progress:  0,
      Attempts:  0,
      Metadata:  datatypes.JSON([]byte(`{}`)),
      CreatedAt: now,
      UpdatedAt: now,
    }
    if _, err := s.runRepo.Create(ctx, tx, []*types.ScanRun{run}); err != nil {
      return fmt.Errorf("create scan run: %w", err)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }

  s.broadcast(storeID, sse.SSEEventScanQueued, map[string]any{"run_id": run.ID})
  return run, nil
}

func (s *scanService) StartWorker(ctx context.Context) {
  go func() {
    ticker := time.NewTicker(1 * time.Second)
    defer ticker.Stop()

    // Worker policy
    const maxAttempts = 5
    retryDelay := 30 * time.Second
    staleRunning := 2 * time.Minute

    for {
      select {
      case <-ctx.Done():
        return
      case <-ticker.C:
        run, err := s.runRepo.ClaimNextRunnable(ctx, nil, maxAttempts, retryDelay, staleRunning)
        if err != nil {
          s.log.Warn("ClaimNextRunnable failed", "error", err)
          continue
        }
        if run == nil {
          continue
        }
        s.processRun(ctx, run)
      }
    }
  }()
}

func (s *scanService) processRun(ctx context.Context, run *types.ScanRun) {
  storeID := run.StoreID
  runID := run.ID

  // The whole store scan gets a wall-clock budget; categories persisted
  // before expiry survive as partial results.
  runCtx, cancel := context.WithTimeout(ctx, s.maxScanDuration)
  defer cancel()

  fail := func(stage string, err error) {
    now := time.Now()
    _ = s.runRepo.UpdateFields(ctx, nil, runID, map[string]interface{}{
      "status":        "failed",
      "stage":         stage,
      "error":         err.Error(),
      "last_error_at": now,
      "locked_at":     nil,
      "updated_at":    now,
    })
    s.broadcast(storeID, sse.SSEEventScanFailed, map[string]any{
      "run_id": runID,
      "stage":  stage,
      "error":  err.Error(),
    })
  }

  progress := func(stage string, pct int, msg string) {
    now := time.Now()
    _ = s.runRepo.UpdateFields(ctx, nil, runID, map[string]interface{}{
      "stage":        stage,
      "progress":     pct,
      "heartbeat_at": now,
      "updated_at":   now,
    })
    s.broadcast(storeID, sse.SSEEventScanProgress, map[string]any{
      "run_id":   runID,
      "stage":    stage,
      "progress": pct,
      "message":  msg,
    })
  }

  stores, err := s.storeRepo.GetByIDs(runCtx, nil, []uuid.UUID{storeID})
  if err != nil || len(stores) == 0 || stores[0] == nil {
    fail("group", fmt.Errorf("load store failed: %v", err))
    return
  }
  store := stores[0]

  progress("group", 5, "Grouping catalog into categories")
  groups, err := s.grouper.GroupByCategory(runCtx, nil, storeID)
  if err != nil {
    fail("group", fmt.Errorf("group products: %w", err))
    return
  }

  modelNames := s.dispatcher.Providers()
  if len(modelNames) == 0 {
    fail("dispatch", fmt.Errorf("no model providers configured"))
    return
  }

  persisted := 0
  for i, group := range groups {
    if runCtx.Err() != nil {
      fail("dispatch", fmt.Errorf("scan budget exceeded after %d of %d categories", persisted, len(groups)))
      return
    }

    pct := 10 + int(float64(i)/float64(len(groups))*80.0)
    progress("dispatch", pct, fmt.Sprintf("Scanning category %q", group.Category))

    // Only the first template is dispatched; three prompts across four
    // models per category gets expensive fast.
    prompt := GeneratePrompts(group.Category)[0]
    responses := s.dispatcher.Dispatch(runCtx, runID, prompt)

    ownTitles := make([]string, 0, len(group.Products))
    for _, p := range group.Products {
      ownTitles = append(ownTitles, p.Title)
    }

    results := make([]types.ScanResult, 0, len(responses))
    for _, resp := range responses {
      result := types.ScanResult{
        Model:     resp.Provider,
        Prompt:    prompt,
        Response:  resp.Text,
        Timestamp: time.Now(),
      }
      if resp.Err != nil {
        // A dead provider is a zero-match data point, not a scan failure.
        result.Failed = true
      } else {
        result.Mentions = MatchMentions(resp.Text, group.Products)
        result.Competitors = ExtractCompetitors(resp.Text, ownTitles)
      }
      results = append(results, result)
    }

    score, tallies := AggregateCategory(results)

    if err := s.persistCategory(runCtx, store, runID, group, modelNames, score, results, tallies); err != nil {
      // Per-category persistence failures are skipped, not fatal; the next
      // category still gets scanned.
      s.log.Error("failed to persist category scan; skipping category",
        "store_id", storeID,
        "category", group.Category,
        "retryable", db.IsRetryable(err),
        "error", err,
      )
      continue
    }
    persisted++

    progress("aggregate", 10+int(float64(i+1)/float64(len(groups))*80.0), fmt.Sprintf("Scored category %q", group.Category))
  }

  progress("persist", 95, "Updating scan schedule")
  now := time.Now()
  next := NextScanAt(store.ScanFrequency, now)
  if err := s.storeRepo.UpdateFields(runCtx, nil, storeID, map[string]interface{}{
    "last_scan_at": now,
    "next_scan_at": next,
    "updated_at":   now,
  }); err != nil {
    fail("persist", fmt.Errorf("update store schedule: %w", err))
    return
  }

  _ = s.runRepo.UpdateFields(ctx, nil, runID, map[string]interface{}{
    "status":     "succeeded",
    "stage":      "done",
    "progress":   100,
    "locked_at":  nil,
    "updated_at": time.Now(),
  })
  s.broadcast(storeID, sse.SSEEventScanCompleted, map[string]any{
    "run_id":     runID,
    "categories": len(groups),
    "persisted":  persisted,
  })
  s.log.Info("store scan completed",
    "store_id", storeID,
    "run_id", runID,
    "categories", len(groups),
    "persisted", persisted,
  )
}

// persistCategory writes the CategoryScan row and its ProductVisibility rows
// in one transaction so a crash can never leave a scan without visibility
// rows.
func (s *scanService) persistCategory(
  ctx context.Context,
  store *types.Store,
  runID uuid.UUID,
  group CategoryGroup,
  modelNames []string,
  score int,
  results []types.ScanResult,
  tallies map[uuid.UUID]*ProductTally,
) error {
  competitors := map[string]bool{}
  competitorList := []string{}
  for _, res := range results {
    for _, c := range res.Competitors {
      if !competitors[c] {
        competitors[c] = true
        competitorList = append(competitorList, c)
      }
    }
  }

  heroID := uuid.Nil
  if group.Hero != nil {
    heroID = group.Hero.ID
  }

  scan := &types.CategoryScan{
    ID:            uuid.New(),
    StoreID:       store.ID,
    RunID:         runID,
    Category:      group.Category,
    HeroProductID: heroID,
    ProductCount:  len(group.Products),
    Models:        datatypes.JSON(mustJSON(modelNames)),
    Visibility:    score,
    Results:       datatypes.JSON(mustJSON(results)),
    Competitors:   datatypes.JSON(mustJSON(competitorList)),
    CreatedAt:     time.Now(),
  }

  visRows := make([]*types.ProductVisibility, 0, len(group.Products))
  for _, p := range group.Products {
    row := &types.ProductVisibility{
      ID:        uuid.New(),
      ScanID:    scan.ID,
      ProductID: p.ID,
      Models:    datatypes.JSON([]byte(`[]`)),
      Issues:    datatypes.JSON([]byte(`[]`)),
      CreatedAt: time.Now(),
    }
    if tally := tallies[p.ID]; tally != nil {
      row.Mentioned = true
      row.MentionCount = tally.MentionCount
      row.BestPosition = tally.BestPosition
      row.Models = datatypes.JSON(mustJSON(tally.Models))
    }
    visRows = append(visRows, row)
  }

  return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, err := s.scanRepo.Create(ctx, tx, []*types.CategoryScan{scan}); err != nil {
      return fmt.Errorf("create category scan: %w", err)
    }
    if _, err := s.visRepo.Create(ctx, tx, visRows); err != nil {
      return fmt.Errorf("create product visibility rows: %w", err)
    }
    return nil
  })
}

func (s *scanService) broadcast(storeID uuid.UUID, event sse.SSEEvent, data map[string]any) {
  msg := sse.SSEMessage{
    Channel: storeID.String(),
    Event:   event,
    Data:    data,
  }
  // With a bus wired, local subscribers are reached through the loopback
  // forwarder; broadcasting here as well would deliver every event twice.
  if s.bus != nil {
    pubCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := s.bus.Publish(pubCtx, msg); err != nil {
      s.log.Warn("failed to publish scan event", "event", event, "error", err)
      if s.sseHub != nil {
        s.sseHub.Broadcast(msg)
      }
    }
    return
  }
  if s.sseHub != nil {
    s.sseHub.Broadcast(msg)
  }
}

func mustJSON(v any) []byte {
  raw, err := json.Marshal(v)
  if err != nil {
    return []byte(`null`)
  }
  return raw
}
