package repos

import (
  "context"
  "testing"
  "time"

  "github.com/google/uuid"
  "github.com/stretchr/testify/require"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/types"
)

func testDB(t *testing.T) (*gorm.DB, *logger.Logger) {
  t.Helper()

  gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  require.NoError(t, err)

  require.NoError(t, gdb.AutoMigrate(
    &types.Store{},
    &types.Product{},
    &types.ScanRun{},
    &types.CategoryScan{},
    &types.ProductVisibility{},
    &types.AICallLog{},
  ))

  log, err := logger.New("development")
  require.NoError(t, err)

  t.Cleanup(func() {
    sqlDB, dbErr := gdb.DB()
    if dbErr == nil {
      _ = sqlDB.Close()
    }
  })
  return gdb, log
}

// The schema must migrate cleanly on sqlite, not just Postgres; every repo
// test below depends on it.
func TestAutoMigrateAllTablesOnSQLite(t *testing.T) {
  gdb, _ := testDB(t)
  for _, table := range []string{
    "store", "product", "scan_run", "category_scan", "product_visibility", "ai_call_log",
  } {
    require.True(t, gdb.Migrator().HasTable(table), "missing table %s", table)
  }
}

func seedStore(t *testing.T, repo StoreRepo, frequency string) *types.Store {
  t.Helper()
  store := &types.Store{
    ID:            uuid.New(),
    Name:          "Test Outfitters",
    Domain:        "test-outfitters.example",
    ScanFrequency: frequency,
    CreatedAt:     time.Now(),
    UpdatedAt:     time.Now(),
  }
  _, err := repo.Create(context.Background(), nil, []*types.Store{store})
  require.NoError(t, err)
  return store
}

func TestStoreRepoCreateAndGet(t *testing.T) {
  gdb, log := testDB(t)
  repo := NewStoreRepo(gdb, log)

  store := seedStore(t, repo, types.ScanFrequencyWeekly)

  found, err := repo.GetByIDs(context.Background(), nil, []uuid.UUID{store.ID})
  require.NoError(t, err)
  require.Len(t, found, 1)
  require.Equal(t, store.Name, found[0].Name)
  require.Equal(t, types.ScanFrequencyWeekly, found[0].ScanFrequency)
}

func TestStoreRepoGetDue(t *testing.T) {
  gdb, log := testDB(t)
  repo := NewStoreRepo(gdb, log)
  ctx := context.Background()

  neverScanned := seedStore(t, repo, types.ScanFrequencyDaily)

  overdue := seedStore(t, repo, types.ScanFrequencyDaily)
  past := time.Now().Add(-time.Hour)
  require.NoError(t, repo.UpdateFields(ctx, nil, overdue.ID, map[string]interface{}{"next_scan_at": past}))

  notDue := seedStore(t, repo, types.ScanFrequencyDaily)
  future := time.Now().Add(24 * time.Hour)
  require.NoError(t, repo.UpdateFields(ctx, nil, notDue.ID, map[string]interface{}{"next_scan_at": future}))

  due, err := repo.GetDue(ctx, nil, time.Now(), 10)
  require.NoError(t, err)

  dueIDs := map[uuid.UUID]bool{}
  for _, s := range due {
    dueIDs[s.ID] = true
  }
  require.True(t, dueIDs[neverScanned.ID], "never-scanned store should be due")
  require.True(t, dueIDs[overdue.ID], "overdue store should be due")
  require.False(t, dueIDs[notDue.ID], "future store should not be due")
}

func TestProductRepoGetByStoreIDOrdered(t *testing.T) {
  gdb, log := testDB(t)
  storeRepo := NewStoreRepo(gdb, log)
  productRepo := NewProductRepo(gdb, log)
  ctx := context.Background()

  store := seedStore(t, storeRepo, types.ScanFrequencyMonthly)

  older := &types.Product{
    ID: uuid.New(), StoreID: store.ID, Title: "First Product",
    CreatedAt: time.Now().Add(-time.Minute), UpdatedAt: time.Now(),
  }
  newer := &types.Product{
    ID: uuid.New(), StoreID: store.ID, Title: "Second Product",
    CreatedAt: time.Now(), UpdatedAt: time.Now(),
  }
  _, err := productRepo.Create(ctx, nil, []*types.Product{newer, older})
  require.NoError(t, err)

  got, err := productRepo.GetByStoreID(ctx, nil, store.ID)
  require.NoError(t, err)
  require.Len(t, got, 2)
  require.Equal(t, "First Product", got[0].Title)
  require.Equal(t, "Second Product", got[1].Title)
}

func TestScanRunRepoActiveFlag(t *testing.T) {
  gdb, log := testDB(t)
  storeRepo := NewStoreRepo(gdb, log)
  runRepo := NewScanRunRepo(gdb, log)
  ctx := context.Background()

  store := seedStore(t, storeRepo, types.ScanFrequencyMonthly)

  active, err := runRepo.HasActiveForStore(ctx, nil, store.ID)
  require.NoError(t, err)
  require.False(t, active)

  run := &types.ScanRun{
    ID: uuid.New(), StoreID: store.ID, Status: "queued", Stage: "group",
    CreatedAt: time.Now(), UpdatedAt: time.Now(),
  }
  _, err = runRepo.Create(ctx, nil, []*types.ScanRun{run})
  require.NoError(t, err)

  active, err = runRepo.HasActiveForStore(ctx, nil, store.ID)
  require.NoError(t, err)
  require.True(t, active)

  require.NoError(t, runRepo.UpdateFields(ctx, nil, run.ID, map[string]interface{}{"status": "succeeded", "stage": "done", "progress": 100}))

  active, err = runRepo.HasActiveForStore(ctx, nil, store.ID)
  require.NoError(t, err)
  require.False(t, active)
}

func TestScanRunRepoGetLatestByStoreID(t *testing.T) {
  gdb, log := testDB(t)
  storeRepo := NewStoreRepo(gdb, log)
  runRepo := NewScanRunRepo(gdb, log)
  ctx := context.Background()

  store := seedStore(t, storeRepo, types.ScanFrequencyMonthly)

  none, err := runRepo.GetLatestByStoreID(ctx, nil, store.ID)
  require.NoError(t, err)
  require.Nil(t, none)

  older := &types.ScanRun{
    ID: uuid.New(), StoreID: store.ID, Status: "succeeded", Stage: "done",
    CreatedAt: time.Now().Add(-time.Hour), UpdatedAt: time.Now(),
  }
  newer := &types.ScanRun{
    ID: uuid.New(), StoreID: store.ID, Status: "queued", Stage: "group",
    CreatedAt: time.Now(), UpdatedAt: time.Now(),
  }
  _, err = runRepo.Create(ctx, nil, []*types.ScanRun{older, newer})
  require.NoError(t, err)

  latest, err := runRepo.GetLatestByStoreID(ctx, nil, store.ID)
  require.NoError(t, err)
  require.NotNil(t, latest)
  require.Equal(t, newer.ID, latest.ID)
}

func TestCategoryScanAndVisibilityRoundTrip(t *testing.T) {
  gdb, log := testDB(t)
  storeRepo := NewStoreRepo(gdb, log)
  scanRepo := NewCategoryScanRepo(gdb, log)
  visRepo := NewProductVisibilityRepo(gdb, log)
  ctx := context.Background()

  store := seedStore(t, storeRepo, types.ScanFrequencyMonthly)
  runID := uuid.New()

  scan := &types.CategoryScan{
    ID:           uuid.New(),
    StoreID:      store.ID,
    RunID:        runID,
    Category:     "Jackets",
    ProductCount: 2,
    Visibility:   50,
    CreatedAt:    time.Now(),
  }
  _, err := scanRepo.Create(ctx, nil, []*types.CategoryScan{scan})
  require.NoError(t, err)

  pos := 1
  rows := []*types.ProductVisibility{
    {ID: uuid.New(), ScanID: scan.ID, ProductID: uuid.New(), Mentioned: true, MentionCount: 2, BestPosition: &pos, CreatedAt: time.Now()},
    {ID: uuid.New(), ScanID: scan.ID, ProductID: uuid.New(), Mentioned: false, CreatedAt: time.Now()},
  }
  _, err = visRepo.Create(ctx, nil, rows)
  require.NoError(t, err)

  byRun, err := scanRepo.GetByRunID(ctx, nil, runID)
  require.NoError(t, err)
  require.Len(t, byRun, 1)
  require.Equal(t, "Jackets", byRun[0].Category)

  vis, err := visRepo.GetByScanIDs(ctx, nil, []uuid.UUID{scan.ID})
  require.NoError(t, err)
  require.Len(t, vis, 2)
}

func TestAICallLogRepoGetByRunID(t *testing.T) {
  gdb, log := testDB(t)
  aiRepo := NewAICallLogRepo(gdb, log)
  ctx := context.Background()

  runID := uuid.New()
  row := &types.AICallLog{
    ID:        uuid.New(),
    RunID:     &runID,
    Provider:  "chatgpt",
    Model:     "gpt-test",
    Prompt:    "What are the best jackets?",
    Success:   true,
    LatencyMS: 120,
    CreatedAt: time.Now(),
    UpdatedAt: time.Now(),
  }
  _, err := aiRepo.Create(ctx, nil, []*types.AICallLog{row})
  require.NoError(t, err)

  got, err := aiRepo.GetByRunID(ctx, nil, runID)
  require.NoError(t, err)
  require.Len(t, got, 1)
  require.Equal(t, "chatgpt", got[0].Provider)
}
