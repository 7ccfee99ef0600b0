package services

import (
  "testing"

  "github.com/google/uuid"
  "github.com/stretchr/testify/assert"

  "github.com/harborhq/harbor-backend/internal/types"
)

func statusRun(status, stage string, progress int) *types.ScanRun {
  return &types.ScanRun{
    ID:       uuid.New(),
    StoreID:  uuid.New(),
    Status:   status,
    Stage:    stage,
    Progress: progress,
  }
}

func TestBuildScanStatusQueued(t *testing.T) {
  got := BuildScanStatus(statusRun("queued", "group", 0))
  assert.Equal(t, "queued", got.Status)
  assert.Equal(t, "running", got.Modules.Shopping)
  assert.Equal(t, "pending", got.Modules.Conversations)
  assert.Equal(t, "pending", got.Modules.Brand)
  assert.Equal(t, "pending", got.Modules.Website)
}

func TestBuildScanStatusDispatchStage(t *testing.T) {
  got := BuildScanStatus(statusRun("running", "dispatch", 40))
  assert.Equal(t, "running", got.Status)
  assert.Equal(t, 40, got.Progress)
  assert.Equal(t, "done", got.Modules.Shopping)
  assert.Equal(t, "running", got.Modules.Conversations)
  assert.Equal(t, "pending", got.Modules.Brand)
  assert.Equal(t, "pending", got.Modules.Website)
}

func TestBuildScanStatusPersistStage(t *testing.T) {
  got := BuildScanStatus(statusRun("running", "persist", 95))
  assert.Equal(t, "done", got.Modules.Shopping)
  assert.Equal(t, "done", got.Modules.Conversations)
  assert.Equal(t, "done", got.Modules.Brand)
  assert.Equal(t, "running", got.Modules.Website)
}

func TestBuildScanStatusSucceededMapsToDone(t *testing.T) {
  got := BuildScanStatus(statusRun("succeeded", "done", 100))
  assert.Equal(t, "done", got.Status)
  assert.Equal(t, "done", got.Modules.Shopping)
  assert.Equal(t, "done", got.Modules.Conversations)
  assert.Equal(t, "done", got.Modules.Brand)
  assert.Equal(t, "done", got.Modules.Website)
}

func TestBuildScanStatusFailedCarriesError(t *testing.T) {
  run := statusRun("failed", "dispatch", 40)
  run.Error = "provider set empty"
  got := BuildScanStatus(run)
  assert.Equal(t, "failed", got.Status)
  assert.Equal(t, "provider set empty", got.Error)
  assert.Equal(t, "done", got.Modules.Shopping)
  assert.Equal(t, "failed", got.Modules.Conversations)
  assert.Equal(t, "pending", got.Modules.Brand)
}
