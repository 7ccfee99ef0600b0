package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/harborhq/harbor-backend/internal/requestdata"
  "github.com/harborhq/harbor-backend/internal/services"
)

type ScanHandler struct {
  scanService   services.ScanService
  statusService services.ScanStatusService
}

func NewScanHandler(scanService services.ScanService, statusService services.ScanStatusService) *ScanHandler {
  return &ScanHandler{scanService: scanService, statusService: statusService}
}

// POST /api/scan
func (h *ScanHandler) Enqueue(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.StoreID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
    return
  }

  run, err := h.scanService.EnqueueScan(c.Request.Context(), rd.StoreID)
  if err != nil {
    RespondError(c, http.StatusConflict, "enqueue_failed", err)
    return
  }
  c.JSON(http.StatusAccepted, gin.H{"run": run})
}

// GET /api/scan/status
func (h *ScanHandler) GetLatestStatus(c *gin.Context) {
  status, err := h.statusService.GetLatestForStore(c.Request.Context(), nil)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "status_lookup_failed", err)
    return
  }
  RespondOK(c, status)
}

// GET /api/scan/status/:id
func (h *ScanHandler) GetStatusByRunID(c *gin.Context) {
  runID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
    return
  }

  status, err := h.statusService.GetByRunID(c.Request.Context(), nil, runID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "status_lookup_failed", err)
    return
  }
  RespondOK(c, status)
}
