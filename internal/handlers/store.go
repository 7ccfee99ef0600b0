package handlers

import (
  "fmt"
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/harborhq/harbor-backend/internal/requestdata"
  "github.com/harborhq/harbor-backend/internal/services"
)

type StoreHandler struct {
  storeService services.StoreService
  authService  services.AuthService
}

func NewStoreHandler(storeService services.StoreService, authService services.AuthService) *StoreHandler {
  return &StoreHandler{storeService: storeService, authService: authService}
}

// POST /api/stores
// Registers a store with its catalog and returns the store plus an access
// token scoped to it.
func (h *StoreHandler) Register(c *gin.Context) {
  var body struct {
    Name          string                  `json:"name"`
    Domain        string                  `json:"domain"`
    ScanFrequency string                  `json:"scan_frequency"`
    Products      []services.ProductInput `json:"products"`
  }
  if err := c.ShouldBindJSON(&body); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }

  store, err := h.storeService.RegisterStore(c.Request.Context(), body.Name, body.Domain, body.ScanFrequency, body.Products)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "register_failed", err)
    return
  }

  token, err := h.authService.IssueStoreToken(c.Request.Context(), store.ID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "token_failed", err)
    return
  }

  RespondOK(c, gin.H{"store": store, "token": token})
}

// GET /api/store
func (h *StoreHandler) GetStore(c *gin.Context) {
  store, err := h.storeService.GetStore(c.Request.Context(), nil)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "store_lookup_failed", err)
    return
  }
  RespondOK(c, gin.H{"store": store})
}

// POST /api/products
func (h *StoreHandler) IngestProducts(c *gin.Context) {
  var body struct {
    Products []services.ProductInput `json:"products"`
  }
  if err := c.ShouldBindJSON(&body); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }

  created, err := h.storeService.IngestProducts(c.Request.Context(), body.Products)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "ingest_failed", err)
    return
  }
  RespondOK(c, gin.H{"products": created})
}

// GET /api/scans?limit=N
func (h *StoreHandler) GetScans(c *gin.Context) {
  limit := 0
  if raw := c.Query("limit"); raw != "" {
    parsed, err := strconv.Atoi(raw)
    if err != nil || parsed < 0 {
      RespondError(c, http.StatusBadRequest, "invalid_limit", err)
      return
    }
    limit = parsed
  }

  scans, err := h.storeService.GetScans(c.Request.Context(), nil, limit)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "scan_lookup_failed", err)
    return
  }
  RespondOK(c, gin.H{"scans": scans})
}

// GET /api/stores/:id/scans
// The path store id must match the token's store.
func (h *StoreHandler) GetScansForStore(c *gin.Context) {
  storeID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_store_id", err)
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.StoreID != storeID {
    RespondError(c, http.StatusNotFound, "store_not_found", fmt.Errorf("store not found"))
    return
  }

  scans, err := h.storeService.GetScans(c.Request.Context(), nil, 0)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "scan_lookup_failed", err)
    return
  }
  RespondOK(c, gin.H{"scans": scans})
}

// GET /api/scans/:id/visibility
func (h *StoreHandler) GetVisibility(c *gin.Context) {
  scanID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_scan_id", err)
    return
  }

  rows, err := h.storeService.GetVisibility(c.Request.Context(), nil, scanID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "visibility_lookup_failed", err)
    return
  }
  RespondOK(c, gin.H{"visibility": rows})
}
