package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/harborhq/harbor-backend/internal/requestdata"
  "github.com/harborhq/harbor-backend/internal/sse"
)

type SSEHandler struct {
  hub *sse.SSEHub
}

func NewSSEHandler(hub *sse.SSEHub) *SSEHandler {
  return &SSEHandler{hub: hub}
}

// GET /sse/stream
// Each store gets one channel, keyed by its ID; scan lifecycle events for the
// store land there.
func (h *SSEHandler) SSEStream(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.StoreID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
    return
  }

  client := h.hub.NewSSEClient(rd.StoreID)
  h.hub.AddChannel(client, rd.StoreID.String())
  defer h.hub.CloseClient(client)

  h.hub.ServeHTTP(c.Writer, c.Request, client)
}
