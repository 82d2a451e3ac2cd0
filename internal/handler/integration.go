package handler

import (
	"errors"
	"net/http"

	"github.com/LordMilo/SmartTaskManager/internal/integration"
	"github.com/LordMilo/SmartTaskManager/internal/middleware"
	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/service"
	"github.com/LordMilo/SmartTaskManager/internal/state"

	"github.com/gin-gonic/gin"
)

type IntegrationHandler struct {
	store   *state.Store
	google  *service.GoogleService
	catalog integration.Capability[*service.CatalogSync]
}

func NewIntegrationHandler(store *state.Store, google *service.GoogleService, catalog integration.Capability[*service.CatalogSync]) *IntegrationHandler {
	return &IntegrationHandler{store: store, google: google, catalog: catalog}
}

// Status reports the board's connectivity. Drive and Sheets describe the
// caller's own session and are false for anonymous requests.
func (h *IntegrationHandler) Status(c *gin.Context) {
	sid := middleware.Actor(c).SessionID
	c.JSON(http.StatusOK, model.StatusResponse{
		Offline: h.store.Offline(),
		Notice:  h.store.Notice(),
		Drive:   h.google.DriveAvailable(sid),
		Sheets:  h.google.SheetsAvailable(sid),
		Catalog: h.catalog.Available(),
	})
}

func (h *IntegrationHandler) ConnectGoogle(c *gin.Context) {
	var req model.GoogleConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "access token is required"})
		return
	}
	h.google.Connect(middleware.Actor(c).SessionID, req.AccessToken, req.SheetID)
	h.Status(c)
}

func (h *IntegrationHandler) DisconnectGoogle(c *gin.Context) {
	h.google.Disconnect(middleware.Actor(c).SessionID)
	h.Status(c)
}

// SyncGoogle pushes the snapshot now and reports the outcome. A failure is a
// 502 and leaves task data untouched.
func (h *IntegrationHandler) SyncGoogle(c *gin.Context) {
	tasks := h.store.Tasks()
	ok, err := h.google.Sync(c.Request.Context(), middleware.Actor(c).SessionID, tasks)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "sheets not connected"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": len(tasks)})
}

func (h *IntegrationHandler) ExportCatalog(c *gin.Context) {
	tasks := h.store.Tasks()
	cs, _ := h.catalog.Get()
	err := cs.ExportTasks(c.Request.Context(), tasks)
	if errors.Is(err, service.ErrCatalogDisabled) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exported": len(tasks)})
}
