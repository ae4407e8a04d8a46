package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plusiam/sisu/internal/service"
	"github.com/plusiam/sisu/pkg/response"
)

// SyncHandler exposes roster sync against the sheet backup.
type SyncHandler struct {
	sync *service.SyncService
}

// NewSyncHandler constructs a new SyncHandler.
func NewSyncHandler(sync *service.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// Pull godoc
// @Summary Pull roster from the sheet backup
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sync/pull [post]
func (h *SyncHandler) Pull(c *gin.Context) {
	result, err := h.sync.Pull(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Push godoc
// @Summary Push roster to the sheet backup
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sync/push [post]
func (h *SyncHandler) Push(c *gin.Context) {
	result, err := h.sync.Push(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
