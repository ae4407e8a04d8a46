package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plusiam/sisu/internal/service"
	appErrors "github.com/plusiam/sisu/pkg/errors"
	"github.com/plusiam/sisu/pkg/response"
)

// ScheduleHandler exposes the auto-scheduling engine.
type ScheduleHandler struct {
	scheduler *service.AutoScheduleService
}

// NewScheduleHandler constructs a new ScheduleHandler.
func NewScheduleHandler(scheduler *service.AutoScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduler: scheduler}
}

// Run godoc
// @Summary Run the auto scheduler
// @Description Places lessons for every specialist. With apply unset the
// @Description result is a preview and nothing is stored.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body service.AutoScheduleRequest false "Run options"
// @Success 200 {object} response.Envelope
// @Router /schedule/run [post]
func (h *ScheduleHandler) Run(c *gin.Context) {
	var req service.AutoScheduleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
			return
		}
	}

	result, err := h.scheduler.Run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
