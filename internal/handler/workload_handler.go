package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plusiam/sisu/internal/service"
	appErrors "github.com/plusiam/sisu/pkg/errors"
	"github.com/plusiam/sisu/pkg/response"
)

// WorkloadHandler exposes the workload simulator.
type WorkloadHandler struct {
	workload *service.WorkloadService
}

// NewWorkloadHandler constructs a new WorkloadHandler.
func NewWorkloadHandler(workload *service.WorkloadService) *WorkloadHandler {
	return &WorkloadHandler{workload: workload}
}

// Calculate godoc
// @Summary Simulate a weekly workload
// @Tags Workload
// @Accept json
// @Produce json
// @Param payload body service.WorkloadInput true "Weekly hours breakdown"
// @Success 200 {object} response.Envelope
// @Router /workload/calculate [post]
func (h *WorkloadHandler) Calculate(c *gin.Context) {
	var input service.WorkloadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid workload payload"))
		return
	}

	stats, err := h.workload.Calculate(input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
