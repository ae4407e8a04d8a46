package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plusiam/sisu/internal/service"
	appErrors "github.com/plusiam/sisu/pkg/errors"
	"github.com/plusiam/sisu/pkg/response"
)

// SchoolHandler exposes the single school profile.
type SchoolHandler struct {
	school *service.SchoolService
}

// NewSchoolHandler constructs a new SchoolHandler.
func NewSchoolHandler(school *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{school: school}
}

// Get godoc
// @Summary Get school profile
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /school [get]
func (h *SchoolHandler) Get(c *gin.Context) {
	profile, err := h.school.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Save godoc
// @Summary Save school profile
// @Tags School
// @Accept json
// @Produce json
// @Param payload body service.SchoolProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /school [put]
func (h *SchoolHandler) Save(c *gin.Context) {
	var req service.SchoolProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	profile, err := h.school.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
