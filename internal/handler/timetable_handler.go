package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/plusiam/sisu/internal/models"
	"github.com/plusiam/sisu/internal/service"
	appErrors "github.com/plusiam/sisu/pkg/errors"
	"github.com/plusiam/sisu/pkg/response"
)

// TimetableHandler wires slot CRUD and timetable diagnostics to HTTP routes.
type TimetableHandler struct {
	timetable *service.TimetableService
}

// NewTimetableHandler constructs a new TimetableHandler.
func NewTimetableHandler(timetable *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable}
}

// List godoc
// @Summary List timetable slots
// @Tags Timetable
// @Produce json
// @Param teacher_id query string false "Filter by teacher"
// @Param grade query int false "Filter by grade"
// @Param class query int false "Filter by class number"
// @Param day query string false "Filter by day (mon..fri)"
// @Param subject query string false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /timetable/slots [get]
func (h *TimetableHandler) List(c *gin.Context) {
	filter := models.TimetableFilter{
		TeacherID: c.Query("teacher_id"),
		Day:       models.DayOfWeek(c.Query("day")),
		Subject:   c.Query("subject"),
	}
	if grade, err := strconv.Atoi(c.Query("grade")); err == nil {
		filter.Grade = &grade
	}
	if class, err := strconv.Atoi(c.Query("class")); err == nil {
		filter.ClassNumber = &class
	}

	slots, err := h.timetable.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Get godoc
// @Summary Get slot detail
// @Tags Timetable
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/slots/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	slot, err := h.timetable.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Create timetable slot
// @Description Conflicts block the save unless force is set; the conflict
// @Description details are returned either way.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.SlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/slots [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req service.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	slot, check, err := h.timetable.Create(c.Request.Context(), req)
	if err != nil {
		h.conflictError(c, err, check)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"slot": slot, "conflicts": check}, nil)
}

// Update godoc
// @Summary Update timetable slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body service.SlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/slots/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req service.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	slot, check, err := h.timetable.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.conflictError(c, err, check)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"slot": slot, "conflicts": check}, nil)
}

// Delete godoc
// @Summary Delete timetable slot
// @Tags Timetable
// @Param id path string true "Slot ID"
// @Success 204
// @Router /timetable/slots/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.timetable.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Clear godoc
// @Summary Clear the whole timetable
// @Tags Timetable
// @Success 204
// @Router /timetable/slots [delete]
func (h *TimetableHandler) Clear(c *gin.Context) {
	if err := h.timetable.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CheckConflicts godoc
// @Summary Check a candidate slot for conflicts
// @Tags Timetable
// @Accept json
// @Produce json
// @Param exclude query string false "Slot ID to exclude (self-edit)"
// @Param payload body service.SlotRequest true "Candidate slot"
// @Success 200 {object} response.Envelope
// @Router /timetable/check-conflicts [post]
func (h *TimetableHandler) CheckConflicts(c *gin.Context) {
	var req service.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	result, err := h.timetable.CheckConflicts(c.Request.Context(), req, c.Query("exclude"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Validate godoc
// @Summary Scan stored timetable for duplicates
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/validate [get]
func (h *TimetableHandler) Validate(c *gin.Context) {
	result, err := h.timetable.Validate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Stats godoc
// @Summary Timetable fill statistics
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/stats [get]
func (h *TimetableHandler) Stats(c *gin.Context) {
	stats, err := h.timetable.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Summary godoc
// @Summary Per-specialist weekly hours
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/summary [get]
func (h *TimetableHandler) Summary(c *gin.Context) {
	summary, err := h.timetable.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// conflictError renders a rejected save. A conflict rejection carries the
// collision details so the client can offer a forced retry.
func (h *TimetableHandler) conflictError(c *gin.Context, err error, check *models.ConflictCheckResult) {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Code == appErrors.ErrSlotConflict.Code && check != nil {
		c.Header("Cache-Control", "no-store")
		c.JSON(appErr.Status, response.Envelope{Error: appErr, Data: gin.H{"conflicts": check}})
		return
	}
	response.Error(c, err)
}
