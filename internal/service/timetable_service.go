package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/plusiam/sisu/internal/models"
	"github.com/plusiam/sisu/internal/scheduler"
	appErrors "github.com/plusiam/sisu/pkg/errors"
)

type slotRepository interface {
	List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableSlot, error)
	ListAll(ctx context.Context) ([]models.TimetableSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimetableSlot, error)
	Create(ctx context.Context, slot *models.TimetableSlot) error
	BulkInsert(ctx context.Context, slots []models.TimetableSlot) error
	Update(ctx context.Context, slot *models.TimetableSlot) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type slotTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

// SlotRequest represents payload for creating or updating one slot.
type SlotRequest struct {
	Day         models.DayOfWeek `json:"day" validate:"required,oneof=mon tue wed thu fri"`
	Period      int              `json:"period" validate:"required,min=1,max=6"`
	Grade       int              `json:"grade" validate:"required,min=1,max=6"`
	ClassNumber int              `json:"class_number" validate:"required,min=1,max=20"`
	TeacherID   string           `json:"teacher_id" validate:"required"`
	Subject     string           `json:"subject" validate:"required,min=1,max=30"`
	Room        string           `json:"room" validate:"omitempty,max=30"`
	Note        string           `json:"note" validate:"omitempty,max=200"`
	Force       bool             `json:"force"`
}

// TimetableService orchestrates slot CRUD, conflict checking and the
// read-only diagnostics built on top of the slot set.
type TimetableService struct {
	slots     slotRepository
	teachers  slotTeacherReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(slots slotRepository, teachers slotTeacherReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{slots: slots, teachers: teachers, cache: cache, validator: validate, logger: logger}
}

const timetableCachePattern = "sisu:timetable:*"

// List returns slots matching the filter.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableSlot, error) {
	slots, err := s.slots.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	return slots, nil
}

// Get returns one slot by id.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.TimetableSlot, error) {
	slot, err := s.slots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	return slot, nil
}

// Create places one slot. Conflicts are advisory: the result is returned to
// the caller and only blocks the save when Force is unset.
func (s *TimetableService) Create(ctx context.Context, req SlotRequest) (*models.TimetableSlot, *models.ConflictCheckResult, error) {
	slot, err := s.buildSlot(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	check, err := s.checkAgainstExisting(ctx, *slot, "")
	if err != nil {
		return nil, nil, err
	}
	if check.HasConflict && !req.Force {
		return nil, check, appErrors.Clone(appErrors.ErrSlotConflict, "")
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot")
	}
	s.invalidate(ctx)
	return slot, check, nil
}

// Update rewrites one slot, excluding it from its own conflict check.
func (s *TimetableService) Update(ctx context.Context, id string, req SlotRequest) (*models.TimetableSlot, *models.ConflictCheckResult, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	slot, err := s.buildSlot(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	slot.ID = existing.ID
	slot.CreatedAt = existing.CreatedAt

	check, err := s.checkAgainstExisting(ctx, *slot, id)
	if err != nil {
		return nil, nil, err
	}
	if check.HasConflict && !req.Force {
		return nil, check, appErrors.Clone(appErrors.ErrSlotConflict, "")
	}

	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot")
	}
	s.invalidate(ctx)
	return slot, check, nil
}

// Delete removes one slot.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.slots.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot")
	}
	s.invalidate(ctx)
	return nil
}

// Clear wipes the whole timetable.
func (s *TimetableService) Clear(ctx context.Context) error {
	if err := s.slots.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear timetable")
	}
	s.invalidate(ctx)
	return nil
}

// CheckConflicts evaluates a candidate slot without saving anything.
func (s *TimetableService) CheckConflicts(ctx context.Context, req SlotRequest, excludeID string) (*models.ConflictCheckResult, error) {
	slot, err := s.buildSlot(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.checkAgainstExisting(ctx, *slot, excludeID)
}

// Validate runs the duplicate scan over the stored timetable.
func (s *TimetableService) Validate(ctx context.Context) (*scheduler.ValidationResult, error) {
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}
	result := scheduler.ValidateTimetable(slots)
	return &result, nil
}

// Stats summarises the stored timetable for display.
func (s *TimetableService) Stats(ctx context.Context) (*models.TimetableStats, error) {
	const cacheKey = "sisu:timetable:stats"
	var cached models.TimetableStats
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}

	stats := models.TimetableStats{
		TotalSlots: len(slots),
		ByDay:      map[models.DayOfWeek]int{},
		ByPeriod:   map[int]int{},
		ByGrade:    map[int]int{},
	}
	for _, slot := range slots {
		stats.ByDay[slot.Day]++
		stats.ByPeriod[slot.Period]++
		stats.ByGrade[slot.Grade]++
	}

	_ = s.cache.Set(ctx, cacheKey, stats, 0)
	return &stats, nil
}

// Summary computes per-specialist weekly hours.
func (s *TimetableService) Summary(ctx context.Context) ([]scheduler.HoursSummary, error) {
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	return scheduler.SummarizeTeacherHours(slots, teachers), nil
}

func (s *TimetableService) buildSlot(ctx context.Context, req SlotRequest) (*models.TimetableSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown teacher")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return &models.TimetableSlot{
		Day:         req.Day,
		Period:      req.Period,
		Grade:       req.Grade,
		ClassNumber: req.ClassNumber,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Subject:     req.Subject,
		Room:        req.Room,
		Note:        req.Note,
	}, nil
}

func (s *TimetableService) checkAgainstExisting(ctx context.Context, candidate models.TimetableSlot, excludeID string) (*models.ConflictCheckResult, error) {
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}
	result := scheduler.CheckConflicts(slots, candidate, excludeID)
	return &result, nil
}

func (s *TimetableService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, timetableCachePattern); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}
}
