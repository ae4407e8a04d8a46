package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/plusiam/sisu/internal/models"
	appErrors "github.com/plusiam/sisu/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	ListActive(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

type teacherSlotRepository interface {
	DeleteByTeacher(ctx context.Context, teacherID string) error
}

// TeacherRequest represents payload for creating or updating teachers.
type TeacherRequest struct {
	Name         string             `json:"name" validate:"required,min=2,max=20"`
	Role         models.TeacherRole `json:"role" validate:"required,oneof=homeroom specialist"`
	Grade        *int               `json:"grade" validate:"omitempty,min=1,max=6"`
	ClassNumber  *int               `json:"class_number" validate:"omitempty,min=1,max=20"`
	Grades       []int              `json:"grades" validate:"omitempty,dive,min=1,max=6"`
	Subjects     []string           `json:"subjects" validate:"omitempty,dive,min=1"`
	OtherSubject *string            `json:"other_subject" validate:"omitempty,max=50"`
	Active       *bool              `json:"active"`
}

// TeacherService orchestrates roster operations.
type TeacherService struct {
	repo      teacherRepository
	slots     teacherSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, slots teacherSlotRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, slots: slots, validator: validate, logger: logger}
}

// List returns teachers plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return teachers, pagination, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new roster entry.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	teacher := s.fromRequest(req)
	teacher.Active = true
	if req.Active != nil {
		teacher.Active = *req.Active
	}

	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Update modifies an existing roster entry.
func (s *TeacherService) Update(ctx context.Context, id string, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	teacher := s.fromRequest(req)
	teacher.ID = existing.ID
	teacher.CreatedAt = existing.CreatedAt
	teacher.Active = existing.Active
	if req.Active != nil {
		teacher.Active = *req.Active
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Delete removes a teacher and every timetable slot assigned to them.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if s.slots != nil {
		if err := s.slots.DeleteByTeacher(ctx, id); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove teacher slots")
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	return nil
}

func (s *TeacherService) validateRequest(req TeacherRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	switch req.Role {
	case models.RoleHomeroom:
		if req.Grade == nil || req.ClassNumber == nil {
			return appErrors.Clone(appErrors.ErrValidation, "homeroom teachers require grade and class number")
		}
	case models.RoleSpecialist:
		// Empty grades or subjects are allowed: the teacher simply
		// contributes no scheduling demand yet.
	}
	return nil
}

func (s *TeacherService) fromRequest(req TeacherRequest) *models.Teacher {
	teacher := &models.Teacher{
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		OtherSubject: req.OtherSubject,
	}
	if req.Role == models.RoleHomeroom {
		teacher.Grade = req.Grade
		teacher.ClassNumber = req.ClassNumber
	} else {
		grades := make(pq.Int64Array, 0, len(req.Grades))
		for _, g := range req.Grades {
			grades = append(grades, int64(g))
		}
		teacher.Grades = grades
		teacher.Subjects = pq.StringArray(req.Subjects)
	}
	return teacher
}
