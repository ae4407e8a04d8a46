package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/plusiam/sisu/internal/models"
	appErrors "github.com/plusiam/sisu/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectDemandFilter) ([]models.SubjectDemand, int, error)
	ListAll(ctx context.Context) ([]models.SubjectDemand, error)
	FindByID(ctx context.Context, id string) (*models.SubjectDemand, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, demand *models.SubjectDemand) error
	Update(ctx context.Context, demand *models.SubjectDemand) error
	Delete(ctx context.Context, id string) error
}

// SubjectDemandRequest represents payload for creating or updating demands.
type SubjectDemandRequest struct {
	Name         string      `json:"name" validate:"required,min=1,max=30"`
	HoursByGrade map[int]int `json:"hours_by_grade" validate:"omitempty,dive,keys,min=1,max=6,endkeys,min=0,max=10"`
	DefaultRoom  *string     `json:"default_room" validate:"omitempty,max=30"`
	Note         *string     `json:"note" validate:"omitempty,max=200"`
}

// SubjectService orchestrates subject demand operations.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns subject demands plus pagination data.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectDemandFilter) ([]models.SubjectDemand, *models.Pagination, error) {
	demands, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject demands")
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
	return demands, pagination, nil
}

// Get returns a subject demand by id.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.SubjectDemand, error) {
	demand, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject demand not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject demand")
	}
	return demand, nil
}

// Create registers a new subject demand.
func (s *SubjectService) Create(ctx context.Context, req SubjectDemandRequest) (*models.SubjectDemand, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	name := strings.TrimSpace(req.Name)
	taken, err := s.repo.ExistsByName(ctx, name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject already exists")
	}

	demand := &models.SubjectDemand{
		Name:         name,
		HoursByGrade: models.GradeHours(req.HoursByGrade),
		DefaultRoom:  req.DefaultRoom,
		Note:         req.Note,
	}
	if demand.HoursByGrade == nil {
		demand.HoursByGrade = models.GradeHours{}
	}

	if err := s.repo.Create(ctx, demand); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject demand")
	}
	return demand, nil
}

// Update modifies an existing subject demand.
func (s *SubjectService) Update(ctx context.Context, id string, req SubjectDemandRequest) (*models.SubjectDemand, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	taken, err := s.repo.ExistsByName(ctx, name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject already exists")
	}

	existing.Name = name
	existing.HoursByGrade = models.GradeHours(req.HoursByGrade)
	if existing.HoursByGrade == nil {
		existing.HoursByGrade = models.GradeHours{}
	}
	existing.DefaultRoom = req.DefaultRoom
	existing.Note = req.Note

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject demand")
	}
	return existing, nil
}

// Delete removes a subject demand.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject demand")
	}
	return nil
}
