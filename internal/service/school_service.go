package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/plusiam/sisu/internal/models"
	appErrors "github.com/plusiam/sisu/pkg/errors"
)

type schoolRepository interface {
	Get(ctx context.Context) (*models.SchoolProfile, error)
	Upsert(ctx context.Context, profile *models.SchoolProfile) error
}

// SchoolProfileRequest represents payload for saving the school profile.
type SchoolProfileRequest struct {
	Name                string      `json:"name" validate:"required,min=1,max=50"`
	Year                int         `json:"year" validate:"required,min=2000,max=2100"`
	Semester            int         `json:"semester" validate:"required,min=1,max=2"`
	ClassesByGrade      map[int]int `json:"classes_by_grade" validate:"omitempty,dive,keys,min=1,max=6,endkeys,min=0,max=20"`
	HomeroomStandard    *int        `json:"homeroom_standard_hours" validate:"omitempty,min=1,max=40"`
	SpecialistStandard  *int        `json:"specialist_standard_hours" validate:"omitempty,min=1,max=40"`
	MasterReductionRate *int        `json:"master_reduction_rate" validate:"omitempty,min=0,max=100"`
	HoursTolerance      *int        `json:"hours_tolerance" validate:"omitempty,min=0,max=10"`
}

// SchoolService manages the single school profile.
type SchoolService struct {
	repo      schoolRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolService constructs a SchoolService.
func NewSchoolService(repo schoolRepository, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{repo: repo, validator: validate, logger: logger}
}

// Get returns the school profile, falling back to first-run defaults when
// no profile has been saved yet.
func (s *SchoolService) Get(ctx context.Context) (*models.SchoolProfile, error) {
	profile, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := models.DefaultSchoolProfile()
			return &defaults, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	return profile, nil
}

// Save writes the school profile, preserving unprovided policy values.
func (s *SchoolService) Save(ctx context.Context, req SchoolProfileRequest) (*models.SchoolProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school profile payload")
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	current.Name = req.Name
	current.Year = req.Year
	current.Semester = req.Semester
	current.ClassesByGrade = models.GradeHours(req.ClassesByGrade)
	if current.ClassesByGrade == nil {
		current.ClassesByGrade = models.GradeHours{}
	}
	if req.HomeroomStandard != nil {
		current.HomeroomStandard = *req.HomeroomStandard
	}
	if req.SpecialistStandard != nil {
		current.SpecialistStandard = *req.SpecialistStandard
	}
	if req.MasterReductionRate != nil {
		current.MasterReductionRate = *req.MasterReductionRate
	}
	if req.HoursTolerance != nil {
		current.HoursTolerance = *req.HoursTolerance
	}

	if err := s.repo.Upsert(ctx, current); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save school profile")
	}
	return current, nil
}
