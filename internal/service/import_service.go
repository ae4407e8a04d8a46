package service

import (
	"context"
	"io"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/plusiam/sisu/internal/models"
	appErrors "github.com/plusiam/sisu/pkg/errors"
	"github.com/plusiam/sisu/pkg/importer"
)

type importTeacherRepository interface {
	ReplaceAll(ctx context.Context, teachers []models.Teacher) error
}

type importSubjectRepository interface {
	ListAll(ctx context.Context) ([]models.SubjectDemand, error)
	Create(ctx context.Context, demand *models.SubjectDemand) error
	Update(ctx context.Context, demand *models.SubjectDemand) error
}

// ImportSummary reports what an upload changed.
type ImportSummary struct {
	RosterRows  int `json:"roster_rows,omitempty"`
	DemandsNew  int `json:"demands_new,omitempty"`
	DemandsKept int `json:"demands_updated,omitempty"`
}

// ImportService loads legacy .xls exports into the database.
type ImportService struct {
	teachers importTeacherRepository
	subjects importSubjectRepository
	logger   *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(teachers importTeacherRepository, subjects importSubjectRepository, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{teachers: teachers, subjects: subjects, logger: logger}
}

// ImportRoster replaces the roster with the uploaded sheet contents.
func (s *ImportService) ImportRoster(ctx context.Context, file io.ReadSeeker) (*ImportSummary, error) {
	records, err := importer.ParseRoster(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "roster sheet could not be parsed")
	}

	teachers := make([]models.Teacher, 0, len(records))
	for _, record := range records {
		teacher := models.Teacher{
			Name:   record.Name,
			Role:   models.TeacherRole(record.Role),
			Active: true,
		}
		if teacher.Role == models.RoleHomeroom {
			teacher.Grade = record.Grade
			teacher.ClassNumber = record.ClassNumber
		} else {
			grades := make(pq.Int64Array, 0, len(record.Grades))
			for _, g := range record.Grades {
				grades = append(grades, int64(g))
			}
			teacher.Grades = grades
			teacher.Subjects = pq.StringArray(record.Subjects)
		}
		teachers = append(teachers, teacher)
	}

	if err := s.teachers.ReplaceAll(ctx, teachers); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store imported roster")
	}

	s.logger.Info("roster imported", zap.Int("rows", len(teachers)))
	return &ImportSummary{RosterRows: len(teachers)}, nil
}

// ImportDemands merges the uploaded demand table into existing demands,
// matching rows by subject name.
func (s *ImportService) ImportDemands(ctx context.Context, file io.ReadSeeker) (*ImportSummary, error) {
	records, err := importer.ParseDemands(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "demand sheet could not be parsed")
	}

	existing, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject demands")
	}
	byName := make(map[string]*models.SubjectDemand, len(existing))
	for i := range existing {
		byName[existing[i].Name] = &existing[i]
	}

	summary := &ImportSummary{}
	for _, record := range records {
		hours := models.GradeHours(record.HoursByGrade)
		if current, ok := byName[record.Subject]; ok {
			current.HoursByGrade = hours
			if record.DefaultRoom != "" {
				room := record.DefaultRoom
				current.DefaultRoom = &room
			}
			if err := s.subjects.Update(ctx, current); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject demand")
			}
			summary.DemandsKept++
			continue
		}

		demand := &models.SubjectDemand{Name: record.Subject, HoursByGrade: hours}
		if record.DefaultRoom != "" {
			room := record.DefaultRoom
			demand.DefaultRoom = &room
		}
		if err := s.subjects.Create(ctx, demand); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject demand")
		}
		summary.DemandsNew++
	}

	s.logger.Info("demand table imported", zap.Int("new", summary.DemandsNew), zap.Int("updated", summary.DemandsKept))
	return summary, nil
}
