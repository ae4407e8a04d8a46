package service

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/plusiam/sisu/internal/models"
	appErrors "github.com/plusiam/sisu/pkg/errors"
	"github.com/plusiam/sisu/pkg/sheets"
)

// SheetClient abstracts the spreadsheet backup backend.
type SheetClient interface {
	Fetch(ctx context.Context) ([]sheets.RosterRow, error)
	Push(ctx context.Context, rows []sheets.RosterRow) error
}

type syncTeacherRepository interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
	ReplaceAll(ctx context.Context, teachers []models.Teacher) error
}

// SyncResult reports the outcome of one sync direction.
type SyncResult struct {
	Direction string    `json:"direction"`
	RowCount  int       `json:"row_count"`
	SyncedAt  time.Time `json:"synced_at"`
}

// SyncService moves the roster between the database and the sheet backup.
type SyncService struct {
	client   SheetClient
	teachers syncTeacherRepository
	logger   *zap.Logger
}

// NewSyncService constructs a SyncService.
func NewSyncService(client SheetClient, teachers syncTeacherRepository, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{client: client, teachers: teachers, logger: logger}
}

// Enabled reports whether a sheet backend is configured.
func (s *SyncService) Enabled() bool {
	return s != nil && s.client != nil
}

// Pull fetches the sheet roster and replaces the local one. All-or-nothing:
// a failed fetch leaves the database untouched.
func (s *SyncService) Pull(ctx context.Context) (*SyncResult, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "sheet sync is not configured")
	}

	rows, err := s.client.Fetch(ctx)
	if err != nil {
		s.logger.Warn("roster pull failed", zap.Error(err))
		return nil, err
	}

	teachers := make([]models.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, teacherFromRow(row))
	}

	if err := s.teachers.ReplaceAll(ctx, teachers); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store pulled roster")
	}

	s.logger.Info("roster pulled from sheet", zap.Int("rows", len(rows)))
	return &SyncResult{Direction: "pull", RowCount: len(rows), SyncedAt: time.Now().UTC()}, nil
}

// Push mirrors the local roster into the sheet.
func (s *SyncService) Push(ctx context.Context) (*SyncResult, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "sheet sync is not configured")
	}

	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	rows := make([]sheets.RosterRow, 0, len(teachers))
	for _, teacher := range teachers {
		rows = append(rows, rowFromTeacher(teacher))
	}

	if err := s.client.Push(ctx, rows); err != nil {
		s.logger.Warn("roster push failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("roster pushed to sheet", zap.Int("rows", len(rows)))
	return &SyncResult{Direction: "push", RowCount: len(rows), SyncedAt: time.Now().UTC()}, nil
}

func teacherFromRow(row sheets.RosterRow) models.Teacher {
	teacher := models.Teacher{
		ID:     row.ID,
		Name:   row.Name,
		Role:   models.TeacherRole(row.Type),
		Active: true,
	}
	if teacher.Role != models.RoleHomeroom && teacher.Role != models.RoleSpecialist {
		teacher.Role = models.RoleSpecialist
	}
	if teacher.Role == models.RoleHomeroom {
		teacher.Grade = row.Grade
		teacher.ClassNumber = row.ClassNumber
	} else {
		grades := make(pq.Int64Array, 0, len(row.Grades))
		for _, g := range row.Grades {
			grades = append(grades, int64(g))
		}
		teacher.Grades = grades
		teacher.Subjects = pq.StringArray(row.Subjects)
	}
	if row.Notes != "" {
		notes := row.Notes
		teacher.OtherSubject = &notes
	}
	return teacher
}

func rowFromTeacher(teacher models.Teacher) sheets.RosterRow {
	row := sheets.RosterRow{
		ID:        teacher.ID,
		Name:      teacher.Name,
		Type:      string(teacher.Role),
		UpdatedAt: teacher.UpdatedAt.Unix(),
	}
	if teacher.Role == models.RoleHomeroom {
		row.Grade = teacher.Grade
		row.ClassNumber = teacher.ClassNumber
	} else {
		row.Grades = teacher.GradeList()
		row.Subjects = []string(teacher.Subjects)
	}
	if teacher.OtherSubject != nil {
		row.Notes = *teacher.OtherSubject
	}
	return row
}
