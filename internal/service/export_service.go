package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plusiam/sisu/internal/models"
	appErrors "github.com/plusiam/sisu/pkg/errors"
	"github.com/plusiam/sisu/pkg/export"
	"github.com/plusiam/sisu/pkg/jobs"
	"github.com/plusiam/sisu/pkg/storage"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportStatus tracks one export job through its lifecycle.
type ExportStatus string

const (
	ExportQueued     ExportStatus = "queued"
	ExportProcessing ExportStatus = "processing"
	ExportCompleted  ExportStatus = "completed"
	ExportFailed     ExportStatus = "failed"
)

// ExportRequest asks for one rendered timetable file. Without grade and
// class the whole timetable is exported as a flat list; with both set a
// single class grid is rendered.
type ExportRequest struct {
	Format      ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Grade       *int         `json:"grade" validate:"omitempty,min=1,max=6"`
	ClassNumber *int         `json:"class_number" validate:"omitempty,min=1,max=20"`
}

// ExportJob is the tracked state of one export.
type ExportJob struct {
	ID        string       `json:"id"`
	Format    ExportFormat `json:"format"`
	Status    ExportStatus `json:"status"`
	Filename  string       `json:"filename,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	request ExportRequest
}

type exportSlotReader interface {
	ListAll(ctx context.Context) ([]models.TimetableSlot, error)
}

type exportDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ExportService renders timetable exports through the background queue.
// Job state lives in memory: exports are cheap to regenerate and do not
// survive a restart on purpose.
type ExportService struct {
	slots     exportSlotReader
	store     *storage.LocalStorage
	queue     exportDispatcher
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*ExportJob
}

// NewExportService constructs an ExportService.
func NewExportService(slots exportSlotReader, store *storage.LocalStorage, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		slots:     slots,
		store:     store,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		jobs:      make(map[string]*ExportJob),
	}
}

// SetQueue wires the background dispatcher. Split from the constructor
// because the queue handler needs the service.
func (s *ExportService) SetQueue(queue exportDispatcher) {
	s.queue = queue
}

// CreateJob registers an export and enqueues its generation.
func (s *ExportService) CreateJob(ctx context.Context, req ExportRequest) (*ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	if (req.Grade == nil) != (req.ClassNumber == nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade and class number must be provided together")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "export queue is not running")
	}

	now := time.Now().UTC()
	job := &ExportJob{
		ID:        uuid.NewString(),
		Format:    req.Format,
		Status:    ExportQueued,
		CreatedAt: now,
		UpdatedAt: now,
		request:   req,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "timetable_export"}); err != nil {
		s.fail(job.ID, "failed to enqueue export")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}

	return s.snapshot(job.ID), nil
}

// GetJob returns the current job state.
func (s *ExportService) GetJob(id string) (*ExportJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// Download opens the rendered file for a completed job.
func (s *ExportService) Download(id string) (*os.File, string, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if job.Status != ExportCompleted {
		return nil, "", appErrors.Clone(appErrors.ErrPreconditionFailed, "export is not finished")
	}
	file, err := s.store.Open(job.Filename)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return file, job.Filename, nil
}

// Process is the queue handler: it renders and stores one export.
func (s *ExportService) Process(ctx context.Context, queued jobs.Job) error {
	job := s.snapshot(queued.ID)
	if job == nil {
		return fmt.Errorf("unknown export job %s", queued.ID)
	}
	s.transition(job.ID, ExportProcessing, "", "")

	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		s.fail(job.ID, "failed to load slots")
		return err
	}

	var dataset export.Dataset
	title := "주간 시간표"
	if job.request.Grade != nil && job.request.ClassNumber != nil {
		dataset = export.ClassGridDataset(slots, *job.request.Grade, *job.request.ClassNumber)
		title = fmt.Sprintf("%d학년 %d반 시간표", *job.request.Grade, *job.request.ClassNumber)
	} else {
		dataset = export.SlotListDataset(slots)
	}

	var payload []byte
	switch job.Format {
	case FormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.fail(job.ID, err.Error())
		return err
	}

	filename := fmt.Sprintf("timetable-%s.%s", job.ID, job.Format)
	if _, err := s.store.Save(filename, payload); err != nil {
		s.fail(job.ID, "failed to store export")
		return err
	}

	s.transition(job.ID, ExportCompleted, filename, "")
	s.logger.Info("export completed", zap.String("job_id", job.ID), zap.String("file", filename))
	return nil
}

func (s *ExportService) snapshot(id string) *ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ExportService) transition(id string, status ExportStatus, filename, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	job.UpdatedAt = time.Now().UTC()
	if filename != "" {
		job.Filename = filename
	}
	job.Error = errMsg
}

func (s *ExportService) fail(id, msg string) {
	s.transition(id, ExportFailed, "", msg)
}
