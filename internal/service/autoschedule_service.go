package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/plusiam/sisu/internal/models"
	"github.com/plusiam/sisu/internal/scheduler"
	appErrors "github.com/plusiam/sisu/pkg/errors"
)

type scheduleSlotRepository interface {
	ListAll(ctx context.Context) ([]models.TimetableSlot, error)
	BulkInsert(ctx context.Context, slots []models.TimetableSlot) error
}

type scheduleTeacherRepository interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type scheduleSubjectRepository interface {
	ListAll(ctx context.Context) ([]models.SubjectDemand, error)
}

type scheduleSchoolReader interface {
	Get(ctx context.Context) (*models.SchoolProfile, error)
}

// AutoScheduleRequest carries per-run options for one scheduling pass.
type AutoScheduleRequest struct {
	Constraints *scheduler.Constraints `json:"constraints"`
	Apply       bool                   `json:"apply"`
}

// AutoScheduleService snapshots current state, runs the placement engine
// and optionally persists the outcome.
type AutoScheduleService struct {
	slots         scheduleSlotRepository
	teachers      scheduleTeacherRepository
	subjects      scheduleSubjectRepository
	school        scheduleSchoolReader
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	defaultLimits *scheduler.Constraints
}

// NewAutoScheduleService constructs an AutoScheduleService.
func NewAutoScheduleService(
	slots scheduleSlotRepository,
	teachers scheduleTeacherRepository,
	subjects scheduleSubjectRepository,
	school scheduleSchoolReader,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AutoScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoScheduleService{
		slots:     slots,
		teachers:  teachers,
		subjects:  subjects,
		school:    school,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// SetDefaultLimits installs configured placement limits for runs that do
// not carry their own.
func (s *AutoScheduleService) SetDefaultLimits(maxConsecutive, maxPerDay int) {
	s.defaultLimits = &scheduler.Constraints{MaxConsecutive: maxConsecutive, MaxPerDay: maxPerDay}
}

func (s *AutoScheduleService) effectiveConstraints(override *scheduler.Constraints) *scheduler.Constraints {
	if override == nil {
		return s.defaultLimits
	}
	if s.defaultLimits == nil {
		return override
	}
	merged := *override
	if merged.MaxConsecutive <= 0 {
		merged.MaxConsecutive = s.defaultLimits.MaxConsecutive
	}
	if merged.MaxPerDay <= 0 {
		merged.MaxPerDay = s.defaultLimits.MaxPerDay
	}
	return &merged
}

// Run executes one scheduling pass over a consistent snapshot. With Apply
// set, the placed slots are stored in one batch; a preview run persists
// nothing.
func (s *AutoScheduleService) Run(ctx context.Context, req AutoScheduleRequest) (*scheduler.Result, error) {
	start := time.Now()

	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	existing, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}
	demands, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject demands")
	}
	school, err := s.school.Get(ctx)
	if err != nil {
		return nil, err
	}

	result := scheduler.Run(teachers, existing, demands, *school, s.effectiveConstraints(req.Constraints))

	s.metrics.RecordScheduleRun(len(result.Slots), len(result.Unassigned), time.Since(start))
	s.logger.Info("auto-schedule run",
		zap.Bool("success", result.Success),
		zap.Bool("apply", req.Apply),
		zap.Int("assigned", len(result.Slots)),
		zap.Int("unassigned", len(result.Unassigned)),
	)

	if req.Apply && len(result.Slots) > 0 {
		// The timetable may have changed since the snapshot above. Reload
		// and re-validate the merged set so a slot created mid-run cannot
		// become a silent double booking.
		current, err := s.slots.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload slots")
		}
		merged := make([]models.TimetableSlot, 0, len(current)+len(result.Slots))
		merged = append(merged, current...)
		merged = append(merged, result.Slots...)
		if check := scheduler.ValidateTimetable(merged); !check.Valid {
			s.logger.Warn("timetable changed during scheduling run",
				zap.Strings("violations", check.Errors),
			)
			return nil, appErrors.Clone(appErrors.ErrSlotConflict, "시간표가 변경되어 배정 결과를 저장할 수 없습니다. 다시 실행해 주세요.")
		}
		if err := s.slots.BulkInsert(ctx, result.Slots); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist scheduled slots")
		}
		if err := s.cache.Invalidate(ctx, timetableCachePattern); err != nil {
			s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
		}
	}

	return &result, nil
}
