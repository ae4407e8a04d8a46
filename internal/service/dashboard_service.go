package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/plusiam/sisu/internal/models"
	appErrors "github.com/plusiam/sisu/pkg/errors"
)

// WorkloadStatus classifies a teacher's hours against their standard.
type WorkloadStatus string

const (
	WorkloadOver   WorkloadStatus = "over"
	WorkloadNormal WorkloadStatus = "normal"
	WorkloadUnder  WorkloadStatus = "under"
)

// TeacherWorkload is one teacher's placed hours against their standard.
// Difference is positive when over and negative when under.
type TeacherWorkload struct {
	Teacher       models.Teacher `json:"teacher"`
	TotalHours    int            `json:"total_hours"`
	StandardHours int            `json:"standard_hours"`
	Difference    int            `json:"difference"`
	Status        WorkloadStatus `json:"status"`
}

// DashboardStats aggregates school-wide workload numbers.
type DashboardStats struct {
	TotalTeachers   int `json:"total_teachers"`
	HomeroomCount   int `json:"homeroom_count"`
	SpecialistCount int `json:"specialist_count"`

	TotalSchoolHours     int `json:"total_school_hours"`
	HomeroomTotalHours   int `json:"homeroom_total_hours"`
	SpecialistTotalHours int `json:"specialist_total_hours"`

	HomeroomAvgHours   float64 `json:"homeroom_avg_hours"`
	SpecialistAvgHours float64 `json:"specialist_avg_hours"`

	UnderHoursCount int `json:"under_hours_count"`
	OverHoursCount  int `json:"over_hours_count"`
	TotalUnderHours int `json:"total_under_hours"`
	TotalOverHours  int `json:"total_over_hours"`

	AssignedCount  int `json:"assigned_count"`
	AssignmentRate int `json:"assignment_rate"`

	TeacherStatuses []TeacherWorkload `json:"teacher_statuses"`
}

type dashboardSlotReader interface {
	ListAll(ctx context.Context) ([]models.TimetableSlot, error)
}

type dashboardTeacherReader interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type dashboardSchoolReader interface {
	Get(ctx context.Context) (*models.SchoolProfile, error)
}

// DashboardService computes the workload dashboard from stored slots.
type DashboardService struct {
	slots    dashboardSlotReader
	teachers dashboardTeacherReader
	school   dashboardSchoolReader
	cache    *CacheService
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(slots dashboardSlotReader, teachers dashboardTeacherReader, school dashboardSchoolReader, cache *CacheService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{slots: slots, teachers: teachers, school: school, cache: cache, logger: logger}
}

const dashboardCacheKey = "sisu:timetable:dashboard"

// Stats computes the dashboard, serving from cache when possible.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var cached DashboardStats
	if hit, _ := s.cache.Get(ctx, dashboardCacheKey, &cached); hit {
		return &cached, nil
	}

	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}
	school, err := s.school.Get(ctx)
	if err != nil {
		return nil, err
	}

	stats := buildDashboardStats(teachers, slots, *school)
	_ = s.cache.Set(ctx, dashboardCacheKey, stats, 0)
	return stats, nil
}

func buildDashboardStats(teachers []models.Teacher, slots []models.TimetableSlot, school models.SchoolProfile) *DashboardStats {
	hoursByTeacher := make(map[string]int)
	for _, slot := range slots {
		hoursByTeacher[slot.TeacherID]++
	}

	stats := &DashboardStats{
		TotalTeachers:   len(teachers),
		TeacherStatuses: []TeacherWorkload{},
	}

	tolerance := school.HoursTolerance

	for _, teacher := range teachers {
		if teacher.Role == models.RoleHomeroom {
			stats.HomeroomCount++
		} else {
			stats.SpecialistCount++
		}

		standard := standardHours(school, teacher)
		total := hoursByTeacher[teacher.ID]
		if total > 0 {
			stats.AssignedCount++
		}

		difference := total - standard
		status := WorkloadNormal
		if difference > tolerance {
			status = WorkloadOver
			stats.OverHoursCount++
			stats.TotalOverHours += difference
		} else if difference < -tolerance {
			status = WorkloadUnder
			stats.UnderHoursCount++
			stats.TotalUnderHours += -difference
		}

		if teacher.Role == models.RoleHomeroom {
			stats.HomeroomTotalHours += total
		} else {
			stats.SpecialistTotalHours += total
		}

		stats.TeacherStatuses = append(stats.TeacherStatuses, TeacherWorkload{
			Teacher:       teacher,
			TotalHours:    total,
			StandardHours: standard,
			Difference:    difference,
			Status:        status,
		})
	}

	// Shortfalls first, then overages, then whoever is fine; within a group
	// the biggest deviation leads.
	statusOrder := map[WorkloadStatus]int{WorkloadUnder: 0, WorkloadOver: 1, WorkloadNormal: 2}
	sort.SliceStable(stats.TeacherStatuses, func(i, j int) bool {
		a, b := stats.TeacherStatuses[i], stats.TeacherStatuses[j]
		if statusOrder[a.Status] != statusOrder[b.Status] {
			return statusOrder[a.Status] < statusOrder[b.Status]
		}
		return abs(a.Difference) > abs(b.Difference)
	})

	stats.TotalSchoolHours = stats.HomeroomTotalHours + stats.SpecialistTotalHours
	if stats.HomeroomCount > 0 {
		stats.HomeroomAvgHours = roundTenth(float64(stats.HomeroomTotalHours) / float64(stats.HomeroomCount))
	}
	if stats.SpecialistCount > 0 {
		stats.SpecialistAvgHours = roundTenth(float64(stats.SpecialistTotalHours) / float64(stats.SpecialistCount))
	}
	if len(teachers) > 0 {
		stats.AssignmentRate = int(math.Round(float64(stats.AssignedCount) / float64(len(teachers)) * 100))
	}

	return stats
}

// standardHours resolves the weekly standard for one teacher. Master
// teachers are recognized by name, matching the legacy data where no
// dedicated flag exists.
func standardHours(school models.SchoolProfile, teacher models.Teacher) int {
	base := school.SpecialistStandard
	if teacher.Role == models.RoleHomeroom {
		base = school.HomeroomStandard
	}
	if strings.Contains(teacher.Name, "수석") && school.MasterReductionRate > 0 {
		return int(math.Round(float64(base) * (1 - float64(school.MasterReductionRate)/100)))
	}
	return base
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
