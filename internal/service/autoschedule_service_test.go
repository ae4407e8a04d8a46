package service

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plusiam/sisu/internal/models"
	appErrors "github.com/plusiam/sisu/pkg/errors"
)

type stubScheduleStore struct {
	teachers []models.Teacher
	slots    []models.TimetableSlot
	demands  []models.SubjectDemand
	school   models.SchoolProfile

	inserted []models.TimetableSlot

	// lateSlots show up from the second ListAll on, standing in for rows
	// written by another request while a run is in flight.
	lateSlots []models.TimetableSlot
	listCalls int
}

func (s *stubScheduleStore) ListActive(ctx context.Context) ([]models.Teacher, error) {
	return s.teachers, nil
}

func (s *stubScheduleStore) ListAll(ctx context.Context) ([]models.TimetableSlot, error) {
	s.listCalls++
	if s.listCalls > 1 && len(s.lateSlots) > 0 {
		merged := make([]models.TimetableSlot, 0, len(s.slots)+len(s.lateSlots))
		merged = append(merged, s.slots...)
		merged = append(merged, s.lateSlots...)
		return merged, nil
	}
	return s.slots, nil
}

func (s *stubScheduleStore) BulkInsert(ctx context.Context, slots []models.TimetableSlot) error {
	s.inserted = append(s.inserted, slots...)
	return nil
}

type stubDemandStore struct {
	demands []models.SubjectDemand
}

func (s *stubDemandStore) ListAll(ctx context.Context) ([]models.SubjectDemand, error) {
	return s.demands, nil
}

type stubSchoolStore struct {
	school models.SchoolProfile
}

func (s *stubSchoolStore) Get(ctx context.Context) (*models.SchoolProfile, error) {
	copied := s.school
	return &copied, nil
}

func scheduleFixture() (*stubScheduleStore, *stubDemandStore, *stubSchoolStore) {
	store := &stubScheduleStore{
		teachers: []models.Teacher{
			{ID: "t-1", Name: "김전담", Role: models.RoleSpecialist, Grades: pq.Int64Array{3, 4}, Subjects: pq.StringArray{"음악"}, Active: true},
		},
	}
	demands := &stubDemandStore{
		demands: []models.SubjectDemand{
			{ID: "d-1", Name: "음악", HoursByGrade: models.GradeHours{3: 2, 4: 2}},
		},
	}
	school := &stubSchoolStore{
		school: models.SchoolProfile{Name: "테스트초", ClassesByGrade: models.GradeHours{3: 2, 4: 1}},
	}
	return store, demands, school
}

func TestAutoScheduleRunPreview(t *testing.T) {
	store, demands, school := scheduleFixture()
	svc := NewAutoScheduleService(store, store, demands, school, nil, nil, nil, nil)

	result, err := svc.Run(context.Background(), AutoScheduleRequest{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Slots, 6)
	assert.Empty(t, store.inserted, "preview runs must not persist anything")
}

func TestAutoScheduleRunApply(t *testing.T) {
	store, demands, school := scheduleFixture()
	svc := NewAutoScheduleService(store, store, demands, school, nil, nil, nil, nil)

	result, err := svc.Run(context.Background(), AutoScheduleRequest{Apply: true})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, store.inserted, 6)
}

func TestAutoScheduleRunApplyRejectsMidRunConflict(t *testing.T) {
	store, demands, school := scheduleFixture()
	svc := NewAutoScheduleService(store, store, demands, school, nil, nil, nil, nil)

	// Placement is deterministic for a fixed snapshot, so a preview tells
	// us where the apply run will put its first lesson.
	preview, err := svc.Run(context.Background(), AutoScheduleRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, preview.Slots)
	taken := preview.Slots[0]

	store2, demands2, school2 := scheduleFixture()
	store2.lateSlots = []models.TimetableSlot{
		{
			ID:          "slot-race",
			TeacherID:   "t-2",
			TeacherName: "박교사",
			Subject:     "영어",
			Grade:       taken.Grade,
			ClassNumber: taken.ClassNumber,
			Day:         taken.Day,
			Period:      taken.Period,
		},
	}
	svc2 := NewAutoScheduleService(store2, store2, demands2, school2, nil, nil, nil, nil)

	_, err = svc2.Run(context.Background(), AutoScheduleRequest{Apply: true})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrSlotConflict.Code, appErr.Code)
	assert.Empty(t, store2.inserted, "a stale run must not persist anything")
}

func TestAutoScheduleRunNoSpecialists(t *testing.T) {
	store, demands, school := scheduleFixture()
	store.teachers = nil
	svc := NewAutoScheduleService(store, store, demands, school, nil, nil, nil, nil)

	result, err := svc.Run(context.Background(), AutoScheduleRequest{Apply: true})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, store.inserted)
	assert.Equal(t, "등록된 전담교사가 없습니다.", result.Message)
}
