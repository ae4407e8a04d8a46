package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plusiam/sisu/internal/models"
	appErrors "github.com/plusiam/sisu/pkg/errors"
)

type memSlotRepo struct {
	slots map[string]models.TimetableSlot
}

func newMemSlotRepo(slots ...models.TimetableSlot) *memSlotRepo {
	repo := &memSlotRepo{slots: map[string]models.TimetableSlot{}}
	for _, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		repo.slots[slot.ID] = slot
	}
	return repo
}

func (r *memSlotRepo) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableSlot, error) {
	return r.ListAll(ctx)
}

func (r *memSlotRepo) ListAll(ctx context.Context) ([]models.TimetableSlot, error) {
	out := make([]models.TimetableSlot, 0, len(r.slots))
	for _, slot := range r.slots {
		out = append(out, slot)
	}
	return out, nil
}

func (r *memSlotRepo) FindByID(ctx context.Context, id string) (*models.TimetableSlot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &slot, nil
}

func (r *memSlotRepo) Create(ctx context.Context, slot *models.TimetableSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	r.slots[slot.ID] = *slot
	return nil
}

func (r *memSlotRepo) BulkInsert(ctx context.Context, slots []models.TimetableSlot) error {
	for _, slot := range slots {
		if err := r.Create(ctx, &slot); err != nil {
			return err
		}
	}
	return nil
}

func (r *memSlotRepo) Update(ctx context.Context, slot *models.TimetableSlot) error {
	r.slots[slot.ID] = *slot
	return nil
}

func (r *memSlotRepo) Delete(ctx context.Context, id string) error {
	delete(r.slots, id)
	return nil
}

func (r *memSlotRepo) Clear(ctx context.Context) error {
	r.slots = map[string]models.TimetableSlot{}
	return nil
}

type memTeacherReader struct {
	teachers map[string]models.Teacher
}

func (r *memTeacherReader) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, ok := r.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &teacher, nil
}

func (r *memTeacherReader) ListActive(ctx context.Context) ([]models.Teacher, error) {
	out := make([]models.Teacher, 0, len(r.teachers))
	for _, teacher := range r.teachers {
		out = append(out, teacher)
	}
	return out, nil
}

func timetableFixture(existing ...models.TimetableSlot) (*TimetableService, *memSlotRepo) {
	repo := newMemSlotRepo(existing...)
	teachers := &memTeacherReader{teachers: map[string]models.Teacher{
		"t-1": {ID: "t-1", Name: "김전담", Role: models.RoleSpecialist, Active: true},
		"t-2": {ID: "t-2", Name: "박전담", Role: models.RoleSpecialist, Active: true},
	}}
	return NewTimetableService(repo, teachers, nil, nil, nil), repo
}

func TestTimetableCreateDenormalizesTeacherName(t *testing.T) {
	svc, repo := timetableFixture()

	slot, check, err := svc.Create(context.Background(), SlotRequest{
		Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "t-1", Subject: "음악",
	})
	require.NoError(t, err)
	assert.False(t, check.HasConflict)
	assert.Equal(t, "김전담", slot.TeacherName)
	assert.Len(t, repo.slots, 1)
}

func TestTimetableCreateConflictBlocksWithoutForce(t *testing.T) {
	svc, repo := timetableFixture(models.TimetableSlot{
		ID: "s-1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "t-2", TeacherName: "박전담", Subject: "체육",
	})

	_, check, err := svc.Create(context.Background(), SlotRequest{
		Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "t-1", Subject: "음악",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrSlotConflict.Code, appErr.Code)

	require.NotNil(t, check, "conflict details accompany the rejection")
	assert.True(t, check.HasConflict)
	assert.Len(t, repo.slots, 1, "nothing saved on conflict")
}

func TestTimetableCreateForceOverridesConflict(t *testing.T) {
	svc, repo := timetableFixture(models.TimetableSlot{
		ID: "s-1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "t-2", TeacherName: "박전담", Subject: "체육",
	})

	slot, check, err := svc.Create(context.Background(), SlotRequest{
		Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "t-1", Subject: "음악", Force: true,
	})
	require.NoError(t, err)
	assert.True(t, check.HasConflict, "conflict is still reported")
	assert.NotEmpty(t, slot.ID)
	assert.Len(t, repo.slots, 2)
}

func TestTimetableUpdateExcludesSelf(t *testing.T) {
	svc, _ := timetableFixture(models.TimetableSlot{
		ID: "s-1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "t-1", TeacherName: "김전담", Subject: "음악",
	})

	// Rewriting a slot in place must not conflict with its stored copy.
	slot, check, err := svc.Update(context.Background(), "s-1", SlotRequest{
		Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "t-1", Subject: "미술",
	})
	require.NoError(t, err)
	assert.False(t, check.HasConflict)
	assert.Equal(t, "s-1", slot.ID)
	assert.Equal(t, "미술", slot.Subject)
}

func TestTimetableCreateUnknownTeacher(t *testing.T) {
	svc, _ := timetableFixture()

	_, _, err := svc.Create(context.Background(), SlotRequest{
		Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "missing", Subject: "음악",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTimetableGetNotFound(t *testing.T) {
	svc, _ := timetableFixture()

	_, err := svc.Get(context.Background(), "nope")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTimetableStats(t *testing.T) {
	svc, _ := timetableFixture(
		models.TimetableSlot{ID: "s-1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1, TeacherID: "t-1", Subject: "음악"},
		models.TimetableSlot{ID: "s-2", Day: models.DayMon, Period: 2, Grade: 4, ClassNumber: 1, TeacherID: "t-1", Subject: "음악"},
		models.TimetableSlot{ID: "s-3", Day: models.DayFri, Period: 1, Grade: 3, ClassNumber: 2, TeacherID: "t-2", Subject: "체육"},
	)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSlots)
	assert.Equal(t, 2, stats.ByDay[models.DayMon])
	assert.Equal(t, 1, stats.ByDay[models.DayFri])
	assert.Equal(t, 2, stats.ByPeriod[1])
	assert.Equal(t, 2, stats.ByGrade[3])
}
