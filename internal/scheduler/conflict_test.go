package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plusiam/sisu/internal/models"
)

func TestCheckConflictsClass(t *testing.T) {
	existing := []models.TimetableSlot{
		{ID: "s1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1, TeacherID: "t-kim", TeacherName: "김전담", Subject: "음악"},
	}
	candidate := models.TimetableSlot{
		Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "t-park", TeacherName: "박전담", Subject: "체육",
	}

	result := CheckConflicts(existing, candidate, "")

	assert.True(t, result.HasConflict)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictClass, result.Conflicts[0].Type)
	assert.Equal(t, "3학년 1반은 이미 음악 수업이 배정되어 있습니다.", result.Conflicts[0].Message)
}

func TestCheckConflictsTeacher(t *testing.T) {
	existing := []models.TimetableSlot{
		{ID: "s1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1, TeacherID: "t-kim", TeacherName: "김전담", Subject: "음악"},
	}
	candidate := models.TimetableSlot{
		Day: models.DayMon, Period: 1, Grade: 4, ClassNumber: 2,
		TeacherID: "t-kim", TeacherName: "김전담", Subject: "음악",
	}

	result := CheckConflicts(existing, candidate, "")

	assert.True(t, result.HasConflict)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictTeacher, result.Conflicts[0].Type)
	assert.Equal(t, "김전담 선생님은 이미 3학년 1반 수업이 있습니다.", result.Conflicts[0].Message)
}

func TestCheckConflictsRoom(t *testing.T) {
	existing := []models.TimetableSlot{
		{ID: "s1", Day: models.DayWed, Period: 3, Grade: 5, ClassNumber: 1, TeacherID: "t-kim", TeacherName: "김전담", Subject: "음악", Room: "음악실"},
	}
	candidate := models.TimetableSlot{
		Day: models.DayWed, Period: 3, Grade: 6, ClassNumber: 2,
		TeacherID: "t-park", TeacherName: "박전담", Subject: "음악", Room: "음악실",
	}

	result := CheckConflicts(existing, candidate, "")

	assert.True(t, result.HasConflict)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictRoom, result.Conflicts[0].Type)
	assert.Equal(t, "음악실은 이미 5학년 1반이 사용 중입니다.", result.Conflicts[0].Message)
}

func TestCheckConflictsRoomSkippedWhenUnset(t *testing.T) {
	existing := []models.TimetableSlot{
		{ID: "s1", Day: models.DayWed, Period: 3, Grade: 5, ClassNumber: 1, TeacherID: "t-kim", TeacherName: "김전담", Subject: "음악", Room: "음악실"},
	}
	candidate := models.TimetableSlot{
		Day: models.DayWed, Period: 3, Grade: 6, ClassNumber: 2,
		TeacherID: "t-park", TeacherName: "박전담", Subject: "체육",
	}

	result := CheckConflicts(existing, candidate, "")

	assert.False(t, result.HasConflict)
	assert.Empty(t, result.Conflicts)
}

func TestCheckConflictsDifferentTime(t *testing.T) {
	existing := []models.TimetableSlot{
		{ID: "s1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1, TeacherID: "t-kim", TeacherName: "김전담", Subject: "음악"},
	}
	candidate := models.TimetableSlot{
		Day: models.DayTue, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "t-kim", TeacherName: "김전담", Subject: "음악",
	}

	result := CheckConflicts(existing, candidate, "")

	assert.False(t, result.HasConflict)
}

func TestCheckConflictsExcludesSelf(t *testing.T) {
	existing := []models.TimetableSlot{
		{ID: "s1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1, TeacherID: "t-kim", TeacherName: "김전담", Subject: "음악", Room: "음악실"},
	}
	// Editing s1 in place must not collide with its own stored copy.
	candidate := models.TimetableSlot{
		ID: "s1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1,
		TeacherID: "t-kim", TeacherName: "김전담", Subject: "음악", Room: "음악실",
	}

	result := CheckConflicts(existing, candidate, "s1")

	assert.False(t, result.HasConflict)
}

func TestCheckConflictsReportsAllTypes(t *testing.T) {
	existing := []models.TimetableSlot{
		{ID: "s1", Day: models.DayFri, Period: 2, Grade: 3, ClassNumber: 1, TeacherID: "t-kim", TeacherName: "김전담", Subject: "음악"},
		{ID: "s2", Day: models.DayFri, Period: 2, Grade: 4, ClassNumber: 1, TeacherID: "t-park", TeacherName: "박전담", Subject: "체육", Room: "강당"},
	}
	candidate := models.TimetableSlot{
		Day: models.DayFri, Period: 2, Grade: 3, ClassNumber: 1,
		TeacherID: "t-park", TeacherName: "박전담", Subject: "체육", Room: "강당",
	}

	result := CheckConflicts(existing, candidate, "")

	assert.True(t, result.HasConflict)
	require.Len(t, result.Conflicts, 3)
	types := []models.ConflictType{result.Conflicts[0].Type, result.Conflicts[1].Type, result.Conflicts[2].Type}
	assert.Equal(t, []models.ConflictType{models.ConflictClass, models.ConflictTeacher, models.ConflictRoom}, types)
}
