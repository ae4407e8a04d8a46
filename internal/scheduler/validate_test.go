package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plusiam/sisu/internal/models"
)

func TestValidateTimetableClean(t *testing.T) {
	slots := []models.TimetableSlot{
		{ID: "s1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1, TeacherID: "t-1", TeacherName: "김전담", Subject: "음악"},
		{ID: "s2", Day: models.DayMon, Period: 2, Grade: 3, ClassNumber: 1, TeacherID: "t-1", TeacherName: "김전담", Subject: "음악"},
		{ID: "s3", Day: models.DayMon, Period: 1, Grade: 4, ClassNumber: 1, TeacherID: "t-2", TeacherName: "이전담", Subject: "체육"},
	}

	result := ValidateTimetable(slots)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateTimetableClassDuplicate(t *testing.T) {
	slots := []models.TimetableSlot{
		{ID: "s1", Day: models.DayTue, Period: 3, Grade: 5, ClassNumber: 2, TeacherID: "t-1", TeacherName: "김전담", Subject: "음악"},
		{ID: "s2", Day: models.DayTue, Period: 3, Grade: 5, ClassNumber: 2, TeacherID: "t-2", TeacherName: "이전담", Subject: "체육"},
	}

	result := ValidateTimetable(slots)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "5학년 2반 tue 3교시: 음악와 체육 중복", result.Errors[0])
}

func TestValidateTimetableTeacherDuplicate(t *testing.T) {
	slots := []models.TimetableSlot{
		{ID: "s1", Day: models.DayThu, Period: 2, Grade: 3, ClassNumber: 1, TeacherID: "t-1", TeacherName: "김전담", Subject: "음악"},
		{ID: "s2", Day: models.DayThu, Period: 2, Grade: 4, ClassNumber: 2, TeacherID: "t-1", TeacherName: "김전담", Subject: "음악"},
	}

	result := ValidateTimetable(slots)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "김전담 선생님 thu 2교시: 3-1과 4-2 중복", result.Errors[0])
}

func TestValidateTimetableEachLaterCollisionCounts(t *testing.T) {
	// Three slots on one class key: the second and third each pair against
	// the first occurrence.
	slots := []models.TimetableSlot{
		{ID: "s1", Day: models.DayFri, Period: 1, Grade: 1, ClassNumber: 1, TeacherID: "t-1", TeacherName: "김전담", Subject: "음악"},
		{ID: "s2", Day: models.DayFri, Period: 1, Grade: 1, ClassNumber: 1, TeacherID: "t-2", TeacherName: "이전담", Subject: "체육"},
		{ID: "s3", Day: models.DayFri, Period: 1, Grade: 1, ClassNumber: 1, TeacherID: "t-3", TeacherName: "박전담", Subject: "영어"},
	}

	result := ValidateTimetable(slots)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "1학년 1반 fri 1교시: 음악와 체육 중복", result.Errors[0])
	assert.Equal(t, "1학년 1반 fri 1교시: 음악와 영어 중복", result.Errors[1])
}

func TestValidateTimetableEmpty(t *testing.T) {
	result := ValidateTimetable(nil)

	assert.True(t, result.Valid)
	assert.NotNil(t, result.Errors)
}
