package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plusiam/sisu/internal/models"
)

func dashboardSchool() models.SchoolProfile {
	return models.SchoolProfile{
		HomeroomStandard:    21,
		SpecialistStandard:  20,
		MasterReductionRate: 50,
		HoursTolerance:      2,
	}
}

func slotsFor(teacherID string, count int) []models.TimetableSlot {
	slots := make([]models.TimetableSlot, 0, count)
	days := []models.DayOfWeek{"mon", "tue", "wed", "thu", "fri"}
	for i := 0; i < count; i++ {
		slots = append(slots, models.TimetableSlot{
			TeacherID: teacherID,
			Day:       days[i%len(days)],
			Period:    i/len(days) + 1,
			Grade:     3,
			Subject:   "음악",
		})
	}
	return slots
}

func TestBuildDashboardStatsClassification(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "t-over", Name: "박전담", Role: models.RoleSpecialist},
		{ID: "t-normal", Name: "이전담", Role: models.RoleSpecialist},
		{ID: "t-under", Name: "최전담", Role: models.RoleSpecialist},
	}
	var slots []models.TimetableSlot
	slots = append(slots, slotsFor("t-over", 24)...)
	slots = append(slots, slotsFor("t-normal", 21)...)
	slots = append(slots, slotsFor("t-under", 10)...)

	stats := buildDashboardStats(teachers, slots, dashboardSchool())

	require.Len(t, stats.TeacherStatuses, 3)
	assert.Equal(t, 1, stats.OverHoursCount)
	assert.Equal(t, 1, stats.UnderHoursCount)
	assert.Equal(t, 4, stats.TotalOverHours)
	assert.Equal(t, 10, stats.TotalUnderHours)

	// Under first, over next, normal last.
	assert.Equal(t, "t-under", stats.TeacherStatuses[0].Teacher.ID)
	assert.Equal(t, WorkloadUnder, stats.TeacherStatuses[0].Status)
	assert.Equal(t, "t-over", stats.TeacherStatuses[1].Teacher.ID)
	assert.Equal(t, WorkloadOver, stats.TeacherStatuses[1].Status)
	assert.Equal(t, "t-normal", stats.TeacherStatuses[2].Teacher.ID)
	assert.Equal(t, WorkloadNormal, stats.TeacherStatuses[2].Status)
}

func TestBuildDashboardStatsToleranceBoundary(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "t-edge", Name: "정전담", Role: models.RoleSpecialist},
	}
	// Exactly tolerance above the standard still counts as normal.
	stats := buildDashboardStats(teachers, slotsFor("t-edge", 22), dashboardSchool())

	require.Len(t, stats.TeacherStatuses, 1)
	assert.Equal(t, WorkloadNormal, stats.TeacherStatuses[0].Status)
	assert.Equal(t, 2, stats.TeacherStatuses[0].Difference)
}

func TestStandardHoursMasterReduction(t *testing.T) {
	school := dashboardSchool()

	master := models.Teacher{Name: "김수석", Role: models.RoleSpecialist}
	assert.Equal(t, 10, standardHours(school, master))

	regular := models.Teacher{Name: "김전담", Role: models.RoleSpecialist}
	assert.Equal(t, 20, standardHours(school, regular))

	homeroom := models.Teacher{Name: "이담임", Role: models.RoleHomeroom}
	assert.Equal(t, 21, standardHours(school, homeroom))
}

func TestBuildDashboardStatsAveragesAndRate(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "h-1", Name: "담임A", Role: models.RoleHomeroom},
		{ID: "h-2", Name: "담임B", Role: models.RoleHomeroom},
		{ID: "s-1", Name: "전담A", Role: models.RoleSpecialist},
		{ID: "s-2", Name: "전담B", Role: models.RoleSpecialist},
	}
	var slots []models.TimetableSlot
	slots = append(slots, slotsFor("h-1", 21)...)
	slots = append(slots, slotsFor("h-2", 20)...)
	slots = append(slots, slotsFor("s-1", 19)...)

	stats := buildDashboardStats(teachers, slots, dashboardSchool())

	assert.Equal(t, 2, stats.HomeroomCount)
	assert.Equal(t, 2, stats.SpecialistCount)
	assert.Equal(t, 41, stats.HomeroomTotalHours)
	assert.Equal(t, 19, stats.SpecialistTotalHours)
	assert.Equal(t, 60, stats.TotalSchoolHours)
	assert.InDelta(t, 20.5, stats.HomeroomAvgHours, 0.001)
	assert.InDelta(t, 9.5, stats.SpecialistAvgHours, 0.001)
	assert.Equal(t, 3, stats.AssignedCount)
	assert.Equal(t, 75, stats.AssignmentRate)
}

func TestBuildDashboardStatsEmpty(t *testing.T) {
	stats := buildDashboardStats(nil, nil, dashboardSchool())

	assert.Equal(t, 0, stats.TotalTeachers)
	assert.Equal(t, 0, stats.AssignmentRate)
	assert.NotNil(t, stats.TeacherStatuses)
	assert.Empty(t, stats.TeacherStatuses)
}
