package scheduler

import (
	"github.com/plusiam/sisu/internal/models"
)

// HoursSummary aggregates one specialist's placed lessons.
type HoursSummary struct {
	TeacherID   string                   `json:"teacher_id"`
	TeacherName string                   `json:"teacher_name"`
	TotalHours  int                      `json:"total_hours"`
	ByDay       map[models.DayOfWeek]int `json:"by_day"`
	ByGrade     map[int]int              `json:"by_grade"`
}

// SummarizeTeacherHours computes per-specialist weekly totals broken down by
// day and grade. Input order of teachers is preserved; homeroom teachers are
// skipped. Display-only, no constraint evaluation happens here.
func SummarizeTeacherHours(slots []models.TimetableSlot, teachers []models.Teacher) []HoursSummary {
	summaries := []HoursSummary{}
	for _, teacher := range teachers {
		if !teacher.IsSpecialist() {
			continue
		}
		summary := HoursSummary{
			TeacherID:   teacher.ID,
			TeacherName: teacher.Name,
			ByDay: map[models.DayOfWeek]int{
				models.DayMon: 0, models.DayTue: 0, models.DayWed: 0,
				models.DayThu: 0, models.DayFri: 0,
			},
			ByGrade: map[int]int{},
		}
		for _, slot := range slots {
			if slot.TeacherID != teacher.ID {
				continue
			}
			summary.TotalHours++
			summary.ByDay[slot.Day]++
			summary.ByGrade[slot.Grade]++
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
