package export

import (
	"fmt"
	"sort"

	"github.com/plusiam/sisu/internal/models"
)

// SlotListDataset renders the slot set as one flat table, one lesson per
// row, ordered by day then period.
func SlotListDataset(slots []models.TimetableSlot) Dataset {
	headers := []string{"요일", "교시", "학년", "반", "과목", "교사", "교실"}

	ordered := make([]models.TimetableSlot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Day != b.Day {
			return dayIndex(a.Day) < dayIndex(b.Day)
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		if a.Grade != b.Grade {
			return a.Grade < b.Grade
		}
		return a.ClassNumber < b.ClassNumber
	})

	rows := make([]map[string]string, 0, len(ordered))
	for _, slot := range ordered {
		rows = append(rows, map[string]string{
			"요일": models.DayLabels[slot.Day],
			"교시": fmt.Sprintf("%d", slot.Period),
			"학년": fmt.Sprintf("%d", slot.Grade),
			"반":  fmt.Sprintf("%d", slot.ClassNumber),
			"과목": slot.Subject,
			"교사": slot.TeacherName,
			"교실": slot.Room,
		})
	}

	return Dataset{Headers: headers, Rows: rows}
}

// ClassGridDataset renders one class's week as a 6x5 grid, periods down the
// side and days across the top.
func ClassGridDataset(slots []models.TimetableSlot, grade, classNumber int) Dataset {
	headers := []string{"교시"}
	for _, day := range models.WeekDays {
		headers = append(headers, models.DayLabels[day])
	}

	cells := make(map[models.DayOfWeek]map[int]string)
	for _, slot := range slots {
		if slot.Grade != grade || slot.ClassNumber != classNumber {
			continue
		}
		if cells[slot.Day] == nil {
			cells[slot.Day] = make(map[int]string)
		}
		label := slot.Subject
		if slot.TeacherName != "" {
			label = fmt.Sprintf("%s (%s)", slot.Subject, slot.TeacherName)
		}
		cells[slot.Day][slot.Period] = label
	}

	rows := make([]map[string]string, 0, 6)
	for period := 1; period <= 6; period++ {
		row := map[string]string{"교시": fmt.Sprintf("%d교시", period)}
		for _, day := range models.WeekDays {
			row[models.DayLabels[day]] = cells[day][period]
		}
		rows = append(rows, row)
	}

	return Dataset{Headers: headers, Rows: rows}
}

func dayIndex(day models.DayOfWeek) int {
	for i, d := range models.WeekDays {
		if d == day {
			return i
		}
	}
	return len(models.WeekDays)
}
