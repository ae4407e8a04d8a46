package scheduler

import (
	"fmt"

	"github.com/plusiam/sisu/internal/models"
)

// ValidationResult is the outcome of a duplicate scan over a slot set.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateTimetable runs two independent single-pass uniqueness scans over
// the final slot set: at most one lesson per (day, period, grade, class) and
// at most one per (teacher, day, period). The first slot seen for a key
// wins; every later collision on the same key adds one error naming both
// lessons. Purely diagnostic, the input is never mutated.
func ValidateTimetable(slots []models.TimetableSlot) ValidationResult {
	errors := []string{}

	classSeen := make(map[occupancyKey]models.TimetableSlot)
	for _, slot := range slots {
		key := occupancyKey{slot.Day, slot.Period, slot.Grade, slot.ClassNumber}
		if existing, ok := classSeen[key]; ok {
			errors = append(errors, fmt.Sprintf(
				"%d학년 %d반 %s %d교시: %s와 %s 중복",
				slot.Grade, slot.ClassNumber, slot.Day, slot.Period,
				existing.Subject, slot.Subject,
			))
		} else {
			classSeen[key] = slot
		}
	}

	type teacherKey struct {
		TeacherID string
		Day       models.DayOfWeek
		Period    int
	}
	teacherSeen := make(map[teacherKey]models.TimetableSlot)
	for _, slot := range slots {
		key := teacherKey{slot.TeacherID, slot.Day, slot.Period}
		if existing, ok := teacherSeen[key]; ok {
			errors = append(errors, fmt.Sprintf(
				"%s 선생님 %s %d교시: %d-%d과 %d-%d 중복",
				slot.TeacherName, slot.Day, slot.Period,
				existing.Grade, existing.ClassNumber, slot.Grade, slot.ClassNumber,
			))
		} else {
			teacherSeen[key] = slot
		}
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}
