package scheduler

import (
	"fmt"

	"github.com/plusiam/sisu/internal/models"
)

// CheckConflicts tests a candidate slot against the given slot collection.
// The three collision classes are evaluated independently, so one candidate
// can report several conflicts at once. excludeID skips the slot being
// edited so that saving a slot in place never collides with itself. The
// result is advisory; whether to block a save is the caller's policy.
func CheckConflicts(slots []models.TimetableSlot, candidate models.TimetableSlot, excludeID string) models.ConflictCheckResult {
	conflicts := []models.SlotConflict{}

	for _, s := range slots {
		if excludeID != "" && s.ID == excludeID {
			continue
		}
		if s.Day == candidate.Day && s.Period == candidate.Period &&
			s.Grade == candidate.Grade && s.ClassNumber == candidate.ClassNumber {
			conflicts = append(conflicts, models.SlotConflict{
				Type:    models.ConflictClass,
				Message: fmt.Sprintf("%d학년 %d반은 이미 %s 수업이 배정되어 있습니다.", candidate.Grade, candidate.ClassNumber, s.Subject),
				Slots:   []models.TimetableSlot{s},
			})
			break
		}
	}

	for _, s := range slots {
		if excludeID != "" && s.ID == excludeID {
			continue
		}
		if s.TeacherID == candidate.TeacherID && s.Day == candidate.Day && s.Period == candidate.Period {
			conflicts = append(conflicts, models.SlotConflict{
				Type:    models.ConflictTeacher,
				Message: fmt.Sprintf("%s 선생님은 이미 %d학년 %d반 수업이 있습니다.", candidate.TeacherName, s.Grade, s.ClassNumber),
				Slots:   []models.TimetableSlot{s},
			})
			break
		}
	}

	if candidate.Room != "" {
		for _, s := range slots {
			if excludeID != "" && s.ID == excludeID {
				continue
			}
			if s.Room == candidate.Room && s.Day == candidate.Day && s.Period == candidate.Period {
				conflicts = append(conflicts, models.SlotConflict{
					Type:    models.ConflictRoom,
					Message: fmt.Sprintf("%s은 이미 %d학년 %d반이 사용 중입니다.", candidate.Room, s.Grade, s.ClassNumber),
					Slots:   []models.TimetableSlot{s},
				})
				break
			}
		}
	}

	return models.ConflictCheckResult{
		HasConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}
}
