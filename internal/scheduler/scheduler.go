// Package scheduler implements the weekly auto-assignment engine for
// specialist teachers: a deterministic greedy heuristic that places each
// demand into the least-loaded free (day, period) without collisions. It is
// deliberately not a constraint solver; demand that cannot be placed is
// reported, not retried. The search always covers periods 1 through 6 per
// day regardless of the school's configured period table.
package scheduler

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/plusiam/sisu/internal/models"
)

// TeacherBlackout marks a whole day as unavailable for one teacher.
type TeacherBlackout struct {
	TeacherID string           `json:"teacher_id"`
	Day       models.DayOfWeek `json:"day"`
}

// SubjectRoomRequirement pins a subject to a room. Declared for parity with
// the constraint payload but never consulted during placement: rooms are
// filled from the demand's default room only and the auto-scheduler performs
// no room-collision checks. Known limitation.
type SubjectRoomRequirement struct {
	Subject string `json:"subject"`
	Room    string `json:"room"`
}

// Constraints bound one scheduling run.
type Constraints struct {
	MaxConsecutive          int                      `json:"max_consecutive"`
	MaxPerDay               int                      `json:"max_per_day"`
	TeacherUnavailable      []TeacherBlackout        `json:"teacher_unavailable"`
	SubjectRoomRequirements []SubjectRoomRequirement `json:"subject_room_requirements"`
}

// DefaultConstraints returns the standard limits: at most four consecutive
// periods and six lessons per day.
func DefaultConstraints() Constraints {
	return Constraints{MaxConsecutive: 4, MaxPerDay: 6}
}

func (c Constraints) blackedOut(teacherID string, day models.DayOfWeek) bool {
	for _, b := range c.TeacherUnavailable {
		if b.TeacherID == teacherID && b.Day == day {
			return true
		}
	}
	return false
}

func mergeConstraints(override *Constraints) Constraints {
	merged := DefaultConstraints()
	if override == nil {
		return merged
	}
	if override.MaxConsecutive > 0 {
		merged.MaxConsecutive = override.MaxConsecutive
	}
	if override.MaxPerDay > 0 {
		merged.MaxPerDay = override.MaxPerDay
	}
	merged.TeacherUnavailable = override.TeacherUnavailable
	merged.SubjectRoomRequirements = override.SubjectRoomRequirements
	return merged
}

// UnassignedLesson records demand that could not be placed for one class.
type UnassignedLesson struct {
	TeacherID   string `json:"teacher_id"`
	Subject     string `json:"subject"`
	Grade       int    `json:"grade"`
	ClassNumber int    `json:"class_number"`
	Reason      string `json:"reason"`
}

// Result is the outcome of one scheduling run. Slots contains only the
// newly placed lessons; merging them into the existing set is the caller's
// responsibility. Success means every request was fully placed.
type Result struct {
	Success    bool                   `json:"success"`
	Slots      []models.TimetableSlot `json:"slots"`
	Unassigned []UnassignedLesson     `json:"unassigned"`
	Message    string                 `json:"message"`
}

var hoursPattern = regexp.MustCompile(`(\d+)시수`)

// Run executes the auto-assignment pass. It never fails for "no slot found";
// shortfalls are reported through Unassigned. Inputs are read-only snapshots
// and the two occupancy indexes live only for the duration of this call, so
// concurrent runs cannot interfere.
func Run(
	teachers []models.Teacher,
	existingSlots []models.TimetableSlot,
	demands []models.SubjectDemand,
	school models.SchoolProfile,
	constraints *Constraints,
) Result {
	var specialists []models.Teacher
	for _, t := range teachers {
		if t.IsSpecialist() {
			specialists = append(specialists, t)
		}
	}
	if len(specialists) == 0 {
		return Result{
			Success:    false,
			Slots:      []models.TimetableSlot{},
			Unassigned: []UnassignedLesson{},
			Message:    "등록된 전담교사가 없습니다.",
		}
	}

	merged := mergeConstraints(constraints)

	requests := BuildRequests(specialists, demands, school)
	if len(requests) == 0 {
		return Result{
			Success:    true,
			Slots:      []models.TimetableSlot{},
			Unassigned: []UnassignedLesson{},
			Message:    "배정할 수업이 없습니다.",
		}
	}

	// Largest demands first so small requests cannot starve them; ties keep
	// input order.
	sorted := make([]AssignmentRequest, len(requests))
	copy(sorted, requests)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].HoursNeeded > sorted[j].HoursNeeded
	})

	sess := newSession(existingSlots)
	newSlots := []models.TimetableSlot{}
	unassigned := []UnassignedLesson{}

	for _, request := range sorted {
		classCount := school.ClassCount(request.Grade)
		if classCount == 0 {
			continue
		}
		for classNumber := 1; classNumber <= classCount; classNumber++ {
			assigned := 0
			for attempt := 0; attempt < request.HoursNeeded; attempt++ {
				day, period, ok := sess.findSlot(request, classNumber, merged)
				if !ok {
					continue
				}
				slot := models.TimetableSlot{
					ID:          uuid.NewString(),
					Day:         day,
					Period:      period,
					Grade:       request.Grade,
					ClassNumber: classNumber,
					TeacherID:   request.TeacherID,
					TeacherName: request.TeacherName,
					Subject:     request.Subject,
					Room:        request.DefaultRoom,
				}
				newSlots = append(newSlots, slot)
				sess.register(slot)
				assigned++
			}
			if assigned < request.HoursNeeded {
				unassigned = append(unassigned, UnassignedLesson{
					TeacherID:   request.TeacherID,
					Subject:     request.Subject,
					Grade:       request.Grade,
					ClassNumber: classNumber,
					Reason:      fmt.Sprintf("%d시수 미배정 (충돌 또는 빈 슬롯 부족)", request.HoursNeeded-assigned),
				})
			}
		}
	}

	totalUnassigned := 0
	for _, u := range unassigned {
		if m := hoursPattern.FindStringSubmatch(u.Reason); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				totalUnassigned += n
			}
		}
	}

	message := fmt.Sprintf("%d시수 배정 완료", len(newSlots))
	if totalUnassigned > 0 {
		message += fmt.Sprintf(", %d시수 미배정", totalUnassigned)
	}

	return Result{
		Success:    len(unassigned) == 0,
		Slots:      newSlots,
		Unassigned: unassigned,
		Message:    message,
	}
}
