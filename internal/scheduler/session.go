package scheduler

import (
	"sort"

	"github.com/plusiam/sisu/internal/models"
)

// periodsPerDay is fixed at six. The search loop deliberately ignores any
// configured period table; see the package documentation for the rationale.
const periodsPerDay = 6

type occupancyKey struct {
	Day         models.DayOfWeek
	Period      int
	Grade       int
	ClassNumber int
}

type timeKey struct {
	Day    models.DayOfWeek
	Period int
}

// session owns the two occupancy indexes threaded through one scheduling
// run: class-slot occupancy and per-teacher timeslot usage. Every successful
// placement is registered immediately so later placements, for any request,
// observe it. A session lives exactly as long as one call to Run.
type session struct {
	occupied    map[occupancyKey]struct{}
	teacherBusy map[string]map[timeKey]struct{}
	dayCount    map[string]map[models.DayOfWeek]int
	dayPeriods  map[string]map[models.DayOfWeek][]int
}

func newSession(existing []models.TimetableSlot) *session {
	s := &session{
		occupied:    make(map[occupancyKey]struct{}),
		teacherBusy: make(map[string]map[timeKey]struct{}),
		dayCount:    make(map[string]map[models.DayOfWeek]int),
		dayPeriods:  make(map[string]map[models.DayOfWeek][]int),
	}
	for _, slot := range existing {
		s.register(slot)
	}
	return s
}

func (s *session) register(slot models.TimetableSlot) {
	s.occupied[occupancyKey{slot.Day, slot.Period, slot.Grade, slot.ClassNumber}] = struct{}{}

	if s.teacherBusy[slot.TeacherID] == nil {
		s.teacherBusy[slot.TeacherID] = make(map[timeKey]struct{})
	}
	s.teacherBusy[slot.TeacherID][timeKey{slot.Day, slot.Period}] = struct{}{}

	if s.dayCount[slot.TeacherID] == nil {
		s.dayCount[slot.TeacherID] = make(map[models.DayOfWeek]int)
	}
	s.dayCount[slot.TeacherID][slot.Day]++

	if s.dayPeriods[slot.TeacherID] == nil {
		s.dayPeriods[slot.TeacherID] = make(map[models.DayOfWeek][]int)
	}
	s.dayPeriods[slot.TeacherID][slot.Day] = append(s.dayPeriods[slot.TeacherID][slot.Day], slot.Period)
}

func (s *session) classOccupied(day models.DayOfWeek, period, grade, classNumber int) bool {
	_, ok := s.occupied[occupancyKey{day, period, grade, classNumber}]
	return ok
}

func (s *session) teacherOccupied(teacherID string, day models.DayOfWeek, period int) bool {
	_, ok := s.teacherBusy[teacherID][timeKey{day, period}]
	return ok
}

// findSlot searches for one free (day, period) for the request and class.
// Days are tried least-loaded first for the requesting teacher, ties keeping
// natural weekday order; within a day periods run 1..6. Returns false when
// every combination is exhausted.
func (s *session) findSlot(req AssignmentRequest, classNumber int, constraints Constraints) (models.DayOfWeek, int, bool) {
	dayOrder := make([]models.DayOfWeek, len(models.WeekDays))
	copy(dayOrder, models.WeekDays)
	counts := s.dayCount[req.TeacherID]
	sort.SliceStable(dayOrder, func(i, j int) bool {
		return counts[dayOrder[i]] < counts[dayOrder[j]]
	})

	for _, day := range dayOrder {
		if counts[day] >= constraints.MaxPerDay {
			continue
		}
		if constraints.blackedOut(req.TeacherID, day) {
			continue
		}
		for period := 1; period <= periodsPerDay; period++ {
			if s.classOccupied(day, period, req.Grade, classNumber) {
				continue
			}
			if s.teacherOccupied(req.TeacherID, day, period) {
				continue
			}
			if !s.consecutiveOK(req.TeacherID, day, period, constraints.MaxConsecutive) {
				continue
			}
			return day, period, true
		}
	}
	return "", 0, false
}

// consecutiveOK accepts the candidate period iff the teacher's longest run
// of back-to-back periods on that day, candidate included, stays within the
// cap. Recomputed fresh per candidate; at most six periods per day makes
// that cheap.
func (s *session) consecutiveOK(teacherID string, day models.DayOfWeek, period, maxConsecutive int) bool {
	existing := s.dayPeriods[teacherID][day]
	periods := make([]int, 0, len(existing)+1)
	periods = append(periods, existing...)
	periods = append(periods, period)
	sort.Ints(periods)

	run := 1
	longest := 1
	for i := 1; i < len(periods); i++ {
		if periods[i] == periods[i-1]+1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest <= maxConsecutive
}
