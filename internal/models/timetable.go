package models

import "time"

// DayOfWeek is one of the five teaching days.
type DayOfWeek string

const (
	DayMon DayOfWeek = "mon"
	DayTue DayOfWeek = "tue"
	DayWed DayOfWeek = "wed"
	DayThu DayOfWeek = "thu"
	DayFri DayOfWeek = "fri"
)

// WeekDays lists the teaching days in natural order.
var WeekDays = []DayOfWeek{DayMon, DayTue, DayWed, DayThu, DayFri}

// DayLabels maps each day to its Korean display label.
var DayLabels = map[DayOfWeek]string{
	DayMon: "월",
	DayTue: "화",
	DayWed: "수",
	DayThu: "목",
	DayFri: "금",
}

// IsTeachingDay reports whether the value is one of mon..fri.
func (d DayOfWeek) IsTeachingDay() bool {
	_, ok := DayLabels[d]
	return ok
}

// TimetableSlot is one scheduled lesson: a (day, period, grade, class,
// teacher, subject) tuple. TeacherName is denormalized onto the slot for
// display only; the teacher record remains the source of truth and renames
// do not rewrite historical slots.
type TimetableSlot struct {
	ID          string    `db:"id" json:"id"`
	Day         DayOfWeek `db:"day" json:"day"`
	Period      int       `db:"period" json:"period"`
	Grade       int       `db:"grade" json:"grade"`
	ClassNumber int       `db:"class_number" json:"class_number"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	TeacherName string    `db:"teacher_name" json:"teacher_name"`
	Subject     string    `db:"subject" json:"subject"`
	Room        string    `db:"room" json:"room"`
	Note        string    `db:"note" json:"note"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TimetableFilter describes query params for listing slots.
type TimetableFilter struct {
	TeacherID   string
	Grade       *int
	ClassNumber *int
	Day         DayOfWeek
	Subject     string
}

// ConflictType classifies a slot collision.
type ConflictType string

const (
	ConflictClass   ConflictType = "class"
	ConflictTeacher ConflictType = "teacher"
	ConflictRoom    ConflictType = "room"
)

// SlotConflict describes one collision against existing slots.
type SlotConflict struct {
	Type    ConflictType    `json:"type"`
	Message string          `json:"message"`
	Slots   []TimetableSlot `json:"slots"`
}

// ConflictCheckResult aggregates collisions for a candidate slot.
type ConflictCheckResult struct {
	HasConflict bool           `json:"has_conflict"`
	Conflicts   []SlotConflict `json:"conflicts"`
}

// TimetableStats summarises a slot set for display.
type TimetableStats struct {
	TotalSlots int               `json:"total_slots"`
	ByDay      map[DayOfWeek]int `json:"by_day"`
	ByPeriod   map[int]int       `json:"by_period"`
	ByGrade    map[int]int       `json:"by_grade"`
}
