package models

import (
	"time"

	"github.com/lib/pq"
)

// TeacherRole distinguishes homeroom teachers from subject specialists.
type TeacherRole string

const (
	RoleHomeroom   TeacherRole = "homeroom"
	RoleSpecialist TeacherRole = "specialist"
)

// Teacher represents one roster entry. Homeroom teachers carry a single
// grade/class pair; specialists carry a set of grades and subjects. A
// specialist with empty grade or subject sets is considered unassigned and
// contributes no scheduling demand.
type Teacher struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Role         TeacherRole    `db:"role" json:"role"`
	Grade        *int           `db:"grade" json:"grade,omitempty"`
	ClassNumber  *int           `db:"class_number" json:"class_number,omitempty"`
	Grades       pq.Int64Array  `db:"grades" json:"grades"`
	Subjects     pq.StringArray `db:"subjects" json:"subjects"`
	OtherSubject *string        `db:"other_subject" json:"other_subject,omitempty"`
	Active       bool           `db:"active" json:"active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// IsSpecialist reports whether the teacher participates in auto-scheduling.
func (t Teacher) IsSpecialist() bool {
	return t.Role == RoleSpecialist
}

// GradeList returns the assigned grades as plain ints.
func (t Teacher) GradeList() []int {
	grades := make([]int, 0, len(t.Grades))
	for _, g := range t.Grades {
		grades = append(grades, int(g))
	}
	return grades
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Role      *TeacherRole
	Grade     *int
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
