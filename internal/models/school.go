package models

import "time"

// SchoolProfile holds the single school configuration row: identity, shape
// (class counts per grade) and workload policy values. Grades with a zero
// class count are skipped entirely by the scheduler.
type SchoolProfile struct {
	ID                  string     `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	Year                int        `db:"year" json:"year"`
	Semester            int        `db:"semester" json:"semester"`
	ClassesByGrade      GradeHours `db:"classes_by_grade" json:"classes_by_grade"`
	HomeroomStandard    int        `db:"homeroom_standard_hours" json:"homeroom_standard_hours"`
	SpecialistStandard  int        `db:"specialist_standard_hours" json:"specialist_standard_hours"`
	MasterReductionRate int        `db:"master_reduction_rate" json:"master_reduction_rate"`
	HoursTolerance      int        `db:"hours_tolerance" json:"hours_tolerance"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// ClassCount returns the number of classes configured for a grade.
func (s SchoolProfile) ClassCount(grade int) int {
	return s.ClassesByGrade[grade]
}

// DefaultSchoolProfile mirrors the first-run defaults: 22 weekly standard
// hours for homeroom teachers and 20 for specialists.
func DefaultSchoolProfile() SchoolProfile {
	return SchoolProfile{
		Name:               "",
		Year:               time.Now().Year(),
		Semester:           1,
		ClassesByGrade:     GradeHours{},
		HomeroomStandard:   22,
		SpecialistStandard: 20,
	}
}
