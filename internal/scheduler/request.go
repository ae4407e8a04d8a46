package scheduler

import (
	"github.com/plusiam/sisu/internal/models"
)

// AssignmentRequest is one unit of scheduling demand: a specialist teacher
// who must deliver hoursNeeded weekly lessons of a subject to every class of
// a grade. Requests are derived fresh for each run and never persisted.
type AssignmentRequest struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	Subject     string `json:"subject"`
	Grade       int    `json:"grade"`
	HoursNeeded int    `json:"hours_needed"`
	DefaultRoom string `json:"default_room"`
}

// BuildRequests derives the demand list from the specialist roster and the
// subject-hours table. A subject with no configured hours for a grade still
// yields one weekly lesson: every assigned subject implies at least one hour
// unless the table explicitly says otherwise.
func BuildRequests(specialists []models.Teacher, demands []models.SubjectDemand, _ models.SchoolProfile) []AssignmentRequest {
	demandByName := make(map[string]models.SubjectDemand, len(demands))
	for _, d := range demands {
		demandByName[d.Name] = d
	}

	var requests []AssignmentRequest
	for _, teacher := range specialists {
		for _, grade := range teacher.GradeList() {
			for _, subject := range teacher.Subjects {
				hours := 1
				room := ""
				if info, ok := demandByName[subject]; ok {
					if configured, exists := info.HoursByGrade[grade]; exists {
						hours = configured
					}
					if info.DefaultRoom != nil {
						room = *info.DefaultRoom
					}
				}
				if hours <= 0 {
					continue
				}
				requests = append(requests, AssignmentRequest{
					TeacherID:   teacher.ID,
					TeacherName: teacher.Name,
					Subject:     subject,
					Grade:       grade,
					HoursNeeded: hours,
					DefaultRoom: room,
				})
			}
		}
	}
	return requests
}
