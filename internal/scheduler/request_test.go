package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plusiam/sisu/internal/models"
)

func TestBuildRequestsGrid(t *testing.T) {
	specialists := []models.Teacher{
		specialist("t-1", "김전담", []int64{3, 4}, []string{"음악", "창체"}),
	}
	demands := []models.SubjectDemand{
		demand("음악", models.GradeHours{3: 2, 4: 2}, "음악실"),
	}

	requests := BuildRequests(specialists, demands, school(models.GradeHours{3: 2, 4: 2}))

	require.Len(t, requests, 4, "one request per grade x subject")
	assert.Equal(t, AssignmentRequest{
		TeacherID: "t-1", TeacherName: "김전담", Subject: "음악",
		Grade: 3, HoursNeeded: 2, DefaultRoom: "음악실",
	}, requests[0])

	for _, req := range requests {
		if req.Subject == "창체" {
			assert.Equal(t, 1, req.HoursNeeded, "absent demand entry defaults to one hour")
			assert.Empty(t, req.DefaultRoom)
		}
	}
}

func TestBuildRequestsExplicitZeroSkips(t *testing.T) {
	specialists := []models.Teacher{
		specialist("t-1", "김전담", []int64{3, 4}, []string{"음악"}),
	}
	demands := []models.SubjectDemand{
		demand("음악", models.GradeHours{3: 0, 4: 2}, ""),
	}

	requests := BuildRequests(specialists, demands, school(models.GradeHours{3: 2, 4: 2}))

	require.Len(t, requests, 1)
	assert.Equal(t, 4, requests[0].Grade)
}

func TestBuildRequestsGradeMissingFromTableDefaults(t *testing.T) {
	specialists := []models.Teacher{
		specialist("t-1", "김전담", []int64{6}, []string{"음악"}),
	}
	demands := []models.SubjectDemand{
		demand("음악", models.GradeHours{3: 2}, ""),
	}

	requests := BuildRequests(specialists, demands, school(models.GradeHours{6: 1}))

	require.Len(t, requests, 1)
	assert.Equal(t, 1, requests[0].HoursNeeded)
}

func TestBuildRequestsEmptyRoster(t *testing.T) {
	requests := BuildRequests(nil, nil, school(models.GradeHours{1: 1}))
	assert.Empty(t, requests)
}
