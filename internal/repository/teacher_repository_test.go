package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/plusiam/sisu/internal/models"
)

func newTeacherRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func teacherRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "role", "grade", "class_number", "grades", "subjects", "other_subject", "active", "created_at", "updated_at"}).
		AddRow("t-1", "김전담", "specialist", nil, nil, pq.Int64Array{3, 4}, pq.StringArray{"음악"}, nil, true, time.Now(), time.Now())
}

func TestTeacherRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE active = TRUE ORDER BY created_at ASC")).
		WillReturnRows(teacherRows())

	teachers, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	require.Equal(t, []int{3, 4}, teachers[0].GradeList())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListFiltersByRole(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	role := models.RoleSpecialist
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE 1=1 AND role = $1")).
		WithArgs(role).
		WillReturnRows(teacherRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE 1=1 AND role = $1")).
		WithArgs(role).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	teachers, total, err := repo.List(context.Background(), models.TeacherFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers").
		WillReturnResult(sqlmock.NewResult(0, 1))

	teacher := &models.Teacher{
		Name:     "박전담",
		Role:     models.RoleSpecialist,
		Grades:   pq.Int64Array{5},
		Subjects: pq.StringArray{"영어"},
		Active:   true,
	}
	require.NoError(t, repo.Create(context.Background(), teacher))
	require.NotEmpty(t, teacher.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryReplaceAllTransactional(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers")).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO teachers").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	teachers := []models.Teacher{
		{Name: "김전담", Role: models.RoleSpecialist, Grades: pq.Int64Array{3}, Subjects: pq.StringArray{"음악"}, Active: true},
	}
	require.NoError(t, repo.ReplaceAll(context.Background(), teachers))
	require.NoError(t, mock.ExpectationsWereMet())
}
