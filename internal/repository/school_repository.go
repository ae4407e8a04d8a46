package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/plusiam/sisu/internal/models"
)

// SchoolRepository manages the single school profile row.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs a SchoolRepository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

const schoolColumns = "id, name, year, semester, classes_by_grade, homeroom_standard_hours, specialist_standard_hours, master_reduction_rate, hours_tolerance, updated_at"

// Get returns the school profile. The table holds at most one row.
func (r *SchoolRepository) Get(ctx context.Context) (*models.SchoolProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM school_profile LIMIT 1", schoolColumns)
	var profile models.SchoolProfile
	if err := r.db.GetContext(ctx, &profile, query); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert writes the school profile, inserting on first save.
func (r *SchoolRepository) Upsert(ctx context.Context, profile *models.SchoolProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.UpdatedAt = time.Now().UTC()

	const query = `
		INSERT INTO school_profile (id, name, year, semester, classes_by_grade, homeroom_standard_hours, specialist_standard_hours, master_reduction_rate, hours_tolerance, updated_at)
		VALUES (:id, :name, :year, :semester, :classes_by_grade, :homeroom_standard_hours, :specialist_standard_hours, :master_reduction_rate, :hours_tolerance, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			year = EXCLUDED.year,
			semester = EXCLUDED.semester,
			classes_by_grade = EXCLUDED.classes_by_grade,
			homeroom_standard_hours = EXCLUDED.homeroom_standard_hours,
			specialist_standard_hours = EXCLUDED.specialist_standard_hours,
			master_reduction_rate = EXCLUDED.master_reduction_rate,
			hours_tolerance = EXCLUDED.hours_tolerance,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert school profile: %w", err)
	}
	return nil
}
