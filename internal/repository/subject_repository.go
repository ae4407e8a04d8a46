package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/plusiam/sisu/internal/models"
)

// SubjectRepository manages persistence for subject demand rows.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = "id, name, hours_by_grade, default_room, note, created_at, updated_at"

// List returns subject demands matching filters along with total count.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectDemandFilter) ([]models.SubjectDemand, int, error) {
	base := "FROM subject_demands WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	allowedSorts := map[string]string{
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", subjectColumns, base, column, order, size, offset)
	var demands []models.SubjectDemand
	if err := r.db.SelectContext(ctx, &demands, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subject demands: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subject demands: %w", err)
	}

	return demands, total, nil
}

// ListAll returns every subject demand. Scheduler snapshots use this.
func (r *SubjectRepository) ListAll(ctx context.Context) ([]models.SubjectDemand, error) {
	query := fmt.Sprintf("SELECT %s FROM subject_demands ORDER BY name ASC", subjectColumns)
	var demands []models.SubjectDemand
	if err := r.db.SelectContext(ctx, &demands, query); err != nil {
		return nil, fmt.Errorf("list all subject demands: %w", err)
	}
	return demands, nil
}

// FindByID fetches a subject demand by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.SubjectDemand, error) {
	query := fmt.Sprintf("SELECT %s FROM subject_demands WHERE id = $1", subjectColumns)
	var demand models.SubjectDemand
	if err := r.db.GetContext(ctx, &demand, query, id); err != nil {
		return nil, err
	}
	return &demand, nil
}

// ExistsByName checks if another demand row uses the same subject name.
func (r *SubjectRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT COUNT(*) FROM subject_demands WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check subject name: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new subject demand row.
func (r *SubjectRepository) Create(ctx context.Context, demand *models.SubjectDemand) error {
	if demand.ID == "" {
		demand.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	demand.CreatedAt = now
	demand.UpdatedAt = now

	const query = `
		INSERT INTO subject_demands (id, name, hours_by_grade, default_room, note, created_at, updated_at)
		VALUES (:id, :name, :hours_by_grade, :default_room, :note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, demand); err != nil {
		return fmt.Errorf("create subject demand: %w", err)
	}
	return nil
}

// Update rewrites an existing subject demand row.
func (r *SubjectRepository) Update(ctx context.Context, demand *models.SubjectDemand) error {
	demand.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE subject_demands SET
			name = :name,
			hours_by_grade = :hours_by_grade,
			default_room = :default_room,
			note = :note,
			updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, demand); err != nil {
		return fmt.Errorf("update subject demand: %w", err)
	}
	return nil
}

// Delete removes a subject demand row.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM subject_demands WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete subject demand: %w", err)
	}
	return nil
}
