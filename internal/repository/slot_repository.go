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

// SlotRepository manages persistence for timetable slots.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs a SlotRepository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

const slotColumns = "id, day, period, grade, class_number, teacher_id, teacher_name, subject, room, note, created_at, updated_at"

// List returns slots matching the filter. No pagination: one school week is
// bounded by days x periods x classes and always fits in one response.
func (r *SlotRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableSlot, error) {
	base := fmt.Sprintf("SELECT %s FROM timetable_slots WHERE 1=1", slotColumns)
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Grade != nil {
		conditions = append(conditions, fmt.Sprintf("grade = $%d", len(args)+1))
		args = append(args, *filter.Grade)
	}
	if filter.ClassNumber != nil {
		conditions = append(conditions, fmt.Sprintf("class_number = $%d", len(args)+1))
		args = append(args, *filter.ClassNumber)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}

	query := base
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY day ASC, period ASC, grade ASC, class_number ASC"

	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

// ListAll returns the full slot set in stable order.
func (r *SlotRepository) ListAll(ctx context.Context) ([]models.TimetableSlot, error) {
	return r.List(ctx, models.TimetableFilter{})
}

// FindByID fetches a slot by ID.
func (r *SlotRepository) FindByID(ctx context.Context, id string) (*models.TimetableSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_slots WHERE id = $1", slotColumns)
	var slot models.TimetableSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts a new slot row.
func (r *SlotRepository) Create(ctx context.Context, slot *models.TimetableSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	const query = `
		INSERT INTO timetable_slots (id, day, period, grade, class_number, teacher_id, teacher_name, subject, room, note, created_at, updated_at)
		VALUES (:id, :day, :period, :grade, :class_number, :teacher_id, :teacher_name, :subject, :room, :note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create timetable slot: %w", err)
	}
	return nil
}

// BulkInsert stores a batch of slots inside one transaction. The
// auto-scheduler apply path uses this so a failed batch leaves nothing
// behind.
func (r *SlotRepository) BulkInsert(ctx context.Context, slots []models.TimetableSlot) error {
	if len(slots) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin slot batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `
		INSERT INTO timetable_slots (id, day, period, grade, class_number, teacher_id, teacher_name, subject, room, note, created_at, updated_at)
		VALUES (:id, :day, :period, :grade, :class_number, :teacher_id, :teacher_name, :subject, :room, :note, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		slots[i].CreatedAt = now
		slots[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, slots[i]); err != nil {
			return fmt.Errorf("insert slot batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit slot batch: %w", err)
	}
	return nil
}

// Update rewrites an existing slot row.
func (r *SlotRepository) Update(ctx context.Context, slot *models.TimetableSlot) error {
	slot.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE timetable_slots SET
			day = :day,
			period = :period,
			grade = :grade,
			class_number = :class_number,
			teacher_id = :teacher_id,
			teacher_name = :teacher_name,
			subject = :subject,
			room = :room,
			note = :note,
			updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update timetable slot: %w", err)
	}
	return nil
}

// Delete removes a slot row.
func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM timetable_slots WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete timetable slot: %w", err)
	}
	return nil
}

// DeleteByTeacher removes every slot belonging to one teacher.
func (r *SlotRepository) DeleteByTeacher(ctx context.Context, teacherID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM timetable_slots WHERE teacher_id = $1", teacherID); err != nil {
		return fmt.Errorf("delete teacher slots: %w", err)
	}
	return nil
}

// Clear wipes the whole timetable.
func (r *SlotRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM timetable_slots"); err != nil {
		return fmt.Errorf("clear timetable: %w", err)
	}
	return nil
}
