package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GradeHours maps a grade (1-6) to a weekly count. Stored as JSONB.
type GradeHours map[int]int

// Value implements driver.Valuer.
func (g GradeHours) Value() (driver.Value, error) {
	if g == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner.
func (g *GradeHours) Scan(src interface{}) error {
	if src == nil {
		*g = GradeHours{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported grade hours type %T", src)
	}
	return json.Unmarshal(raw, g)
}

// SubjectDemand defines how many weekly lessons each grade must receive for
// one subject, plus the default room used when the scheduler places it.
type SubjectDemand struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	HoursByGrade GradeHours `db:"hours_by_grade" json:"hours_by_grade"`
	DefaultRoom  *string    `db:"default_room" json:"default_room,omitempty"`
	Note         *string    `db:"note" json:"note,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// SubjectDemandFilter captures supported filters for listing demands.
type SubjectDemandFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
