// Package importer reads legacy .xls exports of the roster and the subject
// demand table. The expected layouts match the spreadsheets schools already
// maintain: a header row followed by one entity per row.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/extrame/xls"
)

// RosterRecord is one parsed roster row.
type RosterRecord struct {
	Name        string
	Role        string
	Grade       *int
	ClassNumber *int
	Grades      []int
	Subjects    []string
}

// DemandRecord is one parsed demand-table row.
type DemandRecord struct {
	Subject      string
	HoursByGrade map[int]int
	DefaultRoom  string
}

// ParseRoster reads a roster sheet: name, role (담임/전담), grade, class,
// grades list, subjects list. Blank name ends the scan.
func ParseRoster(r io.ReadSeeker) ([]RosterRecord, error) {
	sheet, err := openFirstSheet(r)
	if err != nil {
		return nil, err
	}

	var records []RosterRecord
	for row := 1; row <= int(sheet.MaxRow); row++ {
		name := cell(sheet, row, 0)
		if name == "" {
			break
		}
		record := RosterRecord{
			Name: name,
			Role: normalizeRole(cell(sheet, row, 1)),
		}
		if record.Role == "homeroom" {
			if g, ok := parseInt(cell(sheet, row, 2)); ok {
				record.Grade = &g
			}
			if c, ok := parseInt(cell(sheet, row, 3)); ok {
				record.ClassNumber = &c
			}
		} else {
			record.Grades = parseIntList(cell(sheet, row, 4))
			record.Subjects = parseList(cell(sheet, row, 5))
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("roster sheet contains no rows")
	}
	return records, nil
}

// ParseDemands reads a demand sheet: subject name, one column of weekly
// hours per grade 1..6, then the default room.
func ParseDemands(r io.ReadSeeker) ([]DemandRecord, error) {
	sheet, err := openFirstSheet(r)
	if err != nil {
		return nil, err
	}

	var records []DemandRecord
	for row := 1; row <= int(sheet.MaxRow); row++ {
		subject := cell(sheet, row, 0)
		if subject == "" {
			break
		}
		record := DemandRecord{
			Subject:      subject,
			HoursByGrade: make(map[int]int),
			DefaultRoom:  cell(sheet, row, 7),
		}
		for grade := 1; grade <= 6; grade++ {
			if hours, ok := parseInt(cell(sheet, row, grade)); ok && hours > 0 {
				record.HoursByGrade[grade] = hours
			}
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("demand sheet contains no rows")
	}
	return records, nil
}

func openFirstSheet(r io.ReadSeeker) (*xls.WorkSheet, error) {
	book, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("xls has no sheets")
	}
	return sheet, nil
}

func cell(sheet *xls.WorkSheet, row, col int) string {
	r := sheet.Row(row)
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Col(col))
}

func normalizeRole(raw string) string {
	switch strings.TrimSpace(raw) {
	case "담임", "homeroom":
		return "homeroom"
	default:
		return "specialist"
	}
}

func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	// Numeric cells often come back as floats ("3.0").
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

func parseIntList(raw string) []int {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		if n, ok := parseInt(part); ok {
			out = append(out, n)
		}
	}
	return out
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
