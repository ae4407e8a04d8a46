package scheduler

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plusiam/sisu/internal/models"
)

func specialist(id, name string, grades []int64, subjects []string) models.Teacher {
	return models.Teacher{
		ID:       id,
		Name:     name,
		Role:     models.RoleSpecialist,
		Grades:   grades,
		Subjects: subjects,
		Active:   true,
	}
}

func demand(name string, hours models.GradeHours, room string) models.SubjectDemand {
	d := models.SubjectDemand{Name: name, HoursByGrade: hours}
	if room != "" {
		d.DefaultRoom = &room
	}
	return d
}

func school(classes models.GradeHours) models.SchoolProfile {
	return models.SchoolProfile{Name: "테스트초", Year: 2026, Semester: 1, ClassesByGrade: classes}
}

// stripVolatile clears fields that legitimately differ between runs so that
// determinism checks compare placement only.
func stripVolatile(slots []models.TimetableSlot) []models.TimetableSlot {
	out := make([]models.TimetableSlot, len(slots))
	copy(out, slots)
	for i := range out {
		out[i].ID = ""
	}
	return out
}

func TestRunConcreteScenario(t *testing.T) {
	teachers := []models.Teacher{
		specialist("t-kim", "김전담", []int64{3, 4}, []string{"음악"}),
	}
	demands := []models.SubjectDemand{
		demand("음악", models.GradeHours{3: 2, 4: 2}, ""),
	}
	shape := school(models.GradeHours{3: 2, 4: 1})

	result := Run(teachers, nil, demands, shape, nil)

	require.True(t, result.Success)
	assert.Len(t, result.Slots, 6, "2 lessons x 2 classes at grade 3 plus 2 x 1 at grade 4")
	assert.Empty(t, result.Unassigned)
	assert.Equal(t, "6시수 배정 완료", result.Message)

	seen := make(map[string]bool)
	for _, slot := range result.Slots {
		key := fmt.Sprintf("%s-%d", slot.Day, slot.Period)
		assert.False(t, seen[key], "teacher double-booked at %s", key)
		seen[key] = true
		assert.Equal(t, "t-kim", slot.TeacherID)
		assert.Equal(t, "김전담", slot.TeacherName)
		assert.NotEmpty(t, slot.ID)
	}
}

func TestRunNoSpecialists(t *testing.T) {
	grade := 3
	classNumber := 1
	teachers := []models.Teacher{
		{ID: "t-1", Name: "담임", Role: models.RoleHomeroom, Grade: &grade, ClassNumber: &classNumber},
	}

	result := Run(teachers, nil, nil, school(models.GradeHours{3: 2}), nil)

	assert.False(t, result.Success)
	assert.Empty(t, result.Slots)
	assert.Empty(t, result.Unassigned)
	assert.Equal(t, "등록된 전담교사가 없습니다.", result.Message)
}

func TestRunNoDemand(t *testing.T) {
	teachers := []models.Teacher{
		specialist("t-1", "미배정전담", nil, nil),
	}

	result := Run(teachers, nil, nil, school(models.GradeHours{1: 2}), nil)

	assert.True(t, result.Success)
	assert.Empty(t, result.Slots)
	assert.Equal(t, "배정할 수업이 없습니다.", result.Message)
}

func TestRunDefaultsMissingDemandToOneHour(t *testing.T) {
	teachers := []models.Teacher{
		specialist("t-1", "박전담", []int64{5}, []string{"도덕"}),
	}

	// 도덕 has no demand table entry at all; the builder must still request
	// one weekly lesson per class.
	result := Run(teachers, nil, nil, school(models.GradeHours{5: 3}), nil)

	require.True(t, result.Success)
	assert.Len(t, result.Slots, 3)
}

func TestRunSkipsZeroClassGrades(t *testing.T) {
	teachers := []models.Teacher{
		specialist("t-1", "박전담", []int64{1, 2}, []string{"영어"}),
	}
	demands := []models.SubjectDemand{
		demand("영어", models.GradeHours{1: 2, 2: 2}, ""),
	}

	result := Run(teachers, nil, demands, school(models.GradeHours{1: 1, 2: 0}), nil)

	require.True(t, result.Success)
	assert.Len(t, result.Slots, 2)
	for _, slot := range result.Slots {
		assert.Equal(t, 1, slot.Grade)
	}
}

func TestRunBalancesAcrossDays(t *testing.T) {
	teachers := []models.Teacher{
		specialist("t-1", "이전담", []int64{4}, []string{"체육"}),
	}
	demands := []models.SubjectDemand{
		demand("체육", models.GradeHours{4: 5}, "강당"),
	}

	result := Run(teachers, nil, demands, school(models.GradeHours{4: 1}), nil)

	require.True(t, result.Success)
	require.Len(t, result.Slots, 5)
	byDay := make(map[models.DayOfWeek]int)
	for _, slot := range result.Slots {
		byDay[slot.Day]++
		assert.Equal(t, "강당", slot.Room)
	}
	for _, day := range models.WeekDays {
		assert.Equal(t, 1, byDay[day], "least-loaded-day-first must spread 5 lessons over 5 days")
	}
}

func TestRunRespectsMaxPerDay(t *testing.T) {
	teachers := []models.Teacher{
		specialist("t-1", "최전담", []int64{6}, []string{"과학"}),
	}
	demands := []models.SubjectDemand{
		demand("과학", models.GradeHours{6: 6}, ""),
	}
	constraints := &Constraints{MaxPerDay: 1}

	result := Run(teachers, nil, demands, school(models.GradeHours{6: 1}), constraints)

	assert.False(t, result.Success)
	assert.Len(t, result.Slots, 5, "one lesson per day across five days")
	require.Len(t, result.Unassigned, 1)
	assert.Equal(t, "1시수 미배정 (충돌 또는 빈 슬롯 부족)", result.Unassigned[0].Reason)
	assert.Equal(t, "5시수 배정 완료, 1시수 미배정", result.Message)
}

func TestRunRespectsMaxConsecutive(t *testing.T) {
	existing := []models.TimetableSlot{
		{ID: "e1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 2, TeacherID: "t-1", TeacherName: "정전담", Subject: "음악"},
		{ID: "e2", Day: models.DayMon, Period: 2, Grade: 3, ClassNumber: 3, TeacherID: "t-1", TeacherName: "정전담", Subject: "음악"},
	}
	teachers := []models.Teacher{
		specialist("t-1", "정전담", []int64{3}, []string{"음악"}),
	}
	demands := []models.SubjectDemand{
		demand("음악", models.GradeHours{3: 1}, ""),
	}
	constraints := &Constraints{
		MaxConsecutive: 2,
		TeacherUnavailable: []TeacherBlackout{
			{TeacherID: "t-1", Day: models.DayTue},
			{TeacherID: "t-1", Day: models.DayWed},
			{TeacherID: "t-1", Day: models.DayThu},
			{TeacherID: "t-1", Day: models.DayFri},
		},
	}

	result := Run(teachers, existing, demands, school(models.GradeHours{3: 1}), constraints)

	require.True(t, result.Success)
	require.Len(t, result.Slots, 1)
	slot := result.Slots[0]
	assert.Equal(t, models.DayMon, slot.Day)
	assert.Equal(t, 4, slot.Period, "period 3 would create a run of three consecutive lessons")
}

func TestRunHonoursBlackout(t *testing.T) {
	teachers := []models.Teacher{
		specialist("t-1", "한전담", []int64{2}, []string{"영어"}),
	}
	demands := []models.SubjectDemand{
		demand("영어", models.GradeHours{2: 4}, ""),
	}
	constraints := &Constraints{
		TeacherUnavailable: []TeacherBlackout{{TeacherID: "t-1", Day: models.DayMon}},
	}

	result := Run(teachers, nil, demands, school(models.GradeHours{2: 1}), constraints)

	require.True(t, result.Success)
	for _, slot := range result.Slots {
		assert.NotEqual(t, models.DayMon, slot.Day)
	}
}

func TestRunSeesExistingSlots(t *testing.T) {
	// The class is fully booked mon-fri period 1 by another teacher; new
	// placements must land on later periods.
	var existing []models.TimetableSlot
	for i, day := range models.WeekDays {
		existing = append(existing, models.TimetableSlot{
			ID: fmt.Sprintf("e%d", i), Day: day, Period: 1,
			Grade: 1, ClassNumber: 1, TeacherID: "t-other", TeacherName: "타교사", Subject: "국어",
		})
	}
	teachers := []models.Teacher{
		specialist("t-1", "오전담", []int64{1}, []string{"음악"}),
	}
	demands := []models.SubjectDemand{
		demand("음악", models.GradeHours{1: 5}, ""),
	}

	result := Run(teachers, existing, demands, school(models.GradeHours{1: 1}), nil)

	require.True(t, result.Success)
	for _, slot := range result.Slots {
		assert.Greater(t, slot.Period, 1)
	}

	validation := ValidateTimetable(append(existing, result.Slots...))
	assert.True(t, validation.Valid, "merged slot set must stay duplicate-free: %v", validation.Errors)
}

func mixedFixture() ([]models.Teacher, []models.TimetableSlot, []models.SubjectDemand, models.SchoolProfile) {
	teachers := []models.Teacher{
		specialist("t-1", "김음악", []int64{3, 4}, []string{"음악"}),
		specialist("t-2", "이체육", []int64{3, 4, 5}, []string{"체육"}),
		specialist("t-3", "박영어", []int64{5, 6}, []string{"영어", "창체"}),
	}
	existing := []models.TimetableSlot{
		{ID: "e1", Day: models.DayMon, Period: 1, Grade: 3, ClassNumber: 1, TeacherID: "t-1", TeacherName: "김음악", Subject: "음악"},
		{ID: "e2", Day: models.DayTue, Period: 2, Grade: 5, ClassNumber: 2, TeacherID: "t-3", TeacherName: "박영어", Subject: "영어"},
	}
	demands := []models.SubjectDemand{
		demand("음악", models.GradeHours{3: 2, 4: 2}, "음악실"),
		demand("체육", models.GradeHours{3: 3, 4: 3, 5: 3}, "강당"),
		demand("영어", models.GradeHours{5: 3, 6: 3}, "영어실"),
	}
	shape := school(models.GradeHours{3: 2, 4: 2, 5: 2, 6: 2})
	return teachers, existing, demands, shape
}

func TestRunDeterministic(t *testing.T) {
	teachers, existing, demands, shape := mixedFixture()

	first := Run(teachers, existing, demands, shape, nil)
	second := Run(teachers, existing, demands, shape, nil)

	assert.Equal(t, stripVolatile(first.Slots), stripVolatile(second.Slots))
	assert.Equal(t, first.Unassigned, second.Unassigned)
	assert.Equal(t, first.Message, second.Message)
}

func TestRunConservation(t *testing.T) {
	teachers, existing, demands, shape := mixedFixture()

	var specialists []models.Teacher
	for _, teacher := range teachers {
		if teacher.IsSpecialist() {
			specialists = append(specialists, teacher)
		}
	}
	expected := 0
	for _, req := range BuildRequests(specialists, demands, shape) {
		expected += req.HoursNeeded * shape.ClassCount(req.Grade)
	}

	result := Run(teachers, existing, demands, shape, nil)

	shortfall := 0
	for _, u := range result.Unassigned {
		m := hoursPattern.FindStringSubmatch(u.Reason)
		require.NotNil(t, m)
		var n int
		_, err := fmt.Sscanf(m[1], "%d", &n)
		require.NoError(t, err)
		shortfall += n
	}
	assert.Equal(t, expected, len(result.Slots)+shortfall)
}

func TestRunResultValidates(t *testing.T) {
	teachers, existing, demands, shape := mixedFixture()

	result := Run(teachers, existing, demands, shape, nil)

	validation := ValidateTimetable(append(existing, result.Slots...))
	assert.True(t, validation.Valid, "auto-schedule must never double-book: %v", validation.Errors)
}

var randomSubjectPool = []string{"음악", "미술", "체육", "영어", "과학", "도덕", "실과", "창체"}

func pickDistinct(rng *rand.Rand, pool []string, n int) []string {
	shuffled := append([]string(nil), pool...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

type randomScenario struct {
	teachers    []models.Teacher
	existing    []models.TimetableSlot
	demands     []models.SubjectDemand
	shape       models.SchoolProfile
	constraints *Constraints
}

// randomScenarioFor builds one arbitrary but internally consistent input:
// the existing slots are generated collision-free on both occupancy
// dimensions so the merged-output validation property is exact.
func randomScenarioFor(rng *rand.Rand) randomScenario {
	classes := models.GradeHours{}
	for grade := 1; grade <= 6; grade++ {
		classes[grade] = rng.Intn(4)
	}

	teacherCount := 1 + rng.Intn(4)
	teachers := make([]models.Teacher, 0, teacherCount)
	for i := 0; i < teacherCount; i++ {
		gradeCount := 1 + rng.Intn(3)
		grades := make([]int64, 0, gradeCount)
		for _, g := range rng.Perm(6)[:gradeCount] {
			grades = append(grades, int64(g+1))
		}
		teachers = append(teachers, specialist(
			fmt.Sprintf("t-%d", i+1),
			fmt.Sprintf("전담%d", i+1),
			grades,
			pickDistinct(rng, randomSubjectPool, 1+rng.Intn(2)),
		))
	}

	var demands []models.SubjectDemand
	for _, subject := range pickDistinct(rng, randomSubjectPool, rng.Intn(len(randomSubjectPool)+1)) {
		hours := models.GradeHours{}
		for grade := 1; grade <= 6; grade++ {
			if rng.Intn(2) == 0 {
				hours[grade] = rng.Intn(4)
			}
		}
		demands = append(demands, demand(subject, hours, ""))
	}

	classSeen := make(map[occupancyKey]struct{})
	teacherSeen := make(map[string]struct{})
	var existing []models.TimetableSlot
	for i, want := 0, rng.Intn(10); i < want; i++ {
		teacherID := fmt.Sprintf("t-%d", 1+rng.Intn(teacherCount+1))
		day := models.WeekDays[rng.Intn(len(models.WeekDays))]
		period := 1 + rng.Intn(periodsPerDay)
		grade := 1 + rng.Intn(6)
		classNumber := 1 + rng.Intn(3)

		classKey := occupancyKey{day, period, grade, classNumber}
		teacherKey := fmt.Sprintf("%s/%s/%d", teacherID, day, period)
		if _, ok := classSeen[classKey]; ok {
			continue
		}
		if _, ok := teacherSeen[teacherKey]; ok {
			continue
		}
		classSeen[classKey] = struct{}{}
		teacherSeen[teacherKey] = struct{}{}
		existing = append(existing, models.TimetableSlot{
			ID: fmt.Sprintf("e-%d", i), Day: day, Period: period,
			Grade: grade, ClassNumber: classNumber,
			TeacherID: teacherID, TeacherName: "기존교사", Subject: "국어",
		})
	}

	var constraints *Constraints
	if rng.Intn(2) == 0 {
		constraints = &Constraints{
			MaxConsecutive: 1 + rng.Intn(4),
			MaxPerDay:      1 + rng.Intn(periodsPerDay),
		}
		if rng.Intn(3) == 0 {
			constraints.TeacherUnavailable = []TeacherBlackout{{
				TeacherID: teachers[rng.Intn(len(teachers))].ID,
				Day:       models.WeekDays[rng.Intn(len(models.WeekDays))],
			}}
		}
	}

	return randomScenario{
		teachers:    teachers,
		existing:    existing,
		demands:     demands,
		shape:       models.SchoolProfile{Name: "난수초", Year: 2026, Semester: 1, ClassesByGrade: classes},
		constraints: constraints,
	}
}

func TestRunRandomizedScenarios(t *testing.T) {
	rng := rand.New(rand.NewSource(20260831))

	for i := 0; i < 300; i++ {
		sc := randomScenarioFor(rng)
		result := Run(sc.teachers, sc.existing, sc.demands, sc.shape, sc.constraints)
		merged := mergeConstraints(sc.constraints)

		// Merged output stays duplicate-free on both dimensions.
		validation := ValidateTimetable(append(append([]models.TimetableSlot(nil), sc.existing...), result.Slots...))
		require.True(t, validation.Valid, "scenario %d double-booked: %v", i, validation.Errors)

		// Every requested hour is either placed or reported unassigned.
		expected := 0
		for _, req := range BuildRequests(sc.teachers, sc.demands, sc.shape) {
			expected += req.HoursNeeded * sc.shape.ClassCount(req.Grade)
		}
		shortfall := 0
		for _, u := range result.Unassigned {
			m := hoursPattern.FindStringSubmatch(u.Reason)
			require.NotNil(t, m, "scenario %d reason %q", i, u.Reason)
			var n int
			_, err := fmt.Sscanf(m[1], "%d", &n)
			require.NoError(t, err)
			shortfall += n
		}
		require.Equal(t, expected, len(result.Slots)+shortfall, "scenario %d loses or invents hours", i)
		require.Equal(t, len(result.Unassigned) == 0, result.Success, "scenario %d", i)

		// Caps and blackouts hold on every teacher-day a new lesson landed
		// on. Days the run never touched may carry arbitrary prior load, so
		// they are out of scope here.
		type dayKey struct {
			TeacherID string
			Day       models.DayOfWeek
		}
		touched := make(map[dayKey]bool)
		for _, slot := range result.Slots {
			touched[dayKey{slot.TeacherID, slot.Day}] = true
			require.False(t, merged.blackedOut(slot.TeacherID, slot.Day),
				"scenario %d placed into a blackout day for %s", i, slot.TeacherID)
		}
		periods := make(map[dayKey][]int)
		for _, slot := range append(append([]models.TimetableSlot(nil), sc.existing...), result.Slots...) {
			key := dayKey{slot.TeacherID, slot.Day}
			if touched[key] {
				periods[key] = append(periods[key], slot.Period)
			}
		}
		for key, ps := range periods {
			require.LessOrEqual(t, len(ps), merged.MaxPerDay, "scenario %d daily cap for %v", i, key)

			sorted := append([]int(nil), ps...)
			for a := range sorted {
				for b := a + 1; b < len(sorted); b++ {
					if sorted[b] < sorted[a] {
						sorted[a], sorted[b] = sorted[b], sorted[a]
					}
				}
			}
			run, longest := 1, 1
			for n := 1; n < len(sorted); n++ {
				if sorted[n] == sorted[n-1]+1 {
					run++
					if run > longest {
						longest = run
					}
				} else {
					run = 1
				}
			}
			require.LessOrEqual(t, longest, merged.MaxConsecutive, "scenario %d consecutive cap for %v", i, key)
		}
	}
}

func TestRunConstraintLimitsHold(t *testing.T) {
	teachers, existing, demands, shape := mixedFixture()
	constraints := &Constraints{MaxConsecutive: 2, MaxPerDay: 3}

	result := Run(teachers, existing, demands, shape, constraints)

	type dayKey struct {
		TeacherID string
		Day       models.DayOfWeek
	}
	periods := make(map[dayKey][]int)
	for _, slot := range append(existing, result.Slots...) {
		key := dayKey{slot.TeacherID, slot.Day}
		periods[key] = append(periods[key], slot.Period)
	}
	for key, ps := range periods {
		assert.LessOrEqual(t, len(ps), constraints.MaxPerDay, "daily cap for %v", key)

		sorted := append([]int(nil), ps...)
		for i := range sorted {
			for j := i + 1; j < len(sorted); j++ {
				if sorted[j] < sorted[i] {
					sorted[i], sorted[j] = sorted[j], sorted[i]
				}
			}
		}
		run, longest := 1, 1
		for i := 1; i < len(sorted); i++ {
			if sorted[i] == sorted[i-1]+1 {
				run++
				if run > longest {
					longest = run
				}
			} else {
				run = 1
			}
		}
		assert.LessOrEqual(t, longest, constraints.MaxConsecutive, "consecutive cap for %v", key)
	}
}
