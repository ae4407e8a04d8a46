// Command seed loads a YAML fixture of teachers, subject demands and the
// school profile into the database. Intended for dev environments; it wipes
// the tables it seeds.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/plusiam/sisu/internal/models"
	"github.com/plusiam/sisu/internal/repository"
	"github.com/plusiam/sisu/internal/service"
	"github.com/plusiam/sisu/pkg/config"
	"github.com/plusiam/sisu/pkg/database"
)

type fixture struct {
	School struct {
		Name                string      `yaml:"name"`
		Year                int         `yaml:"year"`
		Semester            int         `yaml:"semester"`
		ClassesByGrade      map[int]int `yaml:"classes_by_grade"`
		HomeroomStandard    int         `yaml:"homeroom_standard_hours"`
		SpecialistStandard  int         `yaml:"specialist_standard_hours"`
		MasterReductionRate int         `yaml:"master_reduction_rate"`
		HoursTolerance      int         `yaml:"hours_tolerance"`
	} `yaml:"school"`

	Teachers []struct {
		Name         string   `yaml:"name"`
		Role         string   `yaml:"role"`
		Grade        *int     `yaml:"grade"`
		ClassNumber  *int     `yaml:"class_number"`
		Grades       []int    `yaml:"grades"`
		Subjects     []string `yaml:"subjects"`
		OtherSubject *string  `yaml:"other_subject"`
	} `yaml:"teachers"`

	Subjects []struct {
		Name         string      `yaml:"name"`
		HoursByGrade map[int]int `yaml:"hours_by_grade"`
		DefaultRoom  *string     `yaml:"default_room"`
	} `yaml:"subjects"`

	Users []struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		FullName string `yaml:"full_name"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
}

func main() {
	var path string
	flag.StringVar(&path, "fixture", "scripts/seed/fixture.yaml", "Path to YAML fixture")
	flag.Parse()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read fixture: %v", err)
	}
	var fix fixture
	if err := yaml.Unmarshal(raw, &fix); err != nil {
		log.Fatalf("failed to parse fixture: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	userRepo := repository.NewUserRepository(db)

	teacherSvc := service.NewTeacherService(teacherRepo, nil, nil, nil)
	subjectSvc := service.NewSubjectService(subjectRepo, nil, nil)

	profile := models.SchoolProfile{
		Name:                fix.School.Name,
		Year:                fix.School.Year,
		Semester:            fix.School.Semester,
		ClassesByGrade:      models.GradeHours(fix.School.ClassesByGrade),
		HomeroomStandard:    fix.School.HomeroomStandard,
		SpecialistStandard:  fix.School.SpecialistStandard,
		MasterReductionRate: fix.School.MasterReductionRate,
		HoursTolerance:      fix.School.HoursTolerance,
	}
	if err := schoolRepo.Upsert(ctx, &profile); err != nil {
		log.Fatalf("failed to seed school profile: %v", err)
	}

	for _, t := range fix.Teachers {
		req := service.TeacherRequest{
			Name:         t.Name,
			Role:         models.TeacherRole(t.Role),
			Grade:        t.Grade,
			ClassNumber:  t.ClassNumber,
			Grades:       t.Grades,
			Subjects:     t.Subjects,
			OtherSubject: t.OtherSubject,
		}
		if _, err := teacherSvc.Create(ctx, req); err != nil {
			log.Fatalf("failed to seed teacher %s: %v", t.Name, err)
		}
	}

	for _, s := range fix.Subjects {
		req := service.SubjectDemandRequest{
			Name:         s.Name,
			HoursByGrade: s.HoursByGrade,
			DefaultRoom:  s.DefaultRoom,
		}
		if _, err := subjectSvc.Create(ctx, req); err != nil {
			log.Fatalf("failed to seed subject %s: %v", s.Name, err)
		}
	}

	for _, u := range fix.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password for %s: %v", u.Email, err)
		}
		user := models.User{
			Email:        u.Email,
			PasswordHash: string(hash),
			FullName:     u.FullName,
			Role:         models.UserRole(u.Role),
			Active:       true,
		}
		if err := userRepo.Create(ctx, &user); err != nil {
			log.Fatalf("failed to seed user %s: %v", u.Email, err)
		}
	}

	log.Printf("seeded %d teachers, %d subjects, %d users", len(fix.Teachers), len(fix.Subjects), len(fix.Users))
}
