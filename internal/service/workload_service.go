package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/plusiam/sisu/pkg/errors"
)

// Weekly legal limits for teaching workload.
const (
	legalWeeklyLimit = 20
	warningThreshold = 24
)

// WorkloadInput is a weekly hours breakdown entered for simulation.
type WorkloadInput struct {
	BasicTeaching int `json:"basic_teaching" validate:"min=0,max=40"`
	AdminWork     int `json:"admin_work" validate:"min=0,max=40"`
	Training      int `json:"training" validate:"min=0,max=40"`
	Consulting    int `json:"consulting" validate:"min=0,max=40"`
	Other         int `json:"other" validate:"min=0,max=40"`
}

// WorkloadDistribution breaks the weekly total into percentages.
type WorkloadDistribution struct {
	Teaching float64 `json:"teaching"`
	Admin    float64 `json:"admin"`
	Training float64 `json:"training"`
	Other    float64 `json:"other"`
}

// ComplianceStatus compares a weekly total against the legal limit.
type ComplianceStatus struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Percentage float64 `json:"percentage"`
}

// WorkloadStats is the full simulation outcome.
type WorkloadStats struct {
	TotalHours   int                  `json:"total_hours"`
	DailyAverage float64              `json:"daily_average"`
	MonthlyTotal int                  `json:"monthly_total"`
	Distribution WorkloadDistribution `json:"distribution"`
	Compliance   ComplianceStatus     `json:"compliance"`
}

// WorkloadService computes workload simulations. Pure calculation, nothing
// is persisted.
type WorkloadService struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkloadService constructs a WorkloadService.
func NewWorkloadService(validate *validator.Validate, logger *zap.Logger) *WorkloadService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkloadService{validator: validate, logger: logger}
}

// Calculate produces weekly, daily and monthly numbers plus compliance.
func (s *WorkloadService) Calculate(input WorkloadInput) (*WorkloadStats, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workload input")
	}

	total := input.BasicTeaching + input.AdminWork + input.Training + input.Consulting + input.Other

	stats := &WorkloadStats{
		TotalHours:   total,
		DailyAverage: roundTenth(float64(total) / 5),
		MonthlyTotal: total * 4,
		Distribution: distribution(input, total),
		Compliance:   compliance(total),
	}
	return stats, nil
}

func distribution(input WorkloadInput, total int) WorkloadDistribution {
	if total == 0 {
		return WorkloadDistribution{}
	}
	pct := func(part int) float64 {
		return roundTenth(float64(part) / float64(total) * 100)
	}
	return WorkloadDistribution{
		Teaching: pct(input.BasicTeaching),
		Admin:    pct(input.AdminWork),
		Training: pct(input.Training + input.Consulting),
		Other:    pct(input.Other),
	}
}

func compliance(total int) ComplianceStatus {
	percentage := float64(total) / float64(legalWeeklyLimit) * 100
	switch {
	case total <= legalWeeklyLimit:
		return ComplianceStatus{Status: "safe", Message: "법정 기준 이내입니다", Percentage: percentage}
	case total <= warningThreshold:
		return ComplianceStatus{Status: "warning", Message: "시수가 다소 많습니다", Percentage: percentage}
	default:
		return ComplianceStatus{Status: "over", Message: "과도한 업무량입니다", Percentage: percentage}
	}
}
