package planning

import (
	"errors"
	"fmt"
	"strings"
)

// UserInputs is a snapshot of the planning form at the moment generation is
// requested. StartingSavings is optional.
type UserInputs struct {
	Age              int       `json:"age"`
	StartingSavings  *int      `json:"startingSavings,omitempty"`
	MonthlyBudget    int       `json:"monthlyBudget"`
	Goal             string    `json:"goal"`
	RiskLevel        RiskLevel `json:"riskLevel"`
	TimeHorizonYears int       `json:"timeHorizonYears"`
}

// Validate checks every field and returns all violations joined together.
func (in UserInputs) Validate() error {
	var errs []error

	if in.Age < 0 {
		errs = append(errs, errors.New("age must not be negative"))
	}
	if in.StartingSavings != nil && *in.StartingSavings < 0 {
		errs = append(errs, errors.New("startingSavings must not be negative"))
	}
	if in.MonthlyBudget < 0 {
		errs = append(errs, errors.New("monthlyBudget must not be negative"))
	}
	if strings.TrimSpace(in.Goal) == "" {
		errs = append(errs, errors.New("goal is required"))
	}
	if in.TimeHorizonYears < MinTimeHorizonYears || in.TimeHorizonYears > MaxTimeHorizonYears {
		errs = append(errs, fmt.Errorf("timeHorizonYears must be between %d and %d",
			MinTimeHorizonYears, MaxTimeHorizonYears))
	}
	if _, err := ParseRiskLevel(string(in.RiskLevel)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// WithDefaultRisk fills an empty RiskLevel with the recommendation for the
// time horizon. An explicit level is kept as is.
func (in UserInputs) WithDefaultRisk() UserInputs {
	sel := NewRiskSelector(in.TimeHorizonYears)
	if in.RiskLevel != "" {
		sel.Choose(in.RiskLevel)
	}
	in.RiskLevel = sel.Level()
	return in
}
