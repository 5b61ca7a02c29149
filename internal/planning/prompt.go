package planning

import (
	"fmt"
	"strings"
)

// BuildPrompt turns a validated input snapshot into the generation prompt.
// It takes its argument by value and has no other inputs, so equal snapshots
// always yield equal prompts.
//
// Inputs must have passed Validate; BuildPrompt itself never fails.
func BuildPrompt(in UserInputs) string {
	return DefaultGoals().BuildPrompt(in)
}

// BuildPrompt renders the prompt using c to describe the goal.
func (c *GoalCatalog) BuildPrompt(in UserInputs) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"Create a %s-risk investment strategy for a %d-year-old investing ₪%d monthly for %d years. The goal is %s.",
		in.RiskLevel, in.Age, in.MonthlyBudget, in.TimeHorizonYears, c.Describe(in.Goal),
	)
	// Zero savings reads the same as none.
	if in.StartingSavings != nil && *in.StartingSavings > 0 {
		fmt.Fprintf(&b, " Starting savings are ₪%d.", *in.StartingSavings)
	}
	return b.String()
}
