package planning_test

import (
	"strings"
	"testing"

	"github.com/nyashahama/investgpt-backend/internal/planning"
)

// ─── Recommend ────────────────────────────────────────────────────────────────

func TestRecommend_Thresholds(t *testing.T) {
	tests := []struct {
		years int
		want  planning.RiskLevel
	}{
		{1, planning.RiskLow},
		{3, planning.RiskLow},
		{4, planning.RiskMedium},
		{7, planning.RiskMedium},
		{8, planning.RiskHigh},
		{50, planning.RiskHigh},
	}
	for _, tt := range tests {
		if got := planning.Recommend(tt.years); got != tt.want {
			t.Errorf("Recommend(%d) = %q, want %q", tt.years, got, tt.want)
		}
	}
}

func TestRecommend_TotalOutsideRange(t *testing.T) {
	if got := planning.Recommend(0); got != planning.RiskLow {
		t.Errorf("Recommend(0) = %q", got)
	}
	if got := planning.Recommend(100); got != planning.RiskHigh {
		t.Errorf("Recommend(100) = %q", got)
	}
}

func TestParseRiskLevel(t *testing.T) {
	for _, s := range []string{"low", "medium", "high"} {
		if _, err := planning.ParseRiskLevel(s); err != nil {
			t.Errorf("ParseRiskLevel(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "HIGH", "extreme"} {
		if _, err := planning.ParseRiskLevel(s); err == nil {
			t.Errorf("ParseRiskLevel(%q): expected error", s)
		}
	}
}

// ─── RiskSelector ─────────────────────────────────────────────────────────────

func TestRiskSelector_AutoFollowsHorizon(t *testing.T) {
	sel := planning.NewRiskSelector(2)
	if sel.Level() != planning.RiskLow || sel.Mode() != planning.ModeAuto {
		t.Fatalf("initial: got %q/%s", sel.Level(), sel.Mode())
	}

	sel.SetTimeHorizon(5)
	if sel.Level() != planning.RiskMedium {
		t.Errorf("after 5 years: got %q", sel.Level())
	}
	sel.SetTimeHorizon(12)
	if sel.Level() != planning.RiskHigh {
		t.Errorf("after 12 years: got %q", sel.Level())
	}
}

func TestRiskSelector_ChoiceLatches(t *testing.T) {
	sel := planning.NewRiskSelector(10)
	sel.Choose(planning.RiskLow)

	for _, years := range []int{1, 4, 8, 30} {
		sel.SetTimeHorizon(years)
		if sel.Level() != planning.RiskLow {
			t.Fatalf("horizon %d overwrote explicit choice: got %q", years, sel.Level())
		}
		if sel.Mode() != planning.ModeLocked {
			t.Fatalf("mode reverted to %s", sel.Mode())
		}
	}
	if sel.TimeHorizonYears() != 30 {
		t.Errorf("horizon not tracked: %d", sel.TimeHorizonYears())
	}
}

// ─── UserInputs ───────────────────────────────────────────────────────────────

func validInputs() planning.UserInputs {
	return planning.UserInputs{
		Age:              30,
		MonthlyBudget:    1000,
		Goal:             "retirement",
		RiskLevel:        planning.RiskMedium,
		TimeHorizonYears: 10,
	}
}

func TestValidate_AcceptsValidInputs(t *testing.T) {
	if err := validInputs().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	neg := -5
	in := planning.UserInputs{
		Age:              -1,
		StartingSavings:  &neg,
		MonthlyBudget:    -1,
		Goal:             "  ",
		RiskLevel:        "extreme",
		TimeHorizonYears: 51,
	}
	err := in.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"age", "startingSavings", "monthlyBudget", "goal", "timeHorizonYears", "risk level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestWithDefaultRisk(t *testing.T) {
	in := validInputs()
	in.RiskLevel = ""
	if got := in.WithDefaultRisk().RiskLevel; got != planning.RiskHigh {
		t.Errorf("empty risk with 10 years: got %q, want high", got)
	}

	in.RiskLevel = planning.RiskLow
	if got := in.WithDefaultRisk().RiskLevel; got != planning.RiskLow {
		t.Errorf("explicit risk overwritten: got %q", got)
	}
}

// ─── BuildPrompt ──────────────────────────────────────────────────────────────

func TestBuildPrompt_ExactTemplate(t *testing.T) {
	got := planning.BuildPrompt(validInputs())
	want := "Create a medium-risk investment strategy for a 30-year-old investing ₪1000 monthly for 10 years. The goal is retirement."
	if got != want {
		t.Errorf("prompt mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildPrompt_PureAndNonMutating(t *testing.T) {
	savings := 5000
	in := validInputs()
	in.StartingSavings = &savings
	before := in

	first := planning.BuildPrompt(in)
	second := planning.BuildPrompt(in)
	if first != second {
		t.Errorf("not deterministic: %q vs %q", first, second)
	}
	if in != before || *in.StartingSavings != 5000 {
		t.Error("input was mutated")
	}
	if !strings.HasSuffix(first, " Starting savings are ₪5000.") {
		t.Errorf("starting savings missing: %q", first)
	}
}

func TestBuildPrompt_ZeroSavingsAddsNoSentence(t *testing.T) {
	zero := 0
	in := validInputs()
	in.StartingSavings = &zero

	if got, want := planning.BuildPrompt(in), planning.BuildPrompt(validInputs()); got != want {
		t.Errorf("explicit zero savings changed the prompt:\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildPrompt_GoalDescriptions(t *testing.T) {
	tests := []struct {
		goal string
		want string
	}{
		{"home", "The goal is buying a home."},
		{"Send My Kids To College", "The goal is send my kids to college."},
		{"  Early RETIREMENT ", "The goal is early retirement."},
	}
	for _, tt := range tests {
		in := validInputs()
		in.Goal = tt.goal
		if got := planning.BuildPrompt(in); !strings.HasSuffix(got, tt.want) {
			t.Errorf("goal %q: got %q, want suffix %q", tt.goal, got, tt.want)
		}
	}
}

// ─── GoalCatalog ──────────────────────────────────────────────────────────────

func TestDefaultGoals_ContainsRetirement(t *testing.T) {
	g, ok := planning.DefaultGoals().Lookup("retirement")
	if !ok {
		t.Fatal("retirement missing from default catalog")
	}
	if g.Label != "Retirement" {
		t.Errorf("label: got %q", g.Label)
	}
	if len(planning.DefaultGoals().Goals()) < 2 {
		t.Error("expected several default goals")
	}
}

func TestParseGoalCatalog_RejectsDuplicates(t *testing.T) {
	_, err := planning.ParseGoalCatalog([]byte("goals:\n  - id: a\n  - id: a\n"))
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestParseGoalCatalog_LabelDefaultsToID(t *testing.T) {
	c, err := planning.ParseGoalCatalog([]byte("goals:\n  - id: Boat\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Describe("Boat"); got != "boat" {
		t.Errorf("Describe: got %q", got)
	}
}
