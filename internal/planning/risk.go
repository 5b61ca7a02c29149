// Package planning holds the pure, dependency-free parts of the recommendation
// pipeline: the risk advisor, the user-input model and the prompt builder.
// Nothing in here performs I/O except loading the embedded goal catalog.
package planning

import "fmt"

// ─── CONSTANTS ────────────────────────────────────────────────────────────────

// Horizon thresholds (inclusive upper bounds).
const (
	lowRiskMaxYears    = 3 // years <= 3 → low
	mediumRiskMaxYears = 7 // years 4–7  → medium, >= 8 → high
)

// Time horizon bounds accepted from callers.
const (
	MinTimeHorizonYears = 1
	MaxTimeHorizonYears = 50
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// RiskLevel is the investment risk tolerance. String values are what goes on
// the wire and into the prompt.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ParseRiskLevel converts a wire value into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch l := RiskLevel(s); l {
	case RiskLow, RiskMedium, RiskHigh:
		return l, nil
	default:
		return "", fmt.Errorf("unknown risk level %q (want low, medium or high)", s)
	}
}

// ─── ADVISOR ──────────────────────────────────────────────────────────────────

// Recommend maps a time horizon in years to the suggested risk level.
// It is total: values below the accepted range behave like short horizons and
// values above it like long ones.
func Recommend(timeHorizonYears int) RiskLevel {
	switch {
	case timeHorizonYears <= lowRiskMaxYears:
		return RiskLow
	case timeHorizonYears <= mediumRiskMaxYears:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// ─── SELECTOR ─────────────────────────────────────────────────────────────────

// SelectionMode is the state of a RiskSelector.
type SelectionMode int

const (
	// ModeAuto recomputes the risk level on every time-horizon change.
	ModeAuto SelectionMode = iota
	// ModeLocked keeps whatever the user chose. There is no way back to Auto.
	ModeLocked
)

func (m SelectionMode) String() string {
	if m == ModeLocked {
		return "locked"
	}
	return "auto"
}

// RiskSelector keeps a risk level in sync with the time horizon until the
// user picks one explicitly. The zero value is not usable; call NewRiskSelector.
//
// A RiskSelector belongs to a single form session and is not safe for
// concurrent use.
type RiskSelector struct {
	mode  SelectionMode
	years int
	level RiskLevel
}

// NewRiskSelector returns a selector in Auto mode seeded from timeHorizonYears.
func NewRiskSelector(timeHorizonYears int) *RiskSelector {
	return &RiskSelector{
		mode:  ModeAuto,
		years: timeHorizonYears,
		level: Recommend(timeHorizonYears),
	}
}

// SetTimeHorizon records a new horizon. In Auto mode the risk level follows it.
func (s *RiskSelector) SetTimeHorizon(years int) {
	s.years = years
	if s.mode == ModeAuto {
		s.level = Recommend(years)
	}
}

// Choose records an explicit user choice and latches the selector.
func (s *RiskSelector) Choose(level RiskLevel) {
	s.level = level
	s.mode = ModeLocked
}

func (s *RiskSelector) Level() RiskLevel { return s.level }

func (s *RiskSelector) Mode() SelectionMode { return s.mode }

func (s *RiskSelector) TimeHorizonYears() int { return s.years }
