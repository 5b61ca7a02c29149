package planning

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed goals.yaml
var goalsYAML []byte

// Goal is one entry of the enumerated goal set.
type Goal struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// GoalCatalog is the fixed set of goal identifiers the form offers. Goals not
// in the catalog are treated as free text.
type GoalCatalog struct {
	goals []Goal
	byID  map[string]Goal
}

type catalogFile struct {
	Goals []Goal `yaml:"goals"`
}

// ParseGoalCatalog decodes a YAML catalog. IDs must be unique and non-empty.
func ParseGoalCatalog(data []byte) (*GoalCatalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("planning: parse goal catalog: %w", err)
	}

	c := &GoalCatalog{byID: make(map[string]Goal, len(f.Goals))}
	for _, g := range f.Goals {
		g.ID = strings.TrimSpace(g.ID)
		if g.ID == "" {
			return nil, fmt.Errorf("planning: goal catalog entry with empty id")
		}
		if _, dup := c.byID[g.ID]; dup {
			return nil, fmt.Errorf("planning: duplicate goal id %q", g.ID)
		}
		if strings.TrimSpace(g.Label) == "" {
			g.Label = g.ID
		}
		c.byID[g.ID] = g
		c.goals = append(c.goals, g)
	}
	return c, nil
}

// defaultCatalog is parsed from the embedded file at init; a broken embedded
// file is a build defect, so it panics.
var defaultCatalog = func() *GoalCatalog {
	c, err := ParseGoalCatalog(goalsYAML)
	if err != nil {
		panic(err)
	}
	return c
}()

// DefaultGoals returns the embedded goal catalog.
func DefaultGoals() *GoalCatalog { return defaultCatalog }

// Goals returns the catalog entries in file order.
func (c *GoalCatalog) Goals() []Goal {
	out := make([]Goal, len(c.goals))
	copy(out, c.goals)
	return out
}

// Lookup reports whether id is one of the enumerated goals.
func (c *GoalCatalog) Lookup(id string) (Goal, bool) {
	g, ok := c.byID[strings.TrimSpace(id)]
	return g, ok
}

// Describe returns the lower-cased text used for goal in a prompt: the
// catalog label for an enumerated id, the trimmed free text otherwise.
func (c *GoalCatalog) Describe(goal string) string {
	if g, ok := c.Lookup(goal); ok {
		return strings.ToLower(g.Label)
	}
	return strings.ToLower(strings.TrimSpace(goal))
}
