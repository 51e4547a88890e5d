// Package catalog holds the static scenario data that drives both the agent
// tools and the dashboard walkthrough. A Catalog is immutable once built.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/miradorstack/aura/internal/models"
)

// UnknownScenarioError is returned when a scenario identifier is outside the catalog.
type UnknownScenarioError struct {
	ID        string
	Available []models.ScenarioID
}

func (e *UnknownScenarioError) Error() string {
	return fmt.Sprintf("unknown scenario %q (available: %s)", e.ID, strings.Join(e.AvailableTypes(), ", "))
}

// AvailableTypes returns the valid identifiers as plain strings.
func (e *UnknownScenarioError) AvailableTypes() []string {
	out := make([]string, 0, len(e.Available))
	for _, id := range e.Available {
		out = append(out, string(id))
	}
	return out
}

// Catalog maps scenario identifiers (and their aliases) to scenario records.
type Catalog struct {
	scenarios map[models.ScenarioID]models.Scenario
	aliases   map[string]models.ScenarioID
	ids       []models.ScenarioID
}

// New builds a catalog from the supplied scenarios after validating each one.
func New(scenarios ...models.Scenario) (*Catalog, error) {
	c := &Catalog{
		scenarios: make(map[models.ScenarioID]models.Scenario, len(scenarios)),
		aliases:   make(map[string]models.ScenarioID),
	}
	for _, s := range scenarios {
		if err := Validate(s); err != nil {
			return nil, err
		}
		if _, exists := c.scenarios[s.ID]; exists {
			return nil, fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		c.scenarios[s.ID] = clone(s)
		c.ids = append(c.ids, s.ID)
	}
	for _, s := range scenarios {
		for _, alias := range s.Aliases {
			if _, clash := c.scenarios[models.ScenarioID(alias)]; clash {
				return nil, fmt.Errorf("alias %q of %q shadows a scenario id", alias, s.ID)
			}
			if owner, taken := c.aliases[alias]; taken {
				return nil, fmt.Errorf("alias %q claimed by both %q and %q", alias, owner, s.ID)
			}
			c.aliases[alias] = s.ID
		}
	}
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })
	return c, nil
}

// Default returns the catalog of built-in scenarios.
func Default() *Catalog {
	c, err := New(Builtin()...)
	if err != nil {
		panic(fmt.Sprintf("builtin catalog invalid: %v", err))
	}
	return c
}

// Resolve maps an identifier or alias onto its canonical ScenarioID. Matching
// is exact; padded or differently cased input is unknown.
func (c *Catalog) Resolve(raw string) (models.ScenarioID, error) {
	id := models.ScenarioID(raw)
	if _, ok := c.scenarios[id]; ok {
		return id, nil
	}
	if canonical, ok := c.aliases[string(id)]; ok {
		return canonical, nil
	}
	return "", &UnknownScenarioError{ID: raw, Available: c.IDs()}
}

// Lookup returns a copy of every record for the scenario.
func (c *Catalog) Lookup(raw string) (models.Scenario, error) {
	id, err := c.Resolve(raw)
	if err != nil {
		return models.Scenario{}, err
	}
	return clone(c.scenarios[id]), nil
}

// IDs returns the closed set of canonical identifiers in sorted order.
func (c *Catalog) IDs() []models.ScenarioID {
	return append([]models.ScenarioID(nil), c.ids...)
}

// Len reports the number of scenarios.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// All returns copies of every scenario ordered by identifier.
func (c *Catalog) All() []models.Scenario {
	out := make([]models.Scenario, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, clone(c.scenarios[id]))
	}
	return out
}

func clone(s models.Scenario) models.Scenario {
	s.Aliases = append([]string(nil), s.Aliases...)
	s.Alert.Metrics = append([]models.Metric(nil), s.Alert.Metrics...)
	s.Analysis.ContributingFactors = append([]string(nil), s.Analysis.ContributingFactors...)
	s.Plan.SafetyMeasures = append([]string(nil), s.Plan.SafetyMeasures...)
	s.Impact.Details = append([]string(nil), s.Impact.Details...)
	return s
}
