package ranking

import (
	"context"
	"fmt"
	"strconv"
)

// Filter represents a single filtering step applied to scored candidates.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, candidates []*Candidate) ([]*Candidate, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Name    string `json:"name"`
	Initial int    `json:"initial"`
	Dropped int    `json:"dropped"`
	Left    int    `json:"left"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep retains the candidates drop rejects. Failed candidates are always kept.
func keep(name string, candidates []*Candidate, drop func(*Candidate) bool) ([]*Candidate, Step) {
	left := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Result != nil && drop(c) {
			continue
		}
		left = append(left, c)
	}
	return left, Step{Name: name, Initial: len(candidates), Dropped: len(candidates) - len(left), Left: len(left)}
}

type gatedFilter struct {
	disabled bool
	reason   string
}

// NewGated creates a filter that removes candidates stopped by a hard gate.
func NewGated() Filter {
	return &gatedFilter{}
}

func (f *gatedFilter) Name() string { return "gated" }

func (f *gatedFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *gatedFilter) IsEnabled() bool { return !f.disabled }

func (f *gatedFilter) Validate(*Config) error { return nil }

func (f *gatedFilter) Apply(_ context.Context, candidates []*Candidate) ([]*Candidate, Step, error) {
	left, step := keep(f.Name(), candidates, func(c *Candidate) bool { return c.Result.Gated() })
	return left, step, nil
}

func (f *gatedFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type minimumScoreFilter struct {
	minimum int
}

// NewMinimumScore creates a filter that removes candidates scoring below the configured minimum.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(string) {}

func (f *minimumScoreFilter) IsEnabled() bool { return true }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumScore < 0 || cfg.MinimumScore > 100 {
		return fmt.Errorf("minimum score must be within [0,100], got %d", cfg.MinimumScore)
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, candidates []*Candidate) ([]*Candidate, Step, error) {
	left, step := keep(f.Name(), candidates, func(c *Candidate) bool { return c.Result.Score < f.minimum })
	return left, step, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"minimum_score": strconv.Itoa(f.minimum)},
	}
}
