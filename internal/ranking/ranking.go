// Package ranking scores one profile against many jobs and orders the results.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/fit-scorer/internal/logger"
	"github.com/spigell/fit-scorer/internal/profile"
	"github.com/spigell/fit-scorer/internal/scoring"
)

const defaultConcurrency = 4

// Scorer computes the match of a profile against one job.
type Scorer interface {
	ComputeScore(ctx context.Context, p *profile.Profile, j *profile.JobRequirement) (*scoring.MatchResult, error)
}

// Config contains the ranking settings.
type Config struct {
	MinimumScore int  `mapstructure:"minimum-score" json:"minimumScore"`
	DropGated    bool `mapstructure:"drop-gated" json:"dropGated"`
	// Concurrency bounds how many jobs are scored at once.
	Concurrency int `mapstructure:"concurrency" json:"concurrency"`
}

// Candidate is one scored job.
type Candidate struct {
	Index  int                  `json:"index"`
	JobID  string               `json:"jobId,omitempty"`
	Title  string               `json:"title,omitempty"`
	Result *scoring.MatchResult `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`

	err error
}

// Err returns the scoring failure of the candidate, if any.
func (c *Candidate) Err() error { return c.err }

// Ranking is the ordered outcome of Rank.
type Ranking struct {
	Candidates []*Candidate `json:"candidates"`
	Steps      []Step       `json:"steps"`
}

// Ranker scores jobs in parallel and runs the filter pipeline over the results.
type Ranker struct {
	scorer      Scorer
	filters     []Filter
	concurrency int
	logger      *zap.Logger
}

// New creates a Ranker with the gated and minimum_score filters.
func New(scorer Scorer, cfg Config, log *zap.Logger) (*Ranker, error) {
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}

	gated := NewGated()
	if !cfg.DropGated {
		gated.Disable("drop-gated is off")
	}
	filters := []Filter{gated, NewMinimumScore()}
	for _, f := range filters {
		if err := f.Validate(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name(), err)
		}
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Ranker{
		scorer:      scorer,
		filters:     filters,
		concurrency: concurrency,
		logger:      logger.WithFields(log),
	}, nil
}

// Filters reports the status of every configured filter.
func (r *Ranker) Filters() []Status {
	return Describe(r.filters)
}

// Rank scores p against every job. A job that fails to score is kept with its
// error and ordered last; only a malformed profile or cancellation aborts the call.
func (r *Ranker) Rank(ctx context.Context, p *profile.Profile, jobs []*profile.JobRequirement) (*Ranking, error) {
	if err := profile.ValidateProfile(p); err != nil {
		return nil, err
	}

	candidates := make([]*Candidate, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, job := range jobs {
		candidate := &Candidate{Index: i}
		if job != nil {
			candidate.JobID = job.ID
			candidate.Title = job.Title
		}
		candidates[i] = candidate

		g.Go(func() error {
			result, err := r.scorer.ComputeScore(gctx, p, job)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Warn("scoring job failed",
					zap.Int("index", i),
					zap.String("job_id", candidate.JobID),
					zap.Error(err),
				)
				candidate.err = err
				candidate.Error = err.Error()
				return nil
			}
			candidate.Result = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranking := &Ranking{Steps: make([]Step, 0, len(r.filters))}
	for _, f := range r.filters {
		if !f.IsEnabled() {
			r.logger.Debug("filter disabled", zap.String("name", f.Name()))
			continue
		}

		next, step, err := f.Apply(ctx, candidates)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name(), err)
		}
		r.logger.Info("filter step",
			zap.String("name", step.Name),
			zap.Int("initial", step.Initial),
			zap.Int("dropped", step.Dropped),
			zap.Int("left", step.Left),
		)
		ranking.Steps = append(ranking.Steps, step)
		candidates = next
	}

	slices.SortStableFunc(candidates, compareCandidates)
	ranking.Candidates = candidates

	r.logger.Info("ranking completed",
		zap.Int("jobs", len(jobs)),
		zap.Int("ranked", len(candidates)),
	)
	return ranking, nil
}

// compareCandidates orders by score desc, cosine desc, then input order; failures go last.
func compareCandidates(a, b *Candidate) int {
	switch {
	case a.Result == nil && b.Result == nil:
		return cmp.Compare(a.Index, b.Index)
	case a.Result == nil:
		return 1
	case b.Result == nil:
		return -1
	}
	if c := cmp.Compare(b.Result.Score, a.Result.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Result.CosineSimilarity, a.Result.CosineSimilarity); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}
