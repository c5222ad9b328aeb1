// Package scoring composes the fit score of a candidate profile against a job
// from signal similarity, term overlaps, gates and penalties.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/fit-scorer/internal/gate"
	"github.com/spigell/fit-scorer/internal/logger"
	"github.com/spigell/fit-scorer/internal/matching"
	"github.com/spigell/fit-scorer/internal/profile"
	"github.com/spigell/fit-scorer/internal/signal"
	"github.com/spigell/fit-scorer/internal/textnorm"
)

const (
	maxScore = 100
	minScore = 0

	// Signal namespaces are separate from the term namespaces so a one-word
	// signal never collides with a term of the same text.
	NamespaceProfileSignal = "profile-signal"
	NamespaceJobSignal     = "job-signal"

	previewLimit = 160
)

// Composer computes MatchResults. It is safe for concurrent use.
type Composer struct {
	vectors matching.VectorSource
	terms   *matching.Matcher
	gates   *gate.Evaluator
	cfg     Config
	common  map[string]struct{}
	logger  *zap.Logger
}

// NewComposer validates cfg and creates a Composer reading vectors from vectors.
func NewComposer(vectors matching.VectorSource, cfg Config, log *zap.Logger) (*Composer, error) {
	if vectors == nil {
		return nil, fmt.Errorf("vector source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}

	common := make(map[string]struct{}, len(cfg.CommonLanguages))
	for _, l := range cfg.CommonLanguages {
		if n := textnorm.Normalize(l); n != "" {
			common[n] = struct{}{}
		}
	}

	return &Composer{
		vectors: vectors,
		terms:   matching.NewMatcher(vectors, cfg.Concurrency),
		gates:   gate.NewEvaluator(cfg.ExperienceTolerance),
		cfg:     cfg,
		common:  common,
		logger:  logger.WithFields(log),
	}, nil
}

// Config returns the configuration in use.
func (c *Composer) Config() Config {
	return c.cfg
}

// ComputeScore compares p against j. Inputs are validated before any embedding
// call. Any embedding failure fails the whole call; no partial result is returned.
func (c *Composer) ComputeScore(ctx context.Context, p *profile.Profile, j *profile.JobRequirement) (*MatchResult, error) {
	if err := profile.ValidateProfile(p); err != nil {
		return nil, err
	}
	if err := profile.ValidateJobRequirement(j); err != nil {
		return nil, err
	}

	result := newResult()
	result.Signals = Signals{
		Profile: string(signal.ForProfile(p)),
		Job:     string(signal.ForJob(j)),
	}

	c.logger.Debug("computing match",
		append(
			logger.Preview("profile_signal", result.Signals.Profile, previewLimit),
			logger.Preview("job_signal", result.Signals.Job, previewLimit)...,
		)...,
	)

	var profileVec, jobVec []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.vectors.Get(gctx, NamespaceProfileSignal, p.ID, result.Signals.Profile)
		if err != nil {
			return fmt.Errorf("embed profile signal: %w", err)
		}
		profileVec = v
		return nil
	})
	g.Go(func() error {
		v, err := c.vectors.Get(gctx, NamespaceJobSignal, j.ID, result.Signals.Job)
		if err != nil {
			return fmt.Errorf("embed job signal: %w", err)
		}
		jobVec = v
		return nil
	})

	pairs := []struct {
		category Category
		source   []string
		target   []string
		out      *[]matching.TermMatch
	}{
		{CategoryFunctions, p.Functions, j.Functions, &result.Overlaps.Functions},
		{CategorySkills, p.Skills, j.Skills, &result.Overlaps.Skills},
		{CategoryLanguages, profile.LanguageNames(p.Languages), profile.LanguageNames(j.Languages), &result.Overlaps.Languages},
		{CategoryOutcomes, p.Achievements, j.Outcomes, &result.Overlaps.Outcomes},
	}
	for _, pair := range pairs {
		g.Go(func() error {
			matches, err := c.terms.MatchTerms(gctx, pair.source, pair.target)
			if err != nil {
				return fmt.Errorf("match %s: %w", pair.category, err)
			}
			*pair.out = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	cosine := matching.Cosine(profileVec, jobVec)
	result.CosineSimilarity = matching.Round4(cosine)
	result.BaseScore = int(math.Round(cosine * float64(c.cfg.CosineWeight)))
	result.Reasons = append(result.Reasons, Reason{
		Kind:   ReasonBase,
		Type:   "cosine",
		Amount: result.BaseScore,
		Detail: fmt.Sprintf("cosine %.4f x weight %d", result.CosineSimilarity, c.cfg.CosineWeight),
	})

	if gates := c.gates.Evaluate(p, j); len(gates) > 0 {
		result.Gates = gates
		c.applyGates(result)
		c.logResult(p, j, result)
		return result, nil
	}

	score := result.BaseScore
	for _, category := range categories {
		if boost, ok := c.boost(category, result.Overlaps.of(category)); ok {
			result.Boosts = append(result.Boosts, boost)
			result.Reasons = append(result.Reasons, Reason{Kind: ReasonBoost, Type: boost.Type, Amount: boost.Amount, Detail: boost.Detail})
			score += boost.Amount
		}
	}

	for _, penalty := range c.penalties(p, j, result.Overlaps.Languages) {
		result.Penalties = append(result.Penalties, penalty)
		result.Reasons = append(result.Reasons, Reason{Kind: ReasonPenalty, Type: penalty.Type, Amount: penalty.Amount, Detail: penalty.Detail})
		score += penalty.Amount
	}

	clamped := clamp(score)
	if clamped != score {
		result.Reasons = append(result.Reasons, Reason{
			Kind:   ReasonClamp,
			Type:   "clamp",
			Amount: clamped - score,
			Detail: fmt.Sprintf("raw score %d clamped to [%d,%d]", score, minScore, maxScore),
		})
	}
	result.Score = clamped

	c.logResult(p, j, result)
	return result, nil
}

// applyGates zeroes the score. The first gate carries the amount that cancels the base.
func (c *Composer) applyGates(result *MatchResult) {
	offset := -result.BaseScore
	for _, g := range result.Gates {
		result.Reasons = append(result.Reasons, Reason{
			Kind:   ReasonGate,
			Type:   string(g.Type),
			Amount: offset,
			Detail: describeGate(g),
		})
		offset = 0
	}
	result.Score = 0
}

func (c *Composer) boost(category Category, matches []matching.TermMatch) (Adjustment, bool) {
	exact, semantic := 0, 0
	for _, m := range matches {
		switch {
		case m.Kind == matching.KindExact:
			exact++
		case m.Similarity >= c.cfg.SemanticMinSimilarity:
			semantic++
		}
	}

	counted := exact + semantic
	amount := c.cfg.Boosts.of(category) * counted
	if limit := c.cfg.Caps.of(category); amount > limit {
		amount = limit
	}
	if counted == 0 || amount <= 0 {
		return Adjustment{}, false
	}

	return Adjustment{
		Type:   string(category) + "_overlap",
		Amount: amount,
		Detail: fmt.Sprintf("%d matched (%d exact, %d semantic)", counted, exact, semantic),
	}, true
}

func (c *Composer) penalties(p *profile.Profile, j *profile.JobRequirement, languageMatches []matching.TermMatch) []Adjustment {
	var out []Adjustment

	// a profile listing no languages at all says nothing about them
	if len(profile.LanguageNames(p.Languages)) > 0 {
		covered := make(map[string]bool, len(languageMatches))
		for _, m := range languageMatches {
			if m.Kind == matching.KindExact || m.Similarity >= c.cfg.SemanticMinSimilarity {
				covered[m.Target] = true
			}
		}
		for _, name := range profile.LanguageNames(j.Languages) {
			if covered[name] {
				continue
			}
			amount := c.cfg.Penalties.LanguageMissing
			if _, ok := c.common[textnorm.Normalize(name)]; ok {
				amount = c.cfg.Penalties.LanguageMissingCommon
			}
			if amount > 0 {
				out = append(out, Adjustment{Type: PenaltyLanguageMissing, Amount: -amount, Detail: name})
			}
		}
	}

	jobLevel := profile.SeniorityOf(j.Seniority, j.Title)
	// a "Senior" label does not hide a "Head of" title
	candidateLevel := profile.HighestSeniorityOf(p.Seniority, p.Title)
	if (jobLevel == profile.SeniorityJunior || jobLevel == profile.SeniorityMid) &&
		candidateLevel >= profile.SeniorityLead &&
		c.cfg.Penalties.SeniorityMismatch > 0 {
		out = append(out, Adjustment{
			Type:   PenaltySeniorityMismatch,
			Amount: -c.cfg.Penalties.SeniorityMismatch,
			Detail: fmt.Sprintf("job is %s, candidate reads %s", jobLevel, candidateLevel),
		})
	}

	return out
}

func (c *Composer) logResult(p *profile.Profile, j *profile.JobRequirement, result *MatchResult) {
	c.logger.Debug("match computed",
		zap.String("profile_id", p.ID),
		zap.String("job_id", j.ID),
		zap.Int("score", result.Score),
		zap.Float64("cosine", result.CosineSimilarity),
		zap.Int("gates", len(result.Gates)),
		zap.Int("boosts", len(result.Boosts)),
		zap.Int("penalties", len(result.Penalties)),
	)
}

func describeGate(g gate.Result) string {
	switch g.Type {
	case gate.TypeExperience:
		return fmt.Sprintf("%s years of experience, job asks for %s", formatYears(g.YOE), formatYears(g.YOEMin))
	case gate.TypeEducation:
		return fmt.Sprintf("education %s is below %s", g.Education, g.EducationMin)
	}
	return string(g.Type)
}

func formatYears(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func clamp(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
