// Package matching pairs job terms with candidate terms, first by normalized
// equality and then by embedding similarity.
package matching

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/fit-scorer/internal/textnorm"
)

// Cache namespaces of the two sides of a match.
const (
	NamespaceSource = "left"
	NamespaceTarget = "right"
)

const defaultConcurrency = 8

// Kind tells how a pair was found.
type Kind string

const (
	KindExact    Kind = "exact"
	KindSemantic Kind = "semantic"
)

// TermMatch pairs one target term with the source term that covers it.
type TermMatch struct {
	Target     string  `json:"target"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
	Kind       Kind    `json:"kind"`
}

// VectorSource returns embeddings for text, typically through the embedding cache.
type VectorSource interface {
	Get(ctx context.Context, namespace, id, text string) ([]float32, error)
}

// Matcher finds, for each target term, the best covering source term.
type Matcher struct {
	vectors     VectorSource
	concurrency int
}

// NewMatcher creates a Matcher. concurrency bounds parallel vector lookups per call.
func NewMatcher(vectors VectorSource, concurrency int) *Matcher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Matcher{vectors: vectors, concurrency: concurrency}
}

type term struct {
	raw        string
	normalized string
}

// MatchTerms returns at most one match per target term, in target order.
// Exact matches use up their source term. Every other target is paired with
// its most similar remaining source term; the earliest source wins ties.
// Targets get no entry when nothing remains to compare against.
func (m *Matcher) MatchTerms(ctx context.Context, source, target []string) ([]TermMatch, error) {
	sources := uniqueTerms(source)
	sourceIndex := make(map[string]int, len(sources))
	for i, s := range sources {
		sourceIndex[s.normalized] = i
	}

	matches := make([]*TermMatch, len(target))
	consumed := make([]bool, len(sources))
	var pending []int

	for i, raw := range target {
		normalized := textnorm.Normalize(raw)
		if normalized == "" {
			continue
		}
		if idx, ok := sourceIndex[normalized]; ok {
			matches[i] = &TermMatch{Target: raw, Source: sources[idx].raw, Similarity: 1, Kind: KindExact}
			consumed[idx] = true
			continue
		}
		pending = append(pending, i)
	}

	remaining := make([]term, 0, len(sources))
	for i, s := range sources {
		if !consumed[i] {
			remaining = append(remaining, s)
		}
	}

	if len(pending) > 0 && len(remaining) > 0 {
		if err := m.matchSemantic(ctx, remaining, target, pending, matches); err != nil {
			return nil, err
		}
	}

	out := make([]TermMatch, 0, len(target))
	for _, match := range matches {
		if match != nil {
			out = append(out, *match)
		}
	}
	return out, nil
}

func (m *Matcher) matchSemantic(ctx context.Context, remaining []term, target []string, pending []int, matches []*TermMatch) error {
	sourceVectors := make([][]float32, len(remaining))
	targetVectors := make(map[string][]float32, len(pending))
	targetTexts := make([]string, 0, len(pending))
	for _, i := range pending {
		normalized := textnorm.Normalize(target[i])
		if _, ok := targetVectors[normalized]; !ok {
			targetVectors[normalized] = nil
			targetTexts = append(targetTexts, normalized)
		}
	}
	fetched := make([][]float32, len(targetTexts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, s := range remaining {
		g.Go(func() error {
			v, err := m.vectors.Get(gctx, NamespaceSource, "source-term", s.normalized)
			if err != nil {
				return fmt.Errorf("embed source term %q: %w", s.raw, err)
			}
			sourceVectors[i] = v
			return nil
		})
	}
	for i, text := range targetTexts {
		g.Go(func() error {
			v, err := m.vectors.Get(gctx, NamespaceTarget, "target-term", text)
			if err != nil {
				return fmt.Errorf("embed target term %q: %w", text, err)
			}
			fetched[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, text := range targetTexts {
		targetVectors[text] = fetched[i]
	}

	for _, i := range pending {
		tv := targetVectors[textnorm.Normalize(target[i])]
		best, bestScore := -1, 0.0
		for j := range remaining {
			score := Cosine(tv, sourceVectors[j])
			if best < 0 || score > bestScore {
				best, bestScore = j, score
			}
		}
		matches[i] = &TermMatch{
			Target:     target[i],
			Source:     remaining[best].raw,
			Similarity: Round4(bestScore),
			Kind:       KindSemantic,
		}
	}
	return nil
}

// uniqueTerms keeps the first raw spelling of every normalized term.
func uniqueTerms(values []string) []term {
	seen := make(map[string]struct{}, len(values))
	out := make([]term, 0, len(values))
	for _, raw := range values {
		normalized := textnorm.Normalize(raw)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, term{raw: raw, normalized: normalized})
	}
	return out
}
