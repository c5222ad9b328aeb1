package scoring

import (
	"github.com/spigell/fit-scorer/internal/gate"
	"github.com/spigell/fit-scorer/internal/matching"
)

// Category is one of the overlap categories that earn boosts.
type Category string

const (
	CategoryFunctions Category = "functions"
	CategorySkills    Category = "skills"
	CategoryLanguages Category = "languages"
	CategoryOutcomes  Category = "outcomes"
)

var categories = []Category{CategoryFunctions, CategorySkills, CategoryLanguages, CategoryOutcomes}

// Reason kinds.
const (
	ReasonBase    = "base"
	ReasonBoost   = "boost"
	ReasonPenalty = "penalty"
	ReasonGate    = "gate"
	ReasonClamp   = "clamp"
)

// Adjustment types.
const (
	PenaltyLanguageMissing   = "language_missing"
	PenaltySeniorityMismatch = "seniority_mismatch"
)

// Overlaps holds the term matches of each category in job term order.
type Overlaps struct {
	Functions []matching.TermMatch `json:"functions"`
	Skills    []matching.TermMatch `json:"skills"`
	Languages []matching.TermMatch `json:"languages"`
	Outcomes  []matching.TermMatch `json:"outcomes"`
}

func (o *Overlaps) of(c Category) []matching.TermMatch {
	switch c {
	case CategoryFunctions:
		return o.Functions
	case CategorySkills:
		return o.Skills
	case CategoryLanguages:
		return o.Languages
	case CategoryOutcomes:
		return o.Outcomes
	}
	return nil
}

// Adjustment is one boost or penalty. Amount is the signed score contribution.
type Adjustment struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
	Detail string `json:"detail,omitempty"`
}

// Reason is one entry of the explanation trail. The amounts of all reasons
// add up to the final score.
type Reason struct {
	Kind   string `json:"kind"`
	Type   string `json:"type"`
	Amount int    `json:"amount"`
	Detail string `json:"detail,omitempty"`
}

// Signals echoes the embedded texts of both sides.
type Signals struct {
	Profile string `json:"profile"`
	Job     string `json:"job"`
}

// MatchResult is the full outcome of one profile/job comparison.
type MatchResult struct {
	Score            int           `json:"score"`
	CosineSimilarity float64       `json:"cosineSimilarity"`
	BaseScore        int           `json:"baseScore"`
	Overlaps         Overlaps      `json:"overlaps"`
	Gates            []gate.Result `json:"gateOutcomes"`
	Boosts           []Adjustment  `json:"boosts"`
	Penalties        []Adjustment  `json:"penalties"`
	Reasons          []Reason      `json:"reasons"`
	Signals          Signals       `json:"signals"`
}

// Gated reports whether a hard requirement zeroed the score.
func (r *MatchResult) Gated() bool {
	return r != nil && len(r.Gates) > 0
}

func newResult() *MatchResult {
	return &MatchResult{
		Overlaps: Overlaps{
			Functions: []matching.TermMatch{},
			Skills:    []matching.TermMatch{},
			Languages: []matching.TermMatch{},
			Outcomes:  []matching.TermMatch{},
		},
		Gates:     []gate.Result{},
		Boosts:    []Adjustment{},
		Penalties: []Adjustment{},
		Reasons:   []Reason{},
	}
}
