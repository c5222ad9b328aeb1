// Package gate holds the hard requirements that zero a match score when a
// candidate is clearly below the job minimums. Missing data never triggers a gate.
package gate

import (
	"github.com/spigell/fit-scorer/internal/profile"
)

// Type identifies a gate.
type Type string

const (
	TypeExperience Type = "yoe_below_min"
	TypeEducation  Type = "education_below_min"
)

// DefaultExperienceTolerance is how many years below the minimum are still accepted.
const DefaultExperienceTolerance = 1

// Result is one triggered gate.
type Result struct {
	Type         Type                   `json:"type"`
	YOE          *float64               `json:"yoe,omitempty"`
	YOEMin       *float64               `json:"yoeMin,omitempty"`
	Education    profile.EducationLevel `json:"education,omitempty"`
	EducationMin profile.EducationLevel `json:"educationMin,omitempty"`
}

// Evaluator checks the gates of one match.
type Evaluator struct {
	tolerance float64
}

// NewEvaluator creates an Evaluator. A negative tolerance is treated as zero.
func NewEvaluator(experienceTolerance int) *Evaluator {
	if experienceTolerance < 0 {
		experienceTolerance = 0
	}
	return &Evaluator{tolerance: float64(experienceTolerance)}
}

// Evaluate returns the triggered gates in a stable order.
func (e *Evaluator) Evaluate(p *profile.Profile, j *profile.JobRequirement) []Result {
	results := make([]Result, 0, 2)

	if r, ok := e.experience(p, j); ok {
		results = append(results, r)
	}
	if r, ok := education(p, j); ok {
		results = append(results, r)
	}

	return results
}

func (e *Evaluator) experience(p *profile.Profile, j *profile.JobRequirement) (Result, bool) {
	if p.YearsOfExperience == nil || j.YearsMin == nil {
		return Result{}, false
	}
	yoe, yoeMin := *p.YearsOfExperience, *j.YearsMin
	if yoe >= yoeMin-e.tolerance {
		return Result{}, false
	}
	return Result{Type: TypeExperience, YOE: &yoe, YOEMin: &yoeMin}, true
}

func education(p *profile.Profile, j *profile.JobRequirement) (Result, bool) {
	have := p.EducationLevel()
	haveRank, ok := have.Rank()
	if !ok {
		return Result{}, false
	}
	needRank, ok := j.EducationMin.Rank()
	if !ok || haveRank >= needRank {
		return Result{}, false
	}
	return Result{Type: TypeEducation, Education: have, EducationMin: j.EducationMin}, true
}
