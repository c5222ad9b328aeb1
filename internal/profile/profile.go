// Package profile holds the typed candidate and job inputs of the matching engine
// together with the boundary decoding that turns collaborator JSON into them.
package profile

import "strings"

// ExperienceBasis tells how the years of experience of a candidate were obtained.
type ExperienceBasis string

const (
	BasisSelfReported ExperienceBasis = "self_reported"
	BasisDateDerived  ExperienceBasis = "date_derived"
)

// Language is a spoken language with an optional proficiency label (e.g. "C1", "native").
type Language struct {
	Name        string `json:"name" validate:"required"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Education describes the highest education of a candidate.
type Education struct {
	Level          EducationLevel `json:"level,omitempty"`
	Field          string         `json:"field,omitempty"`
	Institution    string         `json:"institution,omitempty"`
	GraduationYear int            `json:"graduationYear,omitempty" validate:"omitempty,gte=1900,lte=2200"`
}

// Profile is the structured resume overview of a candidate.
// It is produced by an external extractor and never mutated by the engine.
type Profile struct {
	ID                string          `json:"id,omitempty"`
	Title             string          `json:"title,omitempty"`
	Seniority         string          `json:"seniority,omitempty"`
	Functions         []string        `json:"functions,omitempty"`
	Skills            []string        `json:"skills,omitempty"`
	Languages         []Language      `json:"languages,omitempty" validate:"dive"`
	Education         *Education      `json:"education,omitempty"`
	YearsOfExperience *float64        `json:"yoe,omitempty" validate:"omitempty,gte=0,lte=80"`
	ExperienceBasis   ExperienceBasis `json:"yoeBasis,omitempty" validate:"omitempty,oneof=self_reported date_derived"`
	Achievements      []string        `json:"achievements,omitempty"`
	Location          string          `json:"location,omitempty"`
}

// JobRequirement is the structured description of a job.
type JobRequirement struct {
	ID           string         `json:"id,omitempty"`
	Title        string         `json:"title,omitempty"`
	Seniority    string         `json:"seniority,omitempty"`
	Functions    []string       `json:"functions,omitempty"`
	Skills       []string       `json:"skills,omitempty"`
	Languages    []Language     `json:"languages,omitempty" validate:"dive"`
	YearsMin     *float64       `json:"yoeMin,omitempty" validate:"omitempty,gte=0,lte=80"`
	EducationMin EducationLevel `json:"educationMin,omitempty"`
	Outcomes     []string       `json:"outcomes,omitempty"`
	Industries   []string       `json:"industries,omitempty"`
	WorkMode     string         `json:"workMode,omitempty"`
	Location     string         `json:"location,omitempty"`
}

// LanguageNames returns the non-empty language names in input order.
func LanguageNames(languages []Language) []string {
	names := make([]string, 0, len(languages))
	for _, l := range languages {
		if name := strings.TrimSpace(l.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// EducationLevel returns the education level of the candidate or an empty level.
func (p *Profile) EducationLevel() EducationLevel {
	if p == nil || p.Education == nil {
		return ""
	}
	return p.Education.Level
}

func (p *Profile) hasComparableFields() bool {
	return strings.TrimSpace(p.Title) != "" ||
		anyNonEmpty(p.Functions) ||
		anyNonEmpty(p.Skills) ||
		anyNonEmpty(p.Achievements)
}

func (j *JobRequirement) hasComparableFields() bool {
	return strings.TrimSpace(j.Title) != "" ||
		anyNonEmpty(j.Functions) ||
		anyNonEmpty(j.Skills) ||
		anyNonEmpty(j.Outcomes)
}

func anyNonEmpty(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
