package scoring

import (
	"errors"
	"fmt"
)

// CategoryWeights holds one integer per overlap category.
type CategoryWeights struct {
	Functions int `mapstructure:"functions" json:"functions"`
	Skills    int `mapstructure:"skills" json:"skills"`
	Languages int `mapstructure:"languages" json:"languages"`
	Outcomes  int `mapstructure:"outcomes" json:"outcomes"`
}

func (w CategoryWeights) of(c Category) int {
	switch c {
	case CategoryFunctions:
		return w.Functions
	case CategorySkills:
		return w.Skills
	case CategoryLanguages:
		return w.Languages
	case CategoryOutcomes:
		return w.Outcomes
	}
	return 0
}

// Penalties holds the magnitudes subtracted for mismatches.
type Penalties struct {
	LanguageMissing       int `mapstructure:"language-missing" json:"languageMissing"`
	LanguageMissingCommon int `mapstructure:"language-missing-common" json:"languageMissingCommon"`
	SeniorityMismatch     int `mapstructure:"seniority-mismatch" json:"seniorityMismatch"`
}

// Config holds every tunable of the score composition.
type Config struct {
	CosineWeight          int             `mapstructure:"cosine-weight" json:"cosineWeight"`
	ExperienceTolerance   int             `mapstructure:"experience-tolerance" json:"experienceTolerance"`
	SemanticMinSimilarity float64         `mapstructure:"semantic-min-similarity" json:"semanticMinSimilarity"`
	Boosts                CategoryWeights `mapstructure:"boosts" json:"boosts"`
	Caps                  CategoryWeights `mapstructure:"caps" json:"caps"`
	Penalties             Penalties       `mapstructure:"penalties" json:"penalties"`

	// CommonLanguages are required languages whose absence costs LanguageMissingCommon.
	CommonLanguages []string `mapstructure:"common-languages" json:"commonLanguages"`

	// Concurrency bounds parallel term embedding lookups per category.
	Concurrency int `mapstructure:"concurrency" json:"concurrency"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		CosineWeight:          75,
		ExperienceTolerance:   1,
		SemanticMinSimilarity: 0.75,
		Boosts:                CategoryWeights{Functions: 4, Skills: 5, Languages: 5, Outcomes: 3},
		Caps:                  CategoryWeights{Functions: 8, Skills: 15, Languages: 10, Outcomes: 6},
		Penalties: Penalties{
			LanguageMissing:       10,
			LanguageMissingCommon: 4,
			SeniorityMismatch:     5,
		},
		CommonLanguages: []string{"english"},
		Concurrency:     8,
	}
}

// Validate rejects configurations that cannot produce a score in [0,100] sensibly.
func (c Config) Validate() error {
	var errs []error
	if c.CosineWeight < 0 || c.CosineWeight > 100 {
		errs = append(errs, fmt.Errorf("cosine-weight must be within [0,100], got %d", c.CosineWeight))
	}
	if c.ExperienceTolerance < 0 {
		errs = append(errs, fmt.Errorf("experience-tolerance must not be negative, got %d", c.ExperienceTolerance))
	}
	if c.SemanticMinSimilarity < -1 || c.SemanticMinSimilarity > 1 {
		errs = append(errs, fmt.Errorf("semantic-min-similarity must be within [-1,1], got %v", c.SemanticMinSimilarity))
	}
	for _, category := range categories {
		if c.Boosts.of(category) < 0 || c.Caps.of(category) < 0 {
			errs = append(errs, fmt.Errorf("boost and cap of %s must not be negative", category))
		}
	}
	if c.Penalties.LanguageMissing < 0 || c.Penalties.LanguageMissingCommon < 0 || c.Penalties.SeniorityMismatch < 0 {
		errs = append(errs, errors.New("penalties must not be negative"))
	}
	return errors.Join(errs...)
}
