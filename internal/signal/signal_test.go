package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/fit-scorer/internal/profile"
)

func floatPtr(v float64) *float64 { return &v }

func TestForProfileOrdersSegmentsAndSkipsEmpty(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{
		Title:             "Account Manager",
		Functions:         []string{"Key accounts", " ", "Upselling"},
		Skills:            []string{"Salesforce"},
		Languages:         []profile.Language{{Name: "English", Proficiency: "C1"}, {Name: "German"}},
		Education:         &profile.Education{Level: profile.EducationMaster, Field: "Economics"},
		YearsOfExperience: floatPtr(6.5),
		Achievements:      []string{"Grew revenue 30%"},
		Location:          "Berlin",
	}

	want := "TITLE Account Manager | FUNCTIONS Key accounts, Upselling | SKILLS Salesforce | " +
		"LANGUAGES English (C1), German | EDUCATION master, Economics | EXPERIENCE 6.5 years | " +
		"ACHIEVEMENTS Grew revenue 30% | LOCATION Berlin"

	assert.Equal(t, want, string(ForProfile(p)))
}

func TestForJob(t *testing.T) {
	t.Parallel()

	j := &profile.JobRequirement{
		Title:        "Sales | Lead",
		Seniority:    "senior",
		Skills:       []string{"CRM"},
		YearsMin:     floatPtr(5),
		EducationMin: profile.EducationBachelor,
		Outcomes:     []string{"Close enterprise deals"},
		Industries:   []string{"SaaS"},
		WorkMode:     "remote",
	}

	want := "TITLE Sales / Lead | SENIORITY senior | SKILLS CRM | EDUCATION bachelor or higher | " +
		"EXPERIENCE 5+ years | OUTCOMES Close enterprise deals | INDUSTRY SaaS | WORK_MODE remote"

	assert.Equal(t, want, string(ForJob(j)))
}

func TestSignalsAreDeterministic(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{Title: "Engineer", Skills: []string{"Go", "SQL"}}
	assert.Equal(t, ForProfile(p), ForProfile(p))
	assert.Empty(t, string(ForProfile(&profile.Profile{})))
}
