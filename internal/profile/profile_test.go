package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileJSONAcceptsLooseShapes(t *testing.T) {
	t.Parallel()

	p, err := ParseProfileJSON([]byte(`{
		"title":     "Sales Manager",
		"skills":    "Salesforce",
		"languages": ["English", {"name": "German", "proficiency": "B2"}],
		"education": "Master of Science",
		"yoe":       "5+ years",
		"yoeBasis":  "Self_Reported"
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Salesforce"}, p.Skills, "a single skill becomes a list")
	require.Len(t, p.Languages, 2)
	assert.Equal(t, "English", p.Languages[0].Name)
	assert.Equal(t, "B2", p.Languages[1].Proficiency)
	assert.Equal(t, EducationMaster, p.EducationLevel())
	require.NotNil(t, p.YearsOfExperience)
	assert.Equal(t, 5.0, *p.YearsOfExperience)
	assert.Equal(t, BasisSelfReported, p.ExperienceBasis)
}

func TestParseProfileJSONKeepsMissingExperienceUnknown(t *testing.T) {
	t.Parallel()

	p, err := ParseProfileJSON([]byte(`{"title": "Engineer", "yoe": ""}`))
	require.NoError(t, err)
	assert.Nil(t, p.YearsOfExperience)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		field string
	}{
		{name: "not an object", input: `["a"]`, field: "profile"},
		{name: "negative experience", input: `{"title": "Engineer", "yoe": -2}`, field: "profile.yoe"},
		{name: "unknown basis", input: `{"title": "Engineer", "yoeBasis": "guessed"}`, field: "profile.yoeBasis"},
		{name: "language without name", input: `{"title": "Engineer", "languages": [{"proficiency": "C1"}]}`, field: "profile.languages[0].name"},
		{name: "nothing comparable", input: `{"location": "Berlin"}`, field: "profile"},
		{name: "garbage experience", input: `{"title": "Engineer", "yoe": "many"}`, field: "profile"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseProfileJSON([]byte(tt.input))
			require.ErrorIs(t, err, ErrMalformedInput)
			var malformed *MalformedInputError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.field, malformed.Field)
		})
	}
}

func TestDecodeJobRequirement(t *testing.T) {
	t.Parallel()

	j, err := ParseJobRequirementJSON([]byte(`{
		"title":        "Account Executive",
		"yoeMin":       5,
		"educationMin": "Bachelor's degree",
		"languages":    ["English"],
		"outcomes":     ["grow pipeline"]
	}`))
	require.NoError(t, err)

	require.NotNil(t, j.YearsMin)
	assert.Equal(t, 5.0, *j.YearsMin)
	assert.Equal(t, EducationBachelor, j.EducationMin)
	assert.Equal(t, []string{"English"}, LanguageNames(j.Languages))
}

func TestLoadJobRequirementsFileReadsArrays(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title": "A"}, {"title": "B", "yoeMin": -1}]`), 0o600))

	_, err := LoadJobRequirementsFile(path)
	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "jobRequirements[1].yoeMin", malformed.Field)

	require.NoError(t, os.WriteFile(path, []byte(`{"title": "A"}`), 0o600))
	jobs, err := LoadJobRequirementsFile(path)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "A", jobs[0].Title)
}

func TestParseEducationLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]EducationLevel{
		"PhD":                      EducationDoctorate,
		"B.Sc.":                    EducationBachelor,
		"Bachelor of Arts":         EducationBachelor,
		"M.B.A.":                   EducationMaster,
		"High School":              EducationHighSchool,
		"Professional Certificate": EducationDiploma,
		"Associate degree":         EducationAssociate,
		"":                         "",
		"Bootcamp":                 "bootcamp",
	}

	for input, want := range tests {
		assert.Equal(t, want, ParseEducationLevel(input), "ParseEducationLevel(%q)", input)
	}

	_, ok := EducationLevel("bootcamp").Rank()
	assert.False(t, ok, "unknown levels have no rank")
	bachelor, _ := EducationBachelor.Rank()
	master, _ := EducationMaster.Rank()
	assert.Less(t, bachelor, master)
}

func TestParseSeniority(t *testing.T) {
	t.Parallel()

	tests := map[string]Seniority{
		"Junior Developer":                  SeniorityJunior,
		"Mid-level Account Manager":         SeniorityMid,
		"Senior Engineer":                   SenioritySenior,
		"Head of Sales":                     SeniorityHead,
		"Engineering Director":              SeniorityDirector,
		"Vice President, Customer Success":  SeniorityVP,
		"CTO":                               SeniorityExecutive,
		"Sales Manager":                     SeniorityUnknown,
		"Senior Staff Engineer / Tech Lead": SeniorityLead,
	}

	for input, want := range tests {
		assert.Equal(t, want, ParseSeniority(input), "ParseSeniority(%q)", input)
	}

	assert.Equal(t, SeniorityJunior, SeniorityOf("", "Junior Analyst"), "title fallback")
	assert.Equal(t, SeniorityLead, SeniorityOf("lead", "Junior Analyst"), "explicit label wins")
}

func TestHighestSeniorityOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SeniorityHead, HighestSeniorityOf("Senior", "Head of Sales"))
	assert.Equal(t, SeniorityLead, HighestSeniorityOf("lead", "Junior Analyst"))
	assert.Equal(t, SeniorityJunior, HighestSeniorityOf("", "Junior Analyst"))
	assert.Equal(t, SeniorityUnknown, HighestSeniorityOf("", "Sales Manager"))
}
