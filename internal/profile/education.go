package profile

import "strings"

// EducationLevel is a canonical rung of the education ladder.
// Values that could not be mapped to a rung are kept as free text and rank as unknown.
type EducationLevel string

const (
	EducationNone       EducationLevel = "none"
	EducationHighSchool EducationLevel = "high_school"
	EducationDiploma    EducationLevel = "diploma"
	EducationAssociate  EducationLevel = "associate"
	EducationBachelor   EducationLevel = "bachelor"
	EducationMaster     EducationLevel = "master"
	EducationDoctorate  EducationLevel = "doctorate"
)

// Diploma and certificate share a rung.
var educationRanks = map[EducationLevel]int{
	EducationNone:       0,
	EducationHighSchool: 1,
	EducationDiploma:    2,
	EducationAssociate:  3,
	EducationBachelor:   4,
	EducationMaster:     5,
	EducationDoctorate:  6,
}

var educationAliases = map[string]EducationLevel{
	"none":             EducationNone,
	"no degree":        EducationNone,
	"no formal":        EducationNone,
	"high school":      EducationHighSchool,
	"highschool":       EducationHighSchool,
	"high_school":      EducationHighSchool,
	"secondary":        EducationHighSchool,
	"secondary school": EducationHighSchool,
	"ged":              EducationHighSchool,
	"diploma":          EducationDiploma,
	"certificate":      EducationDiploma,
	"certification":    EducationDiploma,
	"vocational":       EducationDiploma,
	"associate":        EducationAssociate,
	"associates":       EducationAssociate,
	"associate degree": EducationAssociate,
	"bachelor":         EducationBachelor,
	"bachelors":        EducationBachelor,
	"bachelor degree":  EducationBachelor,
	"undergraduate":    EducationBachelor,
	"bsc":              EducationBachelor,
	"bs":               EducationBachelor,
	"ba":               EducationBachelor,
	"beng":             EducationBachelor,
	"master":           EducationMaster,
	"masters":          EducationMaster,
	"master degree":    EducationMaster,
	"msc":              EducationMaster,
	"ms":               EducationMaster,
	"ma":               EducationMaster,
	"mba":              EducationMaster,
	"meng":             EducationMaster,
	"phd":              EducationDoctorate,
	"doctorate":        EducationDoctorate,
	"doctoral":         EducationDoctorate,
	"doctor":           EducationDoctorate,
	"dphil":            EducationDoctorate,
}

// keyword fallbacks, highest rung first
var educationKeywords = []struct {
	keyword string
	level   EducationLevel
}{
	{"phd", EducationDoctorate},
	{"doctor", EducationDoctorate},
	{"master", EducationMaster},
	{"bachelor", EducationBachelor},
	{"associate", EducationAssociate},
	{"diploma", EducationDiploma},
	{"certific", EducationDiploma},
	{"high school", EducationHighSchool},
	{"secondary", EducationHighSchool},
}

// ParseEducationLevel maps free text ("Master of Science", "B.Sc.", "PhD") to a canonical level.
// Unrecognised text is returned trimmed and lowercased so it can still be displayed.
func ParseEducationLevel(text string) EducationLevel {
	cleaned := cleanEducation(text)
	if cleaned == "" {
		return ""
	}
	if level, ok := educationAliases[cleaned]; ok {
		return level
	}
	compact := strings.ReplaceAll(cleaned, " ", "")
	if level, ok := educationAliases[compact]; ok {
		return level
	}
	for _, kw := range educationKeywords {
		if strings.Contains(cleaned, kw.keyword) {
			return kw.level
		}
	}
	return EducationLevel(cleaned)
}

// Rank returns the position of the level on the ladder and false for unknown levels.
func (l EducationLevel) Rank() (int, bool) {
	rank, ok := educationRanks[l]
	return rank, ok
}

func cleanEducation(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.NewReplacer(".", "", "'", "", "’", "", "-", " ", "_", " ", ",", " ").Replace(text)
	return strings.Join(strings.Fields(text), " ")
}
