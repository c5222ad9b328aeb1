package profile

import (
	"strings"
	"unicode"
)

// Seniority is an ordered seniority rung inferred from titles and seniority labels.
type Seniority int

const (
	SeniorityUnknown Seniority = iota
	SeniorityIntern
	SeniorityJunior
	SeniorityMid
	SenioritySenior
	SeniorityLead
	SeniorityHead
	SeniorityDirector
	SeniorityVP
	SeniorityExecutive
)

var seniorityNames = map[Seniority]string{
	SeniorityUnknown:   "unknown",
	SeniorityIntern:    "intern",
	SeniorityJunior:    "junior",
	SeniorityMid:       "mid",
	SenioritySenior:    "senior",
	SeniorityLead:      "lead",
	SeniorityHead:      "head",
	SeniorityDirector:  "director",
	SeniorityVP:        "vp",
	SeniorityExecutive: "executive",
}

var seniorityTokens = map[string]Seniority{
	"intern":       SeniorityIntern,
	"internship":   SeniorityIntern,
	"trainee":      SeniorityIntern,
	"junior":       SeniorityJunior,
	"jr":           SeniorityJunior,
	"entry":        SeniorityJunior,
	"graduate":     SeniorityJunior,
	"mid":          SeniorityMid,
	"middle":       SeniorityMid,
	"intermediate": SeniorityMid,
	"senior":       SenioritySenior,
	"sr":           SenioritySenior,
	"lead":         SeniorityLead,
	"principal":    SeniorityLead,
	"staff":        SeniorityLead,
	"head":         SeniorityHead,
	"director":     SeniorityDirector,
	"vp":           SeniorityVP,
	"svp":          SeniorityVP,
	"evp":          SeniorityVP,
	"chief":        SeniorityExecutive,
	"ceo":          SeniorityExecutive,
	"cto":          SeniorityExecutive,
	"cfo":          SeniorityExecutive,
	"coo":          SeniorityExecutive,
	"cio":          SeniorityExecutive,
	"cmo":          SeniorityExecutive,
}

// ParseSeniority returns the highest rung mentioned in text.
func ParseSeniority(text string) Seniority {
	lowered := strings.ToLower(text)
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	best := SeniorityUnknown
	for _, token := range tokens {
		if level, ok := seniorityTokens[token]; ok && level > best {
			best = level
		}
	}
	if strings.Contains(lowered, "vice president") && best < SeniorityVP {
		best = SeniorityVP
	}
	return best
}

// SeniorityOf reads the explicit seniority label first and falls back to the title.
func SeniorityOf(label, title string) Seniority {
	if level := ParseSeniority(label); level != SeniorityUnknown {
		return level
	}
	return ParseSeniority(title)
}

// HighestSeniorityOf returns the higher of the label and title readings.
func HighestSeniorityOf(label, title string) Seniority {
	return max(ParseSeniority(label), ParseSeniority(title))
}

func (s Seniority) String() string {
	if name, ok := seniorityNames[s]; ok {
		return name
	}
	return "unknown"
}
