// Package signal renders profiles and job requirements into the labeled
// single-line text that is embedded for the overall cosine similarity.
package signal

import (
	"strconv"
	"strings"

	"github.com/spigell/fit-scorer/internal/profile"
)

// Signal is the text embedded for one side of a match.
type Signal string

const (
	LabelTitle        = "TITLE"
	LabelSeniority    = "SENIORITY"
	LabelFunctions    = "FUNCTIONS"
	LabelSkills       = "SKILLS"
	LabelLanguages    = "LANGUAGES"
	LabelEducation    = "EDUCATION"
	LabelExperience   = "EXPERIENCE"
	LabelAchievements = "ACHIEVEMENTS"
	LabelOutcomes     = "OUTCOMES"
	LabelIndustry     = "INDUSTRY"
	LabelWorkMode     = "WORK_MODE"
	LabelLocation     = "LOCATION"

	segmentSeparator = " | "
	itemSeparator    = ", "
)

// ForProfile builds the candidate signal. Segments follow a fixed label order
// and empty fields are skipped, so equal profiles always yield equal text.
func ForProfile(p *profile.Profile) Signal {
	var b builder
	b.add(LabelTitle, p.Title)
	b.add(LabelSeniority, p.Seniority)
	b.addList(LabelFunctions, p.Functions)
	b.addList(LabelSkills, p.Skills)
	b.addList(LabelLanguages, languages(p.Languages))
	b.add(LabelEducation, education(p.Education))
	if p.YearsOfExperience != nil {
		b.add(LabelExperience, years(*p.YearsOfExperience, ""))
	}
	b.addList(LabelAchievements, p.Achievements)
	b.add(LabelLocation, p.Location)
	return b.signal()
}

// ForJob builds the job signal.
func ForJob(j *profile.JobRequirement) Signal {
	var b builder
	b.add(LabelTitle, j.Title)
	b.add(LabelSeniority, j.Seniority)
	b.addList(LabelFunctions, j.Functions)
	b.addList(LabelSkills, j.Skills)
	b.addList(LabelLanguages, languages(j.Languages))
	if level := strings.TrimSpace(string(j.EducationMin)); level != "" {
		b.add(LabelEducation, level+" or higher")
	}
	if j.YearsMin != nil {
		b.add(LabelExperience, years(*j.YearsMin, "+"))
	}
	b.addList(LabelOutcomes, j.Outcomes)
	b.addList(LabelIndustry, j.Industries)
	b.add(LabelWorkMode, j.WorkMode)
	b.add(LabelLocation, j.Location)
	return b.signal()
}

type builder struct {
	segments []string
}

func (b *builder) add(label, value string) {
	value = clean(value)
	if value == "" {
		return
	}
	b.segments = append(b.segments, label+" "+value)
}

func (b *builder) addList(label string, values []string) {
	items := make([]string, 0, len(values))
	for _, v := range values {
		if v = clean(v); v != "" {
			items = append(items, v)
		}
	}
	if len(items) == 0 {
		return
	}
	b.segments = append(b.segments, label+" "+strings.Join(items, itemSeparator))
}

func (b *builder) signal() Signal {
	return Signal(strings.Join(b.segments, segmentSeparator))
}

// clean collapses whitespace and keeps the segment separator out of values.
func clean(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.Join(strings.Fields(s), " ")
}

func languages(langs []profile.Language) []string {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		name := clean(l.Name)
		if name == "" {
			continue
		}
		if level := clean(l.Proficiency); level != "" {
			name += " (" + level + ")"
		}
		out = append(out, name)
	}
	return out
}

func education(e *profile.Education) string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, part := range []string{string(e.Level), e.Field, e.Institution} {
		if part = clean(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, itemSeparator)
}

func years(value float64, suffix string) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + suffix + " years"
}
