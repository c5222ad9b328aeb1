package gate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/fit-scorer/internal/profile"
)

func years(v float64) *float64 { return &v }

func TestExperienceGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yoe     *float64
		yoeMin  *float64
		trigger bool
	}{
		{name: "well below", yoe: years(3), yoeMin: years(5), trigger: true},
		{name: "within tolerance", yoe: years(4), yoeMin: years(5), trigger: false},
		{name: "fractional below tolerance", yoe: years(3.9), yoeMin: years(5), trigger: true},
		{name: "above minimum", yoe: years(8), yoeMin: years(5), trigger: false},
		{name: "candidate unknown", yoe: nil, yoeMin: years(5), trigger: false},
		{name: "job without minimum", yoe: years(0), yoeMin: nil, trigger: false},
	}

	e := NewEvaluator(DefaultExperienceTolerance)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := e.Evaluate(&profile.Profile{YearsOfExperience: tt.yoe}, &profile.JobRequirement{YearsMin: tt.yoeMin})
			assert.Equal(t, tt.trigger, len(got) == 1 && got[0].Type == TypeExperience, "gates %#v", got)
		})
	}
}

func TestExperienceGateSerialization(t *testing.T) {
	t.Parallel()

	got := NewEvaluator(1).Evaluate(
		&profile.Profile{YearsOfExperience: years(3)},
		&profile.JobRequirement{YearsMin: years(5)},
	)
	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"yoe_below_min","yoe":3,"yoeMin":5}]`, string(data))
}

func TestEducationGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		have    profile.EducationLevel
		need    profile.EducationLevel
		trigger bool
	}{
		{name: "bachelor below master", have: profile.EducationBachelor, need: profile.EducationMaster, trigger: true},
		{name: "doctorate above master", have: profile.EducationDoctorate, need: profile.EducationMaster, trigger: false},
		{name: "equal", have: profile.EducationBachelor, need: profile.EducationBachelor, trigger: false},
		{name: "unknown candidate level", have: "bootcamp", need: profile.EducationBachelor, trigger: false},
		{name: "missing candidate level", have: "", need: profile.EducationBachelor, trigger: false},
		{name: "unknown requirement", have: profile.EducationHighSchool, need: "something", trigger: false},
	}

	e := NewEvaluator(DefaultExperienceTolerance)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &profile.Profile{}
			if tt.have != "" {
				p.Education = &profile.Education{Level: tt.have}
			}
			got := e.Evaluate(p, &profile.JobRequirement{EducationMin: tt.need})
			assert.Equal(t, tt.trigger, len(got) == 1 && got[0].Type == TypeEducation, "gates %#v", got)
		})
	}
}

func TestBothGatesKeepOrder(t *testing.T) {
	t.Parallel()

	got := NewEvaluator(0).Evaluate(
		&profile.Profile{YearsOfExperience: years(1), Education: &profile.Education{Level: profile.EducationHighSchool}},
		&profile.JobRequirement{YearsMin: years(2), EducationMin: profile.EducationBachelor},
	)
	require.Len(t, got, 2)
	assert.Equal(t, TypeExperience, got[0].Type)
	assert.Equal(t, TypeEducation, got[1].Type)
}
