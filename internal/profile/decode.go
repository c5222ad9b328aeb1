package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrMalformedInput marks inputs that cannot be scored.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError names the offending field of a rejected input.
type MalformedInputError struct {
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s: %s", e.Field, e.Reason)
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

var (
	leadingNumber     = regexp.MustCompile(`^\s*([0-9]+(?:[.,][0-9]+)?)`)
	floatPtrType      = reflect.TypeOf((*float64)(nil))
	languageType      = reflect.TypeOf(Language{})
	educationPtrType  = reflect.TypeOf((*Education)(nil))
	educationLvlType  = reflect.TypeOf(EducationLevel(""))
	experienceBasType = reflect.TypeOf(ExperienceBasis(""))
)

// DecodeProfile turns a generic JSON value (as produced by encoding/json into any)
// into a validated Profile.
func DecodeProfile(raw any) (*Profile, error) {
	p := &Profile{}
	if err := decode("profile", raw, p); err != nil {
		return nil, err
	}
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeJobRequirement turns a generic JSON value into a validated JobRequirement.
func DecodeJobRequirement(raw any) (*JobRequirement, error) {
	j := &JobRequirement{}
	if err := decode("jobRequirement", raw, j); err != nil {
		return nil, err
	}
	if err := ValidateJobRequirement(j); err != nil {
		return nil, err
	}
	return j, nil
}

// ParseProfileJSON decodes a JSON document into a Profile.
func ParseProfileJSON(data []byte) (*Profile, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedInputError{Field: "profile", Reason: err.Error()}
	}
	return DecodeProfile(raw)
}

// ParseJobRequirementJSON decodes a JSON document into a JobRequirement.
func ParseJobRequirementJSON(data []byte) (*JobRequirement, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedInputError{Field: "jobRequirement", Reason: err.Error()}
	}
	return DecodeJobRequirement(raw)
}

// LoadProfileFile reads a profile JSON document from disk.
func LoadProfileFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	return ParseProfileJSON(data)
}

// LoadJobRequirementsFile reads either a single job requirement object or an array of them.
func LoadJobRequirementsFile(path string) ([]*JobRequirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job requirements %s: %w", path, err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedInputError{Field: "jobRequirement", Reason: err.Error()}
	}

	items, ok := raw.([]any)
	if !ok {
		j, err := DecodeJobRequirement(raw)
		if err != nil {
			return nil, err
		}
		return []*JobRequirement{j}, nil
	}

	jobs := make([]*JobRequirement, 0, len(items))
	for i, item := range items {
		j, err := DecodeJobRequirement(item)
		if err != nil {
			var malformed *MalformedInputError
			if errors.As(err, &malformed) {
				malformed.Field = fmt.Sprintf("jobRequirements[%d]%s", i, strings.TrimPrefix(malformed.Field, "jobRequirement"))
			}
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func decode(root string, raw any, out any) error {
	if raw == nil {
		return &MalformedInputError{Field: root, Reason: "is required"}
	}
	if _, ok := raw.(map[string]any); !ok {
		return &MalformedInputError{Field: root, Reason: fmt.Sprintf("expected an object, got %T", raw)}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       collaboratorHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return &MalformedInputError{Field: root, Reason: err.Error()}
	}
	return nil
}

// collaboratorHook accepts the loose shapes extractors tend to emit:
// bare language names, education given as a plain string, "5+ years" for
// experience and free-text education levels.
func collaboratorHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	text, _ := data.(string)

	switch to {
	case languageType:
		return map[string]any{"name": strings.TrimSpace(text)}, nil
	case educationPtrType:
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		return map[string]any{"level": text}, nil
	case educationLvlType:
		return ParseEducationLevel(text), nil
	case experienceBasType:
		return ExperienceBasis(strings.ToLower(strings.TrimSpace(text))), nil
	case floatPtrType:
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		m := leadingNumber.FindStringSubmatch(text)
		if m == nil {
			return nil, fmt.Errorf("cannot read a number from %q", text)
		}
		value, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err != nil {
			return nil, err
		}
		return value, nil
	}
	return data, nil
}
