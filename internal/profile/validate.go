package profile

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateProfile checks a profile before any embedding work is done.
func ValidateProfile(p *Profile) error {
	if p == nil {
		return &MalformedInputError{Field: "profile", Reason: "is required"}
	}
	if err := validateStruct("profile", p); err != nil {
		return err
	}
	if !p.hasComparableFields() {
		return &MalformedInputError{Field: "profile", Reason: "needs at least one of title, functions, skills or achievements"}
	}
	return nil
}

// ValidateJobRequirement checks a job requirement before any embedding work is done.
func ValidateJobRequirement(j *JobRequirement) error {
	if j == nil {
		return &MalformedInputError{Field: "jobRequirement", Reason: "is required"}
	}
	if err := validateStruct("jobRequirement", j); err != nil {
		return err
	}
	if !j.hasComparableFields() {
		return &MalformedInputError{Field: "jobRequirement", Reason: "needs at least one of title, functions, skills or outcomes"}
	}
	return nil
}

func validateStruct(root string, v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &MalformedInputError{Field: root, Reason: err.Error()}
	}

	first := verrs[0]
	field := first.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	return &MalformedInputError{
		Field:  root + "." + field,
		Reason: describeTag(first),
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
