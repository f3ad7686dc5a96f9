package questionnaire

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/yanqian/nutrition-advisor/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Build validates form and produces an immutable record. Either every field is
// valid and a complete record is returned, or an invalid_input error describes
// every failing field.
func Build(form Form) (Record, error) {
	form = normalize(form)
	if err := validate.Struct(form); err != nil {
		return Record{}, apperrors.Wrap("invalid_input", describe(err), err)
	}

	rec := Record{
		Gender:    form.Gender,
		Weight:    *form.Weight,
		Diet:      form.Diet,
		Alcohol:   *form.Alcohol,
		Smoking:   form.Smoking,
		Drugs:     form.Drugs,
		SleepTime: *form.SleepTime,
	}
	if rec.Gender == GenderFemale {
		periods := form.Periods
		rec.Periods = &periods
	}
	return rec, nil
}

// normalize trims text answers and drops the periods answer unless it applies.
func normalize(form Form) Form {
	form.Gender = strings.TrimSpace(form.Gender)
	form.Diet = strings.TrimSpace(form.Diet)
	form.Smoking = strings.TrimSpace(form.Smoking)
	form.Drugs = strings.TrimSpace(form.Drugs)
	form.Periods = strings.TrimSpace(form.Periods)
	if form.Gender != GenderFemale {
		form.Periods = ""
	}
	return form
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "invalid questionnaire"
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeField(fe))
	}
	return "invalid questionnaire: " + strings.Join(problems, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "max":
		lo, hi := bounds(field)
		return fmt.Sprintf("%s must be between %d and %d", field, lo, hi)
	default:
		return field + " is invalid"
	}
}

func bounds(field string) (int, int) {
	switch field {
	case "weight":
		return MinWeightKg, MaxWeightKg
	case "alcohol":
		return MinAlcoholUnits, MaxAlcoholUnits
	case "sleep_time":
		return MinSleepHours, MaxSleepHours
	}
	return 0, 0
}

// FormSchema describes the questionnaire so a client can render it.
func FormSchema() Schema {
	yesNo := []string{AnswerYes, AnswerNo}
	return Schema{Fields: []FieldSpec{
		{Name: "gender", Label: "Gender", Kind: "choice", Options: []string{GenderMale, GenderFemale}, Required: true},
		{Name: "weight", Label: "Weight (kg)", Kind: "integer", Min: intPtr(MinWeightKg), Max: intPtr(MaxWeightKg), Default: MinWeightKg, Required: true},
		{Name: "diet", Label: "Diet Type", Kind: "choice", Options: []string{DietVegetarian, DietNonVegetarian, DietVegan}, Required: true},
		{Name: "alcohol", Label: "Alcohol Consumption (drinks per week)", Kind: "integer", Min: intPtr(MinAlcoholUnits), Max: intPtr(MaxAlcoholUnits), Default: 0, Required: true},
		{Name: "smoking", Label: "Smoking Habit", Kind: "choice", Options: yesNo, Required: true},
		{Name: "drugs", Label: "Drug Usage", Kind: "choice", Options: yesNo, Required: true},
		{Name: "sleep_time", Label: "Average Sleep Time (hours per day)", Kind: "integer", Min: intPtr(MinSleepHours), Max: intPtr(MaxSleepHours), Default: 8, Required: true},
		{Name: "periods", Label: "Are your periods regular?", Kind: "choice", Options: yesNo, Required: true, ShownWhen: "gender=" + GenderFemale},
	}}
}

func intPtr(v int) *int {
	return &v
}
