package questionnaire

// Gender options offered by the form.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// Diet options offered by the form.
const (
	DietVegetarian    = "Vegetarian"
	DietNonVegetarian = "Non-Vegetarian"
	DietVegan         = "Vegan"
)

// Yes/No answers.
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// Numeric bounds, inclusive. The validate tags on Form must agree with these.
const (
	MinWeightKg     = 30
	MaxWeightKg     = 200
	MinAlcoholUnits = 0
	MaxAlcoholUnits = 20
	MinSleepHours   = 4
	MaxSleepHours   = 12
)

// Form is the raw submission. Pointer fields distinguish a missing number from zero.
type Form struct {
	Gender    string `json:"gender" validate:"required,oneof=Male Female"`
	Weight    *int   `json:"weight" validate:"required,min=30,max=200"`
	Diet      string `json:"diet" validate:"required,oneof=Vegetarian Non-Vegetarian Vegan"`
	Alcohol   *int   `json:"alcohol" validate:"required,min=0,max=20"`
	Smoking   string `json:"smoking" validate:"required,oneof=Yes No"`
	Drugs     string `json:"drugs" validate:"required,oneof=Yes No"`
	SleepTime *int   `json:"sleep_time" validate:"required,min=4,max=12"`
	Periods   string `json:"periods,omitempty" validate:"required_if=Gender Female,omitempty,oneof=Yes No"`
}

// Record is a validated questionnaire. Periods is set iff Gender is Female.
type Record struct {
	Gender    string
	Weight    int
	Diet      string
	Alcohol   int
	Smoking   string
	Drugs     string
	SleepTime int
	Periods   *string
}

// FieldSpec describes one form field for the presentation layer.
type FieldSpec struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Options  []string `json:"options,omitempty"`
	Min      *int     `json:"min,omitempty"`
	Max      *int     `json:"max,omitempty"`
	Default  any      `json:"default,omitempty"`
	Required bool     `json:"required"`
	// ShownWhen is a "field=value" condition; empty means always shown.
	ShownWhen string `json:"shownWhen,omitempty"`
}

// Schema is the full form description.
type Schema struct {
	Fields []FieldSpec `json:"fields"`
}
