// Package features defines the fixed input contract for the dropout
// classifier: the set of required feature keys, the mapping to the
// dataset column names the model was trained on, and presence
// validation.
package features

import (
	"fmt"
	"strings"
)

// Record is one student's raw feature payload as submitted by a
// caller. Values are kept untyped here; numeric coercion happens at
// inference time.
type Record map[string]interface{}

// ModelInput is a single row shaped the way the trained classifier
// expects it: dataset column names, in training order.
type ModelInput struct {
	Columns []string
	Values  []interface{}
}

// feature pairs an API key with its dataset column name. The slice
// below is ordered exactly as the model's training columns; that order
// is part of the contract and must never be derived at runtime.
type feature struct {
	Key    string
	Column string
}

var contract = []feature{
	{"marital_status", "Marital status"},
	{"application_mode", "Application mode"},
	{"course", "Course"},
	{"daytime_evening_attendance", "Daytime/evening attendance"},
	{"previous_qualification", "Previous qualification"},
	{"nationality", "Nacionality"},
	{"mother_qualification", "Mother's qualification"},
	{"father_qualification", "Father's qualification"},
	{"mother_occupation", "Mother's occupation"},
	{"father_occupation", "Father's occupation"},
	{"displaced", "Displaced"},
	{"educational_special_needs", "Educational special needs"},
	{"debtor", "Debtor"},
	{"tuition_fees_up_to_date", "Tuition fees up to date"},
	{"gender", "Gender"},
	{"scholarship_holder", "Scholarship holder"},
	{"age_at_enrollment", "Age at enrollment"},
	{"international", "International"},
	{"curricular_units_1st_sem_credited", "Curricular units 1st sem (credited)"},
	{"curricular_units_1st_sem_enrolled", "Curricular units 1st sem (enrolled)"},
	{"curricular_units_1st_sem_evaluations", "Curricular units 1st sem (evaluations)"},
	{"curricular_units_1st_sem_approved", "Curricular units 1st sem (approved)"},
	{"curricular_units_1st_sem_grade", "Curricular units 1st sem (grade)"},
	{"curricular_units_2nd_sem_credited", "Curricular units 2nd sem (credited)"},
	{"curricular_units_2nd_sem_enrolled", "Curricular units 2nd sem (enrolled)"},
	{"curricular_units_2nd_sem_evaluations", "Curricular units 2nd sem (evaluations)"},
	{"curricular_units_2nd_sem_approved", "Curricular units 2nd sem (approved)"},
	{"curricular_units_2nd_sem_grade", "Curricular units 2nd sem (grade)"},
	{"unemployment_rate", "Unemployment rate"},
	{"inflation_rate", "Inflation rate"},
	{"gdp", "GDP"},
}

// Count is the number of required features.
const Count = 31

// Keys returns the required feature keys in contract order.
func Keys() []string {
	keys := make([]string, len(contract))
	for i, f := range contract {
		keys[i] = f.Key
	}
	return keys
}

// Columns returns the dataset column names in training order.
func Columns() []string {
	cols := make([]string, len(contract))
	for i, f := range contract {
		cols[i] = f.Column
	}
	return cols
}

// Mapping returns the key → column name mapping, primarily for the
// features endpoint consumed by upload tooling.
func Mapping() map[string]string {
	m := make(map[string]string, len(contract))
	for _, f := range contract {
		m[f.Key] = f.Column
	}
	return m
}

// MissingError reports required features absent from a record. It
// always carries the complete list so a caller can fix every omission
// in one round-trip.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required features: %s", strings.Join(e.Keys, ", "))
}

// Validate checks that every required feature key is present in the
// record. Extra keys are ignored; values are not inspected.
func Validate(record Record) error {
	var missing []string
	for _, f := range contract {
		if _, ok := record[f.Key]; !ok {
			missing = append(missing, f.Key)
		}
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

// ToModelInput translates an already-validated record into the
// column-named single-row form the classifier expects. The caller must
// have run Validate first; a missing key here yields a nil value in
// the row.
func ToModelInput(record Record) *ModelInput {
	in := &ModelInput{
		Columns: make([]string, len(contract)),
		Values:  make([]interface{}, len(contract)),
	}
	for i, f := range contract {
		in.Columns[i] = f.Column
		in.Values[i] = record[f.Key]
	}
	return in
}
