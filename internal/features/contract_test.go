package features

import (
	"errors"
	"testing"
)

func fullRecord() Record {
	record := make(Record, Count)
	for _, key := range Keys() {
		record[key] = 1
	}
	return record
}

func TestContractShape(t *testing.T) {
	keys := Keys()
	cols := Columns()
	if len(keys) != Count {
		t.Fatalf("expected %d keys, got %d", Count, len(keys))
	}
	if len(cols) != Count {
		t.Fatalf("expected %d columns, got %d", Count, len(cols))
	}

	// The mapping must be bijective.
	seen := make(map[string]bool, Count)
	for _, col := range cols {
		if seen[col] {
			t.Fatalf("duplicate column %q", col)
		}
		seen[col] = true
	}

	mapping := Mapping()
	if len(mapping) != Count {
		t.Fatalf("expected %d mapping entries, got %d", Count, len(mapping))
	}
	if mapping["nationality"] != "Nacionality" {
		t.Fatalf("unexpected column for nationality: %q", mapping["nationality"])
	}
	if mapping["curricular_units_1st_sem_grade"] != "Curricular units 1st sem (grade)" {
		t.Fatalf("unexpected column: %q", mapping["curricular_units_1st_sem_grade"])
	}
}

func TestValidateComplete(t *testing.T) {
	if err := Validate(fullRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateIgnoresExtraKeys(t *testing.T) {
	record := fullRecord()
	record["student_name"] = "someone"
	if err := Validate(record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateNamesEveryMissingKey(t *testing.T) {
	record := fullRecord()
	delete(record, "course")
	delete(record, "gdp")

	err := Validate(record)
	if err == nil {
		t.Fatal("expected error")
	}
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %T", err)
	}
	if len(missing.Keys) != 2 {
		t.Fatalf("expected 2 missing keys, got %v", missing.Keys)
	}
	found := map[string]bool{}
	for _, k := range missing.Keys {
		found[k] = true
	}
	if !found["course"] || !found["gdp"] {
		t.Fatalf("expected course and gdp in %v", missing.Keys)
	}
}

func TestValidateEmptyRecord(t *testing.T) {
	err := Validate(Record{})
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %T", err)
	}
	if len(missing.Keys) != Count {
		t.Fatalf("expected all %d keys missing, got %d", Count, len(missing.Keys))
	}
}

func TestToModelInputOrderAndRename(t *testing.T) {
	record := fullRecord()
	record["marital_status"] = 2
	record["gdp"] = 1.74

	in := ToModelInput(record)
	if len(in.Columns) != Count || len(in.Values) != Count {
		t.Fatalf("expected %d columns and values, got %d/%d", Count, len(in.Columns), len(in.Values))
	}
	if in.Columns[0] != "Marital status" {
		t.Fatalf("expected first column to be Marital status, got %q", in.Columns[0])
	}
	if in.Columns[Count-1] != "GDP" {
		t.Fatalf("expected last column to be GDP, got %q", in.Columns[Count-1])
	}
	if in.Values[0] != 2 {
		t.Fatalf("expected first value 2, got %v", in.Values[0])
	}
	if in.Values[Count-1] != 1.74 {
		t.Fatalf("expected last value 1.74, got %v", in.Values[Count-1])
	}
}
