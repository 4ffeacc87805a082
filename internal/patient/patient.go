// Package patient holds the single record the form collects and the fixed
// field table that drives rendering, validation and vectorization.
package patient

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxNameLength = 200

var ErrUnknownColumn = errors.New("unknown column")

type Kind string

const (
	KindInt   Kind = "int"
	KindFloat Kind = "float"
)

type Field struct {
	Key     string  `json:"key"`
	Column  string  `json:"column"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step"`
	Kind    Kind    `json:"kind"`
}

// Record is one patient submission. Integer metrics are stored as float64 so
// that a single vector type flows into the scaler.
type Record struct {
	Name                     string  `json:"name" form:"name"`
	Pregnancies              float64 `json:"pregnancies" form:"pregnancies"`
	Glucose                  float64 `json:"glucose" form:"glucose"`
	BloodPressure            float64 `json:"bloodPressure" form:"bloodPressure"`
	SkinThickness            float64 `json:"skinThickness" form:"skinThickness"`
	Insulin                  float64 `json:"insulin" form:"insulin"`
	BMI                      float64 `json:"bmi" form:"bmi"`
	DiabetesPedigreeFunction float64 `json:"diabetesPedigreeFunction" form:"diabetesPedigreeFunction"`
	Age                      float64 `json:"age" form:"age"`
}

type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var fields = []Field{
	{Key: "pregnancies", Column: "Pregnancies", Label: "Pregnancies", Min: 0, Max: 17, Default: 1, Step: 1, Kind: KindInt},
	{Key: "glucose", Column: "Glucose", Label: "Glucose", Min: 0, Max: 300, Default: 120, Step: 1, Kind: KindInt},
	{Key: "bloodPressure", Column: "BloodPressure", Label: "Blood Pressure (Systolic, mm Hg)", Min: 60, Max: 180, Default: 120, Step: 1, Kind: KindInt},
	{Key: "skinThickness", Column: "SkinThickness", Label: "Skin Thickness (mm)", Min: 0, Max: 100, Default: 20, Step: 1, Kind: KindInt},
	{Key: "insulin", Column: "Insulin", Label: "Insulin (μU/mL)", Min: 0, Max: 850, Default: 80, Step: 1, Kind: KindInt},
	{Key: "bmi", Column: "BMI", Label: "BMI", Min: 0, Max: 80, Default: 24, Step: 0.01, Kind: KindFloat},
	{Key: "diabetesPedigreeFunction", Column: "DiabetesPedigreeFunction", Label: "Diabetes Pedigree Function", Min: 0, Max: 3, Default: 0.4, Step: 0.01, Kind: KindFloat},
	{Key: "age", Column: "Age", Label: "Age", Min: 21, Max: 90, Default: 21, Step: 1, Kind: KindInt},
}

// Fields returns the ordered field table. The slice is a copy.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Columns returns the dataset column names in field order.
func Columns() []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Column)
	}
	return out
}

func Default() Record {
	var r Record
	for _, f := range fields {
		*r.ptr(f.Key) = f.Default
	}
	return r
}

// Value returns the metric stored under a field key.
func (r Record) Value(key string) (float64, bool) {
	p := r.ptr(key)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Set stores v under a field key and reports whether the key exists.
func (r *Record) Set(key string, v float64) bool {
	p := r.ptr(key)
	if p == nil {
		return false
	}
	*p = v
	return true
}

func (r *Record) ptr(key string) *float64 {
	switch key {
	case "pregnancies":
		return &r.Pregnancies
	case "glucose":
		return &r.Glucose
	case "bloodPressure":
		return &r.BloodPressure
	case "skinThickness":
		return &r.SkinThickness
	case "insulin":
		return &r.Insulin
	case "bmi":
		return &r.BMI
	case "diabetesPedigreeFunction":
		return &r.DiabetesPedigreeFunction
	case "age":
		return &r.Age
	default:
		return nil
	}
}

type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func (r Record) Validate() error {
	violations := []string{}

	if len([]rune(r.Name)) > maxNameLength {
		violations = append(violations, fmt.Sprintf("Patient Name must be at most %d characters", maxNameLength))
	}

	for _, f := range fields {
		v, _ := r.Value(f.Key)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			violations = append(violations, fmt.Sprintf("%s must be a finite number", f.Label))
			continue
		}
		if v < f.Min || v > f.Max {
			violations = append(violations, fmt.Sprintf("%s must be between %s and %s", f.Label, f.format(f.Min), f.format(f.Max)))
			continue
		}
		if f.Kind == KindInt && v != math.Trunc(v) {
			violations = append(violations, fmt.Sprintf("%s must be a whole number", f.Label))
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Vector orders the record's metrics by the given dataset columns.
func (r Record) Vector(columns []string) ([]float64, error) {
	out := make([]float64, 0, len(columns))
	for _, col := range columns {
		f, ok := fieldByColumn(col)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
		v, _ := r.Value(f.Key)
		out = append(out, v)
	}
	return out, nil
}

// Rows is the echo table shown next to the report.
func (r Record) Rows() []Row {
	rows := make([]Row, 0, len(fields))
	for _, f := range fields {
		v, _ := r.Value(f.Key)
		rows = append(rows, Row{Label: f.Label, Value: f.format(v)})
	}
	return rows
}

func (f Field) format(v float64) string {
	if f.Kind == KindInt {
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fieldByColumn(col string) (Field, bool) {
	for _, f := range fields {
		if strings.EqualFold(f.Column, strings.TrimSpace(col)) {
			return f, true
		}
	}
	return Field{}, false
}
