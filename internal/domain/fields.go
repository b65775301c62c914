package domain

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// FieldSpec documents one raw observation field as presented by the form.
type FieldSpec struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Unit    string  `json:"unit"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Help    string  `json:"help,omitempty"`
}

// rangeTag renders the field's bounds as a validator tag.
func (f FieldSpec) rangeTag() string {
	return "gte=" + strconv.FormatFloat(f.Min, 'g', -1, 64) + ",lte=" + strconv.FormatFloat(f.Max, 'g', -1, 64)
}

var rawFields = []FieldSpec{
	{Name: "MinTemp", Label: "Min Temperature", Unit: "°C", Min: -10, Max: 50, Default: 15, Help: "Lowest temperature recorded today"},
	{Name: "MaxTemp", Label: "Max Temperature", Unit: "°C", Min: -10, Max: 50, Default: 25, Help: "Highest temperature recorded today"},
	{Name: "Rainfall", Label: "Rainfall", Unit: "mm", Min: 0, Max: 200, Default: 2, Help: "Amount of rain fallen today"},
	{Name: "Evaporation", Label: "Evaporation", Unit: "mm", Min: 0, Max: 100, Default: 5, Help: "Evaporation measurement today"},
	{Name: "Sunshine", Label: "Sunshine", Unit: "hours", Min: 0, Max: 15, Default: 8, Help: "Sunshine duration in hours"},
	{Name: "WindGustSpeed", Label: "Wind Gust Speed", Unit: "km/h", Min: 0, Max: 150, Default: 35},
	{Name: "WindSpeed9am", Label: "Wind Speed at 9am", Unit: "km/h", Min: 0, Max: 100, Default: 20},
	{Name: "WindSpeed3pm", Label: "Wind Speed at 3pm", Unit: "km/h", Min: 0, Max: 100, Default: 25},
	{Name: "Humidity9am", Label: "Humidity at 9am", Unit: "%", Min: 0, Max: 100, Default: 60},
	{Name: "Humidity3pm", Label: "Humidity at 3pm", Unit: "%", Min: 0, Max: 100, Default: 50},
	{Name: "Pressure9am", Label: "Pressure at 9am", Unit: "hPa", Min: 980, Max: 1050, Default: 1010},
	{Name: "Pressure3pm", Label: "Pressure at 3pm", Unit: "hPa", Min: 980, Max: 1050, Default: 1008},
	{Name: "Cloud9am", Label: "Cloud Cover at 9am", Unit: "oktas", Min: 0, Max: 8, Default: 4, Help: "0 = clear sky, 8 = overcast"},
	{Name: "Cloud3pm", Label: "Cloud Cover at 3pm", Unit: "oktas", Min: 0, Max: 8, Default: 5, Help: "0 = clear sky, 8 = overcast"},
	{Name: "Temp9am", Label: "Temperature at 9am", Unit: "°C", Min: -10, Max: 50, Default: 18},
	{Name: "Temp3pm", Label: "Temperature at 3pm", Unit: "°C", Min: -10, Max: 50, Default: 23},
}

var rawFieldIndex = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(rawFields))
	for _, f := range rawFields {
		m[f.Name] = f
	}
	return m
}()

// RawFields returns the raw observation fields in form order.
func RawFields() []FieldSpec {
	out := make([]FieldSpec, len(rawFields))
	copy(out, rawFields)
	return out
}

// LookupField returns the descriptor of a known raw field.
func LookupField(name string) (FieldSpec, bool) {
	f, ok := rawFieldIndex[name]
	return f, ok
}

// DefaultObservation returns an observation populated with the form defaults.
func DefaultObservation() RawObservation {
	obs := make(RawObservation, len(rawFields))
	for _, f := range rawFields {
		obs[f.Name] = f.Default
	}
	return obs
}

var validate = validator.New()

// ValidateObservation checks every supplied known field against its range.
// Unknown fields are passed through untouched; absence is the aligner's concern.
func ValidateObservation(obs RawObservation) error {
	for _, f := range rawFields {
		v, ok := obs[f.Name]
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &FeatureError{Kind: ErrOutOfRange, Field: f.Name, Value: fmt.Sprint(v)}
		}
		if err := validate.Var(v, f.rangeTag()); err != nil {
			return &FeatureError{
				Kind:  ErrOutOfRange,
				Field: f.Name,
				Value: strconv.FormatFloat(v, 'g', -1, 64),
			}
		}
	}
	return nil
}
