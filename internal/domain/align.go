package domain

import (
	"math"
	"sort"
)

type columnKind int

const (
	columnPassThrough columnKind = iota // raw value if present, else 0
	columnRequired                      // known raw field, must be supplied
	columnOneHot                        // <Attribute>_<Value>
)

type column struct {
	name      string
	kind      columnKind
	attribute string
	value     string
}

// Aligner maps observations onto a fixed FeatureSchema. The column layout is
// resolved once; Align itself allocates only the output vector.
type Aligner struct {
	schema   FeatureSchema
	vocab    Vocabulary
	columns  []column
	required []string // categorical attributes the schema encodes, sorted
}

// NewAligner resolves every schema column against the vocabulary and the
// known raw fields.
func NewAligner(schema FeatureSchema, vocab Vocabulary) *Aligner {
	a := &Aligner{
		schema:  schema,
		vocab:   vocab,
		columns: make([]column, len(schema.Columns)),
	}
	attrs := make(map[string]struct{})
	for i, name := range schema.Columns {
		col := column{name: name}
		if attr, val, ok := vocab.MatchColumn(name); ok {
			col.kind = columnOneHot
			col.attribute = attr
			col.value = val
			attrs[attr] = struct{}{}
		} else if _, known := rawFieldIndex[name]; known {
			col.kind = columnRequired
		}
		a.columns[i] = col
	}
	for attr := range attrs {
		a.required = append(a.required, attr)
	}
	sort.Strings(a.required)
	return a
}

// Schema returns the schema this aligner was built for.
func (a *Aligner) Schema() FeatureSchema { return a.schema }

// Align builds the feature vector for one observation. On error no vector is returned.
func (a *Aligner) Align(raw RawObservation, categorical CategoricalSelection) (FeatureVector, error) {
	if err := a.checkCategorical(categorical); err != nil {
		return FeatureVector{}, err
	}

	values := make([]float64, len(a.columns))
	for i, col := range a.columns {
		switch col.kind {
		case columnOneHot:
			if categorical[col.attribute] == col.value {
				values[i] = 1
			}
		case columnRequired:
			v, ok := raw[col.name]
			if !ok || math.IsNaN(v) {
				return FeatureVector{}, missingFeature(col.name)
			}
			values[i] = v
		default:
			values[i] = raw[col.name] // zero when absent
		}
	}
	return FeatureVector{values: values}, nil
}

// checkCategorical rejects selections outside the vocabulary and missing
// selections for attributes the schema encodes.
func (a *Aligner) checkCategorical(categorical CategoricalSelection) error {
	attrs := make([]string, 0, len(categorical))
	for attr := range categorical {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	for _, attr := range attrs {
		value := categorical[attr]
		if !a.vocab.Has(attr) || !a.vocab.Contains(attr, value) {
			return unrecognizedCategory(attr, value)
		}
	}
	for _, attr := range a.required {
		if _, ok := categorical[attr]; !ok {
			return missingFeature(attr)
		}
	}
	return nil
}

// Align is the one-shot form of Aligner.Align.
func Align(raw RawObservation, categorical CategoricalSelection, schema FeatureSchema, vocab Vocabulary) (FeatureVector, error) {
	return NewAligner(schema, vocab).Align(raw, categorical)
}
