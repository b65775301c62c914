package domain

import (
	"slices"
	"sort"
)

// Categorical attributes encoded one-hot by the training pipeline.
const (
	AttrLocation    = "Location"
	AttrSeason      = "Season"
	AttrWindGustDir = "WindGustDir"
	AttrWindDir9am  = "WindDir9am"
	AttrWindDir3pm  = "WindDir3pm"
)

var locations = []string{
	"Adelaide", "Albany", "Albury", "AliceSprings", "BadgerysCreek", "Ballarat", "Bendigo",
	"Brisbane", "Cairns", "Canberra", "Cobar", "CoffsHarbour", "Dartmoor", "Darwin",
	"GoldCoast", "Hobart", "Katherine", "Launceston", "Melbourne", "MelbourneAirport",
	"Mildura", "Moree", "MountGambier", "MountGinini", "Newcastle", "Nhil", "NorahHead",
	"NorfolkIsland", "Nuriootpa", "PearceRAAF", "Penrith", "Perth", "PerthAirport", "Portland",
	"Richmond", "Sale", "SalmonGums", "Sydney", "SydneyAirport", "Townsville", "Tuggeranong",
	"Uluru", "WaggaWagga", "Walpole", "Watsonia", "Williamtown", "Witchcliffe", "Wollongong",
	"Woomera",
}

var seasons = []string{"Autumn", "Spring", "Summer", "Winter"}

var compassPoints = []string{
	"E", "ENE", "ESE", "N", "NE", "NNE", "NNW", "NW", "S", "SE", "SSE", "SSW", "SW", "W", "WNW", "WSW",
}

// Vocabulary maps each categorical attribute to its closed set of values.
type Vocabulary map[string][]string

// DefaultVocabulary returns the vocabularies offered by the observation form.
// The returned map is a fresh copy and may be modified by the caller.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		AttrLocation:    slices.Clone(locations),
		AttrSeason:      slices.Clone(seasons),
		AttrWindGustDir: slices.Clone(compassPoints),
		AttrWindDir9am:  slices.Clone(compassPoints),
		AttrWindDir3pm:  slices.Clone(compassPoints),
	}
}

// Attributes returns the attribute names in sorted order.
func (v Vocabulary) Attributes() []string {
	attrs := make([]string, 0, len(v))
	for a := range v {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)
	return attrs
}

// Has reports whether attribute is a recognized categorical attribute.
func (v Vocabulary) Has(attribute string) bool {
	_, ok := v[attribute]
	return ok
}

// Contains reports whether value belongs to the vocabulary of attribute.
func (v Vocabulary) Contains(attribute, value string) bool {
	return slices.Contains(v[attribute], value)
}

// MatchColumn resolves a one-hot column name to its attribute and value. The
// longest matching attribute prefix wins. The value is not checked against the
// vocabulary.
func (v Vocabulary) MatchColumn(column string) (attribute, value string, ok bool) {
	for a := range v {
		prefix := a + "_"
		if len(column) <= len(prefix) || column[:len(prefix)] != prefix {
			continue
		}
		if len(a) > len(attribute) {
			attribute = a
			value = column[len(prefix):]
			ok = true
		}
	}
	return attribute, value, ok
}
