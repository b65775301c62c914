// Package domain models next-day rain prediction for Australian weather stations.
//
// # Data Source
//
// The classifier was fit on daily Bureau of Meteorology observations: one row per
// station per day, with the target being whether more than 1mm of rain fell the
// following day. The training pipeline one-hot encoded the categorical columns
// and serialized the resulting column order together with the model weights.
//
// # Feature Conventions
//
// Raw columns carry the observation value unchanged (no scaling):
//
//	MinTemp, MaxTemp, Temp9am, Temp3pm          °C
//	Rainfall, Evaporation                       mm
//	Sunshine                                    hours
//	WindGustSpeed, WindSpeed9am, WindSpeed3pm   km/h
//	Humidity9am, Humidity3pm                    %
//	Pressure9am, Pressure3pm                    hPa
//	Cloud9am, Cloud3pm                          oktas (0 = clear, 8 = overcast)
//
// One-hot columns are named "<Attribute>_<Value>", e.g. "Location_Sydney" or
// "WindDir3pm_NNE". A column is 1 when the selection for Attribute equals Value.
// Compass directions use the 16-point rose: N, NNE, NE, ENE, E, ESE, SE, SSE,
// S, SSW, SW, WSW, W, WNW, NW, NNW.
//
// Seasons follow the southern hemisphere meteorological calendar:
//
//	Summer Dec-Feb | Autumn Mar-May | Winter Jun-Aug | Spring Sep-Nov
//
// # Baseline Categories
//
// Training used drop-first encoding, so one value per attribute (e.g. Adelaide,
// Autumn, E) has no column in the schema. Selecting it encodes as all zeros for
// that attribute. Values outside the vocabulary are rejected with
// [ErrUnrecognizedCategory] instead of silently taking the baseline.
//
// # Schema Fingerprint
//
// The schema fingerprint is the hex SHA-256 of the column names joined with "\n".
// The classifier only sees a numeric array, so a reordered schema produces wrong
// predictions without any runtime error. Comparing fingerprints at startup is the
// only guard against that drift. See [FeatureSchema.Fingerprint].
package domain
