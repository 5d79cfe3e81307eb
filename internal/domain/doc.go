// Package domain models the forest fire measurement dataset and the
// normalization applied to it before any statistics or predictions.
//
// # Data Source
//
// The reference dataset is the Algerian Forest Fires dataset: one row per
// day and region with weather observations and Fire Weather Index (FWI)
// system components. Typical columns:
//
//	day, month, year        observation date
//	temperature             noon temperature, °C
//	rh                      relative humidity, %
//	ws                      wind speed, km/h
//	rain                    total daily rain, mm
//	ffmc, dmc, dc           fuel moisture codes
//	isi, bui, fwi           spread, buildup and fire weather indices
//	classes                 "fire" / "not fire" outcome
//
// Published copies of the file are not clean: headers carry trailing
// spaces ("Classes  "), casing varies, and outcome values carry padding
// ("not fire   "). Everything downstream depends on the cleanup here.
//
// # Column Names
//
// Column names are trimmed and lower-cased ([NormalizeColumnName]). The
// operation is idempotent. Two headers that collide after normalization
// make the resource malformed.
//
// # Target Column
//
// The outcome column is selected, never computed, from a fixed alias list
// ([DefaultTargetAliases]). The first alias in priority order that names a
// column wins, regardless of where that column sits in the file.
//
// # Labels
//
// Outcome values are lower-cased, stripped of spaces and mapped:
//
//	"fire"    → 1
//	"notfire" → 0
//	anything else → missing
//
// Missing labels are a data-quality signal recorded in [Dataset.LabelGaps];
// they never abort a load.
//
// # Numeric Coercion
//
// Every non-target column gets one explicit attempt at numeric conversion.
// The column becomes numeric only if every non-empty cell parses; otherwise
// it stays text. Either way the decision is recorded in [Dataset.Coercions].
package domain
