package gis

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Property names used by the village feature collection.
const (
	PropVillageName = "Vill_Th"
	PropDistrict    = "Amp_Th"
	PropSubdistrict = "Tam_Th"
	PropProvince    = "Prov_Th"
	PropVillageCode = "Vill_Code"
	PropUID         = "new-uid"
)

// Feature is one village polygon. Geometry is kept verbatim so it can be
// served back without re-encoding.
type Feature struct {
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// UID returns the feature's unique village identifier.
func (f Feature) UID() (UID, bool) {
	return UIDFrom(f.Properties[PropUID])
}

// String returns a string property, or "" when absent or not a string.
func (f Feature) String(key string) string {
	s, _ := f.Properties[key].(string)
	return s
}

// UID is a normalised join key. Strings and numbers never collide:
// "12" and 12 are different identifiers.
type UID string

// UIDFrom normalises a decoded JSON value into a join key. Empty strings, zero,
// null and non-scalar values are not identifiers.
func UIDFrom(v any) (UID, bool) {
	switch x := v.(type) {
	case string:
		if x == "" {
			return "", false
		}
		return UID("s:" + x), true
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), 64)
		if err != nil || f == 0 {
			return "", false
		}
		return UID("n:" + strconv.FormatFloat(f, 'g', -1, 64)), true
	case float64:
		if x == 0 {
			return "", false
		}
		return UID("n:" + strconv.FormatFloat(x, 'g', -1, 64)), true
	default:
		return "", false
	}
}

// PlanEntry is one entry of the keyed community-plan dataset.
type PlanEntry struct {
	Key string
	Raw json.RawMessage

	UID    UID
	HasUID bool

	// Fields read by status derivation. Both are optional in the source data.
	VolunteerCount int
	TotalBudget    *float64
}

// MarshalJSON serves the entry exactly as it appears in the dataset.
func (p *PlanEntry) MarshalJSON() ([]byte, error) {
	if p == nil || len(p.Raw) == 0 {
		return []byte("null"), nil
	}
	return p.Raw, nil
}

// Amount accepts a JSON number or a numeric string.
type Amount struct {
	Value float64
	Valid bool
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		if f, err := n.Float64(); err == nil {
			*a = Amount{Value: f, Valid: true}
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*a = Amount{Value: f, Valid: true}
		}
	}
	return nil
}

// Overlay names a dataset file under the overlay directory.
type Overlay struct {
	Key  string `yaml:"key"`
	File string `yaml:"file"`
}

// DefaultOverlays is the built-in overlay list.
var DefaultOverlays = []Overlay{
	{Key: "forestTypes", File: "forrest-type-cnx.json"},
	{Key: "firebreaks", File: "wildfire_protect_all-20vills.geojson"},
	{Key: "fuelManagement", File: "Fuel_Manage_20vills.geojson"},
	{Key: "fireSentry", File: "FireSentry_Station_All.geojson"},
	{Key: "villageWeirs", File: "Village_Weir_All.geojson"},
	{Key: "wildfireCheck", File: "WildFire_Check_All_1.geojson"},
	{Key: "burnAreas", File: "burn_area_2024.geojson"},
}

// Datasets is everything read from disk at startup. Overlays holds a nil
// value for every overlay that was missing or unreadable.
type Datasets struct {
	Features    []Feature
	Plans       []PlanEntry
	Overlays    map[string]json.RawMessage
	OverlayKeys []string
}

// Overlay returns the named overlay, or nil when it is absent.
func (d *Datasets) Overlay(key string) json.RawMessage {
	if d == nil {
		return nil
	}
	return d.Overlays[key]
}
