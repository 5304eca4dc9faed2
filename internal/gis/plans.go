package gis

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// ParsePlans decodes the keyed community-plan dataset:
//
//	{"villages": {"<key>": {"village_info": {"new-uid": ...}, ...}, ...}}
//
// Entries are returned in document order so that first-match-wins joins are
// reproducible. A malformed entry is kept but carries no identifier.
func ParsePlans(data []byte) ([]PlanEntry, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, eris.Wrap(err, "gis: decode plan dataset")
	}
	raw, ok := top["villages"]
	if !ok || isNull(raw) {
		return nil, eris.New("gis: plan dataset has no villages object")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, eris.Wrap(err, "gis: read villages object")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, eris.New("gis: villages is not an object")
	}

	var entries []PlanEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, eris.Wrap(err, "gis: read village key")
		}
		key, _ := tok.(string)

		var body json.RawMessage
		if err := dec.Decode(&body); err != nil {
			return nil, eris.Wrapf(err, "gis: decode village %q", key)
		}
		entries = append(entries, newPlanEntry(key, body))
	}

	return entries, nil
}

// newPlanEntry reads the optional fields of one plan without failing on
// unexpected shapes.
func newPlanEntry(key string, body json.RawMessage) PlanEntry {
	entry := PlanEntry{Key: key, Raw: body}

	var fields map[string]json.RawMessage
	if err := unmarshalNumbers(body, &fields); err != nil {
		return entry
	}

	var info map[string]any
	if raw, ok := fields["village_info"]; ok && unmarshalNumbers(raw, &info) == nil {
		entry.UID, entry.HasUID = UIDFrom(info[PropUID])
	}

	var volunteers []json.RawMessage
	if raw, ok := fields["volunteers"]; ok && json.Unmarshal(raw, &volunteers) == nil {
		entry.VolunteerCount = len(volunteers)
	}

	var budgetInfo struct {
		TotalBudget Amount `json:"total_budget"`
	}
	if raw, ok := fields["budget_info"]; ok && json.Unmarshal(raw, &budgetInfo) == nil && budgetInfo.TotalBudget.Valid {
		total := budgetInfo.TotalBudget.Value
		entry.TotalBudget = &total
	}

	return entry
}

func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
