package villages

import (
	"encoding/json"

	"github.com/forrest-fire-fund/cnx-backend/internal/gis"
	"github.com/rotisserie/eris"
)

// UnnamedVillage is shown when a feature carries no village name.
const UnnamedVillage = "ไม่ระบุชื่อ"

// Village is the merged view of one GIS feature and its community plan.
type Village struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Code          any            `json:"code,omitempty"`
	District      string         `json:"district"`
	Subdistrict   string         `json:"subdistrict"`
	Province      string         `json:"province"`
	Coordinates   [][]gis.LatLng `json:"coordinates"`
	Status        Status         `json:"status"`
	CommunityPlan *gis.PlanEntry `json:"communityPlan"`
	GISData       map[string]any `json:"gisData"`
}

// Summary is the coordinate-free projection used by the batch endpoint.
type Summary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Code        any    `json:"code,omitempty"`
	District    string `json:"district"`
	Subdistrict string `json:"subdistrict"`
	Province    string `json:"province"`
	Status      Status `json:"status"`
}

// Light is the smallest projection: enough to colour a map marker.
type Light struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	District    string `json:"district"`
	Subdistrict string `json:"subdistrict"`
	Status      Status `json:"status"`
}

func (v Village) Summary() Summary {
	return Summary{
		ID:          v.ID,
		Name:        v.Name,
		Code:        v.Code,
		District:    v.District,
		Subdistrict: v.Subdistrict,
		Province:    v.Province,
		Status:      v.Status,
	}
}

func (v Village) Light() Light {
	return Light{ID: v.ID, Name: v.Name, District: v.District, Subdistrict: v.Subdistrict, Status: v.Status}
}

// IndexPlans maps each identifier to the first plan that carries it.
// Later duplicates are ignored.
func IndexPlans(plans []gis.PlanEntry) map[gis.UID]*gis.PlanEntry {
	idx := make(map[gis.UID]*gis.PlanEntry, len(plans))
	for i := range plans {
		p := &plans[i]
		if !p.HasUID {
			continue
		}
		if _, dup := idx[p.UID]; dup {
			continue
		}
		idx[p.UID] = p
	}
	return idx
}

// Merge joins features with plans. The result has one entry per feature, in
// feature order, with ids starting at 1. It does not modify its inputs.
func Merge(features []gis.Feature, plans []gis.PlanEntry) []Village {
	idx := IndexPlans(plans)
	out := make([]Village, 0, len(features))

	for i, f := range features {
		var plan *gis.PlanEntry
		if uid, ok := f.UID(); ok {
			plan = idx[uid]
		}

		name := f.String(gis.PropVillageName)
		if name == "" {
			name = UnnamedVillage
		}

		coords := [][]gis.LatLng{}
		if ring := gis.OuterRing(f.Geometry); len(ring) > 0 {
			coords = append(coords, ring)
		}

		out = append(out, Village{
			ID:            i + 1,
			Name:          name,
			Code:          f.Properties[gis.PropVillageCode],
			District:      f.String(gis.PropDistrict),
			Subdistrict:   f.String(gis.PropSubdistrict),
			Province:      f.String(gis.PropProvince),
			Coordinates:   coords,
			Status:        DeriveStatus(plan),
			CommunityPlan: plan,
			GISData:       gisData(f),
		})
	}

	return out
}

// gisData is the raw geometry overlaid with the feature properties. A
// property named "geometry" replaces the geometry.
func gisData(f gis.Feature) map[string]any {
	m := make(map[string]any, len(f.Properties)+1)
	geometry := f.Geometry
	if len(geometry) == 0 {
		geometry = json.RawMessage("null")
	}
	m["geometry"] = geometry
	for k, v := range f.Properties {
		m[k] = v
	}
	return m
}

// FilterType selects a subset of villages by derived status.
type FilterType string

const (
	FilterWithPlan       FilterType = "with-plan"
	FilterWithoutPlan    FilterType = "without-plan"
	FilterNeedVolunteers FilterType = "need-volunteers"
	FilterNeedFunding    FilterType = "need-funding"
)

// ErrUnknownFilter is returned for filter names outside the fixed set.
var ErrUnknownFilter = eris.New("villages: invalid filter type")

// Filter returns the villages matching the filter, in order.
func Filter(villages []Village, ft FilterType) ([]Village, error) {
	var keep func(Status) bool
	switch ft {
	case FilterWithPlan:
		keep = func(s Status) bool { return s.HasPlan }
	case FilterWithoutPlan:
		keep = func(s Status) bool { return !s.HasPlan }
	case FilterNeedVolunteers:
		keep = func(s Status) bool { return s.NeedsVolunteers }
	case FilterNeedFunding:
		keep = func(s Status) bool { return s.NeedsFunding }
	default:
		return nil, ErrUnknownFilter
	}

	out := []Village{}
	for _, v := range villages {
		if keep(v.Status) {
			out = append(out, v)
		}
	}
	return out, nil
}
