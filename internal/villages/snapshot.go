package villages

import (
	"encoding/json"

	"github.com/forrest-fire-fund/cnx-backend/internal/gis"
	"github.com/rotisserie/eris"
)

const (
	// BatchVillageLimit caps the villages returned by the batch endpoint.
	BatchVillageLimit = 100
	// BurnAreaLimit caps the features in the simplified burn-area dataset.
	BurnAreaLimit = 10000

	burnAreasKey = "burnAreas"
)

// ErrNoBurnAreas means the burn-area overlay did not load.
var ErrNoBurnAreas = eris.New("villages: burn areas data not available")

// Snapshot is the read-only state built once at startup and shared by every
// request. Nothing in it is mutated after NewSnapshot returns.
type Snapshot struct {
	Villages []Village

	datasets *gis.Datasets
	summary  []Summary
	light    []Light

	burns     *SimplifiedBurns
	burnTotal int
	burnErr   error
}

// NewSnapshot merges the datasets and precomputes the batch projections and
// the simplified burn areas.
func NewSnapshot(ds *gis.Datasets) *Snapshot {
	if ds == nil {
		ds = &gis.Datasets{}
	}

	villages := Merge(ds.Features, ds.Plans)

	n := min(len(villages), BatchVillageLimit)
	summary := make([]Summary, 0, n)
	for _, v := range villages[:n] {
		summary = append(summary, v.Summary())
	}

	light := make([]Light, 0, len(villages))
	for _, v := range villages {
		light = append(light, v.Light())
	}

	s := &Snapshot{
		Villages: villages,
		datasets: ds,
		summary:  summary,
		light:    light,
	}
	s.burns, s.burnTotal, s.burnErr = simplifyBurnAreas(ds.Overlay(burnAreasKey))
	return s
}

// Stats counts the villages by derived status. It is recomputed on each call.
func (s *Snapshot) Stats() Stats {
	return ComputeStatistics(s.Villages)
}

// Village returns the village with the given 1-based id.
func (s *Snapshot) Village(id int) (Village, bool) {
	if id < 1 || id > len(s.Villages) {
		return Village{}, false
	}
	return s.Villages[id-1], true
}

// Overlay returns an overlay dataset or nil when it is absent.
func (s *Snapshot) Overlay(key string) json.RawMessage {
	return s.datasets.Overlay(key)
}

// OverlayKeys lists the configured overlays in manifest order.
func (s *Snapshot) OverlayKeys() []string {
	return s.datasets.OverlayKeys
}

// SummaryVillages is the first BatchVillageLimit villages without geometry.
func (s *Snapshot) SummaryVillages() []Summary { return s.summary }

// LightVillages is every village reduced to its marker fields.
func (s *Snapshot) LightVillages() []Light { return s.light }

type burnFeature struct {
	Properties map[string]json.RawMessage `json:"properties"`
	Geometry   json.RawMessage            `json:"geometry"`
}

type simplifiedFeature struct {
	Type       string                     `json:"type"`
	Properties map[string]json.RawMessage `json:"properties"`
	Geometry   json.RawMessage            `json:"geometry"`
}

// SimplifiedBurns is the payload of the simplified burn-area dataset.
type SimplifiedBurns struct {
	Type     string              `json:"type"`
	Features []simplifiedFeature `json:"features"`
}

// SimplifiedBurnAreas returns the first BurnAreaLimit burn-area features with
// only their OBJECTID property, and the source feature count.
func (s *Snapshot) SimplifiedBurnAreas() (*SimplifiedBurns, int, error) {
	return s.burns, s.burnTotal, s.burnErr
}

func simplifyBurnAreas(raw json.RawMessage) (*SimplifiedBurns, int, error) {
	if raw == nil {
		return nil, 0, ErrNoBurnAreas
	}

	var fc struct {
		Features []burnFeature `json:"features"`
	}
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, 0, eris.Wrap(err, "villages: decode burn areas")
	}

	n := min(len(fc.Features), BurnAreaLimit)
	out := &SimplifiedBurns{Type: "FeatureCollection", Features: make([]simplifiedFeature, 0, n)}
	for _, f := range fc.Features[:n] {
		props := map[string]json.RawMessage{}
		if id, ok := f.Properties["OBJECTID"]; ok {
			props["OBJECTID"] = id
		}
		geometry := f.Geometry
		if len(geometry) == 0 {
			geometry = json.RawMessage("null")
		}
		out.Features = append(out.Features, simplifiedFeature{Type: "Feature", Properties: props, Geometry: geometry})
	}

	return out, len(fc.Features), nil
}
