package gis

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const featuresFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "properties": {"Vill_Th": "บ้านแม่ตาละ", "Amp_Th": "แม่ริม", "Tam_Th": "ดอนแก้ว", "Prov_Th": "เชียงใหม่", "new-uid": "U-1", "Vill_Code": 50070101},
     "geometry": {"type": "Polygon", "coordinates": [[[98.9, 18.9], [98.95, 18.9], [98.95, 18.95], [98.9, 18.9]]]}},
    {"type": "Feature",
     "properties": {"new-uid": 42},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[99.0, 19.0], [99.1, 19.0], [99.1, 19.1], [99.0, 19.0]]], [[[1, 2], [3, 4], [5, 6], [1, 2]]]]}},
    {"type": "Feature", "properties": null, "geometry": null}
  ]
}`

const plansFixture = `{
  "villages": {
    "zeta":  {"village_info": {"name": "Z", "new-uid": "U-1"}, "volunteers": [1, 2, 3, 4, 5], "budget_info": {"total_budget": "15000"}},
    "alpha": {"village_info": {"name": "A", "new-uid": "U-1"}},
    "num":   {"village_info": {"new-uid": 42.0}, "budget_info": {"total_budget": 9999}},
    "broken": {"village_info": "not an object", "volunteers": "many"}
  }
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestParseFeatures(t *testing.T) {
	features, err := ParseFeatures([]byte(featuresFixture))
	require.NoError(t, err)
	require.Len(t, features, 3)

	assert.Equal(t, "บ้านแม่ตาละ", features[0].String(PropVillageName))
	assert.Equal(t, json.Number("50070101"), features[0].Properties[PropVillageCode])
	assert.NotNil(t, features[2].Properties, "null properties become an empty map")

	uid, ok := features[1].UID()
	require.True(t, ok)
	assert.Equal(t, UID("n:42"), uid)
}

func TestParseFeatures_NoFeatures(t *testing.T) {
	_, err := ParseFeatures([]byte(`{"type":"FeatureCollection"}`))
	require.Error(t, err)

	_, err = ParseFeatures([]byte(`not json`))
	require.Error(t, err)
}

func TestParsePlans_KeepsDocumentOrder(t *testing.T) {
	plans, err := ParsePlans([]byte(plansFixture))
	require.NoError(t, err)
	require.Len(t, plans, 4)

	keys := []string{plans[0].Key, plans[1].Key, plans[2].Key, plans[3].Key}
	assert.Equal(t, []string{"zeta", "alpha", "num", "broken"}, keys)

	assert.Equal(t, UID("s:U-1"), plans[0].UID)
	assert.Equal(t, 5, plans[0].VolunteerCount)
	require.NotNil(t, plans[0].TotalBudget)
	assert.Equal(t, 15000.0, *plans[0].TotalBudget)

	assert.Equal(t, UID("n:42"), plans[2].UID, "42.0 and 42 are the same number")
	require.NotNil(t, plans[2].TotalBudget)
	assert.Equal(t, 9999.0, *plans[2].TotalBudget)

	assert.False(t, plans[3].HasUID)
	assert.Zero(t, plans[3].VolunteerCount)
	assert.Nil(t, plans[3].TotalBudget)
	assert.JSONEq(t, `{"village_info": "not an object", "volunteers": "many"}`, string(plans[3].Raw))
}

func TestParsePlans_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":       `{`,
		"no villages":    `{"other": {}}`,
		"null villages":  `{"villages": null}`,
		"villages array": `{"villages": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlans([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestUIDFrom(t *testing.T) {
	cases := []struct {
		in   any
		want UID
		ok   bool
	}{
		{"abc", "s:abc", true},
		{"", "", false},
		{json.Number("7"), "n:7", true},
		{json.Number("7.0"), "n:7", true},
		{json.Number("0"), "", false},
		{3.5, "n:3.5", true},
		{nil, "", false},
		{true, "", false},
		{map[string]any{}, "", false},
	}
	for _, c := range cases {
		got, ok := UIDFrom(c.in)
		assert.Equal(t, c.ok, ok, "%v", c.in)
		assert.Equal(t, c.want, got, "%v", c.in)
	}

	a, _ := UIDFrom("12")
	b, _ := UIDFrom(json.Number("12"))
	assert.NotEqual(t, a, b)
}

func TestOuterRing(t *testing.T) {
	features, err := ParseFeatures([]byte(featuresFixture))
	require.NoError(t, err)

	ring := OuterRing(features[0].Geometry)
	require.Len(t, ring, 4)
	assert.Equal(t, LatLng{18.9, 98.9}, ring[0])
	assert.Equal(t, LatLng{18.9, 98.95}, ring[1])

	ring = OuterRing(features[1].Geometry)
	require.Len(t, ring, 4)
	assert.Equal(t, LatLng{19.0, 99.0}, ring[0], "only the first polygon is used")

	assert.Empty(t, OuterRing(features[2].Geometry))
	assert.Empty(t, OuterRing(json.RawMessage(`{"type":"Point","coordinates":[1,2]}`)))
	assert.Empty(t, OuterRing(json.RawMessage(`{"type":"Polygon","coordinates":"junk"}`)))
	assert.Empty(t, OuterRing(nil))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	overlayDir := filepath.Join(dir, "data")

	loader := Loader{
		VillagesPath: writeFile(t, dir, "villages.geojson", featuresFixture),
		PlansPath:    writeFile(t, dir, "plans.json", plansFixture),
		OverlayDir:   overlayDir,
		Overlays: []Overlay{
			{Key: "forestTypes", File: "forest.json"},
			{Key: "firebreaks", File: "missing.geojson"},
			{Key: "burnAreas", File: "broken.geojson"},
		},
		Log: zap.NewNop(),
	}
	writeFile(t, overlayDir, "forest.json", `{"type":"FeatureCollection","features":[]}`)
	writeFile(t, overlayDir, "broken.geojson", `{"type":`)

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, ds.Features, 3)
	assert.Len(t, ds.Plans, 4)
	require.Len(t, ds.Overlays, 3)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(ds.Overlay("forestTypes")))
	assert.Nil(t, ds.Overlay("firebreaks"))
	assert.Nil(t, ds.Overlay("burnAreas"))
	assert.Nil(t, ds.Overlay("unknown"))
}

func TestLoader_MandatoryFailures(t *testing.T) {
	dir := t.TempDir()
	villages := writeFile(t, dir, "villages.geojson", featuresFixture)
	plans := writeFile(t, dir, "plans.json", plansFixture)
	bad := writeFile(t, dir, "bad.json", `[]`)

	for name, l := range map[string]Loader{
		"missing villages": {VillagesPath: filepath.Join(dir, "nope"), PlansPath: plans},
		"missing plans":    {VillagesPath: villages, PlansPath: filepath.Join(dir, "nope")},
		"bad villages":     {VillagesPath: bad, PlansPath: plans},
		"bad plans":        {VillagesPath: villages, PlansPath: bad},
	} {
		t.Run(name, func(t *testing.T) {
			l.Log = zap.NewNop()
			_, err := l.Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMandatoryData), "got %v", err)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	overlays, err := LoadManifest("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOverlays, overlays)

	dir := t.TempDir()
	p := writeFile(t, dir, "overlays.yaml", "overlays:\n  - key: forestTypes\n    file: forest.json\n  - key: burnAreas\n    file: burn.geojson\n")
	overlays, err = LoadManifest(p)
	require.NoError(t, err)
	assert.Equal(t, []Overlay{{Key: "forestTypes", File: "forest.json"}, {Key: "burnAreas", File: "burn.geojson"}}, overlays)

	p = writeFile(t, dir, "dup.yaml", "overlays:\n  - key: a\n    file: x\n  - key: a\n    file: y\n")
	_, err = LoadManifest(p)
	assert.Error(t, err)

	p = writeFile(t, dir, "partial.yaml", "overlays:\n  - key: a\n")
	_, err = LoadManifest(p)
	assert.Error(t, err)

	_, err = LoadManifest(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

type memCache struct {
	data map[string][]byte
	sets int
}

func (m *memCache) Get(_ context.Context, k string) ([]byte, bool, error) {
	v, ok := m.data[k]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, k string, v []byte) error {
	m.data[k] = v
	m.sets++
	return nil
}

func TestBuildings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "new-uid_U-1.geojson", `{"type":"FeatureCollection","features":[{"type":"Feature"}]}`)
	writeFile(t, dir, "new-uid_bad.geojson", `{"type":`)

	mc := &memCache{data: map[string][]byte{}}
	b := NewBuildings(dir, mc)
	ctx := context.Background()

	got, err := b.Get(ctx, "U-1")
	require.NoError(t, err)
	assert.Contains(t, string(got), "FeatureCollection")
	assert.Equal(t, 1, mc.sets)

	// second read is served from the cache even if the file disappears
	require.NoError(t, os.Remove(filepath.Join(dir, "new-uid_U-1.geojson")))
	_, err = b.Get(ctx, "U-1")
	require.NoError(t, err)
	assert.Equal(t, 1, mc.sets)

	_, err = b.Get(ctx, "U-2")
	assert.ErrorIs(t, err, ErrNoBuildings)

	_, err = b.Get(ctx, "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoBuildings)

	for _, uid := range []string{"../etc/passwd", "..", "a/b", ""} {
		_, err = b.Get(ctx, uid)
		assert.ErrorIs(t, err, ErrInvalidUID, uid)
	}
}

func TestOuterRing_MixedDimensions(t *testing.T) {
	ring := OuterRing(json.RawMessage(`{"type":"Polygon","coordinates":[[[99.1,18.9],[99.2,18.9,310],[99.2,19.0],[99.1,18.9,305]]]}`))
	require.Len(t, ring, 4)
	assert.Equal(t, LatLng{18.9, 99.1}, ring[0])
	assert.Equal(t, LatLng{18.9, 99.2}, ring[1])

	ring = OuterRing(json.RawMessage(`{"type":"MultiPolygon","coordinates":[[[[98.5,19.5,1],[98.6,19.5],[98.5,19.5]]],[[[1,2],[3,4],[1,2]]]]}`))
	require.Len(t, ring, 3)
	assert.Equal(t, LatLng{19.5, 98.5}, ring[0])

	assert.Empty(t, OuterRing(json.RawMessage(`{"type":"LineString","coordinates":[[1,2],[3,4,5]]}`)))
}
