package communityplans

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func planWith(fm FireManagement, eq []Equipment) *Plan {
	return &Plan{
		VillageInfo:    datatypes.NewJSONType(VillageInfo{Name: "บ้านสันป่าสัก", Subdistrict: "ป่าไผ่", District: "สันทราย", Province: DefaultProvince}),
		FireManagement: datatypes.NewJSONType(fm),
		Equipment:      datatypes.NewJSONSlice(eq),
		Status:         StatusPending,
	}
}

func TestPlan_TotalBudget(t *testing.T) {
	p := planWith(FireManagement{
		PreIncident:  []Activity{{Name: "firebreak", Budget: 500}, {Name: "patrol", Budget: 1500}},
		PostIncident: []Activity{{Name: "replant", Budget: 1000}},
	}, nil)
	assert.Equal(t, 3000.0, p.TotalBudget())

	assert.Zero(t, planWith(FireManagement{}, nil).TotalBudget())
}

func TestPlan_EquipmentShortage(t *testing.T) {
	p := planWith(FireManagement{}, []Equipment{
		{Name: "blower", Needed: 11, Available: 0},
		{Name: "rake", Needed: 2, Available: 3},
	})
	assert.Equal(t, []Shortage{{Name: "blower", Shortage: 11}}, p.EquipmentShortage())

	assert.Equal(t, []Shortage{}, planWith(FireManagement{}, nil).EquipmentShortage())
}

func TestPlan_Summary(t *testing.T) {
	p := planWith(FireManagement{
		PreIncident:    []Activity{{Budget: 100}},
		DuringIncident: []Activity{{Budget: 200}, {Budget: 300}},
	}, []Equipment{{Name: "tank"}})

	s := p.Summary()
	assert.Equal(t, "บ้านสันป่าสัก", s.VillageName)
	assert.Equal(t, "ป่าไผ่, สันทราย, เชียงใหม่", s.Location)
	assert.Equal(t, 3, s.TotalActivities)
	assert.Equal(t, 600.0, s.TotalBudget)
	assert.Equal(t, 1, s.EquipmentItems)
	assert.Equal(t, StatusPending, s.Status)
}

func TestPlanDetail_JSON(t *testing.T) {
	p := planWith(FireManagement{PreIncident: []Activity{{Name: "a", Budget: 250}}}, []Equipment{{Name: "hose", Needed: 3, Available: 1}})
	out, err := json.Marshal(NewPlanDetail(p))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, 250.0, m["total_budget"])
	assert.Equal(t, []any{map[string]any{"name": "hose", "shortage": 2.0}}, m["equipment_shortage"])
	assert.Equal(t, "บ้านสันป่าสัก", m["village_info"].(map[string]any)["name"])
	assert.NotContains(t, m, "ForestTypes")
}

func TestCreateRequest_NewPlan(t *testing.T) {
	var req CreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"village_info": {"name": "บ้านแม่ลาย", "moo": 4, "subdistrict": "แม่ลาย", "district": "แม่ริม", "forest_types": ["ป่าเต็งรัง"]},
		"status": "approved"
	}`), &req))
	assert.False(t, req.MissingVillageInfo())
	assert.Equal(t, Text("4"), req.VillageInfo.Moo)

	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	p := req.NewPlan(now)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, now, p.SubmittedAt)
	assert.Equal(t, DefaultProvince, p.VillageInfo.Data().Province)
	assert.Equal(t, []string{"ป่าเต็งรัง"}, []string(p.ForestTypes))
	assert.NotEmpty(t, p.ID.String())
	assert.NotNil(t, p.FireManagement.Data().PreIncident)
}

func TestCreateRequest_MissingVillageInfo(t *testing.T) {
	full := VillageInfo{Name: "n", Moo: "1", Subdistrict: "s", District: "d"}
	for name, mutate := range map[string]func(*VillageInfo){
		"name":        func(v *VillageInfo) { v.Name = "" },
		"moo":         func(v *VillageInfo) { v.Moo = "" },
		"subdistrict": func(v *VillageInfo) { v.Subdistrict = "" },
		"district":    func(v *VillageInfo) { v.District = "" },
	} {
		t.Run(name, func(t *testing.T) {
			v := full
			mutate(&v)
			req := CreateRequest{VillageInfo: v}
			assert.True(t, req.MissingVillageInfo())
		})
	}
	assert.False(t, (&CreateRequest{VillageInfo: full}).MissingVillageInfo())
}

func TestCreateRequest_Validate(t *testing.T) {
	req := CreateRequest{
		VillageInfo: VillageInfo{Name: "n", Moo: "1", Subdistrict: "s", District: "d"},
		FireManagement: FireManagement{
			PreIncident: []Activity{{Name: "ok", Description: "ok", Timing: TimingPre}},
			PostIncident: []Activity{
				{Name: "bad", Description: "bad", Timing: "someday", Budget: -5},
			},
		},
		Equipment: []Equipment{{Needed: 1}},
	}

	details := req.Validate()
	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Message
	}

	assert.Equal(t, "`someday` is not a valid enum value for path `timing`.", fields["fire_management.post_incident.0.timing"])
	assert.Contains(t, fields, "fire_management.post_incident.0.budget")
	assert.Equal(t, "Path `name` is required.", fields["equipment.0.name"])
	assert.Len(t, details, 3)

	ok := CreateRequest{VillageInfo: VillageInfo{Name: "n", Moo: "1", Subdistrict: "s", District: "d"}}
	assert.Empty(t, ok.Validate())
}

func TestValidStatus(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("done"))
	assert.False(t, ValidStatus(""))
}
