package communityplans

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Plan statuses.
const (
	StatusPending     = "pending"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	StatusUnderReview = "under_review"
)

// Statuses is the fixed review status enum, in display order.
var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusUnderReview}

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Activity timings.
const (
	TimingPre    = "pre_incident"
	TimingDuring = "during_incident"
	TimingPost   = "post_incident"
)

// DefaultProvince is used when a submission does not name one.
const DefaultProvince = "เชียงใหม่"

// Text accepts a JSON string or number. Village "moo" numbers arrive as both.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

type Coordinates struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

type Area struct {
	ForestManagedRai *float64 `json:"forest_managed_rai,omitempty"`
}

type Problems struct {
	Causes      string `json:"causes,omitempty"`
	RiskArea    string `json:"risk_area,omitempty"`
	Limitations string `json:"limitations,omitempty"`
}

// VillageInfo identifies the submitting village. Name, moo, subdistrict and
// district are mandatory.
type VillageInfo struct {
	Name            string       `json:"name" validate:"required"`
	Moo             Text         `json:"moo" validate:"required"`
	Subdistrict     string       `json:"subdistrict" validate:"required"`
	District        string       `json:"district" validate:"required"`
	Province        string       `json:"province"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
	Population      *int         `json:"population,omitempty" validate:"omitempty,gte=0"`
	Households      *int         `json:"households,omitempty" validate:"omitempty,gte=0"`
	Area            *Area        `json:"area,omitempty"`
	ForestTypes     []string     `json:"forest_types"`
	Problems        *Problems    `json:"problems,omitempty"`
	MainOccupations []string     `json:"main_occupations"`
}

type BudgetItem struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

// Activity is one planned fire-management task.
type Activity struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description" validate:"required"`
	Period      string       `json:"period,omitempty"`
	Budget      float64      `json:"budget" validate:"gte=0"`
	BudgetItems []BudgetItem `json:"budget_items" validate:"dive"`
	Timing      string       `json:"timing" validate:"required,oneof=pre_incident during_incident post_incident"`
}

// FireManagement groups activities by when they happen relative to a fire.
type FireManagement struct {
	PreIncident    []Activity `json:"pre_incident" validate:"dive"`
	DuringIncident []Activity `json:"during_incident" validate:"dive"`
	PostIncident   []Activity `json:"post_incident" validate:"dive"`
}

// Activities returns every activity in timing order.
func (f FireManagement) Activities() []Activity {
	out := make([]Activity, 0, len(f.PreIncident)+len(f.DuringIncident)+len(f.PostIncident))
	out = append(out, f.PreIncident...)
	out = append(out, f.DuringIncident...)
	return append(out, f.PostIncident...)
}

type Equipment struct {
	Name      string  `json:"name" validate:"required"`
	Available float64 `json:"available" validate:"gte=0"`
	Needed    float64 `json:"needed" validate:"gte=0"`
}

type BudgetSource struct {
	Name   string   `json:"name" validate:"required"`
	Amount *float64 `json:"amount" validate:"required"`
}

type Budget struct {
	Allocated float64        `json:"allocated" validate:"gte=0"`
	Shortage  float64        `json:"shortage" validate:"gte=0"`
	Sources   []BudgetSource `json:"sources" validate:"dive"`
}

// Plan is a persisted community fire-management plan. The nested documents
// are stored as jsonb; forest types are copied into a text[] column so they
// can be filtered with an index.
type Plan struct {
	ID             uuid.UUID                          `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VillageInfo    datatypes.JSONType[VillageInfo]    `gorm:"not null" json:"village_info"`
	FireManagement datatypes.JSONType[FireManagement] `json:"fire_management"`
	Equipment      datatypes.JSONSlice[Equipment]     `json:"equipment"`
	Budget         datatypes.JSONType[Budget]         `json:"budget"`
	ForestTypes    pq.StringArray                     `gorm:"type:text[]" json:"-"`

	Status      string     `gorm:"type:text;not null;default:'pending';index:idx_plans_status;check:chk_plans_status,status IN ('pending','approved','rejected','under_review')" json:"status"`
	SubmittedAt time.Time  `gorm:"not null;index:idx_plans_submitted_at,sort:desc" json:"submitted_at"`
	ReviewedBy  *string    `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	Notes       *string    `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Plan) TableName() string {
	return "community.plans"
}

// TotalBudget sums the budget of every activity.
func (p *Plan) TotalBudget() float64 {
	total := 0.0
	for _, a := range p.FireManagement.Data().Activities() {
		total += a.Budget
	}
	return total
}

// Shortage is one equipment item with fewer units available than needed.
type Shortage struct {
	Name     string  `json:"name"`
	Shortage float64 `json:"shortage"`
}

// EquipmentShortage lists equipment where needed exceeds available.
func (p *Plan) EquipmentShortage() []Shortage {
	out := []Shortage{}
	for _, e := range p.Equipment {
		if e.Needed > e.Available {
			out = append(out, Shortage{Name: e.Name, Shortage: e.Needed - e.Available})
		}
	}
	return out
}

// Summary is a short description of a plan used in logs.
type Summary struct {
	VillageName     string    `json:"village_name"`
	Location        string    `json:"location"`
	TotalActivities int       `json:"total_activities"`
	TotalBudget     float64   `json:"total_budget"`
	EquipmentItems  int       `json:"equipment_items"`
	Status          string    `json:"status"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

func (p *Plan) Summary() Summary {
	info := p.VillageInfo.Data()
	return Summary{
		VillageName:     info.Name,
		Location:        info.Subdistrict + ", " + info.District + ", " + info.Province,
		TotalActivities: len(p.FireManagement.Data().Activities()),
		TotalBudget:     p.TotalBudget(),
		EquipmentItems:  len(p.Equipment),
		Status:          p.Status,
		SubmittedAt:     p.SubmittedAt,
	}
}

// PlanDetail is a plan with its derived fields, returned by the fetch endpoint.
type PlanDetail struct {
	*Plan
	TotalBudget       float64    `json:"total_budget"`
	EquipmentShortage []Shortage `json:"equipment_shortage"`
}

func NewPlanDetail(p *Plan) PlanDetail {
	return PlanDetail{Plan: p, TotalBudget: p.TotalBudget(), EquipmentShortage: p.EquipmentShortage()}
}

type listVillageInfo struct {
	Name        string `json:"name"`
	District    string `json:"district"`
	Subdistrict string `json:"subdistrict"`
}

type listBudget struct {
	Allocated float64 `json:"allocated"`
	Shortage  float64 `json:"shortage"`
}

// ListItem is the projection returned by the paginated list.
type ListItem struct {
	ID          uuid.UUID       `json:"id"`
	VillageInfo listVillageInfo `json:"village_info"`
	Status      string          `json:"status"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Budget      listBudget      `json:"budget"`
}

func NewListItem(p *Plan) ListItem {
	info := p.VillageInfo.Data()
	budget := p.Budget.Data()
	return ListItem{
		ID:          p.ID,
		VillageInfo: listVillageInfo{Name: info.Name, District: info.District, Subdistrict: info.Subdistrict},
		Status:      p.Status,
		SubmittedAt: p.SubmittedAt,
		Budget:      listBudget{Allocated: budget.Allocated, Shortage: budget.Shortage},
	}
}

// Stats aggregates every stored plan.
type Stats struct {
	TotalPlans           int64   `json:"total_plans"`
	PendingPlans         int64   `json:"pending_plans"`
	ApprovedPlans        int64   `json:"approved_plans"`
	UnderReviewPlans     int64   `json:"under_review_plans"`
	RejectedPlans        int64   `json:"rejected_plans"`
	TotalBudgetRequested float64 `json:"total_budget_requested"`
	TotalBudgetAllocated float64 `json:"total_budget_allocated"`
	TotalBudgetShortage  float64 `json:"total_budget_shortage"`
}

// CreateRequest is the body of a plan submission. Metadata such as status
// and review fields is not accepted from the client.
type CreateRequest struct {
	VillageInfo    VillageInfo    `json:"village_info" validate:"required"`
	FireManagement FireManagement `json:"fire_management"`
	Equipment      []Equipment    `json:"equipment" validate:"dive"`
	Budget         Budget         `json:"budget"`
}

// MissingVillageInfo reports whether any of the mandatory village fields is empty.
func (r *CreateRequest) MissingVillageInfo() bool {
	v := r.VillageInfo
	return v.Name == "" || v.Moo == "" || v.Subdistrict == "" || v.District == ""
}

// NewPlan builds a pending plan from a submission.
func (r *CreateRequest) NewPlan(now time.Time) *Plan {
	info := r.VillageInfo
	if info.Province == "" {
		info.Province = DefaultProvince
	}
	if info.ForestTypes == nil {
		info.ForestTypes = []string{}
	}
	if info.MainOccupations == nil {
		info.MainOccupations = []string{}
	}

	equipment := r.Equipment
	if equipment == nil {
		equipment = []Equipment{}
	}

	return &Plan{
		ID:             uuid.New(),
		VillageInfo:    datatypes.NewJSONType(info),
		FireManagement: datatypes.NewJSONType(normaliseFireManagement(r.FireManagement)),
		Equipment:      datatypes.NewJSONSlice(equipment),
		Budget:         datatypes.NewJSONType(normaliseBudget(r.Budget)),
		ForestTypes:    pq.StringArray(info.ForestTypes),
		Status:         StatusPending,
		SubmittedAt:    now,
	}
}

func normaliseFireManagement(f FireManagement) FireManagement {
	fix := func(as []Activity) []Activity {
		if as == nil {
			return []Activity{}
		}
		for i := range as {
			if as[i].BudgetItems == nil {
				as[i].BudgetItems = []BudgetItem{}
			}
		}
		return as
	}
	f.PreIncident = fix(f.PreIncident)
	f.DuringIncident = fix(f.DuringIncident)
	f.PostIncident = fix(f.PostIncident)
	return f
}

func normaliseBudget(b Budget) Budget {
	if b.Sources == nil {
		b.Sources = []BudgetSource{}
	}
	return b
}

// StatusUpdate is the body of a status change.
type StatusUpdate struct {
	Status     string  `json:"status"`
	Notes      *string `json:"notes"`
	ReviewedBy *string `json:"reviewed_by"`
}

// ListQuery selects a page of plans.
type ListQuery struct {
	Status      string
	District    string
	Subdistrict string
	ForestType  string
	Page        int
	Limit       int
}

// Offset is the number of rows skipped before the page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
