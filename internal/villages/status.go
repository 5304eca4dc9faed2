package villages

import "github.com/forrest-fire-fund/cnx-backend/internal/gis"

// Thresholds above which a village with a plan is considered self-sufficient.
const (
	MinVolunteers    = 5
	FundingThreshold = 10000.0
)

// Status is the per-village support need.
type Status struct {
	HasPlan         bool `json:"hasPlan"`
	NeedsVolunteers bool `json:"needsVolunteers"`
	NeedsFunding    bool `json:"needsFunding"`
}

// DeriveStatus computes the support need for a village. Villages without a
// plan need everything. For villages with a plan the rule reads the plan's
// volunteers list and budget_info.total_budget.
func DeriveStatus(plan *gis.PlanEntry) Status {
	if plan == nil {
		return Status{HasPlan: false, NeedsVolunteers: true, NeedsFunding: true}
	}

	needsFunding := plan.TotalBudget == nil || *plan.TotalBudget == 0 || *plan.TotalBudget < FundingThreshold

	return Status{
		HasPlan:         true,
		NeedsVolunteers: plan.VolunteerCount < MinVolunteers,
		NeedsFunding:    needsFunding,
	}
}

// Stats aggregates the derived status of every village.
type Stats struct {
	TotalVillages  int `json:"totalVillages"`
	WithPlan       int `json:"withPlan"`
	WithoutPlan    int `json:"withoutPlan"`
	NeedVolunteers int `json:"needVolunteers"`
	NeedFunding    int `json:"needFunding"`
	NeedHelp       int `json:"needHelp"`
}

// ComputeStatistics counts villages in a single pass.
func ComputeStatistics(villages []Village) Stats {
	stats := Stats{TotalVillages: len(villages)}

	for _, v := range villages {
		if v.Status.HasPlan {
			stats.WithPlan++
		} else {
			stats.WithoutPlan++
		}
		if v.Status.NeedsVolunteers {
			stats.NeedVolunteers++
		}
		if v.Status.NeedsFunding {
			stats.NeedFunding++
		}
		if v.Status.NeedsVolunteers || v.Status.NeedsFunding {
			stats.NeedHelp++
		}
	}

	return stats
}
