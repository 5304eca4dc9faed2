package support

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"
)

// Support types with extra validation rules.
const (
	TypeMoney     = "money"
	TypeEquipment = "equipment"
)

type DonorInfo struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required"`
	Phone *string `json:"phone"`
}

// Details describes what is pledged. Amount applies to money pledges,
// Equipment and Quantity to equipment pledges.
type Details struct {
	Amount    *float64 `json:"amount,omitempty"`
	Equipment string   `json:"equipment,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// Request is the body of a support pledge.
type Request struct {
	VillageID   json.RawMessage `json:"villageId"`
	VillageName string          `json:"villageName" validate:"required"`
	SupportType string          `json:"supportType" validate:"required"`
	DonorInfo   *DonorInfo      `json:"donorInfo" validate:"required"`
	Support     *Details        `json:"support" validate:"required"`
}

// hasVillageID reports whether villageId is present and not empty, zero,
// false or null.
func (r *Request) hasVillageID() bool {
	s := strings.TrimSpace(string(r.VillageID))
	switch s {
	case "", "null", `""`, "0", "false":
		return false
	}
	return true
}

// Record is an accepted pledge. Records are logged, not stored.
type Record struct {
	ID          string    `json:"id"`
	VillageID   any       `json:"villageId"`
	VillageName string    `json:"villageName"`
	SupportType string    `json:"supportType"`
	DonorName   string    `json:"donorName"`
	DonorEmail  string    `json:"donorEmail"`
	DonorPhone  *string   `json:"donorPhone"`
	Support     Details   `json:"support"`
	SubmittedAt time.Time `json:"submittedAt"`
	Status      string    `json:"status"`
}

var thai = message.NewPrinter(language.Thai)

// Describe renders the pledge for log lines, e.g. "฿12,500.00" or "ถังน้ำ x4".
func (r *Record) Describe() string {
	if r.SupportType == TypeMoney && r.Support.Amount != nil {
		return thai.Sprintf("฿%.2f", *r.Support.Amount)
	}
	qty := 0.0
	if r.Support.Quantity != nil {
		qty = *r.Support.Quantity
	}
	return thai.Sprintf("%s x%v", r.Support.Equipment, qty)
}

// normalise folds Thai text to NFC so that visually identical names compare equal.
func normalise(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
