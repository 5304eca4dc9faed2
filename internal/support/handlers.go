package support

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/forrest-fire-fund/cnx-backend/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// Handler accepts support pledges. Pledges are acknowledged and logged only.
type Handler struct {
	Now func() time.Time
}

func NewHandler() *Handler {
	return &Handler{Now: time.Now}
}

type rejection struct {
	err, message string
}

var (
	errMissingFields = rejection{"Missing required fields", "villageId, villageName, supportType, donorInfo, and support are required"}
	errMissingDonor  = rejection{"Missing donor information", "Donor name and email are required"}
	errMoney         = rejection{"Invalid money support", "Amount must be greater than 0"}
	errEquipment     = rejection{"Invalid equipment support", "Equipment name and quantity (> 0) are required"}
)

// check applies the pledge rules in order and returns the first failure.
func (r *Request) check() *rejection {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &errMissingFields
		}
		for _, fe := range verrs {
			if !strings.HasPrefix(fe.StructNamespace(), "Request.DonorInfo.") {
				return &errMissingFields
			}
		}
		if !r.hasVillageID() {
			return &errMissingFields
		}
		return &errMissingDonor
	}
	if !r.hasVillageID() {
		return &errMissingFields
	}

	switch r.SupportType {
	case TypeMoney:
		if r.Support.Amount == nil || *r.Support.Amount <= 0 {
			return &errMoney
		}
	case TypeEquipment:
		if strings.TrimSpace(r.Support.Equipment) == "" || r.Support.Quantity == nil || *r.Support.Quantity <= 0 {
			return &errEquipment
		}
	}
	return nil
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if rej := req.check(); rej != nil {
		utils.WriteError(w, http.StatusBadRequest, rej.err, rej.message)
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	var villageID any
	_ = json.Unmarshal(req.VillageID, &villageID)

	rec := Record{
		ID:          "support_" + uuid.NewString(),
		VillageID:   villageID,
		VillageName: normalise(req.VillageName),
		SupportType: req.SupportType,
		DonorName:   normalise(req.DonorInfo.Name),
		DonorEmail:  strings.TrimSpace(req.DonorInfo.Email),
		DonorPhone:  req.DonorInfo.Phone,
		Support:     *req.Support,
		SubmittedAt: now().UTC(),
		Status:      "pending",
	}

	zap.L().Info("support pledge received",
		zap.String("id", rec.ID),
		zap.String("village", rec.VillageName),
		zap.String("type", rec.SupportType),
		zap.String("donor", rec.DonorName),
		zap.String("details", rec.Describe()),
	)

	utils.WriteSuccess(w, http.StatusCreated, map[string]any{
		"id":          rec.ID,
		"village":     rec.VillageName,
		"type":        rec.SupportType,
		"submittedAt": rec.SubmittedAt,
	}, map[string]any{"message": "Support request submitted successfully"})
}
