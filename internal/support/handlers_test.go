package support

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func post(t *testing.T, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	h := &Handler{Now: func() time.Time { return time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC) }}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	SetupRoutes(h).ServeHTTP(rr, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

func TestSubmit_Money(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	rr, body := post(t, `{
		"villageId": 12,
		"villageName": "บ้านป่าตึง",
		"supportType": "money",
		"donorInfo": {"name": "สมชาย", "email": "somchai@example.com"},
		"support": {"amount": 12500}
	}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Support request submitted successfully", body["message"])

	data := body["data"].(map[string]any)
	assert.True(t, strings.HasPrefix(data["id"].(string), "support_"))
	assert.Equal(t, "บ้านป่าตึง", data["village"])
	assert.Equal(t, "money", data["type"])
	assert.Equal(t, "2025-02-01T10:00:00Z", data["submittedAt"])

	entries := logs.FilterMessage("support pledge received").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["details"], "12,500.00")
}

func TestSubmit_Equipment(t *testing.T) {
	rr, _ := post(t, `{
		"villageId": "V-3",
		"villageName": "บ้านแม่ขิ",
		"supportType": "equipment",
		"donorInfo": {"name": "A", "email": "a@example.com", "phone": "0812345678"},
		"support": {"equipment": "ถังน้ำ", "quantity": 4}
	}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestSubmit_Rejections(t *testing.T) {
	const donor = `"donorInfo": {"name": "A", "email": "a@example.com"}`
	cases := []struct {
		name, body, wantErr string
	}{
		{"no village id", `{"villageName": "v", "supportType": "money", ` + donor + `, "support": {"amount": 1}}`, "Missing required fields"},
		{"zero village id", `{"villageId": 0, "villageName": "v", "supportType": "money", ` + donor + `, "support": {"amount": 1}}`, "Missing required fields"},
		{"no support", `{"villageId": 1, "villageName": "v", "supportType": "money", ` + donor + `}`, "Missing required fields"},
		{"no donor", `{"villageId": 1, "villageName": "v", "supportType": "money", "support": {"amount": 1}}`, "Missing required fields"},
		{"donor without email", `{"villageId": 1, "villageName": "v", "supportType": "money", "donorInfo": {"name": "A"}, "support": {"amount": 1}}`, "Missing donor information"},
		{"zero amount", `{"villageId": 1, "villageName": "v", "supportType": "money", ` + donor + `, "support": {"amount": 0}}`, "Invalid money support"},
		{"missing amount", `{"villageId": 1, "villageName": "v", "supportType": "money", ` + donor + `, "support": {}}`, "Invalid money support"},
		{"no equipment name", `{"villageId": 1, "villageName": "v", "supportType": "equipment", ` + donor + `, "support": {"quantity": 2}}`, "Invalid equipment support"},
		{"negative quantity", `{"villageId": 1, "villageName": "v", "supportType": "equipment", ` + donor + `, "support": {"equipment": "rake", "quantity": -1}}`, "Invalid equipment support"},
		{"bad json", `{"villageId":`, "Invalid request body"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr, body := post(t, c.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, c.wantErr, body["error"])
		})
	}
}

func TestSubmit_OtherTypesNeedNoDetails(t *testing.T) {
	rr, _ := post(t, `{"villageId": 1, "villageName": "v", "supportType": "volunteer", "donorInfo": {"name": "A", "email": "a@example.com"}, "support": {"message": "weekends"}}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestRecord_Describe(t *testing.T) {
	qty := 3.0
	r := Record{SupportType: TypeEquipment, Support: Details{Equipment: "คราด", Quantity: &qty}}
	assert.Equal(t, "คราด x3", r.Describe())
}
