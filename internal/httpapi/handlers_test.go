package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopledger/backend/internal/report"
	"shopledger/backend/internal/service"
	"shopledger/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	engine := report.NewEngine(nil, 0)
	svc := service.New(repo, engine)
	auth := NewAuthManager("test-secret-key", time.Hour, []string{"admin@shopledger.local"}, repo)

	return New(svc, auth, "*")
}

func loginToken(t *testing.T, handler http.Handler, email string, password string) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login failed for %s: %d (%s)", email, rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatalf("expected access token, got %v", body)
	}
	return token
}

func csrfToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/csrf-token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("csrf token fetch failed: %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode csrf body: %v", err)
	}
	token, _ := body["csrf_token"].(string)
	if token == "" {
		t.Fatal("expected csrf token")
	}
	return token
}

func doJSON(t *testing.T, handler http.Handler, method string, target string, token string, csrf string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func fullSubmission() map[string]string {
	return map[string]string{
		"upi": "1500", "card": "800",
		"notes500": "4", "notes200": "2", "notes100": "5",
		"notes50": "1", "notes20": "3", "notes10": "10",
		"expenses": "350", "counterCash": "500",
		"posSale": "5000", "cashGiven": "200",
	}
}

const recordPath = "/api/v1/records/The%20Juice%20Hut/05-03-2025"

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLoginSuccess(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	token := loginToken(t, handler, "admin@shopledger.local", "admin123")
	if token == "" {
		t.Fatal("expected token")
	}
}

func TestHandleLoginResolvesAdminRole(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{"email": "admin@shopledger.local", "password": "admin123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["role"] != "admin" {
		t.Fatalf("expected admin role, got %v", body["role"])
	}
}

func TestHandleLoginInvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{"email": "admin@shopledger.local", "password": "wrongpassword"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleShops(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "staff@shopledger.local", "staff123")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/shops", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Shops []string `json:"shops"`
		Units []string `json:"units"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Shops) != 3 || body.Shops[0] != "The Juice Hut" {
		t.Fatalf("unexpected shops: %v", body.Shops)
	}
	if len(body.Units) != 8 {
		t.Fatalf("unexpected units: %v", body.Units)
	}
}

func TestSubmitRecordFullPath(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "staff@shopledger.local", "staff123")
	csrf := csrfToken(t, handler)

	rec := doJSON(t, handler, http.MethodPut, recordPath, token, csrf, fullSubmission())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Record struct {
			ShopName    string  `json:"shopName"`
			Date        string  `json:"date"`
			TotalSale   float64 `json:"totalSale"`
			Remaining   float64 `json:"remaining"`
			SubmittedBy string  `json:"submittedBy"`
		} `json:"record"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Record.ShopName != "The Juice Hut" || body.Record.Date != "05-03-2025" {
		t.Fatalf("unexpected record key: %+v", body.Record)
	}
	if body.Record.TotalSale != 5210 || body.Record.Remaining != 210 {
		t.Fatalf("unexpected derived totals: %+v", body.Record)
	}
	if body.Record.SubmittedBy != "staff@shopledger.local" {
		t.Fatalf("unexpected submitter: %q", body.Record.SubmittedBy)
	}

	get := doJSON(t, handler, http.MethodGet, recordPath, token, "", nil)
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200 on read-back, got %d", get.Code)
	}
}

func TestSubmitRecordValidationErrors(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "staff@shopledger.local", "staff123")
	csrf := csrfToken(t, handler)

	payload := fullSubmission()
	payload["upi"] = ""
	payload["cashGiven"] = " "

	rec := doJSON(t, handler, http.MethodPut, recordPath, token, csrf, payload)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Fields) != 2 || body.Fields["upi"] == "" || body.Fields["cashGiven"] == "" {
		t.Fatalf("unexpected field errors: %v", body.Fields)
	}

	get := doJSON(t, handler, http.MethodGet, recordPath, token, "", nil)
	if get.Code != http.StatusNotFound {
		t.Fatalf("expected no write after failed validation, got %d", get.Code)
	}
}

func TestSubmitRecordUnknownShop(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "staff@shopledger.local", "staff123")
	csrf := csrfToken(t, handler)

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/records/Unknown%20Shop/05-03-2025", token, csrf, fullSubmission())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestReportRangeRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	staff := loginToken(t, handler, "staff@shopledger.local", "staff123")
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports/range?from=01-03-2025&to=02-03-2025", staff, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/range?from=01-03-2025&to=02-03-2025", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestReportRange(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	staff := loginToken(t, handler, "staff@shopledger.local", "staff123")
	admin := loginToken(t, handler, "admin@shopledger.local", "admin123")
	csrf := csrfToken(t, handler)

	if rec := doJSON(t, handler, http.MethodPut, recordPath, staff, csrf, fullSubmission()); rec.Code != http.StatusOK {
		t.Fatalf("submit failed: %d", rec.Code)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports/range?from=04-03-2025&to=06-03-2025", admin, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Records    []map[string]any          `json:"records"`
		Charts     map[string]map[string]any `json:"charts"`
		GrandTotal float64                   `json:"grandTotal"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Records) != 1 || body.GrandTotal != 5210 {
		t.Fatalf("unexpected report: records=%d grandTotal=%v", len(body.Records), body.GrandTotal)
	}
	if _, ok := body.Charts["totalSale"]; !ok {
		t.Fatalf("expected totalSale chart, got %v", body.Charts)
	}
	if _, ok := body.Charts["remaining"]; !ok {
		t.Fatalf("expected remaining chart, got %v", body.Charts)
	}
}

func TestReportExport(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	staff := loginToken(t, handler, "staff@shopledger.local", "staff123")
	admin := loginToken(t, handler, "admin@shopledger.local", "admin123")
	csrf := csrfToken(t, handler)

	if rec := doJSON(t, handler, http.MethodPut, recordPath, staff, csrf, fullSubmission()); rec.Code != http.StatusOK {
		t.Fatalf("submit failed: %d", rec.Code)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports/export?from=05-03-2025&to=05-03-2025", admin, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "shop-report-05-03-2025-to-05-03-2025.xlsx") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected workbook bytes")
	}
}

func TestSpendRoutes(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	admin := loginToken(t, handler, "admin@shopledger.local", "admin123")
	csrf := csrfToken(t, handler)

	created := doJSON(t, handler, http.MethodPost, "/api/v1/spends", admin, csrf, map[string]any{
		"date": "10-04-2025", "title": "Ice delivery", "price": 450,
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", created.Code, created.Body.String())
	}
	var createdBody struct {
		Spend struct {
			ID string `json:"id"`
		} `json:"spend"`
	}
	if err := json.NewDecoder(created.Body).Decode(&createdBody); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := createdBody.Spend.ID
	if id == "" {
		t.Fatal("expected spend id")
	}

	list := doJSON(t, handler, http.MethodGet, "/api/v1/spends?date=10-04-2025", admin, "", nil)
	if list.Code != http.StatusOK || !strings.Contains(list.Body.String(), "Ice delivery") {
		t.Fatalf("unexpected list response: %d %s", list.Code, list.Body.String())
	}

	patch := doJSON(t, handler, http.MethodPatch, fmt.Sprintf("/api/v1/spends/10-04-2025/%s", id), admin, csrf, map[string]any{
		"price": 500,
	})
	if patch.Code != http.StatusOK || !strings.Contains(patch.Body.String(), "500") {
		t.Fatalf("unexpected patch response: %d %s", patch.Code, patch.Body.String())
	}

	del := doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/spends/10-04-2025/%s", id), admin, csrf, nil)
	if del.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", del.Code)
	}

	del = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/spends/10-04-2025/%s", id), admin, csrf, nil)
	if del.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on double delete, got %d", del.Code)
	}
}

func TestMonthlySpendsRoute(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	admin := loginToken(t, handler, "admin@shopledger.local", "admin123")
	csrf := csrfToken(t, handler)

	if rec := doJSON(t, handler, http.MethodPost, "/api/v1/spends", admin, csrf, map[string]any{
		"date": "03-04-2025", "title": "Repairs", "price": 800,
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create spend failed: %d", rec.Code)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/spends/monthly?month=04-2025", admin, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Categories []string `json:"categories"`
		Series     struct {
			Data []float64 `json:"data"`
		} `json:"series"`
		Total float64 `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Categories) != 30 || body.Total != 800 {
		t.Fatalf("unexpected monthly report: days=%d total=%v", len(body.Categories), body.Total)
	}
	if body.Series.Data[2] != 800 {
		t.Fatalf("expected spend on the 3rd, got %v", body.Series.Data[:5])
	}
}

func TestInventoryRoutes(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	admin := loginToken(t, handler, "admin@shopledger.local", "admin123")
	csrf := csrfToken(t, handler)
	shopQuery := "shop=Bubble%20Tea%20N%20Cotton%20Candy"

	created := doJSON(t, handler, http.MethodPost, "/api/v1/inventory?"+shopQuery, admin, csrf, map[string]string{
		"name": "Tapioca Pearls", "unit": "kg",
		"opening": "10", "purchased": "5", "wastage": "1", "sold": "11",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", created.Code, created.Body.String())
	}
	var createdBody struct {
		Item struct {
			ID        string  `json:"id"`
			Remaining float64 `json:"remaining"`
			Level     string  `json:"level"`
		} `json:"item"`
	}
	if err := json.NewDecoder(created.Body).Decode(&createdBody); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if createdBody.Item.Remaining != 3 || createdBody.Item.Level != "low" {
		t.Fatalf("unexpected derived stock: %+v", createdBody.Item)
	}

	patch := doJSON(t, handler, http.MethodPatch, "/api/v1/inventory/"+createdBody.Item.ID+"?"+shopQuery, admin, csrf, map[string]string{
		"purchased": "30",
	})
	if patch.Code != http.StatusOK || !strings.Contains(patch.Body.String(), "healthy") {
		t.Fatalf("unexpected patch response: %d %s", patch.Code, patch.Body.String())
	}

	list := doJSON(t, handler, http.MethodGet, "/api/v1/inventory?"+shopQuery, admin, "", nil)
	if list.Code != http.StatusOK || !strings.Contains(list.Body.String(), "Tapioca Pearls") {
		t.Fatalf("unexpected list response: %d %s", list.Code, list.Body.String())
	}

	del := doJSON(t, handler, http.MethodDelete, "/api/v1/inventory/"+createdBody.Item.ID+"?"+shopQuery, admin, csrf, nil)
	if del.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d (body: %s)", del.Code, del.Body.String())
	}
}

func TestInventoryRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	staff := loginToken(t, handler, "staff@shopledger.local", "staff123")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/inventory?shop=The%20Juice%20Hut", staff, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff, got %d", rec.Code)
	}
}

func TestStaffManagement(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	admin := loginToken(t, handler, "admin@shopledger.local", "admin123")
	csrf := csrfToken(t, handler)

	created := doJSON(t, handler, http.MethodPost, "/api/v1/users/staff", admin, csrf, map[string]string{
		"email": "newstaff@shopledger.local", "password": "secret99",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", created.Code, created.Body.String())
	}

	list := doJSON(t, handler, http.MethodGet, "/api/v1/users/staff", admin, "", nil)
	if list.Code != http.StatusOK || !strings.Contains(list.Body.String(), "newstaff@shopledger.local") {
		t.Fatalf("unexpected staff list: %d %s", list.Code, list.Body.String())
	}

	token := loginToken(t, handler, "newstaff@shopledger.local", "secret99")
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/shops", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected created staff to reach staff routes, got %d", rec.Code)
	}
}
