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
)

func TestMiddlewareSetsSecurityHeaders(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)

	if got := res.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options nosniff, got %q", got)
	}
	if got := res.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected X-Frame-Options DENY, got %q", got)
	}
	if got := res.Header().Get("Referrer-Policy"); got == "" {
		t.Fatalf("expected Referrer-Policy to be set")
	}
}

func TestLoginRateLimitReturns429(t *testing.T) {
	api := newTestAPI(t)
	body, _ := json.Marshal(map[string]string{"email": "admin@shopledger.local", "password": "wrong-pass"})

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "127.0.0.1:5000"
		res := httptest.NewRecorder()

		api.Handler().ServeHTTP(res, req)

		if i < 5 && res.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d expected 401 before limit, got %d", i+1, res.Code)
		}
		if i == 5 && res.Code != http.StatusTooManyRequests {
			t.Fatalf("attempt 6 expected 429, got %d", res.Code)
		}
	}
}

func TestJSONBodyTooLargeRejected(t *testing.T) {
	api := newTestAPI(t)
	veryLong := strings.Repeat("a", (1<<20)+1024)
	body := fmt.Sprintf(`{"email":"%s","password":"x"}`, veryLong)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too large body, got %d", res.Code)
	}
}

func TestMutationWithoutCSRFTokenRejected(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "staff@shopledger.local", "staff123")

	res := doJSON(t, handler, http.MethodPut, recordPath, token, "", fullSubmission())
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", res.Code)
	}

	res = doJSON(t, handler, http.MethodPut, recordPath, token, "bogus-token", fullSubmission())
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with invalid csrf token, got %d", res.Code)
	}
}

func TestLoginExemptFromCSRF(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	// loginToken sends no X-CSRF-Token header and must still succeed.
	if token := loginToken(t, handler, "staff@shopledger.local", "staff123"); token == "" {
		t.Fatal("expected login to succeed without csrf token")
	}
}

func TestCSRFTokenPreviousHourStillValid(t *testing.T) {
	api := newTestAPI(t)

	prevBucket := time.Now().UTC().Truncate(time.Hour).Unix() - 3600
	token := api.csrfTokenForHour(prevBucket)

	if !api.validateCSRFToken(token) {
		t.Fatalf("expected previous-hour token to validate")
	}
	if api.validateCSRFToken(api.csrfTokenForHour(prevBucket - 3600)) {
		t.Fatalf("expected two-hour-old token to be rejected")
	}
}

func TestCORSPreflightAllowsConfiguredMethods(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/spends", nil)
	req.Header.Set("Origin", "http://127.0.0.1:3000")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", res.Code)
	}
	methods := res.Header().Get("Access-Control-Allow-Methods")
	for _, want := range []string{"PUT", "PATCH", "DELETE"} {
		if !strings.Contains(methods, want) {
			t.Fatalf("expected %s in allowed methods, got %q", want, methods)
		}
	}
}
