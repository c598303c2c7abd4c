package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLivenessAlwaysOK(t *testing.T) {
	h := NewHealthChecker(":0")

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("liveness status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want %q", resp.Status, "ok")
	}
}

func TestReadinessStartsNotReady(t *testing.T) {
	h := NewHealthChecker(":0")

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestReadinessAfterSetReady(t *testing.T) {
	h := NewHealthChecker(":0")
	h.SetReady(true)

	if !h.IsReady() {
		t.Fatal("IsReady() = false after SetReady(true)")
	}

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("readiness status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Checks["ready"] != "ok" {
		t.Errorf("ready check = %q, want %q", resp.Checks["ready"], "ok")
	}
}

func TestReadinessDuringShutdown(t *testing.T) {
	h := NewHealthChecker(":0")
	h.SetReady(true)
	h.SetShuttingDown()

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Checks["shutdown"] != "shutting down" {
		t.Errorf("shutdown check = %q, want %q", resp.Checks["shutdown"], "shutting down")
	}
}

func TestHealthCheckerDefaultAddr(t *testing.T) {
	h := NewHealthChecker("")
	if h.Addr() != DefaultHealthAddr {
		t.Errorf("Addr() = %q, want %q", h.Addr(), DefaultHealthAddr)
	}
}
