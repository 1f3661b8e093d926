package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func check(t *testing.T, h *HealthHandler) (int, OverallHealth) {
	t.Helper()
	app := fiber.New()
	app.Get("/api/health", h.HandleHealth)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	var out OverallHealth
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		build  func() *HealthHandler
		code   int
		status string
	}{
		{"starting", func() *HealthHandler { return NewHealthHandler().AddCheck("store", ok) }, 503, "starting"},
		{"healthy", func() *HealthHandler {
			h := NewHealthHandler().AddCheck("store", ok).AddInfo("ai", "not_configured")
			h.SetReady()
			return h
		}, 200, "ok"},
		{"failing", func() *HealthHandler {
			h := NewHealthHandler().AddCheck("store", ok).AddCheck("redis", down)
			h.SetReady()
			return h
		}, 503, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := check(t, tt.build())
			if code != tt.code || out.OverallStatus != tt.status {
				t.Errorf("got %d %q, want %d %q", code, out.OverallStatus, tt.code, tt.status)
			}
		})
	}
}

func TestHealthComponents(t *testing.T) {
	h := NewHealthHandler().
		AddCheck("redis", func(context.Context) error { return errors.New("timeout") }).
		AddInfo("ai", "configured")
	h.SetReady()

	_, out := check(t, h)
	if out.Components["redis"].Status != "error" || out.Components["redis"].Error != "timeout" {
		t.Errorf("redis: %+v", out.Components["redis"])
	}
	if out.Components["ai"].Status != "configured" {
		t.Errorf("ai: %+v", out.Components["ai"])
	}
}
