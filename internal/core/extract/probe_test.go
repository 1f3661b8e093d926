package extract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestProbe(t *testing.T) {
	tests := []struct {
		name   string
		gen    Generator
		status ProbeStatus
		msg    string
	}{
		{"no key", &fakeGenerator{}, ProbeError, "Gemini API key not configured"},
		{"ok", &fakeGenerator{enabled: true, reply: "Test başarılı!"}, ProbeSuccess, "Gemini API çalışıyor"},
		{"service disabled", &fakeGenerator{enabled: true, err: errors.New("googleapi: Error 403: SERVICE_DISABLED")}, ProbeAPIDisabled,
			"Google Gemini API etkinleştirilmesi gerekiyor. Sistem HTML parsing ile çalışacak."},
		{"permission denied", &fakeGenerator{enabled: true, err: errors.New("rpc error: PERMISSION_DENIED")}, ProbeAPIDisabled,
			"Google Gemini API etkinleştirilmesi gerekiyor. Sistem HTML parsing ile çalışacak."},
		{"other", &fakeGenerator{enabled: true, err: errors.New("quota exceeded")}, ProbeError, "quota exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Probe(context.Background(), tt.gen)
			if res.Status != tt.status || res.Message != tt.msg {
				t.Errorf("got %+v", res)
			}
		})
	}
}

func TestProbeSendsFixedPrompt(t *testing.T) {
	gen := &fakeGenerator{enabled: true, reply: "Test başarılı!"}
	Probe(context.Background(), gen)
	if len(gen.last) != 1 || gen.last[0].Content != ProbePrompt {
		t.Errorf("probe messages: %+v", gen.last)
	}
}

func TestHandleProbe(t *testing.T) {
	app := fiber.New()
	app.Post("/api/test-gemini", NewHandler(&fakeGenerator{enabled: true, err: errors.New("SERVICE_DISABLED")}).HandleProbe)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/test-gemini", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got["status"] != "api_disabled" || got["fallback"] != "HTML parsing aktif" {
		t.Errorf("body: %s", body)
	}
	if _, ok := got["response"]; ok {
		t.Error("response field should be omitted on failure")
	}
}
