package ametrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPrometheusHandler_ExposesCounter(t *testing.T) {
	reg := NewRegistry()
	reg.Counter("demo.widgets").Add(5)

	handler := PrometheusHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "asciichat_demo_widgets") {
		t.Errorf("expected body to mention asciichat_demo_widgets, got:\n%s", body)
	}
	if !strings.Contains(body, " 5") {
		t.Errorf("expected body to contain the value 5, got:\n%s", body)
	}
}

func TestSanitizeName_ReplacesDots(t *testing.T) {
	if got := sanitizeName("render.frames"); got != "asciichat_render_frames" {
		t.Errorf("got %q", got)
	}
}
