package job

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusProcessing, StatusScraping, true},
		{StatusProcessing, StatusError, true},
		{StatusProcessing, StatusCompleted, false},
		{StatusScraping, StatusProcessingAI, true},
		{StatusScraping, StatusError, true},
		{StatusScraping, StatusProcessing, false},
		{StatusProcessingAI, StatusProcessingAI, true},
		{StatusProcessingAI, StatusCompleted, true},
		{StatusProcessingAI, StatusScraping, false},
		{StatusCompleted, StatusError, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusError, StatusScraping, false},
		{"unknown", StatusScraping, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusProcessing, StatusScraping, StatusProcessingAI} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
		if !IsKnownStatus(s) {
			t.Errorf("%s should be known", s)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusError} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestCheckTransitionMessage(t *testing.T) {
	err := CheckTransition("j1", StatusCompleted, StatusScraping)
	if err == nil {
		t.Fatal("expected error")
	}
	want := `invalid job status transition: "completed" -> "scraping" (job_id=j1)`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
