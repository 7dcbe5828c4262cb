package model

import "testing"

func TestIsValidTone(t *testing.T) {
	for _, tone := range ValidTones {
		if !IsValidTone(tone) {
			t.Errorf("IsValidTone(%q) = false", tone)
		}
	}
	for _, tone := range []string{"", "sarcastic", "Professional"} {
		if IsValidTone(tone) {
			t.Errorf("IsValidTone(%q) = true", tone)
		}
	}
}

func TestRecordLifecycle(t *testing.T) {
	rec := NewAnalysisRecord("id-1", "", "text", "go")
	if rec.IsTerminal() {
		t.Error("fresh record should not be terminal")
	}
	if rec.CompletedAt != nil {
		t.Error("CompletedAt should start nil")
	}

	rec.MarkCompleted()
	if !rec.IsTerminal() {
		t.Error("completed record should be terminal")
	}
	if rec.CompletedAt == nil {
		t.Error("MarkCompleted should stamp CompletedAt")
	}

	failed := NewOptimizationRecord("id-2", "text", "go", 100, "casual")
	failed.MarkFailed()
	if failed.Status != StatusFailed || failed.CompletedAt == nil {
		t.Errorf("MarkFailed: status=%q completedAt=%v", failed.Status, failed.CompletedAt)
	}
}

func TestNewRecords(t *testing.T) {
	a := NewAnalysisRecord("a", "https://example.com", "", "kw")
	if a.Kind != KindAnalysis || a.Analysis == nil || a.Optimization != nil {
		t.Errorf("analysis record malformed: %+v", a)
	}
	if a.Analysis.InputURL != "https://example.com" {
		t.Errorf("InputURL = %q", a.Analysis.InputURL)
	}

	o := NewOptimizationRecord("o", "content", "kw", 300, "formal")
	if o.Kind != KindOptimization || o.Optimization == nil || o.Analysis != nil {
		t.Errorf("optimization record malformed: %+v", o)
	}
	if o.Status != StatusProcessing || a.Status != StatusProcessing {
		t.Error("new records must start processing")
	}
}
