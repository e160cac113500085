package metrics

import (
	"testing"
)

// Global metrics instance (reused across enabled tests to avoid Prometheus registry conflicts)
var globalMetrics *Metrics

func init() {
	globalMetrics = New(true)
}

func TestMetricsEnabled(t *testing.T) {
	if globalMetrics == nil {
		t.Fatal("metrics should not be nil")
	}

	// Should not panic
	globalMetrics.RecordLogin("password", true)
	globalMetrics.RecordLogin("google", false)
	globalMetrics.RecordLogin("onboarding", true)
	globalMetrics.RecordRefresh(true)
	globalMetrics.RecordRefresh(false)
	globalMetrics.RecordReplay()
	globalMetrics.RecordLogout()
	globalMetrics.RecordSessionInvalidated()
}

func TestMetricsDisabled(t *testing.T) {
	m := New(false)

	if m == nil {
		t.Fatal("metrics should not be nil (noop)")
	}

	// These should not panic even though they're noop
	m.RecordLogin("password", true)
	m.RecordRefresh(false)
	m.RecordReplay()
	m.RecordLogout()
	m.RecordSessionInvalidated()
}

func TestResultLabel(t *testing.T) {
	if resultLabel(true) != "success" || resultLabel(false) != "failure" {
		t.Error("unexpected result labels")
	}
}
