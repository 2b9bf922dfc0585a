package lifecycle

import "testing"

func TestStatusConstants(t *testing.T) {
	if StatusHealthy != "healthy" {
		t.Errorf("expected 'healthy', got %q", StatusHealthy)
	}
	if StatusDegraded != "degraded" {
		t.Errorf("expected 'degraded', got %q", StatusDegraded)
	}
	if StatusUnhealthy != "unhealthy" {
		t.Errorf("expected 'unhealthy', got %q", StatusUnhealthy)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); got != StatusHealthy {
		t.Errorf("Aggregate(nil) = %s, want healthy", got)
	}
}

func TestAggregateAllHealthy(t *testing.T) {
	services := []Health{
		{Name: "db", Status: StatusHealthy},
		{Name: "cache", Status: StatusHealthy},
	}
	if got := Aggregate(services); got != StatusHealthy {
		t.Errorf("Aggregate = %s, want healthy", got)
	}
}

func TestAggregateDegradedDominatesHealthy(t *testing.T) {
	services := []Health{
		{Name: "db", Status: StatusHealthy},
		{Name: "cache", Status: StatusDegraded},
	}
	if got := Aggregate(services); got != StatusDegraded {
		t.Errorf("Aggregate = %s, want degraded", got)
	}
}

func TestAggregateUnhealthyDominatesAll(t *testing.T) {
	services := []Health{
		{Name: "db", Status: StatusUnhealthy},
		{Name: "cache", Status: StatusDegraded},
		{Name: "kafka", Status: StatusHealthy},
	}
	if got := Aggregate(services); got != StatusUnhealthy {
		t.Errorf("Aggregate = %s, want unhealthy", got)
	}
}

func TestNewReport(t *testing.T) {
	services := []Health{
		{Name: "db", Status: StatusHealthy, Message: "connected"},
		{Name: "cache", Status: StatusDegraded, Message: "slow"},
	}
	report := NewReport(services)
	if report.Status != StatusDegraded {
		t.Errorf("Status = %s, want degraded", report.Status)
	}
	if len(report.Services) != 2 || report.Services[0].Message != "connected" {
		t.Errorf("services not preserved: %+v", report.Services)
	}
}
