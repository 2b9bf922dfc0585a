package lifecycle

// Status represents the health state of a managed service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Health holds health information for a single managed service.
type Health struct {
	Name    string         `json:"name"`
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Report is the aggregated health of all managed services.
type Report struct {
	Status   Status   `json:"status"`
	Services []Health `json:"services"`
}

// NewReport builds a Report whose overall status is folded from the
// individual service statuses.
func NewReport(services []Health) Report {
	return Report{Status: Aggregate(services), Services: services}
}

// Aggregate folds service statuses into one overall status: any
// unhealthy service makes the whole report unhealthy, any degraded
// service degrades it, and an empty set is healthy.
func Aggregate(services []Health) Status {
	overall := StatusHealthy
	for _, h := range services {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}
