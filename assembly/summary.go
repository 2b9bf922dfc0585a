package assembly

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skillsenselab/wirekit/inspect"
	"github.com/skillsenselab/wirekit/lifecycle"
	"github.com/skillsenselab/wirekit/registry"
)

// Summary tracks and displays the application startup process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a new startup summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display prints the startup summary including live registration counts
// from the registry and health from the lifecycle manager.
func (s *Summary) Display(reg *registry.Registry, mgr *lifecycle.Manager, insp *inspect.Server) {
	fmt.Print(s.Render(reg, mgr, insp))
}

// Render builds the summary text without printing it.
func (s *Summary) Render(reg *registry.Registry, mgr *lifecycle.Manager, insp *inspect.Server) string {
	var b strings.Builder

	// Header
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	// Registrations with scope breakdown
	if reg != nil {
		snapshot := reg.Snapshot()
		fmt.Fprintf(&b, "📦 Registrations (%d)\n", len(snapshot))
		if len(snapshot) == 0 {
			fmt.Fprintf(&b, "   └── none\n")
		} else {
			var singletons, cached, transients int
			for _, info := range snapshot {
				switch {
				case info.Scope.IsSingleton():
					singletons++
				case info.Scope.IsCached():
					cached++
				default:
					transients++
				}
			}
			fmt.Fprintf(&b, "   ├── singleton: %d\n", singletons)
			fmt.Fprintf(&b, "   ├── cached: %d\n", cached)
			fmt.Fprintf(&b, "   └── transient: %d\n", transients)
		}
	}

	// Managed services with live health
	if mgr != nil && mgr.Len() > 0 {
		report := mgr.HealthAll(context.Background())
		fmt.Fprintf(&b, "\n⚙️  Managed Services (%d)\n", len(report.Services))
		for i, h := range report.Services {
			prefix := "├──"
			if i == len(report.Services)-1 {
				prefix = "└──"
			}
			icon := healthStatusIcon(h.Status)
			msg := ""
			if h.Message != "" {
				msg = fmt.Sprintf(" — %s", h.Message)
			}
			fmt.Fprintf(&b, "   %s %s %s: %s%s\n", prefix, icon, h.Name, string(h.Status), msg)
		}

		healthy := 0
		for _, h := range report.Services {
			if h.Status == lifecycle.StatusHealthy {
				healthy++
			}
		}
		total := len(report.Services)
		if healthy == total {
			fmt.Fprintf(&b, "\n✅ All services healthy (%d/%d)\n", healthy, total)
		} else {
			fmt.Fprintf(&b, "\n⚠️  Some services have issues (%d/%d healthy)\n", healthy, total)
		}
	}

	// Inspect endpoint
	if insp != nil {
		fmt.Fprintf(&b, "\n🔍 Inspect\n")
		fmt.Fprintf(&b, "   └── http://%s\n", insp.Addr())
	}

	fmt.Fprintf(&b, "\n")
	return b.String()
}

func healthStatusIcon(status lifecycle.Status) string {
	switch status {
	case lifecycle.StatusHealthy:
		return "✅"
	case lifecycle.StatusDegraded:
		return "⚠️"
	case lifecycle.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
