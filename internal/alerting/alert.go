// Package alerting turns classified status reports into the deduplicated
// alert sequence of one evaluation pass and formats the outbound messages.
package alerting

import (
	"fmt"
	"strings"

	"github.com/Aro-geo/washguard-prototype/internal/entities"
	"github.com/Aro-geo/washguard-prototype/internal/risk"
)

// Alert pairs one alert-worthy status report with its classification
type Alert struct {
	Status   entities.InfrastructureStatus
	Tags     []risk.IssueTag
	HighRisk bool
}

// StatusLine joins the fired tag labels the way the dashboard shows them
func (a Alert) StatusLine() string {
	parts := make([]string, 0, len(a.Tags))
	for _, tag := range a.Tags {
		parts = append(parts, tag.Label())
	}
	return strings.Join(parts, ", ")
}

// Subject builds the notification subject for the alert
func (a Alert) Subject() string {
	return fmt.Sprintf("WASH Alert: %s – %s", a.Status.Location, a.StatusLine())
}

// Body builds the notification body for the alert
func (a Alert) Body() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Issue at %s: %s\n", a.Status.Location, a.StatusLine()))
	if a.Status.Comments != "" {
		b.WriteString(a.Status.Comments)
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Water: %dL\n", a.Status.WaterAvailableLiters))
	b.WriteString(fmt.Sprintf("Road: %s", a.Status.RoadCondition))
	if a.HighRisk {
		b.WriteString("\nHIGH RISK: water reserve below critical threshold")
	}
	return b.String()
}

// DedupByLocation keeps at most one alert per distinct location, preserving
// input order and keeping the first occurrence. The state lives and dies
// with one evaluation pass; cross-pass suppression is the repository's
// open-alert ledger.
func DedupByLocation(alerts []Alert) []Alert {
	seen := make(map[string]bool, len(alerts))
	deduped := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if seen[a.Status.Location] {
			continue
		}
		seen[a.Status.Location] = true
		deduped = append(deduped, a)
	}
	return deduped
}
