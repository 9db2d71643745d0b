package usecases

import (
	"context"
	"fmt"
	"log"

	"github.com/Aro-geo/washguard-prototype/internal/alerting"
	"github.com/Aro-geo/washguard-prototype/internal/notification"
	"github.com/Aro-geo/washguard-prototype/internal/repository"
	"github.com/Aro-geo/washguard-prototype/internal/risk"
)

// Dispatcher is the outbound side of the pipeline. The composite notifier
// satisfies it; tests substitute a recording fake.
type Dispatcher interface {
	Dispatch(ctx context.Context, subject, body string) []notification.Outcome
	Channels() []notification.Channel
}

// NotifiedAlert records one dispatched alert and its per-channel outcomes
type NotifiedAlert struct {
	Location string
	Tags     []risk.IssueTag
	HighRisk bool
	Outcomes []notification.Outcome
}

// PassSummary describes one evaluation pass
type PassSummary struct {
	Evaluated   int // status reports read from the store
	AlertWorthy int // reports with a non-empty tag set, before dedup
	HighRisk    int // deduplicated alerts below the low-water threshold
	Suppressed  int // alerts skipped because the location is already open in the ledger
	Notified    []NotifiedAlert
}

// MonitorUseCase runs the alerting pipeline: read-all infrastructure,
// classify, deduplicate, dispatch
type MonitorUseCase struct {
	repo       repository.ReadingRepository
	dispatcher Dispatcher
	ledger     repository.AlertLedger // nil keeps dedup scoped to one pass
}

// NewMonitorUseCase creates a new monitor use case. Passing a nil ledger
// keeps the original per-pass dedup behavior; a non-nil ledger suppresses
// re-alerts until the location clears.
func NewMonitorUseCase(repo repository.ReadingRepository, dispatcher Dispatcher, ledger repository.AlertLedger) *MonitorUseCase {
	return &MonitorUseCase{
		repo:       repo,
		dispatcher: dispatcher,
		ledger:     ledger,
	}
}

// RunEvaluationPass executes one full cycle of the alerting pipeline.
// Store failures are hard errors; notification channel failures are
// captured per channel and never fail the pass.
func (uc *MonitorUseCase) RunEvaluationPass(ctx context.Context) (*PassSummary, error) {
	log.Println("Starting evaluation pass...")

	statuses, err := uc.repo.GetAllInfrastructure()
	if err != nil {
		return nil, fmt.Errorf("failed to read infrastructure statuses: %v", err)
	}

	summary := &PassSummary{Evaluated: len(statuses)}

	// Classify every report; collect the alert-worthy ones in store order.
	// lastAlertWorthy tracks the newest report per location so the ledger
	// only closes once a location's latest report is clean.
	var alerts []alerting.Alert
	lastAlertWorthy := make(map[string]bool)
	for _, status := range statuses {
		tags := risk.Classify(status)
		lastAlertWorthy[status.Location] = risk.AlertWorthy(tags)
		if !risk.AlertWorthy(tags) {
			continue
		}
		alerts = append(alerts, alerting.Alert{
			Status:   status,
			Tags:     tags,
			HighRisk: risk.HighRisk(status, tags),
		})
	}
	summary.AlertWorthy = len(alerts)
	log.Printf("Classified %d statuses: %d alert-worthy", len(statuses), len(alerts))

	// At most one notification per location per pass, first report wins
	for _, alert := range alerting.DedupByLocation(alerts) {
		if alert.HighRisk {
			summary.HighRisk++
		}

		if uc.ledger != nil {
			opened, err := uc.ledger.TryOpenAlert(alert.Status.Location, alert.StatusLine())
			if err != nil {
				return nil, fmt.Errorf("failed to update alert ledger: %v", err)
			}
			if !opened {
				log.Printf("Suppressing alert for %s: already open since a previous pass", alert.Status.Location)
				summary.Suppressed++
				continue
			}
		}

		outcomes := uc.dispatcher.Dispatch(ctx, alert.Subject(), alert.Body())

		// A ledger entry must correspond to a message somebody could have
		// received. When every channel failed, release it so the next pass
		// alerts again.
		if uc.ledger != nil && len(outcomes) > 0 && !anyDelivered(outcomes) {
			log.Printf("All channels failed for %s, releasing ledger entry", alert.Status.Location)
			if err := uc.ledger.CloseAlert(alert.Status.Location); err != nil {
				return nil, fmt.Errorf("failed to release alert ledger entry: %v", err)
			}
		}

		summary.Notified = append(summary.Notified, NotifiedAlert{
			Location: alert.Status.Location,
			Tags:     alert.Tags,
			HighRisk: alert.HighRisk,
			Outcomes: outcomes,
		})
	}

	// Close open alerts for locations whose latest report is clean
	if uc.ledger != nil {
		for location, alertWorthy := range lastAlertWorthy {
			if alertWorthy {
				continue
			}
			if err := uc.ledger.CloseAlert(location); err != nil {
				return nil, fmt.Errorf("failed to close alert ledger entry: %v", err)
			}
		}
	}

	log.Printf("Evaluation pass complete: %d evaluated, %d notified, %d high risk, %d suppressed",
		summary.Evaluated, len(summary.Notified), summary.HighRisk, summary.Suppressed)
	return summary, nil
}

// anyDelivered reports whether at least one channel accepted the message
func anyDelivered(outcomes []notification.Outcome) bool {
	for _, o := range outcomes {
		if o.OK() {
			return true
		}
	}
	return false
}
