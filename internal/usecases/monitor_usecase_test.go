package usecases

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aro-geo/washguard-prototype/internal/entities"
	"github.com/Aro-geo/washguard-prototype/internal/notification"
	"github.com/Aro-geo/washguard-prototype/internal/repository"
	"github.com/Aro-geo/washguard-prototype/internal/risk"
)

// recordingDispatcher captures dispatched messages and simulates channel outcomes
type recordingDispatcher struct {
	subjects  []string
	bodies    []string
	emailFail error
	smsFail   error
}

func (d *recordingDispatcher) Channels() []notification.Channel {
	return []notification.Channel{notification.ChannelEmail, notification.ChannelSMS}
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, subject, body string) []notification.Outcome {
	d.subjects = append(d.subjects, subject)
	d.bodies = append(d.bodies, body)
	return []notification.Outcome{
		{Channel: notification.ChannelEmail, Err: d.emailFail},
		{Channel: notification.ChannelSMS, Err: d.smsFail},
	}
}

func newTestRepository(t *testing.T) *repository.SQLiteReadingRepository {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "washguard-monitor-test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	repo, err := repository.NewSQLiteReadingRepository(filepath.Join(tempDir, "test-washguard.db"))
	if err != nil {
		t.Fatalf("Failed to initialize repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustInsert(t *testing.T, repo repository.ReadingRepository, s entities.InfrastructureStatus) {
	t.Helper()
	if _, err := repo.InsertInfrastructure(s); err != nil {
		t.Fatalf("Failed to insert infrastructure status: %v", err)
	}
}

// TestEvaluationPassEndToEnd runs the full pipeline over the Zone B and
// Zone D field scenarios
func TestEvaluationPassEndToEnd(t *testing.T) {
	repo := newTestRepository(t)
	dispatcher := &recordingDispatcher{}
	monitor := NewMonitorUseCase(repo, dispatcher, nil)

	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone B", GeneratorOK: entities.No, PumpOK: entities.Yes,
		PipeLeak: entities.Yes, RoadCondition: entities.RoadFlooded,
		Comments: "leak", WaterAvailableLiters: 400,
	})
	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone D", GeneratorOK: entities.Yes, PumpOK: entities.Yes,
		PipeLeak: entities.No, RoadCondition: entities.RoadGood,
		WaterAvailableLiters: 15,
	})

	summary, err := monitor.RunEvaluationPass(context.Background())
	if err != nil {
		t.Fatalf("Evaluation pass failed: %v", err)
	}

	if summary.Evaluated != 2 {
		t.Errorf("Expected 2 evaluated, got %d", summary.Evaluated)
	}
	if summary.AlertWorthy != 1 {
		t.Errorf("Expected 1 alert-worthy, got %d", summary.AlertWorthy)
	}
	if summary.HighRisk != 0 {
		t.Errorf("Expected no high-risk alerts, got %d", summary.HighRisk)
	}
	if len(summary.Notified) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(summary.Notified))
	}

	notified := summary.Notified[0]
	if notified.Location != "Zone B" {
		t.Errorf("Expected Zone B to be notified, got %s", notified.Location)
	}
	if len(notified.Tags) != 2 {
		t.Errorf("Expected {GENERATOR_FAULT, PIPE_LEAK}, got %v", notified.Tags)
	}
	for _, tag := range notified.Tags {
		if tag != risk.GeneratorFault && tag != risk.PipeLeak {
			t.Errorf("Unexpected tag %s", tag)
		}
	}
	if !strings.Contains(dispatcher.subjects[0], "WASH Alert: Zone B") {
		t.Errorf("Unexpected subject: %s", dispatcher.subjects[0])
	}
	if !strings.Contains(dispatcher.bodies[0], "Water: 400L") {
		t.Errorf("Unexpected body: %s", dispatcher.bodies[0])
	}
}

// TestEvaluationPassDedup verifies at most one notification per location per pass
func TestEvaluationPassDedup(t *testing.T) {
	repo := newTestRepository(t)
	dispatcher := &recordingDispatcher{}
	monitor := NewMonitorUseCase(repo, dispatcher, nil)

	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone A", GeneratorOK: entities.No, PumpOK: entities.Yes,
		PipeLeak: entities.No, RoadCondition: entities.RoadGood, WaterAvailableLiters: 500,
	})
	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone B", GeneratorOK: entities.Yes, PumpOK: entities.No,
		PipeLeak: entities.No, RoadCondition: entities.RoadGood, WaterAvailableLiters: 500,
	})
	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone A", GeneratorOK: entities.Yes, PumpOK: entities.Yes,
		PipeLeak: entities.Yes, RoadCondition: entities.RoadGood, WaterAvailableLiters: 500,
	})

	summary, err := monitor.RunEvaluationPass(context.Background())
	if err != nil {
		t.Fatalf("Evaluation pass failed: %v", err)
	}

	if summary.AlertWorthy != 3 {
		t.Errorf("Expected 3 alert-worthy records, got %d", summary.AlertWorthy)
	}
	if len(summary.Notified) != 2 {
		t.Fatalf("Expected 2 notifications after dedup, got %d", len(summary.Notified))
	}
	if summary.Notified[0].Location != "Zone A" || summary.Notified[1].Location != "Zone B" {
		t.Errorf("Expected [Zone A, Zone B], got [%s, %s]",
			summary.Notified[0].Location, summary.Notified[1].Location)
	}
	// First occurrence wins: Zone A's notification carries the generator fault
	if len(summary.Notified[0].Tags) != 1 || summary.Notified[0].Tags[0] != risk.GeneratorFault {
		t.Errorf("Expected first Zone A occurrence to win, got tags %v", summary.Notified[0].Tags)
	}
}

// TestEvaluationPassChannelFailureDoesNotFailPass verifies channel failures
// are reported in outcomes without failing the pass
func TestEvaluationPassChannelFailureDoesNotFailPass(t *testing.T) {
	repo := newTestRepository(t)
	dispatcher := &recordingDispatcher{emailFail: errors.New("auth failure")}
	monitor := NewMonitorUseCase(repo, dispatcher, nil)

	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone C", GeneratorOK: entities.Yes, PumpOK: entities.No,
		PipeLeak: entities.No, RoadCondition: entities.RoadMuddy, WaterAvailableLiters: 300,
	})

	summary, err := monitor.RunEvaluationPass(context.Background())
	if err != nil {
		t.Fatalf("Evaluation pass must not fail on channel errors, got %v", err)
	}
	if len(summary.Notified) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(summary.Notified))
	}

	outcomes := summary.Notified[0].Outcomes
	byChannel := make(map[notification.Channel]notification.Outcome)
	for _, o := range outcomes {
		byChannel[o.Channel] = o
	}
	if byChannel[notification.ChannelEmail].OK() {
		t.Error("Expected email outcome to carry the failure")
	}
	if !byChannel[notification.ChannelSMS].OK() {
		t.Error("Expected SMS outcome to succeed")
	}
}

// TestEvaluationPassNoAlertsNoDispatch verifies OK sites trigger nothing
func TestEvaluationPassNoAlertsNoDispatch(t *testing.T) {
	repo := newTestRepository(t)
	dispatcher := &recordingDispatcher{}
	monitor := NewMonitorUseCase(repo, dispatcher, nil)

	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone D", GeneratorOK: entities.Yes, PumpOK: entities.Yes,
		PipeLeak: entities.No, RoadCondition: entities.RoadGood, WaterAvailableLiters: 15,
	})

	summary, err := monitor.RunEvaluationPass(context.Background())
	if err != nil {
		t.Fatalf("Evaluation pass failed: %v", err)
	}
	if summary.AlertWorthy != 0 || len(summary.Notified) != 0 || len(dispatcher.subjects) != 0 {
		t.Errorf("Expected a quiet pass, got summary %+v with %d dispatches",
			summary, len(dispatcher.subjects))
	}
}

// TestEvaluationPassLedgerReleasesUndeliveredAlerts verifies a location is
// not held open by a notification nobody received: when every channel
// fails, the next pass alerts again
func TestEvaluationPassLedgerReleasesUndeliveredAlerts(t *testing.T) {
	repo := newTestRepository(t)
	dispatcher := &recordingDispatcher{
		emailFail: errors.New("auth failure"),
		smsFail:   errors.New("provider rejection"),
	}
	monitor := NewMonitorUseCase(repo, dispatcher, repo)

	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone B", GeneratorOK: entities.No, PumpOK: entities.Yes,
		PipeLeak: entities.No, RoadCondition: entities.RoadGood, WaterAvailableLiters: 400,
	})

	// First pass attempts delivery but every channel fails
	summary, err := monitor.RunEvaluationPass(context.Background())
	if err != nil {
		t.Fatalf("First pass failed: %v", err)
	}
	if len(summary.Notified) != 1 || summary.Suppressed != 0 {
		t.Fatalf("Expected first pass to attempt one alert, got %+v", summary)
	}

	// Channels recover; the second pass must alert again, not suppress
	dispatcher.emailFail = nil
	dispatcher.smsFail = nil
	summary, err = monitor.RunEvaluationPass(context.Background())
	if err != nil {
		t.Fatalf("Second pass failed: %v", err)
	}
	if len(summary.Notified) != 1 || summary.Suppressed != 0 {
		t.Fatalf("Expected the undelivered alert to be retried, got %+v", summary)
	}

	// Now the alert is delivered and open, the third pass suppresses
	summary, err = monitor.RunEvaluationPass(context.Background())
	if err != nil {
		t.Fatalf("Third pass failed: %v", err)
	}
	if len(summary.Notified) != 0 || summary.Suppressed != 1 {
		t.Fatalf("Expected the delivered alert to suppress, got %+v", summary)
	}
}

// TestEvaluationPassLedgerSuppression verifies the persistent ledger keeps
// a location quiet across passes until its latest report is clean
func TestEvaluationPassLedgerSuppression(t *testing.T) {
	repo := newTestRepository(t)
	dispatcher := &recordingDispatcher{}
	monitor := NewMonitorUseCase(repo, dispatcher, repo)

	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone B", GeneratorOK: entities.No, PumpOK: entities.Yes,
		PipeLeak: entities.No, RoadCondition: entities.RoadGood, WaterAvailableLiters: 400,
	})

	// First pass notifies and opens the ledger entry
	summary, err := monitor.RunEvaluationPass(context.Background())
	if err != nil {
		t.Fatalf("First pass failed: %v", err)
	}
	if len(summary.Notified) != 1 || summary.Suppressed != 0 {
		t.Fatalf("Expected first pass to notify once, got %+v", summary)
	}

	// Second pass over the same data stays quiet
	summary, err = monitor.RunEvaluationPass(context.Background())
	if err != nil {
		t.Fatalf("Second pass failed: %v", err)
	}
	if len(summary.Notified) != 0 || summary.Suppressed != 1 {
		t.Fatalf("Expected second pass to suppress the open alert, got %+v", summary)
	}

	// The condition clears, the ledger entry closes, then a relapse re-alerts
	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone B", GeneratorOK: entities.Yes, PumpOK: entities.Yes,
		PipeLeak: entities.No, RoadCondition: entities.RoadGood, WaterAvailableLiters: 400,
	})
	if _, err = monitor.RunEvaluationPass(context.Background()); err != nil {
		t.Fatalf("Third pass failed: %v", err)
	}

	mustInsert(t, repo, entities.InfrastructureStatus{
		Location: "Zone B", GeneratorOK: entities.No, PumpOK: entities.Yes,
		PipeLeak: entities.No, RoadCondition: entities.RoadGood, WaterAvailableLiters: 400,
	})
	summary, err = monitor.RunEvaluationPass(context.Background())
	if err != nil {
		t.Fatalf("Fourth pass failed: %v", err)
	}
	if len(summary.Notified) != 1 {
		t.Fatalf("Expected a fresh alert after the ledger entry closed, got %+v", summary)
	}
}
