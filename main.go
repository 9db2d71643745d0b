package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Aro-geo/washguard-prototype/internal/config"
	"github.com/Aro-geo/washguard-prototype/internal/notification"
	"github.com/Aro-geo/washguard-prototype/internal/repository"
	"github.com/Aro-geo/washguard-prototype/internal/usecases"
)

// One-shot entry point: run a single evaluation pass against the local
// store and exit. The long-running variants live under cmd/.
func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting WASHGuard evaluation pass...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	repo, err := repository.NewSQLiteReadingRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	var notifiers []notification.Notifier
	if cfg.ChannelEnabled("email") {
		notifiers = append(notifiers, notification.NewEmailNotifier(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.Sender, cfg.Email.Password, cfg.Email.Receiver))
	}
	if cfg.ChannelEnabled("sms") {
		notifiers = append(notifiers, notification.NewSMSNotifier(
			cfg.SMS.AccountSID, cfg.SMS.AuthToken,
			cfg.SMS.FromNumber, cfg.SMS.ToNumber))
	}
	for _, n := range notifiers {
		if err := n.Validate(); err != nil {
			log.Fatalf("Notification configuration invalid: %v", err)
		}
	}
	dispatcher := notification.NewComposite(notifiers...)

	var ledger repository.AlertLedger
	if cfg.PersistAlerts {
		ledger = repo
	}

	monitor := usecases.NewMonitorUseCase(repo, dispatcher, ledger)
	summary, err := monitor.RunEvaluationPass(context.Background())
	if err != nil {
		log.Fatalf("Evaluation pass failed: %v", err)
	}

	fmt.Printf("Evaluated %d status reports, %d alert-worthy, %d high risk, %d notified, %d suppressed\n",
		summary.Evaluated, summary.AlertWorthy, summary.HighRisk, len(summary.Notified), summary.Suppressed)
	for _, n := range summary.Notified {
		for _, o := range n.Outcomes {
			if o.OK() {
				fmt.Printf("  %s: %s sent\n", n.Location, o.Channel)
			} else {
				fmt.Printf("  %s: %s failed: %v\n", n.Location, o.Channel, o.Err)
			}
		}
	}
}
