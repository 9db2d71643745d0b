package main

import (
	"context"
	"log"
	"os"

	"github.com/Aro-geo/washguard-prototype/internal/config"
	"github.com/Aro-geo/washguard-prototype/internal/integration"
	"github.com/Aro-geo/washguard-prototype/internal/notification"
	"github.com/Aro-geo/washguard-prototype/internal/repository"
	"github.com/Aro-geo/washguard-prototype/internal/usecases"
	"github.com/robfig/cron/v3"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting WASHGuard Monitor...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize repository
	repo, err := repository.NewSQLiteReadingRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	// Build the notification dispatcher from the enabled channels
	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		log.Fatalf("Failed to configure notifications: %v", err)
	}

	// The open-alert ledger is opt-in; without it dedup stays per-pass
	var ledger repository.AlertLedger
	if cfg.PersistAlerts {
		log.Println("Persistent alert ledger enabled")
		ledger = repo
	}

	monitor := usecases.NewMonitorUseCase(repo, dispatcher, ledger)

	// Optional field report importer
	var importer *integration.ReportImporter
	if cfg.ReportURL != "" {
		importer = integration.NewReportImporter(cfg.ReportURL)
	}

	runPass := func() {
		ctx := context.Background()
		if importer != nil {
			statuses, err := importer.FetchInfrastructureReport()
			if err != nil {
				log.Printf("Field report import failed: %v", err)
			} else {
				for _, s := range statuses {
					if _, err := repo.InsertInfrastructure(s); err != nil {
						log.Printf("Failed to store imported status for %s: %v", s.Location, err)
					}
				}
				log.Printf("Imported %d field report rows", len(statuses))
			}
		}
		if _, err := monitor.RunEvaluationPass(ctx); err != nil {
			log.Printf("Evaluation pass failed: %v", err)
		}
	}

	// Run a pass immediately on startup
	runPass()

	// Set up cron scheduler for subsequent passes
	c := cron.New()
	_, err = c.AddFunc(cfg.MonitorCron, runPass)
	if err != nil {
		log.Fatalf("Failed to set up cron job: %v", err)
	}

	log.Printf("Evaluation passes scheduled with spec %q", cfg.MonitorCron)
	c.Start()

	// Keep the program running
	select {}
}

// buildDispatcher assembles and validates the notifiers for the enabled channels
func buildDispatcher(cfg *config.Config) (*notification.Composite, error) {
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
			return nil, err
		}
	}
	return notification.NewComposite(notifiers...), nil
}
