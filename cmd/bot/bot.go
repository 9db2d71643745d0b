package main

import (
	"log"
	"os"

	"github.com/Aro-geo/washguard-prototype/internal/api"
	"github.com/Aro-geo/washguard-prototype/internal/config"
	"github.com/Aro-geo/washguard-prototype/internal/integration/openai"
	"github.com/Aro-geo/washguard-prototype/internal/notification"
	"github.com/Aro-geo/washguard-prototype/internal/repository"
	"github.com/Aro-geo/washguard-prototype/internal/usecases"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting WASHGuard Bot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	// Initialize the sentiment service; the bot works without it
	var sentiment openai.SentimentService
	sentiment, err = openai.NewSentimentService()
	if err != nil {
		log.Printf("Warning: sentiment service unavailable: %v", err)
		sentiment = nil
	}

	// Initialize repository
	repo, err := repository.NewSQLiteReadingRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	readings := usecases.NewReadingUseCase(repo, sentiment)

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		log.Fatalf("Failed to configure notifications: %v", err)
	}

	var ledger repository.AlertLedger
	if cfg.PersistAlerts {
		ledger = repo
	}
	monitor := usecases.NewMonitorUseCase(repo, dispatcher, ledger)

	// Initialize Telegram bot
	telegramBot, err := api.NewTelegramBot(cfg.TelegramToken, readings, monitor)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	// Start the bot
	telegramBot.Start()
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
