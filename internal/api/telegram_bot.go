// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Aro-geo/washguard-prototype/internal/entities"
	"github.com/Aro-geo/washguard-prototype/internal/risk"
	"github.com/Aro-geo/washguard-prototype/internal/usecases"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramBot is the field interface: it lets operators inspect site status,
// submit feedback and trigger evaluation passes from a phone.
type TelegramBot struct {
	bot      *tgbotapi.BotAPI
	readings *usecases.ReadingUseCase
	monitor  *usecases.MonitorUseCase
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, readings *usecases.ReadingUseCase, monitor *usecases.MonitorUseCase) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %v", err)
	}

	return &TelegramBot{
		bot:      bot,
		readings: readings,
		monitor:  monitor,
	}, nil
}

// Start begins listening for and handling Telegram messages
func (t *TelegramBot) Start() {
	log.Printf("Authorized on Telegram account %s", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	log.Println("Bot is now listening for messages...")

	for update := range updates {
		if update.Message == nil {
			continue
		}

		// Log incoming messages
		log.Printf("Received message from %s (ID: %d): %s",
			update.Message.From.UserName,
			update.Message.From.ID,
			update.Message.Text)

		t.handleMessage(update)
	}
}

// handleMessage processes a Telegram message update
func (t *TelegramBot) handleMessage(update tgbotapi.Update) {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")

	if update.Message.IsCommand() {
		t.handleCommand(update.Message, &msg)
	} else {
		log.Printf("Received non-command message from user %s: %s", update.Message.From.UserName, update.Message.Text)
		msg.Text = "I don't understand. Use /help to see available commands."
	}

	log.Printf("Sending response to user %s", update.Message.From.UserName)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// handleCommand processes commands like /sites, /status, etc.
func (t *TelegramBot) handleCommand(message *tgbotapi.Message, msg *tgbotapi.MessageConfig) {
	switch message.Command() {
	case "start":
		log.Printf("Handling /start command for user %s", message.From.UserName)
		msg.Text = "Welcome to WASHGuard! Use /sites to see monitored locations or /help for more information."

	case "help":
		log.Printf("Handling /help command for user %s", message.From.UserName)
		msg.Text = "Available commands:\n" +
			"/sites - Show monitored locations\n" +
			"/status [location] - Show latest status for a location\n" +
			"/chlorine - Show recent chlorine readings\n" +
			"/quality - Show water quality readings with treatment advice\n" +
			"/feedback [household] [text] - Submit community feedback\n" +
			"/feedbacklist - Show community feedback with sentiment\n" +
			"/pass - Run an evaluation pass now\n" +
			"/help - Show this help message"

	case "sites":
		log.Printf("Handling /sites command for user %s", message.From.UserName)
		t.handleSitesCommand(msg)

	case "status":
		args := message.CommandArguments()
		log.Printf("Handling /status command with args '%s' for user %s", args, message.From.UserName)
		t.handleStatusCommand(args, msg)

	case "chlorine":
		log.Printf("Handling /chlorine command for user %s", message.From.UserName)
		t.handleChlorineCommand(msg)

	case "quality":
		log.Printf("Handling /quality command for user %s", message.From.UserName)
		t.handleQualityCommand(msg)

	case "feedback":
		args := message.CommandArguments()
		log.Printf("Handling /feedback command for user %s", message.From.UserName)
		t.handleFeedbackCommand(args, msg)

	case "feedbacklist":
		log.Printf("Handling /feedbacklist command for user %s", message.From.UserName)
		t.handleFeedbackListCommand(msg)

	case "pass":
		log.Printf("Handling /pass command for user %s", message.From.UserName)
		t.handlePassCommand(msg)

	default:
		log.Printf("Received unknown command /%s from user %s", message.Command(), message.From.UserName)
		msg.Text = "Unknown command. Use /help to see available commands."
	}
}

// handleSitesCommand lists the distinct monitored locations
func (t *TelegramBot) handleSitesCommand(msg *tgbotapi.MessageConfig) {
	statuses, err := t.readings.ListInfrastructureStatuses()
	if err != nil {
		msg.Text = "Error fetching site data. Please try again later."
		log.Printf("Error fetching infrastructure statuses: %v", err)
		return
	}
	if len(statuses) == 0 {
		msg.Text = "No infrastructure data yet."
		return
	}

	seen := make(map[string]bool)
	var b strings.Builder
	b.WriteString("Monitored locations:\n\n")
	for _, s := range statuses {
		if seen[s.Location] {
			continue
		}
		seen[s.Location] = true
		b.WriteString("• " + s.Location + "\n")
	}
	b.WriteString("\nUse /status [location] to get detailed information.")
	msg.Text = b.String()
}

// handleStatusCommand shows the latest report and classification for a location
func (t *TelegramBot) handleStatusCommand(args string, msg *tgbotapi.MessageConfig) {
	if args == "" {
		msg.Text = "Please specify a location. Example: /status Zone A"
		return
	}

	statuses, err := t.readings.ListInfrastructureStatuses()
	if err != nil {
		msg.Text = "Error fetching site data. Please try again later."
		log.Printf("Error fetching infrastructure statuses: %v", err)
		return
	}

	// Latest report wins; reports come back in insertion order
	var latest *entities.InfrastructureStatus
	for i := range statuses {
		if strings.EqualFold(statuses[i].Location, args) {
			latest = &statuses[i]
		}
	}
	if latest == nil {
		msg.Text = fmt.Sprintf("No information found for location '%s'. Use /sites to see monitored locations.", args)
		return
	}

	tags := risk.Classify(*latest)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Status for %s:\n\n", latest.Location))
	b.WriteString(fmt.Sprintf("⚡ Generator OK: %s\n", latest.GeneratorOK))
	b.WriteString(fmt.Sprintf("🔧 Pump OK: %s\n", latest.PumpOK))
	b.WriteString(fmt.Sprintf("💧 Pipe Leak: %s\n", latest.PipeLeak))
	b.WriteString(fmt.Sprintf("🛣 Road: %s\n", latest.RoadCondition))
	b.WriteString(fmt.Sprintf("🚰 Water: %dL\n", latest.WaterAvailableLiters))
	if latest.Comments != "" {
		b.WriteString(fmt.Sprintf("📝 %s\n", latest.Comments))
	}
	if risk.AlertWorthy(tags) {
		labels := make([]string, 0, len(tags))
		for _, tag := range tags {
			labels = append(labels, tag.Label())
		}
		b.WriteString(fmt.Sprintf("\n🚨 Issues: %s", strings.Join(labels, ", ")))
		if risk.HighRisk(*latest, tags) {
			b.WriteString("\n❗ HIGH RISK: water reserve below critical threshold")
		}
	} else {
		b.WriteString("\n✅ OK")
	}
	msg.Text = b.String()
}

// handleChlorineCommand shows recent chlorine readings with their band
func (t *TelegramBot) handleChlorineCommand(msg *tgbotapi.MessageConfig) {
	readings, err := t.readings.ListChlorineReadings()
	if err != nil {
		msg.Text = "Error fetching chlorine readings. Please try again later."
		log.Printf("Error fetching chlorine readings: %v", err)
		return
	}
	if len(readings) == 0 {
		msg.Text = "No chlorine readings yet."
		return
	}

	// Show the last ten readings at most
	if len(readings) > 10 {
		readings = readings[len(readings)-10:]
	}
	var b strings.Builder
	b.WriteString("Recent chlorine readings:\n\n")
	for _, r := range readings {
		b.WriteString(fmt.Sprintf("🧪 %s %s %s: %.2f mg/L (%s)\n",
			r.TapStandID, r.Date, r.Time, r.Level, r.StatusLabel()))
	}
	msg.Text = b.String()
}

// handleQualityCommand shows water quality readings with their treatment
// recommendation
func (t *TelegramBot) handleQualityCommand(msg *tgbotapi.MessageConfig) {
	readings, err := t.readings.ListQualityReadings()
	if err != nil {
		msg.Text = "Error fetching water quality readings. Please try again later."
		log.Printf("Error fetching quality readings: %v", err)
		return
	}
	if len(readings) == 0 {
		msg.Text = "No water quality readings yet."
		return
	}

	// Show the last ten readings at most
	if len(readings) > 10 {
		readings = readings[len(readings)-10:]
	}
	var b strings.Builder
	b.WriteString("Water quality readings:\n\n")
	for _, r := range readings {
		b.WriteString(fmt.Sprintf("💧 %s: %.1f NTU, odour %s → %s\n",
			r.SourceID, r.Turbidity, r.OdourPresent, r.TreatmentRecommendation()))
	}
	msg.Text = b.String()
}

// handleFeedbackListCommand shows community feedback with the read-time
// sentiment label
func (t *TelegramBot) handleFeedbackListCommand(msg *tgbotapi.MessageConfig) {
	entries, err := t.readings.ListFeedback(context.Background())
	if err != nil {
		msg.Text = "Error fetching feedback. Please try again later."
		log.Printf("Error fetching feedback: %v", err)
		return
	}
	if len(entries) == 0 {
		msg.Text = "No feedback yet."
		return
	}

	// Show the last ten entries at most
	if len(entries) > 10 {
		entries = entries[len(entries)-10:]
	}
	var b strings.Builder
	b.WriteString("Community feedback:\n\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("🗣 %s: %s", e.Entry.HouseholdID, e.Entry.Text))
		if e.Sentiment != "" {
			b.WriteString(fmt.Sprintf(" (%s)", e.Sentiment))
		}
		b.WriteString("\n")
	}
	msg.Text = b.String()
}

// handleFeedbackCommand stores community feedback: /feedback HH-001 some text
func (t *TelegramBot) handleFeedbackCommand(args string, msg *tgbotapi.MessageConfig) {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) < 2 {
		msg.Text = "Please provide a household id and the feedback text. Example: /feedback HH-001 Water pressure is too low."
		return
	}

	_, err := t.readings.AddFeedback(entities.FeedbackEntry{
		HouseholdID: parts[0],
		Text:        parts[1],
	})
	if err != nil {
		var vErr *usecases.ValidationError
		if errors.As(err, &vErr) {
			msg.Text = vErr.Error() + "."
			return
		}
		msg.Text = "Error storing feedback. Please try again later."
		log.Printf("Error storing feedback: %v", err)
		return
	}
	msg.Text = "Feedback submitted. Thank you!"
}

// handlePassCommand triggers one evaluation pass and reports the summary
func (t *TelegramBot) handlePassCommand(msg *tgbotapi.MessageConfig) {
	summary, err := t.monitor.RunEvaluationPass(context.Background())
	if err != nil {
		msg.Text = "Evaluation pass failed. Please try again later."
		log.Printf("Evaluation pass failed: %v", err)
		return
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Evaluation pass complete.\n\nEvaluated: %d\nAlert-worthy: %d\nHigh risk: %d\n",
		summary.Evaluated, summary.AlertWorthy, summary.HighRisk))
	if summary.Suppressed > 0 {
		b.WriteString(fmt.Sprintf("Suppressed (already open): %d\n", summary.Suppressed))
	}
	for _, n := range summary.Notified {
		b.WriteString(fmt.Sprintf("\n🚨 %s", n.Location))
		for _, o := range n.Outcomes {
			if o.OK() {
				b.WriteString(fmt.Sprintf("\n  %s: sent", o.Channel))
			} else {
				b.WriteString(fmt.Sprintf("\n  %s: failed", o.Channel))
			}
		}
	}
	msg.Text = b.String()
}
