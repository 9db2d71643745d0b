// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Aro-geo/washguard-prototype/internal/entities"
	"github.com/Aro-geo/washguard-prototype/internal/integration/openai"
	"github.com/Aro-geo/washguard-prototype/internal/repository"
)

// ValidationError marks a rejected submission; the record is not persisted
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// FeedbackWithSentiment pairs a stored feedback entry with its read-time
// sentiment label
type FeedbackWithSentiment struct {
	Entry     entities.FeedbackEntry
	Sentiment string // empty when the sentiment service is unavailable
}

// ReadingUseCase handles ingestion and listing of field readings
type ReadingUseCase struct {
	repo      repository.ReadingRepository
	sentiment openai.SentimentService
}

// NewReadingUseCase creates a new reading use case. The sentiment service
// may be nil; feedback listings then carry no sentiment label.
func NewReadingUseCase(repo repository.ReadingRepository, sentiment openai.SentimentService) *ReadingUseCase {
	return &ReadingUseCase{
		repo:      repo,
		sentiment: sentiment,
	}
}

// AddChlorineReading validates and stores one chlorine reading.
// Out-of-range levels are stored as submitted; range enforcement lives in
// the submitting form.
func (uc *ReadingUseCase) AddChlorineReading(r entities.ChlorineReading) (int64, error) {
	if strings.TrimSpace(r.TapStandID) == "" {
		return 0, &ValidationError{Field: "Tap Stand ID"}
	}
	id, err := uc.repo.InsertChlorine(r)
	if err != nil {
		return 0, fmt.Errorf("failed to store chlorine reading: %v", err)
	}
	log.Printf("Stored chlorine reading %d for tap stand %s (%.2f mg/L)", id, r.TapStandID, r.Level)
	return id, nil
}

// AddQualityReading validates and stores one water quality reading
func (uc *ReadingUseCase) AddQualityReading(r entities.QualityReading) (int64, error) {
	if strings.TrimSpace(r.SourceID) == "" {
		return 0, &ValidationError{Field: "Source ID"}
	}
	id, err := uc.repo.InsertQuality(r)
	if err != nil {
		return 0, fmt.Errorf("failed to store quality reading: %v", err)
	}
	log.Printf("Stored quality reading %d for source %s (%.1f NTU)", id, r.SourceID, r.Turbidity)
	return id, nil
}

// AddFeedback validates and stores one feedback entry
func (uc *ReadingUseCase) AddFeedback(f entities.FeedbackEntry) (int64, error) {
	if strings.TrimSpace(f.HouseholdID) == "" {
		return 0, &ValidationError{Field: "Household ID"}
	}
	if strings.TrimSpace(f.Text) == "" {
		return 0, &ValidationError{Field: "Feedback Text"}
	}
	id, err := uc.repo.InsertFeedback(f)
	if err != nil {
		return 0, fmt.Errorf("failed to store feedback: %v", err)
	}
	log.Printf("Stored feedback %d from household %s", id, f.HouseholdID)
	return id, nil
}

// AddInfrastructureStatus validates and stores one status report
func (uc *ReadingUseCase) AddInfrastructureStatus(s entities.InfrastructureStatus) (int64, error) {
	if strings.TrimSpace(s.Location) == "" {
		return 0, &ValidationError{Field: "Location"}
	}
	id, err := uc.repo.InsertInfrastructure(s)
	if err != nil {
		return 0, fmt.Errorf("failed to store infrastructure status: %v", err)
	}
	log.Printf("Stored infrastructure status %d for %s", id, s.Location)
	return id, nil
}

// ListChlorineReadings returns every chlorine reading
func (uc *ReadingUseCase) ListChlorineReadings() ([]entities.ChlorineReading, error) {
	log.Println("Retrieving chlorine readings")
	return uc.repo.GetAllChlorine()
}

// ListQualityReadings returns every water quality reading
func (uc *ReadingUseCase) ListQualityReadings() ([]entities.QualityReading, error) {
	log.Println("Retrieving quality readings")
	return uc.repo.GetAllQuality()
}

// ListInfrastructureStatuses returns every infrastructure status report
func (uc *ReadingUseCase) ListInfrastructureStatuses() ([]entities.InfrastructureStatus, error) {
	log.Println("Retrieving infrastructure statuses")
	return uc.repo.GetAllInfrastructure()
}

// ListFeedback returns every feedback entry with a read-time sentiment
// label. Sentiment failures are logged and leave the label empty; the
// listing itself still succeeds.
func (uc *ReadingUseCase) ListFeedback(ctx context.Context) ([]FeedbackWithSentiment, error) {
	log.Println("Retrieving feedback entries")
	entries, err := uc.repo.GetAllFeedback()
	if err != nil {
		return nil, err
	}

	result := make([]FeedbackWithSentiment, 0, len(entries))
	for _, entry := range entries {
		item := FeedbackWithSentiment{Entry: entry}
		if uc.sentiment != nil {
			res, err := uc.sentiment.AnalyzeFeedback(ctx, entry.Text)
			if err != nil {
				log.Printf("Warning: sentiment analysis failed for feedback %d: %v", entry.ID, err)
			} else {
				item.Sentiment = res.Label
			}
		}
		result = append(result, item)
	}
	return result, nil
}
