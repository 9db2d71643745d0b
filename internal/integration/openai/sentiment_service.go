package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// SentimentResult defines the structured output from the sentiment agent
type SentimentResult struct {
	Label  string `json:"label" jsonschema_description:"Sentiment of the feedback, either POSITIVE or NEGATIVE"`
	Reason string `json:"reason" jsonschema_description:"One short sentence explaining the sentiment"`
}

// SentimentService defines the interface for classifying community feedback
// text. Sentiment is a derived attribute computed at read time; it is never
// persisted.
type SentimentService interface {
	AnalyzeFeedback(ctx context.Context, feedbackText string) (*SentimentResult, error)
}

// sentimentServiceImpl implements the SentimentService interface
type sentimentServiceImpl struct {
	client openai.Client
	schema interface{}
}

// GenerateSchema generates a JSON schema for a given type.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// NewSentimentService creates and initializes a new SentimentService
func NewSentimentService() (SentimentService, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	schema := GenerateSchema[SentimentResult]()

	return &sentimentServiceImpl{
		client: client,
		schema: schema,
	}, nil
}

// AnalyzeFeedback sends feedback text to the agent and returns the
// structured sentiment label.
func (s *sentimentServiceImpl) AnalyzeFeedback(ctx context.Context, feedbackText string) (*SentimentResult, error) {
	systemPrompt := `You classify community feedback about water, sanitation and hygiene services.

Requirements:
- Read one feedback message from a household.
- Decide whether it is POSITIVE or NEGATIVE about the service.
- Complaints, broken equipment, shortages and requests for help are NEGATIVE.
- Thanks, reports of working equipment and improvements are POSITIVE.

Output **strictly** in JSON.`

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "sentiment_result",
		Description: openai.String("Structured sentiment classification of one feedback message"),
		Schema:      s.schema,
		Strict:      openai.Bool(true),
	}

	respFormat := openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
	}

	chat, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(feedbackText),
		},
		ResponseFormat: respFormat,
		Model:          openai.ChatModelGPT4o,
	})

	if err != nil {
		return nil, fmt.Errorf("error calling OpenAI API: %w", err)
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, errors.New("received empty response from OpenAI")
	}

	var result SentimentResult
	err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &result)
	if err != nil {
		log.Printf("Failed to unmarshal OpenAI response: %s\nRaw response: %s", err, chat.Choices[0].Message.Content)
		return nil, fmt.Errorf("error unmarshalling OpenAI response: %w", err)
	}

	return &result, nil
}
