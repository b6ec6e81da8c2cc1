package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

const extractionSystemMessage = `You are an assistant that converts unstructured personal notes into structured records. Respond with valid JSON only, using these keys:

- card_type: one of "task", "reminder", "idea", "note"
- description: a clean, clear restatement of the note
- date: any date or time the note mentions, as an ISO 8601 timestamp or the original phrase, or null
- assignee: the person or team the note delegates to, or null
- priority: one of "low", "medium", "high", "urgent"
- keywords: up to 10 meaningful keywords as a JSON array
- project_context: project or organization names mentioned, as a JSON array`

// OpenAIExtractor implements NoteExtractor using OpenAI's API
type OpenAIExtractor struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIExtractor creates a new OpenAI-backed extractor
func NewOpenAIExtractor(apiKey string, model string) *OpenAIExtractor {
	return NewOpenAIExtractorWithLogger(apiKey, DefaultOpenAIBaseURL, model, DefaultTimeout, nil, false)
}

// NewOpenAIExtractorWithLogger creates a new OpenAI-backed extractor with logger support
func NewOpenAIExtractorWithLogger(apiKey string, baseURL string, model string, timeout time.Duration, logger *zap.Logger, debugMode bool) *OpenAIExtractor {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIExtractor{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// Name identifies the extractor in logs
func (p *OpenAIExtractor) Name() string {
	return "openai"
}

// ExtractNote asks the model to interpret the note and parses its JSON reply
func (p *OpenAIExtractor) ExtractNote(ctx context.Context, text string) (*models.NoteGuess, error) {
	prompt := fmt.Sprintf("Convert this note into a structured record: %q", text)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(extractionSystemMessage),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	requestID := ExtractRequestID(ctx)
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "extract_note"),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "extract_note"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Duration("latency_ms", latency),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to extract note: %w", apiErr)
		}
		return nil, fmt.Errorf("failed to extract note: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "extract_note"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return parseExtractionResponse(content)
}

// flexibleStrings accepts either a JSON array of strings or a single
// comma-separated string; models occasionally return the latter.
type flexibleStrings []string

func (f *flexibleStrings) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*f = nil
			return nil
		}
		parts := strings.Split(single, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*f = out
		return nil
	}

	*f = nil
	return nil
}

func parseExtractionResponse(content string) (*models.NoteGuess, error) {
	var payload struct {
		CardType       string          `json:"card_type"`
		Description    string          `json:"description"`
		Date           string          `json:"date"`
		Assignee       string          `json:"assignee"`
		Priority       string          `json:"priority"`
		Keywords       flexibleStrings `json:"keywords"`
		ProjectContext flexibleStrings `json:"project_context"`
	}

	raw := content
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		// Some models wrap the JSON in prose; take the outermost object
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("failed to parse extraction response: %w", err)
		}
		raw = raw[start : end+1]
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("failed to parse extraction response: %w", err)
		}
	}

	guess := &models.NoteGuess{
		CardType:       payload.CardType,
		Description:    payload.Description,
		DateText:       payload.Date,
		Assignee:       payload.Assignee,
		Priority:       payload.Priority,
		Keywords:       payload.Keywords,
		ProjectContext: payload.ProjectContext,
	}

	if payload.Date != "" {
		if parsed, err := time.Parse(time.RFC3339, payload.Date); err == nil {
			guess.Date = &parsed
		}
	}

	return guess, nil
}
