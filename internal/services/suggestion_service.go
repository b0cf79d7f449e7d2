package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
	"github.com/SAP-F-2025/doubt-service/internal/validator"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama-3.3-70b-versatile"

	suggestionSystemPrompt = "You are a helpful and knowledgeable instructor. Provide clear, comprehensive, and educational answers to student questions."

	suggestionUserPromptFmt = `A student has asked the following question:

Title: %s

Question: %s

Please provide a clear, comprehensive, and educational answer that:
1. Directly addresses the student's question
2. Explains the concept in simple terms
3. Provides examples if relevant
4. Is encouraging and supportive

Keep your answer concise but thorough (aim for 2-4 paragraphs).`
)

// SuggestionConfig configures the upstream chat-completions provider
type SuggestionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type suggestionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    SuggestionConfig
	client    *http.Client
}

func NewSuggestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config SuggestionConfig) SuggestionService {
	if config.BaseURL == "" {
		config.BaseURL = defaultGroqBaseURL
	}
	if config.Model == "" {
		config.Model = defaultGroqModel
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &suggestionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
		client:    &http.Client{Timeout: config.Timeout},
	}
}

// ===== UPSTREAM WIRE TYPES =====

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *suggestionService) SuggestAnswer(ctx context.Context, req *SuggestAnswerRequest, instructorID string) (*SuggestAnswerResponse, error) {
	s.logger.Info("Generating answer suggestion", "instructor_id", instructorID, "title", req.Title)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if s.config.APIKey == "" {
		return nil, ErrSuggestionUnavailable
	}

	payload := chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: suggestionSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(suggestionUserPromptFmt, req.Title, req.Content)},
		},
		Temperature: 0.7,
		MaxTokens:   1024,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Error("Completion request failed", "error", err)
		return nil, ErrSuggestionUnavailable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Completion provider returned error", "status", resp.StatusCode, "body", string(respBody))
		return nil, ErrSuggestionUnavailable
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		s.logger.Error("Completion provider returned no choices")
		return nil, ErrSuggestionUnavailable
	}

	suggestion := completion.Choices[0].Message.Content

	s.audit(ctx, instructorID, req.Title, body, respBody)

	return &SuggestAnswerResponse{
		Suggestion: suggestion,
		Model:      s.config.Model,
	}, nil
}

// audit records the exchange; failures are logged, not surfaced
func (s *suggestionService) audit(ctx context.Context, instructorID, title string, request, response []byte) {
	log := &models.SuggestionLog{
		InstructorID: instructorID,
		DoubtTitle:   title,
		Model:        s.config.Model,
		Request:      datatypes.JSON(request),
		Response:     datatypes.JSON(response),
	}

	if err := s.repo.SuggestionLog().Create(ctx, nil, log); err != nil {
		s.logger.Error("Failed to write suggestion audit log", "instructor_id", instructorID, "error", err)
	}
}
