package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/doubt-service/internal/repositories"
	"github.com/SAP-F-2025/doubt-service/internal/validator"
)

func suggestionRequest() *SuggestAnswerRequest {
	return &SuggestAnswerRequest{
		Title:   "How does gorm preload work?",
		Content: "I do not understand when Preload fires a second query.",
	}
}

func TestSuggestionService_NotConfigured(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	service := NewSuggestionService(newMemoryRepository(), logger, validator.New(), SuggestionConfig{})

	_, err := service.SuggestAnswer(context.Background(), suggestionRequest(), "instructor-1")
	assert.ErrorIs(t, err, ErrSuggestionUnavailable)
}

func TestSuggestionService_Success(t *testing.T) {
	var captured chatCompletionRequest

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Preload runs a keyed second query."}},
			},
		})
	}))
	defer upstream.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := newMemoryRepository()
	service := NewSuggestionService(repo, logger, validator.New(), SuggestionConfig{
		APIKey:  "test-key",
		BaseURL: upstream.URL,
	})

	resp, err := service.SuggestAnswer(context.Background(), suggestionRequest(), "instructor-1")
	require.NoError(t, err)
	assert.Equal(t, "Preload runs a keyed second query.", resp.Suggestion)
	assert.Equal(t, defaultGroqModel, resp.Model)

	// Upstream request carries the fixed sampling parameters
	assert.Equal(t, defaultGroqModel, captured.Model)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)
	assert.Equal(t, 1024, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[1].Content, "How does gorm preload work?")

	// The exchange is written to the audit trail
	instructorID := "instructor-1"
	logs, _, err := repo.SuggestionLog().List(context.Background(), nil, repositories.SuggestionLogFilters{InstructorID: &instructorID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "instructor-1", logs[0].InstructorID)
	assert.Equal(t, defaultGroqModel, logs[0].Model)
}

func TestSuggestionService_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	service := NewSuggestionService(newMemoryRepository(), logger, validator.New(), SuggestionConfig{
		APIKey:  "test-key",
		BaseURL: upstream.URL,
	})

	_, err := service.SuggestAnswer(context.Background(), suggestionRequest(), "instructor-1")
	assert.ErrorIs(t, err, ErrSuggestionUnavailable)
}

func TestSuggestionService_EmptyChoices(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer upstream.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	service := NewSuggestionService(newMemoryRepository(), logger, validator.New(), SuggestionConfig{
		APIKey:  "test-key",
		BaseURL: upstream.URL,
	})

	_, err := service.SuggestAnswer(context.Background(), suggestionRequest(), "instructor-1")
	assert.ErrorIs(t, err, ErrSuggestionUnavailable)
}
