package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/doubt-service/internal/services"
	"github.com/SAP-F-2025/doubt-service/internal/utils"
	"github.com/SAP-F-2025/doubt-service/internal/validator"
)

type AIHandler struct {
	BaseHandler
	service services.SuggestionService
}

func NewAIHandler(service services.SuggestionService, logger utils.Logger) *AIHandler {
	return &AIHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// SuggestAnswer drafts an answer for a doubt using the AI provider
// @Summary Suggest an answer
// @Description Generate a draft answer for a doubt. Instructors only. The draft is a starting point, not a final answer.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body services.SuggestAnswerRequest true "Suggestion request"
// @Success 200 {object} services.SuggestAnswerResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - instructors only"
// @Failure 503 {object} ErrorResponse "Service unavailable - AI provider not configured"
// @Router /ai/suggest-answer [post]
func (h *AIHandler) SuggestAnswer(c *gin.Context) {
	var req services.SuggestAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Requesting answer suggestion")

	response, err := h.service.SuggestAnswer(c.Request.Context(), &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AIHandler) handleServiceError(c *gin.Context, err error) {
	// Map service errors to HTTP status codes
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrSuggestionUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Answer suggestion service unavailable",
		})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Authentication required",
		})
	case services.IsPermissionError(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
