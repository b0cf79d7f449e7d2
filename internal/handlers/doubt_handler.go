package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
	"github.com/SAP-F-2025/doubt-service/internal/services"
	"github.com/SAP-F-2025/doubt-service/internal/utils"
	"github.com/SAP-F-2025/doubt-service/internal/validator"
)

type DoubtHandler struct {
	BaseHandler
	service       services.DoubtService
	exportService services.ExportService
}

func NewDoubtHandler(service services.DoubtService, exportService services.ExportService, logger utils.Logger) *DoubtHandler {
	return &DoubtHandler{
		BaseHandler:   NewBaseHandler(logger),
		service:       service,
		exportService: exportService,
	}
}

// ===== CORE CRUD ENDPOINTS =====

// CreateDoubt creates a new doubt
// @Summary Create a new doubt
// @Description Post a question. Students only.
// @Tags doubts
// @Accept json
// @Produce json
// @Param request body services.CreateDoubtRequest true "Doubt creation request"
// @Success 201 {object} services.DoubtResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - students only"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /doubts [post]
func (h *DoubtHandler) CreateDoubt(c *gin.Context) {
	var req services.CreateDoubtRequest
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

	h.LogRequest(c, "Creating doubt")

	response, err := h.service.Create(c.Request.Context(), &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetDoubt retrieves a doubt by ID with its answer thread
// @Summary Get a doubt by ID
// @Description Retrieve a doubt with its answers. Students see their own and resolved doubts only.
// @Tags doubts
// @Accept json
// @Produce json
// @Param id path string true "Doubt ID"
// @Success 200 {object} services.DoubtResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /doubts/{id} [get]
func (h *DoubtHandler) GetDoubt(c *gin.Context) {
	id := c.Param("id")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	response, err := h.service.GetByID(c.Request.Context(), id, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateDoubt updates a doubt's title or content
// @Summary Update a doubt
// @Description Update doubt details. Only the author or an instructor, and only while OPEN.
// @Tags doubts
// @Accept json
// @Produce json
// @Param id path string true "Doubt ID"
// @Param request body services.UpdateDoubtRequest true "Doubt update request"
// @Success 200 {object} services.DoubtResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - not the author"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 409 {object} ErrorResponse "Conflict - doubt already resolved"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /doubts/{id} [put]
func (h *DoubtHandler) UpdateDoubt(c *gin.Context) {
	id := c.Param("id")

	var req services.UpdateDoubtRequest
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

	h.LogRequest(c, "Updating doubt", "doubt_id", id)

	response, err := h.service.Update(c.Request.Context(), id, &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteDoubt deletes a doubt and its answers
// @Summary Delete a doubt
// @Description Delete a doubt. Only the author or an instructor. Answers are removed with it.
// @Tags doubts
// @Accept json
// @Produce json
// @Param id path string true "Doubt ID"
// @Success 204 "No content"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - not the author"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /doubts/{id} [delete]
func (h *DoubtHandler) DeleteDoubt(c *gin.Context) {
	id := c.Param("id")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Deleting doubt", "doubt_id", id)

	if err := h.service.Delete(c.Request.Context(), id, userID.(string)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== LIST AND SEARCH ENDPOINTS =====

// ListDoubts lists doubts with filters and pagination
// @Summary List doubts
// @Description List doubts. Instructors see all, students see their own.
// @Tags doubts
// @Accept json
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size (default 20, max 100)"
// @Param status query string false "Filter by status (OPEN or RESOLVED)"
// @Param sort_by query string false "Sort field (created_at, updated_at, title, status)"
// @Param sort_order query string false "Sort order (asc or desc)"
// @Success 200 {object} services.DoubtListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /doubts [get]
func (h *DoubtHandler) ListDoubts(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := h.parseDoubtFilters(c)

	response, err := h.service.List(c.Request.Context(), filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchDoubts searches doubts by title and content
// @Summary Search doubts
// @Description Search doubts by keyword. Results are capped at 50 and visibility rules apply.
// @Tags doubts
// @Accept json
// @Produce json
// @Param q query string false "Search query (empty matches all visible doubts)"
// @Success 200 {object} services.DoubtListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /doubts/search [get]
func (h *DoubtHandler) SearchDoubts(c *gin.Context) {
	query := c.Query("q")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Searching doubts", "query", query)

	filters := h.parseDoubtFilters(c)

	response, err := h.service.Search(c.Request.Context(), query, filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ===== LIFECYCLE ENDPOINTS =====

// ResolveDoubt marks a doubt as resolved
// @Summary Resolve a doubt
// @Description Mark a doubt as RESOLVED. The transition is one-way.
// @Tags doubts
// @Accept json
// @Produce json
// @Param id path string true "Doubt ID"
// @Success 200 {object} services.DoubtResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 409 {object} ErrorResponse "Conflict - already resolved"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /doubts/{id}/resolve [post]
func (h *DoubtHandler) ResolveDoubt(c *gin.Context) {
	id := c.Param("id")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Resolving doubt", "doubt_id", id)

	response, err := h.service.Resolve(c.Request.Context(), id, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ===== ANSWER ENDPOINTS =====

// CreateAnswer posts an answer to a doubt
// @Summary Answer a doubt
// @Description Post an answer to a doubt. Instructors only. Resolved doubts still accept answers.
// @Tags doubts
// @Accept json
// @Produce json
// @Param id path string true "Doubt ID"
// @Param request body services.CreateAnswerRequest true "Answer creation request"
// @Success 201 {object} services.AnswerResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - instructors only"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /doubts/{id}/answers [post]
func (h *DoubtHandler) CreateAnswer(c *gin.Context) {
	doubtID := c.Param("id")

	var req services.CreateAnswerRequest
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

	h.LogRequest(c, "Creating answer", "doubt_id", doubtID)

	response, err := h.service.CreateAnswer(c.Request.Context(), doubtID, &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ===== EXPORT ENDPOINTS =====

// ExportDoubts exports the doubt backlog as a spreadsheet
// @Summary Export doubts
// @Description Download the doubt backlog as an Excel file. Instructors only.
// @Tags doubts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by status (OPEN or RESOLVED)"
// @Success 200 {file} file "Excel export"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - instructors only"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /doubts/export [get]
func (h *DoubtHandler) ExportDoubts(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Exporting doubts")

	filters := h.parseDoubtFilters(c)

	data, filename, err := h.exportService.ExportDoubts(c.Request.Context(), filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ===== HELPERS =====

func (h *DoubtHandler) parseDoubtFilters(c *gin.Context) repositories.DoubtFilters {
	// Parse pagination using page and size (not limit and offset)
	page := 1
	size := 20

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if sizeStr := c.Query("size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			size = s
		}
	}

	filters := repositories.DoubtFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	// Parse status filter
	if status := c.Query("status"); status != "" {
		s := models.DoubtStatus(status)
		if s.IsValid() {
			filters.Status = &s
		}
	}

	// Parse date range filters
	if dateFrom := c.Query("date_from"); dateFrom != "" {
		if t, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filters.DateFrom = &t
		}
	}

	if dateTo := c.Query("date_to"); dateTo != "" {
		if t, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filters.DateTo = &t
		}
	}

	// Parse sorting
	if sortBy := c.Query("sort_by"); sortBy != "" {
		// Only allow sortBy values that map to allowed DB columns.
		validSortFields := map[string]bool{
			"created_at": true,
			"updated_at": true,
			"title":      true,
			"status":     true,
		}
		if validSortFields[sortBy] {
			filters.SortBy = sortBy
		}
	}

	if sortOrder := c.Query("sort_order"); sortOrder != "" {
		if sortOrder == "asc" || sortOrder == "desc" {
			filters.SortOrder = sortOrder
		}
	}

	return filters
}

func (h *DoubtHandler) handleServiceError(c *gin.Context, err error) {
	// Map service errors to HTTP status codes
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrDoubtNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Doubt not found",
		})
	case errors.Is(err, services.ErrAnswerNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Answer not found",
		})
	case errors.Is(err, services.ErrDoubtResolved):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Doubt is already resolved",
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
