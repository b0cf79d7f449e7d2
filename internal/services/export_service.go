package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/policy"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
)

// exportPageSize bounds how many doubts are pulled per batch while
// building the workbook.
const exportPageSize = 500

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
	policy policy.Policy
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, pol policy.Policy) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
		policy: pol,
	}
}

// ExportDoubts builds an xlsx workbook of the doubt backlog. Only
// instructors may export.
func (s *exportService) ExportDoubts(ctx context.Context, filters repositories.DoubtFilters, userID string) ([]byte, string, error) {
	s.logger.Info("Exporting doubts", "user_id", userID)

	if userID == "" {
		return nil, "", ErrUnauthenticated
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrUnauthenticated
		}
		return nil, "", fmt.Errorf("failed to resolve user: %w", err)
	}

	identity := policy.Identity{ID: user.ID, Role: user.Role}
	if effect := s.policy.CanExportDoubts(identity); !effect.Allowed() {
		return nil, "", NewPermissionError(userID, "", "doubt_export", "read", "instructor role required")
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Doubts"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Content", "Status", "Author", "Author Email", "Answers", "Created At", "Updated At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	filters.Limit = exportPageSize
	filters.Offset = 0

	for {
		doubts, total, err := s.repo.Doubt().List(ctx, nil, filters)
		if err != nil {
			return nil, "", fmt.Errorf("failed to list doubts for export: %w", err)
		}

		for _, doubt := range doubts {
			if err := s.writeDoubtRow(f, sheet, row, doubt); err != nil {
				return nil, "", err
			}
			row++
		}

		filters.Offset += exportPageSize
		if int64(filters.Offset) >= total || len(doubts) == 0 {
			break
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	filename := fmt.Sprintf("doubts_%s.xlsx", time.Now().Format("2006-01-02"))

	s.logger.Info("Doubt export complete", "user_id", userID, "rows", row-2, "filename", filename)

	return buf.Bytes(), filename, nil
}

func (s *exportService) writeDoubtRow(f *excelize.File, sheet string, row int, doubt *models.Doubt) error {
	values := []interface{}{
		doubt.ID,
		doubt.Title,
		doubt.Content,
		string(doubt.Status),
		doubt.Author.Name,
		doubt.Author.Email,
		len(doubt.Answers),
		doubt.CreatedAt.Format(time.RFC3339),
		doubt.UpdatedAt.Format(time.RFC3339),
	}

	for i, value := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	return nil
}
