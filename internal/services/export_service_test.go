package services

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/policy"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
)

func TestExportService_ExportDoubts(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := newMemoryRepository()
	repo.addUser("student-1", "Alice Nguyen", models.RoleStudent)
	repo.addUser("instructor-1", "Prof. Minh", models.RoleInstructor)
	repo.addDoubt("d-1", "First doubt", "student-1", models.StatusOpen)
	repo.addDoubt("d-2", "Second doubt", "student-1", models.StatusResolved)

	service := NewExportService(repo, logger, policy.Default())
	ctx := context.Background()

	data, filename, err := service.ExportDoubts(ctx, repositories.DoubtFilters{}, "instructor-1")
	require.NoError(t, err)
	assert.Contains(t, filename, ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Doubts")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 doubts

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Status", rows[0][3])

	// Data rows carry the author name resolved from the user store
	for _, row := range rows[1:] {
		assert.Equal(t, "Alice Nguyen", row[4])
	}
}

func TestExportService_StudentForbidden(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := newMemoryRepository()
	repo.addUser("student-1", "Alice Nguyen", models.RoleStudent)

	service := NewExportService(repo, logger, policy.Default())

	_, _, err := service.ExportDoubts(context.Background(), repositories.DoubtFilters{}, "student-1")
	assert.True(t, IsPermissionError(err), "expected permission error, got %v", err)
}
