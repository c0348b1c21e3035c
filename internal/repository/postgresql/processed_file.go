package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type processedFileRepository struct {
	db *database.DB
}

func NewProcessedFileRepository(db *database.DB) attendance.ProcessedFileRepository {
	return &processedFileRepository{db: db}
}

// IsProcessed implements attendance.ProcessedFileRepository.
func (r *processedFileRepository) IsProcessed(ctx context.Context, fileName string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_attendance_files WHERE file_name = $1)`,
		fileName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check processed file %s: %w", fileName, err)
	}
	return exists, nil
}

// MarkProcessed implements attendance.ProcessedFileRepository.
func (r *processedFileRepository) MarkProcessed(ctx context.Context, file attendance.ProcessedFile) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO processed_attendance_files (file_name, work_date, recorded, skipped, processed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (file_name) DO UPDATE SET
			work_date = EXCLUDED.work_date,
			recorded = EXCLUDED.recorded,
			skipped = EXCLUDED.skipped,
			processed_at = EXCLUDED.processed_at
	`, file.FileName, file.WorkDate, file.Recorded, file.Skipped, file.ProcessedAt)
	if err != nil {
		return fmt.Errorf("failed to mark file %s processed: %w", file.FileName, err)
	}
	return nil
}
