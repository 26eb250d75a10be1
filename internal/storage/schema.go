package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode and pragmas are configured in db.go.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createStaffTable(ctx, db); err != nil {
		return err
	}

	if err := createReportTemplatesTable(ctx, db); err != nil {
		return err
	}

	return createSubmissionsTable(ctx, db)
}

func createStaffTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS staff (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		line_user_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		role TEXT CHECK(role IN ('STAFF', 'MANAGER', 'ADMIN')) NOT NULL DEFAULT 'STAFF',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_staff_line_user_id ON staff(line_user_id);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create staff table: %w", err)
	}

	return nil
}

func createReportTemplatesTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS report_templates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		due_date TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_report_templates_active ON report_templates(is_active);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create report_templates table: %w", err)
	}

	return nil
}

func createSubmissionsTable(ctx context.Context, db *sql.DB) error {
	// The partial unique index is the storage-layer duplicate guard: at
	// most one COMPLETED submission per (staff, report, calendar day),
	// even under concurrent submit postbacks.
	query := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		staff_id INTEGER NOT NULL REFERENCES staff(id),
		report_id INTEGER NOT NULL REFERENCES report_templates(id),
		status TEXT CHECK(status IN ('COMPLETED', 'PENDING_QUESTION')) NOT NULL,
		question TEXT,
		submitted_at INTEGER NOT NULL,
		submitted_day TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_unique_day
		ON submissions(staff_id, report_id, submitted_day)
		WHERE status = 'COMPLETED';
	CREATE INDEX IF NOT EXISTS idx_submissions_staff_day ON submissions(staff_id, submitted_day);
	CREATE INDEX IF NOT EXISTS idx_submissions_staff_time ON submissions(staff_id, submitted_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}

	return nil
}
