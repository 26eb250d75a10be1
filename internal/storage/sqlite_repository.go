package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domerrors "github.com/repotomo/repotomo-linebot-go/internal/errors"
)

// FindStaffByLineID retrieves a staff member by LINE user id.
// Returns (nil, nil) when no staff is registered for the id.
func (db *DB) FindStaffByLineID(ctx context.Context, lineUserID string) (*Staff, error) {
	start := time.Now()
	defer func() { db.metrics.RecordRepositoryOp("find_staff", time.Since(start).Seconds()) }()

	query := `SELECT id, line_user_id, name, role, is_active, created_at FROM staff WHERE line_user_id = ?`

	var staff Staff
	var isActive int
	var createdAt int64
	err := db.conn.QueryRowContext(ctx, query, lineUserID).Scan(
		&staff.ID,
		&staff.LineUserID,
		&staff.Name,
		&staff.Role,
		&isActive,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query staff",
			"line_user_id", lineUserID,
			"error", err)
		return nil, fmt.Errorf("query staff: %w", err)
	}

	staff.IsActive = isActive != 0
	staff.CreatedAt = time.Unix(createdAt, 0)
	return &staff, nil
}

// CreateStaff inserts a staff record. A conflicting LINE user id is not an
// error: the existing record is returned so concurrent follow events stay
// idempotent.
func (db *DB) CreateStaff(ctx context.Context, staff *Staff) (*Staff, error) {
	start := time.Now()
	defer func() { db.metrics.RecordRepositoryOp("create_staff", time.Since(start).Seconds()) }()

	if staff.Role == "" {
		staff.Role = RoleStaff
	}
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO staff (line_user_id, name, role, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(line_user_id) DO NOTHING
	`
	res, err := db.conn.ExecContext(ctx, query,
		staff.LineUserID, staff.Name, string(staff.Role), boolToInt(staff.IsActive), staff.CreatedAt.Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to create staff",
			"line_user_id", staff.LineUserID,
			"error", err)
		return nil, fmt.Errorf("create staff: %w", err)
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		// Lost the race or already registered; return the existing record.
		existing, err := db.FindStaffByLineID(ctx, staff.LineUserID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("create staff: conflict but no existing row for %s", staff.LineUserID)
		}
		return existing, nil
	}

	return db.FindStaffByLineID(ctx, staff.LineUserID)
}

// SetStaffActive updates the active flag of a staff member.
func (db *DB) SetStaffActive(ctx context.Context, staffID int64, active bool) error {
	start := time.Now()
	defer func() { db.metrics.RecordRepositoryOp("set_staff_active", time.Since(start).Seconds()) }()

	query := `UPDATE staff SET is_active = ? WHERE id = ?`
	res, err := db.conn.ExecContext(ctx, query, boolToInt(active), staffID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update staff active flag",
			"staff_id", staffID,
			"error", err)
		return fmt.Errorf("set staff active: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domerrors.ErrNotFound
	}
	return nil
}

// ListStaff returns all staff members in registration order.
func (db *DB) ListStaff(ctx context.Context) ([]Staff, error) {
	start := time.Now()
	defer func() { db.metrics.RecordRepositoryOp("list_staff", time.Since(start).Seconds()) }()

	query := `SELECT id, line_user_id, name, role, is_active, created_at FROM staff ORDER BY id`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Staff
	for rows.Next() {
		var staff Staff
		var isActive int
		var createdAt int64
		if err := rows.Scan(&staff.ID, &staff.LineUserID, &staff.Name, &staff.Role, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		staff.IsActive = isActive != 0
		staff.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, staff)
	}
	return result, rows.Err()
}

// ListActiveReportTemplates returns active templates in creation order.
func (db *DB) ListActiveReportTemplates(ctx context.Context) ([]ReportTemplate, error) {
	start := time.Now()
	defer func() { db.metrics.RecordRepositoryOp("list_templates", time.Since(start).Seconds()) }()

	query := `
		SELECT id, title, COALESCE(description, ''), COALESCE(due_date, ''), is_active, created_at
		FROM report_templates
		WHERE is_active = 1
		ORDER BY id
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query report templates", "error", err)
		return nil, fmt.Errorf("list report templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []ReportTemplate
	for rows.Next() {
		var tpl ReportTemplate
		var isActive int
		var createdAt int64
		if err := rows.Scan(&tpl.ID, &tpl.Title, &tpl.Description, &tpl.DueDate, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("scan report template: %w", err)
		}
		tpl.IsActive = isActive != 0
		tpl.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, tpl)
	}
	return result, rows.Err()
}

// CreateSubmission inserts a submission row. Violating the one-COMPLETED-
// per-day constraint returns errors.ErrDuplicateSubmission.
func (db *DB) CreateSubmission(ctx context.Context, sub *Submission) error {
	start := time.Now()
	defer func() { db.metrics.RecordRepositoryOp("create_submission", time.Since(start).Seconds()) }()

	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}

	query := `
		INSERT INTO submissions (id, staff_id, report_id, status, question, submitted_at, submitted_day)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query,
		sub.ID, sub.StaffID, sub.ReportID, string(sub.Status), sub.Question,
		sub.SubmittedAt.Unix(), DayKey(sub.SubmittedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domerrors.ErrDuplicateSubmission
		}
		slog.ErrorContext(ctx, "failed to create submission",
			"staff_id", sub.StaffID,
			"report_id", sub.ReportID,
			"error", err)
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// ListSubmissionsForStaffOnDay returns the staff member's submissions for
// the local calendar day of `day` (midnight-to-midnight in day's location).
func (db *DB) ListSubmissionsForStaffOnDay(ctx context.Context, staffID int64, day time.Time) ([]Submission, error) {
	start := time.Now()
	defer func() { db.metrics.RecordRepositoryOp("list_submissions_day", time.Since(start).Seconds()) }()

	query := `
		SELECT id, staff_id, report_id, status, COALESCE(question, ''), submitted_at
		FROM submissions
		WHERE staff_id = ? AND submitted_day = ?
		ORDER BY submitted_at
	`
	rows, err := db.conn.QueryContext(ctx, query, staffID, DayKey(day))
	if err != nil {
		slog.ErrorContext(ctx, "failed to query submissions",
			"staff_id", staffID,
			"error", err)
		return nil, fmt.Errorf("list submissions for day: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSubmissions(rows)
}

// ListRecentSubmissionsForStaff returns the staff member's most recent
// submissions joined with their report titles, newest first.
func (db *DB) ListRecentSubmissionsForStaff(ctx context.Context, staffID int64, limit int) ([]HistoryEntry, error) {
	start := time.Now()
	defer func() { db.metrics.RecordRepositoryOp("list_recent_submissions", time.Since(start).Seconds()) }()

	query := `
		SELECT s.id, s.staff_id, s.report_id, s.status, COALESCE(s.question, ''), s.submitted_at, r.title
		FROM submissions s
		JOIN report_templates r ON r.id = s.report_id
		WHERE s.staff_id = ?
		ORDER BY s.submitted_at DESC
		LIMIT ?
	`
	rows, err := db.conn.QueryContext(ctx, query, staffID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query submission history",
			"staff_id", staffID,
			"error", err)
		return nil, fmt.Errorf("list recent submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var submittedAt int64
		if err := rows.Scan(&entry.ID, &entry.StaffID, &entry.ReportID, &entry.Status,
			&entry.Question, &submittedAt, &entry.ReportTitle); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.SubmittedAt = time.Unix(submittedAt, 0)
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Counts returns row counts per table.
func (db *DB) Counts(ctx context.Context) (TableCounts, error) {
	var counts TableCounts
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM staff`).Scan(&counts.Staff); err != nil {
		return counts, fmt.Errorf("count staff: %w", err)
	}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_templates`).Scan(&counts.Templates); err != nil {
		return counts, fmt.Errorf("count report templates: %w", err)
	}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&counts.Submissions); err != nil {
		return counts, fmt.Errorf("count submissions: %w", err)
	}
	return counts, nil
}

func scanSubmissions(rows *sql.Rows) ([]Submission, error) {
	var result []Submission
	for rows.Next() {
		var sub Submission
		var submittedAt int64
		if err := rows.Scan(&sub.ID, &sub.StaffID, &sub.ReportID, &sub.Status, &sub.Question, &submittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.SubmittedAt = time.Unix(submittedAt, 0)
		result = append(result, sub)
	}
	return result, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
