// Package storage provides persistence for staff, report templates and
// submissions. The Repository interface has two implementations: a SQLite
// store for production and an in-memory fixture store for local
// development and tests, selected by configuration.
package storage

import (
	"context"
	"time"
)

// Repository is the persistence boundary consumed by the dispatcher,
// resolver and API layer.
//
// Lookup methods return (nil, nil) when no row matches; callers decide
// whether absence is an error. CreateSubmission must guarantee that at
// most one COMPLETED submission exists per (staff, report, calendar day),
// returning errors.ErrDuplicateSubmission for violations so concurrent
// duplicate postbacks cannot both succeed.
type Repository interface {
	// Staff
	FindStaffByLineID(ctx context.Context, lineUserID string) (*Staff, error)
	// CreateStaff inserts a staff record and fills in its id. Inserting an
	// already-registered LINE user id is a no-op that returns the existing
	// record, keeping follow handling idempotent under races.
	CreateStaff(ctx context.Context, staff *Staff) (*Staff, error)
	SetStaffActive(ctx context.Context, staffID int64, active bool) error
	ListStaff(ctx context.Context) ([]Staff, error)

	// Report templates
	ListActiveReportTemplates(ctx context.Context) ([]ReportTemplate, error)

	// Submissions
	CreateSubmission(ctx context.Context, sub *Submission) error
	ListSubmissionsForStaffOnDay(ctx context.Context, staffID int64, day time.Time) ([]Submission, error)
	ListRecentSubmissionsForStaff(ctx context.Context, staffID int64, limit int) ([]HistoryEntry, error)

	// Health and admin
	Counts(ctx context.Context) (TableCounts, error)
	Ping(ctx context.Context) error
	Close() error
}

// OpRecorder receives repository operation timings. Implemented by
// metrics.Metrics; kept as a local interface so storage does not depend
// on the metrics package.
type OpRecorder interface {
	RecordRepositoryOp(operation string, durationSeconds float64)
}

// nopRecorder is used when no metrics recorder is configured.
type nopRecorder struct{}

func (nopRecorder) RecordRepositoryOp(string, float64) {}
