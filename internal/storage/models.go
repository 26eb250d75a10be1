package storage

import "time"

// Role identifies a staff member's permission level.
type Role string

// Staff roles.
const (
	RoleStaff   Role = "STAFF"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// SubmissionStatus identifies the state of a report submission.
type SubmissionStatus string

// Submission statuses.
const (
	StatusCompleted       SubmissionStatus = "COMPLETED"
	StatusPendingQuestion SubmissionStatus = "PENDING_QUESTION"
)

// Staff represents a registered staff member. Staff are created on the
// first follow event and never deleted by the bot.
type Staff struct {
	ID         int64
	LineUserID string
	Name       string
	Role       Role
	IsActive   bool
	CreatedAt  time.Time
}

// ReportTemplate represents a recurring report definition. Read-only from
// the bot's perspective.
type ReportTemplate struct {
	ID          int64
	Title       string
	Description string
	DueDate     string // Human-readable due hint, e.g. "金曜日" or "月末"
	IsActive    bool
	CreatedAt   time.Time
}

// Submission represents one submitted report instance.
type Submission struct {
	ID          string // UUID
	StaffID     int64
	ReportID    int64
	Status      SubmissionStatus
	Question    string // Free-text question for PENDING_QUESTION submissions
	SubmittedAt time.Time
}

// HistoryEntry is a submission joined with its report title for display.
type HistoryEntry struct {
	Submission
	ReportTitle string
}

// TableCounts reports row counts per table for health and admin endpoints.
type TableCounts struct {
	Staff       int `json:"staffs"`
	Templates   int `json:"reportTemplates"`
	Submissions int `json:"submissions"`
}

// DayKey formats the local calendar day of t as an index key.
// The day boundary is midnight-to-midnight in t's own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
