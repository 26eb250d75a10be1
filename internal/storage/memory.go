package storage

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	domerrors "github.com/repotomo/repotomo-linebot-go/internal/errors"
)

// Memory is the in-memory Repository used for local development and
// tests. It enforces the same duplicate-submission guard as the SQLite
// backend, just under a mutex instead of a unique index.
type Memory struct {
	mu          sync.Mutex
	staff       []Staff
	templates   []ReportTemplate
	submissions []Submission
	nextStaffID int64
}

var _ Repository = (*Memory)(nil)

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{nextStaffID: 1}
}

// NewMemoryWithFixtures creates an in-memory repository seeded with the
// default report templates.
func NewMemoryWithFixtures() *Memory {
	m := NewMemory()
	now := time.Now()
	for i, tpl := range DefaultTemplates() {
		tpl.ID = int64(i + 1)
		tpl.CreatedAt = now
		m.templates = append(m.templates, tpl)
	}
	return m
}

// AddTemplate registers a report template. Test helper mirroring what the
// admin dashboard does against the real store.
func (m *Memory) AddTemplate(tpl ReportTemplate) ReportTemplate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tpl.ID == 0 {
		tpl.ID = int64(len(m.templates) + 1)
	}
	m.templates = append(m.templates, tpl)
	return tpl
}

// FindStaffByLineID returns the staff member registered for the LINE user
// id, or (nil, nil) when absent.
func (m *Memory) FindStaffByLineID(_ context.Context, lineUserID string) (*Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.staff {
		if m.staff[i].LineUserID == lineUserID {
			staff := m.staff[i]
			return &staff, nil
		}
	}
	return nil, nil
}

// CreateStaff inserts a staff record, returning the existing record when
// the LINE user id is already registered.
func (m *Memory) CreateStaff(_ context.Context, staff *Staff) (*Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.staff {
		if m.staff[i].LineUserID == staff.LineUserID {
			existing := m.staff[i]
			return &existing, nil
		}
	}

	created := *staff
	created.ID = m.nextStaffID
	m.nextStaffID++
	if created.Role == "" {
		created.Role = RoleStaff
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	m.staff = append(m.staff, created)

	out := created
	return &out, nil
}

// SetStaffActive updates the active flag of a staff member.
func (m *Memory) SetStaffActive(_ context.Context, staffID int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.staff {
		if m.staff[i].ID == staffID {
			m.staff[i].IsActive = active
			return nil
		}
	}
	return domerrors.ErrNotFound
}

// ListStaff returns all staff in registration order.
func (m *Memory) ListStaff(_ context.Context) ([]Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.staff), nil
}

// ListActiveReportTemplates returns active templates in creation order.
func (m *Memory) ListActiveReportTemplates(_ context.Context) ([]ReportTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []ReportTemplate
	for _, tpl := range m.templates {
		if tpl.IsActive {
			result = append(result, tpl)
		}
	}
	return result, nil
}

// CreateSubmission inserts a submission, rejecting a second COMPLETED row
// for the same (staff, report, calendar day).
func (m *Memory) CreateSubmission(_ context.Context, sub *Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}

	if sub.Status == StatusCompleted {
		day := DayKey(sub.SubmittedAt)
		for _, existing := range m.submissions {
			if existing.StaffID == sub.StaffID &&
				existing.ReportID == sub.ReportID &&
				existing.Status == StatusCompleted &&
				DayKey(existing.SubmittedAt) == day {
				return domerrors.ErrDuplicateSubmission
			}
		}
	}

	m.submissions = append(m.submissions, *sub)
	return nil
}

// ListSubmissionsForStaffOnDay returns submissions within the local
// calendar day of `day`.
func (m *Memory) ListSubmissionsForStaffOnDay(_ context.Context, staffID int64, day time.Time) ([]Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := DayKey(day)
	var result []Submission
	for _, sub := range m.submissions {
		if sub.StaffID == staffID && DayKey(sub.SubmittedAt) == key {
			result = append(result, sub)
		}
	}
	return result, nil
}

// ListRecentSubmissionsForStaff returns the newest submissions first,
// joined with report titles.
func (m *Memory) ListRecentSubmissionsForStaff(_ context.Context, staffID int64, limit int) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	titles := make(map[int64]string, len(m.templates))
	for _, tpl := range m.templates {
		titles[tpl.ID] = tpl.Title
	}

	var entries []HistoryEntry
	for _, sub := range m.submissions {
		if sub.StaffID != staffID {
			continue
		}
		entries = append(entries, HistoryEntry{Submission: sub, ReportTitle: titles[sub.ReportID]})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SubmittedAt.After(entries[j].SubmittedAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Counts returns row counts per table.
func (m *Memory) Counts(_ context.Context) (TableCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return TableCounts{
		Staff:       len(m.staff),
		Templates:   len(m.templates),
		Submissions: len(m.submissions),
	}, nil
}

// Ping always succeeds for the in-memory backend.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op for the in-memory backend.
func (m *Memory) Close() error { return nil }
