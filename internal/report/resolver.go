// Package report computes which reports a staff member still owes for the
// current calendar day.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/repotomo/repotomo-linebot-go/internal/storage"
)

// Resolver answers "which reports does this staff member still owe today".
// It is read-only: resolving never mutates repository state, so calling it
// twice with the same arguments and no intervening submission yields the
// same result.
type Resolver struct {
	repo storage.Repository
}

// NewResolver creates a resolver backed by the given repository.
func NewResolver(repo storage.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// OwedToday returns the active report templates the staff member has not
// yet submitted during the local calendar day of now (midnight-to-midnight
// in now's location), in template creation order. An empty result is not
// an error.
func (r *Resolver) OwedToday(ctx context.Context, staffID int64, now time.Time) ([]storage.ReportTemplate, error) {
	templates, err := r.repo.ListActiveReportTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}

	submitted, err := r.repo.ListSubmissionsForStaffOnDay(ctx, staffID, now)
	if err != nil {
		return nil, fmt.Errorf("list submissions for day: %w", err)
	}

	submittedIDs := make(map[int64]bool, len(submitted))
	for _, sub := range submitted {
		submittedIDs[sub.ReportID] = true
	}

	owed := make([]storage.ReportTemplate, 0, len(templates))
	for _, tpl := range templates {
		if !submittedIDs[tpl.ID] {
			owed = append(owed, tpl)
		}
	}
	return owed, nil
}
