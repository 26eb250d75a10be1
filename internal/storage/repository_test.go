package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/repotomo/repotomo-linebot-go/internal/errors"
)

// repositoryBackends runs a test against both Repository implementations
// so they stay behaviorally interchangeable.
func repositoryBackends(t *testing.T) map[string]Repository {
	t.Helper()

	db, err := NewTestDB(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Repository{
		"sqlite": db,
		"memory": NewMemoryWithFixtures(),
	}
}

func createTestStaff(t *testing.T, repo Repository, lineID, name string) *Staff {
	t.Helper()
	staff, err := repo.CreateStaff(context.Background(), &Staff{
		LineUserID: lineID,
		Name:       name,
		Role:       RoleStaff,
		IsActive:   true,
	})
	require.NoError(t, err)
	require.NotZero(t, staff.ID)
	return staff
}

func TestSeededTemplates(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			templates, err := repo.ListActiveReportTemplates(context.Background())
			require.NoError(t, err)
			require.Len(t, templates, 5)
			assert.Equal(t, "週報", templates[0].Title)

			// Stable creation order
			for i := 1; i < len(templates); i++ {
				assert.Greater(t, templates[i].ID, templates[i-1].ID)
			}
		})
	}
}

func TestFindStaffByLineIDMissing(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			staff, err := repo.FindStaffByLineID(context.Background(), "U-nobody")
			require.NoError(t, err)
			assert.Nil(t, staff)
		})
	}
}

func TestCreateStaffIdempotent(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			first := createTestStaff(t, repo, "U1", "田中")

			// Second create with the same LINE user id returns the
			// existing record, not a new one.
			second, err := repo.CreateStaff(context.Background(), &Staff{
				LineUserID: "U1",
				Name:       "別の名前",
				Role:       RoleStaff,
				IsActive:   true,
			})
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)
			assert.Equal(t, "田中", second.Name)

			all, err := repo.ListStaff(context.Background())
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestSetStaffActive(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			staff := createTestStaff(t, repo, "U1", "田中")

			require.NoError(t, repo.SetStaffActive(context.Background(), staff.ID, false))

			found, err := repo.FindStaffByLineID(context.Background(), "U1")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.False(t, found.IsActive)

			err = repo.SetStaffActive(context.Background(), 9999, false)
			assert.ErrorIs(t, err, domerrors.ErrNotFound)
		})
	}
}

func TestCreateSubmissionDuplicateSameDay(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			staff := createTestStaff(t, repo, "U1", "田中")
			now := time.Now()

			first := &Submission{
				ID:          uuid.NewString(),
				StaffID:     staff.ID,
				ReportID:    1,
				Status:      StatusCompleted,
				SubmittedAt: now,
			}
			require.NoError(t, repo.CreateSubmission(context.Background(), first))

			dup := &Submission{
				ID:          uuid.NewString(),
				StaffID:     staff.ID,
				ReportID:    1,
				Status:      StatusCompleted,
				SubmittedAt: now.Add(time.Hour),
			}
			err := repo.CreateSubmission(context.Background(), dup)
			assert.ErrorIs(t, err, domerrors.ErrDuplicateSubmission)

			// A different report on the same day is fine.
			other := &Submission{
				ID:          uuid.NewString(),
				StaffID:     staff.ID,
				ReportID:    2,
				Status:      StatusCompleted,
				SubmittedAt: now,
			}
			assert.NoError(t, repo.CreateSubmission(context.Background(), other))
		})
	}
}

func TestCreateSubmissionNextDayAllowed(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			staff := createTestStaff(t, repo, "U1", "田中")
			yesterday := time.Now().AddDate(0, 0, -1)

			require.NoError(t, repo.CreateSubmission(context.Background(), &Submission{
				ID: uuid.NewString(), StaffID: staff.ID, ReportID: 1,
				Status: StatusCompleted, SubmittedAt: yesterday,
			}))
			assert.NoError(t, repo.CreateSubmission(context.Background(), &Submission{
				ID: uuid.NewString(), StaffID: staff.ID, ReportID: 1,
				Status: StatusCompleted, SubmittedAt: time.Now(),
			}))
		})
	}
}

func TestPendingQuestionNotDeduplicated(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			staff := createTestStaff(t, repo, "U1", "田中")
			now := time.Now()

			for i := 0; i < 2; i++ {
				err := repo.CreateSubmission(context.Background(), &Submission{
					ID: uuid.NewString(), StaffID: staff.ID, ReportID: 1,
					Status: StatusPendingQuestion, Question: "書き方がわからない",
					SubmittedAt: now,
				})
				assert.NoError(t, err)
			}
		})
	}
}

func TestConcurrentDuplicateSubmit(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			staff := createTestStaff(t, repo, "U1", "田中")
			now := time.Now()

			const attempts = 8
			results := make([]error, attempts)
			var wg sync.WaitGroup
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i] = repo.CreateSubmission(context.Background(), &Submission{
						ID: uuid.NewString(), StaffID: staff.ID, ReportID: 1,
						Status: StatusCompleted, SubmittedAt: now,
					})
				}(i)
			}
			wg.Wait()

			succeeded := 0
			for _, err := range results {
				if err == nil {
					succeeded++
				} else {
					assert.ErrorIs(t, err, domerrors.ErrDuplicateSubmission)
				}
			}
			assert.Equal(t, 1, succeeded, "exactly one concurrent submit must win")

			subs, err := repo.ListSubmissionsForStaffOnDay(context.Background(), staff.ID, now)
			require.NoError(t, err)
			assert.Len(t, subs, 1)
		})
	}
}

func TestListSubmissionsForStaffOnDayBoundary(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			staff := createTestStaff(t, repo, "U1", "田中")
			noon := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)

			require.NoError(t, repo.CreateSubmission(context.Background(), &Submission{
				ID: uuid.NewString(), StaffID: staff.ID, ReportID: 1,
				Status: StatusCompleted, SubmittedAt: noon,
			}))
			// Just before midnight the previous day: outside the window.
			require.NoError(t, repo.CreateSubmission(context.Background(), &Submission{
				ID: uuid.NewString(), StaffID: staff.ID, ReportID: 2,
				Status: StatusCompleted, SubmittedAt: noon.Add(-13 * time.Hour),
			}))

			subs, err := repo.ListSubmissionsForStaffOnDay(context.Background(), staff.ID, noon)
			require.NoError(t, err)
			require.Len(t, subs, 1)
			assert.Equal(t, int64(1), subs[0].ReportID)
		})
	}
}

func TestListRecentSubmissionsOrderAndLimit(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			staff := createTestStaff(t, repo, "U1", "田中")
			base := time.Now().Add(-10 * 24 * time.Hour)

			for i := 0; i < 7; i++ {
				require.NoError(t, repo.CreateSubmission(context.Background(), &Submission{
					ID: uuid.NewString(), StaffID: staff.ID,
					ReportID: int64(i%5 + 1), Status: StatusCompleted,
					SubmittedAt: base.Add(time.Duration(i) * 24 * time.Hour),
				}))
			}

			entries, err := repo.ListRecentSubmissionsForStaff(context.Background(), staff.ID, 5)
			require.NoError(t, err)
			require.Len(t, entries, 5)

			for i := 1; i < len(entries); i++ {
				assert.True(t, entries[i].SubmittedAt.Before(entries[i-1].SubmittedAt),
					"history must be newest first")
			}
			assert.NotEmpty(t, entries[0].ReportTitle)
		})
	}
}

func TestCounts(t *testing.T) {
	for name, repo := range repositoryBackends(t) {
		t.Run(name, func(t *testing.T) {
			staff := createTestStaff(t, repo, "U1", "田中")
			require.NoError(t, repo.CreateSubmission(context.Background(), &Submission{
				ID: uuid.NewString(), StaffID: staff.ID, ReportID: 1,
				Status: StatusCompleted, SubmittedAt: time.Now(),
			}))

			counts, err := repo.Counts(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, counts.Staff)
			assert.Equal(t, 5, counts.Templates)
			assert.Equal(t, 1, counts.Submissions)
		})
	}
}
