// Package api exposes the JSON endpoints used by the web frontend:
// staff and report listings, submission creation, and a database
// connectivity check.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domerrors "github.com/repotomo/repotomo-linebot-go/internal/errors"
	"github.com/repotomo/repotomo-linebot-go/internal/logger"
	"github.com/repotomo/repotomo-linebot-go/internal/messages"
	"github.com/repotomo/repotomo-linebot-go/internal/metrics"
	"github.com/repotomo/repotomo-linebot-go/internal/storage"
)

// submissionHistoryLimit caps the entries returned by the submission
// listing endpoint.
const submissionHistoryLimit = 50

// Server handles the JSON API routes.
type Server struct {
	repo    storage.Repository
	picker  *messages.Picker
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// ServerConfig holds configuration for creating a new Server.
type ServerConfig struct {
	Repository storage.Repository
	Picker     *messages.Picker
	Logger     *logger.Logger
	Metrics    *metrics.Metrics

	// Now overrides the clock; nil means time.Now. Used by tests.
	Now func() time.Time
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) *Server {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		repo:    cfg.Repository,
		picker:  cfg.Picker,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     now,
	}
}

// Register mounts the API routes on the given router group.
func (s *Server) Register(rg *gin.RouterGroup) {
	rg.GET("/staffs", s.listStaffs)
	rg.GET("/reports", s.listReports)
	rg.GET("/submissions", s.listSubmissions)
	rg.POST("/submissions", s.createSubmission)
	rg.GET("/db/test", s.dbTest)
}

type staffDTO struct {
	ID         int64     `json:"id"`
	LineUserID string    `json:"lineUserId"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

type reportDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type submissionDTO struct {
	ID          string    `json:"id"`
	StaffID     int64     `json:"staffId"`
	ReportID    int64     `json:"reportId"`
	Status      string    `json:"status"`
	Question    string    `json:"question,omitempty"`
	ReportTitle string    `json:"reportTitle,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (s *Server) listStaffs(c *gin.Context) {
	staffs, err := s.repo.ListStaff(c.Request.Context())
	if err != nil {
		s.logger.WithModule("api").WithError(err).Error("Failed to list staffs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	out := make([]staffDTO, len(staffs))
	for i, st := range staffs {
		out[i] = staffDTO{
			ID:         st.ID,
			LineUserID: st.LineUserID,
			Name:       st.Name,
			Role:       string(st.Role),
			IsActive:   st.IsActive,
			CreatedAt:  st.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"staffs": out})
}

func (s *Server) listReports(c *gin.Context) {
	reports, err := s.repo.ListActiveReportTemplates(c.Request.Context())
	if err != nil {
		s.logger.WithModule("api").WithError(err).Error("Failed to list reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	out := make([]reportDTO, len(reports))
	for i, r := range reports {
		out[i] = reportDTO{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			DueDate:     r.DueDate,
			IsActive:    r.IsActive,
			CreatedAt:   r.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

func (s *Server) listSubmissions(c *gin.Context) {
	staffID, err := strconv.ParseInt(c.Query("staffId"), 10, 64)
	if err != nil || staffID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staffId is required"})
		return
	}

	entries, err := s.repo.ListRecentSubmissionsForStaff(c.Request.Context(), staffID, submissionHistoryLimit)
	if err != nil {
		s.logger.WithModule("api").WithError(err).Error("Failed to list submissions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	out := make([]submissionDTO, len(entries))
	for i, e := range entries {
		out[i] = submissionDTO{
			ID:          e.ID,
			StaffID:     e.StaffID,
			ReportID:    e.ReportID,
			Status:      string(e.Status),
			Question:    e.Question,
			ReportTitle: e.ReportTitle,
			SubmittedAt: e.SubmittedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"submissions": out})
}

type createSubmissionRequest struct {
	StaffID  int64  `json:"staffId" binding:"required,gt=0"`
	ReportID int64  `json:"reportId" binding:"required,gt=0"`
	Question string `json:"question"`
}

// createSubmission records a submission from the web frontend. A
// non-empty question marks it PENDING_QUESTION so a manager can follow
// up; the response message comes from the matching encouragement pool.
func (s *Server) createSubmission(c *gin.Context) {
	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staffId and reportId are required"})
		return
	}

	status := storage.StatusCompleted
	kind := messages.KindSubmit
	if req.Question != "" {
		status = storage.StatusPendingQuestion
		kind = messages.KindConsult
	}

	sub := &storage.Submission{
		ID:          uuid.NewString(),
		StaffID:     req.StaffID,
		ReportID:    req.ReportID,
		Status:      status,
		Question:    req.Question,
		SubmittedAt: s.now(),
	}

	if err := s.repo.CreateSubmission(c.Request.Context(), sub); err != nil {
		if errors.Is(err, domerrors.ErrDuplicateSubmission) {
			s.metrics.RecordSubmission("web", "duplicate")
			c.JSON(http.StatusOK, gin.H{
				"message":   s.picker.Pick(kind),
				"duplicate": true,
			})
			return
		}
		s.metrics.RecordSubmission("web", "error")
		s.logger.WithModule("api").WithError(err).Error("Failed to create submission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	s.metrics.RecordSubmission("web", statusLabel(status))
	c.JSON(http.StatusCreated, gin.H{
		"submission": submissionDTO{
			ID:          sub.ID,
			StaffID:     sub.StaffID,
			ReportID:    sub.ReportID,
			Status:      string(sub.Status),
			Question:    sub.Question,
			SubmittedAt: sub.SubmittedAt,
		},
		"message": s.picker.Pick(kind),
	})
}

func statusLabel(status storage.SubmissionStatus) string {
	if status == storage.StatusPendingQuestion {
		return "pending_question"
	}
	return "completed"
}

func (s *Server) dbTest(c *gin.Context) {
	if err := s.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"reason": err.Error(),
		})
		return
	}

	counts, err := s.repo.Counts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"reason": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"counts": counts,
	})
}
