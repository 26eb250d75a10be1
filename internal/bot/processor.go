// Package bot implements the event dispatcher: the stateless state
// machine that routes inbound LINE events to the resolver, repository and
// composer, and produces at most one reply per event.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	domerrors "github.com/repotomo/repotomo-linebot-go/internal/errors"
	"github.com/repotomo/repotomo-linebot-go/internal/logger"
	"github.com/repotomo/repotomo-linebot-go/internal/messages"
	"github.com/repotomo/repotomo-linebot-go/internal/metrics"
	"github.com/repotomo/repotomo-linebot-go/internal/postback"
	"github.com/repotomo/repotomo-linebot-go/internal/reply"
	"github.com/repotomo/repotomo-linebot-go/internal/report"
	"github.com/repotomo/repotomo-linebot-go/internal/storage"
)

// ProfileProvider fetches a LINE user's display name. Optional: the
// processor falls back to a placeholder when the fetch fails.
type ProfileProvider interface {
	FetchDisplayName(ctx context.Context, userID string) (string, error)
}

// Processor dispatches inbound events. It holds no mutable state: all
// persistent state lives in the repository, so instances are safe for
// concurrent use.
type Processor struct {
	repo     storage.Repository
	resolver *report.Resolver
	composer *reply.Composer
	profiles ProfileProvider
	logger   *logger.Logger
	metrics  *metrics.Metrics

	maxPostbackDataSize int
	historyLimit        int
	now                 func() time.Time
}

// ProcessorConfig holds configuration for creating a new Processor.
type ProcessorConfig struct {
	Repository          storage.Repository
	Resolver            *report.Resolver
	Composer            *reply.Composer
	Profiles            ProfileProvider
	Logger              *logger.Logger
	Metrics             *metrics.Metrics
	MaxPostbackDataSize int
	HistoryLimit        int

	// Now overrides the clock; nil means time.Now. Used by tests.
	Now func() time.Time
}

// NewProcessor creates a new event processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	maxData := cfg.MaxPostbackDataSize
	if maxData <= 0 {
		maxData = 300
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 5
	}
	return &Processor{
		repo:                cfg.Repository,
		resolver:            cfg.Resolver,
		composer:            cfg.Composer,
		profiles:            cfg.Profiles,
		logger:              cfg.Logger,
		metrics:             cfg.Metrics,
		maxPostbackDataSize: maxData,
		historyLimit:        historyLimit,
		now:                 now,
	}
}

// ProcessFollow handles a follow event: lookup-or-create the staff
// identity and compose the welcome reply. Repeated follows from the same
// user are no-ops that produce the same reply shape.
func (p *Processor) ProcessFollow(ctx context.Context, event webhook.FollowEvent) ([]messaging_api.MessageInterface, error) {
	userID := GetUserID(event.Source)
	if userID == "" {
		return nil, nil
	}

	staff, err := p.repo.FindStaffByLineID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find staff on follow: %w", err)
	}

	if staff == nil {
		name := p.fetchDisplayName(ctx, userID)
		staff, err = p.repo.CreateStaff(ctx, &storage.Staff{
			LineUserID: userID,
			Name:       name,
			Role:       storage.RoleStaff,
			IsActive:   true,
		})
		if err != nil {
			return nil, fmt.Errorf("create staff on follow: %w", err)
		}
		p.logger.WithModule("bot").WithField("staff_id", staff.ID).Info("Registered new staff")
	} else if !staff.IsActive {
		// Re-follow after a block: reactivate the existing identity.
		if err := p.repo.SetStaffActive(ctx, staff.ID, true); err != nil {
			p.logger.WithModule("bot").WithError(err).Warn("Failed to reactivate staff")
		}
	}

	return p.composer.Welcome(staff.Name), nil
}

// ProcessUnfollow handles an unfollow (block) event. The channel is
// one-way: no reply token exists, so the only action is marking the
// identity inactive.
func (p *Processor) ProcessUnfollow(ctx context.Context, event webhook.UnfollowEvent) error {
	userID := GetUserID(event.Source)
	if userID == "" {
		return nil
	}

	staff, err := p.repo.FindStaffByLineID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find staff on unfollow: %w", err)
	}
	if staff == nil {
		return nil
	}

	p.logger.WithModule("bot").WithField("staff_id", staff.ID).Info("Staff blocked the bot")
	return p.repo.SetStaffActive(ctx, staff.ID, false)
}

// ProcessMessage handles a text message event, routing by keyword in
// fixed priority order. The returned messages should be delivered even
// when an error is also returned; the error is for logging only.
func (p *Processor) ProcessMessage(ctx context.Context, event webhook.MessageEvent) ([]messaging_api.MessageInterface, error) {
	userID := GetUserID(event.Source)
	if userID == "" {
		return nil, nil
	}

	textMsg, ok := event.Message.(webhook.TextMessageContent)
	if !ok {
		// Stickers, images etc. get no reply.
		return nil, nil
	}
	text := textMsg.Text
	if len(text) == 0 {
		return nil, nil
	}

	staff, err := p.repo.FindStaffByLineID(ctx, userID)
	if err != nil {
		return p.composer.Error(reply.ErrorGeneral), fmt.Errorf("find staff on message: %w", err)
	}
	if staff == nil {
		return p.composer.Error(reply.ErrorNotRegistered), domerrors.ErrIdentityNotFound
	}

	switch MatchIntent(text) {
	case IntentToday:
		owed, err := p.resolver.OwedToday(ctx, staff.ID, p.now())
		if err != nil {
			return p.composer.Error(reply.ErrorGeneral), fmt.Errorf("resolve owed reports: %w", err)
		}
		return p.composer.TodayReports(owed), nil

	case IntentHelp:
		return p.composer.Help(), nil

	case IntentThanks:
		return p.composer.Thanks(), nil

	case IntentHistory:
		return p.historyReply(ctx, staff.ID)

	default:
		return p.composer.DefaultNudge(), nil
	}
}

// ProcessPostback handles a button-press event. Decode failures and
// unknown identities are dropped silently: there is no useful reply to
// send for malformed button data.
func (p *Processor) ProcessPostback(ctx context.Context, event webhook.PostbackEvent) ([]messaging_api.MessageInterface, error) {
	userID := GetUserID(event.Source)
	if userID == "" || event.Postback == nil {
		return nil, nil
	}

	data := event.Postback.Data
	if len(data) == 0 || len(data) > p.maxPostbackDataSize {
		p.logger.WithModule("bot").WithField("data_len", len(data)).Warn("Postback data out of bounds; dropping")
		return nil, nil
	}

	pb, ok := postback.Parse(data)
	if !ok {
		p.logger.WithModule("bot").WithField("data", data).Warn("Undecodable postback; dropping")
		return nil, domerrors.ErrDecodeFailure
	}

	staff, err := p.repo.FindStaffByLineID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find staff on postback: %w", err)
	}
	if staff == nil {
		// No reply: a postback from an unregistered user has no
		// conversational context to explain the failure in.
		return nil, domerrors.ErrIdentityNotFound
	}

	switch pb.Action {
	case postback.ActionSubmit:
		return p.submitReport(ctx, staff.ID, pb.ReportID)

	case postback.ActionHelp:
		return p.composer.ConsultPrompt(), nil

	case postback.ActionHistory:
		return p.historyReply(ctx, staff.ID)

	default:
		p.logger.WithModule("bot").WithField("action", pb.Action).Debug("Unknown postback action")
		return nil, nil
	}
}

// submitReport records a COMPLETED submission. A duplicate for the same
// (staff, report, day) is a benign no-op: the user still receives the
// encouragement reply, because the dispatcher cannot distinguish
// "already submitted" from "race lost".
func (p *Processor) submitReport(ctx context.Context, staffID, reportID int64) ([]messaging_api.MessageInterface, error) {
	sub := &storage.Submission{
		ID:          uuid.NewString(),
		StaffID:     staffID,
		ReportID:    reportID,
		Status:      storage.StatusCompleted,
		SubmittedAt: p.now(),
	}

	if err := p.repo.CreateSubmission(ctx, sub); err != nil {
		if errors.Is(err, domerrors.ErrDuplicateSubmission) {
			p.metrics.RecordSubmission("line", "duplicate")
			return p.composer.Encouragement(messages.KindSubmit), nil
		}
		p.metrics.RecordSubmission("line", "error")
		return p.composer.Error(reply.ErrorGeneral), fmt.Errorf("create submission: %w", err)
	}

	p.metrics.RecordSubmission("line", "completed")
	p.logger.WithModule("bot").
		WithField("staff_id", staffID).
		WithField("report_id", reportID).
		Info("Report submitted")
	return p.composer.Encouragement(messages.KindSubmit), nil
}

func (p *Processor) historyReply(ctx context.Context, staffID int64) ([]messaging_api.MessageInterface, error) {
	entries, err := p.repo.ListRecentSubmissionsForStaff(ctx, staffID, p.historyLimit)
	if err != nil {
		return p.composer.Error(reply.ErrorGeneral), fmt.Errorf("list submission history: %w", err)
	}
	return p.composer.History(entries), nil
}

func (p *Processor) fetchDisplayName(ctx context.Context, userID string) string {
	if p.profiles == nil {
		return messages.PlaceholderName
	}
	name, err := p.profiles.FetchDisplayName(ctx, userID)
	if err != nil || name == "" {
		p.logger.WithModule("bot").WithError(err).Warn("Profile fetch failed; using placeholder name")
		return messages.PlaceholderName
	}
	return name
}
