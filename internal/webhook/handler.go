// Package webhook receives LINE webhook deliveries, validates their
// signature, and fans the events out to the dispatcher.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"golang.org/x/sync/errgroup"

	"github.com/repotomo/repotomo-linebot-go/internal/bot"
	"github.com/repotomo/repotomo-linebot-go/internal/config"
	domerrors "github.com/repotomo/repotomo-linebot-go/internal/errors"
	"github.com/repotomo/repotomo-linebot-go/internal/logger"
	"github.com/repotomo/repotomo-linebot-go/internal/metrics"
	"github.com/repotomo/repotomo-linebot-go/internal/ratelimit"
)

// ReplyClient sends reply messages to the LINE Messaging API.
// *messaging_api.MessagingApiAPI satisfies it.
type ReplyClient interface {
	ReplyMessage(request *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// Handler handles LINE webhook deliveries.
type Handler struct {
	channelSecret string
	client        ReplyClient
	metrics       *metrics.Metrics
	logger        *logger.Logger
	processor     *bot.Processor
	replyLimiter  *ratelimit.ReplyRateLimiter
	wg            sync.WaitGroup

	// LINE API constraints (from config.BotConfig)
	eventConcurrency    int
	maxMessagesPerReply int
	maxEventsPerWebhook int
	minReplyTokenLength int
	webhookTimeout      time.Duration
	replyTimeout        time.Duration
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	ChannelSecret string
	Client        ReplyClient
	BotConfig     *config.BotConfig
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
	Processor     *bot.Processor
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		channelSecret:       cfg.ChannelSecret,
		client:              cfg.Client,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger,
		processor:           cfg.Processor,
		replyLimiter:        ratelimit.NewReplyRateLimiter(cfg.BotConfig.GlobalRateRPS, cfg.Metrics),
		eventConcurrency:    cfg.BotConfig.EventConcurrency,
		maxMessagesPerReply: cfg.BotConfig.MaxMessagesPerReply,
		maxEventsPerWebhook: cfg.BotConfig.MaxEventsPerWebhook,
		minReplyTokenLength: cfg.BotConfig.MinReplyTokenLength,
		webhookTimeout:      cfg.BotConfig.WebhookTimeout,
		replyTimeout:        cfg.BotConfig.ReplyTimeout,
	}
}

// Handle is the Gin handler for the webhook endpoint. It acknowledges
// the delivery immediately and processes the events asynchronously:
// LINE retries a webhook that does not answer 200 quickly.
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).Error("Failed to parse webhook request")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)

	h.metrics.WebhookBatchSize.Observe(float64(len(cb.Events)))

	if len(cb.Events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(cb.Events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		cb.Events = cb.Events[:h.maxEventsPerWebhook]
	}

	// Copy events to avoid racing with response teardown.
	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		var g errgroup.Group
		g.SetLimit(h.eventConcurrency)
		for _, event := range events {
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						h.logger.WithField("panic", r).Error("Panic while processing event")
						h.metrics.RecordEvent("unknown", "panic", 0)
					}
				}()
				h.processEvent(context.Background(), event)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// processEvent dispatches a single event and delivers its reply. A
// failure in one event never affects its batch siblings.
func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface) {
	start := time.Now()
	var msgs []messaging_api.MessageInterface
	var eventType string
	var err error

	eventID := extractEventID(event)
	log := h.logger
	if eventID != "" {
		log = log.WithEventID(eventID)
	}

	procCtx, cancel := context.WithTimeout(ctx, h.webhookTimeout)
	defer cancel()

	switch e := event.(type) {
	case webhook.MessageEvent:
		eventType = "message"
		msgs, err = h.processor.ProcessMessage(procCtx, e)
	case webhook.PostbackEvent:
		eventType = "postback"
		msgs, err = h.processor.ProcessPostback(procCtx, e)
	case webhook.FollowEvent:
		eventType = "follow"
		msgs, err = h.processor.ProcessFollow(procCtx, e)
	case webhook.UnfollowEvent:
		eventType = "unfollow"
		err = h.processor.ProcessUnfollow(procCtx, e)
	default:
		log.WithField("event_type", fmt.Sprintf("%T", e)).Debug("Unsupported event type")
		return
	}

	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
		log.WithError(err).WithField("event_type", eventType).Error("Failed to handle event")
	}
	h.metrics.RecordEvent(eventType, status, duration)

	// Dispatch errors still carry a reply when the dispatcher composed
	// one (e.g. a gentle error text), so delivery is unconditional on err.
	if len(msgs) > 0 {
		h.deliverReply(ctx, log, event, msgs)
	}

	log.WithField("event_type", eventType).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Event processed")
}

func (h *Handler) deliverReply(ctx context.Context, log *logger.Logger, event webhook.EventInterface, msgs []messaging_api.MessageInterface) {
	if len(msgs) > h.maxMessagesPerReply {
		log.WithField("message_count", len(msgs)).
			WithField("limit", h.maxMessagesPerReply).
			Warn("Message count exceeds reply limit; truncating")
		msgs = msgs[:h.maxMessagesPerReply]
	}

	replyToken := getReplyToken(event)
	if replyToken == "" {
		log.Debug("Empty reply token, skipping reply")
		return
	}
	if len(replyToken) < h.minReplyTokenLength {
		log.WithField("token_length", len(replyToken)).Debug("Invalid reply token format")
		return
	}

	replyCtx, cancel := context.WithTimeout(ctx, h.replyTimeout)
	defer cancel()

	if err := h.replyLimiter.Acquire(replyCtx); err != nil {
		log.WithError(err).Error("Timed out waiting for reply rate limit")
		h.metrics.RecordReplyFailure("timeout")
		return
	}

	if _, err := h.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   msgs,
	}); err != nil {
		err = fmt.Errorf("%w: %v", domerrors.ErrDeliveryFailure, err)
		switch {
		case strings.Contains(err.Error(), "Invalid reply token"):
			log.WithError(err).Debug("Reply token already used or invalid")
			h.metrics.RecordReplyFailure("invalid_token")
		default:
			log.WithError(err).Error("Failed to send reply")
			h.metrics.RecordReplyFailure("api_error")
		}
	}
}

func extractEventID(event webhook.EventInterface) string {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return e.WebhookEventId
	case webhook.PostbackEvent:
		return e.WebhookEventId
	case webhook.FollowEvent:
		return e.WebhookEventId
	case webhook.UnfollowEvent:
		return e.WebhookEventId
	default:
		return ""
	}
}

func getReplyToken(event webhook.EventInterface) string {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return e.ReplyToken
	case webhook.PostbackEvent:
		return e.ReplyToken
	case webhook.FollowEvent:
		return e.ReplyToken
	default:
		return ""
	}
}

// Shutdown waits for all in-flight event processing to complete.
// It returns an error if the context is canceled before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
