// Package reply builds the structured reply payloads sent back to LINE.
// Composition is pure: no I/O, no repository access. All user-visible
// text comes from the messages catalog.
package reply

import (
	"fmt"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/repotomo/repotomo-linebot-go/internal/lineutil"
	"github.com/repotomo/repotomo-linebot-go/internal/messages"
	"github.com/repotomo/repotomo-linebot-go/internal/postback"
	"github.com/repotomo/repotomo-linebot-go/internal/storage"
)

// LINE flex carousel limit.
const maxBubblesPerCarousel = 10

// Report card styling.
const (
	deadlineIconURL = "https://cdn-icons-png.flaticon.com/512/2838/2838779.png"
	colorSubmit     = "#4CAF50"
	colorHint       = "#8BC34A"
	colorMuted      = "#999999"
)

// ErrorKind selects an error reply template.
type ErrorKind string

// Error reply kinds.
const (
	ErrorNotRegistered ErrorKind = "not_registered"
	ErrorGeneral       ErrorKind = "general"
)

// Composer builds reply message sequences from domain data.
type Composer struct {
	picker       *messages.Picker
	historyLimit int
}

// NewComposer creates a composer. The picker supplies encouragement
// phrases; historyLimit caps the entries shown by History.
func NewComposer(picker *messages.Picker, historyLimit int) *Composer {
	if historyLimit <= 0 {
		historyLimit = 5
	}
	return &Composer{picker: picker, historyLimit: historyLimit}
}

// Welcome builds the follow-event reply: greeting, guidance, and the
// quick-reply menu. Always exactly three blocks.
func (c *Composer) Welcome(staffName string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(messages.WelcomeGreeting(staffName)),
		lineutil.NewTextMessage(messages.WelcomeGuide),
		c.quickMenu(),
	}
}

// TodayReports builds the owed-report reply: a reassuring empty-state
// text when nothing is due, otherwise a count summary followed by one
// carousel card per template.
func (c *Composer) TodayReports(templates []storage.ReportTemplate) []messaging_api.MessageInterface {
	if len(templates) == 0 {
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessage(messages.NoReportsToday),
		}
	}

	shown := templates
	if len(shown) > maxBubblesPerCarousel {
		shown = shown[:maxBubblesPerCarousel]
	}

	bubbles := make([]messaging_api.FlexBubble, len(shown))
	for i, tpl := range shown {
		bubbles[i] = reportCard(tpl)
	}

	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(messages.TodaySummary(len(templates))),
		lineutil.NewFlexMessage(messages.CarouselAltText(len(templates)), lineutil.NewFlexCarousel(bubbles)),
	}
}

// History builds the submission history reply: an empty-state text when
// the staff member has no submissions, otherwise a single text block
// listing the most recent entries with a status glyph and localized date.
func (c *Composer) History(entries []storage.HistoryEntry) []messaging_api.MessageInterface {
	if len(entries) == 0 {
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessage(messages.NoHistory),
		}
	}

	if len(entries) > c.historyLimit {
		entries = entries[:c.historyLimit]
	}

	var b strings.Builder
	b.WriteString(messages.HistoryHeader)
	b.WriteString("\n\n")
	for _, entry := range entries {
		glyph := "📝"
		if entry.Status == storage.StatusCompleted {
			glyph = "✅"
		}
		date := entry.SubmittedAt.Format("2006/1/2")
		fmt.Fprintf(&b, "%s %s\n└ %s\n\n", glyph, entry.ReportTitle, date)
	}

	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(strings.TrimSpace(b.String())),
	}
}

// Encouragement builds a single randomized encouragement text for the
// given phrase pool.
func (c *Composer) Encouragement(kind messages.Kind) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(c.picker.Pick(kind)),
	}
}

// ConsultPrompt builds the reply to a 相談 button: an invitation plus
// concrete examples. No submission is created.
func (c *Composer) ConsultPrompt() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(messages.ConsultPrompt),
		lineutil.NewTextMessage(messages.ConsultExamples),
	}
}

// Help builds the fixed usage guide reply.
func (c *Composer) Help() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(messages.HelpText),
	}
}

// Thanks builds the fixed reply to a thank-you message.
func (c *Composer) Thanks() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(messages.ThanksText),
	}
}

// DefaultNudge builds the fallback reply for unmatched text: an
// acknowledgment plus the quick-reply menu.
func (c *Composer) DefaultNudge() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(messages.DefaultText),
		c.quickMenu(),
	}
}

// Error builds the gentle error reply for the given failure kind.
// Never exposes technical detail to staff.
func (c *Composer) Error(kind ErrorKind) []messaging_api.MessageInterface {
	text := messages.ErrGeneral
	if kind == ErrorNotRegistered {
		text = messages.ErrNotRegistered
	}
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(text),
	}
}

func (c *Composer) quickMenu() *messaging_api.TextMessage {
	return lineutil.NewTextMessageWithQuickReply(messages.QuickMenuPrompt,
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("📋 今日の報告書", "今日の報告書")},
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("📊 提出履歴", "履歴")},
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("❓ ヘルプ", "ヘルプ")},
	)
}

// reportCard builds one carousel bubble for an owed report: title,
// due-date hint, and the 提出/相談 action buttons.
func reportCard(tpl storage.ReportTemplate) messaging_api.FlexBubble {
	body := lineutil.NewFlexBox("vertical",
		lineutil.NewFlexText(tpl.Title).WithWeight("bold").WithSize("lg").WithWrap(true).FlexText,
		lineutil.NewFlexBox("baseline",
			lineutil.NewFlexIcon(deadlineIconURL, "sm"),
			lineutil.NewFlexText(messages.DueDateHint(tpl.DueDate)).
				WithSize("sm").WithColor(colorMuted).WithMargin("sm").FlexText,
		).WithMargin("md").FlexBox,
		lineutil.NewFlexText(messages.CarouselHint).
			WithSize("xs").WithColor(colorHint).WithMargin("md").WithWrap(true).FlexText,
	)

	footer := lineutil.NewFlexBox("horizontal",
		lineutil.NewFlexButton(lineutil.NewPostbackAction(
			"✅ 提出",
			postback.Encode(postback.ActionSubmit, tpl.ID),
			fmt.Sprintf("%sを提出しました", tpl.Title),
		)).WithStyle("primary").WithHeight("sm").WithColor(colorSubmit).FlexButton,
		lineutil.NewFlexButton(lineutil.NewPostbackAction(
			"💬 相談",
			postback.Encode(postback.ActionHelp, tpl.ID),
			"",
		)).WithStyle("secondary").WithHeight("sm").FlexButton,
	).WithSpacing("sm")

	return lineutil.NewBubble("kilo", body, footer)
}
