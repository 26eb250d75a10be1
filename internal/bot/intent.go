package bot

import (
	"strings"

	"golang.org/x/text/width"
)

// Intent is the routing decision for a text message.
type Intent int

// Text message intents, in match priority order.
const (
	IntentToday Intent = iota
	IntentHelp
	IntentThanks
	IntentHistory
	IntentDefault
)

// MatchIntent routes a text message using the fixed substring rules.
// The priority order is product behavior and must not be reordered:
// a message containing both 報告書 and ヘルプ is a today-reports query.
func MatchIntent(text string) Intent {
	// Fold width variants so 全角 "？" matches like ASCII "?".
	text = strings.TrimSpace(width.Fold.String(text))

	switch {
	case strings.Contains(text, "今日") || strings.Contains(text, "報告書"):
		return IntentToday
	case strings.Contains(text, "ヘルプ") || text == "?":
		return IntentHelp
	case strings.Contains(text, "ありがとう"):
		return IntentThanks
	case strings.Contains(text, "履歴") || strings.Contains(text, "確認"):
		return IntentHistory
	default:
		return IntentDefault
	}
}
