package bot

import (
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/stretchr/testify/assert"
)

func TestMatchIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{"today keyword", "今日の報告書", IntentToday},
		{"report keyword alone", "報告書", IntentToday},
		{"report keyword in sentence", "報告書はどこですか", IntentToday},
		{"help keyword", "ヘルプ", IntentHelp},
		{"ascii question mark", "?", IntentHelp},
		{"fullwidth question mark", "？", IntentHelp},
		{"question mark with whitespace", "  ?  ", IntentHelp},
		{"thanks", "ありがとう", IntentThanks},
		{"polite thanks", "ありがとうございます！", IntentThanks},
		{"history", "履歴", IntentHistory},
		{"confirm", "提出を確認したい", IntentHistory},
		{"unmatched", "こんにちは", IntentDefault},
		{"empty", "", IntentDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchIntent(tt.text))
		})
	}
}

// The keyword rules are checked in a fixed order, so a message that
// matches several rules resolves to the highest-priority one.
func TestMatchIntent_Priority(t *testing.T) {
	assert.Equal(t, IntentToday, MatchIntent("今日のヘルプ"))
	assert.Equal(t, IntentToday, MatchIntent("報告書の履歴を確認"))
	assert.Equal(t, IntentHelp, MatchIntent("ヘルプありがとう"))
	assert.Equal(t, IntentThanks, MatchIntent("確認ありがとう"))
}

func TestGetUserID(t *testing.T) {
	assert.Equal(t, "U123", GetUserID(webhook.UserSource{UserId: "U123"}))
	assert.Equal(t, "U123", GetUserID(&webhook.UserSource{UserId: "U123"}))
	assert.Equal(t, "U456", GetUserID(webhook.GroupSource{GroupId: "G1", UserId: "U456"}))
	assert.Equal(t, "", GetUserID(nil))
}
