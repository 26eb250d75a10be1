package lineutil

import (
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

func TestNewTextMessage(t *testing.T) {
	msg := NewTextMessage("こんにちは")
	if msg.Text != "こんにちは" {
		t.Errorf("Text = %q, want %q", msg.Text, "こんにちは")
	}
	if msg.QuickReply != nil {
		t.Error("QuickReply should be nil for a plain text message")
	}
}

func TestNewTextMessageWithQuickReply(t *testing.T) {
	msg := NewTextMessageWithQuickReply("メニュー",
		QuickReplyItem{Action: NewMessageAction("ヘルプ", "ヘルプ")},
		QuickReplyItem{Action: NewMessageAction("履歴", "履歴")},
	)

	if msg.QuickReply == nil {
		t.Fatal("QuickReply should not be nil")
	}
	if got := len(msg.QuickReply.Items); got != 2 {
		t.Errorf("QuickReply items = %d, want 2", got)
	}
}

func TestNewPostbackAction(t *testing.T) {
	action := NewPostbackAction("✅ 提出", "action=submit&reportId=1", "週報を提出しました")

	pb, ok := action.(*messaging_api.PostbackAction)
	if !ok {
		t.Fatalf("action type = %T, want *messaging_api.PostbackAction", action)
	}
	if pb.Data != "action=submit&reportId=1" {
		t.Errorf("Data = %q", pb.Data)
	}
	if pb.DisplayText != "週報を提出しました" {
		t.Errorf("DisplayText = %q", pb.DisplayText)
	}
}

func TestNewFlexCarousel(t *testing.T) {
	body := NewFlexBox("vertical", NewFlexText("週報").WithWeight("bold").FlexText)
	bubble := NewBubble("kilo", body, nil)

	carousel := NewFlexCarousel([]messaging_api.FlexBubble{bubble})
	if got := len(carousel.Contents); got != 1 {
		t.Fatalf("carousel bubbles = %d, want 1", got)
	}
	if carousel.Contents[0].Body == nil {
		t.Error("bubble body should not be nil")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxRunes int
		want     string
	}{
		{"shorter than limit", "週報", 10, "週報"},
		{"exactly at limit", "12345", 5, "12345"},
		{"truncated with ellipsis", "1234567890", 8, "12345..."},
		{"multibyte truncation", "外国人スタッフ週報です", 6, "外国人..."},
		{"tiny limit", "12345", 2, "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.text, tt.maxRunes); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.text, tt.maxRunes, got, tt.want)
			}
		})
	}
}
