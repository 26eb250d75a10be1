// Package lineutil provides utility functions for building LINE messages
// and actions.
package lineutil

import "github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// QuickReplyItem represents an item in a quick reply.
type QuickReplyItem struct {
	ImageURL string
	Action   Action
}

// NewTextMessage creates a simple text message.
func NewTextMessage(text string) *messaging_api.TextMessage {
	return &messaging_api.TextMessage{
		Text: text,
	}
}

// NewTextMessageWithQuickReply creates a text message with attached quick
// reply buttons.
func NewTextMessageWithQuickReply(text string, items ...QuickReplyItem) *messaging_api.TextMessage {
	msg := NewTextMessage(text)
	msg.QuickReply = NewQuickReply(items)
	return msg
}

// NewQuickReply creates a quick reply component from items.
func NewQuickReply(items []QuickReplyItem) *messaging_api.QuickReply {
	quickReplyItems := make([]messaging_api.QuickReplyItem, len(items))

	for i, item := range items {
		qrItem := messaging_api.QuickReplyItem{
			Action: item.Action,
		}
		if item.ImageURL != "" {
			qrItem.ImageUrl = item.ImageURL
		}
		quickReplyItems[i] = qrItem
	}

	return &messaging_api.QuickReply{
		Items: quickReplyItems,
	}
}

// NewMessageAction creates a message action that sends text when tapped.
func NewMessageAction(label, text string) Action {
	return &messaging_api.MessageAction{
		Label: label,
		Text:  text,
	}
}

// NewPostbackAction creates a postback action carrying encoded data.
// displayText, when non-empty, is echoed into the chat on tap.
func NewPostbackAction(label, data, displayText string) Action {
	return &messaging_api.PostbackAction{
		Label:       label,
		Data:        data,
		DisplayText: displayText,
	}
}

// NewFlexMessage creates a flex message with the given alt text and
// container.
func NewFlexMessage(altText string, contents messaging_api.FlexContainerInterface) *messaging_api.FlexMessage {
	return &messaging_api.FlexMessage{
		AltText:  altText,
		Contents: contents,
	}
}

// NewFlexCarousel creates a flex carousel from bubbles.
func NewFlexCarousel(bubbles []messaging_api.FlexBubble) *messaging_api.FlexCarousel {
	return &messaging_api.FlexCarousel{
		Contents: bubbles,
	}
}

// TruncateRunes truncates text by rune count (not byte count) to properly
// handle UTF-8. Returns truncated string with "..." if exceeds maxRunes.
func TruncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
