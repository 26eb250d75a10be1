package bot

import "github.com/line/line-bot-sdk-go/v8/linebot/webhook"

// GetUserID extracts the LINE user id from an event source.
// Returns an empty string for group/room sources without a user id.
func GetUserID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case *webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	default:
		return ""
	}
}
