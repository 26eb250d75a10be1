package bot

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// LineProfileProvider fetches display names from the LINE profile API.
type LineProfileProvider struct {
	client *messaging_api.MessagingApiAPI
}

// NewLineProfileProvider creates a profile provider backed by the
// Messaging API client.
func NewLineProfileProvider(client *messaging_api.MessagingApiAPI) *LineProfileProvider {
	return &LineProfileProvider{client: client}
}

// FetchDisplayName returns the user's display name.
func (p *LineProfileProvider) FetchDisplayName(_ context.Context, userID string) (string, error) {
	profile, err := p.client.GetProfile(userID)
	if err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}
	return profile.DisplayName, nil
}
