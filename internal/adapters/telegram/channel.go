package telegram

import (
	"context"
	"errors"
	"fmt"

	"tourbot/internal/domain"
)

// Channel adapts the Bot API client to the domain ChatChannel port.
type Channel struct {
	api *Client
}

func NewChannel(api *Client) *Channel { return &Channel{api: api} }

func (ch *Channel) SendText(ctx context.Context, chatID int64, text string) error {
	return ch.api.SendMessage(ctx, chatID, text, nil)
}

func (ch *Channel) PresentChoices(ctx context.Context, chatID int64, prompt string, options []domain.Choice) error {
	rows := make([][]inlineButton, 0, len(options))
	for _, o := range options {
		rows = append(rows, []inlineButton{{Text: o.Label, CallbackData: o.Token}})
	}
	return ch.api.SendMessage(ctx, chatID, prompt, &inlineKeyboard{Rows: rows})
}

// SendMediaGroup maps an API-level rejection to ErrDeliveryRejected so
// the orchestrator can fall back to individual sends.
func (ch *Channel) SendMediaGroup(ctx context.Context, chatID int64, items []domain.MediaItem) error {
	media := make([]inputMediaPhoto, len(items))
	for i, it := range items {
		media[i] = inputMediaPhoto{Type: "photo", Media: it.URL, Caption: it.Caption}
	}
	if err := ch.api.SendMediaGroup(ctx, chatID, media); err != nil {
		var ae *apiError
		if errors.As(err, &ae) {
			return fmt.Errorf("%w: %s", domain.ErrDeliveryRejected, ae.Description)
		}
		return err
	}
	return nil
}

func (ch *Channel) SendSingle(ctx context.Context, chatID int64, imageURL, caption string) error {
	return ch.api.SendPhoto(ctx, chatID, imageURL, caption)
}
