package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tourbot/internal/adapters/observability"
)

// Client is a thin JSON client for the Telegram Bot API. Only the
// methods the bot actually uses are wired.
type Client struct {
	base string
	hc   *http.Client
}

func NewClient(base, token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	return &Client{
		base: strings.TrimRight(base, "/") + "/bot" + token,
		// Long polls run up to 50s; leave headroom.
		hc: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// apiError is a Bot API-level rejection (ok=false).
type apiError struct {
	Code        int
	Description string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("telegram: %d %s", e.Code, e.Description)
}

// call POSTs one Bot API method and decodes result into out (out may
// be nil when the result does not matter).
func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("telegram", method, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("bad response for %s: %w", method, err)
	}
	if !env.OK {
		return &apiError{Code: env.ErrorCode, Description: env.Description}
	}
	if out != nil {
		return json.Unmarshal(env.Result, out)
	}
	return nil
}

// ---- wire types (incoming) ----

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type User struct {
	ID int64 `json:"id"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message"`
	Data    string   `json:"data"`
}

// ---- wire types (outgoing) ----

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	Rows [][]inlineButton `json:"inline_keyboard"`
}

type inputMediaPhoto struct {
	Type    string `json:"type"`
	Media   string `json:"media"`
	Caption string `json:"caption,omitempty"`
}

// ---- methods ----

func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	var out []Update
	err := c.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         timeoutSec,
		"allowed_updates": []string{"message", "callback_query"},
	}, &out)
	return out, err
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *inlineKeyboard) error {
	p := map[string]any{"chat_id": chatID, "text": text}
	if markup != nil {
		p["reply_markup"] = markup
	}
	return c.call(ctx, "sendMessage", p, nil)
}

func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *inlineKeyboard) error {
	p := map[string]any{"chat_id": chatID, "message_id": messageID, "text": text}
	if markup != nil {
		p["reply_markup"] = markup
	}
	return c.call(ctx, "editMessageText", p, nil)
}

func (c *Client) SendMediaGroup(ctx context.Context, chatID int64, media []inputMediaPhoto) error {
	return c.call(ctx, "sendMediaGroup", map[string]any{"chat_id": chatID, "media": media}, nil)
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error {
	p := map[string]any{"chat_id": chatID, "photo": photoURL}
	if caption != "" {
		p["caption"] = caption
	}
	return c.call(ctx, "sendPhoto", p, nil)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, id string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": id}, nil)
}

type botCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

func (c *Client) SetMyCommands(ctx context.Context, commands []botCommand) error {
	return c.call(ctx, "setMyCommands", map[string]any{"commands": commands}, nil)
}
