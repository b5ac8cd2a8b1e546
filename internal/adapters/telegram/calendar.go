package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tourbot/internal/domain"
)

// Calendar renders a month-grid date picker as an inline keyboard and
// resolves its callbacks. Days outside the allowed window get inert
// buttons, so an out-of-range selection is unreachable by construction.
type Calendar struct {
	api *Client
}

func NewCalendar(api *Client) *Calendar { return &Calendar{api: api} }

// Callback payload grammar: "cal:<picker>:day:2006-01-02",
// "cal:<picker>:nav:2006-01", "cal:<picker>:noop".
const calPrefix = "cal:"

func calToken(pickerID string, parts ...string) string {
	return calPrefix + pickerID + ":" + strings.Join(parts, ":")
}

func (c *Calendar) Present(ctx context.Context, chatID int64, pickerID string, min, max domain.Date) error {
	kb := monthKeyboard(pickerID, min.Year, min.Month, min, max)
	return c.api.SendMessage(ctx, chatID, "Please select a day:", &kb)
}

// Resolve handles one picker callback. Navigation and inert presses
// come back as Pending; a committed day collapses the widget into a
// plain confirmation message.
func (c *Calendar) Resolve(ctx context.Context, chatID int64, messageID int, payload string, min, max domain.Date) (domain.DateSelection, error) {
	op, arg, err := splitPayload(payload)
	if err != nil {
		return domain.DateSelection{}, err
	}
	pickerID := pickerOf(payload)

	switch op {
	case "noop":
		return domain.DateSelection{Pending: true}, nil

	case "nav":
		t, err := time.Parse("2006-01", arg)
		if err != nil {
			return domain.DateSelection{}, fmt.Errorf("bad month payload %q: %w", arg, err)
		}
		kb := monthKeyboard(pickerID, t.Year(), t.Month(), min, max)
		if err := c.api.EditMessageText(ctx, chatID, messageID, "Please select a day:", &kb); err != nil {
			return domain.DateSelection{}, err
		}
		return domain.DateSelection{Pending: true}, nil

	case "day":
		d, err := domain.ParseDate(arg)
		if err != nil {
			return domain.DateSelection{}, fmt.Errorf("bad day payload %q: %w", arg, err)
		}
		// A stale button from an earlier window stays pending.
		if d.Before(min) || d.After(max) {
			return domain.DateSelection{Pending: true}, nil
		}
		if err := c.api.EditMessageText(ctx, chatID, messageID, "Date selected: "+d.String(), nil); err != nil {
			return domain.DateSelection{}, err
		}
		return domain.DateSelection{Date: d}, nil
	}
	return domain.DateSelection{}, fmt.Errorf("unknown calendar op %q", op)
}

func pickerOf(payload string) string {
	rest := strings.TrimPrefix(payload, calPrefix)
	if i := strings.Index(rest, ":"); i >= 0 {
		return rest[:i]
	}
	return rest
}

func splitPayload(payload string) (op, arg string, err error) {
	rest := strings.TrimPrefix(payload, calPrefix)
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("bad calendar payload %q", payload)
	}
	op = parts[1]
	if len(parts) == 3 {
		arg = parts[2]
	}
	return op, arg, nil
}

// monthKeyboard builds one month view. Only days inside [min, max] are
// wired; everything else is inert.
func monthKeyboard(pickerID string, year int, month time.Month, min, max domain.Date) inlineKeyboard {
	noop := calToken(pickerID, "noop")
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	label := first.Format("January 2006")

	header := []inlineButton{
		{Text: " ", CallbackData: noop},
		{Text: label, CallbackData: noop},
		{Text: " ", CallbackData: noop},
	}
	prev := first.AddDate(0, -1, 0)
	if !endOfMonth(prev).Before(min.Time()) {
		header[0] = inlineButton{Text: "<", CallbackData: calToken(pickerID, "nav", prev.Format("2006-01"))}
	}
	next := first.AddDate(0, 1, 0)
	if !next.After(max.Time()) {
		header[2] = inlineButton{Text: ">", CallbackData: calToken(pickerID, "nav", next.Format("2006-01"))}
	}

	var week []inlineButton
	for _, d := range []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"} {
		week = append(week, inlineButton{Text: d, CallbackData: noop})
	}

	rows := [][]inlineButton{header, week}
	row := make([]inlineButton, 0, 7)
	// Monday-based leading blanks.
	for i := 0; i < (int(first.Weekday())+6)%7; i++ {
		row = append(row, inlineButton{Text: " ", CallbackData: noop})
	}
	days := endOfMonth(first).Day()
	for day := 1; day <= days; day++ {
		d := domain.Date{Year: year, Month: month, Day: day}
		btn := inlineButton{Text: " ", CallbackData: noop}
		if !d.Before(min) && !d.After(max) {
			btn = inlineButton{
				Text:         fmt.Sprintf("%d", day),
				CallbackData: calToken(pickerID, "day", d.String()),
			}
		}
		row = append(row, btn)
		if len(row) == 7 {
			rows = append(rows, row)
			row = make([]inlineButton, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, inlineButton{Text: " ", CallbackData: noop})
		}
		rows = append(rows, row)
	}
	return inlineKeyboard{Rows: rows}
}

func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
}
