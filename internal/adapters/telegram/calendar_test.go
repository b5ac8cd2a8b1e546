package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tourbot/internal/domain"
)

func date(y int, m int, d int) domain.Date {
	return domain.Date{Year: y, Month: time.Month(m), Day: d}
}

type botCall struct {
	Method  string
	Payload map[string]any
}

// botServer records Bot API calls and answers ok.
func botServer(t *testing.T) (*Client, *[]botCall) {
	t.Helper()
	var calls []botCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]any
		json.NewDecoder(r.Body).Decode(&p)
		parts := strings.Split(r.URL.Path, "/")
		calls = append(calls, botCall{Method: parts[len(parts)-1], Payload: p})
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, "token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, &calls
}

func keyboardButtons(kb inlineKeyboard) map[string]string {
	out := map[string]string{}
	for _, row := range kb.Rows {
		for _, b := range row {
			if b.Text != " " {
				out[b.Text] = b.CallbackData
			}
		}
	}
	return out
}

func TestMonthKeyboard_OnlyWindowDaysWired(t *testing.T) {
	min, max := date(2026, 9, 10), date(2026, 9, 20)
	kb := monthKeyboard("ci", 2026, time.September, min, max)

	btns := keyboardButtons(kb)
	if _, ok := btns["9"]; ok {
		t.Fatal("day before the window must be inert")
	}
	if _, ok := btns["21"]; ok {
		t.Fatal("day after the window must be inert")
	}
	if got := btns["10"]; got != "cal:ci:day:2026-09-10" {
		t.Fatalf("day 10 token = %q", got)
	}
	if got := btns["20"]; got != "cal:ci:day:2026-09-20" {
		t.Fatalf("day 20 token = %q", got)
	}
}

func TestMonthKeyboard_NavigationBounded(t *testing.T) {
	min, max := date(2026, 9, 10), date(2026, 10, 5)

	sept := keyboardButtons(monthKeyboard("ci", 2026, time.September, min, max))
	if _, ok := sept["<"]; ok {
		t.Fatal("no back navigation before the window start")
	}
	if got := sept[">"]; got != "cal:ci:nav:2026-10" {
		t.Fatalf("forward nav token = %q", got)
	}

	oct := keyboardButtons(monthKeyboard("ci", 2026, time.October, min, max))
	if got := oct["<"]; got != "cal:ci:nav:2026-09" {
		t.Fatalf("back nav token = %q", got)
	}
	if _, ok := oct[">"]; ok {
		t.Fatal("no forward navigation past the window end")
	}
}

func TestMonthKeyboard_RowsAreWeeks(t *testing.T) {
	kb := monthKeyboard("ci", 2026, time.September, date(2026, 9, 1), date(2026, 9, 30))
	for i, row := range kb.Rows {
		if len(row) != 7 && i != 0 {
			t.Fatalf("row %d has %d buttons", i, len(row))
		}
	}
}

func TestSplitPayload(t *testing.T) {
	op, arg, err := splitPayload("cal:ci:day:2026-09-10")
	if err != nil || op != "day" || arg != "2026-09-10" {
		t.Fatalf("got %q %q %v", op, arg, err)
	}
	op, arg, err = splitPayload("cal:co:noop")
	if err != nil || op != "noop" || arg != "" {
		t.Fatalf("got %q %q %v", op, arg, err)
	}
	if _, _, err := splitPayload("cal:broken"); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

func TestResolve_DaySelectionEditsMessage(t *testing.T) {
	api, calls := botServer(t)
	cal := NewCalendar(api)

	sel, err := cal.Resolve(context.Background(), 10, 99, "cal:ci:day:2026-09-10", date(2026, 9, 1), date(2027, 3, 1))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if sel.Pending || sel.Date != date(2026, 9, 10) {
		t.Fatalf("unexpected selection: %+v", sel)
	}
	if len(*calls) != 1 || (*calls)[0].Method != "editMessageText" {
		t.Fatalf("expected one editMessageText call, got %+v", *calls)
	}
	if got := (*calls)[0].Payload["text"]; got != "Date selected: 2026-09-10" {
		t.Fatalf("confirmation text = %v", got)
	}
}

func TestResolve_OutOfWindowDayStaysPending(t *testing.T) {
	api, calls := botServer(t)
	cal := NewCalendar(api)

	sel, err := cal.Resolve(context.Background(), 10, 99, "cal:ci:day:2026-01-01", date(2026, 9, 1), date(2027, 3, 1))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !sel.Pending {
		t.Fatalf("stale day must stay pending, got %+v", sel)
	}
	if len(*calls) != 0 {
		t.Fatalf("no API call expected, got %+v", *calls)
	}
}

func TestResolve_NavRedrawsKeyboard(t *testing.T) {
	api, calls := botServer(t)
	cal := NewCalendar(api)

	sel, err := cal.Resolve(context.Background(), 10, 99, "cal:ci:nav:2026-10", date(2026, 9, 1), date(2027, 3, 1))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !sel.Pending {
		t.Fatalf("navigation must stay pending, got %+v", sel)
	}
	if len(*calls) != 1 || (*calls)[0].Method != "editMessageText" {
		t.Fatalf("expected keyboard redraw, got %+v", *calls)
	}
	if (*calls)[0].Payload["reply_markup"] == nil {
		t.Fatal("redraw must carry a new keyboard")
	}
}

func TestResolve_Noop(t *testing.T) {
	api, calls := botServer(t)
	cal := NewCalendar(api)

	sel, err := cal.Resolve(context.Background(), 10, 99, "cal:ci:noop", date(2026, 9, 1), date(2027, 3, 1))
	if err != nil || !sel.Pending {
		t.Fatalf("noop must stay pending: %+v %v", sel, err)
	}
	if len(*calls) != 0 {
		t.Fatalf("no API call expected, got %+v", *calls)
	}
}

func TestPresent_SendsFirstMonthOfWindow(t *testing.T) {
	api, calls := botServer(t)
	cal := NewCalendar(api)

	if err := cal.Present(context.Background(), 10, "co", date(2026, 9, 11), date(2027, 3, 9)); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(*calls) != 1 || (*calls)[0].Method != "sendMessage" {
		t.Fatalf("expected sendMessage, got %+v", *calls)
	}
	if (*calls)[0].Payload["reply_markup"] == nil {
		t.Fatal("picker message must carry the keyboard")
	}
}
