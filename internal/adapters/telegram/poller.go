package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tourbot/internal/app"
	"tourbot/internal/domain"
)

const pollTimeoutSec = 50

// Poller long-polls getUpdates and fans events out to the dispatcher.
// Events for one (user, chat) pair run strictly in arrival order; pairs
// are independent, so one session's slow provider call never blocks
// another. A weighted semaphore caps total in-flight sessions.
type Poller struct {
	api        *Client
	dispatcher *app.Dispatcher
	sem        *semaphore.Weighted

	mu      sync.Mutex
	pending map[domain.SessionKey][]app.Event
	active  map[domain.SessionKey]bool
}

func NewPoller(api *Client, d *app.Dispatcher, maxSessions int) *Poller {
	if maxSessions <= 0 {
		maxSessions = 64
	}
	return &Poller{
		api:        api,
		dispatcher: d,
		sem:        semaphore.NewWeighted(int64(maxSessions)),
		pending:    map[domain.SessionKey][]app.Event{},
		active:     map[domain.SessionKey]bool{},
	}
}

// Run polls until ctx is canceled.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := p.api.GetUpdates(ctx, offset, pollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("getUpdates failed")
			if !sleep(ctx, 3*time.Second) {
				return ctx.Err()
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			ev, ok := p.toEvent(ctx, u)
			if !ok {
				continue
			}
			p.enqueue(ctx, ev)
		}
	}
}

// toEvent normalizes one raw update. Callback queries are acknowledged
// immediately so the client stops its spinner.
func (p *Poller) toEvent(ctx context.Context, u Update) (app.Event, bool) {
	if cq := u.CallbackQuery; cq != nil && cq.Message != nil {
		if err := p.api.AnswerCallbackQuery(ctx, cq.ID); err != nil {
			log.Debug().Err(err).Msg("answerCallbackQuery failed")
		}
		return app.Event{
			Key:               domain.SessionKey{UserID: cq.From.ID, ChatID: cq.Message.Chat.ID},
			Callback:          cq.Data,
			CallbackMessageID: cq.Message.MessageID,
		}, true
	}
	if m := u.Message; m != nil && m.From != nil && m.Text != "" {
		ev := app.Event{
			Key:  domain.SessionKey{UserID: m.From.ID, ChatID: m.Chat.ID},
			Text: m.Text,
		}
		if strings.HasPrefix(m.Text, "/") {
			cmd := strings.Fields(m.Text)[0]
			cmd = strings.TrimPrefix(cmd, "/")
			// Strip the @botname suffix used in group chats.
			if i := strings.Index(cmd, "@"); i >= 0 {
				cmd = cmd[:i]
			}
			ev.Command = cmd
			ev.Text = ""
		}
		return ev, true
	}
	return app.Event{}, false
}

// enqueue appends the event to its session queue and makes sure one
// worker is draining that queue.
func (p *Poller) enqueue(ctx context.Context, ev app.Event) {
	p.mu.Lock()
	p.pending[ev.Key] = append(p.pending[ev.Key], ev)
	if !p.active[ev.Key] {
		p.active[ev.Key] = true
		go p.drain(ctx, ev.Key)
	}
	p.mu.Unlock()
}

func (p *Poller) drain(ctx context.Context, key domain.SessionKey) {
	for {
		p.mu.Lock()
		q := p.pending[key]
		if len(q) == 0 {
			delete(p.pending, key)
			delete(p.active, key)
			p.mu.Unlock()
			return
		}
		ev := q[0]
		p.pending[key] = q[1:]
		p.mu.Unlock()

		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}
		p.handle(ctx, ev)
		p.sem.Release(1)
	}
}

// handle isolates one session's failures from every other session.
func (p *Poller) handle(ctx context.Context, ev app.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Int64("user", ev.Key.UserID).Msg("session handler panicked")
		}
	}()
	if err := p.dispatcher.Handle(ctx, ev); err != nil {
		log.Error().Err(err).Int64("user", ev.Key.UserID).Msg("update handling failed")
	}
}

// RegisterCommands publishes the command menu.
func (p *Poller) RegisterCommands(ctx context.Context) error {
	cmds := make([]botCommand, 0, len(app.DefaultCommands))
	for _, c := range app.DefaultCommands {
		cmds = append(cmds, botCommand{Command: c.Name, Description: c.Description})
	}
	return p.api.SetMyCommands(ctx, cmds)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
