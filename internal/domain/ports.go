package domain

import (
	"context"
	"time"
)

// HotelSearchProvider is the third-party hotel API the bot searches
// against. Search returns ErrNoResults both for an empty result set and
// for a recognized provider-side downstream error; the caller treats
// the two identically.
type HotelSearchProvider interface {
	LookupLocations(ctx context.Context, query string) ([]Location, error)
	Search(ctx context.Context, req SearchRequest) ([]HotelCandidate, error)
	Detail(ctx context.Context, hotelID string) (HotelDetail, error)
}

// Choice is one inline option offered to the user.
type Choice struct {
	Label string
	Token string
}

// MediaItem is one image of a grouped send. The caption rides on the
// first item only.
type MediaItem struct {
	URL     string
	Caption string
}

// ChatChannel is the outbound chat transport.
type ChatChannel interface {
	SendText(ctx context.Context, chatID int64, text string) error
	PresentChoices(ctx context.Context, chatID int64, prompt string, options []Choice) error
	// SendMediaGroup returns ErrDeliveryRejected when the channel
	// refuses the grouped send; callers fall back to SendSingle.
	SendMediaGroup(ctx context.Context, chatID int64, items []MediaItem) error
	SendSingle(ctx context.Context, chatID int64, imageURL, caption string) error
}

// DateSelection is the outcome of one date-picker interaction: either
// the widget is still being navigated, or a day was committed.
type DateSelection struct {
	Pending bool
	Date    Date
}

// DatePicker renders a calendar widget and resolves its callback
// events. Navigation re-renders are the picker's own business; Resolve
// only reports Pending or Selected to the state machine.
type DatePicker interface {
	Present(ctx context.Context, chatID int64, pickerID string, min, max Date) error
	Resolve(ctx context.Context, chatID int64, messageID int, payload string, min, max Date) (DateSelection, error)
}

// SessionStore persists dialogue state per session key. Clear on an
// absent key is a no-op.
type SessionStore interface {
	Get(ctx context.Context, key SessionKey) (*Session, bool, error)
	Put(ctx context.Context, s *Session) error
	Clear(ctx context.Context, key SessionKey) error
}

// HistoryStore is the durable, insert-only search history.
type HistoryStore interface {
	AppendSearch(ctx context.Context, userID int64, command string, at time.Time) (int64, error)
	AppendHotel(ctx context.Context, searchRef int64, name, address string) error
	ListSearches(ctx context.Context, userID int64) ([]HistoryEntry, error)
}
