package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tourbot/internal/domain"
)

// ---- fakes shared by the app tests ----

type sentText struct {
	ChatID int64
	Text   string
}

type fakeChat struct {
	texts   []sentText
	choices [][]domain.Choice
	prompts []string
	groups  [][]domain.MediaItem
	singles []domain.MediaItem

	rejectGroup bool
	failSingle  map[string]bool
}

func (c *fakeChat) SendText(ctx context.Context, chatID int64, text string) error {
	c.texts = append(c.texts, sentText{chatID, text})
	return nil
}

func (c *fakeChat) PresentChoices(ctx context.Context, chatID int64, prompt string, options []domain.Choice) error {
	c.prompts = append(c.prompts, prompt)
	c.choices = append(c.choices, options)
	return nil
}

func (c *fakeChat) SendMediaGroup(ctx context.Context, chatID int64, items []domain.MediaItem) error {
	if c.rejectGroup {
		return domain.ErrDeliveryRejected
	}
	c.groups = append(c.groups, items)
	return nil
}

func (c *fakeChat) SendSingle(ctx context.Context, chatID int64, imageURL, caption string) error {
	if c.failSingle[imageURL] {
		return errors.New("send failed")
	}
	c.singles = append(c.singles, domain.MediaItem{URL: imageURL, Caption: caption})
	return nil
}

func (c *fakeChat) lastText() string {
	if len(c.texts) == 0 {
		return ""
	}
	return c.texts[len(c.texts)-1].Text
}

type fakeProvider struct {
	locations []domain.Location
	lookupErr error

	cands     []domain.HotelCandidate
	searchErr error
	lastReq   domain.SearchRequest

	details   map[string]domain.HotelDetail
	detailErr map[string]error
}

func (p *fakeProvider) LookupLocations(ctx context.Context, query string) ([]domain.Location, error) {
	return p.locations, p.lookupErr
}

func (p *fakeProvider) Search(ctx context.Context, req domain.SearchRequest) ([]domain.HotelCandidate, error) {
	p.lastReq = req
	return p.cands, p.searchErr
}

func (p *fakeProvider) Detail(ctx context.Context, hotelID string) (domain.HotelDetail, error) {
	if err := p.detailErr[hotelID]; err != nil {
		return domain.HotelDetail{}, err
	}
	d, ok := p.details[hotelID]
	if !ok {
		return domain.HotelDetail{}, domain.ErrNotFound
	}
	return d, nil
}

type appendedHotel struct {
	Ref           int64
	Name, Address string
}

type fakeHistory struct {
	nextRef   int64
	searches  []string
	hotels    []appendedHotel
	entries   []domain.HistoryEntry
	failWrite bool
}

func (h *fakeHistory) AppendSearch(ctx context.Context, userID int64, command string, at time.Time) (int64, error) {
	if h.failWrite {
		return 0, errors.New("storage down")
	}
	h.nextRef++
	h.searches = append(h.searches, command)
	return h.nextRef, nil
}

func (h *fakeHistory) AppendHotel(ctx context.Context, searchRef int64, name, address string) error {
	if h.failWrite {
		return errors.New("storage down")
	}
	h.hotels = append(h.hotels, appendedHotel{searchRef, name, address})
	return nil
}

func (h *fakeHistory) ListSearches(ctx context.Context, userID int64) ([]domain.HistoryEntry, error) {
	return h.entries, nil
}

// memStore round-trips sessions through JSON the way the real store
// does, so pointer aliasing cannot hide missing Puts.
type memStore struct {
	m map[domain.SessionKey][]byte
}

func newMemStore() *memStore { return &memStore{m: map[domain.SessionKey][]byte{}} }

func (s *memStore) Get(ctx context.Context, key domain.SessionKey) (*domain.Session, bool, error) {
	b, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	var sess domain.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, false, err
	}
	return &sess, true, nil
}

func (s *memStore) Put(ctx context.Context, sess *domain.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.m[sess.Key] = b
	return nil
}

func (s *memStore) Clear(ctx context.Context, key domain.SessionKey) error {
	delete(s.m, key)
	return nil
}

// fakePicker scripts selections by payload.
type fakePicker struct {
	presented []string // pickerIDs in presentation order
	byPayload map[string]domain.DateSelection
}

func (p *fakePicker) Present(ctx context.Context, chatID int64, pickerID string, min, max domain.Date) error {
	p.presented = append(p.presented, pickerID)
	return nil
}

func (p *fakePicker) Resolve(ctx context.Context, chatID int64, messageID int, payload string, min, max domain.Date) (domain.DateSelection, error) {
	if sel, ok := p.byPayload[payload]; ok {
		return sel, nil
	}
	return domain.DateSelection{Pending: true}, nil
}
