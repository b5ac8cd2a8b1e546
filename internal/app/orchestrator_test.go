package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"tourbot/internal/domain"
)

func testSession(flow domain.Flow, wanted, pictures int) *domain.Session {
	return &domain.Session{
		Key: domain.SessionKey{UserID: 7, ChatID: 70},
		Criteria: domain.SearchCriteria{
			Flow:             flow,
			Command:          "/" + string(flow),
			LocationID:       "1234",
			ResultsWanted:    wanted,
			GuestCount:       2,
			CheckIn:          domain.Date{Year: 2026, Month: time.September, Day: 10},
			CheckOut:         domain.Date{Year: 2026, Month: time.September, Day: 13},
			PicturesPerOffer: pictures,
			CreatedAt:        time.Now(),
		},
	}
}

func detail(name string, images ...string) domain.HotelDetail {
	return domain.HotelDetail{Name: name, Address: name + " street 1", ImageURLs: images}
}

func TestRun_LowPrice_TruncatesAndPricesTotal(t *testing.T) {
	provider := &fakeProvider{
		cands: []domain.HotelCandidate{
			cand("a", "$40", 1.0),
			cand("b", "$50", 2.0),
			cand("c", "$60", 3.0),
			cand("d", "$70", 4.0),
			cand("e", "$80", 5.0),
		},
		details: map[string]domain.HotelDetail{
			"a": detail("Alpha"), "b": detail("Beta"), "c": detail("Gamma"),
			"d": detail("Delta"), "e": detail("Epsilon"),
		},
	}
	chat := &fakeChat{}
	history := &fakeHistory{}
	o := NewOrchestrator(provider, chat, history)

	s := testSession(domain.FlowLowPrice, 3, 0)
	results, err := o.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].HotelID != "a" || results[2].HotelID != "c" {
		t.Fatalf("wrong truncation order: %+v", results)
	}
	// 3 nights at $40
	if !strings.Contains(chat.texts[0].Text, "Total cost: $120") {
		t.Fatalf("total cost missing from: %q", chat.texts[0].Text)
	}
	if got := len(history.hotels); got != 3 {
		t.Fatalf("expected 3 history hotels, got %d", got)
	}
	if provider.lastReq.Sort != domain.SortPriceAscending || provider.lastReq.ResultsSize != 3 {
		t.Fatalf("unexpected request: %+v", provider.lastReq)
	}
}

func TestRun_HighPrice_SortsDescending(t *testing.T) {
	provider := &fakeProvider{
		cands:   []domain.HotelCandidate{cand("a", "$900", 1.0)},
		details: map[string]domain.HotelDetail{"a": detail("Ritz")},
	}
	o := NewOrchestrator(provider, &fakeChat{}, &fakeHistory{})

	if _, err := o.Run(context.Background(), testSession(domain.FlowHighPrice, 1, 0)); err != nil {
		t.Fatalf("err: %v", err)
	}
	if provider.lastReq.Sort != domain.SortPriceDescending {
		t.Fatalf("expected descending sort, got %v", provider.lastReq.Sort)
	}
}

func TestRun_BestDeal_FiltersBeforeTruncation(t *testing.T) {
	provider := &fakeProvider{
		cands: []domain.HotelCandidate{
			cand("a", "$40", 1.0),
			cand("b", "$75", 2.0),
			cand("c", "$150", 4.5),
			cand("d", "$300", 3.0),
		},
		details: map[string]domain.HotelDetail{"b": detail("Beta"), "c": detail("Gamma")},
	}
	chat := &fakeChat{}
	o := NewOrchestrator(provider, chat, &fakeHistory{})

	s := testSession(domain.FlowBestDeal, 5, 0)
	s.Criteria.PriceMin, s.Criteria.PriceMax = 50, 200
	s.Criteria.DistanceMin, s.Criteria.DistanceMax = 0.0, 5.0

	results, err := o.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(results) != 2 || results[0].HotelID != "b" || results[1].HotelID != "c" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if chat.texts[0].Text != "2 offers found according to your filters." {
		t.Fatalf("expected shortfall notice first, got %q", chat.texts[0].Text)
	}
	if provider.lastReq.ResultsSize != 400 || provider.lastReq.Price.Min != 50 {
		t.Fatalf("unexpected request: %+v", provider.lastReq)
	}
}

func TestRun_BestDeal_AllFilteredOut(t *testing.T) {
	provider := &fakeProvider{
		cands: []domain.HotelCandidate{
			cand("a", "$40", 1.0),
			cand("b", "$300", 9.0),
		},
	}
	chat := &fakeChat{}
	history := &fakeHistory{}
	o := NewOrchestrator(provider, chat, history)

	s := testSession(domain.FlowBestDeal, 3, 0)
	s.Criteria.PriceMin, s.Criteria.PriceMax = 50, 200
	s.Criteria.DistanceMin, s.Criteria.DistanceMax = 0.0, 5.0

	results, err := o.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if results != nil {
		t.Fatalf("expected no results, got %+v", results)
	}
	// only the shortfall notice, no second "not found" message
	if len(chat.texts) != 1 {
		t.Fatalf("expected exactly one message, got %+v", chat.texts)
	}
	if chat.texts[0].Text != "0 offers found according to your filters." {
		t.Fatalf("unexpected message: %q", chat.texts[0].Text)
	}
	// the search is still recorded, with no hotels
	if len(history.searches) != 1 || len(history.hotels) != 0 {
		t.Fatalf("unexpected history: searches=%+v hotels=%+v", history.searches, history.hotels)
	}
}

func TestRun_NoResults(t *testing.T) {
	chat := &fakeChat{}
	o := NewOrchestrator(&fakeProvider{searchErr: domain.ErrNoResults}, chat, &fakeHistory{})

	results, err := o.Run(context.Background(), testSession(domain.FlowLowPrice, 3, 0))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if results != nil {
		t.Fatalf("expected no results, got %+v", results)
	}
	if chat.lastText() != "Hotels are not found." {
		t.Fatalf("expected not-found message, got %q", chat.lastText())
	}
}

func TestRun_MalformedDetailSkipsCandidate(t *testing.T) {
	provider := &fakeProvider{
		cands: []domain.HotelCandidate{
			cand("bad", "$50", 1.0),
			cand("ok", "$60", 2.0),
		},
		details:   map[string]domain.HotelDetail{"ok": detail("Fine")},
		detailErr: map[string]error{"bad": domain.ErrMalformed},
	}
	o := NewOrchestrator(provider, &fakeChat{}, &fakeHistory{})

	results, err := o.Run(context.Background(), testSession(domain.FlowLowPrice, 2, 0))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(results) != 1 || results[0].HotelID != "ok" {
		t.Fatalf("malformed candidate must be skipped, got %+v", results)
	}
}

func TestRun_PicturesCappedByGallery(t *testing.T) {
	provider := &fakeProvider{
		cands:   []domain.HotelCandidate{cand("a", "$50", 1.0)},
		details: map[string]domain.HotelDetail{"a": detail("Solo", "http://img/1")},
	}
	chat := &fakeChat{}
	o := NewOrchestrator(provider, chat, &fakeHistory{})

	results, err := o.Run(context.Background(), testSession(domain.FlowLowPrice, 1, 2))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(chat.groups) != 1 || len(chat.groups[0]) != 1 {
		t.Fatalf("expected one group with one image, got %+v", chat.groups)
	}
	if results[0].ImagesSent != 1 || results[0].ImagesFailed != 0 {
		t.Fatalf("unexpected delivery result: %+v", results[0])
	}
	if chat.groups[0][0].Caption == "" {
		t.Fatal("caption must ride on the first image")
	}
}

func TestRun_GroupRejectedFallsBackPerImage(t *testing.T) {
	provider := &fakeProvider{
		cands: []domain.HotelCandidate{cand("a", "$50", 1.0)},
		details: map[string]domain.HotelDetail{
			"a": detail("Triple", "http://img/1", "http://img/2", "http://img/3"),
		},
	}
	chat := &fakeChat{
		rejectGroup: true,
		failSingle:  map[string]bool{"http://img/2": true},
	}
	o := NewOrchestrator(provider, chat, &fakeHistory{})

	results, err := o.Run(context.Background(), testSession(domain.FlowLowPrice, 1, 3))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	r := results[0]
	if r.Grouped {
		t.Fatal("group send should have been rejected")
	}
	if r.ImagesSent != 2 || r.ImagesFailed != 1 {
		t.Fatalf("expected 2 sent / 1 failed, got %+v", r)
	}
	if len(chat.singles) != 2 {
		t.Fatalf("expected 2 individual sends, got %d", len(chat.singles))
	}
	if chat.singles[0].Caption == "" {
		t.Fatal("first individual send must carry the caption")
	}
	if chat.singles[1].Caption != "" {
		t.Fatal("later sends must not repeat the caption")
	}
}

func TestRun_HistoryFailureStillDelivers(t *testing.T) {
	provider := &fakeProvider{
		cands:   []domain.HotelCandidate{cand("a", "$50", 1.0)},
		details: map[string]domain.HotelDetail{"a": detail("Alpha")},
	}
	chat := &fakeChat{}
	o := NewOrchestrator(provider, chat, &fakeHistory{failWrite: true})

	results, err := o.Run(context.Background(), testSession(domain.FlowLowPrice, 1, 0))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results must still be delivered, got %+v", results)
	}
	if len(chat.texts) != 1 {
		t.Fatalf("expected 1 delivered block, got %d", len(chat.texts))
	}
}
