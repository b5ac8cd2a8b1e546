package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"tourbot/internal/adapters/observability"
	"tourbot/internal/domain"
)

const msgNoHotels = "Hotels are not found."

// DeliveryResult records what happened to one hotel's result block, so
// callers and tests can assert partial-success counts instead of
// relying on silent suppression.
type DeliveryResult struct {
	HotelID      string
	Name         string
	Grouped      bool
	ImagesSent   int
	ImagesFailed int
	TextOnly     bool
}

// Orchestrator turns a completed SearchCriteria into delivered results:
// it builds the request, searches, filters (best-deal), fetches detail
// per candidate, records history, and hands formatted blocks to the
// chat channel.
type Orchestrator struct {
	provider domain.HotelSearchProvider
	chat     domain.ChatChannel
	history  domain.HistoryStore
}

func NewOrchestrator(p domain.HotelSearchProvider, ch domain.ChatChannel, h domain.HistoryStore) *Orchestrator {
	return &Orchestrator{provider: p, chat: ch, history: h}
}

// Run executes one finished search. A provider failure or an empty
// result set ends the session with a "not found" message and a nil
// result list; per-candidate failures are skipped, never fatal.
func (o *Orchestrator) Run(ctx context.Context, s *domain.Session) ([]DeliveryResult, error) {
	c := s.Criteria
	chatID := s.Key.ChatID

	cands, err := o.provider.Search(ctx, BuildRequest(c))
	if err != nil || len(cands) == 0 {
		if err != nil {
			log.Warn().Err(err).Str("flow", string(c.Flow)).Msg("search returned no usable results")
		}
		observability.ObserveSearch(string(c.Flow), "empty")
		return nil, o.chat.SendText(ctx, chatID, msgNoHotels)
	}

	chosen := cands
	if c.Flow == domain.FlowBestDeal {
		chosen = FilterByRange(cands, c.PriceMin, c.PriceMax, c.DistanceMin, c.DistanceMax)
		if len(chosen) < c.ResultsWanted {
			notice := fmt.Sprintf("%d offers found according to your filters.", len(chosen))
			if err := o.chat.SendText(ctx, chatID, notice); err != nil {
				log.Warn().Err(err).Msg("filter notice send failed")
			}
		}
	}
	if len(chosen) > c.ResultsWanted {
		chosen = chosen[:c.ResultsWanted]
	}
	// Zero passing candidates is already reported by the shortfall
	// notice; the search is still recorded in history, with no hotels.
	if len(chosen) == 0 {
		observability.ObserveSearch(string(c.Flow), "filtered_out")
	} else {
		observability.ObserveSearch(string(c.Flow), "ok")
	}

	// History append failures must not hide results from the user.
	searchRef, err := o.history.AppendSearch(ctx, s.Key.UserID, c.Command, c.CreatedAt)
	if err != nil {
		log.Error().Err(err).Int64("user", s.Key.UserID).Msg("history append failed")
		searchRef = 0
	}

	nights := c.StayNights()
	var results []DeliveryResult
	for _, cand := range chosen {
		detail, err := o.provider.Detail(ctx, cand.ID)
		if err != nil {
			log.Warn().Err(err).Str("hotel", cand.ID).Msg("detail fetch skipped")
			continue
		}
		block := formatResult(cand, detail, nights)

		if searchRef != 0 {
			if err := o.history.AppendHotel(ctx, searchRef, detail.Name, detail.Address); err != nil {
				log.Error().Err(err).Str("hotel", cand.ID).Msg("history hotel append failed")
			}
		}

		results = append(results, o.deliver(ctx, chatID, cand, detail, block, c.PicturesPerOffer))
	}
	return results, nil
}

// deliver sends one result block, as text or as a media group with the
// caption on the first image. A rejected grouped send falls back to
// individual sends; individual failures are counted, not propagated.
func (o *Orchestrator) deliver(ctx context.Context, chatID int64, cand domain.HotelCandidate, detail domain.HotelDetail, block string, pictures int) DeliveryResult {
	res := DeliveryResult{HotelID: cand.ID, Name: detail.Name}

	n := pictures
	if n > len(detail.ImageURLs) {
		n = len(detail.ImageURLs)
	}
	if n == 0 {
		res.TextOnly = true
		if err := o.chat.SendText(ctx, chatID, block); err != nil {
			log.Warn().Err(err).Str("hotel", cand.ID).Msg("text delivery failed")
		}
		observability.ObserveDelivery("text")
		return res
	}

	items := make([]domain.MediaItem, n)
	for i := 0; i < n; i++ {
		items[i] = domain.MediaItem{URL: detail.ImageURLs[i]}
	}
	items[0].Caption = block

	if err := o.chat.SendMediaGroup(ctx, chatID, items); err == nil {
		res.Grouped = true
		res.ImagesSent = n
		observability.ObserveDelivery("group")
		return res
	}

	observability.ObserveDelivery("fallback")
	for _, item := range items {
		if err := o.chat.SendSingle(ctx, chatID, item.URL, item.Caption); err != nil {
			res.ImagesFailed++
			log.Warn().Err(err).Str("hotel", cand.ID).Msg("single photo delivery failed")
			continue
		}
		res.ImagesSent++
	}
	return res
}

func formatResult(cand domain.HotelCandidate, detail domain.HotelDetail, nights int) string {
	total := "?"
	if price, err := ParsePrice(cand.DisplayPrice); err == nil {
		total = strconv.FormatFloat(price*float64(nights), 'f', -1, 64)
	}
	return fmt.Sprintf(
		"Link: https://hotels.com/h%s.Hotel-Information\nName: %s\nAddress: %s\nCost per night: %s\nTotal cost: $%s\nDistance from center: %g",
		cand.ID, detail.Name, detail.Address, cand.DisplayPrice, total, cand.Distance,
	)
}
