package app

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"tourbot/internal/domain"
)

// handleText advances the state machine on a free-text answer. Invalid
// input always re-prompts and leaves the step unchanged; it is never a
// system failure.
func (d *Dispatcher) handleText(ctx context.Context, ev Event) error {
	s, ok, err := d.sessions.Get(ctx, ev.Key)
	if err != nil {
		return err
	}
	if !ok {
		return d.chat.SendText(ctx, ev.Key.ChatID, msgFallback)
	}

	chatID := ev.Key.ChatID
	text := strings.TrimSpace(ev.Text)

	switch s.Step {
	case domain.StepLocation, domain.StepLocationChoice:
		// Free text while the city keyboard is up restarts the lookup.
		return d.lookupLocation(ctx, s, text)

	case domain.StepMinPrice:
		n, ok := parseDigits(text)
		if !ok {
			return d.chat.SendText(ctx, chatID, promptDigitsOnly)
		}
		s.Criteria.PriceMin = n
		s.Step = domain.StepMaxPrice
		if err := d.sessions.Put(ctx, s); err != nil {
			return err
		}
		return d.chat.SendText(ctx, chatID, promptMaxPrice)

	case domain.StepMaxPrice:
		n, ok := parseDigits(text)
		if !ok {
			return d.chat.SendText(ctx, chatID, promptDigitsOnly)
		}
		if n <= s.Criteria.PriceMin {
			return d.chat.SendText(ctx, chatID, promptPriceOrder)
		}
		s.Criteria.PriceMax = n
		s.Step = domain.StepMinDistance
		if err := d.sessions.Put(ctx, s); err != nil {
			return err
		}
		return d.chat.SendText(ctx, chatID, promptMinDistance)

	case domain.StepMinDistance:
		f, ok := parseDistance(text)
		if !ok {
			return d.chat.SendText(ctx, chatID, promptDigitsOnly)
		}
		s.Criteria.DistanceMin = f
		s.Step = domain.StepMaxDistance
		if err := d.sessions.Put(ctx, s); err != nil {
			return err
		}
		return d.chat.SendText(ctx, chatID, promptMaxDistance)

	case domain.StepMaxDistance:
		f, ok := parseDistance(text)
		if !ok {
			return d.chat.SendText(ctx, chatID, promptDigitsOnly)
		}
		if f <= s.Criteria.DistanceMin {
			return d.chat.SendText(ctx, chatID, promptDistanceOrder)
		}
		s.Criteria.DistanceMax = f
		s.Step = domain.StepResultsCount
		if err := d.sessions.Put(ctx, s); err != nil {
			return err
		}
		return d.chat.SendText(ctx, chatID, promptOffersCount)

	case domain.StepResultsCount:
		n, ok := parseDigits(text)
		if !ok || n < 1 || n > 7 {
			return d.chat.SendText(ctx, chatID, promptOffersRange)
		}
		s.Criteria.ResultsWanted = n
		s.Step = domain.StepGuestCount
		if err := d.sessions.Put(ctx, s); err != nil {
			return err
		}
		return d.chat.SendText(ctx, chatID, promptGuests)

	case domain.StepGuestCount:
		n, ok := parseDigits(text)
		if !ok {
			return d.chat.SendText(ctx, chatID, promptDigitsOnly)
		}
		if n < 1 {
			return d.chat.SendText(ctx, chatID, promptGuestsMin)
		}
		s.Criteria.GuestCount = n
		s.Step = domain.StepCheckIn
		if err := d.sessions.Put(ctx, s); err != nil {
			return err
		}
		if err := d.chat.SendText(ctx, chatID, promptCheckIn); err != nil {
			return err
		}
		min, max := d.dates.CheckInWindow(domain.DateOf(d.now()))
		return d.picker.Present(ctx, chatID, pickerCheckIn, min, max)

	case domain.StepCheckIn, domain.StepCheckOut:
		return d.chat.SendText(ctx, chatID, promptUseCalendar)

	case domain.StepPictureChoice:
		return d.chat.SendText(ctx, chatID, promptUseButtons)

	case domain.StepPictureCount:
		n, ok := parseDigits(text)
		if !ok || n < 1 || n > 3 {
			return d.chat.SendText(ctx, chatID, promptDigitsOnly)
		}
		s.Criteria.PicturesPerOffer = n
		return d.finish(ctx, s)
	}

	return d.chat.SendText(ctx, chatID, msgFallback)
}

// lookupLocation resolves a free-text city name against the provider
// and offers only CITY-kind matches. Zero matches re-prompt without
// advancing the step.
func (d *Dispatcher) lookupLocation(ctx context.Context, s *domain.Session, text string) error {
	chatID := s.Key.ChatID
	if !isAlpha(text) {
		return d.chat.SendText(ctx, chatID, promptLettersOnly)
	}

	locs, err := d.provider.LookupLocations(ctx, capitalize(text))
	if err != nil {
		log.Warn().Err(err).Str("query", text).Msg("location lookup failed")
		return d.chat.SendText(ctx, chatID, promptUnknownCity)
	}

	var options []domain.Choice
	for _, l := range locs {
		if l.Kind != domain.LocationKindCity {
			continue
		}
		options = append(options, domain.Choice{Label: l.Name, Token: tokenLocPrefix + l.ID})
	}
	if len(options) == 0 {
		log.Info().Str("query", text).Msg("unknown location entered")
		return d.chat.SendText(ctx, chatID, promptUnknownCity)
	}
	options = append(options, domain.Choice{Label: retryLabel, Token: tokenLocRetry})

	s.Step = domain.StepLocationChoice
	if err := d.sessions.Put(ctx, s); err != nil {
		return err
	}
	return d.chat.PresentChoices(ctx, chatID, promptChooseCity, options)
}

// parseDigits accepts only unsigned decimal digit strings.
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseDistance accepts digits with at most one fractional part.
// ParseFloat alone is too permissive here: it takes "inf", "nan" and
// exponents, which are not answers a user types by accident.
func parseDistance(s string) (float64, bool) {
	if s == "" || s == "." {
		return 0, false
	}
	dot := false
	for _, r := range s {
		if r == '.' {
			if dot {
				return 0, false
			}
			dot = true
			continue
		}
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
