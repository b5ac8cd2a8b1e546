package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tourbot/internal/adapters/observability"
	"tourbot/internal/domain"
)

// Prompts and notices shown to the user. Kept together so the flow
// code reads as a transition table.
const (
	promptLocation      = "Please enter a location:"
	promptChooseCity    = "Please choose the location:"
	promptUnknownCity   = "Unknown location. Please re-enter:"
	promptLettersOnly   = "Incorrect input. Please enter letters only:"
	promptDigitsOnly    = "Incorrect input. Please enter digits only:"
	promptMinPrice      = "Please enter the minimum price for your search:"
	promptMaxPrice      = "Please enter the maximum price for your search:"
	promptPriceOrder    = "The maximum cost should be greater than the minimum. Please re-enter:"
	promptMinDistance   = "Please enter the minimum distance from center:"
	promptMaxDistance   = "Please enter the maximum distance from center:"
	promptDistanceOrder = "The maximum distance should be greater than the minimum. Please re-enter:"
	promptOffersCount   = "How many hotel offers to display? (max 7):"
	promptOffersRange   = "Incorrect input. Please enter digit from 1 to 7:"
	promptGuests        = "Enter the number of persons:"
	promptGuestsMin     = "The number of persons should be greater than zero. Please re-enter:"
	promptCheckIn       = "Please enter the check-in date:"
	promptCheckOut      = "Please enter the check-out date:"
	promptPictures      = "Would you like to see pictures of the hotels?"
	promptPictureCount  = "How many pictures to display for each offer? (max 3)"
	promptUseCalendar   = "Please use the calendar above:"
	promptUseButtons    = "Please use the buttons above:"

	msgWelcome    = "Welcome to ENJOY TOURS agency! Please enter /help to see bot commands."
	msgFallback   = "Please enter /help to see bot commands."
	msgNoHistory  = "Data not found"
	retryLabel    = "-Retry search-"
)

// Callback tokens carried in inline-keyboard buttons.
const (
	tokenLocPrefix = "loc:"
	tokenLocRetry  = "loc:retry"
	tokenPicYes    = "pic:yes"
	tokenPicNo     = "pic:no"

	pickerCheckIn  = "ci"
	pickerCheckOut = "co"
)

// Event is one normalized inbound chat update. Exactly one of Command,
// Callback, or Text is meaningful.
type Event struct {
	Key               domain.SessionKey
	Text              string
	Command           string // without the leading slash
	Callback          string
	CallbackMessageID int
}

// Dispatcher drives one user through the dialogue: it validates each
// answer against the current step, advances or re-prompts, and hands
// the finished criteria to the orchestrator. Events for the same
// session key are handled strictly in sequence by the transport.
type Dispatcher struct {
	chat     domain.ChatChannel
	picker   domain.DatePicker
	provider domain.HotelSearchProvider
	sessions domain.SessionStore
	history  domain.HistoryStore
	orch     *Orchestrator
	dates    DateRangeSelector
	now      func() time.Time
}

func NewDispatcher(
	chat domain.ChatChannel,
	picker domain.DatePicker,
	provider domain.HotelSearchProvider,
	sessions domain.SessionStore,
	history domain.HistoryStore,
	orch *Orchestrator,
) *Dispatcher {
	return &Dispatcher{
		chat:     chat,
		picker:   picker,
		provider: provider,
		sessions: sessions,
		history:  history,
		orch:     orch,
		dates:    NewDateRangeSelector(),
		now:      time.Now,
	}
}

// Handle processes a single event to completion. Errors are returned
// for the transport to log; they never abort other sessions.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) error {
	switch {
	case ev.Command != "":
		observability.ObserveUpdate("command")
		return d.handleCommand(ctx, ev)
	case ev.Callback != "":
		observability.ObserveUpdate("callback")
		return d.handleCallback(ctx, ev)
	default:
		observability.ObserveUpdate("text")
		return d.handleText(ctx, ev)
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, ev Event) error {
	switch ev.Command {
	case "start":
		if err := d.sessions.Clear(ctx, ev.Key); err != nil {
			log.Error().Err(err).Msg("session clear failed")
		}
		return d.chat.SendText(ctx, ev.Key.ChatID, msgWelcome)
	case "help":
		if err := d.sessions.Clear(ctx, ev.Key); err != nil {
			log.Error().Err(err).Msg("session clear failed")
		}
		return d.chat.SendText(ctx, ev.Key.ChatID, helpText())
	case "lowprice":
		return d.startFlow(ctx, ev.Key, domain.FlowLowPrice)
	case "highprice":
		return d.startFlow(ctx, ev.Key, domain.FlowHighPrice)
	case "bestdeal":
		return d.startFlow(ctx, ev.Key, domain.FlowBestDeal)
	case "history":
		return d.sendHistory(ctx, ev.Key)
	default:
		return d.chat.SendText(ctx, ev.Key.ChatID, msgFallback)
	}
}

// startFlow replaces any previous session with a fresh one: same user,
// empty criteria, flow fixed for the life of the session.
func (d *Dispatcher) startFlow(ctx context.Context, key domain.SessionKey, flow domain.Flow) error {
	s := &domain.Session{
		Key:  key,
		Step: domain.StepLocation,
		Criteria: domain.SearchCriteria{
			Flow:      flow,
			Command:   "/" + string(flow),
			CreatedAt: d.now(),
		},
	}
	if err := d.sessions.Put(ctx, s); err != nil {
		return err
	}
	log.Info().Str("flow", string(flow)).Int64("user", key.UserID).Msg("flow started")
	return d.chat.SendText(ctx, key.ChatID, promptLocation)
}

func (d *Dispatcher) handleCallback(ctx context.Context, ev Event) error {
	s, ok, err := d.sessions.Get(ctx, ev.Key)
	if err != nil {
		return err
	}
	if !ok {
		// Stale button from a finished or reset session.
		return nil
	}

	cb := ev.Callback
	switch {
	case cb == tokenLocRetry:
		return d.startFlow(ctx, ev.Key, s.Criteria.Flow)

	case strings.HasPrefix(cb, tokenLocPrefix):
		return d.locationChosen(ctx, s, strings.TrimPrefix(cb, tokenLocPrefix))

	case cb == tokenPicYes:
		if s.Step != domain.StepPictureChoice {
			return nil
		}
		s.Step = domain.StepPictureCount
		if err := d.sessions.Put(ctx, s); err != nil {
			return err
		}
		return d.chat.SendText(ctx, ev.Key.ChatID, promptPictureCount)

	case cb == tokenPicNo:
		if s.Step != domain.StepPictureChoice {
			return nil
		}
		s.Criteria.PicturesPerOffer = 0
		return d.finish(ctx, s)

	case strings.HasPrefix(cb, "cal:"+pickerCheckIn+":"):
		return d.calendarEvent(ctx, s, ev, PhaseCheckIn)

	case strings.HasPrefix(cb, "cal:"+pickerCheckOut+":"):
		return d.calendarEvent(ctx, s, ev, PhaseCheckOut)
	}
	return nil
}

func (d *Dispatcher) locationChosen(ctx context.Context, s *domain.Session, regionID string) error {
	if s.Step != domain.StepLocationChoice {
		return nil
	}
	s.Criteria.LocationID = regionID
	log.Info().Str("region", regionID).Msg("location chosen")

	if s.Criteria.Flow == domain.FlowBestDeal {
		s.Step = domain.StepMinPrice
		if err := d.sessions.Put(ctx, s); err != nil {
			return err
		}
		return d.chat.SendText(ctx, s.Key.ChatID, promptMinPrice)
	}
	s.Step = domain.StepResultsCount
	if err := d.sessions.Put(ctx, s); err != nil {
		return err
	}
	return d.chat.SendText(ctx, s.Key.ChatID, promptOffersCount)
}

// calendarEvent routes one picker interaction through the two-phase
// range selector. Pending means the widget re-rendered itself; only a
// committed day advances the step.
func (d *Dispatcher) calendarEvent(ctx context.Context, s *domain.Session, ev Event, phase RangePhase) error {
	var min, max domain.Date
	switch phase {
	case PhaseCheckIn:
		if s.Step != domain.StepCheckIn {
			return nil
		}
		min, max = d.dates.CheckInWindow(domain.DateOf(d.now()))
	case PhaseCheckOut:
		if s.Step != domain.StepCheckOut {
			return nil
		}
		min, max = d.dates.CheckOutWindow(s.Range.CheckIn)
	}

	sel, err := d.picker.Resolve(ctx, s.Key.ChatID, ev.CallbackMessageID, ev.Callback, min, max)
	if err != nil {
		return err
	}
	complete := d.dates.Observe(&s.Range, phase, sel)
	if sel.Pending {
		return nil
	}

	if phase == PhaseCheckIn {
		s.Criteria.CheckIn = s.Range.CheckIn
		s.Step = domain.StepCheckOut
		if err := d.sessions.Put(ctx, s); err != nil {
			return err
		}
		if err := d.chat.SendText(ctx, s.Key.ChatID, promptCheckOut); err != nil {
			return err
		}
		coMin, coMax := d.dates.CheckOutWindow(s.Range.CheckIn)
		return d.picker.Present(ctx, s.Key.ChatID, pickerCheckOut, coMin, coMax)
	}

	if !complete {
		return nil
	}
	s.Criteria.CheckOut = s.Range.CheckOut
	s.Step = domain.StepPictureChoice
	if err := d.sessions.Put(ctx, s); err != nil {
		return err
	}
	return d.chat.PresentChoices(ctx, s.Key.ChatID, promptPictures, []domain.Choice{
		{Label: "Yes", Token: tokenPicYes},
		{Label: "No", Token: tokenPicNo},
	})
}

// finish hands the completed criteria to the orchestrator and clears
// the session. Clearing an already-clear session is a no-op.
func (d *Dispatcher) finish(ctx context.Context, s *domain.Session) error {
	results, err := d.orch.Run(ctx, s)
	if err != nil {
		log.Error().Err(err).Int64("user", s.Key.UserID).Msg("search run failed")
	}
	log.Info().Int("delivered", len(results)).Str("flow", string(s.Criteria.Flow)).Msg("search finished")
	if cerr := d.sessions.Clear(ctx, s.Key); cerr != nil {
		log.Error().Err(cerr).Msg("session clear failed")
	}
	return err
}

func (d *Dispatcher) sendHistory(ctx context.Context, key domain.SessionKey) error {
	entries, err := d.history.ListSearches(ctx, key.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user", key.UserID).Msg("history read failed")
		return d.chat.SendText(ctx, key.ChatID, msgNoHistory)
	}
	if len(entries) == 0 {
		return d.chat.SendText(ctx, key.ChatID, msgNoHistory)
	}
	for _, e := range entries {
		head := "Command: " + e.Command + "\nDate of search: " + e.At.Format("02.01.2006 - 15:04:05") + "\nHotels:"
		if err := d.chat.SendText(ctx, key.ChatID, head); err != nil {
			return err
		}
		for _, h := range e.Hotels {
			if err := d.chat.SendText(ctx, key.ChatID, "Name: "+h.Name+"\nAddress: "+h.Address); err != nil {
				return err
			}
		}
	}
	return nil
}
