package domain

import (
	"fmt"
	"time"
)

// Flow selects one of the three guided search variants.
type Flow string

const (
	FlowLowPrice  Flow = "lowprice"
	FlowHighPrice Flow = "highprice"
	FlowBestDeal  Flow = "bestdeal"
)

// Step is the dialogue position inside a flow. The zero value means
// "no active session".
type Step int

const (
	StepNone Step = iota
	StepLocation
	StepLocationChoice
	StepMinPrice
	StepMaxPrice
	StepMinDistance
	StepMaxDistance
	StepResultsCount
	StepGuestCount
	StepCheckIn
	StepCheckOut
	StepPictureChoice
	StepPictureCount
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepLocation:
		return "location"
	case StepLocationChoice:
		return "location_choice"
	case StepMinPrice:
		return "min_price"
	case StepMaxPrice:
		return "max_price"
	case StepMinDistance:
		return "min_distance"
	case StepMaxDistance:
		return "max_distance"
	case StepResultsCount:
		return "results_count"
	case StepGuestCount:
		return "guest_count"
	case StepCheckIn:
		return "check_in"
	case StepCheckOut:
		return "check_out"
	case StepPictureChoice:
		return "picture_choice"
	case StepPictureCount:
		return "picture_count"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Date is a calendar day without a time zone. Sessions are JSON-encoded
// into the session store, so the fields stay exported.
type Date struct {
	Year  int        `json:"y"`
	Month time.Month `json:"m"`
	Day   int        `json:"d"`
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string { return d.Time().Format("2006-01-02") }

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()) / (24 * time.Hour))
}

func (d Date) Before(other Date) bool { return d.Time().Before(other.Time()) }

func (d Date) After(other Date) bool { return d.Time().After(other.Time()) }

// SearchCriteria is the per-session record filled in as the dialogue
// advances. It is consumed exactly once when the flow completes.
type SearchCriteria struct {
	Flow       Flow      `json:"flow"`
	Command    string    `json:"command"`
	LocationID string    `json:"location_id"`

	// Price and distance bands are only used by the best-deal flow.
	PriceMin    int     `json:"price_min"`
	PriceMax    int     `json:"price_max"`
	DistanceMin float64 `json:"distance_min"`
	DistanceMax float64 `json:"distance_max"`

	ResultsWanted    int  `json:"results_wanted"`
	GuestCount       int  `json:"guest_count"`
	CheckIn          Date `json:"check_in"`
	CheckOut         Date `json:"check_out"`
	PicturesPerOffer int  `json:"pictures_per_offer"`

	CreatedAt time.Time `json:"created_at"`
}

// StayNights is the length of stay in nights; at least 1 once both
// dates are committed (the check-out picker never offers an earlier day).
func (c SearchCriteria) StayNights() int {
	return c.CheckIn.DaysUntil(c.CheckOut)
}

// Location is one candidate returned by a free-text region lookup.
type Location struct {
	ID   string
	Name string
	Kind string // only "CITY" entries are offered to the user
}

const LocationKindCity = "CITY"

// HotelCandidate is one entry of a search response, pre-detail-fetch.
type HotelCandidate struct {
	ID           string
	DisplayPrice string // provider-formatted, e.g. "$75"
	Distance     float64
}

// HotelDetail is the secondary per-hotel payload.
type HotelDetail struct {
	Name      string
	Address   string
	ImageURLs []string
}

// SortOrder selects the provider-side result ordering.
type SortOrder string

const (
	SortPriceAscending  SortOrder = "PRICE_LOW_TO_HIGH"
	SortPriceDescending SortOrder = "PRICE_HIGH_TO_LOW"
)

// PriceClamp is the provider-side price window of a search request.
type PriceClamp struct {
	Min int
	Max int
}

// SearchRequest is the finalized outbound search payload. It is built
// fresh per session; nothing here is shared across sessions.
type SearchRequest struct {
	RegionID    string
	CheckIn     Date
	CheckOut    Date
	Adults      int
	ResultsSize int
	Sort        SortOrder
	Price       PriceClamp
}
