package app

import "tourbot/internal/domain"

// Default price window sent for the flows that do not filter by price
// themselves; matches the provider's accepted bounds.
const (
	defaultPriceMin = 10
	defaultPriceMax = 30000
)

// bestDealWindow is how many candidates the best-deal flow pulls
// before filtering locally by price and distance.
const bestDealWindow = 400

// BuildRequest finalizes the outbound search payload from completed
// criteria. The builder is invoked once per session; no request state
// is shared across sessions.
func BuildRequest(c domain.SearchCriteria) domain.SearchRequest {
	req := domain.SearchRequest{
		RegionID: c.LocationID,
		CheckIn:  c.CheckIn,
		CheckOut: c.CheckOut,
		Adults:   c.GuestCount,
	}
	switch c.Flow {
	case domain.FlowBestDeal:
		req.Sort = domain.SortPriceAscending
		req.ResultsSize = bestDealWindow
		req.Price = domain.PriceClamp{Min: c.PriceMin, Max: c.PriceMax}
	case domain.FlowHighPrice:
		req.Sort = domain.SortPriceDescending
		req.ResultsSize = c.ResultsWanted
		req.Price = domain.PriceClamp{Min: defaultPriceMin, Max: defaultPriceMax}
	default:
		req.Sort = domain.SortPriceAscending
		req.ResultsSize = c.ResultsWanted
		req.Price = domain.PriceClamp{Min: defaultPriceMin, Max: defaultPriceMax}
	}
	return req
}
