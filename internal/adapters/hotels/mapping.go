package hotels

import (
	"fmt"
	"strconv"
	"strings"

	"tourbot/internal/domain"
)

// Wire payloads mirror the provider's documented request bodies.

type dateParts struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

type room struct {
	Adults int `json:"adults"`
}

type priceFilter struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type listFilters struct {
	Price priceFilter `json:"price"`
}

type listRequest struct {
	Currency             string         `json:"currency"`
	Eapid                int            `json:"eapid"`
	Locale               string         `json:"locale"`
	SiteID               int            `json:"siteId"`
	Destination          map[string]any `json:"destination"`
	CheckInDate          dateParts      `json:"checkInDate"`
	CheckOutDate         dateParts      `json:"checkOutDate"`
	Rooms                []room         `json:"rooms"`
	ResultsStartingIndex int            `json:"resultsStartingIndex"`
	ResultsSize          int            `json:"resultsSize"`
	Sort                 string         `json:"sort"`
	Filters              listFilters    `json:"filters"`
}

type detailRequest struct {
	Currency   string `json:"currency"`
	Eapid      int    `json:"eapid"`
	Locale     string `json:"locale"`
	SiteID     int    `json:"siteId"`
	PropertyID string `json:"propertyId"`
}

const (
	wireCurrency = "USD"
	wireEapid    = 1
	wireLocale   = "en_US"
	wireSiteID   = 300000001
)

func listPayload(req domain.SearchRequest) listRequest {
	return listRequest{
		Currency:     wireCurrency,
		Eapid:        wireEapid,
		Locale:       wireLocale,
		SiteID:       wireSiteID,
		Destination:  map[string]any{"regionId": req.RegionID},
		CheckInDate:  dateParts{Day: req.CheckIn.Day, Month: int(req.CheckIn.Month), Year: req.CheckIn.Year},
		CheckOutDate: dateParts{Day: req.CheckOut.Day, Month: int(req.CheckOut.Month), Year: req.CheckOut.Year},
		Rooms:        []room{{Adults: req.Adults}},
		ResultsSize:  req.ResultsSize,
		Sort:         string(req.Sort),
		Filters:      listFilters{Price: priceFilter{Min: req.Price.Min, Max: req.Price.Max}},
	}
}

func detailPayload(id string) detailRequest {
	return detailRequest{
		Currency:   wireCurrency,
		Eapid:      wireEapid,
		Locale:     wireLocale,
		SiteID:     wireSiteID,
		PropertyID: id,
	}
}

/********** defensive response mapping **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func lookupFloat(m map[string]any, path string) (float64, bool) {
	switch v := lookupAny(m, path).(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func lookupSlice(m map[string]any, path string) []any {
	if v, ok := lookupAny(m, path).([]any); ok {
		return v
	}
	return nil
}

// asID renders an id field that may arrive as string or number.
func asID(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

// downstreamErrorPrefix marks the provider's own transient failure; it
// is reported the same way as an empty result set.
const downstreamErrorPrefix = "Error occurred in downstream service."

func mapLocations(body map[string]any) []domain.Location {
	var out []domain.Location
	for _, e := range lookupSlice(body, "sr") {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		id := asID(m["gaiaId"])
		name := lookupStr(m, "regionNames.fullName")
		if id == "" || name == "" {
			continue
		}
		out = append(out, domain.Location{
			ID:   id,
			Name: name,
			Kind: lookupStr(m, "type"),
		})
	}
	return out
}

func mapCandidates(body map[string]any) ([]domain.HotelCandidate, error) {
	if errs := lookupSlice(body, "errors"); len(errs) > 0 {
		if m, ok := errs[0].(map[string]any); ok {
			if strings.HasPrefix(lookupStr(m, "message"), downstreamErrorPrefix) {
				return nil, domain.ErrNoResults
			}
		}
		return nil, fmt.Errorf("%w: provider error payload", domain.ErrMalformed)
	}

	props := lookupSlice(body, "data.propertySearch.properties")
	if props == nil {
		return nil, fmt.Errorf("%w: missing properties", domain.ErrMalformed)
	}
	var out []domain.HotelCandidate
	for _, e := range props {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		id := asID(m["id"])
		price := firstOptionPrice(m)
		if id == "" || price == "" {
			continue
		}
		dist, _ := lookupFloat(m, "destinationInfo.distanceFromDestination.value")
		out = append(out, domain.HotelCandidate{ID: id, DisplayPrice: price, Distance: dist})
	}
	if len(out) == 0 {
		return nil, domain.ErrNoResults
	}
	return out, nil
}

func firstOptionPrice(m map[string]any) string {
	opts := lookupSlice(m, "price.options")
	if len(opts) == 0 {
		return ""
	}
	o, ok := opts[0].(map[string]any)
	if !ok {
		return ""
	}
	return lookupStr(o, "formattedDisplayPrice")
}

func mapDetail(body map[string]any) (domain.HotelDetail, error) {
	name := lookupStr(body, "data.propertyInfo.summary.name")
	addr := lookupStr(body, "data.propertyInfo.summary.location.address.firstAddressLine")
	if name == "" || addr == "" {
		return domain.HotelDetail{}, fmt.Errorf("%w: missing summary fields", domain.ErrMalformed)
	}
	d := domain.HotelDetail{Name: name, Address: addr}
	for _, e := range lookupSlice(body, "data.propertyInfo.propertyGallery.images") {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if u := lookupStr(m, "image.url"); u != "" {
			d.ImageURLs = append(d.ImageURLs, u)
		}
	}
	return d, nil
}
