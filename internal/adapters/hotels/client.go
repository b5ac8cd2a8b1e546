package hotels

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tourbot/internal/adapters/observability"
	"tourbot/internal/domain"
)

// Client talks to the Hotels4-style search API over RapidAPI. All
// methods are safe for concurrent use; a shared client-side rate
// limiter keeps the bot inside the plan's request budget.
type Client struct {
	base string
	host string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("bad base URL: %w", err)
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		host: u.Host,
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (c *Client) LookupLocations(ctx context.Context, query string) ([]domain.Location, error) {
	u := c.base + "/locations/v3/search?q=" + url.QueryEscape(query)
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, u, "locations", nil, &out); err != nil {
		return nil, err
	}
	return mapLocations(out), nil
}

func (c *Client) Search(ctx context.Context, req domain.SearchRequest) ([]domain.HotelCandidate, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, c.base+"/properties/v2/list", "list", listPayload(req), &out); err != nil {
		return nil, err
	}
	return mapCandidates(out)
}

func (c *Client) Detail(ctx context.Context, hotelID string) (domain.HotelDetail, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, c.base+"/properties/v2/detail", "detail", detailPayload(hotelID), &out); err != nil {
		return domain.HotelDetail{}, err
	}
	return mapDetail(out)
}

// do performs one request with client-side rate limiting, retries on
// 429 and transient 5xx (honoring Retry-After), and a JSON decode into
// out. A non-JSON success body surfaces as ErrMalformed.
func (c *Client) do(ctx context.Context, method, u, endpoint string, payload any, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return err
		}
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return err
		}
		req.Header.Set("X-RapidAPI-Key", c.key)
		req.Header.Set("X-RapidAPI-Host", c.host)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("hotels", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrMalformed, err)
			}
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with
// up to +50% concurrency-safe jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
