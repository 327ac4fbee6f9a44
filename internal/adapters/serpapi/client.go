// internal/adapters/serpapi/client.go
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"stayscout/internal/adapters/observability"
	"stayscout/internal/domain"
)

const (
	DefaultBaseURL = "https://serpapi.com"
	engine         = "google_hotels"
	service        = "serpapi"
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

// New builds a client. rps <= 0 defaults to 5 requests per second and a
// zero timeout to 20s.
func New(base string, rps int, timeout time.Duration) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ---- Public API ----

// SearchHotels validates q, issues one search request and normalizes
// hotels_results. An empty result list is returned as (empty, nil).
func (c *Client) SearchHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	if err := q.Params.CheckFormat(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.APIKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}

	g := q.Params.Guests.OrDefault()
	v := url.Values{}
	v.Set("engine", engine)
	v.Set("q", q.Params.Location.Query())
	v.Set("check_in_date", q.Params.CheckIn)
	v.Set("check_out_date", q.Params.CheckOut)
	v.Set("num_adults", strconv.Itoa(g.Adults))
	v.Set("num_children", strconv.Itoa(g.Children))
	v.Set("currency", "USD")
	v.Set("api_key", q.APIKey)
	v.Set("hl", "en")
	v.Set("gl", "us")
	v.Set("sort", "rating")

	var body struct {
		HotelsResults []map[string]any `json:"hotels_results"`
	}
	if err := c.get(ctx, "search", c.base+"/search.json?"+v.Encode(), &body); err != nil {
		return nil, err
	}
	log.Debug().Str("q", v.Get("q")).Int("hotels", len(body.HotelsResults)).Msg("serpapi search")
	return mapHotels(body.HotelsResults), nil
}

// PlaceSuggestions looks up locations matching query.
func (c *Client) PlaceSuggestions(ctx context.Context, query, apiKey string) ([]domain.PlaceSuggestion, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidLocation
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}
	v := url.Values{}
	v.Set("q", query)
	v.Set("api_key", apiKey)
	v.Set("limit", "10")

	var raw []map[string]any
	if err := c.get(ctx, "locations", c.base+"/locations.json?"+v.Encode(), &raw); err != nil {
		return nil, err
	}
	return mapSuggestions(raw), nil
}

// HotelDetails fetches a single property by its provider token.
func (c *Client) HotelDetails(ctx context.Context, propertyToken, apiKey string) (domain.HotelDetails, error) {
	if strings.TrimSpace(propertyToken) == "" {
		return domain.HotelDetails{}, domain.NewError(domain.KindBadRequest, "Property token is required", nil)
	}
	if strings.TrimSpace(apiKey) == "" {
		return domain.HotelDetails{}, domain.ErrMissingAPIKey
	}
	v := url.Values{}
	v.Set("engine", engine)
	v.Set("property_token", propertyToken)
	v.Set("api_key", apiKey)
	v.Set("hl", "en")
	v.Set("gl", "us")

	var raw map[string]any
	if err := c.get(ctx, "details", c.base+"/search?"+v.Encode(), &raw); err != nil {
		return domain.HotelDetails{}, err
	}
	return mapDetails(raw), nil
}

// ---- Internals ----

// get performs one rate-limited GET and decodes a 2xx body into out.
// Failures are classified into *domain.Error; there are no retries.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.NewError(domain.KindNetworkError, "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.NewError(domain.KindUnexpected, "", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stayscout/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, endpoint, 0, time.Since(start))
		return domain.NewError(domain.KindNetworkError, "", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.NewError(domain.KindUnexpected, "", fmt.Errorf("decode %s: %w", endpoint, err))
		}
		return nil
	}
	return classify(resp)
}

// classify turns a non-2xx response into a domain error. 400 and unknown
// statuses carry the provider's "error" message when present.
func classify(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(b, &payload)

	kind := domain.KindForStatus(resp.StatusCode)
	msg := ""
	if kind == domain.KindBadRequest || kind == domain.KindUnexpected {
		msg = strings.TrimSpace(payload.Error)
	}
	e := domain.NewError(kind, msg, errors.New("remote "+strconv.Itoa(resp.StatusCode)))
	e.Status = resp.StatusCode
	return e
}
