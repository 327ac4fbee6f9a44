// internal/adapters/pixabay/client.go
package pixabay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stayscout/internal/adapters/observability"
	"stayscout/internal/domain"
)

const DefaultBaseURL = "https://pixabay.com/api/"

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

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
		base: base,
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

type hit struct {
	ID            int64  `json:"id"`
	WebformatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	PreviewURL    string `json:"previewURL"`
	Tags          string `json:"tags"`
	User          string `json:"user"`
}

// Images returns up to five landscape photos of the place named by query.
func (c *Client) Images(ctx context.Context, query, apiKey string) ([]domain.DestinationImage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewError(domain.KindBadRequest, "Search query is required", nil)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if err := c.rl.Wait(ctx); err != nil {
		return nil, domain.NewError(domain.KindNetworkError, "", err)
	}

	v := url.Values{}
	v.Set("key", apiKey)
	v.Set("q", strings.TrimSpace(query)+" city landmark")
	v.Set("image_type", "photo")
	v.Set("orientation", "horizontal")
	v.Set("category", "places")
	v.Set("safesearch", "true")
	v.Set("per_page", "5")
	v.Set("min_width", "1000")
	v.Set("min_height", "800")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"?"+v.Encode(), nil)
	if err != nil {
		return nil, domain.NewError(domain.KindUnexpected, "", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("pixabay", "images", 0, time.Since(start))
		return nil, domain.NewError(domain.KindNetworkError, "Failed to fetch destination images", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("pixabay", "images", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		e := domain.NewError(domain.KindForStatus(resp.StatusCode), "Failed to fetch destination images",
			fmt.Errorf("remote %d", resp.StatusCode))
		e.Status = resp.StatusCode
		return nil, e
	}

	var body struct {
		Hits []hit `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, domain.NewError(domain.KindUnexpected, "Failed to fetch destination images", err)
	}
	out := make([]domain.DestinationImage, 0, len(body.Hits))
	for _, h := range body.Hits {
		out = append(out, domain.DestinationImage{
			ID:          h.ID,
			Thumbnail:   h.WebformatURL,
			Large:       h.LargeImageURL,
			Preview:     h.PreviewURL,
			Description: h.Tags,
			Credit:      h.User,
		})
	}
	return out, nil
}
