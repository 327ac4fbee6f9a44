package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stayscout/internal/domain"
)

// Destination is a place worth keeping warm in the result cache.
type Destination struct {
	Name    string
	Country string
}

var TrendingDestinations = []Destination{
	{Name: "Kyoto", Country: "Japan"},
	{Name: "Santorini", Country: "Greece"},
	{Name: "London", Country: "UK"},
}

// ParseDestinations reads "Name/Country,Name/Country"; the country part is
// optional. Empty input yields TrendingDestinations.
func ParseDestinations(s string) []Destination {
	if strings.TrimSpace(s) == "" {
		return TrendingDestinations
	}
	var out []Destination
	for _, part := range strings.Split(s, ",") {
		name, country, _ := strings.Cut(strings.TrimSpace(part), "/")
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, Destination{Name: name, Country: strings.TrimSpace(country)})
		}
	}
	return out
}

// Params builds a one-night stay from tomorrow for d.
func (d Destination) Params(now time.Time) domain.SearchParams {
	in := now.AddDate(0, 0, 1)
	out := now.AddDate(0, 0, 2)
	loc := domain.TextLocation(d.Name)
	if d.Country != "" {
		loc = domain.PlaceLocation(d.Name, d.Name+", "+d.Country)
	}
	return domain.SearchParams{
		Location: loc,
		CheckIn:  in.Format(domain.DateLayout),
		CheckOut: out.Format(domain.DateLayout),
		Guests:   domain.Guests{Adults: 2},
	}
}

type PrefetchService struct {
	search *SearchService
	now    func() time.Time
}

func NewPrefetchService(s *SearchService) *PrefetchService {
	return &PrefetchService{search: s, now: time.Now}
}

// Warm refreshes the cached results for d. Generated data is never cached,
// so a fallback is reported as an error to let the caller count misses.
func (p *PrefetchService) Warm(ctx context.Context, d Destination) error {
	params := d.Params(p.now())
	out, err := p.search.Refresh(ctx, params)
	if err != nil {
		return fmt.Errorf("warm %s: %w", d.Name, err)
	}
	if out.Source == SourceMock {
		kind := domain.KindUnexpected
		if out.Fallback != nil {
			kind = out.Fallback.Kind
		}
		return fmt.Errorf("warm %s: provider unavailable (%s)", d.Name, kind)
	}
	log.Info().Str("destination", d.Name).Int("hotels", len(out.Hotels)).Str("check_in", params.CheckIn).
		Msg("destination warmed")
	return nil
}
