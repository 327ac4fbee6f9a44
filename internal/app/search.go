package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"stayscout/internal/adapters/observability"
	"stayscout/internal/domain"
	"stayscout/internal/mockdata"
)

type Source string

const (
	SourceProvider Source = "provider"
	SourceMock     Source = "mock"
	SourceCache    Source = "cache"
)

type OutcomeState string

const (
	StateSuccess   OutcomeState = "success"
	StateFallback  OutcomeState = "fallback"
	StateHardError OutcomeState = "hard_error"
)

type SearchOutcome struct {
	State  OutcomeState   `json:"state"`
	Source Source         `json:"source"`
	Hotels []domain.Hotel `json:"hotels"`
	// Fallback is set when generated data replaced the provider answer.
	Fallback *domain.FallbackEvent `json:"-"`
}

type Keys struct {
	SerpAPI string
	Pixabay string
}

type SearchConfig struct {
	Keys           Keys
	MockCount      int
	CacheTTL       time.Duration
	MinQueryLength int
	// SuggestImages enriches place suggestions with destination photos.
	SuggestImages bool
}

type SearchService struct {
	provider  domain.HotelProvider
	images    domain.ImageProvider
	mock      *mockdata.Generator
	cache     domain.Cache
	recorders []domain.FallbackRecorder
	cfg       SearchConfig
	now       func() time.Time
}

// NewSearchService wires the orchestrator. cache and images may be nil.
func NewSearchService(p domain.HotelProvider, img domain.ImageProvider, mock *mockdata.Generator,
	cache domain.Cache, cfg SearchConfig, recorders ...domain.FallbackRecorder) *SearchService {
	if cfg.MockCount <= 0 {
		cfg.MockCount = mockdata.DefaultCount
	}
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = 2
	}
	if mock == nil {
		mock = mockdata.New(0)
	}
	return &SearchService{
		provider:  p,
		images:    img,
		mock:      mock,
		cache:     cache,
		recorders: recorders,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Validate runs the checks that must pass before any network call.
func (s *SearchService) Validate(p domain.SearchParams) error {
	if err := p.CheckFormat(); err != nil {
		return err
	}
	if err := p.CheckOrder(); err != nil {
		return err
	}
	if strings.TrimSpace(s.cfg.Keys.SerpAPI) == "" {
		return domain.NewError(domain.KindMissingAPIKey,
			"SERP API key is missing. Please check your environment configuration.", nil)
	}
	if strings.TrimSpace(s.cfg.Keys.Pixabay) == "" {
		return domain.NewError(domain.KindMissingAPIKey,
			"Pixabay API key is missing. Please check your environment configuration.", nil)
	}
	return nil
}

// Search validates p, then answers from cache, the provider, or generated
// data. Only validation errors are returned; provider failures and empty
// results turn into a fallback outcome.
func (s *SearchService) Search(ctx context.Context, p domain.SearchParams) (SearchOutcome, error) {
	if err := s.Validate(p); err != nil {
		observability.ObserveSearch(string(StateHardError), "none")
		return SearchOutcome{State: StateHardError, Hotels: []domain.Hotel{}}, err
	}
	p.Guests = p.Guests.OrDefault()

	key := searchKey(p)
	if s.cache != nil {
		var cached []domain.Hotel
		ok, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("search cache read failed")
		}
		if ok && len(cached) > 0 {
			observability.ObserveSearch(string(StateSuccess), string(SourceCache))
			return SearchOutcome{State: StateSuccess, Source: SourceCache, Hotels: cached}, nil
		}
	}

	hotels, err := s.provider.SearchHotels(ctx, domain.HotelQuery{Params: p, APIKey: s.cfg.Keys.SerpAPI})
	if err == nil && len(hotels) > 0 {
		if s.cache != nil && s.cfg.CacheTTL > 0 {
			if cerr := s.cache.Set(ctx, key, hotels, int(s.cfg.CacheTTL.Seconds())); cerr != nil {
				log.Warn().Err(cerr).Str("key", key).Msg("search cache write failed")
			}
		}
		observability.ObserveSearch(string(StateSuccess), string(SourceProvider))
		return SearchOutcome{State: StateSuccess, Source: SourceProvider, Hotels: hotels}, nil
	}
	if err == nil {
		err = domain.ErrEmptyResults
	}

	label := p.Location.Label()
	ev := s.fallback(ctx, label, err)
	observability.ObserveSearch(string(StateFallback), string(SourceMock))
	return SearchOutcome{
		State:    StateFallback,
		Source:   SourceMock,
		Hotels:   s.mock.Hotels(label, s.cfg.MockCount),
		Fallback: &ev,
	}, nil
}

// Refresh evicts the cached answer for p and searches again.
func (s *SearchService) Refresh(ctx context.Context, p domain.SearchParams) (SearchOutcome, error) {
	if s.cache != nil {
		p.Guests = p.Guests.OrDefault()
		if err := s.cache.Del(ctx, searchKey(p)); err != nil {
			log.Warn().Err(err).Msg("search cache evict failed")
		}
	}
	return s.Search(ctx, p)
}

// Details returns provider details for a property token, or generated
// details for mock ids and on any provider failure.
func (s *SearchService) Details(ctx context.Context, id string) (domain.HotelDetails, Source, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.HotelDetails{}, "", domain.NewError(domain.KindBadRequest, "Property token is required", nil)
	}
	if mockdata.IsMockID(id) {
		return s.mock.Details(id), SourceMock, nil
	}

	key := "details:" + id
	if s.cache != nil {
		var d domain.HotelDetails
		if ok, _ := s.cache.Get(ctx, key, &d); ok {
			return d, SourceCache, nil
		}
	}

	d, err := s.provider.HotelDetails(ctx, id, s.cfg.Keys.SerpAPI)
	if err != nil {
		s.fallback(ctx, "details:"+id, err)
		return s.mock.Details(id), SourceMock, nil
	}
	if s.cache != nil && s.cfg.CacheTTL > 0 {
		_ = s.cache.Set(ctx, key, d, int(s.cfg.CacheTTL.Seconds()))
	}
	return d, SourceProvider, nil
}

// Suggest returns place suggestions for query. Queries shorter than the
// minimum length return an empty list without calling the provider.
func (s *SearchService) Suggest(ctx context.Context, query string) ([]domain.PlaceSuggestion, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < s.cfg.MinQueryLength {
		return []domain.PlaceSuggestion{}, nil
	}
	if strings.TrimSpace(s.cfg.Keys.SerpAPI) == "" {
		return nil, domain.NewError(domain.KindMissingAPIKey,
			"SERP API key is missing. Please check your environment configuration.", nil)
	}

	raw, err := s.provider.PlaceSuggestions(ctx, q, s.cfg.Keys.SerpAPI)
	if err != nil {
		return nil, fmt.Errorf("place suggestions: %w", err)
	}
	out := make([]domain.PlaceSuggestion, 0, len(raw))
	for _, p := range raw {
		p.Name = strings.TrimSpace(strings.SplitN(p.Name, ",", 2)[0])
		if p.Description == "" {
			p.Description = p.Name
		}
		p.Type = domain.PlaceTypeCity
		out = append(out, p)
	}

	if s.cfg.SuggestImages && s.images != nil && s.cfg.Keys.Pixabay != "" {
		s.enrich(ctx, out)
	}
	return out, nil
}

// enrich fetches images for each suggestion in parallel. Failures leave
// that suggestion without images.
func (s *SearchService) enrich(ctx context.Context, out []domain.PlaceSuggestion) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range out {
		i := i
		g.Go(func() error {
			imgs, err := s.images.Images(gctx, out[i].Name, s.cfg.Keys.Pixabay)
			if err != nil {
				log.Debug().Err(err).Str("place", out[i].Name).Msg("suggestion images failed")
				return nil
			}
			out[i].Images = imgs
			return nil
		})
	}
	_ = g.Wait()
}

// DestinationImages passes through to the image provider.
func (s *SearchService) DestinationImages(ctx context.Context, query string) ([]domain.DestinationImage, error) {
	if s.images == nil {
		return nil, domain.NewError(domain.KindUnexpected, "Image search is not configured", nil)
	}
	return s.images.Images(ctx, query, s.cfg.Keys.Pixabay)
}

// fallback logs err and fans it out to the recorders.
func (s *SearchService) fallback(ctx context.Context, location string, err error) domain.FallbackEvent {
	ev := domain.FallbackEvent{
		Location: location,
		Kind:     domain.KindOf(err),
		Reason:   err.Error(),
		At:       s.now(),
	}
	var de *domain.Error
	if errors.As(err, &de) {
		ev.Status = de.Status
	}
	log.Warn().Err(err).Str("location", location).Str("kind", string(ev.Kind)).
		Msg("provider unavailable; serving generated data")

	rctx := context.WithoutCancel(ctx)
	for _, r := range s.recorders {
		if rerr := r.RecordFallback(rctx, ev); rerr != nil {
			log.Error().Err(rerr).Msg("record fallback failed")
		}
	}
	return ev
}

func searchKey(p domain.SearchParams) string {
	return strings.ToLower(fmt.Sprintf("search:%s:%s:%s:%d:%d",
		p.Location.Query(), p.CheckIn, p.CheckOut, p.Guests.Adults, p.Guests.Children))
}
