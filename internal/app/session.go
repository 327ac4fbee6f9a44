package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"stayscout/internal/domain"
	"stayscout/internal/state"
)

const suggestFailedMsg = "Failed to fetch location suggestions. Please try again."

// Session drives the store from search and suggestion calls, the way a
// single UI client would.
type Session struct {
	svc     *SearchService
	store   *state.Store
	deb     *Debouncer
	timeout time.Duration
}

func NewSession(svc *SearchService, store *state.Store, suggestDelay, timeout time.Duration) *Session {
	if suggestDelay <= 0 {
		suggestDelay = 300 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	s := &Session{svc: svc, store: store, timeout: timeout}
	s.deb = NewDebouncer(suggestDelay, s.lookup)
	return s
}

func (s *Session) Store() *state.Store { return s.store }

func (s *Session) Service() *SearchService { return s.svc }

// Search records p as the current params, runs the search and stores the
// outcome. Validation failures are stored as the user-facing error and
// returned.
func (s *Session) Search(ctx context.Context, p domain.SearchParams) (SearchOutcome, error) {
	s.store.SetSearchParams(domain.SearchParamsPatch{
		Location: &p.Location,
		CheckIn:  &p.CheckIn,
		CheckOut: &p.CheckOut,
		Guests:   &p.Guests,
	})
	ticket := s.store.BeginSearch()

	out, err := s.svc.Search(ctx, p)
	if err != nil {
		s.store.CommitSearch(ticket, nil, domain.UserMessage(err))
		return out, err
	}
	if !s.store.CommitSearch(ticket, out.Hotels, "") {
		log.Debug().Uint64("ticket", ticket).Msg("stale search result dropped")
	}
	return out, nil
}

// SuggestLater schedules a debounced suggestion lookup for query.
func (s *Session) SuggestLater(query string) { s.deb.Trigger(query) }

func (s *Session) lookup(gen uint64, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	out, err := s.svc.Suggest(ctx, query)
	if !s.deb.Current(gen) {
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("q", query).Msg("suggestions failed")
		s.store.SetError(suggestFailedMsg)
		s.store.SetLocationSuggestions(nil)
		return
	}
	s.store.SetLocationSuggestions(out)
}

// Close cancels pending suggestion lookups.
func (s *Session) Close() { s.deb.Stop() }
