// Package state holds the client-side search state: current params, last
// results, suggestions, loading/error flags, selection and favorites.
package state

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"stayscout/internal/adapters/observability"
	"stayscout/internal/domain"
)

const DefaultName = "hotel-storage"

type Snapshot struct {
	SearchParams        domain.SearchParams      `json:"searchParams"`
	SearchResults       []domain.Hotel           `json:"searchResults"`
	LocationSuggestions []domain.PlaceSuggestion `json:"locationSuggestions"`
	Loading             bool                     `json:"loading"`
	Error               string                   `json:"error,omitempty"`
	SelectedHotel       *domain.Hotel            `json:"selectedHotel"`
	Favorites           []domain.Hotel           `json:"favoriteHotels"`
}

// persisted is the on-disk shape: only params and favorites survive restarts.
type persisted struct {
	State struct {
		SearchParams domain.SearchParams `json:"searchParams"`
		Favorites    []domain.Hotel      `json:"favoriteHotels"`
	} `json:"state"`
	Version int `json:"version"`
}

func defaultParams() domain.SearchParams {
	return domain.SearchParams{Guests: domain.Guests{Adults: 2, Children: 0}}
}

type Option func(*Store)

// WithName sets the blob name used by the persister.
func WithName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.name = name
		}
	}
}

// WithFencing makes CommitSearch drop results from superseded searches.
// Without it the last search to finish wins.
func WithFencing(on bool) Option { return func(s *Store) { s.fence = on } }

// WithBackend labels persistence metrics.
func WithBackend(label string) Option { return func(s *Store) { s.backend = label } }

type Store struct {
	mu   sync.Mutex
	snap Snapshot
	seq  uint64

	fence   bool
	name    string
	backend string

	p       domain.Persister
	pending chan []byte
	closed  bool
	wg      sync.WaitGroup
}

// New returns an in-memory store with default state and no persistence.
func New(opts ...Option) *Store {
	s := &Store{
		name:    DefaultName,
		backend: "memory",
		snap: Snapshot{
			SearchParams:        defaultParams(),
			SearchResults:       []domain.Hotel{},
			LocationSuggestions: []domain.PlaceSuggestion{},
			Favorites:           []domain.Hotel{},
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open rehydrates favorites and search params from p and starts the
// background writer. Missing or corrupt data leaves the default state.
func Open(ctx context.Context, p domain.Persister, opts ...Option) *Store {
	s := New(opts...)
	if p == nil {
		return s
	}
	if s.backend == "memory" {
		s.backend = "custom"
	}
	s.p = p
	s.pending = make(chan []byte, 1)

	blob, err := p.Load(ctx, s.name)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("name", s.name).Msg("state load failed; starting empty")
	case len(blob) == 0:
		log.Debug().Str("name", s.name).Msg("no persisted state")
	default:
		var ps persisted
		if err := json.Unmarshal(blob, &ps); err != nil {
			log.Warn().Err(err).Str("name", s.name).Msg("persisted state corrupt; starting empty")
			break
		}
		s.snap.SearchParams = ps.State.SearchParams
		if s.snap.SearchParams.Guests.Adults <= 0 {
			s.snap.SearchParams.Guests = s.snap.SearchParams.Guests.OrDefault()
		}
		if ps.State.Favorites != nil {
			s.snap.Favorites = ps.State.Favorites
		}
		log.Info().Str("name", s.name).Int("favorites", len(s.snap.Favorites)).Msg("state rehydrated")
	}

	s.wg.Add(1)
	go s.writer()
	return s
}

// Close stops the background writer after flushing the latest snapshot.
func (s *Store) Close() {
	s.mu.Lock()
	if s.pending == nil || s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.pending)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Store) writer() {
	defer s.wg.Done()
	for blob := range s.pending {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.p.Save(ctx, s.name, blob)
		cancel()
		observability.ObservePersist(s.backend, err)
		if err != nil {
			log.Error().Err(err).Str("name", s.name).Msg("state persist failed")
		}
	}
}

// schedule queues the persisted subset for writing. Callers hold s.mu; the
// queue keeps only the newest blob so a slow persister never blocks.
func (s *Store) schedule() {
	if s.pending == nil || s.closed {
		return
	}
	var ps persisted
	ps.State.SearchParams = s.snap.SearchParams
	ps.State.Favorites = s.snap.Favorites
	blob, err := json.Marshal(ps)
	if err != nil {
		log.Error().Err(err).Msg("state marshal failed")
		return
	}
	select {
	case <-s.pending:
	default:
	}
	s.pending <- blob
}

/********** reads **********/

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.snap
	out.SearchResults = append([]domain.Hotel{}, s.snap.SearchResults...)
	out.LocationSuggestions = append([]domain.PlaceSuggestion{}, s.snap.LocationSuggestions...)
	out.Favorites = append([]domain.Hotel{}, s.snap.Favorites...)
	if s.snap.SelectedHotel != nil {
		h := *s.snap.SelectedHotel
		out.SelectedHotel = &h
	}
	return out
}

func (s *Store) SearchParams() domain.SearchParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.SearchParams
}

func (s *Store) Favorites() []domain.Hotel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Hotel{}, s.snap.Favorites...)
}

func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favIndex(id) >= 0
}

func (s *Store) favIndex(id string) int {
	for i, h := range s.snap.Favorites {
		if h.ID == id {
			return i
		}
	}
	return -1
}

/********** actions **********/

// SetSearchParams merges the non-nil fields of patch into the current params.
func (s *Store) SetSearchParams(patch domain.SearchParamsPatch) domain.SearchParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.SearchParams = patch.Apply(s.snap.SearchParams)
	s.schedule()
	return s.snap.SearchParams
}

// SetSearchResults replaces the results and clears any error.
func (s *Store) SetSearchResults(hotels []domain.Hotel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setResults(hotels)
}

func (s *Store) setResults(hotels []domain.Hotel) {
	if hotels == nil {
		hotels = []domain.Hotel{}
	}
	s.snap.SearchResults = hotels
	s.snap.Error = ""
}

func (s *Store) SetLocationSuggestions(sg []domain.PlaceSuggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sg == nil {
		sg = []domain.PlaceSuggestion{}
	}
	s.snap.LocationSuggestions = sg
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Loading = loading
}

// SetError sets the user-facing error; "" clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Error = msg
}

// SetSelectedHotel selects h; nil clears the selection.
func (s *Store) SetSelectedHotel(h *domain.Hotel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h == nil {
		s.snap.SelectedHotel = nil
		return
	}
	cp := *h
	s.snap.SelectedHotel = &cp
}

// AddToFavorites appends h, or replaces the entry with the same id in place.
func (s *Store) AddToFavorites(h domain.Hotel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.favIndex(h.ID); i >= 0 {
		s.snap.Favorites[i] = h
	} else {
		s.snap.Favorites = append(s.snap.Favorites, h)
	}
	s.schedule()
}

// RemoveFromFavorites drops the hotel with id; unknown ids are a no-op.
func (s *Store) RemoveFromFavorites(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.favIndex(id)
	if i < 0 {
		return
	}
	fav := make([]domain.Hotel, 0, len(s.snap.Favorites)-1)
	fav = append(fav, s.snap.Favorites[:i]...)
	s.snap.Favorites = append(fav, s.snap.Favorites[i+1:]...)
	s.schedule()
}

// ToggleFavorite adds or removes h and reports whether it is now a favorite.
func (s *Store) ToggleFavorite(h domain.Hotel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.favIndex(h.ID); i >= 0 {
		fav := make([]domain.Hotel, 0, len(s.snap.Favorites)-1)
		fav = append(fav, s.snap.Favorites[:i]...)
		s.snap.Favorites = append(fav, s.snap.Favorites[i+1:]...)
		s.schedule()
		return false
	}
	s.snap.Favorites = append(s.snap.Favorites, h)
	s.schedule()
	return true
}

// ClearSearchResults empties the results and clears any error.
func (s *Store) ClearSearchResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setResults(nil)
}

/********** search tickets **********/

// BeginSearch marks a search as started and returns its ticket.
func (s *Store) BeginSearch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.snap.Loading = true
	s.snap.Error = ""
	return s.seq
}

// CommitSearch stores the outcome of the search holding ticket. errMsg
// non-empty records a failure and empties the results. With fencing on, a
// ticket older than the latest BeginSearch is dropped and false returned.
func (s *Store) CommitSearch(ticket uint64, hotels []domain.Hotel, errMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := ticket == s.seq
	if s.fence && !latest {
		return false
	}
	s.setResults(hotels)
	if errMsg != "" {
		s.snap.SearchResults = []domain.Hotel{}
		s.snap.Error = errMsg
	}
	if latest {
		s.snap.Loading = false
	}
	return true
}
