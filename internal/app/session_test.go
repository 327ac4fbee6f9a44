package app_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayscout/internal/app"
	"stayscout/internal/domain"
	"stayscout/internal/mockdata"
	"stayscout/internal/state"
)

func TestDebouncer_OnlyLatestRuns(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	d := app.NewDebouncer(20*time.Millisecond, func(gen uint64, in string) {
		mu.Lock()
		got = append(got, in)
		mu.Unlock()
	})
	defer d.Stop()

	d.Trigger("K")
	d.Trigger("Ky")
	d.Trigger("Kyo")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Kyo"}, got)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var runs int32
	d := app.NewDebouncer(10*time.Millisecond, func(uint64, string) { atomic.AddInt32(&runs, 1) })
	gen := d.Trigger("Paris")
	d.Stop()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
	assert.False(t, d.Current(gen))
}

func newSession(p *fakeProvider, st *state.Store) *app.Session {
	svc := app.NewSearchService(p, &fakeImages{}, mockdata.New(3), nil, app.SearchConfig{Keys: keys})
	return app.NewSession(svc, st, 10*time.Millisecond, time.Second)
}

func TestSession_SearchStoresResults(t *testing.T) {
	st := state.New()
	s := newSession(&fakeProvider{hotels: []domain.Hotel{{ID: "h1"}}}, st)
	defer s.Close()

	_, err := s.Search(context.Background(), params("Paris", "2025-06-01", "2025-06-05"))
	require.NoError(t, err)

	snap := st.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	assert.Equal(t, "h1", snap.SearchResults[0].ID)
	assert.Equal(t, "Paris", snap.SearchParams.Location.Label())
	assert.Equal(t, "2025-06-05", snap.SearchParams.CheckOut)
}

func TestSession_ValidationErrorStored(t *testing.T) {
	st := state.New()
	st.SetSearchResults([]domain.Hotel{{ID: "old"}})
	s := newSession(&fakeProvider{}, st)
	defer s.Close()

	_, err := s.Search(context.Background(), params("Paris", "2025-13-01", "2025-06-05"))
	require.Error(t, err)

	snap := st.Snapshot()
	assert.Equal(t, "Invalid date parameters.", snap.Error)
	assert.Empty(t, snap.SearchResults)
	assert.False(t, snap.Loading)
}

func TestSession_SlowerEarlierSearchWinsWithoutFencing(t *testing.T) {
	st := state.New()
	release := make(chan struct{})
	p := &fakeProvider{onSearchCall: func(q domain.HotelQuery) ([]domain.Hotel, error) {
		if q.Params.Location.Label() == "Slow" {
			<-release
			return []domain.Hotel{{ID: "slow"}}, nil
		}
		return []domain.Hotel{{ID: "fast"}}, nil
	}}
	s := newSession(p, st)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Search(context.Background(), params("Slow", "2025-06-01", "2025-06-05"))
	}()
	require.Eventually(t, func() bool { return p.calls() == 1 }, time.Second, time.Millisecond)

	_, err := s.Search(context.Background(), params("Fast", "2025-06-01", "2025-06-05"))
	require.NoError(t, err)
	close(release)
	<-done

	assert.Equal(t, "slow", st.Snapshot().SearchResults[0].ID)
}

func TestSession_DebouncedSuggestions(t *testing.T) {
	st := state.New()
	p := &fakeProvider{places: []domain.PlaceSuggestion{{ID: "1", Name: "Kyoto, Japan"}}}
	s := newSession(p, st)
	defer s.Close()

	s.SuggestLater("K")
	s.SuggestLater("Ky")
	s.SuggestLater("Kyo")

	require.Eventually(t, func() bool { return len(st.Snapshot().LocationSuggestions) == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, "Kyoto", st.Snapshot().LocationSuggestions[0].Name)

	p.mu.Lock()
	calls := p.placeCalls
	p.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestSession_SuggestionFailureSetsError(t *testing.T) {
	st := state.New()
	st.SetLocationSuggestions([]domain.PlaceSuggestion{{ID: "stale"}})
	s := newSession(&fakeProvider{placesErr: domain.ErrServerError}, st)
	defer s.Close()

	s.SuggestLater("Rome")
	require.Eventually(t, func() bool { return st.Snapshot().Error != "" }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Failed to fetch location suggestions. Please try again.", st.Snapshot().Error)
	assert.Empty(t, st.Snapshot().LocationSuggestions)
}
