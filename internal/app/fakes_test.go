package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"stayscout/internal/domain"
)

// ---- fakes ----

type fakeProvider struct {
	mu         sync.Mutex
	hotels     []domain.Hotel
	err        error
	details    domain.HotelDetails
	detailsErr error
	places     []domain.PlaceSuggestion
	placesErr  error

	searchCalls  int
	detailCalls  int
	placeCalls   int
	lastQuery    domain.HotelQuery
	onSearchCall func(domain.HotelQuery) ([]domain.Hotel, error)
}

func (f *fakeProvider) SearchHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	f.mu.Lock()
	f.searchCalls++
	f.lastQuery = q
	hook := f.onSearchCall
	hotels, err := f.hotels, f.err
	f.mu.Unlock()
	if hook != nil {
		return hook(q)
	}
	return hotels, err
}

func (f *fakeProvider) PlaceSuggestions(ctx context.Context, query, apiKey string) ([]domain.PlaceSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placeCalls++
	return f.places, f.placesErr
}

func (f *fakeProvider) HotelDetails(ctx context.Context, token, apiKey string) (domain.HotelDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	return f.details, f.detailsErr
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls
}

type fakeImages struct {
	fail map[string]bool
}

func (f *fakeImages) Images(ctx context.Context, query, apiKey string) ([]domain.DestinationImage, error) {
	if f.fail[query] {
		return nil, errors.New("pixabay down")
	}
	return []domain.DestinationImage{{ID: 1, Thumbnail: query + ".jpg"}}, nil
}

// fakeCache round-trips values through JSON like the redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *fakeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []domain.FallbackEvent
}

func (r *fakeRecorder) RecordFallback(ctx context.Context, ev domain.FallbackEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeRecorder) all() []domain.FallbackEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FallbackEvent(nil), r.events...)
}
