package serpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"stayscout/internal/adapters/serpapi"
	"stayscout/internal/domain"
)

func validQuery() domain.HotelQuery {
	return domain.HotelQuery{
		Params: domain.SearchParams{
			Location: domain.PlaceLocation("Paris", "Paris, France"),
			CheckIn:  "2025-06-01",
			CheckOut: "2025-06-05",
		},
		APIKey: "test-key",
	}
}

func TestClient_SearchHotels_BuildsQueryAndNormalizes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{
			"engine":         "google_hotels",
			"q":              "hotels in Paris, France",
			"check_in_date":  "2025-06-01",
			"check_out_date": "2025-06-05",
			"num_adults":     "2",
			"num_children":   "0",
			"currency":       "USD",
			"api_key":        "test-key",
			"hl":             "en",
			"gl":             "us",
			"sort":           "rating",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("param %s = %q, want %q", k, got, v)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hotels_results": []any{
				map[string]any{
					"hotel_id":      "h-1",
					"name":          "Hotel Lutetia",
					"rating":        4.7,
					"reviews_count": 1200.0,
					"prices":        map[string]any{"current_price": 320.0, "original_price": 400.0, "has_discount": true},
					"amenities":     []any{"Wi-Fi", "Spa"},
					"photos":        []any{"https://img/1.jpg"},
				},
			},
		})
	}))
	defer ts.Close()

	cl := serpapi.New(ts.URL, 100, time.Second)
	got, err := cl.SearchHotels(context.Background(), validQuery())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 hotel, got %d", len(got))
	}
	h := got[0]
	if h.ID != "h-1" || h.Name != "Hotel Lutetia" || h.Reviews != 1200 {
		t.Fatalf("unexpected hotel: %+v", h)
	}
	if h.Price.Current != 320 || h.Price.Original == nil || *h.Price.Original != 400 || !h.Price.Discounted {
		t.Fatalf("unexpected price: %+v", h.Price)
	}
	if h.Thumbnail != "https://img/1.jpg" {
		t.Fatalf("thumbnail should fall back to first image, got %q", h.Thumbnail)
	}
}

func TestClient_SearchHotels_EmptyResultsIsNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hotels_results":[]}`))
	}))
	defer ts.Close()

	got, err := serpapi.New(ts.URL, 100, time.Second).SearchHotels(context.Background(), validQuery())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty, got %d", len(got))
	}
}

func TestClient_SearchHotels_PreconditionsSkipNetwork(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer ts.Close()
	cl := serpapi.New(ts.URL, 100, time.Second)

	cases := []struct {
		name string
		mut  func(*domain.HotelQuery)
		want error
	}{
		{"empty location", func(q *domain.HotelQuery) { q.Params.Location = domain.TextLocation("  ") }, domain.ErrInvalidLocation},
		{"missing check-in", func(q *domain.HotelQuery) { q.Params.CheckIn = "" }, domain.ErrInvalidDates},
		{"bad format", func(q *domain.HotelQuery) { q.Params.CheckIn = "06/01/2025" }, domain.ErrInvalidDates},
		{"not a calendar date", func(q *domain.HotelQuery) { q.Params.CheckOut = "2025-02-30" }, domain.ErrInvalidDates},
		{"month out of range", func(q *domain.HotelQuery) { q.Params.CheckOut = "2025-13-01" }, domain.ErrInvalidDates},
		{"missing key", func(q *domain.HotelQuery) { q.APIKey = "" }, domain.ErrMissingAPIKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuery()
			tc.mut(&q)
			_, err := cl.SearchHotels(context.Background(), q)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("provider was called %d times", n)
	}
}

func TestClient_SearchHotels_DoesNotCheckOrdering(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hotels_results":[]}`))
	}))
	defer ts.Close()

	q := validQuery()
	q.Params.CheckIn, q.Params.CheckOut = "2025-06-10", "2025-06-05"
	if _, err := serpapi.New(ts.URL, 100, time.Second).SearchHotels(context.Background(), q); err != nil {
		t.Fatalf("format-only validation should accept reversed range: %v", err)
	}
}

func TestClient_SearchHotels_StatusClassification(t *testing.T) {
	cases := []struct {
		status  int
		body    string
		kind    domain.ErrorKind
		message string
	}{
		{401, `{}`, domain.KindInvalidAPIKey, "Invalid API key. Please check your configuration."},
		{429, `{}`, domain.KindRateLimited, "Rate limit exceeded. Please try again later."},
		{400, `{"error":"Missing check_in_date"}`, domain.KindBadRequest, "Missing check_in_date"},
		{400, `not json`, domain.KindBadRequest, "Invalid request parameters"},
		{500, `{}`, domain.KindServerError, "Server error. Please try again later."},
		{503, `{"error":"maintenance"}`, domain.KindUnexpected, "maintenance"},
		{404, ``, domain.KindUnexpected, "An unexpected error occurred"},
	}
	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		_, err := serpapi.New(ts.URL, 100, time.Second).SearchHotels(context.Background(), validQuery())
		ts.Close()

		var de *domain.Error
		if !errors.As(err, &de) {
			t.Fatalf("status %d: want *domain.Error, got %v", tc.status, err)
		}
		if de.Kind != tc.kind || de.Message != tc.message || de.Status != tc.status {
			t.Fatalf("status %d: got kind=%s msg=%q status=%d", tc.status, de.Kind, de.Message, de.Status)
		}
	}
}

func TestClient_SearchHotels_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := serpapi.New(url, 100, time.Second).SearchHotels(context.Background(), validQuery())
	if domain.KindOf(err) != domain.KindNetworkError {
		t.Fatalf("want NETWORK_ERROR, got %v", err)
	}
}

func TestClient_SearchHotels_UndecodableBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer ts.Close()

	_, err := serpapi.New(ts.URL, 100, time.Second).SearchHotels(context.Background(), validQuery())
	if domain.KindOf(err) != domain.KindUnexpected {
		t.Fatalf("want UNEXPECTED_ERROR, got %v", err)
	}
}

func TestClient_PlaceSuggestions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locations.json" || r.URL.Query().Get("limit") != "10" || r.URL.Query().Get("q") != "Kyo" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`[
			{"id":"kyoto-1","name":"Kyoto","canonical_name":"Kyoto,Kyoto Prefecture,Japan"},
			{"name":"Kyotango"}
		]`))
	}))
	defer ts.Close()

	got, err := serpapi.New(ts.URL, 100, time.Second).PlaceSuggestions(context.Background(), "Kyo", "k")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 suggestions, got %d", len(got))
	}
	if got[0].ID != "kyoto-1" || got[0].Description != "Kyoto,Kyoto Prefecture,Japan" || got[0].Type != "city" {
		t.Fatalf("unexpected first suggestion: %+v", got[0])
	}
	if got[1].ID == "" || got[1].Description != "Kyotango" {
		t.Fatalf("unexpected second suggestion: %+v", got[1])
	}
}

func TestClient_HotelDetails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.URL.Query().Get("property_token") != "tok" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{
			"name":"Hotel Lutetia","address":"45 Bd Raspail","rating":4.6,"reviews":812,
			"lowest_price":"$310","highest_price":"$620","deal_description":"Great deal",
			"images":[{"thumbnail":"t1","original":"o1"}],
			"amenities":["Spa"],
			"nearby_places":[{"name":"Louvre","distance":"2 km","transportation_options":[{"type":"Taxi","duration":"8 min"}]}]
		}`))
	}))
	defer ts.Close()

	d, err := serpapi.New(ts.URL, 100, time.Second).HotelDetails(context.Background(), "tok", "k")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Name != "Hotel Lutetia" || d.OverallRating != 4.6 || d.Reviews != 812 {
		t.Fatalf("unexpected details: %+v", d)
	}
	if d.RatePerNight.Lowest != "$310" || d.DealDescription == nil || *d.DealDescription != "Great deal" {
		t.Fatalf("unexpected rate/deal: %+v", d)
	}
	if len(d.Images) != 1 || d.Images[0].Original != "o1" {
		t.Fatalf("unexpected images: %+v", d.Images)
	}
	if len(d.NearbyPlaces) != 1 || d.NearbyPlaces[0].Transportations[0].Type != "Taxi" {
		t.Fatalf("unexpected nearby: %+v", d.NearbyPlaces)
	}
}
