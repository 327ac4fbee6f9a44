package mockdata_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayscout/internal/mockdata"
)

func fixedClock() time.Time { return time.UnixMilli(1717200000000) }

func TestHotels_ParisScenario(t *testing.T) {
	g := mockdata.New(7, mockdata.WithClock(fixedClock))
	hotels := g.Hotels("Paris", 10)

	require.Len(t, hotels, 10)
	assert.Equal(t, "Grand Plaza Paris", hotels[0].Name)
	assert.Equal(t, "Royal Suites Paris", hotels[1].Name)
	assert.Equal(t, "Elite Residency Paris", hotels[9].Name)

	seen := map[string]bool{}
	for i, h := range hotels {
		assert.Contains(t, h.Name, "Paris")
		assert.False(t, seen[h.ID], "duplicate id %s", h.ID)
		seen[h.ID] = true
		assert.True(t, strings.HasPrefix(h.ID, "mock-"))

		assert.GreaterOrEqual(t, len(h.Amenities), 1)
		assert.LessOrEqual(t, len(h.Amenities), 5)
		assert.Equal(t, "Wi-Fi", h.Amenities[0])

		assert.GreaterOrEqual(t, h.Rating, 3.0)
		assert.LessOrEqual(t, h.Rating, 5.0)
		assert.Equal(t, h.Rating, float64(int(h.Rating*10+0.5))/10)

		assert.GreaterOrEqual(t, h.Price.Current, 100.0)
		assert.Less(t, h.Price.Current, 500.0)
		require.NotNil(t, h.Price.Original)
		assert.GreaterOrEqual(t, *h.Price.Original, h.Price.Current)
		assert.Less(t, *h.Price.Original, h.Price.Current+100)

		assert.GreaterOrEqual(t, h.Reviews, 50)
		assert.Less(t, h.Reviews, 1000)

		require.Len(t, h.Images, 3)
		assert.Equal(t, h.Thumbnail, h.Images[0].Thumbnail)
		if i > 0 {
			assert.Equal(t, hotels[i-1].Images[1], h.Images[0])
		}
	}
}

func TestHotels_OriginalNeverBelowCurrent(t *testing.T) {
	g := mockdata.New(0)
	for n := 0; n < 50; n++ {
		for _, h := range g.Hotels("Lisbon", 10) {
			require.GreaterOrEqual(t, *h.Price.Original, h.Price.Current)
		}
	}
}

func TestHotels_SameSeedSameValues(t *testing.T) {
	a := mockdata.New(42, mockdata.WithClock(fixedClock)).Hotels("Rome", 5)
	b := mockdata.New(42, mockdata.WithClock(fixedClock)).Hotels("Rome", 5)
	assert.Equal(t, a, b)
}

func TestHotels_EmptyLocationAndCount(t *testing.T) {
	g := mockdata.New(1)
	assert.Empty(t, g.Hotels("Oslo", 0))
	hs := g.Hotels("  ", 1)
	require.Len(t, hs, 1)
	assert.Equal(t, "Grand Plaza Popular Destination", hs[0].Name)
}

func TestParseID_RoundTrip(t *testing.T) {
	id := mockdata.MockID(3, 1717200000000, "New York, USA")
	assert.True(t, mockdata.IsMockID(id))
	assert.True(t, strings.HasPrefix(id, "mock-3-1717200000000-"))

	idx, loc := mockdata.ParseID(id)
	assert.Equal(t, 3, idx)
	assert.Equal(t, "New York, USA", loc)

	idx, loc = mockdata.ParseID("mock-2-1717200000000")
	assert.Equal(t, 2, idx)
	assert.Equal(t, mockdata.DefaultLocation, loc)

	idx, loc = mockdata.ParseID("ChIJ-real-token")
	assert.Equal(t, 0, idx)
	assert.Equal(t, mockdata.DefaultLocation, loc)
}

func TestDetails_RegeneratesFromID(t *testing.T) {
	g := mockdata.New(9, mockdata.WithClock(fixedClock))
	hotels := g.Hotels("Aix-en-Provence", 10)

	d := g.Details(hotels[8].ID)
	// detail names cycle over seven entries
	assert.Equal(t, "Royal Suites Aix-en-Provence", d.Name)
	assert.Equal(t, "123 Main Street, Aix-en-Provence", d.Address)
	assert.Contains(t, d.Description, "in the heart of Aix-en-Provence")
	assert.Len(t, d.Images, 5)
	assert.Len(t, d.Amenities, 8)
	assert.GreaterOrEqual(t, d.OverallRating, 4.0)
	assert.LessOrEqual(t, d.OverallRating, 5.0)
	assert.GreaterOrEqual(t, d.Reviews, 100)
	assert.True(t, strings.HasPrefix(d.RatePerNight.Lowest, "$"))
	require.Len(t, d.NearbyPlaces, 3)
	assert.Equal(t, "Aix-en-Provence International Airport", d.NearbyPlaces[2].Name)
	assert.Equal(t, "Shuttle", d.NearbyPlaces[2].Transportations[0].Type)
	if d.DealDescription != nil {
		assert.Equal(t, "Special offer: 15% discount for stays over 3 nights", *d.DealDescription)
	}
}
