// Package mockdata produces synthetic hotels and hotel details used when the
// provider fails or returns nothing.
package mockdata

import (
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"stayscout/internal/domain"
)

const (
	idPrefix        = "mock-"
	DefaultLocation = "Popular Destination"
	DefaultCount    = 10
)

var hotelNames = []string{
	"Grand Plaza", "Royal Suites", "Ocean View Resort", "Luxury Palace",
	"Beachfront Hotel", "Sunset Inn", "Five Star Deluxe", "Mountain View Lodge",
	"Central Park Hotel", "Elite Residency",
}

// detail pages only cycle through the first seven names
var detailNames = hotelNames[:7]

var amenities = []string{"Wi-Fi", "Swimming Pool", "Spa", "Restaurant", "Gym"}

var detailAmenities = []string{
	"Wi-Fi", "Swimming Pool", "Spa", "Restaurant", "Gym",
	"Parking", "Room Service", "Air Conditioning",
}

var imagePool = []string{
	"https://images.unsplash.com/photo-1584132967334-10e028bd69f7?q=80&w=2070&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1566073771259-6a8506099945?q=80&w=2070&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1582719508461-905c673771fd?q=80&w=1925&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1606402179428-a57976d71fa4?q=80&w=1974&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1596436889106-be35e843f974?q=80&w=2070&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1605538032404-d7f061325b90?q=80&w=1974&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1600011689032-8b628b8a8747?q=80&w=1974&auto=format&fit=crop",
	"https://plus.unsplash.com/premium_photo-1681922761181-ee59fa91edc7?q=80&w=2070&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1714254567463-26966f6ba4ba?q=80&w=1931&auto=format&fit=crop",
}

const dealText = "Special offer: 15% discount for stays over 3 nights"

// Generator is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

type Option func(*Generator)

// WithClock replaces the wall clock used for id timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New returns a generator seeded with seed; 0 seeds from the current time.
func New(seed int64, opts ...Option) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Generator{rng: rand.New(rand.NewSource(seed)), now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Hotels returns count synthetic hotels named after location.
func (g *Generator) Hotels(location string, count int) []domain.Hotel {
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultLocation
	}
	if count < 0 {
		count = 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	millis := g.now().UnixMilli()
	out := make([]domain.Hotel, 0, count)
	for i := 0; i < count; i++ {
		current := float64(100 + g.rng.Intn(400))
		original := current + float64(g.rng.Intn(100))
		images := []domain.Image{
			pair(imagePool[i%len(imagePool)]),
			pair(imagePool[(i+1)%len(imagePool)]),
			pair(imagePool[(i+2)%len(imagePool)]),
		}
		out = append(out, domain.Hotel{
			ID:        MockID(i, millis, location),
			Name:      hotelNames[i%len(hotelNames)] + " " + location,
			Address:   "123 Main Street, " + location,
			Thumbnail: imagePool[i%len(imagePool)],
			Rating:    round1(3 + g.rng.Float64()*2),
			Reviews:   50 + g.rng.Intn(950),
			Price: domain.Price{
				Current:    current,
				Original:   &original,
				Discounted: g.rng.Float64() > 0.5,
			},
			Amenities: append([]string(nil), amenities[:1+g.rng.Intn(len(amenities))]...),
			Description: fmt.Sprintf("Experience luxury and comfort at this beautiful hotel in %s. "+
				"Enjoy our world-class amenities and exceptional service.", location),
			Images: images,
		})
	}
	return out
}

// Details regenerates a detail record for id. Mock ids yield the hotel
// index and location they were built from; anything else falls back to
// index 0 at DefaultLocation.
func (g *Generator) Details(id string) domain.HotelDetails {
	index, location := ParseID(id)
	name := detailNames[index%len(detailNames)] + " " + location

	g.mu.Lock()
	defer g.mu.Unlock()

	start := index % len(imagePool)
	images := make([]domain.Image, 0, 5)
	for k := 0; k < 5; k++ {
		images = append(images, pair(imagePool[(start+k)%len(imagePool)]))
	}

	d := domain.HotelDetails{
		Name:    name,
		Address: "123 Main Street, " + location,
		Description: fmt.Sprintf("Experience ultimate luxury at %s, a premier destination in the heart of %s. "+
			"Our hotel offers spacious rooms with modern amenities, a rooftop pool with panoramic views, "+
			"and exceptional dining options. Conveniently located near major attractions, shopping districts, "+
			"and entertainment venues, making it perfect for both business and leisure travelers. "+
			"Our dedicated staff is committed to providing personalized service to ensure a memorable stay.",
			name, location),
		Images:        images,
		Amenities:     append([]string(nil), detailAmenities...),
		OverallRating: round1(4 + g.rng.Float64()),
		Reviews:       100 + g.rng.Intn(900),
		RatePerNight: domain.RatePerNight{
			Lowest:  "$" + strconv.Itoa(100+g.rng.Intn(300)),
			Highest: "$" + strconv.Itoa(400+g.rng.Intn(300)),
		},
	}
	if g.rng.Float64() > 0.5 {
		deal := dealText
		d.DealDescription = &deal
	}
	d.NearbyPlaces = []domain.NearbyPlace{
		{
			Name:     location + " Central Park",
			Distance: km1(g.rng.Float64() * 3),
			Transportations: []domain.Transportation{
				{Type: "Walking", Duration: minutes(5 + g.rng.Intn(20))},
				{Type: "Taxi", Duration: minutes(2 + g.rng.Intn(5))},
			},
		},
		{
			Name:     location + " Shopping Mall",
			Distance: km1(g.rng.Float64() * 5),
			Transportations: []domain.Transportation{
				{Type: "Bus", Duration: minutes(10 + g.rng.Intn(15))},
				{Type: "Taxi", Duration: minutes(5 + g.rng.Intn(10))},
			},
		},
		{
			Name:     location + " International Airport",
			Distance: strconv.Itoa(10+g.rng.Intn(20)) + " km",
			Transportations: []domain.Transportation{
				{Type: "Shuttle", Duration: minutes(25 + g.rng.Intn(20))},
				{Type: "Taxi", Duration: minutes(20 + g.rng.Intn(15))},
			},
		},
	}
	return d
}

// MockID formats "mock-<index>-<millis>-<escaped location>".
func MockID(index int, millis int64, location string) string {
	return fmt.Sprintf("%s%d-%d-%s", idPrefix, index, millis, url.PathEscape(location))
}

func IsMockID(id string) bool { return strings.HasPrefix(id, idPrefix) }

// ParseID recovers the index and location embedded by MockID.
func ParseID(id string) (int, string) {
	index, location := 0, DefaultLocation
	if !IsMockID(id) {
		return index, location
	}
	parts := strings.SplitN(strings.TrimPrefix(id, idPrefix), "-", 3)
	if n, err := strconv.Atoi(parts[0]); err == nil && n >= 0 {
		index = n
	}
	if len(parts) == 3 {
		if loc, err := url.PathUnescape(parts[2]); err == nil && strings.TrimSpace(loc) != "" {
			location = loc
		}
	}
	return index, location
}

func pair(u string) domain.Image { return domain.Image{Thumbnail: u, Original: u} }

func round1(f float64) float64 { return math.Round(f*10) / 10 }

func km1(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) + " km" }

func minutes(n int) string { return strconv.Itoa(n) + " min" }
