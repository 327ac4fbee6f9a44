package app

import (
	"sort"
	"strings"

	"stayscout/internal/domain"
)

type SortOrder string

const (
	SortRecommended SortOrder = "recommended"
	SortPriceLow    SortOrder = "price_low"
	SortPriceHigh   SortOrder = "price_high"
	SortRating      SortOrder = "rating"
)

func (o SortOrder) Valid() bool {
	switch o {
	case "", SortRecommended, SortPriceLow, SortPriceHigh, SortRating:
		return true
	}
	return false
}

// Filters narrows a result list. A zero value keeps everything.
type Filters struct {
	// PriceRange is [min, max] on price.current, inclusive.
	PriceRange *[2]float64 `json:"priceRange,omitempty"`
	MinRating  float64     `json:"rating,omitempty"`
	Amenities  []string    `json:"amenities,omitempty"`
}

// FilterHotels returns the hotels matching f, preserving order. Amenity
// matching is case-insensitive and requires every listed amenity.
func FilterHotels(hotels []domain.Hotel, f Filters) []domain.Hotel {
	want := make([]string, 0, len(f.Amenities))
	for _, a := range f.Amenities {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			want = append(want, a)
		}
	}

	out := make([]domain.Hotel, 0, len(hotels))
	for _, h := range hotels {
		if f.PriceRange != nil && (h.Price.Current < f.PriceRange[0] || h.Price.Current > f.PriceRange[1]) {
			continue
		}
		if h.Rating < f.MinRating {
			continue
		}
		if !hasAll(h.Amenities, want) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func hasAll(have []string, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, a := range have {
		set[strings.ToLower(a)] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

// SortHotels returns a sorted copy. Recommended keeps provider order.
func SortHotels(hotels []domain.Hotel, order SortOrder) []domain.Hotel {
	out := make([]domain.Hotel, len(hotels))
	copy(out, hotels)
	switch order {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.Current < out[j].Price.Current })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.Current > out[j].Price.Current })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Rating != out[j].Rating {
				return out[i].Rating > out[j].Rating
			}
			return out[i].Reviews > out[j].Reviews
		})
	}
	return out
}
