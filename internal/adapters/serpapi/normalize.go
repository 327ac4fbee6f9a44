package serpapi

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"stayscout/internal/domain"
)

/********** alias registries (single source of truth) **********/

var hotelAliases = map[string][]string{
	"id":          {"hotel_id", "property_token", "id"},
	"name":        {"name", "title"},
	"address":     {"address", "location.address", "formatted_address"},
	"thumbnail":   {"thumbnail", "image", "main_image"},
	"description": {"description", "overview"},
	"reviews":     {"reviews_count", "reviews"},
	"rating":      {"rating", "overall_rating"},
	"price":       {"prices.current_price", "price", "rate_per_night.extracted_lowest"},
	"original":    {"prices.original_price", "original_price"},
	"discounted":  {"prices.has_discount", "is_discounted"},
	"amenities":   {"amenities"},
	"images":      {"photos", "images"},
}

var detailAliases = map[string][]string{
	"name":        {"name", "title"},
	"address":     {"address", "location.address"},
	"description": {"description", "overview"},
	"rating":      {"rating", "overall_rating"},
	"reviews":     {"reviews", "reviews_count"},
	"lowest":      {"lowest_price", "rate_per_night.lowest"},
	"highest":     {"highest_price", "rate_per_night.highest"},
	"deal":        {"deal_description", "deal"},
	"nearby":      {"nearby_places"},
	"transport":   {"transportation_options", "transportations"},
}

var suggestionAliases = map[string][]string{
	"id":          {"id", "google_id"},
	"name":        {"name"},
	"description": {"canonical_name", "name"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// floatAlias: number from an alias chain. Accepts float64 and numeric
// strings such as "$120" or "4,5".
func floatAlias(m map[string]any, aliases map[string][]string, key string) *float64 {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			f := v
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			s = strings.TrimLeft(s, "$€£ ")
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func intAlias(m map[string]any, aliases map[string][]string, key string) int {
	if f := floatAlias(m, aliases, key); f != nil && *f > 0 {
		return int(math.Round(*f))
	}
	return 0
}

func boolAlias(m map[string]any, aliases map[string][]string, key string) bool {
	for _, p := range aliases[key] {
		if b, ok := lookupAny(m, p).(bool); ok {
			return b
		}
	}
	return false
}

// stringsAlias: []any of strings or {name|title} objects.
func stringsAlias(m map[string]any, aliases map[string][]string, key string) []string {
	for _, p := range aliases[key] {
		raw, ok := lookupAny(m, p).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				if n, ok := t["name"].(string); ok && n != "" {
					out = append(out, n)
				} else if n, ok := t["title"].(string); ok && n != "" {
					out = append(out, n)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{}
}

// imagesAlias accepts bare URLs or {thumbnail, original|original_image}.
func imagesAlias(m map[string]any, aliases map[string][]string, key string) []domain.Image {
	for _, p := range aliases[key] {
		raw, ok := lookupAny(m, p).([]any)
		if !ok {
			continue
		}
		out := make([]domain.Image, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, domain.Image{Thumbnail: t, Original: t})
				}
			case map[string]any:
				thumb := firstAlias(t, imageAliases, "thumbnail")
				orig := firstAlias(t, imageAliases, "original")
				if thumb == "" {
					thumb = orig
				}
				if orig == "" {
					orig = thumb
				}
				if thumb != "" {
					out = append(out, domain.Image{Thumbnail: thumb, Original: orig})
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []domain.Image{}
}

var imageAliases = map[string][]string{
	"thumbnail": {"thumbnail", "url"},
	"original":  {"original", "original_image", "url"},
}

/********** mappers **********/

func mapHotels(in []map[string]any) []domain.Hotel {
	out := make([]domain.Hotel, 0, len(in))
	for _, h := range in {
		out = append(out, mapHotel(h))
	}
	return out
}

func mapHotel(h map[string]any) domain.Hotel {
	id := firstAlias(h, hotelAliases, "id")
	if id == "" {
		id = uuid.NewString()
	}
	images := imagesAlias(h, hotelAliases, "images")
	thumb := firstAlias(h, hotelAliases, "thumbnail")
	if thumb == "" && len(images) > 0 {
		thumb = images[0].Thumbnail
	}

	var rating float64
	if f := floatAlias(h, hotelAliases, "rating"); f != nil {
		rating = *f
	}
	var current float64
	if f := floatAlias(h, hotelAliases, "price"); f != nil {
		current = *f
	}

	return domain.Hotel{
		ID:          id,
		Name:        firstAlias(h, hotelAliases, "name"),
		Address:     firstAlias(h, hotelAliases, "address"),
		Thumbnail:   thumb,
		Rating:      rating,
		Reviews:     intAlias(h, hotelAliases, "reviews"),
		Price: domain.Price{
			Current:    current,
			Original:   floatAlias(h, hotelAliases, "original"),
			Discounted: boolAlias(h, hotelAliases, "discounted"),
		},
		Amenities:   stringsAlias(h, hotelAliases, "amenities"),
		Description: firstAlias(h, hotelAliases, "description"),
		Images:      images,
	}
}

func mapSuggestions(in []map[string]any) []domain.PlaceSuggestion {
	out := make([]domain.PlaceSuggestion, 0, len(in))
	for _, s := range in {
		name := firstAlias(s, suggestionAliases, "name")
		if name == "" {
			continue
		}
		id := firstAlias(s, suggestionAliases, "id")
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, domain.PlaceSuggestion{
			ID:          id,
			Name:        name,
			Description: firstAlias(s, suggestionAliases, "description"),
			Type:        domain.PlaceTypeCity,
		})
	}
	return out
}

func mapDetails(d map[string]any) domain.HotelDetails {
	out := domain.HotelDetails{
		Name:        firstAlias(d, detailAliases, "name"),
		Address:     firstAlias(d, detailAliases, "address"),
		Description: firstAlias(d, detailAliases, "description"),
		Images:      imagesAlias(d, hotelAliases, "images"),
		Amenities:   stringsAlias(d, hotelAliases, "amenities"),
		Reviews:     intAlias(d, detailAliases, "reviews"),
		RatePerNight: domain.RatePerNight{
			Lowest:  firstAlias(d, detailAliases, "lowest"),
			Highest: firstAlias(d, detailAliases, "highest"),
		},
		NearbyPlaces: []domain.NearbyPlace{},
	}
	if f := floatAlias(d, detailAliases, "rating"); f != nil {
		out.OverallRating = *f
	}
	if deal := firstAlias(d, detailAliases, "deal"); deal != "" {
		out.DealDescription = &deal
	}
	for _, p := range detailAliases["nearby"] {
		raw, ok := lookupAny(d, p).([]any)
		if !ok {
			continue
		}
		for _, it := range raw {
			pm, ok := it.(map[string]any)
			if !ok {
				continue
			}
			out.NearbyPlaces = append(out.NearbyPlaces, domain.NearbyPlace{
				Name:            lookupStr(pm, "name"),
				Distance:        lookupStr(pm, "distance"),
				Transportations: mapTransport(pm),
			})
		}
		break
	}
	return out
}

func mapTransport(place map[string]any) []domain.Transportation {
	for _, p := range detailAliases["transport"] {
		raw, ok := lookupAny(place, p).([]any)
		if !ok {
			continue
		}
		out := make([]domain.Transportation, 0, len(raw))
		for _, it := range raw {
			if tm, ok := it.(map[string]any); ok {
				out = append(out, domain.Transportation{
					Type:     lookupStr(tm, "type"),
					Duration: lookupStr(tm, "duration"),
				})
			}
		}
		return out
	}
	return nil
}
