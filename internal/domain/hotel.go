package domain

// Hotel is the normalized hotel record shared by provider results and mock data.
type Hotel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Rating      float64  `json:"rating"`
	Reviews     int      `json:"reviews"`
	Price       Price    `json:"price"`
	Amenities   []string `json:"amenities"`
	Description string   `json:"description,omitempty"`
	Images      []Image  `json:"images"`
}

type Price struct {
	Current    float64  `json:"current"`
	Original   *float64 `json:"original,omitempty"`
	Discounted bool     `json:"discounted"`
}

// Image is a thumbnail/original URL pair.
type Image struct {
	Thumbnail string `json:"thumbnail"`
	Original  string `json:"original"`
}

type PlaceSuggestion struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Type        string             `json:"type"`
	Images      []DestinationImage `json:"images,omitempty"`
}

const PlaceTypeCity = "city"

// DestinationImage is a photo of a place returned by the image provider.
type DestinationImage struct {
	ID          int64  `json:"id"`
	Thumbnail   string `json:"thumbnail"`
	Large       string `json:"large"`
	Preview     string `json:"preview"`
	Description string `json:"description"`
	Credit      string `json:"credit"`
}

type HotelDetails struct {
	Name            string        `json:"name"`
	Address         string        `json:"address"`
	Description     string        `json:"description"`
	Images          []Image       `json:"images"`
	Amenities       []string      `json:"amenities"`
	OverallRating   float64       `json:"overall_rating"`
	Reviews         int           `json:"reviews"`
	RatePerNight    RatePerNight  `json:"rate_per_night"`
	DealDescription *string       `json:"deal_description,omitempty"`
	NearbyPlaces    []NearbyPlace `json:"nearby_places"`
}

type RatePerNight struct {
	Lowest  string `json:"lowest,omitempty"`
	Highest string `json:"highest,omitempty"`
}

type NearbyPlace struct {
	Name            string           `json:"name"`
	Distance        string           `json:"distance,omitempty"`
	Transportations []Transportation `json:"transportations,omitempty"`
}

type Transportation struct {
	Type     string `json:"type"`
	Duration string `json:"duration"`
}
