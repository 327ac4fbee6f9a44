package domain

import (
	"context"
	"time"
)

type HotelProvider interface {
	SearchHotels(ctx context.Context, q HotelQuery) ([]Hotel, error)
	PlaceSuggestions(ctx context.Context, query, apiKey string) ([]PlaceSuggestion, error)
	HotelDetails(ctx context.Context, propertyToken, apiKey string) (HotelDetails, error)
}

type ImageProvider interface {
	Images(ctx context.Context, query, apiKey string) ([]DestinationImage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Persister stores one opaque blob per name. Load returns (nil, nil) when
// nothing has been saved under name yet.
type Persister interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, blob []byte) error
}

// FallbackEvent describes a search that was answered with generated data.
type FallbackEvent struct {
	Location string    `json:"location"`
	Kind     ErrorKind `json:"kind"`
	Status   int       `json:"status,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

// FallbackRecorder receives fallback events. Implementations must not block
// for long; errors are logged by the caller and otherwise ignored.
type FallbackRecorder interface {
	RecordFallback(ctx context.Context, ev FallbackEvent) error
}
