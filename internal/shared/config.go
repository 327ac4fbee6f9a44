package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	RateLimit   int // requests per minute per client IP; 0 disables

	SerpAPIKey      string
	PixabayKey      string
	SerpBase        string
	PixabayBase     string
	ProviderRPS     int
	ProviderTimeout time.Duration

	MockCount int
	MockSeed  int64

	SuggestDelay     time.Duration
	SuggestMinLength int
	SuggestImages    bool

	CacheTTL  time.Duration
	RedisAddr string
	RedisDB   int
	RedisPass string
	MySQLDSN  string

	StateBackend string // file|redis|mysql
	StateDir     string
	StateName    string
	FenceSearch  bool

	PrefetchWorkers      int
	PrefetchDestinations string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		RateLimit:   atoi("RATE_LIMIT_PER_MINUTE", 120),

		SerpAPIKey:      env("SERP_API_KEY", os.Getenv("EXPO_PUBLIC_SERP_API_KEY")),
		PixabayKey:      env("PIXABAY_API_KEY", os.Getenv("EXPO_PUBLIC_PIXABAY_API_KEY")),
		SerpBase:        env("SERP_BASE_URL", "https://serpapi.com"),
		PixabayBase:     env("PIXABAY_BASE_URL", "https://pixabay.com/api/"),
		ProviderRPS:     atoi("PROVIDER_RPS", 5),
		ProviderTimeout: time.Duration(atoi("PROVIDER_TIMEOUT_SECONDS", 20)) * time.Second,

		MockCount: atoi("MOCK_COUNT", 10),
		MockSeed:  int64(atoi("MOCK_SEED", 0)),

		SuggestDelay:     time.Duration(atoi("SUGGEST_DELAY_MS", 300)) * time.Millisecond,
		SuggestMinLength: atoi("SUGGEST_MIN_LENGTH", 2),
		SuggestImages:    envBool("SUGGEST_IMAGES", false),

		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		RedisAddr: env("REDIS_ADDR", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		RedisPass: env("REDIS_PASSWORD", ""),
		MySQLDSN:  env("MYSQL_DSN", "root:root@tcp(localhost:3306)/stayscout?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),

		StateBackend: strings.ToLower(env("STATE_BACKEND", "file")),
		StateDir:     env("STATE_DIR", "./data"),
		StateName:    env("STATE_NAME", "hotel-storage"),
		FenceSearch:  envBool("STATE_FENCE_SEARCHES", false),

		PrefetchWorkers:      atoi("PREFETCH_WORKERS", 4),
		PrefetchDestinations: env("PREFETCH_DESTINATIONS", ""),
	}
	if c.SerpAPIKey == "" {
		log.Warn().Msg("SERP_API_KEY is empty; searches will fail validation")
	}
	if c.PixabayKey == "" {
		log.Warn().Msg("PIXABAY_API_KEY is empty; searches will fail validation")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
