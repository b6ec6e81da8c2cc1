package middleware

import (
	"net/http"

	"github.com/cardfile/cardfile/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// DefaultRateLimit is used when no rate is configured
const DefaultRateLimit = "10-S"

// RateLimit returns middleware backed by ulule/limiter with a Redis store.
// rate uses the limiter format, e.g. "10-S" for ten requests per second.
// Clients are keyed by IP via request.ClientIP.
func RateLimit(redisClient *redis.Client, rate string) (func(http.Handler) http.Handler, error) {
	store, err := redisstore.NewStore(redisClient)
	if err != nil {
		return nil, err
	}
	return rateLimitWithStore(store, rate)
}

func rateLimitWithStore(store limiter.Store, rate string) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		rate = DefaultRateLimit
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	instance := limiter.New(store, parsed)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}
