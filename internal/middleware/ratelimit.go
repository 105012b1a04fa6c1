package middleware

import (
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// NewRateLimiter returns a middleware that admits at most perSecond requests
// per second with the given burst, shared by every caller. Requests over the
// limit get 429 with a Retry-After hint.
func NewRateLimiter(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				retry := 1
				if perSecond > 0 && perSecond < 1 {
					retry = int(1/perSecond + 0.5)
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
