// Package middleware provides the HTTP middleware stack of the tripsyncd
// companion API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers based on allowedOrigins.
// Each entry in allowedOrigins must be a full origin (scheme + host, no trailing slash).
// The companion API only reads state and posts commands, so GET and POST suffice;
// Last-Event-ID lets EventSource clients reconnect to the state stream.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Last-Event-ID"},
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
