package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripwhizz/tripsync/internal/middleware"
)

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	calls := 0
	h := middleware.NewRateLimiter(0.001, 2)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		last = httptest.NewRecorder()
		h.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/trips/refresh", nil))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "1000", last.Header().Get("Retry-After"))
}

func TestRateLimiter_UnderLimitPassesThrough(t *testing.T) {
	h := middleware.NewRateLimiter(1000, 100)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for range 50 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/content/refresh", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
