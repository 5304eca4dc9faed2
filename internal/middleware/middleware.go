package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/forrest-fire-fund/cnx-backend/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var allowed = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"https://forrest-fire-fund-cnx.vercel.app",
	"https://forrest-fire-fund-cnx.onrender.com",
}

// AllowedOrigins returns the CORS allow-list, plus extra when it is non-empty.
func AllowedOrigins(extra string) []string {
	origins := append([]string(nil), allowed...)
	if extra != "" {
		origins = append(origins, extra)
	}
	return origins
}

// CORSMiddleware echoes the origin back only if it is on the allow-list.
func CORSMiddleware(extraOrigin string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   AllowedOrigins(extraOrigin),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// MetricsMiddleware records request counts and latency per chi route pattern.
// It must be mounted on the top-level router so the pattern is complete.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status/100)+"xx").Inc()
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}
