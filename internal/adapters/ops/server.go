package ops

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler exposes the operational surface of a binary: liveness and metrics.
func Handler(metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics)
	return r
}

// Serve runs the ops endpoint until the listener fails. Callers run it in a
// goroutine beside the main loop.
func Serve(addr string, metrics http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
