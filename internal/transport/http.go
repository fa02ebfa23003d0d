package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ImportPath is the browser-facing import route.
const ImportPath = "/api/admin/import"

// NewServer creates the HTTP router for the proxy. metrics may be nil.
func NewServer(proxy http.Handler, metrics *Metrics) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodPost, ImportPath, proxy)
	r.Get("/health", handleHealth)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
