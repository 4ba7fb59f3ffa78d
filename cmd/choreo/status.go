package main

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// loopStatus is written by the frame loop and read by HTTP handlers.
type loopStatus struct {
	frame  atomic.Int64
	active atomic.Int64
	done   atomic.Bool
}

func (s *loopStatus) update(frame int64, active int) {
	s.frame.Store(frame)
	s.active.Store(int64(active))
}

func newStatusRouter(reg *prometheus.Registry, st *loopStatus) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"frame":   st.frame.Load(),
			"active":  st.active.Load(),
			"stopped": st.done.Load(),
		})
	})
	return r
}
