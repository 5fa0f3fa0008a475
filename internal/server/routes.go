package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/go-drift/nodeward/pkg/contact"
	"github.com/go-drift/nodeward/pkg/errors"
	"github.com/go-drift/nodeward/pkg/monitor"
)

const (
	maxBodyBytes  = 1 << 20
	maxPageWidth  = 10000
	maxPageHeight = 10000
	maxElapsed    = 10 * time.Second
)

func (s *Server) routes(r *mux.Router, gatherer prometheus.Gatherer) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.countRequests)
	api.HandleFunc("/content", s.handleContent).Methods(http.MethodGet)
	api.HandleFunc("/page", s.handlePage).Methods(http.MethodGet)
	api.HandleFunc("/contact", s.handleContact).Methods(http.MethodPost)
	api.HandleFunc("/events", s.handleListEvents).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handlePushEvent).Methods(http.MethodPost)

	r.Handle("/ws", s.hub)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.requests.WithLabelValues(route, r.Method).Inc()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleContent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog())
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	q := pageQuery{Width: 1280, Height: 800}
	var err error
	values := r.URL.Query()
	if q.Scroll, err = floatParam(values.Get("scroll"), 0, 0, 1e7); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("scroll: %w", err))
		return
	}
	if q.Width, err = floatParam(values.Get("width"), q.Width, 1, maxPageWidth); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("width: %w", err))
		return
	}
	if q.Height, err = floatParam(values.Get("height"), q.Height, 1, maxPageHeight); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("height: %w", err))
		return
	}
	ms, err := floatParam(values.Get("elapsed"), 0, 0, float64(maxElapsed/time.Millisecond))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("elapsed: %w", err))
		return
	}
	q.Elapsed = time.Duration(ms * float64(time.Millisecond))

	state, err := renderPage(s.Catalog(), q)
	if err != nil {
		s.log.Error("page render failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var sub contact.Submission
	if err := decodeBody(w, r, &sub); err != nil {
		s.metrics.contacts.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sub.ID, sub.CreatedAt = "", time.Time{}
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		s.metrics.contacts.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}
	stored, err := s.store.Insert(r.Context(), sub)
	if err != nil {
		s.metrics.contacts.WithLabelValues("error").Inc()
		s.log.Error("contact insert failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Errorf("submission could not be saved"))
		return
	}
	s.metrics.contacts.WithLabelValues("accepted").Inc()
	s.log.Info("contact submission", zap.String("id", stored.ID), zap.String("industry", stored.Industry))
	writeJSON(w, http.StatusCreated, stored)
}

type eventsResponse struct {
	Events []monitor.Event `json:"events"`
	Stats  monitor.Stats   `json:"stats"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, eventsResponse{Events: s.feed.Events(), Stats: s.feed.Stats()})
}

func (s *Server) handlePushEvent(w http.ResponseWriter, r *http.Request) {
	var e monitor.Event
	if err := decodeBody(w, r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if e == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("event must be a JSON object"))
		return
	}

	kind := monitor.KindLiveData
	var stored monitor.Event
	switch r.URL.Query().Get("kind") {
	case "", "live-data":
		stored = s.feed.Push(e)
	case "attack", monitor.KindAttackUpdate:
		kind = monitor.KindAttackUpdate
		stored = s.feed.PushAttack(e)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown event kind %q", r.URL.Query().Get("kind")))
		return
	}
	s.metrics.events.WithLabelValues(eventLabel(stored.Type())).Inc()
	if err := s.hub.Broadcast(kind, stored); err != nil {
		s.log.Warn("live feed broadcast failed", zap.Error(err))
	}
	writeJSON(w, http.StatusAccepted, stored)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Validation("server.decode", fmt.Errorf("invalid JSON body: %w", err))
	}
	return nil
}

func floatParam(raw string, def, lo, hi float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsNaN(v) || v < lo || v > hi {
		return 0, fmt.Errorf("%v outside [%v, %v]", v, lo, hi)
	}
	return v, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	var e *errors.Error
	if stderrors.As(err, &e) && e.Err != nil {
		msg = e.Err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
