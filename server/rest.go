package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jonwraymond/faqintent/bot"
	"github.com/jonwraymond/faqintent/intent"
)

// Router returns the HTTP API:
//
//	GET  /healthz
//	GET  /metrics
//	GET  /v1/intro
//	POST /v1/ask            {"query": "..."}
//	POST /v1/match          {"query": "...", "threshold": 0.3, "explain": true}
//	GET  /v1/intents        ?detail=summary|utterances|full
//	GET  /v1/intents/{id}   ?detail=...
//	POST /rpc               JSON-RPC
//	POST /sse               JSON-RPC answered as Server-Sent Events
func Router(s *Server) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.healthzHandler).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	// Routes stay on the root router: a mux subrouter answers a method
	// mismatch with 404 instead of 405.
	r.HandleFunc("/v1/intro", s.introHandler).Methods(http.MethodGet)
	r.HandleFunc("/v1/ask", s.askHandler).Methods(http.MethodPost)
	r.HandleFunc("/v1/match", s.matchHandler).Methods(http.MethodPost)
	r.HandleFunc("/v1/intents", s.listIntentsHandler).Methods(http.MethodGet)
	r.HandleFunc("/v1/intents/{id}", s.describeIntentHandler).Methods(http.MethodGet)

	r.Handle("/rpc", ServeHTTP(s)).Methods(http.MethodPost)
	r.Handle("/sse", ServeSSE(s)).Methods(http.MethodPost)

	r.Use(s.logRequests)
	return r
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, intent.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bot.ErrEmptyQuery),
		errors.Is(err, intent.ErrInvalidDetail),
		errors.Is(err, ErrInvalidParams):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	catalog := s.bot.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"intents":     catalog.Len(),
		"fingerprint": catalog.Fingerprint(),
	})
}

func (s *Server) introHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.bot.Intro())
}

type askBody struct {
	Query string `json:"query"`
}

func (s *Server) askHandler(w http.ResponseWriter, r *http.Request) {
	var body askBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	reply, err := s.Ask(r.Context(), body.Query)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Match(req))
}

func (s *Server) listIntentsHandler(w http.ResponseWriter, r *http.Request) {
	level := intent.DetailLevel(r.URL.Query().Get("detail"))
	intents, err := s.ListIntents(level)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"intents": intents})
}

func (s *Server) describeIntentHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	level := intent.DetailLevel(r.URL.Query().Get("detail"))
	d, err := s.DescribeIntent(id, level)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
