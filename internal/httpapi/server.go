// Package httpapi exposes the broker over HTTP.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"solana-swap-broker/internal/observability"
	"solana-swap-broker/internal/orders"
	"solana-swap-broker/internal/solana"
)

// Server handles the broker's REST API.
type Server struct {
	service *orders.Service
	network solana.NetworkClient
	router  *mux.Router
	logger  *log.Logger
}

// NewServer creates a new API server.
func NewServer(service *orders.Service, network solana.NetworkClient, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		service: service,
		network: network,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.requestMiddleware)

	api.HandleFunc("/orders/prepare", s.handlePrepare).Methods("POST")
	api.HandleFunc("/orders/submit", s.handleSubmit).Methods("POST")
	// Messages are base64 and may contain slashes, so the route must
	// capture the remainder of the path.
	api.HandleFunc("/orders/{message:.+}", s.handleGetOrder).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/status", s.handleStatus).Methods("GET")
	s.router.Handle("/metrics", observability.Handler()).Methods("GET")
}

// Handler returns the server's root handler with CORS applied.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(s.router)
}

// statusRecorder captures the written status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestMiddleware tags each request with an ID and records its outcome.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		observability.ObserveRequest(route, strconv.Itoa(rec.status), elapsed.Seconds())
		s.logger.Printf("[api] %s %s %d %s (%s)", r.Method, r.URL.Path, rec.status, elapsed.Round(time.Millisecond), requestID)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
