package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"solana-swap-broker/internal/domain"
	"solana-swap-broker/internal/observability"
	"solana-swap-broker/internal/orders"
	"solana-swap-broker/internal/solana"
)

// faultLabel folds an error into a low-cardinality metric label.
func faultLabel(err error) string {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		return "not_found"
	case errors.Is(err, orders.ErrExpired):
		return "expired"
	case errors.Is(err, orders.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, orders.ErrAlreadySubmitted):
		return "already_submitted"
	}
	var vErr *orders.ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	return "internal"
}

func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	var req PrepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	token, err := solana.ParsePublicKey(req.Token)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid token", err.Error())
		return
	}

	// The trader key must be able to sign, so it has to lie on the curve.
	trader, err := solana.ParseSigningKey(req.Trader)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid trader", err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	direction, err := domain.ParseDirection(req.Direction)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid direction", err.Error())
		return
	}

	order, err := s.service.Prepare(r.Context(), token, amount, direction, trader)
	if err != nil {
		observability.RecordPrepareFailure(faultLabel(err))
		s.respondServiceError(w, err, "prepare failed")
		return
	}

	observability.RecordPrepared()
	respondJSON(w, http.StatusCreated, orderResponse(order))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	signedTx, err := base64.StdEncoding.DecodeString(req.SignedTx)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid signedTx", "not valid base64")
		return
	}

	order, err := s.service.Submit(r.Context(), signedTx)
	if err != nil {
		observability.RecordSubmitRejection(faultLabel(err))
		s.respondServiceError(w, err, "submit failed")
		return
	}

	observability.RecordSubmitted()
	respondJSON(w, http.StatusCreated, orderResponse(order))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	message := mux.Vars(r)["message"]

	order, err := s.service.Get(r.Context(), message)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order not found", "")
			return
		}
		s.logger.Printf("[api] get order: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	respondJSON(w, http.StatusOK, orderResponse(order))
}

// respondServiceError maps service errors to HTTP statuses. Caller faults
// surface with their message; internal failures are logged and masked.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, label string) {
	if orders.IsClientFault(err) {
		respondError(w, http.StatusBadRequest, label, err.Error())
		return
	}
	s.logger.Printf("[api] %s: %v", label, err)
	respondError(w, http.StatusInternalServerError, "internal error", "")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Status: "ok"}

	height, err := s.network.GetBlockHeight(r.Context())
	if err != nil {
		resp.Status = "degraded"
		resp.NetworkErr = err.Error()
	} else {
		resp.BlockHeight = height
	}

	respondJSON(w, http.StatusOK, resp)
}
