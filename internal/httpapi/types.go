package httpapi

import "solana-swap-broker/internal/domain"

// PrepareRequest asks the broker to build an unsigned swap proposal.
type PrepareRequest struct {
	Token     string `json:"token"`     // base58 mint address
	Amount    string `json:"amount"`    // decimal token amount
	Direction string `json:"direction"` // BUY or SELL
	Trader    string `json:"trader"`    // base58 public key that will sign
}

// SubmitRequest carries a signed transaction back to the broker.
type SubmitRequest struct {
	SignedTx string `json:"signedTx"` // base64 signed transaction
}

// OrderResponse is the JSON rendering of an order.
type OrderResponse struct {
	TransactionMessage   string  `json:"transactionMessage"`
	Submitted            bool    `json:"submitted"`
	LastValidBlockHeight uint64  `json:"lastValidBlockHeight"`
	Trader               string  `json:"trader"`
	Direction            string  `json:"direction"`
	Token                string  `json:"token"`
	Amount               string  `json:"amount"`
	SignedTx             *string `json:"signedTx,omitempty"`
	TxHash               *string `json:"txHash,omitempty"`
	CreatedAt            int64   `json:"createdAt"`
}

func orderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		TransactionMessage:   o.TransactionMessage,
		Submitted:            o.Submitted,
		LastValidBlockHeight: o.LastValidBlockHeight,
		Trader:               o.Trader,
		Direction:            string(o.Direction),
		Token:                o.Token,
		Amount:               o.Amount.String(),
		SignedTx:             o.SignedTx,
		TxHash:               o.TxHash,
		CreatedAt:            o.CreatedAt,
	}
}

// StatusResponse reports broker and network liveness.
type StatusResponse struct {
	Status      string `json:"status"`
	BlockHeight uint64 `json:"blockHeight,omitempty"`
	NetworkErr  string `json:"networkError,omitempty"`
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
