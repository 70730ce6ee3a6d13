package httpapi

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"solana-swap-broker/internal/orders"
	routingstub "solana-swap-broker/internal/routing/stub"
	"solana-swap-broker/internal/solana"
	solanastub "solana-swap-broker/internal/solana/stub"
	"solana-swap-broker/internal/storage/memory"
)

type apiEnv struct {
	server  *Server
	network *solanastub.NetworkClient
	trader  solana.PublicKey
	signer  ed25519.PrivateKey
	token   solana.PublicKey
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var trader solana.PublicKey
	copy(trader[:], pub)

	token := solana.PublicKey{0x10}

	network := solanastub.NewNetworkClient()
	network.Decimals[token.String()] = 6
	network.Latest = solana.LatestBlockhash{
		Blockhash:            solana.Blockhash{0xAB},
		LastValidBlockHeight: 1000,
	}
	network.Height = 900

	provider := routingstub.NewProvider()
	provider.CollateralLamports[token.String()] = 100_000
	provider.Instructions[token.String()] = []solana.Instruction{
		{
			ProgramID: solana.PublicKey{0x40},
			Accounts: []solana.AccountMeta{
				{PubKey: trader, IsSigner: true, IsWritable: true},
			},
			Data: []byte{0xDE},
		},
	}

	service := orders.New(orders.Options{
		Store:    memory.NewOrderStore(),
		Network:  network,
		Routing:  provider,
		Events:   memory.NewOrderEventStore(),
		Treasury: solana.PublicKey{0x20},
	})

	return &apiEnv{
		server:  NewServer(service, network, nil),
		network: network,
		trader:  trader,
		signer:  priv,
		token:   token,
	}
}

func (env *apiEnv) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (env *apiEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	return rec
}

// prepareOrder drives the prepare endpoint and returns the response order.
func (env *apiEnv) prepareOrder(t *testing.T) OrderResponse {
	t.Helper()

	rec := env.post(t, "/api/v1/orders/prepare", PrepareRequest{
		Token:     env.token.String(),
		Amount:    "1.5",
		Direction: "buy",
		Trader:    env.trader.String(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("prepare: status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func (env *apiEnv) signOrder(t *testing.T, order OrderResponse) string {
	t.Helper()

	message, err := base64.StdEncoding.DecodeString(order.TransactionMessage)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	sig := ed25519.Sign(env.signer, message)
	signedTx, err := solana.EncodeSignedTransaction([][]byte{sig}, message)
	if err != nil {
		t.Fatalf("encode transaction: %v", err)
	}
	return base64.StdEncoding.EncodeToString(signedTx)
}

func TestAPI_PrepareAndSubmit(t *testing.T) {
	env := newAPIEnv(t)

	order := env.prepareOrder(t)
	if order.Submitted {
		t.Error("prepared order must be unsubmitted")
	}
	if order.Direction != "BUY" {
		t.Errorf("direction: got %s", order.Direction)
	}
	if order.Amount != "1.5" {
		t.Errorf("amount: got %s", order.Amount)
	}

	rec := env.post(t, "/api/v1/orders/submit", SubmitRequest{
		SignedTx: env.signOrder(t, order),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status %d, body %s", rec.Code, rec.Body.String())
	}

	var submitted OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !submitted.Submitted {
		t.Error("submitted flag not set")
	}
	if submitted.TxHash == nil || *submitted.TxHash == "" {
		t.Error("txHash missing")
	}
	if env.network.RelayCount() != 1 {
		t.Errorf("expected 1 relay, got %d", env.network.RelayCount())
	}
}

func TestAPI_PrepareValidation(t *testing.T) {
	env := newAPIEnv(t)

	base := PrepareRequest{
		Token:     env.token.String(),
		Amount:    "1.5",
		Direction: "BUY",
		Trader:    env.trader.String(),
	}

	cases := []struct {
		name   string
		mutate func(r *PrepareRequest)
	}{
		{"bad token", func(r *PrepareRequest) { r.Token = "not-base58!" }},
		{"off-curve trader", func(r *PrepareRequest) { r.Trader = env.token.String() }},
		{"bad amount", func(r *PrepareRequest) { r.Amount = "abc" }},
		{"negative amount", func(r *PrepareRequest) { r.Amount = "-1" }},
		{"bad direction", func(r *PrepareRequest) { r.Direction = "HOLD" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)

			rec := env.post(t, "/api/v1/orders/prepare", req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status %d, body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAPI_SubmitDuplicate(t *testing.T) {
	env := newAPIEnv(t)

	order := env.prepareOrder(t)
	signedTx := env.signOrder(t, order)

	rec := env.post(t, "/api/v1/orders/submit", SubmitRequest{SignedTx: signedTx})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first submit: status %d", rec.Code)
	}

	rec = env.post(t, "/api/v1/orders/submit", SubmitRequest{SignedTx: signedTx})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate submit: status %d, body %s", rec.Code, rec.Body.String())
	}
	if env.network.RelayCount() != 1 {
		t.Errorf("duplicate must not relay, got %d", env.network.RelayCount())
	}
}

func TestAPI_SubmitExpired(t *testing.T) {
	env := newAPIEnv(t)

	order := env.prepareOrder(t)
	signedTx := env.signOrder(t, order)

	env.network.SetHeight(order.LastValidBlockHeight + 1)

	rec := env.post(t, "/api/v1/orders/submit", SubmitRequest{SignedTx: signedTx})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Message != orders.ErrExpired.Error() {
		t.Errorf("expected expiration message, got %q", errResp.Message)
	}
}

func TestAPI_SubmitBadBase64(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.post(t, "/api/v1/orders/submit", SubmitRequest{SignedTx: "!!!"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d", rec.Code)
	}
}

func TestAPI_GetOrder(t *testing.T) {
	env := newAPIEnv(t)

	order := env.prepareOrder(t)

	rec := env.get(t, "/api/v1/orders/"+order.TransactionMessage)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var got OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.TransactionMessage != order.TransactionMessage {
		t.Error("message mismatch")
	}

	rec = env.get(t, "/api/v1/orders/missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing order: status %d", rec.Code)
	}
}

func TestAPI_Health(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.get(t, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("status %d", rec.Code)
	}
}

func TestAPI_Status(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.get(t, "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected ok, got %s", resp.Status)
	}
	if resp.BlockHeight != 900 {
		t.Errorf("blockHeight: got %d", resp.BlockHeight)
	}
}
