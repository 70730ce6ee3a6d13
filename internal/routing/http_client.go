package routing

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"solana-swap-broker/internal/domain"
	"solana-swap-broker/internal/solana"
)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second
	DefaultMaxDelay   = 10 * time.Second
)

// HTTPProvider implements Provider against a routing service's HTTP API.
type HTTPProvider struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
}

// ProviderOption configures HTTPProvider.
type ProviderOption func(*HTTPProvider)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ProviderOption {
	return func(p *HTTPProvider) {
		p.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for quote requests.
func WithMaxRetries(n int) ProviderOption {
	return func(p *HTTPProvider) {
		p.maxRetries = n
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *HTTPProvider) {
		p.client = client
	}
}

// NewHTTPProvider creates a new routing provider client.
func NewHTTPProvider(baseURL string, opts ...ProviderOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		maxDelay:   DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Compile-time interface check.
var _ Provider = (*HTTPProvider)(nil)

// collateralRequest is the quote request body.
type collateralRequest struct {
	Mint          string `json:"mint"`
	TokenQuantity uint64 `json:"tokenQuantity"`
	Direction     string `json:"direction"`
}

// collateralResponse is the quote response body.
type collateralResponse struct {
	CollateralLamports uint64 `json:"collateralLamports"`
}

// CollateralFor returns the collateral quote for a token quantity. Quoting is
// read-only, so transient failures are retried with exponential backoff.
func (p *HTTPProvider) CollateralFor(ctx context.Context, mint string, tokenQuantity uint64, direction domain.Direction) (uint64, error) {
	req := collateralRequest{
		Mint:          mint,
		TokenQuantity: tokenQuantity,
		Direction:     string(direction),
	}

	var resp collateralResponse
	if err := p.postRetry(ctx, "/v1/swap/collateral", req, &resp); err != nil {
		return 0, fmt.Errorf("collateral quote: %w", err)
	}
	return resp.CollateralLamports, nil
}

// instructionsRequest is the instruction build request body.
type instructionsRequest struct {
	Mint             string `json:"mint"`
	TokenQuantity    uint64 `json:"tokenQuantity"`
	CollateralAmount uint64 `json:"collateralAmount"`
	Direction        string `json:"direction"`
	Payer            string `json:"payer"`
	SlippageBps      uint16 `json:"slippageBps"`
	FixedSide        string `json:"fixedSide"`
}

// wireAccountMeta mirrors solana.AccountMeta on the wire.
type wireAccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// wireInstruction mirrors solana.Instruction on the wire.
type wireInstruction struct {
	ProgramID string            `json:"programId"`
	Accounts  []wireAccountMeta `json:"accounts"`
	Data      string            `json:"data"` // base64
}

// instructionsResponse is the instruction build response body.
type instructionsResponse struct {
	Instructions []wireInstruction `json:"instructions"`
}

// BuildInstructions returns the ordered swap instructions. The request is
// issued once: some providers reserve quote capacity when building, so a
// blind retry could hold capacity twice.
func (p *HTTPProvider) BuildInstructions(ctx context.Context, params SwapParams) ([]solana.Instruction, error) {
	req := instructionsRequest{
		Mint:             params.Mint,
		TokenQuantity:    params.TokenQuantity,
		CollateralAmount: params.CollateralAmount,
		Direction:        string(params.Direction),
		Payer:            params.Payer.String(),
		SlippageBps:      params.SlippageBps,
		// Token side fixed: slippage applies to the collateral side.
		FixedSide: "token",
	}

	var resp instructionsResponse
	if err := p.post(ctx, "/v1/swap/instructions", req, &resp); err != nil {
		return nil, fmt.Errorf("build instructions: %w", err)
	}

	if len(resp.Instructions) == 0 {
		return nil, fmt.Errorf("build instructions: provider returned none")
	}

	return decodeInstructions(resp.Instructions)
}

// decodeInstructions converts wire instructions into solana.Instruction.
func decodeInstructions(wire []wireInstruction) ([]solana.Instruction, error) {
	out := make([]solana.Instruction, 0, len(wire))
	for i, w := range wire {
		programID, err := solana.ParsePublicKey(w.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: program id: %w", i, err)
		}

		data, err := base64.StdEncoding.DecodeString(w.Data)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: data: %w", i, err)
		}

		accounts := make([]solana.AccountMeta, 0, len(w.Accounts))
		for j, a := range w.Accounts {
			pk, err := solana.ParsePublicKey(a.Pubkey)
			if err != nil {
				return nil, fmt.Errorf("instruction %d: account %d: %w", i, j, err)
			}
			accounts = append(accounts, solana.AccountMeta{
				PubKey:     pk,
				IsSigner:   a.IsSigner,
				IsWritable: a.IsWritable,
			})
		}

		out = append(out, solana.Instruction{
			ProgramID: programID,
			Accounts:  accounts,
			Data:      data,
		})
	}
	return out, nil
}

// postRetry performs a POST with bounded retries and exponential backoff.
func (p *HTTPProvider) postRetry(ctx context.Context, path string, body, result interface{}) error {
	delay := p.retryDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > p.maxDelay {
				delay = p.maxDelay
			}
		}

		err := p.post(ctx, path, body, result)
		if err == nil {
			return nil
		}
		// Unknown assets stay unknown, skip remaining attempts.
		if errors.Is(err, ErrUnknownAsset) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// post performs a single POST request.
func (p *HTTPProvider) post(ctx context.Context, path string, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrUnknownAsset
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
