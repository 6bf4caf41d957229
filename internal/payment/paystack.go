package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shophub/internal/domain"

	"github.com/shopspring/decimal"
)

const DefaultPaystackBaseURL = "https://api.paystack.co"

// PaystackGateway talks to the Paystack transaction API.
type PaystackGateway struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewPaystackGateway creates a Paystack gateway. An empty baseURL selects the
// public API and a nil client gets a 30 second timeout.
func NewPaystackGateway(secretKey, baseURL string, httpClient *http.Client) *PaystackGateway {
	if baseURL == "" {
		baseURL = DefaultPaystackBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &PaystackGateway{
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type paystackInitializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency,omitempty"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Channels    []string          `json:"channels,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

func (g *PaystackGateway) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	payload, err := json.Marshal(paystackInitializeRequest{
		Email:       req.Email,
		Amount:      req.Amount.MinorUnits(),
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Channels:    req.Channels,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	var data paystackInitializeData
	if err := g.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(payload), &data); err != nil {
		return nil, err
	}

	return &InitializeResult{
		AuthorizationURL: data.AuthorizationURL,
		Reference:        data.Reference,
		AccessCode:       data.AccessCode,
	}, nil
}

func (g *PaystackGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	var data paystackVerifyData
	if err := g.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &data); err != nil {
		return nil, err
	}

	return &VerifyResult{
		Reference: data.Reference,
		Status:    data.Status,
		Paid:      data.Status == "success",
		Amount:    domain.NewMoney(decimal.New(data.Amount, -2)),
	}, nil
}

func (g *PaystackGateway) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create paystack request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var envelope paystackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: %s - unreadable response", ErrGateway, resp.Status)
	}
	if resp.StatusCode != http.StatusOK || !envelope.Status {
		return fmt.Errorf("%w: %s - %s", ErrGateway, resp.Status, envelope.Message)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: failed to decode data: %v", ErrGateway, err)
	}
	return nil
}
