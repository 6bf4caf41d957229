package payment

import (
	"context"
	"net/url"
)

// MockGateway stands in for the provider when no secret key is configured.
// Every transaction is reported as paid.
type MockGateway struct{}

// NewMockGateway creates a gateway that never leaves the process.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	return &InitializeResult{
		AuthorizationURL: "/payment-success?reference=" + url.QueryEscape(req.Reference),
		Reference:        req.Reference,
	}, nil
}

func (g *MockGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	return &VerifyResult{
		Reference: reference,
		Status:    "success",
		Paid:      true,
	}, nil
}
