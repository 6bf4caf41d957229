package payment

import (
	"context"
	"errors"

	"shophub/internal/domain"
)

// Supported checkout channels.
const (
	ChannelCard        = "card"
	ChannelMobileMoney = "mobile_money"
)

// ErrGateway marks failures reported by, or while talking to, the payment provider.
var ErrGateway = errors.New("payment gateway error")

// Gateway initializes and verifies hosted checkout transactions.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// InitializeRequest describes a checkout session for a single order.
type InitializeRequest struct {
	Reference   string
	Email       string
	Amount      domain.Money
	Currency    string
	Channels    []string
	Metadata    map[string]string
	CallbackURL string
}

// InitializeResult tells the client where to complete payment.
type InitializeResult struct {
	AuthorizationURL string
	Reference        string
	AccessCode       string
}

// VerifyResult is the provider's view of a transaction.
type VerifyResult struct {
	Reference string
	Status    string
	Paid      bool
	Amount    domain.Money
}

// ChannelsFor maps a checkout payment method to provider channels.
func ChannelsFor(method string) []string {
	if method == "momo" || method == ChannelMobileMoney {
		return []string{ChannelMobileMoney}
	}
	return []string{ChannelCard}
}
