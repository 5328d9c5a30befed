package worldapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/spicelanes/game-server/spicelanes"
	"github.com/spicelanes/game-server/spicelanes/database/models"
	"github.com/spicelanes/game-server/spicelanes/database/repositories"
)

var (
	ErrUnknownReference = errors.New("worldapp: unknown payment reference")
	ErrPaymentFailed    = errors.New("worldapp: payment not successful")
)

// Payment lifecycle statuses.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// PaymentConfirmation is what the super-app's pay kit reports back after the
// user settles.
type PaymentConfirmation struct {
	TransactionID string `json:"transaction_id"`
	Reference     string `json:"reference"`
	Amount        string `json:"amount"`
	Token         string `json:"token"`
	Status        string `json:"status"`
}

// PaymentResult mirrors the confirmation endpoint's response contract.
type PaymentResult struct {
	Success   bool   `json:"success"`
	Verified  bool   `json:"verified"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Payments issues payment references and confirms settlements. Without portal
// credentials confirmations are recorded but marked unverified; the provider
// is never consulted.
type Payments struct {
	cfg   spicelanes.WorldAppConfig
	store repositories.Store
	now   func() time.Time
}

func NewPayments(cfg spicelanes.WorldAppConfig, store repositories.Store) *Payments {
	return &Payments{cfg: cfg, store: store, now: time.Now}
}

// InitiatePayment mints a fresh reference the client passes into the pay kit.
// The reference is the idempotency key for the later confirmation.
func (p *Payments) InitiatePayment(ctx context.Context, account string) (string, error) {
	reference := snowflake.New(p.now()).String()
	payment := &models.Payment{
		Reference:      reference,
		AccountAddress: account,
		Status:         StatusPending,
		CreatedAt:      p.now(),
		UpdatedAt:      p.now(),
	}
	if err := p.store.Payments().Create(ctx, payment); err != nil {
		return "", fmt.Errorf("failed to create payment: %w", err)
	}
	return reference, nil
}

// ConfirmPayment records the client-reported settlement against a previously
// issued reference. A non-success provider status fails the payment without
// being a server error. Without portal credentials there is no server-side
// settlement check, so Verified stays false.
func (p *Payments) ConfirmPayment(ctx context.Context, conf PaymentConfirmation) (*PaymentResult, error) {
	payment, err := p.store.Payments().Get(ctx, conf.Reference)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownReference
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	payment.TransactionID = conf.TransactionID
	payment.Amount = conf.Amount
	payment.Token = conf.Token
	payment.UpdatedAt = p.now()

	if conf.Status != StatusSuccess {
		payment.Status = StatusFailed
		if err := p.store.Payments().Update(ctx, payment); err != nil {
			return nil, fmt.Errorf("failed to update payment: %w", err)
		}
		return nil, ErrPaymentFailed
	}

	payment.Status = StatusSuccess
	// TODO: verify the transaction against the Developer Portal once API
	// credentials are provisioned; until then confirmations are trusted.
	verified := false
	if !p.cfg.Enabled || p.cfg.APIKey == "" {
		slog.Warn("Payment accepted without portal verification",
			slog.String("type", "sys"),
			slog.String("reference", conf.Reference))
	}
	payment.Verified = verified

	if err := p.store.Payments().Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	return &PaymentResult{
		Success:   true,
		Verified:  verified,
		Reference: payment.Reference,
		Status:    payment.Status,
	}, nil
}
