// internal/services/payment_service.go
package services

import (
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/auctionsys/storefront-backend/internal/config"
)

type PaymentService struct {
	cfg *config.Config
}

func NewPaymentService(cfg *config.Config) *PaymentService {
	if cfg.Payment.StripeSecretKey != "" {
		stripe.Key = cfg.Payment.StripeSecretKey
	}
	return &PaymentService{cfg: cfg}
}

// Enabled reports whether card payments can be processed.
func (s *PaymentService) Enabled() bool {
	return s.cfg.Payment.StripeSecretKey != ""
}

// CreatePaymentIntent creates a Stripe PaymentIntent for the order total and
// returns its ID along with the client secret the storefront needs to
// confirm the payment. Amounts are converted to the smallest currency unit.
func (s *PaymentService) CreatePaymentIntent(orderID, orderReference string, amount float64) (string, string, error) {
	if !s.Enabled() {
		return "", "", fmt.Errorf("card payments are not configured")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(s.cfg.Payment.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", orderID)
	params.AddMetadata("order_reference", orderReference)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	return pi.ID, pi.ClientSecret, nil
}
