package utils

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
)

// CheckoutLine is one line of a payment session, priced in integer minor
// currency units.
type CheckoutLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutCreator turns order line items into a hosted payment session and
// returns the redirect URL.
type CheckoutCreator interface {
	CreateCheckoutSession(lines []CheckoutLine, successURL, cancelURL string) (string, error)
}

// MinorUnits converts a decimal major-unit price to integer minor units.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// StripeCheckout implements CheckoutCreator with Stripe Checkout Sessions.
type StripeCheckout struct{}

// NewStripeCheckout configures the Stripe client from STRIPE_SECRET. It
// returns nil when the secret is absent, leaving the caller on the
// placeholder-redirect path.
func NewStripeCheckout() *StripeCheckout {
	secret := os.Getenv("STRIPE_SECRET")
	if secret == "" {
		log.Println("STRIPE_SECRET not set; payment sessions disabled")
		return nil
	}
	stripe.Key = secret
	return &StripeCheckout{}
}

func (sc *StripeCheckout) CreateCheckoutSession(lines []CheckoutLine, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	for _, line := range lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.URL, nil
}
