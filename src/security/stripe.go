package security

import (
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// DefaultSignatureTolerance is how old a Stripe-Signature timestamp may be.
const DefaultSignatureTolerance = 5 * time.Minute

var (
	ErrMissingSignature = webhook.ErrNotSigned
	ErrMalformedHeader  = webhook.ErrInvalidHeader
	ErrInvalidSignature = webhook.ErrNoValidSignature
	ErrSignatureExpired = webhook.ErrTooOld
)

// ConstructStripeEvent checks the Stripe-Signature header against payload and decodes the
// event. Only metadata is read from events, so API version mismatches are tolerated.
func ConstructStripeEvent(payload []byte, header, secret string, tolerance time.Duration) (stripe.Event, error) {
	if secret == "" {
		return stripe.Event{}, ErrAuthNotConfigured
	}
	return webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: true,
	})
}
