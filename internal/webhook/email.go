package webhook

import (
	"errors"
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
)

var (
	// ErrNotConfigured means the shared webhook secret is absent. Operator
	// problem, not a forged request: callers answer 5xx, never 401.
	ErrNotConfigured = errors.New("email webhook secret not configured")

	// ErrInvalidSignature covers any unverifiable request: missing id,
	// timestamp or signature headers, or a signature mismatch.
	ErrInvalidSignature = errors.New("invalid email webhook signature")
)

// EmailVerifier checks inbound email webhook requests against the provider's
// signed-webhook scheme (svix-id, svix-timestamp, svix-signature headers over
// the raw body).
type EmailVerifier struct {
	wh *svix.Webhook
}

// NewEmailVerifier builds a verifier. An empty secret yields a verifier whose
// Verify always reports ErrNotConfigured, so the distinction stays visible at
// request time rather than killing startup.
func NewEmailVerifier(secret string) (*EmailVerifier, error) {
	const op = "webhook.NewEmailVerifier"

	if secret == "" {
		return &EmailVerifier{}, nil
	}

	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &EmailVerifier{wh: wh}, nil
}

func (v *EmailVerifier) Verify(payload []byte, headers http.Header) error {
	if v == nil || v.wh == nil {
		return ErrNotConfigured
	}

	if err := v.wh.Verify(payload, headers); err != nil {
		return ErrInvalidSignature
	}

	return nil
}
