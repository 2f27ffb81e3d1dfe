package webhook

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func signedHeaders(t *testing.T, secret string, payload []byte) http.Header {
	t.Helper()

	wh, err := svix.NewWebhook(secret)
	require.NoError(t, err)

	msgID := "msg_test_1"
	ts := time.Now()

	sig, err := wh.Sign(msgID, ts, payload)
	require.NoError(t, err)

	h := http.Header{}
	h.Set("svix-id", msgID)
	h.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
	h.Set("svix-signature", sig)

	return h
}

func TestEmailVerifier(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"type":"email.received","data":{"from":"a@b.c"}}`)

	verifier, err := NewEmailVerifier(testWebhookSecret)
	require.NoError(t, err)

	t.Run("Valid signature", func(t *testing.T) {
		t.Parallel()

		headers := signedHeaders(t, testWebhookSecret, payload)
		assert.NoError(t, verifier.Verify(payload, headers))
	})

	t.Run("Wrong secret rejects", func(t *testing.T) {
		t.Parallel()

		headers := signedHeaders(t, "whsec_C2FVsBQIhrscChlQIMV+b5sSYspob7oD", payload)
		assert.ErrorIs(t, verifier.Verify(payload, headers), ErrInvalidSignature)
	})

	t.Run("Tampered payload rejects", func(t *testing.T) {
		t.Parallel()

		headers := signedHeaders(t, testWebhookSecret, payload)
		tampered := []byte(`{"type":"email.received","data":{"from":"evil@b.c"}}`)
		assert.ErrorIs(t, verifier.Verify(tampered, headers), ErrInvalidSignature)
	})

	t.Run("Missing headers reject", func(t *testing.T) {
		t.Parallel()

		assert.ErrorIs(t, verifier.Verify(payload, http.Header{}), ErrInvalidSignature)
	})

	t.Run("Missing signature header rejects", func(t *testing.T) {
		t.Parallel()

		headers := signedHeaders(t, testWebhookSecret, payload)
		headers.Del("svix-signature")
		assert.ErrorIs(t, verifier.Verify(payload, headers), ErrInvalidSignature)
	})
}

func TestEmailVerifierNotConfigured(t *testing.T) {
	t.Parallel()

	payload := []byte(`{}`)

	verifier, err := NewEmailVerifier("")
	require.NoError(t, err)

	headers := signedHeaders(t, testWebhookSecret, payload)
	assert.ErrorIs(t, verifier.Verify(payload, headers), ErrNotConfigured)
}
