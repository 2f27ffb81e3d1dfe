package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
)

// ValidateTwilioSignature recomputes the provider signature over the full
// request URL concatenated with every posted parameter, sorted by key, each
// appended as key+value, and compares it against the X-Twilio-Signature
// header value. Fails closed: a missing shared secret or missing signature
// always rejects.
func ValidateTwilioSignature(authToken, requestURL string, params url.Values, signature string) bool {
	if authToken == "" || signature == "" {
		return false
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(requestURL))
	for _, k := range keys {
		mac.Write([]byte(k))
		mac.Write([]byte(params.Get(k)))
	}

	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
