package webhook

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"

	// DefaultTolerance bounds the clock skew accepted on svix-timestamp.
	DefaultTolerance = 5 * time.Minute
)

var (
	ErrMissingSecret       = errors.New("webhook: signing secret is required")
	ErrInvalidSecret       = errors.New("webhook: signing secret is malformed")
	ErrMissingHeaders      = errors.New("webhook: missing svix headers")
	ErrInvalidSignature    = errors.New("webhook: no matching signature found")
	ErrTimestampOutOfRange = errors.New("webhook: message timestamp outside tolerance")
)

// Headers are the three signature headers sent with every delivery.
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

// HeadersFrom extracts the signature headers from an HTTP header set.
func HeadersFrom(h http.Header) Headers {
	return Headers{
		ID:        strings.TrimSpace(h.Get(HeaderID)),
		Timestamp: strings.TrimSpace(h.Get(HeaderTimestamp)),
		Signature: strings.TrimSpace(h.Get(HeaderSignature)),
	}
}

// Complete reports whether all three headers are present.
func (h Headers) Complete() bool {
	return h.ID != "" && h.Timestamp != "" && h.Signature != ""
}

func (h Headers) httpHeader() http.Header {
	hdr := http.Header{}
	hdr.Set(HeaderID, h.ID)
	hdr.Set(HeaderTimestamp, h.Timestamp)
	hdr.Set(HeaderSignature, h.Signature)
	return hdr
}

// Verifier checks deliveries with the Svix SDK. The replay window is applied
// here against Now so the clock and tolerance stay configurable.
type Verifier struct {
	wh        *svix.Webhook
	Tolerance time.Duration
	Now       func() time.Time
}

// NewVerifier builds a verifier from a "whsec_<base64>" secret. A secret the
// SDK cannot decode is a configuration error.
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return &Verifier{
		wh:        wh,
		Tolerance: DefaultTolerance,
		Now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Verify authenticates payload against the given headers.
func (v *Verifier) Verify(payload []byte, h Headers) error {
	if !h.Complete() {
		return ErrMissingHeaders
	}
	ts, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp %q", ErrTimestampOutOfRange, h.Timestamp)
	}
	if tol := v.Tolerance; tol > 0 {
		now := v.now()
		sent := time.Unix(ts, 0)
		if now.Sub(sent) > tol || sent.Sub(now) > tol {
			return ErrTimestampOutOfRange
		}
	}
	if err := v.wh.VerifyIgnoringTimestamp(payload, h.httpHeader()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// Sign returns the svix-signature header value for a message.
func (v *Verifier) Sign(msgID string, ts time.Time, payload []byte) (string, error) {
	return v.wh.Sign(msgID, ts, payload)
}

// SignHeaders returns a complete header set for payload.
func (v *Verifier) SignHeaders(msgID string, ts time.Time, payload []byte) (Headers, error) {
	sig, err := v.Sign(msgID, ts, payload)
	if err != nil {
		return Headers{}, err
	}
	return Headers{
		ID:        msgID,
		Timestamp: strconv.FormatInt(ts.Unix(), 10),
		Signature: sig,
	}, nil
}

func (v *Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now().UTC()
}
