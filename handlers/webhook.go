package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/user-sync/internal/archive"
	"github.com/gogotex/gogotex/backend/user-sync/internal/clerk"
	"github.com/gogotex/gogotex/backend/user-sync/internal/deliveries"
	"github.com/gogotex/gogotex/backend/user-sync/internal/tracing"
	"github.com/gogotex/gogotex/backend/user-sync/internal/usersync"
	"github.com/gogotex/gogotex/backend/user-sync/internal/webhook"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/logger"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// WebhookPath is the route the identity provider delivers to.
const WebhookPath = "/api/webhooks/clerk"

// maxWebhookBody caps the body read before verification.
const maxWebhookBody = 1 << 20

// ErrMissingSecret marks a deployment without WEBHOOK_SECRET.
var ErrMissingSecret = errors.New("WEBHOOK_SECRET is missing. Please add it to the environment or .env")

// ErrInvalidSecret marks a WEBHOOK_SECRET the signing library rejects.
var ErrInvalidSecret = errors.New("WEBHOOK_SECRET is malformed; expected whsec_<base64>")

// Response bodies of the webhook route.
const (
	msgMissingHeaders   = "Missing Svix headers"
	msgInvalidSignature = "Invalid webhook signature"
	msgInvalidPayload   = "Invalid webhook payload"
	msgIgnored          = "Ignored"
	msgUnhandledEvent   = "Unhandled event type"
	msgMissingName      = "Missing firstName or lastName"
	msgMissingUserID    = "User ID is required"
	msgInternalError    = "Internal server error"
)

var successMessages = map[string]string{
	clerk.EventUserCreated: "User created successfully",
	clerk.EventUserUpdated: "User updated successfully",
	clerk.EventUserDeleted: "User deleted successfully",
}

// EventApplier applies a verified event to the user store.
type EventApplier interface {
	Apply(ctx context.Context, evt *clerk.Event) (usersync.Result, error)
}

// WebhookOptions configures a WebhookHandler. Only Secret is required for
// the route to accept deliveries; the rest fall back to no-ops.
type WebhookOptions struct {
	Secret     string
	Tolerance  time.Duration
	DedupeTTL  time.Duration
	Deliveries deliveries.Store
	Archive    archive.Archiver
	Now        func() time.Time
}

// WebhookHandler receives identity-provider deliveries.
type WebhookHandler struct {
	verifier   *webhook.Verifier
	secretErr  error
	applier    EventApplier
	deliveries deliveries.Store
	archive    archive.Archiver
	dedupeTTL  time.Duration
	now        func() time.Time
}

func NewWebhookHandler(opts WebhookOptions, applier EventApplier) *WebhookHandler {
	h := &WebhookHandler{
		applier:    applier,
		deliveries: opts.Deliveries,
		archive:    opts.Archive,
		dedupeTTL:  opts.DedupeTTL,
		now:        opts.Now,
	}
	if h.deliveries == nil {
		h.deliveries = deliveries.NopStore{}
	}
	if h.archive == nil {
		h.archive = archive.Nop{}
	}
	if h.now == nil {
		h.now = func() time.Time { return time.Now().UTC() }
	}
	// a bad secret is reported per request, not at construction
	v, err := webhook.NewVerifier(opts.Secret)
	if err != nil {
		h.secretErr = SecretError(err)
		return h
	}
	if opts.Tolerance > 0 {
		v.Tolerance = opts.Tolerance
	}
	v.Now = h.now
	h.verifier = v
	return h
}

// SecretError maps a verifier construction error to the configuration error
// reported for the route. It returns nil for a usable secret.
func SecretError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, webhook.ErrMissingSecret):
		return ErrMissingSecret
	default:
		return fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
}

// Register mounts the webhook route with optional middleware in front.
func (h *WebhookHandler) Register(r gin.IRoutes, mw ...gin.HandlerFunc) {
	r.POST(WebhookPath, append(mw, h.Handle)...)
}

// Handle verifies, dispatches and answers one delivery.
func (h *WebhookHandler) Handle(c *gin.Context) {
	if h.verifier == nil {
		logger.WithContext(c.Request.Context()).Errorf("webhook: %v", h.secretErr)
		_ = c.Error(h.secretErr)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	hdrs := webhook.HeadersFrom(c.Request.Header)
	if !hdrs.Complete() {
		metrics.SignatureFailures.Inc()
		c.String(http.StatusBadRequest, msgMissingHeaders)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err == nil {
		err = h.verifier.Verify(body, hdrs)
	}
	if err != nil {
		metrics.SignatureFailures.Inc()
		logger.WithContext(c.Request.Context()).Warnf("webhook: verifying delivery %s: %v", hdrs.ID, err)
		c.String(http.StatusBadRequest, msgInvalidSignature)
		return
	}

	evt, err := clerk.ParseEvent(body)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		logger.WithContext(c.Request.Context()).Warnf("webhook: delivery %s: %v", hdrs.ID, err)
		c.String(http.StatusBadRequest, msgInvalidPayload)
		return
	}

	if clerk.IsSessionEvent(evt.Type) {
		logger.WithContext(c.Request.Context()).Debugf("webhook: ignoring session event %s", evt.Type)
		metrics.WebhookEvents.WithLabelValues(evt.Type, string(usersync.OutcomeIgnored)).Inc()
		c.String(http.StatusOK, msgIgnored)
		return
	}

	ctx, span := tracing.Tracer().Start(c.Request.Context(), "webhook.clerk")
	defer span.End()
	span.SetAttributes(
		attribute.String("webhook.delivery_id", hdrs.ID),
		attribute.String("webhook.event_type", evt.Type),
	)
	ctx = usersync.ContextWithDeliveryID(ctx, hdrs.ID)
	log := logger.WithContext(ctx)

	claimed, err := h.deliveries.Claim(ctx, hdrs.ID, h.dedupeTTL)
	if err != nil {
		// dedupe is best effort; process rather than drop
		log.Warnf("webhook: claim delivery %s: %v", hdrs.ID, err)
		claimed = true
	}
	if !claimed {
		log.Infof("webhook: duplicate delivery %s (%s)", hdrs.ID, evt.Type)
		metrics.WebhookEvents.WithLabelValues(evt.Type, "duplicate").Inc()
		c.String(http.StatusOK, msgIgnored)
		return
	}

	if err := h.archive.Put(ctx, archive.Key(hdrs.ID, h.now()), body); err != nil {
		log.Warnf("webhook: archive delivery %s: %v", hdrs.ID, err)
	}

	start := time.Now()
	res, err := h.applier.Apply(ctx, evt)
	metrics.WebhookDuration.WithLabelValues(evt.Type).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, usersync.ErrMissingName):
		log.Errorf("webhook: %s %s: missing firstName or lastName", evt.Type, hdrs.ID)
		metrics.WebhookEvents.WithLabelValues(evt.Type, "rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": msgMissingName})
	case errors.Is(err, usersync.ErrMissingUserID):
		log.Errorf("webhook: %s %s: user id is missing", evt.Type, hdrs.ID)
		metrics.WebhookEvents.WithLabelValues(evt.Type, "rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": msgMissingUserID})
	case errors.Is(err, usersync.ErrUnhandledEvent):
		metrics.WebhookEvents.WithLabelValues(evt.Type, "rejected").Inc()
		c.String(http.StatusBadRequest, msgUnhandledEvent)
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "sync failed")
		log.Errorf("webhook: processing %s %s: %v", evt.Type, hdrs.ID, err)
		if rerr := h.deliveries.Release(ctx, hdrs.ID); rerr != nil {
			log.Warnf("webhook: release delivery %s: %v", hdrs.ID, rerr)
		}
		metrics.WebhookEvents.WithLabelValues(evt.Type, "failed").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternalError})
	default:
		metrics.WebhookEvents.WithLabelValues(evt.Type, string(res.Outcome)).Inc()
		log.Infof("webhook: %s %s -> %s", evt.Type, hdrs.ID, res.Outcome)
		c.JSON(http.StatusOK, gin.H{"message": successMessages[evt.Type], "user": res.User})
	}
}
