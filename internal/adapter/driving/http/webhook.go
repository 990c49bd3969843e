package httphandler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// DefaultMaxBodyBytes caps the size of a webhook body.
const DefaultMaxBodyBytes int64 = 25 << 20

// Dispatcher routes a verified event to its handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, event model.Event) error
}

// WebhookConfig holds what the webhook endpoint needs from configuration.
// Secret and AppConfigured may be unset at startup; requests then fail with 500.
type WebhookConfig struct {
	Secret        string
	AppConfigured bool
	MaxBodyBytes  int64
}

// WebhookHandler receives GitHub webhook deliveries.
type WebhookHandler struct {
	cfg        WebhookConfig
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler. A non-positive MaxBodyBytes
// falls back to DefaultMaxBodyBytes.
func NewWebhookHandler(cfg WebhookConfig, dispatcher Dispatcher, logger *slog.Logger) *WebhookHandler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &WebhookHandler{cfg: cfg, dispatcher: dispatcher, logger: logger}
}

// ServeHTTP verifies the delivery, decodes it and dispatches it. Once the
// signature is accepted the response is always 200, even when handling fails;
// GitHub has nothing useful to do with a processing error.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get(signatureHeader)
	if signature == "" {
		h.logger.Warn("webhook received without signature")
		writeError(w, http.StatusBadRequest, "missing signature")
		return
	}

	if h.cfg.Secret == "" {
		h.logger.Error("webhook secret not configured", "error", driven.ErrConfigMissing)
		writeError(w, http.StatusInternalServerError, "webhook secret not configured")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		h.logger.Warn("webhook body unreadable", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !VerifySignature(body, signature, h.cfg.Secret) {
		h.logger.Warn("webhook signature verification failed", "error", driven.ErrSignatureInvalid)
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	if !h.cfg.AppConfigured {
		h.logger.Error("github app credentials not configured", "error", driven.ErrConfigMissing)
		writeError(w, http.StatusInternalServerError, "github app credentials not configured")
		return
	}

	eventType := gh.WebHookType(r)
	delivery := gh.DeliveryID(r)

	event, err := decodeEvent(eventType, body)
	if err != nil {
		h.logger.Warn("webhook payload dropped", "event", eventType, "delivery", delivery, "error", err)
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
		return
	}

	// The delivery has been accepted; finish it even if GitHub hangs up.
	h.dispatch(context.WithoutCancel(r.Context()), event, eventType, delivery)

	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// dispatch runs the handler for event and logs any failure, including a
// panic, so that an accepted delivery is never answered with an error.
func (h *WebhookHandler) dispatch(ctx context.Context, event model.Event, eventType, delivery string) {
	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("webhook handler panicked", "event", eventType, "delivery", delivery, "panic", p)
		}
	}()

	if err := h.dispatcher.Dispatch(ctx, event); err != nil {
		h.logger.Error("webhook handling failed", "event", eventType, "delivery", delivery, "error", err)
	}
}
