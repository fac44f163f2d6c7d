package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/tristanfischer-ux/centauros-payment/internal/adapter/repository"
	domainErrors "github.com/tristanfischer-ux/centauros-payment/internal/domain/errors"
	"github.com/tristanfischer-ux/centauros-payment/internal/usecase"
	"go.uber.org/zap"
)

// WebhookHandler receives gateway notifications, authenticates them and runs
// them through the idempotency ledger and the reconciler.
type WebhookHandler struct {
	logger        *zap.Logger
	webhookSecret string
	events        repository.EventRepository
	reconciler    *usecase.Reconciler
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(logger *zap.Logger, webhookSecret string, events repository.EventRepository, reconciler *usecase.Reconciler) *WebhookHandler {
	return &WebhookHandler{
		logger:        logger,
		webhookSecret: webhookSecret,
		events:        events,
		reconciler:    reconciler,
	}
}

// HandleWebhook processes one inbound gateway notification.
//
// Response contract: 400 only for signature failure, 500 only for storage
// failures the gateway should retry, 200 for everything else so the gateway
// stops redelivering.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	// Authenticate before any database access: forged requests must not
	// leave ledger rows behind.
	event, err := webhook.ConstructEventWithOptions(
		body,
		sig,
		h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		h.logger.Error("Webhook signature verification failed",
			zap.Error(err),
			zap.String("signature", sig))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Webhook signature verification failed",
		})
	}

	h.logger.Info("Webhook event received",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)))

	acquire, err := h.events.Acquire(ctx, event.ID, string(event.Type), event.Data.Raw)
	if err != nil {
		h.logger.Error("Failed to acquire event lock",
			zap.String("event_id", event.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to record event"})
	}

	if acquire.AlreadyProcessed {
		return c.JSON(http.StatusOK, echo.Map{"received": true, "status": "already_processed"})
	}
	if !acquire.Acquired {
		// Another worker holds the event. Acknowledge so the gateway backs
		// off; the in-flight attempt decides the outcome.
		return c.JSON(http.StatusOK, echo.Map{"received": true, "status": "processing"})
	}

	if err := h.reconciler.Process(ctx, event); err != nil {
		if domainErrors.IsValidation(err) {
			// Permanently invalid: annotate and complete so the gateway
			// does not retry forever.
			h.logger.Warn("Event failed validation, marking processed",
				zap.String("event_id", event.ID),
				zap.Error(err))
			if markErr := h.events.MarkSkipped(ctx, event.ID, err.Error()); markErr != nil {
				h.logger.Error("Failed to mark event skipped",
					zap.String("event_id", event.ID),
					zap.Error(markErr))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update event"})
			}
			return c.JSON(http.StatusOK, echo.Map{"received": true, "status": "processed"})
		}

		h.logger.Error("Event processing failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		if markErr := h.events.MarkFailed(ctx, event.ID, err); markErr != nil {
			h.logger.Error("Failed to mark event failed",
				zap.String("event_id", event.ID),
				zap.Error(markErr))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Event processing failed"})
	}

	if err := h.events.MarkProcessed(ctx, event.ID); err != nil {
		h.logger.Error("Failed to mark event processed",
			zap.String("event_id", event.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update event"})
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true, "status": "processed"})
}

// GetRecentEvents lists recent ledger rows for operator inspection
func (h *WebhookHandler) GetRecentEvents(c echo.Context) error {
	events, err := h.events.ListRecent(c.Request().Context(), 50)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list events"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"events": events,
		"count":  len(events),
	})
}

// GetEvent returns a single ledger row by external event id
func (h *WebhookHandler) GetEvent(c echo.Context) error {
	event, err := h.events.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get event"})
	}
	if event == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Event not found"})
	}

	return c.JSON(http.StatusOK, event)
}
