package http_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	handlers "github.com/tristanfischer-ux/centauros-payment/internal/adapter/handler/http"
	"github.com/tristanfischer-ux/centauros-payment/internal/adapter/repository"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	"github.com/tristanfischer-ux/centauros-payment/internal/usecase"
)

const testWebhookSecret = "whsec_test_secret"

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Acquire(ctx context.Context, eventID, eventType string, data json.RawMessage) (repository.AcquireResult, error) {
	args := m.Called(ctx, eventID, eventType, data)
	return args.Get(0).(repository.AcquireResult), args.Error(1)
}

func (m *MockEventRepository) GetEvent(ctx context.Context, eventID string) (*model.PaymentEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentEvent), args.Error(1)
}

func (m *MockEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockEventRepository) MarkSkipped(ctx context.Context, eventID, reason string) error {
	args := m.Called(ctx, eventID, reason)
	return args.Error(0)
}

func (m *MockEventRepository) MarkFailed(ctx context.Context, eventID string, err error) error {
	args := m.Called(ctx, eventID, err)
	return args.Error(0)
}

func (m *MockEventRepository) ListRecent(ctx context.Context, limit int) ([]*model.PaymentEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentEvent), args.Error(1)
}

// signPayload produces a signature header the verifier accepts, the same
// scheme the gateway uses: v1 = HMAC-SHA256(secret, "{timestamp}.{payload}").
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventID, eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":"%s","object":"event","type":"%s","data":{"object":%s}}`, eventID, eventType, object))
}

func newHandler(events *MockEventRepository) *handlers.WebhookHandler {
	reconciler := usecase.NewReconciler(nil, nil, nil, nil, nil, nil, nil, nil, zap.NewNop())
	return handlers.NewWebhookHandler(zap.NewNop(), testWebhookSecret, events, reconciler)
}

func postWebhook(handler *handlers.WebhookHandler, payload []byte, signature string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(nethttp.MethodPost, "/webhook", strings.NewReader(string(payload)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.HandleWebhook(c)
	return rec
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	events := new(MockEventRepository)
	handler := newHandler(events)

	payload := eventPayload("evt_1", "customer.created", `{"id":"cus_1"}`)

	t.Run("missing signature header", func(t *testing.T) {
		rec := postWebhook(handler, payload, "")
		assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		rec := postWebhook(handler, payload, signPayload(payload, "whsec_wrong"))
		assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	})

	t.Run("tampered payload", func(t *testing.T) {
		sig := signPayload(payload, testWebhookSecret)
		tampered := eventPayload("evt_2", "customer.created", `{"id":"cus_1"}`)
		rec := postWebhook(handler, tampered, sig)
		assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	})

	// Forged requests must never reach the ledger
	events.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_AcquireOutcomes(t *testing.T) {
	payload := eventPayload("evt_1", "customer.created", `{"id":"cus_1"}`)
	sig := signPayload(payload, testWebhookSecret)

	t.Run("fresh event is processed and acknowledged", func(t *testing.T) {
		events := new(MockEventRepository)
		handler := newHandler(events)

		events.On("Acquire", mock.Anything, "evt_1", "customer.created", mock.Anything).
			Return(repository.AcquireResult{Acquired: true}, nil)
		events.On("MarkProcessed", mock.Anything, "evt_1").Return(nil)

		rec := postWebhook(handler, payload, sig)

		assert.Equal(t, nethttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"processed"`)
		events.AssertExpectations(t)
	})

	t.Run("redelivery of a completed event is acknowledged without processing", func(t *testing.T) {
		events := new(MockEventRepository)
		handler := newHandler(events)

		events.On("Acquire", mock.Anything, "evt_1", "customer.created", mock.Anything).
			Return(repository.AcquireResult{AlreadyProcessed: true}, nil)

		rec := postWebhook(handler, payload, sig)

		assert.Equal(t, nethttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"already_processed"`)
		events.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
	})

	t.Run("concurrent delivery is acknowledged while another worker holds the event", func(t *testing.T) {
		events := new(MockEventRepository)
		handler := newHandler(events)

		events.On("Acquire", mock.Anything, "evt_1", "customer.created", mock.Anything).
			Return(repository.AcquireResult{}, nil)

		rec := postWebhook(handler, payload, sig)

		assert.Equal(t, nethttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"processing"`)
	})

	t.Run("ledger write failure asks the gateway to retry", func(t *testing.T) {
		events := new(MockEventRepository)
		handler := newHandler(events)

		events.On("Acquire", mock.Anything, "evt_1", "customer.created", mock.Anything).
			Return(repository.AcquireResult{}, fmt.Errorf("connection refused"))

		rec := postWebhook(handler, payload, sig)

		assert.Equal(t, nethttp.StatusInternalServerError, rec.Code)
	})
}

func TestHandleWebhook_ProcessingOutcomes(t *testing.T) {
	t.Run("validation failure is annotated and acknowledged", func(t *testing.T) {
		events := new(MockEventRepository)
		handler := newHandler(events)

		// A top-up without a user id can never be applied, no matter how
		// often the gateway redelivers it.
		payload := eventPayload("evt_1", "payment_intent.succeeded",
			`{"id":"pi_1","amount":5000,"currency":"gbp","metadata":{"purpose":"balance_topup"}}`)
		sig := signPayload(payload, testWebhookSecret)

		events.On("Acquire", mock.Anything, "evt_1", "payment_intent.succeeded", mock.Anything).
			Return(repository.AcquireResult{Acquired: true}, nil)
		events.On("MarkSkipped", mock.Anything, "evt_1", mock.AnythingOfType("string")).Return(nil)

		rec := postWebhook(handler, payload, sig)

		assert.Equal(t, nethttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"processed"`)
		events.AssertExpectations(t)
		events.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("transient failure is recorded and surfaced as 500", func(t *testing.T) {
		events := new(MockEventRepository)
		handler := newHandler(events)

		// Malformed object: the payment intent id is not a string.
		payload := eventPayload("evt_1", "payment_intent.succeeded", `{"id":123}`)
		sig := signPayload(payload, testWebhookSecret)

		events.On("Acquire", mock.Anything, "evt_1", "payment_intent.succeeded", mock.Anything).
			Return(repository.AcquireResult{Acquired: true}, nil)
		events.On("MarkFailed", mock.Anything, "evt_1", mock.Anything).Return(nil)

		rec := postWebhook(handler, payload, sig)

		assert.Equal(t, nethttp.StatusInternalServerError, rec.Code)
		events.AssertExpectations(t)
		events.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
	})
}

func TestGetEvent(t *testing.T) {
	events := new(MockEventRepository)
	handler := newHandler(events)

	t.Run("returns the ledger row", func(t *testing.T) {
		events.On("GetEvent", mock.Anything, "evt_1").
			Return(&model.PaymentEvent{StripeEventID: "evt_1", Status: model.EventStatusCompleted}, nil).Once()

		e := echo.New()
		req := httptest.NewRequest(nethttp.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("evt_1")

		_ = handler.GetEvent(c)

		assert.Equal(t, nethttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "evt_1")
	})

	t.Run("unknown event id is a 404", func(t *testing.T) {
		events.On("GetEvent", mock.Anything, "evt_missing").Return(nil, nil).Once()

		e := echo.New()
		req := httptest.NewRequest(nethttp.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("evt_missing")

		_ = handler.GetEvent(c)

		assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	})
}
