package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AcquireResult is the outcome of trying to claim an inbound event.
type AcquireResult struct {
	// Acquired is true when this worker owns the event and must process it.
	Acquired bool
	// AlreadyProcessed is true when a previous delivery completed the event.
	AlreadyProcessed bool
}

// EventRepository is the idempotency ledger for inbound gateway events. The
// unique stripe_event_id column is the lock: acquisition is a single
// insert-or-inspect, never a read followed by a write, so N concurrent
// deliveries of the same event yield exactly one acquirer.
type EventRepository interface {
	Acquire(ctx context.Context, eventID, eventType string, data json.RawMessage) (AcquireResult, error)
	GetEvent(ctx context.Context, eventID string) (*model.PaymentEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkSkipped(ctx context.Context, eventID, reason string) error
	MarkFailed(ctx context.Context, eventID string, err error) error
	ListRecent(ctx context.Context, limit int) ([]*model.PaymentEvent, error)
}

type eventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewEventRepository creates a new event ledger repository
func NewEventRepository(db *gorm.DB, logger *zap.Logger) EventRepository {
	return &eventRepository{
		db:     db,
		logger: logger,
	}
}

// Acquire claims the event for this worker. The insert races safely: on
// conflict the existing row decides the outcome. A completed row means the
// event was already processed; a failed row is taken over atomically for a
// retry; a processing row means another worker is mid-flight.
func (r *eventRepository) Acquire(ctx context.Context, eventID, eventType string, data json.RawMessage) (AcquireResult, error) {
	var eventData map[string]interface{}
	if err := json.Unmarshal(data, &eventData); err != nil {
		r.logger.Warn("Failed to parse event data for ledger row",
			zap.String("event_id", eventID),
			zap.Error(err))
	}

	var stripeCreatedAt *time.Time
	if created, ok := eventData["created"].(float64); ok {
		t := time.Unix(int64(created), 0)
		stripeCreatedAt = &t
	}

	now := time.Now()
	event := &model.PaymentEvent{
		StripeEventID:       eventID,
		EventType:           eventType,
		Status:              model.EventStatusProcessing,
		Data:                model.JSONB(eventData),
		ReceivedAt:          now,
		ProcessingStartedAt: &now,
		StripeCreatedAt:     stripeCreatedAt,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)

	if result.Error != nil {
		r.logger.Error("Failed to insert ledger row",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return AcquireResult{}, fmt.Errorf("failed to insert ledger row: %w", result.Error)
	}

	if result.RowsAffected == 1 {
		return AcquireResult{Acquired: true}, nil
	}

	// Conflict: a row for this event already exists.
	existing, err := r.GetEvent(ctx, eventID)
	if err != nil {
		return AcquireResult{}, err
	}
	if existing == nil {
		// Row vanished between insert and read; treat as in-flight so the
		// gateway backs off.
		return AcquireResult{}, nil
	}

	switch existing.Status {
	case model.EventStatusCompleted:
		return AcquireResult{AlreadyProcessed: true}, nil
	case model.EventStatusFailed:
		// Take over a failed attempt. The WHERE clause makes the takeover
		// atomic: only one of several redeliveries flips the row back to
		// processing.
		takeover := r.db.WithContext(ctx).
			Model(&model.PaymentEvent{}).
			Where("stripe_event_id = ? AND status = ?", eventID, model.EventStatusFailed).
			Updates(map[string]interface{}{
				"status":                model.EventStatusProcessing,
				"processing_started_at": time.Now(),
			})
		if takeover.Error != nil {
			return AcquireResult{}, fmt.Errorf("failed to reacquire event: %w", takeover.Error)
		}
		return AcquireResult{Acquired: takeover.RowsAffected == 1}, nil
	default:
		// Another worker is processing this event right now.
		return AcquireResult{}, nil
	}
}

// GetEvent retrieves a ledger row by external event id
func (r *eventRepository) GetEvent(ctx context.Context, eventID string) (*model.PaymentEvent, error) {
	var event model.PaymentEvent

	err := r.db.WithContext(ctx).
		Where("stripe_event_id = ?", eventID).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get ledger row",
			zap.String("event_id", eventID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get ledger row: %w", err)
	}

	return &event, nil
}

// MarkProcessed marks an event as successfully processed
func (r *eventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.PaymentEvent{}).
		Where("stripe_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":       model.EventStatusCompleted,
			"processed_at": &now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark event processed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark event processed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("ledger row not found: %s", eventID)
	}

	return nil
}

// MarkSkipped marks a permanently invalid event as processed with an
// annotation. The gateway must not keep retrying an event that can never
// succeed, so the row still reads as completed.
func (r *eventRepository) MarkSkipped(ctx context.Context, eventID, reason string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.PaymentEvent{}).
		Where("stripe_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":       model.EventStatusCompleted,
			"processed_at": &now,
			"last_error":   &reason,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark event skipped",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark event skipped: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("ledger row not found: %s", eventID)
	}

	return nil
}

// MarkFailed records a processing failure and leaves the row retryable by a
// future redelivery.
func (r *eventRepository) MarkFailed(ctx context.Context, eventID string, procErr error) error {
	errorMsg := procErr.Error()

	result := r.db.WithContext(ctx).
		Model(&model.PaymentEvent{}).
		Where("stripe_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":              model.EventStatusFailed,
			"processing_attempts": gorm.Expr("processing_attempts + 1"),
			"last_error":          &errorMsg,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark event failed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark event failed: %w", result.Error)
	}

	return nil
}

// ListRecent retrieves the most recent ledger rows for operator inspection
func (r *eventRepository) ListRecent(ctx context.Context, limit int) ([]*model.PaymentEvent, error) {
	var events []*model.PaymentEvent

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	err := r.db.WithContext(ctx).
		Order("received_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		r.logger.Error("Failed to list ledger rows", zap.Error(err))
		return nil, fmt.Errorf("failed to list ledger rows: %w", err)
	}

	return events, nil
}
