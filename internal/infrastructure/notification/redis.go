package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tristanfischer-ux/centauros-payment/internal/config"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/notification"
	"go.uber.org/zap"
)

const defaultChannel = "notifications"

// RedisDispatcher publishes notifications to a Redis channel where the
// notification service picks them up for delivery.
type RedisDispatcher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisDispatcher connects to Redis and verifies the connection.
func NewRedisDispatcher(cfg *config.RedisConfig, logger *zap.Logger) (*RedisDispatcher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	channel := cfg.NotificationChannel
	if channel == "" {
		channel = defaultChannel
	}

	return &RedisDispatcher{
		client:  client,
		channel: channel,
		logger:  logger.Named("notifier"),
	}, nil
}

// Send publishes a single notification as JSON.
func (d *RedisDispatcher) Send(ctx context.Context, n notification.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := d.client.Publish(ctx, d.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	d.logger.Debug("Notification published",
		zap.String("user_id", n.UserID.String()),
		zap.String("title", n.Title),
	)
	return nil
}

// Close closes the underlying Redis client.
func (d *RedisDispatcher) Close() error {
	return d.client.Close()
}
