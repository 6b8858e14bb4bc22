package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ledgerProcessing = "PROCESSING"
	ledgerCompleted  = "COMPLETED"
)

// EventLedger remembers webhook event ids in Redis so repeated deliveries
// are acknowledged without touching the database. Without Redis every event
// is processed and order status alone keeps fulfillment idempotent.
type EventLedger struct {
	redis       *redis.Client
	lockTTL     time.Duration
	completeTTL time.Duration
}

func NewEventLedger(redisClient *redis.Client, completeTTL time.Duration) *EventLedger {
	return &EventLedger{
		redis:       redisClient,
		lockTTL:     30 * time.Second,
		completeTTL: completeTTL,
	}
}

func ledgerKey(eventID string) string {
	return fmt.Sprintf("stripe:event:%s", eventID)
}

// Begin claims the event. It returns false when the event was already
// processed or is being processed by another delivery.
func (l *EventLedger) Begin(ctx context.Context, eventID string) bool {
	if l == nil || l.redis == nil || eventID == "" {
		return true
	}

	acquired, err := l.redis.SetNX(ctx, ledgerKey(eventID), ledgerProcessing, l.lockTTL).Result()
	if err != nil {
		slog.Warn("event ledger unavailable", "eventID", eventID, "error", err)
		return true
	}
	return acquired
}

func (l *EventLedger) Complete(ctx context.Context, eventID string) {
	if l == nil || l.redis == nil || eventID == "" {
		return
	}
	if err := l.redis.Set(ctx, ledgerKey(eventID), ledgerCompleted, l.completeTTL).Err(); err != nil {
		slog.Warn("event ledger complete", "eventID", eventID, "error", err)
	}
}

// Release forgets the event so a provider retry is processed again.
func (l *EventLedger) Release(ctx context.Context, eventID string) {
	if l == nil || l.redis == nil || eventID == "" {
		return
	}
	if err := l.redis.Del(ctx, ledgerKey(eventID)).Err(); err != nil {
		slog.Warn("event ledger release", "eventID", eventID, "error", err)
	}
}
