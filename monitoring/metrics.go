package monitoring

import (
	"context"
	"log/slog"
	"time"

	"easel-ticket/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	checkoutRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easel_checkout_requests_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	checkoutSessionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "easel_checkout_session_duration_seconds",
			Help:    "Latency of payment provider session creation",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	fulfillments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easel_fulfillments_total",
			Help: "Payment confirmations by result",
		},
		[]string{"source", "result"},
	)

	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easel_tickets_issued_total",
			Help: "Tickets issued by seat class",
		},
		[]string{"ticket_type"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easel_webhook_events_total",
			Help: "Payment provider webhook deliveries",
		},
		[]string{"event_type", "status"},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easel_confirmation_emails_total",
			Help: "Purchase confirmation emails by outcome",
		},
		[]string{"status"},
	)

	paidRevenue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "easel_paid_revenue_yen",
			Help: "Total amount of paid orders",
		},
	)

	seatsRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "easel_seats_remaining",
			Help: "Remaining seats per performance and class",
		},
		[]string{"performance_id", "ticket_type"},
	)

	redisUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "easel_redis_up",
			Help: "1 when the last Redis ping succeeded",
		},
	)
)

// Monitor periodically refreshes the sales gauges from the database.
type Monitor struct {
	store    *store.Store
	redis    *redis.Client
	interval time.Duration
}

func NewMonitor(s *store.Store, redisClient *redis.Client) *Monitor {
	return &Monitor{store: s, redis: redisClient, interval: 30 * time.Second}
}

// Start collects until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.Collect(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Collect(ctx)
			}
		}
	}()
}

func (m *Monitor) Collect(ctx context.Context) {
	if stats, err := m.store.OrderStats(); err != nil {
		slog.Warn("monitor: order stats", "error", err)
	} else {
		paidRevenue.Set(float64(stats.TotalRevenue))
	}

	performances, err := m.store.ListPerformances(store.PerformanceFilter{})
	if err != nil {
		slog.Warn("monitor: list performances", "error", err)
	}
	for _, p := range performances {
		seatsRemaining.WithLabelValues(p.ID, "GENERAL").Set(float64(p.GeneralRemaining()))
		seatsRemaining.WithLabelValues(p.ID, "RESERVED").Set(float64(p.ReservedRemaining()))
	}

	if m.redis != nil {
		if err := m.redis.Ping(ctx).Err(); err != nil {
			redisUp.Set(0)
		} else {
			redisUp.Set(1)
		}
	}
}

func TrackCheckout(outcome string) {
	checkoutRequests.WithLabelValues(outcome).Inc()
}

func TrackCheckoutSession(d time.Duration) {
	checkoutSessionDuration.Observe(d.Seconds())
}

func TrackFulfillment(source, result string) {
	fulfillments.WithLabelValues(source, result).Inc()
}

func TrackTicketsIssued(ticketType string, n int) {
	ticketsIssued.WithLabelValues(ticketType).Add(float64(n))
}

func TrackWebhookEvent(eventType, status string) {
	webhookEvents.WithLabelValues(eventType, status).Inc()
}

func TrackEmail(status string) {
	emailsSent.WithLabelValues(status).Inc()
}
