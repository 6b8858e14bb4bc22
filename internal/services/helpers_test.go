package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"easel-ticket/config"
	"easel-ticket/internal/clock"
	"easel-ticket/internal/services/payment"
	"easel-ticket/internal/store"
	"easel-ticket/internal/testutil"
	"easel-ticket/models"

	"github.com/pocketbase/pocketbase/tools/mailer"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	args := m.Called(ctx, req)
	sess, _ := args.Get(0).(*payment.Session)
	return sess, args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (*models.PaymentNotification, error) {
	args := m.Called(payload, signature)
	n, _ := args.Get(0).(*models.PaymentNotification)
	return n, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(channel string, message map[string]any) error {
	return m.Called(channel, message).Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendConfirmation(ctx context.Context, order *models.Order, tickets []*models.Ticket) error {
	return m.Called(order, tickets).Error(0)
}

// recordingMailer keeps every message it is asked to send.
type recordingMailer struct {
	mu       sync.Mutex
	messages []*mailer.Message
	err      error
}

func (m *recordingMailer) Send(msg *mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return m.err
}

type testEnv struct {
	store *store.Store
	cfg   *config.Config
	clock clock.Clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.LoadConfig()
	cfg.FrontendURL = "https://easel.example"
	cfg.GeneralPrice = 4500
	cfg.ReservedPrice = 5500
	cfg.MaxTicketsPerOrder = 10
	cfg.MailFromAddress = "noreply@easel.example"

	return &testEnv{
		store: store.New(testutil.NewApp(t)),
		cfg:   cfg,
		clock: clock.NewFixed(testNow),
	}
}

func (env *testEnv) seedCode(t *testing.T, code string, used bool) *models.ExchangeCode {
	t.Helper()
	c := &models.ExchangeCode{Code: code, PerformerName: "Taro"}
	require.NoError(t, env.store.CreateExchangeCode(context.Background(), c))
	if used {
		require.True(t, c.MarkAsUsed("", testNow))
		require.NoError(t, env.store.SaveExchangeCode(context.Background(), c))
	}
	return c
}

func (env *testEnv) seedPerformance(t *testing.T, mutate func(p *models.Performance)) *models.Performance {
	t.Helper()
	p := &models.Performance{
		Title:            "easel LIVE vol.3",
		Volume:           "vol3",
		PerformanceDate:  "2026-11-20",
		PerformanceTime:  "19:00",
		VenueName:        "Shinjuku Hall",
		GeneralPrice:     4000,
		ReservedPrice:    6000,
		GeneralCapacity:  100,
		ReservedCapacity: 10,
		SaleStatus:       models.SaleStatusOnSale,
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, env.store.CreatePerformance(context.Background(), p))
	return p
}

func (env *testEnv) seedOrder(t *testing.T, sessionID string, mutate func(o *models.Order)) *models.Order {
	t.Helper()
	o := &models.Order{
		StripeSessionID:  sessionID,
		PerformanceDate:  "2026-11-20",
		PerformanceLabel: "11/20 (Fri) 19:00",
		GeneralQuantity:  2,
		ReservedQuantity: 1,
		GeneralPrice:     4500,
		ReservedPrice:    5500,
		TotalAmount:      14500,
		CustomerName:     "Hanako",
		CustomerEmail:    "hanako@example.com",
		Status:           models.OrderStatusPending,
	}
	if mutate != nil {
		mutate(o)
	}
	require.NoError(t, env.store.CreateOrder(context.Background(), o))
	return o
}
