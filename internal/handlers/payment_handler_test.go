package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"easel-ticket/config"
	"easel-ticket/internal/services"
	"easel-ticket/internal/services/payment"
	"easel-ticket/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	session *payment.Session
	err     error
	calls   int
}

func (g *stubGateway) CreateCheckoutSession(context.Context, *payment.SessionRequest) (*payment.Session, error) {
	g.calls++
	return g.session, g.err
}

func (g *stubGateway) ParseWebhook([]byte, string) (*models.PaymentNotification, error) {
	return nil, nil
}

func TestCheckoutHandler(t *testing.T) {
	env := newTestEnv(t)
	cfg := config.LoadConfig()
	gw := &stubGateway{session: &payment.Session{ID: "cs_new", URL: "https://checkout.stripe.com/c/cs_new"}}
	h := NewPaymentHandler(services.NewCheckoutService(env.store, gw, cfg, env.clock))

	e, rec := env.request(http.MethodPost, "/api/payment/checkout", models.CheckoutRequest{
		Date:            "2026-11-20",
		GeneralQuantity: 1,
		Name:            "Hanako",
		Email:           "hanako@example.com",
	})
	require.NoError(t, h.Checkout(e))
	body := decode(t, rec)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_new", body["checkout_url"])
	assert.Equal(t, "cs_new", body["session_id"])

	o, err := env.store.FindOrderBySessionID("cs_new")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, o.Status)

	e, _ = env.request(http.MethodPost, "/api/payment/checkout", models.CheckoutRequest{
		Date:            "2026-11-20",
		GeneralQuantity: 1,
		Name:            "Hanako",
		Email:           "not-an-email",
	})
	assertAPIError(t, h.Checkout(e), http.StatusBadRequest, "valid email")

	e, _ = env.request(http.MethodPost, "/api/payment/checkout", []byte("{"))
	assertAPIError(t, h.Checkout(e), http.StatusBadRequest, "")
}

func TestCheckoutHandler_RejectsBeforeOpeningSession(t *testing.T) {
	env := newTestEnv(t)
	gw := &stubGateway{session: &payment.Session{ID: "cs_never", URL: "https://checkout.stripe.com/c/cs_never"}}
	h := NewPaymentHandler(services.NewCheckoutService(env.store, gw, config.LoadConfig(), env.clock))

	for _, email := range []string{"taro@localhost", "taro.@example.com", "a..b@example.com"} {
		e, _ := env.request(http.MethodPost, "/api/payment/checkout", models.CheckoutRequest{
			Date:            "2026-11-20",
			GeneralQuantity: 1,
			Name:            "Taro",
			Email:           email,
		})
		assertAPIError(t, h.Checkout(e), http.StatusBadRequest, "valid email")
	}

	e, _ := env.request(http.MethodPost, "/api/payment/checkout", models.CheckoutRequest{
		Date:            "2026-11-20",
		GeneralQuantity: 1,
		Name:            strings.Repeat("x", 201),
		Email:           "taro@example.com",
	})
	assertAPIError(t, h.Checkout(e), http.StatusBadRequest, "at most 200")

	assert.Zero(t, gw.calls)
	_, err := env.store.FindOrderBySessionID("cs_never")
	assert.Error(t, err)
}
