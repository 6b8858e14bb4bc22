package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"easel-ticket/config"
	"easel-ticket/internal/clock"
	"easel-ticket/internal/services/payment"
	"easel-ticket/internal/status"
	"easel-ticket/internal/store"
	"easel-ticket/models"
	"easel-ticket/monitoring"
	"easel-ticket/utils"

	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+$`)

// Column limits of the orders collection.
const (
	maxDateLength  = 50
	maxLabelLength = 200
	maxNameLength  = 200
	maxPhoneLength = 50
)

// Quote is the priced breakdown of a checkout request.
type Quote struct {
	GeneralPrice       decimal.Decimal
	ReservedPrice      decimal.Decimal
	ChargeableGeneral  int
	DiscountedGeneral  int
	Reserved           int
	DiscountAmount     decimal.Decimal
	TotalAmount        decimal.Decimal
	PerformanceID      string
	PerformanceDisplay string
}

func NewQuote(generalPrice, reservedPrice, general, reserved, discounted int) *Quote {
	q := &Quote{
		GeneralPrice:      decimal.NewFromInt(int64(generalPrice)),
		ReservedPrice:     decimal.NewFromInt(int64(reservedPrice)),
		ChargeableGeneral: general - discounted,
		DiscountedGeneral: discounted,
		Reserved:          reserved,
	}
	q.DiscountAmount = q.GeneralPrice.Mul(decimal.NewFromInt(int64(discounted)))
	q.TotalAmount = q.GeneralPrice.Mul(decimal.NewFromInt(int64(q.ChargeableGeneral))).
		Add(q.ReservedPrice.Mul(decimal.NewFromInt(int64(reserved))))
	return q
}

type CheckoutService struct {
	store   *store.Store
	gateway payment.Gateway
	breaker *utils.CircuitBreaker
	cfg     *config.Config
	clock   clock.Clock
}

func NewCheckoutService(s *store.Store, gateway payment.Gateway, cfg *config.Config, clk clock.Clock) *CheckoutService {
	return &CheckoutService{
		store:   s,
		gateway: gateway,
		breaker: utils.NewCircuitBreaker("stripe-checkout"),
		cfg:     cfg,
		clock:   clk,
	}
}

// CreateCheckout validates the purchase, opens a payment session and records
// the PENDING order. Nothing is persisted when session creation fails.
func (s *CheckoutService) CreateCheckout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if err := s.validateRequest(req); err != nil {
		monitoring.TrackCheckout("invalid")
		return nil, err
	}

	codes, err := s.validateCodes(req)
	if err != nil {
		monitoring.TrackCheckout("invalid_code")
		return nil, err
	}

	quote, err := s.quote(req)
	if err != nil {
		monitoring.TrackCheckout("unavailable")
		return nil, err
	}
	if !quote.TotalAmount.IsPositive() {
		monitoring.TrackCheckout("zero_total")
		return nil, status.Invalid("The payment amount is zero, so no payment is needed.")
	}

	started := time.Now()
	result, err := s.breaker.Execute(func() (any, error) {
		return s.gateway.CreateCheckoutSession(ctx, s.sessionRequest(req, quote))
	})
	monitoring.TrackCheckoutSession(time.Since(started))
	if err != nil {
		monitoring.TrackCheckout("provider_error")
		slog.Error("create checkout session", "email", req.Email, "error", err)
		if errors.Is(err, utils.ErrCircuitOpen) || errors.Is(err, utils.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: payment provider temporarily unavailable", status.ErrFailedPayment)
		}
		return nil, err
	}
	session := result.(*payment.Session)

	order := &models.Order{
		StripeSessionID:        session.ID,
		PerformanceID:          quote.PerformanceID,
		PerformanceDate:        strings.TrimSpace(req.Date),
		PerformanceLabel:       strings.TrimSpace(req.DateLabel),
		GeneralQuantity:        req.GeneralQuantity,
		ReservedQuantity:       req.ReservedQuantity,
		GeneralPrice:           int(quote.GeneralPrice.IntPart()),
		ReservedPrice:          int(quote.ReservedPrice.IntPart()),
		DiscountedGeneralCount: req.DiscountedGeneralCount,
		DiscountAmount:         int(quote.DiscountAmount.IntPart()),
		ExchangeCodes:          codes,
		TotalAmount:            int(quote.TotalAmount.IntPart()),
		CustomerName:           strings.TrimSpace(req.Name),
		CustomerEmail:          strings.TrimSpace(req.Email),
		CustomerPhone:          strings.TrimSpace(req.Phone),
		Status:                 models.OrderStatusPending,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		monitoring.TrackCheckout("persist_error")
		return nil, fmt.Errorf("persist order for session %s: %w", session.ID, err)
	}

	monitoring.TrackCheckout("created")
	slog.Info("checkout created", "orderID", order.ID, "sessionID", session.ID, "total", order.TotalAmount)

	return &models.CheckoutResponse{
		CheckoutURL: session.URL,
		OrderID:     order.ID,
		SessionID:   session.ID,
	}, nil
}

func (s *CheckoutService) validateRequest(req *models.CheckoutRequest) error {
	if strings.TrimSpace(req.Date) == "" {
		return status.Invalid("Please select a performance date.")
	}
	if strings.TrimSpace(req.Name) == "" {
		return status.Invalid("Please enter your name.")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return status.Invalid("Please enter your email address.")
	}
	// The order record runs the same format rule on save.
	if !emailPattern.MatchString(email) || is.EmailFormat.Validate(email) != nil {
		return status.Invalid("Please enter a valid email address.")
	}

	switch {
	case tooLong(req.Date, maxDateLength):
		return status.Invalid("The performance date is too long.")
	case tooLong(req.DateLabel, maxLabelLength):
		return status.Invalid("The performance label is too long.")
	case tooLong(req.Name, maxNameLength):
		return status.Invalid(fmt.Sprintf("Name must be at most %d characters.", maxNameLength))
	case tooLong(req.Phone, maxPhoneLength):
		return status.Invalid(fmt.Sprintf("Phone number must be at most %d characters.", maxPhoneLength))
	}

	if req.GeneralQuantity < 0 || req.ReservedQuantity < 0 {
		return status.Invalid("Ticket quantities must not be negative.")
	}
	total := req.GeneralQuantity + req.ReservedQuantity
	if total <= 0 {
		return status.Invalid("Please select at least one ticket.")
	}
	if total > s.cfg.MaxTicketsPerOrder {
		return status.Invalid(fmt.Sprintf("You can buy at most %d tickets at once.", s.cfg.MaxTicketsPerOrder))
	}

	if req.DiscountedGeneralCount < 0 {
		return status.Invalid("Invalid number of exchange tickets.")
	}
	if req.DiscountedGeneralCount > req.GeneralQuantity {
		return status.Invalid("Exchange tickets exceed the number of general tickets.")
	}
	return nil
}

func tooLong(v string, limit int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(v)) > limit
}

// validateCodes returns the normalized codes, each of which exists and is
// unused. The count must match the discounted ticket count.
func (s *CheckoutService) validateCodes(req *models.CheckoutRequest) ([]string, error) {
	codes := make([]string, 0, len(req.ExchangeCodes))
	seen := make(map[string]bool, len(req.ExchangeCodes))
	for _, raw := range req.ExchangeCodes {
		code := models.NormalizeCode(raw)
		if code == "" {
			continue
		}
		if seen[code] {
			return nil, status.Invalid("Duplicate exchange code: " + code)
		}
		seen[code] = true

		c, err := s.store.FindExchangeCode(code)
		if errors.Is(err, status.ErrRefCodeNotFound) || (err == nil && c.IsUsed) {
			return nil, status.Invalid("Invalid or already used exchange code: " + code)
		}
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	if len(codes) != req.DiscountedGeneralCount {
		return nil, status.Invalid("The number of exchange codes does not match the number of exchange tickets.")
	}
	return codes, nil
}

func (s *CheckoutService) quote(req *models.CheckoutRequest) (*Quote, error) {
	if req.PerformanceID == "" {
		return NewQuote(s.cfg.GeneralPrice, s.cfg.ReservedPrice,
			req.GeneralQuantity, req.ReservedQuantity, req.DiscountedGeneralCount), nil
	}

	p, err := s.store.FindPerformanceByID(req.PerformanceID)
	if err != nil {
		return nil, err
	}
	if !p.IsOnSale(s.clock.Now()) {
		return nil, fmt.Errorf("%w: %s", status.ErrNotOnSale, p.Title)
	}
	if req.GeneralQuantity > p.GeneralRemaining() || req.ReservedQuantity > p.ReservedRemaining() {
		return nil, fmt.Errorf("%w: %s", status.ErrSoldOut, p.Title)
	}

	q := NewQuote(p.GeneralPrice, p.ReservedPrice,
		req.GeneralQuantity, req.ReservedQuantity, req.DiscountedGeneralCount)
	q.PerformanceID = p.ID
	q.PerformanceDisplay = p.Title
	return q, nil
}

func (s *CheckoutService) sessionRequest(req *models.CheckoutRequest, q *Quote) *payment.SessionRequest {
	product := s.cfg.ProductName
	if q.PerformanceDisplay != "" {
		product = q.PerformanceDisplay
	}

	var items []payment.LineItem
	if q.DiscountedGeneral > 0 {
		items = append(items, payment.LineItem{
			Name:     product + " General (exchange code)",
			Quantity: int64(q.DiscountedGeneral),
		})
	}
	if q.ChargeableGeneral > 0 {
		items = append(items, payment.LineItem{
			Name:       product + " General",
			UnitAmount: q.GeneralPrice.IntPart(),
			Quantity:   int64(q.ChargeableGeneral),
		})
	}
	if q.Reserved > 0 {
		items = append(items, payment.LineItem{
			Name:       product + " Reserved",
			UnitAmount: q.ReservedPrice.IntPart(),
			Quantity:   int64(q.Reserved),
		})
	}

	frontend := strings.TrimRight(s.cfg.FrontendURL, "/")
	return &payment.SessionRequest{
		CustomerEmail: strings.TrimSpace(req.Email),
		SuccessURL:    frontend + "/ticket/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     frontend + "/ticket/cancel",
		LineItems:     items,
		Metadata: map[string]string{
			payment.MetadataDate:              req.Date,
			payment.MetadataCustomerName:      strings.TrimSpace(req.Name),
			payment.MetadataGeneralQuantity:   strconv.Itoa(req.GeneralQuantity),
			payment.MetadataReservedQuantity:  strconv.Itoa(req.ReservedQuantity),
			payment.MetadataDiscountedGeneral: strconv.Itoa(req.DiscountedGeneralCount),
		},
	}
}
