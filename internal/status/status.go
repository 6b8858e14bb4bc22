package status

import "errors"

var (
	ErrFailedPayment    = errors.New("payment: payment failed")
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	ErrWebhookSecret    = errors.New("payment: webhook secret not configured")
	ErrInvalidPayload   = errors.New("payment: malformed webhook payload")

	ErrOrderNotFound       = errors.New("order: order not found")
	ErrInvalidTransition   = errors.New("order: invalid status transition")
	ErrPerformanceNotFound = errors.New("performance: performance not found")
	ErrNotOnSale           = errors.New("performance: performance is not on sale")
	ErrSoldOut             = errors.New("performance: not enough seats remaining")
	ErrNewsNotFound        = errors.New("news: news not found")

	ErrTicketNotFound = errors.New("ticket: ticket not found")
	ErrTicketUsed     = errors.New("ticket: ticket already used")
	ErrTicketNotPaid  = errors.New("ticket: order is not paid")

	ErrRefCodeNotFound  = errors.New("ref code: ref code not found")
	ErrRefCodeUsed      = errors.New("ref code: ref code already used")
	ErrRefCodeDuplicate = errors.New("ref code: ref code already exists")

	ErrInvalidCredentials = errors.New("auth: invalid email or password")
)

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
