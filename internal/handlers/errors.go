package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"easel-ticket/internal/status"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/apis"
)

var notFoundMessages = []struct {
	err error
	msg string
}{
	{status.ErrOrderNotFound, "Order not found."},
	{status.ErrPerformanceNotFound, "Performance not found."},
	{status.ErrNewsNotFound, "News not found."},
	{status.ErrTicketNotFound, "Ticket not found."},
	{status.ErrRefCodeNotFound, "Exchange code not found."},
}

var badRequestMessages = []struct {
	err error
	msg string
}{
	{status.ErrInvalidTransition, "This status change is not allowed."},
	{status.ErrNotOnSale, "This performance is not on sale."},
	{status.ErrSoldOut, "Not enough seats remaining."},
	{status.ErrRefCodeDuplicate, "This exchange code already exists."},
	{status.ErrRefCodeUsed, "This exchange code has already been used."},
	{status.ErrTicketUsed, "This ticket has already been used."},
	{status.ErrTicketNotPaid, "The order for this ticket is not paid."},
	{status.ErrWebhookSecret, "Webhook secret not configured"},
	{status.ErrInvalidSignature, "Invalid signature"},
	{status.ErrInvalidPayload, "Malformed webhook payload"},
}

// apiError translates service errors into framework API errors. Anything
// unrecognised is logged and reported as a 500.
func apiError(err error) error {
	if err == nil {
		return nil
	}

	var ve *status.ValidationError
	if errors.As(err, &ve) {
		return apis.NewBadRequestError(ve.Message, nil)
	}
	for _, m := range notFoundMessages {
		if errors.Is(err, m.err) {
			return apis.NewNotFoundError(m.msg, nil)
		}
	}
	for _, m := range badRequestMessages {
		if errors.Is(err, m.err) {
			return apis.NewBadRequestError(m.msg, nil)
		}
	}
	if errors.Is(err, status.ErrFailedPayment) {
		detail := strings.TrimPrefix(err.Error(), status.ErrFailedPayment.Error())
		return apis.NewBadRequestError("payment processing failed"+detail, nil)
	}
	if errors.Is(err, status.ErrInvalidCredentials) {
		return apis.NewUnauthorizedError("Invalid email or password.", nil)
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return apis.NewBadRequestError("Some fields are invalid.", fieldErrs)
	}

	slog.Error("request failed", "error", err)
	return apis.NewInternalServerError("Something went wrong while processing your request.", nil)
}
