package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"time"

	"easel-ticket/config"
	"easel-ticket/models"
	"easel-ticket/monitoring"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/mailer"
	"github.com/pocketbase/pocketbase/tools/template"
)

// ConfirmationSender delivers the purchase confirmation for a paid order.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, order *models.Order, tickets []*models.Ticket) error
}

type NotificationService struct {
	mailClient func() mailer.Mailer
	qr         *QRService
	registry   *template.Registry
	cfg        *config.Config
}

func NewNotificationService(app core.App, qr *QRService, cfg *config.Config) *NotificationService {
	return &NotificationService{
		mailClient: app.NewMailClient,
		qr:         qr,
		registry:   template.NewRegistry(),
		cfg:        cfg,
	}
}

type ticketSection struct {
	Title   string
	Tickets []*models.Ticket
}

type confirmationData struct {
	Order       *models.Order
	PaidAt      string
	Performance string
	Sections    []ticketSection
	Total       string
	Discount    string
	SiteURL     string
}

func (s *NotificationService) SendConfirmation(ctx context.Context, order *models.Order, tickets []*models.Ticket) error {
	if s.cfg.MailFromAddress == "" {
		slog.Warn("mail sender not configured, skipping confirmation", "orderID", order.ID)
		monitoring.TrackEmail("skipped")
		return nil
	}

	html, err := s.renderConfirmation(order, tickets)
	if err != nil {
		monitoring.TrackEmail("failed")
		return err
	}

	attachments := make(map[string]io.Reader, len(tickets))
	for i, t := range tickets {
		png, err := s.qr.PNG(t.TicketCode, DefaultQRSize)
		if err != nil {
			slog.Warn("ticket qr attachment", "ticketCode", t.TicketCode, "error", err)
			continue
		}
		attachments[fmt.Sprintf("ticket-%02d-%s.png", i+1, t.TicketType)] = bytes.NewReader(png)
	}

	msg := &mailer.Message{
		From:        mail.Address{Name: s.cfg.MailFromName, Address: s.cfg.MailFromAddress},
		To:          []mail.Address{{Name: order.CustomerName, Address: order.CustomerEmail}},
		Subject:     "[easel] Your ticket purchase is complete",
		HTML:        html,
		Attachments: attachments,
	}

	done := make(chan error, 1)
	go func() { done <- s.mailClient().Send(msg) }()

	select {
	case <-ctx.Done():
		monitoring.TrackEmail("timeout")
		return fmt.Errorf("send confirmation for order %s: %w", order.ID, ctx.Err())
	case err := <-done:
		if err != nil {
			monitoring.TrackEmail("failed")
			return fmt.Errorf("send confirmation for order %s: %w", order.ID, err)
		}
	}

	monitoring.TrackEmail("sent")
	slog.Info("confirmation email sent", "orderID", order.ID, "to", order.CustomerEmail)
	return nil
}

func (s *NotificationService) renderConfirmation(order *models.Order, tickets []*models.Ticket) (string, error) {
	data := confirmationData{
		Order:       order,
		Performance: order.PerformanceLabel,
		Total:       formatYen(order.TotalAmount),
		SiteURL:     s.cfg.FrontendURL,
	}
	if data.Performance == "" {
		data.Performance = order.PerformanceDate
	}
	if order.PaidAt != nil {
		data.PaidAt = order.PaidAt.In(jst).Format("2006/01/02 15:04")
	}
	if order.DiscountAmount > 0 {
		data.Discount = formatYen(order.DiscountAmount)
	}

	general := ticketSection{Title: "General admission"}
	reserved := ticketSection{Title: "Reserved seats"}
	for _, t := range tickets {
		if t.TicketType == models.TicketTypeReserved {
			reserved.Tickets = append(reserved.Tickets, t)
		} else {
			general.Tickets = append(general.Tickets, t)
		}
	}
	for _, sec := range []ticketSection{general, reserved} {
		if len(sec.Tickets) > 0 {
			data.Sections = append(data.Sections, sec)
		}
	}

	html, err := s.registry.LoadString(confirmationTemplate).Render(data)
	if err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return html, nil
}

var jst = time.FixedZone("JST", 9*60*60)

// formatYen renders an amount with thousands separators, e.g. 14,500.
func formatYen(amount int) string {
	s := fmt.Sprintf("%d", amount)
	neg := amount < 0
	if neg {
		s = s[1:]
	}
	var b bytes.Buffer
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

const confirmationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h1>Thank you for your purchase</h1>
  <p>Dear {{.Order.CustomerName}},<br>your tickets are confirmed. Please present this email at the entrance.</p>

  <h3>Order</h3>
  <table>
    <tr><td>Order number</td><td>{{.Order.ID}}</td></tr>
    {{if .PaidAt}}<tr><td>Purchased</td><td>{{.PaidAt}}</td></tr>{{end}}
    <tr><td>Performance</td><td>{{.Performance}}</td></tr>
  </table>

  {{range .Sections}}
  <h3>{{.Title}} ({{len .Tickets}})</h3>
  {{range .Tickets}}
  <div style="border: 1px solid #ddd; padding: 8px; margin: 4px 0;">
    {{if .IsExchanged}}<strong>Exchange code applied</strong><br>{{end}}
    <code>{{.TicketCode}}</code>
  </div>
  {{end}}
  {{end}}

  <p><strong>Total: &yen;{{.Total}}</strong>{{if .Discount}} (exchange discount: -&yen;{{.Discount}}){{end}}</p>

  <ul>
    <li>The ticket codes above are required for entry.</li>
    <li>Do not share your ticket codes with anyone.</li>
  </ul>
  <p><a href="{{.SiteURL}}">easel</a></p>
</body>
</html>`
