package queue

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/aereosky/flight-booking-api/internal/model"
	"github.com/aereosky/flight-booking-api/internal/utils"
)

// Mailer sends purchase confirmation emails over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer builds a Mailer from SMTP settings.  Returns nil when no host
// is configured so callers can skip mail delivery entirely.
func NewMailer(host string, port int, user, pass string) *Mailer {
	if host == "" {
		return nil
	}
	return &Mailer{dialer: gomail.NewDialer(host, port, user, pass), from: user}
}

// SendPurchaseConfirmation emails the invoice summary to the customer.
// Every purchase gets the invoice; the ticket section with the seat number
// is included only for electronic delivery, since airport pickup customers
// receive the ticket at the counter.
func (m *Mailer) SendPurchaseConfirmation(ev PurchaseCompletedEvent) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Purchase confirmation #%d</h2>", ev.PurchaseID)
	fmt.Fprintf(&b, "<p>Dear %s,</p><p>Your flight purchase is confirmed.</p>", ev.CustomerName)
	fmt.Fprintf(&b, "<h3>Invoice %d</h3><ul>", ev.InvoiceID)
	fmt.Fprintf(&b, "<li>Flight: %s (%s) %s (%s) → %s (%s)</li>",
		ev.AirlineName, ev.AirlineCode, ev.OriginCity, ev.OriginIata, ev.DestCity, ev.DestIata)
	fmt.Fprintf(&b, "<li>Departure: %s</li><li>Arrival: %s</li>", ev.DepartureAt, ev.ArrivalAt)
	fmt.Fprintf(&b, "<li>Subtotal: %.2f</li><li>Tax (%.0f%%): %.2f</li><li>Total: %.2f</li>",
		ev.TotalAmount, utils.TaxRate*100, ev.TaxAmount, utils.Round2(ev.TotalAmount+ev.TaxAmount))
	fmt.Fprintf(&b, "<li>Delivery: %s</li></ul>", ev.DeliveryMethod)
	if ev.DeliveryMethod == model.DeliveryElectronic {
		fmt.Fprintf(&b, "<h3>Ticket %d</h3><ul><li>Seat: %s</li><li>Purchased at: %s</li></ul>",
			ev.TicketID, ev.SeatNumber, ev.PurchasedAt)
	} else {
		b.WriteString("<p>Your ticket will be handed over at the airport counter.</p>")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", ev.CustomerEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Purchase confirmation #%d", ev.PurchaseID))
	msg.SetBody("text/html", b.String())
	return m.dialer.DialAndSend(msg)
}
