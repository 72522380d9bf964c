package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to, reference string, total float64, items []OrderItem) error {
	subject := fmt.Sprintf("Order confirmed: %s", reference)
	body := BuildOrderConfirmationBody(reference, total, items)
	return s.send(to, subject, body)
}

// SendRefundNotice sends a refund confirmation for a cancelled or
// returned order.
func (s *Service) SendRefundNotice(to, reference string, amount float64, reason string) error {
	subject := fmt.Sprintf("Refund processed for order %s", reference)
	body := BuildRefundBody(reference, amount, reason)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
