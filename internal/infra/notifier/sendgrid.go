package notifier

import (
	"context"
	"fmt"

	"app/internal/domain/model"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"go.uber.org/zap"
)

// 注文と問い合わせをメールで届けるNotifier実装。
type SendgridMailer struct {
	apiKey string
	from   string
	to     string
	logger *zap.Logger
}

// DI
func NewSendgridMailer(apiKey string, from string, to string, logger *zap.Logger) *SendgridMailer {
	return &SendgridMailer{
		apiKey: apiKey,
		from:   from,
		to:     to,
		logger: logger,
	}
}

func (m *SendgridMailer) Notify(ctx context.Context, o model.Order) error {
	body := fmt.Sprintf(
		"Name: %s\nContact: %s\n\n%s\n\nTotal: $%s",
		o.Name, o.Contact, o.Items, o.Total,
	)

	if err := m.send(ctx, "New Order – Amar a Gaia", body); err != nil {
		m.logger.Warn("order mail failed", zap.Error(err))
		return err
	}

	m.logger.Info("order sent", zap.String("name", o.Name), zap.String("total", o.Total))
	return nil
}

func (m *SendgridMailer) Forward(ctx context.Context, name string, email string, message string) error {
	body := fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", name, email, message)

	if err := m.send(ctx, "Contact – Amar a Gaia", body); err != nil {
		m.logger.Warn("contact mail failed", zap.Error(err))
		return err
	}

	return nil
}

func (m *SendgridMailer) send(ctx context.Context, subject string, body string) error {
	fromEmail := mail.NewEmail("Amar a Gaia", m.from)
	toEmail := mail.NewEmail("", m.to)

	// HTMLは最低限整形
	message := mail.NewSingleEmail(
		fromEmail,
		subject,
		toEmail,
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	client := sendgrid.NewSendClient(m.apiKey)

	res, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if res.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", res.StatusCode, res.Body)
	}

	return nil
}
