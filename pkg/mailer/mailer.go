// Package mailer sends transactional email. SendGrid is used when an API key
// is configured; otherwise messages are only logged.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// ErrNoRecipient is returned when a message has no usable address.
var ErrNoRecipient = errors.New("mailer: recipient address required")

// Message is a single outgoing email.
type Message struct {
	Template string
	ToName   string
	ToEmail  string
	Subject  string
	Text     string
	HTML     string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures the delivery backend.
type Config struct {
	APIKey      string
	FromName    string
	FromAddress string
}

// New returns a SendGrid mailer when an API key is set, a log mailer otherwise.
func New(cfg Config, logger zerolog.Logger) Mailer {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return NewLogMailer(logger)
	}
	return NewSendgridMailer(cfg, logger)
}

// SendgridMailer posts messages to the SendGrid v3 API.
type SendgridMailer struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
	logger     zerolog.Logger
}

// NewSendgridMailer builds a SendGrid backed mailer.
func NewSendgridMailer(cfg Config, logger zerolog.Logger) *SendgridMailer {
	name := cfg.FromName
	if name == "" {
		name = "Sprint Connect"
	}
	return &SendgridMailer{
		key:        cfg.APIKey,
		host:       sendgridHost,
		from:       sgmail.NewEmail(name, cfg.FromAddress),
		subjPrefix: "[" + name + "] ",
		logger:     logger.With().Str("component", "sendgrid_mailer").Logger(),
	}
}

// Send delivers msg synchronously. The SendGrid client does not take a
// context, so cancellation only applies before the request starts.
func (m *SendgridMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return ErrNoRecipient
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded with status %d", res.StatusCode)
	}

	m.logger.Debug().Str("template", msg.Template).Int("status", res.StatusCode).Msg("email accepted by sendgrid")
	return nil
}

func (m *SendgridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	mail := sgmail.NewV3Mail()
	mail.SetFrom(m.from)
	mail.AddPersonalizations(p)
	mail.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		mail.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	if msg.Template != "" {
		mail.AddCategories(msg.Template)
	}
	return mail
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer constructs a logging mailer.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "log_mailer").Logger()}
}

// Send logs the message and reports success.
func (l *LogMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return ErrNoRecipient
	}
	l.logger.Info().
		Str("template", msg.Template).
		Str("to", msg.ToEmail).
		Str("subject", msg.Subject).
		Msg("email delivery skipped, no provider configured")
	return nil
}
