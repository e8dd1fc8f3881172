// Package notify delivers overdue-task emails for the sweeper.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/timeboxhq/timebox/internal/models"
	"github.com/timeboxhq/timebox/internal/services"
)

type mailNotifier struct {
	logger  zerolog.Logger
	client  *mail.Client
	from    string
	siteURL string
}

// NewMailNotifier dials SMTP lazily per message. The client is safe for
// concurrent use.
func NewMailNotifier(
	logger zerolog.Logger,
	host string,
	port int,
	username, password string,
	from, siteURL string,
) (services.Notifier, error) {
	client, err := mail.NewClient(
		host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &mailNotifier{
		logger:  logger,
		client:  client,
		from:    from,
		siteURL: siteURL,
	}, nil
}

func (n *mailNotifier) NotifyOverdue(ctx context.Context, email string, tasks []*models.Task, urgent bool) error {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(overdueSubject(len(tasks), urgent))
	msg.SetBodyString(mail.TypeTextPlain, overdueBody(tasks, urgent, n.siteURL))

	err := n.client.DialAndSendWithContext(ctx, msg)
	if err != nil {
		n.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to send overdue notification")
		return err
	}

	n.logger.Info().
		Str("email", email).
		Int("tasks", len(tasks)).
		Bool("urgent", urgent).
		Msg("sent overdue notification")
	return nil
}

func overdueSubject(count int, urgent bool) string {
	if urgent {
		return fmt.Sprintf("Urgent: %d severely overdue task(s)", count)
	}
	return fmt.Sprintf("You have %d overdue task(s)", count)
}

func overdueBody(tasks []*models.Task, urgent bool, siteURL string) string {
	var b strings.Builder
	if urgent {
		b.WriteString("These tasks have been overdue for more than a day:\n\n")
	} else {
		b.WriteString("These tasks are past their due date:\n\n")
	}

	for _, task := range tasks {
		b.WriteString("  - ")
		b.WriteString(task.Title)
		if task.DueDate != nil {
			b.WriteString(" (due ")
			b.WriteString(task.DueDate.Format(time.DateOnly))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nReview them at ")
	b.WriteString(siteURL)
	b.WriteString("\n")
	return b.String()
}

type logNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier records notifications to the log. It is used when SMTP
// is not configured.
func NewLogNotifier(logger zerolog.Logger) services.Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) NotifyOverdue(_ context.Context, email string, tasks []*models.Task, urgent bool) error {
	n.logger.Info().
		Str("email", email).
		Int("tasks", len(tasks)).
		Bool("urgent", urgent).
		Msg("overdue notification (smtp disabled)")
	return nil
}
