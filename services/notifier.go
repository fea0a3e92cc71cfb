package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/portfolio-intake-backend/models"
	"github.com/rpupo63/portfolio-intake-backend/retrier"
)

const defaultNotifyTimeout = 45 * time.Second

type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, body string) (string, error)
}

type NotifyStatus int

const (
	NotifySkipped NotifyStatus = iota
	NotifySent
)

type NotifyResult struct {
	Status    NotifyStatus
	MessageID string
}

func (r NotifyResult) Sent() bool {
	return r.Status == NotifySent
}

// DefaultEmailPolicy allows 3 attempts with waits between 2s and 5s. Every provider fault is retried.
func DefaultEmailPolicy() retrier.Policy {
	return retrier.Policy{
		Name:        "email send",
		MaxAttempts: 3,
		MinWait:     2 * time.Second,
		MaxWait:     5 * time.Second,
	}
}

// Notifier emails the operator about a submission and, when configured, texts them too.
// Without an email sender it runs in degraded mode and reports NotifySkipped.
type Notifier struct {
	email   EmailSender
	from    string
	to      []string
	sms     SMSSender
	policy  retrier.Policy
	timeout time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

func WithEmailSender(sender EmailSender, from string, to ...string) func(*Notifier) {
	return func(n *Notifier) {
		n.email = sender
		n.from = from
		n.to = to
	}
}

func WithSMSSender(sender SMSSender) func(*Notifier) {
	return func(n *Notifier) {
		n.sms = sender
	}
}

func WithEmailPolicy(p retrier.Policy) func(*Notifier) {
	return func(n *Notifier) {
		n.policy = p
	}
}

func WithNotifyTimeout(d time.Duration) func(*Notifier) {
	return func(n *Notifier) {
		n.timeout = d
	}
}

func WithNotifierClock(now func() time.Time) func(*Notifier) {
	return func(n *Notifier) {
		n.now = now
	}
}

func NewNotifier(opts ...func(*Notifier)) *Notifier {
	n := &Notifier{
		policy:  DefaultEmailPolicy(),
		timeout: defaultNotifyTimeout,
		now:     time.Now,
		logger:  log.With().Str("component", "notifier").Logger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.timeout <= 0 {
		n.timeout = defaultNotifyTimeout
	}
	n.policy = n.policy.WithLogger(n.logger)
	return n
}

// Notify runs detached from the caller's cancellation, bounded by the notifier timeout.
// It returns the email provider's last error once the retry budget is spent.
func (n *Notifier) Notify(ctx context.Context, sub models.Submission) (NotifyResult, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	receivedAt := n.now()

	var result NotifyResult
	var g errgroup.Group
	g.Go(func() error {
		var err error
		result, err = n.sendEmail(ctx, sub, receivedAt)
		return err
	})
	if n.sms != nil {
		g.Go(func() error {
			n.sendSMS(ctx, sub, receivedAt)
			return nil
		})
	}

	err := g.Wait()
	return result, err
}

func (n *Notifier) sendEmail(ctx context.Context, sub models.Submission, receivedAt time.Time) (NotifyResult, error) {
	if n.email == nil {
		n.logger.Warn().Msg("Resend API key not set. Skipping email send.")
		return NotifyResult{Status: NotifySkipped}, nil
	}

	subject, html, err := renderEmail(sub, receivedAt)
	if err != nil {
		return NotifyResult{}, err
	}
	msg := EmailMessage{From: n.from, To: n.to, Subject: subject, HTML: html}

	var messageID string
	_, err = n.policy.Run(ctx, func(ctx context.Context) error {
		id, err := n.email.Send(ctx, msg)
		if err != nil {
			n.logger.Error().Err(err).Msg("Resend error")
			return err
		}
		messageID = id
		return nil
	})
	if err != nil {
		return NotifyResult{}, err
	}

	n.logger.Info().Str("messageId", messageID).Msg("Email sent successfully")
	return NotifyResult{Status: NotifySent, MessageID: messageID}, nil
}

// sendSMS is a single best-effort attempt; its outcome is only logged.
func (n *Notifier) sendSMS(ctx context.Context, sub models.Submission, receivedAt time.Time) {
	subject := emailTemplates[sub.Kind()].subject
	body := fmt.Sprintf("%s received at %s UTC", subject, receivedAt.UTC().Format("2006-01-02 15:04"))

	sid, err := n.sms.SendSMS(ctx, body)
	if err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send SMS alert")
		return
	}
	n.logger.Info().Str("sid", sid).Msg("SMS alert sent")
}
