// Package notify runs the certificate expiry sweeper: a periodic job that
// emails companies about ASOs expiring soon so employees can be re-examined
// before compliance lapses.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/asoflow/asoflow/internal/store"
	"github.com/asoflow/asoflow/pkg/mailer"
)

// Defaults for the sweep cadence and how far ahead reminders look.
const (
	DefaultSweepInterval = time.Hour
	DefaultExpiryWindow  = 30 * 24 * time.Hour
)

// CertificateSource lists upcoming expirations and records sent reminders.
// Satisfied by store.CertificateStore.
type CertificateSource interface {
	ListExpiring(ctx context.Context, within time.Duration) ([]store.ExpiringCertificate, error)
	MarkExpiryNotified(ctx context.Context, id uuid.UUID) error
}

// Notifier sweeps for expiring certificates and sends reminder email.
type Notifier struct {
	certs    CertificateSource
	sender   mailer.Sender
	interval time.Duration
	window   time.Duration
	log      *slog.Logger
}

// Option configures the Notifier.
type Option func(*Notifier)

// WithSweepInterval sets how often the sweep runs.
func WithSweepInterval(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.interval = d
		}
	}
}

// WithExpiryWindow sets how far ahead a certificate counts as expiring.
func WithExpiryWindow(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.window = d
		}
	}
}

// WithLogger sets the notifier logger.
func WithLogger(log *slog.Logger) Option {
	return func(n *Notifier) {
		if log != nil {
			n.log = log
		}
	}
}

// New creates the expiry notifier. Panics on nil dependencies.
func New(certs CertificateSource, sender mailer.Sender, opts ...Option) *Notifier {
	if certs == nil {
		panic("notify: CertificateSource is required")
	}
	if sender == nil {
		panic("notify: mailer.Sender is required")
	}

	n := &Notifier{
		certs:    certs,
		sender:   sender,
		interval: DefaultSweepInterval,
		window:   DefaultExpiryWindow,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Run sweeps immediately and then on every tick until the context is
// cancelled. It always returns ctx.Err().
func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	n.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n.Sweep(ctx)
		}
	}
}

// Sweep performs one pass: list expiring certificates, email each company,
// and mark the sent ones. A failed send leaves the certificate unmarked so
// the next sweep retries it.
func (n *Notifier) Sweep(ctx context.Context) {
	expiring, err := n.certs.ListExpiring(ctx, n.window)
	if err != nil {
		n.log.ErrorContext(ctx, "expiry sweep query failed", "error", err)
		return
	}
	if len(expiring) == 0 {
		return
	}

	sent := 0
	for _, cert := range expiring {
		if err := n.sender.Send(ctx, reminderMessage(cert)); err != nil {
			n.log.ErrorContext(ctx, "expiry reminder send failed",
				"certificate_id", cert.ID, "tenant_id", cert.TenantID, "error", err)
			continue
		}
		if err := n.certs.MarkExpiryNotified(ctx, cert.ID); err != nil {
			n.log.ErrorContext(ctx, "failed to mark certificate notified",
				"certificate_id", cert.ID, "error", err)
			continue
		}
		sent++
	}

	n.log.InfoContext(ctx, "expiry sweep complete",
		"expiring", len(expiring), "reminders_sent", sent)
}

func reminderMessage(cert store.ExpiringCertificate) mailer.Message {
	expires := cert.ExpiresAt.Format("02/01/2006")
	return mailer.Message{
		To:      cert.TenantEmail,
		Subject: fmt.Sprintf("ASO de %s vence em %s", cert.EmployeeName, expires),
		BodyHTML: fmt.Sprintf(
			"<p>Olá, %s.</p><p>O ASO (%s) de <strong>%s</strong> vence em <strong>%s</strong>. "+
				"Agende um novo exame ocupacional para manter a conformidade com a NR-7.</p>",
			cert.TenantName, cert.Kind, cert.EmployeeName, expires),
		Tag: "aso-expiry-reminder",
	}
}
