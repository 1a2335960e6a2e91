package mailer

import (
	"context"
	"log/slog"
)

// devSender logs messages instead of delivering them.
type devSender struct {
	log *slog.Logger
}

// NewDevSender returns a Sender that only logs. Messages still go through
// validation so development catches malformed email early.
func NewDevSender(log *slog.Logger) Sender {
	if log == nil {
		log = slog.Default()
	}
	return &devSender{log: log}
}

func (s *devSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "dev mailer: email suppressed",
		"to", msg.To, "subject", msg.Subject, "tag", msg.Tag)
	return nil
}
