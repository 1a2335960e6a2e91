package mailer_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asoflow/asoflow/pkg/mailer"
)

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	valid := mailer.Message{
		To:       "rh@empresa.com.br",
		Subject:  "Seu ASO vence em breve",
		BodyHTML: "<p>oi</p>",
	}

	t.Run("accepts a complete message", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, valid.Validate())
	})

	t.Run("rejects bad recipients", func(t *testing.T) {
		t.Parallel()
		for _, to := range []string{"", "nope", "nope@", "@nope.com"} {
			msg := valid
			msg.To = to
			assert.ErrorIs(t, msg.Validate(), mailer.ErrInvalidMessage, "to %q", to)
		}
	})

	t.Run("rejects empty subject and body", func(t *testing.T) {
		t.Parallel()

		msg := valid
		msg.Subject = ""
		assert.ErrorIs(t, msg.Validate(), mailer.ErrInvalidMessage)

		msg = valid
		msg.BodyHTML = ""
		assert.ErrorIs(t, msg.Validate(), mailer.ErrInvalidMessage)
	})
}

func TestNewPostmarkSender(t *testing.T) {
	t.Parallel()

	t.Run("requires tokens", func(t *testing.T) {
		t.Parallel()

		_, err := mailer.NewPostmarkSender(mailer.Config{
			SenderEmail:  "no-reply@asoflow.com.br",
			SupportEmail: "suporte@asoflow.com.br",
		})
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
	})

	t.Run("requires valid sender addresses", func(t *testing.T) {
		t.Parallel()

		_, err := mailer.NewPostmarkSender(mailer.Config{
			PostmarkServerToken:  "token",
			PostmarkAccountToken: "token",
			SenderEmail:          "broken",
			SupportEmail:         "suporte@asoflow.com.br",
		})
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
	})
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := mailer.NewDevSender(log)

	t.Run("validates before logging", func(t *testing.T) {
		t.Parallel()
		err := sender.Send(context.Background(), mailer.Message{To: "bad"})
		assert.ErrorIs(t, err, mailer.ErrInvalidMessage)
	})

	t.Run("suppresses delivery of valid messages", func(t *testing.T) {
		t.Parallel()
		err := sender.Send(context.Background(), mailer.Message{
			To:       "rh@empresa.com.br",
			Subject:  "teste",
			BodyHTML: "<p>oi</p>",
		})
		assert.NoError(t, err)
	})
}
