package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/testutil"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg Message) error {
	return m.Called(ctx, msg).Error(0)
}

func TestContactSend(t *testing.T) {
	t.Parallel()

	form := ContactForm{Name: "Alice", Email: "alice@example.com", Subject: "Pens", Message: "Do you sell red ones?"}

	t.Run("delivered", func(t *testing.T) {
		t.Parallel()

		m := &mockMailer{}
		m.On("Send", mock.Anything, mock.MatchedBy(func(msg Message) bool {
			return msg.To == "shop@example.com" && msg.From == form.Email && msg.Subject == "Pens"
		})).Return(nil).Once()

		s := &ContactService{Mailer: m, To: "shop@example.com"}
		require.NoError(t, s.Send(context.Background(), form))
		m.AssertExpectations(t)
	})

	t.Run("header injection", func(t *testing.T) {
		t.Parallel()

		for _, f := range []ContactForm{
			{Name: "Alice\r\nBcc: x@y.z", Email: form.Email, Subject: form.Subject, Message: "hi"},
			{Name: form.Name, Email: "alice@example.com\n", Subject: form.Subject, Message: "hi"},
			{Name: form.Name, Email: form.Email, Subject: "Pens\rBcc: x@y.z", Message: "hi"},
		} {
			m := &mockMailer{}
			s := &ContactService{Mailer: m, To: "shop@example.com"}
			require.ErrorIs(t, s.Send(context.Background(), f), ErrHeaderInjection)
			m.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		}
	})

	t.Run("multi-line message is fine", func(t *testing.T) {
		t.Parallel()

		m := &mockMailer{}
		m.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
		s := &ContactService{Mailer: m, To: "shop@example.com"}
		f := form
		f.Message = "line one\r\nline two"
		require.NoError(t, s.Send(context.Background(), f))
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		s := &ContactService{Mailer: &mockMailer{}, To: "shop@example.com"}
		err := s.Send(context.Background(), ContactForm{Email: "not-an-email"})
		var verr ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr, 4)
	})

	t.Run("mailer failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("smtp down")
		m := &mockMailer{}
		m.On("Send", mock.Anything, mock.Anything).Return(boom)
		s := &ContactService{Mailer: m, To: "shop@example.com"}
		require.ErrorIs(t, s.Send(context.Background(), form), boom)
	})
}

func TestKafkaMailer_PublishesToContactTopic(t *testing.T) {
	t.Parallel()

	rec := &testutil.Recorder{}
	km := &KafkaMailer{Events: rec}
	require.NoError(t, km.Send(context.Background(), Message{From: "a@b.c", To: "shop@example.com", Subject: "s", Body: "b"}))

	evs := rec.Events(events.TopicContact)
	require.Len(t, evs, 1)
	assert.Equal(t, "a@b.c", evs[0].Key)
	assert.Equal(t, "contact_message", evs[0].Body["type"])
}
