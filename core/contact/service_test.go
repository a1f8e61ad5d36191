package contact

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/submitly/backend/core"
)

type recordingNotifier struct {
	sent     []core.Notification
	failKind core.TemplateKind
}

func (n *recordingNotifier) Notify(_ context.Context, nt core.Notification) error {
	if nt.Kind == n.failKind {
		return errors.New("provider rejected the message")
	}
	n.sent = append(n.sent, nt)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService(n core.Notifier) *Service {
	conf := &core.Config{AppName: "Submitly", AdminEmail: "admin@submitly.com"}
	return NewService(n, core.NewValidator(), nopLogger{}, conf)
}

func TestService_Send(t *testing.T) {
	n := &recordingNotifier{}
	svc := newTestService(n)

	err := svc.Send(context.Background(), Message{
		Name:    " Ada ",
		Email:   "Ada@Example.com",
		Subject: "Refund",
		Message: "I would like to know more about refunds.",
	})
	require.NoError(t, err)
	require.Len(t, n.sent, 2)

	alert, reply := n.sent[0], n.sent[1]
	assert.Equal(t, core.KindContactAdminAlert, alert.Kind)
	assert.Equal(t, "admin@submitly.com", alert.To[0].Address)
	if assert.NotNil(t, alert.ReplyTo) {
		assert.Equal(t, "ada@example.com", alert.ReplyTo.Address)
	}
	assert.Equal(t, core.KindContactAutoReply, reply.Kind)
	assert.Equal(t, "ada@example.com", reply.To[0].Address)
	assert.Equal(t, "Ada", reply.Data.(Message).Name)
}

func TestService_Send_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		msg        Message
		wantFields []string
	}{
		{name: "empty", msg: Message{}, wantFields: []string{"name", "email", "subject", "message"}},
		{name: "bad email", msg: Message{Name: "A", Email: "nope", Subject: "s", Message: "long enough message"}, wantFields: []string{"email"}},
		{name: "short message", msg: Message{Name: "A", Email: "a@b.co", Subject: "s", Message: "too short"}, wantFields: []string{"message"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			err := newTestService(n).Send(context.Background(), tt.msg)
			vErr, ok := err.(*core.ValidationError)
			if assert.True(t, ok, "want *core.ValidationError, got %v", err) {
				assert.Len(t, vErr.Fields, len(tt.wantFields))
				for _, fld := range tt.wantFields {
					assert.True(t, vErr.HasField(fld), "missing %s", fld)
				}
			}
			assert.Empty(t, n.sent)
		})
	}
}

func TestService_Send_PartialFailure(t *testing.T) {
	n := &recordingNotifier{failKind: core.KindContactAdminAlert}
	err := newTestService(n).Send(context.Background(), Message{
		Name: "Ada", Email: "ada@example.com", Subject: "Hello", Message: "Just saying hello there.",
	})

	assert.True(t, core.IsNotificationFailure(err))
	if assert.Len(t, n.sent, 1) {
		assert.Equal(t, core.KindContactAutoReply, n.sent[0].Kind)
	}
}
