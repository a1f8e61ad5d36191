// Package contact handles the public contact form.
package contact

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/submitly/backend/core"
)

// Message is a contact form message. It is also the template data of both contact emails.
type Message struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=255"`
	Message string `json:"message" validate:"required,min=10"`
}

func (m *Message) clean() {
	m.Name = core.CleanString(m.Name)
	m.Email = core.CleanString(m.Email, true /* lower */)
	m.Subject = core.CleanString(m.Subject)
	m.Message = core.CleanString(m.Message)
}

func (m Message) sender() mail.Address {
	return mail.Address{Name: m.Name, Address: m.Email}
}

type Service struct {
	notifier  core.Notifier
	validator *core.Validator
	logger    core.Logger
	conf      *core.Config
}

func NewService(notifier core.Notifier, v *core.Validator, logger core.Logger, conf *core.Config) *Service {
	return &Service{notifier: notifier, validator: v, logger: logger, conf: conf}
}

// Send forwards msg to the admin inbox and acknowledges it to the sender.
// Both emails are attempted; the first failure is returned as a *core.NotificationError.
func (svc *Service) Send(ctx context.Context, msg Message) error {
	msg.clean()
	if err := svc.validator.Struct(&msg); err != nil {
		return err
	}

	sender := msg.sender()
	var warn error
	for _, n := range []core.Notification{
		{Kind: core.KindContactAdminAlert, To: []mail.Address{svc.conf.AdminAddress()}, ReplyTo: &sender, Data: msg},
		{Kind: core.KindContactAutoReply, To: []mail.Address{sender}, Data: msg},
	} {
		if err := svc.notifier.Notify(ctx, n); err != nil {
			svc.logger.Error(fmt.Sprintf("sending %s notification: %v", n.Kind, err), err)
			if warn == nil {
				warn = &core.NotificationError{Kind: n.Kind, Err: err}
			}
		}
	}
	return warn
}
