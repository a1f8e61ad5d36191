package core

import (
	"context"
	"net/mail"
	"strings"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

// TemplateKind names a notification template. Kinds map 1:1 to the files in fs/templates/email.
type TemplateKind string

const (
	KindConfirmation         TemplateKind = "confirmation"
	KindSubmissionAdminAlert TemplateKind = "submissionAdminAlert"
	KindStatusPending        TemplateKind = "statusPending"
	KindStatusProcessing     TemplateKind = "statusProcessing"
	KindStatusDelivered      TemplateKind = "statusDelivered"
	KindStatusRejected       TemplateKind = "statusRejected"
	KindCompletion           TemplateKind = "completion"
	KindCustomAdminMessage   TemplateKind = "customAdminMessage"
	KindContactAutoReply     TemplateKind = "contactAutoReply"
	KindContactAdminAlert    TemplateKind = "contactAdminAlert"
	KindStudentAccess        TemplateKind = "studentAccess"
)

var subjects = map[TemplateKind]*texttmpl.Template{
	KindConfirmation:         subject("Assignment Submission Confirmation - {{.Data.Submission.ID}}"),
	KindSubmissionAdminAlert: subject("New Assignment Submission - {{.Data.Submission.ID}}"),
	KindStatusPending:        subject("Assignment Under Review"),
	KindStatusProcessing:     subject("Assignment Work Started"),
	KindStatusDelivered:      subject("Assignment Completed and Delivered"),
	KindStatusRejected:       subject("Assignment Submission Issue"),
	KindCompletion:           subject("Your Assignment is Ready"),
	KindCustomAdminMessage:   subject("Assignment Update: {{.Data.Submission.SubjectArea}} - {{.Data.StatusLabel}}"),
	KindContactAutoReply:     subject("Thank You for Contacting {{.AppName}} - We'll Respond Soon!"),
	KindContactAdminAlert:    subject("Contact Form: {{.Data.Subject}} - {{.Data.Name}}"),
	KindStudentAccess:        subject("Your {{.AppName}} dashboard link"),
}

func subject(s string) *texttmpl.Template {
	return texttmpl.Must(texttmpl.New("subject").Parse(s))
}

type (
	Notification struct {
		Kind    TemplateKind
		To      []mail.Address
		ReplyTo *mail.Address
		Data    interface{}
	}

	// Notifier delivers templated notifications. A returned error means the notification was not delivered.
	Notifier interface {
		Notify(ctx context.Context, n Notification) error
	}
)

// MailNotifier renders notifications as emails and hands them to an EmailService.
type MailNotifier struct {
	svc  EmailService
	conf *Config
}

var _ Notifier = (*MailNotifier)(nil)

func NewMailNotifier(svc EmailService, conf *Config) *MailNotifier {
	return &MailNotifier{svc: svc, conf: conf}
}

func (n *MailNotifier) Notify(ctx context.Context, nt Notification) error {
	tmpl, ok := subjects[nt.Kind]
	if !ok {
		return errors.Errorf("unknown notification kind %q", nt.Kind)
	}
	data := ContextData{
		AppName:         n.conf.AppName,
		FrontendBaseURL: n.conf.FrontendBaseURL,
		Data:            nt.Data,
	}

	var subj strings.Builder
	if err := tmpl.Execute(&subj, data); err != nil {
		return errors.Wrap(err, "rendering subject")
	}

	msg := &EmailMessage{
		To:           nt.To,
		ReplyTo:      nt.ReplyTo,
		Subject:      subj.String(),
		TemplateName: string(nt.Kind),
		TemplateData: nt.Data,
	}
	if err := msg.Render(data); err != nil {
		return errors.Wrap(err, "rendering email")
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return errors.New("nothing to send")
	}
	return n.svc.SendMessage(ctx, msg)
}
