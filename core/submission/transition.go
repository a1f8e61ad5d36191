package submission

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/submitly/backend/core"
)

// DeliveryReason tells which action moved a submission to delivered.
type DeliveryReason string

const (
	ReasonStatusUpdate       DeliveryReason = "statusUpdate"
	ReasonExplicitCompletion DeliveryReason = "explicitCompletion"
)

type statusMessage struct {
	headline string
	message  string
}

var statusMessages = map[Status]statusMessage{
	StatusPending: {
		headline: "Assignment Under Review",
		message:  "Our team is currently reviewing your assignment submission and payment. We'll update you once the review is complete.",
	},
	StatusProcessing: {
		headline: "Assignment Work Started",
		message:  "Great news! Our expert team has started working on your assignment. We'll keep you updated on the progress.",
	},
	StatusDelivered: {
		headline: "Assignment Completed and Delivered",
		message:  "Your assignment has been completed and is ready for download. Please check your student dashboard to access your completed work.",
	},
	StatusRejected: {
		headline: "Assignment Submission Issue",
		message:  "There was an issue with your submission that needs to be addressed. Please contact our support team for more information.",
	},
}

type (
	// NotificationData is the template data of every submission notification.
	NotificationData struct {
		Submission  Submission
		StatusLabel string
		Headline    string
		Message     string
		Notes       string
		Reason      DeliveryReason
	}

	AccessData struct {
		Name         string
		DashboardURL string
		ExpiresIn    string
	}

	// StatusChanged is published after every committed status change.
	StatusChanged struct {
		Type           string         `json:"type"`
		SubmissionID   string         `json:"submission_id"`
		RequesterEmail string         `json:"requester_email"`
		PreviousStatus Status         `json:"previous_status"`
		Status         Status         `json:"status"`
		Reason         DeliveryReason `json:"reason,omitempty"`
		OccurredAt     time.Time      `json:"occurred_at"`
	}
)

func (svc *Service) notificationData(sub Submission, reason DeliveryReason, notes string) NotificationData {
	msg := statusMessages[sub.Status]
	return NotificationData{
		Submission:  sub,
		StatusLabel: sub.Status.Label(),
		Headline:    msg.headline,
		Message:     msg.message,
		Notes:       notes,
		Reason:      reason,
	}
}

// UpdateStatus moves the submission to status, whatever its current status is.
// The change is stored before the requester is notified; a failed notification does not undo it
// and is returned as a *core.NotificationError alongside the updated Submission.
// notes, when given and non-empty, replace the admin notes.
func (svc *Service) UpdateStatus(ctx context.Context, id string, status Status, notes ...string) (Submission, error) {
	return svc.transition(ctx, id, status, ReasonStatusUpdate, notes...)
}

// Complete marks the submission as delivered and sends the completion notice instead of the
// generic delivered one.
func (svc *Service) Complete(ctx context.Context, id string) (Submission, error) {
	return svc.transition(ctx, id, StatusDelivered, ReasonExplicitCompletion)
}

func (svc *Service) transition(ctx context.Context, id string, status Status, reason DeliveryReason, notes ...string) (Submission, error) {
	sub, err := svc.Get(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if !status.IsValid() {
		return Submission{}, &core.InvalidStatusError{Value: string(status)}
	}

	prev := sub.Status
	upd := Update{Status: &status, UpdatedAt: core.NowFunc()}
	var note string
	if len(notes) > 0 {
		if note = core.CleanString(notes[0]); note != "" {
			upd.AdminNotes = &note
		}
	}
	sub, err = svc.repo.UpdateSubmission(ctx, sub.ID, upd)
	if err != nil {
		if err == ErrNotFound {
			return Submission{}, err
		}
		return Submission{}, errors.Wrap(err, "updating submission status")
	}

	svc.publish(ctx, sub.ID, StatusChanged{
		Type:           "submission.status_changed",
		SubmissionID:   sub.ID,
		RequesterEmail: sub.RequesterEmail,
		PreviousStatus: prev,
		Status:         sub.Status,
		Reason:         reason,
		OccurredAt:     sub.UpdatedAt,
	})

	return sub, svc.notifyStatus(ctx, sub, reason, note)
}

func (svc *Service) notifyStatus(ctx context.Context, sub Submission, reason DeliveryReason, notes string) error {
	var kind core.TemplateKind
	switch sub.Status {
	case StatusPending:
		kind = core.KindStatusPending
	case StatusProcessing:
		kind = core.KindStatusProcessing
	case StatusDelivered:
		return svc.onDelivered(ctx, sub, reason, notes)
	case StatusRejected:
		kind = core.KindStatusRejected
	}
	data := svc.notificationData(sub, "", notes)
	return svc.dispatch(ctx, kind, []mail.Address{sub.requester()}, data)
}

// onDelivered is the single dispatch point of the delivered event; reason picks the template.
func (svc *Service) onDelivered(ctx context.Context, sub Submission, reason DeliveryReason, notes string) error {
	kind := core.KindStatusDelivered
	if reason == ReasonExplicitCompletion {
		kind = core.KindCompletion
	}
	data := svc.notificationData(sub, reason, notes)
	return svc.dispatch(ctx, kind, []mail.Address{sub.requester()}, data)
}
