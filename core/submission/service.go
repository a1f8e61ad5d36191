package submission

import (
	"context"
	"fmt"
	"math/rand"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/submitly/backend/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("submission")
	ErrDuplicateID = errors.New("a submission with this id already exists")

	idRandFunc     = rand.Intn // mockable
	maxIDAttempts  = 5
	defaultOrderBy = core.DBOrdering{Field: "created_at", Ascending: false}

	// OrderingFields maps the public ordering keys to their columns.
	OrderingFields = map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"deadline":   "deadline",
		"status":     "status",
	}
)

type (
	Repository interface {
		// CreateSubmission fails with ErrDuplicateID when the id is taken.
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmission(ctx context.Context, id string) (Submission, error)
		// QuerySubmissions applies AND operation on the non-empty QueryFilter fields.
		QuerySubmissions(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Submission, error)
		// UpdateSubmission applies the non-nil Update fields and returns the updated row, or ErrNotFound.
		UpdateSubmission(ctx context.Context, id string, upd Update) (Submission, error)
	}

	Service struct {
		repo      Repository
		files     core.FileStore
		notifier  core.Notifier
		publisher core.EventPublisher
		validator *core.Validator
		logger    core.Logger
		conf      *core.Config
	}

	Deps struct {
		Repo      Repository
		Files     core.FileStore
		Notifier  core.Notifier
		Publisher core.EventPublisher // optional
		Validator *core.Validator
		Logger    core.Logger
		Conf      *core.Config
	}
)

func NewService(deps Deps) *Service {
	return &Service{
		repo:      deps.Repo,
		files:     deps.Files,
		notifier:  deps.Notifier,
		publisher: deps.Publisher,
		validator: deps.Validator,
		logger:    deps.Logger,
		conf:      deps.Conf,
	}
}

// newID generates ids like SUB-482913-57.
func newID() string {
	return fmt.Sprintf("SUB-%06d-%d", core.NowFunc().UnixNano()/int64(1e6)%1e6, idRandFunc(1000))
}

// Create validates ns and stores a new pending Submission.
// The confirmation and admin alert are sent once stored; a delivery failure is returned as a
// *core.NotificationError alongside the created Submission.
func (svc *Service) Create(ctx context.Context, ns NewSubmission) (Submission, error) {
	if err := ns.Validate(svc.validator); err != nil {
		return Submission{}, err
	}

	now := core.NowFunc()
	sub := Submission{
		RequesterName:     ns.RequesterName,
		RequesterEmail:    ns.RequesterEmail,
		RequesterPhone:    ns.RequesterPhone,
		Title:             ns.Title,
		SubjectArea:       ns.SubjectArea,
		Category:          Category(ns.Category),
		Description:       ns.Description,
		Deadline:          ns.Deadline,
		AssignmentFileURL: ns.AssignmentFileURL,
		PaymentProofURL:   ns.PaymentProofURL,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		sub.ID = newID()
		var created Submission
		if created, err = svc.repo.CreateSubmission(ctx, sub); err == nil {
			sub = created
			break
		}
		if err != ErrDuplicateID {
			return Submission{}, errors.Wrap(err, "creating submission")
		}
	}
	if err != nil {
		return Submission{}, errors.Wrap(err, "generating submission id")
	}

	data := svc.notificationData(sub, "", "")
	warn := svc.dispatch(ctx, core.KindConfirmation, []mail.Address{sub.requester()}, data)
	if err := svc.dispatch(ctx, core.KindSubmissionAdminAlert, []mail.Address{svc.conf.AdminAddress()}, data); warn == nil {
		warn = err
	}
	return sub, warn
}

// Submit checks the fields and the uploaded files together, stores the files then creates the Submission.
func (svc *Service) Submit(ctx context.Context, ns NewSubmission, assignment, proof *File) (Submission, error) {
	var flds []core.FieldError
	if err := ns.Validate(svc.validator); err != nil {
		vErr, ok := err.(*core.ValidationError)
		if !ok {
			return Submission{}, err
		}
		flds = append(flds, vErr.Fields...)
	}
	if err := CheckFiles(assignment, proof); err != nil {
		flds = append(flds, err.(*core.ValidationError).Fields...)
	}
	if len(flds) > 0 {
		return Submission{}, core.NewValidationError(errors.New("invalid submission"), flds...)
	}

	url, err := svc.files.Store(ctx, assignment.Data, assignment.ContentType)
	if err != nil {
		return Submission{}, errors.Wrap(err, "storing assignment file")
	}
	ns.AssignmentFileURL = url

	if proof != nil && len(proof.Data) > 0 {
		if url, err = svc.files.Store(ctx, proof.Data, proof.ContentType); err != nil {
			return Submission{}, errors.Wrap(err, "storing payment proof")
		}
		ns.PaymentProofURL = url
	}
	return svc.Create(ctx, ns)
}

func (svc *Service) Get(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmission(ctx, core.CleanString(id))
}

// ListByRequesterEmail returns the submissions of email, newest first.
func (svc *Service) ListByRequesterEmail(ctx context.Context, email string) ([]Submission, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return []Submission{}, nil
	}
	return svc.repo.QuerySubmissions(ctx, QueryFilter{RequesterEmail: email}, []core.DBOrdering{defaultOrderBy})
}

// ListAll returns the submissions matching filter, newest first unless ordering says otherwise.
func (svc *Service) ListAll(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Submission, error) {
	filter.Clean()
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, &core.InvalidStatusError{Value: string(filter.Status)}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{defaultOrderBy}
	}
	return svc.repo.QuerySubmissions(ctx, filter, ordering)
}

// SendUpdate emails the requester a custom message from an administrator.
// Non-empty notes are stored as the admin notes before sending.
func (svc *Service) SendUpdate(ctx context.Context, id, notes string) (Submission, error) {
	sub, err := svc.Get(ctx, id)
	if err != nil {
		return Submission{}, err
	}

	notes = core.CleanString(notes)
	if notes != "" {
		sub, err = svc.repo.UpdateSubmission(ctx, sub.ID, Update{AdminNotes: &notes, UpdatedAt: core.NowFunc()})
		if err != nil {
			return Submission{}, errors.Wrap(err, "saving admin notes")
		}
	}

	data := svc.notificationData(sub, "", notes)
	return sub, svc.dispatch(ctx, core.KindCustomAdminMessage, []mail.Address{sub.requester()}, data)
}

// SendAccessLink emails a dashboard link to a requester who has at least one submission.
// Unknown emails are silently ignored.
func (svc *Service) SendAccessLink(ctx context.Context, email, token string) error {
	subs, err := svc.ListByRequesterEmail(ctx, email)
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	if len(subs) == 0 {
		return nil
	}
	data := AccessData{
		Name:         subs[0].RequesterName,
		DashboardURL: svc.conf.FrontendBaseURL + "/student/dashboard?token=" + token,
		ExpiresIn:    svc.conf.Server.StudentTokenDelta.String(),
	}
	return svc.dispatch(ctx, core.KindStudentAccess, []mail.Address{subs[0].requester()}, data)
}

// dispatch sends a notification. Failures are logged and returned as a *core.NotificationError.
func (svc *Service) dispatch(ctx context.Context, kind core.TemplateKind, to []mail.Address, data interface{}) error {
	n := core.Notification{Kind: kind, To: to, Data: data}
	if err := svc.notifier.Notify(ctx, n); err != nil {
		svc.logger.Error(fmt.Sprintf("sending %s notification: %v", kind, err), err)
		return &core.NotificationError{Kind: kind, Err: err}
	}
	return nil
}

func (svc *Service) publish(ctx context.Context, key string, event interface{}) {
	if svc.publisher == nil {
		return
	}
	if err := svc.publisher.Publish(ctx, key, event); err != nil {
		svc.logger.Warn(fmt.Sprintf("publishing event for %s: %v", key, err), err)
	}
}
