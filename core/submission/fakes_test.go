package submission

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/submitly/backend/core"
)

type fakeRepo struct {
	mu   sync.Mutex
	subs map[string]Submission
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{subs: make(map[string]Submission)}
}

func (r *fakeRepo) CreateSubmission(_ context.Context, sub Submission) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[sub.ID]; ok {
		return Submission{}, ErrDuplicateID
	}
	r.subs[sub.ID] = sub
	return sub, nil
}

func (r *fakeRepo) GetSubmission(_ context.Context, id string) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

func (r *fakeRepo) QuerySubmissions(_ context.Context, filter QueryFilter, _ []core.DBOrdering) ([]Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]Submission, 0)
	for _, sub := range r.subs {
		if filter.RequesterEmail != "" && sub.RequesterEmail != filter.RequesterEmail {
			continue
		}
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		res = append(res, sub)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (r *fakeRepo) UpdateSubmission(_ context.Context, id string, upd Update) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	if upd.Status != nil {
		sub.Status = *upd.Status
	}
	if upd.AdminNotes != nil {
		sub.AdminNotes = *upd.AdminNotes
	}
	sub.UpdatedAt = upd.UpdatedAt
	r.subs[id] = sub
	return sub, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []core.Notification
	fail bool
}

func (n *fakeNotifier) Notify(_ context.Context, nt core.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp is down")
	}
	n.sent = append(n.sent, nt)
	return nil
}

func (n *fakeNotifier) kinds() []core.TemplateKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]core.TemplateKind, 0, len(n.sent))
	for _, nt := range n.sent {
		kinds = append(kinds, nt.Kind)
	}
	return kinds
}

type fakeFiles struct {
	stored int
}

func (f *fakeFiles) Store(_ context.Context, data []byte, contentType string) (string, error) {
	f.stored++
	return "https://files.test/" + contentType, nil
}

type fakePublisher struct {
	events []interface{}
}

func (p *fakePublisher) Publish(_ context.Context, _ string, event interface{}) error {
	p.events = append(p.events, event)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	svc       *Service
	repo      *fakeRepo
	notifier  *fakeNotifier
	files     *fakeFiles
	publisher *fakePublisher
}

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// newTestEnv freezes the clock at testNow; every call to core.NowFunc advances it by a second.
func newTestEnv() *testEnv {
	now := testNow
	core.NowFunc = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	v := core.NewValidator()
	InitValidators(v)
	env := &testEnv{
		repo:      newFakeRepo(),
		notifier:  &fakeNotifier{},
		files:     &fakeFiles{},
		publisher: &fakePublisher{},
	}
	env.svc = NewService(Deps{
		Repo:      env.repo,
		Files:     env.files,
		Notifier:  env.notifier,
		Publisher: env.publisher,
		Validator: v,
		Logger:    nopLogger{},
		Conf: &core.Config{
			AppName:         "Submitly",
			AdminEmail:      "admin@submitly.com",
			FrontendBaseURL: "http://localhost:3000",
		},
	})
	return env
}

func validNewSubmission() NewSubmission {
	return NewSubmission{
		RequesterName:  "Ada Lovelace",
		RequesterEmail: " Ada@Example.com ",
		Title:          "Analytical engine notes",
		SubjectArea:    "Computer Science",
		Category:       "research",
		Description:    "Translate and annotate the memoir on the engine.",
		Deadline:       testNow.Add(7 * 24 * time.Hour),
	}
}

func (env *testEnv) seed(t interface{ Fatalf(string, ...interface{}) }) Submission {
	sub, err := env.svc.Create(context.Background(), validNewSubmission())
	if err != nil {
		t.Fatalf("seeding submission: %v", err)
	}
	env.notifier.sent = nil
	return sub
}
