package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/auth"
	"github.com/submitly/backend/core/contact"
	"github.com/submitly/backend/core/review"
	"github.com/submitly/backend/core/submission"
	emailsvc "github.com/submitly/backend/services/email"
	"github.com/submitly/backend/services/events"
	"github.com/submitly/backend/services/filestore"
	logsvc "github.com/submitly/backend/services/logger"
	"github.com/submitly/backend/services/ratelimit"
	inmemdb "github.com/submitly/backend/storage/database/inmem"
)

const (
	adminEmail    = "admin@submitly.com"
	adminPassword = "correct horse battery staple"
)

var (
	adminHash string // computed once, bcrypt is slow

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testEnv struct {
	srv       *Server
	conf      *core.Config
	auth      *tokenAuth
	mail      *emailsvc.ConsoleServiceMock
	files     *filestore.MemoryStore
	publisher *events.MemoryPublisher
	subs      *submission.Service
	reviews   *review.Service
}

func testConfig() *core.Config {
	conf := &core.Config{
		TestMode:          true,
		AppName:           "Submitly",
		SecretKey:         "secret",
		Env:               "TEST",
		FrontendBaseURL:   "https://submitly.test",
		DefaultFromEmail:  "notifications@submitly.com",
		AdminEmail:        adminEmail,
		AdminPasswordHash: adminHash,
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	conf.Server.StudentTokenDelta = 72 * time.Hour
	conf.Server.RateLimit = 1000
	conf.Server.RateLimitBurst = 1000
	return conf
}

// newTestEnv builds a server on in-memory collaborators. configure may tweak the config first.
func newTestEnv(t *testing.T, configure ...func(*core.Config)) *testEnv {
	if adminHash == "" {
		hash, err := auth.HashPassword(adminPassword)
		require.NoError(t, err)
		adminHash = hash
	}
	conf := testConfig()
	for _, fn := range configure {
		fn(conf)
	}

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "API : ", 0), conf)
	logger.Enable(false)
	v := core.NewValidator()
	submission.InitValidators(v)

	db := inmemdb.Open()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	notifier := core.NewMailNotifier(mailSvc, conf)
	files := filestore.NewMemoryStore()
	publisher := events.NewMemoryPublisher()

	subSvc := submission.NewService(submission.Deps{
		Repo:      inmemdb.NewSubmissionRepository(db),
		Files:     files,
		Notifier:  notifier,
		Publisher: publisher,
		Validator: v,
		Logger:    logger,
		Conf:      conf,
	})
	reviewSvc := review.NewService(inmemdb.NewReviewRepository(db), subSvc, v)

	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validator:      v,
		SubmissionSvc:  subSvc,
		ReviewSvc:      reviewSvc,
		ContactSvc:     contact.NewService(notifier, v, logger, conf),
		Admin:          auth.NewAdmin(conf, v),
		RateLimitStore: ratelimit.NewStore(conf, nil),
		DisableReqLogs: true,
	})
	return &testEnv{
		srv:       srv,
		conf:      conf,
		auth:      newTokenAuth(conf),
		mail:      mailSvc,
		files:     files,
		publisher: publisher,
		subs:      subSvc,
		reviews:   reviewSvc,
	}
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) adminToken(t *testing.T) string {
	token, err := env.auth.GenerateToken(env.auth.adminClaims(core.Identity{ID: "admin", Email: adminEmail}))
	require.NoError(t, err)
	return token
}

func (env *testEnv) studentToken(t *testing.T, email string) string {
	token, err := env.auth.GenerateToken(env.auth.studentClaims(email))
	require.NoError(t, err)
	return token
}

// seed creates a pending submission owned by email, bypassing the HTTP layer.
func (env *testEnv) seed(t *testing.T, email string) submission.Submission {
	sub, err := env.subs.Create(context.Background(), submission.NewSubmission{
		RequesterName:     "Ada Lovelace",
		RequesterEmail:    email,
		Title:             "Notes on the Analytical Engine",
		SubjectArea:       "Mathematics",
		Category:          string(submission.CategoryResearch),
		Description:       "Translate and annotate the memoir on the engine.",
		Deadline:          core.NowFunc().Add(72 * time.Hour),
		AssignmentFileURL: "memory://uploads/a.pdf",
	})
	require.NoError(t, err)
	env.mail.Reset()
	return sub
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	return newAuthRequest(method, path, "", data...)
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, env *testEnv, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(newAuthRequest(tt.method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
