package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/logging"
	"github.com/dmitrijs2005/minutes/internal/models"
	"github.com/dmitrijs2005/minutes/internal/server/config"
	"github.com/dmitrijs2005/minutes/internal/server/services"
)

const validToken = "good-token"

type fakeUsers struct {
	err error

	pair    *services.TokenPair
	access  *services.AccessToken
	account *models.Account

	gotEmail    string
	gotPassword string
	gotCode     string
	gotName     string
	gotRefresh  string
	logouts     int
}

func (f *fakeUsers) Signup(_ context.Context, email string, password []byte, name string) error {
	f.gotEmail, f.gotPassword, f.gotName = email, string(password), name
	return f.err
}

func (f *fakeUsers) Verify(_ context.Context, email, code string) error {
	f.gotEmail, f.gotCode = email, code
	return f.err
}

func (f *fakeUsers) ResendCode(_ context.Context, email string) error {
	f.gotEmail = email
	return f.err
}

func (f *fakeUsers) ForgotPassword(_ context.Context, email string) error {
	f.gotEmail = email
	return f.err
}

func (f *fakeUsers) ResetPassword(_ context.Context, email, code string, password []byte) error {
	f.gotEmail, f.gotCode, f.gotPassword = email, code, string(password)
	return f.err
}

func (f *fakeUsers) Login(_ context.Context, email string, password []byte) (*services.TokenPair, error) {
	f.gotEmail, f.gotPassword = email, string(password)
	if f.err != nil {
		return nil, f.err
	}
	return f.pair, nil
}

func (f *fakeUsers) Refresh(_ context.Context, token string) (*services.AccessToken, error) {
	f.gotRefresh = token
	if f.err != nil {
		return nil, f.err
	}
	return f.access, nil
}

func (f *fakeUsers) Logout(_ context.Context, token string) error {
	f.gotRefresh = token
	f.logouts++
	return f.err
}

func (f *fakeUsers) Account(_ context.Context, userID string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.account, nil
}

func (f *fakeUsers) UserIDFromAccessToken(token string) (string, error) {
	switch token {
	case validToken:
		return "user-1", nil
	case "expired":
		return "", common.ErrTokenExpired
	default:
		return "", common.ErrInvalidToken
	}
}

type fakeMeetings struct {
	err error

	meetings []models.Meeting
	tasks    []models.Task
	link     *models.TranscriptLink

	gotUser    string
	gotMeeting string
	gotDone    *bool
}

func (f *fakeMeetings) List(_ context.Context, userID string) ([]models.Meeting, error) {
	f.gotUser = userID
	return f.meetings, f.err
}

func (f *fakeMeetings) Get(_ context.Context, userID, id string) (*models.Meeting, error) {
	f.gotUser, f.gotMeeting = userID, id
	if f.err != nil {
		return nil, f.err
	}
	return &models.Meeting{ID: id, Title: "Weekly"}, nil
}

func (f *fakeMeetings) Summary(_ context.Context, userID, id string) (*models.Summary, error) {
	f.gotUser, f.gotMeeting = userID, id
	if f.err != nil {
		return nil, f.err
	}
	return &models.Summary{MeetingID: id, Overview: "Roadmap"}, nil
}

func (f *fakeMeetings) Tasks(_ context.Context, userID, meetingID string) ([]models.Task, error) {
	f.gotUser, f.gotMeeting = userID, meetingID
	return f.tasks, f.err
}

func (f *fakeMeetings) SetTaskDone(_ context.Context, userID, taskID string, done bool) (*models.Task, error) {
	f.gotUser = userID
	f.gotDone = &done
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: taskID, Done: done}, nil
}

func (f *fakeMeetings) Integrations(_ context.Context, userID string) ([]models.Integration, error) {
	f.gotUser = userID
	return nil, f.err
}

func (f *fakeMeetings) Automations(_ context.Context, userID string) ([]models.Automation, error) {
	f.gotUser = userID
	return []models.Automation{{ID: "a1", Name: "Send recap"}}, f.err
}

func (f *fakeMeetings) TranscriptURL(_ context.Context, userID, id string) (*models.TranscriptLink, error) {
	f.gotUser, f.gotMeeting = userID, id
	if f.err != nil {
		return nil, f.err
	}
	return f.link, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.AuthRateLimit = 0
	cfg.RefreshTokenTTL = 24 * time.Hour
	return cfg
}

func newTestServer(t *testing.T, u *fakeUsers, m *fakeMeetings) *Server {
	t.Helper()
	return NewServer(testConfig(), logging.Discard(), u, m, nil)
}

func do(t *testing.T, s *Server, method, path, body string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token) }
}

func withCookie(value string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: common.RefreshCookieName, Value: value}) }
}

func refreshCookieOf(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == common.RefreshCookieName {
			return c
		}
	}
	return nil
}
