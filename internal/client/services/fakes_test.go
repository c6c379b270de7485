package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/minutes/internal/client/storage"
	"github.com/dmitrijs2005/minutes/internal/models"
	"github.com/stretchr/testify/require"
)

func setupRepos(t *testing.T) *storage.Repositories {
	t.Helper()
	repos, err := storage.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos
}

// fakeClient implements AuthClient and MeetingsClient.
type fakeClient struct {
	LoginErr  error
	LogoutErr error
	Err       error // returned by every data call when set

	LastEmail    string
	LastPassword string
	LastName     string
	LastCode     string
	LogoutCalls  int

	Meetings []models.Meeting
	Summary  *models.Summary
	Tasks    []models.Task
	Link     *models.TranscriptLink
	Body     []byte
	Done     map[string]bool
}

func (f *fakeClient) Login(_ context.Context, email, password string) error {
	f.LastEmail, f.LastPassword = email, password
	return f.LoginErr
}

func (f *fakeClient) Signup(_ context.Context, email, password, name string) (string, error) {
	f.LastEmail, f.LastPassword, f.LastName = email, password, name
	return "signed up", f.Err
}

func (f *fakeClient) Verify(_ context.Context, email, code string) (string, error) {
	f.LastEmail, f.LastCode = email, code
	return "verified", f.Err
}

func (f *fakeClient) ResendCode(_ context.Context, email string) (string, error) {
	f.LastEmail = email
	return "resent", f.Err
}

func (f *fakeClient) ForgotPassword(_ context.Context, email string) (string, error) {
	f.LastEmail = email
	return "sent", f.Err
}

func (f *fakeClient) ResetPassword(_ context.Context, email, code, password string) (string, error) {
	f.LastEmail, f.LastCode, f.LastPassword = email, code, password
	return "reset", f.Err
}

func (f *fakeClient) Logout(context.Context) error {
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeClient) Token(context.Context) (string, error) { return "tok", f.Err }

func (f *fakeClient) ListMeetings(context.Context) ([]models.Meeting, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Meetings, nil
}

func (f *fakeClient) GetMeeting(_ context.Context, id string) (*models.Meeting, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	for i := range f.Meetings {
		if f.Meetings[i].ID == id {
			return &f.Meetings[i], nil
		}
	}
	return nil, context.Canceled
}

func (f *fakeClient) GetSummary(context.Context, string) (*models.Summary, error) {
	return f.Summary, f.Err
}

func (f *fakeClient) GetTranscriptURL(context.Context, string) (*models.TranscriptLink, error) {
	return f.Link, f.Err
}

func (f *fakeClient) DownloadTranscript(_ context.Context, link string) ([]byte, error) {
	return f.Body, f.Err
}

func (f *fakeClient) ListTasks(_ context.Context, meetingID string) ([]models.Task, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.Task
	for _, t := range f.Tasks {
		if meetingID == "" || t.MeetingID == meetingID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeClient) SetTaskDone(_ context.Context, id string, done bool) (*models.Task, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	for i := range f.Tasks {
		if f.Tasks[i].ID == id {
			f.Tasks[i].Done = done
			t := f.Tasks[i]
			return &t, nil
		}
	}
	return nil, context.Canceled
}

func (f *fakeClient) ListIntegrations(context.Context) ([]models.Integration, error) {
	return []models.Integration{{ID: "i1", Provider: "zoom"}}, f.Err
}

func (f *fakeClient) ListAutomations(context.Context) ([]models.Automation, error) {
	return []models.Automation{{ID: "a1", Name: "recap"}}, f.Err
}

func (f *fakeClient) GetAccount(context.Context) (*models.Account, error) {
	return &models.Account{ID: "u1", Email: "ann@example.com"}, f.Err
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
