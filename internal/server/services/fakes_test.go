package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/dbx"
	"github.com/dmitrijs2005/minutes/internal/server/models"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/codes"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/meetings"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/users"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/workspace"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeRepoManager struct {
	users     *fakeUsersRepo
	tokens    *fakeRefreshRepo
	codes     *fakeCodesRepo
	meetings  meetings.Repository
	workspace workspace.Repository
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:  &fakeUsersRepo{byEmail: map[string]*models.User{}},
		tokens: &fakeRefreshRepo{byHash: map[string]models.RefreshToken{}, now: time.Now},
		codes:  &fakeCodesRepo{byKey: map[string]models.Code{}},
	}
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return f.users }
func (f *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return f.tokens }
func (f *fakeRepoManager) Codes(dbx.DBTX) codes.Repository                 { return f.codes }
func (f *fakeRepoManager) Meetings(dbx.DBTX) meetings.Repository           { return f.meetings }
func (f *fakeRepoManager) Workspace(dbx.DBTX) workspace.Repository         { return f.workspace }

type fakeUsersRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	seq     int
	getErr  error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.seq++
	c := *u
	c.ID = fmt.Sprintf("user-%d", f.seq)
	c.CreatedAt = time.Now()
	f.byEmail[c.Email] = &c
	out := c
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) update(id string, fn func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			fn(u)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUsersRepo) MarkVerified(_ context.Context, id string) error {
	return f.update(id, func(u *models.User) { u.Verified = true })
}

func (f *fakeUsersRepo) UpdatePassword(_ context.Context, id string, hash []byte) error {
	return f.update(id, func(u *models.User) { u.PasswordHash = hash })
}

type fakeRefreshRepo struct {
	mu     sync.Mutex
	byHash map[string]models.RefreshToken
	now    func() time.Time
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, hash string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byHash[hash] = models.RefreshToken{UserID: userID, TokenHash: hash, Expires: f.now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, hash string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byHash[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byHash, hash)
	return nil
}

func (f *fakeRefreshRepo) DeleteForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, t := range f.byHash {
		if t.UserID == userID {
			delete(f.byHash, h)
		}
	}
	return nil
}

func (f *fakeRefreshRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byHash)
}

type fakeCodesRepo struct {
	mu    sync.Mutex
	byKey map[string]models.Code
}

func codeKey(userID string, p models.CodePurpose) string { return userID + "/" + string(p) }

func (f *fakeCodesRepo) Save(_ context.Context, c *models.Code) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := *c
	s.Attempts = 0
	f.byKey[codeKey(c.UserID, c.Purpose)] = s
	return nil
}

func (f *fakeCodesRepo) Find(_ context.Context, userID string, p models.CodePurpose) (*models.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byKey[codeKey(userID, p)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (f *fakeCodesRepo) IncrementAttempts(_ context.Context, userID string, p models.CodePurpose) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := codeKey(userID, p)
	c, ok := f.byKey[k]
	if !ok {
		return 0, common.ErrorNotFound
	}
	c.Attempts++
	f.byKey[k] = c
	return c.Attempts, nil
}

func (f *fakeCodesRepo) Delete(_ context.Context, userID string, p models.CodePurpose) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byKey, codeKey(userID, p))
	return nil
}

type sentMail struct {
	kind string
	to   string
	code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) record(kind, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: kind, to: to, code: code})
	return nil
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, to, code string, _ time.Duration) error {
	return m.record("verify", to, code)
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, code string, _ time.Duration) error {
	return m.record("reset", to, code)
}
