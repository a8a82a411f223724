package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/dbx"
	"github.com/dmitrijs2005/focustodo/internal/server/auth"
	"github.com/dmitrijs2005/focustodo/internal/server/config"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/repomanager"
)

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
}

type fakeWelcome struct {
	calls []string
	err   error
}

func (f *fakeWelcome) SendWelcome(_ context.Context, userID, email, name string) (*Result, error) {
	f.calls = append(f.calls, userID+"|"+email+"|"+name)
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Success: true}, nil
}

// gatedRepos holds every Consume call until all expected callers have
// arrived, so concurrent refreshes really overlap.
type gatedRepos struct {
	*repomanager.MemoryRepositoryManager
	arrive *sync.WaitGroup
}

func (g gatedRepos) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return gatedTokens{Repository: g.MemoryRepositoryManager.RefreshTokens(db), arrive: g.arrive}
}

type gatedTokens struct {
	refreshtokens.Repository
	arrive *sync.WaitGroup
}

func (g gatedTokens) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	g.arrive.Done()
	g.arrive.Wait()
	return g.Repository.Consume(ctx, token)
}

func newAccountSvc(t *testing.T, cfg *config.Config, welcome WelcomeSender) (*AccountService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	env.deps.Clock = time.Now
	return NewAccountService(env.deps, cfg, welcome), env
}

func TestAccountService_SignUp(t *testing.T) {
	welcome := &fakeWelcome{}
	s, env := newAccountSvc(t, testConfig(), welcome)

	user, pair, err := s.SignUp(context.Background(), "  Ann@Example.COM ", "password123", " Ann ")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, "Ann", user.Name)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	uid, err := s.Authenticate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)

	prefs, err := env.repos.Preferences(nil).GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, prefs.EmailNotificationsEnabled)

	assert.Equal(t, []string{user.ID + "|ann@example.com|Ann"}, welcome.calls)
}

func TestAccountService_SignUpWelcomeFailureIsNotFatal(t *testing.T) {
	s, _ := newAccountSvc(t, testConfig(), &fakeWelcome{err: errors.New("mail down")})

	user, pair, err := s.SignUp(context.Background(), "bob@example.com", "password123", "")
	require.NoError(t, err)
	assert.NotNil(t, user)
	assert.NotNil(t, pair)
}

func TestAccountService_SignUpValidation(t *testing.T) {
	s, _ := newAccountSvc(t, testConfig(), nil)
	ctx := context.Background()

	_, _, err := s.SignUp(ctx, "not-an-email", "password123", "")
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = s.SignUp(ctx, "a@example.com", "short", "")
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = s.SignUp(ctx, "a@example.com", "password123", "")
	require.NoError(t, err)
	_, _, err = s.SignUp(ctx, "A@example.com", "password456", "")
	require.ErrorIs(t, err, common.ErrEmailTaken)
}

func TestAccountService_SignIn(t *testing.T) {
	s, _ := newAccountSvc(t, testConfig(), nil)
	ctx := context.Background()

	user, _, err := s.SignUp(ctx, "ann@example.com", "password123", "")
	require.NoError(t, err)

	pair, err := s.SignIn(ctx, "ANN@example.com", "password123")
	require.NoError(t, err)
	uid, err := s.Authenticate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)

	_, err = s.SignIn(ctx, "ann@example.com", "wrong-password")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = s.SignIn(ctx, "nobody@example.com", "password123")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAccountService_RefreshRotates(t *testing.T) {
	s, _ := newAccountSvc(t, testConfig(), nil)
	ctx := context.Background()

	_, pair, err := s.SignUp(ctx, "ann@example.com", "password123", "")
	require.NoError(t, err)

	next, err := s.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = s.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidToken, "old refresh token is single use")

	require.NoError(t, s.SignOut(ctx, next.RefreshToken))
	_, err = s.Refresh(ctx, next.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestAccountService_ConcurrentRefreshIssuesOnePair(t *testing.T) {
	s, env := newAccountSvc(t, testConfig(), nil)
	_, pair, err := s.SignUp(context.Background(), "ann@example.com", "password123", "")
	require.NoError(t, err)

	const callers = 2
	arrive := &sync.WaitGroup{}
	arrive.Add(callers)
	deps := env.deps
	deps.Repos = gatedRepos{MemoryRepositoryManager: env.repos, arrive: arrive}
	gated := NewAccountService(deps, testConfig(), nil)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		minted []*TokenPair
		errs   []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next, err := gated.Refresh(context.Background(), pair.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			minted = append(minted, next)
		}()
	}
	wg.Wait()

	require.Len(t, minted, 1, "one refresh token must be exchanged at most once")
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], common.ErrInvalidToken)

	_, err = s.Refresh(context.Background(), minted[0].RefreshToken)
	assert.NoError(t, err)
}

func TestAccountService_RefreshExpired(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshTokenValidityDuration = -time.Minute
	s, _ := newAccountSvc(t, cfg, nil)
	ctx := context.Background()

	_, pair, err := s.SignUp(ctx, "ann@example.com", "password123", "")
	require.NoError(t, err)

	_, err = s.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)

	_, err = s.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidToken, "expired token is dropped")
}

func TestAccountService_RefreshUsesTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	s, env := newAccountSvc(t, testConfig(), nil)
	require.NoError(t, env.repos.RefreshTokens(nil).Create(context.Background(), "u1", "r1", time.Hour))

	env.deps.DB = db
	s = NewAccountService(env.deps, testConfig(), nil)

	mock.ExpectBegin()
	mock.ExpectCommit()

	pair, err := s.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestAccountService_Session(t *testing.T) {
	s, env := newAccountSvc(t, testConfig(), nil)

	_, err := s.Session(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = env.repos.Users(nil).Create(context.Background(), &models.User{ID: "u1", Email: "ann@example.com"})
	require.NoError(t, err)

	user, err := s.Session(auth.WithUserID(context.Background(), "u1"))
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)

	_, err = s.Session(auth.WithUserID(context.Background(), "ghost"))
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestAccountService_SignOutAll(t *testing.T) {
	s, _ := newAccountSvc(t, testConfig(), nil)

	require.ErrorIs(t, s.SignOutAll(context.Background()), common.ErrUnauthenticated)

	user, first, err := s.SignUp(context.Background(), "ann@example.com", "password123", "")
	require.NoError(t, err)
	second, err := s.SignIn(context.Background(), "ann@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, s.SignOutAll(auth.WithUserID(context.Background(), user.ID)))

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		_, err := s.Refresh(context.Background(), token)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	}
}
