package router

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-registration-flow/config"
	"github.com/oksasatya/go-registration-flow/internal/container"
	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
	"github.com/oksasatya/go-registration-flow/internal/infrastructure/memory"
	"github.com/oksasatya/go-registration-flow/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-registration-flow/internal/interface/middleware"
	"github.com/oksasatya/go-registration-flow/pkg/helpers"
	"github.com/oksasatya/go-registration-flow/pkg/validation"
)

type captureSender struct {
	mu   sync.Mutex
	last map[string]string // email -> passphrase
}

func (s *captureSender) SendPassphrase(_ context.Context, _, email, passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[email] = passphrase
	return nil
}

func (s *captureSender) passphrase(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[email]
}

// brokenDestroyStore fails Destroy once failDestroy is set.
type brokenDestroyStore struct {
	repository.SessionStore
	failDestroy atomic.Bool
}

func (s *brokenDestroyStore) Destroy(ctx context.Context, id string) error {
	if s.failDestroy.Load() {
		return assert.AnError
	}
	return s.SessionStore.Destroy(ctx, id)
}

type testApp struct {
	srv      *httptest.Server
	store    *memory.Store
	sessions *brokenDestroyStore
	sender   *captureSender
	mr       *miniredis.Miniredis
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		SessionTTL:   time.Hour,
		PasswordCost: bcrypt.MinCost,
		ESUsersIndex: "users",

		DebugMetricsEnabled: true,
		RateLimitEnabled:    false,
	}
	if mutate != nil {
		mutate(cfg)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	sender := &captureSender{last: map[string]string{}}
	sessions := &brokenDestroyStore{SessionStore: redisstore.NewSessionStore(rdb)}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetMongoDB(nil)
	container.SetPGPool(nil)
	container.SetCredentialStore(store.Users(), store.Pending())
	container.SetSessionStore(sessions)
	container.SetJWT(helpers.NewJWTManager("test-secret", cfg.SessionTTL))
	container.SetCookies(helpers.NewCookie("", false))
	container.SetSender(sender)
	container.SetES(nil)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.RealIP())
	reg := NewRegistry(r)
	InitModules(reg)
	reg.RegisterAll()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, store: store, sessions: sessions, sender: sender, mr: mr}
}

// newClient returns a browser-like client that keeps cookies but does not
// follow redirects.
func (a *testApp) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type result struct {
	code     int
	location string
	body     string
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) result {
	t.Helper()
	resp, err := c.Get(a.srv.URL + path)
	require.NoError(t, err)
	return read(t, resp)
}

func (a *testApp) post(t *testing.T, c *http.Client, path string, form url.Values) result {
	t.Helper()
	resp, err := c.PostForm(a.srv.URL+path, form)
	require.NoError(t, err)
	return read(t, resp)
}

func read(t *testing.T, resp *http.Response) result {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{code: resp.StatusCode, location: resp.Header.Get("Location"), body: string(b)}
}

func registerForm(email, username, phone string) url.Values {
	return url.Values{"email": {email}, "username": {username}, "phone": {phone}}
}

// verified registers and verifies an account on c, leaving it at the password step.
func (a *testApp) verified(t *testing.T, c *http.Client, email, username, phone string) {
	t.Helper()
	require.Equal(t, http.StatusFound, a.post(t, c, "/register", registerForm(email, username, phone)).code)
	pass := a.sender.passphrase(email)
	require.Equal(t, http.StatusFound, a.post(t, c, "/verify", url.Values{"email": {email}, "passphrase": {pass}}).code)
}

func TestFlow_RegisterVerifySetPasswordLogin(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)
	ctx := context.Background()

	res := app.post(t, c, "/register", registerForm("alice@example.com", "alice", "555-0100"))
	require.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/verify?email=alice%40example.com", res.location)
	pass := app.sender.passphrase("alice@example.com")
	require.Regexp(t, `^[0-9a-z]{8}$`, pass)

	res = app.get(t, c, res.location)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.body, `value="alice@example.com"`)

	res = app.post(t, c, "/verify", url.Values{"email": {"alice@example.com"}, "passphrase": {"zzzzzzzz"}})
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Contains(t, res.body, "Invalid passphrase")
	assert.Contains(t, res.body, `value="alice@example.com"`)

	// not verified yet
	res = app.get(t, c, "/setpassword")
	assert.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/register", res.location)

	res = app.post(t, c, "/verify", url.Values{"email": {"alice@example.com"}, "passphrase": {pass}})
	require.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/setpassword", res.location)

	res = app.get(t, c, "/setpassword")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.body, "Hi alice")

	res = app.post(t, c, "/setpassword", url.Values{"password": {"abc12345"}})
	assert.Equal(t, http.StatusUnprocessableEntity, res.code)
	assert.Contains(t, res.body, "Password must be 8-12 characters long")
	assert.Contains(t, res.body, "Hi alice")
	ok, _ := app.store.Pending().ExistsByEmail(ctx, "alice@example.com")
	assert.True(t, ok)

	res = app.post(t, c, "/setpassword", url.Values{"password": {"Abc123!@"}})
	require.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/login", res.location)

	ok, _ = app.store.Pending().ExistsByEmail(ctx, "alice@example.com")
	assert.False(t, ok)
	u, err := app.store.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "555-0100", u.Phone)

	// the password step cannot be replayed
	res = app.get(t, c, "/setpassword")
	assert.Equal(t, "/register", res.location)

	res = app.get(t, c, "/dashboard")
	assert.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/login", res.location)

	res = app.post(t, c, "/login", url.Values{"username": {"bob"}, "password": {"Abc123!@"}})
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Contains(t, res.body, "user not registered")
	assert.Contains(t, res.body, `value="bob"`)

	res = app.post(t, c, "/login", url.Values{"username": {"alice"}, "password": {"Abc123!#"}})
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Contains(t, res.body, "Invalid password")

	res = app.get(t, c, "/dashboard")
	assert.Equal(t, "/login", res.location)

	res = app.post(t, c, "/login", url.Values{"username": {"alice"}, "password": {"Abc123!@"}})
	require.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/dashboard", res.location)

	res = app.get(t, c, "/dashboard")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.body, "Welcome, alice!")
	assert.Contains(t, res.body, "alice@example.com")

	res = app.get(t, c, "/logout")
	assert.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/login", res.location)

	res = app.get(t, c, "/dashboard")
	assert.Equal(t, http.StatusFound, res.code)
	assert.Equal(t, "/login", res.location)
}

func TestRegister_ValidationAndConflicts(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)

	res := app.post(t, c, "/register", registerForm("bob@example.com", "bob!", "555-0200"))
	assert.Equal(t, http.StatusUnprocessableEntity, res.code)
	assert.Contains(t, res.body, "Username must be 1-30 characters long")
	assert.Contains(t, res.body, `value="bob@example.com"`)
	assert.Contains(t, res.body, `value="555-0200"`)
	assert.Empty(t, app.sender.passphrase("bob@example.com"))

	require.Equal(t, http.StatusFound, app.post(t, c, "/register", registerForm("bob@example.com", "bob", "555-0200")).code)

	cases := []struct {
		form url.Values
		msg  string
	}{
		{registerForm("bob@example.com", "bob", "555-0200"), "username taken"},
		{registerForm("bob@example.com", "bobby", "555-0201"), "user already exists with this email."},
		{registerForm("bobby@example.com", "bobby", "555-0200"), "user already exists with this number."},
	}
	for _, tc := range cases {
		res := app.post(t, c, "/register", tc.form)
		assert.Equal(t, http.StatusConflict, res.code, tc.msg)
		assert.Contains(t, res.body, tc.msg)
		assert.Contains(t, res.body, `value="`+tc.form.Get("email")+`"`)
	}
}

func TestSetPassword_PendingRegistrationGone(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)
	ctx := context.Background()

	require.Equal(t, http.StatusFound, app.post(t, c, "/register", registerForm("carol@example.com", "carol", "555-0300")).code)
	pass := app.sender.passphrase("carol@example.com")
	require.Equal(t, http.StatusFound, app.post(t, c, "/verify", url.Values{"email": {"carol@example.com"}, "passphrase": {pass}}).code)
	require.NoError(t, app.store.Pending().DeleteByEmail(ctx, "carol@example.com"))

	res := app.post(t, c, "/setpassword", url.Values{"password": {"Abc123!@"}})
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Contains(t, res.body, "registration not found, please register again.")

	exists, _ := app.store.Users().ExistsByUsername(ctx, "carol")
	assert.False(t, exists)
	assert.Equal(t, "/register", app.get(t, c, "/setpassword").location)
}

func TestSetPassword_UsesSessionEmail(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)
	ctx := context.Background()

	require.Equal(t, http.StatusFound, app.post(t, c, "/register", registerForm("dave@example.com", "dave", "555-0400")).code)
	require.Equal(t, http.StatusFound, app.post(t, c, "/register", registerForm("erin@example.com", "erin", "555-0500")).code)
	pass := app.sender.passphrase("dave@example.com")
	require.Equal(t, http.StatusFound, app.post(t, c, "/verify", url.Values{"email": {"dave@example.com"}, "passphrase": {pass}}).code)

	res := app.post(t, c, "/setpassword", url.Values{"email": {"erin@example.com"}, "password": {"Abc123!@"}})
	require.Equal(t, http.StatusFound, res.code)

	exists, _ := app.store.Users().ExistsByUsername(ctx, "dave")
	assert.True(t, exists)
	exists, _ = app.store.Users().ExistsByUsername(ctx, "erin")
	assert.False(t, exists)
}

func TestStaticPagesAndHealth(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)

	res := app.get(t, c, "/")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.body, "Welcome")
	res = app.get(t, c, "/contact")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.body, "Contact")

	res = app.get(t, c, "/healthz")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.body, `"success":true`)

	res = app.get(t, c, "/debug/vars")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.body, "registrations_started")

	app.mr.Close()
	res = app.get(t, c, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, res.code)
}

func TestRegister_RateLimited(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) { cfg.RateLimitEnabled = true })
	c := app.newClient(t)

	for i := 0; i < 10; i++ {
		res := app.post(t, c, "/register", registerForm("", "bad name", ""))
		require.Equal(t, http.StatusUnprocessableEntity, res.code)
	}
	res := app.post(t, c, "/register", registerForm("", "bad name", ""))
	assert.Equal(t, http.StatusTooManyRequests, res.code)
	assert.True(t, strings.Contains(res.body, "rate limit exceeded"))

	// other forms keep their own budget
	assert.Equal(t, http.StatusOK, app.get(t, c, "/login").code)
	assert.Equal(t, http.StatusUnauthorized, app.post(t, c, "/login", url.Values{"username": {"x"}, "password": {"y"}}).code)
}

type failingSender struct{}

func (failingSender) SendPassphrase(context.Context, string, string, string) error {
	return assert.AnError
}

func TestRegister_SendFailureIsOpaque500(t *testing.T) {
	app := newTestApp(t, nil)
	container.SetSender(failingSender{})
	reg := NewRegistry(gin.New())
	InitModules(reg)
	reg.RegisterAll()
	srv := httptest.NewServer(reg.Engine)
	t.Cleanup(srv.Close)
	app.srv = srv
	c := app.newClient(t)

	res := app.post(t, c, "/register", registerForm("frank@example.com", "frank", "555-0600"))
	assert.Equal(t, http.StatusInternalServerError, res.code)
	assert.Equal(t, "Internal Server Error", res.body)

	// the pending record stays behind
	ok, _ := app.store.Pending().ExistsByEmail(context.Background(), "frank@example.com")
	assert.True(t, ok)
}

func TestLogout_SessionStoreFailureIs500(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)

	app.verified(t, c, "gina@example.com", "gina", "555-0700")
	require.Equal(t, http.StatusFound, app.post(t, c, "/setpassword", url.Values{"password": {"Abc123!@"}}).code)
	require.Equal(t, http.StatusFound, app.post(t, c, "/login", url.Values{"username": {"gina"}, "password": {"Abc123!@"}}).code)

	app.sessions.failDestroy.Store(true)
	res := app.get(t, c, "/logout")
	assert.Equal(t, http.StatusInternalServerError, res.code)
	assert.Equal(t, "Internal Server Error", res.body)
	assert.Empty(t, res.location)

	// the session survives the failed logout
	app.sessions.failDestroy.Store(false)
	res = app.get(t, c, "/dashboard")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.body, "Welcome, gina!")
}

func TestSetPassword_UsernameHeldByAnotherUser(t *testing.T) {
	app := newTestApp(t, nil)
	c := app.newClient(t)
	ctx := context.Background()

	app.verified(t, c, "hank@example.com", "hank", "555-0800")
	require.NoError(t, app.store.Users().Create(ctx, &entity.User{Email: "seeded@example.com", Username: "hank", Phone: "555-0899"}))

	res := app.post(t, c, "/setpassword", url.Values{"password": {"Abc123!@"}})
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Contains(t, res.body, "username taken")
	assert.NotContains(t, res.body, "please log in")
	assert.Contains(t, res.body, `value="hank@example.com"`)

	ok, _ := app.store.Pending().ExistsByEmail(ctx, "hank@example.com")
	assert.False(t, ok)
	assert.Equal(t, "/register", app.get(t, c, "/setpassword").location)
}
