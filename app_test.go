package inkblog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testCSRF = "test-csrf-token"

var testNow = time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	app := New(SiteConfig{
		Name:               "Test Blog",
		URL:                "http://blog.test",
		SecretKey:          "test-secret-key",
		DatabaseURL:        filepath.Join(dir, "blog.db"),
		PasswordIterations: 1000,
	},
		WithStaticDir(filepath.Join(dir, "static")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return testNow }),
	)
	require.NoError(t, app.Init())
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)
	return app, srv
}

// client is a browser-like HTTP client with its own cookie jar. It does
// not follow redirects so tests can assert on them.
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "_csrf", Value: testCSRF, Path: "/"}})
	return &client{
		t:    t,
		base: srv.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	Status   int
	Location string
	Body     string
	Header   http.Header
}

func (c *client) do(req *http.Request) response {
	c.t.Helper()
	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	return response{
		Status:   res.StatusCode,
		Location: res.Header.Get("Location"),
		Body:     string(body),
		Header:   res.Header,
	}
}

func (c *client) get(path string) response {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

// post submits form with a valid CSRF token.
func (c *client) post(path string, form url.Values) response {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if !form.Has("_csrf") {
		form.Set("_csrf", testCSRF)
	}
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) register(email, password, name string) response {
	c.t.Helper()
	return c.post("/register", url.Values{"email": {email}, "password": {password}, "name": {name}})
}

func (c *client) login(email, password string) response {
	c.t.Helper()
	return c.post("/login", url.Values{"email": {email}, "password": {password}})
}

// seedUser stores a user directly, optionally with the admin level.
func seedUser(t *testing.T, app *App, email, password, name string, admin bool) User {
	t.Helper()
	hash, err := app.hasher.Hash(password)
	require.NoError(t, err)
	u := User{Email: email, Password: hash, Name: name}
	if admin {
		level := LevelAdmin
		u.Level = &level
	}
	require.NoError(t, app.Store.CreateUser(context.Background(), &u))
	return u
}

func seedPost(t *testing.T, app *App, author User, title string) BlogPost {
	t.Helper()
	p := BlogPost{
		AuthorID: author.ID,
		Title:    title,
		Subtitle: "About " + title,
		Date:     "March 01, 2024",
		Body:     "Body of " + title,
		ImgURL:   "https://example.com/header.jpg",
	}
	require.NoError(t, app.Store.CreatePost(context.Background(), &p))
	return p
}

// loggedIn returns a client signed in as a freshly seeded user.
func loggedIn(t *testing.T, app *App, srv *httptest.Server, email, name string, admin bool) (*client, User) {
	t.Helper()
	u := seedUser(t, app, email, "pw-"+name, name, admin)
	c := newClient(t, srv)
	res := c.login(email, "pw-"+name)
	require.Equal(t, http.StatusSeeOther, res.Status, res.Body)
	return c, u
}
