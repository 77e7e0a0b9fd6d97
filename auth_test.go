package inkblog

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTwiceRedirectsToLogin(t *testing.T) {
	app, srv := newTestApp(t)

	first := newClient(t, srv).register("ada@example.com", "secret", "Ada")
	require.Equal(t, http.StatusSeeOther, first.Status)
	assert.Equal(t, "/", first.Location)

	second := newClient(t, srv)
	res := second.register("ada@example.com", "other", "Ada Again")
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/login?exists=1", res.Location)

	_, err := app.Store.GetUser(context.Background(), 2)
	assert.True(t, errors.Is(err, ErrNotFound), "no second user was created")

	page := second.get(res.Location)
	assert.Contains(t, page.Body, "An account with that email already exists. Try logging in!")
	assert.NotContains(t, page.Body, `href="/logout"`, "the second attempt is not signed in")
}

func TestRegisterSignsIn(t *testing.T) {
	_, srv := newTestApp(t)
	c := newClient(t, srv)

	require.Equal(t, http.StatusSeeOther, c.register("ada@example.com", "secret", "Ada").Status)
	home := c.get("/")
	assert.Contains(t, home.Body, `href="/logout"`)
}

func TestRegisterValidation(t *testing.T) {
	app, srv := newTestApp(t)
	c := newClient(t, srv)

	res := c.register("not-an-email", "secret", "")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "Enter a valid email address.")
	assert.Contains(t, res.Body, "This field is required.")
	assert.Contains(t, res.Body, `value="not-an-email"`, "input is echoed back")

	_, err := app.Store.GetUser(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegisteredUserCanLogIn(t *testing.T) {
	_, srv := newTestApp(t)

	c := newClient(t, srv)
	require.Equal(t, http.StatusSeeOther, c.register("ada@example.com", "secret", "Ada").Status)
	logout := c.get("/logout")
	require.Equal(t, http.StatusSeeOther, logout.Status)
	assert.Equal(t, "/", logout.Location)
	assert.NotContains(t, c.get("/").Body, `href="/logout"`)

	res := c.login("ada@example.com", "secret")
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/", res.Location)
	assert.Contains(t, c.get("/").Body, `href="/logout"`)
}

func TestLoginWrongPassword(t *testing.T) {
	app, srv := newTestApp(t)
	seedUser(t, app, "ada@example.com", "secret", "Ada", true)
	c := newClient(t, srv)

	res := c.login("ada@example.com", "wrong")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "Passwords did not match! Please try again.")

	assert.NotContains(t, c.get("/").Body, `href="/logout"`)
	guarded := c.get("/new-post")
	assert.Equal(t, http.StatusSeeOther, guarded.Status, "no session was established")
	assert.Equal(t, "/login", guarded.Location)
}

func TestLoginUnknownEmail(t *testing.T) {
	_, srv := newTestApp(t)
	c := newClient(t, srv)

	res := c.login("ghost@example.com", "secret")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "A user with that email does not exist! Try registering instead.")
	assert.Contains(t, res.Body, `value="ghost@example.com"`)
}

func TestLoginNotAuthorizedFlag(t *testing.T) {
	_, srv := newTestApp(t)
	res := newClient(t, srv).get("/login?not_authorized=1")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "You must be logged in to comment!")
}

func TestLoginRateLimited(t *testing.T) {
	app, srv := newTestApp(t)
	seedUser(t, app, "ada@example.com", "secret", "Ada", false)
	c := newClient(t, srv)

	for i := 0; i < app.Config.LoginAttempts; i++ {
		require.Equal(t, http.StatusOK, c.login("ada@example.com", "wrong").Status)
	}
	res := c.login("ada@example.com", "secret")
	assert.Equal(t, http.StatusTooManyRequests, res.Status)
	assert.Contains(t, res.Body, "Too many login attempts")
}

func TestLoginLimiterCountsOnlyFailures(t *testing.T) {
	app, srv := newTestApp(t)
	seedUser(t, app, "ada@example.com", "secret", "Ada", false)

	for i := 0; i < app.Config.LoginAttempts+2; i++ {
		res := newClient(t, srv).login("ada@example.com", "secret")
		require.Equal(t, http.StatusSeeOther, res.Status, "attempt %d", i+1)
	}
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	app, srv := newTestApp(t)
	c := newClient(t, srv)

	res := c.post("/register", url.Values{
		"_csrf":    {"forged"},
		"email":    {"ada@example.com"},
		"password": {"secret"},
		"name":     {"Ada"},
	})
	assert.Equal(t, http.StatusForbidden, res.Status)

	_, err := app.Store.GetUserByEmail(context.Background(), "ada@example.com")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStoredPasswordIsHashed(t *testing.T) {
	app, srv := newTestApp(t)
	require.Equal(t, http.StatusSeeOther, newClient(t, srv).register("ada@example.com", "secret", "Ada").Status)

	u, err := app.Store.GetUserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.Password, "pbkdf2:sha256:1000$"), u.Password)
	assert.NotContains(t, u.Password, "secret")
}
