package inkblog

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkblog/password"
	"github.com/eringen/inkblog/views"
)

const (
	msgUnknownEmail   = "A user with that email does not exist! Try registering instead."
	msgWrongPassword  = "Passwords did not match! Please try again."
	msgAccountExists  = "An account with that email already exists. Try logging in!"
	msgLoginToComment = "You must be logged in to comment!"
)

type registerForm struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required"`
	Name     string `form:"name" validate:"required,max=100"`
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (a *App) handleRegisterForm(c echo.Context, id Identity) error {
	return Render(c, views.Register(a.page(c, id, "Register"), views.AuthForm{}, nil))
}

// handleRegister creates an account and signs it in. An email that is
// already registered sends the visitor to the login page instead.
func (a *App) handleRegister(c echo.Context, id Identity) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	form.Email = strings.TrimSpace(form.Email)
	form.Name = strings.TrimSpace(form.Name)
	if err := c.Validate(&form); err != nil {
		errs := formErrors(err)
		if errs == nil {
			return err
		}
		page := a.page(c, id, "Register")
		return Render(c, views.Register(page, views.AuthForm{Email: form.Email, Name: form.Name}, errs))
	}

	ctx := c.Request().Context()
	exists, err := a.Store.EmailExists(ctx, form.Email)
	if err != nil {
		return err
	}
	if exists {
		return c.Redirect(http.StatusSeeOther, "/login?exists=1")
	}

	hash, err := a.hasher.Hash(form.Password)
	if err != nil {
		return err
	}
	u := User{Email: form.Email, Password: hash, Name: form.Name}
	if err := a.Store.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return c.Redirect(http.StatusSeeOther, "/login?exists=1")
		}
		return err
	}
	a.Logger.Info("user registered", "user_id", u.ID)

	if err := setUserSession(c, u.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// loginPage renders the login form, adding the messages signalled by the
// exists and not_authorized query flags.
func (a *App) loginPage(c echo.Context, id Identity, form views.AuthForm, errs views.FormErrors) error {
	page := a.page(c, id, "Log In")
	if c.QueryParam("exists") != "" {
		page.Flashes = append(page.Flashes, msgAccountExists)
	}
	if c.QueryParam("not_authorized") != "" {
		page.Flashes = append(page.Flashes, msgLoginToComment)
	}
	return Render(c, views.Login(page, form, errs))
}

func (a *App) handleLoginForm(c echo.Context, id Identity) error {
	return a.loginPage(c, id, views.AuthForm{}, nil)
}

func (a *App) handleLogin(c echo.Context, id Identity) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		a.Logger.Warn("login rate limited", "ip", ip)
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}

	var form loginForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	form.Email = strings.TrimSpace(form.Email)
	echoed := views.AuthForm{Email: form.Email}
	if err := c.Validate(&form); err != nil {
		errs := formErrors(err)
		if errs == nil {
			return err
		}
		return a.loginPage(c, id, echoed, errs)
	}

	u, err := a.Store.GetUserByEmail(c.Request().Context(), form.Email)
	if errors.Is(err, ErrNotFound) {
		a.loginLimiter.Record(ip)
		return a.loginPage(c, id, echoed, views.FormErrors{"": msgUnknownEmail})
	}
	if err != nil {
		return err
	}
	if !password.Check(u.Password, form.Password) {
		a.loginLimiter.Record(ip)
		return a.loginPage(c, id, echoed, views.FormErrors{"": msgWrongPassword})
	}

	if err := setUserSession(c, u.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func handleLogout(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
