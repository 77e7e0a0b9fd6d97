package inkblog

import (
	"errors"

	"github.com/labstack/echo/v4"
)

const identityKey = "inkblog.identity"

// Identity is the user a request acts as. The zero value is anonymous.
type Identity struct {
	ID    uint
	Email string
	Name  string
	Level string
}

// Authenticated reports whether the request carried a valid user session.
func (id Identity) Authenticated() bool {
	return id.ID != 0
}

func identityOf(u User) Identity {
	id := Identity{ID: u.ID, Email: u.Email, Name: u.Name}
	if u.Level != nil {
		id.Level = *u.Level
	}
	return id
}

// resolveIdentity loads the session user once per request and stores the
// result on the context. A session naming a user that no longer exists is
// treated as anonymous.
func (a *App) resolveIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if isAssetPath(c.Request().URL.Path) {
			return next(c)
		}
		var id Identity
		if uid, ok := sessionUserID(c); ok {
			u, err := a.Store.GetUser(c.Request().Context(), uid)
			switch {
			case err == nil:
				id = identityOf(u)
			case !errors.Is(err, ErrNotFound):
				return err
			}
		}
		c.Set(identityKey, id)
		return next(c)
	}
}

func identityFrom(c echo.Context) Identity {
	id, _ := c.Get(identityKey).(Identity)
	return id
}

// withIdentity adapts a handler that takes the resolved identity as an
// explicit argument.
func withIdentity(h func(c echo.Context, id Identity) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h(c, identityFrom(c))
	}
}
