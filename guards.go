package inkblog

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// IsAdmin reports whether id holds the admin privilege level.
func IsAdmin(id Identity) bool {
	return id.Authenticated() && id.Level == LevelAdmin
}

// IsOwner reports whether id is the owner account. Ownership does not
// depend on the privilege level.
func IsOwner(id Identity) bool {
	return id.ID == OwnerID
}

// requireIdentity guards a route with allow. Anonymous requests are sent
// to the login page; signed-in users that allow rejects get a 403.
func requireIdentity(allow func(Identity) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := identityFrom(c)
			if !id.Authenticated() {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			if !allow(id) {
				return echo.NewHTTPError(http.StatusForbidden)
			}
			return next(c)
		}
	}
}
