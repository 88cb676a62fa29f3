package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"friendbook/store"
)

// NeedsAdmin guards admin routes. Non-admins are sent home with a notice
// instead of an error page.
func NeedsAdmin(db store.IStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := currentIdentity(c, db)
			if err != nil || !identity.Admin {
				setFlash(c, "You do not have permission to access this page.")
				return c.Redirect(http.StatusFound, "/")
			}
			return next(c)
		}
	}
}
