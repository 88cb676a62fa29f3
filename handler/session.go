package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/xid"

	"friendbook/model"
	"friendbook/store"
)

const sessionMaxAge = 86400

// Identity is the per-request view of the logged-in user. Authorization
// checks only ever see the id and the admin flag, re-read from the store
// so that deletions and admin revocations take effect immediately.
type Identity struct {
	ID    int
	Admin bool
}

func ValidSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !isValidSession(c) {
			nextURL := c.Request().URL
			if nextURL != nil && c.Request().Method == http.MethodGet {
				return c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(nextURL.String()))
			}
			return c.Redirect(http.StatusFound, "/login")
		}
		return next(c)
	}
}

func isValidSession(c echo.Context) bool {
	sess, _ := session.Get("session", c)
	cookie, err := c.Cookie("session_token")
	if err != nil || sess.Values["session_token"] != cookie.Value {
		return false
	}
	if _, ok := sess.Values["user_id"].(int); !ok {
		return false
	}
	return true
}

// currentIdentity resolves the session back to a user record
func currentIdentity(c echo.Context, db store.IStore) (Identity, error) {
	sess, _ := session.Get("session", c)
	userID, ok := sess.Values["user_id"].(int)
	if !ok {
		return Identity{}, store.ErrUserNotFound
	}
	user, err := db.GetUserByID(userID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: user.ID, Admin: user.Admin}, nil
}

// setSession establishes a fresh session bound to the user id. A new
// opaque token is issued on every login and mirrored in a bare cookie.
func setSession(c echo.Context, user model.User) {
	sess, _ := session.Get("session", c)
	tokenUID := xid.New().String()
	sess.Values["user_id"] = user.ID
	sess.Values["username"] = user.Username
	sess.Values["admin"] = user.Admin
	sess.Values["session_token"] = tokenUID
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
	}
	sess.Save(c.Request(), c.Response())

	cookie := new(http.Cookie)
	cookie.Name = "session_token"
	cookie.Path = "/"
	cookie.Value = tokenUID
	cookie.MaxAge = sessionMaxAge
	cookie.HttpOnly = true
	cookie.Expires = time.Now().Add(time.Duration(sessionMaxAge) * time.Second)
	c.SetCookie(cookie)
}

// clearSession to remove the current session
func clearSession(c echo.Context) {
	sess, _ := session.Get("session", c)
	delete(sess.Values, "user_id")
	delete(sess.Values, "username")
	delete(sess.Values, "admin")
	sess.Values["session_token"] = ""
	sess.Save(c.Request(), c.Response())

	cookie := new(http.Cookie)
	cookie.Name = "session_token"
	cookie.Path = "/"
	cookie.Value = ""
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	c.SetCookie(cookie)
}

// currentUser to get the username of the logged-in user, display only
func currentUser(c echo.Context) string {
	sess, _ := session.Get("session", c)
	username, _ := sess.Values["username"].(string)
	return username
}

// isAdmin reports the session admin flag, display only. Authorization goes
// through currentIdentity.
func isAdmin(c echo.Context) bool {
	sess, _ := session.Get("session", c)
	admin, _ := sess.Values["admin"].(bool)
	return admin
}

// setFlash records a one-shot notice for the next rendered page
func setFlash(c echo.Context, message string) {
	sess, _ := session.Get("session", c)
	sess.AddFlash(message)
	sess.Save(c.Request(), c.Response())
}

// flashes drains the pending one-shot notices
func flashes(c echo.Context) []string {
	sess, _ := session.Get("session", c)
	raw := sess.Flashes()
	if len(raw) > 0 {
		sess.Save(c.Request(), c.Response())
	}
	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}
