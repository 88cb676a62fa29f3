package handler

import (
	"encoding/base64"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/skip2/go-qrcode"

	"friendbook/emailer"
	"friendbook/model"
	"friendbook/store"
	"friendbook/telegram"
	"friendbook/util"
)

type jsonHTTPResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// RegistrationPayload is the registration form body
type RegistrationPayload struct {
	Username        string `form:"username" validate:"required"`
	Email           string `form:"email" validate:"required"`
	Password        string `form:"password" validate:"required"`
	ConfirmPassword string `form:"confirm_password"`
}

// isAjaxRequest detects asynchronous callers that expect a json response
// instead of a redirect
func isAjaxRequest(c echo.Context) bool {
	return c.Request().Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func baseData(c echo.Context, active string) model.BaseData {
	return model.BaseData{Active: active, CurrentUser: currentUser(c), Admin: isAdmin(c)}
}

// Home handler
func Home() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "index.html", map[string]interface{}{
			"baseData": baseData(c, ""),
			"flashes":  flashes(c),
		})
	}
}

// Shop handler
func Shop() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "shop.html", map[string]interface{}{
			"baseData": baseData(c, "shop"),
			"flashes":  flashes(c),
		})
	}
}

// ResetPassword handler, placeholder page only
func ResetPassword() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "reset_password.html", map[string]interface{}{
			"baseData": baseData(c, ""),
			"flashes":  flashes(c),
		})
	}
}

// RegisterPage handler
func RegisterPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "register.html", map[string]interface{}{
			"flashes": flashes(c),
		})
	}
}

// registrationFailure reports a validation failure to the caller. Both
// response modes use a success status, the failure travels in the notice.
func registrationFailure(c echo.Context, message string) error {
	if isAjaxRequest(c) {
		return c.JSON(http.StatusOK, jsonHTTPResponse{false, message, ""})
	}
	setFlash(c, message)
	return c.Redirect(http.StatusFound, "/register")
}

// Register handler creates a new user account
func Register(db store.IStore, mailer emailer.Emailer, bot *telegram.Bot, emailSubject, emailContent string) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload := new(RegistrationPayload)
		c.Bind(payload)

		if err := c.Validate(payload); err != nil {
			return registrationFailure(c, "All fields are required!")
		}
		if payload.Password != payload.ConfirmPassword {
			return registrationFailure(c, "Passwords do not match!")
		}
		if _, err := db.GetUserByEmail(payload.Email); err == nil {
			return registrationFailure(c, "Email already registered!")
		} else if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("Cannot query user by email: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Cannot access database")
		}

		hash, err := util.HashPassword(payload.Password)
		if err != nil {
			log.Error("Cannot hash password: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Cannot process registration")
		}

		user, err := db.CreateUser(model.User{
			Username:     payload.Username,
			Email:        payload.Email,
			PasswordHash: hash,
		})
		if errors.Is(err, store.ErrEmailTaken) {
			// lost a race with a concurrent registration for the same email
			return registrationFailure(c, "Email already registered!")
		}
		if err != nil {
			log.Error("Cannot create user: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Cannot access database")
		}
		log.Infof("Registered user %s (id %d)", user.Email, user.ID)

		// side channels are best effort and never block the registration
		if mailer != nil {
			if err := mailer.Send(user.Username, user.Email, emailSubject, emailContent); err != nil {
				log.Warn("Cannot send welcome email: ", err)
			}
		}
		if bot != nil {
			if err := bot.NotifySignup(user.Username, user.Email); err != nil {
				log.Warn("Cannot send signup notification: ", err)
			}
		}

		message := "Registration successful! Please log in."
		if isAjaxRequest(c) {
			return c.JSON(http.StatusOK, jsonHTTPResponse{true, message, "/login"})
		}
		setFlash(c, message)
		return c.Redirect(http.StatusFound, "/login")
	}
}

// safeNextPath accepts only same-origin paths as a post-login target, so
// the next parameter cannot be abused as an open redirect
func safeNextPath(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//")
}

// LoginPage handler
func LoginPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		if isValidSession(c) {
			return c.Redirect(http.StatusFound, "/")
		}
		return c.Render(http.StatusOK, "login.html", map[string]interface{}{
			"flashes": flashes(c),
			"error":   "",
			"next":    c.QueryParam("next"),
		})
	}
}

// Login handler verifies credentials and establishes the session
func Login(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if isValidSession(c) {
			return c.Redirect(http.StatusFound, "/")
		}

		email := c.FormValue("email")
		password := c.FormValue("password")

		match := false
		user, err := db.GetUserByEmail(email)
		if err == nil {
			match, err = util.VerifyHash(user.PasswordHash, password)
			if err != nil {
				log.Error("Cannot verify password: ", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Cannot process login")
			}
		} else if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("Cannot query user by email: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Cannot access database")
		}

		if !match {
			// same message for unknown email and wrong password
			return c.Render(http.StatusOK, "login.html", map[string]interface{}{
				"flashes": flashes(c),
				"error":   "Invalid email or password",
				"next":    c.FormValue("next"),
			})
		}

		setSession(c, user)
		log.Infof("User %s logged in", user.Email)
		setFlash(c, "Login successful!")
		if next := c.FormValue("next"); safeNextPath(next) {
			return c.Redirect(http.StatusFound, next)
		}
		return c.Redirect(http.StatusFound, "/")
	}
}

// Logout handler
func Logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		clearSession(c)
		setFlash(c, "Logged out successfully.")
		return c.Redirect(http.StatusFound, "/")
	}
}

// Profile handler renders the current user's profile with a scannable
// contact card
func Profile(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := currentIdentity(c, db)
		if err != nil {
			clearSession(c)
			return c.Redirect(http.StatusFound, "/login")
		}
		user, err := db.GetUserByID(identity.ID)
		if err != nil {
			log.Error("Cannot fetch user from database: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Cannot access database")
		}

		// template.URL keeps html/template from rewriting the data URI
		var qrData template.URL
		png, err := qrcode.Encode(util.BuildContactCard(user), qrcode.Medium, 256)
		if err != nil {
			log.Error("Cannot generate QR code: ", err)
		} else {
			qrData = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
		}

		return c.Render(http.StatusOK, "profile.html", map[string]interface{}{
			"baseData": baseData(c, "profile"),
			"flashes":  flashes(c),
			"user":     user,
			"qrcode":   qrData,
		})
	}
}

// UpdateProfile handler overwrites username and bio of the session's user
func UpdateProfile(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := currentIdentity(c, db)
		if err != nil {
			clearSession(c)
			return c.Redirect(http.StatusFound, "/login")
		}

		username := c.FormValue("username")
		bio := c.FormValue("bio")
		if strings.TrimSpace(username) == "" {
			setFlash(c, "Username cannot be empty!")
			return c.Redirect(http.StatusFound, "/profile")
		}

		user, err := db.GetUserByID(identity.ID)
		if err != nil {
			log.Error("Cannot fetch user from database: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Cannot access database")
		}
		user.Username = username
		user.Bio = bio
		if err := db.UpdateUser(user); err != nil {
			log.Error("Cannot update user: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Cannot access database")
		}

		// keep the displayed name in sync with the record
		setSession(c, user)
		setFlash(c, "Profile updated successfully!")
		return c.Redirect(http.StatusFound, "/profile")
	}
}

// Friends handler lists every registered user
func Friends(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := db.GetUsers()
		if err != nil {
			log.Error("Cannot fetch users from database: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Cannot access database")
		}
		return c.Render(http.StatusOK, "friends.html", map[string]interface{}{
			"baseData": baseData(c, "friends"),
			"flashes":  flashes(c),
			"users":    users,
		})
	}
}

// AdminUsers handler lists all users for the admin panel
func AdminUsers(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, _ := currentIdentity(c, db)
		users, err := db.GetUsers()
		if err != nil {
			log.Error("Cannot fetch users from database: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Cannot access database")
		}
		return c.Render(http.StatusOK, "admin_users.html", map[string]interface{}{
			"baseData":  baseData(c, "admin"),
			"flashes":   flashes(c),
			"users":     users,
			"currentID": identity.ID,
		})
	}
}

// AdminDeleteUser handler removes a user. Admins cannot remove themselves.
func AdminDeleteUser(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}

		identity, err := currentIdentity(c, db)
		if err != nil {
			clearSession(c)
			return c.Redirect(http.StatusFound, "/login")
		}
		if id == identity.ID {
			setFlash(c, "You cannot delete your own account!")
			return c.Redirect(http.StatusFound, "/admin/users")
		}

		if err := db.DeleteUser(id); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "user not found")
			}
			log.Error("Cannot delete user: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Cannot access database")
		}

		log.Infof("Removed user with id %d", id)
		setFlash(c, "User deleted successfully.")
		return c.Redirect(http.StatusFound, "/admin/users")
	}
}
