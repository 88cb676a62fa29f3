package store

import (
	"errors"

	"friendbook/model"
)

// ErrUserNotFound is returned when a lookup or delete targets an id or
// email that has no record.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned by CreateUser when another record already owns
// the email address.
var ErrEmailTaken = errors.New("email already registered")

type IStore interface {
	Init() error
	GetUsers() ([]model.User, error)
	GetUserByID(id int) (model.User, error)
	GetUserByEmail(email string) (model.User, error)
	CreateUser(user model.User) (model.User, error)
	UpdateUser(user model.User) error
	DeleteUser(id int) error
	Close() error
}
