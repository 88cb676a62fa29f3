// Package sqlitedb provides a SQLite storage backend for friendbook
package sqlitedb

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"friendbook/model"
	"friendbook/store"
)

// SqliteDB - Representation of SQLite database backend
type SqliteDB struct {
	conn   *sql.DB
	dbPath string
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	admin INTEGER NOT NULL DEFAULT 0,
	bio TEXT NOT NULL DEFAULT ''
);`

// New opens (or creates) a local SQLite database file
func New(dbPath string) (*SqliteDB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	// journal_mode may not be supported in some contexts (e.g. in-memory)
	_, _ = conn.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := conn.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		conn.Close()
		return nil, err
	}

	ans := SqliteDB{
		conn:   conn,
		dbPath: dbPath,
	}
	return &ans, nil
}

// Init creates the users table if it does not exist yet
func (o *SqliteDB) Init() error {
	_, err := o.conn.Exec(schema)
	return err
}

// GetUsers func to query all users from the database
func (o *SqliteDB) GetUsers() ([]model.User, error) {
	var users []model.User

	rows, err := o.conn.Query("SELECT id, username, email, password_hash, admin, bio FROM users ORDER BY id;")
	if err != nil {
		return users, err
	}
	defer rows.Close()

	for rows.Next() {
		user := model.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Admin,
			&user.Bio,
		); err != nil {
			return users, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// GetUserByID func to query a single user by id
func (o *SqliteDB) GetUserByID(id int) (model.User, error) {
	user := model.User{}
	err := o.conn.QueryRow(
		"SELECT id, username, email, password_hash, admin, bio FROM users WHERE id = ?;", id,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Admin, &user.Bio)
	if errors.Is(err, sql.ErrNoRows) {
		return user, store.ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail func to query a single user by email
func (o *SqliteDB) GetUserByEmail(email string) (model.User, error) {
	user := model.User{}
	err := o.conn.QueryRow(
		"SELECT id, username, email, password_hash, admin, bio FROM users WHERE email = ?;", email,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Admin, &user.Bio)
	if errors.Is(err, sql.ErrNoRows) {
		return user, store.ErrUserNotFound
	}
	return user, err
}

// CreateUser func inserts a new user. The UNIQUE(email) constraint is
// enforced by the engine and surfaced as store.ErrEmailTaken.
func (o *SqliteDB) CreateUser(user model.User) (model.User, error) {
	res, err := o.conn.Exec(
		"INSERT INTO users (username, email, password_hash, admin, bio) VALUES (?, ?, ?, ?, ?);",
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Admin,
		user.Bio,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return model.User{}, store.ErrEmailTaken
		}
		return model.User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	user.ID = int(id)
	return user, nil
}

// UpdateUser func saves an existing user
func (o *SqliteDB) UpdateUser(user model.User) error {
	res, err := o.conn.Exec(
		"UPDATE users SET username = ?, email = ?, password_hash = ?, admin = ?, bio = ? WHERE id = ?;",
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Admin,
		user.Bio,
		user.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// DeleteUser func removes a user from the database
func (o *SqliteDB) DeleteUser(id int) error {
	res, err := o.conn.Exec("DELETE FROM users WHERE id = ?;", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func (o *SqliteDB) Close() error {
	return o.conn.Close()
}
