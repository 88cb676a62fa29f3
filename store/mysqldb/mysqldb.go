// Package mysqldb provides a MySQL storage backend for friendbook
package mysqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"friendbook/model"
	"friendbook/store"
)

// MySQLDB - Representation of MySQL database backend
type MySQLDB struct {
	conn   *sql.DB
	dbName string
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(80) NOT NULL,
	email VARCHAR(120) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	admin TINYINT(1) NOT NULL DEFAULT 0,
	bio TEXT NOT NULL,
	UNIQUE KEY email_idx (email)
);`

// MySQL error number for a duplicate entry on a unique key
const errDupEntry = 1062

// New returns pointer to MySQL database
func New(uname string, pwd string, host string, port int, database string, tls string) (*MySQLDB, error) {
	// Set connection config
	config := mysql.NewConfig()
	config.User = uname
	config.Passwd = pwd
	config.Net = "tcp"
	config.Addr = fmt.Sprintf("%s:%d", host, port)
	config.DBName = database
	config.ParseTime = true
	config.TLSConfig = tls
	// report matched rows, not changed rows, so no-op updates are not
	// mistaken for a missing record
	config.ClientFoundRows = true

	// Open connection pool
	conn, err := sql.Open("mysql", config.FormatDSN())
	if err != nil {
		return nil, err
	}
	conn.SetConnMaxLifetime(time.Minute * 3)
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(10)

	// Test the connection
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	ans := MySQLDB{
		conn:   conn,
		dbName: database,
	}
	return &ans, nil
}

// Init initializes the database
func (o *MySQLDB) Init() error {
	_, err := o.conn.Exec(schema)
	return err
}

// GetUsers func to query all users from the database
func (o *MySQLDB) GetUsers() ([]model.User, error) {
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
func (o *MySQLDB) GetUserByID(id int) (model.User, error) {
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
func (o *MySQLDB) GetUserByEmail(email string) (model.User, error) {
	user := model.User{}
	err := o.conn.QueryRow(
		"SELECT id, username, email, password_hash, admin, bio FROM users WHERE email = ?;", email,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Admin, &user.Bio)
	if errors.Is(err, sql.ErrNoRows) {
		return user, store.ErrUserNotFound
	}
	return user, err
}

// CreateUser func inserts a new user row
func (o *MySQLDB) CreateUser(user model.User) (model.User, error) {
	res, err := o.conn.Exec(
		"INSERT INTO users (username, email, password_hash, admin, bio) VALUES (?, ?, ?, ?, ?);",
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Admin,
		user.Bio,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == errDupEntry {
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

// UpdateUser func saves an existing user row
func (o *MySQLDB) UpdateUser(user model.User) error {
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

// DeleteUser func removes a user row from the database
func (o *MySQLDB) DeleteUser(id int) error {
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

func (o *MySQLDB) Close() error {
	return o.conn.Close()
}
