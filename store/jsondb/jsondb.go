package jsondb

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strconv"
	"sync"

	"github.com/sdomino/scribble"

	"friendbook/model"
	"friendbook/store"
)

// JsonDB is the default file-backed store. Every user is a json document
// under <dbPath>/users; generated ids come from a persisted sequence
// record. Scribble has no constraints of its own, so a mutex keeps the
// email-uniqueness check and the id allocation atomic.
type JsonDB struct {
	conn   *scribble.Driver
	dbPath string
	mu     sync.Mutex
}

type sequence struct {
	LastID int `json:"last_id"`
}

// New returns a new pointer JsonDB
func New(dbPath string) (*JsonDB, error) {
	conn, err := scribble.New(dbPath, nil)
	if err != nil {
		return nil, err
	}
	ans := JsonDB{
		conn:   conn,
		dbPath: dbPath,
	}
	return &ans, nil
}

func (o *JsonDB) Init() error {
	var usersPath string = path.Join(o.dbPath, "users")
	var metaPath string = path.Join(o.dbPath, "meta")
	var sequencePath string = path.Join(metaPath, "sequence.json")

	// create directories if they do not exist
	if _, err := os.Stat(usersPath); os.IsNotExist(err) {
		os.MkdirAll(usersPath, os.ModePerm)
	}
	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		os.MkdirAll(metaPath, os.ModePerm)
	}

	// id sequence
	if _, err := os.Stat(sequencePath); os.IsNotExist(err) {
		if err := o.conn.Write("meta", "sequence", &sequence{}); err != nil {
			return err
		}
	}

	return nil
}

// GetUsers func to get all users from the database
func (o *JsonDB) GetUsers() ([]model.User, error) {
	var users []model.User
	results, err := o.conn.ReadAll("users")
	if err != nil {
		return users, err
	}
	for _, i := range results {
		user := model.User{}
		if err := json.Unmarshal([]byte(i), &user); err != nil {
			return users, fmt.Errorf("cannot decode user json structure: %v", err)
		}
		users = append(users, user)
	}
	// scribble returns records in directory order; sort by id so listings
	// are stable across filesystems
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// GetUserByID func to get single user from the database
func (o *JsonDB) GetUserByID(id int) (model.User, error) {
	user := model.User{}
	if err := o.conn.Read("users", strconv.Itoa(id), &user); err != nil {
		if os.IsNotExist(err) {
			return user, store.ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

// GetUserByEmail func to get single user from the database by email
func (o *JsonDB) GetUserByEmail(email string) (model.User, error) {
	users, err := o.GetUsers()
	if err != nil {
		return model.User{}, err
	}
	for _, user := range users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, store.ErrUserNotFound
}

// CreateUser func to save a new user in the database. The generated id is
// filled in on the returned copy.
func (o *JsonDB) CreateUser(user model.User) (model.User, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := o.GetUserByEmail(user.Email); err == nil {
		return model.User{}, store.ErrEmailTaken
	} else if err != store.ErrUserNotFound {
		return model.User{}, err
	}

	seq := sequence{}
	if err := o.conn.Read("meta", "sequence", &seq); err != nil && !os.IsNotExist(err) {
		return model.User{}, err
	}
	seq.LastID++
	user.ID = seq.LastID

	if err := o.conn.Write("users", strconv.Itoa(user.ID), user); err != nil {
		return model.User{}, err
	}
	if err := o.conn.Write("meta", "sequence", &seq); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// UpdateUser func to save an existing user in the database
func (o *JsonDB) UpdateUser(user model.User) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := o.GetUserByID(user.ID); err != nil {
		return err
	}
	return o.conn.Write("users", strconv.Itoa(user.ID), user)
}

// DeleteUser func to remove user from the database
func (o *JsonDB) DeleteUser(id int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := o.GetUserByID(id); err != nil {
		return err
	}
	return o.conn.Delete("users", strconv.Itoa(id))
}

func (o *JsonDB) Close() error {
	return nil
}
