package jsondb

import (
	"errors"
	"testing"

	"friendbook/model"
	"friendbook/store"
)

func newTestDB(t *testing.T) *JsonDB {
	t.Helper()
	db, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Init(); err != nil {
		t.Fatalf("init db: %v", err)
	}
	return db
}

func TestJsonDB_CreateAndQuery(t *testing.T) {
	db := newTestDB(t)

	u, err := db.CreateUser(model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected generated id, got %+v", u)
	}

	g, err := db.GetUserByID(u.ID)
	if err != nil || g.Username != "alice" {
		t.Fatalf("get by id: %v %+v", err, g)
	}

	g2, err := db.GetUserByEmail("a@x.com")
	if err != nil || g2.ID != u.ID {
		t.Fatalf("get by email: %v %+v", err, g2)
	}

	if _, err := db.GetUserByID(999); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := db.GetUserByEmail("missing@x.com"); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestJsonDB_GeneratedIDsIncrease(t *testing.T) {
	db := newTestDB(t)

	u1, err := db.CreateUser(model.User{Username: "u1", Email: "u1@x.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create u1: %v", err)
	}
	u2, err := db.CreateUser(model.User{Username: "u2", Email: "u2@x.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create u2: %v", err)
	}
	if u2.ID <= u1.ID {
		t.Fatalf("expected increasing ids, got %d then %d", u1.ID, u2.ID)
	}

	users, err := db.GetUsers()
	if err != nil || len(users) != 2 {
		t.Fatalf("get users: %v len=%d", err, len(users))
	}
	if users[0].ID > users[1].ID {
		t.Fatalf("expected listing sorted by id: %+v", users)
	}
}

func TestJsonDB_DuplicateEmailRejected(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.CreateUser(model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.CreateUser(model.User{Username: "mallory", Email: "a@x.com", PasswordHash: "h"}); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	users, err := db.GetUsers()
	if err != nil || len(users) != 1 {
		t.Fatalf("user count changed on duplicate registration: %v len=%d", err, len(users))
	}
}

func TestJsonDB_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)

	u, err := db.CreateUser(model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	u.Username = "alice2"
	u.Bio = "hi"
	if err := db.UpdateUser(u); err != nil {
		t.Fatalf("update: %v", err)
	}
	g, _ := db.GetUserByID(u.ID)
	if g.Username != "alice2" || g.Bio != "hi" {
		t.Fatalf("update not persisted: %+v", g)
	}

	if err := db.UpdateUser(model.User{ID: 999, Username: "ghost"}); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on update, got %v", err)
	}

	if err := db.DeleteUser(u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetUserByID(u.ID); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
	if err := db.DeleteUser(u.ID); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on repeated delete, got %v", err)
	}
}
