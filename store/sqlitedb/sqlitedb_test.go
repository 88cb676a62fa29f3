package sqlitedb

import (
	"errors"
	"fmt"
	"testing"

	"friendbook/model"
	"friendbook/store"
)

var memCounter int

func newTestDB(t *testing.T) *SqliteDB {
	t.Helper()
	memCounter++
	db, err := New(fmt.Sprintf("file:sqlitedbtest%d?mode=memory&cache=shared", memCounter))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Init(); err != nil {
		t.Fatalf("init db: %v", err)
	}
	return db
}

func TestSqliteDB_CRUD(t *testing.T) {
	db := newTestDB(t)

	u, err := db.CreateUser(model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected generated id, got %+v", u)
	}

	g, err := db.GetUserByID(u.ID)
	if err != nil || g.Username != "alice" || g.Admin {
		t.Fatalf("get by id: %v %+v", err, g)
	}
	g2, err := db.GetUserByEmail("a@x.com")
	if err != nil || g2.ID != u.ID {
		t.Fatalf("get by email: %v %+v", err, g2)
	}

	u.Username = "alice2"
	u.Bio = "hi"
	if err := db.UpdateUser(u); err != nil {
		t.Fatalf("update: %v", err)
	}
	g3, _ := db.GetUserByID(u.ID)
	if g3.Username != "alice2" || g3.Bio != "hi" {
		t.Fatalf("update not persisted: %+v", g3)
	}

	if err := db.DeleteUser(u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetUserByID(u.ID); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
}

func TestSqliteDB_DuplicateEmailRejected(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.CreateUser(model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.CreateUser(model.User{Username: "mallory", Email: "a@x.com", PasswordHash: "h"}); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	users, err := db.GetUsers()
	if err != nil || len(users) != 1 {
		t.Fatalf("user count changed on duplicate insert: %v len=%d", err, len(users))
	}
}

func TestSqliteDB_NotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetUserByID(42); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := db.GetUserByEmail("nobody@x.com"); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := db.UpdateUser(model.User{ID: 42, Username: "ghost", Email: "g@x.com"}); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on update, got %v", err)
	}
	if err := db.DeleteUser(42); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on delete, got %v", err)
	}
}

func TestSqliteDB_NoOpUpdateStillSucceeds(t *testing.T) {
	db := newTestDB(t)

	u, err := db.CreateUser(model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// unchanged values must not be reported as a missing record
	if err := db.UpdateUser(u); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
}
