package testsupport

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

//go:embed testdata/users.json
var usersFixture []byte

// User is a seeded row of the users table.
type User struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Role  string  `json:"role"`
	Score float64 `json:"score"`
	Token string  `json:"token"`
}

const usersSchema = `CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	role TEXT NOT NULL,
	score REAL NOT NULL,
	token TEXT NOT NULL
)`

// OpenSQLite opens a private in-memory sqlite database wrapped in bun. The
// database is closed when the test ends.
func OpenSQLite(t testing.TB) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedUsers creates the users table and loads the embedded fixture rows.
// Each row gets a random token so tests can tell fresh reads from cached ones.
func SeedUsers(t testing.TB, db bun.IDB) []User {
	t.Helper()
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, usersSchema); err != nil {
		t.Fatalf("failed to create users table: %v", err)
	}

	var users []User
	if err := json.Unmarshal(usersFixture, &users); err != nil {
		t.Fatalf("failed to decode users fixture: %v", err)
	}

	for i := range users {
		users[i].Token = uuid.NewString()
		u := users[i]
		_, err := db.ExecContext(ctx,
			"INSERT INTO users (id, name, email, role, score, token) VALUES (?, ?, ?, ?, ?, ?)",
			u.ID, u.Name, u.Email, u.Role, u.Score, u.Token,
		)
		if err != nil {
			t.Fatalf("failed to insert user %d: %v", u.ID, err)
		}
	}
	return users
}
