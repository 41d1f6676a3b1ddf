package dbopen_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/recallwatch/dbopen"
)

func TestOpenMemory_Pragmas(t *testing.T) {
	db := dbopen.OpenMemory(t)

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}

	var busy int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busy); err != nil {
		t.Fatal(err)
	}
	if busy != 10_000 {
		t.Fatalf("busy_timeout = %d, want 10000", busy)
	}
}

func TestOpen_MkdirAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "recall.db")
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithBusyTimeout(2000))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var busy int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busy); err != nil {
		t.Fatal(err)
	}
	if busy != 2000 {
		t.Fatalf("busy_timeout = %d, want 2000", busy)
	}
}

func TestRunTx_RollbackOnError(t *testing.T) {
	// WHAT: A failing fn rolls back its writes.
	// WHY: Snapshot append and retention trim must be atomic.
	db := dbopen.OpenMemory(t)
	if _, err := db.Exec("CREATE TABLE t (v INTEGER)"); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := dbopen.RunTx(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO t (v) VALUES (1)"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("rows = %d, want 0 after rollback", n)
	}
}

func TestIsBusy(t *testing.T) {
	if dbopen.IsBusy(nil) {
		t.Fatal("nil is not busy")
	}
	if !dbopen.IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Fatal("locked error should be busy")
	}
	if dbopen.IsBusy(errors.New("no such table")) {
		t.Fatal("unrelated error is not busy")
	}
}
