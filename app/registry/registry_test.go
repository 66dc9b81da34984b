package registry

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	coredatabase "github.com/m3rciful/codegate/core/database"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = raw.Close() })
	return New(sqlx.NewDb(raw, "postgres")), mock
}

func TestGetUsesPostgresPlaceholders(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle FROM media_codes WHERE code = $1`)).
		WithArgs("345623").
		WillReturnRows(sqlmock.NewRows([]string{"handle"}).AddRow("H1"))

	handle, ok, err := s.Get(context.Background(), "345623")
	if err != nil || !ok || handle != "H1" {
		t.Fatalf("Get = %q %v %v", handle, ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetMissingIsNotAnError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT handle FROM media_codes`).
		WithArgs("404").
		WillReturnError(sql.ErrNoRows)

	handle, ok, err := s.Get(context.Background(), "404")
	if err != nil || ok || handle != "" {
		t.Fatalf("Get = %q %v %v", handle, ok, err)
	}
}

func TestGetStorageFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT handle FROM media_codes`).
		WithArgs("5").
		WillReturnError(errors.New("connection reset"))

	_, ok, err := s.Get(context.Background(), "5")
	if ok {
		t.Fatal("failure must not report found")
	}
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Code() != "STORAGE_FAILURE" || se.Op != "get" {
		t.Fatalf("unexpected error shape: %#v", err)
	}
}

func TestUpsertWritesBoundBy(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO media_codes .* ON CONFLICT \(code\) DO UPDATE`).
		WithArgs("5", "V9", sql.NullInt64{Int64: 42, Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Upsert(context.Background(), Entry{Code: "5", Handle: "V9", BoundBy: 42}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertStorageFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO media_codes`).WillReturnError(errors.New("disk full"))

	err := s.Upsert(context.Background(), Entry{Code: "5", Handle: "V9"})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func openSQLite(t *testing.T, path string) *Store {
	t.Helper()
	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: path}
	if err := coredatabase.RunMigrations(cfg, Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := coredatabase.Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func TestSQLiteLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t, filepath.Join(t.TempDir(), "codes.db"))

	if err := s.Upsert(ctx, Entry{Code: "78", Handle: "H1"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.Upsert(ctx, Entry{Code: "78", Handle: "H2", BoundBy: 9}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	handle, ok, err := s.Get(ctx, "78")
	if err != nil || !ok || handle != "H2" {
		t.Fatalf("Get = %q %v %v, want H2", handle, ok, err)
	}
	if n, err := s.Count(ctx); err != nil || n != 1 {
		t.Fatalf("Count = %d %v, want 1", n, err)
	}
	if _, ok, err := s.Get(ctx, "0078"); err != nil || ok {
		t.Fatalf("codes are compared as strings: ok=%v err=%v", ok, err)
	}
}

func TestSQLiteDurableAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "codes.db")

	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: path}
	if err := coredatabase.RunMigrations(cfg, Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := coredatabase.Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := New(db).Upsert(ctx, Entry{Code: "5", Handle: "V9"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openSQLite(t, path)
	handle, ok, err := reopened.Get(ctx, "5")
	if err != nil || !ok || handle != "V9" {
		t.Fatalf("after reopen Get = %q %v %v", handle, ok, err)
	}
}
