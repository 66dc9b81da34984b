package binder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/m3rciful/codegate/app/registry"
	"github.com/m3rciful/codegate/core/database"
	"github.com/m3rciful/codegate/core/telegram/state"
)

const admin int64 = 100

type fakeWriter struct {
	entries []registry.Entry
	err     error
}

func (f *fakeWriter) Upsert(_ context.Context, e registry.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func newBinder(w Writer) (*Binder, *state.MemoryStore) {
	sessions := state.NewMemoryStore(16, 0)
	return New(NewAllowList([]int64{admin}), w, sessions, nil), sessions
}

func TestAllowList(t *testing.T) {
	a := NewAllowList([]int64{1, 2, 2})
	if !a.Contains(1) || !a.Contains(2) || a.Contains(3) {
		t.Fatal("unexpected membership")
	}
	if a.Len() != 2 {
		t.Fatalf("Len = %d", a.Len())
	}
	if (AllowList{}).Contains(1) {
		t.Fatal("zero AllowList must be empty")
	}
}

func TestStageIgnoresNonAdmins(t *testing.T) {
	b, sessions := newBinder(&fakeWriter{})
	res := b.Stage(context.Background(), 5, "V1")
	if res.Kind != Ignored || !res.Kind.Silent() {
		t.Fatalf("unexpected result %+v", res)
	}
	if sessions.Len() != 0 {
		t.Fatal("non-admin upload must not be staged")
	}
}

func TestStageReplacesPrevious(t *testing.T) {
	b, sessions := newBinder(&fakeWriter{})
	b.Stage(context.Background(), admin, "V1")
	res := b.Stage(context.Background(), admin, "V2")
	if res.Kind != Staged || res.Handle != "V2" {
		t.Fatalf("unexpected result %+v", res)
	}
	v, _, _ := sessions.Get(context.Background(), admin, StagedKey)
	if v != "V2" {
		t.Fatalf("staged = %q", v)
	}
}

func TestBindNonAdminIsSilent(t *testing.T) {
	w := &fakeWriter{}
	b, _ := newBinder(w)
	b.Stage(context.Background(), 5, "V1")
	res := b.Bind(context.Background(), 5, "5")
	if res.Kind != Unauthorized || !res.Kind.Silent() {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(w.entries) != 0 {
		t.Fatal("registry mutated by non-admin")
	}
}

func TestBindArgumentValidation(t *testing.T) {
	w := &fakeWriter{}
	b, _ := newBinder(w)
	b.Stage(context.Background(), admin, "V1")

	cases := map[string]Kind{
		"":    Usage,
		"   ": Usage,
		"abc": InvalidArgument,
		"1a":  InvalidArgument,
		"-5":  InvalidArgument,
		"٣":   InvalidArgument,
	}
	for args, want := range cases {
		if res := b.Bind(context.Background(), admin, args); res.Kind != want {
			t.Fatalf("Bind(%q) = %v, want %v", args, res.Kind, want)
		}
	}
	if len(w.entries) != 0 {
		t.Fatalf("registry mutated on invalid input: %v", w.entries)
	}
}

func TestBindNothingStaged(t *testing.T) {
	w := &fakeWriter{}
	b, _ := newBinder(w)
	if res := b.Bind(context.Background(), admin, "5"); res.Kind != NothingStaged {
		t.Fatalf("Kind = %v", res.Kind)
	}
}

func TestBindStoresVerbatimAndClears(t *testing.T) {
	w := &fakeWriter{}
	b, sessions := newBinder(w)
	b.Stage(context.Background(), admin, "V9")

	res := b.Bind(context.Background(), admin, " 0005 ")
	if res.Kind != Bound || res.Code != "0005" || res.Handle != "V9" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(w.entries) != 1 {
		t.Fatalf("entries = %v", w.entries)
	}
	if got := w.entries[0]; got.Code != "0005" || got.Handle != "V9" || got.BoundBy != admin {
		t.Fatalf("entry = %+v", got)
	}
	if _, ok, _ := sessions.Get(context.Background(), admin, StagedKey); ok {
		t.Fatal("staged upload should be cleared after bind")
	}
}

func TestBindStorageFailureKeepsStaged(t *testing.T) {
	w := &fakeWriter{err: &registry.StorageError{Op: "upsert", Err: errors.New("disk full")}}
	b, sessions := newBinder(w)
	b.Stage(context.Background(), admin, "V9")

	res := b.Bind(context.Background(), admin, "5")
	if res.Kind != StorageFailed || !errors.Is(res.Cause, registry.ErrStorage) {
		t.Fatalf("unexpected result %+v", res)
	}
	if v, ok, _ := sessions.Get(context.Background(), admin, StagedKey); !ok || v != "V9" {
		t.Fatal("staged upload must survive a failed bind")
	}
}

func TestBindThenLookupSQLite(t *testing.T) {
	cfg := database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "codes.db")}
	if err := database.RunMigrations(cfg, registry.Migrations()); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	store := registry.New(db)

	b, _ := newBinder(store)
	b.Stage(context.Background(), admin, "V9")
	if res := b.Bind(context.Background(), admin, "5"); res.Kind != Bound {
		t.Fatalf("Bind = %+v", res)
	}
	handle, found, err := store.Get(context.Background(), "5")
	if err != nil || !found || handle != "V9" {
		t.Fatalf("Get(5) = %q/%v/%v", handle, found, err)
	}
}
