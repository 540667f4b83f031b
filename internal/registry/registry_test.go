package registry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/ironsheep/seatmap/internal/seating"
)

func intPtr(v int) *int { return &v }

func sampleRegistry() *Registry {
	updated := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return &Registry{Rooms: []Room{
		{
			ID: "b2-114", Name: "Lecture Hall B", Image: "plans/b2-114.png", Capacity: intPtr(3),
			Width: 800, Height: 600, UpdatedAt: &updated,
			Seats: []seating.Seat{{ID: "1", X: 10, Y: 100}, {ID: "2", X: 200, Y: 102.5}, {ID: "3", X: 15, Y: 300}},
		},
		{ID: "a1-001", Image: "plans/a1-001.pdf"},
	}}
}

func TestRegistry_RoomAndPut(t *testing.T) {
	reg := sampleRegistry()

	room, err := reg.Room("a1-001")
	if err != nil {
		t.Fatalf("Room failed: %v", err)
	}
	if room.CapacityString() != "unknown" {
		t.Errorf("expected unknown capacity, got %s", room.CapacityString())
	}

	if _, err := reg.Room("zz"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}

	room.Capacity = intPtr(12)
	reg.Put(room)
	if len(reg.Rooms) != 2 {
		t.Fatalf("Put duplicated an existing room")
	}
	if got, _ := reg.Room("a1-001"); got.CapacityString() != "12" {
		t.Errorf("expected updated capacity, got %s", got.CapacityString())
	}

	reg.Put(Room{ID: "c3-210", Image: "x.png"})
	if len(reg.Rooms) != 3 {
		t.Errorf("expected new room appended")
	}
}

func TestRegistry_CloneIsDeep(t *testing.T) {
	reg := sampleRegistry()
	c := reg.Clone()

	*c.Rooms[0].Capacity = 99
	c.Rooms[0].Seats[0].X = -1

	if *reg.Rooms[0].Capacity != 3 || reg.Rooms[0].Seats[0].X != 10 {
		t.Error("Clone shares memory with the original")
	}
}

func TestRegistry_Validate(t *testing.T) {
	tests := []struct {
		name  string
		rooms []Room
	}{
		{"missing id", []Room{{Image: "a.png"}}},
		{"duplicate id", []Room{{ID: "a", Image: "a.png"}, {ID: "a", Image: "b.png"}}},
		{"missing image", []Room{{ID: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &Registry{Rooms: tt.rooms}
			if err := reg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("etcd", "x"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func storeRoundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	want := sampleRegistry()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("registry mismatch (-want +got):\n%s", diff)
	}

	// A second save replaces, not appends.
	want.Rooms = want.Rooms[:1]
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if len(got.Rooms) != 1 {
		t.Errorf("expected 1 room after replace, got %d", len(got.Rooms))
	}
}

func TestJSONStore_RoundTrip(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "rooms.json"))
	defer s.Close()
	storeRoundTrip(t, s)
}

func TestJSONStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(filepath.Join(dir, "rooms.json"))
	if err := s.Save(context.Background(), sampleRegistry()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "rooms.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("expected only rooms.json, got %v", names)
	}
}

func TestJSONStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	s := NewJSONStore(filepath.Join(dir, "missing.json"))
	if _, err := s.Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"rooms": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONStore(bad).Load(context.Background()); err == nil {
		t.Error("expected error for malformed JSON")
	}

	dup := filepath.Join(dir, "dup.json")
	if err := os.WriteFile(dup, []byte(`{"rooms":[{"id":"a","image":"a.png"},{"id":"a","image":"b.png"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONStore(dup).Load(context.Background()); err == nil {
		t.Error("expected error for duplicate ids")
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "rooms.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	defer s.Close()
	storeRoundTrip(t, s)
}

func TestSQLiteStore_ViaOpen(t *testing.T) {
	s, err := Open(BackendSQLite, filepath.Join(t.TempDir(), "rooms.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	reg, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load of empty database failed: %v", err)
	}
	if len(reg.Rooms) != 0 {
		t.Errorf("expected empty registry, got %d rooms", len(reg.Rooms))
	}
}

func TestSQLiteStore_PragmasOnEveryConnection(t *testing.T) {
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "rooms.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	// Holding the first connection forces the pool to open a second one.
	first, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	second, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var fk, timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		if fk != 1 || timeout != 10000 {
			t.Errorf("conn %d: foreign_keys=%d busy_timeout=%d, want 1 and 10000", i, fk, timeout)
		}
	}
}
