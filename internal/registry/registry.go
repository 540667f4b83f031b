package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/ironsheep/seatmap/internal/seating"
)

// ErrRoomNotFound is returned when a room ID is not in the registry.
var ErrRoomNotFound = errors.New("room not found")

// Room is one registry entry: the floor plan to analyse, its declared
// capacity, and the seats extracted from it.
type Room struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image"`
	// Capacity is nil when the number of seats is unknown.
	Capacity *int `json:"capacity,omitempty"`

	// Width and Height are the raster size the seats were extracted from.
	Width     int            `json:"width,omitempty"`
	Height    int            `json:"height,omitempty"`
	Seats     []seating.Seat `json:"seats,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// CapacityString formats the capacity for display.
func (r Room) CapacityString() string {
	if r.Capacity == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *r.Capacity)
}

// Registry is the ordered list of rooms.
type Registry struct {
	Rooms []Room `json:"rooms"`
}

// Room returns a copy of the room with the given ID.
func (r *Registry) Room(id string) (Room, error) {
	for _, room := range r.Rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return Room{}, errors.Wrapf(ErrRoomNotFound, "room %q", id)
}

// Put replaces the room with the same ID, or appends it.
func (r *Registry) Put(room Room) {
	for i := range r.Rooms {
		if r.Rooms[i].ID == room.ID {
			r.Rooms[i] = room
			return
		}
	}
	r.Rooms = append(r.Rooms, room)
}

// Clone returns a deep copy that can be modified without affecting r.
func (r *Registry) Clone() *Registry {
	out := &Registry{Rooms: make([]Room, len(r.Rooms))}
	for i, room := range r.Rooms {
		c := room
		if room.Capacity != nil {
			v := *room.Capacity
			c.Capacity = &v
		}
		if room.UpdatedAt != nil {
			t := *room.UpdatedAt
			c.UpdatedAt = &t
		}
		c.Seats = append([]seating.Seat(nil), room.Seats...)
		out.Rooms[i] = c
	}
	return out
}

// Validate rejects empty or duplicate IDs and rooms without an image.
func (r *Registry) Validate() error {
	seen := make(map[string]bool, len(r.Rooms))
	for i, room := range r.Rooms {
		if room.ID == "" {
			return errors.Errorf("room %d has no id", i)
		}
		if seen[room.ID] {
			return errors.Errorf("duplicate room id %q", room.ID)
		}
		seen[room.ID] = true
		if room.Image == "" {
			return errors.Errorf("room %q has no image", room.ID)
		}
	}
	return nil
}

// IDs returns the room IDs sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.Rooms))
	for i, room := range r.Rooms {
		ids[i] = room.ID
	}
	sort.Strings(ids)
	return ids
}

// Store persists a Registry.
type Store interface {
	// Load reads the whole registry.
	Load(ctx context.Context) (*Registry, error)
	// Save replaces the stored registry atomically: readers see either the
	// old or the new registry, never a mix.
	Save(ctx context.Context, reg *Registry) error
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// Open returns the store for backend at path.
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStore(path), nil
	case BackendSQLite:
		return OpenSQLiteStore(path)
	default:
		return nil, errors.Errorf("unknown registry backend %q", backend)
	}
}
