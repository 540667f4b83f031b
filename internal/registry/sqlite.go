package registry

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	_ "modernc.org/sqlite"

	"github.com/ironsheep/seatmap/internal/seating"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	position   INTEGER NOT NULL,
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	image      TEXT NOT NULL,
	capacity   INTEGER,
	width      INTEGER NOT NULL DEFAULT 0,
	height     INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT
);
CREATE TABLE IF NOT EXISTS seats (
	room_id  TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	seat_id  TEXT NOT NULL,
	x        REAL NOT NULL,
	y        REAL NOT NULL,
	PRIMARY KEY (room_id, position)
);
`

// SQLiteStore keeps the registry in a SQLite database (pure Go driver).
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates the database at path and ensures the
// schema exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	// Pragmas ride on the DSN so every pooled connection gets them, not just
	// the one that happens to run an Exec.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, multierr.Append(errors.Wrap(err, "failed to create schema"), db.Close())
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads every room with its seats in stored order.
func (s *SQLiteStore) Load(ctx context.Context) (*Registry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, image, capacity, width, height, updated_at FROM rooms ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query rooms")
	}
	defer rows.Close()

	reg := &Registry{}
	index := map[string]int{}
	for rows.Next() {
		var (
			room      Room
			capacity  sql.NullInt64
			updatedAt sql.NullString
		)
		if err := rows.Scan(&room.ID, &room.Name, &room.Image, &capacity, &room.Width, &room.Height, &updatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan room")
		}
		if capacity.Valid {
			v := int(capacity.Int64)
			room.Capacity = &v
		}
		if updatedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, updatedAt.String)
			if err != nil {
				return nil, errors.Wrapf(err, "room %q has bad updated_at", room.ID)
			}
			room.UpdatedAt = &t
		}
		index[room.ID] = len(reg.Rooms)
		reg.Rooms = append(reg.Rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read rooms")
	}

	seatRows, err := s.db.QueryContext(ctx,
		`SELECT room_id, seat_id, x, y FROM seats ORDER BY room_id, position`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query seats")
	}
	defer seatRows.Close()

	for seatRows.Next() {
		var (
			roomID string
			seat   seating.Seat
		)
		if err := seatRows.Scan(&roomID, &seat.ID, &seat.X, &seat.Y); err != nil {
			return nil, errors.Wrap(err, "failed to scan seat")
		}
		i, ok := index[roomID]
		if !ok {
			continue
		}
		reg.Rooms[i].Seats = append(reg.Rooms[i].Seats, seat)
	}
	if err := seatRows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read seats")
	}

	return reg, nil
}

// Save replaces every row in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, reg *Registry) (err error) {
	if err := reg.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, ignoreDone(tx.Rollback()))
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM seats`); err != nil {
		return errors.Wrap(err, "failed to clear seats")
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM rooms`); err != nil {
		return errors.Wrap(err, "failed to clear rooms")
	}

	roomStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rooms (position, id, name, image, capacity, width, height, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare room insert")
	}
	defer roomStmt.Close()

	seatStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO seats (room_id, position, seat_id, x, y) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare seat insert")
	}
	defer seatStmt.Close()

	for pos, room := range reg.Rooms {
		var capacity sql.NullInt64
		if room.Capacity != nil {
			capacity = sql.NullInt64{Int64: int64(*room.Capacity), Valid: true}
		}
		var updatedAt sql.NullString
		if room.UpdatedAt != nil {
			updatedAt = sql.NullString{String: room.UpdatedAt.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		if _, err = roomStmt.ExecContext(ctx, pos, room.ID, room.Name, room.Image, capacity,
			room.Width, room.Height, updatedAt); err != nil {
			return errors.Wrapf(err, "failed to insert room %q", room.ID)
		}
		for i, seat := range room.Seats {
			if _, err = seatStmt.ExecContext(ctx, room.ID, i, seat.ID, seat.X, seat.Y); err != nil {
				return errors.Wrapf(err, "failed to insert seat %s of room %q", seat.ID, room.ID)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit registry")
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
