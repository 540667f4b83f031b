package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/seatmap/internal/imaging"
	"github.com/ironsheep/seatmap/internal/overlay"
	"github.com/ironsheep/seatmap/internal/registry"
)

// Summary reports a batch run.
type Summary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Degraded  int           `json:"degraded"`
	Skipped   int           `json:"skipped"`
	Elapsed   time.Duration `json:"elapsed"`
	Outcomes  []Outcome     `json:"outcomes"`
}

// Err combines the errors of every skipped room, or returns nil.
func (s *Summary) Err() error {
	var err error
	for _, o := range s.Outcomes {
		if o.Err != nil {
			err = multierr.Append(err, errors.Wrapf(o.Err, "room %s", o.RoomID))
		}
	}
	return err
}

func summarize(outcomes []Outcome, elapsed time.Duration) *Summary {
	counts := lo.CountValuesBy(outcomes, func(o Outcome) Status { return o.Status })
	return &Summary{
		Total:     len(outcomes),
		Succeeded: counts[StatusOK],
		Degraded:  counts[StatusDegraded],
		Skipped:   counts[StatusSkipped],
		Elapsed:   elapsed,
		Outcomes:  outcomes,
	}
}

// Batch runs the pipeline over registry rooms.
type Batch struct {
	Pipeline *Pipeline
	Store    registry.Store
	Images   *imaging.ImageCache
	// ImagesDir resolves relative room image paths.
	ImagesDir string
	// Workers bounds how many rooms are processed at once.
	Workers int
	// Checkpoint saves the registry after every room instead of once at the
	// end.
	Checkpoint bool
	// OverlayDir, when set, receives one diagnostic PNG per processed room.
	OverlayDir string
	// OverlayGrid is the coordinate grid spacing drawn on overlays; 0 draws none.
	OverlayGrid int
	Logger     *zap.Logger
	// Now stamps updated rooms. Defaults to time.Now.
	Now func() time.Time
}

// Run processes the given rooms, or every room when ids is empty.
//
// Room failures are recorded in the Summary and never abort other rooms. The
// returned error is reserved for registry failures: an unreadable registry,
// an unknown room ID, or a failed save.
func (b *Batch) Run(ctx context.Context, ids ...string) (*Summary, error) {
	start := time.Now()
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := b.Now
	if now == nil {
		now = time.Now
	}
	images := b.Images
	if images == nil {
		images = imaging.NewImageCache()
	}

	reg, err := b.Store.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load registry")
	}

	rooms := reg.Rooms
	if len(ids) > 0 {
		rooms = make([]registry.Room, 0, len(ids))
		for _, id := range lo.Uniq(ids) {
			room, err := reg.Room(id)
			if err != nil {
				return nil, err
			}
			rooms = append(rooms, room)
		}
	}

	log.Info("batch started",
		zap.Int("rooms", len(rooms)),
		zap.Int("workers", b.Workers),
		zap.Bool("checkpoint", b.Checkpoint),
	)

	var (
		mu       sync.Mutex
		working  = reg.Clone()
		outcomes = make([]Outcome, len(rooms))
		saveErr  error
	)

	var g errgroup.Group
	g.SetLimit(max(b.Workers, 1))
	for i, room := range rooms {
		g.Go(func() error {
			out := b.runRoom(ctx, room, images, log)
			outcomes[i] = out
			// Each plan belongs to one room; keeping it cached only grows memory.
			images.Evict(ResolveImage(b.ImagesDir, room.Image))

			if !b.Checkpoint || !persistable(out) {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			apply(working, room, out, now())
			if err := b.Store.Save(ctx, working); err != nil {
				saveErr = multierr.Append(saveErr, errors.Wrapf(err, "checkpoint after room %s", room.ID))
			}
			return nil
		})
	}
	_ = g.Wait()

	if saveErr != nil {
		return summarize(outcomes, time.Since(start)), saveErr
	}

	if !b.Checkpoint {
		changed := false
		for i, out := range outcomes {
			if persistable(out) {
				apply(working, rooms[i], out, now())
				changed = true
			}
		}
		if changed {
			if err := b.Store.Save(ctx, working); err != nil {
				return summarize(outcomes, time.Since(start)), errors.Wrap(err, "failed to save registry")
			}
		}
	}

	sum := summarize(outcomes, time.Since(start))
	log.Info("batch finished",
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("degraded", sum.Degraded),
		zap.Int("skipped", sum.Skipped),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return sum, nil
}

// Extract runs one room without touching the registry. Overlays are still
// written when OverlayDir is set.
func (b *Batch) Extract(ctx context.Context, room registry.Room) Outcome {
	images := b.Images
	if images == nil {
		images = imaging.NewImageCache()
	}
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return b.runRoom(ctx, room, images, log)
}

// runRoom loads one room's image, runs the pipeline and writes its overlay.
func (b *Batch) runRoom(ctx context.Context, room registry.Room, images *imaging.ImageCache, log *zap.Logger) Outcome {
	path := ResolveImage(b.ImagesDir, room.Image)
	r, err := images.Load(path)
	if err != nil {
		err = errors.Wrapf(ErrImageUnavailable, "%s: %v", path, err)
		log.Warn("skipping room", zap.String("room", room.ID), zap.Error(err))
		return Outcome{RoomID: room.ID, Status: StatusSkipped, Err: err}
	}
	out := b.Pipeline.Run(ctx, room, r)

	if b.OverlayDir != "" && out.Trace != nil {
		dst := filepath.Join(b.OverlayDir, fmt.Sprintf("%s.png", room.ID))
		scene := SceneOf(out)
		scene.GridSpacing = b.OverlayGrid
		if err := overlay.Save(dst, r, scene); err != nil {
			log.Warn("overlay not written", zap.String("room", room.ID), zap.Error(err))
		}
	}
	return out
}

// SceneOf builds the overlay scene of an outcome.
func SceneOf(out Outcome) overlay.Scene {
	if out.Trace == nil {
		return overlay.Scene{Seats: out.Seats}
	}
	return overlay.Scene{
		Components: out.Trace.Components,
		Candidates: out.Trace.Selection.Candidates,
		Removed:    out.Trace.Refined.Removed,
		Seats:      out.Seats,
		SeatScores: out.Trace.SeatScores,
	}
}

// ResolveImage joins relative image paths onto dir.
func ResolveImage(dir, image string) string {
	if dir == "" || filepath.IsAbs(image) {
		return image
	}
	return filepath.Join(dir, image)
}

// persistable reports whether an outcome should replace the room's stored
// seats. A run that found nothing keeps the previous seats.
func persistable(out Outcome) bool {
	return out.Status != StatusSkipped && len(out.Seats) > 0
}

func apply(reg *registry.Registry, room registry.Room, out Outcome, at time.Time) {
	current, err := reg.Room(room.ID)
	if err != nil {
		current = room
	}
	current.Width, current.Height = out.Width, out.Height
	current.Seats = out.Seats
	current.UpdatedAt = &at
	reg.Put(current)
}
