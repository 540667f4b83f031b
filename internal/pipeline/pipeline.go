package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/seatmap/internal/detection"
	"github.com/ironsheep/seatmap/internal/imaging"
	"github.com/ironsheep/seatmap/internal/ocr"
	"github.com/ironsheep/seatmap/internal/registry"
	"github.com/ironsheep/seatmap/internal/seating"
)

// ErrImageUnavailable is reported for rooms whose floor plan cannot be read
// or decoded. The room is skipped and keeps its previous seats.
var ErrImageUnavailable = errors.New("image unavailable")

// Status classifies a room outcome.
type Status string

const (
	// StatusOK means seats were produced with no caveats.
	StatusOK Status = "ok"
	// StatusDegraded means seats were produced but some stage fell back:
	// no outline, OCR failure, or fewer candidates than capacity.
	StatusDegraded Status = "degraded"
	// StatusSkipped means no seats were produced.
	StatusSkipped Status = "skipped"
)

// Outcome is the result of processing one room.
type Outcome struct {
	RoomID  string                  `json:"room_id"`
	Status  Status                  `json:"status"`
	Seats   []seating.Seat          `json:"seats,omitempty"`
	Width   int                     `json:"width,omitempty"`
	Height  int                     `json:"height,omitempty"`
	Profile seating.Profile         `json:"profile,omitempty"`
	Pools   map[seating.Profile]int `json:"pools,omitempty"`
	Removed int                     `json:"removed"`
	// Warnings lists the reasons for a degraded status.
	Warnings []string      `json:"warnings,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`

	// Err is set for skipped rooms.
	Err error `json:"-"`
	// Trace holds intermediate results for overlays and inspection.
	Trace *Trace `json:"-"`
}

func (o *Outcome) degrade(msg string) {
	o.Status = StatusDegraded
	o.Warnings = append(o.Warnings, msg)
}

// Trace keeps the intermediate products of one run.
type Trace struct {
	Raster     *imaging.Raster
	Components []imaging.Component
	Rejections detection.Rejections
	Pools      seating.Pools
	Selection  seating.Selection
	Refined    seating.Result
	// SeatScores is aligned with Outcome.Seats.
	SeatScores []float64
}

// Pipeline extracts the seats of one room from its raster. It is safe for
// concurrent use; every buffer it allocates belongs to a single Run.
type Pipeline struct {
	params    Params
	extractor *ocr.Extractor
	refiner   *seating.Refiner
	logger    *zap.Logger
}

// New builds a Pipeline. extractor may be nil, in which case OCR is skipped
// regardless of Params.OCREnabled.
func New(params Params, extractor *ocr.Extractor, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		params:    params,
		extractor: extractor,
		refiner:   seating.NewRefiner(params.Refine, logger.Named("refine")),
		logger:    logger,
	}
}

// Params returns the parameters in use.
func (p *Pipeline) Params() Params { return p.params }

// Run executes every stage for one room.
//
// Stage failures never abort the run: a missing outline skips outline
// masking, an OCR failure leaves the OCR pool empty, and a short pool is
// returned whole. Each such fallback marks the outcome degraded. Only a
// cancelled context produces a skipped outcome.
func (p *Pipeline) Run(ctx context.Context, room registry.Room, r *imaging.Raster) (out Outcome) {
	start := time.Now()
	log := p.logger.With(zap.String("room", room.ID))
	out = Outcome{RoomID: room.ID, Status: StatusOK, Width: r.Width, Height: r.Height}
	defer func() { out.Elapsed = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		out.Status, out.Err = StatusSkipped, err
		return out
	}

	prm := p.params
	trace := &Trace{Raster: r}
	out.Trace = trace

	// Outline masking.
	boundary := imaging.BoundaryMask(r, prm.Classifier)
	var closed, outside *imaging.Mask
	err := imaging.CheckBoundary(boundary, prm.MinBoundaryPixels)
	if err == nil {
		closed = imaging.Dilate(boundary, prm.BoundaryRadius, imaging.PurposeDilatedBoundary)
		outside, err = imaging.ClassifyOutside(closed, prm.MinBoundaryPixels)
	}
	work := r
	roi := image.Rect(0, 0, r.Width, r.Height)
	if err != nil {
		if !errors.Is(err, imaging.ErrNoBoundaryDetected) {
			out.Status, out.Err = StatusSkipped, err
			return out
		}
		log.Info("no room outline, analysing whole image", zap.String("stage", "flood"), zap.Error(err))
		out.degrade("no room outline detected")
	} else {
		work = r.WhiteOut(outside, closed)
		roi = imaging.MaskBounds(closed).Inset(-prm.ROIPadding).Intersect(roi)
		log.Debug("outline masked", zap.String("stage", "flood"),
			zap.Int("outside", outside.Count()), zap.Stringer("roi", roi))
	}

	// Blob detection.
	ink := imaging.InkMask(work, prm.Classifier)
	glyphs := imaging.Dilate(ink, prm.GlyphRadius, imaging.PurposeGlyphs)
	_, comps := imaging.Label(glyphs)
	blobs, rej := detection.Filter(comps, prm.Geometry, r.Width, r.Height)
	trace.Components, trace.Rejections = comps, rej
	log.Debug("blobs filtered", zap.String("stage", "filter"),
		zap.Int("components", len(comps)), zap.Int("count", len(blobs)), zap.Int("rejected", rej.Total()))

	// OCR.
	var words []detection.Candidate
	if prm.OCREnabled && p.extractor != nil {
		if err := ctx.Err(); err != nil {
			out.Status, out.Err = StatusSkipped, err
			return out
		}
		words, err = p.extractor.Extract(ctx, work.Crop(roi), roi.Min)
		if ctxErr := ctx.Err(); ctxErr != nil {
			out.Status, out.Err = StatusSkipped, ctxErr
			return out
		}
		if err != nil {
			log.Warn("ocr failed, continuing without digits", zap.String("stage", "ocr"), zap.Error(err))
			out.degrade("ocr failed: " + err.Error())
			words = nil
		}
		log.Debug("digits recognised", zap.String("stage", "ocr"), zap.Int("count", len(words)))
	}

	// Pools.
	// Seats are rounded after separation, which can pull a pair slightly closer.
	sep := prm.MinSeparation + seating.RoundingSlack
	blobPool := detection.Separate(detection.Merge(blobs, prm.GlyphMergeRadius), sep)
	ocrPool := detection.Separate(detection.Merge(words, prm.GlyphMergeRadius), sep)
	both := append(append([]detection.Candidate(nil), blobPool...), ocrPool...)
	unionPool := detection.Separate(detection.Merge(both, prm.FusionRadius), sep)
	trace.Pools = seating.Pools{
		seating.ProfileBlob:  blobPool,
		seating.ProfileOCR:   ocrPool,
		seating.ProfileUnion: unionPool,
	}

	// Selection and refinement.
	sel := prm.Selection.Select(trace.Pools, room.Capacity)
	trace.Selection = sel
	out.Profile, out.Pools = sel.Profile, sel.Sizes

	res := p.refiner.Refine(sel.Candidates, room.Capacity)
	trace.Refined = res
	out.Removed = len(res.Removed)
	if err := res.Err(); err != nil {
		out.degrade(err.Error())
	}

	order := seating.ReadingIndex(res.Kept, prm.Refine.RowTolerance)
	out.Seats = seating.ReadingOrder(res.Kept, prm.Refine.RowTolerance)
	trace.SeatScores = make([]float64, len(order))
	for pos, i := range order {
		trace.SeatScores[pos] = res.Scores[i]
	}

	if len(out.Seats) == 0 {
		out.degrade("no seat candidates found")
	}

	log.Info("room extracted",
		zap.String("status", string(out.Status)),
		zap.String("profile", string(out.Profile)),
		zap.Int("count", len(out.Seats)),
		zap.Int("removed", out.Removed),
		zap.String("capacity", room.CapacityString()),
	)
	return out
}
