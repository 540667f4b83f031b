package detection

import (
	"image"
	"testing"

	"github.com/ironsheep/seatmap/internal/imaging"
)

func TestFilter(t *testing.T) {
	g := DefaultGeometry()

	tests := []struct {
		name string
		comp imaging.Component
		keep bool
	}{
		{"seat number", imaging.Component{MinX: 50, MinY: 50, MaxX: 59, MaxY: 64, PixelCount: 60}, true},
		{"speck", imaging.Component{MinX: 50, MinY: 50, MaxX: 52, MaxY: 52, PixelCount: 9}, false},
		{"wall", imaging.Component{MinX: 20, MinY: 20, MaxX: 150, MaxY: 40, PixelCount: 2000}, false},
		{"rule", imaging.Component{MinX: 50, MinY: 50, MaxX: 99, MaxY: 58, PixelCount: 200}, false},
		{"solid block", imaging.Component{MinX: 50, MinY: 50, MaxX: 59, MaxY: 59, PixelCount: 100}, false},
		{"touches border", imaging.Component{MinX: 2, MinY: 50, MaxX: 11, MaxY: 64, PixelCount: 60}, false},
		{"caption band", imaging.Component{MinX: 50, MinY: 182, MaxX: 59, MaxY: 192, PixelCount: 50}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rej := Filter([]imaging.Component{tt.comp}, g, 200, 200)
			if tt.keep != (len(got) == 1) {
				t.Fatalf("kept %d candidates, want keep=%v (rejections %+v)", len(got), tt.keep, rej)
			}
			if !tt.keep && rej.Total() != 1 {
				t.Errorf("Rejections.Total = %d, want 1", rej.Total())
			}
		})
	}
}

func TestFilter_CandidateShape(t *testing.T) {
	comp := imaging.Component{ID: 7, MinX: 50, MinY: 50, MaxX: 59, MaxY: 64, PixelCount: 60}
	got, _ := Filter([]imaging.Component{comp}, DefaultGeometry(), 200, 200)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}

	c := got[0]
	if c.X != 54.5 || c.Y != 57 {
		t.Errorf("centre = (%v,%v), want (54.5,57)", c.X, c.Y)
	}
	if c.Weight != 60 || c.Members != 1 || c.Source != SourceBlob {
		t.Errorf("unexpected candidate %+v", c)
	}
	if c.Box != image.Rect(50, 50, 60, 65) {
		t.Errorf("Box = %v, want (50,50)-(60,65)", c.Box)
	}
}

func TestFilter_Bands(t *testing.T) {
	g := DefaultGeometry()
	g.TopBand = 0.2
	g.BottomBand = 0.8

	mk := func(y int) imaging.Component {
		return imaging.Component{MinX: 50, MinY: y, MaxX: 59, MaxY: y + 14, PixelCount: 60}
	}
	comps := []imaging.Component{mk(10), mk(90), mk(170)}

	got, rej := Filter(comps, g, 200, 200)
	if len(got) != 1 || got[0].Y != 97 {
		t.Fatalf("got %+v, want only the middle component", got)
	}
	if rej.Band != 2 {
		t.Errorf("Band rejections = %d, want 2", rej.Band)
	}
}

func TestFilter_ZeroMaximumsDisableBounds(t *testing.T) {
	g := Geometry{MinWidth: 1, MinHeight: 1, MinPixels: 1}
	comp := imaging.Component{MinX: 10, MinY: 10, MaxX: 189, MaxY: 189, PixelCount: 180 * 180}

	got, rej := Filter([]imaging.Component{comp}, g, 200, 200)
	if len(got) != 1 {
		t.Errorf("expected unbounded geometry to keep the component, rejections %+v", rej)
	}
}
