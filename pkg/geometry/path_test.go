package geometry

import (
	"testing"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

func TestBuildPath(t *testing.T) {
	tests := []struct {
		name    string
		start   Point
		offsets []Offset
		want    string
	}{
		{
			name:    "single vertical line",
			start:   Point{X: 3, Y: 10},
			offsets: []Offset{{DY: 95}},
			want:    "M 3,10\nL 3,105",
		},
		{
			name:    "no offsets",
			start:   Point{X: 1, Y: 2},
			offsets: nil,
			want:    "M 1,2",
		},
		{
			name:    "horizontal then turn down",
			start:   Point{X: 50},
			offsets: []Offset{{DX: -34}, {DX: -16, DY: 16}, {DY: 40}},
			want:    "M 50,0\nL 16,0\nA 16 16 0 0 0 0,16\nL 0,56",
		},
		{
			name:    "opening curve followed by vertical run",
			offsets: []Offset{{DX: 16, DY: 16}, {DY: 10}},
			want:    "M 0,0\nA 16 16 0 0 1 16,16\nL 16,26",
		},
		{
			name:    "opening curve followed by horizontal run",
			offsets: []Offset{{DX: 16, DY: 16}, {DX: 10}},
			want:    "M 0,0\nA 16 16 0 0 0 16,16\nL 26,16",
		},
		{
			name:    "opening curve moving upward",
			offsets: []Offset{{DX: -16, DY: -16}, {DY: -10}},
			want:    "M 0,0\nA 16 16 0 0 1 -16,-16\nL -16,-26",
		},
		{
			name:    "zero horizontal run between two turns",
			offsets: []Offset{{DY: 10}, {DX: 16, DY: 16}, {}, {DX: 16, DY: 16}},
			want:    "M 0,0\nL 0,10\nA 16 16 0 0 0 16,26\nA 16 16 0 0 1 32,42",
		},
		{
			name:    "fractional coordinates",
			start:   Point{X: 2.5, Y: -0.0},
			offsets: []Offset{{DY: 0.25}},
			want:    "M 2.5,0\nL 2.5,0.25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPath(tt.start, tt.offsets)
			if err != nil {
				t.Fatalf("BuildPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildPath() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestBuildPathCurveValidity(t *testing.T) {
	if _, err := BuildPath(Point{}, []Offset{{DX: 3, DY: 5}}); !errors.Is(err, errors.ErrCodeInvalidCurve) {
		t.Errorf("BuildPath([3,5]) error = %v, want %s", err, errors.ErrCodeInvalidCurve)
	}
	if _, err := BuildPath(Point{}, []Offset{{DX: 4, DY: 4}}); err != nil {
		t.Errorf("BuildPath([4,4]) error = %v, want nil", err)
	}
	if _, err := BuildPath(Point{}, []Offset{{DX: -4, DY: 4}}); err != nil {
		t.Errorf("BuildPath([-4,4]) error = %v, want nil", err)
	}
}

func TestMustBuildPathPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustBuildPath did not panic on an invalid curve")
		}
	}()
	MustBuildPath(Point{}, []Offset{{DX: 1, DY: 2}})
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name    string
		start   Point
		offsets []Offset
		stroke  float64
		want    Rect
	}{
		{
			name:    "vertical run bleeds sideways",
			start:   Point{Y: 10},
			offsets: []Offset{{DY: 95}},
			stroke:  6,
			want:    Rect{X: -3, Y: 10, W: 6, H: 95},
		},
		{
			name:    "quarter turn bleeds on every side",
			offsets: []Offset{{DX: 16, DY: 16}},
			stroke:  4,
			want:    Rect{X: -2, Y: -2, W: 20, H: 20},
		},
		{
			name:    "horizontal run then drop",
			start:   Point{X: 10},
			offsets: []Offset{{DX: -10}, {DY: 20}},
			stroke:  2,
			want:    Rect{X: -1, Y: -1, W: 11, H: 21},
		},
		{
			name:   "no segments",
			start:  Point{X: 5, Y: 5},
			stroke: 6,
			want:   Rect{X: 5, Y: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bounds(tt.start, tt.offsets, tt.stroke); got != tt.want {
				t.Errorf("Bounds() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: -5, Y: 5, W: 5, H: 20}
	want := Rect{X: -5, Y: 0, W: 15, H: 25}
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
	if !want.Contains(Point{X: -5, Y: 25}) {
		t.Error("Contains() should include the bottom-left corner")
	}
}
