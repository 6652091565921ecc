package toolbox

import (
	"math"
	"testing"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestCmToInches(t *testing.T) {
	tests := []struct {
		cm   float64
		want float64
	}{
		{2.54, 1.0},
		{0, 0},
		{21.0, 8.2677},
		{29.7, 11.6929},
	}
	for _, tt := range tests {
		got := cmToInches(tt.cm)
		if !almostEqual(got, tt.want, 0.001) {
			t.Errorf("cmToInches(%v) = %v, want ~%v", tt.cm, got, tt.want)
		}
	}
}

func TestDefaultPageConfig(t *testing.T) {
	d := DefaultPageConfig()
	if d.Size != A4 {
		t.Errorf("default size = %v, want A4", d.Size)
	}
	if d.Orientation != Portrait {
		t.Errorf("default orientation = %v, want Portrait", d.Orientation)
	}
	if d.Mode != Raster {
		t.Errorf("default mode = %v, want Raster", d.Mode)
	}
	if d.Scale != 1.0 {
		t.Errorf("default scale = %v, want 1.0", d.Scale)
	}
	if !d.PrintBackground {
		t.Error("default PrintBackground = false, want true")
	}
	if d.Margin != UniformMargin(1.0) {
		t.Errorf("default margin = %v, want uniform 1.0", d.Margin)
	}
}

func TestPageConfigResolved_Nil(t *testing.T) {
	var pc *PageConfig
	if r, d := pc.resolved(), DefaultPageConfig(); r != d {
		t.Errorf("nil resolved = %+v, want %+v", r, d)
	}
}

func TestPageConfigResolved_ZeroValues(t *testing.T) {
	r := (&PageConfig{}).resolved()
	if r.Size != A4 {
		t.Errorf("zero size resolved to %v, want A4", r.Size)
	}
	if r.Scale != 1.0 {
		t.Errorf("zero scale resolved to %v, want 1.0", r.Scale)
	}
	if r.Margin != UniformMargin(1.0) {
		t.Errorf("zero margin resolved to %v, want uniform 1.0", r.Margin)
	}
}

func TestPageConfigResolved_PreservesExplicit(t *testing.T) {
	pc := &PageConfig{
		Size:        Letter,
		Orientation: Landscape,
		Mode:        Print,
		Scale:       0.5,
		Margin:      Margin{Top: 2, Right: 3, Bottom: 2, Left: 3},
	}
	r := pc.resolved()
	if r.Size != Letter || r.Orientation != Landscape || r.Mode != Print {
		t.Errorf("resolved = %+v, want Letter landscape print", r)
	}
	if r.Scale != 0.5 {
		t.Errorf("scale = %v, want 0.5", r.Scale)
	}
	if r.Margin.Right != 3 {
		t.Errorf("margin right = %v, want 3", r.Margin.Right)
	}
}

func TestViewport_A4(t *testing.T) {
	w, h := (&PageConfig{Size: A4}).viewport()
	if w != 794 || h != 1123 {
		t.Errorf("A4 viewport = %dx%d, want 794x1123", w, h)
	}
	w, h = (&PageConfig{Size: A4, Orientation: Landscape}).viewport()
	if w != 1123 || h != 794 {
		t.Errorf("A4 landscape viewport = %dx%d, want 1123x794", w, h)
	}
}

func TestPaperInches(t *testing.T) {
	w, h := (&PageConfig{Size: A4}).paperInches()
	if !almostEqual(w, 8.267, 0.01) || !almostEqual(h, 11.693, 0.01) {
		t.Errorf("A4 = %vx%v in, want ~8.267x11.693", w, h)
	}
	w, h = (&PageConfig{Size: A4, Orientation: Landscape}).paperInches()
	if !almostEqual(w, 11.693, 0.01) || !almostEqual(h, 8.267, 0.01) {
		t.Errorf("A4 landscape = %vx%v in, want swapped", w, h)
	}
}

func TestMarginInches(t *testing.T) {
	pc := &PageConfig{Margin: Margin{Top: 2.54, Right: 5.08, Bottom: 2.54, Left: 5.08}}
	top, right, bottom, left := pc.marginInches()
	if !almostEqual(top, 1.0, 0.001) || !almostEqual(bottom, 1.0, 0.001) {
		t.Errorf("top/bottom = %v/%v, want 1.0", top, bottom)
	}
	if !almostEqual(right, 2.0, 0.001) || !almostEqual(left, 2.0, 0.001) {
		t.Errorf("right/left = %v/%v, want 2.0", right, left)
	}
}

func TestPageSizeByName(t *testing.T) {
	tests := []struct {
		name string
		want PageSize
		ok   bool
	}{
		{"A4", A4, true},
		{"", A4, true},
		{"letter", Letter, true},
		{"US Letter", Letter, true},
		{"legal", Legal, true},
		{"tabloid", PageSize{}, false},
	}
	for _, tt := range tests {
		got, ok := PageSizeByName(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PageSizeByName(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
