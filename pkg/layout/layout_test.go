package layout

import (
	"math"
	"testing"
)

func TestTextWidth(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		fontSize float64
		want     float64
	}{
		{"empty clamps to min", "", 12, MinWidth},
		{"short clamps to min", "ab", 12, MinWidth},
		{"long", "abcdefghij", 12, 10*12*0.6 + 40},
		{"runes not bytes", "ééééééééé", 12, 9*12*0.6 + 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TextWidth(tt.label, tt.fontSize); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TextWidth(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestSizeKindOrdering(t *testing.T) {
	label := "a fairly long label"
	pw, ph := Size(label, KindPerson)
	gw, gh := Size(label, KindGroup)
	sw, sh := Size(label, KindSelf)

	if !(ph < gh && gh < sh) {
		t.Errorf("heights not increasing: %v %v %v", ph, gh, sh)
	}
	if !(FontSize(KindPerson) < FontSize(KindGroup) && FontSize(KindGroup) < FontSize(KindSelf)) {
		t.Error("font sizes not increasing person < group < self")
	}
	if !(pw < gw && gw < sw) {
		t.Errorf("widths for the same label not increasing: %v %v %v", pw, gw, sw)
	}
}

func TestSpacing(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		n    int
		want float64
	}{
		{0, 800},
		{1, 800},
		{4, 200},
		{11, 800.0 / 11},
		{12, 70},
		{100, 70},
	}
	for _, tt := range tests {
		if got := Spacing(tt.n, opts); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Spacing(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestComputeCentersColumns(t *testing.T) {
	res := Compute(3, 2, DefaultOptions())

	// spacing = max(70, 800/3)
	wantSpacing := 800.0 / 3
	if math.Abs(res.Spacing-wantSpacing) > 1e-9 {
		t.Fatalf("Spacing = %v, want %v", res.Spacing, wantSpacing)
	}
	if len(res.Persons) != 3 || len(res.Groups) != 2 {
		t.Fatalf("got %d persons, %d groups", len(res.Persons), len(res.Groups))
	}

	// persons centred on 1200: first y = (1200 - 2*s) / 2
	if want := (1200 - 2*wantSpacing) / 2; math.Abs(res.Persons[0].Y-want) > 1e-9 {
		t.Errorf("Persons[0].Y = %v, want %v", res.Persons[0].Y, want)
	}
	if want := (1200 - wantSpacing) / 2; math.Abs(res.Groups[0].Y-want) > 1e-9 {
		t.Errorf("Groups[0].Y = %v, want %v", res.Groups[0].Y, want)
	}
	for i := 1; i < len(res.Persons); i++ {
		if d := res.Persons[i].Y - res.Persons[i-1].Y; math.Abs(d-wantSpacing) > 1e-9 {
			t.Errorf("person row gap %d = %v, want %v", i, d, wantSpacing)
		}
	}

	// column midpoints coincide
	pm := (res.Persons[0].Y + res.Persons[2].Y) / 2
	gm := (res.Groups[0].Y + res.Groups[1].Y) / 2
	if math.Abs(pm-gm) > 1e-9 || math.Abs(pm-600) > 1e-9 {
		t.Errorf("column midpoints = %v, %v, want 600", pm, gm)
	}

	for _, p := range res.Persons {
		if p.X != -500 {
			t.Errorf("person x = %v, want -500", p.X)
		}
	}
	for _, g := range res.Groups {
		if g.X != 600 {
			t.Errorf("group x = %v, want 600", g.X)
		}
	}
	if res.Self != (Point{X: 1100, Y: 500}) {
		t.Errorf("Self = %+v, want {1100 500}", res.Self)
	}
}

func TestComputeEmptyColumns(t *testing.T) {
	res := Compute(0, 0, DefaultOptions())
	if res.Persons != nil || res.Groups != nil {
		t.Errorf("expected empty columns, got %v %v", res.Persons, res.Groups)
	}
	if math.IsInf(res.Spacing, 0) || math.IsNaN(res.Spacing) {
		t.Errorf("Spacing = %v, want finite", res.Spacing)
	}

	res = Compute(2, 0, DefaultOptions())
	if len(res.Persons) != 2 || res.Groups != nil {
		t.Errorf("persons only: got %d persons, groups %v", len(res.Persons), res.Groups)
	}
}

func TestComputeZeroOptionsUseDefaults(t *testing.T) {
	got := Compute(2, 2, Options{})
	want := Compute(2, 2, DefaultOptions())
	if got.Spacing != want.Spacing || got.Self != want.Self || got.Persons[1] != want.Persons[1] {
		t.Errorf("zero Options = %+v, want %+v", got, want)
	}
}

func TestComputeCustomSpacing(t *testing.T) {
	opts := DefaultOptions()
	opts.MinSpacing = 10
	opts.SpreadHeight = 100
	opts.CanvasHeight = 100

	res := Compute(5, 1, opts)
	if res.Spacing != 20 {
		t.Errorf("Spacing = %v, want 20", res.Spacing)
	}
	if res.Persons[0].Y != 10 {
		t.Errorf("Persons[0].Y = %v, want 10", res.Persons[0].Y)
	}
	if res.Groups[0].Y != 50 {
		t.Errorf("Groups[0].Y = %v, want 50", res.Groups[0].Y)
	}
}
