// Package layout assigns fixed positions and sizes to the three columns of a
// membership diagram: persons on the left, groups in the middle and the
// viewer's own node on the right.
//
// Placement is deterministic: the same ordered inputs always produce the same
// coordinates. Both columns share one vertical spacing so that rows line up
// where the column lengths allow, and each column is centred on the canvas.
package layout

import (
	"math"
	"unicode/utf8"
)

// Kind selects the per-kind font size and height.
type Kind int

const (
	KindPerson Kind = iota
	KindGroup
	KindSelf
)

// Size and text constants.
const (
	// CharWidthRatio approximates the average glyph width as a fraction of the font size.
	CharWidthRatio = 0.6
	// LabelPadding is the horizontal padding added around a label.
	LabelPadding = 40.0
	// MinWidth is the narrowest node box.
	MinWidth = 80.0
)

// metrics holds the per-kind lookup values. Font size and height both
// increase from person to group to self.
var metrics = [...]struct {
	fontSize float64
	height   float64
}{
	KindPerson: {fontSize: 11, height: 40},
	KindGroup:  {fontSize: 12, height: 50},
	KindSelf:   {fontSize: 16, height: 60},
}

// FontSize returns the label font size for k.
func FontSize(k Kind) float64 { return metrics[k].fontSize }

// TextWidth returns the estimated box width for label at fontSize.
func TextWidth(label string, fontSize float64) float64 {
	w := float64(utf8.RuneCountInString(label))*fontSize*CharWidthRatio + LabelPadding
	return math.Max(w, MinWidth)
}

// Size returns the node box for label rendered as kind k.
func Size(label string, k Kind) (width, height float64) {
	m := metrics[k]
	return TextWidth(label, m.fontSize), m.height
}

// Point is a 2D position in diagram coordinates (y grows downward).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Options controls column placement.
type Options struct {
	PersonX float64 // x of the person column
	GroupX  float64 // x of the group column
	SelfX   float64 // x of the self node
	SelfY   float64 // y of the self node

	// MinSpacing is the smallest vertical gap between rows.
	MinSpacing float64
	// SpreadHeight is divided by the larger column length to get the spacing.
	SpreadHeight float64
	// CanvasHeight is the height each column is centred on.
	CanvasHeight float64
}

// DefaultOptions returns the standard three-column geometry.
func DefaultOptions() Options {
	return Options{
		PersonX:      -500,
		GroupX:       600,
		SelfX:        1100,
		SelfY:        500,
		MinSpacing:   70,
		SpreadHeight: 800,
		CanvasHeight: 1200,
	}
}

// withDefaults fills zero-valued fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinSpacing <= 0 {
		o.MinSpacing = d.MinSpacing
	}
	if o.SpreadHeight <= 0 {
		o.SpreadHeight = d.SpreadHeight
	}
	if o.CanvasHeight <= 0 {
		o.CanvasHeight = d.CanvasHeight
	}
	// Column positions only default together; a zero x is a legitimate column.
	if o.PersonX == 0 && o.GroupX == 0 && o.SelfX == 0 && o.SelfY == 0 {
		o.PersonX, o.GroupX, o.SelfX, o.SelfY = d.PersonX, d.GroupX, d.SelfX, d.SelfY
	}
	return o
}

// Result holds the computed positions.
type Result struct {
	Spacing float64
	Persons []Point // index-aligned with the persons passed to Compute
	Groups  []Point // index-aligned with the groups passed to Compute
	Self    Point
}

// Spacing returns the shared row spacing for a diagram whose longest column
// has n entries. n of zero is treated as one.
func Spacing(n int, opts Options) float64 {
	opts = opts.withDefaults()
	return math.Max(opts.MinSpacing, opts.SpreadHeight/float64(max(1, n)))
}

// Compute places nPersons persons and nGroups groups. An empty column simply
// yields no points.
func Compute(nPersons, nGroups int, opts Options) Result {
	opts = opts.withDefaults()
	spacing := Spacing(max(nPersons, nGroups), opts)
	return Result{
		Spacing: spacing,
		Persons: column(nPersons, opts.PersonX, spacing, opts.CanvasHeight),
		Groups:  column(nGroups, opts.GroupX, spacing, opts.CanvasHeight),
		Self:    Point{X: opts.SelfX, Y: opts.SelfY},
	}
}

func column(n int, x, spacing, canvas float64) []Point {
	if n == 0 {
		return nil
	}
	start := (canvas - float64(n-1)*spacing) / 2
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: x, Y: start + float64(i)*spacing}
	}
	return pts
}
