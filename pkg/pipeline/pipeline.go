// Package pipeline runs load → build → render for mutuals.
//
// The CLI and the view server both go through a [Runner] so caching, hooks
// and logging behave the same everywhere.
//
// # Stages
//
//  1. Load: read a membership snapshot from a [source.Source]
//  2. Build: normalize it into an adjacency (cached) and assemble the element model
//  3. Render: draw the model with a selection as SVG, PNG, PDF or JSON (cached)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Build(ctx, source.NewFile("snapshot.json"), pipeline.BuildOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	artifacts, err := runner.Render(ctx, res, selection.Initial(), pipeline.RenderOptions{
//	    Formats: []string{pipeline.FormatSVG},
//	})
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/mutuals/pkg/cache"
	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/layout"
	"github.com/matzehuels/mutuals/pkg/membership"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// =============================================================================
// Options
// =============================================================================

// BuildOptions configures the build stage.
type BuildOptions struct {
	// Separator cuts member-id suffixes. Empty means [membership.DefaultSeparator].
	Separator string `json:"separator,omitempty"`

	// KeepSuffixes disables member-id normalization.
	KeepSuffixes bool `json:"keep_suffixes,omitempty"`

	// Layout overrides the column layout; zero fields take defaults.
	Layout layout.Options `json:"layout"`

	// Refresh skips the cache lookup (the result is still stored).
	Refresh bool `json:"refresh,omitempty"`
}

// separator returns the effective separator.
func (o BuildOptions) separator() string {
	switch {
	case o.KeepSuffixes:
		return ""
	case o.Separator == "":
		return membership.DefaultSeparator
	default:
		return o.Separator
	}
}

// Validate checks the options.
func (o BuildOptions) Validate() error {
	return errors.ValidateSeparator(o.separator())
}

// ModelKeyOpts returns the cache key options for the build stage.
func (o BuildOptions) ModelKeyOpts() cache.ModelKeyOpts {
	return cache.ModelKeyOpts{Separator: o.separator()}
}

// RenderOptions configures the render stage.
type RenderOptions struct {
	Formats    []string `json:"formats,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"`   // metric line in node labels
	Background string   `json:"background,omitempty"` // canvas color; empty is transparent
	Scale      float64  `json:"scale,omitempty"`      // PNG scale factor
}

// SetDefaults fills unset render options.
func (o *RenderOptions) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// Validate checks the render options.
func (o *RenderOptions) Validate() error {
	return ValidateFormats(o.Formats)
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o RenderOptions) ArtifactKeyOpts(format string, selected graph.Key) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if !selected.IsZero() {
		opts.Selected = selected.String()
	}
	if o.Detailed || o.Background != "" || (format == FormatPNG && o.Scale != DefaultScale) {
		opts.Format = fmt.Sprintf("%s;detailed=%t;bg=%s;scale=%g", format, o.Detailed, o.Background, o.Scale)
	}
	return opts
}

// =============================================================================
// Results
// =============================================================================

// Result is the output of the build stage.
type Result struct {
	// Source names where the snapshot came from.
	Source string

	// Model is the immutable element model.
	Model *graph.Model

	// SnapshotHash is the hash of the canonical snapshot.
	SnapshotHash string

	// ModelHash identifies the model for artifact cache keys.
	ModelHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the adjacency came from the cache.
	CacheHit bool
}

// Stats contains build statistics.
type Stats struct {
	Groups    int // groups in the raw snapshot
	Persons   int
	Nodes     int
	Edges     int
	LoadTime  time.Duration
	BuildTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
