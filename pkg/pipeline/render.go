package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/render/nodelink"
	"github.com/matzehuels/mutuals/pkg/selection"
)

// Document is the JSON artifact: the renderer contract plus the current
// selection output.
type Document struct {
	graph.Document
	Selection selection.Output `json:"selection"`
}

// NewDocument assembles the JSON artifact for a model and selection output.
func NewDocument(m *graph.Model, out selection.Output) Document {
	return Document{
		Document:  graph.Document{Elements: m.Elements(), Stats: m.Stats()},
		Selection: out,
	}
}

func renderFormat(ctx context.Context, m *graph.Model, out selection.Output, format string, opts RenderOptions) ([]byte, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(NewDocument(m, out), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return data, nil
	}

	dot := nodelink.ToDOT(m, out.Stylesheet, nodelink.Options{
		Detailed:   opts.Detailed,
		Background: opts.Background,
	})
	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.Scale)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "format %q", format)
}
