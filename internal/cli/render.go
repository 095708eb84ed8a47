package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/pipeline"
	"github.com/matzehuels/mutuals/pkg/selection"
)

// selectFlags choose the node drawn as selected.
type selectFlags struct {
	id   string
	kind string
}

func (f *selectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "select", "", "node to select: element id or entity id")
	cmd.Flags().StringVar(&f.kind, "kind", "", "kind of the selected node: user, server, me (aliases person, group, self)")
}

// state applies the selection to a fresh Idle state.
func (f selectFlags) state(m *graph.Model) (selection.State, error) {
	if f.id == "" {
		if f.kind != "" {
			return selection.State{}, errors.New(errors.ErrCodeInvalidInput, "--kind needs --select")
		}
		return selection.Initial(), nil
	}
	var kind graph.Kind
	if f.kind != "" {
		k, err := graph.ParseKind(f.kind)
		if err != nil {
			return selection.State{}, err
		}
		kind = k
	}
	return selection.Transition(m, selection.Initial(), selection.Tap{ID: f.id, Kind: kind})
}

// renderCommand creates the render command for static images.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      buildFlags
		sel        selectFlags
		formatsStr string
		output     string
		opts       pipeline.RenderOptions
	)

	cmd := &cobra.Command{
		Use:   "render [snapshot.json|mongodb://...]",
		Short: "Render the graph to SVG, PNG, PDF or JSON",
		Long: `Render the graph to SVG, PNG, PDF or JSON.

With --select the image shows that node's neighborhood highlighted and
everything else dimmed, exactly as the viewer would after a tap.

Rendered artifacts are cached locally for faster subsequent runs.`,
		Example: `  mutuals render snapshot.json
  mutuals render snapshot.json --select "Gaming Hub" --kind server -f svg,png -o hub`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = pipeline.ParseFormats(formatsStr)
			opts.SetDefaults()
			if err := opts.Validate(); err != nil {
				return err
			}
			if output != "" {
				if err := errors.ValidateOutputPath(output); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), args[0], flags, sel, opts, output)
		},
	}

	flags.register(cmd)
	sel.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show connection counts in node labels")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background color (default transparent)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG scale factor")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, loc string, flags buildFlags, sel selectFlags, opts pipeline.RenderOptions, output string) error {
	spinner := newSpinnerWithContext(ctx, "Building graph...")
	spinner.Start()

	runner, res, closeFn, err := c.build(ctx, loc, flags)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	defer closeFn()

	state, err := sel.state(res.Model)
	if err != nil {
		spinner.Stop()
		return err
	}

	spinner.Update("Rendering...")
	prog := newProgress(c.Logger)
	artifacts, err := runner.Render(ctx, res, state, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered", "formats", strings.Join(opts.Formats, ","))

	p := newPrinter(spinner.out)
	p.success("Rendered %s", StyleValue.Render(res.Source))
	p.modelSummary(res.Stats.Nodes, res.Stats.Edges, res.CacheHit)

	base := basePath(output, loc)
	for _, format := range opts.Formats {
		path := base + "." + format
		if len(opts.Formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		p.file(path)
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input; a URI input
// yields "mutuals". A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if strings.Contains(input, "://") {
			return appName
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
