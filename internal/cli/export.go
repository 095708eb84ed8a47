package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/pipeline"
	"github.com/matzehuels/mutuals/pkg/selection"
)

// exportCommand creates the export command for the element model JSON.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		flags  buildFlags
		sel    selectFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [snapshot.json|mongodb://...]",
		Short: "Export the element model as JSON",
		Long: `Export the element model as JSON.

The output is the renderer contract: one entry per node and edge with its
data fields and preset position, plus summary stats. With --select the
selection output (state, highlight, stylesheet and panel) is included.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], flags, sel, output)
		},
	}

	flags.register(cmd)
	sel.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, loc string, flags buildFlags, sel selectFlags, output string) error {
	_, res, closeFn, err := c.build(ctx, loc, flags)
	if err != nil {
		return err
	}
	defer closeFn()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if sel.id == "" && sel.kind == "" {
		if err := graph.WriteElements(res.Model, w); err != nil {
			return err
		}
	} else {
		state, err := sel.state(res.Model)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(pipeline.NewDocument(res.Model, selection.Compute(res.Model, state))); err != nil {
			return err
		}
	}

	if output != "" {
		p := newPrinter(os.Stderr)
		p.success("Exported %s", plural(res.Stats.Nodes+res.Stats.Edges, "element"))
		p.file(output)
	}
	return nil
}
