package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		flags   buildFlags
		asJSON  bool
		showTop int
	)

	cmd := &cobra.Command{
		Use:   "stats [snapshot.json|mongodb://...]",
		Short: "Print user, server and connection counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), cmd.OutOrStdout(), args[0], flags, asJSON, showTop)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print stats as JSON")
	cmd.Flags().IntVar(&showTop, "top", 5, "list the N largest servers")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, w io.Writer, loc string, flags buildFlags, asJSON bool, top int) error {
	_, res, closeFn, err := c.build(ctx, loc, flags)
	if err != nil {
		return err
	}
	defer closeFn()

	stats := res.Model.Stats()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	p := newPrinter(w)
	p.field("Source", res.Source)
	p.field("Users", StyleNumber.Render(fmt.Sprint(stats.Users)))
	p.field("Servers", StyleNumber.Render(fmt.Sprint(stats.Servers)))
	p.field("Connections", StyleNumber.Render(fmt.Sprint(stats.Connections)))
	p.modelSummary(stats.Nodes, stats.Edges, res.CacheHit)

	adj := res.Model.Adjacency()
	groups := adj.AllGroups()
	sort.SliceStable(groups, func(i, j int) bool {
		return adj.MemberCount(groups[i]) > adj.MemberCount(groups[j])
	})
	if top > len(groups) {
		top = len(groups)
	}
	if top > 0 {
		p.title("Largest servers")
		for _, g := range groups[:top] {
			p.field(g, StyleDim.Render(plural(adj.MemberCount(g), "member")))
		}
	}
	return nil
}
