package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Faultbox/objatlas/internal/logger"
	"github.com/Faultbox/objatlas/internal/merge"
	"github.com/Faultbox/objatlas/pkg/atlas"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the atlas layout without writing any file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		p := merge.New(cfg)
		p.SetIO(cmd.InOrStdin(), cmd.OutOrStdout())
		plan, err := p.Plan()
		if err != nil {
			return err
		}
		return printPlan(cmd.OutOrStdout(), plan)
	},
}

func printPlan(out io.Writer, plan *merge.Plan) error {
	l := plan.Layout
	if _, err := fmt.Fprintf(out, "atlas %dx%d, %d images, %d attempts, %.1f%% used\n",
		l.Size, l.Size, len(plan.Packed), l.Attempts, 100*l.Utilization()); err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(w, "material\tsize\trect\timage"); err != nil {
		return err
	}
	packed := make(map[*merge.Material]bool)
	for _, m := range plan.Packed {
		packed[m] = true
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, m.Size(), m.Rect, m.ImagePath); err != nil {
			return err
		}
	}
	used := make(map[*merge.Material]bool)
	for _, m := range plan.Ownership.Used() {
		used[m] = true
	}
	for _, m := range plan.Registry.All() {
		if packed[m] {
			continue
		}
		reason := "unused"
		if used[m] {
			reason = "no map_Kd"
		}
		if _, err := fmt.Fprintf(w, "%s\t-\t-\t(%s)\n", m.Name, reason); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	largest := "-"
	var best atlas.Rect
	for _, r := range l.Free {
		if r.Area() > best.Area() {
			best = r
			largest = r.String()
		}
	}
	if _, err := fmt.Fprintf(out, "free regions: %d, largest %s\n", len(l.Free), largest); err != nil {
		return err
	}
	hits, misses := plan.Loader.Stats()
	_, err := fmt.Fprintf(out, "images: %d decoded, %d cache hits, roots %s\n",
		misses, hits, strings.Join(plan.Loader.Roots(), ", "))
	return err
}
