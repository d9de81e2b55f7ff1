package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"candedit/internal/cande"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Summarise a deck: counts, extents, materials, steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load(args[0])
			if err != nil {
				return err
			}
			m := d.Model
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			b := m.Bounds()
			fmt.Fprintf(w, "nodes\t%d\n", m.NodeCount())
			fmt.Fprintf(w, "elements\t%d\n", m.ElementCount())
			fmt.Fprintf(w, "materials\t%d\n", m.MaterialCount())
			fmt.Fprintf(w, "max step\t%d\n", m.MaxStep())
			if b.Valid() {
				fmt.Fprintf(w, "extents\tx %.3f .. %.3f\ty %.3f .. %.3f\n", b.MinX, b.MaxX, b.MinY, b.MaxY)
			}
			fmt.Fprintln(w)

			fmt.Fprintln(w, "TABLE\tID\tCODE\tNAME\tDENSITY\tFRICTION\tANGLE")
			for _, mat := range m.Materials() {
				if mat.Kind == cande.MaterialInterface {
					fmt.Fprintf(w, "%s\t%d\t%d\t%s\t\t%.3f\t%.3f\n", mat.Kind, mat.ID, mat.Code, mat.Name, mat.Friction, mat.Angle)
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%g\t\t\n", mat.Kind, mat.ID, mat.Code, mat.Name, mat.Density)
			}
			fmt.Fprintln(w)

			kinds := []cande.Kind{cande.KindBeam, cande.KindSoil, cande.KindInterface}
			fmt.Fprint(w, "STEP")
			for _, k := range kinds {
				fmt.Fprintf(w, "\t%s", k)
			}
			fmt.Fprintln(w)
			for s := 1; s <= m.MaxStep(); s++ {
				fmt.Fprintf(w, "%d", s)
				for _, k := range kinds {
					fmt.Fprintf(w, "\t%d", len(m.ElementsBy(cande.MatchStep(s), cande.MatchKinds(k))))
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}
}
