package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"candedit/internal/cande"
	"candedit/internal/synth"
)

// pick resolves an explicit id list, or else the elements matching filters.
// It fails when neither was given so a missing flag never means "all".
func pick(m *cande.Model, ids []int, filters []cande.Filter) ([]cande.ElementID, error) {
	if len(ids) > 0 {
		out := make([]cande.ElementID, len(ids))
		for i, id := range ids {
			out[i] = cande.ElementID(id)
		}
		return out, nil
	}
	if len(filters) == 0 {
		return nil, cande.Validationf("no elements selected: give ids or a filter")
	}
	return m.ElementsBy(filters...), nil
}

func newInterfacesCmd(a *app) *cobra.Command {
	var (
		friction float64
		beams    []int
		material int
		step     int
		output   string
	)
	cmd := &cobra.Command{
		Use:   "interfaces FILE",
		Short: "Create interface elements between beams and the soil around them",
		Long: `Create one interface element for every junction of a selected beam and a
soil element sharing one of its nodes. Junctions that already have an
interface are left alone, so running the command twice adds nothing.

Examples:
  candedit interfaces culvert.cid --friction 0.3 --beams 101,102
  candedit interfaces culvert.cid --friction 0.3 --material 4 -o out.cid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load(args[0])
			if err != nil {
				return err
			}
			m := d.Model
			var filters []cande.Filter
			if cmd.Flags().Changed("material") {
				filters = append(filters, cande.MatchMaterial(cande.MaterialID(material)))
			}
			if cmd.Flags().Changed("step") {
				filters = append(filters, cande.MatchStep(step))
			}
			if len(filters) > 0 {
				filters = append(filters, cande.MatchKinds(cande.KindBeam))
			}
			ids, err := pick(m, beams, filters)
			if err != nil {
				return err
			}

			before := m.MaterialCount()
			created, err := synth.New(a.log).CreateInterfaces(m, ids, friction)
			if err != nil {
				return err
			}
			a.log.Info("interfaces created", slog.Int("beams", len(ids)), slog.Int("interfaces", len(created)))
			fmt.Fprintf(cmd.OutOrStdout(), "created %d interfaces, %d new interface materials\n",
				len(created), m.MaterialCount()-before)
			if len(created) == 0 {
				return nil
			}
			return a.save(cmd, d, args[0], output)
		},
	}
	cmd.Flags().Float64Var(&friction, "friction", 0, "interface friction coefficient in [0, 1] [required]")
	cmd.Flags().IntSliceVar(&beams, "beams", nil, "beam element ids")
	cmd.Flags().IntVar(&material, "material", 0, "use every beam with this material")
	cmd.Flags().IntVar(&step, "step", 0, "use every beam in this step")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write here instead of overwriting FILE")
	cmd.MarkFlagRequired("friction")
	cmd.MarkFlagsMutuallyExclusive("beams", "material")
	cmd.MarkFlagsMutuallyExclusive("beams", "step")
	return cmd
}

func newAssignCmd(a *app) *cobra.Command {
	var (
		ids      []int
		selMat   int
		selStep  int
		kind     string
		material int
		step     int
		output   string
	)
	cmd := &cobra.Command{
		Use:   "assign FILE",
		Short: "Set the material and/or step of selected elements",
		Long: `Set the material and/or step of the selected elements. Interfaces take
their step from the soil they bridge, so changing a soil element's step
also moves its interfaces.

Examples:
  candedit assign culvert.cid --ids 1,2,3 --step 4
  candedit assign culvert.cid --select-material 2 --kind 2D --material 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []cande.AssignOption
			if cmd.Flags().Changed("material") {
				opts = append(opts, cande.SetMaterial(cande.MaterialID(material)))
			}
			if cmd.Flags().Changed("step") {
				opts = append(opts, cande.SetStep(step))
			}
			if len(opts) == 0 {
				return cande.Validationf("nothing to assign: give --material and/or --step")
			}

			d, err := a.load(args[0])
			if err != nil {
				return err
			}
			m := d.Model
			var filters []cande.Filter
			if cmd.Flags().Changed("select-material") {
				filters = append(filters, cande.MatchMaterial(cande.MaterialID(selMat)))
			}
			if cmd.Flags().Changed("select-step") {
				filters = append(filters, cande.MatchStep(selStep))
			}
			if kind != "" {
				k, err := cande.ParseKind(kind)
				if err != nil {
					return err
				}
				filters = append(filters, cande.MatchKinds(k))
			}
			sel, err := pick(m, ids, filters)
			if err != nil {
				return err
			}
			n, err := m.Assign(sel, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d elements\n", n)
			if n == 0 {
				return nil
			}
			return a.save(cmd, d, args[0], output)
		},
	}
	cmd.Flags().IntSliceVar(&ids, "ids", nil, "element ids")
	cmd.Flags().IntVar(&selMat, "select-material", 0, "select elements with this material")
	cmd.Flags().IntVar(&selStep, "select-step", 0, "select elements in this step")
	cmd.Flags().StringVar(&kind, "kind", "", "select elements of this kind (1D, 2D, Interface)")
	cmd.Flags().IntVar(&material, "material", 0, "new material id")
	cmd.Flags().IntVar(&step, "step", 0, "new step number")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write here instead of overwriting FILE")
	cmd.MarkFlagsMutuallyExclusive("ids", "select-material")
	cmd.MarkFlagsMutuallyExclusive("ids", "select-step")
	cmd.MarkFlagsMutuallyExclusive("ids", "kind")
	return cmd
}
