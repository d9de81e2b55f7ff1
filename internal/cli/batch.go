package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"candedit/internal/diagram"
	"candedit/internal/script"
	"candedit/internal/version"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		output  string
		colorBy string
		width   float64
		height  float64
		labels  bool
	)
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Draw the mesh to an image (png, svg, pdf)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			by, err := diagram.ParseColorBy(colorBy)
			if err != nil {
				return err
			}
			d, err := a.load(args[0])
			if err != nil {
				return err
			}
			name, err := diagram.Export(d.Model, output, diagram.Options{
				Title:   filepath.Base(args[0]),
				ColorBy: by,
				Width:   vg.Length(width) * vg.Inch,
				Height:  vg.Length(height) * vg.Inch,
				Labels:  labels,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "image file; the extension picks the format [required]")
	cmd.Flags().StringVar(&colorBy, "color-by", "material", "fill colour by material or step")
	cmd.Flags().Float64Var(&width, "width", 8, "image width in inches")
	cmd.Flags().Float64Var(&height, "height", 6, "image height in inches")
	cmd.Flags().BoolVar(&labels, "labels", false, "print element ids")
	cmd.MarkFlagRequired("output")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var (
		output  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run SCRIPT FILE",
		Short: "Run an editing script against a deck",
		Long: `Run a zygomys script against a deck. The script sees these builtins:

  (select-ids 1 2 3)        (select-material 2)   (select-step 3)
  (select-kind "1D")        (select-all)          (clear-selection)
  (selected-count)          (element-count "2D")
  (assign-material 4)       (assign-step 2)       (create-interfaces 0.3)

Select builtins add to the current selection. The deck is saved only when
the whole script succeeds.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := a.load(args[1])
			if err != nil {
				return err
			}
			r := &script.Runner{Log: a.log, Timeout: timeout}
			res, err := r.Run(cmd.Context(), d.Model, string(src))
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(args[0]), err)
			}
			d.Model = res.Model
			fmt.Fprintf(cmd.OutOrStdout(), "=> %s\nselected %d, created %d interfaces\n",
				res.Value, len(res.Selected), len(res.Created))
			return a.save(cmd, d, args[1], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write here instead of overwriting FILE")
	cmd.Flags().DurationVar(&timeout, "timeout", script.DefaultTimeout, "abort the script after this long")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a deck's references and interface invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load(args[0])
			if err != nil {
				return err
			}
			errs := d.Model.Validate()
			for _, e := range errs {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%s: %d problems", filepath.Base(args[0]), len(errs))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of candedit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			fmt.Fprintln(cmd.OutOrStdout(), "CANDE input deck editor")
		},
	}
}
