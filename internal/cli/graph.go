package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/structio/pkg/pipeline"
)

// graphCommand renders the block link graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output string
		opts   pipeline.GraphOptions
	)

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Render the connection graph of a structure as SVG or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			spin := startSpinner(cmd.Context(), "Rendering graph")
			out, hit, err := runner.RenderGraph(cmd.Context(), data, opts)
			if err != nil {
				spin.StopWithError("Render failed")
				return err
			}
			spin.Stop()

			if output == "" {
				output = replaceExt(args[0], "."+opts.Format)
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return err
			}
			status := iconFresh
			if hit {
				status = iconCached
			}
			printSuccess("Rendered %s graph (%s)", opts.Format, status)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: input with format extension)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", pipeline.FormatSVG, fmt.Sprintf("output format: %s, %s", pipeline.FormatSVG, pipeline.FormatDOT))
	cmd.Flags().BoolVar(&opts.Loads, "loads", true, "draw load links")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include positions and enable state in labels")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached renders")
	return cmd
}
