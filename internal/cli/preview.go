package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/pipeline"
	"github.com/matzehuels/erdlayout/pkg/render"
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		output  string
		arrange bool
		opts    render.Options
	)

	cmd := &cobra.Command{
		Use:   "preview [diagram.json|-]",
		Short: "Render a diagram to SVG at its stored positions",
		Long: `Render a diagram to SVG with every node pinned at its stored position.

This is a debugging aid for the layout engine: nodes are drawn with their
layout footprint and role-specific shapes. Pass --arrange to lay the
diagram out first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], output, arrange, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().BoolVar(&arrange, "arrange", false, "run the layout engine before rendering")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label nodes with id and role")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input, output string, arrange bool, opts render.Options) error {
	runner := c.newRunner()
	d, err := runner.Load(ctx, input)
	if err != nil {
		return err
	}
	if arrange {
		res, err := runner.Layout(ctx, d, pipeline.Options{})
		if err != nil {
			return err
		}
		d = res.Diagram
	}

	prog := newProgress(c.Logger)
	svg, err := runner.Preview(ctx, d, opts)
	if err != nil {
		return err
	}
	prog.done("Rendered preview")

	path := outputPath(input, output, ".svg")
	if err := writeOutput(path, svg); err != nil {
		return fmt.Errorf("write preview %s: %w", path, err)
	}
	if path != stdio {
		printSuccess("Preview written")
		printFile(path)
	}
	return nil
}
