package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/pipeline"
	"github.com/matzehuels/erdlayout/pkg/render"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		preview string
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [diagram.json|-]",
		Short: "Arrange an entity-relationship diagram",
		Long: `Arrange an entity-relationship diagram.

The input is a diagram in the editor's JSON format (or YAML with a .yaml
extension). The output is the same diagram with new node positions; every
other field is left untouched. Use "-" to read stdin and write stdout.

Entities are ranked by distance from the first entity, relationships sit
between their participants, attributes form grids beneath their owner and
inheritance nodes sit to the right of their parent. Relationships without
entities and orphaned nodes are staged outside the main drawing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, preview, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&preview, "preview", "", "also write an SVG preview to this file")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject duplicate ids and dangling edges")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output, preview string, opts pipeline.Options) error {
	runner := c.newRunner()
	res, err := runner.Execute(ctx, input, opts)
	if err != nil {
		return err
	}

	data, err := pipeline.Encode(res)
	if err != nil {
		return fmt.Errorf("encode diagram: %w", err)
	}
	path := outputPath(input, output, ".layout.json")
	if err := writeOutput(path, data); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	if path == stdio {
		return nil
	}

	printSuccess("Layout complete")
	printFile(path)

	if preview != "" {
		svg, err := runner.Preview(ctx, res.Diagram, render.Options{})
		if err != nil {
			return err
		}
		if err := writeOutput(preview, svg); err != nil {
			return fmt.Errorf("write preview %s: %w", preview, err)
		}
		printFile(preview)
	}

	printStats([]stat{
		{res.Stats.NodeCount, "nodes"},
		{res.Stats.EdgeCount, "edges"},
		{res.Stats.Ranks, "ranks"},
		{res.Stats.Staged, "staged"},
	}, nil)
	if res.Stats.Unplaced > 0 {
		printWarning("%d nodes have an unknown role and kept their position", res.Stats.Unplaced)
	}
	printNewline()
	printNextStep("Inspect", "erdlayout inspect "+input)
	return nil
}
