package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/schema"
)

// normalizeCommand creates the normalize command.
func (c *CLI) normalizeCommand() *cobra.Command {
	var (
		svc    serviceFlags
		form   string
		fds    []string
		fdFile string
		output string
	)

	cmd := &cobra.Command{
		Use:   "normalize [diagram.json|-]",
		Short: "Normalize the derived tables through the schema service",
		Long: `Normalize the tables derived from a diagram to BCNF or 3NF.

Functional dependencies are given with --fd (repeatable) or --fd-file, one
per line or separated by semicolons:

  isbn -> title, year
  author_id -> author_name
  AB -> C              (single-letter attributes)

Without a diagram argument the project's saved diagram is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := readDependencies(fds, fdFile)
			if err != nil {
				return err
			}
			req := schema.NormalizeRequest{
				ProjectID:    c.projectID(svc),
				NormalForm:   form,
				Dependencies: deps,
			}
			return c.runNormalize(cmd.Context(), args, req, svc, output)
		},
	}

	svc.register(cmd)
	cmd.Flags().StringVarP(&form, "form", "f", "BCNF", "target normal form: BCNF, 3NF")
	cmd.Flags().StringArrayVar(&fds, "fd", nil, `functional dependency, e.g. "a, b -> c"`)
	cmd.Flags().StringVar(&fdFile, "fd-file", "", "read functional dependencies from a file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the normalized tables as JSON to this file")

	return cmd
}

// readDependencies parses dependencies from flags and an optional file.
func readDependencies(fds []string, file string) ([]schema.Dependency, error) {
	text := strings.Join(fds, "\n")
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot read %s", file)
		}
		text += "\n" + string(data)
	}
	return schema.ParseDependenciesStrict(text)
}

func (c *CLI) runNormalize(ctx context.Context, args []string, req schema.NormalizeRequest, svc serviceFlags, output string) error {
	if err := c.config.requireService(); err != nil {
		return err
	}
	d, err := c.loadOptional(ctx, args)
	if err != nil {
		return err
	}
	req.Diagram = d

	client, err := c.newSchemaClient(svc.noCache)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res, err := withSpinner(ctx, "Normalizing...", func() (*schema.NormalizeResult, error) {
		return client.Normalize(ctx, req, svc.refresh)
	})
	if err != nil {
		return err
	}
	prog.done("Normalized to " + res.NormalForm)

	if output != "" {
		data, err := json.MarshalIndent(res.Normalized, "", "  ")
		if err != nil {
			return fmt.Errorf("encode tables: %w", err)
		}
		if err := writeOutput(output, data); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
	}
	printNormalization(res)
	if output != "" && output != stdio {
		printFile(output)
	}
	return nil
}

func printNormalization(res *schema.NormalizeResult) {
	if res.AlreadyNormalized {
		printSuccess("Already in %s", res.NormalForm)
		return
	}

	if len(res.Violations) > 0 {
		fmt.Fprintln(out, StyleTitle.Render("Violations"))
		rows := make([][]string, len(res.Violations))
		for i, v := range res.Violations {
			rows[i] = []string{v.Table, v.FD}
		}
		printTable([]string{"Table", "Dependency"}, rows)
	}

	if len(res.Changes) > 0 {
		fmt.Fprintln(out, StyleTitle.Render("Changes"))
		rows := make([][]string, len(res.Changes))
		for i, ch := range res.Changes {
			rows[i] = []string{ch.OriginalTable, strings.Join(ch.NewTables, ", "), ch.Reason}
		}
		printTable([]string{"Table", "Split into", "Reason"}, rows)
	}

	before, after := 0, 0
	if res.Original != nil {
		before = len(res.Original.Tables)
	}
	if res.Normalized != nil {
		after = len(res.Normalized.Tables)
	}
	printSuccess("Normalized to %s: %d tables became %d", res.NormalForm, before, after)
}
