package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/schema"
)

// sqlCommand creates the sql command.
func (c *CLI) sqlCommand() *cobra.Command {
	var (
		svc         serviceFlags
		dialect     string
		validate    bool
		includeDrop bool
		output      string
		dsdOutput   string
	)

	cmd := &cobra.Command{
		Use:   "sql [diagram.json|-]",
		Short: "Generate SQL DDL through the schema service",
		Long: `Generate SQL DDL through the schema service.

The diagram is converted into tables (a data structure diagram) and then
into CREATE TABLE statements for the chosen dialect. Without a diagram
argument the project's saved diagram is used.

Dialects: postgresql, mysql, mssql, sqlite.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dialect == "" {
				dialect = c.config.Service.Dialect
			}
			req := schema.SQLRequest{
				ProjectID:   c.projectID(svc),
				Dialect:     dialect,
				Validate:    validate,
				IncludeDrop: includeDrop,
			}
			return c.runSQL(cmd.Context(), args, req, svc, output, dsdOutput)
		},
	}

	svc.register(cmd)
	cmd.Flags().StringVarP(&dialect, "dialect", "d", "", "SQL dialect (default from config, postgresql)")
	cmd.Flags().BoolVar(&validate, "validate", true, "run schema validation")
	cmd.Flags().BoolVar(&includeDrop, "include-drop", false, "emit DROP TABLE statements first")
	cmd.Flags().StringVarP(&output, "output", "o", stdio, "write SQL to this file")
	cmd.Flags().StringVar(&dsdOutput, "dsd", "", "also write the derived tables as JSON to this file")

	return cmd
}

func (c *CLI) runSQL(ctx context.Context, args []string, req schema.SQLRequest, svc serviceFlags, output, dsdOutput string) error {
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
	res, err := withSpinner(ctx, "Generating SQL...", func() (*schema.SQLResult, error) {
		return client.GenerateSQL(ctx, req, svc.refresh)
	})
	if err != nil {
		return err
	}
	prog.done("Generated SQL")

	if err := writeOutput(output, []byte(res.SQL)); err != nil {
		return fmt.Errorf("write sql %s: %w", output, err)
	}
	if dsdOutput != "" {
		data, err := json.MarshalIndent(res.DSD, "", "  ")
		if err != nil {
			return fmt.Errorf("encode dsd: %w", err)
		}
		if err := writeOutput(dsdOutput, data); err != nil {
			return fmt.Errorf("write dsd %s: %w", dsdOutput, err)
		}
	}

	if output == stdio {
		if v := res.Validation; v != nil && !v.Valid {
			c.Logger.Warn("schema validation failed", "errors", v.Errors, "warnings", v.Warnings, "summary", v.Summary)
		}
		return nil
	}

	printSuccess("SQL generated for %s", res.Dialect)
	printFile(output)
	if dsdOutput != "" {
		printFile(dsdOutput)
	}
	printValidation(res.Validation)
	return nil
}

// printValidation reports the service's validation findings.
func printValidation(v *schema.ValidationReport) {
	if v == nil {
		return
	}
	if v.Valid && len(v.Issues) == 0 {
		printSuccess("Schema is valid")
		return
	}
	printStats([]stat{{v.Errors, "errors"}, {v.Warnings, "warnings"}, {v.Infos, "infos"}}, nil)
	rows := make([][]string, 0, len(v.Issues))
	for _, issue := range v.Issues {
		where := strings.Trim(issue.Table+"."+issue.Column, ".")
		rows = append(rows, []string{issue.Severity, where, issue.Message})
	}
	if len(rows) > 0 {
		printTable([]string{"Severity", "Where", "Message"}, rows)
	}
	if !v.Valid {
		printWarning("%s", v.Summary)
	}
}
