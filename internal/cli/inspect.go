package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/layout"
	"github.com/matzehuels/erdlayout/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		asJSON bool
		opts   pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "inspect [diagram.json|-]",
		Short: "Show how a diagram is classified and ranked",
		Long: `Show how a diagram is classified and ranked, without writing anything.

Prints node counts per role, attribute ownership, the entity rank bands,
and which nodes were staged outside the main drawing or left unplaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], opts, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject duplicate ids and dangling edges")

	return cmd
}

// summary is the machine-readable form of an inspection.
type summary struct {
	Entities      int        `json:"entities"`
	Relationships int        `json:"relationships"`
	Attributes    int        `json:"attributes"`
	Isas          int        `json:"isas"`
	Unknown       int        `json:"unknown"`
	Edges         int        `json:"edges"`
	Bands         [][]string `json:"bands"`
	Staged        []string   `json:"staged"`
	Unplaced      []string   `json:"unplaced"`
	Width         float64    `json:"width"`
	Height        float64    `json:"height"`
}

func summarize(res *pipeline.Result) summary {
	lr := res.Layout
	cl := lr.Classification
	s := summary{
		Entities:      len(cl.Entities),
		Relationships: len(cl.Relationships),
		Attributes:    len(cl.Attributes),
		Isas:          len(cl.Isas),
		Unknown:       len(cl.Unknown),
		Edges:         res.Stats.EdgeCount,
		Bands:         lr.Bands,
		Staged:        lr.Staged,
		Unplaced:      lr.Unplaced,
	}
	if b, ok := lr.Extent(); ok {
		s.Width, s.Height = b.Width(), b.Height()
	}
	return s
}

func (c *CLI) runInspect(ctx context.Context, input string, opts pipeline.Options, asJSON bool) error {
	runner := c.newRunner()
	d, err := runner.Load(ctx, input)
	if err != nil {
		return err
	}
	res, err := runner.Layout(ctx, d, opts)
	if err != nil {
		return err
	}

	s := summarize(res)
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	cl := res.Layout.Classification
	fmt.Fprintln(out, StyleTitle.Render("Roles"))
	printTable([]string{"Role", "Nodes", "Detail"}, [][]string{
		{"entity", strconv.Itoa(s.Entities), ownership(cl.EntityAttributes, "attributes")},
		{"relationship", strconv.Itoa(s.Relationships), ownership(cl.RelationshipEntities, "participants")},
		{"attribute", strconv.Itoa(s.Attributes), ownedCount(cl)},
		{"isa", strconv.Itoa(s.Isas), ""},
		{"unknown", strconv.Itoa(s.Unknown), ""},
	})

	if len(s.Bands) > 0 {
		fmt.Fprintln(out, StyleTitle.Render("Ranks"))
		rows := make([][]string, len(s.Bands))
		for i, band := range s.Bands {
			rows[i] = []string{strconv.Itoa(i), strconv.Itoa(len(band)), truncateList(band, 8)}
		}
		printTable([]string{"Rank", "Entities", "Ids"}, rows)
	}

	printKeyValue("Extent", fmt.Sprintf("%.0f × %.0f", s.Width, s.Height))
	printKeyValue("Staged", orNone(truncateList(s.Staged, 12)))
	printKeyValue("Unplaced", orNone(truncateList(s.Unplaced, 12)))
	return nil
}

// ownership describes how many items an owner map holds in total.
func ownership(m map[string][]string, what string) string {
	total := 0
	for _, v := range m {
		total += len(v)
	}
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("%d %s", total, what)
}

func ownedCount(cl *layout.Classification) string {
	orphans := 0
	for _, id := range cl.Attributes {
		if !cl.Owned(id) {
			orphans++
		}
	}
	if orphans == 0 {
		return ""
	}
	return fmt.Sprintf("%d orphaned", orphans)
}

func truncateList(ids []string, n int) string {
	if len(ids) <= n {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:n], ", ") + fmt.Sprintf(", … (+%d)", len(ids)-n)
}

func orNone(s string) string {
	if s == "" {
		return StyleDim.Render("none")
	}
	return s
}
