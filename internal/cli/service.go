package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/diagram"
)

// serviceFlags are shared by the commands that call the schema service.
type serviceFlags struct {
	project string
	noCache bool
	refresh bool
}

func (f *serviceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "project id on the schema service (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "do not read or write the response cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached responses and fetch fresh ones")
}

// projectID returns the flag value or the configured project.
func (c *CLI) projectID(f serviceFlags) string {
	if f.project != "" {
		return f.project
	}
	return c.config.Service.Project
}

// loadOptional loads the diagram at args[0], or returns nil when no
// argument is given so the service uses the project's saved diagram.
func (c *CLI) loadOptional(ctx context.Context, args []string) (*diagram.Diagram, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return c.newRunner().Load(ctx, args[0])
}
