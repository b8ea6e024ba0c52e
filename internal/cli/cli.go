package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/buildinfo"
	"github.com/matzehuels/erdlayout/pkg/cache"
	"github.com/matzehuels/erdlayout/pkg/pipeline"
	"github.com/matzehuels/erdlayout/pkg/schema"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "erdlayout"

	// stdio is the path argument meaning stdin or stdout.
	stdio = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The configuration file is read before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "erdlayout arranges entity-relationship diagrams",
		Long: `erdlayout computes readable positions for the nodes of an entity-relationship
diagram: entities in ranked bands, relationships between their participants,
attributes in grids beneath their owners and inheritance nodes beside their
parents. Every field other than node positions is passed through unchanged.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/erdlayout/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sqlCommand())
	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// newSchemaClient creates a client for the configured schema service.
func (c *CLI) newSchemaClient(noCache bool) (*schema.Client, error) {
	svc := c.config.Service
	store, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return schema.NewClient(schema.Config{
		BaseURL:  svc.URL,
		Token:    svc.Token,
		Timeout:  svc.Timeout.Duration,
		Cache:    store,
		CacheTTL: c.config.Cache.TTL.Duration,
		Logger:   c.Logger,
	})
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("response cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the
// user cache directory (~/.cache/erdlayout/ on Linux).
func (c *CLI) cacheDir() (string, error) {
	if c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// outputPath derives the output file from the input: "in.json" becomes
// "in<suffix>". Reading stdin means writing stdout.
func outputPath(input, output, suffix string) string {
	if output != "" {
		return output
	}
	if input == stdio {
		return stdio
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// writeOutput writes data to path, or to stdout for "-".
func writeOutput(path string, data []byte) error {
	if path == stdio {
		_, err := out.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
