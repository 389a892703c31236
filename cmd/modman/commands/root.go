// Package commands implements the CLI commands for modman.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/modman/internal/app"
	"go.trai.ch/modman/internal/build"
	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/ui/report"
)

// CLI represents the command line interface for modman.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	onJSON  func()
	onQuiet func()

	paths   app.Paths
	profile string
	json    bool
	quiet   bool
}

// Application represents the application logic interface.
type Application interface {
	Status(ctx context.Context, paths app.Paths, name string) (*app.StatusReport, error)
	Update(ctx context.Context, paths app.Paths, name string, opts app.UpdateOptions) (*app.UpdateReport, error)
	Check(ctx context.Context, paths app.Paths, name, packageID string) (*app.CheckReport, error)
	Watch(ctx context.Context, paths app.Paths, name string, fn func(*app.StatusReport, error)) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "modman",
		Short:         "Resolve mod packages and their variants for a game profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.paths.Catalog, "catalog", "catalog", "Directory holding the package descriptors")
	flags.StringVar(&c.paths.State, "state", domain.DefaultStatePath(), "Directory holding saved profiles")
	flags.StringVar(&c.paths.Plugins, "plugins", "plugins", "Directory holding installed variants")
	flags.StringVarP(&c.profile, "profile", "p", domain.DefaultProfileName, "Profile to work on")
	flags.BoolVar(&c.json, "json", false, "Print reports and logs as JSON")
	flags.BoolVarP(&c.quiet, "quiet", "q", false, "Only log warnings and errors")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if c.json && c.onJSON != nil {
			c.onJSON()
		}
		if c.quiet && c.onQuiet != nil {
			c.onQuiet()
		}
	}

	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// OnJSON registers a hook that runs before a command when --json is set.
func (c *CLI) OnJSON(fn func()) {
	c.onJSON = fn
}

// OnQuiet registers a hook that runs before a command when --quiet is set.
func (c *CLI) OnQuiet(fn func()) {
	c.onQuiet = fn
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// print writes a report as JSON or renders it for the terminal.
func (c *CLI) print(cmd *cobra.Command, v any, render func(*report.Renderer)) error {
	if c.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	render(report.New(cmd.OutOrStdout()))
	return nil
}
