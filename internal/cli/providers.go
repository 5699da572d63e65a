package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-strings/internal/config"
	"github.com/mvp-joe/project-strings/internal/provider"
)

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the providers a scan would use",
	Long: `Providers prints the effective provider registry: the providers section of
.strings/config.yml, or the built-in providers when none are configured.`,
	Args: cobra.NoArgs,
	RunE: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	rootDir, err := resolveProjectDir()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	return listProviders(cmd.OutOrStdout(), registry)
}

// listProviders writes one aligned row per provider.
func listProviders(w io.Writer, registry *provider.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEXTENSIONS\tCOMMAND")
	for _, p := range registry.Providers() {
		command := "(built-in)"
		if !p.BuiltIn() {
			command = strings.TrimSpace(p.Command + " " + strings.Join(p.Args, " "))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, strings.Join(p.Extensions, " "), command)
	}
	return tw.Flush()
}
