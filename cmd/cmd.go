// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/segprep/segprep/envconfig"
	"github.com/segprep/segprep/logutil"
	"github.com/segprep/segprep/version"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// versionHandler - Gibt die Version aus
func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "segprep version is %s\n", version.Version)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "segprep",
		Short:         "Prepare datasets for semantic segmentation",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), envconfig.LogLevel()))
			slog.Debug("segprep config", "env", envconfig.Values())
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	splitCmd := newSplitCmd()
	decodeCmd := newDecodeCmd()
	inspectCmd := newInspectCmd()
	downloadCmd := newDownloadCmd()
	tagsCmd := newTagsCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["SEGPREP_DEBUG"]}

	for _, cmd := range []*cobra.Command{
		splitCmd,
		decodeCmd,
		inspectCmd,
		downloadCmd,
		tagsCmd,
	} {
		switch cmd {
		case splitCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["SEGPREP_DEBUG"], envVars["SEGPREP_NO_SHUFFLE"]})
		case inspectCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["SEGPREP_DEBUG"],
				envVars["SEGPREP_NO_SHUFFLE"],
				envVars["SEGPREP_NUM_PARALLEL"],
			})
		case downloadCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["SEGPREP_DEBUG"],
				envVars["SEGPREP_DATASETS"],
				envVars["SEGPREP_DRIVE_URL"],
				envVars["SEGPREP_STALL_TIMEOUT"],
				envVars["HTTPS_PROXY"],
			})
		default:
			appendEnvDocs(cmd, envs)
		}
	}

	rootCmd.AddCommand(
		splitCmd,
		decodeCmd,
		inspectCmd,
		downloadCmd,
		tagsCmd,
	)

	return rootCmd
}
