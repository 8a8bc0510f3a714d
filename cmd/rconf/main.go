package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/rconf-io/rconf/pkg"
	"github.com/rconf-io/rconf/pkg/archive/ops"
	"github.com/rconf-io/rconf/pkg/logging"
)

const version = "0.2.0"

var (
	manifestFile string
	destDir      string
	compressName string
	scriptOut    string
	logLevel     string
	versionFlag  bool
	rootCmd      *cobra.Command
)

func getBuildTimestamp() string {
	// Try to get vcs.time from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func newLogger() hclog.Logger {
	level := logLevel
	if level == "" {
		level = logging.GetLogLevel()
	}
	return logging.NewLogger("rconf", level, os.Stderr)
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "rconf",
		Short: "Backup and deploy configuration files",
		Long: `rconf packages the configuration files named by a manifest into a
portable tar archive, and later replays that archive on another
machine: files first, then the declared package manager.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	archiveCmd := &cobra.Command{
		Use:   "archive <title>",
		Short: "Create an archive as specified by the manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchive,
	}
	archiveCmd.Flags().StringVarP(&manifestFile, "file", "f", "", "Manifest to build from (default: .rconf in the config directory)")
	archiveCmd.Flags().StringVarP(&destDir, "dest", "d", "", "Directory to store the archive in (default: current directory)")
	archiveCmd.Flags().StringVar(&compressName, "compress", "none",
		fmt.Sprintf("Compress the archive (%s)", strings.Join(ops.Names(), ", ")))

	installCmd := &cobra.Command{
		Use:   "install <archive>",
		Short: "Install configurations and packages from an archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runInstall,
	}

	uninstallCmd := &cobra.Command{
		Use:   "uninstall <archive>",
		Short: "Remove an archive's packages via its package manager",
		Args:  cobra.ExactArgs(1),
		RunE:  runUninstall,
	}

	scriptCmd := &cobra.Command{
		Use:   "script <archive>",
		Short: "Generate a standalone install script from an archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	scriptCmd.Flags().StringVarP(&scriptOut, "output", "o", "", "Where to write the script (default: install.sh)")

	rootCmd.AddCommand(archiveCmd, installCmd, uninstallCmd, scriptCmd)
}

func main() {
	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("rconf %s\n", version)
		fmt.Printf("Built: %s\n", getBuildTimestamp())
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runArchive(cmd *cobra.Command, args []string) error {
	output := args[0]
	if destDir != "" {
		output = filepath.Join(destDir, output)
	}

	written, result, err := pkg.BuildArchive(manifestFile, output, compressName, newLogger())
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", w.Record, w.Err)
	}
	fmt.Printf("wrote %s (%d entries, %d warnings)\n",
		written, len(result.Archive.Entries), len(result.Warnings))
	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	report, err := pkg.InstallArchive(cmd.Context(), args[0], newLogger())
	if err != nil {
		return err
	}
	// The report is printed even on success: success only means no
	// fatal error, not zero per-entry failures.
	fmt.Println(report.Summary())
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	report, err := pkg.UninstallArchive(cmd.Context(), args[0], newLogger())
	if err != nil {
		return err
	}
	fmt.Println(report.Summary())
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	return pkg.WriteScript(args[0], scriptOut)
}
