package main

import (
	"runtime"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verify     bool
	workers    int
	reportFile string
	assumeYes  bool
	verbose    bool
	lockDir    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "flatten-go [flags] <directory>",
		Short: "Move every file from subfolders into the folder itself",
		Long: `flatten-go moves all files found in the subfolders of <directory> up into
<directory>, renaming on name collisions (name_1.ext, name_2.ext, ...), and
deletes the folders left empty. Files directly in <directory> are not touched.

The first error stops the run. Moves and deletions already done are kept.`,
		Example: `  # Flatten a folder after confirming
  flatten-go ~/Downloads/photos

  # Skip the prompt, check contents before and after, keep a report
  flatten-go -y --verify --report run.json ~/Downloads/photos`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlatten(cmd, opts, args[0])
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "flatten-go.yaml", "Config file path")
	flags.BoolVar(&opts.verify, "verify", false, "Hash contents before and after and fail if they differ")
	flags.IntVarP(&opts.workers, "workers", "w", runtime.NumCPU()*2, "Number of hashing workers for --verify")
	flags.StringVar(&opts.reportFile, "report", "", "Write a JSON run report to this path")
	flags.BoolVarP(&opts.assumeYes, "yes", "y", false, "Do not ask for confirmation")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every operation")
	flags.StringVar(&opts.lockDir, "lock-dir", "", "Directory for lock files (default: OS temp dir)")
	_ = flags.MarkHidden("lock-dir")

	rootCmd.AddCommand(newReportCommand())

	return rootCmd
}
