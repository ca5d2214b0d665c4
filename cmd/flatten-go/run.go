package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flatten-go/internal/compare"
	"flatten-go/internal/config"
	"flatten-go/internal/flatten"
	"flatten-go/internal/lock"
	"flatten-go/internal/logging"
	"flatten-go/internal/manifest"
	"flatten-go/internal/progress"
	"flatten-go/internal/report"
)

var errVerificationFailed = errors.New("content verification failed")

// scanManifest is swapped by tests to inject scan failures.
var scanManifest = manifest.Scan

func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Flags win over the config file when set explicitly
	flags := cmd.Flags()
	if flags.Changed("verify") {
		cfg.Verify = opts.verify
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("report") {
		cfg.ReportFile = opts.reportFile
	}
	if flags.Changed("yes") {
		cfg.AssumeYes = opts.assumeYes
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runFlatten(cmd *cobra.Command, opts *rootOptions, directory string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	absDirectory, err := flatten.CheckRoot(directory)
	if err != nil {
		return err
	}
	if err := checkOutputPaths(cfg, absDirectory); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Sync()

	out := cmd.OutOrStdout()
	if !cfg.AssumeYes {
		ok, err := confirm(cmd.InOrStdin(), out, absDirectory)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	rootLock, err := lock.Acquire(opts.lockDir, absDirectory)
	if err != nil {
		return err
	}
	defer func() {
		if err := rootLock.Release(); err != nil {
			logger.Warn("failed to release lock", zap.Error(err))
		}
	}()

	ctx := cmd.Context()
	rep := report.New(absDirectory)

	var before *manifest.Manifest
	if cfg.Verify {
		fmt.Fprintln(out, "Hashing files...")
		bar := progress.New(0, out)
		before, err = scanManifest(ctx, absDirectory, cfg.Workers, bar)
		bar.Finish()
		if err != nil {
			return fmt.Errorf("failed to scan directory: %w", err)
		}
		logger.Info("content manifest built",
			zap.String("root_hash", before.RootHash), zap.Int("files", len(before.Files)))
	}

	fmt.Fprintf(out, "Flattening directory: %s\n", absDirectory)
	logger.Info("run started", zap.String("run_id", rep.RunID), zap.String("root", absDirectory))

	bar := progress.New(0, out)
	result, runErr := flatten.Run(ctx, absDirectory, flatten.Options{
		Logger: logger,
		OnEvent: func(e flatten.Event) {
			bar.Step(filepath.Base(e.Path))
			bar.Println(e.String())
			logger.Debug("operation completed",
				zap.String("type", string(e.Type)), zap.String("path", e.Path), zap.String("dest", e.Dest))
		},
	})
	bar.Finish()
	rep.Finish(result, runErr)

	if runErr != nil {
		logger.Error("run failed", zap.String("run_id", rep.RunID), zap.Error(runErr),
			zap.Int("moved", len(result.Moves)), zap.Int("deleted", len(result.Deleted)))
		saveReport(cfg, rep, logger)
		return fmt.Errorf("flatten %s: %w", absDirectory, runErr)
	}

	var verifyErr error
	if cfg.Verify {
		fmt.Fprintln(out, "Verifying files...")
		bar := progress.New(0, out)
		after, err := scanManifest(ctx, absDirectory, cfg.Workers, bar)
		bar.Finish()
		if err != nil {
			err = fmt.Errorf("failed to scan directory: %w", err)
			rep.Fail(err)
			logger.Error("verification scan failed", zap.String("run_id", rep.RunID), zap.Error(err))
			saveReport(cfg, rep, logger)
			return err
		}
		diff := compare.Compare(before, after)
		fmt.Fprintln(out, compare.FormatReport(diff))
		rep.Verify(before, after, !diff.HasChanges())
		if diff.HasChanges() {
			verifyErr = errVerificationFailed
		}
	}

	logger.Info("run finished", zap.String("run_id", rep.RunID), zap.String("status", rep.Status),
		zap.Int("moved", len(result.Moves)), zap.Int("deleted", len(result.Deleted)))
	saveReport(cfg, rep, logger)

	if verifyErr != nil {
		return verifyErr
	}

	fmt.Fprintf(out, "✓ All files have been moved and empty folders deleted.\n")
	fmt.Fprintf(out, "  Moved: %d files\n", len(result.Moves))
	fmt.Fprintf(out, "  Deleted: %d folders\n", len(result.Deleted))
	if cfg.ReportFile != "" {
		fmt.Fprintf(out, "  Report: %s\n", cfg.ReportFile)
	}
	return nil
}

// checkOutputPaths rejects report and log files that would land inside a
// subfolder of root, where the run would move them. A log file directly in
// root is also rejected when verifying, since it appears between the scans.
func checkOutputPaths(cfg *config.Config, root string) error {
	if err := checkOutputPath(root, "report_file", cfg.ReportFile, true); err != nil {
		return err
	}
	return checkOutputPath(root, "log_file", cfg.LogFile, !cfg.Verify)
}

func checkOutputPath(root, key, path string, allowRootLevel bool) error {
	if path == "" {
		return nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, path, err)
	}
	rel, err := filepath.Rel(root, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	if strings.ContainsRune(rel, filepath.Separator) || rel == "." || !allowRootLevel {
		return fmt.Errorf("%s %s is inside the directory being flattened", key, absPath)
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, directory string) (bool, error) {
	fmt.Fprintf(out, "This will move all files from the subfolders of %s into it "+
		"and delete empty folders. Do you want to continue? [y/N] ", directory)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// saveReport writes the report if one is configured. A failure here does
// not change the outcome of the run.
func saveReport(cfg *config.Config, rep *report.Report, logger *zap.Logger) {
	if cfg.ReportFile == "" {
		return
	}
	if err := report.Save(rep, cfg.ReportFile); err != nil {
		logger.Error("failed to save report", zap.String("path", cfg.ReportFile), zap.Error(err))
	}
}
