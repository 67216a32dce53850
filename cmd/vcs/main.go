// cmd/vcs/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vcs/internal/config"
	"vcs/internal/logging"
	"vcs/internal/repository"
	"vcs/internal/workspace"
)

var (
	cfg    = config.Default()
	logger = logging.NewNop()

	flagDir      string
	flagLogLevel string
	flagNoColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "vcs",
	Short: "A minimal version control system",
	Long: `vcs tracks snapshots of files by content hash, stages pending changes,
records commits on named branches and synchronizes the working directory to
any branch.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "C", "", "Run as if started in this directory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newCommitCmd(),
		newStatusCmd(),
		newLogCmd(),
		newBranchCmd(),
		newCheckoutCmd(),
		newMergeCmd(),
		newShowCmd(),
		newDiffCmd(),
		newArchiveCmd(),
		newVerifyCmd(),
		newWatchCmd(),
	)
}

// setup loads user configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	l, err := logging.NewLogger(level)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger = l

	if flagNoColor || !cfg.UseColor() {
		color.NoColor = true
	}
	return nil
}

// workDir is the directory the command acts on.
func workDir() (string, error) {
	if flagDir != "" {
		return filepath.Abs(flagDir)
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return dir, nil
}

// openRepo opens the repository containing the working directory. When no
// enclosing repository exists the working directory itself is used, so the
// engine reports NotARepository.
func openRepo(cmd *cobra.Command) (*repository.Repository, error) {
	dir, err := workDir()
	if err != nil {
		return nil, err
	}

	root, err := workspace.FindRoot(dir, repository.StorageDir)
	if err != nil {
		root = dir
	}

	opLogger := logger.ForOperation(cmd.Name(), root)
	opLogger.Debug("Opening repository", zap.String("cwd", dir))

	return repository.Open(root, repository.Options{Logger: logger.Logger})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}
