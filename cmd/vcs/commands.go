package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vcs/internal/repository"
	"vcs/internal/watch"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := workDir()
			if err != nil {
				return err
			}
			repo, err := repository.Open(dir, repository.Options{Logger: logger.Logger})
			if err != nil {
				return err
			}

			created, err := repo.Init()
			if err != nil {
				return err
			}
			if !created {
				return errors.New("repository already exists")
			}

			printSuccess("Initialized empty VCS repository in %s", filepath.Join(repo.Root(), repository.StorageDir))
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <files...>",
		Short: "Stage files for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}

			paths, err := rootRelative(repo.Root(), args)
			if err != nil {
				return err
			}

			result, err := repo.Add(paths)
			if err != nil {
				return err
			}

			for i, o := range result.Outcomes {
				if o.OK() {
					printSuccess("Added: %s", args[i])
				} else {
					printError(fmt.Errorf("%s: %w", args[i], o.Err))
				}
			}
			return nil
		},
	}
}

// rootRelative rewrites paths given relative to the current directory so
// they are relative to the repository root.
func rootRelative(root string, args []string) ([]string, error) {
	dir, err := workDir()
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(args))
	for i, arg := range args {
		abs := arg
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(dir, arg)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			rel = arg
		}
		paths[i] = rel
	}
	return paths, nil
}

func newCommitCmd() *cobra.Command {
	var message, author string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record staged changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return errors.New("commit message required")
			}
			if author == "" {
				author = cfg.Author
			}

			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}

			hash, err := repo.Commit(message, author)
			if err != nil {
				return err
			}

			printSuccess("Committed: %s", shortHash(hash))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	cmd.Flags().StringVarP(&author, "author", "a", "", "Commit author (defaults to the configured author)")
	cmd.MarkFlagRequired("message")

	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}
			return printStatus(repo)
		},
	}
}

func printStatus(repo *repository.Repository) error {
	st, err := repo.Status()
	if err != nil {
		return err
	}

	fmt.Printf("On branch %s\n\n", bold(st.Branch))

	if len(st.Staged) > 0 {
		fmt.Println(green("Changes to be committed:"))
		for _, p := range st.Staged {
			fmt.Printf("  %s   %s\n", green("new file:"), p)
		}
		fmt.Println()
	}

	if len(st.Modified) > 0 {
		fmt.Println(red("Changes not staged for commit:"))
		for _, p := range st.Modified {
			fmt.Printf("  %s    %s\n", red("modified:"), p)
		}
		fmt.Println()
	}

	if len(st.Untracked) > 0 {
		fmt.Println(yellow("Untracked files:"))
		for _, p := range st.Untracked {
			fmt.Printf("  %s\n", p)
		}
		fmt.Println()
	}

	if st.Clean() {
		printInfo("Nothing to commit, working tree clean")
	}
	return nil
}

func newLogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}

			entries, err := repo.Log(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("No commits yet")
				return nil
			}

			for _, e := range entries {
				fmt.Println(yellow("commit " + e.Hash))
				fmt.Printf("Author: %s\n", e.Author)
				fmt.Printf("Date: %s\n\n", e.Timestamp)
				printMessage(e.Message)
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of commits to show")
	return cmd
}

func newBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branch [name]",
		Short: "Create a branch, or list branches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			result, err := repo.Branch(name)
			if err != nil {
				return err
			}

			switch r := result.(type) {
			case repository.BranchCreated:
				printSuccess("%s", r.Message())
			case repository.BranchList:
				if len(r.Branches) == 0 {
					printInfo("No branches found")
					return nil
				}
				for _, b := range r.Branches {
					if b.Current {
						fmt.Println(green("* " + b.Name))
					} else {
						fmt.Printf("  %s\n", b.Name)
					}
				}
			}
			return nil
		},
	}
}

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Switch branches and update the working tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}

			result, err := repo.Checkout(args[0])
			if err != nil {
				return err
			}

			printSuccess("%s", result.Message())
			return nil
		},
	}
}

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}

			result, err := repo.Merge(args[0])
			if err != nil {
				return err
			}

			printSuccess("%s", result.Message())
			printTreeDiff(result.Diff)
			fmt.Println(result.Diff.Summary())
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [ref]",
		Short: "Show a commit and its tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}

			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}

			c, err := repo.Show(ref)
			if err != nil {
				return err
			}

			fmt.Println(yellow("commit " + c.Hash))
			if c.Parent != "" {
				fmt.Printf("Parent: %s\n", c.Parent)
			}
			if c.IsMerge() {
				fmt.Printf("Merge: %s %s\n", shortHash(c.Parent), shortHash(c.MergeParent))
			}
			fmt.Printf("Author: %s\n", c.Author)
			fmt.Printf("Date: %s\n\n", c.Timestamp)
			printMessage(c.Message)
			fmt.Println()

			for _, p := range c.Tree.Paths() {
				e := c.Tree[p]
				fmt.Printf("%s %s  %s\n", e.Mode, cyan(shortHash(e.Hash)), p)
			}
			return nil
		},
	}
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "List paths that differ between two commits or branches",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}

			result, err := repo.Diff(args[0], args[1])
			if err != nil {
				return err
			}

			if result.Empty() {
				printInfo("No differences")
				return nil
			}
			printTreeDiff(result)
			fmt.Println(result.Summary())
			return nil
		},
	}
}

func newArchiveCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Export a commit's tree as a .tar.zst archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}

			stats, err := repo.Archive(args[0], f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				os.Remove(output)
				return err
			}

			printSuccess("Wrote %d files (%d bytes) to %s", stats.Files, stats.Bytes, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	cmd.MarkFlagRequired("output")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the object store for missing or corrupt objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}

			report, err := repo.Verify()
			if err != nil {
				return err
			}

			for _, h := range report.Missing {
				fmt.Printf("%s %s\n", red("missing:"), h)
			}
			for _, h := range report.Corrupt {
				fmt.Printf("%s %s\n", red("corrupt:"), h)
			}
			for _, h := range report.Unindexed {
				fmt.Printf("%s %s\n", yellow("unindexed:"), h)
			}

			if !report.OK() {
				return fmt.Errorf("%d missing, %d corrupt of %d objects",
					len(report.Missing), len(report.Corrupt), report.Checked)
			}

			stats, err := repo.Stats()
			if err != nil {
				return err
			}
			printSuccess("%d objects OK (%d blobs, %d commits, %d bytes indexed)",
				report.Checked, stats.ByKind["blob"], stats.ByKind["commit"], stats.Bytes)
			return nil
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the status whenever the working tree changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}
			if err := printStatus(repo); err != nil {
				return err
			}

			w, err := watch.New(repo.Root(), repository.StorageDir, watch.Options{Logger: logger.Logger})
			if err != nil {
				return err
			}
			defer w.Close()

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigs)

			for {
				select {
				case ev, ok := <-w.Events():
					if !ok {
						return nil
					}
					logger.Debug("Working tree changed", zap.Strings("paths", ev.Paths))
					fmt.Println(cyan("---"))
					if err := printStatus(repo); err != nil {
						printError(err)
					}
				case <-sigs:
					return nil
				}
			}
		},
	}
}
