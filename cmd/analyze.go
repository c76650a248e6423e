package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/pylens/pylens/internal/ui"
	"github.com/pylens/pylens/internal/workspace"
)

var watchFlag bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a Python file or directory and record suggestions",
	Long: `Analyze runs the metrics thresholds, pattern detection and framework
checks over the target and records the resulting suggestions in the store.
A directory is walked recursively for .py files; virtualenvs, caches and
hidden directories are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := workspace.Open(false)
		if err != nil {
			HandleFatalError("Could not open the suggestion store.", err)
		}
		defer func() { _ = ws.Close() }()

		target := args[0]
		if err := runAnalyze(cmd.Context(), ws, target); err != nil {
			return err
		}
		if watchFlag {
			return watchAndReanalyze(ws, target)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "re-analyze on file changes until interrupted")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(ctx context.Context, ws *workspace.Workspace, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		PrintError(fmt.Sprintf("Cannot access %s.", target), err)
		return err
	}

	if info.IsDir() {
		rep, err := ws.Generator.AnalyzeDirectory(ctx, target)
		if err != nil {
			PrintError("Directory analysis failed.", err)
			return err
		}
		fmt.Printf("%s run %s: %d files analyzed, %d suggestions\n",
			ui.StyleSuccess.Render("✔"), rep.RunID, rep.AnalyzedFiles, len(rep.SuggestionIDs))
		for _, f := range rep.Failures {
			fmt.Printf("  %s %s: %s\n", ui.StyleError.Render("✘"), f.Path, f.Error)
		}
		return nil
	}

	ids, err := ws.Generator.GenerateForFile(ctx, target)
	if err != nil {
		PrintError(fmt.Sprintf("Analysis of %s failed.", target), err)
		return err
	}
	if len(ids) == 0 {
		fmt.Printf("%s no suggestions for %s\n", ui.StyleSubtle.Render("·"), target)
		return nil
	}
	fmt.Printf("%s %d suggestion(s) recorded for %s (ids %s)\n",
		ui.StyleSuccess.Render("✔"), len(ids), target, joinIDs(ids))
	return nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

// watchAndReanalyze blocks, re-running the analysis whenever a .py file under
// the target changes, until interrupted.
func watchAndReanalyze(ws *workspace.Workspace, target string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	root := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		root = filepath.Dir(target)
	}
	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	fmt.Println(ui.StyleSubtle.Render("watching for changes, ctrl-c to stop"))

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".py") || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := runAnalyze(context.Background(), ws, target); err != nil {
				PrintError("Re-analysis failed.", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			PrintError("Watcher error.", err)
		case <-sig:
			return nil
		}
	}
}
