package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/snapdrop/cli/internal/api"
	"github.com/snapdrop/cli/pkg/uploader"
	"github.com/snapdrop/cli/pkg/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <folder>",
	Short: "Watch a folder and automatically upload new images",
	Long: `Watch a folder for new images and submit them automatically.

Files are debounced so half-written images are not submitted; already
processed files are remembered locally and skipped on restart.

Examples:
  snapdrop watch ~/Pictures
  snapdrop watch ~/Pictures --tags=camera --initial-scan
  snapdrop watch ~/Pictures --debounce=3000`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Int("debounce", 5000, "File write debounce in milliseconds")
	watchCmd.Flags().StringSliceP("tags", "t", nil, "Tags attached to every upload")
	watchCmd.Flags().Bool("initial-scan", false, "Submit existing files on startup")
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounceMs, _ := cmd.Flags().GetInt("debounce")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	initialScan, _ := cmd.Flags().GetBool("initial-scan")

	watchPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", args[0], err)
	}
	info, err := os.Stat(watchPath)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", watchPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", watchPath)
	}

	var store watcher.ProcessedStore
	if app.store != nil {
		store = app.store
	}

	w, err := watcher.NewWatcher(cmd.Context(), app.orchestrator, store, watcher.Config{
		Path:     watchPath,
		Debounce: time.Duration(debounceMs) * time.Millisecond,
		Tags:     tags,
		Logger:   app.log,
	})
	if err != nil {
		return err
	}

	w.OnVerdict = func(path string, outcome *uploader.Outcome, err error) {
		base := filepath.Base(path)
		switch {
		case err != nil:
			color.Red("✗ %s: %s", base, api.UserMessage(err))
		case outcome.Kind == uploader.OutcomeDuplicate:
			color.Yellow("= %s: duplicate", base)
		default:
			color.Green("✓ %s: uploaded", base)
		}
	}

	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Printf("Watching folder: %s\n", watchPath)
	fmt.Printf("Debounce: %dms\n", debounceMs)

	if initialScan {
		submitted, err := w.InitialScan()
		if err != nil {
			return err
		}
		fmt.Printf("Initial scan submitted %d image(s)\n", submitted)
	}

	fmt.Println("\nPress Ctrl+C to stop watching...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	return nil
}
