package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/snapdrop/cli/internal/api"
	"github.com/snapdrop/cli/pkg/model"
	"github.com/snapdrop/cli/pkg/uploader"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload images with metadata and duplicate detection",
	Long: `Upload one or more images. The server detects duplicates by content
hash; re-submitting identical bytes reports the original upload instead
of storing it again.

Examples:
  snapdrop upload photo.jpg
  snapdrop upload photo.jpg --name="Sunset" --tags=beach,holiday
  snapdrop upload *.jpg --wait
  snapdrop upload photos/ -r`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringP("name", "n", "", "Display name (default: file name)")
	uploadCmd.Flags().StringP("description", "d", "", "Description")
	uploadCmd.Flags().StringSliceP("tags", "t", nil, "Tags (comma separated)")
	uploadCmd.Flags().BoolP("recursive", "r", false, "Recursively upload directories")
	uploadCmd.Flags().Bool("wait", false, "Wait for thumbnail processing to finish")
}

func runUpload(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	recursive, _ := cmd.Flags().GetBool("recursive")
	wait, _ := cmd.Flags().GetBool("wait")

	files, err := discoverFiles(args, recursive)
	if err != nil {
		return fmt.Errorf("error discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no image files found to upload")
	}

	meta := model.UploadMetadata{
		Name:        name,
		Description: description,
		Tags:        tags,
	}

	failed := 0
	for _, file := range files {
		outcome, err := app.orchestrator.Submit(cmd.Context(), file, meta)
		if err != nil {
			failed++
			color.Red("✗ %s: %s", filepath.Base(file), api.UserMessage(err))
			continue
		}
		printOutcome(file, outcome, wait)
	}

	usage := app.stats.Current()
	fmt.Printf("\nUploads used: %s  Remaining: %s  Total: %s\n",
		usage.UploadsUsed, usage.Remaining, usage.TotalUploads)

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(files))
	}
	return nil
}

func printOutcome(file string, outcome *uploader.Outcome, wait bool) {
	base := filepath.Base(file)
	switch outcome.Kind {
	case uploader.OutcomeDuplicate:
		color.Yellow("= %s: duplicate, originally uploaded %s", base, outcome.Result.UploadedAt)
	case uploader.OutcomeProcessing:
		color.Green("✓ %s: uploaded (hash %.12s), thumbnail processing...", base, outcome.Result.FileHash)
		if wait {
			<-outcome.Task.Done()
			switch outcome.Result.Processing {
			case model.ProcessingCompleted:
				color.Green("  thumbnail ready: %s", outcome.Result.URL)
			case model.ProcessingFailed:
				color.Red("  thumbnail generation failed")
			default:
				// Abandoned: the result stays pending, nothing to report.
				fmt.Println("  still processing, check later with 'snapdrop status'")
			}
		}
	default:
		color.Green("✓ %s: uploaded (hash %.12s)", base, outcome.Result.FileHash)
	}
}

// discoverFiles expands globs and directories into a list of image
// files, deduplicated by absolute path.
func discoverFiles(paths []string, recursive bool) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, path := range paths {
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", path, err)
		}
		if len(matches) == 0 {
			matches = []string{path}
		}

		for _, match := range matches {
			if err := collectFiles(match, recursive, &files, seen); err != nil {
				return nil, err
			}
		}
	}

	return files, nil
}

func collectFiles(path string, recursive bool, files *[]string, seen map[string]bool) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	if seen[absPath] {
		return nil
	}
	seen[absPath] = true

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if info.IsDir() {
		if !recursive {
			return fmt.Errorf("%q is a directory (use -r to upload recursively)", path)
		}
		entries, err := os.ReadDir(absPath)
		if err != nil {
			return fmt.Errorf("failed to read directory %q: %w", path, err)
		}
		for _, entry := range entries {
			if err := collectFiles(filepath.Join(absPath, entry.Name()), recursive, files, seen); err != nil {
				continue // skip inaccessible entries
			}
		}
		return nil
	}

	if uploader.IsImageFile(absPath) {
		*files = append(*files, absPath)
	}
	return nil
}
