package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/snapdrop/cli/pkg/clock"
	"github.com/snapdrop/cli/pkg/model"
	"github.com/snapdrop/cli/pkg/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search images by name, description or tags",
	Long: `Search the image corpus. With a query argument a single search is
issued. With --follow, queries are read line by line from stdin and
debounced, so rapid edits collapse into one request.

Examples:
  snapdrop search sunset
  snapdrop search --follow`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Bool("follow", false, "Read queries interactively from stdin")
}

func runSearch(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")

	if follow {
		return runFollowSearch(cmd)
	}

	if len(args) == 0 {
		return fmt.Errorf("a query argument is required unless --follow is set")
	}
	query := strings.TrimSpace(args[0])
	if query == "" {
		// An empty query is never sent; it just means no results.
		fmt.Println("No results")
		return nil
	}

	results, err := app.client.Search(cmd.Context(), query)
	if err != nil {
		return err
	}
	printResults(results)
	return nil
}

// runFollowSearch feeds stdin lines through the debouncer, printing
// each result set as it lands.
func runFollowSearch(cmd *cobra.Command) error {
	debouncer := search.NewDebouncer(app.client, clock.Real(),
		search.WithLogger(app.log),
		search.WithOnUpdate(func(state search.State) {
			if state.Loading {
				return
			}
			if !state.HasSearched {
				fmt.Println("(cleared)")
				return
			}
			printResults(state.Results)
		}),
	)
	defer debouncer.Stop()

	fmt.Println("Type a query and press enter (empty line clears, Ctrl+D exits):")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		debouncer.SetQuery(cmd.Context(), scanner.Text())
	}
	return scanner.Err()
}

func printResults(results []model.Image) {
	if len(results) == 0 {
		fmt.Println("No results")
		return
	}

	if len(results) == 1 {
		fmt.Println("Found 1 image")
	} else {
		fmt.Printf("Found %d images\n", len(results))
	}
	for _, img := range results {
		color.Cyan("%s", img.Name)
		fmt.Printf("  url: %s\n", img.URL)
		if img.ThumbnailURL != "" {
			fmt.Printf("  thumbnail: %s\n", img.ThumbnailURL)
		}
		if img.Description != "" {
			fmt.Printf("  %s\n", img.Description)
		}
		if len(img.Tags) > 0 {
			fmt.Printf("  tags: %s\n", strings.Join(img.Tags, ", "))
		}
		fmt.Printf("  uploaded: %s  hash: %.12s\n", img.UploadedAt, img.Hash)
	}
}
