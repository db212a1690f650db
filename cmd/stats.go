package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show upload quota for this device and service-wide counters",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Bool("global", false, "Also show service-wide counters")
}

func runStats(cmd *cobra.Command, args []string) error {
	global, _ := cmd.Flags().GetBool("global")

	if err := app.client.Health(cmd.Context()); err != nil {
		color.Red("Service unreachable: %v", err)
	}

	// A failed refresh keeps placeholders (or previous values) and is
	// logged, never fatal.
	usage := app.stats.Refresh(cmd.Context())
	fmt.Println("This device:")
	fmt.Printf("  uploads used: %s\n", usage.UploadsUsed)
	fmt.Printf("  remaining:    %s\n", usage.Remaining)
	fmt.Printf("  total:        %s\n", usage.TotalUploads)

	if global {
		corpus, err := app.client.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println("\nService:")
		fmt.Printf("  images:    %d (%d processed)\n", corpus.TotalImages, corpus.ProcessedImages)
		fmt.Printf("  uploaders: %d\n", corpus.UniqueUploaders)
		fmt.Printf("  size:      %.2f MB\n", corpus.TotalSizeMB)
		fmt.Printf("  quota:     %d uploads per device\n", corpus.MaxUploads)
	}
	return nil
}
