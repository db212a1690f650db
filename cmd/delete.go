package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <hash>",
	Short: "Delete an image by its content hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	hash := args[0]

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Printf("Delete image %.12s...? [y/N] ", hash)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := app.client.Delete(cmd.Context(), hash); err != nil {
		return err
	}
	color.Green("Deleted %.12s...", hash)
	return nil
}
