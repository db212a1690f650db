package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Show the persisted device fingerprint",
	Long: `Show the fingerprint this device's quota is attributed to.

The fingerprint is derived once from local machine characteristics and
then persisted; later runs reuse the stored value even when the
underlying signals change. Use --reset to discard it and derive a fresh
one (the service will treat this as a new device).`,
	Args: cobra.NoArgs,
	RunE: runFingerprint,
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().Bool("reset", false, "Discard the persisted fingerprint first")
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	reset, _ := cmd.Flags().GetBool("reset")
	if reset {
		if err := app.device.Reset(); err != nil {
			return fmt.Errorf("failed to reset fingerprint: %w", err)
		}
	}
	fmt.Println(app.device.Fingerprint())
	return nil
}
